/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/klppl/irc-botcore/identity"
	"github.com/klppl/irc-botcore/ircerr"
	"github.com/klppl/irc-botcore/logger"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is used when CONFIG_PATH is unset.
const DefaultConfigPath = "config.yaml"

// Loader reads the on-disk document once at startup, applies the
// environment overrides of spec.md §6 (never written back) and validates
// required fields. It optionally watches the file for out-of-band edits.
type Loader struct {
	v    *viper.Viper
	path string
	log  logger.Logger
}

// ResolveConfigPath honours CONFIG_PATH, defaulting to DefaultConfigPath.
func ResolveConfigPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return DefaultConfigPath
}

// NewLoader builds a Loader rooted at path.
func NewLoader(path string, log logger.Logger) *Loader {
	if log == nil {
		log = logger.Discard()
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("prefix", "!")
	v.SetDefault("reconnect_delay_secs", 5)
	v.SetDefault("max_reconnect_delay_secs", 300)
	v.SetDefault("request_timeout_secs", 15)
	v.SetDefault("join_delay_secs", 2)
	v.SetDefault("privmsg_rate_count", 5)
	v.SetDefault("privmsg_rate_window_secs", 10)

	return &Loader{v: v, path: path, log: log}
}

// requiredKeys are the required keys of spec.md §6's configuration file:
// "Required keys and types: server (string), port (integer), use_tls
// (boolean), nickname, username, realname (strings), channels (list of
// strings), prefix (string), ..., reconnect_delay_secs (integer),
// request_timeout_secs (integer)." prefix, reconnect_delay_secs and
// request_timeout_secs also carry a Loader default, so they are only ever
// reported missing when no default and no override supplies them either.
var requiredKeys = []string{
	"server", "port", "use_tls", "nickname", "username", "realname",
	"channels", "prefix", "reconnect_delay_secs", "request_timeout_secs",
}

// requiredKeyEnv maps a required key to the environment override that may
// also satisfy it (applyEnvOverrides applies these after Unmarshal, so
// viper's own IsSet doesn't see them).
var requiredKeyEnv = map[string]string{
	"server":               "SERVER",
	"port":                 "PORT",
	"use_tls":              "USE_TLS",
	"nickname":             "NICKNAME",
	"username":             "USERNAME",
	"realname":             "REALNAME",
	"channels":             "CHANNELS",
	"prefix":               "PREFIX",
	"reconnect_delay_secs": "RECONNECT_DELAY_SECS",
	"request_timeout_secs": "REQUEST_TIMEOUT_SECS",
}

// Load reads, overrides from the environment and validates the document.
func (l *Loader) Load() (Document, error) {
	if err := l.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Document{}, ircerr.Wrap(ircerr.CodeConfigError, err, "read config")
		}
	}

	if err := l.checkRequiredKeys(); err != nil {
		return Document{}, err
	}

	// Decode through yaml so Document's yaml tags (owner_nicks, use_tls,
	// the *_secs knobs) are honoured.
	raw, err := yaml.Marshal(l.v.AllSettings())
	if err != nil {
		return Document{}, ircerr.Wrap(ircerr.CodeConfigError, err, "unmarshal config")
	}
	d, err := unmarshalDocument(raw)
	if err != nil {
		return Document{}, ircerr.Wrap(ircerr.CodeConfigError, err, "unmarshal config")
	}
	applyEnvOverrides(&d)

	if err := validate(d); err != nil {
		return Document{}, err
	}
	return d, nil
}

// checkRequiredKeys rejects any required key (spec.md §6) supplied by
// neither the config file, a Loader default, nor its environment override.
func (l *Loader) checkRequiredKeys() error {
	for _, key := range requiredKeys {
		if l.v.IsSet(key) {
			continue
		}
		if env, ok := requiredKeyEnv[key]; ok {
			if _, present := os.LookupEnv(env); present {
				continue
			}
		}
		return ircerr.New(ircerr.CodeConfigError, "missing required key %q", key)
	}
	return nil
}

// applyEnvOverrides implements the environment-override table of spec.md
// §6. OWNER_NICKS is informational only: it cannot carry passwords or
// hosts, so it is read but never used to mutate OwnerNicks.
func applyEnvOverrides(d *Document) {
	if v, ok := os.LookupEnv("SERVER"); ok {
		d.Server = v
	}
	if v, ok := os.LookupEnv("PORT"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			d.Port = n
		}
	}
	if v, ok := os.LookupEnv("USE_TLS"); ok {
		d.UseTLS = isTruthy(v)
	}
	if v, ok := os.LookupEnv("NICKNAME"); ok {
		d.Nickname = v
	}
	if v, ok := os.LookupEnv("USERNAME"); ok {
		d.Username = v
	}
	if v, ok := os.LookupEnv("REALNAME"); ok {
		d.Realname = v
	}
	if v, ok := os.LookupEnv("CHANNELS"); ok {
		d.Channels = splitComma(v)
	}
	if v, ok := os.LookupEnv("PREFIX"); ok {
		d.Prefix = v
	}
	if v, ok := os.LookupEnv("RECONNECT_DELAY_SECS"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			d.ReconnectDelaySecs = n
		}
	}
	if v, ok := os.LookupEnv("REQUEST_TIMEOUT_SECS"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			d.RequestTimeoutSecs = n
		}
	}
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func splitComma(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func validate(d Document) error {
	if d.Server == "" {
		return ircerr.New(ircerr.CodeConfigError, "missing required key %q", "server")
	}
	if d.Nickname == "" {
		return ircerr.New(ircerr.CodeConfigError, "missing required key %q", "nickname")
	}
	for _, o := range d.OwnerNicks {
		if o.Nick == "" {
			return ircerr.New(ircerr.CodeConfigError, "owner record missing nick")
		}
		if o.Password == "" && len(o.Hosts) == 0 {
			return ircerr.New(ircerr.CodeConfigError, "owner %q has neither password nor trusted hosts", o.Nick)
		}
	}
	seen := map[string]struct{}{}
	for _, o := range d.OwnerNicks {
		key := strings.ToLower(o.Nick)
		if _, ok := seen[key]; ok {
			return ircerr.New(ircerr.CodeConfigError, "duplicate owner nick %q", o.Nick)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// OwnerRecords converts a Document's OwnerNicks into identity.Record form.
func OwnerRecords(d Document) map[string]identity.Record {
	out := make(map[string]identity.Record, len(d.OwnerNicks))
	for _, o := range d.OwnerNicks {
		out[strings.ToLower(o.Nick)] = identity.Record{
			Nick:     o.Nick,
			Password: o.Password,
			Hosts:    append([]string(nil), o.Hosts...),
		}
	}
	return out
}

// Watch invokes onChange every time the underlying file is rewritten.
// Errors from the watcher itself are logged, never fatal: a missed
// out-of-band edit is recovered by the next restart.
func (l *Loader) Watch(onChange func()) {
	l.v.OnConfigChange(func(_ fsnotify.Event) {
		onChange()
	})
	l.v.WatchConfig()
}
