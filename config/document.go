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

// Package config implements the durable configuration store of spec.md
// §4.8: a single structured document, locked and atomically replaced on
// every write, plus the startup loader that layers environment overrides
// on top of it.
package config

import (
	"gopkg.in/yaml.v3"
)

// PluginEntry is one entry of the persisted "plugins" mapping: a handler
// name to its enabled flag plus any handler-private settings.
type PluginEntry struct {
	Enabled bool                   `yaml:"enabled"`
	Extra   map[string]interface{} `yaml:",inline"`
}

// OwnerEntry is the on-disk shape of an identity.Record.
type OwnerEntry struct {
	Nick     string   `yaml:"nick"`
	Password string   `yaml:"password,omitempty"`
	Hosts    []string `yaml:"hosts,omitempty"`
}

// Document is PersistedConfig (spec.md §3): the single on-disk mapping.
// Fields are struct-tagged rather than held as a yaml.Node so yaml.v3
// serialises the document in a fixed, stable key order on every write.
type Document struct {
	Server              string                 `yaml:"server"`
	Port                int                    `yaml:"port"`
	UseTLS              bool                   `yaml:"use_tls"`
	Nickname            string                 `yaml:"nickname"`
	Username            string                 `yaml:"username"`
	Realname            string                 `yaml:"realname"`
	Channels            []string               `yaml:"channels"`
	Prefix              string                 `yaml:"prefix"`
	OwnerNicks          []OwnerEntry           `yaml:"owner_nicks"`
	Plugins             map[string]PluginEntry `yaml:"plugins"`
	ReconnectDelaySecs  int                    `yaml:"reconnect_delay_secs"`
	MaxReconnectDelay   int                    `yaml:"max_reconnect_delay_secs"`
	RequestTimeoutSecs  int                    `yaml:"request_timeout_secs"`
	JoinDelaySecs       int                    `yaml:"join_delay_secs"`
	RateCount           int                    `yaml:"privmsg_rate_count"`
	RateWindowSecs      int                    `yaml:"privmsg_rate_window_secs"`
	TargetRateCount     int                    `yaml:"per_target_rate_count"`
	TargetRateWindow    int                    `yaml:"per_target_rate_window_secs"`
}

// applyDefaults fills in the defaults named throughout spec.md when a freshly
// loaded document has zero values (an absent or empty file).
func (d *Document) applyDefaults() {
	if d.Prefix == "" {
		d.Prefix = "!"
	}
	if d.ReconnectDelaySecs <= 0 {
		d.ReconnectDelaySecs = 5
	}
	if d.MaxReconnectDelay <= 0 {
		d.MaxReconnectDelay = 300
	}
	if d.RequestTimeoutSecs <= 0 {
		d.RequestTimeoutSecs = 15
	}
	if d.JoinDelaySecs <= 0 {
		d.JoinDelaySecs = 2
	}
	if d.RateCount <= 0 {
		d.RateCount = 5
	}
	if d.RateWindowSecs <= 0 {
		d.RateWindowSecs = 10
	}
	if d.TargetRateCount <= 0 {
		d.TargetRateCount = d.RateCount
	}
	if d.TargetRateWindow <= 0 {
		d.TargetRateWindow = d.RateWindowSecs
	}
	if d.Plugins == nil {
		d.Plugins = map[string]PluginEntry{}
	}
}

func marshalDocument(d Document) ([]byte, error) {
	return yaml.Marshal(d)
}

func unmarshalDocument(b []byte) (Document, error) {
	var d Document
	if len(b) > 0 {
		if err := yaml.Unmarshal(b, &d); err != nil {
			return Document{}, err
		}
	}
	d.applyDefaults()
	return d, nil
}
