/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
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

// Command ircbotcore is the IRC bot core's entrypoint: it loads config,
// wires the connection engine and handler registry, and runs them under a
// supervisor until an interrupt or termination signal arrives.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/klppl/irc-botcore/config"
	"github.com/klppl/irc-botcore/handler"
	"github.com/klppl/irc-botcore/identity"
	"github.com/klppl/irc-botcore/ircclient"
	"github.com/klppl/irc-botcore/logger"
	"github.com/klppl/irc-botcore/supervisor"
	"github.com/spf13/cobra"
)

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		configPath string
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   "ircbotcore",
		Short: "Run the IRC bot core",
		Long:  "ircbotcore connects to one IRC network, keeps its channel membership and owner trust durable across restarts, and dispatches registered commands to loadable handler modules.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				configPath = config.ResolveConfigPath()
			}
			return run(configPath, logLevel)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to the config document (default: $CONFIG_PATH or config.yaml)")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")

	return cmd
}

func parseLevel(s string) logger.Level {
	switch s {
	case "debug":
		return logger.DebugLevel
	case "warn":
		return logger.WarnLevel
	case "error":
		return logger.ErrorLevel
	default:
		return logger.InfoLevel
	}
}

func run(configPath, logLevel string) error {
	log := logger.New("ircbotcore", parseLevel(logLevel), os.Stderr)

	loader := config.NewLoader(configPath, log)
	doc, err := loader.Load()
	if err != nil {
		log.WithError(err).Errorf("failed to load config from %s", configPath)
		return err
	}

	store := config.NewStore(configPath, log)
	idStore := identity.NewStore(config.OwnerRecords(doc), store)
	registry := handler.NewRegistry(store, handler.DefaultMaxConcurrent, handler.DefaultTimeout, log)

	cfg := ircclient.Config{
		Server:   doc.Server,
		Port:     doc.Port,
		UseTLS:   doc.UseTLS,
		Nickname: doc.Nickname,
		Username: doc.Username,
		Realname: doc.Realname,
		Channels: doc.Channels,
		Prefix:   doc.Prefix,

		ReconnectDelay:    time.Duration(doc.ReconnectDelaySecs) * time.Second,
		MaxReconnectDelay: time.Duration(doc.MaxReconnectDelay) * time.Second,
		RequestTimeout:    time.Duration(doc.RequestTimeoutSecs) * time.Second,
		JoinDelay:         time.Duration(doc.JoinDelaySecs) * time.Second,

		RateCount:        doc.RateCount,
		RateWindow:       time.Duration(doc.RateWindowSecs) * time.Second,
		TargetRateCount:  doc.TargetRateCount,
		TargetRateWindow: time.Duration(doc.TargetRateWindow) * time.Second,
	}

	engine := ircclient.NewEngine(cfg, registry, idStore, store, log)

	mods := newModuleSet(handler.NewExample())
	engine.SetModuleSource(mods)

	enabled := make(map[string]bool, len(doc.Plugins))
	for name, entry := range doc.Plugins {
		enabled[name] = entry.Enabled
	}
	for _, loadErr := range discoverAndLoad(registry, engine, mods, enabled) {
		log.WithError(loadErr).Warnf("handler failed to load at startup")
	}

	sup := supervisor.New(
		func(ctx context.Context) error { return engine.Run(ctx) },
		func(ctx context.Context) error { return nil },
		log,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := sup.Start(ctx); err != nil {
		return fmt.Errorf("start supervisor: %w", err)
	}

	runErr := sup.Wait()

	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := sup.Stop(stopCtx); err != nil {
		log.WithError(err).Errorf("error during shutdown")
	}

	if runErr != nil {
		log.WithError(runErr).Errorf("engine exited with error")
		return runErr
	}
	return nil
}
