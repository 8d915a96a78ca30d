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

package ircclient

import (
	"bufio"
	"context"
	"crypto/tls"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/klppl/irc-botcore/config"
	"github.com/klppl/irc-botcore/handler"
	"github.com/klppl/irc-botcore/identity"
	"github.com/klppl/irc-botcore/ircerr"
	"github.com/klppl/irc-botcore/ircmsg"
	"github.com/klppl/irc-botcore/logger"
	"github.com/klppl/irc-botcore/ratelimit"
	"github.com/klppl/irc-botcore/sendqueue"
)

// Dialer opens the transport for a connection attempt. The default dials
// TCP, wrapping with TLS (default trust store, ServerName=cfg.Server) when
// cfg.UseTLS is set.
type Dialer func(ctx context.Context, cfg Config) (net.Conn, error)

func defaultDialer(ctx context.Context, cfg Config) (net.Conn, error) {
	d := net.Dialer{}
	conn, err := d.DialContext(ctx, "tcp", cfg.addr())
	if err != nil {
		return nil, err
	}
	if !cfg.UseTLS {
		return conn, nil
	}
	tlsConn := tls.Client(conn, &tls.Config{ServerName: cfg.Server})
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return tlsConn, nil
}

// Engine is the connection engine and event router of spec.md §4.4-§4.6.
type Engine struct {
	cfg      Config
	state    *state
	sendQ    *sendqueue.Queue
	limiter  *ratelimit.Limiter
	registry *handler.Registry
	idStore  *identity.Store
	cfgStore *config.Store
	log      logger.Logger
	dial     Dialer

	moduleSource ModuleFor

	connMu sync.RWMutex
	conn   net.Conn

	registered atomic.Bool
	stopping   atomic.Bool
}

// NewEngine builds an Engine ready to Run.
func NewEngine(cfg Config, registry *handler.Registry, idStore *identity.Store, cfgStore *config.Store, log logger.Logger) *Engine {
	if log == nil {
		log = logger.Discard()
	}
	if cfg.QueueMax <= 0 {
		cfg.QueueMax = sendqueue.DefaultMax
	}
	return &Engine{
		cfg:      cfg,
		state:    newState(cfg.Nickname),
		sendQ:    sendqueue.New(cfg.QueueMax, log),
		limiter:  ratelimit.NewLimiter(cfg.RateCount, cfg.RateWindow, cfg.TargetRateCount, cfg.TargetRateWindow),
		registry: registry,
		idStore:  idStore,
		cfgStore: cfgStore,
		log:      log,
		dial:     defaultDialer,
	}
}

// Run drives the Idle→Dialing→Registering→Connected→Closing state machine
// until ctx is cancelled, at which point it performs one orderly stop.
func (e *Engine) Run(ctx context.Context) error {
	backoff := e.cfg.ReconnectDelay
	if backoff < time.Second {
		backoff = time.Second
	}

	for {
		if ctx.Err() != nil {
			return nil
		}

		connCtx, cancel := context.WithCancel(ctx)
		err := e.runOnce(connCtx)
		cancel()

		if ctx.Err() != nil {
			return nil
		}
		// A session that reached 001 counts as a successful connection and
		// resets the backoff, even though it later ended with an error.
		if err == nil || e.registered.Load() {
			backoff = e.cfg.ReconnectDelay
			if backoff < time.Second {
				backoff = time.Second
			}
		}
		if err == nil {
			continue
		}

		e.log.WithError(err).Warnf("connection attempt failed, retrying in %s", backoff)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil
		}
		backoff *= 2
		if backoff > e.cfg.MaxReconnectDelay && e.cfg.MaxReconnectDelay > 0 {
			backoff = e.cfg.MaxReconnectDelay
		}
	}
}

// runOnce performs Dialing → Registering → Connected → Closing for one
// connection attempt. It returns nil only once the caller's context has
// been cancelled (an orderly stop); any other return is a failure that
// feeds the backoff in Run.
func (e *Engine) runOnce(ctx context.Context) error {
	conn, err := e.dial(ctx, e.cfg)
	if err != nil {
		return ircerr.Wrap(ircerr.CodeTransportError, err, "dial %s", e.cfg.addr())
	}

	e.connMu.Lock()
	e.conn = conn
	e.connMu.Unlock()
	e.registered.Store(false)
	e.state.setNickname(e.cfg.Nickname)

	defer func() {
		_ = conn.Close()
		e.connMu.Lock()
		e.conn = nil
		e.connMu.Unlock()
		e.state.recordDisconnect()
	}()

	// readerLoop's scanner.Scan() is a blocking socket read with no context
	// awareness: it only returns once the remote server sends data or the
	// connection drops. Closing conn as soon as ctx is cancelled is what
	// actually unblocks it, so shutdown doesn't hang on a silent peer
	// (spec.md §4.4: "cancel reader and writer, close socket").
	watchDone := make(chan struct{})
	defer close(watchDone)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-watchDone:
		}
	}()

	var wg sync.WaitGroup
	writeErrCh := make(chan error, 1)
	readErrCh := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()
		writeErrCh <- e.writerLoop(ctx, conn)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		readErrCh <- e.readerLoop(ctx, conn)
	}()

	if err := e.SendRaw(ctx, "NICK "+e.state.Nickname()); err != nil {
		return err
	}
	if err := e.SendRaw(ctx, "USER "+e.cfg.Username+" 0 * :"+e.cfg.Realname); err != nil {
		return err
	}

	select {
	case err := <-writeErrCh:
		wg.Wait()
		if ctx.Err() != nil {
			return nil
		}
		return err
	case err := <-readErrCh:
		wg.Wait()
		if ctx.Err() != nil {
			return nil
		}
		return err
	case <-ctx.Done():
		wg.Wait()
		return nil
	}
}

func (e *Engine) writerLoop(ctx context.Context, conn net.Conn) error {
	for {
		line, err := e.sendQ.Pop(ctx)
		if err != nil {
			return nil
		}
		if _, err := conn.Write([]byte(line + "\r\n")); err != nil {
			return ircerr.Wrap(ircerr.CodeTransportError, err, "write to %s", e.cfg.addr())
		}
	}
}

func (e *Engine) readerLoop(ctx context.Context, conn net.Conn) error {
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		msg := ircmsg.Parse(line)
		e.handleMessage(ctx, msg)
	}
	if err := scanner.Err(); err != nil {
		return ircerr.Wrap(ircerr.CodeTransportError, err, "read from %s", e.cfg.addr())
	}
	return ircerr.New(ircerr.CodeTransportError, "connection closed by %s", e.cfg.addr())
}
