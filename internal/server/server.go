// Package server runs the connection loop of the GPIO daemon: it accepts one
// client at a time on a Unix socket, feeds its bytes through the line
// reassembler into the dispatcher, and delivers interrupt notifications to
// the connected client.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sweeney/gpiod/internal/protocol"
	"github.com/sweeney/gpiod/internal/status"
)

// readBufferSize is the size of a single socket read.
const readBufferSize = 128

// Dispatcher executes one request line.
type Dispatcher interface {
	Dispatch(line string) protocol.Response
	DisplayReady() bool
}

// Server is the connection loop. The zero value is not usable; use New.
type Server struct {
	dispatcher  Dispatcher
	idleTimeout time.Duration
	newID       func() string

	// Tracker, if set, receives session and command counters.
	Tracker *status.Tracker

	// Verbose logs every command and notification.
	Verbose bool

	mu     sync.Mutex
	active *client
}

// client is the active connection. All writes go through write so that
// responses and notifications never interleave on the wire.
type client struct {
	id   string
	conn net.Conn

	wmu sync.Mutex
}

func (c *client) write(r protocol.Response) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	_, err := c.conn.Write(r.Bytes())
	return err
}

// New creates a Server. An idleTimeout of zero disables the read timeout,
// so an idle client keeps the connection slot until it disconnects.
func New(d Dispatcher, idleTimeout time.Duration) *Server {
	return &Server{
		dispatcher:  d,
		idleTimeout: idleTimeout,
		newID:       uuid.NewString,
	}
}

// Listen removes a stale socket file at path, binds a Unix stream socket
// there and makes it accessible to every user. The socket file is removed
// when the listener is closed.
func Listen(path string) (net.Listener, error) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("remove stale socket: %w", err)
	}
	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", path, err)
	}
	if err := os.Chmod(path, 0o777); err != nil {
		ln.Close()
		return nil, fmt.Errorf("chmod socket: %w", err)
	}
	return ln, nil
}

// Serve accepts connections on ln one at a time until ctx is cancelled.
// The next connection is accepted only after the current one has closed.
// Serve closes ln before returning. Accept errors other than a closed
// listener are logged and retried.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			ln.Close()
			s.closeActive()
		case <-stop:
		}
	}()
	defer ln.Close()

	var delay time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return fmt.Errorf("accept: %w", err)
			}
			delay = nextAcceptDelay(delay)
			log.Printf("server: accept: %v; retrying in %v", err, delay)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(delay):
			}
			continue
		}
		delay = 0
		s.handle(conn)
	}
}

// Accept failures such as EMFILE are retried with a doubling delay.
const (
	acceptDelayMin = 5 * time.Millisecond
	acceptDelayMax = time.Second
)

func nextAcceptDelay(d time.Duration) time.Duration {
	if d == 0 {
		return acceptDelayMin
	}
	d *= 2
	if d > acceptDelayMax {
		d = acceptDelayMax
	}
	return d
}

// Active returns the session id of the connected client, or "".
func (s *Server) Active() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return ""
	}
	return s.active.id
}

// Notify writes "OK - <name>" to the connected client. Without a client
// the notification is dropped.
func (s *Server) Notify(name string) {
	s.mu.Lock()
	c := s.active
	s.mu.Unlock()

	if c == nil {
		if s.Verbose {
			log.Printf("server: no client, dropped interrupt %s", name)
		}
		return
	}
	if err := c.write(protocol.Notification(name)); err != nil {
		log.Printf("server: session %s: notify %s: %v", c.id, name, err)
		return
	}
	if s.Verbose {
		log.Printf("server: session %s: notified %s", c.id, name)
	}
}

func (s *Server) setActive(c *client) {
	s.mu.Lock()
	s.active = c
	s.mu.Unlock()
}

func (s *Server) closeActive() {
	s.mu.Lock()
	c := s.active
	s.mu.Unlock()
	if c != nil {
		c.conn.Close()
	}
}

// handle runs one session until the peer closes or an I/O error occurs.
func (s *Server) handle(conn net.Conn) {
	c := &client{id: s.newID(), conn: conn}
	s.setActive(c)
	if s.Tracker != nil {
		s.Tracker.SessionOpened(c.id)
	}
	log.Printf("server: session %s opened", c.id)

	defer func() {
		if s.Tracker != nil {
			s.Tracker.SessionClosed()
		}
		s.setActive(nil)
		conn.Close()
	}()

	var r protocol.Reassembler
	buf := make([]byte, readBufferSize)
	for {
		if s.idleTimeout > 0 {
			conn.SetReadDeadline(time.Now().Add(s.idleTimeout))
		}
		n, err := conn.Read(buf)
		for _, line := range r.Feed(buf[:n]) {
			if werr := s.respond(c, line); werr != nil {
				log.Printf("server: session %s: write: %v", c.id, werr)
				return
			}
		}
		if err != nil {
			s.logClose(c, err)
			return
		}
	}
}

func (s *Server) respond(c *client, line string) error {
	resp := s.dispatcher.Dispatch(line)
	if s.Verbose {
		log.Printf("server: session %s: %q -> %q", c.id, line, resp.Lines[0])
	}
	if s.Tracker != nil {
		s.Tracker.CommandHandled(resp.IsError())
		s.Tracker.SetDisplayReady(s.dispatcher.DisplayReady())
	}
	return c.write(resp)
}

func (s *Server) logClose(c *client, err error) {
	var ne net.Error
	switch {
	case errors.Is(err, io.EOF):
		log.Printf("server: session %s closed", c.id)
	case errors.As(err, &ne) && ne.Timeout():
		log.Printf("server: session %s idle for %v, closing", c.id, s.idleTimeout)
	case errors.Is(err, net.ErrClosed):
		log.Printf("server: session %s closed on shutdown", c.id)
	default:
		log.Printf("server: session %s read error: %v", c.id, err)
	}
}
