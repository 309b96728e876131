package proxy

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

var ErrServerClosed = errors.New("proxy: server closed")

const acceptBackoff = 10 * time.Millisecond

// Server accepts connections and hands each one to its own goroutine.
type Server struct {
	handler *Handler
	log     zerolog.Logger

	mu       sync.Mutex
	listener net.Listener
	closed   atomic.Bool
	conns    sync.WaitGroup
}

func NewServer(h *Handler, log zerolog.Logger) *Server {
	return &Server{handler: h, log: log}
}

// Serve accepts on ln until Shutdown is called, and then returns ErrServerClosed.
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	if s.closed.Load() {
		ln.Close()
		return ErrServerClosed
	}

	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.closed.Load() || errors.Is(err, net.ErrClosed) {
				return ErrServerClosed
			}
			s.log.Error().Err(err).Msg("accept")
			time.Sleep(acceptBackoff)
			continue
		}
		s.conns.Add(1)
		go s.serveConn(conn)
	}
}

func (s *Server) serveConn(conn net.Conn) {
	defer s.conns.Done()
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Str("client", conn.RemoteAddr().String()).Msg("connection handler panicked")
			conn.Close()
		}
	}()
	s.handler.ServeConn(conn)
}

// Shutdown stops accepting and waits for in-flight connections until ctx is
// done. Connections are never interrupted.
func (s *Server) Shutdown(ctx context.Context) error {
	s.closed.Store(true)
	s.mu.Lock()
	if s.listener != nil {
		s.listener.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.conns.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
