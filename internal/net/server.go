package net

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const (
	minAcceptBackoff = 5 * time.Millisecond
	maxAcceptBackoff = time.Second
)

// Server accepts console connections and hands the resulting sessions to
// the game loop. Admitted and reaped sessions cross over on buffered
// channels; the loop never blocks on the network.
type Server struct {
	listener net.Listener
	nextID   atomic.Uint64
	admitted chan *Session
	reaped   chan uint64
	codec    *LineCodec
	opts     SessionOptions
	log      *zap.Logger
	stopped  chan struct{}
}

// NewServer listens on bindAddr. opts.KeepAlive sets TCP keep-alive on
// every accepted connection (zero = system default, negative = off).
func NewServer(bindAddr string, codec *LineCodec, opts SessionOptions, log *zap.Logger) (*Server, error) {
	lc := net.ListenConfig{KeepAlive: opts.KeepAlive}
	ln, err := lc.Listen(context.Background(), "tcp", bindAddr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: ln,
		admitted: make(chan *Session, 64),
		reaped:   make(chan uint64, 64),
		codec:    codec,
		opts:     opts,
		log:      log,
		stopped:  make(chan struct{}),
	}, nil
}

// AcceptLoop runs in its own goroutine until Shutdown. Accept errors back
// off exponentially so a file descriptor shortage does not spin the CPU.
func (s *Server) AcceptLoop() {
	backoff := time.Duration(0)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.isStopped() || errors.Is(err, net.ErrClosed) {
				return
			}
			if backoff == 0 {
				backoff = minAcceptBackoff
			} else if backoff *= 2; backoff > maxAcceptBackoff {
				backoff = maxAcceptBackoff
			}
			s.log.Error("accept failed", zap.Error(err), zap.Duration("retry_in", backoff))
			time.Sleep(backoff)
			continue
		}
		backoff = 0
		s.admit(conn)
	}
}

func (s *Server) admit(conn net.Conn) {
	id := s.nextID.Add(1)
	sess := NewSession(conn, id, s.codec, s.opts, s.log)
	sess.Start()

	select {
	case s.admitted <- sess:
		s.log.Info("console connected", zap.Uint64("session", id), zap.String("ip", sess.IP))
	default:
		s.log.Warn("admission queue full, dropping console", zap.String("ip", sess.IP))
		sess.Close()
	}
}

func (s *Server) isStopped() bool {
	select {
	case <-s.stopped:
		return true
	default:
		return false
	}
}

// NewSessions returns the channel of admitted sessions.
func (s *Server) NewSessions() <-chan *Session {
	return s.admitted
}

// NotifyDead queues a reaped session ID. Drops it if the queue is full; the
// store removal it triggers is idempotent.
func (s *Server) NotifyDead(sessionID uint64) {
	select {
	case s.reaped <- sessionID:
	default:
	}
}

// DeadSessions returns the channel of reaped session IDs.
func (s *Server) DeadSessions() <-chan uint64 {
	return s.reaped
}

// Shutdown stops accepting; live sessions are left to the caller.
func (s *Server) Shutdown() {
	close(s.stopped)
	s.listener.Close()
}

// Addr returns the listener's address.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}
