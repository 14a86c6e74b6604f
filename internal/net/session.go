package net

import (
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/l1jgo/petd/internal/core/ecs"
	"go.uber.org/zap"
)

// SessionOptions size a session's queues and timeouts.
type SessionOptions struct {
	InQueueSize  int
	OutQueueSize int
	MaxLineLen   int
	ReadTimeout  time.Duration // idle limit; zero = none
	WriteTimeout time.Duration
	KeepAlive    time.Duration // TCP keep-alive period; negative = off
}

// Session is one console connection. Network I/O runs in dedicated
// goroutines; game state is accessed only from the game loop.
type Session struct {
	ID   uint64
	conn net.Conn

	codec *LineCodec
	opts  SessionOptions

	InQueue  chan string // decoded lines, read by the game loop
	OutQueue chan []byte // encoded lines, read by the writer goroutine

	IP string

	// Game loop only.
	Client ecs.EntityID
	outBuf [][]byte

	closeCh   chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool

	log *zap.Logger
}

func NewSession(conn net.Conn, id uint64, codec *LineCodec, opts SessionOptions, log *zap.Logger) *Session {
	return &Session{
		ID:       id,
		conn:     conn,
		codec:    codec,
		opts:     opts,
		InQueue:  make(chan string, opts.InQueueSize),
		OutQueue: make(chan []byte, opts.OutQueueSize),
		IP:       conn.RemoteAddr().String(),
		closeCh:  make(chan struct{}),
		log:      log.With(zap.Uint64("session", id)),
	}
}

// Start launches the reader and writer goroutines.
func (s *Session) Start() {
	go s.readLoop()
	go s.writeLoop()
}

// Send buffers a line for sending. Nothing is written until FlushOutput.
// Game loop only.
func (s *Session) Send(text string) {
	if s.closed.Load() {
		return
	}
	data, err := s.codec.Encode(text)
	if err != nil {
		s.log.Debug("dropping unencodable line", zap.Error(err))
		return
	}
	s.outBuf = append(s.outBuf, data)
}

// FlushOutput drains the output buffer to OutQueue for the writer goroutine.
// Non-blocking: a full OutQueue disconnects the slow client.
func (s *Session) FlushOutput() {
	for _, data := range s.outBuf {
		select {
		case s.OutQueue <- data:
		default:
			s.log.Warn("output queue full, dropping slow client")
			s.Close()
			s.outBuf = s.outBuf[:0]
			return
		}
	}
	s.outBuf = s.outBuf[:0]
}

// Close shuts the connection down once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		close(s.closeCh)
		s.conn.Close()
	})
}

func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

// readLoop decodes lines from the connection onto InQueue.
func (s *Session) readLoop() {
	defer s.Close()

	sc := NewLineScanner(s.conn, s.opts.MaxLineLen)
	for {
		if s.opts.ReadTimeout > 0 {
			s.conn.SetReadDeadline(time.Now().Add(s.opts.ReadTimeout))
		}
		if !sc.Scan() {
			if err := sc.Err(); err != nil && !s.closed.Load() {
				s.log.Debug("read error", zap.Error(err))
			}
			return
		}
		line, err := s.codec.Decode(sc.Bytes())
		if err != nil {
			s.log.Debug("undecodable line", zap.Error(err))
			continue
		}

		// Block rather than drop: commands must arrive in order.
		select {
		case s.InQueue <- line:
		case <-s.closeCh:
			return
		}
	}
}

// writeLoop writes queued lines to the connection.
func (s *Session) writeLoop() {
	defer s.Close()

	for {
		select {
		case data := <-s.OutQueue:
			if s.opts.WriteTimeout > 0 {
				s.conn.SetWriteDeadline(time.Now().Add(s.opts.WriteTimeout))
			}
			if err := WriteLine(s.conn, data); err != nil {
				if !s.closed.Load() {
					s.log.Debug("write error", zap.Error(err))
				}
				return
			}
		case <-s.closeCh:
			return
		}
	}
}
