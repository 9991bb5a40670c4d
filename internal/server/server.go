package server

import (
	"net"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"
	"go.uber.org/zap"

	"odin-cache/internal/cache"
	"odin-cache/internal/metrics"
	"odin-cache/internal/protocol"
)

// connHandle is the bookkeeping the Server keeps per live connection: just
// enough to close it on shutdown and report it in /health. It is entirely
// separate from the Cache's own keyspace map.
type connHandle struct {
	conn *Connection
}

// Server runs the accept loop: bind once, then spawn one handler goroutine
// per accepted connection, all sharing one Cache and one metrics Registry.
type Server struct {
	listener    net.Listener
	store       *cache.Cache
	metrics     *metrics.Registry
	log         *zap.Logger
	shutdown    *Shutdown
	connections *xsync.MapOf[uint64, *connHandle]
	nextID      atomic.Uint64
}

// NewServer wraps an already-bound listener and returns a Server ready to
// Run.
func NewServer(listener net.Listener, store *cache.Cache, registry *metrics.Registry, shutdown *Shutdown, log *zap.Logger) *Server {
	return &Server{
		listener:    listener,
		store:       store,
		metrics:     registry,
		log:         log,
		shutdown:    shutdown,
		connections: xsync.NewMapOf[uint64, *connHandle](),
	}
}

// Run accepts connections until the listener is closed (which Shutdown
// does). Accept errors are logged and the loop continues, except for the
// error produced by a closed listener, which ends Run cleanly.
func (s *Server) Run() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.shutdown.IsShutdown() {
				return
			}
			s.log.Error("accept error", zap.Error(err))
			continue
		}

		id := s.nextID.Add(1)
		done := s.shutdown.Track()
		go func() {
			defer done()
			s.handleConnection(id, conn)
		}()
	}
}

// handleConnection owns one socket end to end: register it, run the
// request loop until end-of-stream, I/O error, decode error or shutdown,
// then unregister and close.
func (s *Server) handleConnection(id uint64, socket net.Conn) {
	conn := NewConnection(socket)
	handle := &connHandle{conn: conn}
	s.connections.Store(id, handle)
	if s.metrics != nil {
		s.metrics.ActiveConnections.Inc()
	}

	defer func() {
		s.connections.Delete(id)
		if s.metrics != nil {
			s.metrics.ActiveConnections.Dec()
		}
		conn.Close()
	}()

	handler := NewHandler(s.store, s.metrics, s.log)

	for {
		if s.shutdown.IsShutdown() {
			return
		}

		req, err := conn.ReadValue()
		if err != nil {
			if err != ErrConnectionClosed {
				s.log.Debug("connection read error", zap.Error(err))
			}
			return
		}

		resp := dispatchSafely(handler, req, s.log)

		if err := conn.WriteValue(resp); err != nil {
			s.log.Debug("connection write error", zap.Error(err))
			return
		}
	}
}

// dispatchSafely recovers a panicking command handler (ECHO with a missing
// argument panics by design — see Handler.Dispatch) so one connection's
// misuse can't take down the others sharing the process; error isolation
// between connections is total.
func dispatchSafely(handler *Handler, req protocol.Value, log *zap.Logger) (resp protocol.Value) {
	defer func() {
		if r := recover(); r != nil {
			log.Debug("recovered panic in command dispatch", zap.Any("panic", r))
			resp = protocol.Err("command failed")
		}
	}()
	return handler.Dispatch(req)
}

// ConnectionCount reports the number of currently registered connections,
// for the /health endpoint.
func (s *Server) ConnectionCount() int {
	return s.connections.Size()
}

// Shutdown stops accepting new connections, broadcasts shutdown to every
// in-flight handler by closing their sockets (unblocking any pending read),
// and waits for them all to finish.
func (s *Server) Shutdown() {
	s.shutdown.Fire()
	_ = s.listener.Close()

	s.connections.Range(func(id uint64, handle *connHandle) bool {
		handle.conn.Close()
		return true
	})

	s.shutdown.Wait()
}
