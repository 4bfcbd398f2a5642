package webx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"dqx0.com/go/web/internal/obs"
)

const internalErrorResponse = "HTTP/1.0 500 INTERNAL ERROR\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n\r\n" +
	"!!! Internal Error !!!"

// Server dispatches accepted connections against a route table. Each
// connection is a one-shot transaction: parse, :before hook, main
// handler (only if nothing responded yet), :after hook, respond, close.
// There is no keep-alive, no pipelining and no internal timeout; a
// caller needing wall-clock bounds wraps the listener's connections
// with deadlines itself.
type Server struct {
	Web  *Web
	Addr string

	// Limit bounds every request line, header line and buffered body,
	// and sizes the chunk buffer for streamed responses. Default 1024.
	Limit int

	// MaxClients is a soft ceiling on in-flight connections: the count
	// is checked once at accept time, so a burst may briefly overshoot.
	// Connections over the ceiling are closed without a response.
	// Default 10.
	MaxClients int

	Logger obs.Logger
	Meter  obs.Meter

	mu         sync.Mutex
	ln         net.Listener
	cancel     context.CancelFunc
	inShutdown atomic.Bool
	clients    atomic.Int64
	conns      sync.WaitGroup
}

// ListenAndServe listens on Addr (":8080" when empty) and serves.
func (s *Server) ListenAndServe() error {
	addr := s.Addr
	if addr == "" {
		addr = ":8080"
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections on l until Shutdown or Close. The listener
// may already wrap TLS; no handshake happens here.
func (s *Server) Serve(l net.Listener) error {
	ctx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.ln = l
	s.cancel = cancel
	s.mu.Unlock()
	defer l.Close()
	for {
		c, err := l.Accept()
		if err != nil {
			if s.inShutdown.Load() {
				return ErrServerClosed
			}
			return err
		}
		if s.clients.Load() > int64(s.maxClients()) {
			s.meter().Counter("webx.server.rejected", 1)
			_ = c.Close()
			continue
		}
		s.clients.Add(1)
		s.conns.Add(1)
		go func() {
			defer s.conns.Done()
			defer s.clients.Add(-1)
			s.serveConn(ctx, c)
		}()
	}
}

// Shutdown closes the listener, cancels in-flight connection contexts
// and waits for connections to finish or ctx to expire.
func (s *Server) Shutdown(ctx context.Context) error {
	s.closeListener()
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

// Close closes the listener without waiting for connections.
func (s *Server) Close() error {
	s.closeListener()
	return nil
}

func (s *Server) closeListener() {
	s.inShutdown.Store(true)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln != nil {
		_ = s.ln.Close()
	}
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *Server) serveConn(ctx context.Context, c net.Conn) {
	defer c.Close() // release the transport on every path
	start := time.Now()
	id := genID()
	ctx = WithRequestID(ctx, id)
	s.meter().Counter("webx.server.connections", 1)

	f := newFlow(ctx, c, s.limit())
	err := s.run(f)
	if err != nil {
		// Any stage failure short-circuits the normal response.
		_, _ = io.WriteString(f.bw, internalErrorResponse)
		_ = f.bw.Flush()
	} else {
		err = f.respond()
	}
	if err != nil && ctx.Err() == nil && !errors.Is(err, context.Canceled) {
		s.meter().Counter("webx.server.failures", 1)
		s.logger().Logf(obs.Error, "connection failed: %v (request_id=%s remote=%s)",
			err, id, c.RemoteAddr())
	}
	s.meter().Histogram("webx.server.duration_ms",
		float64(time.Since(start).Microseconds())/1000)
}

// run drives one connection through the state machine: parse, :before,
// main handler if nothing has responded yet, :after. Hooks always run;
// handler panics are recovered as ErrHandler.
func (s *Server) run(f *Flow) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", ErrHandler, r)
		}
	}()
	if err := f.parse(); err != nil {
		return err
	}
	if rt := s.web().find(f.Path, MethodBefore); rt != nil {
		if err := invoke(rt, f); err != nil {
			return err
		}
	}
	if !f.Handled() {
		if rt := s.web().find(f.Path, f.Method); rt != nil {
			if err := invoke(rt, f); err != nil {
				return err
			}
		}
	}
	if rt := s.web().find(f.Path, MethodAfter); rt != nil {
		if err := invoke(rt, f); err != nil {
			return err
		}
	}
	return nil
}

func invoke(rt *route, f *Flow) error {
	if err := rt.h(f, rt.args...); err != nil {
		return fmt.Errorf("%w: %v", ErrHandler, err)
	}
	return nil
}

func (s *Server) web() *Web {
	if s.Web != nil {
		return s.Web
	}
	return &Web{}
}

func (s *Server) limit() int {
	if s.Limit > 0 {
		return s.Limit
	}
	return 1024
}

func (s *Server) maxClients() int {
	if s.MaxClients > 0 {
		return s.MaxClients
	}
	return 10
}

func (s *Server) logger() obs.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return obs.NopLogger{}
}

func (s *Server) meter() obs.Meter {
	if s.Meter != nil {
		return s.Meter
	}
	return obs.NopMeter{}
}

// ListenAndServe serves web on addr with the given size limit and soft
// client ceiling (zero values keep the defaults).
func ListenAndServe(web *Web, addr string, limit, maxClients int) error {
	return (&Server{Web: web, Addr: addr, Limit: limit, MaxClients: maxClients}).ListenAndServe()
}
