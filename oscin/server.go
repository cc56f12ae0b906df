package oscin

import (
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync"

	"github.com/hypebeast/go-osc/osc"
)

// Handler receives one decoded message on the receive goroutine.
type Handler func(msg *osc.Message)

type serverConfig struct {
	logger *slog.Logger
}

// Option configures a Server.
type Option func(*serverConfig) error

// WithLogger routes server lifecycle and decode warnings to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *serverConfig) error {
		if logger == nil {
			return fmt.Errorf("oscin logger must not be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// Server is one owned OSC receive socket. Messages are routed to the
// handlers subscribed to their exact address, then to every wildcard
// handler. Bundles are unpacked recursively and dispatched immediately,
// ignoring timetags.
type Server struct {
	logger *slog.Logger

	mu       sync.Mutex
	exact    map[string][]Handler
	wildcard []Handler
	active   bool
	addr     string

	conn net.PacketConn
	srv  *osc.Server
	done chan struct{}
	wg   sync.WaitGroup
}

// Open binds a UDP listen address such as "0.0.0.0:9000". A bind
// failure is not an error: the returned Server is inactive and
// subscribers never fire. The error return covers option misuse only.
func Open(addr string, opts ...Option) (*Server, error) {
	cfg := serverConfig{logger: slog.Default()}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	s := &Server{
		logger: cfg.logger,
		exact:  make(map[string][]Handler),
		done:   make(chan struct{}),
	}

	conn, err := net.ListenPacket("udp", addr)
	if err != nil {
		s.logger.Warn("osc listen failed, input disabled", "addr", addr, "error", err)
		return s, nil
	}
	s.conn = conn
	s.addr = conn.LocalAddr().String()
	s.srv = &osc.Server{Addr: s.addr, Dispatcher: s}
	s.active = true

	s.wg.Add(1)
	go s.serve()
	s.logger.Info("osc input listening", "addr", s.addr)
	return s, nil
}

func (s *Server) serve() {
	defer s.wg.Done()
	err := s.srv.Serve(s.conn)
	select {
	case <-s.done:
		// Closed by the owner; the read error is expected.
	default:
		if err != nil {
			s.logger.Warn("osc server stopped", "addr", s.addr, "error", err)
		}
	}
}

// Subscribe registers a handler for one exact address.
func (s *Server) Subscribe(addr string, h Handler) error {
	if h == nil {
		return fmt.Errorf("osc handler must not be nil")
	}
	if !strings.HasPrefix(addr, "/") {
		return fmt.Errorf("osc address must start with '/': %q", addr)
	}
	s.mu.Lock()
	s.exact[addr] = append(s.exact[addr], h)
	s.mu.Unlock()
	return nil
}

// SubscribeAll registers a handler for every incoming message. Wildcard
// handlers run after the address handlers.
func (s *Server) SubscribeAll(h Handler) {
	if h == nil {
		return
	}
	s.mu.Lock()
	s.wildcard = append(s.wildcard, h)
	s.mu.Unlock()
}

// Active reports whether the socket is bound and serving.
func (s *Server) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Addr returns the bound address, or "" when inactive.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Dispatch routes one decoded packet. It satisfies osc.Dispatcher and
// is also the seam tests use to inject packets without a socket.
func (s *Server) Dispatch(packet osc.Packet) {
	switch p := packet.(type) {
	case *osc.Message:
		s.route(p)
	case *osc.Bundle:
		for _, msg := range p.Messages {
			s.route(msg)
		}
		for _, nested := range p.Bundles {
			s.Dispatch(nested)
		}
	}
}

func (s *Server) route(msg *osc.Message) {
	if msg == nil {
		return
	}
	s.mu.Lock()
	handlers := make([]Handler, 0, len(s.exact[msg.Address])+len(s.wildcard))
	handlers = append(handlers, s.exact[msg.Address]...)
	handlers = append(handlers, s.wildcard...)
	s.mu.Unlock()
	for _, h := range handlers {
		h(msg)
	}
}

// Close releases the socket and waits for the serve goroutine. Safe on
// an inactive server and safe to call more than once.
func (s *Server) Close() error {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return nil
	}
	s.active = false
	s.mu.Unlock()

	close(s.done)
	err := s.conn.Close()
	s.wg.Wait()
	s.logger.Info("osc input closed", "addr", s.addr)
	return err
}
