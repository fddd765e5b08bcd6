package chat

import (
	"log/slog"
	"net"
)

// Server owns the listener, the registry and the router. One goroutine
// per accepted connection; handlers share state only through the
// registry.
type Server struct {
	cfg      Config
	logger   *slog.Logger
	reg      *Registry
	router   *Router
	listener net.Listener
}

func NewServer(cfg Config, sink NotificationSink, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	reg := NewRegistry(cfg.MaxClients, logger)
	return &Server{
		cfg:    cfg,
		logger: logger,
		reg:    reg,
		router: NewRouter(reg, sink, logger),
	}
}

func (s *Server) Registry() *Registry { return s.reg }
func (s *Server) Router() *Router     { return s.router }

// Addr returns the bound listen address, useful when cfg.Addr used :0.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	s.listener = ln

	go s.acceptLoop(ln)

	s.logger.Info("server started", "addr", ln.Addr().String())
	return nil
}

// Stop closes the listener so no new connections arrive, then tears down
// the remaining sessions. Handlers notice their closed connections and
// drain on their own.
func (s *Server) Stop() {
	s.logger.Info("shutting down")

	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.reg.CloseAll()

	s.logger.Info("shutdown complete")
}

func (s *Server) acceptLoop(ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			// Closed listener lands here; that's the normal exit.
			return
		}

		s.logger.Info("client connected", "addr", conn.RemoteAddr().String())
		go HandleConn(conn, s.reg, s.router, s.cfg, s.logger)
	}
}
