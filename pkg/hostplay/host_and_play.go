// Package hostplay provides the dedicated server's bind-port-with-fallback
// and graceful-shutdown lifecycle helper, used by cmd/server before the
// tick loop starts and after a shutdown signal arrives.
package hostplay

import (
	"context"
	"fmt"
	"net"
	"time"
)

// Config controls port selection and shutdown behavior for the listening
// server.
type Config struct {
	// StartPort is the first port to try.
	StartPort int
	// PortRange is the number of ports to try starting at StartPort.
	PortRange int
	// BindAll controls whether to bind to 0.0.0.0 (every interface) or
	// 127.0.0.1 (localhost only).
	BindAll bool
	// ShutdownTimeout bounds how long Shutdown waits for the server's
	// context to complete before giving up.
	ShutdownTimeout time.Duration
}

// DefaultConfig returns the default bind/shutdown configuration.
func DefaultConfig() Config {
	return Config{
		StartPort:       7777,
		PortRange:       10,
		BindAll:         false,
		ShutdownTimeout: 5 * time.Second,
	}
}

// Server manages the listening server's bound port and shutdown context,
// independent of what protocol is actually served on that port.
type Server struct {
	config Config
	ctx    context.Context
	cancel context.CancelFunc
	port   int
	addr   string
}

// New creates a lifecycle manager from config.
func New(config Config) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		config: config,
		ctx:    ctx,
		cancel: cancel,
	}
}

// FindAvailablePort probes config.StartPort through
// StartPort+PortRange-1 in order and returns the first port that accepts
// a TCP listener, along with the bind address used.
func (s *Server) FindAvailablePort() (int, string, error) {
	bindAddr := "127.0.0.1"
	if s.config.BindAll {
		bindAddr = "0.0.0.0"
	}

	for i := 0; i < s.config.PortRange; i++ {
		port := s.config.StartPort + i
		address := fmt.Sprintf("%s:%d", bindAddr, port)

		listener, err := net.Listen("tcp", address)
		if err == nil {
			listener.Close()
			return port, bindAddr, nil
		}
	}

	return 0, "", fmt.Errorf("no available ports in range %d-%d",
		s.config.StartPort, s.config.StartPort+s.config.PortRange-1)
}

// Context returns the server's cancellation context; the tick loop
// selects on it to know when a shutdown has been requested.
func (s *Server) Context() context.Context {
	return s.ctx
}

// Shutdown cancels the server's context and blocks until it observes the
// cancellation complete or ShutdownTimeout elapses.
func (s *Server) Shutdown() error {
	s.cancel()

	select {
	case <-time.After(s.config.ShutdownTimeout):
		return fmt.Errorf("shutdown timeout after %s", s.config.ShutdownTimeout)
	case <-s.ctx.Done():
		time.Sleep(100 * time.Millisecond)
		return nil
	}
}

// Address returns the bound address (e.g. "localhost:7777"), or empty if
// SetPort has not yet been called.
func (s *Server) Address() string {
	if s.port == 0 {
		return ""
	}
	return fmt.Sprintf("localhost:%d", s.port)
}

// SetPort records the port and bind address actually in use, once
// binding has happened.
func (s *Server) SetPort(port int, addr string) {
	s.port = port
	s.addr = addr
}
