package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"
)

// ReadHeaderTimeout bounds how long a client may take to send headers.
const ReadHeaderTimeout = 10 * time.Second

// Server wraps http.Server.
type Server struct {
	httpServer *http.Server
}

// New creates a new HTTP server.
func New(addr string, handler http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: ReadHeaderTimeout,
		},
	}
}

// Serve accepts connections on l until Shutdown. TLS is used when both
// files are given.
func (s *Server) Serve(l net.Listener, certFile, keyFile string) error {
	var err error
	if certFile != "" && keyFile != "" {
		err = s.httpServer.ServeTLS(l, certFile, keyFile)
	} else {
		err = s.httpServer.Serve(l)
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
