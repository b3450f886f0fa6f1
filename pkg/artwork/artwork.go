// Package artwork serves custom models over HTTP for clients whose
// User-Agent identifies them as the game client, per spec.md §6's
// "Custom-model HTTP" contract: a minimal static file server answering
// only GET /<filename>, gated on an exact User-Agent match, 401
// otherwise. Standard library net/http only — no pack example or
// ecosystem library offers a header-gated static file server any more
// directly than http.FileServer plus one middleware check.
package artwork

import (
	"net/http"

	"github.com/sirupsen/logrus"
)

// RequiredUserAgent is the exact header value a request must present to
// be served a model file.
const RequiredUserAgent = "SAMP/0.3"

// Server is the gated static file handler over modelsPath.
type Server struct {
	fileServer http.Handler
	logger     *logrus.Entry
}

// NewServer constructs a Server that serves files out of modelsPath.
func NewServer(modelsPath string, logger *logrus.Entry) *Server {
	return &Server{
		fileServer: http.FileServer(http.Dir(modelsPath)),
		logger:     logger,
	}
}

// ServeHTTP satisfies http.Handler: only GET requests whose User-Agent
// is exactly RequiredUserAgent reach the underlying file server;
// everything else gets 401.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet || r.Header.Get("User-Agent") != RequiredUserAgent {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{
				"method":     r.Method,
				"user_agent": r.Header.Get("User-Agent"),
				"path":       r.URL.Path,
			}).Warn("artwork: rejected request with non-GET method or non-matching User-Agent")
		}
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	s.fileServer.ServeHTTP(w, r)
}

// ListenAndServe starts an *http.Server on addr with this Server as its
// handler. It blocks until the server returns an error (including on a
// clean Shutdown, which returns http.ErrServerClosed).
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{Addr: addr, Handler: s}
	return srv.ListenAndServe()
}

// NewHTTPServer returns a *http.Server wired to s, for callers that want
// to control Shutdown themselves (e.g. on process signal).
func (s *Server) NewHTTPServer(addr string) *http.Server {
	return &http.Server{Addr: addr, Handler: s}
}
