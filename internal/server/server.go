// Package server exposes the viewer's HTTP surface: folder listings, the
// byte-range streaming endpoint and the OAuth sign-in flow around them.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/vfa-khuongdv/driveview/internal/auth"
	"github.com/vfa-khuongdv/driveview/internal/stream"
	"github.com/vfa-khuongdv/driveview/pkg/gdrive"
)

// CredentialResolver produces per-request bearer credentials from session
// cookies and drives the OAuth sign-in flow.
type CredentialResolver interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, authCode string) (string, error)
	Resolve(ctx context.Context, cookieValue string) (*oauth2.Token, error)
	Logout(cookieValue string) error
}

// Lister returns the viewable children of a folder.
type Lister interface {
	List(ctx context.Context, folderID string, token *oauth2.Token) ([]gdrive.File, error)
}

// Streamer serves a single file honoring an optional Range header.
type Streamer interface {
	Serve(ctx context.Context, fileID, rangeHeader string, token *oauth2.Token) (*stream.Response, error)
}

// Server wires the core services to their HTTP routes.
type Server struct {
	auth    CredentialResolver
	listing Lister
	stream  Streamer
	logger  *slog.Logger

	httpServer *http.Server
}

// New creates a new server listening on addr once Start is called.
func New(addr string, authService CredentialResolver, listingService Lister, streamService Streamer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		auth:    authService,
		listing: listingService,
		stream:  streamService,
		logger:  logger,
	}

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Handler returns the route table. Exposed separately so tests can drive it
// through httptest without binding a port.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /files", s.handleListFiles)
	mux.HandleFunc("GET /files/{fileId}/stream", s.handleStreamFile)

	mux.HandleFunc("GET /auth/login", s.handleLogin)
	mux.HandleFunc("GET /auth/callback", s.handleCallback)
	mux.HandleFunc("GET /auth/logout", s.handleLogout)

	mux.HandleFunc("GET /healthz", s.handleHealth)

	return mux
}

// Start begins serving and blocks until the listener fails or Shutdown is
// called.
func (s *Server) Start() error {
	s.logger.Info("http server listening", slog.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// credential resolves the request's session cookie into a bearer token.
// A missing cookie short-circuits to ErrUnauthenticated without touching
// the session store.
func (s *Server) credential(r *http.Request) (*oauth2.Token, error) {
	cookie, err := r.Cookie(auth.SessionCookie)
	if err != nil {
		return nil, auth.ErrUnauthenticated
	}
	return s.auth.Resolve(r.Context(), cookie.Value)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
