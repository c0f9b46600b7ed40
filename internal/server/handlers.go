package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/vfa-khuongdv/driveview/internal/auth"
	"github.com/vfa-khuongdv/driveview/internal/stream"
	"github.com/vfa-khuongdv/driveview/pkg/gdrive"
)

// stateCookie carries the OAuth CSRF state between login and callback.
const stateCookie = "dv_oauth_state"

// secureRequest reports whether the request arrived over HTTPS, directly or
// via a terminating proxy. Cookies minted on such requests carry Secure;
// plain-HTTP local development keeps working without it.
func secureRequest(r *http.Request) bool {
	return r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https"
}

type errorResponse struct {
	Error string `json:"error"`
}

type listResponse struct {
	Files []gdrive.File `json:"files"`
}

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	token, err := s.credential(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	folderID := r.URL.Query().Get("folderId")

	files, err := s.listing.List(r.Context(), folderID, token)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	// Marshal an empty array, not null, when the folder has no viewable
	// children.
	if files == nil {
		files = []gdrive.File{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(listResponse{Files: files}); err != nil {
		s.logger.Error("failed to encode listing", slog.String("error", err.Error()))
	}
}

func (s *Server) handleStreamFile(w http.ResponseWriter, r *http.Request) {
	token, err := s.credential(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	fileID := r.PathValue("fileId")
	rangeHeader := r.Header.Get("Range")

	res, err := s.stream.Serve(r.Context(), fileID, rangeHeader, token)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	for key, values := range res.Header {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}
	w.WriteHeader(res.Status)

	if _, err := w.Write(res.Body); err != nil {
		// The viewer dropped the connection mid-transfer, common on video
		// seeks. Nothing to compensate; the buffer dies with the request.
		s.logger.Debug("client aborted transfer",
			slog.String("file_id", fileID),
			slog.String("error", err.Error()),
		)
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   secureRequest(r),
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, s.auth.AuthURL(state), http.StatusFound)
}

func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	state, err := r.Cookie(stateCookie)
	if err != nil || state.Value == "" || state.Value != r.URL.Query().Get("state") {
		s.writeError(w, r, auth.ErrUnauthenticated)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		s.writeError(w, r, auth.ErrUnauthenticated)
		return
	}

	sessionValue, err := s.auth.Exchange(r.Context(), code)
	if err != nil {
		s.logger.Error("token exchange failed", slog.String("error", err.Error()))
		s.writeError(w, r, auth.ErrUnauthenticated)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secureRequest(r),
	})
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    sessionValue,
		Path:     "/",
		HttpOnly: true,
		Secure:   secureRequest(r),
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(auth.SessionCookie); err == nil {
		if err := s.auth.Logout(cookie.Value); err != nil {
			s.logger.Error("logout failed", slog.String("error", err.Error()))
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secureRequest(r),
	})

	http.Redirect(w, r, "/", http.StatusFound)
}

// writeError maps the core error taxonomy onto stable status codes with
// opaque bodies. Upstream details go to the log, never to the client.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, auth.ErrUnauthenticated), errors.Is(err, gdrive.ErrAuthExpired):
		status = http.StatusUnauthorized
		message = "authentication required"
	case errors.Is(err, gdrive.ErrNotFound):
		status = http.StatusNotFound
		message = "file not found"
	case errors.Is(err, stream.ErrRangeNotSatisfiable):
		status = http.StatusRequestedRangeNotSatisfiable
		message = "requested range not satisfiable"
		var rangeErr *stream.RangeError
		if errors.As(err, &rangeErr) {
			w.Header().Set("Content-Range", "bytes */"+strconv.FormatInt(rangeErr.TotalLength, 10))
		}
	case errors.Is(err, gdrive.ErrUnavailable):
		status = http.StatusBadGateway
		message = "upstream unavailable"
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", status),
			slog.String("error", err.Error()),
		)
	} else {
		s.logger.Info("request rejected",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", status),
		)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(errorResponse{Error: message}); err != nil {
		s.logger.Error("failed to encode error response", slog.String("error", err.Error()))
	}
}
