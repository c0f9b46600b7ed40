package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"

	"github.com/vfa-khuongdv/driveview/internal/database"
)

// ErrUnauthenticated is returned when no valid session credential can be
// produced for a request. Callers must not touch the upstream gateway after
// seeing it.
var ErrUnauthenticated = errors.New("auth: unauthenticated")

// sessionTTL bounds how long a session cookie stays valid; the underlying
// Drive grant is refreshed independently.
const sessionTTL = 24 * time.Hour

// refreshWindow is how close to expiry a token gets before it is refreshed.
const refreshWindow = 5 * time.Minute

// SessionStore is the persistence surface the auth service needs.
type SessionStore interface {
	CreateSession(session *database.Session) error
	GetSession(id string) (*database.Session, error)
	SaveSession(session *database.Session) error
	DeleteSession(id string) error
}

// Service handles OAuth2 authentication against Google and turns session
// cookies into per-request bearer credentials.
type Service struct {
	config *oauth2.Config
	store  SessionStore
	secret []byte
}

// NewService creates a new auth service. The secret signs session cookies
// and must be stable across restarts.
func NewService(clientID, clientSecret, redirectURL string, secret []byte, store SessionStore) *Service {
	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       []string{drive.DriveReadonlyScope},
		Endpoint:     google.Endpoint,
	}

	return &Service{
		config: config,
		store:  store,
		secret: secret,
	}
}

// AuthURL returns the authorization URL for the OAuth2 flow. Offline access
// plus forced consent so Google issues a refresh token every time.
func (s *Service) AuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange trades an authorization code for tokens, persists them as a new
// session and returns the signed cookie value for the browser.
func (s *Service) Exchange(ctx context.Context, authCode string) (string, error) {
	token, err := s.config.Exchange(ctx, authCode)
	if err != nil {
		return "", fmt.Errorf("failed to exchange token: %w", err)
	}

	session := &database.Session{
		ID:           uuid.NewString(),
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
		Expiry:       token.Expiry,
	}

	if err := s.store.CreateSession(session); err != nil {
		return "", fmt.Errorf("failed to save session: %w", err)
	}

	cookie, err := signSession(session.ID, s.secret, sessionTTL)
	if err != nil {
		return "", fmt.Errorf("failed to sign session cookie: %w", err)
	}

	return cookie, nil
}

// Resolve turns a session cookie into a valid bearer token, refreshing and
// re-persisting the grant when it is about to expire. Any failure along the
// way maps to ErrUnauthenticated; the caller sees one taxonomy, not the
// individual causes.
func (s *Service) Resolve(ctx context.Context, cookieValue string) (*oauth2.Token, error) {
	if cookieValue == "" {
		return nil, ErrUnauthenticated
	}

	claims, err := parseSession(cookieValue, s.secret)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	session, err := s.store.GetSession(claims.SessionID)
	if err != nil {
		if errors.Is(err, database.ErrSessionNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	token := &oauth2.Token{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		TokenType:    session.TokenType,
		Expiry:       session.Expiry,
	}

	// Check if token needs refresh
	if token.Expiry.Before(time.Now().Add(refreshWindow)) {
		if token.RefreshToken == "" {
			return nil, ErrUnauthenticated
		}

		newToken, err := s.config.TokenSource(ctx, token).Token()
		if err != nil {
			return nil, ErrUnauthenticated
		}

		// Persist whatever came back. Even an unrotated access token carries
		// a fresh expiry; skipping the save here would leave the stored
		// expiry stale and force a refresh on every following request.
		session.AccessToken = newToken.AccessToken
		if newToken.RefreshToken != "" {
			session.RefreshToken = newToken.RefreshToken
		}
		session.Expiry = newToken.Expiry

		if err := s.store.SaveSession(session); err != nil {
			return nil, fmt.Errorf("failed to save refreshed session: %w", err)
		}

		return newToken, nil
	}

	return token, nil
}

// Logout drops the stored session referenced by the cookie. An unparseable
// cookie is treated as already logged out.
func (s *Service) Logout(cookieValue string) error {
	claims, err := parseSession(cookieValue, s.secret)
	if err != nil {
		return nil
	}
	return s.store.DeleteSession(claims.SessionID)
}
