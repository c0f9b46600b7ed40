package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionCookie is the name of the browser cookie carrying the signed
// session reference.
const SessionCookie = "dv_session"

// sessionClaims defines the data stored inside the session JWT. Only the
// session id crosses the browser boundary; tokens stay server-side.
type sessionClaims struct {
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

// signSession creates a signed JWT referencing a stored session.
func signSession(sessionID string, key []byte, ttl time.Duration) (string, error) {
	claims := &sessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "driveview",
		},
	}

	// HS256 (HMAC with SHA256), signed with the server's session secret.
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(key)
}

// parseSession validates the signature and expiration of a session JWT and
// returns its claims.
func parseSession(tokenString string, key []byte) (*sessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &sessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return key, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*sessionClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrSignatureInvalid
}
