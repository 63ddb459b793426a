// Package auth turns a session token into the owner key every record is
// scoped by.
//
// SESSIONS:
// A session is a signed JWT issued by the identity provider (or by the
// GitHub bridge in oauth.go). Besides the standard "sub" claim it carries
// the user's username and primary email:
//
//	{"sub":"github|1234","username":"sakif","email":"s@example.com","iss":"savebox","exp":...}
//
// The owner key is derived from those three claims on every request; it is
// never cached.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "savebox"

// DefaultSessionTTL is how long a session issued by Generate stays valid.
const DefaultSessionTTL = 7 * 24 * time.Hour

// Identity is what a valid session says about the caller.
type Identity struct {
	Subject  string `json:"subject"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}

// Key returns the stable owner key: the username if present, else the
// primary email, else the opaque subject id.
func (i Identity) Key() string {
	switch {
	case i.Username != "":
		return i.Username
	case i.Email != "":
		return i.Email
	default:
		return i.Subject
	}
}

// TokenService signs and verifies session tokens with an HMAC secret.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
// Example: JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret), ttl: DefaultSessionTTL}, nil
}

// claims is the JWT payload: the registered claims plus the two profile
// fields the owner key can be derived from.
type claims struct {
	jwt.RegisteredClaims
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}

// Generate signs a session for id that expires after the default TTL.
func (s *TokenService) Generate(id Identity) (string, error) {
	return s.GenerateWithDuration(id, s.ttl)
}

// GenerateWithDuration signs a session with a custom lifetime.
// Used in tests and by the GitHub bridge.
func (s *TokenService) GenerateWithDuration(id Identity, d time.Duration) (string, error) {
	if id.Subject == "" {
		return "", errors.New("auth: identity has no subject")
	}

	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
		Username: id.Username,
		Email:    id.Email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a session token and returns its Identity.
//
// Only HS256 is accepted, which blocks the "alg: none" downgrade.
func (s *TokenService) Validate(tokenStr string) (Identity, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, fmt.Errorf("auth: token expired")
		}
		return Identity{}, fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return Identity{}, fmt.Errorf("auth: invalid token claims")
	}

	if c.Subject == "" {
		return Identity{}, fmt.Errorf("auth: token has no subject")
	}

	return Identity{Subject: c.Subject, Username: c.Username, Email: c.Email}, nil
}
