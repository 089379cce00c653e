package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNoCredential means no token was presented at all.
	ErrNoCredential = errors.New("auth: no credential")
	// ErrInvalidCredential covers malformed, expired and badly signed tokens.
	ErrInvalidCredential = errors.New("auth: invalid credential")
)

type Claims struct {
	UserID  string `json:"id"`
	IsAdmin bool   `json:"isAdmin,omitempty"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies the bearer credentials the HTTP API and the
// websocket handshake share. Verification happens once per connection;
// afterwards the identity rides the connection.
type Tokens struct {
	secret []byte
	ttl    time.Duration
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl}
}

func (t *Tokens) Issue(userID string, isAdmin bool) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:  userID,
		IsAdmin: isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Verify validates the token and returns its claims. An empty token maps to
// ErrNoCredential so callers can distinguish "forgot the header" from
// "presented garbage".
func (t *Tokens) Verify(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrNoCredential
	}
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidCredential
		}
		return t.secret, nil
	})
	if err != nil || !parsed.Valid || claims.UserID == "" {
		return nil, ErrInvalidCredential
	}
	return claims, nil
}
