package authz

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
)

const tokenName = "noticeboard-token"

// ErrNoToken is returned by Parse for an empty token.
var ErrNoToken = errors.New("no token")

// Tokens issues and verifies signed, encrypted bearer tokens.
type Tokens struct {
	codec *securecookie.SecureCookie
}

// NewTokens derives signing and encryption keys from secret.
// A zero ttl disables expiry.
func NewTokens(secret string, ttl time.Duration) (*Tokens, error) {
	if len(secret) < 16 {
		return nil, fmt.Errorf("token secret must be at least 16 characters")
	}
	hashKey := sha256.Sum256([]byte("hash:" + secret))
	blockKey := sha256.Sum256([]byte("block:" + secret))

	codec := securecookie.New(hashKey[:], blockKey[:])
	codec.SetSerializer(securecookie.JSONEncoder{})
	codec.MaxAge(int(ttl / time.Second))
	return &Tokens{codec: codec}, nil
}

// Issue returns a token identifying c.
func (t *Tokens) Issue(c Caller) (string, error) {
	token, err := t.codec.Encode(tokenName, c)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}
	return token, nil
}

// Parse verifies token and returns the caller it identifies.
func (t *Tokens) Parse(token string) (*Caller, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrNoToken
	}
	var c Caller
	if err := t.codec.Decode(tokenName, token, &c); err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if c.ID == "" {
		return nil, errors.New("invalid token: missing subject")
	}
	return &c, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) string {
	const prefix = "bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
