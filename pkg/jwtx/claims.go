package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenUse separates the token classes minted by the service. A verifier
// hands back any well signed token, callers decide which use they accept.
type TokenUse string

const (
	// UseSession marks a fully authenticated session token.
	UseSession TokenUse = "session"
	// UsePending2FA marks a token that proves the password step only. It
	// is accepted by the second factor login endpoint and nothing else.
	UsePending2FA TokenUse = "2fa_pending"
)

// Claims carried by every token the service issues.
type Claims struct {
	jwt.RegisteredClaims

	Use TokenUse `json:"token_use"`

	// Role and Programs mirror the identity at mint time. A role change
	// does not revoke tokens already handed out.
	Role     string   `json:"role,omitempty"`
	Programs []string `json:"programs,omitempty"`

	// Method is the second factor the pending token is waiting on.
	Method string `json:"mfa_method,omitempty"`
}

// NewClaims builds claims for subject valid from now for ttl.
func NewClaims(subject string, use TokenUse, issuer string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Use: use,
	}
}

// IsSession reports whether c is a full session token.
func (c Claims) IsSession() bool { return c.Use == UseSession }

// IsPending2FA reports whether c only proves the password step.
func (c Claims) IsPending2FA() bool { return c.Use == UsePending2FA }

// NewJTI returns a random URL safe token id.
func NewJTI() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}
