package service

import (
	"fmt"
	"time"

	"github.com/aussiebroadwan/campus/internal/campus/domain"
	"github.com/aussiebroadwan/campus/pkg/jwtx"
)

const (
	DefaultSessionTTL = time.Hour
	DefaultPendingTTL = 5 * time.Minute
)

// TokenSigner signs claims. *jwtx.KeyManager satisfies it.
type TokenSigner interface {
	Sign(jwtx.Claims) (string, error)
}

// SessionIssuer mints and checks the two token classes: full sessions and
// pending second factor tokens.
type SessionIssuer struct {
	Signer     TokenSigner
	Verifier   jwtx.Verifier
	Issuer     string
	SessionTTL time.Duration
	PendingTTL time.Duration
	Now        func() time.Time
}

// Token is a minted bearer token.
type Token struct {
	Value     string    `json:"token"`
	Use       string    `json:"token_use"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *SessionIssuer) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// IssueSession mints a full session token for id. Role and programs are
// copied from id as it is right now.
func (s *SessionIssuer) IssueSession(id domain.Identity) (Token, error) {
	ttl := s.SessionTTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	c := jwtx.NewClaims(id.ID, jwtx.UseSession, s.Issuer, ttl, s.now())
	c.Role = string(id.Role)
	c.Programs = id.Programs
	return s.sign(c)
}

// IssuePending mints a token that only proves the password step for id.
func (s *SessionIssuer) IssuePending(id domain.Identity) (Token, error) {
	ttl := s.PendingTTL
	if ttl <= 0 {
		ttl = DefaultPendingTTL
	}
	c := jwtx.NewClaims(id.ID, jwtx.UsePending2FA, s.Issuer, ttl, s.now())
	c.Method = string(id.TwoFactor.Method)
	return s.sign(c)
}

func (s *SessionIssuer) sign(c jwtx.Claims) (Token, error) {
	raw, err := s.Signer.Sign(c)
	if err != nil {
		return Token{}, fmt.Errorf("sign %s token: %w", c.Use, err)
	}
	return Token{Value: raw, Use: string(c.Use), ExpiresAt: c.ExpiresAt.Time}, nil
}

// Verify checks signature, issuer and expiry of any token class. Callers
// must inspect the token use themselves.
func (s *SessionIssuer) Verify(raw string) (jwtx.Claims, error) {
	if raw == "" {
		return jwtx.Claims{}, ErrInvalidToken
	}
	c, err := s.Verifier.Verify(raw)
	if err != nil {
		return jwtx.Claims{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if c.Subject == "" {
		return jwtx.Claims{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return c, nil
}

// VerifySession accepts full session tokens only.
func (s *SessionIssuer) VerifySession(raw string) (jwtx.Claims, error) {
	c, err := s.Verify(raw)
	if err != nil {
		return jwtx.Claims{}, err
	}
	if !c.IsSession() {
		return jwtx.Claims{}, fmt.Errorf("%w: not a session token", ErrInvalidToken)
	}
	return c, nil
}

// VerifyPending accepts pending second factor tokens only.
func (s *SessionIssuer) VerifyPending(raw string) (jwtx.Claims, error) {
	c, err := s.Verify(raw)
	if err != nil {
		return jwtx.Claims{}, err
	}
	if !c.IsPending2FA() {
		return jwtx.Claims{}, fmt.Errorf("%w: not a two-factor pending token", ErrInvalidToken)
	}
	return c, nil
}
