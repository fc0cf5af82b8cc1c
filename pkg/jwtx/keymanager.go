package jwtx

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"
)

// KeyManager owns an in-memory pool of Ed25519 signing keys and the KeySet
// that publishes their public halves. Keys live only for the process
// lifetime so every restart invalidates outstanding tokens.
type KeyManager struct {
	Verifier Verifier
	KeySet   *KeySet

	signers []Signer
}

type KeyManagerOptions struct {
	Issuer string
	// NumKeys is clamped to 1..10, default 3.
	NumKeys int
	// Leeway absorbs clock skew on exp/nbf checks.
	Leeway time.Duration
}

func NewKeyManager(opts KeyManagerOptions) (*KeyManager, error) {
	if opts.Issuer == "" {
		return nil, errors.New("jwtx: issuer is required")
	}
	n := opts.NumKeys
	if n <= 0 {
		n = 3
	}
	n = min(n, 10)

	ks := NewKeySet()
	signers := make([]Signer, 0, n)
	for i := range n {
		s, err := GenerateEdDSASigner()
		if err != nil {
			return nil, fmt.Errorf("jwtx: signer %d: %w", i+1, err)
		}
		if err := ks.Add(s.PublicJWK()); err != nil {
			return nil, fmt.Errorf("jwtx: signer %d: %w", i+1, err)
		}
		signers = append(signers, s)
	}

	return &KeyManager{
		Verifier: NewEdDSAVerifier(ks, opts.Issuer, opts.Leeway),
		KeySet:   ks,
		signers:  signers,
	}, nil
}

// Sign signs c with a randomly picked key from the pool.
func (m *KeyManager) Sign(c Claims) (string, error) {
	if len(m.signers) == 0 {
		return "", errors.New("jwtx: no signing keys")
	}
	return m.signers[rand.IntN(len(m.signers))].Sign(c) // #nosec G404 - key selection, not secrecy
}

// NumKeys returns the pool size.
func (m *KeyManager) NumKeys() int { return len(m.signers) }
