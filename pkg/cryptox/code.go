package cryptox

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

const (
	codeMin = 100000
	codeMax = 999999
)

// NumericCode returns a six digit one-time code drawn uniformly from
// 100000..999999, so it never needs zero padding.
func NumericCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		return "", fmt.Errorf("cryptox: numeric code: %w", err)
	}
	return fmt.Sprintf("%d", n.Int64()+codeMin), nil
}

// MaskPhone replaces every character except the last four with '*'.
// Inputs of four characters or fewer are fully masked.
func MaskPhone(phone string) string {
	r := []rune(strings.TrimSpace(phone))
	if len(r) <= 4 {
		return strings.Repeat("*", len(r))
	}
	return strings.Repeat("*", len(r)-4) + string(r[len(r)-4:])
}

// MaskEmail keeps the first character of the local part and the domain.
func MaskEmail(email string) string {
	at := strings.LastIndexByte(email, '@')
	if at <= 0 {
		return strings.Repeat("*", len(email))
	}
	return email[:1] + strings.Repeat("*", max(at-1, 1)) + email[at:]
}
