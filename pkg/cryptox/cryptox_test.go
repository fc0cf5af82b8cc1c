package cryptox_test

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/aussiebroadwan/campus/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	cryptox.SetPepper("test-pepper")
	os.Exit(m.Run())
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := cryptox.HashPassword("correct horse")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"))
	require.True(t, cryptox.LooksLikePasswordHash(hash))

	require.NoError(t, cryptox.VerifyPassword("correct horse", hash))
	require.ErrorIs(t, cryptox.VerifyPassword("battery staple", hash), cryptox.ErrPasswordMismatch)
}

func TestHashesAreSalted(t *testing.T) {
	a, err := cryptox.HashPassword("same")
	require.NoError(t, err)
	b, err := cryptox.HashPassword("same")
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestVerifyPasswordMalformed(t *testing.T) {
	for _, in := range []string{
		"",
		"plaintext",
		"$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=18$m=1,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$garbage$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=1,t=1,p=1$!!!$aGFzaA",
	} {
		require.ErrorIs(t, cryptox.VerifyPassword("x", in), cryptox.ErrMalformedHash, "input %q", in)
	}
}

func TestPepperChangesHash(t *testing.T) {
	hash, err := cryptox.HashPassword("pw")
	require.NoError(t, err)

	cryptox.SetPepper("other")
	t.Cleanup(func() { cryptox.SetPepper("test-pepper") })
	require.ErrorIs(t, cryptox.VerifyPassword("pw", hash), cryptox.ErrPasswordMismatch)
}

func TestLoadPepperPersists(t *testing.T) {
	t.Cleanup(func() { cryptox.SetPepper("test-pepper") })
	file := filepath.Join(t.TempDir(), "nested", "pepper")

	require.NoError(t, cryptox.LoadPepper(file))
	first := cryptox.Pepper()
	require.NotEmpty(t, first)

	cryptox.SetPepper("")
	require.NoError(t, cryptox.LoadPepper(file))
	require.Equal(t, first, cryptox.Pepper())
}

func TestNumericCodeRange(t *testing.T) {
	for range 500 {
		code, err := cryptox.NumericCode()
		require.NoError(t, err)
		require.Len(t, code, 6)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		require.GreaterOrEqual(t, n, 100000)
		require.LessOrEqual(t, n, 999999)
	}
}

func TestMaskPhone(t *testing.T) {
	require.Equal(t, "********4567", cryptox.MaskPhone("+15551234567"))
	require.Equal(t, "***", cryptox.MaskPhone("123"))
	require.Equal(t, "", cryptox.MaskPhone(""))
}

func TestMaskEmail(t *testing.T) {
	require.Equal(t, "j***@x.edu", cryptox.MaskEmail("jane@x.edu"))
	require.Equal(t, "a*@x.edu", cryptox.MaskEmail("a@x.edu"))
}

func TestTokens(t *testing.T) {
	tok, err := cryptox.GenerateToken(cryptox.TokenSize256)
	require.NoError(t, err)
	require.Len(t, tok, 43)

	_, err = cryptox.GenerateToken(0)
	require.Error(t, err)

	require.Equal(t, cryptox.FingerprintToken("123456"), cryptox.FingerprintToken("123456"))
	require.NotEqual(t, cryptox.FingerprintToken("123456"), cryptox.FingerprintToken("123457"))
}
