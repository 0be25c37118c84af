package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestGenerateSixDigits(t *testing.T) {
	ci := NewCodeIssuer(bcrypt.MinCost)
	for i := 0; i < 200; i++ {
		code, err := ci.Generate()
		require.NoError(t, err)
		require.Len(t, code, 6)
		require.GreaterOrEqual(t, code, "100000")
		require.LessOrEqual(t, code, "999999")
	}
}

func TestHashVerifyRoundTrip(t *testing.T) {
	ci := NewCodeIssuer(bcrypt.MinCost)
	code, err := ci.Generate()
	require.NoError(t, err)

	hash, err := ci.Hash(code)
	require.NoError(t, err)
	require.NotEqual(t, code, hash, "plaintext must never be stored")

	assert.True(t, ci.Verify(hash, code))
	assert.False(t, ci.Verify(hash, "000000"))
	assert.False(t, ci.Verify("not-a-hash", code))
}

func TestNewCodeIssuerClampsCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewCodeIssuer(99).Cost)
	assert.Equal(t, bcrypt.DefaultCost, NewCodeIssuer(-1).Cost)
	assert.Equal(t, bcrypt.MinCost, NewCodeIssuer(bcrypt.MinCost).Cost)
}
