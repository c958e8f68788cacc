package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenSigner_RoundTrip(t *testing.T) {
	signer := NewTokenSigner("secret")

	token, err := signer.Encode("session-1", time.Now().Add(time.Hour))
	require.NoError(t, err)

	id, err := signer.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "session-1", id)
}

func TestTokenSigner_RejectsForeignKey(t *testing.T) {
	token, err := NewTokenSigner("one").Encode("session-1", time.Now().Add(time.Hour))
	require.NoError(t, err)

	_, err = NewTokenSigner("two").Decode(token)
	assert.Error(t, err)
}

func TestTokenSigner_RejectsExpired(t *testing.T) {
	signer := NewTokenSigner("secret")
	token, err := signer.Encode("session-1", time.Now().Add(-time.Minute))
	require.NoError(t, err)

	_, err = signer.Decode(token)
	assert.Error(t, err)
}

func TestTokenSigner_RejectsGarbage(t *testing.T) {
	_, err := NewTokenSigner("secret").Decode("not-a-token")
	assert.Error(t, err)
}
