package signing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSigner(t *testing.T) {
	s := NewSigner([]byte("topsecret"))
	sig := s.Sign("session123", 1700000000)
	require.NotEmpty(t, sig)

	assert.True(t, s.Validate("session123", "1700000000", sig))
	assert.False(t, s.Validate("wrong", "1700000000", sig), "wrong id")
	assert.False(t, s.Validate("session123", "42", sig), "wrong expiry")
	assert.False(t, s.Validate("session123", "soon", sig), "unparsable expiry")
	assert.False(t, NewSigner([]byte("other")).Validate("session123", "1700000000", sig), "wrong key")
}

func TestToken(t *testing.T) {
	s := NewSigner([]byte("topsecret"))
	now := time.Unix(1700000000, 0)
	token := s.Token("abc-123", now.Add(time.Hour))

	id, err := s.Parse(token, now)
	require.NoError(t, err)
	assert.Equal(t, "abc-123", id)

	_, err = s.Parse(token, now.Add(2*time.Hour))
	assert.ErrorIs(t, err, ErrExpired)

	_, err = s.Parse("abc-123."+token[len("abc-123."):]+"0", now)
	assert.ErrorIs(t, err, ErrBadSignature)

	_, err = s.Parse("garbage", now)
	assert.ErrorIs(t, err, ErrMalformed)
	_, err = s.Parse("", now)
	assert.ErrorIs(t, err, ErrMalformed)
}
