package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"tillbook/internal/core/apperror"
)

func newTestService(t *testing.T, accessKey string) *Service {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(accessKey), bcrypt.MinCost)
	require.NoError(t, err)
	return NewService(Config{
		Secret:        "test-secret",
		AccessKeyHash: string(hash),
		TokenTTL:      time.Hour,
	})
}

func TestLoginAndValidate(t *testing.T) {
	service := newTestService(t, "till-key")

	token, expiresAt, err := service.Login("till-key")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "operator", claims.Subject)
}

func TestLoginWrongKey(t *testing.T) {
	service := newTestService(t, "till-key")

	_, _, err := service.Login("wrong-key")
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeUnauthorized))
}

func TestValidateRejectsForeignToken(t *testing.T) {
	issuer := newTestService(t, "till-key")
	verifier := NewService(Config{
		Secret:        "other-secret",
		AccessKeyHash: "ignored",
		TokenTTL:      time.Hour,
	})

	token, _, err := issuer.Login("till-key")
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeUnauthorized))

	_, err = issuer.ValidateToken("not-a-token")
	assert.Error(t, err)
}
