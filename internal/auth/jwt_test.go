package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-jwt-secret-key-for-unit-tests"

func newTestService(t *testing.T) *TokenService {
	t.Helper()

	svc, err := NewTokenService(testSecret, time.Hour)
	require.NoError(t, err)

	return svc
}

func TestNewTokenServiceRequiresSecret(t *testing.T) {
	_, err := NewTokenService("", time.Hour)
	assert.Error(t, err)

	_, err = NewTokenService(testSecret, 0)
	assert.Error(t, err)
}

func TestGenerateAndVerify(t *testing.T) {
	svc := newTestService(t)

	token, err := svc.Generate("6f1c7a52-3d4e-4b8a-9f0e-1a2b3c4d5e6f", "alice@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "6f1c7a52-3d4e-4b8a-9f0e-1a2b3c4d5e6f", claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "docket", claims.Issuer)
	assert.InDelta(t, time.Hour.Seconds(), svc.Remaining(claims).Seconds(), 5)
}

func TestVerifyTamperedToken(t *testing.T) {
	svc := newTestService(t)

	token, err := svc.Generate("user-1", "a@example.com")
	require.NoError(t, err)

	_, err = svc.Verify(token + "tampered")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyWrongSecret(t *testing.T) {
	svc := newTestService(t)

	other, err := NewTokenService("another-secret", time.Hour)
	require.NoError(t, err)

	token, err := other.Generate("user-1", "a@example.com")
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyExpiredToken(t *testing.T) {
	svc := newTestService(t)
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := svc.Generate("user-1", "a@example.com")
	require.NoError(t, err)

	svc.now = time.Now

	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsOtherAlgorithms(t *testing.T) {
	svc := newTestService(t)

	claims := Claims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRequiresUserID(t *testing.T) {
	svc := newTestService(t)

	token, err := svc.Generate("", "a@example.com")
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
