package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAuthServiceRegisterAndLogin(t *testing.T) {
	s := newStores()
	svc := NewAuthService(s.users, "secret", time.Hour)
	ctx := context.Background()

	user, err := svc.Register(ctx, "Ada", "Ada@Example.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Empty(t, user.PasswordHash)

	_, err = svc.Register(ctx, "Ada again", "ada@example.com", "another-pass")
	assert.ErrorIs(t, err, ErrUserAlreadyExists)

	_, _, err = svc.Login(ctx, "ada@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
	_, _, err = svc.Login(ctx, "nobody@example.com", "correct-horse")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)

	token, loggedIn, err := svc.Login(ctx, "ADA@example.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	userID, err := svc.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)

	me, err := svc.GetUser(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", me.Name)
}

func TestAuthServiceRegisterValidation(t *testing.T) {
	svc := NewAuthService(newStores().users, "secret", time.Hour)
	ctx := context.Background()

	_, err := svc.Register(ctx, "", "a@example.com", "long-enough")
	assert.ErrorIs(t, err, ErrValidationFailed)
	_, err = svc.Register(ctx, "A", "not-an-email", "long-enough")
	assert.ErrorIs(t, err, ErrValidationFailed)
	_, err = svc.Register(ctx, "A", "a@example.com", "short")
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestAuthServiceVerifyToken(t *testing.T) {
	svc := NewAuthService(newStores().users, "secret", time.Hour)
	userID := primitive.NewObjectID()

	sign := func(secret string, method jwt.SigningMethod, expires time.Time) string {
		token := jwt.NewWithClaims(method, &jwtClaims{
			UserID:           userID.Hex(),
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(expires)},
		})
		signed, err := token.SignedString([]byte(secret))
		require.NoError(t, err)
		return signed
	}

	got, err := svc.VerifyToken(sign("secret", jwt.SigningMethodHS256, time.Now().Add(time.Minute)))
	require.NoError(t, err)
	assert.Equal(t, userID, got)

	_, err = svc.VerifyToken(sign("other", jwt.SigningMethodHS256, time.Now().Add(time.Minute)))
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = svc.VerifyToken(sign("secret", jwt.SigningMethodHS256, time.Now().Add(-time.Minute)))
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = svc.VerifyToken("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewAuthServicePanicsWithoutSecret(t *testing.T) {
	assert.Panics(t, func() { NewAuthService(newStores().users, "", time.Hour) })
}
