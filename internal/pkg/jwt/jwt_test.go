package jwt

import (
	"context"
	"testing"

	"github.com/go-chi/jwtauth/v5"
	"github.com/mrjaketay/timeApp-sub000/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testActor() user.Actor {
	emp := "emp-1"
	return user.Actor{
		UserID:     "user-1",
		CompanyID:  "company-1",
		Role:       user.RoleAdmin,
		EmployeeID: &emp,
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := NewJWTService("secret", "1h")

	token, expiresAt, err := svc.GenerateAccessToken(testActor())
	require.NoError(t, err)
	assert.NotZero(t, expiresAt)

	verified, err := jwtauth.VerifyToken(svc.JWTAuth(), token)
	require.NoError(t, err)

	ctx := jwtauth.NewContext(context.Background(), verified, nil)
	actor, err := svc.ActorFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "user-1", actor.UserID)
	assert.Equal(t, "company-1", actor.CompanyID)
	assert.Equal(t, user.RoleAdmin, actor.Role)
	require.NotNil(t, actor.EmployeeID)
	assert.Equal(t, "emp-1", *actor.EmployeeID)
}

func TestAccessTokenInvalidExpiration(t *testing.T) {
	svc := NewJWTService("secret", "forever")

	_, _, err := svc.GenerateAccessToken(testActor())
	assert.Error(t, err)
}

func TestSSETokenRoundTrip(t *testing.T) {
	svc := NewJWTService("secret", "1h")

	token, expiresIn, err := svc.GenerateSSEToken(testActor())
	require.NoError(t, err)
	assert.Equal(t, 300, expiresIn)

	actor, err := svc.ValidateSSEToken(token)
	require.NoError(t, err)
	assert.Equal(t, "company-1", actor.CompanyID)
}

func TestSSETokenRejectsAccessToken(t *testing.T) {
	svc := NewJWTService("secret", "1h")

	token, _, err := svc.GenerateAccessToken(testActor())
	require.NoError(t, err)

	_, err = svc.ValidateSSEToken(token)
	assert.Error(t, err)
}

func TestSSETokenRejectsForeignSignature(t *testing.T) {
	other := NewJWTService("other-secret", "1h")
	token, _, err := other.GenerateSSEToken(testActor())
	require.NoError(t, err)

	_, err = NewJWTService("secret", "1h").ValidateSSEToken(token)
	assert.Error(t, err)
}
