package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	InitJWT("test-secret", time.Minute)

	token, err := GenerateAccessToken(7, "bloodbank", 10)
	require.NoError(t, err)

	claims, err := ValidateAccessToken(token)
	require.NoError(t, err)
	assert.EqualValues(t, 7, claims.UserID)
	assert.Equal(t, "bloodbank", claims.Role)
	assert.EqualValues(t, 10, claims.OrganizationID)
	assert.NotEmpty(t, claims.ID)
}

func TestValidateAccessToken_Rejects(t *testing.T) {
	InitJWT("test-secret", time.Minute)
	token, err := GenerateAccessToken(1, "hospital", 1)
	require.NoError(t, err)

	InitJWT("rotated-secret", time.Minute)
	_, err = ValidateAccessToken(token)
	assert.Error(t, err)

	InitJWT("test-secret", -time.Minute)
	expired, err := GenerateAccessToken(1, "hospital", 1)
	require.NoError(t, err)
	_, err = ValidateAccessToken(expired)
	assert.Error(t, err)

	_, err = ValidateAccessToken("not-a-token")
	assert.Error(t, err)
}
