package jwt

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cismodels "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Models"
	api_models "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Models/api"
	auth_models "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Models/auth"
)

func testService(accessTTL time.Duration) *Service {
	return NewService(api_models.Config{
		SecretKey:            "test-secret",
		AccessTokenDuration:  accessTTL,
		RefreshTokenDuration: 7 * 24 * time.Hour,
		Issuer:               "cistern-server",
	})
}

type singleUserRepo struct {
	user *auth_models.User
}

func (r singleUserRepo) Create(_ context.Context, user *auth_models.User) (*auth_models.User, error) {
	return user, nil
}

func (r singleUserRepo) GetByID(_ context.Context, userID string) (*auth_models.User, error) {
	if r.user != nil && r.user.UserID == userID {
		return r.user, nil
	}
	return nil, cismodels.ErrNotFound
}

func (r singleUserRepo) GetByUsername(context.Context, string) (*auth_models.User, error) {
	return nil, cismodels.ErrNotFound
}

func (r singleUserRepo) Update(context.Context, *auth_models.User) error { return nil }

func TestGenerateAndValidateTokens(t *testing.T) {
	svc := testService(8 * time.Hour)

	pair, err := svc.GenerateTokens("user-1", "admin", "admin")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, pair.TokenID, claims.TokenID)

	refreshClaims, err := svc.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", refreshClaims.UserID)
	assert.Equal(t, pair.TokenID, refreshClaims.TokenID)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	pair, err := testService(time.Hour).GenerateTokens("user-1", "admin", "admin")
	require.NoError(t, err)

	other := NewService(api_models.Config{SecretKey: "other-secret", AccessTokenDuration: time.Hour})
	_, err = other.ValidateAccessToken(pair.AccessToken)
	assert.Error(t, err)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	svc := testService(-time.Minute)

	pair, err := svc.GenerateTokens("user-1", "admin", "admin")
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(pair.AccessToken)
	assert.Error(t, err)
}

func TestValidateRejectsGarbage(t *testing.T) {
	svc := testService(time.Hour)

	_, err := svc.ValidateAccessToken("not.a.token")
	assert.Error(t, err)
}

func TestRefreshTokensIssuesFreshPair(t *testing.T) {
	svc := testService(time.Hour)
	repo := singleUserRepo{user: &auth_models.User{UserID: "user-1", Username: "operador", Role: "operator"}}

	pair, err := svc.GenerateTokens("user-1", "operador", "operator")
	require.NoError(t, err)

	renewed, err := svc.RefreshTokens(context.Background(), pair.RefreshToken, repo)
	require.NoError(t, err)
	assert.NotEqual(t, pair.TokenID, renewed.TokenID)

	claims, err := svc.ValidateAccessToken(renewed.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "operator", claims.Role)
}

func TestRefreshTokensUnknownUser(t *testing.T) {
	svc := testService(time.Hour)

	pair, err := svc.GenerateTokens("ghost", "ghost", "operator")
	require.NoError(t, err)

	_, err = svc.RefreshTokens(context.Background(), pair.RefreshToken, singleUserRepo{})
	assert.Error(t, err)
}
