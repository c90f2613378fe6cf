package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	jwt "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.ApiService/implementation/jwt"
	rbac "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.ApiService/implementation/rbac"
	config "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Config"
	logger "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Logger"
	cismodels "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Models"
	api_models "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Models/api"
	auth_models "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Models/auth"
)

type memoryUserRepo struct {
	users map[string]*auth_models.User // keyed by UserID
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: map[string]*auth_models.User{}}
}

func (r *memoryUserRepo) Create(_ context.Context, user *auth_models.User) (*auth_models.User, error) {
	if user.UserID == "" {
		user.UserID = "user-" + user.Username
	}
	stored := *user
	r.users[user.UserID] = &stored
	return &stored, nil
}

func (r *memoryUserRepo) GetByID(_ context.Context, userID string) (*auth_models.User, error) {
	if u, ok := r.users[userID]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, cismodels.ErrNotFound
}

func (r *memoryUserRepo) GetByUsername(_ context.Context, username string) (*auth_models.User, error) {
	for _, u := range r.users {
		if strings.EqualFold(u.Username, username) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, cismodels.ErrNotFound
}

func (r *memoryUserRepo) Update(_ context.Context, user *auth_models.User) error {
	if _, ok := r.users[user.UserID]; !ok {
		return cismodels.ErrNotFound
	}
	stored := *user
	r.users[user.UserID] = &stored
	return nil
}

func newTestAuthService(t *testing.T, repo *memoryUserRepo) *AuthService {
	t.Helper()
	jwtService := jwt.NewService(api_models.Config{
		SecretKey:            "test-secret",
		AccessTokenDuration:  8 * time.Hour,
		RefreshTokenDuration: 7 * 24 * time.Hour,
		Issuer:               "cistern-server",
	})
	log := logger.NewLogger(&config.LoggingConfig{Level: "error", Format: "text", Output: "stderr"})
	return NewAuthService(repo, jwtService, rbac.NewService(), log)
}

func seedUser(t *testing.T, repo *memoryUserRepo, username, password, role string, active bool) *auth_models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := auth_models.NewUser("Test User", username, username+"@example.com", string(hash), role)
	user.Active = active
	stored, err := repo.Create(context.Background(), user)
	require.NoError(t, err)
	return stored
}

func TestLoginSuccess(t *testing.T) {
	repo := newMemoryUserRepo()
	seedUser(t, repo, "operador", "secreto123", "operator", true)
	svc := newTestAuthService(t, repo)

	resp, pair, err := svc.Login(context.Background(), LoginRequest{Username: "operador", Password: "secreto123"})

	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, "operador", resp.User.Username)
	assert.Equal(t, "operator", resp.User.Role)
}

func TestLoginCaseInsensitiveUsername(t *testing.T) {
	repo := newMemoryUserRepo()
	seedUser(t, repo, "Operador", "secreto123", "operator", true)
	svc := newTestAuthService(t, repo)

	_, _, err := svc.Login(context.Background(), LoginRequest{Username: "OPERADOR", Password: "secreto123"})
	assert.NoError(t, err)
}

func TestLoginStampsLastConnection(t *testing.T) {
	repo := newMemoryUserRepo()
	stored := seedUser(t, repo, "operador", "secreto123", "operator", true)
	svc := newTestAuthService(t, repo)

	require.Nil(t, stored.LastConnection)
	_, _, err := svc.Login(context.Background(), LoginRequest{Username: "operador", Password: "secreto123"})
	require.NoError(t, err)

	updated, err := repo.GetByID(context.Background(), stored.UserID)
	require.NoError(t, err)
	require.NotNil(t, updated.LastConnection)
	assert.WithinDuration(t, time.Now(), *updated.LastConnection, time.Minute)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	repo := newMemoryUserRepo()
	seedUser(t, repo, "operador", "secreto123", "operator", true)
	seedUser(t, repo, "inactivo", "secreto123", "operator", false)
	svc := newTestAuthService(t, repo)
	ctx := context.Background()

	_, _, errUnknown := svc.Login(ctx, LoginRequest{Username: "nadie", Password: "secreto123"})
	_, _, errWrongPass := svc.Login(ctx, LoginRequest{Username: "operador", Password: "incorrecta"})
	_, _, errInactive := svc.Login(ctx, LoginRequest{Username: "inactivo", Password: "secreto123"})

	assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	assert.ErrorIs(t, errWrongPass, ErrInvalidCredentials)
	assert.ErrorIs(t, errInactive, ErrInvalidCredentials)
	assert.Equal(t, errUnknown.Error(), errWrongPass.Error())
	assert.Equal(t, errWrongPass.Error(), errInactive.Error())
}

func TestRefreshTokensRoundTrip(t *testing.T) {
	repo := newMemoryUserRepo()
	seedUser(t, repo, "admin", "secreto123", "admin", true)
	svc := newTestAuthService(t, repo)
	ctx := context.Background()

	_, pair, err := svc.Login(ctx, LoginRequest{Username: "admin", Password: "secreto123"})
	require.NoError(t, err)

	resp, renewed, err := svc.RefreshTokens(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEqual(t, pair.TokenID, renewed.TokenID)
}
