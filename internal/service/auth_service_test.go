package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/shiftwise/rota-api/internal/models"
	appErrors "github.com/shiftwise/rota-api/pkg/errors"
)

type mockAuthRepo struct {
	users          map[string]*models.User
	lastLoginSet   bool
	updatedHash    string
	updateLoginErr error
}

func (m *mockAuthRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (m *mockAuthRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	m.lastLoginSet = true
	return m.updateLoginErr
}

func (m *mockAuthRepo) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	m.updatedHash = passwordHash
	return nil
}

func seedAuthUser(t *testing.T, password string, active bool) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.User{
		ID:           "user-1",
		Email:        "planner@example.com",
		FullName:     "Pat Planner",
		Role:         models.RolePlanner,
		Active:       active,
		PasswordHash: string(hash),
	}
}

func newAuthServiceForTest(repo *mockAuthRepo) *AuthService {
	return NewAuthService(repo, validator.New(), zap.NewNop(), AuthConfig{
		AccessTokenSecret: "secret",
		AccessTokenExpiry: time.Hour,
		Issuer:            "rota-api",
	})
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	user := seedAuthUser(t, "password123", true)
	repo := &mockAuthRepo{users: map[string]*models.User{user.ID: user}}
	svc := newAuthServiceForTest(repo)

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: user.Email, Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, int64(3600), res.ExpiresIn)
	assert.Equal(t, user.ID, res.User.ID)
	assert.Equal(t, models.RolePlanner, res.User.Role)
	assert.True(t, repo.lastLoginSet)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	user := seedAuthUser(t, "password123", true)
	repo := &mockAuthRepo{users: map[string]*models.User{user.ID: user}}
	svc := newAuthServiceForTest(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: user.Email, Password: "nope-nope"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginInactive(t *testing.T) {
	user := seedAuthUser(t, "password123", false)
	repo := &mockAuthRepo{users: map[string]*models.User{user.ID: user}}
	svc := newAuthServiceForTest(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: user.Email, Password: "password123"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceChangePassword(t *testing.T) {
	user := seedAuthUser(t, "oldpass123", true)
	repo := &mockAuthRepo{users: map[string]*models.User{user.ID: user}}
	svc := newAuthServiceForTest(repo)

	err := svc.ChangePassword(context.Background(), user.ID, models.ChangePasswordRequest{
		OldPassword: "oldpass123",
		NewPassword: "newpass456",
	})
	require.NoError(t, err)
	require.NotEmpty(t, repo.updatedHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.updatedHash), []byte("newpass456")))
}

func TestAuthServiceChangePasswordWrongOld(t *testing.T) {
	user := seedAuthUser(t, "oldpass123", true)
	repo := &mockAuthRepo{users: map[string]*models.User{user.ID: user}}
	svc := newAuthServiceForTest(repo)

	err := svc.ChangePassword(context.Background(), user.ID, models.ChangePasswordRequest{
		OldPassword: "wrongpass",
		NewPassword: "newpass456",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestValidateToken(t *testing.T) {
	user := seedAuthUser(t, "password123", true)
	repo := &mockAuthRepo{users: map[string]*models.User{user.ID: user}}
	svc := newAuthServiceForTest(repo)

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: user.Email, Password: "password123"})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, models.RolePlanner, claims.Role)

	_, err = svc.ValidateToken(res.AccessToken + "tampered")
	assert.Error(t, err)
}
