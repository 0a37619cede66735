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

	"github.com/arahman-dev/blogfolio-api/internal/models"
	"github.com/arahman-dev/blogfolio-api/internal/repository"
	appErrors "github.com/arahman-dev/blogfolio-api/pkg/errors"
)

type mockUserRepo struct {
	user         *models.User
	createErr    error
	findErr      error
	setTokenErr  error
	rotateFail   bool
	clearErr     error
	created      *models.User
	clearedFor   string
	rotateCalled bool
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	if m.user == nil || m.user.Email != email {
		return nil, sql.ErrNoRows
	}
	return m.user, nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	if m.user == nil || m.user.ID != id {
		return nil, sql.ErrNoRows
	}
	return m.user, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	user.ID = "generated-id"
	m.created = user
	return nil
}

func (m *mockUserRepo) SetRefreshToken(ctx context.Context, id, token string) error {
	if m.setTokenErr != nil {
		return m.setTokenErr
	}
	if m.user != nil && m.user.ID == id {
		m.user.RefreshToken = &token
	}
	return nil
}

func (m *mockUserRepo) RotateRefreshToken(ctx context.Context, id, current, next string) (bool, error) {
	m.rotateCalled = true
	if m.rotateFail {
		return false, nil
	}
	if m.user == nil || m.user.ID != id || m.user.RefreshToken == nil || *m.user.RefreshToken != current {
		return false, nil
	}
	m.user.RefreshToken = &next
	return true, nil
}

func (m *mockUserRepo) ClearRefreshToken(ctx context.Context, id string) error {
	if m.clearErr != nil {
		return m.clearErr
	}
	m.clearedFor = id
	if m.user != nil && m.user.ID == id {
		m.user.RefreshToken = nil
	}
	return nil
}

func newAuthService(repo *mockUserRepo) *AuthService {
	return NewAuthService(repo, validator.New(), zap.NewNop(), AuthConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: 7 * 24 * time.Hour,
		Issuer:        "blogfolio-test",
	})
}

func hashPassword(t *testing.T, plain string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	require.NoError(t, err)
	return string(hash)
}

func TestAuthServiceRegister(t *testing.T) {
	repo := &mockUserRepo{}
	svc := newAuthService(repo)

	info, err := svc.Register(context.Background(), models.RegisterRequest{
		Email: "a@x.com", Password: "secret1", Name: "A",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, info.Role)
	assert.Equal(t, "a@x.com", info.Email)
	require.NotNil(t, repo.created)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.created.PasswordHash), []byte("secret1")))
}

func TestAuthServiceRegisterShortPassword(t *testing.T) {
	svc := newAuthService(&mockUserRepo{})

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Email: "a@x.com", Password: "short", Name: "A",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.NotEmpty(t, appErr.Details)
}

func TestAuthServiceRegisterDuplicateEmail(t *testing.T) {
	repo := &mockUserRepo{createErr: repository.ErrDuplicateEmail}
	svc := newAuthService(repo)

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Email: "a@x.com", Password: "secret1", Name: "A",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	repo := &mockUserRepo{user: &models.User{
		ID: "u1", Email: "a@x.com", Name: "A", Role: models.RoleUser,
		PasswordHash: hashPassword(t, "secret1"),
	}}
	svc := newAuthService(repo)

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)
	assert.Equal(t, "u1", res.User.ID)
	require.NotNil(t, repo.user.RefreshToken)
	assert.Equal(t, res.RefreshToken, *repo.user.RefreshToken)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, models.RoleUser, claims.Role)
}

func TestAuthServiceLoginUniformFailure(t *testing.T) {
	repo := &mockUserRepo{user: &models.User{
		ID: "u1", Email: "a@x.com",
		PasswordHash: hashPassword(t, "secret1"),
	}}
	svc := newAuthService(repo)

	_, wrongPassword := svc.Login(context.Background(), models.LoginRequest{Email: "a@x.com", Password: "nope123"})
	_, unknownEmail := svc.Login(context.Background(), models.LoginRequest{Email: "b@x.com", Password: "secret1"})

	require.Error(t, wrongPassword)
	require.Error(t, unknownEmail)
	assert.Equal(t, appErrors.FromError(wrongPassword).Code, appErrors.FromError(unknownEmail).Code)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(wrongPassword).Code)
}

func TestAuthServiceRefreshRotates(t *testing.T) {
	repo := &mockUserRepo{user: &models.User{
		ID: "u1", Email: "a@x.com", Role: models.RoleUser,
		PasswordHash: hashPassword(t, "secret1"),
	}}
	svc := newAuthService(repo)

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	res, err := svc.Refresh(context.Background(), login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEqual(t, login.RefreshToken, res.RefreshToken)
	require.NotNil(t, repo.user.RefreshToken)
	assert.Equal(t, res.RefreshToken, *repo.user.RefreshToken)

	// The superseded token must be rejected.
	_, err = svc.Refresh(context.Background(), login.RefreshToken)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRefreshAfterSecondLogin(t *testing.T) {
	repo := &mockUserRepo{user: &models.User{
		ID: "u1", Email: "a@x.com", Role: models.RoleUser,
		PasswordHash: hashPassword(t, "secret1"),
	}}
	svc := newAuthService(repo)

	first, err := svc.Login(context.Background(), models.LoginRequest{Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)
	second, err := svc.Login(context.Background(), models.LoginRequest{Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, err = svc.Refresh(context.Background(), first.RefreshToken)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)

	_, err = svc.Refresh(context.Background(), second.RefreshToken)
	assert.NoError(t, err)
}

func TestAuthServiceRefreshMissingToken(t *testing.T) {
	svc := newAuthService(&mockUserRepo{})

	_, err := svc.Refresh(context.Background(), "")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
	assert.Equal(t, 401, appErr.Status)
}

func TestAuthServiceRefreshExpiredToken(t *testing.T) {
	repo := &mockUserRepo{user: &models.User{ID: "u1", Email: "a@x.com", Role: models.RoleUser}}
	svc := newAuthService(repo)
	svc.config.RefreshExpiry = -time.Minute

	expired, err := svc.generateRefreshToken("u1")
	require.NoError(t, err)
	repo.user.RefreshToken = &expired

	_, err = svc.Refresh(context.Background(), expired)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
	assert.Equal(t, 401, appErr.Status)
}

func TestAuthServiceRefreshWrongSecret(t *testing.T) {
	repo := &mockUserRepo{user: &models.User{ID: "u1", Email: "a@x.com", Role: models.RoleUser}}
	other := NewAuthService(repo, validator.New(), zap.NewNop(), AuthConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "different-secret",
		AccessExpiry:  time.Minute,
		RefreshExpiry: time.Hour,
	})
	foreign, err := other.generateRefreshToken("u1")
	require.NoError(t, err)

	svc := newAuthService(repo)
	_, err = svc.Refresh(context.Background(), foreign)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRefreshLosesSwapRace(t *testing.T) {
	repo := &mockUserRepo{user: &models.User{
		ID: "u1", Email: "a@x.com", Role: models.RoleUser,
		PasswordHash: hashPassword(t, "secret1"),
	}}
	svc := newAuthService(repo)

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	repo.rotateFail = true
	_, err = svc.Refresh(context.Background(), login.RefreshToken)
	require.Error(t, err)
	assert.True(t, repo.rotateCalled)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLogout(t *testing.T) {
	repo := &mockUserRepo{user: &models.User{
		ID: "u1", Email: "a@x.com", Role: models.RoleUser,
		PasswordHash: hashPassword(t, "secret1"),
	}}
	svc := newAuthService(repo)

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	svc.Logout(context.Background(), login.RefreshToken)
	assert.Nil(t, repo.user.RefreshToken)
	assert.Equal(t, "u1", repo.clearedFor)

	// Repeating with the now-dead token stays silent.
	svc.Logout(context.Background(), login.RefreshToken)
	svc.Logout(context.Background(), "garbage")
	svc.Logout(context.Background(), "")

	_, err = svc.Refresh(context.Background(), login.RefreshToken)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceMe(t *testing.T) {
	repo := &mockUserRepo{user: &models.User{ID: "u1", Email: "a@x.com", Name: "A", Role: models.RoleAdmin}}
	svc := newAuthService(repo)

	info, err := svc.Me(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, info.Role)

	_, err = svc.Me(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	repo := &mockUserRepo{}
	svc := newAuthService(repo)
	svc.config.AccessExpiry = -time.Minute

	token, err := svc.generateAccessToken(&models.User{ID: "u1", Email: "a@x.com", Role: models.RoleUser})
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
