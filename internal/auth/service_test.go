package auth

import (
	"context"
	"testing"

	"github.com/arepabuelas/arepabuelas-backend/pkg/config"
	"github.com/arepabuelas/arepabuelas-backend/pkg/db/models"
	"github.com/arepabuelas/arepabuelas-backend/pkg/enums"
	pkgerrors "github.com/arepabuelas/arepabuelas-backend/pkg/errors"
	"github.com/arepabuelas/arepabuelas-backend/pkg/logger"
	"github.com/arepabuelas/arepabuelas-backend/pkg/security"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const goodPassword = "Arepas!!22rico"

type memoryUsers struct {
	byEmail map[string]*models.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byEmail: map[string]*models.User{}}
}

func (m *memoryUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := m.byEmail[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (m *memoryUsers) Create(_ context.Context, user *models.User) (*models.User, error) {
	if _, exists := m.byEmail[user.Email]; exists {
		return nil, gorm.ErrDuplicatedKey
	}
	user.ID = uuid.New()
	m.byEmail[user.Email] = user
	return user, nil
}

type nopUploader struct{}

func (nopUploader) UploadImage(_ context.Context, prefix, _ string, _ []byte) (string, error) {
	return "http://storage.local/arepabuelas-users/" + prefix + ".png", nil
}

func jwtConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "test-secret", Issuer: "arepabuelas", ExpirationMinutes: 20}
}

func newAuthService(t *testing.T, users *memoryUsers) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Users:    users,
		Uploader: nopUploader{},
		JWT:      jwtConfig(),
		Password: config.PasswordConfig{},
		MaxPhoto: 5 << 20,
		Logger:   logger.New(logger.Options{ServiceName: "test"}),
	})
	require.NoError(t, err)
	return svc
}

func seedApprovedUser(t *testing.T, users *memoryUsers, email string, approved bool) {
	t.Helper()
	hash, err := security.HashPassword(goodPassword, config.PasswordConfig{})
	require.NoError(t, err)
	users.byEmail[email] = &models.User{
		ID:           uuid.New(),
		Name:         "Ana Perez",
		Email:        email,
		PasswordHash: hash,
		Role:         enums.UserRoleCustomer,
		Approved:     approved,
	}
}

func TestLoginSucceedsForApprovedUser(t *testing.T) {
	users := newMemoryUsers()
	seedApprovedUser(t, users, "ana@example.com", true)
	svc := newAuthService(t, users)

	session, err := svc.Login(context.Background(), "Ana@Example.com", goodPassword)
	require.NoError(t, err)
	require.NotEmpty(t, session.Token)
	require.Equal(t, "ana@example.com", session.Email)
	require.Equal(t, "customer", session.Role)
	require.False(t, session.ExpiresAt.IsZero())
}

func TestLoginWrongPasswordIsUnauthorized(t *testing.T) {
	users := newMemoryUsers()
	seedApprovedUser(t, users, "ana@example.com", true)
	svc := newAuthService(t, users)

	_, err := svc.Login(context.Background(), "ana@example.com", "WrongPass!!22")
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, pkgerrors.CodeUnauthorized, appErr.Code())
}

func TestLoginUnknownUserIsUnauthorized(t *testing.T) {
	svc := newAuthService(t, newMemoryUsers())

	_, err := svc.Login(context.Background(), "ghost@example.com", goodPassword)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, pkgerrors.CodeUnauthorized, appErr.Code())
}

func TestLoginUnapprovedIsForbiddenNotUnauthorized(t *testing.T) {
	users := newMemoryUsers()
	seedApprovedUser(t, users, "ana@example.com", false)
	svc := newAuthService(t, users)

	_, err := svc.Login(context.Background(), "ana@example.com", goodPassword)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, pkgerrors.CodeForbidden, appErr.Code())
}

func TestLoginUnapprovedWrongPasswordStaysUnauthorized(t *testing.T) {
	users := newMemoryUsers()
	seedApprovedUser(t, users, "ana@example.com", false)
	svc := newAuthService(t, users)

	// password order: a wrong password must never reveal the approval state
	_, err := svc.Login(context.Background(), "ana@example.com", "WrongPass!!22")
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, pkgerrors.CodeUnauthorized, appErr.Code())
}

func TestLoginValidationErrors(t *testing.T) {
	svc := newAuthService(t, newMemoryUsers())

	_, err := svc.Login(context.Background(), "not-an-email", goodPassword)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = svc.Login(context.Background(), "ana@example.com", "")
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestRegisterCreatesUnapprovedCustomer(t *testing.T) {
	users := newMemoryUsers()
	svc := newAuthService(t, users)

	created, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Ana Perez",
		Email:    "Ana@Example.com",
		Password: goodPassword,
		Photo:    &PhotoUpload{ContentType: "image/png", Data: []byte("png")},
	})
	require.NoError(t, err)
	require.Equal(t, "ana@example.com", created.Email)
	require.Equal(t, enums.UserRoleCustomer, created.Role)
	require.False(t, created.Approved)
	require.NotEmpty(t, created.PhotoURL)
	require.NotEqual(t, goodPassword, created.PasswordHash)
}

func TestRegisterReportsAllPolicyViolations(t *testing.T) {
	svc := newAuthService(t, newMemoryUsers())

	_, err := svc.Register(context.Background(), RegisterInput{
		Name:     "",
		Email:    "bad-email",
		Password: "short",
	})
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, pkgerrors.CodeValidation, appErr.Code())

	details, ok := appErr.Details().([]string)
	require.True(t, ok)
	require.GreaterOrEqual(t, len(details), 3)
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	users := newMemoryUsers()
	seedApprovedUser(t, users, "ana@example.com", true)
	svc := newAuthService(t, users)

	_, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Ana Again",
		Email:    "ana@example.com",
		Password: goodPassword,
	})
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, pkgerrors.CodeConflict, appErr.Code())
}
