package auth

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	pkgauth "github.com/arepabuelas/arepabuelas-backend/pkg/auth"
	"github.com/arepabuelas/arepabuelas-backend/pkg/config"
	"github.com/arepabuelas/arepabuelas-backend/pkg/db"
	"github.com/arepabuelas/arepabuelas-backend/pkg/db/models"
	"github.com/arepabuelas/arepabuelas-backend/pkg/enums"
	pkgerrors "github.com/arepabuelas/arepabuelas-backend/pkg/errors"
	"github.com/arepabuelas/arepabuelas-backend/pkg/logger"
	"github.com/arepabuelas/arepabuelas-backend/pkg/security"
	"gorm.io/gorm"
)

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type userStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
}

type photoUploader interface {
	UploadImage(ctx context.Context, prefix, contentType string, payload []byte) (string, error)
}

// Session is the login result handed back to the storefront.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	PhotoURL  string    `json:"photoUrl,omitempty"`
}

// PhotoUpload carries the decoded registration photo.
type PhotoUpload struct {
	ContentType string
	Data        []byte
}

// RegisterInput is the registration payload.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Photo    *PhotoUpload
}

// Service authenticates users and registers new accounts.
type Service interface {
	Login(ctx context.Context, email, password string) (*Session, error)
	Register(ctx context.Context, input RegisterInput) (*models.User, error)
}

// ServiceParams wires the auth service dependencies.
type ServiceParams struct {
	Users    userStore
	Uploader photoUploader
	JWT      config.JWTConfig
	Password config.PasswordConfig
	MaxPhoto int64
	Logger   *logger.Logger
}

type service struct {
	users    userStore
	uploader photoUploader
	jwt      config.JWTConfig
	password config.PasswordConfig
	maxPhoto int64
	logg     *logger.Logger
}

// NewService builds the auth service.
func NewService(params ServiceParams) (Service, error) {
	if params.Users == nil {
		return nil, fmt.Errorf("user store required")
	}
	if params.Uploader == nil {
		return nil, fmt.Errorf("photo uploader required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt secret required")
	}
	return &service{
		users:    params.Users,
		uploader: params.Uploader,
		jwt:      params.JWT,
		password: params.Password,
		maxPhoto: params.MaxPhoto,
		logg:     params.Logger,
	}, nil
}

// Login verifies credentials and mints a session token. The password is
// checked before the approval flag; "pending approval" is only ever reported
// for a correct password. The two failures stay distinct for the client.
func (s *service) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailRe.MatchString(email) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid email address")
	}
	if password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password is required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading user")
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	if !user.Approved {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "account pending approval")
	}

	now := time.Now()
	token, err := pkgauth.MintAccessToken(s.jwt, now, pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting session token")
	}

	s.logg.Info(s.logg.WithUserEmail(ctx, user.Email), "login succeeded")
	return &Session{
		Token:     token,
		ExpiresAt: now.Add(s.jwt.Expiration()),
		UserID:    user.ID.String(),
		Name:      user.Name,
		Email:     user.Email,
		Role:      string(user.Role),
		PhotoURL:  user.PhotoURL,
	}, nil
}

// Register creates an unapproved customer account. Every policy violation is
// reported at once so the form can flag them all.
func (s *service) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	var violations []string
	if strings.TrimSpace(input.Name) == "" {
		violations = append(violations, "name is required")
	}
	if !emailRe.MatchString(email) {
		violations = append(violations, "invalid email address")
	}
	violations = append(violations, security.PasswordPolicyErrors(input.Password)...)
	if input.Photo != nil {
		if input.Photo.ContentType != "image/png" && input.Photo.ContentType != "image/jpeg" {
			violations = append(violations, "photo must be PNG or JPEG")
		}
		if s.maxPhoto > 0 && int64(len(input.Photo.Data)) > s.maxPhoto {
			violations = append(violations, "photo exceeds the upload size limit")
		}
	}
	if len(violations) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid registration").WithDetails(violations)
	}

	hash, err := security.HashPassword(input.Password, s.password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing password")
	}

	user := &models.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         enums.UserRoleCustomer,
		Approved:     false,
	}

	if input.Photo != nil {
		url, err := s.uploader.UploadImage(ctx, "user-"+strings.Split(email, "@")[0], input.Photo.ContentType, input.Photo.Data)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "uploading profile photo")
		}
		user.PhotoURL = url
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "an account with this email already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persisting user")
	}

	s.logg.Info(s.logg.WithUserEmail(ctx, created.Email), "registration received, pending approval")
	return created, nil
}
