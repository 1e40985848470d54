package users

import (
	"context"
	"fmt"
	"time"

	"github.com/arepabuelas/arepabuelas-backend/pkg/db/models"
	"github.com/arepabuelas/arepabuelas-backend/pkg/enums"
	pkgerrors "github.com/arepabuelas/arepabuelas-backend/pkg/errors"
	"github.com/arepabuelas/arepabuelas-backend/pkg/logger"
	"github.com/arepabuelas/arepabuelas-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserView is the admin-facing representation; the password hash never
// leaves the service layer.
type UserView struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Approved  bool      `json:"approved"`
	PhotoURL  string    `json:"photoUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Service is the admin user management surface.
type Service interface {
	List(ctx context.Context, filter ListFilter, page pagination.Page) ([]UserView, int64, error)
	Approve(ctx context.Context, id uuid.UUID) (*UserView, error)
	Deactivate(ctx context.Context, id uuid.UUID) (*UserView, error)
	ChangeRole(ctx context.Context, id uuid.UUID, role enums.UserRole) (*UserView, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService builds the admin user service.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) List(ctx context.Context, filter ListFilter, page pagination.Page) ([]UserView, int64, error) {
	list, total, err := s.repo.List(ctx, filter, page)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing users")
	}
	views := make([]UserView, 0, len(list))
	for _, user := range list {
		views = append(views, toView(user))
	}
	return views, total, nil
}

// Approve flips the approval flag on; idempotent.
func (s *service) Approve(ctx context.Context, id uuid.UUID) (*UserView, error) {
	return s.setApproval(ctx, id, true, "user approved")
}

// Deactivate flips the approval flag off, locking the account out at login.
func (s *service) Deactivate(ctx context.Context, id uuid.UUID) (*UserView, error) {
	return s.setApproval(ctx, id, false, "user deactivated")
}

func (s *service) setApproval(ctx context.Context, id uuid.UUID, approved bool, msg string) (*UserView, error) {
	user, err := s.mutableUser(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Approved = approved
	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating user")
	}

	s.logg.Info(s.logg.WithUserEmail(ctx, updated.Email), msg)
	view := toView(*updated)
	return &view, nil
}

// ChangeRole switches between customer and admin. The superadmin role can
// neither be granted nor taken away.
func (s *service) ChangeRole(ctx context.Context, id uuid.UUID, role enums.UserRole) (*UserView, error) {
	if role != enums.UserRoleCustomer && role != enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "role must be customer or admin")
	}

	user, err := s.mutableUser(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Role = role
	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating user role")
	}

	ctx = s.logg.WithUserEmail(ctx, updated.Email)
	s.logg.Info(s.logg.WithField(ctx, "role", string(role)), "user role changed")
	view := toView(*updated)
	return &view, nil
}

// Delete removes the account entirely.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	user, err := s.mutableUser(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deleting user")
	}
	s.logg.Info(s.logg.WithUserEmail(ctx, user.Email), "user deleted")
	return nil
}

// mutableUser loads the target and refuses any mutation of a superadmin.
func (s *service) mutableUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading user")
	}
	if user.Role == enums.UserRoleSuperAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "superadmin accounts cannot be modified")
	}
	return user, nil
}

func toView(user models.User) UserView {
	return UserView{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      string(user.Role),
		Approved:  user.Approved,
		PhotoURL:  user.PhotoURL,
		CreatedAt: user.CreatedAt,
	}
}
