package controllers

import (
	"net/http"
	"strings"

	"github.com/arepabuelas/arepabuelas-backend/api/responses"
	"github.com/arepabuelas/arepabuelas-backend/api/validators"
	authsvc "github.com/arepabuelas/arepabuelas-backend/internal/auth"
	pkgerrors "github.com/arepabuelas/arepabuelas-backend/pkg/errors"
	"github.com/arepabuelas/arepabuelas-backend/pkg/logger"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login exchanges credentials for a signed session token.
func Login(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var payload loginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.Login(r.Context(), payload.Email, payload.Password)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, session)
	}
}

type registeredUser struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Approved bool   `json:"approved"`
	PhotoURL string `json:"photoUrl,omitempty"`
}

// Register creates a pending account from a multipart form. The optional
// photo arrives under the "photo" field.
func Register(svc authsvc.Service, maxPhotoBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		photo, err := validators.ReadImagePart(r, "photo", maxPhotoBytes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := authsvc.RegisterInput{
			Name:     strings.TrimSpace(r.FormValue("name")),
			Email:    strings.TrimSpace(r.FormValue("email")),
			Password: r.FormValue("password"),
		}
		if photo != nil {
			input.Photo = &authsvc.PhotoUpload{
				ContentType: photo.ContentType,
				Data:        photo.Data,
			}
		}

		user, err := svc.Register(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, registeredUser{
			ID:       user.ID.String(),
			Name:     user.Name,
			Email:    user.Email,
			Approved: user.Approved,
			PhotoURL: user.PhotoURL,
		})
	}
}
