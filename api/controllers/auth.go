package controllers

import (
	"net/http"

	"github.com/pharmaeye/pharmaeye-backend/api/responses"
	"github.com/pharmaeye/pharmaeye-backend/api/validators"
	"github.com/pharmaeye/pharmaeye-backend/internal/auth"
	pkgerrors "github.com/pharmaeye/pharmaeye-backend/pkg/errors"
	"github.com/pharmaeye/pharmaeye-backend/pkg/logger"
)

type loginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

type biometricLoginRequest struct {
	CredentialID string `json:"credentialId" validate:"required"`
}

// Login authenticates by username or email and returns a session token.
func Login(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var req loginRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.Login(r.Context(), req.Identifier, req.Password)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, session)
	}
}

// BiometricLogin authenticates with a previously registered device credential.
func BiometricLogin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var req biometricLoginRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.BiometricLogin(r.Context(), req.CredentialID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, session)
	}
}
