package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/angeldelarosa/garagepos-backend/api/responses"
	"github.com/angeldelarosa/garagepos-backend/api/validators"
	"github.com/angeldelarosa/garagepos-backend/pkg/auth"
	"github.com/angeldelarosa/garagepos-backend/pkg/auth/session"
	"github.com/angeldelarosa/garagepos-backend/pkg/config"
	"github.com/angeldelarosa/garagepos-backend/pkg/enums"
	pkgerrors "github.com/angeldelarosa/garagepos-backend/pkg/errors"
	"github.com/angeldelarosa/garagepos-backend/pkg/logger"
)

type devTokenRequest struct {
	OperatorID   string `json:"operator_id" validate:"required,uuid"`
	OperatorName string `json:"operator_name" validate:"required"`
	Role         string `json:"role" validate:"required"`
}

type devTokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type logoutRequest struct {
	TokenID string `json:"token_id" validate:"required"`
}

// DevToken mints an access token without an identity provider. It only
// answers outside production; terminals in the field authenticate upstream.
func DevToken(cfg *config.Config, sessions *session.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.App.IsProd() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "not found"))
			return
		}

		var payload devTokenRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		role, err := enums.ParseOperatorRole(payload.Role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid operator role"))
			return
		}
		operatorID, _ := uuid.Parse(payload.OperatorID)

		now := time.Now().UTC()
		tokenID := session.NewTokenID()
		token, err := auth.MintAccessToken(cfg.JWT, now, auth.AccessTokenPayload{
			OperatorID:   operatorID,
			OperatorName: payload.OperatorName,
			Role:         role,
			JTI:          tokenID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint token"))
			return
		}
		if err := sessions.Open(r.Context(), tokenID, operatorID.String()); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "open session"))
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, devTokenResponse{
			Token:     token,
			ExpiresAt: now.Add(cfg.JWT.TokenTTL()),
		})
	}
}

// Logout revokes the session behind a token id so the JWT stops working
// before it expires.
func Logout(sessions *session.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload logoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := sessions.Revoke(r.Context(), payload.TokenID); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session"))
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
	}
}
