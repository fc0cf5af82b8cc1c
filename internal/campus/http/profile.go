package http

import (
	"net/http"

	"github.com/aussiebroadwan/campus/internal/campus/domain"
	"github.com/aussiebroadwan/campus/internal/campus/service"
	"github.com/aussiebroadwan/campus/pkg/campussdk"
	"github.com/aussiebroadwan/campus/pkg/httpx"
)

// ProfileHandler serves the caller's own profile.
type ProfileHandler struct {
	Accounts *service.AccountService
}

// HandleGet handles GET /v1/me
//
//	@Summary		Get own profile
//	@Tags			Profile
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	campussdk.Profile
//	@Failure		401	{object}	campussdk.APIError	"Invalid or missing session"
//	@Failure		404	{object}	campussdk.APIError	"Account no longer exists"
//	@Router			/v1/me [get].
func (h *ProfileHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	id, err := h.Accounts.Profile(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toProfile(id))
}

// HandleUpdate handles PATCH /v1/me
//
//	@Summary		Update own profile
//	@Description	Only the fields present in the body are changed. Role, email and verification are not editable here.
//	@Tags			Profile
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		campussdk.ProfileUpdate	true	"Fields to change"
//	@Success		200		{object}	campussdk.Profile
//	@Failure		400		{object}	campussdk.APIError	"Validation failed"
//	@Failure		401		{object}	campussdk.APIError	"Invalid or missing session"
//	@Router			/v1/me [patch].
func (h *ProfileHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var in campussdk.ProfileUpdate
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		writeBadRequest(w, err)
		return
	}

	id, err := h.Accounts.UpdateProfile(r.Context(), userID, domain.ProfileUpdate(in))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toProfile(id))
}
