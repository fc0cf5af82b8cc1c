package http

import (
	"net/http"

	"github.com/aussiebroadwan/campus/internal/campus/domain"
	"github.com/aussiebroadwan/campus/internal/campus/service"
	"github.com/aussiebroadwan/campus/pkg/campussdk"
	"github.com/aussiebroadwan/campus/pkg/httpx"
	"github.com/aussiebroadwan/campus/pkg/slogx"
)

// TwoFactorHandler serves enrollment and management of the caller's second
// factor.
type TwoFactorHandler struct {
	TwoFactor *service.TwoFactorService
}

// parseMethod maps an unknown method to a validation error. An empty
// method is passed through for the service to reject.
func parseMethod(w http.ResponseWriter, s string) (domain.TwoFactorMethod, bool) {
	m, err := domain.ParseTwoFactorMethod(s)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, campussdk.ErrorCodeValidation, "method must be totp or sms")
		return "", false
	}
	return m, true
}

// HandleStatus handles GET /v1/2fa
//
//	@Summary		Two-factor status
//	@Tags			Two-Factor
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	campussdk.TwoFactorStatus
//	@Failure		401	{object}	campussdk.APIError	"Invalid or missing session"
//	@Router			/v1/2fa [get].
func (h *TwoFactorHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	st, err := h.TwoFactor.Status(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, campussdk.TwoFactorStatus{
		Enabled:           st.Enabled,
		Method:            string(st.Method),
		MaskedPhone:       st.MaskedPhone,
		EnrollmentPending: st.Pending,
	})
}

// HandleSetup handles POST /v1/2fa/setup
//
//	@Summary		Begin two-factor enrollment
//	@Description	For totp a new secret and otpauth URL are returned. For sms a code is sent to the given phone.
//	@Tags			Two-Factor
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		campussdk.TwoFactorSetupRequest	true	"Method and phone"
//	@Success		200		{object}	campussdk.TwoFactorSetupResponse
//	@Failure		400		{object}	campussdk.APIError	"Validation failed"
//	@Failure		401		{object}	campussdk.APIError	"Invalid or missing session"
//	@Failure		409		{object}	campussdk.APIError	"Two-factor already enabled"
//	@Router			/v1/2fa/setup [post].
func (h *TwoFactorHandler) HandleSetup(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var in campussdk.TwoFactorSetupRequest
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		writeBadRequest(w, err)
		return
	}
	method, ok := parseMethod(w, in.Method)
	if !ok {
		return
	}

	enr, err := h.TwoFactor.BeginEnrollment(r.Context(), userID, method, in.Phone)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, campussdk.TwoFactorSetupResponse{
		Method:      string(enr.Method),
		Secret:      enr.Secret,
		OTPAuthURL:  enr.OTPAuthURL,
		MaskedPhone: enr.MaskedPhone,
		ExpiresAt:   enr.ExpiresAt,
		DevCode:     enr.DevCode,
	})
}

// HandleConfirm handles POST /v1/2fa/confirm
//
//	@Summary		Confirm two-factor enrollment
//	@Description	Enables two-factor once a valid code for the pending enrollment is presented.
//	@Tags			Two-Factor
//	@Security		BearerAuth
//	@Accept			json
//	@Param			request	body	campussdk.TwoFactorConfirmRequest	true	"Method and code"
//	@Success		204
//	@Failure		400	{object}	campussdk.APIError	"Invalid or expired code"
//	@Failure		401	{object}	campussdk.APIError	"Invalid or missing session"
//	@Failure		429	{object}	campussdk.APIError	"Rate limit exceeded"
//	@Router			/v1/2fa/confirm [post].
func (h *TwoFactorHandler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var in campussdk.TwoFactorConfirmRequest
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		writeBadRequest(w, err)
		return
	}
	method, ok := parseMethod(w, in.Method)
	if !ok {
		return
	}

	if err := h.TwoFactor.ConfirmEnrollment(r.Context(), userID, method, in.Code); err != nil {
		writeServiceError(w, r, err)
		return
	}
	slogx.FromContext(r.Context()).Info("two-factor enabled", "user_id", userID, "method", method)

	httpx.NoCache(w)
	w.WriteHeader(http.StatusNoContent)
}

// HandleDisable handles POST /v1/2fa/disable
//
//	@Summary		Disable two-factor
//	@Description	Requires a current code for the active method.
//	@Tags			Two-Factor
//	@Security		BearerAuth
//	@Accept			json
//	@Param			request	body	campussdk.TwoFactorDisableRequest	true	"Current code"
//	@Success		204
//	@Failure		400	{object}	campussdk.APIError	"Invalid or expired code"
//	@Failure		401	{object}	campussdk.APIError	"Invalid or missing session"
//	@Failure		409	{object}	campussdk.APIError	"Two-factor not enabled"
//	@Failure		429	{object}	campussdk.APIError	"Rate limit exceeded"
//	@Router			/v1/2fa/disable [post].
func (h *TwoFactorHandler) HandleDisable(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var in campussdk.TwoFactorDisableRequest
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		writeBadRequest(w, err)
		return
	}

	if err := h.TwoFactor.Disable(r.Context(), userID, in.Code); err != nil {
		writeServiceError(w, r, err)
		return
	}
	slogx.FromContext(r.Context()).Info("two-factor disabled", "user_id", userID)

	httpx.NoCache(w)
	w.WriteHeader(http.StatusNoContent)
}

// HandleResend handles POST /v1/2fa/resend
//
//	@Summary		Resend SMS code
//	@Description	Issues a new SMS code for the caller's enrollment or active SMS method.
//	@Tags			Two-Factor
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	campussdk.CodeIssued
//	@Failure		401	{object}	campussdk.APIError	"Invalid or missing session"
//	@Failure		409	{object}	campussdk.APIError	"SMS two-factor not configured"
//	@Failure		429	{object}	campussdk.APIError	"Rate limit exceeded"
//	@Router			/v1/2fa/resend [post].
func (h *TwoFactorHandler) HandleResend(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	issued, err := h.TwoFactor.ResendCode(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, campussdk.CodeIssued(issued))
}
