package http

import (
	"net/http"

	"github.com/aussiebroadwan/campus/internal/campus/service"
	"github.com/aussiebroadwan/campus/pkg/campussdk"
	"github.com/aussiebroadwan/campus/pkg/httpx"
	"github.com/aussiebroadwan/campus/pkg/slogx"
)

// AuthHandler serves the public login and registration endpoints.
type AuthHandler struct {
	Accounts  *service.AccountService
	TwoFactor *service.TwoFactorService
}

func registrationFrom(in campussdk.RegisterRequest) service.Registration {
	return service.Registration{
		Name:          in.Name,
		Email:         in.Email,
		Password:      in.Password,
		Phone:         in.Phone,
		Branch:        in.Branch,
		Program:       in.Program,
		Course:        in.Course,
		RequestedRole: in.RequestedRole,
		Reason:        in.Reason,
	}
}

// HandleRegister handles POST /v1/auth/register
//
//	@Summary		Register an account
//	@Description	Creates an unverified account with role pending. When requested_role is set a role request is filed for review.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		campussdk.RegisterRequest	true	"Registration"
//	@Success		201		{object}	campussdk.RegisterResponse
//	@Failure		400		{object}	campussdk.APIError	"Validation failed"
//	@Failure		409		{object}	campussdk.APIError	"Email already registered"
//	@Failure		429		{object}	campussdk.APIError	"Rate limit exceeded"
//	@Router			/v1/auth/register [post].
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var in campussdk.RegisterRequest
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		writeBadRequest(w, err)
		return
	}

	id, req, err := h.Accounts.Register(r.Context(), registrationFrom(in))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := campussdk.RegisterResponse{Profile: toProfile(id)}
	if req != nil {
		rr := toRoleRequest(*req)
		resp.RoleRequest = &rr
	}
	httpx.WriteJSON(w, http.StatusCreated, resp)
}

// HandleLogin handles POST /v1/auth/login
//
//	@Summary		Password login
//	@Description	Verifies email and password. Without two-factor a session token is returned, otherwise a short lived pending token and the challenge method.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		campussdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	campussdk.LoginResponse
//	@Failure		400		{object}	campussdk.APIError	"Malformed request"
//	@Failure		401		{object}	campussdk.APIError	"Invalid email or password"
//	@Failure		429		{object}	campussdk.APIError	"Rate limit exceeded"
//	@Router			/v1/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in campussdk.LoginRequest
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		writeBadRequest(w, err)
		return
	}

	res, err := h.Accounts.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := campussdk.LoginResponse{Outcome: string(res.Outcome)}
	switch res.Outcome {
	case service.LoginNoChallenge:
		tok := toToken(*res.Session)
		p := toProfile(res.Identity)
		resp.Session = &tok
		resp.Profile = &p
	case service.LoginChallengePending:
		resp.Challenge = &campussdk.Challenge{
			PendingToken:  res.Pending.Value,
			ExpiresAt:     res.Pending.ExpiresAt,
			Method:        string(res.Method),
			MaskedContact: res.MaskedContact,
			DevCode:       res.DevCode,
		}
	}
	slogx.FromContext(r.Context()).Info("login", "user_id", res.Identity.ID, "outcome", res.Outcome)
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleVerifyChallenge handles POST /v1/auth/2fa/verify
//
//	@Summary		Complete a two-factor login
//	@Description	Exchanges the pending token and a current code for a session token.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		campussdk.VerifyChallengeRequest	true	"Pending token and code"
//	@Success		200		{object}	campussdk.SessionResponse
//	@Failure		400		{object}	campussdk.APIError	"Invalid or expired code"
//	@Failure		401		{object}	campussdk.APIError	"Invalid pending token"
//	@Failure		409		{object}	campussdk.APIError	"Account no longer requires a second factor"
//	@Failure		429		{object}	campussdk.APIError	"Rate limit exceeded"
//	@Router			/v1/auth/2fa/verify [post].
func (h *AuthHandler) HandleVerifyChallenge(w http.ResponseWriter, r *http.Request) {
	var in campussdk.VerifyChallengeRequest
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		writeBadRequest(w, err)
		return
	}

	auth, err := h.TwoFactor.VerifyLoginChallenge(r.Context(), in.PendingToken, in.Code)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, campussdk.SessionResponse{
		Session: toToken(auth.Session),
		Profile: toProfile(auth.Identity),
	})
}

// HandleResendLoginCode handles POST /v1/auth/2fa/resend
//
//	@Summary		Resend the login SMS code
//	@Description	Issues a new SMS code for a pending login. The previous code stops working.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		campussdk.ResendLoginCodeRequest	true	"Pending token"
//	@Success		200		{object}	campussdk.CodeIssued
//	@Failure		401		{object}	campussdk.APIError	"Invalid pending token"
//	@Failure		409		{object}	campussdk.APIError	"SMS two-factor not configured"
//	@Failure		429		{object}	campussdk.APIError	"Rate limit exceeded"
//	@Router			/v1/auth/2fa/resend [post].
func (h *AuthHandler) HandleResendLoginCode(w http.ResponseWriter, r *http.Request) {
	var in campussdk.ResendLoginCodeRequest
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		writeBadRequest(w, err)
		return
	}

	issued, err := h.TwoFactor.ResendLoginCode(r.Context(), in.PendingToken)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, campussdk.CodeIssued(issued))
}
