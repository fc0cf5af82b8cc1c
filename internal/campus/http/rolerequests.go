package http

import (
	"net/http"

	"github.com/aussiebroadwan/campus/internal/campus/domain"
	"github.com/aussiebroadwan/campus/internal/campus/service"
	"github.com/aussiebroadwan/campus/pkg/campussdk"
	"github.com/aussiebroadwan/campus/pkg/httpx"
)

// RoleRequestHandler serves applicants filing role requests and reviewers
// deciding them.
type RoleRequestHandler struct {
	Accounts     *service.AccountService
	Verification *service.VerificationService
}

// reviewer loads the caller as a reviewer. The role in the session token is
// only a coarse gate, the stored identity decides.
func (h *RoleRequestHandler) reviewer(w http.ResponseWriter, r *http.Request) (domain.Identity, bool) {
	userID, ok := callerID(w, r)
	if !ok {
		return domain.Identity{}, false
	}
	rev, err := h.Verification.LoadReviewer(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return domain.Identity{}, false
	}
	return rev, true
}

func parseDecision(w http.ResponseWriter, s string) (domain.Decision, bool) {
	d, err := domain.ParseDecision(s)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, campussdk.ErrorCodeValidation, "decision must be approve or reject")
		return "", false
	}
	return d, true
}

// HandleSubmit handles POST /v1/role-requests
//
//	@Summary		Request a role change
//	@Tags			Role Requests
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		campussdk.SubmitRoleRequest	true	"Requested role and reason"
//	@Success		201		{object}	campussdk.RoleRequest
//	@Failure		400		{object}	campussdk.APIError	"Validation failed or a request is already pending"
//	@Failure		401		{object}	campussdk.APIError	"Invalid or missing session"
//	@Router			/v1/role-requests [post].
func (h *RoleRequestHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var in campussdk.SubmitRoleRequest
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		writeBadRequest(w, err)
		return
	}

	req, err := h.Accounts.SubmitRoleRequest(r.Context(), userID, service.RoleRequestInput{
		RequestedRole: in.RequestedRole,
		Reason:        in.Reason,
		Program:       in.Program,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toRoleRequest(req))
}

// HandleMine handles GET /v1/role-requests/mine
//
//	@Summary		List own role requests
//	@Tags			Role Requests
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	campussdk.RoleRequestList
//	@Failure		401	{object}	campussdk.APIError	"Invalid or missing session"
//	@Router			/v1/role-requests/mine [get].
func (h *RoleRequestHandler) HandleMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	reqs, err := h.Accounts.MyRequests(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toRoleRequests(reqs))
}

// HandleApply handles POST /v1/role-requests/apply
//
//	@Summary		Apply for an account with a role
//	@Description	Stages the registration with a role request. The account is created when a reviewer approves it.
//	@Tags			Role Requests
//	@Accept			json
//	@Produce		json
//	@Param			request	body		campussdk.ApplyRequest	true	"Registration and requested role"
//	@Success		201		{object}	campussdk.RoleRequest
//	@Failure		400		{object}	campussdk.APIError	"Validation failed or an application is already pending"
//	@Failure		409		{object}	campussdk.APIError	"Email already registered"
//	@Failure		429		{object}	campussdk.APIError	"Rate limit exceeded"
//	@Router			/v1/role-requests/apply [post].
func (h *RoleRequestHandler) HandleApply(w http.ResponseWriter, r *http.Request) {
	var in campussdk.ApplyRequest
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		writeBadRequest(w, err)
		return
	}

	req, err := h.Accounts.Apply(r.Context(), registrationFrom(in))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toRoleRequest(req))
}

// HandlePending handles GET /v1/role-requests/pending
//
//	@Summary		List requests awaiting review
//	@Description	Only requests the caller may decide are listed.
//	@Tags			Role Requests
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	campussdk.RoleRequestList
//	@Failure		401	{object}	campussdk.APIError	"Invalid or missing session"
//	@Failure		403	{object}	campussdk.APIError	"Caller is not a reviewer"
//	@Router			/v1/role-requests/pending [get].
func (h *RoleRequestHandler) HandlePending(w http.ResponseWriter, r *http.Request) {
	rev, ok := h.reviewer(w, r)
	if !ok {
		return
	}

	reqs, err := h.Verification.ListPending(r.Context(), rev)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toRoleRequests(reqs))
}

// HandleDecision handles POST /v1/role-requests/{id}/decision
//
//	@Summary		Approve or reject a request
//	@Description	Approval creates or updates the applicant's account. A request is decided at most once.
//	@Tags			Role Requests
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Request ID"
//	@Param			request	body		campussdk.DecisionRequest	true	"Decision and remarks"
//	@Success		200		{object}	campussdk.DecisionResponse
//	@Failure		400		{object}	campussdk.APIError	"Validation failed"
//	@Failure		403		{object}	campussdk.APIError	"Caller may not decide this request"
//	@Failure		404		{object}	campussdk.APIError	"Request not found"
//	@Failure		409		{object}	campussdk.APIError	"Request already processed"
//	@Failure		500		{object}	campussdk.APIError	"Account could not be provisioned"
//	@Router			/v1/role-requests/{id}/decision [post].
func (h *RoleRequestHandler) HandleDecision(w http.ResponseWriter, r *http.Request) {
	rev, ok := h.reviewer(w, r)
	if !ok {
		return
	}

	var in campussdk.DecisionRequest
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		writeBadRequest(w, err)
		return
	}
	decision, ok := parseDecision(w, in.Decision)
	if !ok {
		return
	}

	out, err := h.Verification.Decide(r.Context(), rev, r.PathValue("id"), decision, in.Remarks)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := campussdk.DecisionResponse{Request: toRoleRequest(out.Request)}
	if out.Identity != nil {
		p := toProfile(*out.Identity)
		resp.Identity = &p
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleBatch handles POST /v1/role-requests/decisions
//
//	@Summary		Decide several requests
//	@Description	Each request is decided independently, one failure does not stop the rest.
//	@Tags			Role Requests
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		campussdk.BatchDecisionRequest	true	"Request IDs, decision and remarks"
//	@Success		200		{object}	campussdk.BatchDecisionResponse
//	@Failure		400		{object}	campussdk.APIError	"Validation failed"
//	@Failure		403		{object}	campussdk.APIError	"Caller is not a reviewer"
//	@Router			/v1/role-requests/decisions [post].
func (h *RoleRequestHandler) HandleBatch(w http.ResponseWriter, r *http.Request) {
	rev, ok := h.reviewer(w, r)
	if !ok {
		return
	}

	var in campussdk.BatchDecisionRequest
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		writeBadRequest(w, err)
		return
	}
	decision, ok := parseDecision(w, in.Decision)
	if !ok {
		return
	}

	res, err := h.Verification.BatchDecide(r.Context(), rev, in.RequestIDs, decision, in.Remarks)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, campussdk.BatchDecisionResponse{
		Processed: res.Processed,
		Failed:    res.Failed,
		Results:   toBatchItems(res.Items),
	})
}
