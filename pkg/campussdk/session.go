package campussdk

import (
	"context"
	"net/http"
	"net/url"
)

// Session calls the endpoints that need a full session token.
type Session struct {
	client *Client
	Token  string
}

func (s *Session) do(ctx context.Context, method, path string, in, out any, expected int) error {
	return s.client.do(ctx, method, path, s.Token, in, out, expected)
}

func (s *Session) Profile(ctx context.Context) (*Profile, error) {
	var out Profile
	if err := s.do(ctx, http.MethodGet, "/v1/me", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) UpdateProfile(ctx context.Context, upd ProfileUpdate) (*Profile, error) {
	var out Profile
	if err := s.do(ctx, http.MethodPatch, "/v1/me", upd, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) TwoFactorStatus(ctx context.Context) (*TwoFactorStatus, error) {
	var out TwoFactorStatus
	if err := s.do(ctx, http.MethodGet, "/v1/2fa", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetupTwoFactor starts enrolling method ("totp" or "sms").
func (s *Session) SetupTwoFactor(ctx context.Context, method, phone string) (*TwoFactorSetupResponse, error) {
	var out TwoFactorSetupResponse
	err := s.do(ctx, http.MethodPost, "/v1/2fa/setup", TwoFactorSetupRequest{Method: method, Phone: phone}, &out, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) ConfirmTwoFactor(ctx context.Context, method, code string) error {
	return s.do(ctx, http.MethodPost, "/v1/2fa/confirm", TwoFactorConfirmRequest{Method: method, Code: code}, nil, http.StatusNoContent)
}

func (s *Session) DisableTwoFactor(ctx context.Context, code string) error {
	return s.do(ctx, http.MethodPost, "/v1/2fa/disable", TwoFactorDisableRequest{Code: code}, nil, http.StatusNoContent)
}

func (s *Session) ResendCode(ctx context.Context) (*CodeIssued, error) {
	var out CodeIssued
	if err := s.do(ctx, http.MethodPost, "/v1/2fa/resend", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) SubmitRoleRequest(ctx context.Context, req SubmitRoleRequest) (*RoleRequest, error) {
	var out RoleRequest
	if err := s.do(ctx, http.MethodPost, "/v1/role-requests", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) MyRoleRequests(ctx context.Context) ([]RoleRequest, error) {
	var out RoleRequestList
	if err := s.do(ctx, http.MethodGet, "/v1/role-requests/mine", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Requests, nil
}

// PendingRoleRequests lists what the caller may review.
func (s *Session) PendingRoleRequests(ctx context.Context) ([]RoleRequest, error) {
	var out RoleRequestList
	if err := s.do(ctx, http.MethodGet, "/v1/role-requests/pending", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Requests, nil
}

// Decide approves or rejects one request.
func (s *Session) Decide(ctx context.Context, requestID, decision, remarks string) (*DecisionResponse, error) {
	var out DecisionResponse
	path := "/v1/role-requests/" + url.PathEscape(requestID) + "/decision"
	if err := s.do(ctx, http.MethodPost, path, DecisionRequest{Decision: decision, Remarks: remarks}, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) BatchDecide(ctx context.Context, req BatchDecisionRequest) (*BatchDecisionResponse, error) {
	var out BatchDecisionResponse
	if err := s.do(ctx, http.MethodPost, "/v1/role-requests/decisions", req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) VerificationStatus(ctx context.Context) (*VerificationStatus, error) {
	var out VerificationStatus
	if err := s.do(ctx, http.MethodGet, "/v1/verification/status", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) Scan(ctx context.Context) (*ScanReport, error) {
	var out ScanReport
	if err := s.do(ctx, http.MethodGet, "/v1/verification/scan", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) Repair(ctx context.Context) (*RepairReport, error) {
	var out RepairReport
	if err := s.do(ctx, http.MethodPost, "/v1/verification/repair", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
