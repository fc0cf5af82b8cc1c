package http

import (
	"github.com/aussiebroadwan/campus/internal/campus/domain"
	"github.com/aussiebroadwan/campus/internal/campus/service"
	"github.com/aussiebroadwan/campus/pkg/campussdk"
)

func toProfile(id domain.Identity) campussdk.Profile {
	return campussdk.Profile{
		ID:               id.ID,
		Email:            id.Email,
		Name:             id.Name,
		Role:             id.Role.String(),
		Verified:         id.Verified,
		Programs:         id.Programs,
		Branch:           id.Branch,
		Program:          id.Program,
		Course:           id.Course,
		Phone:            id.Phone,
		TwoFactorEnabled: id.TwoFactor.Enabled,
		TwoFactorMethod:  string(twoFactorMethod(id.TwoFactor)),
		LastLoginAt:      id.LastLoginAt,
		CreatedAt:        id.CreatedAt,
	}
}

// twoFactorMethod hides the method of an enrollment that was never confirmed.
func twoFactorMethod(st domain.TwoFactorState) domain.TwoFactorMethod {
	if !st.Enabled || st.Method == "" {
		return domain.MethodNone
	}
	return st.Method
}

func toRoleRequest(req domain.RoleRequest) campussdk.RoleRequest {
	out := campussdk.RoleRequest{
		ID:            req.ID,
		UserID:        req.UserID,
		Email:         req.Email(),
		RequestedRole: req.RequestedRole.String(),
		CurrentRole:   req.CurrentRole.String(),
		Reason:        req.Reason,
		Program:       req.ScopeProgram(),
		Status:        string(req.Status),
		ReviewedBy:    req.ReviewedBy,
		ReviewedAt:    req.ReviewedAt,
		Remarks:       req.Remarks,
		CreatedAt:     req.CreatedAt,
	}
	if req.Staged != nil {
		out.Name = req.Staged.Name
	}
	return out
}

func toRoleRequests(reqs []domain.RoleRequest) campussdk.RoleRequestList {
	out := campussdk.RoleRequestList{Requests: make([]campussdk.RoleRequest, 0, len(reqs))}
	for _, r := range reqs {
		out.Requests = append(out.Requests, toRoleRequest(r))
	}
	return out
}

func toToken(t service.Token) campussdk.Token {
	return campussdk.Token{Token: t.Value, TokenUse: t.Use, ExpiresAt: t.ExpiresAt}
}

func toBatchItems(items []service.BatchItem) []campussdk.BatchItem {
	out := make([]campussdk.BatchItem, 0, len(items))
	for _, it := range items {
		out = append(out, campussdk.BatchItem{
			RequestID:   it.RequestID,
			OK:          it.OK,
			Status:      it.Status,
			UserID:      it.UserID,
			Error:       string(it.Kind),
			Description: it.Message,
		})
	}
	return out
}

func toDivergences(ds []service.Divergence) []campussdk.Divergence {
	out := make([]campussdk.Divergence, 0, len(ds))
	for _, d := range ds {
		out = append(out, campussdk.Divergence(d))
	}
	return out
}

func toVerificationStatus(st service.VerificationStatus) campussdk.VerificationStatus {
	out := campussdk.VerificationStatus{
		Requests:   make(map[string]int, len(st.Requests)),
		Identities: st.Identities,
		Verified:   st.Verified,
		Unverified: st.Unverified,
		ByRole:     make(map[string]int, len(st.ByRole)),
	}
	for k, v := range st.Requests {
		out.Requests[string(k)] = v
	}
	for k, v := range st.ByRole {
		out.ByRole[k.String()] = v
	}
	return out
}
