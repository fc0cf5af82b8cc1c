package http

import (
	"net/http"

	"github.com/aussiebroadwan/campus/internal/campus/domain"
	"github.com/aussiebroadwan/campus/internal/campus/service"
	"github.com/aussiebroadwan/campus/pkg/campussdk"
	"github.com/aussiebroadwan/campus/pkg/httpx"
)

// VerificationHandler serves the administrative view of verification
// state and the reconciliation tools.
type VerificationHandler struct {
	Verification *service.VerificationService
}

func (h *VerificationHandler) admin(w http.ResponseWriter, r *http.Request) (domain.Identity, bool) {
	userID, ok := callerID(w, r)
	if !ok {
		return domain.Identity{}, false
	}
	rev, err := h.Verification.LoadReviewer(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return domain.Identity{}, false
	}
	if rev.Role != domain.RoleAdmin {
		httpx.WriteError(w, http.StatusForbidden, campussdk.ErrorCodeForbidden, "administrators only")
		return domain.Identity{}, false
	}
	return rev, true
}

// HandleStatus handles GET /v1/verification/status
//
//	@Summary		Verification totals
//	@Description	Request counts by status and identity counts by role and verification.
//	@Tags			Verification
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	campussdk.VerificationStatus
//	@Failure		401	{object}	campussdk.APIError	"Invalid or missing session"
//	@Failure		403	{object}	campussdk.APIError	"Administrators only"
//	@Router			/v1/verification/status [get].
func (h *VerificationHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.admin(w, r); !ok {
		return
	}

	st, err := h.Verification.Status(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toVerificationStatus(st))
}

// HandleScan handles GET /v1/verification/scan
//
//	@Summary		Find approved requests without a matching account
//	@Tags			Verification
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	campussdk.ScanReport
//	@Failure		401	{object}	campussdk.APIError	"Invalid or missing session"
//	@Failure		403	{object}	campussdk.APIError	"Administrators only"
//	@Router			/v1/verification/scan [get].
func (h *VerificationHandler) HandleScan(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.admin(w, r); !ok {
		return
	}

	rep, err := h.Verification.Scan(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, campussdk.ScanReport{
		Checked:     rep.Checked,
		Divergences: toDivergences(rep.Divergences),
	})
}

// HandleRepair handles POST /v1/verification/repair
//
//	@Summary		Provision accounts for approved requests
//	@Description	Creates or links the accounts the scan reports as missing. Restricted to administrators without a program scope.
//	@Tags			Verification
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	campussdk.RepairReport
//	@Failure		401	{object}	campussdk.APIError	"Invalid or missing session"
//	@Failure		403	{object}	campussdk.APIError	"Super administrators only"
//	@Router			/v1/verification/repair [post].
func (h *VerificationHandler) HandleRepair(w http.ResponseWriter, r *http.Request) {
	op, ok := h.admin(w, r)
	if !ok {
		return
	}
	if !op.IsSuperAdmin() {
		httpx.WriteError(w, http.StatusForbidden, campussdk.ErrorCodeForbidden, "super administrators only")
		return
	}

	rep, err := h.Verification.Repair(r.Context(), op)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, campussdk.RepairReport{
		Repaired: rep.Repaired,
		Fixed:    toDivergences(rep.Fixed),
		Failed:   toBatchItems(rep.Failed),
	})
}
