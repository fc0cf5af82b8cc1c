package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/campus/internal/campus/domain"
	"github.com/aussiebroadwan/campus/internal/campus/store"
	"github.com/aussiebroadwan/campus/pkg/slogx"
)

// Divergence reasons reported by Scan.
const (
	DivergenceMissing  = "missing_identity"
	DivergenceUnlinked = "unlinked_identity"
)

// Divergence is an approved request whose identity is not where it should
// be.
type Divergence struct {
	RequestID  string `json:"request_id"`
	Email      string `json:"email,omitempty"`
	UserID     string `json:"user_id,omitempty"`
	Reason     string `json:"reason"`
	IdentityID string `json:"identity_id,omitempty"` // the identity found by email, if any
}

// ScanReport lists every approved request that failed the check.
type ScanReport struct {
	Checked     int          `json:"checked"`
	Divergences []Divergence `json:"divergences"`
}

// RepairReport is the outcome of Repair.
type RepairReport struct {
	Repaired int          `json:"repaired"`
	Failed   []BatchItem  `json:"failed"`
	Fixed    []Divergence `json:"fixed"`
}

// VerificationStatus is the aggregate view of requests and identities.
type VerificationStatus struct {
	Requests   map[domain.RequestStatus]int `json:"requests"`
	Identities int                          `json:"identities"`
	Verified   int                          `json:"verified"`
	Unverified int                          `json:"unverified"`
	ByRole     map[domain.Role]int          `json:"by_role"`
}

// Status aggregates request and identity counts.
func (s *VerificationService) Status(ctx context.Context) (VerificationStatus, error) {
	reqs, err := s.Store.RoleRequests().CountByStatus(ctx)
	if err != nil {
		return VerificationStatus{}, fmt.Errorf("count requests: %w", err)
	}
	ids, err := s.Store.Identities().Counts(ctx)
	if err != nil {
		return VerificationStatus{}, fmt.Errorf("count identities: %w", err)
	}
	return VerificationStatus{
		Requests:   reqs,
		Identities: ids.Total,
		Verified:   ids.Verified,
		Unverified: ids.Unverified,
		ByRole:     ids.ByRole,
	}, nil
}

// Scan checks that every approved request has its identity. It never
// writes.
func (s *VerificationService) Scan(ctx context.Context) (ScanReport, error) {
	approved, err := s.Store.RoleRequests().ListByStatus(ctx, domain.StatusApproved)
	if err != nil {
		return ScanReport{}, fmt.Errorf("list approved: %w", err)
	}

	ids := s.Store.Identities()
	report := ScanReport{Checked: len(approved), Divergences: []Divergence{}}
	for _, req := range approved {
		d, ok, err := check(ctx, ids, req)
		if err != nil {
			return ScanReport{}, err
		}
		if !ok {
			report.Divergences = append(report.Divergences, d)
		}
	}

	if n := len(report.Divergences); n > 0 {
		slogx.FromContext(ctx).Warn("approved requests without identity", "count", n, "checked", report.Checked)
	}
	return report, nil
}

func check(ctx context.Context, ids store.Identities, req domain.RoleRequest) (Divergence, bool, error) {
	d := Divergence{RequestID: req.ID, Email: req.Email(), UserID: req.UserID}

	if email := req.Email(); email != "" {
		id, err := ids.GetByEmail(ctx, email)
		switch {
		case errors.Is(err, store.ErrNotFound):
			d.Reason = DivergenceMissing
			return d, false, nil
		case err != nil:
			return d, false, fmt.Errorf("lookup %s: %w", req.ID, err)
		}
		if id.ID != req.UserID {
			d.Reason = DivergenceUnlinked
			d.IdentityID = id.ID
			return d, false, nil
		}
		return d, true, nil
	}

	if req.UserID == "" {
		d.Reason = DivergenceMissing
		return d, false, nil
	}
	_, err := ids.GetByID(ctx, req.UserID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		d.Reason = DivergenceMissing
		return d, false, nil
	case err != nil:
		return d, false, fmt.Errorf("lookup %s: %w", req.ID, err)
	}
	return d, true, nil
}

// Repair fixes what Scan reports. Missing identities are provisioned again
// from the request without re-checking reviewer scope, since the decision
// was already made, and the request is relinked.
func (s *VerificationService) Repair(ctx context.Context, operator domain.Identity) (RepairReport, error) {
	scan, err := s.Scan(ctx)
	if err != nil {
		return RepairReport{}, err
	}

	log := slogx.FromContext(ctx)
	report := RepairReport{Failed: []BatchItem{}, Fixed: []Divergence{}}
	for _, d := range scan.Divergences {
		identityID, err := s.repairOne(ctx, d, operator.ID)
		if err != nil {
			log.Warn("repair failed", "request_id", d.RequestID, "reason", d.Reason, "error", err)
			report.Failed = append(report.Failed, BatchItem{
				RequestID: d.RequestID,
				Kind:      KindOf(err),
				Message:   Describe(err),
			})
			continue
		}
		d.IdentityID = identityID
		report.Fixed = append(report.Fixed, d)
		report.Repaired++
	}

	log.Info("reconciliation repair finished", "repaired", report.Repaired, "failed", len(report.Failed))
	return report, nil
}

func (s *VerificationService) repairOne(ctx context.Context, d Divergence, operatorID string) (string, error) {
	rr := s.Store.RoleRequests()

	if d.Reason != DivergenceMissing {
		if err := rr.LinkUser(ctx, d.RequestID, d.IdentityID); err != nil {
			return "", fmt.Errorf("link request: %w", err)
		}
		return d.IdentityID, nil
	}

	req, err := rr.GetByID(ctx, d.RequestID)
	if err != nil {
		return "", fmt.Errorf("load request: %w", err)
	}
	// Provision from the staged data, not the dangling link.
	req.UserID = ""
	return s.provision(ctx, req, operatorID, func(tx store.Tx, identityID string) error {
		if err := tx.RoleRequests().LinkUser(ctx, d.RequestID, identityID); err != nil {
			return fmt.Errorf("link request: %w", err)
		}
		return nil
	})
}
