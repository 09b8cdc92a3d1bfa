package user

import (
	"context"

	"bank-backoffice/internal/common/errs"
	"bank-backoffice/internal/common/models"
)

// FirstEligibleReviewer picks the first Active user holding the Manager
// or Officer role. It satisfies the transaction engine's ReviewerPolicy
// so the selection rule can be swapped without touching the workflow.
type FirstEligibleReviewer struct {
	Repo UserRepository
}

func NewFirstEligibleReviewer(repo UserRepository) *FirstEligibleReviewer {
	return &FirstEligibleReviewer{Repo: repo}
}

func (p *FirstEligibleReviewer) SelectReviewer(ctx context.Context) (string, error) {
	reviewer, err := p.Repo.FindFirstByRoles(ctx, []string{models.RoleManager, models.RoleOfficer})
	if err != nil {
		return "", err
	}
	if reviewer == nil {
		return "", errs.Invariant("no eligible reviewer available for escalation")
	}
	return reviewer.ID.Hex(), nil
}
