package approval

import (
	"context"
	"fmt"
	"time"

	"bank-backoffice/internal/common/errs"
	"bank-backoffice/internal/common/models"
	"bank-backoffice/internal/database"
	"bank-backoffice/internal/features/audit"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TransactionGateway is the slice of the transaction engine this
// package drives: a terminal decision finalizes the linked transaction,
// deleting an active approval reopens it.
type TransactionGateway interface {
	StatusOf(ctx context.Context, transactionID string) (string, error)
	FinalizeFromApproval(ctx context.Context, transactionID, decision string) error
	ReopenFromApprovalDelete(ctx context.Context, transactionID string) error
}

// UserDirectory resolves reviewer references against the user store.
type UserDirectory interface {
	RoleOf(ctx context.Context, userID string) (role string, found bool, err error)
}

type CreateApprovalRequest struct {
	TransactionID string `json:"transaction_id"`
	ReviewerID    string `json:"reviewer_id"`
	Decision      string `json:"decision"`
	Comments      string `json:"comments"`
}

type UpdateApprovalRequest struct {
	ReviewerID string `json:"reviewer_id"`
	Comments   string `json:"comments"`
}

type ApprovalService interface {
	Create(ctx context.Context, req CreateApprovalRequest, actor models.Actor) (*Approval, error)
	GetByID(ctx context.Context, id string) (*Approval, error)
	GetAll(ctx context.Context, filter ListFilter) ([]Approval, error)
	SubmitDecision(ctx context.Context, id, reviewerID, decision, comments string, actor models.Actor) (*Approval, error)
	ChangeDecision(ctx context.Context, id, newDecision string, actor models.Actor) (*Approval, error)
	Update(ctx context.Context, id string, req UpdateApprovalRequest, actor models.Actor) (*Approval, error)
	Delete(ctx context.Context, id string, actor models.Actor) error
}

type ApprovalServiceImpl struct {
	Repo         ApprovalRepository
	Transactions TransactionGateway
	Users        UserDirectory
	AuditService audit.AuditService
	Atomic       database.AtomicRunner
}

func NewApprovalService(
	repo ApprovalRepository,
	transactions TransactionGateway,
	users UserDirectory,
	auditService audit.AuditService,
	atomic database.AtomicRunner,
) ApprovalService {
	return &ApprovalServiceImpl{
		Repo:         repo,
		Transactions: transactions,
		Users:        users,
		AuditService: auditService,
		Atomic:       atomic,
	}
}

func validateComments(comments string) error {
	if len(comments) > MaxCommentLength {
		return errs.Validation("comments exceed %d characters", MaxCommentLength)
	}
	return nil
}

// Create is the explicit creation path, used outside auto-escalation.
// It attaches an approval to an existing transaction without moving the
// transaction's status; a transaction that already has a Pending
// approval cannot get a second one.
func (s *ApprovalServiceImpl) Create(ctx context.Context, req CreateApprovalRequest, actor models.Actor) (*Approval, error) {
	decision, err := NormalizeDecision(req.Decision)
	if err != nil {
		return nil, err
	}
	if err := validateComments(req.Comments); err != nil {
		return nil, err
	}

	// Both references must resolve before anything is written.
	if _, err := s.Transactions.StatusOf(ctx, req.TransactionID); err != nil {
		return nil, err
	}
	_, found, err := s.Users.RoleOf(ctx, req.ReviewerID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errs.NotFound("reviewer %s not found", req.ReviewerID)
	}

	if decision == DecisionPending {
		pending, err := s.Repo.HasPending(ctx, req.TransactionID)
		if err != nil {
			return nil, err
		}
		if pending {
			return nil, errs.Conflict("transaction %s already has a pending approval", req.TransactionID)
		}
	}

	txnOID, err := primitive.ObjectIDFromHex(req.TransactionID)
	if err != nil {
		return nil, errs.Validation("transaction id %q is malformed", req.TransactionID)
	}
	reviewerOID, err := primitive.ObjectIDFromHex(req.ReviewerID)
	if err != nil {
		return nil, errs.Validation("reviewer id %q is malformed", req.ReviewerID)
	}

	approval := &Approval{
		ID:            primitive.NewObjectID(),
		TransactionID: txnOID,
		ReviewerID:    reviewerOID,
		Decision:      decision,
		Comments:      req.Comments,
		ApprovalDate:  time.Now().UTC(),
	}

	err = s.Atomic.RunAtomic(ctx, func(ctx context.Context) error {
		if err := s.Repo.Create(ctx, approval); err != nil {
			return err
		}
		summary := fmt.Sprintf("approval=%s transaction=%s reviewer=%s decision=%s",
			approval.ID.Hex(), req.TransactionID, req.ReviewerID, decision)
		return s.AuditService.Record(ctx, actor.ID, audit.ActionCreateApproval, "", summary)
	})
	if err != nil {
		return nil, err
	}
	return approval, nil
}

func (s *ApprovalServiceImpl) GetByID(ctx context.Context, id string) (*Approval, error) {
	approval, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if approval == nil {
		return nil, errs.NotFound("approval %s not found", id)
	}
	return approval, nil
}

func (s *ApprovalServiceImpl) GetAll(ctx context.Context, filter ListFilter) ([]Approval, error) {
	return s.Repo.List(ctx, filter)
}

// SubmitDecision records a reviewer's binding decision. The reviewer
// must be the authenticated caller and hold the Manager role. The
// approval mutation, the transaction finalization and the audit entry
// commit or roll back together.
func (s *ApprovalServiceImpl) SubmitDecision(ctx context.Context, id, reviewerID, decision, comments string, actor models.Actor) (*Approval, error) {
	if reviewerID != actor.ID {
		return nil, errs.Authorization("reviewer identity does not match the authenticated caller")
	}
	if !actor.IsManager() {
		return nil, errs.Authorization("only managers may decide approvals")
	}

	role, found, err := s.Users.RoleOf(ctx, reviewerID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errs.NotFound("reviewer %s not found", reviewerID)
	}
	if role != models.RoleManager {
		return nil, errs.Authorization("reviewer %s does not hold the Manager role", reviewerID)
	}

	normalized, err := NormalizeDecision(decision)
	if err != nil {
		return nil, err
	}
	if !normalized.IsTerminal() {
		return nil, errs.Validation("decision must be Approve or Reject")
	}
	if err := validateComments(comments); err != nil {
		return nil, err
	}

	approval, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if approval.Decision.IsTerminal() {
		return nil, errs.Conflict("approval %s is already %s", id, approval.Decision)
	}

	reviewerOID, err := primitive.ObjectIDFromHex(reviewerID)
	if err != nil {
		return nil, errs.Validation("reviewer id %q is malformed", reviewerID)
	}

	decidedAt := time.Now().UTC()
	err = s.Atomic.RunAtomic(ctx, func(ctx context.Context) error {
		ok, err := s.Repo.DecideIfPending(ctx, id, normalized, comments, reviewerOID, decidedAt)
		if err != nil {
			return err
		}
		if !ok {
			// Lost the race against a concurrent decision.
			return errs.Conflict("approval %s has already been decided", id)
		}

		if err := s.Transactions.FinalizeFromApproval(ctx, approval.TransactionID.Hex(), string(normalized)); err != nil {
			return err
		}

		newValue := fmt.Sprintf("decision=%s comments=%s", normalized, comments)
		return s.AuditService.Record(ctx, actor.ID, audit.ActionApprovalDecision,
			string(DecisionPending), newValue)
	})
	if err != nil {
		return nil, err
	}

	approval.Decision = normalized
	approval.Comments = comments
	approval.ReviewerID = reviewerOID
	approval.ApprovalDate = decidedAt
	return approval, nil
}

// ChangeDecision is the administrative override of SubmitDecision: no
// reviewer-identity match, but the same terminal-state guard and the
// same coupled transaction finalization.
func (s *ApprovalServiceImpl) ChangeDecision(ctx context.Context, id, newDecision string, actor models.Actor) (*Approval, error) {
	if !actor.IsManager() {
		return nil, errs.Authorization("only managers may change approval decisions")
	}

	normalized, err := NormalizeDecision(newDecision)
	if err != nil {
		return nil, err
	}
	if !normalized.IsTerminal() {
		return nil, errs.Validation("decision must be Approve or Reject")
	}

	approval, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if approval.Decision.IsTerminal() {
		return nil, errs.Conflict("approval %s is already %s", id, approval.Decision)
	}

	decidedAt := time.Now().UTC()
	err = s.Atomic.RunAtomic(ctx, func(ctx context.Context) error {
		ok, err := s.Repo.DecideIfPending(ctx, id, normalized, approval.Comments, approval.ReviewerID, decidedAt)
		if err != nil {
			return err
		}
		if !ok {
			return errs.Conflict("approval %s has already been decided", id)
		}

		if err := s.Transactions.FinalizeFromApproval(ctx, approval.TransactionID.Hex(), string(normalized)); err != nil {
			return err
		}

		return s.AuditService.Record(ctx, actor.ID, audit.ActionChangeDecision,
			string(DecisionPending), string(normalized))
	})
	if err != nil {
		return nil, err
	}

	approval.Decision = normalized
	approval.ApprovalDate = decidedAt
	return approval, nil
}

// Update reassigns the reviewer or amends comments on a Pending
// approval. Decisions only move through SubmitDecision/ChangeDecision.
func (s *ApprovalServiceImpl) Update(ctx context.Context, id string, req UpdateApprovalRequest, actor models.Actor) (*Approval, error) {
	if !actor.IsManager() {
		return nil, errs.Authorization("only managers may update approvals")
	}
	if err := validateComments(req.Comments); err != nil {
		return nil, err
	}

	approval, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if approval.Decision.IsTerminal() {
		return nil, errs.Conflict("approval %s is already %s", id, approval.Decision)
	}

	update := bson.M{}
	if req.Comments != "" {
		update["comments"] = req.Comments
	}
	if req.ReviewerID != "" {
		_, found, err := s.Users.RoleOf(ctx, req.ReviewerID)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, errs.NotFound("reviewer %s not found", req.ReviewerID)
		}
		reviewerOID, err := primitive.ObjectIDFromHex(req.ReviewerID)
		if err != nil {
			return nil, errs.Validation("reviewer id %q is malformed", req.ReviewerID)
		}
		update["reviewer_id"] = reviewerOID
	}
	if len(update) == 0 {
		return approval, nil
	}

	old := fmt.Sprintf("reviewer=%s comments=%s", approval.ReviewerID.Hex(), approval.Comments)

	err = s.Atomic.RunAtomic(ctx, func(ctx context.Context) error {
		if err := s.Repo.Update(ctx, id, update); err != nil {
			return err
		}
		summary := fmt.Sprintf("reviewer=%s comments=%s", req.ReviewerID, req.Comments)
		return s.AuditService.Record(ctx, actor.ID, audit.ActionUpdateApproval, old, summary)
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// Delete removes an approval. Deleting the active approval of a
// PendingApproval transaction reverts that transaction to Created in
// the same unit of work, so it is never left waiting on nothing.
func (s *ApprovalServiceImpl) Delete(ctx context.Context, id string, actor models.Actor) error {
	if !actor.IsManager() {
		return errs.Authorization("only managers may delete approvals")
	}

	approval, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	snapshot := fmt.Sprintf("approval=%s transaction=%s reviewer=%s decision=%s",
		approval.ID.Hex(), approval.TransactionID.Hex(), approval.ReviewerID.Hex(), approval.Decision)

	return s.Atomic.RunAtomic(ctx, func(ctx context.Context) error {
		if err := s.Repo.Delete(ctx, id); err != nil {
			return err
		}
		if approval.Decision == DecisionPending {
			if err := s.Transactions.ReopenFromApprovalDelete(ctx, approval.TransactionID.Hex()); err != nil {
				return err
			}
		}
		return s.AuditService.Record(ctx, actor.ID, audit.ActionDeleteApproval, snapshot, "")
	})
}
