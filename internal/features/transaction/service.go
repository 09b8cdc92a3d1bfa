package transaction

import (
	"context"
	"fmt"
	"time"

	"bank-backoffice/internal/common/errs"
	"bank-backoffice/internal/common/models"
	"bank-backoffice/internal/config"
	"bank-backoffice/internal/database"
	"bank-backoffice/internal/features/account"
	"bank-backoffice/internal/features/audit"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AccountGateway is the read-only view of the account collaborator the
// workflow needs: existence and status, never balances.
type AccountGateway interface {
	StatusOf(ctx context.Context, accountID string) (status string, found bool, err error)
}

// ApprovalGateway is how escalation reaches the approval store without
// this package owning approval state.
type ApprovalGateway interface {
	CreatePending(ctx context.Context, transactionID, reviewerID, comments string) error
	HasPending(ctx context.Context, transactionID string) (bool, error)
}

// ReviewerPolicy selects the reviewer for an escalated transaction. The
// default picks the first eligible user by role; the interface exists so
// a deliberate assignment scheme can replace it.
type ReviewerPolicy interface {
	SelectReviewer(ctx context.Context) (string, error)
}

type CreateTransactionRequest struct {
	AccountID string `json:"account_id"`
	Type      string `json:"type"`
	Amount    string `json:"amount"`
}

type TransactionService interface {
	Create(ctx context.Context, req CreateTransactionRequest, actor models.Actor) (*Transaction, error)
	GetByID(ctx context.Context, id string) (*Transaction, error)
	StatusOf(ctx context.Context, id string) (string, error)
	List(ctx context.Context, filter ListFilter) ([]Transaction, error)
	ChangeStatus(ctx context.Context, id, newStatus string, actor models.Actor) (*Transaction, error)
	Delete(ctx context.Context, id string, actor models.Actor) error

	// FinalizeFromApproval and ReopenFromApprovalDelete are called by
	// the approval engine inside its unit of work, never by controllers.
	FinalizeFromApproval(ctx context.Context, transactionID, decision string) error
	ReopenFromApprovalDelete(ctx context.Context, transactionID string) error
}

type TransactionServiceImpl struct {
	Repo         TransactionRepository
	Accounts     AccountGateway
	Approvals    ApprovalGateway
	Reviewers    ReviewerPolicy
	AuditService audit.AuditService
	Atomic       database.AtomicRunner

	threshold decimal.Decimal
}

func NewTransactionService(
	cfg *config.Config,
	repo TransactionRepository,
	accounts AccountGateway,
	approvals ApprovalGateway,
	reviewers ReviewerPolicy,
	auditService audit.AuditService,
	atomic database.AtomicRunner,
) (TransactionService, error) {
	threshold, err := decimal.NewFromString(cfg.EscalationThreshold)
	if err != nil {
		return nil, fmt.Errorf("invalid escalation threshold %q: %w", cfg.EscalationThreshold, err)
	}

	return &TransactionServiceImpl{
		Repo:         repo,
		Accounts:     accounts,
		Approvals:    approvals,
		Reviewers:    reviewers,
		AuditService: auditService,
		Atomic:       atomic,
		threshold:    threshold,
	}, nil
}

func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, errs.Validation("amount %q is not a valid number", raw)
	}
	if !amount.IsPositive() {
		return decimal.Zero, errs.Validation("amount must be greater than zero")
	}
	if amount.Exponent() < -2 {
		return decimal.Zero, errs.Validation("amount must have at most 2 decimal places")
	}
	return amount, nil
}

// Create persists a new transaction with status Created. Amounts above
// the escalation threshold additionally get a linked Pending approval
// and move to PendingApproval; both writes and the audit entry are one
// unit of work.
func (s *TransactionServiceImpl) Create(ctx context.Context, req CreateTransactionRequest, actor models.Actor) (*Transaction, error) {
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return nil, err
	}
	if req.Type == "" {
		return nil, errs.Validation("transaction type is required")
	}

	status, found, err := s.Accounts.StatusOf(ctx, req.AccountID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errs.NotFound("account %s not found", req.AccountID)
	}
	if status != account.StatusActive {
		return nil, errs.Validation("account %s is not active", req.AccountID)
	}

	accountOID, err := primitive.ObjectIDFromHex(req.AccountID)
	if err != nil {
		return nil, errs.Validation("account id %q is malformed", req.AccountID)
	}
	initiatorOID, err := primitive.ObjectIDFromHex(actor.ID)
	if err != nil {
		return nil, errs.Validation("initiator id %q is malformed", actor.ID)
	}
	amount128, err := primitive.ParseDecimal128(amount.StringFixed(2))
	if err != nil {
		return nil, errs.Validation("amount %q is not a valid number", req.Amount)
	}

	txn := &Transaction{
		ID:          primitive.NewObjectID(),
		AccountID:   accountOID,
		Type:        req.Type,
		Amount:      amount128,
		Status:      StatusCreated,
		Date:        time.Now().UTC(),
		InitiatedBy: initiatorOID,
	}

	escalate := amount.GreaterThan(s.threshold)

	var reviewerID string
	if escalate {
		// Resolve the reviewer before opening the unit of work; a
		// missing reviewer must fail the whole creation, not strand a
		// PendingApproval transaction without an approval.
		reviewerID, err = s.Reviewers.SelectReviewer(ctx)
		if err != nil {
			return nil, err
		}
	}

	err = s.Atomic.RunAtomic(ctx, func(ctx context.Context) error {
		if err := s.Repo.Create(ctx, txn); err != nil {
			return err
		}

		if escalate {
			comments := fmt.Sprintf("High-value transaction: %s", amount.StringFixed(2))
			if err := s.Approvals.CreatePending(ctx, txn.ID.Hex(), reviewerID, comments); err != nil {
				return err
			}
			if err := s.Repo.UpdateStatus(ctx, txn.ID.Hex(), StatusPendingApproval); err != nil {
				return err
			}
			txn.Status = StatusPendingApproval
		}

		summary := fmt.Sprintf("account=%s type=%s amount=%s status=%s",
			req.AccountID, txn.Type, amount.StringFixed(2), txn.Status)
		return s.AuditService.Record(ctx, actor.ID, audit.ActionCreateTransaction, "", summary)
	})
	if err != nil {
		return nil, err
	}

	return txn, nil
}

func (s *TransactionServiceImpl) GetByID(ctx context.Context, id string) (*Transaction, error) {
	txn, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, errs.NotFound("transaction %s not found", id)
	}
	return txn, nil
}

func (s *TransactionServiceImpl) StatusOf(ctx context.Context, id string) (string, error) {
	txn, err := s.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return string(txn.Status), nil
}

func (s *TransactionServiceImpl) List(ctx context.Context, filter ListFilter) ([]Transaction, error) {
	return s.Repo.List(ctx, filter)
}

// ChangeStatus is a manager's administrative override, distinct from
// the approval-driven transition: the only permitted target is
// Cancelled, and a transaction with an active pending approval must
// have that approval resolved first.
func (s *TransactionServiceImpl) ChangeStatus(ctx context.Context, id, newStatus string, actor models.Actor) (*Transaction, error) {
	if !actor.IsManager() {
		return nil, errs.Authorization("only managers may change transaction status")
	}
	if Status(newStatus) != StatusCancelled {
		return nil, errs.Validation("status %q is not a permitted override target", newStatus)
	}

	txn, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if txn.Status.IsTerminal() {
		return nil, errs.Conflict("transaction %s is already %s", id, txn.Status)
	}

	pending, err := s.Approvals.HasPending(ctx, id)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, errs.Conflict("transaction %s has a pending approval; resolve it first", id)
	}

	err = s.Atomic.RunAtomic(ctx, func(ctx context.Context) error {
		if err := s.Repo.UpdateStatus(ctx, id, Status(newStatus)); err != nil {
			return err
		}
		return s.AuditService.Record(ctx, actor.ID, audit.ActionChangeTransactionStatus,
			string(txn.Status), newStatus)
	})
	if err != nil {
		return nil, err
	}

	txn.Status = Status(newStatus)
	return txn, nil
}

// Delete hard-deletes the record. The audit entry stores a snapshot of
// the transaction since afterwards there is nothing left to reference.
func (s *TransactionServiceImpl) Delete(ctx context.Context, id string, actor models.Actor) error {
	if !actor.IsManager() {
		return errs.Authorization("only managers may delete transactions")
	}

	txn, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	snapshot := fmt.Sprintf("transaction=%s account=%s type=%s amount=%s status=%s",
		txn.ID.Hex(), txn.AccountID.Hex(), txn.Type, txn.Amount.String(), txn.Status)

	return s.Atomic.RunAtomic(ctx, func(ctx context.Context) error {
		if err := s.AuditService.Record(ctx, actor.ID, audit.ActionDeleteTransaction, snapshot, ""); err != nil {
			return err
		}
		return s.Repo.Delete(ctx, id)
	})
}

// FinalizeFromApproval maps a terminal approval decision onto the
// transaction: Approved completes it, Rejected rejects it. The guarded
// update keeps a second finalization (or one against a transaction that
// never escalated) from committing.
func (s *TransactionServiceImpl) FinalizeFromApproval(ctx context.Context, transactionID, decision string) error {
	var target Status
	switch decision {
	case "Approved":
		target = StatusCompleted
	case "Rejected":
		target = StatusRejected
	default:
		return errs.Invariant("decision %q cannot finalize a transaction", decision)
	}

	ok, err := s.Repo.UpdateStatusIf(ctx, transactionID, StatusPendingApproval, target)
	if err != nil {
		return err
	}
	if !ok {
		return errs.Invariant("transaction %s is not pending approval", transactionID)
	}
	return nil
}

// ReopenFromApprovalDelete reverts a PendingApproval transaction to
// Created when its active approval is deleted, so it is never stranded
// waiting on an approval that no longer exists.
func (s *TransactionServiceImpl) ReopenFromApprovalDelete(ctx context.Context, transactionID string) error {
	_, err := s.Repo.UpdateStatusIf(ctx, transactionID, StatusPendingApproval, StatusCreated)
	return err
}
