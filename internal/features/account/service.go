package account

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bank-backoffice/internal/common/errs"
	"bank-backoffice/internal/common/models"
	"bank-backoffice/internal/database"
	"bank-backoffice/internal/features/audit"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CreateAccountRequest struct {
	AccountNumber string `json:"account_number"`
	Branch        string `json:"branch"`
	CustomerName  string `json:"customer_name"`
	Type          string `json:"type"`
	Balance       string `json:"balance"`
}

type UpdateAccountRequest struct {
	Branch       string `json:"branch"`
	CustomerName string `json:"customer_name"`
	Type         string `json:"type"`
}

type AccountService interface {
	Create(ctx context.Context, req CreateAccountRequest, actor models.Actor) (*Account, error)
	GetByID(ctx context.Context, id string) (*Account, error)
	List(ctx context.Context, branch, status string, page, limit int64) ([]Account, error)
	Update(ctx context.Context, id string, req UpdateAccountRequest, actor models.Actor) (*Account, error)
	Close(ctx context.Context, id string, actor models.Actor) error
}

type AccountServiceImpl struct {
	Repo         AccountRepository
	AuditService audit.AuditService
	Atomic       database.AtomicRunner
}

func NewAccountService(repo AccountRepository, auditService audit.AuditService, atomic database.AtomicRunner) AccountService {
	return &AccountServiceImpl{
		Repo:         repo,
		AuditService: auditService,
		Atomic:       atomic,
	}
}

func (s *AccountServiceImpl) Create(ctx context.Context, req CreateAccountRequest, actor models.Actor) (*Account, error) {
	req.AccountNumber = strings.TrimSpace(req.AccountNumber)
	if req.AccountNumber == "" || req.CustomerName == "" {
		return nil, errs.Validation("account_number and customer_name are required")
	}

	balance := decimal.Zero
	if req.Balance != "" {
		parsed, err := decimal.NewFromString(req.Balance)
		if err != nil {
			return nil, errs.Validation("balance %q is not a valid amount", req.Balance)
		}
		if parsed.IsNegative() {
			return nil, errs.Validation("balance must not be negative")
		}
		balance = parsed
	}
	balance128, err := primitive.ParseDecimal128(balance.StringFixed(2))
	if err != nil {
		return nil, errs.Validation("balance %q is not a valid amount", req.Balance)
	}

	now := time.Now().UTC()
	account := &Account{
		ID:            primitive.NewObjectID(),
		AccountNumber: req.AccountNumber,
		Branch:        req.Branch,
		CustomerName:  req.CustomerName,
		Type:          req.Type,
		Balance:       balance128,
		Status:        StatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = s.Atomic.RunAtomic(ctx, func(ctx context.Context) error {
		if err := s.Repo.Create(ctx, account); err != nil {
			return err
		}
		summary := fmt.Sprintf("account=%s number=%s customer=%s", account.ID.Hex(), account.AccountNumber, account.CustomerName)
		return s.AuditService.Record(ctx, actor.ID, audit.ActionCreateAccount, "", summary)
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

func (s *AccountServiceImpl) GetByID(ctx context.Context, id string) (*Account, error) {
	account, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, errs.NotFound("account %s not found", id)
	}
	return account, nil
}

func (s *AccountServiceImpl) List(ctx context.Context, branch, status string, page, limit int64) ([]Account, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	filter := map[string]interface{}{
		"branch": branch,
		"status": status,
	}
	return s.Repo.List(ctx, filter, limit, (page-1)*limit)
}

func (s *AccountServiceImpl) Update(ctx context.Context, id string, req UpdateAccountRequest, actor models.Actor) (*Account, error) {
	account, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if account.Status == StatusClosed {
		return nil, errs.Conflict("account %s is closed", id)
	}

	update := bson.M{"updated_at": time.Now().UTC()}
	if req.Branch != "" {
		update["branch"] = req.Branch
	}
	if req.CustomerName != "" {
		update["customer_name"] = req.CustomerName
	}
	if req.Type != "" {
		update["type"] = req.Type
	}

	old := fmt.Sprintf("branch=%s customer=%s type=%s", account.Branch, account.CustomerName, account.Type)

	err = s.Atomic.RunAtomic(ctx, func(ctx context.Context) error {
		if err := s.Repo.Update(ctx, id, update); err != nil {
			return err
		}
		summary := fmt.Sprintf("branch=%s customer=%s type=%s", req.Branch, req.CustomerName, req.Type)
		return s.AuditService.Record(ctx, actor.ID, audit.ActionUpdateAccount, old, summary)
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

func (s *AccountServiceImpl) Close(ctx context.Context, id string, actor models.Actor) error {
	account, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if account.Status == StatusClosed {
		return errs.Conflict("account %s is already closed", id)
	}

	return s.Atomic.RunAtomic(ctx, func(ctx context.Context) error {
		update := bson.M{"status": StatusClosed, "updated_at": time.Now().UTC()}
		if err := s.Repo.Update(ctx, id, update); err != nil {
			return err
		}
		return s.AuditService.Record(ctx, actor.ID, audit.ActionCloseAccount, StatusActive, StatusClosed)
	})
}
