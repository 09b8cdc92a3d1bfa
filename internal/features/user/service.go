package user

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"bank-backoffice/internal/common/errs"
	"bank-backoffice/internal/common/models"
	"bank-backoffice/internal/database"
	"bank-backoffice/internal/features/audit"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

var allowedRoles = []string{models.RoleOfficer, models.RoleManager, models.RoleAdmin}

type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Branch   string `json:"branch"`
}

type UpdateUserRequest struct {
	Name   string `json:"name"`
	Branch string `json:"branch"`
	Role   string `json:"role"`
}

type UserService interface {
	Create(ctx context.Context, req CreateUserRequest, actor models.Actor) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	List(ctx context.Context, role, status string, page, limit int64) ([]User, error)
	Update(ctx context.Context, id string, req UpdateUserRequest, actor models.Actor) (*User, error)
	Deactivate(ctx context.Context, id string, actor models.Actor) error
}

type UserServiceImpl struct {
	Repo         UserRepository
	AuditService audit.AuditService
	Atomic       database.AtomicRunner
}

func NewUserService(repo UserRepository, auditService audit.AuditService, atomic database.AtomicRunner) UserService {
	return &UserServiceImpl{
		Repo:         repo,
		AuditService: auditService,
		Atomic:       atomic,
	}
}

func (s *UserServiceImpl) Create(ctx context.Context, req CreateUserRequest, actor models.Actor) (*User, error) {
	if !actor.IsAdmin() {
		return nil, errs.Authorization("only admins may create users")
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return nil, errs.Validation("name, email and password are required")
	}
	if !slices.Contains(allowedRoles, req.Role) {
		return nil, errs.Validation("unknown role %q", req.Role)
	}

	existing, err := s.Repo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errs.Conflict("a user with email %s already exists", req.Email)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &User{
		ID:        primitive.NewObjectID(),
		Name:      req.Name,
		Email:     req.Email,
		Password:  string(hashed),
		Role:      req.Role,
		Branch:    req.Branch,
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.Atomic.RunAtomic(ctx, func(ctx context.Context) error {
		if err := s.Repo.Create(ctx, user); err != nil {
			return err
		}
		summary := fmt.Sprintf("user=%s email=%s role=%s", user.ID.Hex(), user.Email, user.Role)
		return s.AuditService.Record(ctx, actor.ID, audit.ActionCreateUser, "", summary)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserServiceImpl) GetByID(ctx context.Context, id string) (*User, error) {
	user, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errs.NotFound("user %s not found", id)
	}
	return user, nil
}

func (s *UserServiceImpl) List(ctx context.Context, role, status string, page, limit int64) ([]User, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	filter := map[string]interface{}{
		"role":   role,
		"status": status,
	}
	return s.Repo.List(ctx, filter, limit, (page-1)*limit)
}

func (s *UserServiceImpl) Update(ctx context.Context, id string, req UpdateUserRequest, actor models.Actor) (*User, error) {
	if !actor.IsAdmin() {
		return nil, errs.Authorization("only admins may update users")
	}

	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	update := bson.M{"updated_at": time.Now().UTC()}
	if req.Name != "" {
		update["name"] = req.Name
	}
	if req.Branch != "" {
		update["branch"] = req.Branch
	}
	if req.Role != "" {
		if !slices.Contains(allowedRoles, req.Role) {
			return nil, errs.Validation("unknown role %q", req.Role)
		}
		update["role"] = req.Role
	}

	old := fmt.Sprintf("name=%s branch=%s role=%s", user.Name, user.Branch, user.Role)

	err = s.Atomic.RunAtomic(ctx, func(ctx context.Context) error {
		if err := s.Repo.Update(ctx, id, update); err != nil {
			return err
		}
		summary := fmt.Sprintf("name=%s branch=%s role=%s", req.Name, req.Branch, req.Role)
		return s.AuditService.Record(ctx, actor.ID, audit.ActionUpdateUser, old, summary)
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

func (s *UserServiceImpl) Deactivate(ctx context.Context, id string, actor models.Actor) error {
	if !actor.IsAdmin() {
		return errs.Authorization("only admins may deactivate users")
	}

	user, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if user.Status == StatusInactive {
		return errs.Conflict("user %s is already inactive", id)
	}

	return s.Atomic.RunAtomic(ctx, func(ctx context.Context) error {
		update := bson.M{"status": StatusInactive, "updated_at": time.Now().UTC()}
		if err := s.Repo.Update(ctx, id, update); err != nil {
			return err
		}
		return s.AuditService.Record(ctx, actor.ID, audit.ActionDeactivateUser, StatusActive, StatusInactive)
	})
}
