package auth

import (
	"context"
	"strings"

	"bank-backoffice/internal/common/errs"
	"bank-backoffice/internal/features/audit"
	"bank-backoffice/internal/features/user"
	"bank-backoffice/pkg/utils"

	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Login(ctx context.Context, email, password string) (string, *user.User, error)
}

type AuthServiceImpl struct {
	UserRepo     user.UserRepository
	AuditService audit.AuditService
}

func NewAuthService(userRepo user.UserRepository, auditService audit.AuditService) AuthService {
	return &AuthServiceImpl{
		UserRepo:     userRepo,
		AuditService: auditService,
	}
}

// Login verifies credentials and issues a JWT carrying the user id and
// role claims the workflow controllers rely on. A wrong email and a
// wrong password return the same error.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (string, *user.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return "", nil, errs.Validation("email and password are required")
	}

	u, err := s.UserRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}
	if u == nil {
		return "", nil, errs.Authorization("invalid credentials")
	}
	if u.Status != user.StatusActive {
		return "", nil, errs.Authorization("account is inactive")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return "", nil, errs.Authorization("invalid credentials")
	}

	token, err := utils.GenerateToken(u.ID, u.Role)
	if err != nil {
		return "", nil, err
	}

	// Login is an auditable action like any other mutation path.
	if err := s.AuditService.Record(ctx, u.ID.Hex(), audit.ActionLogin, "", u.Email); err != nil {
		return "", nil, err
	}

	return token, u, nil
}
