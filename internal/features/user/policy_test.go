package user

import (
	"context"
	"testing"

	"bank-backoffice/internal/common/errs"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type StubUserRepo struct {
	First *User
}

func (s *StubUserRepo) Create(ctx context.Context, user *User) error          { return nil }
func (s *StubUserRepo) FindByID(ctx context.Context, id string) (*User, error) { return nil, nil }
func (s *StubUserRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	return nil, nil
}
func (s *StubUserRepo) FindFirstByRoles(ctx context.Context, roles []string) (*User, error) {
	return s.First, nil
}
func (s *StubUserRepo) NamesByIDs(ctx context.Context, ids []string) (map[string]string, error) {
	return nil, nil
}
func (s *StubUserRepo) RoleOf(ctx context.Context, id string) (string, bool, error) {
	return "", false, nil
}
func (s *StubUserRepo) List(ctx context.Context, filter map[string]interface{}, limit, offset int64) ([]User, error) {
	return nil, nil
}
func (s *StubUserRepo) Update(ctx context.Context, id string, update bson.M) error { return nil }
func (s *StubUserRepo) EnsureIndexes(ctx context.Context) error                    { return nil }

func TestSelectReviewerReturnsFirstEligible(t *testing.T) {
	reviewer := &User{ID: primitive.NewObjectID()}
	policy := NewFirstEligibleReviewer(&StubUserRepo{First: reviewer})

	got, err := policy.SelectReviewer(context.Background())
	if err != nil {
		t.Fatalf("SelectReviewer: %v", err)
	}
	if got != reviewer.ID.Hex() {
		t.Errorf("reviewer = %s, want %s", got, reviewer.ID.Hex())
	}
}

func TestSelectReviewerFailsWhenNoneEligible(t *testing.T) {
	policy := NewFirstEligibleReviewer(&StubUserRepo{})

	_, err := policy.SelectReviewer(context.Background())
	if errs.KindOf(err) != errs.KindInvariant {
		t.Errorf("err = %v, want invariant violation", err)
	}
}
