package approval

import (
	"context"
	"testing"
	"time"

	"bank-backoffice/internal/common/errs"
	"bank-backoffice/internal/common/models"
	"bank-backoffice/internal/features/audit"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MockApprovalRepo struct {
	Store map[string]*Approval
}

func NewMockApprovalRepo() *MockApprovalRepo {
	return &MockApprovalRepo{Store: make(map[string]*Approval)}
}

func (m *MockApprovalRepo) Create(ctx context.Context, approval *Approval) error {
	cp := *approval
	m.Store[approval.ID.Hex()] = &cp
	return nil
}

func (m *MockApprovalRepo) CreatePending(ctx context.Context, transactionID, reviewerID, comments string) error {
	txnOID, _ := primitive.ObjectIDFromHex(transactionID)
	reviewerOID, _ := primitive.ObjectIDFromHex(reviewerID)
	return m.Create(ctx, &Approval{
		ID:            primitive.NewObjectID(),
		TransactionID: txnOID,
		ReviewerID:    reviewerOID,
		Decision:      DecisionPending,
		Comments:      comments,
		ApprovalDate:  time.Now().UTC(),
	})
}

func (m *MockApprovalRepo) FindByID(ctx context.Context, id string) (*Approval, error) {
	approval, ok := m.Store[id]
	if !ok {
		return nil, nil
	}
	cp := *approval
	return &cp, nil
}

func (m *MockApprovalRepo) HasPending(ctx context.Context, transactionID string) (bool, error) {
	for _, a := range m.Store {
		if a.TransactionID.Hex() == transactionID && a.Decision == DecisionPending {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockApprovalRepo) List(ctx context.Context, filter ListFilter) ([]Approval, error) {
	out := []Approval{}
	for _, a := range m.Store {
		out = append(out, *a)
	}
	return out, nil
}

func (m *MockApprovalRepo) ListStalePending(ctx context.Context, olderThan time.Time) ([]Approval, error) {
	out := []Approval{}
	for _, a := range m.Store {
		if a.Decision == DecisionPending && a.ApprovalDate.Before(olderThan) {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *MockApprovalRepo) DecideIfPending(ctx context.Context, id string, decision Decision, comments string, reviewerID primitive.ObjectID, at time.Time) (bool, error) {
	approval, ok := m.Store[id]
	if !ok || approval.Decision != DecisionPending {
		return false, nil
	}
	approval.Decision = decision
	approval.Comments = comments
	approval.ReviewerID = reviewerID
	approval.ApprovalDate = at
	return true, nil
}

func (m *MockApprovalRepo) Update(ctx context.Context, id string, update bson.M) error {
	approval, ok := m.Store[id]
	if !ok {
		return nil
	}
	if comments, ok := update["comments"].(string); ok {
		approval.Comments = comments
	}
	if reviewer, ok := update["reviewer_id"].(primitive.ObjectID); ok {
		approval.ReviewerID = reviewer
	}
	return nil
}

func (m *MockApprovalRepo) Delete(ctx context.Context, id string) error {
	delete(m.Store, id)
	return nil
}

func (m *MockApprovalRepo) EnsureIndexes(ctx context.Context) error { return nil }

type FinalizeCall struct {
	TransactionID string
	Decision      string
}

type MockTransactionGateway struct {
	Statuses  map[string]string
	Finalized []FinalizeCall
	Reopened  []string
}

func (m *MockTransactionGateway) StatusOf(ctx context.Context, transactionID string) (string, error) {
	status, ok := m.Statuses[transactionID]
	if !ok {
		return "", errs.NotFound("transaction %s not found", transactionID)
	}
	return status, nil
}

func (m *MockTransactionGateway) FinalizeFromApproval(ctx context.Context, transactionID, decision string) error {
	if m.Statuses[transactionID] != "PendingApproval" {
		return errs.Invariant("transaction %s is not pending approval", transactionID)
	}
	m.Finalized = append(m.Finalized, FinalizeCall{transactionID, decision})
	switch decision {
	case "Approved":
		m.Statuses[transactionID] = "Completed"
	case "Rejected":
		m.Statuses[transactionID] = "Rejected"
	}
	return nil
}

func (m *MockTransactionGateway) ReopenFromApprovalDelete(ctx context.Context, transactionID string) error {
	m.Reopened = append(m.Reopened, transactionID)
	if m.Statuses[transactionID] == "PendingApproval" {
		m.Statuses[transactionID] = "Created"
	}
	return nil
}

type MockUserDirectory struct {
	Roles map[string]string
}

func (m *MockUserDirectory) RoleOf(ctx context.Context, userID string) (string, bool, error) {
	role, ok := m.Roles[userID]
	return role, ok, nil
}

type RecordedEntry struct {
	ActorID  string
	Action   string
	OldValue string
	NewValue string
}

type MockAuditService struct {
	Entries []RecordedEntry
}

func (m *MockAuditService) Record(ctx context.Context, actorID, action, oldValue, newValue string) error {
	m.Entries = append(m.Entries, RecordedEntry{actorID, action, oldValue, newValue})
	return nil
}

func (m *MockAuditService) ListLogs(ctx context.Context, filters map[string]interface{}, page, limit int64) ([]audit.AuditEntry, error) {
	return nil, nil
}

type FakeAtomic struct{}

func (FakeAtomic) RunAtomic(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixture struct {
	service      ApprovalService
	repo         *MockApprovalRepo
	transactions *MockTransactionGateway
	auditSvc     *MockAuditService
	manager      models.Actor
	officer      models.Actor
	txnID        string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	managerID := primitive.NewObjectID().Hex()
	officerID := primitive.NewObjectID().Hex()
	txnID := primitive.NewObjectID().Hex()

	repo := NewMockApprovalRepo()
	transactions := &MockTransactionGateway{
		Statuses: map[string]string{txnID: "PendingApproval"},
	}
	auditSvc := &MockAuditService{}

	service := NewApprovalService(
		repo,
		transactions,
		&MockUserDirectory{Roles: map[string]string{
			managerID: models.RoleManager,
			officerID: models.RoleOfficer,
		}},
		auditSvc,
		FakeAtomic{},
	)

	return &fixture{
		service:      service,
		repo:         repo,
		transactions: transactions,
		auditSvc:     auditSvc,
		manager:      models.Actor{ID: managerID, Role: models.RoleManager},
		officer:      models.Actor{ID: officerID, Role: models.RoleOfficer},
		txnID:        txnID,
	}
}

func (f *fixture) pendingApproval(t *testing.T) *Approval {
	t.Helper()
	if err := f.repo.CreatePending(context.Background(), f.txnID, f.manager.ID, "High-value transaction"); err != nil {
		t.Fatalf("CreatePending: %v", err)
	}
	for _, a := range f.repo.Store {
		return a
	}
	t.Fatal("no approval stored")
	return nil
}

func TestSubmitDecisionApproveCompletesTransaction(t *testing.T) {
	f := newFixture(t)
	pending := f.pendingApproval(t)

	decided, err := f.service.SubmitDecision(context.Background(),
		pending.ID.Hex(), f.manager.ID, "approve", "looks fine", f.manager)
	if err != nil {
		t.Fatalf("SubmitDecision: %v", err)
	}

	if decided.Decision != DecisionApproved {
		t.Errorf("decision = %s, want %s", decided.Decision, DecisionApproved)
	}
	if f.transactions.Statuses[f.txnID] != "Completed" {
		t.Errorf("transaction status = %s, want Completed", f.transactions.Statuses[f.txnID])
	}
	if len(f.transactions.Finalized) != 1 || f.transactions.Finalized[0].Decision != "Approved" {
		t.Fatalf("expected one Approved finalization, got %v", f.transactions.Finalized)
	}

	last := f.auditSvc.Entries[len(f.auditSvc.Entries)-1]
	if last.Action != audit.ActionApprovalDecision || last.OldValue != "Pending" || last.NewValue == "" {
		t.Errorf("expected decision audit entry with old Pending, got %+v", last)
	}
}

func TestSubmitDecisionRejectRejectsTransaction(t *testing.T) {
	f := newFixture(t)
	pending := f.pendingApproval(t)

	decided, err := f.service.SubmitDecision(context.Background(),
		pending.ID.Hex(), f.manager.ID, "Reject", "insufficient documentation", f.manager)
	if err != nil {
		t.Fatalf("SubmitDecision: %v", err)
	}

	if decided.Decision != DecisionRejected {
		t.Errorf("decision = %s, want %s", decided.Decision, DecisionRejected)
	}
	if f.transactions.Statuses[f.txnID] != "Rejected" {
		t.Errorf("transaction status = %s, want Rejected", f.transactions.Statuses[f.txnID])
	}
}

func TestSubmitDecisionOnDecidedApprovalConflicts(t *testing.T) {
	f := newFixture(t)
	pending := f.pendingApproval(t)

	if _, err := f.service.SubmitDecision(context.Background(),
		pending.ID.Hex(), f.manager.ID, "approve", "", f.manager); err != nil {
		t.Fatalf("first decision: %v", err)
	}

	_, err := f.service.SubmitDecision(context.Background(),
		pending.ID.Hex(), f.manager.ID, "reject", "", f.manager)
	if errs.KindOf(err) != errs.KindConflict {
		t.Fatalf("second decision: err = %v, want conflict error", err)
	}
	if len(f.transactions.Finalized) != 1 {
		t.Errorf("transaction must be finalized exactly once, got %d", len(f.transactions.Finalized))
	}
}

func TestSubmitDecisionAuthorization(t *testing.T) {
	f := newFixture(t)
	pending := f.pendingApproval(t)

	// Reviewer identity must match the caller.
	_, err := f.service.SubmitDecision(context.Background(),
		pending.ID.Hex(), f.manager.ID, "approve", "", f.officer)
	if errs.KindOf(err) != errs.KindAuthorization {
		t.Errorf("mismatched reviewer: err = %v, want authorization error", err)
	}

	// A non-manager cannot decide even as themselves.
	_, err = f.service.SubmitDecision(context.Background(),
		pending.ID.Hex(), f.officer.ID, "approve", "", f.officer)
	if errs.KindOf(err) != errs.KindAuthorization {
		t.Errorf("officer reviewer: err = %v, want authorization error", err)
	}

	if pending, _ := f.repo.FindByID(context.Background(), pending.ID.Hex()); pending.Decision != DecisionPending {
		t.Error("approval must stay Pending after rejected attempts")
	}
}

func TestSubmitDecisionValidation(t *testing.T) {
	f := newFixture(t)
	pending := f.pendingApproval(t)

	_, err := f.service.SubmitDecision(context.Background(),
		pending.ID.Hex(), f.manager.ID, "maybe", "", f.manager)
	if errs.KindOf(err) != errs.KindValidation {
		t.Errorf("unknown decision: err = %v, want validation error", err)
	}

	// Pending is a valid decision value but not a submittable one.
	_, err = f.service.SubmitDecision(context.Background(),
		pending.ID.Hex(), f.manager.ID, "pending", "", f.manager)
	if errs.KindOf(err) != errs.KindValidation {
		t.Errorf("pending decision: err = %v, want validation error", err)
	}

	long := make([]byte, MaxCommentLength+1)
	for i := range long {
		long[i] = 'x'
	}
	_, err = f.service.SubmitDecision(context.Background(),
		pending.ID.Hex(), f.manager.ID, "approve", string(long), f.manager)
	if errs.KindOf(err) != errs.KindValidation {
		t.Errorf("oversized comments: err = %v, want validation error", err)
	}
}

func TestSubmitDecisionUnknownApproval(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.SubmitDecision(context.Background(),
		primitive.NewObjectID().Hex(), f.manager.ID, "approve", "", f.manager)
	if errs.KindOf(err) != errs.KindNotFound {
		t.Errorf("err = %v, want not-found error", err)
	}
}

func TestChangeDecisionOverride(t *testing.T) {
	f := newFixture(t)
	pending := f.pendingApproval(t)

	changed, err := f.service.ChangeDecision(context.Background(), pending.ID.Hex(), "rejected", f.manager)
	if err != nil {
		t.Fatalf("ChangeDecision: %v", err)
	}
	if changed.Decision != DecisionRejected {
		t.Errorf("decision = %s, want %s", changed.Decision, DecisionRejected)
	}
	if f.transactions.Statuses[f.txnID] != "Rejected" {
		t.Errorf("transaction status = %s, want Rejected", f.transactions.Statuses[f.txnID])
	}

	_, err = f.service.ChangeDecision(context.Background(), pending.ID.Hex(), "approve", f.manager)
	if errs.KindOf(err) != errs.KindConflict {
		t.Errorf("override of decided approval: err = %v, want conflict error", err)
	}
}

func TestCreateExplicitApproval(t *testing.T) {
	f := newFixture(t)
	f.transactions.Statuses[f.txnID] = "Created"

	approval, err := f.service.Create(context.Background(), CreateApprovalRequest{
		TransactionID: f.txnID,
		ReviewerID:    f.manager.ID,
		Decision:      "",
		Comments:      "manual review requested",
	}, f.manager)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if approval.Decision != DecisionPending {
		t.Errorf("blank decision must default to %s, got %s", DecisionPending, approval.Decision)
	}
	// Explicit creation does not move the transaction.
	if f.transactions.Statuses[f.txnID] != "Created" {
		t.Errorf("transaction status = %s, want Created", f.transactions.Statuses[f.txnID])
	}

	last := f.auditSvc.Entries[len(f.auditSvc.Entries)-1]
	if last.Action != audit.ActionCreateApproval || last.NewValue == "" {
		t.Errorf("expected create audit entry, got %+v", last)
	}
}

func TestCreateSecondPendingApprovalConflicts(t *testing.T) {
	f := newFixture(t)
	f.pendingApproval(t)

	_, err := f.service.Create(context.Background(), CreateApprovalRequest{
		TransactionID: f.txnID,
		ReviewerID:    f.manager.ID,
	}, f.manager)
	if errs.KindOf(err) != errs.KindConflict {
		t.Errorf("err = %v, want conflict error", err)
	}
}

func TestCreateRejectsBadReferences(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Create(context.Background(), CreateApprovalRequest{
		TransactionID: primitive.NewObjectID().Hex(),
		ReviewerID:    f.manager.ID,
	}, f.manager)
	if errs.KindOf(err) != errs.KindNotFound {
		t.Errorf("unknown transaction: err = %v, want not-found error", err)
	}

	_, err = f.service.Create(context.Background(), CreateApprovalRequest{
		TransactionID: f.txnID,
		ReviewerID:    primitive.NewObjectID().Hex(),
	}, f.manager)
	if errs.KindOf(err) != errs.KindNotFound {
		t.Errorf("unknown reviewer: err = %v, want not-found error", err)
	}

	_, err = f.service.Create(context.Background(), CreateApprovalRequest{
		TransactionID: f.txnID,
		ReviewerID:    f.manager.ID,
		Decision:      "escalate",
	}, f.manager)
	if errs.KindOf(err) != errs.KindValidation {
		t.Errorf("bad decision: err = %v, want validation error", err)
	}
}

func TestUpdatePendingApproval(t *testing.T) {
	f := newFixture(t)
	pending := f.pendingApproval(t)

	updated, err := f.service.Update(context.Background(), pending.ID.Hex(), UpdateApprovalRequest{
		Comments: "reassigned after review meeting",
	}, f.manager)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Comments != "reassigned after review meeting" {
		t.Errorf("comments = %q, not updated", updated.Comments)
	}
	if updated.Decision != DecisionPending {
		t.Errorf("update must not touch the decision, got %s", updated.Decision)
	}
}

func TestUpdateDecidedApprovalConflicts(t *testing.T) {
	f := newFixture(t)
	pending := f.pendingApproval(t)

	if _, err := f.service.SubmitDecision(context.Background(),
		pending.ID.Hex(), f.manager.ID, "approve", "", f.manager); err != nil {
		t.Fatalf("SubmitDecision: %v", err)
	}

	_, err := f.service.Update(context.Background(), pending.ID.Hex(), UpdateApprovalRequest{
		Comments: "late edit",
	}, f.manager)
	if errs.KindOf(err) != errs.KindConflict {
		t.Errorf("err = %v, want conflict error", err)
	}
}

func TestDeletePendingApprovalReopensTransaction(t *testing.T) {
	f := newFixture(t)
	pending := f.pendingApproval(t)

	if err := f.service.Delete(context.Background(), pending.ID.Hex(), f.manager); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, ok := f.repo.Store[pending.ID.Hex()]; ok {
		t.Error("approval must be removed")
	}
	if f.transactions.Statuses[f.txnID] != "Created" {
		t.Errorf("transaction status = %s, want Created after active approval delete", f.transactions.Statuses[f.txnID])
	}

	last := f.auditSvc.Entries[len(f.auditSvc.Entries)-1]
	if last.Action != audit.ActionDeleteApproval || last.OldValue == "" {
		t.Errorf("expected delete audit entry with snapshot, got %+v", last)
	}
}

func TestDeleteDecidedApprovalLeavesTransactionAlone(t *testing.T) {
	f := newFixture(t)
	pending := f.pendingApproval(t)

	if _, err := f.service.SubmitDecision(context.Background(),
		pending.ID.Hex(), f.manager.ID, "approve", "", f.manager); err != nil {
		t.Fatalf("SubmitDecision: %v", err)
	}

	if err := f.service.Delete(context.Background(), pending.ID.Hex(), f.manager); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(f.transactions.Reopened) != 0 {
		t.Error("deleting a decided approval must not reopen the transaction")
	}
	if f.transactions.Statuses[f.txnID] != "Completed" {
		t.Errorf("transaction status = %s, want Completed", f.transactions.Statuses[f.txnID])
	}
}
