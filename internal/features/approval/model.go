package approval

import (
	"strings"
	"time"

	"bank-backoffice/internal/common/errs"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Decision string

const (
	DecisionPending  Decision = "Pending"
	DecisionApproved Decision = "Approved"
	DecisionRejected Decision = "Rejected"
)

// MaxCommentLength mirrors the storage bound on the comments column.
const MaxCommentLength = 1024

// IsTerminal reports whether the approval has been decided. A terminal
// approval never transitions again.
func (d Decision) IsTerminal() bool {
	return d == DecisionApproved || d == DecisionRejected
}

// NormalizeDecision maps user input onto the decision set
// case-insensitively, accepting both the verb and the stored form
// (approve/approved, reject/rejected). Blank input defaults to Pending.
func NormalizeDecision(raw string) (Decision, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return DecisionPending, nil
	case "pending":
		return DecisionPending, nil
	case "approve", "approved":
		return DecisionApproved, nil
	case "reject", "rejected":
		return DecisionRejected, nil
	default:
		return "", errs.Validation("decision %q is not one of Pending, Approve, Reject", raw)
	}
}

// Approval links a reviewer to a transaction awaiting a decision. At
// most one Pending approval may exist per transaction at any time.
type Approval struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TransactionID primitive.ObjectID `bson:"transaction_id" json:"transaction_id"`
	ReviewerID    primitive.ObjectID `bson:"reviewer_id" json:"reviewer_id"`
	Decision      Decision           `bson:"decision" json:"decision"`
	Comments      string             `bson:"comments,omitempty" json:"comments,omitempty"`
	ApprovalDate  time.Time          `bson:"approval_date" json:"approval_date"`
}

type ListFilter struct {
	TransactionID string
	ReviewerID    string
	Decision      string
	DateFrom      *time.Time
	DateTo        *time.Time
}
