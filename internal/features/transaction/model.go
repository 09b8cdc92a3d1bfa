package transaction

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Status string

const (
	StatusCreated         Status = "Created"
	StatusPendingApproval Status = "PendingApproval"
	StatusCompleted       Status = "Completed"
	StatusRejected        Status = "Rejected"
	StatusCancelled       Status = "Cancelled"
)

// IsTerminal reports whether no further transition is permitted.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusRejected || s == StatusCancelled
}

// Transaction status is owned by this package: it only moves through
// Create (Created / PendingApproval), the approval decision
// (Completed / Rejected) or a manager's administrative override
// (Cancelled).
type Transaction struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	AccountID   primitive.ObjectID   `bson:"account_id" json:"account_id"`
	Type        string               `bson:"type" json:"type"` // Deposit | Withdrawal | Transfer
	Amount      primitive.Decimal128 `bson:"amount" json:"amount"`
	Status      Status               `bson:"status" json:"status"`
	Date        time.Time            `bson:"date" json:"date"`
	InitiatedBy primitive.ObjectID   `bson:"initiated_by" json:"initiated_by"`
}

// ListFilter carries the optional query parameters of the transaction
// history endpoint.
type ListFilter struct {
	AccountID string
	Type      string
	Status    string
	DateFrom  *time.Time
	DateTo    *time.Time
}
