package audit

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Action labels written by the workflow services. The label names the
// operation; old/new values carry before/after snapshots.
const (
	ActionCreateTransaction       = "CREATE_TRANSACTION"
	ActionChangeTransactionStatus = "CHANGE_TRANSACTION_STATUS"
	ActionDeleteTransaction       = "DELETE_TRANSACTION"
	ActionCreateApproval          = "CREATE_APPROVAL"
	ActionApprovalDecision        = "APPROVAL_DECISION"
	ActionChangeDecision          = "CHANGE_APPROVAL_DECISION"
	ActionUpdateApproval          = "UPDATE_APPROVAL"
	ActionDeleteApproval          = "DELETE_APPROVAL"
	ActionCreateAccount           = "CREATE_ACCOUNT"
	ActionUpdateAccount           = "UPDATE_ACCOUNT"
	ActionCloseAccount            = "CLOSE_ACCOUNT"
	ActionCreateUser              = "CREATE_USER"
	ActionUpdateUser              = "UPDATE_USER"
	ActionDeactivateUser          = "DEACTIVATE_USER"
	ActionLogin                   = "LOGIN"
)

// AuditEntry is append-only: entries are never updated or deleted, and
// the collection ordered by timestamp is the audit log.
type AuditEntry struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ActorID   string             `bson:"actor_id" json:"actor_id"`
	ActorName string             `bson:"-" json:"actor_name,omitempty"` // Populated Name of the actor
	Action    string             `bson:"action" json:"action"`
	OldValue  string             `bson:"old_value,omitempty" json:"old_value,omitempty"`
	NewValue  string             `bson:"new_value,omitempty" json:"new_value,omitempty"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
}
