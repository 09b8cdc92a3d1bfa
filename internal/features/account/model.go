package account

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	StatusActive = "Active"
	StatusClosed = "Closed"
)

// Account is owned by this CRUD surface. The workflow core only reads
// existence and status; balances are never touched on settlement (the
// original system left settlement unimplemented and we do not invent
// it here).
type Account struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	AccountNumber string               `bson:"account_number" json:"account_number"`
	Branch        string               `bson:"branch" json:"branch"`
	CustomerName  string               `bson:"customer_name" json:"customer_name"`
	Type          string               `bson:"type" json:"type"` // Savings | Current
	Balance       primitive.Decimal128 `bson:"balance" json:"balance"`
	Status        string               `bson:"status" json:"status"` // Active | Closed
	CreatedAt     time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time            `bson:"updated_at" json:"updated_at"`
}
