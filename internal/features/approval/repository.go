package approval

import (
	"context"
	"time"

	"bank-backoffice/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ApprovalRepository interface {
	Create(ctx context.Context, approval *Approval) error
	CreatePending(ctx context.Context, transactionID, reviewerID, comments string) error
	FindByID(ctx context.Context, id string) (*Approval, error)
	HasPending(ctx context.Context, transactionID string) (bool, error)
	List(ctx context.Context, filter ListFilter) ([]Approval, error)
	ListStalePending(ctx context.Context, olderThan time.Time) ([]Approval, error)
	// DecideIfPending records a terminal decision only while the stored
	// decision is still Pending, reporting whether the guard held. Two
	// concurrent deciders cannot both see it hold.
	DecideIfPending(ctx context.Context, id string, decision Decision, comments string, reviewerID primitive.ObjectID, at time.Time) (bool, error)
	Update(ctx context.Context, id string, update bson.M) error
	Delete(ctx context.Context, id string) error
	EnsureIndexes(ctx context.Context) error
}

type ApprovalRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewApprovalRepository(mongodb *database.MongodbDB) ApprovalRepository {
	return &ApprovalRepositoryImpl{
		Collection: mongodb.DB.Collection("approvals"),
	}
}

func (r *ApprovalRepositoryImpl) Create(ctx context.Context, approval *Approval) error {
	_, err := r.Collection.InsertOne(ctx, approval)
	return err
}

// CreatePending is the escalation path used by the transaction engine
// through its ApprovalGateway.
func (r *ApprovalRepositoryImpl) CreatePending(ctx context.Context, transactionID, reviewerID, comments string) error {
	txnOID, err := primitive.ObjectIDFromHex(transactionID)
	if err != nil {
		return err
	}
	reviewerOID, err := primitive.ObjectIDFromHex(reviewerID)
	if err != nil {
		return err
	}

	return r.Create(ctx, &Approval{
		ID:            primitive.NewObjectID(),
		TransactionID: txnOID,
		ReviewerID:    reviewerOID,
		Decision:      DecisionPending,
		Comments:      comments,
		ApprovalDate:  time.Now().UTC(),
	})
}

func (r *ApprovalRepositoryImpl) FindByID(ctx context.Context, id string) (*Approval, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	var approval Approval
	err = r.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&approval)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &approval, nil
}

func (r *ApprovalRepositoryImpl) HasPending(ctx context.Context, transactionID string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(transactionID)
	if err != nil {
		return false, nil
	}
	count, err := r.Collection.CountDocuments(ctx, bson.M{
		"transaction_id": oid,
		"decision":       DecisionPending,
	})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *ApprovalRepositoryImpl) List(ctx context.Context, filter ListFilter) ([]Approval, error) {
	query := bson.M{}
	if filter.TransactionID != "" {
		if oid, err := primitive.ObjectIDFromHex(filter.TransactionID); err == nil {
			query["transaction_id"] = oid
		}
	}
	if filter.ReviewerID != "" {
		if oid, err := primitive.ObjectIDFromHex(filter.ReviewerID); err == nil {
			query["reviewer_id"] = oid
		}
	}
	if filter.Decision != "" {
		query["decision"] = filter.Decision
	}
	dateRange := bson.M{}
	if filter.DateFrom != nil {
		dateRange["$gte"] = *filter.DateFrom
	}
	if filter.DateTo != nil {
		dateRange["$lte"] = *filter.DateTo
	}
	if len(dateRange) > 0 {
		query["approval_date"] = dateRange
	}

	opts := options.Find().SetSort(bson.M{"approval_date": -1})
	cursor, err := r.Collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	var approvals []Approval
	if err = cursor.All(ctx, &approvals); err != nil {
		return nil, err
	}
	return approvals, nil
}

func (r *ApprovalRepositoryImpl) ListStalePending(ctx context.Context, olderThan time.Time) ([]Approval, error) {
	cursor, err := r.Collection.Find(ctx, bson.M{
		"decision":      DecisionPending,
		"approval_date": bson.M{"$lt": olderThan},
	})
	if err != nil {
		return nil, err
	}
	var approvals []Approval
	if err = cursor.All(ctx, &approvals); err != nil {
		return nil, err
	}
	return approvals, nil
}

func (r *ApprovalRepositoryImpl) DecideIfPending(ctx context.Context, id string, decision Decision, comments string, reviewerID primitive.ObjectID, at time.Time) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, err
	}
	res, err := r.Collection.UpdateOne(ctx,
		bson.M{"_id": oid, "decision": DecisionPending},
		bson.M{"$set": bson.M{
			"decision":      decision,
			"comments":      comments,
			"reviewer_id":   reviewerID,
			"approval_date": at,
		}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

func (r *ApprovalRepositoryImpl) Update(ctx context.Context, id string, update bson.M) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": update})
	return err
}

func (r *ApprovalRepositoryImpl) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Collection.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}

// EnsureIndexes backs the one-active-approval-per-transaction invariant
// with a partial unique index, so duplicate Pending approvals lose at
// the storage layer even if two writers race past the service check.
func (r *ApprovalRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "transaction_id", Value: 1}},
		Options: options.Index().
			SetUnique(true).
			SetPartialFilterExpression(bson.M{"decision": DecisionPending}),
	})
	return err
}
