package transaction

import (
	"context"

	"bank-backoffice/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type TransactionRepository interface {
	Create(ctx context.Context, txn *Transaction) error
	FindByID(ctx context.Context, id string) (*Transaction, error)
	List(ctx context.Context, filter ListFilter) ([]Transaction, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
	// UpdateStatusIf flips the status only when the stored value still
	// matches from, reporting whether the guard held. Concurrent
	// finalizations race on this guard, not on application state.
	UpdateStatusIf(ctx context.Context, id string, from, to Status) (bool, error)
	Delete(ctx context.Context, id string) error
}

type TransactionRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewTransactionRepository(mongodb *database.MongodbDB) TransactionRepository {
	return &TransactionRepositoryImpl{
		Collection: mongodb.DB.Collection("transactions"),
	}
}

func (r *TransactionRepositoryImpl) Create(ctx context.Context, txn *Transaction) error {
	_, err := r.Collection.InsertOne(ctx, txn)
	return err
}

func (r *TransactionRepositoryImpl) FindByID(ctx context.Context, id string) (*Transaction, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	var txn Transaction
	err = r.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&txn)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &txn, nil
}

func (r *TransactionRepositoryImpl) List(ctx context.Context, filter ListFilter) ([]Transaction, error) {
	query := bson.M{}
	if filter.AccountID != "" {
		if oid, err := primitive.ObjectIDFromHex(filter.AccountID); err == nil {
			query["account_id"] = oid
		}
	}
	if filter.Type != "" {
		query["type"] = filter.Type
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	dateRange := bson.M{}
	if filter.DateFrom != nil {
		dateRange["$gte"] = *filter.DateFrom
	}
	if filter.DateTo != nil {
		dateRange["$lte"] = *filter.DateTo
	}
	if len(dateRange) > 0 {
		query["date"] = dateRange
	}

	opts := options.Find().SetSort(bson.M{"date": -1})
	cursor, err := r.Collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	var txns []Transaction
	if err = cursor.All(ctx, &txns); err != nil {
		return nil, err
	}
	return txns, nil
}

func (r *TransactionRepositoryImpl) UpdateStatus(ctx context.Context, id string, status Status) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"status": status}})
	return err
}

func (r *TransactionRepositoryImpl) UpdateStatusIf(ctx context.Context, id string, from, to Status) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, err
	}
	res, err := r.Collection.UpdateOne(ctx,
		bson.M{"_id": oid, "status": from},
		bson.M{"$set": bson.M{"status": to}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

func (r *TransactionRepositoryImpl) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Collection.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}
