package account

import (
	"context"

	"bank-backoffice/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type AccountRepository interface {
	Create(ctx context.Context, account *Account) error
	FindByID(ctx context.Context, id string) (*Account, error)
	List(ctx context.Context, filter map[string]interface{}, limit, offset int64) ([]Account, error)
	Update(ctx context.Context, id string, update bson.M) error
	StatusOf(ctx context.Context, id string) (string, bool, error)
}

type AccountRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewAccountRepository(mongodb *database.MongodbDB) AccountRepository {
	return &AccountRepositoryImpl{
		Collection: mongodb.DB.Collection("accounts"),
	}
}

func (r *AccountRepositoryImpl) Create(ctx context.Context, account *Account) error {
	_, err := r.Collection.InsertOne(ctx, account)
	return err
}

func (r *AccountRepositoryImpl) FindByID(ctx context.Context, id string) (*Account, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	var account Account
	err = r.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&account)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepositoryImpl) List(ctx context.Context, filter map[string]interface{}, limit, offset int64) ([]Account, error) {
	opts := options.Find().SetLimit(limit).SetSkip(offset).SetSort(bson.M{"created_at": -1})

	query := bson.M{}
	for k, v := range filter {
		if str, ok := v.(string); ok && str == "" {
			continue
		}
		query[k] = v
	}

	cursor, err := r.Collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	var accounts []Account
	if err = cursor.All(ctx, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *AccountRepositoryImpl) Update(ctx context.Context, id string, update bson.M) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": update})
	return err
}

// StatusOf returns the account's status and whether the account exists.
// The transaction workflow reads this through its AccountGateway.
func (r *AccountRepositoryImpl) StatusOf(ctx context.Context, id string) (string, bool, error) {
	account, err := r.FindByID(ctx, id)
	if err != nil {
		return "", false, err
	}
	if account == nil {
		return "", false, nil
	}
	return account.Status, true, nil
}
