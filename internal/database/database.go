package database

import (
	"context"
	"log"
	"time"

	"bank-backoffice/internal/common/errs"
	"bank-backoffice/internal/config"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/fx"
)

type MongodbDB struct {
	Client *mongo.Client
	DB     *mongo.Database
}

// AtomicRunner is the unit-of-work primitive the workflow services run
// their multi-entity mutations through. Everything inside fn commits or
// rolls back together.
type AtomicRunner interface {
	RunAtomic(ctx context.Context, fn func(ctx context.Context) error) error
}

// NewDatabase creates a new MongoDB database connection with lifecycle management
func NewDatabase(lc fx.Lifecycle, cfg *config.Config) (*MongodbDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, err
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	log.Println("Connected to MongoDB!")

	db := client.Database(cfg.DBName)

	// Register lifecycle hooks
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Println("Disconnecting from MongoDB...")
			return client.Disconnect(ctx)
		},
	})

	return &MongodbDB{Client: client, DB: db}, nil
}

// RunAtomic runs fn inside a mongo session transaction. Business errors
// raised by fn abort the transaction and pass through unchanged;
// session-level failures (timeout, lost connection, aborted commit) come
// back as transient errors since nothing was committed.
func (m *MongodbDB) RunAtomic(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := m.Client.StartSession()
	if err != nil {
		return errs.Transient("could not start storage session", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	})
	if err != nil {
		if errs.IsKinded(err) {
			return err
		}
		return errs.Transient("unit of work failed", err)
	}
	return nil
}
