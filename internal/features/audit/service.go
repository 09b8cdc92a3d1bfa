package audit

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserFinder interface {
	NamesByIDs(ctx context.Context, ids []string) (map[string]string, error)
}

// AuditService appends immutable action records. Record runs on the
// caller's context: when the caller is inside a unit of work the entry
// commits or rolls back with the business mutation, so a failed audit
// write fails the whole operation.
type AuditService interface {
	Record(ctx context.Context, actorID, action, oldValue, newValue string) error
	ListLogs(ctx context.Context, filters map[string]interface{}, page, limit int64) ([]AuditEntry, error)
}

type AuditServiceImpl struct {
	Repo     AuditRepository
	UserRepo UserFinder
}

func NewAuditService(repo AuditRepository, userRepo UserFinder) AuditService {
	return &AuditServiceImpl{
		Repo:     repo,
		UserRepo: userRepo,
	}
}

func (s *AuditServiceImpl) Record(ctx context.Context, actorID, action, oldValue, newValue string) error {
	entry := AuditEntry{
		ID:        primitive.NewObjectID(),
		ActorID:   actorID,
		Action:    action,
		OldValue:  oldValue,
		NewValue:  newValue,
		Timestamp: time.Now().UTC(),
	}

	return s.Repo.Create(ctx, entry)
}

func (s *AuditServiceImpl) ListLogs(ctx context.Context, filters map[string]interface{}, page, limit int64) ([]AuditEntry, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	offset := (page - 1) * limit
	entries, err := s.Repo.List(ctx, filters, limit, offset)
	if err != nil {
		return nil, err
	}

	// Collect Actor IDs
	actorIDs := make([]string, 0)
	uniqueIDs := make(map[string]bool)
	for _, entry := range entries {
		if entry.ActorID == "" || uniqueIDs[entry.ActorID] {
			continue
		}
		uniqueIDs[entry.ActorID] = true
		actorIDs = append(actorIDs, entry.ActorID)
	}

	// Populate Actor Names
	if len(actorIDs) > 0 {
		names, err := s.UserRepo.NamesByIDs(ctx, actorIDs)
		if err == nil {
			for i, entry := range entries {
				if name, ok := names[entry.ActorID]; ok {
					entries[i].ActorName = name
				} else {
					entries[i].ActorName = "Unknown User"
				}
			}
		}
	}

	return entries, nil
}
