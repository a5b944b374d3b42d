package service

import (
	"context"
	"encoding/json"
	"strconv"

	"bellissimo/internal/models"
	"bellissimo/internal/repository"
)

type actorKey struct{}

// WithActor tags ctx with the id of the user performing an operation, for the audit trail.
func WithActor(ctx context.Context, userID uint) context.Context {
	return context.WithValue(ctx, actorKey{}, userID)
}

// ActorFrom returns the acting user, or nil for system operations.
func ActorFrom(ctx context.Context) *uint {
	if id, ok := ctx.Value(actorKey{}).(uint); ok && id != 0 {
		return &id
	}
	return nil
}

// audit writes an audit row inside tx so it commits or rolls back with the change.
func audit(ctx context.Context, tx *repository.Repos, action, resource string, id uint, meta map[string]interface{}) error {
	var metadata string
	if len(meta) > 0 {
		b, _ := json.Marshal(meta)
		metadata = string(b)
	}
	return tx.Audit.Create(ctx, &models.AuditLog{
		UserID:     ActorFrom(ctx),
		Action:     action,
		Resource:   resource,
		ResourceID: strconv.FormatUint(uint64(id), 10),
		Metadata:   metadata,
	})
}
