package storage

import "context"

// Storage is a keyed store for the dashboard's in-memory entities
// (sessions on the client, deployments and uploads on the dev backend).
type Storage interface {
	Create(ctx context.Context, key string, value any) error
	Get(ctx context.Context, key string) (any, error)
	Update(ctx context.Context, key string, value any) error
	List(ctx context.Context, offset, limit uint64) ([]any, uint64, error)
	Delete(ctx context.Context, key string) error
}
