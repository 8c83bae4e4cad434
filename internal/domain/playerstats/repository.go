package playerstats

import "context"

// Repository describes player aggregate persistence needs from use cases.
// Records are keyed by normalized player name, unique.
type Repository interface {
	GetByName(ctx context.Context, name string) (Record, bool, error)
	Upsert(ctx context.Context, record Record) error
	List(ctx context.Context) ([]Record, error)
	Rename(ctx context.Context, oldName, newName string) error
}
