package standings

import "context"

// Repository describes standings persistence needs from use cases. Exactly
// two slots exist; GetBySlot reports absence instead of failing so callers
// can fall back to the default slot shape.
type Repository interface {
	GetBySlot(ctx context.Context, teamID string) (Team, bool, error)
	ListSlots(ctx context.Context) ([]Team, error)
	Upsert(ctx context.Context, team Team) error
}
