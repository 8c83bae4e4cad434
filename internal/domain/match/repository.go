package match

import "context"

// Repository describes match report persistence needs from use cases.
// Reports are ordered by creation time; Latest returns the only report the
// revert operation may target.
type Repository interface {
	Insert(ctx context.Context, report Report) error
	Update(ctx context.Context, report Report) error
	Latest(ctx context.Context) (Report, bool, error)
	List(ctx context.Context) ([]Report, error)
	Delete(ctx context.Context, id string) error
	ExistsByContentHash(ctx context.Context, hash string) (bool, error)
}
