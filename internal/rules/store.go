package rules

import "context"

// Store is the rule persistence boundary. The engine reads a snapshot per
// cycle via List and writes only through Disable and Remove; everything
// else backs the management surface.
type Store interface {
	List(ctx context.Context) ([]Rule, error)
	Get(ctx context.Context, id string) (Rule, error)
	Add(ctx context.Context, rule Rule) error
	Update(ctx context.Context, rule Rule) error
	Enable(ctx context.Context, id string) error
	Disable(ctx context.Context, id string) error
	Remove(ctx context.Context, id string) error
	Close()
}
