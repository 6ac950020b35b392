package metrics

import "context"

// Repository computes dashboard aggregates across the domain tables.
type Repository interface {
	Overview(ctx context.Context) (*Overview, error)
}
