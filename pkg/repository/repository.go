package repository

import (
	"context"

	"github.com/whizlyai/whizly/pkg/db/option"
)

// Repository is a generic gorm-backed store. Query structs are matched on
// their non-zero fields.
type Repository[T any] interface {
	Find(ctx context.Context, query *T, opts ...option.QueryOption) ([]*T, error)
	// FindOne returns nil, nil when nothing matches.
	FindOne(ctx context.Context, query *T, opts ...option.QueryOption) (*T, error)
	Count(ctx context.Context, query *T, opts ...option.QueryOption) (int64, error)
	Create(ctx context.Context, resources ...*T) error
}
