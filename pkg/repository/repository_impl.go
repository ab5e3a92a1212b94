package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	dbutil "github.com/whizlyai/whizly/pkg/db"
	"github.com/whizlyai/whizly/pkg/db/option"
	"gorm.io/gorm"
)

type store[T any] struct {
	db    *gorm.DB
	scope []option.QueryOption
}

// ProvideStore returns an unscoped store over db, which may be a transaction.
func ProvideStore[T any](db *gorm.DB) Repository[T] {
	return &store[T]{db: db}
}

// ForOrg returns a store whose reads are restricted to one tenant's rows.
// T must have an org_id column.
func ForOrg[T any](db *gorm.DB, orgID snowflake.ID) Repository[T] {
	return &store[T]{
		db:    db,
		scope: []option.QueryOption{option.ApplyWhere("org_id = ?", orgID)},
	}
}

func (s *store[T]) Find(ctx context.Context, query *T, opts ...option.QueryOption) ([]*T, error) {
	var out []*T
	if err := s.query(ctx, query, opts).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *store[T]) FindOne(ctx context.Context, query *T, opts ...option.QueryOption) (*T, error) {
	var out T
	err := s.query(ctx, query, opts).Take(&out).Error
	if dbutil.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *store[T]) Count(ctx context.Context, query *T, opts ...option.QueryOption) (int64, error) {
	var n int64
	err := s.query(ctx, query, opts).Model(new(T)).Count(&n).Error
	return n, err
}

func (s *store[T]) Create(ctx context.Context, resources ...*T) error {
	switch len(resources) {
	case 0:
		return nil
	case 1:
		return s.db.WithContext(ctx).Create(resources[0]).Error
	}
	return s.db.WithContext(ctx).Create(resources).Error
}

func (s *store[T]) query(ctx context.Context, filter *T, opts []option.QueryOption) *gorm.DB {
	stmt := s.db.WithContext(ctx)
	if filter != nil {
		stmt = stmt.Where(filter)
	}
	for _, opt := range s.scope {
		stmt = opt.Apply(stmt)
	}
	for _, opt := range opts {
		stmt = opt.Apply(stmt)
	}
	return stmt
}
