package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/whizlyai/whizly/internal/audit/domain"
	"github.com/whizlyai/whizly/pkg/db/option"
	"github.com/whizlyai/whizly/pkg/repository"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, entry *domain.AuditLog) error {
	return repository.ProvideStore[domain.AuditLog](db).Create(ctx, entry)
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter domain.ListFilter) ([]*domain.AuditLog, error) {
	match := &domain.AuditLog{
		Action:     filter.Action,
		TargetType: filter.TargetType,
		TargetID:   filter.TargetID,
	}

	var opts []option.QueryOption
	if filter.StartAt != nil {
		opts = append(opts, option.ApplyWhere("created_at >= ?", filter.StartAt.UTC()))
	}
	if filter.EndAt != nil {
		opts = append(opts, option.ApplyWhere("created_at <= ?", filter.EndAt.UTC()))
	}
	if after := filter.After; after != nil {
		opts = append(opts, option.ApplyWhere("(created_at < ? OR (created_at = ? AND id < ?))",
			after.CreatedAt, after.CreatedAt, after.ID))
	}
	opts = append(opts,
		option.ApplyOrder("created_at", "desc"),
		option.ApplyOrder("id", "desc"),
		option.ApplyPagination(filter.Limit, 0),
	)
	return repository.ForOrg[domain.AuditLog](db, orgID).Find(ctx, match, opts...)
}
