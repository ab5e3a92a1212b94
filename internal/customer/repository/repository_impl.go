package repository

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/whizlyai/whizly/internal/customer/domain"
	"github.com/whizlyai/whizly/pkg/db/option"
	"github.com/whizlyai/whizly/pkg/repository"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, customer *domain.Customer) error {
	return repository.ProvideStore[domain.Customer](db).Create(ctx, customer)
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.Customer, error) {
	return repository.ForOrg[domain.Customer](db, orgID).FindOne(ctx, &domain.Customer{ID: id})
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter domain.ListCustomerFilter) ([]*domain.Customer, error) {
	opts := []option.QueryOption{}
	if name := strings.ToLower(strings.TrimSpace(filter.Name)); name != "" {
		opts = append(opts, option.ApplyWhere("LOWER(name) LIKE ?", "%"+name+"%"))
	}
	if email := strings.TrimSpace(filter.Email); email != "" {
		opts = append(opts, option.ApplyWhere("email = ?", email))
	}
	if filter.Cursor != nil {
		opts = append(opts, option.ApplyWhere("(created_at < ? OR (created_at = ? AND id < ?))",
			filter.Cursor.CreatedAt,
			filter.Cursor.CreatedAt,
			filter.Cursor.ID,
		))
	}
	opts = append(opts,
		option.ApplyOrder("created_at", "desc"),
		option.ApplyOrder("id", "desc"),
		option.ApplyPagination(filter.Limit, 0),
	)

	return repository.ForOrg[domain.Customer](db, orgID).Find(ctx, nil, opts...)
}
