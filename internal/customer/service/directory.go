package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/whizlyai/whizly/internal/cache"
	"github.com/whizlyai/whizly/internal/config"
	"github.com/whizlyai/whizly/internal/customer/domain"
	invoicedomain "github.com/whizlyai/whizly/internal/invoice/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

type DirectoryParams struct {
	fx.In

	DB     *gorm.DB
	Repo   domain.Repository
	Cache  cache.ClientCache
	Config config.InvoicingConfigProvider
}

// Directory resolves invoice bill-to snapshots through the client cache.
type Directory struct {
	db    *gorm.DB
	repo  domain.Repository
	cache cache.ClientCache
	cfg   config.InvoicingConfigProvider
}

func NewDirectory(p DirectoryParams) invoicedomain.ClientDirectory {
	return &Directory{
		db:    p.DB,
		repo:  p.Repo,
		cache: p.Cache,
		cfg:   p.Config,
	}
}

// GetClient returns nil without error when the client does not exist in the organization.
func (d *Directory) GetClient(ctx context.Context, orgID, clientID snowflake.ID) (*invoicedomain.Client, error) {
	if client, ok := d.cache.GetClient(ctx, orgID, clientID); ok {
		return client, nil
	}

	customer, err := d.repo.FindByID(ctx, d.db, orgID, clientID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, nil
	}

	client := &invoicedomain.Client{
		ID:      customer.ID,
		Name:    customer.Name,
		Email:   customer.Email,
		Address: customer.Address,
		TaxID:   customer.TaxID,
	}
	d.cache.SetClient(ctx, orgID, client, d.cfg.Get().ClientCacheTTL)
	return client, nil
}
