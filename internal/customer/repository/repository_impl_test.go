package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/whizlyai/whizly/internal/customer/domain"
	"gorm.io/gorm"
)

func TestListIsTenantScoped(t *testing.T) {
	ctx := context.Background()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Customer{}))

	r := Provide()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, r.Insert(ctx, db, &domain.Customer{ID: 1, OrgID: 10, Name: "Acme", CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, r.Insert(ctx, db, &domain.Customer{ID: 2, OrgID: 20, Name: "Beta", CreatedAt: now, UpdatedAt: now}))

	items, err := r.List(ctx, db, 10, domain.ListCustomerFilter{Limit: 10})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Acme", items[0].Name)

	found, err := r.FindByID(ctx, db, 20, 1)
	require.NoError(t, err)
	assert.Nil(t, found)
}
