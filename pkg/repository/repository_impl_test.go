package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/whizlyai/whizly/pkg/db/option"
	"gorm.io/gorm"
)

type ledgerRow struct {
	ID    int64 `gorm:"primaryKey"`
	OrgID snowflake.ID
	Name  string
}

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&ledgerRow{}))
	return conn
}

func seed(t *testing.T, conn *gorm.DB) {
	t.Helper()
	require.NoError(t, ProvideStore[ledgerRow](conn).Create(context.Background(),
		&ledgerRow{ID: 1, OrgID: 10, Name: "b"},
		&ledgerRow{ID: 2, OrgID: 10, Name: "a"},
		&ledgerRow{ID: 3, OrgID: 20, Name: "c"},
	))
}

func TestStoreFindAndCount(t *testing.T) {
	ctx := context.Background()
	conn := setupDB(t)
	seed(t, conn)
	store := ProvideStore[ledgerRow](conn)

	rows, err := store.Find(ctx, &ledgerRow{OrgID: 10}, option.ApplyOrder("name", "asc"))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "a", rows[0].Name)

	n, err := store.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	page, err := store.Find(ctx, nil, option.ApplyOrder("id", "asc"), option.ApplyPagination(1, 1))
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, int64(2), page[0].ID)
}

func TestForOrgHidesOtherTenants(t *testing.T) {
	ctx := context.Background()
	conn := setupDB(t)
	seed(t, conn)

	store := ForOrg[ledgerRow](conn, 20)
	rows, err := store.Find(ctx, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "c", rows[0].Name)

	other, err := store.FindOne(ctx, &ledgerRow{ID: 1})
	require.NoError(t, err)
	assert.Nil(t, other)

	n, err := store.Count(ctx, &ledgerRow{Name: "c"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestStoreCreateNothing(t *testing.T) {
	assert.NoError(t, ProvideStore[ledgerRow](setupDB(t)).Create(context.Background()))
}
