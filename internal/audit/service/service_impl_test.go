package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	auditdomain "github.com/whizlyai/whizly/internal/audit/domain"
	"github.com/whizlyai/whizly/internal/audit/repository"
	"github.com/whizlyai/whizly/internal/clock"
	obsctx "github.com/whizlyai/whizly/internal/observability/context"
	"github.com/whizlyai/whizly/internal/orgcontext"
	"github.com/whizlyai/whizly/pkg/db/pagination"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (auditdomain.Service, *clock.FakeClock) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&auditdomain.AuditLog{}))

	node, err := snowflake.NewNode(3)
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	svc := NewService(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
		Clock: clk,
	})
	return svc, clk
}

func TestRecordValidatesEntry(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := orgcontext.WithOrgID(context.Background(), 42)

	for _, action := range []string{" ", "created", "Invoice.Created", "invoice."} {
		err := svc.Record(ctx, auditdomain.Entry{Action: action})
		assert.ErrorIs(t, err, auditdomain.ErrInvalidAction, action)
	}

	err := svc.Record(context.Background(), auditdomain.Entry{Action: auditdomain.ActionInvoiceCreated})
	assert.ErrorIs(t, err, auditdomain.ErrInvalidOrganization)
}

func TestRecordUsesExplicitOrgAndDerivesTargetType(t *testing.T) {
	svc, _ := newTestService(t)

	require.NoError(t, svc.Record(context.Background(), auditdomain.Entry{
		OrgID:    7,
		Action:   auditdomain.ActionCustomerCreated,
		TargetID: " 55 ",
	}))

	resp, err := svc.List(orgcontext.WithOrgID(context.Background(), 7), auditdomain.ListAuditLogRequest{})
	require.NoError(t, err)
	require.Len(t, resp.AuditLogs, 1)
	assert.Equal(t, auditdomain.TargetCustomer, resp.AuditLogs[0].TargetType)
	assert.Equal(t, "55", resp.AuditLogs[0].TargetID)

	other, err := svc.List(orgcontext.WithOrgID(context.Background(), 8), auditdomain.ListAuditLogRequest{})
	require.NoError(t, err)
	assert.Empty(t, other.AuditLogs)
}

func TestAuditLogWritesMaskedEntry(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := orgcontext.WithOrgID(context.Background(), 42)
	ctx = obsctx.WithRequestID(ctx, "req-1")

	err := svc.Record(ctx, auditdomain.Entry{
		Action:     auditdomain.ActionInvoiceCreated,
		TargetType: auditdomain.TargetInvoice,
		TargetID:   "1001",
		Metadata: map[string]any{
			"invoice_number":  "INV-202603-00001",
			"customer_tax_id": "29ABCDE1234F1Z5",
		},
	})
	require.NoError(t, err)

	resp, err := svc.List(ctx, auditdomain.ListAuditLogRequest{})
	require.NoError(t, err)
	require.Len(t, resp.AuditLogs, 1)

	entry := resp.AuditLogs[0]
	assert.Equal(t, snowflake.ID(42), entry.OrgID)
	assert.Equal(t, "invoice", entry.TargetType)
	assert.Equal(t, "INV-202603-00001", entry.Metadata["invoice_number"])
	assert.Equal(t, "****F1Z5", entry.Metadata["customer_tax_id"])
	assert.Equal(t, "req-1", entry.Metadata["request_id"])
}

func TestListPaginatesNewestFirst(t *testing.T) {
	svc, clk := newTestService(t)
	ctx := orgcontext.WithOrgID(context.Background(), 42)

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.Record(ctx, auditdomain.Entry{
			Action:   auditdomain.ActionInvoicePaymentRecorded,
			Metadata: map[string]any{"seq": i},
		}))
		clk.Advance(time.Minute)
	}

	first, err := svc.List(ctx, auditdomain.ListAuditLogRequest{})
	require.NoError(t, err)
	require.Len(t, first.AuditLogs, 3)
	assert.False(t, first.HasMore)

	req := auditdomain.ListAuditLogRequest{}
	req.PageSize = 2
	page, err := svc.List(ctx, req)
	require.NoError(t, err)
	require.Len(t, page.AuditLogs, 2)
	assert.True(t, page.HasMore)
	assert.True(t, page.AuditLogs[0].CreatedAt.After(page.AuditLogs[1].CreatedAt))

	req.PageToken = page.NextPageToken
	next, err := svc.List(ctx, req)
	require.NoError(t, err)
	require.Len(t, next.AuditLogs, 1)
	assert.False(t, next.HasMore)
}

func TestListRejectsBadInput(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.List(context.Background(), auditdomain.ListAuditLogRequest{})
	assert.ErrorIs(t, err, auditdomain.ErrInvalidOrganization)

	ctx := orgcontext.WithOrgID(context.Background(), 42)
	_, err = svc.List(ctx, auditdomain.ListAuditLogRequest{Pagination: pagination.Pagination{PageToken: "%%%"}})
	assert.ErrorIs(t, err, auditdomain.ErrInvalidPageToken)

	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	end := start.Add(-time.Hour)
	_, err = svc.List(ctx, auditdomain.ListAuditLogRequest{StartAt: &start, EndAt: &end})
	assert.ErrorIs(t, err, auditdomain.ErrInvalidTimeRange)
}
