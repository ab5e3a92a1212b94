package service

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/whizlyai/whizly/internal/audit/domain"
	"github.com/whizlyai/whizly/internal/audit/masking"
	"github.com/whizlyai/whizly/internal/clock"
	obsctx "github.com/whizlyai/whizly/internal/observability/context"
	"github.com/whizlyai/whizly/internal/orgcontext"
	"github.com/whizlyai/whizly/pkg/db/pagination"
	"github.com/whizlyai/whizly/pkg/telemetry/correlation"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var actionPattern = regexp.MustCompile(`^[a-z][a-z_]*\.[a-z][a-z_]*$`)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  auditdomain.Repository
	Clock clock.Clock
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  auditdomain.Repository
	clock clock.Clock
}

func NewService(p Params) auditdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("audit.service"),
		genID: p.GenID,
		repo:  p.Repo,
		clock: p.Clock,
	}
}

// Record stores a masked copy of the entry metadata together with the
// request and correlation IDs found on ctx.
func (s *Service) Record(ctx context.Context, entry auditdomain.Entry) error {
	action := strings.TrimSpace(entry.Action)
	if !actionPattern.MatchString(action) {
		return auditdomain.ErrInvalidAction
	}
	orgID := entry.OrgID
	if orgID == 0 {
		orgID, _ = orgcontext.OrgIDFromContext(ctx)
	}
	if orgID == 0 {
		return auditdomain.ErrInvalidOrganization
	}

	targetType := strings.TrimSpace(entry.TargetType)
	if targetType == "" {
		targetType, _, _ = strings.Cut(action, ".")
	}

	metadata := masking.MaskSensitive(entry.Metadata)
	if metadata == nil {
		metadata = map[string]any{}
	}
	if id := obsctx.RequestIDFromContext(ctx); id != "" {
		metadata["request_id"] = id
	}
	if id := correlation.ExtractCorrelationID(ctx); id != "" {
		metadata["correlation_id"] = id
	}

	row := &auditdomain.AuditLog{
		ID:         s.genID.Generate(),
		OrgID:      orgID,
		Action:     action,
		TargetType: targetType,
		TargetID:   strings.TrimSpace(entry.TargetID),
		Metadata:   datatypes.JSONMap(metadata),
		CreatedAt:  s.clock.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, s.db, row); err != nil {
		s.log.Warn("audit write failed",
			zap.String("org_id", orgID.String()),
			zap.String("action", action),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (s *Service) List(ctx context.Context, req auditdomain.ListAuditLogRequest) (auditdomain.ListAuditLogResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return auditdomain.ListAuditLogResponse{}, auditdomain.ErrInvalidOrganization
	}
	if req.StartAt != nil && req.EndAt != nil && req.StartAt.After(*req.EndAt) {
		return auditdomain.ListAuditLogResponse{}, auditdomain.ErrInvalidTimeRange
	}
	after, err := decodePageToken(req.PageToken)
	if err != nil {
		return auditdomain.ListAuditLogResponse{}, err
	}

	limit := req.Limit()
	rows, err := s.repo.List(ctx, s.db, orgID, auditdomain.ListFilter{
		Action:     strings.TrimSpace(req.Action),
		TargetType: strings.TrimSpace(req.TargetType),
		TargetID:   strings.TrimSpace(req.TargetID),
		StartAt:    req.StartAt,
		EndAt:      req.EndAt,
		After:      after,
		Limit:      limit + 1,
	})
	if err != nil {
		return auditdomain.ListAuditLogResponse{}, err
	}

	var resp auditdomain.ListAuditLogResponse
	if info := pagination.BuildCursorPageInfo(rows, limit, encodePageToken); info != nil {
		resp.PageInfo = *info
	}
	if len(rows) > limit {
		rows = rows[:limit]
	}
	resp.AuditLogs = make([]auditdomain.AuditLog, 0, len(rows))
	for _, row := range rows {
		resp.AuditLogs = append(resp.AuditLogs, *row)
	}
	return resp, nil
}

func encodePageToken(row *auditdomain.AuditLog) string {
	token, err := pagination.EncodeCursor(pagination.Cursor{
		ID:        row.ID.String(),
		CreatedAt: row.CreatedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return ""
	}
	return token
}

func decodePageToken(token string) (*auditdomain.AuditLog, error) {
	if strings.TrimSpace(token) == "" {
		return nil, nil
	}
	cursor, err := pagination.DecodeCursor(token)
	if err != nil {
		return nil, auditdomain.ErrInvalidPageToken
	}
	createdAt, err := time.Parse(time.RFC3339Nano, cursor.CreatedAt)
	if err != nil {
		return nil, auditdomain.ErrInvalidPageToken
	}
	id, err := snowflake.ParseString(strings.TrimSpace(cursor.ID))
	if err != nil || id == 0 {
		return nil, auditdomain.ErrInvalidPageToken
	}
	return &auditdomain.AuditLog{ID: id, CreatedAt: createdAt}, nil
}
