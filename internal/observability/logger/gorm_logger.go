package logger

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	obscontext "github.com/whizlyai/whizly/internal/observability/context"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

// GormLoggerConfig configures query logging for the invoice store.
type GormLoggerConfig struct {
	Level         gormlogger.LogLevel
	SlowThreshold time.Duration
}

// GormLoggerConfigFrom maps DATABASE_LOG_LEVEL style names onto gorm levels.
// Unknown names fall back to warn.
func GormLoggerConfigFrom(level string, slow time.Duration) GormLoggerConfig {
	cfg := GormLoggerConfig{Level: gormlogger.Warn, SlowThreshold: slow}
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "silent", "off":
		cfg.Level = gormlogger.Silent
	case "error":
		cfg.Level = gormlogger.Error
	case "info", "debug":
		cfg.Level = gormlogger.Info
	}
	return cfg
}

// GormLogger writes gorm output through the request-scoped zap logger so that
// queries carry request_id and org_id. Queries issued outside a tenant request
// (migrations, webhook event bookkeeping) are flagged with tenant_scoped=false.
//
// Not-found lookups are never logged as errors: webhook event lookups and
// invoice reads miss routinely and the caller maps them to domain errors.
type GormLogger struct {
	cfg GormLoggerConfig
}

func NewGormLogger(cfg GormLoggerConfig) *GormLogger {
	return &GormLogger{cfg: cfg}
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	next := *l
	next.cfg.Level = level
	return &next
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	l.message(ctx, gormlogger.Info, zapcore.InfoLevel, msg, data)
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	l.message(ctx, gormlogger.Warn, zapcore.WarnLevel, msg, data)
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	l.message(ctx, gormlogger.Error, zapcore.ErrorLevel, msg, data)
}

func (l *GormLogger) message(ctx context.Context, min gormlogger.LogLevel, level zapcore.Level, msg string, data []interface{}) {
	if l.cfg.Level < min {
		return
	}
	fields := l.baseFields(ctx)
	if len(data) > 0 {
		fields = append(fields, zap.Any("data", data))
	}
	FromContext(ctx).Log(level, msg, fields...)
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.cfg.Level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	slow := l.cfg.SlowThreshold > 0 && elapsed > l.cfg.SlowThreshold

	var level zapcore.Level
	switch {
	case err != nil && !errors.Is(err, gormlogger.ErrRecordNotFound):
		if l.cfg.Level < gormlogger.Error {
			return
		}
		level = zapcore.ErrorLevel
	case slow:
		if l.cfg.Level < gormlogger.Warn {
			return
		}
		level = zapcore.WarnLevel
	case l.cfg.Level >= gormlogger.Info:
		level = zapcore.DebugLevel
	default:
		return
	}

	sql, rows := fc()
	op, table := describeSQL(sql)
	fields := append(l.baseFields(ctx),
		zap.String("operation", op),
		zap.String("table", table),
		zap.Duration("elapsed", elapsed),
		zap.Bool("slow", slow),
	)
	if rows >= 0 {
		fields = append(fields, zap.Int64("rows", rows))
	}
	if err != nil && !errors.Is(err, gormlogger.ErrRecordNotFound) {
		fields = append(fields, zap.Error(err))
	}
	if level == zapcore.DebugLevel || level == zapcore.ErrorLevel {
		fields = append(fields, zap.String("sql", strings.TrimSpace(sql)))
	}
	FromContext(ctx).Log(level, "db.query", fields...)
}

// ParamsFilter drops bound values; they include customer tax IDs and emails.
func (l *GormLogger) ParamsFilter(_ context.Context, sql string, _ ...interface{}) (string, []interface{}) {
	return sql, nil
}

func (l *GormLogger) baseFields(ctx context.Context) []zap.Field {
	fields := []zap.Field{zap.String("component", "gorm")}
	if obscontext.OrgIDFromContext(ctx) == "" {
		fields = append(fields, zap.Bool("tenant_scoped", false))
	}
	return fields
}

var tableRe = regexp.MustCompile(`(?i)\b(?:FROM|INTO|UPDATE|JOIN)\s+["` + "`" + `]?([a-zA-Z_][a-zA-Z0-9_]*)`)

// describeSQL returns the statement verb and the first table it touches.
func describeSQL(sql string) (string, string) {
	op := "UNKNOWN"
	for _, tok := range strings.Fields(strings.ToUpper(sql)) {
		tok = strings.Trim(tok, "();")
		if tok == "SELECT" || tok == "INSERT" || tok == "UPDATE" || tok == "DELETE" {
			op = tok
			break
		}
	}
	table := ""
	if m := tableRe.FindStringSubmatch(sql); m != nil {
		table = strings.ToLower(m[1])
	}
	return op, table
}

var _ gormlogger.Interface = (*GormLogger)(nil)
