// Package orgcontext carries the tenant of the current request. Every invoice,
// customer, payment and audit query is scoped by it.
package orgcontext

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	obscontext "github.com/whizlyai/whizly/internal/observability/context"
)

// HeaderOrgID carries the tenant on inbound API requests.
const HeaderOrgID = "X-Org-Id"

type orgKey struct{}

// WithOrgID scopes ctx to a tenant. The ID is also exposed to logging and
// tracing as org_id. A zero ID leaves ctx unscoped.
func WithOrgID(ctx context.Context, orgID snowflake.ID) context.Context {
	if orgID <= 0 {
		return ctx
	}
	ctx = context.WithValue(ctx, orgKey{}, orgID)
	return obscontext.WithOrgID(ctx, orgID.String())
}

// OrgIDFromContext reports the tenant on ctx.
func OrgIDFromContext(ctx context.Context) (snowflake.ID, bool) {
	if ctx == nil {
		return 0, false
	}
	id, ok := ctx.Value(orgKey{}).(snowflake.ID)
	return id, ok && id > 0
}

// ParseOrgID accepts a positive decimal snowflake ID.
func ParseOrgID(raw string) (snowflake.ID, bool) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
