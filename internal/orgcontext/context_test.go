package orgcontext

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	obscontext "github.com/whizlyai/whizly/internal/observability/context"
)

func TestOrgIDFromContext(t *testing.T) {
	_, ok := OrgIDFromContext(context.Background())
	assert.False(t, ok)

	ctx := WithOrgID(context.Background(), 42)
	id, ok := OrgIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, snowflake.ID(42), id)
	assert.Equal(t, "42", obscontext.OrgIDFromContext(ctx))

	ctx = WithOrgID(context.Background(), 0)
	_, ok = OrgIDFromContext(ctx)
	assert.False(t, ok)
	assert.Empty(t, obscontext.OrgIDFromContext(ctx))
}

func TestParseOrgID(t *testing.T) {
	id, ok := ParseOrgID(" 1001 ")
	assert.True(t, ok)
	assert.Equal(t, snowflake.ID(1001), id)

	for _, raw := range []string{"abc", "-5", "0", ""} {
		_, ok = ParseOrgID(raw)
		assert.False(t, ok, raw)
	}
}
