package pagination

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	token, err := EncodeCursor(Cursor{ID: "42", IssueDate: "2025-01-31"})
	require.NoError(t, err)

	cursor, err := DecodeCursor(token)
	require.NoError(t, err)
	assert.Equal(t, "42", cursor.ID)
	assert.Equal(t, "2025-01-31", cursor.IssueDate)
}

func TestDecodeCursorRejectsGarbage(t *testing.T) {
	_, err := DecodeCursor("%%%")
	assert.Error(t, err)
}

func TestBuildCursorPageInfo(t *testing.T) {
	items := []*int{}
	for i := 1; i <= 4; i++ {
		v := i
		items = append(items, &v)
	}
	extract := func(v *int) string { return strconv.Itoa(*v) }

	info := BuildCursorPageInfo(items, 3, extract)
	assert.True(t, info.HasMore)
	assert.Equal(t, "3", info.NextPageToken)

	info = BuildCursorPageInfo(items[:3], 3, extract)
	assert.False(t, info.HasMore)
	assert.Empty(t, info.NextPageToken)
}

func TestPaginationLimit(t *testing.T) {
	assert.Equal(t, 10, Pagination{}.Limit())
	assert.Equal(t, 25, Pagination{PageSize: 25}.Limit())
	assert.Equal(t, MaxPageSize, Pagination{PageSize: 1000}.Limit())
}
