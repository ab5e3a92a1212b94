package server

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeRangeQuery(t *testing.T) {
	from, to, err := timeRangeQuery{FromField: "issued_from", From: "2026-04-01", ToField: "issued_to", To: "2026-04-30"}.parse()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), *from)
	assert.Equal(t, time.Date(2026, 4, 30, 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC), *to)

	from, to, err = timeRangeQuery{FromField: "start_at", From: "2026-04-01T10:00:00+05:30", ToField: "end_at"}.parse()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 4, 1, 4, 30, 0, 0, time.UTC), *from)
	assert.Nil(t, to)
}

func TestTimeRangeQueryRejects(t *testing.T) {
	_, _, err := timeRangeQuery{FromField: "start_at", From: "yesterday", ToField: "end_at"}.parse()
	var verrs *ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "start_at", verrs.Errors[0].Field)

	_, _, err = timeRangeQuery{FromField: "issued_from", From: "2026-05-02", ToField: "issued_to", To: "2026-05-01"}.parse()
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "invalid_range", verrs.Errors[0].Code)
}
