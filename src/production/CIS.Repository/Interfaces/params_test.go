package interfaces

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeRangeDayGranularity(t *testing.T) {
	from := time.Date(2024, time.March, 10, 14, 25, 3, 0, time.UTC)
	to := time.Date(2024, time.March, 12, 8, 1, 0, 0, time.UTC)

	p := ReadingQueryParams{DateFrom: &from, DateTo: &to}
	gotFrom, gotTo := p.TimeRange()

	require.NotNil(t, gotFrom)
	require.NotNil(t, gotTo)
	assert.Equal(t, time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC), *gotFrom)
	assert.Equal(t, time.Date(2024, time.March, 12, 23, 59, 59, int(999*time.Millisecond), time.UTC), *gotTo)
}

func TestTimeRangeUnbounded(t *testing.T) {
	var p ReadingQueryParams
	from, to := p.TimeRange()
	assert.Nil(t, from)
	assert.Nil(t, to)
}

func TestNormalizeDefaults(t *testing.T) {
	p := ReadingQueryParams{Page: 0, PageSize: -3, SortBy: "password", SortOrder: "sideways"}
	p.Normalize()

	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.PageSize)
	assert.Equal(t, SortByTimestamp, p.SortBy)
	assert.Equal(t, "desc", p.SortOrder)
}

func TestNormalizeKeepsValidValues(t *testing.T) {
	p := ReadingQueryParams{Page: 3, PageSize: 50, SortBy: SortByVolume, SortOrder: "asc"}
	p.Normalize()

	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 50, p.PageSize)
	assert.Equal(t, SortByVolume, p.SortBy)
	assert.Equal(t, "asc", p.SortOrder)
}

func TestNormalizeCapsPageSize(t *testing.T) {
	p := ReadingQueryParams{PageSize: 100000}
	p.Normalize()
	assert.Equal(t, 500, p.PageSize)
}
