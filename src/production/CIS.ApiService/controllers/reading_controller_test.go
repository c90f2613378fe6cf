package controllers

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	interfaces "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Repository/Interfaces"
)

func testContextWithQuery(t *testing.T, rawQuery string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
	req := httptest.NewRequest("GET", "/api/records", nil)
	req.URL.RawQuery = rawQuery
	ctx.Request = req
	return ctx
}

func TestQueryParamsFromRequestDefaults(t *testing.T) {
	ctx := testContextWithQuery(t, "")

	params, err := queryParamsFromRequest(ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, params.Page)
	assert.Equal(t, 20, params.PageSize)
	assert.Equal(t, interfaces.SortByTimestamp, params.SortBy)
	assert.Equal(t, "desc", params.SortOrder)
	assert.Nil(t, params.DateFrom)
	assert.Nil(t, params.DateTo)
}

func TestQueryParamsFromRequestFullSet(t *testing.T) {
	ctx := testContextWithQuery(t,
		"sensor=CAP-SENS-001&estado=Critical&fechaInicio=2025-03-01&fechaFin=2025-03-10&page=2&limit=50&sortBy=raw_value&sortOrder=asc")

	params, err := queryParamsFromRequest(ctx)

	require.NoError(t, err)
	assert.Equal(t, "CAP-SENS-001", params.SensorID)
	assert.Equal(t, "Critical", params.Status)
	assert.Equal(t, 2, params.Page)
	assert.Equal(t, 50, params.PageSize)
	assert.Equal(t, interfaces.SortByRawValue, params.SortBy)
	assert.Equal(t, "asc", params.SortOrder)

	require.NotNil(t, params.DateFrom)
	require.NotNil(t, params.DateTo)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), *params.DateFrom)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), *params.DateTo)
}

func TestQueryParamsFromRequestRejectsBadValues(t *testing.T) {
	for _, rawQuery := range []string{
		"page=two",
		"limit=abc",
		"fechaInicio=March 1st",
		"fechaFin=01/03/2025",
	} {
		ctx := testContextWithQuery(t, rawQuery)
		_, err := queryParamsFromRequest(ctx)
		assert.Error(t, err, rawQuery)
	}
}

func TestQueryParamsFromRequestUnknownSortFallsBack(t *testing.T) {
	ctx := testContextWithQuery(t, "sortBy=password&sortOrder=sideways")

	params, err := queryParamsFromRequest(ctx)

	require.NoError(t, err)
	assert.Equal(t, interfaces.SortByTimestamp, params.SortBy)
	assert.Equal(t, "desc", params.SortOrder)
}
