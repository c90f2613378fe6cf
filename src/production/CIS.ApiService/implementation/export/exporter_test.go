package export

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cismodels "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Models"
)

func sampleReadings() []cismodels.Reading {
	ts := time.Date(2025, 3, 10, 12, 30, 0, 0, time.UTC)
	return []cismodels.Reading{
		{
			SensorID:     "CAP-SENS-001",
			RawValue:     8,
			VolumeLiters: 800,
			Status:       cismodels.StatusWarning,
			Location:     "Edificio G - Sor Juana",
			Timestamp:    ts,
		},
		{
			SensorID:     "CAP-SENS-001",
			RawValue:     42.5,
			VolumeLiters: 4250,
			Status:       cismodels.StatusNormal,
			Location:     `Tanque "Norte", azotea`,
			Timestamp:    ts.Add(time.Minute),
		},
	}
}

func TestExportCSVAllColumns(t *testing.T) {
	doc, err := Export(sampleReadings(), FormatCSV, nil)

	require.NoError(t, err)
	assert.Equal(t, "text/csv", doc.ContentType)
	assert.True(t, strings.HasSuffix(doc.Filename, ".csv"))

	lines := strings.Split(strings.TrimSpace(string(doc.Body)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Timestamp,Sensor ID,Raw Value (%),Volume (L),Status,Location", lines[0])
	assert.Contains(t, lines[1], "2025-03-10T12:30:00Z")
	assert.Contains(t, lines[1], "Warning")
}

func TestExportCSVQuotesSpecialCharacters(t *testing.T) {
	doc, err := Export(sampleReadings(), FormatCSV, []string{"location"})

	require.NoError(t, err)
	// Commas and quotes in values must survive a round trip, so the
	// writer quotes and doubles them.
	assert.Contains(t, string(doc.Body), `"Tanque ""Norte"", azotea"`)
}

func TestExportCSVColumnSelection(t *testing.T) {
	doc, err := Export(sampleReadings(), FormatCSV, []string{"status", "volume_liters"})

	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(doc.Body)), "\n")
	assert.Equal(t, "Status,Volume (L)", lines[0])
	assert.Equal(t, "Warning,800", lines[1])
}

func TestExportJSON(t *testing.T) {
	doc, err := Export(sampleReadings(), FormatJSON, []string{"sensor_id", "raw_value"})

	require.NoError(t, err)
	assert.Equal(t, "application/json", doc.ContentType)

	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal(doc.Body, &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "CAP-SENS-001", rows[0]["sensor_id"])
	assert.Equal(t, 42.5, rows[1]["raw_value"])
	_, hasStatus := rows[0]["status"]
	assert.False(t, hasStatus, "unselected columns stay out of the document")
}

func TestExportEmptyHistory(t *testing.T) {
	csvDoc, err := Export(nil, FormatCSV, nil)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(csvDoc.Body)), "\n")
	assert.Len(t, lines, 1, "header only")

	jsonDoc, err := Export(nil, FormatJSON, nil)
	require.NoError(t, err)
	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal(jsonDoc.Body, &rows))
	assert.Empty(t, rows)
}

func TestExportRejectsBadInput(t *testing.T) {
	_, err := Export(sampleReadings(), "xlsx", nil)
	assert.True(t, cismodels.IsValidation(err), "unknown format")

	_, err = Export(sampleReadings(), FormatCSV, []string{"password"})
	assert.True(t, cismodels.IsValidation(err), "unknown column")
}
