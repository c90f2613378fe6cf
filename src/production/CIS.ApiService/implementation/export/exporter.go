// Package export renders reading history as downloadable CSV or JSON
// documents for the dashboard's report feature.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	cismodels "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Models"
)

const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// Exportable reading columns, in the order they appear when no explicit
// selection is given.
var defaultColumns = []string{"timestamp", "sensor_id", "raw_value", "volume_liters", "status", "location"}

var columnHeaders = map[string]string{
	"timestamp":     "Timestamp",
	"sensor_id":     "Sensor ID",
	"raw_value":     "Raw Value (%)",
	"volume_liters": "Volume (L)",
	"status":        "Status",
	"location":      "Location",
}

// Document is a rendered export ready to be served as a download.
type Document struct {
	ContentType string
	Filename    string
	Body        []byte
}

// Export renders readings in the given format ("csv" or "json") with
// the selected columns. An empty column list exports every column;
// unknown columns or formats are rejected as validation errors.
func Export(readings []cismodels.Reading, format string, columns []string) (*Document, error) {
	selected, err := resolveColumns(columns)
	if err != nil {
		return nil, err
	}

	stamp := time.Now().Format("2006-01-02")

	switch format {
	case FormatCSV:
		body, err := renderCSV(readings, selected)
		if err != nil {
			return nil, err
		}
		return &Document{
			ContentType: "text/csv",
			Filename:    fmt.Sprintf("cistern-readings-%s.csv", stamp),
			Body:        body,
		}, nil
	case FormatJSON:
		body, err := renderJSON(readings, selected)
		if err != nil {
			return nil, err
		}
		return &Document{
			ContentType: "application/json",
			Filename:    fmt.Sprintf("cistern-readings-%s.json", stamp),
			Body:        body,
		}, nil
	default:
		return nil, &cismodels.ValidationError{Field: "format", Reason: fmt.Sprintf("%q is not csv or json", format)}
	}
}

func resolveColumns(columns []string) ([]string, error) {
	if len(columns) == 0 {
		return defaultColumns, nil
	}
	for _, col := range columns {
		if _, ok := columnHeaders[col]; !ok {
			return nil, &cismodels.ValidationError{Field: "columns", Reason: fmt.Sprintf("unknown column %q", col)}
		}
	}
	return columns, nil
}

func renderCSV(readings []cismodels.Reading, columns []string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := make([]string, len(columns))
	for i, col := range columns {
		header[i] = columnHeaders[col]
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	row := make([]string, len(columns))
	for _, reading := range readings {
		for i, col := range columns {
			row[i] = cellValue(reading, col)
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderJSON(readings []cismodels.Reading, columns []string) ([]byte, error) {
	rows := make([]map[string]interface{}, 0, len(readings))
	for _, reading := range readings {
		row := make(map[string]interface{}, len(columns))
		for _, col := range columns {
			row[col] = fieldValue(reading, col)
		}
		rows = append(rows, row)
	}
	return json.MarshalIndent(rows, "", "  ")
}

func cellValue(r cismodels.Reading, column string) string {
	switch column {
	case "timestamp":
		return r.Timestamp.Format(time.RFC3339)
	case "sensor_id":
		return r.SensorID
	case "raw_value":
		return strconv.FormatFloat(r.RawValue, 'f', -1, 64)
	case "volume_liters":
		return strconv.FormatInt(r.VolumeLiters, 10)
	case "status":
		return string(r.Status)
	case "location":
		return r.Location
	}
	return ""
}

func fieldValue(r cismodels.Reading, column string) interface{} {
	switch column {
	case "timestamp":
		return r.Timestamp.Format(time.RFC3339)
	case "sensor_id":
		return r.SensorID
	case "raw_value":
		return r.RawValue
	case "volume_liters":
		return r.VolumeLiters
	case "status":
		return string(r.Status)
	case "location":
		return r.Location
	}
	return nil
}
