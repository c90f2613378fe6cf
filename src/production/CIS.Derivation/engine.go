// Package derivation computes the persisted fields of a reading from its
// raw sensor percentage and the configuration version current at insert
// time. It is pure: no I/O, no clock, no side effects.
package derivation

import (
	"math"

	cismodels "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Models"
)

// Derived holds the fields computed for a reading. Once a reading is
// persisted these values are frozen; a later configuration change never
// rewrites them.
type Derived struct {
	VolumeLiters int64
	Status       cismodels.Status
	Location     string
}

// Derive computes volume, status and location for a raw percentage under
// cfg. A nil cfg falls back to the documented defaults so ingestion can
// never fail just because no configuration was ever saved.
func Derive(sensorID string, rawValue float64, cfg *cismodels.Configuration) Derived {
	if cfg == nil {
		cfg = cismodels.DefaultConfiguration()
	}

	return Derived{
		VolumeLiters: volumeLiters(rawValue, cfg.CapacityLiters),
		Status:       classify(rawValue, cfg),
		Location:     location(sensorID, cfg),
	}
}

// volumeLiters rounds half away from zero, matching math.Round.
func volumeLiters(rawValue float64, capacity int64) int64 {
	if rawValue == cismodels.RawValueNoData {
		return 0
	}
	return int64(math.Round(rawValue / 100 * float64(capacity)))
}

// classify applies the thresholds in their literal order, both bounds
// inclusive. The order is deliberately not corrected when a stored
// configuration has critical > alert; such data degrades to whatever the
// literal comparisons yield.
func classify(rawValue float64, cfg *cismodels.Configuration) cismodels.Status {
	if rawValue == cismodels.RawValueNoData {
		return cismodels.StatusNoData
	}
	if rawValue <= cfg.CriticalThreshold {
		return cismodels.StatusCritical
	}
	if rawValue <= cfg.AlertThreshold {
		return cismodels.StatusWarning
	}
	return cismodels.StatusNormal
}

// location prefers the configuration's declared binding when the reading
// comes from the configured sensor, otherwise the static lookup table.
func location(sensorID string, cfg *cismodels.Configuration) string {
	if cfg.SensorID == sensorID && cfg.Location != "" {
		return cfg.Location
	}
	return resolveLocation(sensorID)
}
