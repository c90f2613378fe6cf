package derivation

import "fmt"

// sensorLocations maps known sensor ids to their installed location.
// Used when a reading comes from a sensor other than the one declared in
// the current configuration.
var sensorLocations = map[string]string{
	"CAP-SENS-001": "Edificio G - Sor Juana",
	"CAP-SENS-002": "Edificio A - Azotea",
	"CAP-SENS-003": "Planta de bombeo",
}

// resolveLocation looks up the static table and falls back to a generic
// label for unmapped sensors.
func resolveLocation(sensorID string) string {
	if loc, ok := sensorLocations[sensorID]; ok {
		return loc
	}
	return fmt.Sprintf("Sensor %s", sensorID)
}
