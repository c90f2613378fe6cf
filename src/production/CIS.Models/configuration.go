package cismodels

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Configuration is one immutable version of the cistern configuration.
// Saving always inserts a new version; the version with the newest
// CreatedAt is the current one.
type Configuration struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name               string             `bson:"name" json:"name"`
	CapacityLiters     int64              `bson:"capacity_liters" json:"capacity_liters"`
	Location           string             `bson:"location" json:"location"`
	Material           string             `bson:"material" json:"material"`
	SensorModel        string             `bson:"sensor_model" json:"sensor_model"`
	SensorID           string             `bson:"sensor_id" json:"sensor_id"`
	SensorInstalledAt  time.Time          `bson:"sensor_installed_at" json:"sensor_installed_at"`
	SensorPrecision    string             `bson:"sensor_precision" json:"sensor_precision"`
	SamplingIntervalMs int                `bson:"sampling_interval_ms" json:"sampling_interval_ms"`
	AlertThreshold     float64            `bson:"alert_threshold" json:"alert_threshold"`
	CriticalThreshold  float64            `bson:"critical_threshold" json:"critical_threshold"`
	CreatedAt          time.Time          `bson:"created_at" json:"created_at"`
}

// DefaultConfiguration returns the documented fallback used whenever no
// configuration version exists or storage is unreachable. Values match
// the commissioning sheet of the Sor Juana installation.
func DefaultConfiguration() *Configuration {
	return &Configuration{
		Name:               "Cisterna - Sorluana",
		CapacityLiters:     10000,
		Location:           "Edificio G - Sor Juana",
		Material:           "Concreto armado",
		SensorModel:        "Sensor Capacitivo XYZ-2000",
		SensorID:           "CAP-SENS-001",
		SensorInstalledAt:  time.Date(2024, time.October, 15, 0, 0, 0, 0, time.UTC),
		SensorPrecision:    "±2%",
		SamplingIntervalMs: 10000,
		AlertThreshold:     15,
		CriticalThreshold:  5,
	}
}

// SamplingInterval converts the stored millisecond value to a Duration,
// falling back to the default when the stored value is unusable.
func (c *Configuration) SamplingInterval() time.Duration {
	if c == nil || c.SamplingIntervalMs <= 0 {
		return time.Duration(DefaultConfiguration().SamplingIntervalMs) * time.Millisecond
	}
	return time.Duration(c.SamplingIntervalMs) * time.Millisecond
}

// ConfigurationUpdate carries the fields of a save request. Pointer
// fields distinguish "absent" from zero; absent fields keep the value of
// the current version (or the default when the store is empty).
type ConfigurationUpdate struct {
	Name               *string    `json:"name,omitempty"`
	CapacityLiters     *int64     `json:"capacity_liters,omitempty"`
	Location           *string    `json:"location,omitempty"`
	Material           *string    `json:"material,omitempty"`
	SensorModel        *string    `json:"sensor_model,omitempty"`
	SensorID           *string    `json:"sensor_id,omitempty"`
	SensorInstalledAt  *time.Time `json:"sensor_installed_at,omitempty"`
	SensorPrecision    *string    `json:"sensor_precision,omitempty"`
	SamplingIntervalMs *int       `json:"sampling_interval_ms,omitempty"`
	AlertThreshold     *float64   `json:"alert_threshold,omitempty"`
	CriticalThreshold  *float64   `json:"critical_threshold,omitempty"`
}

// Apply merges the update into a copy of base and returns the copy.
func (u ConfigurationUpdate) Apply(base *Configuration) *Configuration {
	next := *base
	next.ID = primitive.NilObjectID
	if u.Name != nil {
		next.Name = *u.Name
	}
	if u.CapacityLiters != nil {
		next.CapacityLiters = *u.CapacityLiters
	}
	if u.Location != nil {
		next.Location = *u.Location
	}
	if u.Material != nil {
		next.Material = *u.Material
	}
	if u.SensorModel != nil {
		next.SensorModel = *u.SensorModel
	}
	if u.SensorID != nil {
		next.SensorID = *u.SensorID
	}
	if u.SensorInstalledAt != nil {
		next.SensorInstalledAt = *u.SensorInstalledAt
	}
	if u.SensorPrecision != nil {
		next.SensorPrecision = *u.SensorPrecision
	}
	if u.SamplingIntervalMs != nil {
		next.SamplingIntervalMs = *u.SamplingIntervalMs
	}
	if u.AlertThreshold != nil {
		next.AlertThreshold = *u.AlertThreshold
	}
	if u.CriticalThreshold != nil {
		next.CriticalThreshold = *u.CriticalThreshold
	}
	return &next
}
