package cismodels

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Status classifies a water level against the thresholds that were
// active when the reading was inserted.
type Status string

const (
	StatusCritical Status = "Critical"
	StatusWarning  Status = "Warning"
	StatusNormal   Status = "Normal"
	StatusNoData   Status = "No data"
)

// RawValueNoData is the sentinel a sensor reports when it could not
// measure the level. It is accepted by ingestion and classified as
// StatusNoData instead of being rejected.
const RawValueNoData = -1

// Reading is one persisted water-level sample. VolumeLiters, Status and
// Location are frozen snapshots derived from the configuration that was
// current at insert time; they are never recomputed.
type Reading struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	SensorID     string             `bson:"sensor_id" json:"sensor_id"`
	RawValue     float64            `bson:"raw_value" json:"raw_value"`
	VolumeLiters int64              `bson:"volume_liters" json:"volume_liters"`
	Status       Status             `bson:"status" json:"status"`
	Location     string             `bson:"location" json:"location"`
	Timestamp    time.Time          `bson:"timestamp" json:"timestamp"`
}
