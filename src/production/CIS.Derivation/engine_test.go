package derivation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	cismodels "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Models"
)

func testConfig() *cismodels.Configuration {
	cfg := cismodels.DefaultConfiguration()
	cfg.CapacityLiters = 10000
	cfg.CriticalThreshold = 5
	cfg.AlertThreshold = 15
	cfg.SensorID = "CAP-SENS-001"
	cfg.Location = "Main Tank"
	return cfg
}

func TestDeriveStatusThresholdsInclusive(t *testing.T) {
	cfg := testConfig()

	tests := []struct {
		name   string
		raw    float64
		status cismodels.Status
		volume int64
	}{
		{"at critical threshold", 5, cismodels.StatusCritical, 500},
		{"below critical", 2, cismodels.StatusCritical, 200},
		{"just above critical", 6, cismodels.StatusWarning, 600},
		{"at alert threshold", 15, cismodels.StatusWarning, 1500},
		{"just above alert", 16, cismodels.StatusNormal, 1600},
		{"full", 100, cismodels.StatusNormal, 10000},
		{"empty", 0, cismodels.StatusCritical, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Derive("CAP-SENS-001", tt.raw, cfg)
			assert.Equal(t, tt.status, got.Status)
			assert.Equal(t, tt.volume, got.VolumeLiters)
		})
	}
}

func TestDeriveRounding(t *testing.T) {
	cfg := testConfig()

	assert.Equal(t, int64(3300), Derive("CAP-SENS-001", 33, cfg).VolumeLiters)
	// half rounds away from zero
	assert.Equal(t, int64(3350), Derive("CAP-SENS-001", 33.5, cfg).VolumeLiters)
	assert.Equal(t, int64(25), Derive("CAP-SENS-001", 0.245, cfg).VolumeLiters)
}

func TestDeriveNoDataSentinel(t *testing.T) {
	got := Derive("CAP-SENS-001", cismodels.RawValueNoData, testConfig())

	assert.Equal(t, cismodels.StatusNoData, got.Status)
	assert.Equal(t, int64(0), got.VolumeLiters)
}

func TestDeriveNilConfigUsesDefaults(t *testing.T) {
	got := Derive("CAP-SENS-001", 8, nil)

	// defaults: capacity 10000, critical 5, alert 15
	assert.Equal(t, cismodels.StatusWarning, got.Status)
	assert.Equal(t, int64(800), got.VolumeLiters)
	assert.Equal(t, "Edificio G - Sor Juana", got.Location)
}

func TestDeriveLocationResolution(t *testing.T) {
	cfg := testConfig()

	// configured sensor uses the configuration's binding
	assert.Equal(t, "Main Tank", Derive("CAP-SENS-001", 50, cfg).Location)
	// known sensor not bound in the configuration uses the lookup table
	assert.Equal(t, "Planta de bombeo", Derive("CAP-SENS-003", 50, cfg).Location)
	// unmapped sensor falls back to a generic label
	assert.Equal(t, "Sensor TANK-9", Derive("TANK-9", 50, cfg).Location)
}

func TestDeriveInvertedThresholdsKeepLiteralOrder(t *testing.T) {
	cfg := testConfig()
	cfg.CriticalThreshold = 20
	cfg.AlertThreshold = 10

	// the critical comparison runs first, so anything <= 20 is Critical
	// even though it is above the "alert" bound
	assert.Equal(t, cismodels.StatusCritical, Derive("CAP-SENS-001", 15, cfg).Status)
	assert.Equal(t, cismodels.StatusNormal, Derive("CAP-SENS-001", 21, cfg).Status)
}

func TestDeriveEndToEndExample(t *testing.T) {
	got := Derive("CAP-SENS-001", 8, testConfig())

	assert.Equal(t, int64(800), got.VolumeLiters)
	assert.Equal(t, cismodels.StatusWarning, got.Status)
	assert.Equal(t, "Main Tank", got.Location)
}
