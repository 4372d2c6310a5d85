// Package state holds the mutable device state: the glucose thresholds and
// the latest accepted reading. All mutation happens from the single control
// loop, so nothing here locks.
package state

import (
	"math"
	"strings"

	"github.com/mrcode/nightscout-display/internal/models"
)

// mgdlPerMmol converts between the canonical mg/dL unit and mmol/L.
const mgdlPerMmol = 18.0

// Thresholds holds the four glucose boundaries, always in mg/dL.
// Monotonicity is not validated; the server is trusted.
type Thresholds struct {
	LowUrgent   int
	LowWarning  int
	HighWarning int
	HighUrgent  int
}

// DefaultThresholds are used until the server reports its own settings.
func DefaultThresholds() Thresholds {
	return Thresholds{
		LowUrgent:   55,
		LowWarning:  70,
		HighWarning: 180,
		HighUrgent:  250,
	}
}

// ApplyStatus updates the thresholds from a status response. A response
// missing any of the four threshold fields leaves the current values
// untouched; values reported in mmol/L are converted to mg/dL before
// storage. Returns true when the thresholds were updated.
func (t *Thresholds) ApplyStatus(status *models.ServerStatus) bool {
	if status == nil || !status.Settings.Thresholds.Complete() {
		return false
	}

	th := status.Settings.Thresholds
	lowUrgent := *th.BGLow
	lowWarning := *th.BGTargetBottom
	highWarning := *th.BGTargetTop
	highUrgent := *th.BGHigh

	if isMmol(status.Settings.Units) {
		lowUrgent = toMgdl(lowUrgent)
		lowWarning = toMgdl(lowWarning)
		highWarning = toMgdl(highWarning)
		highUrgent = toMgdl(highUrgent)
	}

	t.LowUrgent = lowUrgent
	t.LowWarning = lowWarning
	t.HighWarning = highWarning
	t.HighUrgent = highUrgent
	return true
}

// Zone classifies a glucose value against the thresholds.
type Zone int

// Alert zones, from calm to loud.
const (
	ZoneNormal Zone = iota
	ZoneWarning
	ZoneUrgent
)

// Zone returns the alert zone for a glucose value in mg/dL.
func (t Thresholds) Zone(mgdl float64) Zone {
	switch {
	case mgdl <= float64(t.LowUrgent) || mgdl >= float64(t.HighUrgent):
		return ZoneUrgent
	case mgdl <= float64(t.LowWarning) || mgdl >= float64(t.HighWarning):
		return ZoneWarning
	default:
		return ZoneNormal
	}
}

func isMmol(units string) bool {
	switch strings.ToLower(units) {
	case "mmol", "mmol/l":
		return true
	}
	return false
}

func toMgdl(mmol int) int {
	return int(math.Round(float64(mmol) * mgdlPerMmol))
}
