package state

import (
	"time"

	"github.com/mrcode/nightscout-display/internal/models"
)

// minPlausibleMgdl is the sensor error floor: the upstream server reports
// values at or below it as placeholders for missing or failed readings.
const minPlausibleMgdl = 30.0

// staleAfter is how long an accepted reading stays fresh, measured in local
// time from acceptance.
const staleAfter = 13 * time.Minute

// UpdateResult describes the outcome of applying a data poll response.
type UpdateResult int

const (
	// Updated means a new reading was accepted and stored.
	Updated UpdateResult = iota
	// Unchanged means the server resent the snapshot already stored.
	Unchanged
	// Invalid means the value failed the plausibility floor; the prior
	// reading is kept.
	Invalid
	// Malformed means the response carried no readings at all.
	Malformed
)

func (r UpdateResult) String() string {
	switch r {
	case Updated:
		return "updated"
	case Unchanged:
		return "unchanged"
	case Invalid:
		return "invalid"
	case Malformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Reading is the latest accepted glucose reading.
type Reading struct {
	MgDL       float64
	DeltaMgDL  float64
	Trend      string    // direction string from the server, e.g. "Flat"
	Mills      int64     // server-side timestamp, epoch milliseconds
	AcquiredAt time.Time // local acceptance time; sole basis for staleness
}

// MmolL returns the reading value in mmol/L.
func (r Reading) MmolL() float64 {
	return r.MgDL / mgdlPerMmol
}

// DeltaMmolL returns the delta in mmol/L.
func (r Reading) DeltaMmolL() float64 {
	return r.DeltaMgDL / mgdlPerMmol
}

// ReadingStore holds the single latest reading. No history is kept.
type ReadingStore struct {
	reading Reading
	has     bool
}

// ApplyData applies a properties response at local time now. A reading is
// accepted only when the server timestamp differs from the stored one and
// the value clears the plausibility floor; every other outcome leaves the
// stored reading untouched. A resent timestamp short-circuits before the
// value is even read, so a differing delta or trend in the same payload is
// discarded with it.
func (s *ReadingStore) ApplyData(props *models.Properties, now time.Time) UpdateResult {
	if props == nil || len(props.BGNow.SGVs) == 0 {
		return Malformed
	}

	if s.has && props.BGNow.Mills == s.reading.Mills {
		return Unchanged
	}

	sgv := props.BGNow.SGVs[0]
	if sgv.MgDL <= minPlausibleMgdl {
		return Invalid
	}

	s.reading = Reading{
		MgDL:       sgv.MgDL,
		DeltaMgDL:  props.Delta.MgDL,
		Trend:      sgv.Direction,
		Mills:      props.BGNow.Mills,
		AcquiredAt: now,
	}
	s.has = true
	return Updated
}

// HasReading reports whether any reading was ever accepted. Callers must
// check it before trusting Reading or treating staleness as meaningful.
func (s *ReadingStore) HasReading() bool {
	return s.has
}

// Reading returns the stored reading.
func (s *ReadingStore) Reading() Reading {
	return s.reading
}

// IsStale reports whether the stored reading is older than the staleness
// window. A reading exactly at the window is still fresh. Always true
// before the first accepted reading.
func (s *ReadingStore) IsStale(now time.Time) bool {
	if !s.has {
		return true
	}
	return now.Sub(s.reading.AcquiredAt) > staleAfter
}
