// Package models contains data structures used throughout the application
package models

// ServerStatus is the document returned by /api/v1/status.json.
type ServerStatus struct {
	Status   string         `json:"status"`
	Name     string         `json:"name"`
	Version  string         `json:"version"`
	Settings ServerSettings `json:"settings"`
}

// ServerSettings carries the subset of Nightscout settings the device reads.
type ServerSettings struct {
	Units      string      `json:"units"`
	Thresholds *Thresholds `json:"thresholds,omitempty"`
}

// Thresholds mirrors settings.thresholds. Fields are pointers so a partial
// object is distinguishable from one with zero values; a partial set is
// treated the same as a missing one.
type Thresholds struct {
	BGHigh         *int `json:"bgHigh,omitempty"`
	BGTargetTop    *int `json:"bgTargetTop,omitempty"`
	BGTargetBottom *int `json:"bgTargetBottom,omitempty"`
	BGLow          *int `json:"bgLow,omitempty"`
}

// Complete reports whether all four threshold fields were present.
func (t *Thresholds) Complete() bool {
	return t != nil &&
		t.BGHigh != nil &&
		t.BGTargetTop != nil &&
		t.BGTargetBottom != nil &&
		t.BGLow != nil
}

// Properties is the document returned by /api/v2/properties.json.
type Properties struct {
	BGNow BGNow `json:"bgnow"`
	Delta Delta `json:"delta"`
}

// BGNow holds the latest sensor snapshot.
type BGNow struct {
	Mills int64 `json:"mills"` // Unix timestamp in milliseconds
	SGVs  []SGV `json:"sgvs"`
}

// SGV is a single sensor glucose value.
type SGV struct {
	MgDL      float64 `json:"mgdl"`
	Direction string  `json:"direction"` // Trend direction as string
}

// Delta is the change since the previous reading.
type Delta struct {
	MgDL float64 `json:"mgdl"`
}
