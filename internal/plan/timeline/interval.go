package timeline

import "time"

// Interval kinds.
const (
	KindState       = "state"
	KindAssignment  = "assignment"
	KindMaintenance = "maintenance"
	KindReplacement = "replacement"
	KindViolation   = "violation"
	KindGroup       = "group"
)

// Range is the visible/planned window. Start is inclusive, End is the horizon
// that closes otherwise open-ended intervals.
type Range struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Interval is one resolved bar on a track. End is exclusive. Which optional
// fields are set depends on Kind.
type Interval struct {
	ID    string    `json:"id"`
	Kind  string    `json:"kind"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Title string    `json:"title,omitempty"`
	Color string    `json:"color,omitempty"`

	// State intervals.
	State string `json:"state,omitempty"`

	// Assignment and maintenance intervals.
	UnitID string `json:"unitId,omitempty"`

	// Replacement markers.
	PreviousUnitID string `json:"previousUnitId,omitempty"`
	NewUnitID      string `json:"newUnitId,omitempty"`

	// Maintenance intervals.
	MaintenanceTypeID string `json:"maintenanceTypeId,omitempty"`
	Custom            bool   `json:"custom,omitempty"`

	// Violation intervals: what the optimizer observed vs. what was required.
	ActualWorking   *int `json:"actualWorking,omitempty"`
	RequiredWorking *int `json:"requiredWorking,omitempty"`

	// Group intervals keep their merged members for drill-down.
	Members []Interval `json:"members,omitempty"`
}

// Duration returns End - Start.
func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

// replacementMarkerWidth is the fixed width of the point-like unit-swap marker.
// It is a visual category, not an occupancy window.
const replacementMarkerWidth = 12 * time.Hour
