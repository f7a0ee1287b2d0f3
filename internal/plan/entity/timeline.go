package entity

import "time"

// Assembly states.
const (
	StateWorking      = "WORKING"
	StateIdle         = "IDLE"
	StateShuttingDown = "SHUTTING_DOWN"
	StateStartingUp   = "STARTING_UP"
)

// Timeline is the flat event log over the structural model. The generated
// portion is replaced wholesale on every successful optimization run; custom
// events persist across runs and are merged back in.
type Timeline struct {
	AssemblyStates    []AssemblyStateEvent  `json:"assemblyStates"`
	UnitAssignments   []UnitAssignmentEvent `json:"unitAssignments"`
	MaintenanceEvents []MaintenanceEvent    `json:"maintenanceEvents"`
	Validations       []ValidationResult    `json:"validations,omitempty"`
}

// AssemblyStateEvent is a point-in-time state transition. The interval for a
// state is implicit: it runs until the next event for the same assembly, or to
// the caller-supplied horizon for the last one.
type AssemblyStateEvent struct {
	AssemblyID string    `json:"assemblyId"`
	Type       string    `json:"type"`
	DateTime   time.Time `json:"dateTime"`
}

// ComponentRef addresses one component slot of one assembly.
type ComponentRef struct {
	AssemblyID    string   `json:"assemblyId"`
	ComponentPath []string `json:"componentPath"`
}

// UnitAssignmentEvent records that a unit occupies a component slot starting at
// DateTime. Occupancy runs until the next assignment for the same slot.
type UnitAssignmentEvent struct {
	UnitID              string       `json:"unitId"`
	ComponentOfAssembly ComponentRef `json:"componentOfAssembly"`
	DateTime            time.Time    `json:"dateTime"`
	OperatingInterval   *float64     `json:"operatingInterval,omitempty"`
	Custom              bool         `json:"custom,omitempty"`
}

// MaintenanceEvent is a maintenance action on a unit. Its interval is
// [DateTime, DateTime + type duration in days). Custom marks a manually
// inserted event that must survive regeneration.
type MaintenanceEvent struct {
	MaintenanceTypeID string    `json:"maintenanceTypeId"`
	UnitID            string    `json:"unitId"`
	DateTime          time.Time `json:"dateTime"`
	Custom            bool      `json:"custom,omitempty"`
}

// ValidatedCondition names the node and the constraint a validation ran against.
type ValidatedCondition struct {
	NodeID    string     `json:"nodeId"`
	Condition Constraint `json:"condition"`
}

// ActualState is a per-day pass/fail record against a constraint.
type ActualState struct {
	Date   time.Time   `json:"date"`
	Valid  bool        `json:"valid"`
	Actual ActualCount `json:"actual"`
}

// ActualCount is what the optimizer observed on a given day.
type ActualCount struct {
	Working          int `json:"working"`
	UnderMaintenance int `json:"underMaintenance,omitempty"`
}

// ValidationResult is the optimizer's verdict for one node constraint.
// At most one result exists per node.
type ValidationResult struct {
	ValidatedCondition ValidatedCondition `json:"validatedCondition"`
	ActualStates       []ActualState      `json:"actualStates"`
}
