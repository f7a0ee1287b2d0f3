package timeline

import (
	"reflect"
	"testing"
	"time"

	"github.com/iRoman8614/timelinesWorks-sub000/internal/plan/entity"
	"github.com/iRoman8614/timelinesWorks-sub000/internal/plan/model"
	"github.com/iRoman8614/timelinesWorks-sub000/internal/plan/testutil"
)

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()
	return NewResolver(model.BuildIndex(testutil.SampleModel()), nil)
}

func TestAssemblyStateIntervalsContiguous(t *testing.T) {
	r := newTestResolver(t)
	horizon := testutil.Date(2025, 12, 31)
	tl := &entity.Timeline{
		AssemblyStates: []entity.AssemblyStateEvent{
			// Out of order on purpose: the resolver must sort.
			{AssemblyID: "asm-1", Type: entity.StateIdle, DateTime: testutil.Date(2025, 6, 1)},
			{AssemblyID: "asm-1", Type: entity.StateWorking, DateTime: testutil.Date(2025, 1, 1)},
			{AssemblyID: "asm-1", Type: entity.StateWorking, DateTime: testutil.Date(2025, 9, 1)},
			{AssemblyID: "other", Type: entity.StateWorking, DateTime: testutil.Date(2025, 2, 1)},
		},
	}

	got := r.AssemblyStateIntervals("asm-1", tl, horizon)
	if len(got) != 3 {
		t.Fatalf("expected 3 intervals, got %d", len(got))
	}
	for i := 0; i < len(got)-1; i++ {
		if !got[i].End.Equal(got[i+1].Start) {
			t.Errorf("interval %d ends at %v but %d starts at %v", i, got[i].End, i+1, got[i+1].Start)
		}
	}
	if !got[2].End.Equal(horizon) {
		t.Errorf("last interval should end at the horizon, got %v", got[2].End)
	}
	if got[0].State != entity.StateWorking || got[1].State != entity.StateIdle {
		t.Errorf("intervals not in chronological order: %q, %q", got[0].State, got[1].State)
	}
	if got[0].Title != "В работе" {
		t.Errorf("unexpected state title %q", got[0].Title)
	}
}

func TestAssemblyStateIntervalsNoEvents(t *testing.T) {
	r := newTestResolver(t)
	if got := r.AssemblyStateIntervals("asm-1", &entity.Timeline{}, testutil.Date(2025, 12, 31)); got != nil {
		t.Fatalf("expected no intervals without events, got %d", len(got))
	}
	if got := r.AssemblyStateIntervals("asm-1", nil, testutil.Date(2025, 12, 31)); got != nil {
		t.Fatalf("expected no intervals for nil timeline, got %d", len(got))
	}
}

func TestAssemblyStateIntervalsDeterministic(t *testing.T) {
	r := newTestResolver(t)
	horizon := testutil.Date(2025, 12, 31)
	tl := &entity.Timeline{
		AssemblyStates: []entity.AssemblyStateEvent{
			{AssemblyID: "asm-1", Type: entity.StateWorking, DateTime: testutil.Date(2025, 1, 1)},
			{AssemblyID: "asm-1", Type: entity.StateIdle, DateTime: testutil.Date(2025, 1, 1)},
		},
	}
	first := r.AssemblyStateIntervals("asm-1", tl, horizon)
	second := r.AssemblyStateIntervals("asm-1", tl, horizon)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("resolution is not deterministic for identical inputs")
	}
	// Equal timestamps keep event-log order.
	if first[0].State != entity.StateWorking {
		t.Errorf("tie on timestamp should preserve input order, got %q first", first[0].State)
	}
}

func TestAssignmentIntervalsWithReplacementMarkers(t *testing.T) {
	r := newTestResolver(t)
	horizon := testutil.Date(2025, 12, 31)
	slot := entity.ComponentRef{AssemblyID: "asm-1", ComponentPath: []string{"slot-a"}}
	tl := &entity.Timeline{
		UnitAssignments: []entity.UnitAssignmentEvent{
			{UnitID: "unit-1", ComponentOfAssembly: slot, DateTime: testutil.Date(2025, 1, 1)},
			{UnitID: "unit-2", ComponentOfAssembly: slot, DateTime: testutil.Date(2025, 7, 1)},
		},
	}

	got := r.AssignmentIntervals("asm-1", "slot-a", tl, horizon)
	if len(got) != 3 {
		t.Fatalf("expected 2 assignments + 1 replacement marker, got %d intervals", len(got))
	}

	var assignments, markers []Interval
	for _, iv := range got {
		switch iv.Kind {
		case KindAssignment:
			assignments = append(assignments, iv)
		case KindReplacement:
			markers = append(markers, iv)
		}
	}
	if len(assignments) != 2 || len(markers) != 1 {
		t.Fatalf("got %d assignments and %d markers", len(assignments), len(markers))
	}

	if !assignments[0].End.Equal(assignments[1].Start) {
		t.Errorf("first occupancy should end where the second starts")
	}
	if !assignments[1].End.Equal(horizon) {
		t.Errorf("open-ended occupancy should close at the horizon, got %v", assignments[1].End)
	}

	m := markers[0]
	if m.PreviousUnitID != "unit-1" || m.NewUnitID != "unit-2" {
		t.Errorf("marker tagged %s → %s, want unit-1 → unit-2", m.PreviousUnitID, m.NewUnitID)
	}
	if got, want := m.End.Sub(m.Start), 12*time.Hour; got != want {
		t.Errorf("marker width = %v, want %v", got, want)
	}
	if m.Title != "Engine #1 → Engine #2" {
		t.Errorf("marker title = %q", m.Title)
	}
}

func TestAssignmentIntervalsFirstAssignmentHasNoMarker(t *testing.T) {
	r := newTestResolver(t)
	slot := entity.ComponentRef{AssemblyID: "asm-1", ComponentPath: []string{"slot-a"}}
	tl := &entity.Timeline{
		UnitAssignments: []entity.UnitAssignmentEvent{
			{UnitID: "unit-1", ComponentOfAssembly: slot, DateTime: testutil.Date(2025, 1, 1)},
		},
	}
	got := r.AssignmentIntervals("asm-1", "slot-a", tl, testutil.Date(2025, 12, 31))
	if len(got) != 1 {
		t.Fatalf("expected exactly one interval, got %d", len(got))
	}
	if got[0].Kind != KindAssignment {
		t.Errorf("first assignment produced a %q interval", got[0].Kind)
	}
}

func TestMaintenanceAttributedToOccupyingUnit(t *testing.T) {
	r := newTestResolver(t)
	horizon := testutil.Date(2025, 12, 31)
	slot := entity.ComponentRef{AssemblyID: "asm-1", ComponentPath: []string{"slot-a"}}
	tl := &entity.Timeline{
		UnitAssignments: []entity.UnitAssignmentEvent{
			{UnitID: "unit-1", ComponentOfAssembly: slot, DateTime: testutil.Date(2025, 1, 1)},
			{UnitID: "unit-2", ComponentOfAssembly: slot, DateTime: testutil.Date(2025, 7, 1)},
		},
		MaintenanceEvents: []entity.MaintenanceEvent{
			// Inside unit-1's occupancy.
			{MaintenanceTypeID: "mt-overhaul", UnitID: "unit-1", DateTime: testutil.Date(2025, 3, 1)},
			// unit-1 no longer occupies the slot here: orphan, dropped.
			{MaintenanceTypeID: "mt-overhaul", UnitID: "unit-1", DateTime: testutil.Date(2025, 8, 1)},
			// Unknown maintenance type: skipped with a diagnostic.
			{MaintenanceTypeID: "mt-ghost", UnitID: "unit-2", DateTime: testutil.Date(2025, 9, 1)},
		},
	}

	got := r.MaintenanceIntervals("asm-1", "slot-a", tl, horizon)
	if len(got) != 1 {
		t.Fatalf("expected 1 maintenance interval, got %d", len(got))
	}
	iv := got[0]
	if iv.UnitID != "unit-1" || iv.MaintenanceTypeID != "mt-overhaul" {
		t.Errorf("interval attributed to %s/%s", iv.UnitID, iv.MaintenanceTypeID)
	}
	if want := testutil.Date(2025, 3, 11); !iv.End.Equal(want) {
		t.Errorf("10-day overhaul should end %v, got %v", want, iv.End)
	}
	if iv.Color != "#d9730d" {
		t.Errorf("explicit type color ignored, got %q", iv.Color)
	}
}

func TestMaintenanceColorFallsBackToPalette(t *testing.T) {
	mt := &entity.MaintenanceType{ID: "mt-x", Priority: 2}
	if got := maintenanceColor(mt); got != defaultPalette[2] {
		t.Errorf("priority 2 should pick palette slot 2, got %q", got)
	}
}

func TestValidationIntervalsOneDayPerFailure(t *testing.T) {
	r := newTestResolver(t)
	required := 2
	validations := []entity.ValidationResult{{
		ValidatedCondition: entity.ValidatedCondition{
			NodeID:    "node-root",
			Condition: entity.Constraint{Type: entity.ConstraintRequiredWorking, RequiredWorking: &required},
		},
		ActualStates: []entity.ActualState{
			{Date: testutil.Date(2025, 3, 1), Valid: true, Actual: entity.ActualCount{Working: 2}},
			{Date: testutil.Date(2025, 3, 2), Valid: false, Actual: entity.ActualCount{Working: 1}},
			{Date: testutil.Date(2025, 3, 3), Valid: false, Actual: entity.ActualCount{Working: 0}},
			// Outside the visible range.
			{Date: testutil.Date(2026, 1, 1), Valid: false, Actual: entity.ActualCount{Working: 0}},
		},
	}}
	rng := Range{Start: testutil.Date(2025, 1, 1), End: testutil.Date(2025, 12, 31)}

	got := r.ValidationIntervals(validations, "node-root", rng)
	if len(got) != 2 {
		t.Fatalf("expected 2 violation days, got %d", len(got))
	}
	first := got[0]
	if first.Kind != KindViolation {
		t.Errorf("kind = %q", first.Kind)
	}
	if d := first.End.Sub(first.Start); d != 24*time.Hour {
		t.Errorf("violation should span one day, got %v", d)
	}
	if first.Title != "working 1 of 2 required" {
		t.Errorf("tooltip title = %q", first.Title)
	}
	if first.ActualWorking == nil || *first.ActualWorking != 1 {
		t.Errorf("actual working not carried")
	}

	if got := r.ValidationIntervals(validations, "no-such-node", rng); got != nil {
		t.Errorf("node without a result should yield nothing")
	}
}
