package timeline

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/iRoman8614/timelinesWorks-sub000/internal/plan/entity"
	"github.com/iRoman8614/timelinesWorks-sub000/internal/plan/model"
)

// defaultPalette colors maintenance intervals whose type carries no explicit
// color. Indexed by priority so the pick is deterministic.
var defaultPalette = []string{
	"#e6704b", "#4b9de6", "#56b87c", "#d4a72c", "#9b6dd6", "#5fc2c9",
}

// Resolver derives renderable intervals from the structural model and the
// event log. All methods are pure with respect to their inputs: same model,
// timeline and horizon always produce the same intervals, and nothing is
// mutated. Data-integrity gaps (dangling ids, unknown types) are logged and
// skipped, never fatal.
type Resolver struct {
	idx *model.Index
	log *zap.Logger
}

// NewResolver builds a resolver over one model revision.
func NewResolver(idx *model.Index, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{idx: idx, log: log}
}

// AssemblyStateIntervals resolves the implicit state windows of one assembly.
// Events are sorted ascending by time; each event's window runs to the next
// event, the last one to the horizon. No events means no intervals: absence of
// data is not presented as resolved fact.
func (r *Resolver) AssemblyStateIntervals(assemblyID string, tl *entity.Timeline, horizon time.Time) []Interval {
	if tl == nil {
		return nil
	}
	var events []entity.AssemblyStateEvent
	for _, ev := range tl.AssemblyStates {
		if ev.AssemblyID == assemblyID {
			events = append(events, ev)
		}
	}
	if len(events) == 0 {
		return nil
	}
	// Stable: identical timestamps keep event-log order.
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].DateTime.Before(events[j].DateTime)
	})

	out := make([]Interval, 0, len(events))
	for i, ev := range events {
		end := horizon
		if i+1 < len(events) {
			end = events[i+1].DateTime
		}
		out = append(out, Interval{
			ID:    fmt.Sprintf("state:%s:%d", assemblyID, i),
			Kind:  KindState,
			Start: ev.DateTime,
			End:   end,
			State: ev.Type,
			Title: stateTitle(ev.Type),
		})
	}
	return out
}

// AssignmentIntervals resolves occupancy windows of one component slot plus a
// replacement marker at the start of every assignment except the first.
func (r *Resolver) AssignmentIntervals(assemblyID, componentID string, tl *entity.Timeline, horizon time.Time) []Interval {
	assignments := r.slotAssignments(assemblyID, componentID, tl)
	if len(assignments) == 0 {
		return nil
	}

	out := make([]Interval, 0, len(assignments)*2-1)
	for i, ev := range assignments {
		end := horizon
		if i+1 < len(assignments) {
			end = assignments[i+1].DateTime
		}
		title := ev.UnitID
		if u := r.idx.Unit(ev.UnitID); u != nil {
			title = u.Name
		} else {
			r.log.Warn("assignment references unknown unit",
				zap.String("unit_id", ev.UnitID),
				zap.String("assembly_id", assemblyID),
				zap.String("component_id", componentID))
		}
		out = append(out, Interval{
			ID:     fmt.Sprintf("assign:%s:%s:%d", assemblyID, componentID, i),
			Kind:   KindAssignment,
			Start:  ev.DateTime,
			End:    end,
			UnitID: ev.UnitID,
			Title:  title,
			Custom: ev.Custom,
		})
		if i > 0 {
			prev := assignments[i-1]
			out = append(out, Interval{
				ID:             fmt.Sprintf("swap:%s:%s:%d", assemblyID, componentID, i),
				Kind:           KindReplacement,
				Start:          ev.DateTime,
				End:            ev.DateTime.Add(replacementMarkerWidth),
				PreviousUnitID: prev.UnitID,
				NewUnitID:      ev.UnitID,
				Title:          fmt.Sprintf("%s → %s", r.unitName(prev.UnitID), r.unitName(ev.UnitID)),
			})
		}
	}
	return out
}

// MaintenanceIntervals resolves maintenance windows for one component slot.
// An event is attributed to whichever unit occupied the slot at its time: the
// event's unit must match the occupying assignment and its timestamp must fall
// inside that occupancy window. Orphan events produce nothing. Unknown
// maintenance types are skipped with a diagnostic.
func (r *Resolver) MaintenanceIntervals(assemblyID, componentID string, tl *entity.Timeline, horizon time.Time) []Interval {
	assignments := r.slotAssignments(assemblyID, componentID, tl)
	if len(assignments) == 0 || tl == nil {
		return nil
	}

	var out []Interval
	for i, a := range assignments {
		winStart := a.DateTime
		winEnd := horizon
		if i+1 < len(assignments) {
			winEnd = assignments[i+1].DateTime
		}
		for j, ev := range tl.MaintenanceEvents {
			if ev.UnitID != a.UnitID {
				continue
			}
			if ev.DateTime.Before(winStart) || !ev.DateTime.Before(winEnd) {
				continue
			}
			mt := r.idx.MaintenanceType(ev.MaintenanceTypeID)
			if mt == nil {
				r.log.Warn("maintenance event references unknown type",
					zap.String("maintenance_type_id", ev.MaintenanceTypeID),
					zap.String("unit_id", ev.UnitID))
				continue
			}
			out = append(out, Interval{
				ID:                fmt.Sprintf("maint:%s:%s:%d", assemblyID, componentID, j),
				Kind:              KindMaintenance,
				Start:             ev.DateTime,
				End:               ev.DateTime.AddDate(0, 0, mt.Duration),
				UnitID:            ev.UnitID,
				MaintenanceTypeID: mt.ID,
				Title:             mt.Name,
				Color:             maintenanceColor(mt),
				Custom:            ev.Custom,
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start.Before(out[j].Start)
	})
	return out
}

// ValidationIntervals turns the failing days of a node's validation result into
// one-day violation intervals within the visible range. A node without a result
// yields nothing.
func (r *Resolver) ValidationIntervals(validations []entity.ValidationResult, nodeID string, rng Range) []Interval {
	var res *entity.ValidationResult
	for i := range validations {
		if validations[i].ValidatedCondition.NodeID == nodeID {
			res = &validations[i]
			break
		}
	}
	if res == nil {
		return nil
	}

	var out []Interval
	for i, st := range res.ActualStates {
		if st.Valid {
			continue
		}
		if st.Date.Before(rng.Start) || st.Date.After(rng.End) {
			continue
		}
		iv := Interval{
			ID:    fmt.Sprintf("violation:%s:%d", nodeID, i),
			Kind:  KindViolation,
			Start: st.Date,
			End:   st.Date.AddDate(0, 0, 1),
		}
		actual := st.Actual.Working
		iv.ActualWorking = &actual
		if req := res.ValidatedCondition.Condition.RequiredWorking; req != nil {
			iv.RequiredWorking = req
			iv.Title = fmt.Sprintf("working %d of %d required", actual, *req)
		} else {
			iv.Title = fmt.Sprintf("working %d", actual)
		}
		out = append(out, iv)
	}
	return out
}

// slotAssignments filters and sorts the assignments of one component slot.
// The component path of an assignment may address nested slots; the slot
// matches when the path contains componentID.
func (r *Resolver) slotAssignments(assemblyID, componentID string, tl *entity.Timeline) []entity.UnitAssignmentEvent {
	if tl == nil {
		return nil
	}
	var out []entity.UnitAssignmentEvent
	for _, ev := range tl.UnitAssignments {
		if ev.ComponentOfAssembly.AssemblyID != assemblyID {
			continue
		}
		if !containsID(ev.ComponentOfAssembly.ComponentPath, componentID) {
			continue
		}
		out = append(out, ev)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DateTime.Before(out[j].DateTime)
	})
	return out
}

func (r *Resolver) unitName(id string) string {
	if u := r.idx.Unit(id); u != nil {
		return u.Name
	}
	return id
}

func maintenanceColor(mt *entity.MaintenanceType) string {
	if mt.Color != "" {
		return mt.Color
	}
	i := mt.Priority % len(defaultPalette)
	if i < 0 {
		i += len(defaultPalette)
	}
	return defaultPalette[i]
}

func stateTitle(state string) string {
	switch state {
	case entity.StateWorking:
		return "В работе"
	case entity.StateIdle:
		return "Простой"
	case entity.StateShuttingDown:
		return "Останов"
	case entity.StateStartingUp:
		return "Пуск"
	default:
		return state
	}
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
