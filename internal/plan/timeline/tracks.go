package timeline

import (
	"time"

	"go.uber.org/zap"

	"github.com/iRoman8614/timelinesWorks-sub000/internal/plan/entity"
	"github.com/iRoman8614/timelinesWorks-sub000/internal/plan/model"
)

// Track kinds.
const (
	TrackNode      = "node"
	TrackAssembly  = "assembly"
	TrackComponent = "component"
)

// Track is one named row of the Gantt view. Track ids are derived only from
// stable entity ids, so external UI state keyed by track id survives
// incremental updates.
type Track struct {
	ID        string     `json:"id"`
	Kind      string     `json:"kind"`
	Title     string     `json:"title"`
	Depth     int        `json:"depth"`
	Collapsed bool       `json:"collapsed,omitempty"`
	Intervals []Interval `json:"intervals"`
}

// ProjectTracks walks the node hierarchy depth-first in pre-order and emits one
// track per visible row.
//
// A NODE contributes one track carrying its validation violations. An expanded
// assembly contributes its own state track plus one track per component slot
// (assignments + maintenance). A collapsed assembly contributes a single track
// absorbing its state intervals, every slot's assignments, and the grouped
// union of all slots' maintenance work.
func ProjectTracks(m *entity.StructuralModel, tl *entity.Timeline, rng Range, collapsed map[string]bool, log *zap.Logger) []Track {
	idx := model.BuildIndex(m)
	r := NewResolver(idx, log)
	var validations []entity.ValidationResult
	if tl != nil {
		validations = tl.Validations
	}

	var out []Track
	var walk func(nodes []*entity.TreeNode, depth int)
	walk = func(nodes []*entity.TreeNode, depth int) {
		for _, n := range nodes {
			if n.IsAssembly() {
				out = append(out, assemblyTracks(r, idx, n, tl, rng.End, depth, collapsed[n.ID])...)
				continue
			}
			out = append(out, Track{
				ID:        n.ID,
				Kind:      TrackNode,
				Title:     n.Name,
				Depth:     depth,
				Intervals: r.ValidationIntervals(validations, n.ID, rng),
			})
			walk(n.Children, depth+1)
		}
	}
	walk(m.Nodes, 0)
	return out
}

func assemblyTracks(r *Resolver, idx *model.Index, a *entity.TreeNode, tl *entity.Timeline, horizon time.Time, depth int, isCollapsed bool) []Track {
	components := idx.AssemblyComponents(a.ID)
	states := r.AssemblyStateIntervals(a.ID, tl, horizon)

	if isCollapsed {
		merged := states
		var maintenance []Interval
		for _, c := range components {
			merged = append(merged, r.AssignmentIntervals(a.ID, c.ID, tl, horizon)...)
			maintenance = append(maintenance, r.MaintenanceIntervals(a.ID, c.ID, tl, horizon)...)
		}
		merged = append(merged, GroupOverlapping(maintenance)...)
		return []Track{{
			ID:        a.ID,
			Kind:      TrackAssembly,
			Title:     a.Name,
			Depth:     depth,
			Collapsed: true,
			Intervals: merged,
		}}
	}

	tracks := []Track{{
		ID:        a.ID,
		Kind:      TrackAssembly,
		Title:     a.Name,
		Depth:     depth,
		Intervals: states,
	}}
	for _, c := range components {
		intervals := r.AssignmentIntervals(a.ID, c.ID, tl, horizon)
		intervals = append(intervals, r.MaintenanceIntervals(a.ID, c.ID, tl, horizon)...)
		tracks = append(tracks, Track{
			ID:        a.ID + "/" + c.ID,
			Kind:      TrackComponent,
			Title:     c.Name,
			Depth:     depth + 1,
			Intervals: intervals,
		})
	}
	return tracks
}
