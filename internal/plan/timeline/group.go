package timeline

import (
	"sort"
	"strings"
)

// GroupOverlapping merges overlapping intervals for compacted display. The
// classic sweep: sort by start, keep a running group with a running max end,
// an interval joins the current group iff it starts before that end.
//
// A group of one is returned as the original interval. A merged group spans to
// the max member end, its title is the deduplicated order-preserving member
// titles joined by "/", and its color comes from the member with the longest
// individual duration.
func GroupOverlapping(intervals []Interval) []Interval {
	if len(intervals) == 0 {
		return nil
	}
	sorted := make([]Interval, len(intervals))
	copy(sorted, intervals)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	var out []Interval
	group := []Interval{sorted[0]}
	groupEnd := sorted[0].End
	flush := func() {
		out = append(out, mergeGroup(group))
	}
	for _, iv := range sorted[1:] {
		if iv.Start.Before(groupEnd) {
			group = append(group, iv)
			if iv.End.After(groupEnd) {
				groupEnd = iv.End
			}
			continue
		}
		flush()
		group = []Interval{iv}
		groupEnd = iv.End
	}
	flush()
	return out
}

func mergeGroup(members []Interval) Interval {
	if len(members) == 1 {
		return members[0]
	}

	merged := Interval{
		ID:    members[0].ID + ":group",
		Kind:  KindGroup,
		Start: members[0].Start,
		End:   members[0].End,
	}
	var titles []string
	seen := make(map[string]bool)
	longest := members[0]
	for _, m := range members {
		if m.End.After(merged.End) {
			merged.End = m.End
		}
		if m.Title != "" && !seen[m.Title] {
			seen[m.Title] = true
			titles = append(titles, m.Title)
		}
		if m.Duration() > longest.Duration() {
			longest = m
		}
	}
	merged.Title = strings.Join(titles, "/")
	merged.Color = longest.Color
	merged.Members = members
	return merged
}
