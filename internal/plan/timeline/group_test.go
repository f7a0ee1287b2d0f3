package timeline

import (
	"testing"

	"github.com/iRoman8614/timelinesWorks-sub000/internal/plan/testutil"
)

func TestGroupOverlapping(t *testing.T) {
	intervals := []Interval{
		{ID: "a", Kind: KindMaintenance, Title: "Overhaul", Color: "#111111", Start: testutil.Date(2025, 1, 1), End: testutil.Date(2025, 1, 5)},
		{ID: "b", Kind: KindMaintenance, Title: "Inspection", Color: "#222222", Start: testutil.Date(2025, 1, 3), End: testutil.Date(2025, 1, 8)},
		{ID: "c", Kind: KindMaintenance, Title: "Inspection", Color: "#333333", Start: testutil.Date(2025, 1, 10), End: testutil.Date(2025, 1, 12)},
	}

	got := GroupOverlapping(intervals)
	if len(got) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(got))
	}

	merged := got[0]
	if merged.Kind != KindGroup {
		t.Fatalf("overlapping pair should merge, kind = %q", merged.Kind)
	}
	if !merged.Start.Equal(testutil.Date(2025, 1, 1)) || !merged.End.Equal(testutil.Date(2025, 1, 8)) {
		t.Errorf("merged span [%v, %v)", merged.Start, merged.End)
	}
	if merged.Title != "Overhaul/Inspection" {
		t.Errorf("merged title = %q", merged.Title)
	}
	// "b" runs 5 days, "a" only 4: the longer member wins the color.
	if merged.Color != "#222222" {
		t.Errorf("merged color = %q, want the longest member's", merged.Color)
	}
	if len(merged.Members) != 2 {
		t.Errorf("members kept = %d", len(merged.Members))
	}

	// A group of one is the original interval, untouched.
	if got[1].ID != "c" || got[1].Kind != KindMaintenance {
		t.Errorf("singleton group should pass through, got %q/%q", got[1].ID, got[1].Kind)
	}
}

func TestGroupOverlappingTouchingDoesNotMerge(t *testing.T) {
	intervals := []Interval{
		{ID: "a", Start: testutil.Date(2025, 1, 1), End: testutil.Date(2025, 1, 5)},
		{ID: "b", Start: testutil.Date(2025, 1, 5), End: testutil.Date(2025, 1, 9)},
	}
	got := GroupOverlapping(intervals)
	if len(got) != 2 {
		t.Fatalf("exclusive ends: touching intervals must stay apart, got %d groups", len(got))
	}
}

func TestGroupOverlappingDedupsTitles(t *testing.T) {
	intervals := []Interval{
		{ID: "a", Title: "Overhaul", Start: testutil.Date(2025, 1, 1), End: testutil.Date(2025, 1, 4)},
		{ID: "b", Title: "Overhaul", Start: testutil.Date(2025, 1, 2), End: testutil.Date(2025, 1, 5)},
		{ID: "c", Title: "Inspection", Start: testutil.Date(2025, 1, 3), End: testutil.Date(2025, 1, 6)},
	}
	got := GroupOverlapping(intervals)
	if len(got) != 1 {
		t.Fatalf("expected a single group, got %d", len(got))
	}
	if got[0].Title != "Overhaul/Inspection" {
		t.Errorf("dedup failed: title = %q", got[0].Title)
	}
}

func TestGroupOverlappingEmpty(t *testing.T) {
	if got := GroupOverlapping(nil); got != nil {
		t.Fatalf("expected nil for empty input, got %d", len(got))
	}
}

func TestGroupOverlappingDoesNotMutateInput(t *testing.T) {
	intervals := []Interval{
		{ID: "b", Start: testutil.Date(2025, 1, 3), End: testutil.Date(2025, 1, 8)},
		{ID: "a", Start: testutil.Date(2025, 1, 1), End: testutil.Date(2025, 1, 5)},
	}
	GroupOverlapping(intervals)
	if intervals[0].ID != "b" {
		t.Fatal("input slice was reordered")
	}
}
