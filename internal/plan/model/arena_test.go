package model

import (
	"errors"
	"testing"

	"github.com/iRoman8614/timelinesWorks-sub000/internal/plan/entity"
)

func sampleTree() []*entity.TreeNode {
	return []*entity.TreeNode{
		{
			ID:   "shop-1",
			Type: entity.TreeItemNode,
			Name: "Shop 1",
			Children: []*entity.TreeNode{
				{
					ID:   "line-1",
					Type: entity.TreeItemNode,
					Name: "Line 1",
					Children: []*entity.TreeNode{
						{ID: "asm-1", Type: entity.TreeItemAssembly, Name: "GPA #1", AssemblyTypeID: "at-gpa"},
					},
				},
				{ID: "line-2", Type: entity.TreeItemNode, Name: "Line 2"},
			},
		},
	}
}

func TestArenaTreeRoundTrip(t *testing.T) {
	a := NewArena(sampleTree())
	out := a.Tree()
	if len(out) != 1 || out[0].ID != "shop-1" {
		t.Fatalf("root lost in round trip")
	}
	kids := out[0].Children
	if len(kids) != 2 || kids[0].ID != "line-1" || kids[1].ID != "line-2" {
		t.Fatalf("child order not preserved: %v", ids(kids))
	}
	if len(kids[0].Children) != 1 || kids[0].Children[0].ID != "asm-1" {
		t.Fatalf("grandchild lost")
	}
}

func TestArenaAdd(t *testing.T) {
	a := NewArena(sampleTree())

	if err := a.Add("line-2", &entity.TreeNode{ID: "asm-2", Type: entity.TreeItemAssembly}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if a.Get("asm-2") == nil {
		t.Fatal("added item not retrievable")
	}

	// Assemblies are leaves: nothing attaches under them.
	err := a.Add("asm-1", &entity.TreeNode{ID: "x", Type: entity.TreeItemNode})
	if !errors.Is(err, ErrNotANode) {
		t.Errorf("adding under an assembly: got %v, want ErrNotANode", err)
	}

	err = a.Add("line-1", &entity.TreeNode{ID: "asm-1", Type: entity.TreeItemAssembly})
	if !errors.Is(err, ErrDuplicateID) {
		t.Errorf("duplicate id: got %v, want ErrDuplicateID", err)
	}

	err = a.Add("no-such-parent", &entity.TreeNode{ID: "y", Type: entity.TreeItemNode})
	if !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("unknown parent: got %v, want ErrNodeNotFound", err)
	}
}

func TestArenaMove(t *testing.T) {
	a := NewArena(sampleTree())

	if err := a.Move("asm-1", "line-2"); err != nil {
		t.Fatalf("Move: %v", err)
	}
	tree := a.Tree()
	line2 := tree[0].Children[1]
	if len(line2.Children) != 1 || line2.Children[0].ID != "asm-1" {
		t.Fatalf("asm-1 not under line-2 after move")
	}
	line1 := tree[0].Children[0]
	if len(line1.Children) != 0 {
		t.Fatalf("asm-1 still under line-1 after move")
	}
}

func TestArenaMoveRefusesCycle(t *testing.T) {
	a := NewArena(sampleTree())

	err := a.Move("shop-1", "line-1")
	if !errors.Is(err, ErrWouldCycle) {
		t.Fatalf("moving an ancestor under its descendant: got %v, want ErrWouldCycle", err)
	}
	// Self-parenting is the degenerate cycle.
	if err := a.Move("line-1", "line-1"); !errors.Is(err, ErrWouldCycle) {
		t.Fatalf("self move: got %v, want ErrWouldCycle", err)
	}
}

func TestArenaMoveToRoot(t *testing.T) {
	a := NewArena(sampleTree())
	if err := a.Move("line-2", ""); err != nil {
		t.Fatalf("Move to root: %v", err)
	}
	tree := a.Tree()
	if len(tree) != 2 {
		t.Fatalf("expected 2 roots, got %d", len(tree))
	}
	if tree[1].ID != "line-2" {
		t.Errorf("promoted root = %q", tree[1].ID)
	}
}

func TestArenaRemoveSubtree(t *testing.T) {
	a := NewArena(sampleTree())
	if err := a.Remove("line-1"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if a.Get("line-1") != nil || a.Get("asm-1") != nil {
		t.Fatal("subtree members still present after removal")
	}
	tree := a.Tree()
	if len(tree[0].Children) != 1 || tree[0].Children[0].ID != "line-2" {
		t.Fatalf("siblings disturbed: %v", ids(tree[0].Children))
	}

	if err := a.Remove("line-1"); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("double remove: got %v, want ErrNodeNotFound", err)
	}
}

func TestArenaUpdateKeepsPlacement(t *testing.T) {
	a := NewArena(sampleTree())
	required := 1
	err := a.Update(&entity.TreeNode{
		ID:   "line-1",
		Name: "Line 1 (renamed)",
		Conditions: []entity.Constraint{
			{Type: entity.ConstraintRequiredWorking, RequiredWorking: &required},
		},
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	tree := a.Tree()
	got := tree[0].Children[0]
	if got.Name != "Line 1 (renamed)" || len(got.Conditions) != 1 {
		t.Errorf("fields not updated: %+v", got)
	}
	if len(got.Children) != 1 {
		t.Errorf("children lost on update")
	}
}

func TestArenaWalkPreOrder(t *testing.T) {
	a := NewArena(sampleTree())
	var order []string
	var depths []int
	a.Walk(func(n *entity.TreeNode, depth int) {
		order = append(order, n.ID)
		depths = append(depths, depth)
	})
	want := []string{"shop-1", "line-1", "asm-1", "line-2"}
	for i, id := range want {
		if order[i] != id {
			t.Fatalf("walk order = %v, want %v", order, want)
		}
	}
	if depths[2] != 2 || depths[3] != 1 {
		t.Errorf("walk depths = %v", depths)
	}
}

func ids(nodes []*entity.TreeNode) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID
	}
	return out
}
