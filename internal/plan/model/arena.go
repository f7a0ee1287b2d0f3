package model

import (
	"errors"
	"fmt"

	"github.com/iRoman8614/timelinesWorks-sub000/internal/plan/entity"
)

var (
	ErrNodeNotFound = errors.New("node not found")
	ErrNotANode     = errors.New("target is not a NODE")
	ErrWouldCycle   = errors.New("move would create a cycle")
	ErrDuplicateID  = errors.New("duplicate node id")
)

// Arena is a flat representation of the node/assembly tree: one map from id to
// item plus explicit parent pointers and ordered child id lists. Mutations are
// O(1) map edits; cycle safety on move is an ancestor walk instead of recursive
// array surgery.
type Arena struct {
	items    map[string]*entity.TreeNode
	parent   map[string]string // child id -> parent id; absent for roots
	children map[string][]string
	roots    []string
}

// NewArena flattens a nested tree into an arena. Child order is preserved.
func NewArena(roots []*entity.TreeNode) *Arena {
	a := &Arena{
		items:    make(map[string]*entity.TreeNode),
		parent:   make(map[string]string),
		children: make(map[string][]string),
	}
	var walk func(parentID string, nodes []*entity.TreeNode)
	walk = func(parentID string, nodes []*entity.TreeNode) {
		for _, n := range nodes {
			a.items[n.ID] = n
			if parentID == "" {
				a.roots = append(a.roots, n.ID)
			} else {
				a.parent[n.ID] = parentID
				a.children[parentID] = append(a.children[parentID], n.ID)
			}
			walk(n.ID, n.Children)
		}
	}
	walk("", roots)
	// The nested Children slices are rebuilt on Tree(); drop them so the arena
	// is the single source of truth while mutating.
	for _, n := range a.items {
		n.Children = nil
	}
	return a
}

// Get returns the item by id, nil when absent.
func (a *Arena) Get(id string) *entity.TreeNode {
	return a.items[id]
}

// Add inserts an item under parentID, or as a root when parentID is empty.
func (a *Arena) Add(parentID string, n *entity.TreeNode) error {
	if _, ok := a.items[n.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateID, n.ID)
	}
	if parentID == "" {
		a.items[n.ID] = n
		a.roots = append(a.roots, n.ID)
		return nil
	}
	p, ok := a.items[parentID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, parentID)
	}
	if p.IsAssembly() {
		return fmt.Errorf("%w: %s", ErrNotANode, parentID)
	}
	a.items[n.ID] = n
	a.parent[n.ID] = parentID
	a.children[parentID] = append(a.children[parentID], n.ID)
	return nil
}

// Update replaces the item's own fields, keeping its place in the tree.
func (a *Arena) Update(n *entity.TreeNode) error {
	old, ok := a.items[n.ID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, n.ID)
	}
	old.Name = n.Name
	old.Conditions = n.Conditions
	old.AssemblyTypeID = n.AssemblyTypeID
	return nil
}

// Remove deletes the item and its whole subtree.
func (a *Arena) Remove(id string) error {
	if _, ok := a.items[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	var drop func(id string)
	drop = func(id string) {
		for _, c := range a.children[id] {
			drop(c)
		}
		delete(a.children, id)
		delete(a.parent, id)
		delete(a.items, id)
	}
	a.detach(id)
	drop(id)
	return nil
}

// Move reparents an item. Moving under a descendant of itself is refused:
// the ancestor walk from the new parent must not pass through the moved item.
func (a *Arena) Move(id, newParentID string) error {
	if _, ok := a.items[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	if newParentID != "" {
		p, ok := a.items[newParentID]
		if !ok {
			return fmt.Errorf("%w: %s", ErrNodeNotFound, newParentID)
		}
		if p.IsAssembly() {
			return fmt.Errorf("%w: %s", ErrNotANode, newParentID)
		}
		for cur := newParentID; cur != ""; cur = a.parent[cur] {
			if cur == id {
				return fmt.Errorf("%w: %s under %s", ErrWouldCycle, id, newParentID)
			}
		}
	}
	a.detach(id)
	if newParentID == "" {
		a.roots = append(a.roots, id)
		return nil
	}
	a.parent[id] = newParentID
	a.children[newParentID] = append(a.children[newParentID], id)
	return nil
}

// detach removes the item from its current parent's child list (or the roots).
func (a *Arena) detach(id string) {
	if pid, ok := a.parent[id]; ok {
		a.children[pid] = removeID(a.children[pid], id)
		delete(a.parent, id)
		return
	}
	a.roots = removeID(a.roots, id)
}

// Tree rebuilds the nested form. The arena stays valid afterwards.
func (a *Arena) Tree() []*entity.TreeNode {
	var build func(id string) *entity.TreeNode
	build = func(id string) *entity.TreeNode {
		n := a.items[id]
		n.Children = nil
		for _, c := range a.children[id] {
			n.Children = append(n.Children, build(c))
		}
		return n
	}
	out := make([]*entity.TreeNode, 0, len(a.roots))
	for _, r := range a.roots {
		out = append(out, build(r))
	}
	return out
}

// Walk visits every item depth-first in pre-order.
func (a *Arena) Walk(fn func(n *entity.TreeNode, depth int)) {
	var visit func(id string, depth int)
	visit = func(id string, depth int) {
		fn(a.items[id], depth)
		for _, c := range a.children[id] {
			visit(c, depth+1)
		}
	}
	for _, r := range a.roots {
		visit(r, 0)
	}
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
