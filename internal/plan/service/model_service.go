package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iRoman8614/timelinesWorks-sub000/internal/plan/entity"
	"github.com/iRoman8614/timelinesWorks-sub000/internal/plan/model"
)

// ModelService mutates the structural configuration of a project. All
// deletions are blocked, never cascaded, while the entity is referenced
// elsewhere: the user cleans up explicitly.
type ModelService struct {
	projects *ProjectService
	log      *zap.Logger
}

func NewModelService(projects *ProjectService, log *zap.Logger) *ModelService {
	return &ModelService{projects: projects, log: log}
}

// --- component types ---

func (s *ModelService) AddComponentType(ctx context.Context, projectID string, ct entity.ComponentType) (*entity.StructuralModel, error) {
	m, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if ct.ID == "" {
		ct.ID = uuid.New().String()
	}
	if ct.ParentID != nil {
		idx := model.BuildIndex(m)
		if idx.ComponentTypes[*ct.ParentID] == nil {
			return nil, fmt.Errorf("%w: parent component type %s", ErrNotInModel, *ct.ParentID)
		}
	}
	m.ComponentTypes = append(m.ComponentTypes, ct)
	return m, s.projects.Save(ctx, m)
}

func (s *ModelService) UpdateComponentType(ctx context.Context, projectID string, ct entity.ComponentType) (*entity.StructuralModel, error) {
	m, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	for i := range m.ComponentTypes {
		if m.ComponentTypes[i].ID != ct.ID {
			continue
		}
		if ct.ParentID != nil && s.wouldCycleComponentType(m, ct.ID, *ct.ParentID) {
			return nil, fmt.Errorf("component type %s may not be its own ancestor", ct.ID)
		}
		m.ComponentTypes[i] = ct
		return m, s.projects.Save(ctx, m)
	}
	return nil, fmt.Errorf("%w: component type %s", ErrNotInModel, ct.ID)
}

// DeleteComponentType refuses when the type, or any of its descendants, is
// referenced by an assembly-type slot or a part model.
func (s *ModelService) DeleteComponentType(ctx context.Context, projectID, id string) (*entity.StructuralModel, error) {
	m, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	subtree := componentTypeSubtree(m, id)
	if len(subtree) == 0 {
		return nil, fmt.Errorf("%w: component type %s", ErrNotInModel, id)
	}
	for _, at := range m.AssemblyTypes {
		for _, c := range at.Components {
			if subtree[c.ComponentTypeID] {
				return nil, fmt.Errorf("%w: component type %s is used by assembly type %q", ErrReferenced, c.ComponentTypeID, at.Name)
			}
		}
	}
	for _, pm := range m.PartModels {
		if subtree[pm.ComponentTypeID] {
			return nil, fmt.Errorf("%w: component type %s is used by part model %q", ErrReferenced, pm.ComponentTypeID, pm.Name)
		}
	}
	kept := m.ComponentTypes[:0]
	for _, ct := range m.ComponentTypes {
		if !subtree[ct.ID] {
			kept = append(kept, ct)
		}
	}
	m.ComponentTypes = kept
	return m, s.projects.Save(ctx, m)
}

// --- assembly types ---

func (s *ModelService) AddAssemblyType(ctx context.Context, projectID string, at entity.AssemblyType) (*entity.StructuralModel, error) {
	m, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if at.ID == "" {
		at.ID = uuid.New().String()
	}
	for i := range at.Components {
		if at.Components[i].ID == "" {
			at.Components[i].ID = uuid.New().String()
		}
	}
	m.AssemblyTypes = append(m.AssemblyTypes, at)
	return m, s.projects.Save(ctx, m)
}

func (s *ModelService) UpdateAssemblyType(ctx context.Context, projectID string, at entity.AssemblyType) (*entity.StructuralModel, error) {
	m, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	for i := range m.AssemblyTypes {
		if m.AssemblyTypes[i].ID == at.ID {
			m.AssemblyTypes[i] = at
			return m, s.projects.Save(ctx, m)
		}
	}
	return nil, fmt.Errorf("%w: assembly type %s", ErrNotInModel, at.ID)
}

// DeleteAssemblyType refuses while any assembly instance references the type.
func (s *ModelService) DeleteAssemblyType(ctx context.Context, projectID, id string) (*entity.StructuralModel, error) {
	m, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	idx := model.BuildIndex(m)
	for _, a := range idx.Assemblies {
		if a.AssemblyTypeID == id {
			return nil, fmt.Errorf("%w: assembly type %s is used by assembly %q", ErrReferenced, id, a.Name)
		}
	}
	for i := range m.AssemblyTypes {
		if m.AssemblyTypes[i].ID == id {
			m.AssemblyTypes = append(m.AssemblyTypes[:i], m.AssemblyTypes[i+1:]...)
			return m, s.projects.Save(ctx, m)
		}
	}
	return nil, fmt.Errorf("%w: assembly type %s", ErrNotInModel, id)
}

// --- part models ---

func (s *ModelService) AddPartModel(ctx context.Context, projectID string, pm entity.PartModel) (*entity.StructuralModel, error) {
	m, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if pm.ID == "" {
		pm.ID = uuid.New().String()
	}
	for i := range pm.MaintenanceTypes {
		if pm.MaintenanceTypes[i].ID == "" {
			pm.MaintenanceTypes[i].ID = uuid.New().String()
		}
	}
	for i := range pm.Units {
		if pm.Units[i].ID == "" {
			pm.Units[i].ID = uuid.New().String()
		}
		pm.Units[i].PartModelID = pm.ID
	}
	m.PartModels = append(m.PartModels, pm)
	return m, s.projects.Save(ctx, m)
}

func (s *ModelService) UpdatePartModel(ctx context.Context, projectID string, pm entity.PartModel) (*entity.StructuralModel, error) {
	m, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	for i := range m.PartModels {
		if m.PartModels[i].ID == pm.ID {
			m.PartModels[i] = pm
			return m, s.projects.Save(ctx, m)
		}
	}
	return nil, fmt.Errorf("%w: part model %s", ErrNotInModel, pm.ID)
}

// DeletePartModel refuses while any of the model's units appears in the
// timeline (assignments or maintenance events).
func (s *ModelService) DeletePartModel(ctx context.Context, projectID, id string) (*entity.StructuralModel, error) {
	m, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	var target *entity.PartModel
	for i := range m.PartModels {
		if m.PartModels[i].ID == id {
			target = &m.PartModels[i]
			break
		}
	}
	if target == nil {
		return nil, fmt.Errorf("%w: part model %s", ErrNotInModel, id)
	}
	if m.Timeline != nil {
		owned := make(map[string]bool, len(target.Units))
		for _, u := range target.Units {
			owned[u.ID] = true
		}
		for _, ev := range m.Timeline.UnitAssignments {
			if owned[ev.UnitID] {
				return nil, fmt.Errorf("%w: unit %s of part model %q is assigned in the timeline", ErrReferenced, ev.UnitID, target.Name)
			}
		}
		for _, ev := range m.Timeline.MaintenanceEvents {
			if owned[ev.UnitID] {
				return nil, fmt.Errorf("%w: unit %s of part model %q has maintenance events", ErrReferenced, ev.UnitID, target.Name)
			}
		}
	}
	for i := range m.PartModels {
		if m.PartModels[i].ID == id {
			m.PartModels = append(m.PartModels[:i], m.PartModels[i+1:]...)
			break
		}
	}
	return m, s.projects.Save(ctx, m)
}

// --- node tree ---

func (s *ModelService) AddNode(ctx context.Context, projectID, parentID string, n *entity.TreeNode) (*entity.StructuralModel, error) {
	m, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.IsAssembly() {
		idx := model.BuildIndex(m)
		if idx.AssemblyTypes[n.AssemblyTypeID] == nil {
			return nil, fmt.Errorf("%w: assembly type %s", ErrNotInModel, n.AssemblyTypeID)
		}
	}
	arena := model.NewArena(m.Nodes)
	if err := arena.Add(parentID, n); err != nil {
		return nil, err
	}
	m.Nodes = arena.Tree()
	return m, s.projects.Save(ctx, m)
}

func (s *ModelService) UpdateNode(ctx context.Context, projectID string, n *entity.TreeNode) (*entity.StructuralModel, error) {
	m, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	arena := model.NewArena(m.Nodes)
	if err := arena.Update(n); err != nil {
		return nil, err
	}
	m.Nodes = arena.Tree()
	return m, s.projects.Save(ctx, m)
}

// DeleteNode refuses while any assembly in the subtree still has timeline
// events: wiping recorded history by deleting a branch is not allowed.
func (s *ModelService) DeleteNode(ctx context.Context, projectID, id string) (*entity.StructuralModel, error) {
	m, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	arena := model.NewArena(m.Nodes)
	if n := arena.Get(id); n == nil {
		return nil, fmt.Errorf("%w: node %s", model.ErrNodeNotFound, id)
	}
	if m.Timeline != nil {
		referenced := make(map[string]bool)
		for _, ev := range m.Timeline.AssemblyStates {
			referenced[ev.AssemblyID] = true
		}
		for _, ev := range m.Timeline.UnitAssignments {
			referenced[ev.ComponentOfAssembly.AssemblyID] = true
		}
		var blocked error
		subtreeWalk(arena, id, func(n *entity.TreeNode) {
			if blocked == nil && n.IsAssembly() && referenced[n.ID] {
				blocked = fmt.Errorf("%w: assembly %q has timeline events", ErrReferenced, n.Name)
			}
		})
		if blocked != nil {
			return nil, blocked
		}
	}
	if err := arena.Remove(id); err != nil {
		return nil, err
	}
	m.Nodes = arena.Tree()
	return m, s.projects.Save(ctx, m)
}

func (s *ModelService) MoveNode(ctx context.Context, projectID, id, newParentID string) (*entity.StructuralModel, error) {
	m, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	arena := model.NewArena(m.Nodes)
	if err := arena.Move(id, newParentID); err != nil {
		return nil, err
	}
	m.Nodes = arena.Tree()
	return m, s.projects.Save(ctx, m)
}

// --- helpers ---

// componentTypeSubtree collects id plus all descendant type ids.
func componentTypeSubtree(m *entity.StructuralModel, id string) map[string]bool {
	children := make(map[string][]string)
	found := false
	for _, ct := range m.ComponentTypes {
		if ct.ID == id {
			found = true
		}
		if ct.ParentID != nil {
			children[*ct.ParentID] = append(children[*ct.ParentID], ct.ID)
		}
	}
	if !found {
		return nil
	}
	subtree := map[string]bool{id: true}
	queue := []string{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, c := range children[cur] {
			if !subtree[c] {
				subtree[c] = true
				queue = append(queue, c)
			}
		}
	}
	return subtree
}

// wouldCycleComponentType reports whether setting parentID as the parent of id
// would make the type its own ancestor.
func (s *ModelService) wouldCycleComponentType(m *entity.StructuralModel, id, parentID string) bool {
	parents := make(map[string]*string)
	for _, ct := range m.ComponentTypes {
		parents[ct.ID] = ct.ParentID
	}
	for cur := &parentID; cur != nil; cur = parents[*cur] {
		if *cur == id {
			return true
		}
	}
	return false
}

func subtreeWalk(arena *model.Arena, rootID string, fn func(*entity.TreeNode)) {
	inSubtree := false
	depthAtRoot := -1
	arena.Walk(func(n *entity.TreeNode, depth int) {
		switch {
		case n.ID == rootID:
			inSubtree = true
			depthAtRoot = depth
			fn(n)
		case inSubtree && depth > depthAtRoot:
			fn(n)
		case inSubtree && depth <= depthAtRoot:
			inSubtree = false
		}
	})
}
