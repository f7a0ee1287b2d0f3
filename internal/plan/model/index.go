package model

import (
	"github.com/iRoman8614/timelinesWorks-sub000/internal/plan/entity"
)

// Index holds id lookups over one structural model. Build once per model
// revision; all maps point into the original model, nothing is copied.
type Index struct {
	ComponentTypes   map[string]*entity.ComponentType
	AssemblyTypes    map[string]*entity.AssemblyType
	PartModels       map[string]*entity.PartModel
	MaintenanceTypes map[string]*entity.MaintenanceType
	Units            map[string]*entity.Unit
	// UnitOwner maps unit id to the part model that owns it.
	UnitOwner map[string]*entity.PartModel
	// Assemblies maps assembly id to its tree leaf.
	Assemblies map[string]*entity.TreeNode
	// Nodes maps node id to its tree item (assemblies included).
	Nodes map[string]*entity.TreeNode
}

// BuildIndex walks the model and indexes every addressable entity.
func BuildIndex(m *entity.StructuralModel) *Index {
	idx := &Index{
		ComponentTypes:   make(map[string]*entity.ComponentType),
		AssemblyTypes:    make(map[string]*entity.AssemblyType),
		PartModels:       make(map[string]*entity.PartModel),
		MaintenanceTypes: make(map[string]*entity.MaintenanceType),
		Units:            make(map[string]*entity.Unit),
		UnitOwner:        make(map[string]*entity.PartModel),
		Assemblies:       make(map[string]*entity.TreeNode),
		Nodes:            make(map[string]*entity.TreeNode),
	}
	for i := range m.ComponentTypes {
		ct := &m.ComponentTypes[i]
		idx.ComponentTypes[ct.ID] = ct
	}
	for i := range m.AssemblyTypes {
		at := &m.AssemblyTypes[i]
		idx.AssemblyTypes[at.ID] = at
	}
	for i := range m.PartModels {
		pm := &m.PartModels[i]
		idx.PartModels[pm.ID] = pm
		for j := range pm.MaintenanceTypes {
			mt := &pm.MaintenanceTypes[j]
			idx.MaintenanceTypes[mt.ID] = mt
		}
		for j := range pm.Units {
			u := &pm.Units[j]
			idx.Units[u.ID] = u
			idx.UnitOwner[u.ID] = pm
		}
	}
	var walk func(nodes []*entity.TreeNode)
	walk = func(nodes []*entity.TreeNode) {
		for _, n := range nodes {
			idx.Nodes[n.ID] = n
			if n.IsAssembly() {
				idx.Assemblies[n.ID] = n
				continue
			}
			walk(n.Children)
		}
	}
	walk(m.Nodes)
	return idx
}

// MaintenanceType returns the maintenance type by id, nil when unknown.
func (idx *Index) MaintenanceType(id string) *entity.MaintenanceType {
	return idx.MaintenanceTypes[id]
}

// Unit returns the unit by id, nil when unknown.
func (idx *Index) Unit(id string) *entity.Unit {
	return idx.Units[id]
}

// AssemblyComponents returns the component slots of an assembly, inherited
// from its assembly type. Nil when the assembly or its type is unknown.
func (idx *Index) AssemblyComponents(assemblyID string) []entity.Component {
	a := idx.Assemblies[assemblyID]
	if a == nil {
		return nil
	}
	at := idx.AssemblyTypes[a.AssemblyTypeID]
	if at == nil {
		return nil
	}
	return at.Components
}
