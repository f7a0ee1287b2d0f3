package entity

// ComponentType classifies component slots. Types form a forest: ParentID is nil
// for roots. A type may not be its own ancestor; the model store enforces this.
type ComponentType struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	ParentID    *string `json:"parentId"`
}

// AssemblyType owns the ordered list of component slots every assembly of this
// type inherits. Slots are not stored per assembly instance.
type AssemblyType struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Components  []Component `json:"components"`
}

// Component is a named slot inside an assembly type (e.g. "main engine").
type Component struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	ComponentTypeID string `json:"componentTypeId"`
	Description     string `json:"description,omitempty"`
}
