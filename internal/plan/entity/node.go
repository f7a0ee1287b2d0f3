package entity

// Tree item kinds.
const (
	TreeItemNode     = "NODE"
	TreeItemAssembly = "ASSEMBLY"
)

// Constraint kinds.
const (
	ConstraintRequiredWorking = "REQUIRED_WORKING"
	ConstraintMaxMaintenance  = "MAX_MAINTENANCE"
)

// TreeNode is an item of the organizational hierarchy. Type NODE carries
// children and capacity constraints; type ASSEMBLY is a leaf referencing its
// AssemblyType, from which its component slots are inherited.
type TreeNode struct {
	ID             string       `json:"id"`
	Type           string       `json:"type"`
	Name           string       `json:"name"`
	Children       []*TreeNode  `json:"children,omitempty"`
	Conditions     []Constraint `json:"conditions,omitempty"`
	AssemblyTypeID string       `json:"assemblyTypeId,omitempty"`
}

// Constraint is a capacity rule on a node. It is enforced by the external
// optimizer; the service only renders the validation results it gets back.
type Constraint struct {
	Type                string `json:"type"`
	RequiredWorking     *int   `json:"requiredWorking,omitempty"`
	MaxUnderMaintenance *int   `json:"maxUnderMaintenance,omitempty"`
}

// IsAssembly reports whether the item is an assembly leaf.
func (n *TreeNode) IsAssembly() bool {
	return n.Type == TreeItemAssembly
}
