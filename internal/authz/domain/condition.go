package domain

// Operator is a leaf comparison in a condition tree.
type Operator string

const (
	OpEq       Operator = "eq"
	OpNe       Operator = "ne"
	OpGt       Operator = "gt"
	OpGte      Operator = "gte"
	OpLt       Operator = "lt"
	OpLte      Operator = "lte"
	OpIn       Operator = "in"
	OpContains Operator = "contains"
)

// ConditionNode is one node of a policy's boolean-expression tree, expressed
// as a tagged union: exactly one of And, Or, Not, or Op must be set.
//
// Leaf nodes compare the attribute at Path (a dotted path into the attribute
// context, e.g. "subject.user_id" or "resource.owner_id") against either the
// literal Value or the attribute at the Ref path.
//
// Example condition JSON (deny unless the caller owns the resource):
//
//	{"op": "eq", "path": "resource.owner_id", "ref": "subject.user_id"}
//
// Combinators:
//
//	{"and": [{"op": "eq", ...}, {"not": {"op": "in", ...}}]}
type ConditionNode struct {
	And []ConditionNode `json:"and,omitempty"`
	Or  []ConditionNode `json:"or,omitempty"`
	Not *ConditionNode  `json:"not,omitempty"`

	Op    Operator `json:"op,omitempty"`
	Path  string   `json:"path,omitempty"`
	Value any      `json:"value,omitempty"`
	Ref   string   `json:"ref,omitempty"`
}

// IsLeaf reports whether the node is a leaf comparison rather than a
// combinator.
func (n *ConditionNode) IsLeaf() bool {
	return n.Op != ""
}

// IsZero reports whether the node is entirely empty, which makes the tree
// malformed.
func (n *ConditionNode) IsZero() bool {
	return len(n.And) == 0 && len(n.Or) == 0 && n.Not == nil && n.Op == ""
}
