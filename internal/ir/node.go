package ir

// Kind separates computation nodes from tensor nodes.
type Kind int

// Node kinds.
const (
	OpKind Kind = iota
	DataKind
)

// String returns "op" or "data".
func (k Kind) String() string {
	if k == DataKind {
		return "data"
	}
	return "op"
}

// MarshalYAML encodes the kind by name.
func (k Kind) MarshalYAML() (any, error) {
	return k.String(), nil
}

// Node is a vertex of the canonical graph.
//
// Operator nodes carry the canonical Type and the normalized Attrs.
// Data nodes carry DType and Shape when known, and Value for constants.
type Node struct {
	ID    string   `yaml:"id"`
	Kind  Kind     `yaml:"kind"`
	Type  string   `yaml:"type,omitempty"`
	Attrs Attrs    `yaml:"attrs,omitempty"`
	DType DataType `yaml:"dtype,omitempty"`
	Shape Shape    `yaml:"shape,omitempty,flow"`
	Value *Tensor  `yaml:"value,omitempty"`
}

// NewOp creates an operator node shell with an empty attribute mapping.
func NewOp(id, opType string) *Node {
	return &Node{ID: id, Kind: OpKind, Type: opType, Attrs: Attrs{}}
}

// NewData creates a data node.
func NewData(id string) *Node {
	return &Node{ID: id, Kind: DataKind}
}

// IsOp reports whether the node is an operator node.
func (n *Node) IsOp() bool {
	return n.Kind == OpKind
}

// Edge connects two nodes of different kinds.
// OutPort is the producer's output index for op->data edges,
// InPort is the consumer's input index for data->op edges.
type Edge struct {
	From    string `yaml:"from"`
	To      string `yaml:"to"`
	OutPort int    `yaml:"out_port"`
	InPort  int    `yaml:"in_port"`
}
