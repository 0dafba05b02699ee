// Package ir defines the canonical intermediate representation produced by the
// model front ends.
//
// The graph is bipartite: operator nodes compute, data nodes carry the tensors
// flowing between them. Operator nodes never connect directly to other operator
// nodes; every dependency passes through a data node.
//
// Key components:
//   - Node: operator or data node with normalized attributes
//   - Edge: directed connection carrying a port index
//   - Graph: node table plus edge set, with structural validation
//   - Schema: canonical operator names and their input arity
//   - DataType, Shape, Tensor: element types, dimensions and constant payloads
package ir
