package builder

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/born-ml/bornir/internal/frontend"
)

// NodeError is a failure attributed to one source node.
type NodeError struct {
	Node string // Source node name, or tensor name for graph-level entries
	Op   string // Source operator type
	Kind string // One of the frontend.Kind* constants
	Err  error
}

// Error implements the error interface.
func (e *NodeError) Error() string {
	return fmt.Sprintf("%s (%s): %s: %v", e.Node, e.Op, e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *NodeError) Unwrap() error { return e.Err }

// Report lists every node a conversion could not translate.
type Report struct {
	ID        uuid.UUID
	Format    string
	Operators int // operator nodes in the resulting graph
	Errors    []*NodeError
}

func newReport(format string) *Report {
	return &Report{ID: uuid.New(), Format: format}
}

func (r *Report) add(node, op string, err error) *NodeError {
	ne := &NodeError{Node: node, Op: op, Kind: frontend.KindOf(err), Err: err}
	r.Errors = append(r.Errors, ne)
	return ne
}

// HasErrors reports whether any node failed.
func (r *Report) HasErrors() bool {
	return len(r.Errors) > 0
}

// Count returns the number of errors of the given kind.
func (r *Report) Count(kind string) int {
	n := 0
	for _, e := range r.Errors {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// Failed reports whether node has at least one error.
func (r *Report) Failed(node string) bool {
	for _, e := range r.Errors {
		if e.Node == node {
			return true
		}
	}
	return false
}

// WriteTo writes the human-readable report.
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, r.String())
	return int64(n), err
}

// String formats the report: a summary line, then one line per failed node.
func (r *Report) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "conversion %s (%s): %d operators, %d errors\n", r.ID, r.Format, r.Operators, len(r.Errors))
	for _, e := range r.Errors {
		fmt.Fprintf(&sb, "  %-24s %-16s %-22s %v\n", e.Node, e.Op, e.Kind, e.Err)
	}
	return sb.String()
}
