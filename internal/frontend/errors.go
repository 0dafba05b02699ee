package frontend

import (
	"errors"
	"fmt"
)

// Sentinel errors matched with errors.Is.
var (
	ErrUnsupportedOperator   = errors.New("unsupported operator")
	ErrMissingAttribute      = errors.New("missing attribute")
	ErrInvalidAttribute      = errors.New("invalid attribute")
	ErrDanglingReference     = errors.New("dangling reference")
	ErrDuplicateRegistration = errors.New("duplicate registration")
	ErrDuplicateNode         = errors.New("duplicate node")
	ErrArity                 = errors.New("wrong number of inputs")
	ErrRegistrySealed        = errors.New("registry is sealed")
)

// UnsupportedOperatorError reports an operator with no enabled handler.
type UnsupportedOperatorError struct {
	Format string
	Op     string
}

// Error implements the error interface.
func (e *UnsupportedOperatorError) Error() string {
	return fmt.Sprintf("unsupported operator %q for format %s", e.Op, e.Format)
}

// Is matches ErrUnsupportedOperator.
func (e *UnsupportedOperatorError) Is(target error) bool { return target == ErrUnsupportedOperator }

// MissingAttributeError reports a required attribute with no default.
type MissingAttributeError struct {
	Node string
	Op   string
	Attr string
}

// Error implements the error interface.
func (e *MissingAttributeError) Error() string {
	return fmt.Sprintf("node %q (%s): required attribute %q is missing", e.Node, e.Op, e.Attr)
}

// Is matches ErrMissingAttribute.
func (e *MissingAttributeError) Is(target error) bool { return target == ErrMissingAttribute }

// InvalidAttributeError reports an attribute that cannot be read as the
// requested type.
type InvalidAttributeError struct {
	Node    string
	Attr    string
	Want    AttrType
	Got     AttrType
	Details string
}

// Error implements the error interface.
func (e *InvalidAttributeError) Error() string {
	msg := fmt.Sprintf("node %q: attribute %q: want %s, got %s", e.Node, e.Attr, e.Want, e.Got)
	if e.Details != "" {
		msg += ": " + e.Details
	}
	return msg
}

// Is matches ErrInvalidAttribute.
func (e *InvalidAttributeError) Is(target error) bool { return target == ErrInvalidAttribute }

// DanglingReferenceError reports an input name that no node produces.
type DanglingReferenceError struct {
	Node  string
	Input string
	Port  int
}

// Error implements the error interface.
func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("node %q: input %d references %q, which has no producer", e.Node, e.Port, e.Input)
}

// Is matches ErrDanglingReference.
func (e *DanglingReferenceError) Is(target error) bool { return target == ErrDanglingReference }

// DuplicateRegistrationError reports a second enabled handler for the same
// (format, operator) pair. It is a programming error in the handler set.
type DuplicateRegistrationError struct {
	Format string
	Op     string
}

// Error implements the error interface.
func (e *DuplicateRegistrationError) Error() string {
	return fmt.Sprintf("handler for %s operator %q already registered", e.Format, e.Op)
}

// Is matches ErrDuplicateRegistration.
func (e *DuplicateRegistrationError) Is(target error) bool {
	return target == ErrDuplicateRegistration
}

// DuplicateNodeError reports a node identity or tensor name that is already
// taken by another node.
type DuplicateNodeError struct {
	Node string
	Name string
}

// Error implements the error interface.
func (e *DuplicateNodeError) Error() string {
	return fmt.Sprintf("node %q: name %q is already defined", e.Node, e.Name)
}

// Is matches ErrDuplicateNode.
func (e *DuplicateNodeError) Is(target error) bool { return target == ErrDuplicateNode }

// ArityError reports an operator with an input count its canonical type
// does not accept.
type ArityError struct {
	Node string
	Op   string
	Got  int
	Want string
}

// Error implements the error interface.
func (e *ArityError) Error() string {
	return fmt.Sprintf("node %q: %s requires %s inputs, got %d", e.Node, e.Op, e.Want, e.Got)
}

// Is matches ErrArity.
func (e *ArityError) Is(target error) bool { return target == ErrArity }

// Error kinds as listed in conversion reports.
const (
	KindUnsupported = "unsupported_operator"
	KindMissingAttr = "missing_attribute"
	KindInvalidAttr = "invalid_attribute"
	KindDangling    = "dangling_reference"
	KindDuplicate   = "duplicate_node"
	KindArity       = "arity"
	KindExtraction  = "extraction"
)

// KindOf classifies a per-node error for reporting.
func KindOf(err error) string {
	switch {
	case errors.Is(err, ErrUnsupportedOperator):
		return KindUnsupported
	case errors.Is(err, ErrMissingAttribute):
		return KindMissingAttr
	case errors.Is(err, ErrInvalidAttribute):
		return KindInvalidAttr
	case errors.Is(err, ErrDanglingReference):
		return KindDangling
	case errors.Is(err, ErrDuplicateNode):
		return KindDuplicate
	case errors.Is(err, ErrArity):
		return KindArity
	default:
		return KindExtraction
	}
}
