package frontend

import (
	"errors"

	"github.com/born-ml/bornir/internal/ir"
)

// Extractor fills the canonical attributes of one operator node.
//
// Extract reads only ctx.Raw and writes only ctx.Attrs. It returns false when
// the handler is inactive for this registration; the builder then treats
// the node as unsupported.
type Extractor interface {
	Extract(ctx *Context) (bool, error)
}

// ExtractorFunc adapts a function to Extractor.
type ExtractorFunc func(ctx *Context) (bool, error)

// Extract implements Extractor.
func (f ExtractorFunc) Extract(ctx *Context) (bool, error) { return f(ctx) }

// Context is the per-node extraction state. It lives only while one raw node
// is being extracted.
//
// Readers record the first error they hit and return the zero value from then
// on, so a handler can read every attribute and check Err once at the end.
type Context struct {
	Format string
	Op     string
	Raw    RawNode
	Attrs  ir.Attrs

	err error
}

// NewContext creates the extraction context for raw, mapped to canonical op.
func NewContext(format, op string, raw RawNode) *Context {
	return &Context{Format: format, Op: op, Raw: raw, Attrs: ir.Attrs{}}
}

// Err returns the first error recorded by a reader or writer.
func (c *Context) Err() error {
	return c.err
}

// Fail records err unless an earlier error is already recorded.
func (c *Context) Fail(err error) {
	if c.err == nil {
		c.err = err
	}
}

// Has reports whether the raw node declares attribute name.
func (c *Context) Has(name string) bool {
	_, ok := c.Raw.Attr(name)
	return ok
}

// Set stores a normalized attribute value.
func (c *Context) Set(name string, v any) {
	if err := c.Attrs.Set(name, v); err != nil {
		c.Fail(err)
	}
}

// Copy reads raw attribute from as want and stores it under to, or stores def
// when absent. A nil def leaves the attribute unset.
func (c *Context) Copy(from, to string, want AttrType, def any) {
	v := c.get(from, want, def)
	if v != nil && c.err == nil {
		c.Set(to, v)
	}
}

func (c *Context) get(name string, want AttrType, def any) any {
	if c.err != nil {
		return nil
	}
	v, err := Get(c.Raw, name, want, def)
	if err != nil {
		c.Fail(err)
		return nil
	}
	return v
}

func (c *Context) require(name string, want AttrType) any {
	if c.err != nil {
		return nil
	}
	v, ok, err := Lookup(c.Raw, name, want)
	switch {
	case err != nil:
		c.Fail(err)
		return nil
	case !ok:
		c.Fail(&MissingAttributeError{Node: c.Raw.Name(), Op: c.Op, Attr: name})
		return nil
	}
	return v
}

func as[T any](v any) T {
	t, _ := v.(T)
	return t
}

// Int reads an integer attribute with a default.
func (c *Context) Int(name string, def int64) int64 { return as[int64](c.get(name, AttrInt, def)) }

// Float reads a float attribute with a default.
func (c *Context) Float(name string, def float64) float64 {
	return as[float64](c.get(name, AttrFloat, def))
}

// String reads a string attribute with a default.
func (c *Context) String(name, def string) string { return as[string](c.get(name, AttrString, def)) }

// Bool reads a boolean attribute with a default.
func (c *Context) Bool(name string, def bool) bool { return as[bool](c.get(name, AttrBool, def)) }

// Ints reads an integer list attribute with a default.
func (c *Context) Ints(name string, def []int64) []int64 {
	return as[[]int64](c.get(name, AttrInts, def))
}

// Floats reads a float list attribute with a default.
func (c *Context) Floats(name string, def []float64) []float64 {
	return as[[]float64](c.get(name, AttrFloats, def))
}

// DType reads an element type attribute with a default.
func (c *Context) DType(name string, def ir.DataType) ir.DataType {
	return as[ir.DataType](c.get(name, AttrDType, def))
}

// RequireInt reads an integer attribute that has no default.
func (c *Context) RequireInt(name string) int64 { return as[int64](c.require(name, AttrInt)) }

// RequireInts reads an integer list attribute that has no default.
func (c *Context) RequireInts(name string) []int64 { return as[[]int64](c.require(name, AttrInts)) }

// RequireString reads a string attribute that has no default.
func (c *Context) RequireString(name string) string { return as[string](c.require(name, AttrString)) }

// RequireDType reads an element type attribute that has no default.
func (c *Context) RequireDType(name string) ir.DataType {
	return as[ir.DataType](c.require(name, AttrDType))
}

// RequireTensor reads a tensor attribute that has no default.
func (c *Context) RequireTensor(name string) *ir.Tensor {
	return as[*ir.Tensor](c.require(name, AttrTensor))
}

// Extract runs h on raw and returns the completed attribute mapping.
//
// The input count is checked against the canonical arity before the handler
// runs, and policy defaults fill any attribute the handler left unset.
// active is false when the handler declined the node.
func Extract(format string, h Handler, raw RawNode, policy *Policy) (attrs ir.Attrs, active bool, err error) {
	if err := CheckArity(h.Op, raw); err != nil {
		return nil, false, err
	}
	ctx := NewContext(format, h.Op, raw)
	active, err = h.Extractor.Extract(ctx)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		return nil, false, err
	}
	if !active {
		return nil, false, nil
	}
	if policy != nil {
		policy.Fill(h.Op, ctx.Attrs)
	}
	return ctx.Attrs, true, nil
}

// CheckArity validates the connected input count of raw against op's schema.
func CheckArity(op string, raw RawNode) error {
	arity, ok := ir.Lookup(op)
	if !ok {
		return errors.New("canonical operator " + op + " is not defined")
	}
	if got := ConnectedInputs(raw); !arity.Accepts(got) {
		return &ArityError{Node: raw.Name(), Op: op, Got: got, Want: arity.String()}
	}
	return nil
}
