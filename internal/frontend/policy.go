package frontend

import (
	"github.com/born-ml/bornir/internal/ir"
)

// AnyOp is the policy wildcard matching every operator.
const AnyOp = "*"

// OutputTypeAttr names the attribute, or policy entry, that decides the
// element type of an operator's outputs.
const OutputTypeAttr = "output_type"

// FlattenTo2DAttr marks a Softmax or LogSoftmax whose input is first
// coerced to 2D at axis, so the normalization spans every dimension from
// axis on.
const FlattenTo2DAttr = "flatten_to_2d"

type resolutionKind int

const (
	literal resolutionKind = iota
	fromInput
	fromAttr
)

// Resolution says how a default value is obtained.
type Resolution struct {
	kind  resolutionKind
	value any
	input int
	attr  string
}

// Literal resolves to a fixed value.
func Literal(v any) Resolution {
	n, err := ir.Normalize(v)
	if err != nil {
		panic(err)
	}
	return Resolution{kind: literal, value: n}
}

// FromInput resolves to the element type of input i.
func FromInput(i int) Resolution { return Resolution{kind: fromInput, input: i} }

// FromAttr resolves to the value of another attribute of the same node.
func FromAttr(name string) Resolution { return Resolution{kind: fromAttr, attr: name} }

type policyKey struct {
	op   string
	attr string
}

// Policy is the table of default resolutions shared by every format that maps
// to the same canonical operator.
type Policy struct {
	table map[policyKey]Resolution
	byOp  map[string][]string
}

// Rule is one policy entry.
type Rule struct {
	Op   string
	Attr string
	Res  Resolution
}

// NewPolicy builds a policy from rules. Later rules win.
func NewPolicy(rules ...Rule) *Policy {
	p := &Policy{table: make(map[policyKey]Resolution), byOp: make(map[string][]string)}
	for _, r := range rules {
		k := policyKey{r.Op, r.Attr}
		if _, exists := p.table[k]; !exists {
			p.byOp[r.Op] = append(p.byOp[r.Op], r.Attr)
		}
		p.table[k] = r.Res
	}
	return p
}

// Default returns the resolution for (op, attr), falling back to the
// wildcard entry for attr.
func (p *Policy) Default(op, attr string) (Resolution, bool) {
	if r, ok := p.table[policyKey{op, attr}]; ok {
		return r, true
	}
	r, ok := p.table[policyKey{AnyOp, attr}]
	return r, ok
}

// Fill sets every literal default of op that attrs does not already carry.
func (p *Policy) Fill(op string, attrs ir.Attrs) {
	for _, scope := range []string{op, AnyOp} {
		for _, attr := range p.byOp[scope] {
			r, ok := p.Default(op, attr)
			if !ok || r.kind != literal || attrs.Has(attr) {
				continue
			}
			attrs[attr] = r.value
		}
	}
}

// OutputType decides the element type of op's outputs. An explicit
// output_type attribute wins; otherwise the policy entry for output_type is
// resolved against the node's attributes and input element types.
func (p *Policy) OutputType(op string, attrs ir.Attrs, inputs []ir.DataType) ir.DataType {
	if s, ok := attrs.String(OutputTypeAttr); ok {
		dt, _ := ir.ParseDataType(s)
		return dt
	}
	r, ok := p.Default(op, OutputTypeAttr)
	if !ok {
		return ir.Undefined
	}
	switch r.kind {
	case literal:
		s, _ := r.value.(string)
		dt, _ := ir.ParseDataType(s)
		return dt
	case fromAttr:
		s, _ := attrs.String(r.attr)
		dt, _ := ir.ParseDataType(s)
		return dt
	case fromInput:
		if r.input < len(inputs) {
			return inputs[r.input]
		}
	}
	return ir.Undefined
}

var elementwise = []string{
	ir.OpAdd, ir.OpSubtract, ir.OpMultiply, ir.OpDivide,
	ir.OpMaximum, ir.OpMinimum, ir.OpLogicalAnd, ir.OpSelect,
}

var reductions = []string{ir.OpReduceSum, ir.OpReduceMean, ir.OpReduceMax, ir.OpReduceL2}

// DefaultPolicy is the normalization table used by the builder.
var DefaultPolicy = NewPolicy(defaultRules()...)

func defaultRules() []Rule {
	rules := []Rule{
		{AnyOp, OutputTypeAttr, FromInput(0)},
		{ir.OpParameter, OutputTypeAttr, FromAttr("element_type")},
		{ir.OpConvert, OutputTypeAttr, FromAttr("destination_type")},
		{ir.OpSelect, OutputTypeAttr, FromInput(1)},
		{ir.OpLogicalAnd, OutputTypeAttr, Literal(ir.Bool.String())},
		{ir.OpNonZero, OutputTypeAttr, Literal(ir.Int64.String())},
		{ir.OpConv, "auto_pad", Literal("explicit")},
		{ir.OpConv, "group", Literal(int64(1))},
		{ir.OpConv, "weights_layout", Literal("OIHW")},
		{ir.OpMaxPool, "auto_pad", Literal("explicit")},
		{ir.OpMaxPool, "rounding_type", Literal("floor")},
		{ir.OpAvgPool, "auto_pad", Literal("explicit")},
		{ir.OpAvgPool, "rounding_type", Literal("floor")},
		{ir.OpAvgPool, "exclude_pad", Literal(false)},
		{ir.OpMatMul, "transpose_a", Literal(false)},
		{ir.OpMatMul, "transpose_b", Literal(false)},
		{ir.OpReshape, "special_zero", Literal(false)},
		{ir.OpInterp, "mode", Literal("nearest")},
		{ir.OpLeakyRelu, "negative_slope", Literal(0.01)},
		{ir.OpElu, "alpha", Literal(1.0)},
		{ir.OpSoftmax, FlattenTo2DAttr, Literal(false)},
		{ir.OpLogSoftmax, FlattenTo2DAttr, Literal(false)},
	}
	for _, op := range elementwise {
		rules = append(rules, Rule{op, "auto_broadcast", Literal("numpy")})
	}
	for _, op := range reductions {
		rules = append(rules,
			Rule{op, "keep_dims", Literal(false)},
			Rule{op, "noop_with_empty_axes", Literal(false)},
		)
	}
	return rules
}
