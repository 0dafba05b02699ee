package frontend

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/born-ml/bornir/internal/ir"
)

func TestPolicyFill(t *testing.T) {
	attrs := ir.Attrs{"auto_broadcast": "none"}
	DefaultPolicy.Fill(ir.OpAdd, attrs)
	assert.Equal(t, "none", attrs["auto_broadcast"])

	attrs = ir.Attrs{}
	DefaultPolicy.Fill(ir.OpMultiply, attrs)
	assert.Equal(t, ir.Attrs{"auto_broadcast": "numpy"}, attrs)

	attrs = ir.Attrs{}
	DefaultPolicy.Fill(ir.OpNonZero, attrs)
	assert.Equal(t, "i64", attrs[OutputTypeAttr])

	attrs = ir.Attrs{}
	DefaultPolicy.Fill(ir.OpSigmoid, attrs)
	assert.Empty(t, attrs)
}

func TestPolicyOutputType(t *testing.T) {
	p := DefaultPolicy
	assert.Equal(t, ir.Float16, p.OutputType(ir.OpRelu, ir.Attrs{}, []ir.DataType{ir.Float16}))
	assert.Equal(t, ir.Undefined, p.OutputType(ir.OpRelu, ir.Attrs{}, nil))
	assert.Equal(t, ir.Int32, p.OutputType(ir.OpConvert, ir.Attrs{"destination_type": "i32"}, []ir.DataType{ir.Float32}))
	assert.Equal(t, ir.Float32, p.OutputType(ir.OpSelect, ir.Attrs{}, []ir.DataType{ir.Bool, ir.Float32, ir.Float32}))
	assert.Equal(t, ir.Bool, p.OutputType(ir.OpLogicalAnd, ir.Attrs{}, []ir.DataType{ir.Bool}))
	assert.Equal(t, ir.Int32, p.OutputType(ir.OpNonZero, ir.Attrs{OutputTypeAttr: "i32"}, nil))
}

func TestPolicyWildcard(t *testing.T) {
	p := NewPolicy(
		Rule{AnyOp, "layout", Literal("NCHW")},
		Rule{ir.OpConv, "layout", Literal("NHWC")},
	)
	r, ok := p.Default(ir.OpRelu, "layout")
	assert.True(t, ok)
	assert.Equal(t, "NCHW", r.value)

	attrs := ir.Attrs{}
	p.Fill(ir.OpConv, attrs)
	assert.Equal(t, "NHWC", attrs["layout"])

	attrs = ir.Attrs{}
	p.Fill(ir.OpRelu, attrs)
	assert.Equal(t, "NCHW", attrs["layout"])
}
