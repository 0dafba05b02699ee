package onnx

import (
	"github.com/born-ml/bornir/internal/frontend"
	"github.com/born-ml/bornir/internal/ir"
)

// register adds an ONNX operator handler to the process-wide registry.
// A nil fn registers an operator without attributes.
func register(op, canonical string, fn frontend.ExtractorFunc) {
	if fn == nil {
		fn = noAttrs
	}
	frontend.MustRegister(Format, op, frontend.Handler{Op: canonical, Extractor: fn})
}

func noAttrs(*frontend.Context) (bool, error) { return true, nil }

func init() {
	registerActivations()
	registerMathOps()
	registerShapeOps()
	registerNNOps()
	registerReduceOps()
	registerResizeOps()

	register("Constant", ir.OpConst, extractConstant)
	register("Identity", ir.OpIdentity, nil)
	register("Cast", ir.OpConvert, extractCast)
	register("NonZero", ir.OpNonZero, nil)
}

// extractConstant accepts the tensor form and, from opset 12, the scalar and
// list shorthands.
func extractConstant(ctx *frontend.Context) (bool, error) {
	switch {
	case ctx.Has("value"):
		ctx.Set("value", ctx.RequireTensor("value"))
	case ctx.Has("value_float"):
		ctx.Set("value", ir.Float32Tensor(ir.Shape{}, []float32{float32(ctx.Float("value_float", 0))}))
	case ctx.Has("value_floats"):
		fs := ctx.Floats("value_floats", nil)
		vs := make([]float32, len(fs))
		for i, f := range fs {
			vs[i] = float32(f)
		}
		ctx.Set("value", ir.Float32Tensor(ir.Shape{int64(len(vs))}, vs))
	case ctx.Has("value_int"):
		ctx.Set("value", ir.Int64Tensor(ir.Shape{}, []int64{ctx.Int("value_int", 0)}))
	case ctx.Has("value_ints"):
		vs := ctx.Ints("value_ints", nil)
		ctx.Set("value", ir.Int64Tensor(ir.Shape{int64(len(vs))}, vs))
	default:
		ctx.Set("value", ctx.RequireTensor("value"))
	}
	return true, ctx.Err()
}

func extractCast(ctx *frontend.Context) (bool, error) {
	to := ctx.RequireInt("to")
	if ctx.Err() != nil {
		return true, ctx.Err()
	}
	dt := DataType(int32(to)) //nolint:gosec // G115: ONNX enum value.
	if dt == ir.Undefined {
		return true, &frontend.InvalidAttributeError{
			Node: ctx.Raw.Name(), Attr: "to", Want: frontend.AttrDType, Got: frontend.AttrInt,
			Details: "unsupported ONNX data type",
		}
	}
	ctx.Set("destination_type", dt)
	return true, ctx.Err()
}
