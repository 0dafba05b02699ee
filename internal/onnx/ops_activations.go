package onnx

import (
	"math"

	"github.com/born-ml/bornir/internal/frontend"
	"github.com/born-ml/bornir/internal/ir"
)

func registerActivations() {
	register("Relu", ir.OpRelu, nil)
	register("Sigmoid", ir.OpSigmoid, nil)
	register("Tanh", ir.OpTanh, nil)
	register("Elu", ir.OpElu, extractElu)
	register("LeakyRelu", ir.OpLeakyRelu, extractLeakyRelu)
	register("Softmax", ir.OpSoftmax, extractSoftmax)
	register("LogSoftmax", ir.OpLogSoftmax, extractSoftmax)
	register("Clip", ir.OpClamp, extractClip)
}

// extractSoftmax copies axis verbatim. Before opset 13 the operator works on
// the input coerced to 2D at axis, which defaults to 1; from 13 it normalizes
// over the single axis, default -1.
func extractSoftmax(ctx *frontend.Context) (bool, error) {
	if opset(ctx) < 13 {
		ctx.Set("axis", ctx.Int("axis", 1))
		ctx.Set(frontend.FlattenTo2DAttr, true)
		return true, ctx.Err()
	}
	ctx.Set("axis", ctx.Int("axis", -1))
	return true, ctx.Err()
}

func extractElu(ctx *frontend.Context) (bool, error) {
	ctx.Set("alpha", ctx.Float("alpha", 1.0))
	return true, ctx.Err()
}

func extractLeakyRelu(ctx *frontend.Context) (bool, error) {
	ctx.Set("negative_slope", ctx.Float("alpha", 0.01))
	return true, ctx.Err()
}

// extractClip reads min and max attributes before opset 11, defaulting to the
// float32 range. Later opsets pass them as optional inputs, which the graph
// wires.
func extractClip(ctx *frontend.Context) (bool, error) {
	if opset(ctx) >= 11 {
		return true, nil
	}
	ctx.Set("min", ctx.Float("min", -math.MaxFloat32))
	ctx.Set("max", ctx.Float("max", math.MaxFloat32))
	return true, ctx.Err()
}
