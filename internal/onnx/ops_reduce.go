package onnx

import (
	"github.com/born-ml/bornir/internal/frontend"
	"github.com/born-ml/bornir/internal/ir"
)

func registerReduceOps() {
	// ReduceSum moved axes to an input at opset 13, the others at 18.
	register("ReduceSum", ir.OpReduceSum, extractReduce(13))
	register("ReduceMean", ir.OpReduceMean, extractReduce(18))
	register("ReduceMax", ir.OpReduceMax, extractReduce(18))
	register("ReduceL2", ir.OpReduceL2, extractReduce(18))
}

func extractReduce(axesInputSince int64) frontend.ExtractorFunc {
	return func(ctx *frontend.Context) (bool, error) {
		ctx.Set("keep_dims", ctx.Int("keepdims", 1) != 0)
		if opset(ctx) < axesInputSince {
			ctx.Copy("axes", "axes", frontend.AttrInts, nil)
		} else {
			ctx.Set("noop_with_empty_axes", ctx.Int("noop_with_empty_axes", 0) != 0)
		}
		return true, ctx.Err()
	}
}
