package onnx

import (
	"github.com/born-ml/bornir/internal/frontend"
	"github.com/born-ml/bornir/internal/ir"
)

func registerShapeOps() {
	register("Concat", ir.OpConcat, extractConcat)
	register("Reshape", ir.OpReshape, extractReshape)
	register("Transpose", ir.OpTranspose, extractTranspose)
	register("Squeeze", ir.OpSqueeze, extractAxesAttr(13, false))
	register("Unsqueeze", ir.OpUnsqueeze, extractAxesAttr(13, true))
	register("Flatten", ir.OpFlatten, extractFlatten)
	register("Gather", ir.OpGather, extractGather)
}

// extractConcat: axis is required from opset 4 and defaulted to 1 before.
func extractConcat(ctx *frontend.Context) (bool, error) {
	if opset(ctx) < 4 {
		ctx.Set("axis", ctx.Int("axis", 1))
	} else {
		ctx.Set("axis", ctx.RequireInt("axis"))
	}
	return true, ctx.Err()
}

// extractReshape reads the target shape attribute of opset 1 to 4. Later
// opsets take it as the second input. A zero dimension copies the input
// dimension unless allowzero (opset 14) is set.
func extractReshape(ctx *frontend.Context) (bool, error) {
	if opset(ctx) < 5 {
		ctx.Set("shape", ctx.RequireInts("shape"))
	}
	ctx.Set("special_zero", ctx.Int("allowzero", 0) == 0)
	return true, ctx.Err()
}

// extractTranspose: a missing perm reverses the dimensions.
func extractTranspose(ctx *frontend.Context) (bool, error) {
	ctx.Copy("perm", "order", frontend.AttrInts, nil)
	return true, ctx.Err()
}

// extractAxesAttr reads the axes attribute used before opset since; from
// then on axes is an optional input.
func extractAxesAttr(since int64, required bool) frontend.ExtractorFunc {
	return func(ctx *frontend.Context) (bool, error) {
		if opset(ctx) >= since {
			return true, nil
		}
		if required {
			ctx.Set("axes", ctx.RequireInts("axes"))
		} else {
			ctx.Copy("axes", "axes", frontend.AttrInts, nil)
		}
		return true, ctx.Err()
	}
}

func extractFlatten(ctx *frontend.Context) (bool, error) {
	ctx.Set("axis", ctx.Int("axis", 1))
	return true, ctx.Err()
}

func extractGather(ctx *frontend.Context) (bool, error) {
	ctx.Set("axis", ctx.Int("axis", 0))
	return true, ctx.Err()
}
