package onnx

import (
	"github.com/born-ml/bornir/internal/frontend"
	"github.com/born-ml/bornir/internal/ir"
)

func registerResizeOps() {
	register("Upsample", ir.OpInterp, extractUpsample)
	register("Resize", ir.OpInterp, extractResize)
}

// interpMode maps ONNX interpolation names to canonical modes.
func interpMode(mode string) string {
	switch mode {
	case "bilinear", "linear":
		return "linear"
	case "cubic", "bicubic":
		return "cubic"
	default:
		return "nearest"
	}
}

// extractUpsample covers the three Upsample revisions: opset 1 has
// height_scale and width_scale, opset 7 a scales list, and opset 9 takes
// scales as the second input.
func extractUpsample(ctx *frontend.Context) (bool, error) {
	ctx.Set("mode", interpMode(ctx.String("mode", "nearest")))
	switch v := opset(ctx); {
	case v < 7:
		h := ctx.Float("height_scale", 1)
		w := ctx.Float("width_scale", 1)
		ctx.Set("scales", []float64{1, 1, h, w})
	case v < 9:
		ctx.Copy("scales", "scales", frontend.AttrFloats, nil)
	}
	ctx.Set("shape_calculation_mode", "scales")
	return true, ctx.Err()
}

// extractResize: scales and sizes are inputs in every revision.
func extractResize(ctx *frontend.Context) (bool, error) {
	ctx.Set("mode", interpMode(ctx.String("mode", "nearest")))
	if opset(ctx) >= 11 {
		ctx.Set("coordinate_transformation_mode",
			ctx.String("coordinate_transformation_mode", "half_pixel"))
		ctx.Set("nearest_mode", ctx.String("nearest_mode", "round_prefer_floor"))
		ctx.Set("cube_coeff", ctx.Float("cubic_coeff_a", -0.75))
	} else {
		ctx.Set("coordinate_transformation_mode", "asymmetric")
	}
	return true, ctx.Err()
}
