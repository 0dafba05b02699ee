package onnx

import (
	"fmt"
	"strings"

	"github.com/born-ml/bornir/internal/frontend"
	"github.com/born-ml/bornir/internal/ir"
)

func registerNNOps() {
	register("Conv", ir.OpConv, extractConv)
	register("MaxPool", ir.OpMaxPool, extractPool(false))
	register("AveragePool", ir.OpAvgPool, extractPool(true))
}

// autoPad maps the ONNX auto_pad attribute to the canonical padding mode.
// VALID is explicit zero padding when the rank is known.
func autoPad(ctx *frontend.Context, rank int) {
	mode := ctx.String("auto_pad", "NOTSET")
	switch strings.ToUpper(mode) {
	case "NOTSET", "":
		ctx.Set("auto_pad", "explicit")
	case "SAME_UPPER":
		ctx.Set("auto_pad", "same_upper")
	case "SAME_LOWER":
		ctx.Set("auto_pad", "same_lower")
	case "VALID":
		if rank == 0 {
			ctx.Set("auto_pad", "valid")
			return
		}
		ctx.Set("auto_pad", "explicit")
		ctx.Set("pads_begin", make([]int64, rank))
		ctx.Set("pads_end", make([]int64, rank))
	default:
		ctx.Fail(&frontend.InvalidAttributeError{
			Node: ctx.Raw.Name(), Attr: "auto_pad", Want: frontend.AttrString, Got: frontend.AttrString,
			Details: fmt.Sprintf("unknown padding mode %q", mode),
		})
	}
}

// spatial reads the per-axis window attributes. ONNX pads are
// [x1_begin, x2_begin, ..., x1_end, x2_end]; they are split into begin and
// end lists. rank is the number of spatial axes, or 0 when unknown; unknown
// rank leaves absent attributes unset.
func spatial(ctx *frontend.Context, rank int) {
	ctx.Copy("strides", "strides", frontend.AttrInts, ones(rank))

	pads := ctx.Ints("pads", nil)
	switch {
	case pads != nil && len(pads)%2 != 0:
		ctx.Fail(&frontend.InvalidAttributeError{
			Node: ctx.Raw.Name(), Attr: "pads", Want: frontend.AttrInts, Got: frontend.AttrInts,
			Details: fmt.Sprintf("odd length %d", len(pads)),
		})
	case pads != nil:
		half := len(pads) / 2
		ctx.Set("pads_begin", pads[:half])
		ctx.Set("pads_end", pads[half:])
	case rank > 0:
		ctx.Set("pads_begin", make([]int64, rank))
		ctx.Set("pads_end", make([]int64, rank))
	}
	autoPad(ctx, rank)
}

// ones is the unit default of a per-axis attribute, or no default when the
// rank is unknown.
func ones(rank int) any {
	if rank == 0 {
		return nil
	}
	v := make([]int64, rank)
	for i := range v {
		v[i] = 1
	}
	return v
}

func extractConv(ctx *frontend.Context) (bool, error) {
	kernel := ctx.Ints("kernel_shape", nil)
	if kernel != nil {
		ctx.Set("kernel_shape", kernel)
	}
	spatial(ctx, len(kernel))
	ctx.Copy("dilations", "dilations", frontend.AttrInts, ones(len(kernel)))
	ctx.Set("group", ctx.Int("group", 1))
	return true, ctx.Err()
}

// extractPool handles MaxPool and AveragePool. kernel_shape is required.
func extractPool(avg bool) frontend.ExtractorFunc {
	return func(ctx *frontend.Context) (bool, error) {
		kernel := ctx.RequireInts("kernel_shape")
		if ctx.Err() != nil {
			return true, ctx.Err()
		}
		ctx.Set("kernel_shape", kernel)
		spatial(ctx, len(kernel))
		if ctx.Int("ceil_mode", 0) != 0 {
			ctx.Set("rounding_type", "ceil")
		} else {
			ctx.Set("rounding_type", "floor")
		}
		if avg {
			ctx.Set("exclude_pad", ctx.Int("count_include_pad", 0) == 0)
		} else {
			ctx.Copy("dilations", "dilations", frontend.AttrInts, nil)
		}
		return true, ctx.Err()
	}
}
