package tf

import (
	"fmt"
	"strings"

	"github.com/born-ml/bornir/internal/frontend"
)

// spatialOf picks the spatial entries of a per-dimension attribute laid out
// like the data (NHWC or NCHW).
func spatialOf(v []int64, layout string) []int64 {
	if len(v) != 4 {
		return v
	}
	if strings.HasPrefix(layout, "NC") {
		return v[2:]
	}
	return v[1:3]
}

// window reads strides and padding shared by convolution and pooling.
func window(ctx *frontend.Context, layout string) {
	ctx.Set("strides", spatialOf(ctx.RequireInts("strides"), layout))
	padding := ctx.RequireString("padding")
	if ctx.Err() != nil {
		return
	}
	zero := []int64{0, 0}
	switch padding {
	case "SAME":
		ctx.Set("auto_pad", "same_upper")
		ctx.Set("pads_begin", zero)
		ctx.Set("pads_end", zero)
	case "VALID":
		ctx.Set("auto_pad", "explicit")
		ctx.Set("pads_begin", zero)
		ctx.Set("pads_end", zero)
	case "EXPLICIT":
		// explicit_paddings holds a (begin, end) pair per data dimension.
		pads := ctx.RequireInts("explicit_paddings")
		if ctx.Err() != nil {
			return
		}
		if len(pads) != 8 {
			ctx.Fail(&frontend.InvalidAttributeError{
				Node: ctx.Raw.Name(), Attr: "explicit_paddings", Want: frontend.AttrInts, Got: frontend.AttrInts,
				Details: fmt.Sprintf("want 8 values, got %d", len(pads)),
			})
			return
		}
		begin := make([]int64, 4)
		end := make([]int64, 4)
		for i := range 4 {
			begin[i], end[i] = pads[2*i], pads[2*i+1]
		}
		ctx.Set("auto_pad", "explicit")
		ctx.Set("pads_begin", spatialOf(begin, layout))
		ctx.Set("pads_end", spatialOf(end, layout))
	default:
		ctx.Fail(&frontend.InvalidAttributeError{
			Node: ctx.Raw.Name(), Attr: "padding", Want: frontend.AttrString, Got: frontend.AttrString,
			Details: fmt.Sprintf("unknown padding %q", padding),
		})
	}
}

// setLayout records a data layout other than the canonical NCHW.
func setLayout(ctx *frontend.Context) string {
	layout := ctx.String("data_format", "NHWC")
	if layout != "NCHW" {
		ctx.Set("data_format", layout)
	}
	return layout
}

// extractConv2D: TensorFlow filters are HWIO whatever the data layout.
func extractConv2D(ctx *frontend.Context) (bool, error) {
	layout := setLayout(ctx)
	ctx.Set("weights_layout", "HWIO")
	window(ctx, layout)
	ctx.Set("dilations", spatialOf(ctx.Ints("dilations", []int64{1, 1, 1, 1}), layout))
	return true, ctx.Err()
}

// extractPool: TensorFlow average pooling never counts padded elements.
func extractPool(avg bool) frontend.ExtractorFunc {
	return func(ctx *frontend.Context) (bool, error) {
		layout := setLayout(ctx)
		ctx.Set("kernel_shape", spatialOf(ctx.RequireInts("ksize"), layout))
		window(ctx, layout)
		ctx.Set("rounding_type", "floor")
		if avg {
			ctx.Set("exclude_pad", true)
		}
		return true, ctx.Err()
	}
}
