package mxnet

import (
	"fmt"
	"slices"

	"github.com/born-ml/bornir/internal/frontend"
	"github.com/born-ml/bornir/internal/ir"
)

func register(op, canonical string, fn frontend.ExtractorFunc) {
	if fn == nil {
		fn = func(*frontend.Context) (bool, error) { return true, nil }
	}
	frontend.MustRegister(Format, op, frontend.Handler{Op: canonical, Extractor: fn})
}

func init() {
	register("null", ir.OpParameter, extractVariable)

	register("softmax", ir.OpSoftmax, extractSoftmax)
	register("log_softmax", ir.OpLogSoftmax, extractSoftmax)
	register("SoftmaxActivation", ir.OpSoftmax, extractSoftmaxActivation)
	register("SoftmaxOutput", ir.OpSoftmax, extractSoftmaxOutput)

	register("Activation/relu", ir.OpRelu, nil)
	register("Activation/sigmoid", ir.OpSigmoid, nil)
	register("Activation/tanh", ir.OpTanh, nil)
	register("relu", ir.OpRelu, nil)
	register("sigmoid", ir.OpSigmoid, nil)
	register("tanh", ir.OpTanh, nil)
	register("LeakyReLU/leaky", ir.OpLeakyRelu, extractLeaky)
	register("LeakyReLU/elu", ir.OpElu, extractElu)
	register("clip", ir.OpClamp, extractClip)

	for _, op := range []string{"elemwise_add", "_plus", "_Plus"} {
		register(op, ir.OpAdd, noBroadcast)
	}
	register("elemwise_sub", ir.OpSubtract, noBroadcast)
	register("_minus", ir.OpSubtract, noBroadcast)
	register("elemwise_mul", ir.OpMultiply, noBroadcast)
	register("_mul", ir.OpMultiply, noBroadcast)
	register("elemwise_div", ir.OpDivide, noBroadcast)
	register("_div", ir.OpDivide, noBroadcast)
	register("_maximum", ir.OpMaximum, noBroadcast)
	register("_minimum", ir.OpMinimum, noBroadcast)
	register("broadcast_add", ir.OpAdd, nil)
	register("broadcast_sub", ir.OpSubtract, nil)
	register("broadcast_mul", ir.OpMultiply, nil)
	register("broadcast_div", ir.OpDivide, nil)
	register("broadcast_maximum", ir.OpMaximum, nil)
	register("broadcast_minimum", ir.OpMinimum, nil)
	register("broadcast_logical_and", ir.OpLogicalAnd, nil)

	register("FullyConnected", ir.OpMatMul, extractFullyConnected)
	register("Convolution", ir.OpConv, extractConvolution)
	register("Pooling/max", ir.OpMaxPool, extractPooling(false))
	register("Pooling/avg", ir.OpAvgPool, extractPooling(true))

	register("Concat", ir.OpConcat, extractConcat)
	register("concat", ir.OpConcat, extractConcat)
	register("Reshape", ir.OpReshape, extractReshape)
	register("transpose", ir.OpTranspose, extractTranspose)
	register("Flatten", ir.OpFlatten, extractFlatten)
	register("expand_dims", ir.OpUnsqueeze, extractExpandDims)
	register("sum", ir.OpReduceSum, extractReduce)
	register("mean", ir.OpReduceMean, extractReduce)
	register("max", ir.OpReduceMax, extractReduce)
	register("Cast", ir.OpConvert, extractCast)
}

// dataType maps MXNet dtype names and numeric type flags to IR types.
func dataType(s string) (ir.DataType, error) {
	switch s {
	case "float32", "0":
		return ir.Float32, nil
	case "float64", "1":
		return ir.Float64, nil
	case "float16", "2":
		return ir.Float16, nil
	case "uint8", "3":
		return ir.Uint8, nil
	case "int32", "4":
		return ir.Int32, nil
	case "int8", "5":
		return ir.Int8, nil
	case "int64", "6":
		return ir.Int64, nil
	case "bool", "7":
		return ir.Bool, nil
	}
	return ir.Undefined, fmt.Errorf("unknown MXNet dtype %q", s)
}

func readDType(ctx *frontend.Context, name, def string) ir.DataType {
	s := ctx.String(name, def)
	if ctx.Err() != nil {
		return ir.Undefined
	}
	dt, err := dataType(s)
	if err != nil {
		ctx.Fail(&frontend.InvalidAttributeError{
			Node: ctx.Raw.Name(), Attr: name, Want: frontend.AttrDType, Got: frontend.AttrString, Details: err.Error(),
		})
	}
	return dt
}

// extractVariable reads the optional __dtype__ and __shape__ annotations of
// a variable. A zero dimension in __shape__ is unknown.
func extractVariable(ctx *frontend.Context) (bool, error) {
	ctx.Set("element_type", readDType(ctx, "__dtype__", "float32"))
	if shape := slices.Clone(ctx.Ints("__shape__", nil)); shape != nil {
		for i, d := range shape {
			if d == 0 {
				shape[i] = ir.Dynamic
			}
		}
		ctx.Set("shape", shape)
	}
	return true, ctx.Err()
}

func extractSoftmax(ctx *frontend.Context) (bool, error) {
	ctx.Set("axis", ctx.Int("axis", -1))
	return true, ctx.Err()
}

// extractSoftmaxActivation: channel mode normalizes over axis 1 alone,
// instance mode over everything after the batch dimension.
func extractSoftmaxActivation(ctx *frontend.Context) (bool, error) {
	ctx.Set("axis", int64(1))
	if ctx.String("mode", "instance") != "channel" {
		ctx.Set(frontend.FlattenTo2DAttr, true)
	}
	return true, ctx.Err()
}

// extractSoftmaxOutput: multi_output normalizes over axis 1 alone and
// preserve_shape over the last axis. Otherwise the input is reshaped to
// (batch, -1) first.
func extractSoftmaxOutput(ctx *frontend.Context) (bool, error) {
	switch {
	case ctx.Bool("multi_output", false):
		ctx.Set("axis", int64(1))
	case ctx.Bool("preserve_shape", false):
		ctx.Set("axis", int64(-1))
	default:
		ctx.Set("axis", int64(1))
		ctx.Set(frontend.FlattenTo2DAttr, true)
	}
	return true, ctx.Err()
}

func extractLeaky(ctx *frontend.Context) (bool, error) {
	ctx.Set("negative_slope", ctx.Float("slope", 0.25))
	return true, ctx.Err()
}

func extractElu(ctx *frontend.Context) (bool, error) {
	ctx.Set("alpha", ctx.Float("slope", 0.25))
	return true, ctx.Err()
}

func extractClip(ctx *frontend.Context) (bool, error) {
	ctx.Set("min", requireFloat(ctx, "a_min"))
	ctx.Set("max", requireFloat(ctx, "a_max"))
	return true, ctx.Err()
}

func requireFloat(ctx *frontend.Context, name string) float64 {
	if !ctx.Has(name) {
		ctx.Fail(&frontend.MissingAttributeError{Node: ctx.Raw.Name(), Op: ctx.Op, Attr: name})
		return 0
	}
	return ctx.Float(name, 0)
}

// noBroadcast marks the elemwise_* family, which requires equal shapes.
func noBroadcast(ctx *frontend.Context) (bool, error) {
	ctx.Set("auto_broadcast", "none")
	return true, nil
}

// extractFullyConnected: the weight is stored [num_hidden, input], so the
// product uses it transposed. flatten collapses trailing input dimensions.
func extractFullyConnected(ctx *frontend.Context) (bool, error) {
	ctx.Set("transpose_a", false)
	ctx.Set("transpose_b", true)
	ctx.Set("num_hidden", ctx.RequireInt("num_hidden"))
	ctx.Set("flatten", ctx.Bool("flatten", true))
	return true, ctx.Err()
}

func extractConvolution(ctx *frontend.Context) (bool, error) {
	kernel := ctx.RequireInts("kernel")
	if ctx.Err() != nil {
		return true, ctx.Err()
	}
	ctx.Set("kernel_shape", kernel)
	window(ctx, len(kernel))
	ctx.Set("dilations", orOnes(ctx.Ints("dilate", nil), len(kernel)))
	ctx.Set("group", ctx.Int("num_group", 1))
	return true, ctx.Err()
}

// window reads stride and the symmetric pad of convolution and pooling.
func window(ctx *frontend.Context, rank int) {
	ctx.Set("strides", orOnes(ctx.Ints("stride", nil), rank))
	pad := ctx.Ints("pad", nil)
	if len(pad) == 0 {
		pad = make([]int64, rank)
	}
	ctx.Set("pads_begin", pad)
	ctx.Set("pads_end", pad)
	ctx.Set("auto_pad", "explicit")
}

func orOnes(v []int64, rank int) []int64 {
	if len(v) > 0 {
		return v
	}
	v = make([]int64, rank)
	for i := range v {
		v[i] = 1
	}
	return v
}

// extractPooling: "full" pooling convention rounds output sizes up.
// global_pool ignores the kernel, which then may be absent.
func extractPooling(avg bool) frontend.ExtractorFunc {
	return func(ctx *frontend.Context) (bool, error) {
		global := ctx.Bool("global_pool", false)
		var kernel []int64
		if global {
			kernel = ctx.Ints("kernel", nil)
			ctx.Set("global_pool", true)
		} else {
			kernel = ctx.RequireInts("kernel")
		}
		if ctx.Err() != nil {
			return true, ctx.Err()
		}
		if kernel != nil {
			ctx.Set("kernel_shape", kernel)
		}
		window(ctx, len(kernel))
		if ctx.String("pooling_convention", "valid") == "full" {
			ctx.Set("rounding_type", "ceil")
		} else {
			ctx.Set("rounding_type", "floor")
		}
		if avg {
			ctx.Set("exclude_pad", !ctx.Bool("count_include_pad", true))
		}
		return true, ctx.Err()
	}
}

func extractConcat(ctx *frontend.Context) (bool, error) {
	ctx.Set("axis", ctx.Int("dim", 1))
	return true, ctx.Err()
}

// extractReshape: MXNet special values (0, -1, -2, -3, -4) are kept
// verbatim; 0 copies the input dimension.
func extractReshape(ctx *frontend.Context) (bool, error) {
	ctx.Set("shape", ctx.RequireInts("shape"))
	ctx.Set("special_zero", true)
	return true, ctx.Err()
}

func extractTranspose(ctx *frontend.Context) (bool, error) {
	if axes := ctx.Ints("axes", nil); len(axes) > 0 {
		ctx.Set("order", axes)
	}
	return true, ctx.Err()
}

func extractFlatten(ctx *frontend.Context) (bool, error) {
	ctx.Set("axis", int64(1))
	return true, nil
}

func extractExpandDims(ctx *frontend.Context) (bool, error) {
	ctx.Set("axes", []int64{ctx.RequireInt("axis")})
	return true, ctx.Err()
}

// extractReduce: an absent axis reduces over every dimension.
func extractReduce(ctx *frontend.Context) (bool, error) {
	if axes := ctx.Ints("axis", nil); len(axes) > 0 {
		ctx.Set("axes", axes)
	}
	ctx.Set("keep_dims", ctx.Bool("keepdims", false))
	if ctx.Bool("exclude", false) {
		ctx.Set("exclude", true)
	}
	return true, ctx.Err()
}

func extractCast(ctx *frontend.Context) (bool, error) {
	if !ctx.Has("dtype") {
		return true, &frontend.MissingAttributeError{Node: ctx.Raw.Name(), Op: ctx.Op, Attr: "dtype"}
	}
	ctx.Set("destination_type", readDType(ctx, "dtype", ""))
	return true, ctx.Err()
}
