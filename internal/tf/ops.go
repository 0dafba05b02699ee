package tf

import (
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
	register("Placeholder", ir.OpParameter, extractPlaceholder)
	register("Const", ir.OpConst, extractConst)
	register("Identity", ir.OpIdentity, nil)
	register("StopGradient", ir.OpIdentity, nil)
	register("Cast", ir.OpConvert, extractCast)

	register("Relu", ir.OpRelu, nil)
	register("Relu6", ir.OpClamp, extractRelu6)
	register("Sigmoid", ir.OpSigmoid, nil)
	register("Tanh", ir.OpTanh, nil)
	register("Elu", ir.OpElu, extractElu)
	register("LeakyRelu", ir.OpLeakyRelu, extractLeakyRelu)
	register("Softmax", ir.OpSoftmax, extractSoftmax)
	register("LogSoftmax", ir.OpLogSoftmax, extractSoftmax)

	for op, canonical := range map[string]string{
		"Add":        ir.OpAdd,
		"AddV2":      ir.OpAdd,
		"Sub":        ir.OpSubtract,
		"Mul":        ir.OpMultiply,
		"RealDiv":    ir.OpDivide,
		"Maximum":    ir.OpMaximum,
		"Minimum":    ir.OpMinimum,
		"LogicalAnd": ir.OpLogicalAnd,
		"Select":     ir.OpSelect,
		"SelectV2":   ir.OpSelect,
	} {
		register(op, canonical, nil)
	}
	register("Where", ir.OpNonZero, nil)

	register("MatMul", ir.OpMatMul, extractMatMul("transpose_a", "transpose_b"))
	register("BatchMatMulV2", ir.OpMatMul, extractMatMul("adj_x", "adj_y"))
	register("Conv2D", ir.OpConv, extractConv2D)
	register("MaxPool", ir.OpMaxPool, extractPool(false))
	register("AvgPool", ir.OpAvgPool, extractPool(true))

	register("Sum", ir.OpReduceSum, extractReduce)
	register("Mean", ir.OpReduceMean, extractReduce)
	register("Max", ir.OpReduceMax, extractReduce)

	register("Reshape", ir.OpReshape, nil)
	register("Transpose", ir.OpTranspose, nil)
	register("Squeeze", ir.OpSqueeze, extractSqueeze)
	register("ExpandDims", ir.OpUnsqueeze, nil)
	register("GatherV2", ir.OpGather, extractGather)
	register("ConcatV2", ir.OpConcat, extractConcat)
}

func extractPlaceholder(ctx *frontend.Context) (bool, error) {
	ctx.Set("element_type", ctx.RequireDType("dtype"))
	ctx.Copy("shape", "shape", frontend.AttrInts, nil)
	return true, ctx.Err()
}

func extractConst(ctx *frontend.Context) (bool, error) {
	ctx.Set("value", ctx.RequireTensor("value"))
	return true, ctx.Err()
}

func extractCast(ctx *frontend.Context) (bool, error) {
	ctx.Set("destination_type", ctx.RequireDType("DstT"))
	return true, ctx.Err()
}

func extractRelu6(ctx *frontend.Context) (bool, error) {
	ctx.Set("min", 0.0)
	ctx.Set("max", 6.0)
	return true, nil
}

func extractElu(ctx *frontend.Context) (bool, error) {
	ctx.Set("alpha", 1.0)
	return true, nil
}

// extractLeakyRelu: TensorFlow's alpha defaults to 0.2.
func extractLeakyRelu(ctx *frontend.Context) (bool, error) {
	ctx.Set("negative_slope", ctx.Float("alpha", 0.2))
	return true, ctx.Err()
}

// extractSoftmax: TensorFlow normalizes over the last dimension.
func extractSoftmax(ctx *frontend.Context) (bool, error) {
	ctx.Set("axis", ctx.Int("axis", -1))
	return true, ctx.Err()
}

func extractMatMul(a, b string) frontend.ExtractorFunc {
	return func(ctx *frontend.Context) (bool, error) {
		ctx.Set("transpose_a", ctx.Bool(a, false))
		ctx.Set("transpose_b", ctx.Bool(b, false))
		return true, ctx.Err()
	}
}

// extractReduce: the reduction axes are the second input. An empty axes
// tensor reduces nothing.
func extractReduce(ctx *frontend.Context) (bool, error) {
	ctx.Set("keep_dims", ctx.Bool("keep_dims", false))
	ctx.Set("noop_with_empty_axes", true)
	return true, ctx.Err()
}

func extractSqueeze(ctx *frontend.Context) (bool, error) {
	if axes := ctx.Ints("squeeze_dims", nil); len(axes) > 0 {
		ctx.Set("axes", axes)
	}
	return true, ctx.Err()
}

// extractGather: axis is the third input of GatherV2.
func extractGather(ctx *frontend.Context) (bool, error) {
	ctx.Set("batch_dims", ctx.Int("batch_dims", 0))
	return true, ctx.Err()
}

// extractConcat reads the axis folded from the trailing constant input.
func extractConcat(ctx *frontend.Context) (bool, error) {
	ctx.Set("axis", ctx.RequireInt("axis"))
	return true, ctx.Err()
}
