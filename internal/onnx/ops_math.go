package onnx

import (
	"github.com/born-ml/bornir/internal/frontend"
	"github.com/born-ml/bornir/internal/ir"
)

func registerMathOps() {
	register("Add", ir.OpAdd, extractElementwise)
	register("Sub", ir.OpSubtract, extractElementwise)
	register("Mul", ir.OpMultiply, extractElementwise)
	register("Div", ir.OpDivide, extractElementwise)
	register("Max", ir.OpMaximum, extractVariadic)
	register("Min", ir.OpMinimum, extractVariadic)
	register("And", ir.OpLogicalAnd, extractElementwise)
	register("Where", ir.OpSelect, nil)
	register("MatMul", ir.OpMatMul, nil)
}

// extractElementwise maps the pre-opset-7 broadcast flag. From opset 7 ONNX
// broadcasting is always numpy style, which is the policy default.
func extractElementwise(ctx *frontend.Context) (bool, error) {
	if opset(ctx) >= 7 {
		return true, nil
	}
	if ctx.Bool("broadcast", false) {
		ctx.Set("auto_broadcast", "numpy")
		ctx.Copy("axis", "axis", frontend.AttrInt, nil)
	} else {
		ctx.Set("auto_broadcast", "none")
	}
	return true, ctx.Err()
}

// extractVariadic handles Max and Min, which take one or more inputs. Their
// inputs must share a shape until opset 8 added numpy broadcasting.
func extractVariadic(ctx *frontend.Context) (bool, error) {
	if opset(ctx) < 8 {
		ctx.Set("auto_broadcast", "none")
	}
	return true, nil
}
