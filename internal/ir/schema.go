package ir

import (
	"fmt"
	"slices"
	"sync"
)

// Variadic is the Max arity of operators accepting any number of inputs.
const Variadic = -1

// Arity is the accepted number of connected inputs of an operator.
type Arity struct {
	Min int
	Max int
}

// Accepts reports whether n inputs satisfy the arity.
func (a Arity) Accepts(n int) bool {
	return n >= a.Min && (a.Max == Variadic || n <= a.Max)
}

// String formats the arity as "1", "1..3" or "1..".
func (a Arity) String() string {
	switch {
	case a.Min == a.Max:
		return fmt.Sprint(a.Min)
	case a.Max == Variadic:
		return fmt.Sprintf("%d..", a.Min)
	default:
		return fmt.Sprintf("%d..%d", a.Min, a.Max)
	}
}

// Canonical operator names.
const (
	OpParameter  = "Parameter"
	OpConst      = "Const"
	OpResult     = "Result"
	OpIdentity   = "Identity"
	OpSoftmax    = "Softmax"
	OpLogSoftmax = "LogSoftmax"
	OpSigmoid    = "Sigmoid"
	OpRelu       = "Relu"
	OpTanh       = "Tanh"
	OpElu        = "Elu"
	OpLeakyRelu  = "LeakyRelu"
	OpClamp      = "Clamp"
	OpAdd        = "Add"
	OpSubtract   = "Subtract"
	OpMultiply   = "Multiply"
	OpDivide     = "Divide"
	OpMaximum    = "Maximum"
	OpMinimum    = "Minimum"
	OpLogicalAnd = "LogicalAnd"
	OpSelect     = "Select"
	OpMatMul     = "MatMul"
	OpConcat     = "Concat"
	OpReshape    = "Reshape"
	OpTranspose  = "Transpose"
	OpSqueeze    = "Squeeze"
	OpUnsqueeze  = "Unsqueeze"
	OpFlatten    = "Flatten"
	OpGather     = "Gather"
	OpConv       = "Convolution"
	OpMaxPool    = "MaxPool"
	OpAvgPool    = "AvgPool"
	OpReduceSum  = "ReduceSum"
	OpReduceMean = "ReduceMean"
	OpReduceMax  = "ReduceMax"
	OpReduceL2   = "ReduceL2"
	OpNonZero    = "NonZero"
	OpInterp     = "Interpolate"
	OpConvert    = "Convert"
)

var (
	schemaMu sync.RWMutex
	schema   = map[string]Arity{
		OpParameter:  {0, 0},
		OpConst:      {0, 0},
		OpResult:     {1, 1},
		OpIdentity:   {1, 1},
		OpSoftmax:    {1, 1},
		OpLogSoftmax: {1, 1},
		OpSigmoid:    {1, 1},
		OpRelu:       {1, 1},
		OpTanh:       {1, 1},
		OpElu:        {1, 1},
		OpLeakyRelu:  {1, 1},
		OpClamp:      {1, 3},
		OpAdd:        {2, 2},
		OpSubtract:   {2, 2},
		OpMultiply:   {2, 2},
		OpDivide:     {2, 2},
		OpMaximum:    {1, Variadic}, // elementwise extremum over every input
		OpMinimum:    {1, Variadic},
		OpLogicalAnd: {2, 2},
		OpSelect:     {3, 3},
		OpMatMul:     {2, 3},
		OpConcat:     {1, Variadic},
		OpReshape:    {1, 2},
		OpTranspose:  {1, 2},
		OpSqueeze:    {1, 2},
		OpUnsqueeze:  {1, 2},
		OpFlatten:    {1, 1},
		OpGather:     {2, 3},
		OpConv:       {2, 3},
		OpMaxPool:    {1, 1},
		OpAvgPool:    {1, 1},
		OpReduceSum:  {1, 2},
		OpReduceMean: {1, 2},
		OpReduceMax:  {1, 2},
		OpReduceL2:   {1, 2},
		OpNonZero:    {1, 1},
		OpInterp:     {1, 4},
		OpConvert:    {1, 1},
	}
)

// Lookup returns the arity of a canonical operator.
func Lookup(op string) (Arity, bool) {
	schemaMu.RLock()
	defer schemaMu.RUnlock()
	a, ok := schema[op]
	return a, ok
}

// Define adds a canonical operator for extension handlers.
// Redefining an operator with a different arity is an error.
func Define(op string, a Arity) error {
	schemaMu.Lock()
	defer schemaMu.Unlock()
	if old, ok := schema[op]; ok && old != a {
		return fmt.Errorf("operator %s already defined with arity %s", op, old)
	}
	schema[op] = a
	return nil
}

// Ops returns all canonical operator names, sorted.
func Ops() []string {
	schemaMu.RLock()
	defer schemaMu.RUnlock()
	ops := make([]string, 0, len(schema))
	for op := range schema {
		ops = append(ops, op)
	}
	slices.Sort(ops)
	return ops
}
