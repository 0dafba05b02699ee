package tf

import (
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

type msg []byte

func (m msg) str(num protowire.Number, s string) msg {
	m = protowire.AppendTag(m, num, protowire.BytesType)
	return protowire.AppendString(m, s)
}

func (m msg) sub(num protowire.Number, s msg) msg {
	m = protowire.AppendTag(m, num, protowire.BytesType)
	return protowire.AppendBytes(m, s)
}

func (m msg) varint(num protowire.Number, v int64) msg {
	m = protowire.AppendTag(m, num, protowire.VarintType)
	return protowire.AppendVarint(m, uint64(v))
}

func (m msg) float(num protowire.Number, v float32) msg {
	m = protowire.AppendTag(m, num, protowire.Fixed32Type)
	return protowire.AppendFixed32(m, math.Float32bits(v))
}

func (m msg) packed(num protowire.Number, vs ...int64) msg {
	var b []byte
	for _, v := range vs {
		b = protowire.AppendVarint(b, uint64(v))
	}
	return m.sub(num, b)
}

type attr struct {
	name  string
	value msg
}

func nodeDef(name, op string, inputs []string, attrs ...attr) msg {
	m := msg(nil).str(1, name).str(2, op)
	for _, in := range inputs {
		m = m.str(3, in)
	}
	for _, a := range attrs {
		m = m.sub(5, msg(nil).str(1, a.name).sub(2, a.value))
	}
	return m
}

func typeAttr(name string, dt int64) attr { return attr{name, msg(nil).varint(6, dt)} }
func intAttr(name string, v int64) attr   { return attr{name, msg(nil).varint(3, v)} }
func boolAttr(name string, v bool) attr {
	b := int64(0)
	if v {
		b = 1
	}
	return attr{name, msg(nil).varint(5, b)}
}
func stringAttr(name, v string) attr { return attr{name, msg(nil).str(2, v)} }

func floatAttr(name string, v float32) attr { return attr{name, msg(nil).float(4, v)} }
func intsAttr(name string, vs ...int64) attr {
	return attr{name, msg(nil).sub(1, msg(nil).packed(3, vs...))}
}

func shapeMsg(dims ...int64) msg {
	var m msg
	for _, d := range dims {
		m = m.sub(2, msg(nil).varint(1, d))
	}
	return m
}

func shapeAttr(name string, dims ...int64) attr { return attr{name, msg(nil).sub(7, shapeMsg(dims...))} }

func tensorAttr(name string, t msg) attr { return attr{name, msg(nil).sub(8, t)} }

func int32Tensor(dims []int64, vs ...int64) msg {
	return msg(nil).varint(1, DTInt32).sub(2, shapeMsg(dims...)).packed(7, vs...)
}

func floatTensor(dims []int64, v float32) msg {
	var b []byte
	b = protowire.AppendFixed32(b, math.Float32bits(v))
	return msg(nil).varint(1, DTFloat).sub(2, shapeMsg(dims...)).sub(5, b)
}

// denseGraph is x -> MatMul(W) -> Relu -> Softmax, plus a ConcatV2 of the
// softmax output with itself along a constant axis.
func denseGraph() []byte {
	return msg(nil).
		sub(1, nodeDef("x", "Placeholder", nil, typeAttr("dtype", DTFloat), shapeAttr("shape", -1, 4))).
		sub(1, nodeDef("W", "Const", nil, typeAttr("dtype", DTFloat), tensorAttr("value", floatTensor([]int64{4, 2}, 0.5)))).
		sub(1, nodeDef("dense/MatMul", "MatMul", []string{"x", "W:0"}, boolAttr("transpose_b", false))).
		sub(1, nodeDef("dense/Relu", "Relu", []string{"dense/MatMul", "^W"})).
		sub(1, nodeDef("probs", "Softmax", []string{"dense/Relu"})).
		sub(1, nodeDef("axis", "Const", nil, typeAttr("dtype", DTInt32), tensorAttr("value", int32Tensor(nil, 1)))).
		sub(1, nodeDef("concat", "ConcatV2", []string{"probs", "probs", "axis"}, intAttr("N", 2))).
		sub(4, msg(nil).varint(1, 27))
}
