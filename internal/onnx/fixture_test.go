package onnx

import (
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// msg builds wire-format fixtures field by field.
type msg []byte

func (m msg) str(num protowire.Number, s string) msg {
	m = protowire.AppendTag(m, num, protowire.BytesType)
	return protowire.AppendString(m, s)
}

func (m msg) bytes(num protowire.Number, b []byte) msg {
	m = protowire.AppendTag(m, num, protowire.BytesType)
	return protowire.AppendBytes(m, b)
}

func (m msg) varint(num protowire.Number, v int64) msg {
	m = protowire.AppendTag(m, num, protowire.VarintType)
	return protowire.AppendVarint(m, uint64(v))
}

func (m msg) float(num protowire.Number, v float32) msg {
	m = protowire.AppendTag(m, num, protowire.Fixed32Type)
	return protowire.AppendFixed32(m, math.Float32bits(v))
}

func (m msg) sub(num protowire.Number, s msg) msg {
	return m.bytes(num, s)
}

func (m msg) packed(num protowire.Number, vs ...int64) msg {
	var b []byte
	for _, v := range vs {
		b = protowire.AppendVarint(b, uint64(v))
	}
	return m.bytes(num, b)
}

func (m msg) packedFloats(num protowire.Number, vs ...float32) msg {
	var b []byte
	for _, v := range vs {
		b = protowire.AppendFixed32(b, math.Float32bits(v))
	}
	return m.bytes(num, b)
}

func modelMsg(opset int64, graph msg) msg {
	return msg(nil).
		varint(1, 8).
		str(2, "pytorch").
		sub(7, graph).
		sub(8, msg(nil).str(1, "").varint(2, opset))
}

func nodeMsg(name, op string, inputs, outputs []string, attrs ...msg) msg {
	var m msg
	for _, in := range inputs {
		m = m.str(1, in)
	}
	for _, out := range outputs {
		m = m.str(2, out)
	}
	m = m.str(3, name).str(4, op)
	for _, a := range attrs {
		m = m.sub(5, a)
	}
	return m
}

func intAttr(name string, v int64) msg {
	return msg(nil).str(1, name).varint(3, v).varint(20, AttributeProtoInt)
}

func intsAttr(name string, vs ...int64) msg {
	return msg(nil).str(1, name).packed(8, vs...).varint(20, AttributeProtoInts)
}

func floatAttr(name string, v float32) msg {
	return msg(nil).str(1, name).float(2, v).varint(20, AttributeProtoFloat)
}

func stringAttr(name, v string) msg {
	return msg(nil).str(1, name).str(4, v).varint(20, AttributeProtoString)
}

func floatTensorMsg(name string, dims []int64, vs ...float32) msg {
	raw := make([]byte, 0, 4*len(vs))
	for _, v := range vs {
		raw = protowire.AppendFixed32(raw, math.Float32bits(v))
	}
	return msg(nil).packed(1, dims...).varint(2, TensorProtoFloat).str(8, name).bytes(9, raw)
}

// valueInfoMsg encodes a tensor value info. A negative dim is symbolic.
func valueInfoMsg(name string, elem int64, dims ...int64) msg {
	var shape msg
	for _, d := range dims {
		if d < 0 {
			shape = shape.sub(1, msg(nil).str(2, "batch"))
		} else {
			shape = shape.sub(1, msg(nil).varint(1, d))
		}
	}
	tensorType := msg(nil).varint(1, elem).sub(2, shape)
	return msg(nil).str(1, name).sub(2, msg(nil).sub(1, tensorType))
}

// convModel is input -> Conv(weights) -> Relu -> Softmax -> output.
func convModel(opset int64) []byte {
	weights := make([]float32, 8*3*3*3)
	graph := msg(nil).
		str(2, "convnet").
		sub(1, nodeMsg("conv", "Conv", []string{"input", "W"}, []string{"conv_out"},
			intsAttr("kernel_shape", 3, 3), intsAttr("pads", 1, 1, 1, 1), intsAttr("strides", 1, 1))).
		sub(1, nodeMsg("relu", "Relu", []string{"conv_out"}, []string{"relu_out"})).
		sub(1, nodeMsg("softmax", "Softmax", []string{"relu_out"}, []string{"output"})).
		sub(5, floatTensorMsg("W", []int64{8, 3, 3, 3}, weights...)).
		sub(11, valueInfoMsg("input", TensorProtoFloat, -1, 3, 32, 32)).
		sub(11, valueInfoMsg("W", TensorProtoFloat, 8, 3, 3, 3)).
		sub(12, valueInfoMsg("output", TensorProtoFloat, -1, 8, 32, 32))
	return modelMsg(opset, graph)
}
