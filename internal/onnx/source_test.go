package onnx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/bornir/internal/builder"
	"github.com/born-ml/bornir/internal/frontend"
	"github.com/born-ml/bornir/internal/ir"
)

func TestSource(t *testing.T) {
	model, err := Parse(convModel(13))
	require.NoError(t, err)
	src, err := Source(model)
	require.NoError(t, err)

	assert.Equal(t, Format, src.Format)
	require.Len(t, src.Inputs, 1, "initializers listed as inputs are constants")
	assert.Equal(t, ir.TensorInfo{Name: "input", DType: ir.Float32, Shape: ir.Shape{ir.Dynamic, 3, 32, 32}}, src.Inputs[0])
	assert.Equal(t, []string{"output"}, src.Outputs)

	require.Len(t, src.Nodes, 4)
	assert.Equal(t, "Constant", src.Nodes[0].OpType())
	assert.Equal(t, []string{"W"}, src.Nodes[0].Outputs())
}

func TestBuildConvModel(t *testing.T) {
	model, err := Parse(convModel(13))
	require.NoError(t, err)
	src, err := Source(model)
	require.NoError(t, err)

	g, report, err := builder.New(frontend.Default).Build(context.Background(), src)
	require.NoError(t, err)
	require.False(t, report.HasErrors(), report.String())

	conv := g.Node("conv")
	require.NotNil(t, conv)
	assert.Equal(t, ir.OpConv, conv.Type)
	assert.Equal(t, []int64{1, 1}, conv.Attrs["pads_begin"])

	w := g.Node("W")
	require.NotNil(t, w)
	assert.Equal(t, ir.Shape{8, 3, 3, 3}, w.Shape)
	assert.NotNil(t, w.Value)

	in := g.InEdges("conv")
	require.Len(t, in, 2)
	assert.Equal(t, "input", in[0].From)
	assert.Equal(t, "W", in[1].From)

	assert.Equal(t, int64(-1), g.Node("softmax").Attrs["axis"])
	assert.Equal(t, ir.Float32, g.Node("output").DType)
	assert.Equal(t, ir.OpResult, g.Node("output/result").Type)
}

func TestBuildSoftmaxLegacyOpset(t *testing.T) {
	model, err := Parse(convModel(11))
	require.NoError(t, err)
	src, err := Source(model)
	require.NoError(t, err)

	g, _, err := builder.New(frontend.Default).Build(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, int64(1), g.Node("softmax").Attrs["axis"])
	assert.Equal(t, true, g.Node("softmax").Attrs["flatten_to_2d"])
}

func TestBuildVariadicMax(t *testing.T) {
	graph := msg(nil).
		str(2, "extremum").
		sub(1, nodeMsg("max3", "Max", []string{"a", "b", "c"}, []string{"m3"})).
		sub(1, nodeMsg("max1", "Max", []string{"m3"}, []string{"y"})).
		sub(11, valueInfoMsg("a", TensorProtoFloat, 2, 3)).
		sub(11, valueInfoMsg("b", TensorProtoFloat, 2, 3)).
		sub(11, valueInfoMsg("c", TensorProtoFloat, 1, 3)).
		sub(12, valueInfoMsg("y", TensorProtoFloat, 2, 3))
	model, err := Parse(modelMsg(13, graph))
	require.NoError(t, err)
	src, err := Source(model)
	require.NoError(t, err)

	g, report, err := builder.New(frontend.Default).Build(context.Background(), src)
	require.NoError(t, err)
	assert.False(t, report.HasErrors(), report.String())
	assert.Len(t, g.InEdges("max3"), 3)
	assert.Len(t, g.InEdges("max1"), 1)
	assert.Equal(t, ir.OpMaximum, g.Node("max1").Type)
	assert.NoError(t, g.Validate())
}

func TestBuildUnsupportedNode(t *testing.T) {
	graph := msg(nil).
		sub(1, nodeMsg("lstm", "LSTM", []string{"x"}, []string{"h"})).
		sub(1, nodeMsg("relu", "Relu", []string{"h"}, []string{"y"})).
		sub(11, valueInfoMsg("x", TensorProtoFloat, 1, 4)).
		sub(12, valueInfoMsg("y", TensorProtoFloat, 1, 4))
	model, err := Parse(modelMsg(13, graph))
	require.NoError(t, err)
	src, err := Source(model)
	require.NoError(t, err)

	_, report, err := builder.New(frontend.Default).Build(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Count(frontend.KindUnsupported))
	assert.Equal(t, 1, report.Count(frontend.KindDangling))

	_, _, err = builder.New(frontend.Default, builder.WithStrict(true)).Build(context.Background(), src)
	assert.ErrorIs(t, err, frontend.ErrUnsupportedOperator)
}
