package convert_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/born-ml/bornir/convert"
	"github.com/born-ml/bornir/internal/ir"
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

func (m msg) packed(num protowire.Number, vs ...int64) msg {
	var b []byte
	for _, v := range vs {
		b = protowire.AppendVarint(b, uint64(v))
	}
	return m.sub(num, b)
}

// ONNX fixtures.

func onnxInts(name string, vs ...int64) msg {
	return msg(nil).str(1, name).packed(8, vs...).varint(20, 7)
}

func onnxInt(name string, v int64) msg {
	return msg(nil).str(1, name).varint(3, v).varint(20, 2)
}

func onnxValueInfo(name string, elem int64, dims ...int64) msg {
	var shape msg
	for _, d := range dims {
		shape = shape.sub(1, msg(nil).varint(1, d))
	}
	tensorType := msg(nil).varint(1, elem).sub(2, shape)
	return msg(nil).str(1, name).sub(2, msg(nil).sub(1, tensorType))
}

// onnxModel is a single node n reading graph inputs and writing y. An input
// named axes is an int64 vector, every other input a float image batch.
func onnxModel(opset int64, op string, inputs []string, attrs ...msg) []byte {
	node := msg(nil)
	for _, in := range inputs {
		node = node.str(1, in)
	}
	node = node.str(2, "y").str(3, "n").str(4, op)
	for _, a := range attrs {
		node = node.sub(5, a)
	}
	graph := msg(nil).str(2, "g").sub(1, node)
	for _, in := range inputs {
		if in == "axes" {
			graph = graph.sub(11, onnxValueInfo(in, 7, 2))
		} else {
			graph = graph.sub(11, onnxValueInfo(in, 1, 1, 3, 8, 8))
		}
	}
	graph = graph.sub(12, onnxValueInfo("y", 1))
	return msg(nil).varint(1, 8).sub(7, graph).sub(8, msg(nil).str(1, "").varint(2, opset))
}

// TensorFlow fixtures.

func tfAttr(name string, value msg) msg { return msg(nil).str(1, name).sub(2, value) }

func tfType(name string, dt int64) msg { return tfAttr(name, msg(nil).varint(6, dt)) }

func tfString(name, v string) msg { return tfAttr(name, msg(nil).str(2, v)) }

func tfBool(name string) msg { return tfAttr(name, msg(nil).varint(5, 1)) }

func tfInts(name string, vs ...int64) msg {
	return tfAttr(name, msg(nil).sub(1, msg(nil).packed(3, vs...)))
}

func tfNode(name, op string, inputs []string, attrs ...msg) msg {
	m := msg(nil).str(1, name).str(2, op)
	for _, in := range inputs {
		m = m.str(3, in)
	}
	for _, a := range attrs {
		m = m.sub(5, a)
	}
	return m
}

func tfPlaceholder(name string, dt int64) msg {
	return tfNode(name, "Placeholder", nil, tfType("dtype", dt))
}

func tfGraph(nodes ...msg) []byte {
	var g msg
	for _, n := range nodes {
		g = g.sub(1, n)
	}
	return g
}

// mxnetModel is a single op node reading variables named after inputs.
func mxnetModel(op, attrs string, inputs ...string) []byte {
	var nodes, args, refs []string
	for i, in := range inputs {
		nodes = append(nodes, fmt.Sprintf(`{"op": "null", "name": %q, "inputs": []}`, in))
		args = append(args, fmt.Sprint(i))
		refs = append(refs, fmt.Sprintf("[%d, 0, 0]", i))
	}
	nodes = append(nodes, fmt.Sprintf(`{"op": %q, "name": "n", "attrs": {%s}, "inputs": [%s]}`,
		op, attrs, strings.Join(refs, ", ")))
	return []byte(fmt.Sprintf(`{"nodes": [%s], "arg_nodes": [%s], "heads": [[%d, 0, 0]]}`,
		strings.Join(nodes, ", "), strings.Join(args, ", "), len(inputs)))
}

const mxnetSoftmax = `{
  "nodes": [
    {"op": "null", "name": "data", "inputs": []},
    {"op": "softmax", "name": "prob", "inputs": [[0, 0, 0]]}
  ],
  "arg_nodes": [0],
  "heads": [[1, 0, 0]]
}`

func opAttrs(t *testing.T, g *convert.Graph, opType string) ir.Attrs {
	t.Helper()
	for _, op := range g.OpNodes() {
		if op.Type == opType {
			return op.Attrs
		}
	}
	t.Fatalf("graph has no %s operator", opType)
	return nil
}

type model struct {
	format string
	data   []byte
}

func TestFormatAgnosticAttributes(t *testing.T) {
	const (
		dtFloat = 1
		dtInt32 = 3
	)
	tests := []struct {
		name   string
		op     string
		models []model
		want   ir.Attrs
	}{
		{
			name: "softmax",
			op:   ir.OpSoftmax,
			models: []model{
				{convert.FormatONNX, onnxModel(13, "Softmax", []string{"x"})},
				{convert.FormatTF, tfGraph(tfPlaceholder("x", dtFloat), tfNode("probs", "Softmax", []string{"x:0"}))},
				{convert.FormatMXNet, []byte(mxnetSoftmax)},
			},
			want: ir.Attrs{"axis": int64(-1), "flatten_to_2d": false},
		},
		{
			// TensorFlow filters are HWIO, so Conv2D is never equivalent.
			name: "convolution",
			op:   ir.OpConv,
			models: []model{
				{convert.FormatONNX, onnxModel(13, "Conv", []string{"x", "w"},
					onnxInts("kernel_shape", 3, 3), onnxInts("strides", 2, 2), onnxInts("pads", 1, 1, 1, 1))},
				{convert.FormatMXNet, mxnetModel("Convolution",
					`"kernel": "(3, 3)", "stride": "(2, 2)", "pad": "(1, 1)", "num_filter": "8", "no_bias": "True"`, "x", "w")},
			},
			want: ir.Attrs{
				"kernel_shape":   []int64{3, 3},
				"strides":        []int64{2, 2},
				"dilations":      []int64{1, 1},
				"pads_begin":     []int64{1, 1},
				"pads_end":       []int64{1, 1},
				"auto_pad":       "explicit",
				"group":          int64(1),
				"weights_layout": "OIHW",
			},
		},
		{
			name: "max pool",
			op:   ir.OpMaxPool,
			models: []model{
				{convert.FormatONNX, onnxModel(13, "MaxPool", []string{"x"},
					onnxInts("kernel_shape", 2, 2), onnxInts("strides", 2, 2))},
				{convert.FormatTF, tfGraph(tfPlaceholder("x", dtFloat), tfNode("pool", "MaxPool", []string{"x"},
					tfInts("ksize", 1, 1, 2, 2), tfInts("strides", 1, 1, 2, 2),
					tfString("padding", "VALID"), tfString("data_format", "NCHW")))},
				{convert.FormatMXNet, mxnetModel("Pooling", `"pool_type": "max", "kernel": "(2, 2)", "stride": "(2, 2)"`, "x")},
			},
			want: ir.Attrs{
				"kernel_shape":  []int64{2, 2},
				"strides":       []int64{2, 2},
				"pads_begin":    []int64{0, 0},
				"pads_end":      []int64{0, 0},
				"auto_pad":      "explicit",
				"rounding_type": "floor",
			},
		},
		{
			name: "average pool",
			op:   ir.OpAvgPool,
			models: []model{
				{convert.FormatONNX, onnxModel(13, "AveragePool", []string{"x"},
					onnxInts("kernel_shape", 3, 3), onnxInts("strides", 1, 1), onnxInts("pads", 0, 0, 0, 0))},
				{convert.FormatTF, tfGraph(tfPlaceholder("x", dtFloat), tfNode("pool", "AvgPool", []string{"x"},
					tfInts("ksize", 1, 1, 3, 3), tfInts("strides", 1, 1, 1, 1),
					tfString("padding", "VALID"), tfString("data_format", "NCHW")))},
				{convert.FormatMXNet, mxnetModel("Pooling",
					`"pool_type": "avg", "kernel": "(3, 3)", "count_include_pad": "False"`, "x")},
			},
			want: ir.Attrs{
				"kernel_shape":  []int64{3, 3},
				"strides":       []int64{1, 1},
				"pads_begin":    []int64{0, 0},
				"pads_end":      []int64{0, 0},
				"auto_pad":      "explicit",
				"rounding_type": "floor",
				"exclude_pad":   true,
			},
		},
		{
			name: "concat",
			op:   ir.OpConcat,
			models: []model{
				{convert.FormatONNX, onnxModel(13, "Concat", []string{"a", "b"}, onnxInt("axis", 1))},
				{convert.FormatTF, tfGraph(tfPlaceholder("a", dtFloat), tfPlaceholder("b", dtFloat),
					tfNode("axis", "Const", nil, tfType("dtype", dtInt32),
						tfAttr("value", msg(nil).sub(8, msg(nil).varint(1, dtInt32).packed(7, 1)))),
					tfNode("cat", "ConcatV2", []string{"a", "b", "axis"}))},
				{convert.FormatMXNet, mxnetModel("Concat", `"dim": "1", "num_args": "2"`, "a", "b")},
			},
			want: ir.Attrs{"axis": int64(1)},
		},
		{
			name: "reduce mean over attribute axes",
			op:   ir.OpReduceMean,
			models: []model{
				{convert.FormatONNX, onnxModel(13, "ReduceMean", []string{"x"}, onnxInts("axes", 2, 3))},
				{convert.FormatMXNet, mxnetModel("mean", `"axis": "(2, 3)", "keepdims": "True"`, "x")},
			},
			want: ir.Attrs{"axes": []int64{2, 3}, "keep_dims": true, "noop_with_empty_axes": false},
		},
		{
			name: "reduce mean over input axes",
			op:   ir.OpReduceMean,
			models: []model{
				{convert.FormatONNX, onnxModel(18, "ReduceMean", []string{"x", "axes"}, onnxInt("noop_with_empty_axes", 1))},
				{convert.FormatTF, tfGraph(tfPlaceholder("x", dtFloat), tfPlaceholder("axes", dtInt32),
					tfNode("mean", "Mean", []string{"x", "axes"}, tfBool("keep_dims")))},
			},
			want: ir.Attrs{"keep_dims": true, "noop_with_empty_axes": true},
		},
	}

	ctx := context.Background()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, m := range tt.models {
				g, report, err := convert.Bytes(ctx, m.data, convert.Options{Format: m.format, Strict: true})
				require.NoError(t, err, m.format)
				assert.False(t, report.HasErrors(), report.String())
				if diff := cmp.Diff(tt.want, opAttrs(t, g, tt.op)); diff != "" {
					t.Errorf("%s attributes (-want +got):\n%s", m.format, diff)
				}
			}
		})
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{"models/resnet50.onnx", convert.FormatONNX, false},
		{"frozen_graph.pb", convert.FormatTF, false},
		{"RESNET.ONNX", convert.FormatONNX, false},
		{"lenet-symbol.json", convert.FormatMXNet, false},
		{"weights.params", "", true},
		{"model", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := convert.DetectFormat(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prob-symbol.json")
	require.NoError(t, os.WriteFile(path, []byte(mxnetSoftmax), 0o600))

	g, report, err := convert.File(context.Background(), path, convert.Options{})
	require.NoError(t, err)
	assert.False(t, report.HasErrors())
	require.NotNil(t, g.Node("prob"))
	assert.Equal(t, ir.OpSoftmax, g.Node("prob").Type)
}

func TestFileErrors(t *testing.T) {
	ctx := context.Background()

	_, _, err := convert.File(ctx, "model.bin", convert.Options{})
	assert.ErrorContains(t, err, "cannot infer model format")

	_, _, err = convert.File(ctx, filepath.Join(t.TempDir(), "missing.onnx"), convert.Options{})
	assert.ErrorContains(t, err, "failed to read model")

	_, _, err = convert.Bytes(ctx, []byte("{}"), convert.Options{})
	assert.ErrorContains(t, err, "format is not set")

	_, _, err = convert.Bytes(ctx, []byte("{}"), convert.Options{Format: "caffe"})
	assert.ErrorContains(t, err, `unsupported model format "caffe"`)
}

func TestSupportedOps(t *testing.T) {
	assert.ElementsMatch(t, []string{convert.FormatMXNet, convert.FormatONNX, convert.FormatTF}, convert.Formats())
	assert.Contains(t, convert.SupportedOps(convert.FormatONNX), "Conv")
	assert.Contains(t, convert.SupportedOps(convert.FormatTF), "ConcatV2")
	assert.Contains(t, convert.SupportedOps(convert.FormatMXNet), "Activation/relu")
	assert.Empty(t, convert.SupportedOps("caffe"))
}
