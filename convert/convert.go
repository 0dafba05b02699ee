// Package convert turns trained models into canonical IR graphs.
//
// Three source formats are supported:
//
//   - ONNX model files (.onnx)
//   - TensorFlow frozen GraphDef files (.pb)
//   - MXNet symbol files (-symbol.json)
//
// Every operator is translated by a per-format handler into a canonical
// operator with a complete, format-agnostic attribute set. Nodes that cannot
// be translated are listed in the returned Report; in strict mode the first
// such node aborts the conversion.
//
// # Example Usage
//
//	graph, report, err := convert.File(ctx, "resnet50.onnx", convert.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if report.HasErrors() {
//	    fmt.Print(report)
//	}
//	for _, op := range graph.OpNodes() {
//	    fmt.Println(op.ID, op.Type, op.Attrs)
//	}
package convert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/born-ml/bornir/internal/builder"
	"github.com/born-ml/bornir/internal/frontend"
	"github.com/born-ml/bornir/internal/ir"
	"github.com/born-ml/bornir/internal/mxnet"
	"github.com/born-ml/bornir/internal/onnx"
	"github.com/born-ml/bornir/internal/tf"
)

// Graph is the canonical IR graph.
type Graph = ir.Graph

// Report lists the nodes a conversion could not translate.
type Report = builder.Report

// NodeError is one entry of a Report.
type NodeError = builder.NodeError

// Metrics records conversion counters and timings.
type Metrics = builder.Metrics

// Source formats.
const (
	FormatONNX  = onnx.Format
	FormatTF    = tf.Format
	FormatMXNet = mxnet.Format
)

// Options configures a conversion.
type Options struct {
	// Format overrides detection from the file extension.
	Format string

	// Strict aborts on the first node that cannot be translated.
	Strict bool

	// Workers is the number of goroutines extracting nodes. Zero or one
	// extracts sequentially.
	Workers int

	// Outputs names the graph outputs of a TensorFlow graph, which does not
	// declare them. When empty, unconsumed node outputs are used.
	Outputs []string

	// Metrics, when set, records the conversion.
	Metrics *Metrics
}

// NewMetrics creates conversion metrics registered with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	return builder.NewMetrics(reg)
}

// DetectFormat infers the source format from a file name.
func DetectFormat(path string) (string, error) {
	name := strings.ToLower(filepath.Base(path))
	switch {
	case strings.HasSuffix(name, ".onnx"):
		return FormatONNX, nil
	case strings.HasSuffix(name, ".pb"), strings.HasSuffix(name, ".pbtxt"):
		return FormatTF, nil
	case strings.HasSuffix(name, ".json"):
		return FormatMXNet, nil
	}
	return "", fmt.Errorf("cannot infer model format of %q; set the format explicitly", path)
}

// File converts the model stored at path.
//
//nolint:gosec // G304: Path is provided by user
func File(ctx context.Context, path string, opts Options) (*Graph, *Report, error) {
	if opts.Format == "" {
		format, err := DetectFormat(path)
		if err != nil {
			return nil, nil, err
		}
		opts.Format = format
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read model: %w", err)
	}
	return Bytes(ctx, data, opts)
}

// Bytes converts a model held in memory. opts.Format is required.
func Bytes(ctx context.Context, data []byte, opts Options) (*Graph, *Report, error) {
	src, err := source(opts.Format, data, opts.Outputs)
	if err != nil {
		return nil, nil, err
	}
	b := builder.New(frontend.Default,
		builder.WithStrict(opts.Strict),
		builder.WithWorkers(opts.Workers),
		builder.WithMetrics(opts.Metrics),
	)
	return b.Build(ctx, src)
}

func source(format string, data []byte, outputs []string) (*builder.Source, error) {
	switch format {
	case FormatONNX:
		m, err := onnx.Parse(data)
		if err != nil {
			return nil, err
		}
		return onnx.Source(m)
	case FormatTF:
		g, err := tf.ParseGraphDef(data)
		if err != nil {
			return nil, err
		}
		return tf.Source(g, outputs...)
	case FormatMXNet:
		s, err := mxnet.ParseSymbol(data)
		if err != nil {
			return nil, err
		}
		return mxnet.Source(s)
	case "":
		return nil, fmt.Errorf("model format is not set")
	default:
		return nil, fmt.Errorf("unsupported model format %q", format)
	}
}

// Formats lists the formats with registered handlers.
func Formats() []string {
	return frontend.Default.Formats()
}

// SupportedOps lists the enabled source operators of format.
func SupportedOps(format string) []string {
	return frontend.Default.Ops(format)
}
