// Package onnx is the ONNX front end: a protobuf decoder for .onnx files and
// the operator handlers that map ONNX nodes to canonical IR operators.
//
// Models are decoded straight from the wire format; only the fields needed to
// build the IR graph are kept. Handlers register themselves with
// frontend.Default on import and pick opset-versioned behavior from the
// model's default-domain opset import.
//
// Example usage:
//
//	model, err := onnx.ParseFile("resnet50.onnx")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	src, err := onnx.Source(model)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	graph, report, err := builder.New(frontend.Default).Build(ctx, src)
package onnx
