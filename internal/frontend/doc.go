// Package frontend implements the format-independent half of model import:
// the registry of per-operator extraction handlers, the extraction context
// handlers read raw attributes through, and the normalization policy that
// supplies default attribute values.
//
// Each source format package (onnx, tf, mxnet) registers its handlers into
// Default from init. The registry is sealed before the first conversion and is
// read-only afterwards, so resolution needs no locking.
//
//	frontend.MustRegister("onnx", "Softmax", frontend.Handler{
//	    Op:        ir.OpSoftmax,
//	    Extractor: frontend.ExtractorFunc(extractSoftmax),
//	})
package frontend
