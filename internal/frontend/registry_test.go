package frontend

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/bornir/internal/ir"
)

func passthrough(ctx *Context) (bool, error) { return true, nil }

func reluHandler() Handler {
	return Handler{Op: ir.OpRelu, Extractor: ExtractorFunc(passthrough)}
}

func TestRegistryResolve(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("onnx", "Relu", reluHandler()))

	h, err := r.Resolve("onnx", "Relu")
	require.NoError(t, err)
	assert.Equal(t, ir.OpRelu, h.Op)

	_, err = r.Resolve("tf", "Relu")
	var unsupported *UnsupportedOperatorError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "Relu", unsupported.Op)
	assert.Equal(t, "tf", unsupported.Format)
	assert.ErrorIs(t, err, ErrUnsupportedOperator)
}

func TestRegistryDuplicate(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("onnx", "Relu", reluHandler()))

	err := r.Register("onnx", "Relu", reluHandler())
	var dup *DuplicateRegistrationError
	require.ErrorAs(t, err, &dup)
	assert.ErrorIs(t, err, ErrDuplicateRegistration)

	// Same operator name under another format is a different key.
	assert.NoError(t, r.Register("tf", "Relu", reluHandler()))

	assert.Panics(t, func() { r.MustRegister("onnx", "Relu", reluHandler()) })
}

func TestRegistryDisabledHandlers(t *testing.T) {
	r := NewRegistry()
	disabled := reluHandler()
	disabled.Disabled = true
	require.NoError(t, r.Register("onnx", "Relu", disabled))

	_, err := r.Resolve("onnx", "Relu")
	assert.ErrorIs(t, err, ErrUnsupportedOperator)
	assert.Empty(t, r.Ops("onnx"))

	// A disabled registration can be replaced.
	require.NoError(t, r.Register("onnx", "Relu", reluHandler()))
	_, err = r.Resolve("onnx", "Relu")
	assert.NoError(t, err)

	require.NoError(t, r.SetEnabled("onnx", "Relu", false))
	_, err = r.Resolve("onnx", "Relu")
	assert.ErrorIs(t, err, ErrUnsupportedOperator)

	assert.ErrorIs(t, r.SetEnabled("onnx", "Missing", true), ErrUnsupportedOperator)
}

func TestRegistrySeal(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("onnx", "Relu", reluHandler()))
	r.Seal()
	r.Seal()
	assert.True(t, r.Sealed())

	err := r.Register("onnx", "Sigmoid", reluHandler())
	assert.True(t, errors.Is(err, ErrRegistrySealed))
	assert.ErrorIs(t, r.SetEnabled("onnx", "Relu", false), ErrRegistrySealed)

	_, err = r.Resolve("onnx", "Relu")
	assert.NoError(t, err)
}

func TestRegistryListing(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("onnx", "Sigmoid", reluHandler()))
	require.NoError(t, r.Register("onnx", "Relu", reluHandler()))
	require.NoError(t, r.Register("mxnet", "relu", reluHandler()))

	assert.Equal(t, []string{"Relu", "Sigmoid"}, r.Ops("onnx"))
	assert.Equal(t, []string{"mxnet", "onnx"}, r.Formats())
	assert.Error(t, r.Register("onnx", "Nil", Handler{Op: ir.OpRelu}))
}

func TestRegistryListingWhileRegistering(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := range 200 {
			op := fmt.Sprintf("Op%03d", i)
			assert.NoError(t, r.Register("onnx", op, reluHandler()))
			assert.NoError(t, r.SetEnabled("onnx", op, i%2 == 0))
		}
	}()
	go func() {
		defer wg.Done()
		for range 200 {
			_ = r.Ops("onnx")
			_ = r.Formats()
		}
	}()
	wg.Wait()

	assert.Len(t, r.Ops("onnx"), 100)
	r.Seal()
	assert.Len(t, r.Ops("onnx"), 100)
	assert.Equal(t, []string{"onnx"}, r.Formats())
}
