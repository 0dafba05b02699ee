package frontend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/bornir/internal/ir"
)

func TestLookupCoercion(t *testing.T) {
	raw := &Node{NodeName: "n", Attributes: Attrs{
		"axis":      String("-1"),
		"kernel":    String("(3, 3)"),
		"empty":     String("()"),
		"keepdims":  String("True"),
		"flag":      Int(1),
		"slope":     String("0.25"),
		"scale":     Int(2),
		"one":       Int(4),
		"list":      Ints(5),
		"shape":     String("[1,-1]"),
		"dtype":     String("f16"),
		"label":     String("a"),
		"no_target": Floats(1, 2),
	}}

	tests := []struct {
		name string
		want AttrType
		out  any
	}{
		{"axis", AttrInt, int64(-1)},
		{"kernel", AttrInts, []int64{3, 3}},
		{"empty", AttrInts, []int64{}},
		{"keepdims", AttrBool, true},
		{"flag", AttrBool, true},
		{"slope", AttrFloat, 0.25},
		{"scale", AttrFloat, 2.0},
		{"one", AttrInts, []int64{4}},
		{"list", AttrInt, int64(5)},
		{"shape", AttrInts, []int64{1, -1}},
		{"dtype", AttrDType, ir.Float16},
		{"label", AttrStrings, []string{"a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok, err := Lookup(raw, tt.name, tt.want)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, tt.out, v)
		})
	}

	_, _, err := Lookup(raw, "no_target", AttrInt)
	assert.ErrorIs(t, err, ErrInvalidAttribute)

	_, ok, err := Lookup(raw, "absent", AttrInt)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestGetDefault(t *testing.T) {
	raw := &Node{NodeName: "n"}
	v, err := Get(raw, "axis", AttrInt, int64(1))
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
}
