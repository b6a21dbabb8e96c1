package data

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueConversions(t *testing.T) {
	assert.Equal(t, 2.5, Float(2.5).Float64())
	assert.Equal(t, 3, Int(3).Int())
	assert.Equal(t, "3", Int(3).Text())
	assert.Equal(t, 12.0, String("12").Float64())
	assert.True(t, math.IsNaN(String("abc").Float64()))
	assert.Equal(t, 1.0, Bool(true).Float64())
	assert.Equal(t, "false", Bool(false).Text())
}

func TestComponentString(t *testing.T) {
	c := DataRecord("obs",
		Quantity("t"),
		FixedArray("pos", 2, Quantity("v")),
		DataArray("tags", Text("tag")),
	)
	assert.Equal(t, "obs{t:float,pos[2]v:float,tags[]tag:text}", c.String())

	i, f := c.Field("pos")
	assert.Equal(t, 1, i)
	require.NotNil(t, f)
	assert.Equal(t, KindArray, f.Kind)

	i, f = c.Field("nope")
	assert.Equal(t, -1, i)
	assert.Nil(t, f)
}

func TestValidate(t *testing.T) {
	c := DataRecord("obs",
		Quantity("t"),
		FixedArray("pos", 2, Quantity("v")),
		DataArray("name", Text("c")),
	)

	ok := Record(
		Scalar(Int(4)), // ints fill float slots
		Floats(1, 2),
		Array(Scalar(String("a")), Scalar(String("b")), Scalar(String("c"))),
	)
	require.NoError(t, Validate(c, ok))
	require.NoError(t, NewBlock(c, ok).Validate())

	tests := []struct {
		name string
		d    Datum
	}{
		{"missing field", Record(Scalar(Float(1)), Floats(1, 2))},
		{"wrong fixed size", Record(Scalar(Float(1)), Floats(1, 2, 3), Array())},
		{"wrong kind", Record(Floats(1), Floats(1, 2), Array())},
		{"wrong scalar type", Record(Scalar(String("x")), Floats(1, 2), Array())},
		{"text into float array", Record(Scalar(Float(1)), Array(Scalar(String("a")), Scalar(String("b"))), Array())},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(c, tt.d)
			assert.ErrorIs(t, err, ErrStructureMismatch)
		})
	}

	assert.ErrorIs(t, NewBlock(nil, ok).Validate(), ErrStructureMismatch)
}
