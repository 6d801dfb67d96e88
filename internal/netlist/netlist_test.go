package netlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	Register(Netlist{Name: "zz_registry_test", Description: "test"})
	Register(Netlist{Name: "aa_registry_test", Description: "test"})

	n, err := Lookup("  ZZ_Registry_Test ")
	require.NoError(t, err)
	assert.Equal(t, "zz_registry_test", n.Name)

	_, err = Lookup("missing")
	assert.ErrorIs(t, err, ErrUnknownNetlist)

	all := All()
	require.GreaterOrEqual(t, len(all), 2)
	assert.Equal(t, "aa_registry_test", all[0].Name)
	assert.Equal(t, "zz_registry_test", all[len(all)-1].Name)

	assert.Panics(t, func() { Register(Netlist{Name: "zz_registry_test"}) })
}

func TestReader(t *testing.T) {
	p := Params{
		"f":     2.5,
		"i":     3,
		"i64":   int64(4),
		"whole": 6.0,
		"s":     "hello",
		"blank": "  ",
		"nil":   nil,
	}

	r := p.Reader()
	assert.Equal(t, 2.5, r.Float("f", 0))
	assert.Equal(t, 3.0, r.Float("i", 0))
	assert.Equal(t, 4.0, r.Float("i64", 0))
	assert.Equal(t, 9.0, r.Float("missing", 9))
	assert.Equal(t, 3, r.Int("i", 0))
	assert.Equal(t, 4, r.Int("i64", 0))
	assert.Equal(t, 6, r.Int("whole", 0), "JSON numbers arrive as float64")
	assert.Equal(t, 7, r.Int("nil", 7))
	assert.Equal(t, "hello", r.String("s", "x"))
	assert.Equal(t, "x", r.String("blank", "x"))
	assert.NoError(t, r.Err())

	var empty Params
	assert.Equal(t, 1.5, empty.Reader().Float("f", 1.5))
}

func TestReaderWrongType(t *testing.T) {
	tests := []struct {
		name string
		read func(r *Reader)
	}{
		{"string as float", func(r *Reader) { r.Float("s", 4) }},
		{"fractional int", func(r *Reader) { r.Int("f", 1) }},
		{"string as int", func(r *Reader) { r.Int("s", 1) }},
		{"number as string", func(r *Reader) { r.String("i", "x") }},
		{"bool as float", func(r *Reader) { r.Float("b", 1) }},
	}
	p := Params{"s": "5", "f": 2.7, "i": 3, "b": true}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := p.Reader()
			tt.read(r)
			assert.ErrorIs(t, r.Err(), ErrInvalidParam)
		})
	}
}

func TestReaderKeepsFirstError(t *testing.T) {
	r := Params{"a": "x", "b": "y", "c": 2.0}.Reader()
	assert.Equal(t, 1.0, r.Float("a", 1))
	assert.Equal(t, 2, r.Int("b", 2))
	assert.Equal(t, 5.0, r.Float("c", 5), "reads after a failure return the default")
	require.Error(t, r.Err())
	assert.Contains(t, r.Err().Error(), "a must be a number")
}

func TestInvalid(t *testing.T) {
	err := Invalid("num_traders must be >= 2, got %d", 1)
	assert.ErrorIs(t, err, ErrInvalidParam)
	assert.Contains(t, err.Error(), "num_traders must be >= 2, got 1")
}
