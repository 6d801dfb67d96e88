package netlist

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidParam is wrapped by every parameter a netlist cannot use.
var ErrInvalidParam = errors.New("invalid netlist parameter")

// Params are free-form netlist parameters from YAML or JSON.
type Params map[string]any

// Reader reads typed values out of Params. Absent keys take the default;
// the first present key of an unusable type is kept in Err and later reads
// return their defaults.
type Reader struct {
	p   Params
	err error
}

func (p Params) Reader() *Reader {
	return &Reader{p: p}
}

// Err returns the first conversion error, if any.
func (r *Reader) Err() error { return r.err }

func (r *Reader) lookup(key string) (any, bool) {
	if r.err != nil {
		return nil, false
	}
	v, ok := r.p[key]
	return v, ok && v != nil
}

func (r *Reader) fail(key, want string, v any) {
	r.err = fmt.Errorf("%w: %s must be %s, got %v (%T)", ErrInvalidParam, key, want, v, v)
}

func (r *Reader) Float(key string, def float64) float64 {
	v, ok := r.lookup(key)
	if !ok {
		return def
	}
	switch x := v.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int64:
		return float64(x)
	}
	r.fail(key, "a number", v)
	return def
}

// Int accepts integral floats, since JSON numbers decode as float64.
func (r *Reader) Int(key string, def int) int {
	v, ok := r.lookup(key)
	if !ok {
		return def
	}
	switch x := v.(type) {
	case int:
		return x
	case int64:
		return int(x)
	case float64:
		if x == math.Trunc(x) && !math.IsInf(x, 0) {
			return int(x)
		}
	}
	r.fail(key, "an integer", v)
	return def
}

// String treats a blank string as absent.
func (r *Reader) String(key string, def string) string {
	v, ok := r.lookup(key)
	if !ok {
		return def
	}
	s, isString := v.(string)
	if !isString {
		r.fail(key, "a string", v)
		return def
	}
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// Invalid reports a parameter that has the right type but an unusable value.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidParam, fmt.Sprintf(format, args...))
}
