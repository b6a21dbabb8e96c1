package data

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// ErrStructureMismatch reports a block whose run-time shape does not match
// the structure it was declared with.
var ErrStructureMismatch = errors.New("data: block does not match structure")

// Value is a tagged scalar.
type Value struct {
	typ ScalarType
	num float64
	str string
}

func Float(v float64) Value { return Value{typ: TypeFloat, num: v} }

func Int(v int) Value { return Value{typ: TypeInt, num: float64(v)} }

func String(s string) Value { return Value{typ: TypeText, str: s} }

func Bool(b bool) Value {
	if b {
		return Value{typ: TypeBool, num: 1}
	}
	return Value{typ: TypeBool}
}

func (v Value) Type() ScalarType { return v.typ }

// Float64 returns the numeric value. Text is parsed, NaN when it is not a number.
func (v Value) Float64() float64 {
	if v.typ == TypeText {
		f, err := strconv.ParseFloat(v.str, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	}
	return v.num
}

func (v Value) Int() int { return int(v.Float64()) }

// Text returns the value formatted as a string.
func (v Value) Text() string {
	switch v.typ {
	case TypeText:
		return v.str
	case TypeInt:
		return strconv.Itoa(int(v.num))
	case TypeBool:
		return strconv.FormatBool(v.num != 0)
	}
	return strconv.FormatFloat(v.num, 'g', -1, 64)
}

func (v Value) String() string { return v.Text() }

// Datum is the run-time value tree of a block: a scalar, a record with one
// datum per field, or an array of element datums.
type Datum struct {
	kind   Kind
	value  Value
	fields []Datum
	elems  []Datum
}

func Scalar(v Value) Datum { return Datum{kind: KindScalar, value: v} }

func Record(fields ...Datum) Datum { return Datum{kind: KindRecord, fields: fields} }

func Array(elems ...Datum) Datum { return Datum{kind: KindArray, elems: elems} }

// Floats is shorthand for an array of float scalars.
func Floats(vs ...float64) Datum {
	elems := make([]Datum, len(vs))
	for i, v := range vs {
		elems[i] = Scalar(Float(v))
	}
	return Array(elems...)
}

func (d Datum) Kind() Kind { return d.kind }

func (d Datum) Value() Value { return d.value }

func (d Datum) NumFields() int { return len(d.fields) }

func (d Datum) Len() int { return len(d.elems) }

func (d *Datum) Field(i int) *Datum { return &d.fields[i] }

func (d *Datum) Elem(i int) *Datum { return &d.elems[i] }

// Validate checks d against c recursively.
func Validate(c *Component, d Datum) error {
	return validate(c, &d, c.Name)
}

func validate(c *Component, d *Datum, path string) error {
	if d.kind != c.Kind {
		return fmt.Errorf("%w: %s: expected %s, got %s", ErrStructureMismatch, path, c.Kind, d.kind)
	}
	switch c.Kind {
	case KindScalar:
		if !assignable(c.Type, d.value.typ) {
			return fmt.Errorf("%w: %s: expected %s value, got %s", ErrStructureMismatch, path, c.Type, d.value.typ)
		}
	case KindRecord:
		if len(d.fields) != len(c.Fields) {
			return fmt.Errorf("%w: %s: expected %d fields, got %d", ErrStructureMismatch, path, len(c.Fields), len(d.fields))
		}
		for i, f := range c.Fields {
			if err := validate(f, &d.fields[i], path+"/"+f.Name); err != nil {
				return err
			}
		}
	case KindArray:
		if c.Size > 0 && len(d.elems) != c.Size {
			return fmt.Errorf("%w: %s: expected %d elements, got %d", ErrStructureMismatch, path, c.Size, len(d.elems))
		}
		for i := range d.elems {
			if err := validate(c.Elem, &d.elems[i], path); err != nil {
				return err
			}
		}
	}
	return nil
}

// assignable lets integers fill float slots; everything else must match.
func assignable(want, got ScalarType) bool {
	return want == got || (want == TypeFloat && got == TypeInt)
}
