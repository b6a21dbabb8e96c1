package data

import (
	"fmt"
	"strings"
)

// Kind is the structural role of a schema component.
type Kind int

const (
	KindScalar Kind = iota
	KindRecord
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindRecord:
		return "record"
	case KindArray:
		return "array"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ScalarType is the value type carried by a scalar component.
type ScalarType int

const (
	TypeFloat ScalarType = iota
	TypeInt
	TypeText
	TypeBool
)

func (t ScalarType) String() string {
	switch t {
	case TypeFloat:
		return "float"
	case TypeInt:
		return "int"
	case TypeText:
		return "text"
	case TypeBool:
		return "bool"
	}
	return fmt.Sprintf("ScalarType(%d)", int(t))
}

// Component describes one node of a block structure.
// Structures are shared read-only by every block of a list and must not be
// modified once blocks reference them.
type Component struct {
	Name   string
	Kind   Kind
	Type   ScalarType   // scalars only
	Fields []*Component // records only, in value order
	Elem   *Component   // arrays only
	Size   int          // arrays only: fixed length, 0 when variable
}

func DataRecord(name string, fields ...*Component) *Component {
	return &Component{Name: name, Kind: KindRecord, Fields: fields}
}

// DataArray declares a variable-length array of elem.
func DataArray(name string, elem *Component) *Component {
	return &Component{Name: name, Kind: KindArray, Elem: elem}
}

// FixedArray declares an array whose run-time length must equal size.
func FixedArray(name string, size int, elem *Component) *Component {
	return &Component{Name: name, Kind: KindArray, Elem: elem, Size: size}
}

// Quantity declares a float scalar.
func Quantity(name string) *Component {
	return &Component{Name: name, Kind: KindScalar, Type: TypeFloat}
}

// Count declares an integer scalar.
func Count(name string) *Component {
	return &Component{Name: name, Kind: KindScalar, Type: TypeInt}
}

func Text(name string) *Component {
	return &Component{Name: name, Kind: KindScalar, Type: TypeText}
}

func Boolean(name string) *Component {
	return &Component{Name: name, Kind: KindScalar, Type: TypeBool}
}

// Field returns the index and component of the record member called name.
func (c *Component) Field(name string) (int, *Component) {
	for i, f := range c.Fields {
		if f.Name == name {
			return i, f
		}
	}
	return -1, nil
}

func (c *Component) String() string {
	var sb strings.Builder
	c.write(&sb)
	return sb.String()
}

func (c *Component) write(sb *strings.Builder) {
	sb.WriteString(c.Name)
	switch c.Kind {
	case KindScalar:
		sb.WriteString(":" + c.Type.String())
	case KindRecord:
		sb.WriteString("{")
		for i, f := range c.Fields {
			if i > 0 {
				sb.WriteString(",")
			}
			f.write(sb)
		}
		sb.WriteString("}")
	case KindArray:
		if c.Size > 0 {
			fmt.Fprintf(sb, "[%d]", c.Size)
		} else {
			sb.WriteString("[]")
		}
		c.Elem.write(sb)
	}
}
