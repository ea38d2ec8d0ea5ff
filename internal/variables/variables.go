// Package variables provides the typed storage slots the evaluator reads
// variables from and writes by-reference parameters back to. The full
// symbol table (name lookup, scoping, dynamic creation) lives in the
// statement layer; the evaluator only ever sees resolved slot indices.
package variables

import "fmt"

// Type classifies a storage slot. Array types are distinct from their
// element types because a whole-array slot holds a descriptor, not a value.
type Type uint8

const (
	TypeUnknown Type = iota
	TypeInt
	TypeInt64
	TypeFloat
	TypeString
	TypeIntArray
	TypeInt64Array
	TypeFloatArray
	TypeStringArray
)

var typeNames = map[Type]string{
	TypeUnknown:     "unknown",
	TypeInt:         "integer",
	TypeInt64:       "64-bit integer",
	TypeFloat:       "float",
	TypeString:      "string",
	TypeIntArray:    "integer array",
	TypeInt64Array:  "64-bit integer array",
	TypeFloatArray:  "float array",
	TypeStringArray: "string array",
}

func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return "unknown"
}

// IsArray reports whether t is one of the array types.
func (t Type) IsArray() bool { return t >= TypeIntArray }

// Elem returns the element type of an array type.
func (t Type) Elem() Type {
	switch t {
	case TypeIntArray:
		return TypeInt
	case TypeInt64Array:
		return TypeInt64
	case TypeFloatArray:
		return TypeFloat
	case TypeStringArray:
		return TypeString
	}
	return TypeUnknown
}

// Slot is one variable's storage. Only the member matching Type is valid.
type Slot struct {
	Name string
	Type Type

	Int   int32
	Int64 int64
	Float float64
	Str   []byte
	Arr   *Array
}

// Table holds a flat set of variable slots plus the fixed static integer
// variables (A% .. Z%).
type Table struct {
	slots   []Slot
	statics [26]int32
}

// NewTable creates an empty variable table.
func NewTable() *Table {
	return &Table{}
}

// Declare adds a scalar slot of the given type and returns its index.
func (t *Table) Declare(name string, typ Type) int {
	t.slots = append(t.slots, Slot{Name: name, Type: typ})
	return len(t.slots) - 1
}

// DeclareArray adds an array slot with freshly allocated element storage
// and returns its index.
func (t *Table) DeclareArray(name string, typ Type, dims ...int32) (int, error) {
	if !typ.IsArray() {
		return 0, fmt.Errorf("%s is not an array type", typ)
	}
	arr, err := NewArray(typ.Elem(), dims...)
	if err != nil {
		return 0, err
	}
	t.slots = append(t.slots, Slot{Name: name, Type: typ, Arr: arr})
	return len(t.slots) - 1, nil
}

// Slot returns the slot at the given index. Out-of-range indices mean the
// token stream is corrupt.
func (t *Table) Slot(index int) (*Slot, error) {
	if index < 0 || index >= len(t.slots) {
		return nil, fmt.Errorf("no variable slot %d", index)
	}
	return &t.slots[index], nil
}

// Len returns the number of declared slots.
func (t *Table) Len() int { return len(t.slots) }

// Static returns the value of static integer variable i (0 = A%).
func (t *Table) Static(i int) int32 { return t.statics[i] }

// SetStatic sets static integer variable i.
func (t *Table) SetStatic(i int, v int32) { t.statics[i] = v }
