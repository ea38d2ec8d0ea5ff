// Package eval implements the expression-evaluation core of the Brio
// runtime: a tagged operand stack, the dyadic operator dispatch matrix,
// numeric promotion rules, array broadcasting, the precedence-climbing
// expression parser, and call-argument binding.
package eval

import (
	"fmt"
	"math"

	"github.com/brio-lang/brio/internal/variables"
)

// Kind identifies what an operand stack entry holds. The Temp variants mark
// buffers owned by the evaluator itself (created mid-expression and safe to
// mutate or reuse) as opposed to buffers aliasing variable storage, which
// must never be modified through the stack.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindInt
	KindInt64
	KindFloat
	KindString
	KindStringTemp
	KindIntArray
	KindIntArrayTemp
	KindInt64Array
	KindInt64ArrayTemp
	KindFloatArray
	KindFloatArrayTemp
	KindStringArray
	KindStringArrayTemp

	kindCount
)

var kindNames = [kindCount]string{
	KindUnknown:        "unknown",
	KindInt:            "integer",
	KindInt64:          "64-bit integer",
	KindFloat:          "float",
	KindString:         "string",
	KindStringTemp:     "string",
	KindIntArray:       "integer array",
	KindIntArrayTemp:   "integer array",
	KindInt64Array:     "64-bit integer array",
	KindInt64ArrayTemp: "64-bit integer array",
	KindFloatArray:     "float array",
	KindFloatArrayTemp: "float array",
	KindStringArray:    "string array",
	KindStringArrayTemp: "string array",
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return "unknown"
}

// IsNumeric reports whether k is a scalar numeric kind.
func (k Kind) IsNumeric() bool { return k == KindInt || k == KindInt64 || k == KindFloat }

// IsString reports whether k is a string kind, temporary or not.
func (k Kind) IsString() bool { return k == KindString || k == KindStringTemp }

// IsArray reports whether k is an array kind, temporary or not.
func (k Kind) IsArray() bool { return k >= KindIntArray && k <= KindStringArrayTemp }

// IsTemp reports whether the value's buffer is owned by the evaluator.
func (k Kind) IsTemp() bool {
	switch k {
	case KindStringTemp, KindIntArrayTemp, KindInt64ArrayTemp, KindFloatArrayTemp, KindStringArrayTemp:
		return true
	}
	return false
}

// Elem returns the element type of an array kind.
func (k Kind) Elem() variables.Type {
	switch k {
	case KindIntArray, KindIntArrayTemp:
		return variables.TypeInt
	case KindInt64Array, KindInt64ArrayTemp:
		return variables.TypeInt64
	case KindFloatArray, KindFloatArrayTemp:
		return variables.TypeFloat
	case KindStringArray, KindStringArrayTemp:
		return variables.TypeString
	}
	return variables.TypeUnknown
}

// arrayKind maps an element type to the non-temp array kind.
func arrayKind(elem variables.Type) Kind {
	switch elem {
	case variables.TypeInt:
		return KindIntArray
	case variables.TypeInt64:
		return KindInt64Array
	case variables.TypeFloat:
		return KindFloatArray
	case variables.TypeString:
		return KindStringArray
	}
	return KindUnknown
}

// tempArrayKind maps an element type to the temp array kind.
func tempArrayKind(elem variables.Type) Kind {
	switch elem {
	case variables.TypeInt:
		return KindIntArrayTemp
	case variables.TypeInt64:
		return KindInt64ArrayTemp
	case variables.TypeFloat:
		return KindFloatArrayTemp
	case variables.TypeString:
		return KindStringArrayTemp
	}
	return KindUnknown
}

// Value is one operand stack entry. Kind fully determines which payload
// member is valid; nothing may read a payload without checking Kind first.
// Scalars live in Data (int32/int64 value or float64 bits) so that simple
// expressions never allocate.
type Value struct {
	Kind Kind
	Data uint64
	Str  []byte
	Arr  *variables.Array
}

// IntVal builds a 32-bit integer value.
func IntVal(v int32) Value {
	return Value{Kind: KindInt, Data: uint64(uint32(v))}
}

// Int64Val builds a 64-bit integer value.
func Int64Val(v int64) Value {
	return Value{Kind: KindInt64, Data: uint64(v)}
}

// FloatVal builds a floating point value.
func FloatVal(v float64) Value {
	return Value{Kind: KindFloat, Data: math.Float64bits(v)}
}

// BoolVal builds the language's truth value (-1 or 0) for b.
func BoolVal(b bool) Value {
	if b {
		return IntVal(basTrue)
	}
	return IntVal(basFalse)
}

// StrVal builds a string value aliasing or owning buf but not marked as a
// temporary.
func StrVal(buf []byte) Value {
	return Value{Kind: KindString, Str: buf}
}

// StrTempVal builds a string temporary owning buf.
func StrTempVal(buf []byte) Value {
	return Value{Kind: KindStringTemp, Str: buf}
}

// ArrayVal builds an array value of the given kind.
func ArrayVal(kind Kind, arr *variables.Array) Value {
	return Value{Kind: kind, Arr: arr}
}

// AsInt returns the 32-bit integer payload.
func (v Value) AsInt() int32 { return int32(uint32(v.Data)) }

// AsInt64 returns the 64-bit integer payload.
func (v Value) AsInt64() int64 { return int64(v.Data) }

// AsFloat returns the floating point payload.
func (v Value) AsFloat() float64 { return math.Float64frombits(v.Data) }

// Inspect renders the value for traces and the REPL.
func (v Value) Inspect() string {
	switch v.Kind {
	case KindInt:
		return fmt.Sprintf("%d", v.AsInt())
	case KindInt64:
		return fmt.Sprintf("%d", v.AsInt64())
	case KindFloat:
		return fmt.Sprintf("%g", v.AsFloat())
	case KindString, KindStringTemp:
		return fmt.Sprintf("%q", v.Str)
	case KindIntArray, KindIntArrayTemp, KindInt64Array, KindInt64ArrayTemp,
		KindFloatArray, KindFloatArrayTemp, KindStringArray, KindStringArrayTemp:
		if v.Arr == nil {
			return "<nil array>"
		}
		return fmt.Sprintf("<%s %v>", v.Kind, v.Arr.Dims)
	default:
		return "<?>"
	}
}
