package variables

import "fmt"

// Array is the descriptor for an array value: its shape plus element
// storage for exactly one element type. Variable slots own their arrays;
// the evaluator may also create arrays of its own to hold the results of
// array expressions, in which case the descriptor is marked temporary on
// the value stack rather than here.
type Array struct {
	Dims []int32 // per-dimension sizes, in declaration order
	Size int32   // product of Dims

	Ints    []int32
	Ints64  []int64
	Floats  []float64
	Strings [][]byte
}

// NewArray allocates element storage for the given element type and shape.
func NewArray(elem Type, dims ...int32) (*Array, error) {
	if len(dims) == 0 {
		return nil, fmt.Errorf("array needs at least one dimension")
	}
	size := int32(1)
	for _, d := range dims {
		if d <= 0 {
			return nil, fmt.Errorf("bad array dimension %d", d)
		}
		size *= d
	}
	a := &Array{Dims: append([]int32(nil), dims...), Size: size}
	switch elem {
	case TypeInt:
		a.Ints = make([]int32, size)
	case TypeInt64:
		a.Ints64 = make([]int64, size)
	case TypeFloat:
		a.Floats = make([]float64, size)
	case TypeString:
		a.Strings = make([][]byte, size)
	default:
		return nil, fmt.Errorf("bad array element type %s", elem)
	}
	return a, nil
}

// NewArrayShaped allocates an array with the same shape as ref but element
// storage of the given type. Used for the results of array operations.
func NewArrayShaped(elem Type, ref *Array) (*Array, error) {
	return NewArray(elem, ref.Dims...)
}

// Elem reports the element type actually backed by storage.
func (a *Array) Elem() Type {
	switch {
	case a.Ints != nil:
		return TypeInt
	case a.Ints64 != nil:
		return TypeInt64
	case a.Floats != nil:
		return TypeFloat
	case a.Strings != nil:
		return TypeString
	}
	return TypeUnknown
}

// SameShape reports whether a and b have the same number of dimensions and
// the same size in every dimension, in order. Element types are not
// considered.
func SameShape(a, b *Array) bool {
	if len(a.Dims) != len(b.Dims) {
		return false
	}
	for i := range a.Dims {
		if a.Dims[i] != b.Dims[i] {
			return false
		}
	}
	return true
}
