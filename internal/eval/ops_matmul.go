package eval

import (
	"github.com/brio-lang/brio/internal/variables"
)

// matMulRight handles the '.' operator with an integer or float array right
// operand. Matrix multiplication never broadcasts with scalars and both
// operands must share an element type: integer with integer, float with
// float. The left operand must alias variable storage; a temporary left
// array means the expression tried to chain matrix products through an
// intermediate, which the language does not allow.
func matMulRight(c *Context) error {
	rightV, err := c.st.popArray()
	if err != nil {
		return err
	}
	lk := c.st.topKind()
	if !lk.IsArray() {
		return wantArray(lk)
	}
	wantLeft := KindIntArray
	if rightV.Arr.Elem() == variables.TypeFloat {
		wantLeft = KindFloatArray
	}
	if lk != wantLeft {
		return runtimeError(ErrBadArith, "matrix multiplication needs two %ss", wantLeft)
	}
	leftV, err := c.st.popArray()
	if err != nil {
		return err
	}
	left, right := leftV.Arr, rightV.Arr

	shape, err := matMulShape(left, right)
	if err != nil {
		return err
	}
	elem := left.Elem()
	dst, err := variables.NewArray(elem, shape...)
	if err != nil {
		return err
	}
	if elem == variables.TypeInt {
		matMulInt(dst, left, right)
	} else {
		matMulFloat(dst, left, right)
	}
	return c.st.push(ArrayVal(tempArrayKind(elem), dst))
}

// matMulShape validates operand shapes and returns the result's dimensions.
// A 1-D operand acts as a row vector on the left and a column vector on the
// right; inner dimensions must match exactly.
func matMulShape(left, right *variables.Array) ([]int32, error) {
	if len(left.Dims) > 2 || len(right.Dims) > 2 {
		return nil, runtimeError(ErrMatrixShape, "matrix operands cannot have more than two dimensions")
	}
	if len(left.Dims) == 1 {
		// Row vector times column vector or matrix.
		if left.Dims[0] != right.Dims[0] {
			return nil, runtimeError(ErrMatrixShape, "matrix operands have incompatible sizes")
		}
		if len(right.Dims) == 1 {
			return []int32{1}, nil
		}
		return []int32{right.Dims[1]}, nil
	}
	if len(right.Dims) == 1 {
		// Matrix times column vector.
		if right.Dims[0] != left.Dims[1] {
			return nil, runtimeError(ErrMatrixShape, "matrix operands have incompatible sizes")
		}
		return []int32{left.Dims[0]}, nil
	}
	if left.Dims[1] != right.Dims[0] {
		return nil, runtimeError(ErrMatrixShape, "matrix operands have incompatible sizes")
	}
	return []int32{left.Dims[0], right.Dims[1]}, nil
}

// matMulInt computes the product with 32-bit accumulation. Overflow wraps;
// integer matrix products are not range-checked.
func matMulInt(dst, left, right *variables.Array) {
	rows, cols, inner := matMulBounds(left, right)
	rstride := rowStride(right)
	lstride := rowStride(left)
	for row := int32(0); row < rows; row++ {
		for col := int32(0); col < cols; col++ {
			sum := int32(0)
			for k := int32(0); k < inner; k++ {
				sum += left.Ints[row*lstride+k] * right.Ints[k*rstride+col]
			}
			dst.Ints[row*cols+col] = sum
		}
	}
}

func matMulFloat(dst, left, right *variables.Array) {
	rows, cols, inner := matMulBounds(left, right)
	rstride := rowStride(right)
	lstride := rowStride(left)
	for row := int32(0); row < rows; row++ {
		for col := int32(0); col < cols; col++ {
			sum := float64(0)
			for k := int32(0); k < inner; k++ {
				sum += left.Floats[row*lstride+k] * right.Floats[k*rstride+col]
			}
			dst.Floats[row*cols+col] = sum
		}
	}
}

// matMulBounds derives the triple-loop bounds from the operand shapes with
// 1-D operands treated as a single row or column.
func matMulBounds(left, right *variables.Array) (rows, cols, inner int32) {
	rows = int32(1)
	if len(left.Dims) == 2 {
		rows = left.Dims[0]
	}
	cols = int32(1)
	if len(right.Dims) == 2 {
		cols = right.Dims[1]
	}
	inner = left.Dims[len(left.Dims)-1]
	return rows, cols, inner
}

// rowStride is the element distance between consecutive rows, or the
// distance between consecutive elements for a vector.
func rowStride(a *variables.Array) int32 {
	if len(a.Dims) == 2 {
		return a.Dims[1]
	}
	return 1
}
