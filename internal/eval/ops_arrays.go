package eval

import (
	"math"

	"github.com/brio-lang/brio/internal/token"
	"github.com/brio-lang/brio/internal/variables"
)

// arithArrayRight builds the handler for an arithmetic operator whose right
// operand is a numeric array: either array-array element-wise application
// or a scalar-array broadcast with the scalar on the left.
func arithArrayRight(op token.Op) opHandler {
	return func(c *Context) error {
		right, err := c.st.popArray()
		if err != nil {
			return err
		}
		lk := c.st.topKind()
		if lk.IsArray() {
			left, err := c.st.popArray()
			if err != nil {
				return err
			}
			return c.broadcastArrays(op, left, right)
		}
		if !lk.IsNumeric() {
			return wantNumber(lk)
		}
		left, err := c.st.pop()
		if err != nil {
			return err
		}
		return c.broadcastScalar(op, right, left, false)
	}
}

// broadcastResultElem picks the element type of a broadcast result from the
// operator and the two operand classes, each given as a variables.Type.
func broadcastResultElem(op token.Op, a, b variables.Type) variables.Type {
	switch op {
	case token.OpDiv:
		return variables.TypeFloat
	case token.OpIntDiv, token.OpMod:
		if a == variables.TypeInt && b == variables.TypeInt {
			return variables.TypeInt
		}
		return variables.TypeInt64
	}
	if a == variables.TypeFloat || b == variables.TypeFloat {
		return variables.TypeFloat
	}
	if a == variables.TypeInt64 || b == variables.TypeInt64 {
		return variables.TypeInt64
	}
	return variables.TypeInt
}

// scalarClass maps a scalar value's kind onto the element type axis.
func scalarClass(k Kind) variables.Type {
	switch k {
	case KindInt:
		return variables.TypeInt
	case KindInt64:
		return variables.TypeInt64
	case KindFloat:
		return variables.TypeFloat
	}
	return variables.TypeUnknown
}

// divisionOp reports whether op needs a right-operand zero check.
func divisionOp(op token.Op) bool {
	return op == token.OpDiv || op == token.OpIntDiv || op == token.OpMod
}

// arrFloat reads element i of any numeric array as a float64.
func arrFloat(a *variables.Array, i int32) float64 {
	switch {
	case a.Ints != nil:
		return float64(a.Ints[i])
	case a.Ints64 != nil:
		return float64(a.Ints64[i])
	}
	return a.Floats[i]
}

// arrInt64 reads element i of any numeric array as an int64, truncating
// float elements.
func arrInt64(a *variables.Array, i int32) (int64, error) {
	switch {
	case a.Ints != nil:
		return int64(a.Ints[i]), nil
	case a.Ints64 != nil:
		return a.Ints64[i], nil
	}
	return truncInt64(a.Floats[i])
}

// resultArray returns a destination array for a broadcast: the operand's
// own storage when it is a temporary of the right element type, otherwise a
// fresh temporary with the same shape.
func resultArray(elem variables.Type, operand Value) (*variables.Array, error) {
	if operand.Kind.IsTemp() && operand.Arr.Elem() == elem {
		return operand.Arr, nil
	}
	return variables.NewArrayShaped(elem, operand.Arr)
}

// storeNumeric writes one numeric element into dst.
func storeNumeric(dst *variables.Array, i int32, f float64, n int64) {
	switch {
	case dst.Ints != nil:
		dst.Ints[i] = int32(n)
	case dst.Ints64 != nil:
		dst.Ints64[i] = n
	default:
		dst.Floats[i] = f
	}
}

// broadcastScalar applies op element-wise between an array and a scalar.
// arrOnLeft says which side the array operand came from, which matters for
// the non-commutative operators.
func (c *Context) broadcastScalar(op token.Op, arrV Value, scalar Value, arrOnLeft bool) error {
	arr := arrV.Arr
	elem := arr.Elem()
	if elem == variables.TypeString {
		if op != token.OpAdd || !scalar.Kind.IsString() {
			if op != token.OpAdd {
				return runtimeError(ErrBadArith, "operator %s is not defined for string array operands", op)
			}
			return wantString(scalar.Kind)
		}
		return c.broadcastConcatScalar(arrV, scalar.Str, arrOnLeft)
	}
	if !scalar.Kind.IsNumeric() {
		return wantNumber(scalar.Kind)
	}
	resElem := broadcastResultElem(op, elem, scalarClass(scalar.Kind))

	// Division checks the divisor for zero before any result is produced.
	if divisionOp(op) {
		if arrOnLeft {
			if numAsFloat(scalar) == 0 {
				return runtimeError(ErrDivZero, "division by zero")
			}
		} else {
			for i := int32(0); i < arr.Size; i++ {
				if arrFloat(arr, i) == 0 {
					return runtimeError(ErrDivZero, "division by zero")
				}
			}
		}
	}

	dst, err := resultArray(resElem, arrV)
	if err != nil {
		return err
	}
	if resElem == variables.TypeFloat {
		s := numAsFloat(scalar)
		for i := int32(0); i < arr.Size; i++ {
			l, r := arrFloat(arr, i), s
			if !arrOnLeft {
				l, r = r, l
			}
			dst.Floats[i] = floatElemOp(op, l, r)
		}
	} else {
		s, err := numAsInt64(scalar)
		if err != nil {
			return err
		}
		for i := int32(0); i < arr.Size; i++ {
			e, err := arrInt64(arr, i)
			if err != nil {
				return err
			}
			l, r := e, s
			if !arrOnLeft {
				l, r = r, l
			}
			n, err := intElemOp(op, l, r)
			if err != nil {
				return err
			}
			storeNumeric(dst, i, 0, n)
		}
	}
	return c.st.push(ArrayVal(tempArrayKind(resElem), dst))
}

// broadcastArrays applies op element-wise between two arrays of identical
// shape.
func (c *Context) broadcastArrays(op token.Op, leftV, rightV Value) error {
	left, right := leftV.Arr, rightV.Arr
	if !variables.SameShape(left, right) {
		return runtimeError(ErrArrayShape, "arrays have different shapes")
	}
	le, re := left.Elem(), right.Elem()
	if le == variables.TypeString || re == variables.TypeString {
		if le != re {
			if le == variables.TypeString {
				return wantString(rightV.Kind)
			}
			return wantNumber(rightV.Kind)
		}
		if op != token.OpAdd {
			return runtimeError(ErrBadArith, "operator %s is not defined for string array operands", op)
		}
		return c.broadcastConcatArrays(leftV, rightV)
	}
	resElem := broadcastResultElem(op, le, re)

	if divisionOp(op) {
		for i := int32(0); i < right.Size; i++ {
			if arrFloat(right, i) == 0 {
				return runtimeError(ErrDivZero, "division by zero")
			}
		}
	}

	dst, err := resultArray(resElem, rightV)
	if err != nil {
		return err
	}
	if resElem == variables.TypeFloat {
		for i := int32(0); i < left.Size; i++ {
			dst.Floats[i] = floatElemOp(op, arrFloat(left, i), arrFloat(right, i))
		}
	} else {
		for i := int32(0); i < left.Size; i++ {
			l, err := arrInt64(left, i)
			if err != nil {
				return err
			}
			r, err := arrInt64(right, i)
			if err != nil {
				return err
			}
			n, err := intElemOp(op, l, r)
			if err != nil {
				return err
			}
			storeNumeric(dst, i, 0, n)
		}
	}
	return c.st.push(ArrayVal(tempArrayKind(resElem), dst))
}

// floatElemOp computes one float element. Divisors were zero-checked by the
// caller.
func floatElemOp(op token.Op, l, r float64) float64 {
	switch op {
	case token.OpAdd:
		return l + r
	case token.OpSub:
		return l - r
	case token.OpMul:
		return l * r
	case token.OpDiv:
		return l / r
	}
	return math.NaN()
}

// intElemOp computes one integer element. Element arithmetic wraps rather
// than promoting; only DIV and MOD can fail here.
func intElemOp(op token.Op, l, r int64) (int64, error) {
	switch op {
	case token.OpAdd:
		return l + r, nil
	case token.OpSub:
		return l - r, nil
	case token.OpMul:
		return l * r, nil
	case token.OpIntDiv:
		q, _, err := intDivMod(l, r)
		return q, err
	case token.OpMod:
		_, m, err := intDivMod(l, r)
		return m, err
	}
	return 0, brokenError("dispatch", "operator %s reached the array element path", op)
}

// broadcastConcatScalar concatenates a scalar string with every element of
// a string array.
func (c *Context) broadcastConcatScalar(arrV Value, s []byte, arrOnLeft bool) error {
	arr := arrV.Arr
	dst, err := variables.NewArrayShaped(variables.TypeString, arr)
	if err != nil {
		return err
	}
	for i := int32(0); i < arr.Size; i++ {
		l, r := arr.Strings[i], s
		if !arrOnLeft {
			l, r = r, l
		}
		buf, err := c.concat(l, r)
		if err != nil {
			return err
		}
		dst.Strings[i] = buf
	}
	return c.st.push(ArrayVal(KindStringArrayTemp, dst))
}

// broadcastConcatArrays concatenates corresponding elements of two string
// arrays of identical shape.
func (c *Context) broadcastConcatArrays(leftV, rightV Value) error {
	left, right := leftV.Arr, rightV.Arr
	dst, err := variables.NewArrayShaped(variables.TypeString, left)
	if err != nil {
		return err
	}
	for i := int32(0); i < left.Size; i++ {
		buf, err := c.concat(left.Strings[i], right.Strings[i])
		if err != nil {
			return err
		}
		dst.Strings[i] = buf
	}
	return c.st.push(ArrayVal(KindStringArrayTemp, dst))
}
