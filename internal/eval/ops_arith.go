package eval

import (
	"math"

	"github.com/brio-lang/brio/internal/token"
)

// arithScalarRight builds the handler for an arithmetic operator whose
// right operand is a scalar number. The left operand may be a scalar
// (ordinary arithmetic with promotion) or a numeric array (broadcast).
func arithScalarRight(op token.Op) opHandler {
	return func(c *Context) error {
		right, err := c.st.pop()
		if err != nil {
			return err
		}
		lk := c.st.topKind()
		if lk.IsArray() {
			arr, err := c.st.popArray()
			if err != nil {
				return err
			}
			return c.broadcastScalar(op, arr, right, true)
		}
		if !lk.IsNumeric() {
			return wantNumber(lk)
		}
		left, err := c.st.pop()
		if err != nil {
			return err
		}
		return c.applyNumeric(op, left, right)
	}
}

// applyNumeric computes a scalar arithmetic result with the promotion and
// demotion rules: int32 arithmetic promotes to int64 when the true result
// does not fit, int64 multiplication promotes to float when it overflows,
// and wider results demote back to int32 when the value allows.
func (c *Context) applyNumeric(op token.Op, left, right Value) error {
	switch op {
	case token.OpAdd, token.OpSub:
		if left.Kind == KindFloat || right.Kind == KindFloat {
			lf, rf := numAsFloat(left), numAsFloat(right)
			if op == token.OpSub {
				return c.st.pushFloat(lf - rf)
			}
			return c.st.pushFloat(lf + rf)
		}
		if left.Kind == KindInt && right.Kind == KindInt {
			l, r := left.AsInt(), right.AsInt()
			var sum64 int64
			var sum32 int32
			if op == token.OpSub {
				sum64, sum32 = int64(l)-int64(r), l-r
			} else {
				sum64, sum32 = int64(l)+int64(r), l+r
			}
			if int64(sum32) == sum64 {
				return c.st.pushInt(sum32)
			}
			return c.st.pushInt64(sum64)
		}
		l, _ := numAsInt64(left)
		r, _ := numAsInt64(right)
		if op == token.OpSub {
			return c.st.pushDemoted(l - r)
		}
		return c.st.pushDemoted(l + r)

	case token.OpMul:
		if left.Kind == KindFloat || right.Kind == KindFloat {
			return c.st.pushFloat(numAsFloat(left) * numAsFloat(right))
		}
		if left.Kind == KindInt && right.Kind == KindInt {
			return c.st.pushDemoted(int64(left.AsInt()) * int64(right.AsInt()))
		}
		l, _ := numAsInt64(left)
		r, _ := numAsInt64(right)
		// The 64-bit product can overflow; the float product tells whether
		// it did, and becomes the result when so.
		fp := float64(l) * float64(r)
		if math.Abs(fp) > float64(math.MaxInt64) {
			return c.st.pushFloat(fp)
		}
		return c.st.pushDemoted(l * r)

	case token.OpDiv:
		rf := numAsFloat(right)
		if rf == 0 {
			return runtimeError(ErrDivZero, "division by zero")
		}
		return c.st.pushFloat(numAsFloat(left) / rf)

	case token.OpIntDiv, token.OpMod:
		l, err := numAsInt64(left)
		if err != nil {
			return err
		}
		r, err := numAsInt64(right)
		if err != nil {
			return err
		}
		q, m, err := intDivMod(l, r)
		if err != nil {
			return err
		}
		if op == token.OpMod {
			return c.st.pushDemoted(m)
		}
		return c.st.pushDemoted(q)
	}
	return brokenError("dispatch", "operator %s reached the scalar arithmetic path", op)
}

// intDivMod computes truncating division and remainder with the zero check
// applied to the already-truncated divisor.
func intDivMod(l, r int64) (int64, int64, error) {
	if r == 0 {
		return 0, 0, runtimeError(ErrDivZero, "division by zero")
	}
	if l == math.MinInt64 && r == -1 {
		// The one quotient that does not fit in an int64.
		return 0, 0, runtimeError(ErrRange, "number %d DIV %d is out of 64-bit integer range", l, r)
	}
	return l / r, l % r, nil
}

// powScalarRight handles '^'. Exponentiation always produces a float.
func powScalarRight(c *Context) error {
	rf, err := c.st.popNumAsFloat()
	if err != nil {
		return err
	}
	lf, err := c.st.popNumAsFloat()
	if err != nil {
		return err
	}
	return c.st.pushFloat(math.Pow(lf, rf))
}
