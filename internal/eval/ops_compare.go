package eval

import (
	"bytes"

	"github.com/brio-lang/brio/internal/token"
)

// compareNumRight builds the handler for a relational operator with a
// scalar numeric right operand. Two integer operands compare exactly; any
// float operand forces a floating point comparison.
func compareNumRight(op token.Op) opHandler {
	return func(c *Context) error {
		right, err := c.st.pop()
		if err != nil {
			return err
		}
		lk := c.st.topKind()
		if !lk.IsNumeric() {
			return wantNumber(lk)
		}
		left, err := c.st.pop()
		if err != nil {
			return err
		}
		var truth bool
		if left.Kind == KindFloat || right.Kind == KindFloat {
			lf, rf := numAsFloat(left), numAsFloat(right)
			switch op {
			case token.OpEq:
				truth = lf == rf
			case token.OpNe:
				truth = lf != rf
			case token.OpGt:
				truth = lf > rf
			case token.OpLt:
				truth = lf < rf
			case token.OpGe:
				truth = lf >= rf
			case token.OpLe:
				truth = lf <= rf
			}
		} else {
			li, _ := numAsInt64(left)
			ri, _ := numAsInt64(right)
			switch op {
			case token.OpEq:
				truth = li == ri
			case token.OpNe:
				truth = li != ri
			case token.OpGt:
				truth = li > ri
			case token.OpLt:
				truth = li < ri
			case token.OpGe:
				truth = li >= ri
			case token.OpLe:
				truth = li <= ri
			}
		}
		return c.st.pushBool(truth)
	}
}

// compareStringRight builds the handler for a relational operator with a
// string right operand. Ordering is byte-wise over the shorter length with
// the shorter string ranking lower on an equal prefix.
func compareStringRight(op token.Op) opHandler {
	return func(c *Context) error {
		right, err := c.st.popString()
		if err != nil {
			return err
		}
		left, err := c.st.popString()
		if err != nil {
			return err
		}
		cmp := bytes.Compare(left.Str, right.Str)
		var truth bool
		switch op {
		case token.OpEq:
			truth = cmp == 0
		case token.OpNe:
			truth = cmp != 0
		case token.OpGt:
			truth = cmp > 0
		case token.OpLt:
			truth = cmp < 0
		case token.OpGe:
			truth = cmp >= 0
		case token.OpLe:
			truth = cmp <= 0
		}
		return c.st.pushBool(truth)
	}
}
