package eval

import (
	"github.com/brio-lang/brio/internal/token"
)

// logicScalarRight builds the handler for the bitwise operators AND, OR and
// EOR. Operands are converted to integers (floats truncate) and the result
// demotes to int32 when it fits, which it always does when both operands
// were 32-bit.
func logicScalarRight(op token.Op) opHandler {
	return func(c *Context) error {
		r, err := c.st.popNumAsInt64()
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
		l, err := numAsInt64(left)
		if err != nil {
			return err
		}
		switch op {
		case token.OpAnd:
			return c.st.pushDemoted(l & r)
		case token.OpOr:
			return c.st.pushDemoted(l | r)
		case token.OpEor:
			return c.st.pushDemoted(l ^ r)
		}
		return brokenError("dispatch", "operator %s reached the bitwise path", op)
	}
}
