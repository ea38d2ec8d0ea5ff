package eval

import (
	"math"

	"github.com/brio-lang/brio/internal/token"
)

// shiftAmount reduces a raw shift count to the 0..255 range. Negative
// counts wrap around, so shifting by -4 is shifting by 252.
func shiftAmount(raw int64) int {
	n := int(raw % 256)
	if n < 0 {
		n += 256
	}
	return n
}

// shiftScalarRight builds the handler for the shift operators. The shift
// count is taken modulo 256; counts at or beyond the operand's bit width
// produce zero, except that an arithmetic right shift of a negative value
// keeps its sign.
func shiftScalarRight(op token.Op) opHandler {
	return func(c *Context) error {
		raw, err := c.st.popNumAsInt64()
		if err != nil {
			return err
		}
		n := shiftAmount(raw)
		lk := c.st.topKind()
		if !lk.IsNumeric() {
			return wantNumber(lk)
		}
		left, err := c.st.pop()
		if err != nil {
			return err
		}
		if lk == KindInt {
			return c.shiftInt32(op, left.AsInt(), n)
		}
		l, err := numAsInt64(left)
		if err != nil {
			return err
		}
		return c.shiftInt64(op, l, n)
	}
}

func (c *Context) shiftInt32(op token.Op, l int32, n int) error {
	switch op {
	case token.OpLsl:
		if n >= 64 {
			return c.st.pushInt(0)
		}
		return c.st.pushDemoted(int64(l) << uint(n))
	case token.OpLsr:
		if n >= 32 {
			return c.st.pushInt(0)
		}
		return c.st.pushInt(int32((uint32(l) >> uint(n)) & 0x7FFFFFFF))
	case token.OpAsr:
		if n >= 32 {
			if l < 0 {
				return c.st.pushInt(-1)
			}
			return c.st.pushInt(0)
		}
		return c.st.pushInt(l >> uint(n))
	}
	return brokenError("dispatch", "operator %s reached the shift path", op)
}

func (c *Context) shiftInt64(op token.Op, l int64, n int) error {
	switch op {
	case token.OpLsl:
		if n >= 64 {
			return c.st.pushInt(0)
		}
		return c.st.pushDemoted(l << uint(n))
	case token.OpLsr:
		if n >= 64 {
			return c.st.pushInt(0)
		}
		return c.st.pushDemoted(int64((uint64(l) >> uint(n)) & math.MaxInt64))
	case token.OpAsr:
		if n >= 64 {
			if l < 0 {
				return c.st.pushInt(-1)
			}
			return c.st.pushInt(0)
		}
		return c.st.pushDemoted(l >> uint(n))
	}
	return brokenError("dispatch", "operator %s reached the shift path", op)
}
