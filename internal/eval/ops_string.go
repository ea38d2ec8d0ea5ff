package eval

import (
	"github.com/brio-lang/brio/internal/token"
)

// concatStringRight handles '+' with a string right operand: ordinary
// concatenation, or a broadcast when the left operand is a string array.
func concatStringRight(c *Context) error {
	right, err := c.st.popString()
	if err != nil {
		return err
	}
	lk := c.st.topKind()
	if lk == KindStringArray || lk == KindStringArrayTemp {
		left, err := c.st.popArray()
		if err != nil {
			return err
		}
		return c.broadcastScalar(token.OpAdd, left, right, true)
	}
	left, err := c.st.popString()
	if err != nil {
		return err
	}
	buf, err := c.concat(left.Str, right.Str)
	if err != nil {
		return err
	}
	return c.st.push(StrTempVal(buf))
}

// concatArrayRight handles '+' with a string array right operand.
func concatArrayRight(c *Context) error {
	right, err := c.st.popArray()
	if err != nil {
		return err
	}
	lk := c.st.topKind()
	if lk == KindStringArray || lk == KindStringArrayTemp {
		left, err := c.st.popArray()
		if err != nil {
			return err
		}
		return c.broadcastArrays(token.OpAdd, left, right)
	}
	if !lk.IsString() {
		return wantString(lk)
	}
	left, err := c.st.popString()
	if err != nil {
		return err
	}
	return c.broadcastScalar(token.OpAdd, right, left, false)
}

// concat joins two strings, enforcing the string length ceiling.
func (c *Context) concat(l, r []byte) ([]byte, error) {
	if len(l)+len(r) > c.limits.MaxStringLen {
		return nil, runtimeError(ErrStringLen, "string is longer than %d characters", c.limits.MaxStringLen)
	}
	buf := make([]byte, 0, len(l)+len(r))
	buf = append(buf, l...)
	buf = append(buf, r...)
	return buf, nil
}
