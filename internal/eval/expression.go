package eval

import (
	"github.com/brio-lang/brio/internal/token"
)

// opStackMark sits at the base of the operator stack. Its priority class is
// zero so it stops every drain loop.
const opStackMark = token.Entry(0)

// expression evaluates one expression from the token stream, leaving its
// value on the operand stack. Operators are deferred on an explicit operator
// stack and applied when a lower-or-equal priority operator arrives.
//
// Operators in the comparison priority class do not chain: when applying a
// pending comparison would be followed by another comparison with nothing of
// lower priority between them, parsing stops and the second operator is left
// unconsumed for the statement layer.
func (c *Context) expression() error {
	if err := c.checkInterrupt(); err != nil {
		return err
	}
	if err := c.factor(); err != nil {
		return err
	}
	lastop := token.OperTable[c.peekByte()]
	if lastop == opStackMark {
		return nil // single factor, nothing to apply
	}
	c.pos++
	if err := c.factor(); err != nil {
		return err
	}
	thisop := token.OperTable[c.peekByte()]
	if thisop == opStackMark {
		// Plain '<value> <op> <value>' expression.
		return c.applyOp(lastop.Op())
	}

	ops := make([]token.Entry, 1, c.limits.OpStackSize)
	ops[0] = opStackMark
	pop := func() token.Entry {
		e := ops[len(ops)-1]
		ops = ops[:len(ops)-1]
		return e
	}
climb:
	for {
		if thisop.Priority() > lastop.Priority() {
			if len(ops) == c.limits.OpStackSize {
				return runtimeError(ErrOpStack, "expression is too complex to evaluate")
			}
		} else if thisop.Priority() == token.PrioCompare {
			for lastop.Priority() >= thisop.Priority() && lastop.Priority() != token.PrioCompare {
				if err := c.applyOp(lastop.Op()); err != nil {
					return err
				}
				lastop = pop()
			}
			if lastop.Priority() == token.PrioCompare {
				break climb // comparisons do not chain
			}
		} else {
			for {
				if err := c.applyOp(lastop.Op()); err != nil {
					return err
				}
				lastop = pop()
				if lastop.Priority() < thisop.Priority() {
					break
				}
			}
		}
		ops = append(ops, lastop)
		lastop = thisop
		c.pos++
		if err := c.factor(); err != nil {
			return err
		}
		thisop = token.OperTable[c.peekByte()]
		if thisop == opStackMark {
			break
		}
	}
	for lastop != opStackMark {
		if err := c.applyOp(lastop.Op()); err != nil {
			return err
		}
		lastop = pop()
	}
	return nil
}

// factor evaluates a single factor in a context where the grammar does not
// allow a full expression.
func (c *Context) factor() error {
	fn := factorTable[c.peekByte()]
	if fn == nil {
		return runtimeError(ErrBadExpr, "expression wanted but found token %#02x", c.peekByte())
	}
	c.pos++
	return fn(c)
}
