package eval

import (
	"encoding/binary"
	"math"
	"sync/atomic"

	"github.com/brio-lang/brio/internal/config"
	"github.com/brio-lang/brio/internal/memory"
	"github.com/brio-lang/brio/internal/token"
	"github.com/brio-lang/brio/internal/variables"
)

// Context is one evaluation session: the operand stack, the variable table,
// the emulated memory region, and the registered function definitions. It is
// not safe for concurrent use; the only cross-goroutine entry point is
// Interrupt.
type Context struct {
	vars   *variables.Table
	mem    memory.Region
	funcs  []*Function
	limits config.Limits

	st    *stack
	depth int // current function call nesting

	code []byte
	pos  int

	interrupted atomic.Bool
}

// New creates an evaluation context with the given variable table, memory
// region and resource limits. A nil region gets a default flat region.
func New(vars *variables.Table, mem memory.Region, limits config.Limits) (*Context, error) {
	if err := limits.Normalize(); err != nil {
		return nil, err
	}
	if vars == nil {
		vars = variables.NewTable()
	}
	if mem == nil {
		mem = memory.NewFlat(limits.MemorySize)
	}
	return &Context{
		vars:   vars,
		mem:    mem,
		limits: limits,
		st:     newStack(limits.MaxStackSize),
	}, nil
}

// Vars returns the context's variable table.
func (c *Context) Vars() *variables.Table { return c.vars }

// Memory returns the context's emulated memory region.
func (c *Context) Memory() memory.Region { return c.mem }

// RegisterFunction adds a callable definition and returns the index Call
// tokens refer to it by.
func (c *Context) RegisterFunction(fn *Function) int {
	c.funcs = append(c.funcs, fn)
	return len(c.funcs) - 1
}

// Interrupt requests that the running evaluation stop at the next poll
// point. Safe to call from another goroutine or a signal handler.
func (c *Context) Interrupt() {
	c.interrupted.Store(true)
}

// ClearInterrupt resets a pending interrupt request.
func (c *Context) ClearInterrupt() {
	c.interrupted.Store(false)
}

func (c *Context) checkInterrupt() error {
	if c.interrupted.Load() {
		c.interrupted.Store(false)
		return runtimeError(ErrEscape, "escape")
	}
	return nil
}

// Eval evaluates one complete expression from a token stream and returns
// its value. The stack is unwound to its prior depth on error, discarding
// any partial results.
func (c *Context) Eval(code []byte) (Value, error) {
	savedCode, savedPos := c.code, c.pos
	base := c.st.depth()
	c.code, c.pos = code, 0
	err := c.expression()
	c.code, c.pos = savedCode, savedPos
	if err != nil {
		c.st.reset(base)
		return Value{}, err
	}
	if c.st.depth() != base+1 {
		c.st.reset(base)
		return Value{}, brokenError("eval", "expression left %d values on the stack", c.st.depth()-base)
	}
	return c.st.pop()
}

// EvalExpression evaluates one expression from the current token stream,
// leaving its value on the operand stack.
func (c *Context) EvalExpression() error {
	return c.expression()
}

// EvalFactor evaluates a single factor from the current token stream,
// leaving its value on the operand stack.
func (c *Context) EvalFactor() error {
	return c.factor()
}

// EvalInt32 evaluates an expression and converts the result to a 32-bit
// integer, rounding a float result.
func (c *Context) EvalInt32() (int32, error) {
	if err := c.expression(); err != nil {
		return 0, err
	}
	v, err := c.st.pop()
	if err != nil {
		return 0, err
	}
	switch v.Kind {
	case KindInt:
		return v.AsInt(), nil
	case KindInt64:
		return toInt32From64(v.AsInt64())
	case KindFloat:
		return toInt32FromFloat(v.AsFloat())
	}
	return 0, wantNumber(v.Kind)
}

// EvalInt64 evaluates an expression and converts the result to a 64-bit
// integer, rounding a float result.
func (c *Context) EvalInt64() (int64, error) {
	if err := c.expression(); err != nil {
		return 0, err
	}
	v, err := c.st.pop()
	if err != nil {
		return 0, err
	}
	switch v.Kind {
	case KindInt:
		return int64(v.AsInt()), nil
	case KindInt64:
		return v.AsInt64(), nil
	case KindFloat:
		return toInt64FromFloat(v.AsFloat())
	}
	return 0, wantNumber(v.Kind)
}

// EvalIntFactor evaluates a single factor as a 32-bit integer. Indirection
// operands use this so that '?a+1' parses as '(?a)+1'.
func (c *Context) EvalIntFactor() (int32, error) {
	if err := c.factor(); err != nil {
		return 0, err
	}
	v, err := c.st.pop()
	if err != nil {
		return 0, err
	}
	switch v.Kind {
	case KindInt:
		return v.AsInt(), nil
	case KindInt64:
		return toInt32From64(v.AsInt64())
	case KindFloat:
		return toInt32FromFloat(v.AsFloat())
	}
	return 0, wantNumber(v.Kind)
}

// StoreVariable writes a value into a variable slot, applying the usual
// numeric conversions. The statement layer uses it for assignment.
func (c *Context) StoreVariable(index int, v Value) error {
	s, err := c.vars.Slot(index)
	if err != nil {
		return brokenError("store", "%v", err)
	}
	return storeSlot(s, v)
}

// StoreStatic writes a value into one of the static integer variables.
func (c *Context) StoreStatic(index int, v Value) error {
	if index < 0 || index >= config.StaticSlots {
		return brokenError("store", "bad static variable slot %d", index)
	}
	n, err := valueAsInt32(v)
	if err != nil {
		return err
	}
	c.vars.SetStatic(index, n)
	return nil
}

// PopValue removes and returns the top of the operand stack. Callers use it
// to collect the result after EvalExpression.
func (c *Context) PopValue() (Value, error) {
	return c.st.pop()
}

// PushValue places a value on the operand stack. The statement layer uses it
// to seed function results.
func (c *Context) PushValue(v Value) error {
	return c.st.push(v)
}

// StackDepth reports the operand stack depth, mainly for tests and traces.
func (c *Context) StackDepth() int { return c.st.depth() }

// Token stream access. The stream is trusted to be well formed at the
// byte-count level because the tokeniser produced it; running off the end
// means the stream is corrupt, not that the user made a mistake.

func (c *Context) peekByte() byte {
	if c.pos >= len(c.code) {
		return token.EOF
	}
	return c.code[c.pos]
}

func (c *Context) nextByte() byte {
	b := c.peekByte()
	c.pos++
	return b
}

func (c *Context) readUint16() (int, error) {
	if c.pos+2 > len(c.code) {
		return 0, brokenError("eval", "token stream truncated")
	}
	v := binary.LittleEndian.Uint16(c.code[c.pos:])
	c.pos += 2
	return int(v), nil
}

func (c *Context) readInt32() (int32, error) {
	if c.pos+4 > len(c.code) {
		return 0, brokenError("eval", "token stream truncated")
	}
	v := binary.LittleEndian.Uint32(c.code[c.pos:])
	c.pos += 4
	return int32(v), nil
}

func (c *Context) readInt64() (int64, error) {
	if c.pos+8 > len(c.code) {
		return 0, brokenError("eval", "token stream truncated")
	}
	v := binary.LittleEndian.Uint64(c.code[c.pos:])
	c.pos += 8
	return int64(v), nil
}

func (c *Context) readFloat() (float64, error) {
	if c.pos+8 > len(c.code) {
		return 0, brokenError("eval", "token stream truncated")
	}
	v := binary.LittleEndian.Uint64(c.code[c.pos:])
	c.pos += 8
	return math.Float64frombits(v), nil
}

func (c *Context) readBytes(n int) ([]byte, error) {
	if c.pos+n > len(c.code) {
		return nil, brokenError("eval", "token stream truncated")
	}
	b := c.code[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// expect consumes the next token byte, which must be tok.
func (c *Context) expect(tok byte) error {
	if got := c.nextByte(); got != tok {
		return runtimeError(ErrSyntax, "expected %q here", tok)
	}
	return nil
}
