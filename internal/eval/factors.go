package eval

import (
	"math"

	"github.com/brio-lang/brio/internal/config"
	"github.com/brio-lang/brio/internal/token"
	"github.com/brio-lang/brio/internal/variables"
)

// factorFn evaluates one factor. The token byte has already been consumed;
// the cursor sits on the token's operand bytes, if any.
type factorFn func(*Context) error

// factorTable maps a token byte to its factor handler. Entries left nil
// cannot start a factor.
var factorTable [256]factorFn

func init() {
	factorTable[token.IntZero] = func(c *Context) error { return c.st.pushInt(0) }
	factorTable[token.IntOne] = func(c *Context) error { return c.st.pushInt(1) }
	factorTable[token.SmallConst] = (*Context).factorSmallConst
	factorTable[token.IntConst] = (*Context).factorIntConst
	factorTable[token.Int64Const] = (*Context).factorInt64Const
	factorTable[token.FloatZero] = func(c *Context) error { return c.st.pushFloat(0) }
	factorTable[token.FloatOne] = func(c *Context) error { return c.st.pushFloat(1) }
	factorTable[token.FloatConst] = (*Context).factorFloatConst
	factorTable[token.StringCon] = (*Context).factorString
	factorTable[token.QStringCon] = (*Context).factorQString
	factorTable[token.IntVar] = (*Context).factorIntVar
	factorTable[token.Int64Var] = (*Context).factorInt64Var
	factorTable[token.FloatVar] = (*Context).factorFloatVar
	factorTable[token.StringVar] = (*Context).factorStringVar
	factorTable[token.ArrayVar] = (*Context).factorArrayVar
	factorTable[token.ArrayRef] = (*Context).factorArrayRef
	factorTable[token.StaticVar] = (*Context).factorStaticVar
	factorTable[token.StaticIndVar] = (*Context).factorStaticIndVar
	factorTable[token.IntIndVar] = (*Context).factorIntIndVar
	factorTable[token.FloatIndVar] = (*Context).factorFloatIndVar
	factorTable[token.Call] = (*Context).factorCall
	factorTable[token.FnNot] = (*Context).factorNot
	factorTable[token.FnTrue] = func(c *Context) error { return c.st.pushInt(basTrue) }
	factorTable[token.FnFalse] = func(c *Context) error { return c.st.pushInt(basFalse) }
	factorTable[token.GetByte] = (*Context).factorGetByte
	factorTable[token.GetWord] = (*Context).factorGetWord
	factorTable[token.GetFloat] = (*Context).factorGetFloat
	factorTable[token.GetString] = (*Context).factorGetString
	factorTable[token.LeftPar] = (*Context).factorParen
	factorTable[token.UnaryOp1] = (*Context).factorUnaryPlus
	factorTable[token.UnaryOp2] = (*Context).factorUnaryMinus
}

func (c *Context) factorSmallConst() error {
	return c.st.pushInt(int32(c.nextByte()) + 1)
}

func (c *Context) factorIntConst() error {
	v, err := c.readInt32()
	if err != nil {
		return err
	}
	return c.st.pushInt(v)
}

func (c *Context) factorInt64Const() error {
	v, err := c.readInt64()
	if err != nil {
		return err
	}
	return c.st.pushInt64(v)
}

func (c *Context) factorFloatConst() error {
	v, err := c.readFloat()
	if err != nil {
		return err
	}
	return c.st.pushFloat(v)
}

// factorString pushes a string literal, copied out of the token stream so
// the value owns its bytes.
func (c *Context) factorString() error {
	n, err := c.readUint16()
	if err != nil {
		return err
	}
	b, err := c.readBytes(n)
	if err != nil {
		return err
	}
	return c.st.push(StrVal(append([]byte(nil), b...)))
}

// factorQString pushes a string literal containing doubled quote characters,
// collapsing each '""' pair to one '"'. The collapsed copy is a temporary.
func (c *Context) factorQString() error {
	n, err := c.readUint16()
	if err != nil {
		return err
	}
	b, err := c.readBytes(n)
	if err != nil {
		return err
	}
	out := make([]byte, 0, n)
	for i := 0; i < len(b); i++ {
		out = append(out, b[i])
		if b[i] == '"' && i+1 < len(b) && b[i+1] == '"' {
			i++
		}
	}
	return c.st.push(StrTempVal(out))
}

func (c *Context) readSlot(want variables.Type) (*variables.Slot, error) {
	index, err := c.readUint16()
	if err != nil {
		return nil, err
	}
	s, err := c.vars.Slot(index)
	if err != nil {
		return nil, brokenError("factor", "%v", err)
	}
	if want != variables.TypeUnknown && s.Type != want {
		return nil, brokenError("factor", "variable %s is %s, token says %s", s.Name, s.Type, want)
	}
	return s, nil
}

func (c *Context) factorIntVar() error {
	s, err := c.readSlot(variables.TypeInt)
	if err != nil {
		return err
	}
	return c.st.pushInt(s.Int)
}

func (c *Context) factorInt64Var() error {
	s, err := c.readSlot(variables.TypeInt64)
	if err != nil {
		return err
	}
	return c.st.pushInt64(s.Int64)
}

func (c *Context) factorFloatVar() error {
	s, err := c.readSlot(variables.TypeFloat)
	if err != nil {
		return err
	}
	return c.st.pushFloat(s.Float)
}

// factorStringVar pushes the variable's string. The value aliases the
// variable's buffer and must not be mutated through the stack.
func (c *Context) factorStringVar() error {
	s, err := c.readSlot(variables.TypeString)
	if err != nil {
		return err
	}
	return c.st.push(StrVal(s.Str))
}

func (c *Context) factorArrayVar() error {
	s, err := c.readSlot(variables.TypeUnknown)
	if err != nil {
		return err
	}
	if s.Arr == nil {
		return runtimeError(ErrTypeArray, "%s is not an array", s.Name)
	}
	kind := arrayKind(s.Arr.Elem())
	if kind == KindUnknown {
		return brokenError("factor", "array %s has no element storage", s.Name)
	}
	return c.st.push(ArrayVal(kind, s.Arr))
}

// factorArrayRef evaluates an array element reference: one index expression
// per dimension, comma-separated, closed by ')'. A numeric element may be
// followed by an indirection operator.
func (c *Context) factorArrayRef() error {
	s, err := c.readSlot(variables.TypeUnknown)
	if err != nil {
		return err
	}
	arr := s.Arr
	if arr == nil {
		return runtimeError(ErrTypeArray, "%s is not an array", s.Name)
	}
	offset := int32(0)
	for i, dim := range arr.Dims {
		idx, err := c.EvalInt32()
		if err != nil {
			return err
		}
		if idx < 0 || idx >= dim {
			return runtimeError(ErrBadIndex, "index %d is out of range for dimension %d of %s", idx, i+1, s.Name)
		}
		offset = offset*dim + idx
		sep := token.RightPar
		if i < len(arr.Dims)-1 {
			sep = token.Comma
		}
		if err := c.expect(sep); err != nil {
			return err
		}
	}
	switch arr.Elem() {
	case variables.TypeString:
		return c.st.push(StrVal(arr.Strings[offset]))
	case variables.TypeInt:
		if ind := c.peekByte(); ind == token.GetByte || ind == token.GetWord || ind == token.GetFloat {
			c.pos++
			return c.indirectLoad(int64(arr.Ints[offset]), ind)
		}
		return c.st.pushInt(arr.Ints[offset])
	case variables.TypeInt64:
		if ind := c.peekByte(); ind == token.GetByte || ind == token.GetWord || ind == token.GetFloat {
			c.pos++
			return c.indirectLoad(arr.Ints64[offset], ind)
		}
		return c.st.pushInt64(arr.Ints64[offset])
	case variables.TypeFloat:
		return c.st.pushFloat(arr.Floats[offset])
	}
	return brokenError("factor", "array %s has no element storage", s.Name)
}

func (c *Context) factorStaticVar() error {
	slot := int(c.nextByte())
	if slot >= config.StaticSlots {
		return brokenError("factor", "bad static variable slot %d", slot)
	}
	return c.st.pushInt(c.vars.Static(slot))
}

// factorStaticIndVar handles a static integer variable used as the base of
// an indirection, as in 'A%?3' or 'A%!off'.
func (c *Context) factorStaticIndVar() error {
	slot := int(c.nextByte())
	if slot >= config.StaticSlots {
		return brokenError("factor", "bad static variable slot %d", slot)
	}
	op := c.nextByte()
	return c.indirectLoad(int64(c.vars.Static(slot)), op)
}

func (c *Context) factorIntIndVar() error {
	s, err := c.readSlot(variables.TypeInt)
	if err != nil {
		return err
	}
	op := c.nextByte()
	return c.indirectLoad(int64(s.Int), op)
}

func (c *Context) factorFloatIndVar() error {
	s, err := c.readSlot(variables.TypeFloat)
	if err != nil {
		return err
	}
	base, err := toInt64FromFloat(s.Float)
	if err != nil {
		return err
	}
	op := c.nextByte()
	return c.indirectLoad(base, op)
}

func (c *Context) factorCall() error {
	index, err := c.readUint16()
	if err != nil {
		return err
	}
	return c.callFunction(index)
}

// factorGetByte handles unary '?': load one byte from the address given by
// the following factor.
func (c *Context) factorGetByte() error {
	return c.indirectLoad(0, token.GetByte)
}

// factorGetWord handles unary '!': load a 32-bit word.
func (c *Context) factorGetWord() error {
	return c.indirectLoad(0, token.GetWord)
}

// factorGetFloat handles unary '|': load an eight-byte float.
func (c *Context) factorGetFloat() error {
	return c.indirectLoad(0, token.GetFloat)
}

// factorGetString handles unary '$': load a CR-terminated string.
func (c *Context) factorGetString() error {
	addr, err := c.EvalIntFactor()
	if err != nil {
		return err
	}
	s, err := c.mem.String(int64(addr))
	if err != nil {
		return memErr(err)
	}
	return c.st.push(StrTempVal(s))
}

// indirectLoad evaluates the offset factor and loads a byte, word or float
// from base+offset.
func (c *Context) indirectLoad(base int64, op byte) error {
	offset, err := c.EvalIntFactor()
	if err != nil {
		return err
	}
	addr := base + int64(offset)
	switch op {
	case token.GetByte:
		b, err := c.mem.Byte(addr)
		if err != nil {
			return memErr(err)
		}
		return c.st.pushInt(int32(b))
	case token.GetWord:
		w, err := c.mem.Word(addr)
		if err != nil {
			return memErr(err)
		}
		return c.st.pushInt(w)
	case token.GetFloat:
		f, err := c.mem.Float(addr)
		if err != nil {
			return memErr(err)
		}
		return c.st.pushFloat(f)
	}
	return brokenError("factor", "bad indirection operator %#02x", op)
}

// memErr converts a memory collaborator rejection into an access violation.
func memErr(err error) error {
	return &RuntimeError{Code: ErrAccess, Msg: err.Error(), Wrapped: err}
}

func (c *Context) factorParen() error {
	if err := c.expression(); err != nil {
		return err
	}
	if c.nextByte() != token.RightPar {
		return runtimeError(ErrSyntax, "')' missing")
	}
	return nil
}

func (c *Context) factorUnaryPlus() error {
	if err := c.factor(); err != nil {
		return err
	}
	if k := c.st.topKind(); !k.IsNumeric() {
		return wantNumber(k)
	}
	return nil
}

func (c *Context) factorUnaryMinus() error {
	if err := c.factor(); err != nil {
		return err
	}
	v, err := c.st.pop()
	if err != nil {
		return err
	}
	switch v.Kind {
	case KindInt:
		return c.st.pushDemoted(-int64(v.AsInt()))
	case KindInt64:
		n := v.AsInt64()
		if n == math.MinInt64 {
			return c.st.pushFloat(-float64(n))
		}
		return c.st.pushDemoted(-n)
	case KindFloat:
		return c.st.pushFloat(-v.AsFloat())
	}
	return wantNumber(v.Kind)
}

// factorNot handles the bitwise complement function NOT.
func (c *Context) factorNot() error {
	if err := c.factor(); err != nil {
		return err
	}
	v, err := c.st.pop()
	if err != nil {
		return err
	}
	switch v.Kind {
	case KindInt:
		return c.st.pushInt(^v.AsInt())
	case KindInt64:
		return c.st.pushDemoted(^v.AsInt64())
	case KindFloat:
		n, err := toInt64FromFloat(v.AsFloat())
		if err != nil {
			return err
		}
		return c.st.pushDemoted(^n)
	}
	return wantNumber(v.Kind)
}
