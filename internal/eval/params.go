package eval

import (
	"github.com/brio-lang/brio/internal/config"
	"github.com/brio-lang/brio/internal/token"
	"github.com/brio-lang/brio/internal/variables"
)

// FormalParam describes one formal parameter of a callable: the variable
// slot the argument is bound to for the duration of the call, its declared
// type, and whether the final value is written back to the caller.
type FormalParam struct {
	Slot  int
	Type  variables.Type
	ByRef bool
}

// Function is a callable definition. Body runs with the formal parameters
// bound and must leave the function's result on the operand stack.
type Function struct {
	Name   string
	Params []FormalParam
	Body   func(*Context) error
}

// refTarget identifies the caller-side storage a by-reference argument
// came from.
type refTarget struct {
	static bool
	slot   int
}

// binding is one staged parameter: values are bound only after every
// argument has been evaluated, so an argument expression never sees a
// half-bound parameter list.
type binding struct {
	formal FormalParam
	value  Value
	target refTarget // by-reference only
}

// callFunction evaluates a call's arguments, binds the formal parameters,
// runs the body and unbinds. The formals' previous values are restored on
// both the success and the error path; by-reference write-back to the
// caller's variable happens only when the call completes.
func (c *Context) callFunction(index int) error {
	if err := c.checkInterrupt(); err != nil {
		return err
	}
	if index < 0 || index >= len(c.funcs) {
		return brokenError("call", "no function definition %d", index)
	}
	fn := c.funcs[index]
	if c.depth >= c.limits.MaxCallDepth {
		return runtimeError(ErrCallDepth, "call to %s is nested too deeply", fn.Name)
	}

	bindings, err := c.scanArguments(fn)
	if err != nil {
		return err
	}

	// Save the formals, then bind. Restoration happens wholesale when the
	// call unwinds, whether it succeeded or not.
	saved := make([]variables.Slot, len(bindings))
	for i, b := range bindings {
		s, err := c.vars.Slot(b.formal.Slot)
		if err != nil {
			return brokenError("call", "%v", err)
		}
		saved[i] = *s
		if err := storeSlot(s, b.value); err != nil {
			c.restoreFormals(bindings, saved, i)
			return err
		}
	}

	c.depth++
	bodyErr := fn.Body(c)
	c.depth--

	// Capture by-reference finals before the formals are restored, in case
	// a caller passed the formal's own slot back to itself.
	var finals []Value
	if bodyErr == nil {
		finals = make([]Value, len(bindings))
		for i, b := range bindings {
			if !b.formal.ByRef {
				continue
			}
			s, err := c.vars.Slot(b.formal.Slot)
			if err != nil {
				return brokenError("call", "%v", err)
			}
			finals[i] = slotValue(s)
		}
	}
	c.restoreFormals(bindings, saved, len(bindings))
	if bodyErr != nil {
		return bodyErr
	}
	for i, b := range bindings {
		if !b.formal.ByRef {
			continue
		}
		if err := c.writeBack(b.target, finals[i]); err != nil {
			return err
		}
	}
	return nil
}

// scanArguments evaluates the call's argument list left to right, checking
// each argument against its formal parameter. Arity mismatches surface as
// soon as a separator disagrees with the parameter count.
func (c *Context) scanArguments(fn *Function) ([]binding, error) {
	if len(fn.Params) == 0 {
		return nil, nil
	}
	if err := c.expect(token.LeftPar); err != nil {
		return nil, runtimeError(ErrNotEnough, "%s needs %d arguments", fn.Name, len(fn.Params))
	}
	bindings := make([]binding, 0, len(fn.Params))
	for i, formal := range fn.Params {
		var b binding
		b.formal = formal
		if formal.ByRef {
			target, v, err := c.scanLvalue()
			if err != nil {
				return nil, err
			}
			b.target = target
			b.value = v
		} else {
			if err := c.expression(); err != nil {
				return nil, err
			}
			v, err := c.st.pop()
			if err != nil {
				return nil, err
			}
			b.value = v
		}
		if err := checkParamType(fn.Name, formal.Type, b.value); err != nil {
			return nil, err
		}
		bindings = append(bindings, b)

		sep := c.nextByte()
		if i < len(fn.Params)-1 {
			if sep == token.RightPar {
				return nil, runtimeError(ErrNotEnough, "not enough arguments for %s", fn.Name)
			}
			if sep != token.Comma {
				return nil, runtimeError(ErrSyntax, "',' missing in call to %s", fn.Name)
			}
		} else {
			if sep == token.Comma {
				return nil, runtimeError(ErrTooMany, "too many arguments for %s", fn.Name)
			}
			if sep != token.RightPar {
				return nil, runtimeError(ErrSyntax, "')' missing in call to %s", fn.Name)
			}
		}
	}
	return bindings, nil
}

// scanLvalue reads a by-reference argument, which must be a plain variable
// reference, and fetches its current value.
func (c *Context) scanLvalue() (refTarget, Value, error) {
	tok := c.nextByte()
	switch tok {
	case token.IntVar, token.Int64Var, token.FloatVar, token.StringVar, token.ArrayVar:
		index, err := c.readUint16()
		if err != nil {
			return refTarget{}, Value{}, err
		}
		s, err := c.vars.Slot(index)
		if err != nil {
			return refTarget{}, Value{}, brokenError("call", "%v", err)
		}
		return refTarget{slot: index}, slotValue(s), nil
	case token.StaticVar:
		slot := int(c.nextByte())
		if slot >= config.StaticSlots {
			return refTarget{}, Value{}, brokenError("call", "bad static variable slot %d", slot)
		}
		return refTarget{static: true, slot: slot}, IntVal(c.vars.Static(slot)), nil
	}
	return refTarget{}, Value{}, runtimeError(ErrSyntax, "a variable is needed for a return parameter")
}

// checkParamType applies the argument compatibility rule: numeric matches
// numeric, string matches string, arrays need the same element type.
func checkParamType(name string, formal variables.Type, v Value) error {
	switch formal {
	case variables.TypeInt, variables.TypeInt64, variables.TypeFloat:
		if !v.Kind.IsNumeric() {
			return runtimeError(ErrParmNum, "argument of %s should be a number", name)
		}
	case variables.TypeString:
		if !v.Kind.IsString() {
			return runtimeError(ErrParmStr, "argument of %s should be a string", name)
		}
	default:
		if !v.Kind.IsArray() || v.Kind.Elem() != formal.Elem() {
			return runtimeError(ErrParmNum, "argument of %s should be a %s", name, formal)
		}
	}
	return nil
}

func (c *Context) restoreFormals(bindings []binding, saved []variables.Slot, n int) {
	for i := 0; i < n; i++ {
		if s, err := c.vars.Slot(bindings[i].formal.Slot); err == nil {
			*s = saved[i]
		}
	}
}

func (c *Context) writeBack(target refTarget, v Value) error {
	if target.static {
		n, err := valueAsInt32(v)
		if err != nil {
			return err
		}
		c.vars.SetStatic(target.slot, n)
		return nil
	}
	s, err := c.vars.Slot(target.slot)
	if err != nil {
		return brokenError("call", "%v", err)
	}
	return storeSlot(s, v)
}

// slotValue reads a variable slot as a stack value. Strings and arrays
// alias the slot's storage.
func slotValue(s *variables.Slot) Value {
	switch s.Type {
	case variables.TypeInt:
		return IntVal(s.Int)
	case variables.TypeInt64:
		return Int64Val(s.Int64)
	case variables.TypeFloat:
		return FloatVal(s.Float)
	case variables.TypeString:
		return StrVal(s.Str)
	default:
		return ArrayVal(arrayKind(s.Type.Elem()), s.Arr)
	}
}

// storeSlot writes a value into a variable slot, converting numeric kinds
// to the slot's declared type. String stores copy the buffer so the slot
// owns its storage; array stores alias the descriptor.
func storeSlot(s *variables.Slot, v Value) error {
	switch s.Type {
	case variables.TypeInt:
		n, err := valueAsInt32(v)
		if err != nil {
			return err
		}
		s.Int = n
	case variables.TypeInt64:
		switch v.Kind {
		case KindInt:
			s.Int64 = int64(v.AsInt())
		case KindInt64:
			s.Int64 = v.AsInt64()
		case KindFloat:
			n, err := toInt64FromFloat(v.AsFloat())
			if err != nil {
				return err
			}
			s.Int64 = n
		default:
			return runtimeError(ErrParmNum, "%s needs a numeric value", s.Name)
		}
	case variables.TypeFloat:
		if !v.Kind.IsNumeric() {
			return runtimeError(ErrParmNum, "%s needs a numeric value", s.Name)
		}
		s.Float = numAsFloat(v)
	case variables.TypeString:
		if !v.Kind.IsString() {
			return runtimeError(ErrParmStr, "%s needs a string value", s.Name)
		}
		s.Str = append([]byte(nil), v.Str...)
	default:
		if !v.Kind.IsArray() || v.Kind.Elem() != s.Type.Elem() {
			return runtimeError(ErrParmNum, "%s needs a %s", s.Name, s.Type)
		}
		s.Arr = v.Arr
	}
	return nil
}

// valueAsInt32 narrows any scalar numeric value to int32, rounding floats.
func valueAsInt32(v Value) (int32, error) {
	switch v.Kind {
	case KindInt:
		return v.AsInt(), nil
	case KindInt64:
		return toInt32From64(v.AsInt64())
	case KindFloat:
		return toInt32FromFloat(v.AsFloat())
	}
	return 0, runtimeError(ErrParmNum, "a numeric value is needed")
}
