package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brio-lang/brio/internal/config"
	"github.com/brio-lang/brio/internal/token"
	"github.com/brio-lang/brio/internal/variables"
)

// registerDouble defines FNdouble(n%) = n%*2 with n% bound to a fresh slot.
func registerDouble(c *Context) (fnIndex, paramSlot int) {
	slot := c.Vars().Declare("n%", variables.TypeInt)
	body := token.NewBuilder().IntVar(slot).Byte(token.OpTokMul).Int(2).Code()
	index := c.RegisterFunction(&Function{
		Name:   "FNdouble",
		Params: []FormalParam{{Slot: slot, Type: variables.TypeInt}},
		Body: func(c *Context) error {
			return c.evalInto(body)
		},
	})
	return index, slot
}

// evalInto evaluates a token stream in the current context, leaving its
// value on the operand stack the way a function body must.
func (c *Context) evalInto(code []byte) error {
	v, err := c.Eval(code)
	if err != nil {
		return err
	}
	return c.PushValue(v)
}

func TestCallByValue(t *testing.T) {
	c := newTestContext(t)
	fn, slot := registerDouble(c)

	code := token.NewBuilder().Call(fn).Byte(token.LeftPar).Int(21).Byte(token.RightPar).Code()
	v, err := c.Eval(code)
	require.NoError(t, err)
	assert.Equal(t, KindInt, v.Kind)
	assert.Equal(t, int32(42), v.AsInt())

	// The formal is restored to its pre-call value.
	s, err := c.Vars().Slot(slot)
	require.NoError(t, err)
	assert.Equal(t, int32(0), s.Int)
}

func TestCallInExpression(t *testing.T) {
	c := newTestContext(t)
	fn, _ := registerDouble(c)

	// 1 + FNdouble(3) * 10
	code := token.NewBuilder().Int(1).Byte(token.OpTokPlus).
		Call(fn).Byte(token.LeftPar).Int(3).Byte(token.RightPar).
		Byte(token.OpTokMul).Int(10).Code()
	v, err := c.Eval(code)
	require.NoError(t, err)
	assert.Equal(t, int32(61), v.AsInt())
}

func TestCallArgumentConversion(t *testing.T) {
	c := newTestContext(t)
	fn, _ := registerDouble(c)

	// A float argument rounds to the integer formal.
	code := token.NewBuilder().Call(fn).Byte(token.LeftPar).Float(2.6).Byte(token.RightPar).Code()
	v, err := c.Eval(code)
	require.NoError(t, err)
	assert.Equal(t, int32(6), v.AsInt())
}

func TestCallArity(t *testing.T) {
	c := newTestContext(t)
	fn, _ := registerDouble(c)

	code := token.NewBuilder().Call(fn).Byte(token.LeftPar).Int(1).
		Byte(token.Comma).Int(2).Byte(token.RightPar).Code()
	_, err := c.Eval(code)
	assert.Equal(t, ErrTooMany, ErrorCode(err))
	assert.Zero(t, c.StackDepth())

	code = token.NewBuilder().Call(fn).Byte(token.LeftPar).Byte(token.RightPar).Code()
	_, err = c.Eval(code)
	assert.Equal(t, ErrBadExpr, ErrorCode(err))

	code = token.NewBuilder().Call(fn).Code()
	_, err = c.Eval(code)
	assert.Equal(t, ErrNotEnough, ErrorCode(err))
}

func TestCallArgumentTypes(t *testing.T) {
	c := newTestContext(t)
	fn, _ := registerDouble(c)

	code := token.NewBuilder().Call(fn).Byte(token.LeftPar).Str("x").Byte(token.RightPar).Code()
	_, err := c.Eval(code)
	assert.Equal(t, ErrParmNum, ErrorCode(err))

	sslot := c.Vars().Declare("t$", variables.TypeString)
	sfn := c.RegisterFunction(&Function{
		Name:   "FNlen1",
		Params: []FormalParam{{Slot: sslot, Type: variables.TypeString}},
		Body:   func(c *Context) error { return c.PushValue(IntVal(1)) },
	})
	code = token.NewBuilder().Call(sfn).Byte(token.LeftPar).Int(3).Byte(token.RightPar).Code()
	_, err = c.Eval(code)
	assert.Equal(t, ErrParmStr, ErrorCode(err))
}

func TestCallByReference(t *testing.T) {
	c := newTestContext(t)
	formal := c.Vars().Declare("out%", variables.TypeInt)
	body := token.NewBuilder().IntVar(formal).Byte(token.OpTokPlus).Int(100).Code()
	fn := c.RegisterFunction(&Function{
		Name:   "FNbump",
		Params: []FormalParam{{Slot: formal, Type: variables.TypeInt, ByRef: true}},
		Body: func(c *Context) error {
			// Set the formal to its value plus 100, then return it.
			v, err := c.Eval(body)
			if err != nil {
				return err
			}
			if err := c.StoreVariable(formal, v); err != nil {
				return err
			}
			return c.PushValue(v)
		},
	})

	arg := c.Vars().Declare("v%", variables.TypeInt)
	s, err := c.Vars().Slot(arg)
	require.NoError(t, err)
	s.Int = 5

	code := token.NewBuilder().Call(fn).Byte(token.LeftPar).IntVar(arg).Byte(token.RightPar).Code()
	v, err := c.Eval(code)
	require.NoError(t, err)
	assert.Equal(t, int32(105), v.AsInt())

	// The caller's variable got the final value, the formal was restored.
	assert.Equal(t, int32(105), s.Int)
	f, err := c.Vars().Slot(formal)
	require.NoError(t, err)
	assert.Equal(t, int32(0), f.Int)
}

func TestCallByReferenceStatic(t *testing.T) {
	c := newTestContext(t)
	formal := c.Vars().Declare("out%", variables.TypeInt)
	fn := c.RegisterFunction(&Function{
		Name:   "FNset",
		Params: []FormalParam{{Slot: formal, Type: variables.TypeInt, ByRef: true}},
		Body: func(c *Context) error {
			if err := c.StoreVariable(formal, IntVal(99)); err != nil {
				return err
			}
			return c.PushValue(IntVal(0))
		},
	})

	c.Vars().SetStatic(2, 7) // C%
	code := token.NewBuilder().Call(fn).Byte(token.LeftPar).StaticVar(2).Byte(token.RightPar).Code()
	_, err := c.Eval(code)
	require.NoError(t, err)
	assert.Equal(t, int32(99), c.Vars().Static(2))
}

func TestCallByReferenceNeedsVariable(t *testing.T) {
	c := newTestContext(t)
	formal := c.Vars().Declare("out%", variables.TypeInt)
	fn := c.RegisterFunction(&Function{
		Name:   "FNset",
		Params: []FormalParam{{Slot: formal, Type: variables.TypeInt, ByRef: true}},
		Body:   func(c *Context) error { return c.PushValue(IntVal(0)) },
	})

	code := token.NewBuilder().Call(fn).Byte(token.LeftPar).Int(5).Byte(token.RightPar).Code()
	_, err := c.Eval(code)
	assert.Equal(t, ErrSyntax, ErrorCode(err))
}

func TestCallErrorRestoresFormals(t *testing.T) {
	c := newTestContext(t)
	formal := c.Vars().Declare("n%", variables.TypeInt)
	fn := c.RegisterFunction(&Function{
		Name:   "FNboom",
		Params: []FormalParam{{Slot: formal, Type: variables.TypeInt, ByRef: true}},
		Body: func(c *Context) error {
			// Mutate the formal, then fail.
			if err := c.StoreVariable(formal, IntVal(123)); err != nil {
				return err
			}
			return runtimeError(ErrDivZero, "division by zero")
		},
	})

	arg := c.Vars().Declare("v%", variables.TypeInt)
	s, err := c.Vars().Slot(arg)
	require.NoError(t, err)
	s.Int = 5
	f, err := c.Vars().Slot(formal)
	require.NoError(t, err)
	f.Int = 1

	code := token.NewBuilder().Call(fn).Byte(token.LeftPar).IntVar(arg).Byte(token.RightPar).Code()
	_, err = c.Eval(code)
	assert.Equal(t, ErrDivZero, ErrorCode(err))

	// No write-back on error, and the formal is back to its old value.
	assert.Equal(t, int32(5), s.Int)
	assert.Equal(t, int32(1), f.Int)
	assert.Zero(t, c.StackDepth())
}

func TestCallDepthLimit(t *testing.T) {
	limits := config.DefaultLimits()
	limits.MaxCallDepth = 8
	c, err := New(nil, nil, limits)
	require.NoError(t, err)

	var code []byte
	fn := c.RegisterFunction(&Function{
		Name: "FNloop",
		Body: func(c *Context) error {
			v, err := c.Eval(code)
			if err != nil {
				return err
			}
			return c.PushValue(v)
		},
	})
	code = token.NewBuilder().Call(fn).Code()

	_, err = c.Eval(code)
	assert.Equal(t, ErrCallDepth, ErrorCode(err))
	assert.Zero(t, c.StackDepth())
}

func TestCallArrayParameter(t *testing.T) {
	c := newTestContext(t)
	formal, err := c.Vars().DeclareArray("f%()", variables.TypeIntArray, 1)
	require.NoError(t, err)
	body := token.NewBuilder().ArrayRef(formal).Int(1).Byte(token.RightPar).Code()
	fn := c.RegisterFunction(&Function{
		Name:   "FNsecond",
		Params: []FormalParam{{Slot: formal, Type: variables.TypeIntArray}},
		Body: func(c *Context) error {
			return c.evalInto(body)
		},
	})

	a := declareIntArray(t, c, "a%()", []int32{10, 20, 30}, 3)
	code := token.NewBuilder().Call(fn).Byte(token.LeftPar).ArrayVar(a).Byte(token.RightPar).Code()
	v, err := c.Eval(code)
	require.NoError(t, err)
	assert.Equal(t, int32(20), v.AsInt())

	// A float array does not match an integer array formal.
	fa := declareFloatArray(t, c, "x()", []float64{1}, 1)
	code = token.NewBuilder().Call(fn).Byte(token.LeftPar).ArrayVar(fa).Byte(token.RightPar).Code()
	_, err = c.Eval(code)
	assert.Equal(t, ErrParmNum, ErrorCode(err))
}
