package eval

import (
	"strings"
	"testing"

	"github.com/brio-lang/brio/internal/config"
	"github.com/brio-lang/brio/internal/token"
	"github.com/brio-lang/brio/internal/variables"
)

func wantStr(t *testing.T, v Value, want string) {
	t.Helper()
	if v.Kind != KindString && v.Kind != KindStringTemp {
		t.Fatalf("got %s, want a string", v.Kind)
	}
	if string(v.Str) != want {
		t.Fatalf("got %q, want %q", v.Str, want)
	}
}

func TestStringConcat(t *testing.T) {
	c := newTestContext(t)
	code := token.NewBuilder().Str("foo").Byte(token.OpTokPlus).Str("bar").Code()
	wantStr(t, mustEval(t, c, code), "foobar")

	// Concatenation is left-associative.
	code = token.NewBuilder().Str("a").Byte(token.OpTokPlus).Str("b").
		Byte(token.OpTokPlus).Str("c").Code()
	wantStr(t, mustEval(t, c, code), "abc")

	code = token.NewBuilder().Str("").Byte(token.OpTokPlus).Str("").Code()
	wantStr(t, mustEval(t, c, code), "")
}

func TestStringVariableConcat(t *testing.T) {
	c := newTestContext(t)
	slot := c.Vars().Declare("s$", variables.TypeString)
	s, _ := c.Vars().Slot(slot)
	s.Str = []byte("hello")

	code := token.NewBuilder().StringVar(slot).Byte(token.OpTokPlus).Str(" world").Code()
	v := mustEval(t, c, code)
	wantStr(t, v, "hello world")

	// The variable's own bytes must be untouched.
	if string(s.Str) != "hello" {
		t.Fatalf("variable changed to %q", s.Str)
	}
}

func TestStringComparisons(t *testing.T) {
	c := newTestContext(t)
	tests := []struct {
		l, r string
		op   byte
		want int32
	}{
		{"abc", "abc", token.OpTokEq, basTrue},
		{"abc", "abd", token.OpTokEq, basFalse},
		{"abc", "abd", token.OpTokLt, basTrue},
		{"ab", "abc", token.OpTokLt, basTrue},
		{"abc", "ab", token.OpTokGt, basTrue},
		{"", "a", token.OpTokLt, basTrue},
		{"abc", "abc", token.OpTokLe, basTrue},
		{"abc", "abc", token.OpTokGe, basTrue},
		{"abc", "abd", token.OpTokNe, basTrue},
		{"Z", "a", token.OpTokLt, basTrue}, // byte values, not collation
	}
	for _, tc := range tests {
		code := token.NewBuilder().Str(tc.l).Byte(tc.op).Str(tc.r).Code()
		v := mustEval(t, c, code)
		if got := v.AsInt(); got != tc.want {
			t.Errorf("%q %c %q: got %d, want %d", tc.l, tc.op, tc.r, got, tc.want)
		}
	}
}

func TestQuotedStringCollapse(t *testing.T) {
	c := newTestContext(t)
	// A string containing quotes takes the doubled-quote encoding; the
	// evaluator collapses the pairs back.
	code := token.NewBuilder().Str(`say "hi"`).Code()
	wantStr(t, mustEval(t, c, code), `say "hi"`)
}

func TestStringTooLong(t *testing.T) {
	limits := config.DefaultLimits()
	limits.MaxStringLen = 8
	c, err := New(nil, nil, limits)
	if err != nil {
		t.Fatal(err)
	}
	code := token.NewBuilder().Str("12345").Byte(token.OpTokPlus).Str("6789").Code()
	wantErrCode(t, c, code, ErrStringLen)

	// Exactly at the limit is fine.
	code = token.NewBuilder().Str("1234").Byte(token.OpTokPlus).Str("5678").Code()
	wantStr(t, mustEval(t, c, code), "12345678")
}

func TestStringNumberMixing(t *testing.T) {
	c := newTestContext(t)

	// '+' with a numeric right operand needed a number on the left.
	code := token.NewBuilder().Str("n=").Byte(token.OpTokPlus).Int(1).Code()
	wantErrCode(t, c, code, ErrTypeNum)

	// '+' with a string right operand needed a string on the left.
	code = token.NewBuilder().Int(1).Byte(token.OpTokPlus).Str("n").Code()
	wantErrCode(t, c, code, ErrTypeStr)

	// The numeric-only operators report that a number was wanted, whatever
	// the left operand was.
	for _, op := range []byte{
		token.OpTokMinus, token.OpTokMul, token.OpTokDiv, token.OpTokIntDiv,
		token.OpTokMod, token.OpTokPow, token.OpTokLsl, token.OpTokLsr,
		token.OpTokAsr, token.OpTokAnd, token.OpTokOr, token.OpTokEor,
	} {
		code = token.NewBuilder().Int(1).Byte(op).Str("x").Code()
		wantErrCode(t, c, code, ErrTypeNum)
		code = token.NewBuilder().Str("a").Byte(op).Str("b").Code()
		wantErrCode(t, c, code, ErrTypeNum)
	}
}

func TestStringLiteralIsCopied(t *testing.T) {
	c := newTestContext(t)
	code := token.NewBuilder().Str("abc").Code()
	v := mustEval(t, c, code)
	wantStr(t, v, "abc")

	// Scribbling on the result must not reach the token stream.
	v.Str[0] = 'X'
	wantStr(t, mustEval(t, c, code), "abc")
}

func TestLongConcatChain(t *testing.T) {
	c := newTestContext(t)
	b := token.NewBuilder().Str("x")
	for i := 0; i < 99; i++ {
		b.Byte(token.OpTokPlus).Str("x")
	}
	wantStr(t, mustEval(t, c, b.Code()), strings.Repeat("x", 100))
}
