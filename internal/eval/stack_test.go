package eval

import (
	"testing"

	"github.com/brio-lang/brio/internal/config"
	"github.com/brio-lang/brio/internal/token"
)

func TestStackGrowth(t *testing.T) {
	s := newStack(config.DefaultMaxStackSize)
	n := config.InitialStackSize + 10
	for i := 0; i < n; i++ {
		if err := s.pushInt(int32(i)); err != nil {
			t.Fatalf("push %d: %v", i, err)
		}
	}
	if s.depth() != n {
		t.Fatalf("depth %d, want %d", s.depth(), n)
	}
	for i := n - 1; i >= 0; i-- {
		v, err := s.pop()
		if err != nil {
			t.Fatalf("pop %d: %v", i, err)
		}
		if v.AsInt() != int32(i) {
			t.Fatalf("pop %d: got %d", i, v.AsInt())
		}
	}
}

func TestStackCeiling(t *testing.T) {
	// The ceiling binds even when it is below the initial allocation size.
	s := newStack(4)
	for i := 0; i < 4; i++ {
		if err := s.pushInt(0); err != nil {
			t.Fatalf("push %d: %v", i, err)
		}
	}
	for i := 0; i < 6; i++ {
		if err := s.pushInt(0); ErrorCode(err) != ErrNoRoom {
			t.Fatalf("push past the ceiling: got %v, want a no-room error", err)
		}
	}
	if s.depth() != 4 {
		t.Fatalf("depth %d after rejected pushes, want 4", s.depth())
	}
}

func TestStackCeilingThroughEval(t *testing.T) {
	limits := config.DefaultLimits()
	limits.MaxStackSize = 2
	c, err := New(nil, nil, limits)
	if err != nil {
		t.Fatal(err)
	}
	// Two pending operands fit; a third does not.
	code := token.NewBuilder().Int(1).Byte(token.OpTokPlus).Int(2).Code()
	wantInt(t, mustEval(t, c, code), 3)

	code = token.NewBuilder().Int(1).Byte(token.OpTokPlus).
		Byte(token.LeftPar).Int(2).Byte(token.OpTokPlus).Int(3).
		Byte(token.RightPar).Code()
	wantErrCode(t, c, code, ErrNoRoom)
}

func TestStackReset(t *testing.T) {
	s := newStack(config.DefaultMaxStackSize)
	s.pushInt(1)
	s.pushInt(2)
	s.pushInt(3)
	s.reset(1)
	if s.depth() != 1 {
		t.Fatalf("depth %d after reset, want 1", s.depth())
	}
	v, err := s.pop()
	if err != nil || v.AsInt() != 1 {
		t.Fatalf("got %v, %v", v, err)
	}
}

func TestStackTypedPops(t *testing.T) {
	s := newStack(config.DefaultMaxStackSize)

	s.push(StrVal([]byte("x")))
	if _, err := s.popNumAsInt64(); ErrorCode(err) != ErrTypeNum {
		t.Fatalf("popNumAsInt64 on a string: %v", err)
	}

	s.pushInt(1)
	if _, err := s.popString(); ErrorCode(err) != ErrTypeStr {
		t.Fatalf("popString on an integer: %v", err)
	}

	s.pushFloat(2.5)
	if _, err := s.popArray(); ErrorCode(err) != ErrTypeArray {
		t.Fatalf("popArray on a float: %v", err)
	}

	if _, err := s.pop(); ErrorCode(err) != ErrBroken {
		t.Fatalf("pop on an empty stack: %v", err)
	}
	if s.topKind() != KindUnknown {
		t.Fatalf("topKind on an empty stack: %v", s.topKind())
	}
}

func TestStackUnwindsAfterDeepError(t *testing.T) {
	// A failure deep inside a nested expression must leave nothing behind.
	c := newTestContext(t)
	code := token.NewBuilder().Int(1).Byte(token.OpTokPlus).
		Byte(token.LeftPar).Int(2).Byte(token.OpTokMul).
		Byte(token.LeftPar).Int(3).Byte(token.OpTokDiv).Int(0).
		Byte(token.RightPar).Byte(token.RightPar).Code()
	wantErrCode(t, c, code, ErrDivZero)

	// The context stays usable.
	wantInt(t, mustEval(t, c, token.NewBuilder().Int(7).Code()), 7)
}
