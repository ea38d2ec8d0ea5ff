package eval

import (
	"github.com/brio-lang/brio/internal/config"
)

const (
	basTrue  = int32(config.True)
	basFalse = int32(config.False)
)

// stack is the operand stack. It grows on demand up to the configured
// ceiling and is shared by every expression evaluated in a session, so a
// function call's arguments and the caller's partial results coexist on it.
type stack struct {
	items []Value
	sp    int
	max   int
}

func newStack(maxSize int) *stack {
	n := config.InitialStackSize
	if n > maxSize {
		n = maxSize
	}
	return &stack{
		items: make([]Value, n),
		max:   maxSize,
	}
}

// depth returns the number of values currently stacked.
func (s *stack) depth() int { return s.sp }

// reset discards everything above the given depth. Used to unwind partial
// results when evaluation fails partway through an expression.
func (s *stack) reset(depth int) {
	for i := depth; i < s.sp; i++ {
		s.items[i] = Value{}
	}
	s.sp = depth
}

func (s *stack) push(v Value) error {
	if s.sp == len(s.items) {
		if len(s.items) >= s.max {
			return runtimeError(ErrNoRoom, "expression is too complex to evaluate")
		}
		grown := len(s.items) + config.StackGrowthIncrement
		if grown > s.max {
			grown = s.max
		}
		items := make([]Value, grown)
		copy(items, s.items)
		s.items = items
	}
	s.items[s.sp] = v
	s.sp++
	return nil
}

func (s *stack) pop() (Value, error) {
	if s.sp == 0 {
		return Value{}, brokenError("stack", "operand stack underflow")
	}
	s.sp--
	v := s.items[s.sp]
	s.items[s.sp] = Value{}
	return v, nil
}

// topKind returns the kind of the topmost value, or KindUnknown on an empty
// stack. Handlers use it to dispatch before committing to a pop.
func (s *stack) topKind() Kind {
	if s.sp == 0 {
		return KindUnknown
	}
	return s.items[s.sp-1].Kind
}

func (s *stack) pushInt(v int32) error     { return s.push(IntVal(v)) }
func (s *stack) pushInt64(v int64) error   { return s.push(Int64Val(v)) }
func (s *stack) pushFloat(v float64) error { return s.push(FloatVal(v)) }
func (s *stack) pushBool(b bool) error     { return s.push(BoolVal(b)) }

// popNumAsInt64 pops any scalar numeric value as an int64, truncating a
// float toward zero.
func (s *stack) popNumAsInt64() (int64, error) {
	v, err := s.pop()
	if err != nil {
		return 0, err
	}
	if !v.Kind.IsNumeric() {
		return 0, wantNumber(v.Kind)
	}
	return numAsInt64(v)
}

// popNumAsFloat pops any scalar numeric value as a float64.
func (s *stack) popNumAsFloat() (float64, error) {
	v, err := s.pop()
	if err != nil {
		return 0, err
	}
	switch v.Kind {
	case KindInt:
		return float64(v.AsInt()), nil
	case KindInt64:
		return float64(v.AsInt64()), nil
	case KindFloat:
		return v.AsFloat(), nil
	}
	return 0, wantNumber(v.Kind)
}

// popString pops a string value of either string kind.
func (s *stack) popString() (Value, error) {
	v, err := s.pop()
	if err != nil {
		return Value{}, err
	}
	if !v.Kind.IsString() {
		return Value{}, wantString(v.Kind)
	}
	return v, nil
}

// popArray pops an array value, checking only that it is an array.
func (s *stack) popArray() (Value, error) {
	v, err := s.pop()
	if err != nil {
		return Value{}, err
	}
	if !v.Kind.IsArray() {
		return Value{}, wantArray(v.Kind)
	}
	if v.Arr == nil {
		return Value{}, brokenError("stack", "array value with no descriptor")
	}
	return v, nil
}
