package eval

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Code classifies a runtime error. Most codes describe user mistakes; the
// Broken code is reserved for states the interpreter should never reach and
// always indicates an implementation defect.
type Code int

const (
	ErrNone Code = iota
	ErrTypeNum        // number wanted, got string or array
	ErrTypeStr        // string wanted, got number or array
	ErrTypeArray      // array wanted
	ErrBadArith       // operator is not defined for this operand type
	ErrArrayShape     // element-wise operands have different shapes
	ErrMatrixShape    // matrix multiplication operands are incompatible
	ErrDivZero        // division or remainder by zero
	ErrRange          // value out of representable range
	ErrBadIndex       // array index outside declared bounds
	ErrStringLen      // string longer than the maximum allowed
	ErrOpStack        // operator stack exhausted: expression too complex
	ErrNoRoom         // operand stack exhausted: expression too complex
	ErrCallDepth      // function calls nested too deeply
	ErrBadExpr        // malformed expression
	ErrSyntax         // token cannot appear here
	ErrBadToken       // unrecognised token byte in the stream
	ErrTooMany        // too many call arguments
	ErrNotEnough      // not enough call arguments
	ErrParmNum        // argument should be numeric
	ErrParmStr        // argument should be a string
	ErrAccess         // indirection offset outside the emulated memory
	ErrEscape         // execution interrupted
	ErrBroken         // internal inconsistency ("broken interpreter")
)

// RuntimeError is the single error type produced by the evaluator. It
// unwinds through ordinary error returns to the nearest recovery point
// (the statement layer's error-trap handling).
type RuntimeError struct {
	Code     Code
	Msg      string
	Incident string // set for ErrBroken only; correlates defect reports
	Wrapped  error
}

func (e *RuntimeError) Error() string {
	if e.Code == ErrBroken {
		return fmt.Sprintf("the interpreter has gone wrong: %s [incident %s]", e.Msg, e.Incident)
	}
	return e.Msg
}

func (e *RuntimeError) Unwrap() error { return e.Wrapped }

// IsUserError reports whether err is a runtime error a program's own error
// trap is allowed to treat as expected. Broken-interpreter errors are still
// catchable for robustness but must be reported distinctly by the caller.
func IsUserError(err error) bool {
	var re *RuntimeError
	if !errors.As(err, &re) {
		return false
	}
	return re.Code != ErrBroken
}

// ErrorCode extracts the Code from err, or ErrNone if err is not a
// RuntimeError.
func ErrorCode(err error) Code {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code
	}
	return ErrNone
}

func runtimeError(code Code, format string, args ...any) *RuntimeError {
	return &RuntimeError{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// brokenError builds an internal-inconsistency error. Each one gets a
// unique incident id so separate defect reports can be told apart.
func brokenError(where string, format string, args ...any) *RuntimeError {
	return &RuntimeError{
		Code:     ErrBroken,
		Msg:      where + ": " + fmt.Sprintf(format, args...),
		Incident: uuid.NewString(),
	}
}

// wantNumber classifies the failure when a handler needed a numeric operand
// but found kind k on the stack instead.
func wantNumber(k Kind) error {
	switch {
	case k == KindString || k == KindStringTemp:
		return runtimeError(ErrTypeNum, "number wanted but found a string")
	case k > KindUnknown && k < kindCount:
		return runtimeError(ErrBadArith, "operator is not defined for %s operands", k)
	default:
		return brokenError("eval", "bad item %d on the stack", k)
	}
}

// wantString classifies the failure when a handler needed a string operand.
func wantString(k Kind) error {
	switch {
	case k == KindInt || k == KindInt64 || k == KindFloat:
		return runtimeError(ErrTypeStr, "string wanted but found a number")
	case k > KindUnknown && k < kindCount:
		return runtimeError(ErrBadArith, "operator is not defined for %s operands", k)
	default:
		return brokenError("eval", "bad item %d on the stack", k)
	}
}

// wantArray rejects a non-array operand to an array-only operator.
func wantArray(k Kind) error {
	if k > KindUnknown && k < kindCount {
		return runtimeError(ErrTypeArray, "array wanted but found %s", k)
	}
	return brokenError("eval", "bad item %d on the stack", k)
}
