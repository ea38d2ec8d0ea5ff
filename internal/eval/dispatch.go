package eval

import (
	"github.com/brio-lang/brio/internal/token"
)

// opHandler applies one dyadic operator. The right operand is on top of the
// stack with a kind the handler was registered for; the handler pops it,
// inspects the left operand and pushes the result.
type opHandler func(*Context) error

// opFns is the dispatch matrix: operator identity down, right-operand kind
// across. A nil cell means the operator is not defined for that right
// operand and the expression fails with an arithmetic type error.
var opFns [token.OpCount][kindCount]opHandler

var (
	scalarNumKinds  = []Kind{KindInt, KindInt64, KindFloat}
	stringKinds     = []Kind{KindString, KindStringTemp}
	numArrayKinds   = []Kind{KindIntArray, KindIntArrayTemp, KindInt64Array, KindInt64ArrayTemp, KindFloatArray, KindFloatArrayTemp}
	strArrayKinds   = []Kind{KindStringArray, KindStringArrayTemp}
	matmulArrKinds  = []Kind{KindIntArray, KindIntArrayTemp, KindFloatArray, KindFloatArrayTemp}
	compareOps      = []token.Op{token.OpEq, token.OpNe, token.OpGt, token.OpLt, token.OpGe, token.OpLe}
	arithOps        = []token.Op{token.OpAdd, token.OpSub, token.OpMul, token.OpDiv, token.OpIntDiv, token.OpMod}
	shiftOps        = []token.Op{token.OpLsl, token.OpLsr, token.OpAsr}
	logicOps        = []token.Op{token.OpAnd, token.OpOr, token.OpEor}

	// Operators that take numbers only. '+' is absent because it doubles as
	// string concatenation; the comparisons are absent because they order
	// strings too.
	numOnlyOps = []token.Op{
		token.OpSub, token.OpMul, token.OpDiv, token.OpIntDiv, token.OpMod,
		token.OpPow, token.OpLsl, token.OpLsr, token.OpAsr,
		token.OpAnd, token.OpOr, token.OpEor,
	}
)

func init() {
	for _, op := range arithOps {
		for _, k := range scalarNumKinds {
			opFns[op][k] = arithScalarRight(op)
		}
		for _, k := range numArrayKinds {
			opFns[op][k] = arithArrayRight(op)
		}
	}
	opFns[token.OpPow][KindInt] = powScalarRight
	opFns[token.OpPow][KindInt64] = powScalarRight
	opFns[token.OpPow][KindFloat] = powScalarRight

	for _, k := range stringKinds {
		opFns[token.OpAdd][k] = concatStringRight
	}
	for _, k := range strArrayKinds {
		opFns[token.OpAdd][k] = concatArrayRight
	}

	for _, op := range shiftOps {
		for _, k := range scalarNumKinds {
			opFns[op][k] = shiftScalarRight(op)
		}
	}
	for _, op := range compareOps {
		for _, k := range scalarNumKinds {
			opFns[op][k] = compareNumRight(op)
		}
		for _, k := range stringKinds {
			opFns[op][k] = compareStringRight(op)
		}
	}
	for _, op := range logicOps {
		for _, k := range scalarNumKinds {
			opFns[op][k] = logicScalarRight(op)
		}
	}
	for _, k := range matmulArrKinds {
		opFns[token.OpMatMul][k] = matMulRight
	}

	// String columns of the numeric-only rows classify by what the operator
	// needed, not by "operator undefined".
	for _, op := range numOnlyOps {
		for _, k := range stringKinds {
			opFns[op][k] = numWantedRight
		}
	}
}

// numWantedRight rejects a string right operand to a numeric-only operator.
func numWantedRight(c *Context) error {
	return wantNumber(c.st.topKind())
}

// applyOp dispatches one deferred operator against the current stack top.
func (c *Context) applyOp(op token.Op) error {
	k := c.st.topKind()
	if k == KindUnknown {
		return brokenError("dispatch", "no operand for operator %s", op)
	}
	if op == token.OpNop || op >= token.OpCount || k >= kindCount {
		return brokenError("dispatch", "bad operator %d", op)
	}
	fn := opFns[op][k]
	if fn == nil {
		return runtimeError(ErrBadArith, "operator %s is not defined for %s operands", op, k)
	}
	return fn(c)
}

// numAsFloat widens any scalar numeric value to float64.
func numAsFloat(v Value) float64 {
	switch v.Kind {
	case KindInt:
		return float64(v.AsInt())
	case KindInt64:
		return float64(v.AsInt64())
	}
	return v.AsFloat()
}

// numAsInt64 converts any scalar numeric value to int64, truncating floats.
func numAsInt64(v Value) (int64, error) {
	switch v.Kind {
	case KindInt:
		return int64(v.AsInt()), nil
	case KindInt64:
		return v.AsInt64(), nil
	}
	return truncInt64(v.AsFloat())
}
