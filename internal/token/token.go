// Package token defines the byte-level encoding of the tokenised
// instruction stream consumed by the expression evaluator, along with the
// operator table used by the precedence-climbing parser.
package token

// Token values occupying the low byte range are factor tokens: each one
// starts an operand. Dyadic operators live either in the printable ASCII
// range (where the operator is a single character) or in the 0x80+ range
// (multi-character operators replaced by a single byte when the statement
// layer tokenises the source).
const (
	EOF byte = 0x00 // end of the token stream / statement boundary

	// Literals
	IntZero    byte = 0x01 // integer 0, no operand bytes
	IntOne     byte = 0x02 // integer 1, no operand bytes
	SmallConst byte = 0x03 // +1 operand byte: values 1..256 held as 0..255
	IntConst   byte = 0x04 // +4 operand bytes, little-endian int32
	Int64Const byte = 0x05 // +8 operand bytes, little-endian int64
	FloatZero  byte = 0x06 // floating point 0.0
	FloatOne   byte = 0x07 // floating point 1.0
	FloatConst byte = 0x08 // +8 operand bytes, IEEE-754 bits little-endian
	StringCon  byte = 0x09 // +2 length bytes, then the string bytes
	QStringCon byte = 0x0A // as StringCon but contains '""' pairs to collapse

	// Variable references (operand: 2-byte slot index)
	IntVar    byte = 0x0B
	Int64Var  byte = 0x0C
	FloatVar  byte = 0x0D
	StringVar byte = 0x0E
	ArrayVar  byte = 0x0F // whole-array reference
	ArrayRef  byte = 0x10 // element reference: index expressions follow, then ')'

	// Static integer variables (operand: 1-byte slot 0..25)
	StaticVar    byte = 0x11
	StaticIndVar byte = 0x12 // static variable followed by '?' or '!'

	// Scalar variable followed by an indirection operator. The 2-byte slot
	// operand is followed by the indirection token itself and a factor
	// giving the offset.
	IntIndVar   byte = 0x13
	FloatIndVar byte = 0x14

	// Function/procedure call (operand: 2-byte definition index, optionally
	// followed by '(' and the argument list)
	Call byte = 0x15

	// Function-style keyword factors
	FnNot   byte = 0x16
	FnTrue  byte = 0x17
	FnFalse byte = 0x18

	// Single-character tokens keep their ASCII values.
	GetWord   byte = '!'
	GetString byte = '$'
	LeftPar   byte = '('
	RightPar  byte = ')'
	Comma     byte = ','
	GetByte   byte = '?'
	GetFloat  byte = '|'
	UnaryOp1  byte = '+' // unary plus when in factor position
	UnaryOp2  byte = '-' // unary minus when in factor position
)

// Dyadic operator token values. The printable ones double as factor-position
// tokens ('+', '-') or are plain operators; the 0x80+ ones stand for the
// keyword operators.
const (
	OpTokMul    byte = '*'
	OpTokPlus   byte = '+'
	OpTokMinus  byte = '-'
	OpTokMatMul byte = '.'
	OpTokDiv    byte = '/'
	OpTokLt     byte = '<'
	OpTokEq     byte = '='
	OpTokGt     byte = '>'
	OpTokPow    byte = '^'

	OpTokAnd    byte = 0x80
	OpTokAsr    byte = 0x81
	OpTokIntDiv byte = 0x82
	OpTokEor    byte = 0x83
	OpTokGe     byte = 0x84
	OpTokLe     byte = 0x85
	OpTokLsl    byte = 0x86
	OpTokLsr    byte = 0x87
	OpTokMod    byte = 0x89
	OpTokNe     byte = 0x8A
	OpTokOr     byte = 0x8B
)

// Op identifies a dyadic operator on the operator stack.
type Op uint8

const (
	OpNop Op = iota
	OpAdd
	OpSub
	OpMul
	OpMatMul
	OpDiv
	OpIntDiv
	OpMod
	OpPow
	OpLsl
	OpLsr
	OpAsr
	OpEq
	OpNe
	OpGt
	OpLt
	OpGe
	OpLe
	OpAnd
	OpOr
	OpEor

	OpCount // number of operator identities
)

var opNames = [OpCount]string{
	OpNop: "NOP", OpAdd: "+", OpSub: "-", OpMul: "*", OpMatMul: ".",
	OpDiv: "/", OpIntDiv: "DIV", OpMod: "MOD", OpPow: "^",
	OpLsl: "<<", OpLsr: ">>", OpAsr: ">>>",
	OpEq: "=", OpNe: "<>", OpGt: ">", OpLt: "<", OpGe: ">=", OpLe: "<=",
	OpAnd: "AND", OpOr: "OR", OpEor: "EOR",
}

func (op Op) String() string {
	if op < OpCount {
		return opNames[op]
	}
	return "?"
}

// Operator priorities. An Entry packs priority and identity into one value
// so the parser can compare and dispatch without unpacking.
const (
	PrioPow     = 0x700
	PrioMul     = 0x600
	PrioAdd     = 0x500
	PrioCompare = 0x400
	PrioAnd     = 0x300
	PrioOr      = 0x200
	PrioMark    = 0 // sentinel at the base of the operator stack

	OpMask   = 0x00FF
	PrioMask = 0xFF00
)

// Entry is a packed (priority | operator identity) value as held on the
// operator stack. A zero Entry is the stack-base sentinel and also marks
// token values that are not operators.
type Entry uint16

// Priority extracts the priority class of an entry.
func (e Entry) Priority() int { return int(e) & PrioMask }

// Op extracts the operator identity of an entry.
func (e Entry) Op() Op { return Op(e & OpMask) }

func entry(prio int, op Op) Entry { return Entry(prio) | Entry(op) }

// OperTable maps a token value to its operator entry. A zero entry means
// the token is not a dyadic operator and the expression ends there.
var OperTable [256]Entry

func init() {
	OperTable[OpTokMul] = entry(PrioMul, OpMul)
	OperTable[OpTokPlus] = entry(PrioAdd, OpAdd)
	OperTable[OpTokMinus] = entry(PrioAdd, OpSub)
	OperTable[OpTokMatMul] = entry(PrioMul, OpMatMul)
	OperTable[OpTokDiv] = entry(PrioMul, OpDiv)
	OperTable[OpTokLt] = entry(PrioCompare, OpLt)
	OperTable[OpTokEq] = entry(PrioCompare, OpEq)
	OperTable[OpTokGt] = entry(PrioCompare, OpGt)
	OperTable[OpTokPow] = entry(PrioPow, OpPow)
	OperTable[OpTokAnd] = entry(PrioAnd, OpAnd)
	OperTable[OpTokAsr] = entry(PrioCompare, OpAsr)
	OperTable[OpTokIntDiv] = entry(PrioMul, OpIntDiv)
	OperTable[OpTokEor] = entry(PrioOr, OpEor)
	OperTable[OpTokGe] = entry(PrioCompare, OpGe)
	OperTable[OpTokLe] = entry(PrioCompare, OpLe)
	OperTable[OpTokLsl] = entry(PrioCompare, OpLsl)
	OperTable[OpTokLsr] = entry(PrioCompare, OpLsr)
	OperTable[OpTokMod] = entry(PrioMul, OpMod)
	OperTable[OpTokNe] = entry(PrioCompare, OpNe)
	OperTable[OpTokOr] = entry(PrioOr, OpOr)
}
