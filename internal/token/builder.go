package token

import (
	"encoding/binary"
	"math"
)

// Builder assembles a token stream the way the statement layer's tokeniser
// would. It picks the shortest literal encoding for each value.
type Builder struct {
	code []byte
}

// NewBuilder creates an empty token stream builder.
func NewBuilder() *Builder {
	return &Builder{code: make([]byte, 0, 64)}
}

// Byte appends a raw token byte.
func (b *Builder) Byte(tok byte) *Builder {
	b.code = append(b.code, tok)
	return b
}

// Int appends the shortest integer literal encoding for v.
func (b *Builder) Int(v int32) *Builder {
	switch {
	case v == 0:
		b.code = append(b.code, IntZero)
	case v == 1:
		b.code = append(b.code, IntOne)
	case v >= 2 && v <= 256:
		b.code = append(b.code, SmallConst, byte(v-1))
	default:
		b.code = append(b.code, IntConst)
		b.code = binary.LittleEndian.AppendUint32(b.code, uint32(v))
	}
	return b
}

// Int64 appends a 64-bit integer literal.
func (b *Builder) Int64(v int64) *Builder {
	b.code = append(b.code, Int64Const)
	b.code = binary.LittleEndian.AppendUint64(b.code, uint64(v))
	return b
}

// Float appends the shortest floating point literal encoding for v.
func (b *Builder) Float(v float64) *Builder {
	switch v {
	case 0.0:
		b.code = append(b.code, FloatZero)
	case 1.0:
		b.code = append(b.code, FloatOne)
	default:
		b.code = append(b.code, FloatConst)
		b.code = binary.LittleEndian.AppendUint64(b.code, math.Float64bits(v))
	}
	return b
}

// Str appends a string literal. Strings containing quote characters are
// encoded in the doubled-quote form, matching what the tokeniser emits for
// quoted source text.
func (b *Builder) Str(s string) *Builder {
	doubled := false
	for i := 0; i < len(s); i++ {
		if s[i] == '"' {
			doubled = true
			break
		}
	}
	if !doubled {
		b.code = append(b.code, StringCon)
		b.code = binary.LittleEndian.AppendUint16(b.code, uint16(len(s)))
		b.code = append(b.code, s...)
		return b
	}
	// Escape each '"' as '""' and record the on-the-wire length.
	enc := make([]byte, 0, len(s)+4)
	for i := 0; i < len(s); i++ {
		enc = append(enc, s[i])
		if s[i] == '"' {
			enc = append(enc, '"')
		}
	}
	b.code = append(b.code, QStringCon)
	b.code = binary.LittleEndian.AppendUint16(b.code, uint16(len(enc)))
	b.code = append(b.code, enc...)
	return b
}

func (b *Builder) slotRef(tok byte, slot int) *Builder {
	b.code = append(b.code, tok)
	b.code = binary.LittleEndian.AppendUint16(b.code, uint16(slot))
	return b
}

// IntVar appends a 32-bit integer variable reference.
func (b *Builder) IntVar(slot int) *Builder { return b.slotRef(IntVar, slot) }

// Int64Var appends a 64-bit integer variable reference.
func (b *Builder) Int64Var(slot int) *Builder { return b.slotRef(Int64Var, slot) }

// FloatVar appends a floating point variable reference.
func (b *Builder) FloatVar(slot int) *Builder { return b.slotRef(FloatVar, slot) }

// StringVar appends a string variable reference.
func (b *Builder) StringVar(slot int) *Builder { return b.slotRef(StringVar, slot) }

// ArrayVar appends a whole-array reference.
func (b *Builder) ArrayVar(slot int) *Builder { return b.slotRef(ArrayVar, slot) }

// ArrayRef starts an array element reference. The caller appends one
// expression per dimension separated by Comma, then closes with RightPar.
func (b *Builder) ArrayRef(slot int) *Builder { return b.slotRef(ArrayRef, slot) }

// StaticVar appends a static integer variable reference (slot 0..25).
func (b *Builder) StaticVar(slot int) *Builder {
	b.code = append(b.code, StaticVar, byte(slot))
	return b
}

// StaticIndVar appends a static variable followed by an indirection
// operator ('?' or '!'). The caller appends the offset factor next.
func (b *Builder) StaticIndVar(slot int, op byte) *Builder {
	b.code = append(b.code, StaticIndVar, byte(slot), op)
	return b
}

// IntIndVar appends an integer variable followed by an indirection operator.
func (b *Builder) IntIndVar(slot int, op byte) *Builder {
	b.slotRef(IntIndVar, slot)
	b.code = append(b.code, op)
	return b
}

// FloatIndVar appends a float variable followed by an indirection operator.
func (b *Builder) FloatIndVar(slot int, op byte) *Builder {
	b.slotRef(FloatIndVar, slot)
	b.code = append(b.code, op)
	return b
}

// Call appends a function or procedure call token.
func (b *Builder) Call(index int) *Builder { return b.slotRef(Call, index) }

// Code returns the assembled stream with a terminator appended.
func (b *Builder) Code() []byte {
	out := make([]byte, len(b.code), len(b.code)+1)
	copy(out, b.code)
	return append(out, EOF)
}

// Raw returns the assembled stream without a terminator.
func (b *Builder) Raw() []byte {
	return b.code
}
