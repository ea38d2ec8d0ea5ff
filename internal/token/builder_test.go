package token

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"
)

func TestIntEncodings(t *testing.T) {
	cases := []struct {
		v    int32
		want []byte
	}{
		{0, []byte{IntZero}},
		{1, []byte{IntOne}},
		{2, []byte{SmallConst, 1}},
		{256, []byte{SmallConst, 255}},
		{257, []byte{IntConst, 0x01, 0x01, 0x00, 0x00}},
		{-1, []byte{IntConst, 0xFF, 0xFF, 0xFF, 0xFF}},
	}
	for _, tc := range cases {
		got := NewBuilder().Int(tc.v).Raw()
		if !bytes.Equal(got, tc.want) {
			t.Errorf("Int(%d): got % x, want % x", tc.v, got, tc.want)
		}
	}
}

func TestFloatEncodings(t *testing.T) {
	if got := NewBuilder().Float(0).Raw(); !bytes.Equal(got, []byte{FloatZero}) {
		t.Errorf("Float(0): got % x", got)
	}
	if got := NewBuilder().Float(1).Raw(); !bytes.Equal(got, []byte{FloatOne}) {
		t.Errorf("Float(1): got % x", got)
	}
	got := NewBuilder().Float(2.5).Raw()
	want := append([]byte{FloatConst}, binary.LittleEndian.AppendUint64(nil, math.Float64bits(2.5))...)
	if !bytes.Equal(got, want) {
		t.Errorf("Float(2.5): got % x, want % x", got, want)
	}
}

func TestStrEncodings(t *testing.T) {
	got := NewBuilder().Str("hi").Raw()
	want := []byte{StringCon, 2, 0, 'h', 'i'}
	if !bytes.Equal(got, want) {
		t.Errorf("Str: got % x, want % x", got, want)
	}

	// Strings containing a quote take the doubled-quote form.
	got = NewBuilder().Str(`a"b`).Raw()
	want = []byte{QStringCon, 4, 0, 'a', '"', '"', 'b'}
	if !bytes.Equal(got, want) {
		t.Errorf("quoted Str: got % x, want % x", got, want)
	}
}

func TestSlotEncodings(t *testing.T) {
	got := NewBuilder().IntVar(0x1234).Raw()
	want := []byte{IntVar, 0x34, 0x12}
	if !bytes.Equal(got, want) {
		t.Errorf("IntVar: got % x, want % x", got, want)
	}

	got = NewBuilder().StaticIndVar(3, '?').Raw()
	want = []byte{StaticIndVar, 3, '?'}
	if !bytes.Equal(got, want) {
		t.Errorf("StaticIndVar: got % x, want % x", got, want)
	}
}

func TestCodeAppendsTerminator(t *testing.T) {
	code := NewBuilder().Int(1).Code()
	if code[len(code)-1] != EOF {
		t.Fatalf("stream does not end with the terminator: % x", code)
	}
}

func TestOperTable(t *testing.T) {
	// Every operator token maps to an entry that round-trips its identity
	// and carries a non-zero priority.
	ops := map[byte]Op{
		OpTokPlus: OpAdd, OpTokMinus: OpSub, OpTokMul: OpMul, OpTokDiv: OpDiv,
		OpTokMatMul: OpMatMul, OpTokPow: OpPow, OpTokIntDiv: OpIntDiv, OpTokMod: OpMod,
		OpTokLt: OpLt, OpTokGt: OpGt, OpTokEq: OpEq, OpTokNe: OpNe,
		OpTokLe: OpLe, OpTokGe: OpGe, OpTokLsl: OpLsl, OpTokLsr: OpLsr, OpTokAsr: OpAsr,
		OpTokAnd: OpAnd, OpTokOr: OpOr, OpTokEor: OpEor,
	}
	for tok, op := range ops {
		e := OperTable[tok]
		if e == 0 {
			t.Errorf("token %#02x has no operator entry", tok)
			continue
		}
		if e.Op() != op {
			t.Errorf("token %#02x: got op %s, want %s", tok, e.Op(), op)
		}
		if e.Priority() == PrioMark {
			t.Errorf("token %#02x: zero priority", tok)
		}
	}

	// Factor tokens are not operators.
	for _, tok := range []byte{EOF, IntZero, StringCon, LeftPar, RightPar, Comma} {
		if OperTable[tok] != 0 {
			t.Errorf("token %#02x should not be an operator", tok)
		}
	}
}

func TestPriorityOrdering(t *testing.T) {
	if !(PrioPow > PrioMul && PrioMul > PrioAdd && PrioAdd > PrioCompare &&
		PrioCompare > PrioAnd && PrioAnd > PrioOr && PrioOr > PrioMark) {
		t.Fatal("priority classes are not strictly ordered")
	}
}
