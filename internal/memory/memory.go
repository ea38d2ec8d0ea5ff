// Package memory emulates the flat byte-addressable address space read and
// written by the indirection operators ('?', '!', '$', '|'). The evaluator
// computes offsets; this package owns the bounds policy and the byte-level
// load/store formats.
package memory

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrAccess is the base error for rejected reads and writes. Callers can
// test for it with errors.Is.
var ErrAccess = errors.New("address out of range")

const (
	// CR terminates strings stored in raw memory.
	CR = 0x0D

	// maxIndString bounds the scan for a CR terminator: if none is found
	// within this many bytes the string is treated as empty.
	maxIndString = 65536
)

// Region is the interface the evaluator dispatches indirection loads and
// stores through. All offsets are byte offsets from the region base.
type Region interface {
	CheckRead(offset int64, size int) error
	CheckWrite(offset int64, size int) error
	Byte(offset int64) (byte, error)
	SetByte(offset int64, v byte) error
	Word(offset int64) (int32, error)
	SetWord(offset int64, v int32) error
	Float(offset int64) (float64, error)
	SetFloat(offset int64, v float64) error
	String(offset int64) ([]byte, error)
	SetString(offset int64, s []byte) error
}

// Flat is a plain in-process Region backed by a byte slice.
type Flat struct {
	buf []byte
}

// NewFlat allocates a zeroed flat region of the given size.
func NewFlat(size int) *Flat {
	return &Flat{buf: make([]byte, size)}
}

// Size returns the region size in bytes.
func (f *Flat) Size() int { return len(f.buf) }

func (f *Flat) check(offset int64, size int) error {
	if offset < 0 || size < 0 || offset+int64(size) > int64(len(f.buf)) {
		return fmt.Errorf("%w: offset %d size %d (region %d bytes)", ErrAccess, offset, size, len(f.buf))
	}
	return nil
}

// CheckRead reports whether size bytes at offset may be read.
func (f *Flat) CheckRead(offset int64, size int) error { return f.check(offset, size) }

// CheckWrite reports whether size bytes at offset may be written.
func (f *Flat) CheckWrite(offset int64, size int) error { return f.check(offset, size) }

// Byte loads one byte.
func (f *Flat) Byte(offset int64) (byte, error) {
	if err := f.check(offset, 1); err != nil {
		return 0, err
	}
	return f.buf[offset], nil
}

// SetByte stores one byte.
func (f *Flat) SetByte(offset int64, v byte) error {
	if err := f.check(offset, 1); err != nil {
		return err
	}
	f.buf[offset] = v
	return nil
}

// Word loads a little-endian 32-bit integer. The address need not be
// aligned.
func (f *Flat) Word(offset int64) (int32, error) {
	if err := f.check(offset, 4); err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(f.buf[offset:])), nil
}

// SetWord stores a little-endian 32-bit integer.
func (f *Flat) SetWord(offset int64, v int32) error {
	if err := f.check(offset, 4); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(f.buf[offset:], uint32(v))
	return nil
}

// Float loads an eight-byte IEEE-754 value.
func (f *Flat) Float(offset int64) (float64, error) {
	if err := f.check(offset, 8); err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(f.buf[offset:])), nil
}

// SetFloat stores an eight-byte IEEE-754 value.
func (f *Flat) SetFloat(offset int64, v float64) error {
	if err := f.check(offset, 8); err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(f.buf[offset:], math.Float64bits(v))
	return nil
}

// String loads a CR-terminated string starting at offset. If no CR is found
// within the scan limit the result is the empty string.
func (f *Flat) String(offset int64) ([]byte, error) {
	if err := f.check(offset, 1); err != nil {
		return nil, err
	}
	limit := int64(len(f.buf))
	if offset+maxIndString < limit {
		limit = offset + maxIndString
	}
	for i := offset; i < limit; i++ {
		if f.buf[i] == CR {
			out := make([]byte, i-offset)
			copy(out, f.buf[offset:i])
			return out, nil
		}
	}
	return []byte{}, nil
}

// SetString stores the string bytes followed by a CR terminator.
func (f *Flat) SetString(offset int64, s []byte) error {
	if err := f.check(offset, len(s)+1); err != nil {
		return err
	}
	copy(f.buf[offset:], s)
	f.buf[offset+int64(len(s))] = CR
	return nil
}
