package eval

import (
	"math"
)

// Numeric conversion rules. Narrowing conversions from float round to the
// nearest integer and fail with a range error when the value does not fit;
// widening conversions are exact except int64 to float64, which loses
// precision beyond 2^53 silently.

// toInt32From64 narrows an int64 to int32, failing when the value is out of
// range.
func toInt32From64(v int64) (int32, error) {
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, runtimeError(ErrRange, "number %d is out of 32-bit integer range", v)
	}
	return int32(v), nil
}

// toInt32FromFloat rounds a float64 to the nearest int32.
func toInt32FromFloat(v float64) (int32, error) {
	r := math.Round(v)
	if math.IsNaN(r) || r < math.MinInt32 || r > math.MaxInt32 {
		return 0, runtimeError(ErrRange, "number %g is out of 32-bit integer range", v)
	}
	return int32(r), nil
}

// toInt64FromFloat rounds a float64 to the nearest int64.
func toInt64FromFloat(v float64) (int64, error) {
	r := math.Round(v)
	// 2^63 is exactly representable as a float64; MaxInt64 is not, so the
	// upper comparison must be against the power of two itself.
	if math.IsNaN(r) || r < math.MinInt64 || r >= float64(1<<63) {
		return 0, runtimeError(ErrRange, "number %g is out of 64-bit integer range", v)
	}
	return int64(r), nil
}

// truncInt64 truncates a float64 toward zero, failing when the value does
// not fit in an int64. Integer division, remainder and the bitwise
// operators truncate rather than round.
func truncInt64(v float64) (int64, error) {
	t := math.Trunc(v)
	if math.IsNaN(t) || t < math.MinInt64 || t >= float64(1<<63) {
		return 0, runtimeError(ErrRange, "number %g is out of 64-bit integer range", v)
	}
	return int64(t), nil
}

// fitsInt32 reports whether an int64 value is representable as int32.
func fitsInt32(v int64) bool {
	return v >= math.MinInt32 && v <= math.MaxInt32
}

// pushDemoted pushes an int64 result, demoting it to int32 when it fits.
// Integer operators keep results in the narrowest type that holds them so
// later operations take the 32-bit fast path.
func (s *stack) pushDemoted(v int64) error {
	if fitsInt32(v) {
		return s.pushInt(int32(v))
	}
	return s.pushInt64(v)
}
