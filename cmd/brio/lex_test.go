package main

import (
	"testing"

	"github.com/brio-lang/brio/internal/config"
)

func newTestSession(t *testing.T) *session {
	t.Helper()
	s, err := newSession(config.DefaultLimits(), false)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

// evalLine scans and evaluates one expression line, returning the printed
// form of the result.
func evalLine(t *testing.T, s *session, line string) string {
	t.Helper()
	code, err := s.lx.scan(line)
	if err != nil {
		t.Fatalf("scan %q: %v", line, err)
	}
	v, err := s.ctx.Eval(code)
	if err != nil {
		t.Fatalf("eval %q: %v", line, err)
	}
	return v.Inspect()
}

func TestLexArithmetic(t *testing.T) {
	s := newTestSession(t)
	cases := []struct {
		line, want string
	}{
		{"1+2*3", "7"},
		{"(1+2)*3", "9"},
		{"7/2", "3.5"},
		{"7 DIV 2", "3"},
		{"7 MOD 2", "1"},
		{"2^10", "1024"},
		{"1e3", "1000"},
		{"2.5*4", "10"},
		{"5>3", "-1"},
		{"5<3", "0"},
		{"5>=5 AND 3<=4", "-1"},
		{"5<>5 OR 1=1", "-1"},
		{"1<<4", "16"},
		{"-16>>2", "-4"},
		{"-16>>>28", "15"},
		{"NOT FALSE", "-1"},
		{"TRUE=-1", "-1"},
		{"-3", "-3"},
	}
	for _, tc := range cases {
		if got := evalLine(t, s, tc.line); got != tc.want {
			t.Errorf("%q: got %s, want %s", tc.line, got, tc.want)
		}
	}
}

func TestLexStrings(t *testing.T) {
	s := newTestSession(t)
	if got := evalLine(t, s, `"foo"+"bar"`); got != `"foobar"` {
		t.Errorf("got %s", got)
	}
	if got := evalLine(t, s, `"say ""hi"""`); got != `"say \"hi\""` {
		t.Errorf("got %s", got)
	}
	if got := evalLine(t, s, `"abc" < "abd"`); got != "-1" {
		t.Errorf("got %s", got)
	}
	if _, err := s.lx.scan(`"unterminated`); err == nil {
		t.Error("unterminated string scanned without error")
	}
}

func TestLexVariables(t *testing.T) {
	s := newTestSession(t)
	if err := s.handleLine("LET n% = 6"); err != nil {
		t.Fatal(err)
	}
	if err := s.handleLine("LET x = 2.5"); err != nil {
		t.Fatal(err)
	}
	if got := evalLine(t, s, "n%*x"); got != "15" {
		t.Errorf("got %s", got)
	}

	// Static variables.
	if err := s.handleLine("LET A% = 10"); err != nil {
		t.Fatal(err)
	}
	if got := evalLine(t, s, "A%+1"); got != "11" {
		t.Errorf("got %s", got)
	}
}

func TestLexArrays(t *testing.T) {
	s := newTestSession(t)
	if err := s.handleLine("DIM a%(2,3)"); err != nil {
		t.Fatal(err)
	}
	if err := s.handleLine("DIM b%(2,3)"); err != nil {
		t.Fatal(err)
	}
	// Elements read back as zero before any assignment.
	if got := evalLine(t, s, "a%(1,2)"); got != "0" {
		t.Errorf("got %s", got)
	}
	// Whole-array expressions broadcast.
	if got := evalLine(t, s, "a%()+1"); got != "<integer array [2 3]>" {
		t.Errorf("got %s", got)
	}
	if got := evalLine(t, s, "a%()+b%()"); got != "<integer array [2 3]>" {
		t.Errorf("got %s", got)
	}

	if _, err := s.lx.scan("nosuch%(1)"); err == nil {
		t.Error("reference to an undimensioned array scanned without error")
	}
	if err := s.handleLine("DIM a%(2,3)"); err == nil {
		t.Error("second DIM of the same array accepted")
	}
}

func TestLexMatrixProduct(t *testing.T) {
	s := newTestSession(t)
	if err := s.handleLine("DIM m%(2,2)"); err != nil {
		t.Fatal(err)
	}
	if got := evalLine(t, s, "m%() . m%()"); got != "<integer array [2 2]>" {
		t.Errorf("got %s", got)
	}
	// '.' followed by a digit is a number, not the product operator.
	if got := evalLine(t, s, "0.5+0.5"); got != "1" {
		t.Errorf("got %s", got)
	}
}

func TestLexIndirection(t *testing.T) {
	s := newTestSession(t)
	if err := s.ctx.Memory().SetWord(100, 1234); err != nil {
		t.Fatal(err)
	}
	if got := evalLine(t, s, "!100"); got != "1234" {
		t.Errorf("got %s", got)
	}
	if got := evalLine(t, s, "?100"); got != "210" {
		t.Errorf("got %s", got)
	}
	if err := s.handleLine("LET p% = 96"); err != nil {
		t.Fatal(err)
	}
	if got := evalLine(t, s, "p%!4"); got != "1234" {
		t.Errorf("got %s", got)
	}
}

func TestHandleLineErrors(t *testing.T) {
	s := newTestSession(t)
	if err := s.handleLine(""); err != nil {
		t.Errorf("blank line: %v", err)
	}
	if err := s.handleLine("# comment"); err != nil {
		t.Errorf("comment line: %v", err)
	}
	if err := s.handleLine("LET oops"); err == nil {
		t.Error("LET without '=' accepted")
	}
	if err := s.handleLine("DIM broken"); err == nil {
		t.Error("DIM without dimensions accepted")
	}
	if err := s.handleLine("DIM t%(1,2,3)"); err == nil {
		t.Error("three-dimensional DIM accepted")
	}
}
