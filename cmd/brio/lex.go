package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/brio-lang/brio/internal/token"
	"github.com/brio-lang/brio/internal/variables"
)

// lexer turns one line of expression text into the byte-level token stream
// the evaluator consumes. Variable names are resolved against (and created
// in) the session's variable table: 'name%' is a 32-bit integer, 'name#' a
// 64-bit integer, 'name$' a string and a bare name a float. A single
// capital letter with '%' is one of the static variables A% to Z%.
type lexer struct {
	src   string
	pos   int
	vars  *variables.Table
	names map[string]int
	b     *token.Builder
}

func newLexer(vars *variables.Table, names map[string]int) *lexer {
	return &lexer{vars: vars, names: names}
}

func (l *lexer) scan(line string) ([]byte, error) {
	l.src = line
	l.pos = 0
	l.b = token.NewBuilder()
	for {
		l.skipSpace()
		if l.pos >= len(l.src) {
			return l.b.Code(), nil
		}
		if err := l.scanToken(); err != nil {
			return nil, err
		}
	}
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) && (l.src[l.pos] == ' ' || l.src[l.pos] == '\t') {
		l.pos++
	}
}

func (l *lexer) scanToken() error {
	ch := l.src[l.pos]
	switch {
	case ch >= '0' && ch <= '9':
		return l.scanNumber()
	case ch == '"':
		return l.scanString()
	case isNameStart(ch):
		return l.scanWord()
	}
	l.pos++
	switch ch {
	case '+', '-', '*', '/', '^', '(', ')', ',', '?', '!', '$', '|', '=':
		l.b.Byte(ch)
	case '.':
		l.b.Byte(token.OpTokMatMul)
	case '<':
		switch l.peek() {
		case '=':
			l.pos++
			l.b.Byte(token.OpTokLe)
		case '>':
			l.pos++
			l.b.Byte(token.OpTokNe)
		case '<':
			l.pos++
			l.b.Byte(token.OpTokLsl)
		default:
			l.b.Byte(token.OpTokLt)
		}
	case '>':
		switch l.peek() {
		case '=':
			l.pos++
			l.b.Byte(token.OpTokGe)
		case '>':
			l.pos++
			if l.peek() == '>' {
				l.pos++
				l.b.Byte(token.OpTokLsr)
			} else {
				l.b.Byte(token.OpTokAsr)
			}
		default:
			l.b.Byte(token.OpTokGt)
		}
	default:
		return fmt.Errorf("unexpected character %q", ch)
	}
	return nil
}

func (l *lexer) peek() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func isNameStart(ch byte) bool {
	return ch >= 'A' && ch <= 'Z' || ch >= 'a' && ch <= 'z' || ch == '_'
}

func isNameChar(ch byte) bool {
	return isNameStart(ch) || ch >= '0' && ch <= '9'
}

func (l *lexer) scanNumber() error {
	start := l.pos
	isFloat := false
	for l.pos < len(l.src) {
		ch := l.src[l.pos]
		if ch >= '0' && ch <= '9' {
			l.pos++
			continue
		}
		// A '.' only continues the number when a digit follows; otherwise it
		// is the matrix product operator.
		if ch == '.' && l.pos+1 < len(l.src) && l.src[l.pos+1] >= '0' && l.src[l.pos+1] <= '9' {
			isFloat = true
			l.pos++
			continue
		}
		if (ch == 'e' || ch == 'E') && l.pos > start {
			isFloat = true
			l.pos++
			if l.pos < len(l.src) && (l.src[l.pos] == '+' || l.src[l.pos] == '-') {
				l.pos++
			}
			continue
		}
		break
	}
	text := l.src[start:l.pos]
	if isFloat {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return fmt.Errorf("bad number %q", text)
		}
		l.b.Float(f)
		return nil
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return fmt.Errorf("bad number %q", text)
	}
	if n >= -2147483648 && n <= 2147483647 {
		l.b.Int(int32(n))
	} else {
		l.b.Int64(n)
	}
	return nil
}

func (l *lexer) scanString() error {
	l.pos++ // opening quote
	var sb strings.Builder
	for l.pos < len(l.src) {
		ch := l.src[l.pos]
		if ch == '"' {
			if l.pos+1 < len(l.src) && l.src[l.pos+1] == '"' {
				sb.WriteByte('"')
				l.pos += 2
				continue
			}
			l.pos++
			l.b.Str(sb.String())
			return nil
		}
		sb.WriteByte(ch)
		l.pos++
	}
	return fmt.Errorf("string is missing its closing quote")
}

func (l *lexer) scanWord() error {
	start := l.pos
	for l.pos < len(l.src) && isNameChar(l.src[l.pos]) {
		l.pos++
	}
	word := l.src[start:l.pos]
	switch strings.ToUpper(word) {
	case "AND":
		l.b.Byte(token.OpTokAnd)
		return nil
	case "OR":
		l.b.Byte(token.OpTokOr)
		return nil
	case "EOR":
		l.b.Byte(token.OpTokEor)
		return nil
	case "DIV":
		l.b.Byte(token.OpTokIntDiv)
		return nil
	case "MOD":
		l.b.Byte(token.OpTokMod)
		return nil
	case "NOT":
		l.b.Byte(token.FnNot)
		return nil
	case "TRUE":
		l.b.Byte(token.FnTrue)
		return nil
	case "FALSE":
		l.b.Byte(token.FnFalse)
		return nil
	}
	// Type suffix, if any.
	suffix := byte(0)
	if l.pos < len(l.src) {
		switch l.src[l.pos] {
		case '%', '#', '$':
			suffix = l.src[l.pos]
			l.pos++
		}
	}
	if suffix == '%' && len(word) == 1 && word[0] >= 'A' && word[0] <= 'Z' {
		slot := int(word[0] - 'A')
		if l.peek() == '?' || l.peek() == '!' {
			op := l.src[l.pos]
			l.pos++
			l.b.StaticIndVar(slot, op)
			return nil
		}
		l.b.StaticVar(slot)
		return nil
	}
	name := word + suffixString(suffix)
	if l.peek() == '(' {
		slot, ok := l.names[name+"()"]
		if !ok {
			return fmt.Errorf("array %s has not been dimensioned", name)
		}
		l.pos++ // '('
		if l.peek() == ')' {
			l.pos++
			l.b.ArrayVar(slot)
			return nil
		}
		// Element reference: the index expressions follow inline and the
		// evaluator consumes the separators itself.
		l.b.ArrayRef(slot)
		return nil
	}
	slot := l.lookupScalar(name, suffix)
	switch suffix {
	case '%':
		if l.peek() == '?' || l.peek() == '!' || l.peek() == '|' {
			op := l.src[l.pos]
			l.pos++
			l.b.IntIndVar(slot, op)
			return nil
		}
		l.b.IntVar(slot)
	case '#':
		l.b.Int64Var(slot)
	case '$':
		l.b.StringVar(slot)
	default:
		if l.peek() == '?' || l.peek() == '!' || l.peek() == '|' {
			op := l.src[l.pos]
			l.pos++
			l.b.FloatIndVar(slot, op)
			return nil
		}
		l.b.FloatVar(slot)
	}
	return nil
}

func suffixString(suffix byte) string {
	if suffix == 0 {
		return ""
	}
	return string(suffix)
}

// lookupScalar finds a named scalar variable, declaring it on first use.
func (l *lexer) lookupScalar(name string, suffix byte) int {
	if slot, ok := l.names[name]; ok {
		return slot
	}
	typ := variables.TypeFloat
	switch suffix {
	case '%':
		typ = variables.TypeInt
	case '#':
		typ = variables.TypeInt64
	case '$':
		typ = variables.TypeString
	}
	slot := l.vars.Declare(name, typ)
	l.names[name] = slot
	return slot
}
