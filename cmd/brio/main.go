package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/brio-lang/brio/internal/config"
	"github.com/brio-lang/brio/internal/eval"
	"github.com/brio-lang/brio/internal/variables"
)

var (
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	internalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true)
	promptStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
)

// session ties together one evaluation context, its variable table and the
// line lexer that feeds it.
type session struct {
	ctx   *eval.Context
	vars  *variables.Table
	names map[string]int
	lx    *lexer
	tty   bool
}

func newSession(limits config.Limits, tty bool) (*session, error) {
	vars := variables.NewTable()
	ctx, err := eval.New(vars, nil, limits)
	if err != nil {
		return nil, err
	}
	names := make(map[string]int)
	return &session{
		ctx:   ctx,
		vars:  vars,
		names: names,
		lx:    newLexer(vars, names),
		tty:   tty,
	}, nil
}

// handleLine runs one input line: a DIM or LET statement, or an expression
// whose value is printed.
func (s *session) handleLine(line string) error {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}
	upper := strings.ToUpper(line)
	switch {
	case strings.HasPrefix(upper, "DIM "):
		return s.handleDim(strings.TrimSpace(line[4:]))
	case strings.HasPrefix(upper, "LET "):
		return s.handleLet(strings.TrimSpace(line[4:]))
	}
	code, err := s.lx.scan(line)
	if err != nil {
		return err
	}
	v, err := s.ctx.Eval(code)
	if err != nil {
		return err
	}
	fmt.Println(v.Inspect())
	return nil
}

// handleDim declares an array: DIM name(d1) or DIM name$(d1,d2).
func (s *session) handleDim(text string) error {
	open := strings.IndexByte(text, '(')
	if open < 0 || !strings.HasSuffix(text, ")") {
		return fmt.Errorf("DIM needs a name and its dimensions")
	}
	name := strings.TrimSpace(text[:open])
	typ := variables.TypeFloatArray
	switch {
	case strings.HasSuffix(name, "%"):
		typ = variables.TypeIntArray
	case strings.HasSuffix(name, "#"):
		typ = variables.TypeInt64Array
	case strings.HasSuffix(name, "$"):
		typ = variables.TypeStringArray
	}
	var dims []int32
	for _, part := range strings.Split(text[open+1:len(text)-1], ",") {
		n, err := strconv.ParseInt(strings.TrimSpace(part), 10, 32)
		if err != nil || n <= 0 {
			return fmt.Errorf("bad dimension %q", strings.TrimSpace(part))
		}
		dims = append(dims, int32(n))
	}
	if len(dims) > 2 {
		return fmt.Errorf("arrays have at most two dimensions")
	}
	key := name + "()"
	if _, ok := s.names[key]; ok {
		return fmt.Errorf("%s has already been dimensioned", name)
	}
	slot, err := s.vars.DeclareArray(name, typ, dims...)
	if err != nil {
		return err
	}
	s.names[key] = slot
	return nil
}

// handleLet assigns an expression result to a variable: LET x% = expr.
func (s *session) handleLet(text string) error {
	sep := strings.IndexByte(text, '=')
	if sep < 0 {
		return fmt.Errorf("LET needs '='")
	}
	name := strings.TrimSpace(text[:sep])
	code, err := s.lx.scan(strings.TrimSpace(text[sep+1:]))
	if err != nil {
		return err
	}
	v, err := s.ctx.Eval(code)
	if err != nil {
		return err
	}
	if len(name) == 2 && name[1] == '%' && name[0] >= 'A' && name[0] <= 'Z' {
		return s.ctx.StoreStatic(int(name[0]-'A'), v)
	}
	slot, ok := s.names[name]
	if !ok {
		suffix := byte(0)
		if n := len(name); n > 0 {
			switch name[n-1] {
			case '%', '#', '$':
				suffix = name[n-1]
			}
		}
		slot = s.lx.lookupScalar(name, suffix)
	}
	return s.ctx.StoreVariable(slot, v)
}

func (s *session) reportError(err error) {
	msg := err.Error()
	if !s.tty {
		fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
		return
	}
	if !eval.IsUserError(err) && eval.ErrorCode(err) == eval.ErrBroken {
		fmt.Fprintln(os.Stderr, internalStyle.Render("Internal error: "+msg))
		fmt.Fprintln(os.Stderr, "This is a bug. Please report it.")
		return
	}
	fmt.Fprintln(os.Stderr, errStyle.Render("Error: "+msg))
}

func runFile(s *session, path string) int {
	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return 1
	}
	defer f.Close()
	status := 0
	scanner := bufio.NewScanner(f)
	lineno := 0
	for scanner.Scan() {
		lineno++
		if err := s.handleLine(scanner.Text()); err != nil {
			fmt.Fprintf(os.Stderr, "%s:%d: ", path, lineno)
			s.reportError(err)
			status = 1
		}
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %s\n", path, err)
		status = 1
	}
	return status
}

func runREPL(s *session) int {
	// A pending interrupt stops the current evaluation, not the session.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT)
	go func() {
		for range sigs {
			s.ctx.Interrupt()
		}
	}()

	prompt := "> "
	if s.tty {
		prompt = promptStyle.Render("> ")
	}
	scanner := bufio.NewScanner(os.Stdin)
	for {
		if s.tty {
			fmt.Print(prompt)
		}
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		if strings.EqualFold(strings.TrimSpace(line), "QUIT") {
			break
		}
		if err := s.handleLine(line); err != nil {
			s.reportError(err)
		}
		s.ctx.ClearInterrupt()
	}
	return 0
}

func main() {
	limitsPath := flag.String("limits", "", "path to a YAML resource limits file")
	flag.Parse()

	limits := config.DefaultLimits()
	if *limitsPath != "" {
		var err error
		limits, err = config.LoadLimits(*limitsPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
	}

	tty := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	s, err := newSession(limits, tty)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	if flag.NArg() >= 1 {
		os.Exit(runFile(s, flag.Arg(0)))
	}
	os.Exit(runREPL(s))
}
