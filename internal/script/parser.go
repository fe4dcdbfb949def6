package script

import (
	"fmt"
	"strings"

	"borrowck/internal/borrow"
	"borrowck/internal/diag"
	"borrowck/internal/source"
)

var eventKeywords = []string{
	"bind", "move", "share", "borrow", "release", "read", "write",
	"enter", "exit", "closure", "call", "drop",
}

// Parse reads every line of file. Lines with syntax errors are reported and
// skipped, so Events may be incomplete when the reporter saw errors.
func Parse(file *source.File, r diag.Reporter) *Program {
	if r == nil {
		r = diag.NopReporter{}
	}
	p := &parser{
		lx:       NewLexer(file, r),
		reporter: r,
		prog: &Program{
			File:     file,
			Closures: make(map[string]borrow.Closure),
		},
	}
	p.tok = p.lx.Next()
	p.peek = p.lx.Next()
	p.run()
	return p.prog
}

type parser struct {
	lx       *Lexer
	reporter diag.Reporter
	prog     *Program
	tok      Token
	peek     Token
	last     source.Span // span of the last consumed token
}

func (p *parser) run() {
	for p.tok.Kind != EOF {
		if p.tok.Kind == Newline {
			p.advance()
			continue
		}
		if !p.statement() {
			p.skipLine()
			continue
		}
		if p.tok.Kind != Newline && p.tok.Kind != EOF {
			sp := p.tok.Span
			for p.tok.Kind != Newline && p.tok.Kind != EOF {
				sp = sp.Cover(p.tok.Span)
				p.advance()
			}
			diag.ReportError(p.reporter, diag.SynTrailingTokens, sp, "unexpected tokens after event").Emit()
		}
	}
}

func (p *parser) advance() Token {
	t := p.tok
	p.last = t.Span
	p.tok = p.peek
	p.peek = p.lx.Next()
	return t
}

func (p *parser) skipLine() {
	for p.tok.Kind != Newline && p.tok.Kind != EOF {
		p.advance()
	}
}

// err reports an error and returns false so callers can `return p.err(...)`.
func (p *parser) err(code diag.Code, sp source.Span, msg string) bool {
	diag.ReportError(p.reporter, code, sp, msg).Emit()
	return false
}

func (p *parser) statement() bool {
	kw := p.tok
	if kw.Kind != Ident {
		return p.err(diag.SynUnexpectedToken, kw.Span, fmt.Sprintf("expected event keyword, got %s", kw.describe()))
	}
	p.advance()

	switch kw.Text {
	case "enter":
		name, ok := p.ident("scope name")
		if !ok {
			return false
		}
		p.emit(kw, borrow.EnterScope(name))
	case "exit":
		name := ""
		if p.tok.Kind == Ident {
			name = p.advance().Text
		}
		p.emit(kw, borrow.ExitScope(name))
	case "bind":
		mut := p.mutMarker()
		name, ok := p.ident("binding name")
		if !ok {
			return false
		}
		p.emit(kw, borrow.Bind(name, mut))
	case "move":
		return p.move(kw)
	case "share":
		return p.borrowTail(kw, false)
	case "borrow":
		return p.borrowTail(kw, p.mutMarker())
	case "release", "read", "write":
		name, ok := p.ident("binding or borrow name")
		if !ok {
			return false
		}
		switch kw.Text {
		case "release":
			p.emit(kw, borrow.ReleaseBorrow(name))
		case "read":
			p.emit(kw, borrow.Read(name))
		default:
			p.emit(kw, borrow.Write(name))
		}
	case "closure":
		return p.closure(kw)
	case "call", "drop":
		c, ok := p.closureRef()
		if !ok {
			return false
		}
		if kw.Text == "call" {
			p.emit(kw, c.Call()...)
		} else {
			p.emit(kw, c.Drop()...)
		}
	default:
		msg := fmt.Sprintf("unknown event %q", kw.Text)
		if hint := suggest(kw.Text); hint != "" {
			msg += fmt.Sprintf("; did you mean %q?", hint)
		}
		return p.err(diag.SynUnknownEvent, kw.Span, msg)
	}
	return true
}

// emit records events with the span from the keyword to the last consumed token.
func (p *parser) emit(kw Token, evs ...borrow.Event) {
	p.prog.emit(kw.Span.Cover(p.last), evs...)
}

// mutMarker consumes "mut" when it is followed by another identifier, so
// "bind mut" still binds a value named mut.
func (p *parser) mutMarker() bool {
	if p.tok.Is("mut") && p.peek.Kind == Ident {
		p.advance()
		return true
	}
	return false
}

func (p *parser) ident(what string) (string, bool) {
	if p.tok.Kind != Ident {
		return "", p.err(diag.SynExpectIdentifier, p.tok.Span, fmt.Sprintf("expected %s, got %s", what, p.tok.describe()))
	}
	return p.advance().Text, true
}

func (p *parser) expect(k Kind) bool {
	if p.tok.Kind != k {
		return p.err(diag.SynUnexpectedToken, p.tok.Span, fmt.Sprintf("expected %s, got %s", k, p.tok.describe()))
	}
	p.advance()
	return true
}

// optional parses "<word> NAME" when the current token is word.
func (p *parser) optional(word, what string) (string, bool) {
	if !p.tok.Is(word) {
		return "", true
	}
	p.advance()
	return p.ident(what)
}

func (p *parser) move(kw Token) bool {
	from, ok := p.ident("binding name")
	if !ok || !p.expect(Arrow) {
		return false
	}
	to, ok := p.ident("destination name")
	if !ok {
		return false
	}
	p.emit(kw, borrow.Move(from, to))
	return true
}

func (p *parser) borrowTail(kw Token, mut bool) bool {
	target, ok := p.ident("binding name")
	if !ok {
		return false
	}
	name, ok := p.optional("as", "borrow name")
	if !ok {
		return false
	}
	scope, ok := p.optional("in", "scope name")
	if !ok {
		return false
	}
	ev := borrow.BorrowShared(target, scope)
	if mut {
		ev = borrow.BorrowExclusive(target, scope)
	}
	p.emit(kw, ev.As(name))
	return true
}

func (p *parser) closure(kw Token) bool {
	name, ok := p.ident("closure name")
	if !ok {
		return false
	}
	open := p.tok.Span
	if !p.expect(LBrace) {
		return false
	}

	var captures []borrow.Capture
	for {
		p.skipNewlines()
		if p.tok.Kind == RBrace {
			break
		}
		modeTok := p.tok
		modeText, ok := p.ident("capture mode")
		if !ok {
			return false
		}
		mode, err := borrow.ParseCaptureMode(modeText)
		if err != nil {
			return p.err(diag.SynExpectKeyword, modeTok.Span, err.Error())
		}
		target, ok := p.ident("captured binding")
		if !ok {
			return false
		}
		captures = append(captures, borrow.Capture{Target: target, Mode: mode})
		p.skipNewlines()
		if p.tok.Kind != Comma {
			break
		}
		p.advance()
	}
	p.skipNewlines()
	if !p.expect(RBrace) {
		return false
	}
	scope, ok := p.optional("in", "scope name")
	if !ok {
		return false
	}

	c := borrow.NewClosure(name, scope, captures...)
	p.prog.Closures[name] = c
	if len(captures) == 0 {
		// пустой список захватов допустим, но почти всегда это опечатка
		diag.ReportWarning(p.reporter, diag.SynEmptyCapture, open.Cover(p.last),
			fmt.Sprintf("closure %q captures nothing", name)).Emit()
		return true
	}
	p.emit(kw, c.Create()...)
	return true
}

func (p *parser) skipNewlines() {
	for p.tok.Kind == Newline {
		p.advance()
	}
}

func (p *parser) closureRef() (borrow.Closure, bool) {
	tok := p.tok
	name, ok := p.ident("closure name")
	if !ok {
		return borrow.Closure{}, false
	}
	c, found := p.prog.Closures[name]
	if !found {
		return c, p.err(diag.SynUnknownClosure, tok.Span, fmt.Sprintf("no closure named %q", name))
	}
	return c, true
}

// suggest returns the closest event keyword within edit distance 2.
func suggest(word string) string {
	best, bestDist := "", 3
	for _, kw := range eventKeywords {
		if d := editDistance(strings.ToLower(word), kw); d < bestDist {
			best, bestDist = kw, d
		}
	}
	return best
}

func editDistance(a, b string) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
