package script

import (
	"testing"

	"borrowck/internal/diag"
	"borrowck/internal/source"
)

func newFile(content string) *source.File {
	fs := source.NewFileSet()
	return fs.Get(fs.AddVirtual("test.own", []byte(content)))
}

func collect(t *testing.T, content string) ([]Token, *diag.Bag) {
	t.Helper()
	bag := diag.NewBag(16)
	lx := NewLexer(newFile(content), diag.BagReporter{Bag: bag})
	var toks []Token
	for {
		tok := lx.Next()
		toks = append(toks, tok)
		if tok.Kind == EOF {
			return toks, bag
		}
	}
}

func TestLexerTokens(t *testing.T) {
	toks, bag := collect(t, "move a -> b # comment\nclosure c { ref x, mut y }\n")
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	want := []Kind{
		Ident, Ident, Arrow, Ident, Newline,
		Ident, Ident, LBrace, Ident, Ident, Comma, Ident, Ident, RBrace, Newline,
		EOF,
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %+v", len(toks), len(want), toks)
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Errorf("token %d: kind %v, want %v", i, toks[i].Kind, k)
		}
	}
	if toks[3].Text != "b" || toks[3].Span.Start != 10 || toks[3].Span.End != 11 {
		t.Errorf("unexpected token b: %+v", toks[3])
	}
}

func TestLexerDottedAndUnicodeIdents(t *testing.T) {
	// "é" as e + combining acute must normalise to the precomposed form
	toks, bag := collect(t, "read inc.counter\nread cafe\u0301")
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	if toks[1].Text != "inc.counter" {
		t.Errorf("dotted ident = %q", toks[1].Text)
	}
	if toks[4].Text != "caf\u00e9" {
		t.Errorf("ident not NFC: %q", toks[4].Text)
	}
	if toks[4].Span.Len() != 6 {
		t.Errorf("span must cover raw bytes, got %d", toks[4].Span.Len())
	}
}

func TestLexerUnknownChar(t *testing.T) {
	toks, bag := collect(t, "read $x")
	if bag.Len() != 1 {
		t.Fatalf("expected one diagnostic, got %d", bag.Len())
	}
	d := bag.Items()[0]
	if d.Code != diag.SynUnknownChar || d.Primary.Start != 5 || d.Primary.End != 6 {
		t.Fatalf("unexpected diagnostic %+v", d)
	}
	if toks[1].Kind != Ident || toks[1].Text != "x" {
		t.Fatalf("lexer must resume after the bad byte, got %+v", toks[1])
	}
}

func TestCursorPeekBump(t *testing.T) {
	c := NewCursor(newFile("ab"))
	if c.Peek() != 'a' {
		t.Fatalf("peek = %q", c.Peek())
	}
	b0, b1, ok := c.Peek2()
	if !ok || b0 != 'a' || b1 != 'b' {
		t.Fatalf("peek2 = %q %q %v", b0, b1, ok)
	}
	m := c.Mark()
	c.Bump()
	c.Bump()
	if !c.EOF() || c.Bump() != 0 {
		t.Fatal("expected EOF")
	}
	if sp := c.SpanFrom(m); sp.Start != 0 || sp.End != 2 {
		t.Fatalf("span = %+v", sp)
	}
}
