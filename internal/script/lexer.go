package script

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"borrowck/internal/diag"
	"borrowck/internal/source"
)

// Lexer splits a script into tokens. Blank space and comments are skipped;
// line breaks are significant.
type Lexer struct {
	file     *source.File
	cursor   Cursor
	reporter diag.Reporter
}

func NewLexer(file *source.File, r diag.Reporter) *Lexer {
	if r == nil {
		r = diag.NopReporter{}
	}
	return &Lexer{file: file, cursor: NewCursor(file), reporter: r}
}

// Next returns the next token. After EOF it keeps returning EOF.
func (lx *Lexer) Next() Token {
	for {
		lx.skipBlank()
		if lx.cursor.EOF() {
			m := lx.cursor.Mark()
			return Token{Kind: EOF, Span: lx.cursor.SpanFrom(m)}
		}

		start := lx.cursor.Mark()
		ch := lx.cursor.Peek()
		switch {
		case ch == '\n':
			lx.cursor.Bump()
			return Token{Kind: Newline, Span: lx.cursor.SpanFrom(start)}
		case ch == '{':
			lx.cursor.Bump()
			return Token{Kind: LBrace, Span: lx.cursor.SpanFrom(start), Text: "{"}
		case ch == '}':
			lx.cursor.Bump()
			return Token{Kind: RBrace, Span: lx.cursor.SpanFrom(start), Text: "}"}
		case ch == ',':
			lx.cursor.Bump()
			return Token{Kind: Comma, Span: lx.cursor.SpanFrom(start), Text: ","}
		case ch == '-':
			if _, b1, ok := lx.cursor.Peek2(); ok && b1 == '>' {
				lx.cursor.Advance(2)
				return Token{Kind: Arrow, Span: lx.cursor.SpanFrom(start), Text: "->"}
			}
		}

		if r, _ := lx.peekRune(); isIdentStart(r) {
			return lx.scanIdent()
		}

		// неизвестный символ: сообщаем и пропускаем
		r, sz := lx.peekRune()
		lx.cursor.Advance(max(sz, 1))
		sp := lx.cursor.SpanFrom(start)
		diag.ReportError(lx.reporter, diag.SynUnknownChar, sp, fmt.Sprintf("unknown character %q", r)).Emit()
	}
}

func (lx *Lexer) skipBlank() {
	for !lx.cursor.EOF() {
		switch lx.cursor.Peek() {
		case ' ', '\t', '\r':
			lx.cursor.Bump()
		case '#':
			for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
				lx.cursor.Bump()
			}
		default:
			return
		}
	}
}

func (lx *Lexer) scanIdent() Token {
	start := lx.cursor.Mark()
	for {
		r, sz := lx.peekRune()
		if sz == 0 || !isIdentContinue(r) {
			break
		}
		lx.cursor.Advance(sz)
	}
	sp := lx.cursor.SpanFrom(start)
	raw := lx.file.Content[sp.Start:sp.End]
	return Token{Kind: Ident, Span: sp, Text: string(norm.NFC.Bytes(raw))}
}

func (lx *Lexer) peekRune() (rune, int) {
	rest := lx.cursor.Rest()
	if len(rest) == 0 {
		return 0, 0
	}
	if rest[0] < utf8.RuneSelf {
		return rune(rest[0]), 1
	}
	return utf8.DecodeRune(rest)
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

// '.' joins a closure name and its capture (inc.counter).
func isIdentContinue(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r) || r == '.' || r == '\'' || unicode.Is(unicode.Mn, r)
}
