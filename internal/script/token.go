package script

import (
	"fmt"

	"borrowck/internal/source"
)

// Kind is the lexical class of a token.
type Kind uint8

const (
	Invalid Kind = iota
	EOF
	Newline
	Ident
	Arrow  // ->
	LBrace // {
	RBrace // }
	Comma  // ,
)

func (k Kind) String() string {
	switch k {
	case EOF:
		return "end of file"
	case Newline:
		return "end of line"
	case Ident:
		return "identifier"
	case Arrow:
		return "'->'"
	case LBrace:
		return "'{'"
	case RBrace:
		return "'}'"
	case Comma:
		return "','"
	default:
		return "invalid token"
	}
}

// Token is one lexeme. Text of an identifier is NFC-normalised; Span always
// points at the raw bytes.
type Token struct {
	Kind Kind
	Span source.Span
	Text string
}

// Is reports whether the token is the identifier word.
func (t Token) Is(word string) bool {
	return t.Kind == Ident && t.Text == word
}

func (t Token) describe() string {
	if t.Kind == Ident {
		return fmt.Sprintf("%q", t.Text)
	}
	return t.Kind.String()
}
