// Package lex splits C-like source text into positioned lexemes. Lexing is
// done rune by rune in a single left-to-right pass and never fails; any rune
// that does not start a known lexeme shape becomes a one-rune lexeme of its
// own and scanning continues with the next rune.
package lex

import "fmt"

// DefaultSymbols is the set of operator and punctuation spellings that the
// scanner matches greedily when it is not given its own set.
var DefaultSymbols = []string{
	"<", ">", "<=", ">=", "==", "!=",
	"=",
	"+", "-", "*", "/", "%",
	";", "{", "}", "(", ")", ",", "[", "]", ".", ":",
}

// Position is a place in source text. Both Line and Column are 1-indexed and
// Column counts runes, not bytes.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// String shows the Position as "LINE:COL".
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Before returns whether p comes strictly before o in the source.
func (p Position) Before(o Position) bool {
	if p.Line != o.Line {
		return p.Line < o.Line
	}
	return p.Column < o.Column
}

// Lexeme is a run of source text that was cut out by the scanner, prior to
// any classification. End is the position of the last rune of the lexeme, so a
// one-rune lexeme has Start == End.
type Lexeme struct {
	Text  string   `json:"text"`
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// String is the string representation.
func (lx Lexeme) String() string {
	return fmt.Sprintf("(%s %q)", lx.Start, lx.Text)
}

// IsZero returns whether lx is the zero Lexeme, which is what a Scanner
// returns once it has run out of input.
func (lx Lexeme) IsZero() bool {
	return lx.Text == "" && lx.Start == Position{}
}
