package token

import (
	"unicode"
	"unicode/utf8"

	"github.com/dekarrin/lexcheck/internal/diag"
	"github.com/dekarrin/lexcheck/internal/lex"
)

// Classifier assigns Kinds to lexemes using a set of Tables. It holds no state
// of its own beyond the tables, so one Classifier can be used for any number
// of sources.
type Classifier struct {
	tables *Tables
}

// NewClassifier returns a Classifier that uses the given tables. If t is nil,
// DefaultTables is used.
func NewClassifier(t *Tables) *Classifier {
	if t == nil {
		t = DefaultTables()
	}
	return &Classifier{tables: t}
}

// Tables returns the tables that c classifies with.
func (c *Classifier) Tables() *Tables {
	return c.tables
}

// Classify gives lx a Kind. If lx looks like a misspelled keyword, it is still
// classified as an Identifier and a MisspelledKeyword flag is returned along
// with it; otherwise the returned flag is nil.
//
// declared reports whether a name has already been declared. Declared names
// are never reported as misspellings. It may be nil, in which case no name is
// considered declared.
func (c *Classifier) Classify(lx lex.Lexeme, declared func(string) bool) (Token, *diag.Flag) {
	tok := Token{Kind: c.kindOf(lx.Text), Lexeme: lx}

	if tok.Kind != Identifier {
		return tok, nil
	}
	if declared != nil && declared(lx.Text) {
		return tok, nil
	}

	first, _ := utf8.DecodeRuneInString(lx.Text)
	if !isLetter(first) || utf8.RuneCountInString(lx.Text) < c.tables.MinMisspellingLength() {
		return tok, nil
	}

	kw, ok := c.NearestKeyword(lx.Text)
	if !ok {
		return tok, nil
	}

	f := diag.New(diag.MisspelledKeyword, lx.Start, "%q resembles keyword %q", lx.Text, kw)
	return tok, &f
}

// NearestKeyword returns the first keyword in table order that is exactly one
// edit away from word. If word is itself a keyword or no keyword is one edit
// away, ok is false.
func (c *Classifier) NearestKeyword(word string) (kw string, ok bool) {
	if c.tables.IsKeyword(word) {
		return "", false
	}
	for _, candidate := range c.tables.keywords {
		// length differs by more than one edit could cover
		if diff := utf8.RuneCountInString(candidate) - utf8.RuneCountInString(word); diff > 1 || diff < -1 {
			continue
		}
		if EditDistance(word, candidate) == 1 {
			return candidate, true
		}
	}
	return "", false
}

func (c *Classifier) kindOf(text string) Kind {
	if text == "" {
		return Unknown
	}
	if c.tables.IsKeyword(text) {
		return Keyword
	}
	if lex.IsCommentText(text) {
		return Comment
	}

	first, _ := utf8.DecodeRuneInString(text)
	switch {
	case isDigit(first):
		return numberKind(text)
	case first == '\'':
		if isCharLiteral(text) {
			return CharLiteral
		}
		return Unknown
	case first == '"':
		if isTerminated([]rune(text), '"') {
			return StringLiteral
		}
		return Unknown
	}

	if k, ok := c.tables.SymbolKind(text); ok {
		return k
	}

	if isIdentifierText(text) {
		return Identifier
	}
	return Unknown
}

// numberKind gives the Kind of a lexeme that starts with a digit.
func numberKind(text string) Kind {
	runes := []rune(text)

	var suffix rune
	if last := runes[len(runes)-1]; !isDigit(last) && last != '.' {
		suffix = last
		runes = runes[:len(runes)-1]
	}

	dots := 0
	for _, ch := range runes {
		if ch == '.' {
			dots++
		} else if !isDigit(ch) {
			return Unknown
		}
	}
	if dots > 1 || (len(runes) > 0 && runes[len(runes)-1] == '.') {
		return Unknown
	}

	switch suffix {
	case 0:
		if dots == 1 {
			return FloatLiteral
		}
		return IntLiteral
	case 'l', 'L':
		if dots == 1 {
			return Unknown
		}
		return IntLiteral
	case 'f', 'F', 'd', 'D':
		return FloatLiteral
	default:
		return Unknown
	}
}

// isCharLiteral returns whether text is exactly 'x' or '\x'.
func isCharLiteral(text string) bool {
	runes := []rune(text)
	switch len(runes) {
	case 3:
		return runes[0] == '\'' && runes[2] == '\'' && runes[1] != '\'' && runes[1] != '\\'
	case 4:
		return runes[0] == '\'' && runes[1] == '\\' && runes[3] == '\''
	default:
		return false
	}
}

// isTerminated returns whether runes, which open with quote, are closed by an
// unescaped quote as their final rune.
func isTerminated(runes []rune, quote rune) bool {
	for i := 1; i < len(runes); i++ {
		switch runes[i] {
		case '\\':
			i++
		case quote:
			return i == len(runes)-1
		}
	}
	return false
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func isLetter(ch rune) bool {
	return unicode.IsLetter(ch)
}
