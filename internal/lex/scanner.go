package lex

import (
	"strings"
	"unicode"
)

// Scanner is a lazily-evaluated stream of Lexemes read from source text. Each
// call to Next produces one more lexeme; nothing past it has been looked at
// yet. A Scanner cannot be rewound; to read the same text again, create a new
// one.
//
// Scanner should not be used directly; create one with [Scan] or [New].
type Scanner struct {
	src []rune

	// index of the next unread rune in src
	cur int

	// position of the rune at cur, and of the most recently consumed rune.
	line    int
	col     int
	lastPos Position

	symbols   map[string]bool
	maxSymLen int
}

// Scan returns a Scanner over src that matches operators from
// DefaultSymbols.
func Scan(src string) *Scanner {
	return New(src, DefaultSymbols)
}

// New returns a Scanner over src that greedily matches the given operator and
// punctuation spellings. Spellings are preferred longest-first, so if both "<"
// and "<=" are given, "<=" in the source is read as a single lexeme.
func New(src string, symbols []string) *Scanner {
	sc := &Scanner{
		src:     []rune(src),
		line:    1,
		col:     1,
		symbols: make(map[string]bool, len(symbols)),
	}

	for _, s := range symbols {
		if s == "" {
			continue
		}
		sc.symbols[s] = true
		if n := len([]rune(s)); n > sc.maxSymLen {
			sc.maxSymLen = n
		}
	}

	return sc
}

// All reads every remaining lexeme from sc and returns them in order.
func (sc *Scanner) All() []Lexeme {
	lexemes := []Lexeme{}
	for sc.HasNext() {
		lexemes = append(lexemes, sc.Next())
	}
	return lexemes
}

// HasNext returns whether the stream has any additional lexemes.
func (sc *Scanner) HasNext() bool {
	sc.skipSpace()
	return sc.cur < len(sc.src)
}

// Peek returns the next lexeme in the stream without advancing the stream.
func (sc *Scanner) Peek() Lexeme {
	oldCur, oldLine, oldCol, oldLast := sc.cur, sc.line, sc.col, sc.lastPos

	lx := sc.Next()

	sc.cur, sc.line, sc.col, sc.lastPos = oldCur, oldLine, oldCol, oldLast
	return lx
}

// Next returns the next lexeme in the stream and advances the stream past it.
// If at the end of the stream, the zero Lexeme is returned.
func (sc *Scanner) Next() Lexeme {
	sc.skipSpace()
	if sc.cur >= len(sc.src) {
		return Lexeme{}
	}

	start := sc.pos()
	startIdx := sc.cur
	ch := sc.src[sc.cur]

	switch {
	case ch == '/' && sc.peekIs(1, '/'):
		sc.readLineComment()
	case ch == '/' && sc.peekIs(1, '*'):
		sc.readBlockComment()
	case ch == '_' || unicode.IsLetter(ch):
		sc.readIdentifier()
	case isDigit(ch):
		sc.readNumber()
	case ch == '\'' || ch == '"':
		sc.readQuoted(ch)
	default:
		if !sc.readSymbol() {
			// not anything we know about; emit it alone and move on
			sc.advance()
		}
	}

	return Lexeme{
		Text:  string(sc.src[startIdx:sc.cur]),
		Start: start,
		End:   sc.lastPos,
	}
}

func (sc *Scanner) pos() Position {
	return Position{Line: sc.line, Column: sc.col}
}

// advance consumes one rune and updates line tracking.
func (sc *Scanner) advance() {
	sc.lastPos = sc.pos()
	if sc.src[sc.cur] == '\n' {
		sc.line++
		sc.col = 1
	} else {
		sc.col++
	}
	sc.cur++
}

func (sc *Scanner) peekIs(offset int, ch rune) bool {
	idx := sc.cur + offset
	return idx < len(sc.src) && sc.src[idx] == ch
}

func (sc *Scanner) atEnd() bool {
	return sc.cur >= len(sc.src)
}

// atEOL returns whether the unread rune ends the line, either as a bare "\n"
// or as the "\r" of a "\r\n" pair.
func (sc *Scanner) atEOL() bool {
	ch := sc.src[sc.cur]
	return ch == '\n' || (ch == '\r' && sc.peekIs(1, '\n'))
}

func (sc *Scanner) skipSpace() {
	for !sc.atEnd() && unicode.IsSpace(sc.src[sc.cur]) {
		sc.advance()
	}
}

// readLineComment reads from "//" up to but not including the end of line.
func (sc *Scanner) readLineComment() {
	for !sc.atEnd() && !sc.atEOL() {
		sc.advance()
	}
}

// readBlockComment reads from "/*" through the first "*/", or to the end of
// input if the comment is never closed.
func (sc *Scanner) readBlockComment() {
	sc.advance()
	sc.advance()
	for !sc.atEnd() {
		if sc.src[sc.cur] == '*' && sc.peekIs(1, '/') {
			sc.advance()
			sc.advance()
			return
		}
		sc.advance()
	}
}

func (sc *Scanner) readIdentifier() {
	for !sc.atEnd() {
		ch := sc.src[sc.cur]
		if ch != '_' && !unicode.IsLetter(ch) && !unicode.IsDigit(ch) {
			return
		}
		sc.advance()
	}
}

// readNumber reads a digit run with at most one decimal point and at most one
// trailing letter. The point is only taken when a digit follows it.
func (sc *Scanner) readNumber() {
	sc.readDigits()
	if !sc.atEnd() && sc.src[sc.cur] == '.' && sc.cur+1 < len(sc.src) && isDigit(sc.src[sc.cur+1]) {
		sc.advance()
		sc.readDigits()
	}
	if !sc.atEnd() && isASCIILetter(sc.src[sc.cur]) {
		sc.advance()
	}
}

func (sc *Scanner) readDigits() {
	for !sc.atEnd() && isDigit(sc.src[sc.cur]) {
		sc.advance()
	}
}

// readQuoted reads a char or string literal opened by quote. Backslash escapes
// the rune after it. An unterminated literal stops at the end of the line and
// does not take the newline.
func (sc *Scanner) readQuoted(quote rune) {
	sc.advance()
	for !sc.atEnd() {
		ch := sc.src[sc.cur]
		switch {
		case sc.atEOL():
			return
		case ch == '\\':
			sc.advance()
			if !sc.atEnd() && !sc.atEOL() {
				sc.advance()
			}
		case ch == quote:
			sc.advance()
			return
		default:
			sc.advance()
		}
	}
}

// readSymbol reads the longest symbol spelling that matches at the current
// position. Returns false if none match.
func (sc *Scanner) readSymbol() bool {
	for n := sc.maxSymLen; n > 0; n-- {
		if sc.cur+n > len(sc.src) {
			continue
		}
		candidate := string(sc.src[sc.cur : sc.cur+n])
		if sc.symbols[candidate] {
			for i := 0; i < n; i++ {
				sc.advance()
			}
			return true
		}
	}
	return false
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func isASCIILetter(ch rune) bool {
	return ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z')
}

// IsCommentText returns whether text has the shape of a comment lexeme.
func IsCommentText(text string) bool {
	return strings.HasPrefix(text, "//") || strings.HasPrefix(text, "/*")
}
