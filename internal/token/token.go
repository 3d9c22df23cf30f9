// Package token assigns a Kind to each lexeme produced by package lex and holds
// the keyword, type, and symbol tables that classification is driven by.
package token

import (
	"fmt"
	"strings"

	"github.com/dekarrin/lexcheck/internal/lex"
)

// Kind is the lexical category of a Token.
type Kind int

const (
	Unknown Kind = iota
	Keyword
	Identifier
	IntLiteral
	FloatLiteral
	CharLiteral
	StringLiteral
	RelationalOperator
	ArithmeticOperator
	AssignOperator
	Punctuation
	Comment
)

var kindNames = []string{
	Unknown:            "Unknown",
	Keyword:            "Keyword",
	Identifier:         "Identifier",
	IntLiteral:         "IntLiteral",
	FloatLiteral:       "FloatLiteral",
	CharLiteral:        "CharLiteral",
	StringLiteral:      "StringLiteral",
	RelationalOperator: "RelationalOperator",
	ArithmeticOperator: "ArithmeticOperator",
	AssignOperator:     "AssignOperator",
	Punctuation:        "Punctuation",
	Comment:            "Comment",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Human returns the name of the Kind as it is shown in token tables, e.g.
// "FLOAT LITERAL".
func (k Kind) Human() string {
	switch k {
	case IntLiteral:
		return "INT LITERAL"
	case FloatLiteral:
		return "FLOAT LITERAL"
	case CharLiteral:
		return "CHAR LITERAL"
	case StringLiteral:
		return "STRING LITERAL"
	case RelationalOperator:
		return "RELATIONAL OP"
	case ArithmeticOperator:
		return "ARITHMETIC OP"
	case AssignOperator:
		return "ASSIGN OP"
	default:
		return strings.ToUpper(k.String())
	}
}

// IsLiteral returns whether k is one of the four literal kinds.
func (k Kind) IsLiteral() bool {
	return k == IntLiteral || k == FloatLiteral || k == CharLiteral || k == StringLiteral
}

// MarshalText gives the name of the Kind.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText sets k to the Kind named by text.
func (k *Kind) UnmarshalText(text []byte) error {
	s := string(text)
	for i := range kindNames {
		if kindNames[i] == s {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("not a token kind: %q", s)
}

// Token is a lexeme that has been given a Kind.
type Token struct {
	Kind Kind `json:"kind"`
	lex.Lexeme
}

// String is the string representation.
func (tok Token) String() string {
	return fmt.Sprintf("(%s %s %q)", tok.Start, tok.Kind, tok.Text)
}

// Is returns whether tok is of the given kind and has exactly the given text.
func (tok Token) Is(kind Kind, text string) bool {
	return tok.Kind == kind && tok.Text == text
}
