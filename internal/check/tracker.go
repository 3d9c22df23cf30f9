// Package check holds the checks that run over classified tokens: tracking of
// declarations and use-before-declaration, initializer type checking, and
// validation of relational operator placement.
package check

import (
	"fmt"

	"github.com/dekarrin/lexcheck/internal/diag"
	"github.com/dekarrin/lexcheck/internal/lex"
	"github.com/dekarrin/lexcheck/internal/token"
)

// Declaration is a variable that was declared with a type keyword, or with var
// or val in Kotlin.
type Declaration struct {
	Identifier string              `json:"identifier"`
	Type       token.PrimitiveType `json:"type"`
	Position   lex.Position        `json:"position"`
}

// String is the string representation.
func (d Declaration) String() string {
	return fmt.Sprintf("%s %s (%s)", d.Type, d.Identifier, d.Position)
}

// State is where the Tracker is within a declaration statement.
type State int

const (
	// ExpectType is the state outside of any declaration, waiting for the
	// keyword that opens one: a type keyword in Java, var or val in Kotlin.
	ExpectType State = iota

	// ExpectIdentifier is the state right after the opening keyword or a
	// declarator-separating comma.
	ExpectIdentifier

	// ExpectRest is the state after the declaration proper, up to the end of
	// the statement.
	ExpectRest

	// ExpectColon is the state after the name in a Kotlin declaration, where
	// a type annotation may start.
	ExpectColon

	// ExpectTypeName is the state after the colon of a Kotlin type
	// annotation.
	ExpectTypeName
)

func (s State) String() string {
	switch s {
	case ExpectType:
		return "ExpectType"
	case ExpectIdentifier:
		return "ExpectIdentifier"
	case ExpectRest:
		return "ExpectRest"
	case ExpectColon:
		return "ExpectColon"
	case ExpectTypeName:
		return "ExpectTypeName"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Transition gives the state that follows s once tok is seen. depth is the
// number of parentheses open at tok. tables gives the language and tells the
// declaring keywords apart from the others.
func Transition(s State, tok token.Token, depth int, tables *token.Tables) State {
	if tables.Language() == token.Kotlin {
		return transitionKotlin(s, tok, tables)
	}

	isType := isTypeKeyword(tok, tables)

	switch s {
	case ExpectType:
		if isType {
			return ExpectIdentifier
		}
		return ExpectType
	case ExpectIdentifier:
		if tok.Kind == token.Identifier {
			return ExpectRest
		}
		return ExpectType
	case ExpectRest:
		switch {
		case endsStatement(tok):
			return ExpectType
		case tok.Is(token.Punctuation, ",") && depth == 0:
			return ExpectIdentifier
		case isType:
			return ExpectIdentifier
		}
		return ExpectRest
	default:
		return ExpectType
	}
}

func transitionKotlin(s State, tok token.Token, tables *token.Tables) State {
	if tok.Kind == token.Keyword && tables.IsDeclarator(tok.Text) {
		return ExpectIdentifier
	}

	switch s {
	case ExpectIdentifier:
		if tok.Kind == token.Identifier {
			return ExpectColon
		}
		return ExpectType
	case ExpectColon:
		if tok.Is(token.Punctuation, ":") {
			return ExpectTypeName
		}
		return ExpectRest
	case ExpectTypeName, ExpectRest:
		if endsStatement(tok) {
			return ExpectType
		}
		return ExpectRest
	default:
		return ExpectType
	}
}

func endsStatement(tok token.Token) bool {
	return tok.Is(token.Punctuation, ";") || tok.Is(token.Punctuation, "{") || tok.Is(token.Punctuation, "}")
}

func isTypeKeyword(tok token.Token, tables *token.Tables) bool {
	if tok.Kind != token.Keyword {
		return false
	}
	_, ok := tables.TypeOf(tok.Text)
	return ok
}

// initializer is a `Type Ident = Literal` or `Ident = Literal` that has been
// partially seen.
type initializer struct {
	active  bool
	decl    Declaration
	signed  bool
	lit     token.Token
	haveLit bool
}

// Tracker follows the code tokens of one source in order, recording
// declarations and reporting assignments to undeclared names along with
// initializers whose literal does not fit the declared type. A Tracker is
// good for one source only; create a new one with NewTracker for each.
type Tracker struct {
	tables *token.Tables

	state   State
	depth   int
	curType token.PrimitiveType

	decls map[string]Declaration

	prev    token.Token
	hasPrev bool

	// declaration made by prev, if prev was a declared identifier
	justDeclared *Declaration

	init initializer
}

// NewTracker creates a Tracker that uses the given tables. If tables is nil,
// token.DefaultTables is used.
func NewTracker(tables *token.Tables) *Tracker {
	if tables == nil {
		tables = token.DefaultTables()
	}
	return &Tracker{
		tables: tables,
		state:  ExpectType,
		decls:  map[string]Declaration{},
	}
}

// State returns the current state of the tracker.
func (tr *Tracker) State() State {
	return tr.state
}

// Declared returns whether name has been declared by any token processed so
// far.
func (tr *Tracker) Declared(name string) bool {
	_, ok := tr.decls[name]
	return ok
}

// Lookup returns the first declaration of name.
func (tr *Tracker) Lookup(name string) (Declaration, bool) {
	d, ok := tr.decls[name]
	return d, ok
}

// Declarations returns a copy of every declaration made, keyed by identifier.
func (tr *Tracker) Declarations() map[string]Declaration {
	m := make(map[string]Declaration, len(tr.decls))
	for k, v := range tr.decls {
		m[k] = v
	}
	return m
}

// Process feeds the next code token to the tracker and returns any flags that
// it causes. Comment tokens are ignored.
func (tr *Tracker) Process(tok token.Token) []diag.Flag {
	if tok.Kind == token.Comment {
		return nil
	}

	var flags []diag.Flag

	if f := tr.advanceInitializer(tok); f != nil {
		flags = append(flags, *f)
	}

	if tok.Kind == token.AssignOperator {
		switch {
		case tr.justDeclared != nil:
			tr.init = initializer{active: true, decl: *tr.justDeclared}
		case tr.hasPrev && tr.prev.Kind == token.Identifier:
			if d, ok := tr.Lookup(tr.prev.Text); ok {
				// plain assignment; the literal is held to the declared type too
				tr.init = initializer{active: true, decl: d}
			} else {
				flags = append(flags, diag.New(
					diag.UseBeforeDeclaration, tr.prev.Start,
					"%q is assigned to before it is declared", tr.prev.Text,
				))
			}
		}
	}

	if !tr.annotates(tok) {
		tr.justDeclared = nil
	}
	if tr.state == ExpectIdentifier && tok.Kind == token.Identifier {
		typ := tr.curType
		if tr.tables.Language() == token.Kotlin {
			typ = token.Inferred
		}
		d := Declaration{Identifier: tok.Text, Type: typ, Position: tok.Start}
		if !tr.Declared(d.Identifier) {
			tr.decls[d.Identifier] = d
		}
		tr.justDeclared = &d
	}

	if pt, ok := tr.tables.TypeOf(tok.Text); ok && tok.Kind == token.Keyword {
		tr.curType = pt
	}

	tr.state = Transition(tr.state, tok, tr.depth, tr.tables)

	switch {
	case tok.Is(token.Punctuation, "("):
		tr.depth++
	case tok.Is(token.Punctuation, ")"):
		if tr.depth > 0 {
			tr.depth--
		}
	case tok.Is(token.Punctuation, "{"), tok.Is(token.Punctuation, "}"):
		tr.depth = 0
	}

	tr.prev = tok
	tr.hasPrev = true

	return flags
}

// annotates returns whether tok is part of the type annotation that follows a
// Kotlin declaration's name, and so keeps the declaration open for its
// initializer. A type keyword in the annotation sets the declared type.
func (tr *Tracker) annotates(tok token.Token) bool {
	if tr.justDeclared == nil || tr.tables.Language() != token.Kotlin {
		return false
	}

	switch {
	case tr.state == ExpectColon:
		return tok.Is(token.Punctuation, ":")
	case tr.state == ExpectTypeName:
		pt, ok := tr.tables.TypeOf(tok.Text)
		if !ok || tok.Kind != token.Keyword {
			return false
		}
		tr.justDeclared.Type = pt
		if first := tr.decls[tr.justDeclared.Identifier]; first.Position == tr.justDeclared.Position {
			tr.decls[first.Identifier] = *tr.justDeclared
		}
		return true
	case tr.state == ExpectRest && tr.prev.Kind == token.Keyword:
		// nullable marker straight after the type
		return tok.Is(token.Punctuation, "?")
	}
	return false
}

// Finish tells the tracker that there are no more tokens. It returns the flag
// for an initializer that ran up to the end of input, if there is one.
func (tr *Tracker) Finish() []diag.Flag {
	defer func() { tr.init = initializer{} }()

	if tr.init.active && tr.init.haveLit {
		if f := CheckInitializer(tr.init.decl, tr.init.lit); f != nil {
			return []diag.Flag{*f}
		}
	}
	return nil
}

// advanceInitializer moves a pending initializer along by one token, checking
// it once its literal is known to be followed by a terminator.
func (tr *Tracker) advanceInitializer(tok token.Token) *diag.Flag {
	if !tr.init.active {
		return nil
	}

	if !tr.init.haveLit {
		isSign := tok.Is(token.ArithmeticOperator, "+") || tok.Is(token.ArithmeticOperator, "-")
		isNum := tok.Kind == token.IntLiteral || tok.Kind == token.FloatLiteral

		switch {
		case isSign && !tr.init.signed:
			tr.init.signed = true
		case tok.Kind.IsLiteral() && (!tr.init.signed || isNum):
			tr.init.lit = tok
			tr.init.haveLit = true
		default:
			tr.init = initializer{}
		}
		return nil
	}

	decl, lit := tr.init.decl, tr.init.lit
	tr.init = initializer{}

	if tok.Is(token.Punctuation, ";") || tok.Is(token.Punctuation, ",") || tok.Is(token.Punctuation, ")") {
		return CheckInitializer(decl, lit)
	}
	if tr.tables.Language() == token.Kotlin && (tok.Is(token.Punctuation, "}") || tok.Start.Line > lit.End.Line) {
		// a line break ends a Kotlin statement
		return CheckInitializer(decl, lit)
	}
	return nil
}
