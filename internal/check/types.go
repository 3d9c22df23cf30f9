package check

import (
	"strings"

	"github.com/dekarrin/lexcheck/internal/diag"
	"github.com/dekarrin/lexcheck/internal/token"
)

var compatibleLiterals = map[token.PrimitiveType][]token.Kind{
	token.Int:        {token.IntLiteral},
	token.Float:      {token.FloatLiteral, token.IntLiteral},
	token.Char:       {token.CharLiteral},
	token.StringLike: {token.StringLiteral},
}

// Accepts returns whether a variable declared as pt may be initialized with a
// literal of kind k.
func Accepts(pt token.PrimitiveType, k token.Kind) bool {
	for _, allowed := range compatibleLiterals[pt] {
		if allowed == k {
			return true
		}
	}
	return false
}

// CheckInitializer checks the literal that decl is initialized with against
// the declared type. If init is not a literal or decl has an inferred type, it
// is not checked and nil is returned. The returned flag is positioned at the literal.
func CheckInitializer(decl Declaration, init token.Token) *diag.Flag {
	if !init.Kind.IsLiteral() || decl.Type == token.Inferred {
		return nil
	}
	if Accepts(decl.Type, init.Kind) {
		return nil
	}

	f := diag.New(
		diag.TypeMismatch, init.Start,
		"%s %q cannot take %s %s", decl.Type, decl.Identifier, strings.ToLower(init.Kind.Human()), init.Text,
	)
	return &f
}
