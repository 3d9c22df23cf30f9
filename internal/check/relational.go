package check

import (
	"github.com/dekarrin/lexcheck/internal/diag"
	"github.com/dekarrin/lexcheck/internal/token"
)

// ValidateRelational checks that every relational operator in tokens sits
// between two operands. Neighbors are the adjacent code tokens wherever they
// are, so a condition that is split across lines is still well formed; comment
// tokens are skipped over. Each misplaced operator gets exactly one flag, in
// token order.
func ValidateRelational(tokens []token.Token, tables *token.Tables) []diag.Flag {
	if tables == nil {
		tables = token.DefaultTables()
	}

	code := make([]token.Token, 0, len(tokens))
	for _, tok := range tokens {
		if tok.Kind != token.Comment {
			code = append(code, tok)
		}
	}

	var flags []diag.Flag
	for i, op := range code {
		if op.Kind != token.RelationalOperator {
			continue
		}

		left, hasLeft := neighbor(code, i, -1)
		right, hasRight := neighbor(code, i, 1)

		if (hasLeft && left.Kind == token.RelationalOperator) || (hasRight && right.Kind == token.RelationalOperator) {
			flags = append(flags, diag.New(
				diag.MisplacedRelationalOperator, op.Start,
				"operator %q is part of a split or malformed relational operator", op.Text,
			))
			continue
		}

		leftOK := hasLeft && isLeftOperand(left, tables)
		rightOK := hasRight && isRightOperand(code, i+1, tables)

		var problem string
		switch {
		case !leftOK && !rightOK:
			problem = "is missing both operands"
		case !leftOK:
			problem = "is missing its left operand"
		case !rightOK:
			problem = "is missing its right operand"
		default:
			continue
		}

		flags = append(flags, diag.New(diag.MisplacedRelationalOperator, op.Start, "operator %q %s", op.Text, problem))
	}

	return flags
}

// neighbor returns the token next to code[i] in direction dir. ok is false at
// either end of code.
func neighbor(code []token.Token, i int, dir int) (tok token.Token, ok bool) {
	j := i + dir
	if j < 0 || j >= len(code) {
		return token.Token{}, false
	}
	return code[j], true
}

func isValue(tok token.Token, tables *token.Tables) bool {
	switch {
	case tok.Kind == token.Identifier, tok.Kind.IsLiteral():
		return true
	case tok.Kind == token.Keyword:
		return tables.IsValueKeyword(tok.Text)
	}
	return false
}

func isLeftOperand(tok token.Token, tables *token.Tables) bool {
	return isValue(tok, tables) || tok.Is(token.Punctuation, ")") || tok.Is(token.Punctuation, "]")
}

// isRightOperand returns whether code[i] can start the right side of a
// relational operator. A leading sign is allowed if a value follows it.
func isRightOperand(code []token.Token, i int, tables *token.Tables) bool {
	tok := code[i]
	if isValue(tok, tables) || tok.Is(token.Punctuation, "(") {
		return true
	}
	if tok.Is(token.ArithmeticOperator, "-") || tok.Is(token.ArithmeticOperator, "+") {
		next, ok := neighbor(code, i, 1)
		return ok && (isValue(next, tables) || next.Is(token.Punctuation, "("))
	}
	return false
}
