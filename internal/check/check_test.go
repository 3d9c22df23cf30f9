package check

import (
	"testing"

	"github.com/dekarrin/lexcheck/internal/diag"
	"github.com/dekarrin/lexcheck/internal/lex"
	"github.com/dekarrin/lexcheck/internal/token"
	"github.com/stretchr/testify/assert"
)

// classify scans and classifies src with the default tables, ignoring any
// misspelling flags.
func classify(src string) []token.Token {
	return classifyWith(src, nil)
}

func classifyWith(src string, tables *token.Tables) []token.Token {
	c := token.NewClassifier(tables)
	sc := lex.New(src, c.Tables().Symbols())

	var toks []token.Token
	for sc.HasNext() {
		tok, _ := c.Classify(sc.Next(), nil)
		toks = append(toks, tok)
	}
	return toks
}

func track(src string) (*Tracker, []diag.Flag) {
	return trackWith(src, nil)
}

func trackWith(src string, tables *token.Tables) (*Tracker, []diag.Flag) {
	tr := NewTracker(tables)

	var flags []diag.Flag
	for _, tok := range classifyWith(src, tables) {
		flags = append(flags, tr.Process(tok)...)
	}
	flags = append(flags, tr.Finish()...)
	return tr, flags
}

func kindsOf(flags []diag.Flag) []diag.Kind {
	kinds := []diag.Kind{}
	for _, f := range flags {
		kinds = append(kinds, f.Kind)
	}
	return kinds
}

func Test_Transition(t *testing.T) {
	tables := token.DefaultTables()
	tok := func(kind token.Kind, text string) token.Token {
		return token.Token{Kind: kind, Lexeme: lex.Lexeme{Text: text}}
	}

	testCases := []struct {
		name   string
		state  State
		tok    token.Token
		depth  int
		expect State
	}{
		{name: "type keyword starts declaration", state: ExpectType, tok: tok(token.Keyword, "int"), expect: ExpectIdentifier},
		{name: "other keyword stays", state: ExpectType, tok: tok(token.Keyword, "if"), expect: ExpectType},
		{name: "identifier outside declaration stays", state: ExpectType, tok: tok(token.Identifier, "x"), expect: ExpectType},
		{name: "identifier after type", state: ExpectIdentifier, tok: tok(token.Identifier, "x"), expect: ExpectRest},
		{name: "non-identifier after type resets", state: ExpectIdentifier, tok: tok(token.Punctuation, "("), expect: ExpectType},
		{name: "semicolon ends statement", state: ExpectRest, tok: tok(token.Punctuation, ";"), expect: ExpectType},
		{name: "open brace ends statement", state: ExpectRest, tok: tok(token.Punctuation, "{"), expect: ExpectType},
		{name: "close brace ends statement", state: ExpectRest, tok: tok(token.Punctuation, "}"), expect: ExpectType},
		{name: "top-level comma declares another", state: ExpectRest, tok: tok(token.Punctuation, ","), expect: ExpectIdentifier},
		{name: "comma inside parens does not", state: ExpectRest, tok: tok(token.Punctuation, ","), depth: 1, expect: ExpectRest},
		{name: "type keyword in rest", state: ExpectRest, tok: tok(token.Keyword, "char"), expect: ExpectIdentifier},
		{name: "literal in rest stays", state: ExpectRest, tok: tok(token.IntLiteral, "5"), expect: ExpectRest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			actual := Transition(tc.state, tc.tok, tc.depth, tables)

			assert.Equal(tc.expect, actual)
		})
	}
}

func Test_Transition_Kotlin(t *testing.T) {
	tables := token.BuiltinTables(token.Kotlin)
	tok := func(kind token.Kind, text string) token.Token {
		return token.Token{Kind: kind, Lexeme: lex.Lexeme{Text: text}}
	}

	testCases := []struct {
		name   string
		state  State
		tok    token.Token
		expect State
	}{
		{name: "var starts declaration", state: ExpectType, tok: tok(token.Keyword, "var"), expect: ExpectIdentifier},
		{name: "val starts declaration", state: ExpectRest, tok: tok(token.Keyword, "val"), expect: ExpectIdentifier},
		{name: "type keyword alone does not", state: ExpectType, tok: tok(token.Keyword, "Int"), expect: ExpectType},
		{name: "name after var", state: ExpectIdentifier, tok: tok(token.Identifier, "x"), expect: ExpectColon},
		{name: "keyword after var resets", state: ExpectIdentifier, tok: tok(token.Keyword, "if"), expect: ExpectType},
		{name: "colon opens annotation", state: ExpectColon, tok: tok(token.Punctuation, ":"), expect: ExpectTypeName},
		{name: "no annotation", state: ExpectColon, tok: tok(token.AssignOperator, "="), expect: ExpectRest},
		{name: "type name", state: ExpectTypeName, tok: tok(token.Keyword, "String"), expect: ExpectRest},
		{name: "close brace ends statement", state: ExpectRest, tok: tok(token.Punctuation, "}"), expect: ExpectType},
		{name: "comma does not declare another", state: ExpectRest, tok: tok(token.Punctuation, ","), expect: ExpectRest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			actual := Transition(tc.state, tc.tok, 0, tables)

			assert.Equal(tc.expect, actual)
		})
	}
}

func Test_Tracker_Kotlin(t *testing.T) {
	testCases := []struct {
		name        string
		input       string
		expect      []diag.Kind
		expectPos   []lex.Position
		expectDecls map[string]Declaration
	}{
		{
			name:   "typed declaration",
			input:  "var x: Int",
			expect: []diag.Kind{},
			expectDecls: map[string]Declaration{
				"x": {Identifier: "x", Type: token.Int, Position: lex.Position{Line: 1, Column: 5}},
			},
		},
		{
			name:   "untyped declaration",
			input:  "val len = maybe?.length ?: 0",
			expect: []diag.Kind{},
			expectDecls: map[string]Declaration{
				"len": {Identifier: "len", Type: token.Inferred, Position: lex.Position{Line: 1, Column: 5}},
			},
		},
		{
			name:   "nullable type",
			input:  "var maybe: String? = null",
			expect: []diag.Kind{},
			expectDecls: map[string]Declaration{
				"maybe": {Identifier: "maybe", Type: token.StringLike, Position: lex.Position{Line: 1, Column: 5}},
			},
		},
		{
			name:      "float into Int ended by line break",
			input:     "var a: Int = 3.14\nvar b: Int = 2",
			expect:    []diag.Kind{diag.TypeMismatch},
			expectPos: []lex.Position{{Line: 1, Column: 14}},
		},
		{
			name:      "char into Float at end of input",
			input:     "var b: Float = 'c'",
			expect:    []diag.Kind{diag.TypeMismatch},
			expectPos: []lex.Position{{Line: 1, Column: 16}},
		},
		{
			name:      "string into nullable Char",
			input:     "val c: Char? = \"hello\"\n",
			expect:    []diag.Kind{diag.TypeMismatch},
			expectPos: []lex.Position{{Line: 1, Column: 16}},
		},
		{
			name:   "float suffix into Float",
			input:  "val y: Float = 2.5f",
			expect: []diag.Kind{},
		},
		{
			name:   "expression on the same line is not checked",
			input:  "var z: Int = 20 + 1.5",
			expect: []diag.Kind{},
		},
		{
			name:   "inferred type takes anything",
			input:  "var q = 1\nq = \"text\"\n",
			expect: []diag.Kind{},
		},
		{
			name:      "reassigned with wrong type",
			input:     "var x: Int\nx = 2.5\n",
			expect:    []diag.Kind{diag.TypeMismatch},
			expectPos: []lex.Position{{Line: 2, Column: 5}},
		},
		{
			name:      "assigned before declaration",
			input:     "undeclaredVar = 10\nvar undeclaredVar: Int",
			expect:    []diag.Kind{diag.UseBeforeDeclaration},
			expectPos: []lex.Position{{Line: 1, Column: 1}},
		},
		{
			name:   "function parameter is not a declaration",
			input:  "fun f(n: Int) { n = 2 }",
			expect: []diag.Kind{diag.UseBeforeDeclaration},
			expectDecls: map[string]Declaration{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			tr, flags := trackWith(tc.input, token.BuiltinTables(token.Kotlin))

			assert.Equal(tc.expect, kindsOf(flags))
			for i := range tc.expectPos {
				if i < len(flags) {
					assert.Equal(tc.expectPos[i], flags[i].Position)
				}
			}
			if tc.expectDecls != nil {
				assert.Equal(tc.expectDecls, tr.Declarations())
			}
		})
	}
}

func Test_Tracker_Declarations(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		expect map[string]Declaration
	}{
		{
			name:   "nothing declared",
			input:  "x = y + 1;",
			expect: map[string]Declaration{},
		},
		{
			name:  "simple declaration",
			input: "int x;",
			expect: map[string]Declaration{
				"x": {Identifier: "x", Type: token.Int, Position: lex.Position{Line: 1, Column: 5}},
			},
		},
		{
			name:  "multiple declarators share type",
			input: "double a = 1.0, b;",
			expect: map[string]Declaration{
				"a": {Identifier: "a", Type: token.Float, Position: lex.Position{Line: 1, Column: 8}},
				"b": {Identifier: "b", Type: token.Float, Position: lex.Position{Line: 1, Column: 17}},
			},
		},
		{
			name:  "first declaration wins",
			input: "int x;\nString x;",
			expect: map[string]Declaration{
				"x": {Identifier: "x", Type: token.Int, Position: lex.Position{Line: 1, Column: 5}},
			},
		},
		{
			name:  "parameters and loop variables",
			input: "void f(char c, String s) { for (long i = 0; i < 3; i = i + 1) {} }",
			expect: map[string]Declaration{
				"c": {Identifier: "c", Type: token.Char, Position: lex.Position{Line: 1, Column: 13}},
				"s": {Identifier: "s", Type: token.StringLike, Position: lex.Position{Line: 1, Column: 23}},
				"i": {Identifier: "i", Type: token.Int, Position: lex.Position{Line: 1, Column: 38}},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			tr, _ := track(tc.input)

			assert.Equal(tc.expect, tr.Declarations())
		})
	}
}

func Test_Tracker_Flags(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		expect    []diag.Kind
		expectPos []lex.Position
	}{
		{
			name:   "assignment after declaration",
			input:  "int preDecl;\npreDecl=5;",
			expect: []diag.Kind{},
		},
		{
			name:      "assignment before declaration",
			input:     "preDecl=99;\nint preDecl;",
			expect:    []diag.Kind{diag.UseBeforeDeclaration},
			expectPos: []lex.Position{{Line: 1, Column: 1}},
		},
		{
			name:      "assignment to misspelled declaration",
			input:     "inti wrong1 = 5;",
			expect:    []diag.Kind{diag.UseBeforeDeclaration},
			expectPos: []lex.Position{{Line: 1, Column: 6}},
		},
		{
			name:      "float assigned to declared int",
			input:     "int x;\nx = 3.14;",
			expect:    []diag.Kind{diag.TypeMismatch},
			expectPos: []lex.Position{{Line: 2, Column: 5}},
		},
		{
			name:   "int assigned to declared int",
			input:  "int x;\nx = 4;",
			expect: []diag.Kind{},
		},
		{
			name:   "expression assigned to declared int",
			input:  "int x;\nx = x + 1.5;",
			expect: []diag.Kind{},
		},
		{
			name:      "string assigned to declared char in for header",
			input:     "char c;\nfor (c = \"a\"; c < 'z';) {}",
			expect:    []diag.Kind{diag.TypeMismatch},
			expectPos: []lex.Position{{Line: 2, Column: 10}},
		},
		{
			name:   "equality is not assignment",
			input:  "if (x == 1) {}",
			expect: []diag.Kind{},
		},
		{
			name:      "float into int",
			input:     "int badInt1 = 3.14;",
			expect:    []diag.Kind{diag.TypeMismatch},
			expectPos: []lex.Position{{Line: 1, Column: 15}},
		},
		{
			name:      "string into char",
			input:     `char badChar1 = "wrong";`,
			expect:    []diag.Kind{diag.TypeMismatch},
			expectPos: []lex.Position{{Line: 1, Column: 17}},
		},
		{
			name:   "float into float",
			input:  "float temp = 21.9;",
			expect: []diag.Kind{},
		},
		{
			name:   "int widens into double",
			input:  "double d = 4;",
			expect: []diag.Kind{},
		},
		{
			name:   "negative int",
			input:  "int n = -4;",
			expect: []diag.Kind{},
		},
		{
			name:      "negative float into int",
			input:     "int n = -4.5;",
			expect:    []diag.Kind{diag.TypeMismatch},
			expectPos: []lex.Position{{Line: 1, Column: 10}},
		},
		{
			name:   "expression initializer is not checked",
			input:  "int n = 4.5 * 2;",
			expect: []diag.Kind{},
		},
		{
			name:   "identifier initializer is not checked",
			input:  "int n = other;",
			expect: []diag.Kind{},
		},
		{
			name:      "initializer at end of input",
			input:     "String s = 'c'",
			expect:    []diag.Kind{diag.TypeMismatch},
			expectPos: []lex.Position{{Line: 1, Column: 12}},
		},
		{
			name:      "second declarator is checked",
			input:     "int a = 1, b = 'x';",
			expect:    []diag.Kind{diag.TypeMismatch},
			expectPos: []lex.Position{{Line: 1, Column: 16}},
		},
		{
			name:      "initializer closed by paren",
			input:     "for (int i = 0.5) {}",
			expect:    []diag.Kind{diag.TypeMismatch},
			expectPos: []lex.Position{{Line: 1, Column: 14}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			_, flags := track(tc.input)

			assert.Equal(tc.expect, kindsOf(flags))
			for i := range tc.expectPos {
				if i < len(flags) {
					assert.Equal(tc.expectPos[i], flags[i].Position)
				}
			}
		})
	}
}

func Test_Tracker_IgnoresComments(t *testing.T) {
	assert := assert.New(t)

	tr := NewTracker(nil)
	comment := token.Token{Kind: token.Comment, Lexeme: lex.Lexeme{Text: "// x"}}

	assert.Nil(tr.Process(comment))
	assert.Equal(ExpectType, tr.State())
}

func Test_CheckInitializer(t *testing.T) {
	lit := func(kind token.Kind, text string) token.Token {
		return token.Token{Kind: kind, Lexeme: lex.Lexeme{Text: text, Start: lex.Position{Line: 3, Column: 9}}}
	}

	testCases := []struct {
		name       string
		declType   token.PrimitiveType
		init       token.Token
		expectFlag bool
	}{
		{name: "int gets int", declType: token.Int, init: lit(token.IntLiteral, "1")},
		{name: "int gets float", declType: token.Int, init: lit(token.FloatLiteral, "1.5"), expectFlag: true},
		{name: "int gets char", declType: token.Int, init: lit(token.CharLiteral, "'a'"), expectFlag: true},
		{name: "float gets float", declType: token.Float, init: lit(token.FloatLiteral, "1.5")},
		{name: "float gets int", declType: token.Float, init: lit(token.IntLiteral, "1")},
		{name: "float gets string", declType: token.Float, init: lit(token.StringLiteral, `"1"`), expectFlag: true},
		{name: "char gets char", declType: token.Char, init: lit(token.CharLiteral, "'a'")},
		{name: "char gets string", declType: token.Char, init: lit(token.StringLiteral, `"a"`), expectFlag: true},
		{name: "char gets int", declType: token.Char, init: lit(token.IntLiteral, "65"), expectFlag: true},
		{name: "string gets string", declType: token.StringLike, init: lit(token.StringLiteral, `"a"`)},
		{name: "string gets char", declType: token.StringLike, init: lit(token.CharLiteral, "'a'"), expectFlag: true},
		{name: "identifier is not checked", declType: token.Int, init: lit(token.Identifier, "y")},
		{name: "unknown is not checked", declType: token.Int, init: lit(token.Unknown, "12a")},
		{name: "inferred is not checked", declType: token.Inferred, init: lit(token.StringLiteral, `"a"`)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			decl := Declaration{Identifier: "v", Type: tc.declType}

			actual := CheckInitializer(decl, tc.init)

			if !tc.expectFlag {
				assert.Nil(actual)
				return
			}
			if !assert.NotNil(actual) {
				return
			}
			assert.Equal(diag.TypeMismatch, actual.Kind)
			assert.Equal(tc.init.Start, actual.Position)
			assert.Contains(actual.Message, tc.declType.String())
			assert.Contains(actual.Message, tc.init.Text)
		})
	}
}

func Test_ValidateRelational(t *testing.T) {
	testCases := []struct {
		name          string
		input         string
		expectColumns []int
		expectMsg     []string
	}{
		{name: "well placed", input: "if(x<y)", expectColumns: []int{}},
		{name: "parenthesized operands", input: "(a+1) >= (b)", expectColumns: []int{}},
		{name: "value keyword operand", input: "x == null", expectColumns: []int{}},
		{name: "negative right operand", input: "x > -1", expectColumns: []int{}},
		{name: "indexed left operand", input: "a[0] != b", expectColumns: []int{}},
		{name: "comment between operands", input: "x /* c */ < y", expectColumns: []int{}},
		{
			name:          "alone on a line",
			input:         "int x;\n<\nint y;",
			expectColumns: []int{1},
			expectMsg:     []string{"both operands"},
		},
		{
			name:          "split operator",
			input:         "x <> y",
			expectColumns: []int{3, 4},
			expectMsg:     []string{"split", "split"},
		},
		{
			name:          "spaced split operator",
			input:         "x < > y",
			expectColumns: []int{3, 5},
			expectMsg:     []string{"split", "split"},
		},
		{name: "condition split before operator", input: "if (a\n  < b) {}", expectColumns: []int{}},
		{name: "condition split after operator", input: "if (x!=\n y)", expectColumns: []int{}},
		{
			name:          "statement end is not a left operand",
			input:         "x = 1;\n>= y",
			expectColumns: []int{1},
			expectMsg:     []string{"left operand"},
		},
		{
			name:          "next statement is not a right operand",
			input:         "x <\nint y;",
			expectColumns: []int{3},
			expectMsg:     []string{"right operand"},
		},
		{
			name:          "keyword is not an operand",
			input:         "return < 3",
			expectColumns: []int{8},
			expectMsg:     []string{"left operand"},
		},
		{
			// known limitation: angle brackets of type arguments read as operators
			name:          "generic type arguments",
			input:         "List<String> names;",
			expectColumns: []int{5, 12},
			expectMsg:     []string{"right operand", "left operand"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			flags := ValidateRelational(classify(tc.input), nil)

			actualCols := []int{}
			for _, f := range flags {
				assert.Equal(diag.MisplacedRelationalOperator, f.Kind)
				actualCols = append(actualCols, f.Position.Column)
			}
			assert.Equal(tc.expectColumns, actualCols)

			for i := range tc.expectMsg {
				if i < len(flags) {
					assert.Contains(flags[i].Message, tc.expectMsg[i])
				}
			}
		})
	}
}
