package token

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// PrimitiveType is the declared type of a variable, as far as lexcheck cares
// about it.
type PrimitiveType int

const (
	Int PrimitiveType = iota
	Float
	Char
	StringLike

	// Inferred is the type of a Kotlin variable declared without a type
	// annotation. Nothing is checked against it.
	Inferred
)

func (pt PrimitiveType) String() string {
	switch pt {
	case Int:
		return "int"
	case Float:
		return "float"
	case Char:
		return "char"
	case StringLike:
		return "string"
	case Inferred:
		return "inferred"
	default:
		return fmt.Sprintf("PrimitiveType(%d)", int(pt))
	}
}

// MarshalText gives the name of the type.
func (pt PrimitiveType) MarshalText() ([]byte, error) {
	return []byte(pt.String()), nil
}

// UnmarshalText sets pt to the type named by text.
func (pt *PrimitiveType) UnmarshalText(text []byte) error {
	if strings.EqualFold(string(text), Inferred.String()) {
		*pt = Inferred
		return nil
	}
	parsed, err := ParsePrimitiveType(string(text))
	if err != nil {
		return err
	}
	*pt = parsed
	return nil
}

// ParsePrimitiveType parses one of "int", "float", "char", or "string". Case
// is ignored. Inferred is not a type that a keyword can declare and is never
// returned.
func ParsePrimitiveType(s string) (PrimitiveType, error) {
	switch strings.ToLower(s) {
	case "int":
		return Int, nil
	case "float":
		return Float, nil
	case "char":
		return Char, nil
	case "string":
		return StringLike, nil
	default:
		return 0, fmt.Errorf("not a primitive type: %q", s)
	}
}

// Language is the source language whose declaration syntax is recognized.
type Language int

const (
	// Java declarations are `Type name [= value]`.
	Java Language = iota

	// Kotlin declarations are `var name[: Type[?]] [= value]`, with val in
	// place of var for read-only variables. Statements may end at a line
	// break.
	Kotlin
)

func (lang Language) String() string {
	switch lang {
	case Java:
		return "java"
	case Kotlin:
		return "kotlin"
	default:
		return fmt.Sprintf("Language(%d)", int(lang))
	}
}

// MarshalText gives the name of the language.
func (lang Language) MarshalText() ([]byte, error) {
	return []byte(lang.String()), nil
}

// UnmarshalText sets lang to the language named by text.
func (lang *Language) UnmarshalText(text []byte) error {
	parsed, err := ParseLanguage(string(text))
	if err != nil {
		return err
	}
	*lang = parsed
	return nil
}

// ParseLanguage parses "java" or "kotlin". Case is ignored, and "kt" is taken
// as "kotlin".
func ParseLanguage(s string) (Language, error) {
	switch strings.ToLower(s) {
	case "java":
		return Java, nil
	case "kotlin", "kt":
		return Kotlin, nil
	default:
		return 0, fmt.Errorf("not a supported language: %q", s)
	}
}

// DefaultMinMisspellingLength is the shortest identifier that is compared
// against keywords to look for misspellings.
const DefaultMinMisspellingLength = 3

var (
	defaultKeywords = []string{
		"int", "float", "double", "char", "long", "short", "byte", "void",
		"if", "else", "for", "while", "do", "switch", "case", "default",
		"break", "continue", "return",
		"class", "public", "private", "protected", "static", "final", "new",
		"true", "false", "null",
		"import", "package", "String",
	}

	defaultTypes = map[string]PrimitiveType{
		"int":    Int,
		"long":   Int,
		"short":  Int,
		"byte":   Int,
		"float":  Float,
		"double": Float,
		"char":   Char,
		"String": StringLike,
	}

	defaultValueKeywords = []string{"true", "false", "null"}

	kotlinKeywords = []string{
		"var", "val", "fun", "if", "else", "when", "for", "while", "do", "in", "is",
		"break", "continue", "return",
		"class", "object", "interface", "data", "sealed", "override", "lateinit",
		"private", "public", "internal", "protected",
		"true", "false", "null",
		"package", "import",
		"Int", "Long", "Short", "Byte", "Float", "Double", "Char", "String", "Boolean",
	}

	kotlinTypes = map[string]PrimitiveType{
		"Int":    Int,
		"Long":   Int,
		"Short":  Int,
		"Byte":   Int,
		"Float":  Float,
		"Double": Float,
		"Char":   Char,
		"String": StringLike,
	}

	// keywords that open a Kotlin declaration
	kotlinDeclarators = []string{"var", "val"}

	kotlinSymbolKinds = map[string]Kind{
		"?":  Punctuation,
		"?.": Punctuation,
		"?:": Punctuation,
		"!!": Punctuation,
		"..": Punctuation,
		"->": Punctuation,
		"::": Punctuation,
	}

	symbolKinds = map[string]Kind{
		"<":  RelationalOperator,
		">":  RelationalOperator,
		"<=": RelationalOperator,
		">=": RelationalOperator,
		"==": RelationalOperator,
		"!=": RelationalOperator,
		"=":  AssignOperator,
		"+":  ArithmeticOperator,
		"-":  ArithmeticOperator,
		"*":  ArithmeticOperator,
		"/":  ArithmeticOperator,
		"%":  ArithmeticOperator,
		";":  Punctuation,
		"{":  Punctuation,
		"}":  Punctuation,
		"(":  Punctuation,
		")":  Punctuation,
		",":  Punctuation,
		"[":  Punctuation,
		"]":  Punctuation,
		".":  Punctuation,
		":":  Punctuation,
	}
)

// Tables is the set of lookup tables that drive classification and checking.
// A Tables is never modified after it is created and may be shared between any
// number of concurrent analyses.
type Tables struct {
	lang         Language
	keywords     []string
	keywordSet   map[string]bool
	types        map[string]PrimitiveType
	values       map[string]bool
	declarators  map[string]bool
	symbols      map[string]Kind
	minMisspellL int
}

// DefaultTables returns the built-in Java tables.
func DefaultTables() *Tables {
	return BuiltinTables(Java)
}

// BuiltinTables returns the built-in tables for lang.
func BuiltinTables(lang Language) *Tables {
	var t *Tables
	var err error

	switch lang {
	case Kotlin:
		t, err = NewLanguageTables(Kotlin, kotlinKeywords, kotlinTypes, defaultValueKeywords, DefaultMinMisspellingLength)
	default:
		t, err = NewLanguageTables(Java, defaultKeywords, defaultTypes, defaultValueKeywords, DefaultMinMisspellingLength)
	}
	if err != nil {
		// should never happen
		panic(fmt.Sprintf("built-in %s tables are invalid: %v", lang, err))
	}
	return t
}

// NewTables creates Java Tables from the given keyword list. Keyword order
// matters; when a word is equally close to two keywords, the one listed first
// is the one it is reported as a misspelling of. Every key of types and every
// value keyword must also be in keywords.
func NewTables(keywords []string, types map[string]PrimitiveType, valueKeywords []string, minMisspellingLength int) (*Tables, error) {
	return NewLanguageTables(Java, keywords, types, valueKeywords, minMisspellingLength)
}

// NewLanguageTables is NewTables for the given language. Kotlin tables must
// have at least one of "var" or "val" among the keywords, and they add the
// Kotlin-only symbols such as "?." and ".." to the ones every language has.
func NewLanguageTables(lang Language, keywords []string, types map[string]PrimitiveType, valueKeywords []string, minMisspellingLength int) (*Tables, error) {
	if lang != Java && lang != Kotlin {
		return nil, fmt.Errorf("unsupported language %s", lang)
	}
	if len(keywords) == 0 {
		return nil, fmt.Errorf("keyword list is empty")
	}
	if minMisspellingLength < 1 {
		return nil, fmt.Errorf("minimum misspelling length must be at least 1 but was %d", minMisspellingLength)
	}

	t := &Tables{
		lang:         lang,
		keywordSet:   make(map[string]bool, len(keywords)),
		types:        make(map[string]PrimitiveType, len(types)),
		values:       make(map[string]bool, len(valueKeywords)),
		declarators:  map[string]bool{},
		symbols:      symbolKinds,
		minMisspellL: minMisspellingLength,
	}

	for i, kw := range keywords {
		if kw == "" {
			return nil, fmt.Errorf("keyword %d is empty", i)
		}
		if !isIdentifierText(kw) {
			return nil, fmt.Errorf("keyword %q is not a valid identifier", kw)
		}
		if t.keywordSet[kw] {
			continue
		}
		t.keywordSet[kw] = true
		t.keywords = append(t.keywords, kw)
	}

	for kw, pt := range types {
		if !t.keywordSet[kw] {
			return nil, fmt.Errorf("type keyword %q is not in the keyword list", kw)
		}
		if pt < Int || pt > StringLike {
			return nil, fmt.Errorf("type keyword %q declares %s, which is not a primitive type", kw, pt)
		}
		t.types[kw] = pt
	}

	for _, kw := range valueKeywords {
		if !t.keywordSet[kw] {
			return nil, fmt.Errorf("value keyword %q is not in the keyword list", kw)
		}
		t.values[kw] = true
	}

	if lang == Kotlin {
		for _, kw := range kotlinDeclarators {
			if t.keywordSet[kw] {
				t.declarators[kw] = true
			}
		}
		if len(t.declarators) == 0 {
			return nil, fmt.Errorf("kotlin keyword list has neither %q nor %q", "var", "val")
		}

		t.symbols = make(map[string]Kind, len(symbolKinds)+len(kotlinSymbolKinds))
		for sym, k := range symbolKinds {
			t.symbols[sym] = k
		}
		for sym, k := range kotlinSymbolKinds {
			t.symbols[sym] = k
		}
	}

	return t, nil
}

// Language returns the language whose declarations t describes.
func (t *Tables) Language() Language {
	return t.lang
}

// IsDeclarator returns whether word is a keyword that opens a declaration
// ahead of the declared name, such as Kotlin's "var". Java tables have none.
func (t *Tables) IsDeclarator(word string) bool {
	return t.declarators[word]
}

// IsKeyword returns whether word is exactly a keyword.
func (t *Tables) IsKeyword(word string) bool {
	return t.keywordSet[word]
}

// Keywords returns the keywords in table order.
func (t *Tables) Keywords() []string {
	kws := make([]string, len(t.keywords))
	copy(kws, t.keywords)
	return kws
}

// TypeOf returns the primitive type that the type keyword word declares. If
// word is not a type keyword, ok will be false.
func (t *Tables) TypeOf(word string) (pt PrimitiveType, ok bool) {
	pt, ok = t.types[word]
	return pt, ok
}

// IsValueKeyword returns whether word is a keyword that stands for a value,
// such as "true" or "null".
func (t *Tables) IsValueKeyword(word string) bool {
	return t.values[word]
}

// MinMisspellingLength returns the minimum rune length of an identifier for it
// to be checked as a possible keyword misspelling.
func (t *Tables) MinMisspellingLength() int {
	return t.minMisspellL
}

// SymbolKind returns the Kind of the operator or punctuation spelled by text.
// If text is not a known symbol, ok will be false.
func (t *Tables) SymbolKind(text string) (k Kind, ok bool) {
	k, ok = t.symbols[text]
	return k, ok
}

// Symbols returns every operator and punctuation spelling, suitable for
// passing to lex.New.
func (t *Tables) Symbols() []string {
	syms := make([]string, 0, len(t.symbols))
	for s := range t.symbols {
		syms = append(syms, s)
	}
	sort.Strings(syms)
	return syms
}

func isIdentifierText(s string) bool {
	for i, ch := range s {
		if ch == '_' || isLetter(ch) {
			continue
		}
		if i > 0 && unicode.IsDigit(ch) {
			continue
		}
		return false
	}
	return true
}
