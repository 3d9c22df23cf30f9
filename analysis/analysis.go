// Package analysis runs the full lexical check over a source text and gathers
// everything that was found into a single Report.
//
// The simplest use is a call to Analyze with the text of a source file:
//
//	r := analysis.Analyze(src)
//	for _, f := range r.Flags {
//		fmt.Println(f)
//	}
//
// Kotlin sources are analyzed with AnalyzeKotlin. To use tables other than the
// built-in ones, create an Analyzer with New.
package analysis

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dekarrin/lexcheck/internal/check"
	"github.com/dekarrin/lexcheck/internal/diag"
	"github.com/dekarrin/lexcheck/internal/lex"
	"github.com/dekarrin/lexcheck/internal/token"
	"github.com/dekarrin/lexcheck/internal/util"
)

// CommentStyle is the form a comment was written in.
type CommentStyle int

const (
	LineComment CommentStyle = iota
	BlockComment
)

func (cs CommentStyle) String() string {
	switch cs {
	case LineComment:
		return "line"
	case BlockComment:
		return "block"
	default:
		return fmt.Sprintf("CommentStyle(%d)", int(cs))
	}
}

// MarshalText gives the name of the style.
func (cs CommentStyle) MarshalText() ([]byte, error) {
	return []byte(cs.String()), nil
}

// UnmarshalText sets cs to the style named by text.
func (cs *CommentStyle) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "line":
		*cs = LineComment
	case "block":
		*cs = BlockComment
	default:
		return fmt.Errorf("not a comment style: %q", string(text))
	}
	return nil
}

// CommentRecord is a comment that was found in the source.
type CommentRecord struct {
	Text  string       `json:"text"`
	Start lex.Position `json:"start"`
	End   lex.Position `json:"end"`
	Style CommentStyle `json:"style"`
}

func commentFrom(tok token.Token) CommentRecord {
	style := LineComment
	if strings.HasPrefix(tok.Text, "/*") {
		style = BlockComment
	}
	return CommentRecord{
		Text:  tok.Text,
		Start: tok.Start,
		End:   tok.End,
		Style: style,
	}
}

// Report is the result of analyzing one source. Tokens holds only code tokens;
// comments are kept apart in Comments. Flags are ordered by position.
type Report struct {
	Language     token.Language               `json:"language"`
	Tokens       []token.Token                `json:"tokens"`
	Declarations map[string]check.Declaration `json:"declarations"`
	Flags        []diag.Flag                  `json:"flags"`
	Comments     []CommentRecord              `json:"comments"`
}

// HasFlags returns whether any problem was found.
func (r Report) HasFlags() bool {
	return len(r.Flags) > 0
}

// Counts returns the number of flags of each kind. Every kind is present in
// the returned map, even those with a count of zero.
func (r Report) Counts() map[diag.Kind]int {
	return diag.Count(r.Flags)
}

// FlagsOf returns only the flags of the given kind.
func (r Report) FlagsOf(kind diag.Kind) []diag.Flag {
	matching := []diag.Flag{}
	for _, f := range r.Flags {
		if f.Kind == kind {
			matching = append(matching, f)
		}
	}
	return matching
}

// DeclarationList returns the declarations in the order they appear in the
// source.
func (r Report) DeclarationList() []check.Declaration {
	decls := make([]check.Declaration, 0, len(r.Declarations))
	for _, name := range util.OrderedKeys(r.Declarations) {
		decls = append(decls, r.Declarations[name])
	}
	return util.SortBy(decls, func(l, r check.Declaration) bool {
		return l.Position.Before(r.Position)
	})
}

// Analyzer runs analyses using one set of tables. An Analyzer holds no state
// between calls to Analyze and may be used from multiple goroutines at once.
type Analyzer struct {
	tables     *token.Tables
	classifier *token.Classifier
}

// New creates an Analyzer that uses the given tables. If tables is nil, the
// built-in tables are used.
func New(tables *token.Tables) *Analyzer {
	if tables == nil {
		tables = token.DefaultTables()
	}
	return &Analyzer{
		tables:     tables,
		classifier: token.NewClassifier(tables),
	}
}

// Tables returns the tables that a analyzes with.
func (a *Analyzer) Tables() *token.Tables {
	return a.tables
}

// Analyze scans and checks src and returns everything that was found. It
// never fails; every problem in src is reported as a flag.
func (a *Analyzer) Analyze(src string) Report {
	r := Report{
		Language: a.tables.Language(),
		Tokens:   []token.Token{},
		Flags:    []diag.Flag{},
		Comments: []CommentRecord{},
	}

	sc := lex.New(src, a.tables.Symbols())
	tracker := check.NewTracker(a.tables)

	for sc.HasNext() {
		tok, misspelled := a.classifier.Classify(sc.Next(), tracker.Declared)
		if misspelled != nil {
			r.Flags = append(r.Flags, *misspelled)
		}

		if tok.Kind == token.Comment {
			r.Comments = append(r.Comments, commentFrom(tok))
			continue
		}

		r.Tokens = append(r.Tokens, tok)
		r.Flags = append(r.Flags, tracker.Process(tok)...)
	}
	r.Flags = append(r.Flags, tracker.Finish()...)
	r.Flags = append(r.Flags, check.ValidateRelational(r.Tokens, a.tables)...)

	diag.Sort(r.Flags)
	r.Declarations = tracker.Declarations()

	return r
}

// Analyze analyzes src using the built-in Java tables.
func Analyze(src string) Report {
	return New(nil).Analyze(src)
}

// AnalyzeKotlin analyzes src using the built-in Kotlin tables.
func AnalyzeKotlin(src string) Report {
	return New(token.BuiltinTables(token.Kotlin)).Analyze(src)
}

// LanguageOf guesses the language of the file at path from its extension.
// Anything that is not a Kotlin file is taken to be Java.
func LanguageOf(path string) token.Language {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".kt", ".kts":
		return token.Kotlin
	default:
		return token.Java
	}
}
