package analysis

import (
	"strings"

	"github.com/dekarrin/lexcheck/internal/diag"
	"github.com/dekarrin/rosed"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultWidth is the width that reports are rendered at when no other width
// is given.
const DefaultWidth = 80

var tableOpts = rosed.Options{
	TableHeaders:             true,
	TableBorders:             true,
	NoTrailingLineSeparators: true,
}

// printer formats the counts in summaries.
var printer = message.NewPrinter(language.English)

// Render returns the full text report for r: the symbol table, then the
// comments, then the errors, then the summary line. width is the maximum
// width of the output; if it is less than 1, DefaultWidth is used.
func (r Report) Render(width int) string {
	var sb strings.Builder

	sb.WriteString("SYMBOL TABLE\n")
	sb.WriteString(r.TokenTable(width))
	sb.WriteString("\n\nCOMMENTS\n")
	sb.WriteString(r.CommentTable(width))
	sb.WriteString("\n\nERRORS\n")
	sb.WriteString(r.ErrorTable(width))
	sb.WriteString("\n\n")
	sb.WriteString(r.Summary())
	sb.WriteString("\n")

	return sb.String()
}

// TokenTable returns a table of every code token in r in the order they
// appear in.
func (r Report) TokenTable(width int) string {
	if len(r.Tokens) == 0 {
		return "(no tokens)"
	}

	data := [][]string{{"Line", "Col", "Lexeme", "Kind"}}
	for _, tok := range r.Tokens {
		data = append(data, []string{
			printer.Sprintf("%d", tok.Start.Line),
			printer.Sprintf("%d", tok.Start.Column),
			cellText(tok.Text),
			tok.Kind.Human(),
		})
	}

	return renderTable(data, width)
}

// CommentTable returns a table of every comment in r.
func (r Report) CommentTable(width int) string {
	if len(r.Comments) == 0 {
		return "(no comments)"
	}

	data := [][]string{{"Start", "End", "Style", "Text"}}
	for _, c := range r.Comments {
		data = append(data, []string{
			c.Start.String(),
			c.End.String(),
			c.Style.String(),
			cellText(c.Text),
		})
	}

	return renderTable(data, width)
}

// ErrorTable returns a table of every flag in r.
func (r Report) ErrorTable(width int) string {
	if len(r.Flags) == 0 {
		return "(no errors)"
	}

	data := [][]string{{"Code", "Error", "At", "Message"}}
	for _, f := range r.Flags {
		data = append(data, []string{
			f.Kind.Code(),
			f.Kind.String(),
			f.Position.String(),
			cellText(f.Message),
		})
	}

	return renderTable(data, width)
}

// DeclarationTable returns a table of the variables declared in r, in source
// order.
func (r Report) DeclarationTable(width int) string {
	decls := r.DeclarationList()
	if len(decls) == 0 {
		return "(no declarations)"
	}

	data := [][]string{{"Identifier", "Type", "At"}}
	for _, d := range decls {
		data = append(data, []string{d.Identifier, d.Type.String(), d.Position.String()})
	}

	return renderTable(data, width)
}

// Summary returns a one-line count of the flags in r by code, followed by the
// total.
func (r Report) Summary() string {
	counts := r.Counts()

	var sb strings.Builder
	sb.WriteString("Summary:")
	for _, k := range diag.Kinds {
		sb.WriteString(printer.Sprintf(" %s=%d", k.Code(), counts[k]))
	}
	sb.WriteString(printer.Sprintf("  Total=%d", len(r.Flags)))

	return sb.String()
}

func renderTable(data [][]string, width int) string {
	if width < 1 {
		width = DefaultWidth
	}
	return rosed.Edit("").InsertTableOpts(0, data, width, tableOpts).String()
}

// cellText makes s safe to place in a single table cell.
func cellText(s string) string {
	s = strings.ReplaceAll(s, "\r", `\r`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	s = strings.ReplaceAll(s, "\t", `\t`)
	return s
}
