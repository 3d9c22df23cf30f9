// Package lexcheck contains a console-driven engine that reads commands and
// runs lexical analyses until the operator quits.
package lexcheck

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dekarrin/lexcheck/analysis"
	"github.com/dekarrin/lexcheck/internal/input"
	"github.com/dekarrin/lexcheck/internal/lcerrors"
	"github.com/dekarrin/lexcheck/internal/token"
	"github.com/dekarrin/rosed"
)

var commandHelp = [][2]string{
	{"ANALYZE FILE", "run a lexical analysis on FILE and keep the result for the other commands"},
	{"LANG [java|kotlin]", "show the language that ANALYZE reads files as, or change it"},
	{"REPORT", "show the full report: symbol table, comments, errors, then the summary"},
	{"TOKENS", "show the symbol table of the last analysis"},
	{"COMMENTS", "show the comments found by the last analysis"},
	{"ERRORS", "show the errors found by the last analysis"},
	{"DECLS", "show the variables declared in the last analyzed file"},
	{"SUMMARY", "show the count of each kind of error in the last analysis"},
	{"HELP", "show this help"},
	{"QUIT", "leave the analyzer"},
}

const prompt = "lexcheck> "

// Engine runs analyses from an interactive shell attached to an input stream
// and an output stream.
type Engine struct {
	analyzers   map[token.Language]*analysis.Analyzer
	lang        token.Language
	in          input.Reader
	out         *bufio.Writer
	width       int
	forceDirect bool
	running     bool

	file   string
	report *analysis.Report
}

// New creates a new engine ready to operate on the given input and output
// streams. It will immediately open a buffered reader on the input stream and a
// buffered writer on the output stream.
//
// If nil is given for the input stream, stdin is used. If nil is given for the
// output stream, stdout is used. If tables is nil the built-in Java tables are
// used. Files are analyzed in the language of tables until a LANG command
// changes it; the other language always uses its built-in tables. Readline is used for input only when both streams are the console and
// forceDirectInput is false.
func New(inputStream io.Reader, outputStream io.Writer, tables *token.Tables, width int, forceDirectInput bool) (*Engine, error) {
	if inputStream == nil {
		inputStream = os.Stdin
	}
	if outputStream == nil {
		outputStream = os.Stdout
	}
	if width < 1 {
		width = analysis.DefaultWidth
	}

	if tables == nil {
		tables = token.DefaultTables()
	}

	eng := &Engine{
		analyzers:   map[token.Language]*analysis.Analyzer{tables.Language(): analysis.New(tables)},
		lang:        tables.Language(),
		out:         bufio.NewWriter(outputStream),
		width:       width,
		forceDirect: forceDirectInput,
	}

	useReadline := !forceDirectInput && inputStream == os.Stdin && outputStream == os.Stdout

	if useReadline {
		var err error
		eng.in, err = input.NewInteractiveReader(prompt)
		if err != nil {
			return nil, fmt.Errorf("initializing interactive-mode input reader: %w", err)
		}
	} else {
		eng.in = input.NewDirectReader(inputStream)
	}

	return eng, nil
}

// Close closes all resources associated with the Engine, including any
// readline-related resources created for interactive mode.
func (eng *Engine) Close() error {
	if eng.running {
		return fmt.Errorf("cannot close a running engine")
	}

	err := eng.in.Close()
	if err != nil {
		return fmt.Errorf("close input reader: %w", err)
	}

	return nil
}

// Report returns the report of the most recent ANALYZE command, or nil if no
// file has been analyzed yet.
func (eng *Engine) Report() *analysis.Report {
	return eng.report
}

// RunUntilQuit reads commands from the input stream and carries them out until
// QUIT is received or the input ends.
func (eng *Engine) RunUntilQuit() error {
	introMsg := "lexcheck interactive analyzer\n"
	if eng.forceDirect {
		introMsg += "(direct input mode)\n"
	}
	introMsg += "=============================\n"
	introMsg += "Type HELP for the list of commands.\n"

	if err := eng.write(introMsg); err != nil {
		return err
	}

	eng.running = true
	defer func() {
		eng.running = false
	}()

	for eng.running {
		line, err := eng.in.ReadLine()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("get command: %w", err)
		}

		verb, arg := parseCommand(line)
		if verb == "QUIT" {
			eng.running = false
			break
		}

		output, err := eng.Execute(verb, arg)
		if err != nil {
			output = rosed.Edit(lcerrors.ConsoleMessage(err)).Wrap(eng.width).String()
		}
		if err := eng.write(output + "\n"); err != nil {
			return err
		}
	}

	return eng.write("Goodbye\n")
}

// Execute carries out a single command and returns the text to show for it.
// verb must already be upper case.
func (eng *Engine) Execute(verb, arg string) (string, error) {
	switch verb {
	case "HELP":
		return rosed.
			Edit("").
			WithOptions(rosed.Options{ParagraphSeparator: "\n"}).
			InsertDefinitionsTable(0, commandHelp, eng.width).
			Insert(0, "Commands:\n").
			String(), nil
	case "ANALYZE":
		return eng.analyze(arg)
	case "LANG":
		return eng.setLanguage(arg)
	}

	if eng.report == nil {
		if isReportCommand(verb) {
			return "", lcerrors.Command("Nothing has been analyzed yet; use ANALYZE FILE first.", "")
		}
		return "", lcerrors.Commandf("I don't know how to %q; type HELP for the list of commands.", verb)
	}

	r := eng.report
	switch verb {
	case "REPORT":
		return "Report for " + eng.file + "\n\n" + r.Render(eng.width), nil
	case "TOKENS":
		return r.TokenTable(eng.width), nil
	case "COMMENTS":
		return r.CommentTable(eng.width), nil
	case "ERRORS":
		return r.ErrorTable(eng.width), nil
	case "DECLS":
		return r.DeclarationTable(eng.width), nil
	case "SUMMARY":
		return r.Summary(), nil
	default:
		return "", lcerrors.Commandf("I don't know how to %q; type HELP for the list of commands.", verb)
	}
}

func (eng *Engine) analyze(path string) (string, error) {
	if path == "" {
		return "", lcerrors.Command("ANALYZE needs the path of the file to analyze.", "")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", lcerrors.WrapCommandf(err, "Could not read %s.", path)
	}

	r := eng.analyzers[eng.lang].Analyze(string(data))
	eng.report = &r
	eng.file = path

	msg := fmt.Sprintf("Analyzed %s as %s: %d tokens, %d comments, %d declarations.\n", path, eng.lang, len(r.Tokens), len(r.Comments), len(r.Declarations))
	return msg + r.Summary(), nil
}

func (eng *Engine) setLanguage(name string) (string, error) {
	if name == "" {
		return fmt.Sprintf("Files are analyzed as %s.", eng.lang), nil
	}

	lang, err := token.ParseLanguage(name)
	if err != nil {
		return "", lcerrors.WrapCommandf(err, "I can only analyze %q or %q, not %q.", "java", "kotlin", name)
	}

	if _, ok := eng.analyzers[lang]; !ok {
		eng.analyzers[lang] = analysis.New(token.BuiltinTables(lang))
	}
	eng.lang = lang

	return fmt.Sprintf("Files will now be analyzed as %s.", lang), nil
}

func (eng *Engine) write(s string) error {
	if _, err := eng.out.WriteString(s); err != nil {
		return fmt.Errorf("could not write output: %w", err)
	}
	if err := eng.out.Flush(); err != nil {
		return fmt.Errorf("could not flush output: %w", err)
	}
	return nil
}

// parseCommand splits a console line into its upper-cased verb and the rest of
// the line.
func parseCommand(line string) (verb, arg string) {
	line = strings.TrimSpace(line)
	verb, arg, _ = strings.Cut(line, " ")
	return strings.ToUpper(verb), strings.TrimSpace(arg)
}

func isReportCommand(verb string) bool {
	switch verb {
	case "REPORT", "TOKENS", "COMMENTS", "ERRORS", "DECLS", "SUMMARY":
		return true
	}
	return false
}
