/*
Lexcheck runs a lexical analysis on C-like source files and reports the
misspelled keywords, type mismatches, uses before declaration, and misplaced
relational operators found in them.

Usage:

	lexcheck [flags] FILE...
	lexcheck [flags] -i

For each FILE, a symbol table of every token, a list of every comment, and a
list of every error found are printed, followed by a summary of the count of
each kind of error. Files are analyzed independently of each other and the
reports are printed in the order the files were given in.

The flags are:

	-v, --version
		Give the current version of lexcheck and then exit.

	-c, --config FILE
		Load settings from the given TOML config file. The config file can
		change the keyword tables used by the analyzer and the default output
		format and width.

	-f, --format FORMAT
		Print reports in the given format. FORMAT must be one of "text",
		"json", or "binary". Defaults to "text".

	-w, --width N
		Wrap text reports at N columns. Defaults to 80.

	-l, --language LANG
		Analyze every file as LANG, which must be "java" or "kotlin". If
		neither this flag nor the config file gives a language, files ending
		in .kt or .kts are analyzed as Kotlin and all others as Java.

	-j, --jobs N
		Analyze up to N files at once. Defaults to the number of CPUs.

	-o, --out FILE
		Write reports to FILE instead of stdout.

	-i, --interactive
		Start an interactive session instead of analyzing files given on the
		command line. Type "HELP" in the session for the list of commands.

	-d, --direct
		Force reading directly from the console as opposed to using GNU
		readline based routines in an interactive session, even if launched in
		a tty with stdin and stdout.

The exit code is 0 if no errors were found in any file, 1 if at least one
error was found, 2 if lexcheck could not start, and 3 if a file could not be
read or a report could not be written.
*/
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/dekarrin/lexcheck"
	"github.com/dekarrin/lexcheck/analysis"
	"github.com/dekarrin/lexcheck/internal/config"
	"github.com/dekarrin/lexcheck/internal/token"
	"github.com/dekarrin/lexcheck/internal/version"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
)

const (
	// ExitSuccess indicates that every file was analyzed and no errors were
	// found in any of them.
	ExitSuccess = iota

	// ExitFlagsFound indicates that at least one error was found in at least
	// one of the files.
	ExitFlagsFound

	// ExitInitError indicates that lexcheck could not start due to bad flags
	// or config.
	ExitInitError

	// ExitIOError indicates that a file could not be read or a report could
	// not be written.
	ExitIOError
)

var (
	returnCode      = ExitSuccess
	flagVersion     = pflag.BoolP("version", "v", false, "Give the current version of lexcheck and then exit.")
	flagConfig      = pflag.StringP("config", "c", "", "Load settings from the given TOML config file.")
	flagFormat      = pflag.StringP("format", "f", "", "Print reports as \"text\", \"json\", or \"binary\".")
	flagWidth       = pflag.IntP("width", "w", 0, "Wrap text reports at the given number of columns.")
	flagLanguage    = pflag.StringP("language", "l", "", "Analyze every file as \"java\" or \"kotlin\" instead of going by file extension.")
	flagJobs        = pflag.IntP("jobs", "j", runtime.NumCPU(), "Analyze up to this many files at once.")
	flagOut         = pflag.StringP("out", "o", "", "Write reports to the given file instead of stdout.")
	flagInteractive = pflag.BoolP("interactive", "i", false, "Start an interactive session.")
	flagDirect      = pflag.BoolP("direct", "d", false, "Force reading directly from stdin instead of going through GNU readline.")
)

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			panic(panicErr)
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.Current)
		return
	}

	cfg := config.Default()
	if *flagConfig != "" {
		var err error
		cfg, err = config.Load(*flagConfig)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			returnCode = ExitInitError
			return
		}
	}
	if pflag.Lookup("format").Changed {
		cfg.Output.Format = *flagFormat
	}
	if pflag.Lookup("width").Changed {
		cfg.Output.Width = *flagWidth
	}
	if pflag.Lookup("language").Changed {
		cfg.Analyzer.Language = *flagLanguage
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\nDo -h for help.\n", err.Error())
		returnCode = ExitInitError
		return
	}

	tables, err := cfg.Tables()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}

	args := pflag.Args()

	if *flagInteractive {
		if len(args) > 0 {
			fmt.Fprintf(os.Stderr, "ERROR: files cannot be given with --interactive; use ANALYZE in the session instead\n")
			returnCode = ExitInitError
			return
		}
		returnCode = runInteractive(os.Stdin, os.Stdout, tables, cfg.Output.Width, *flagDirect)
		return
	}

	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "ERROR: no files given\nDo -h for help.\n")
		returnCode = ExitInitError
		return
	}
	if *flagJobs < 1 {
		fmt.Fprintf(os.Stderr, "ERROR: --jobs must be at least 1\n")
		returnCode = ExitInitError
		return
	}

	pick := always(analysis.New(tables))
	if cfg.Analyzer.Language == "" {
		pick = byExtension(analysis.New(tables), analysis.New(token.BuiltinTables(token.Kotlin)))
	}

	reports, err := analyzeFiles(pick, args, *flagJobs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitIOError
		return
	}

	var out io.Writer = os.Stdout
	if *flagOut != "" {
		f, err := os.Create(*flagOut)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			returnCode = ExitIOError
			return
		}
		defer f.Close()
		out = f
	}

	bufOut := bufio.NewWriter(out)
	err = writeReports(bufOut, reports, strings.ToLower(cfg.Output.Format), cfg.Output.Width)
	if err == nil {
		err = bufOut.Flush()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitIOError
		return
	}

	for _, fr := range reports {
		if fr.Report.HasFlags() {
			returnCode = ExitFlagsFound
			break
		}
	}
}

// runInteractive runs an interactive session analyzing with tables until it is
// quit, and returns the exit code to use.
func runInteractive(in io.Reader, out io.Writer, tables *token.Tables, width int, direct bool) int {
	eng, err := lexcheck.New(in, out, tables, width, direct)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		return ExitInitError
	}
	defer eng.Close()

	if err := eng.RunUntilQuit(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		return ExitIOError
	}
	return ExitSuccess
}

// analyzerPicker gives the analyzer that a file is analyzed with.
type analyzerPicker func(file string) *analysis.Analyzer

func always(a *analysis.Analyzer) analyzerPicker {
	return func(string) *analysis.Analyzer {
		return a
	}
}

func byExtension(java, kotlin *analysis.Analyzer) analyzerPicker {
	return func(file string) *analysis.Analyzer {
		if analysis.LanguageOf(file) == token.Kotlin {
			return kotlin
		}
		return java
	}
}

// analyzeFiles reads and analyzes every file, up to jobs at a time. The
// returned reports are in the same order as files.
func analyzeFiles(pick analyzerPicker, files []string, jobs int) ([]fileReport, error) {
	reports := make([]fileReport, len(files))

	var g errgroup.Group
	g.SetLimit(jobs)

	for i := range files {
		i := i
		g.Go(func() error {
			data, err := os.ReadFile(files[i])
			if err != nil {
				return err
			}
			reports[i] = fileReport{
				File:   files[i],
				Report: pick(files[i]).Analyze(string(data)),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}
