package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dekarrin/lexcheck/analysis"
	"github.com/dekarrin/lexcheck/internal/config"
	"github.com/dekarrin/lexcheck/internal/token"
	"github.com/stretchr/testify/assert"
)

func Test_analyzeFiles_KeepsOrder(t *testing.T) {
	assert := assert.New(t)
	dir := t.TempDir()

	sources := []string{"int a = 1;", "inti b;", "x < ;", "// only a comment"}
	var files []string
	for i, src := range sources {
		path := filepath.Join(dir, string(rune('a'+i))+".c")
		if !assert.NoError(os.WriteFile(path, []byte(src), 0644)) {
			return
		}
		files = append(files, path)
	}

	reports, err := analyzeFiles(always(analysis.New(nil)), files, 2)
	if !assert.NoError(err) {
		return
	}

	if assert.Len(reports, len(sources)) {
		for i := range sources {
			assert.Equal(files[i], reports[i].File)
			assert.Equal(analysis.Analyze(sources[i]), reports[i].Report)
		}
	}
}

func Test_analyzeFiles_ByExtension(t *testing.T) {
	assert := assert.New(t)
	dir := t.TempDir()

	src := "var x: Int = 2.5\nint y = 2.5;\n"
	ktFile := filepath.Join(dir, "Main.kt")
	javaFile := filepath.Join(dir, "Main.java")
	for _, path := range []string{ktFile, javaFile} {
		if !assert.NoError(os.WriteFile(path, []byte(src), 0644)) {
			return
		}
	}

	pick := byExtension(analysis.New(nil), analysis.New(token.BuiltinTables(token.Kotlin)))
	reports, err := analyzeFiles(pick, []string{ktFile, javaFile}, 2)
	if !assert.NoError(err) || !assert.Len(reports, 2) {
		return
	}

	assert.Equal(token.Kotlin, reports[0].Report.Language)
	assert.Equal(analysis.AnalyzeKotlin(src), reports[0].Report)
	assert.Equal(token.Java, reports[1].Report.Language)
	assert.Equal(analysis.Analyze(src), reports[1].Report)
}

func Test_runInteractive_UsesGivenTables(t *testing.T) {
	testCases := []struct {
		name   string
		tables *token.Tables
		expect string
	}{
		{name: "java", tables: token.DefaultTables(), expect: "Files are analyzed as java."},
		{name: "kotlin", tables: token.BuiltinTables(token.Kotlin), expect: "Files are analyzed as kotlin."},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			var out bytes.Buffer

			code := runInteractive(strings.NewReader("LANG\nQUIT\n"), &out, tc.tables, 80, true)

			assert.Equal(ExitSuccess, code)
			assert.Contains(out.String(), tc.expect)
		})
	}
}

func Test_analyzeFiles_MissingFile(t *testing.T) {
	assert := assert.New(t)

	_, err := analyzeFiles(always(analysis.New(nil)), []string{filepath.Join(t.TempDir(), "nope.c")}, 1)

	assert.Error(err)
}

func Test_writeReports(t *testing.T) {
	one := []fileReport{{File: "a.c", Report: analysis.Analyze("int a = 'c';")}}
	two := append([]fileReport{}, one[0], fileReport{File: "b.c", Report: analysis.Analyze("x <")})

	t.Run("text single", func(t *testing.T) {
		assert := assert.New(t)
		var buf bytes.Buffer

		err := writeReports(&buf, one, config.FormatText, 80)

		assert.NoError(err)
		assert.NotContains(buf.String(), "==>")
		assert.Contains(buf.String(), "SYMBOL TABLE")
	})

	t.Run("text multiple", func(t *testing.T) {
		assert := assert.New(t)
		var buf bytes.Buffer

		err := writeReports(&buf, two, config.FormatText, 80)

		assert.NoError(err)
		out := buf.String()
		assert.Less(strings.Index(out, "==> a.c <=="), strings.Index(out, "==> b.c <=="))
		assert.Equal(2, strings.Count(out, "Summary:"))
	})

	t.Run("json single", func(t *testing.T) {
		assert := assert.New(t)
		var buf bytes.Buffer

		err := writeReports(&buf, one, config.FormatJSON, 0)
		if !assert.NoError(err) {
			return
		}

		var decoded map[string]interface{}
		assert.NoError(json.Unmarshal(buf.Bytes(), &decoded))
		assert.Contains(decoded, "tokens")
		assert.Contains(decoded, "flags")
	})

	t.Run("json multiple", func(t *testing.T) {
		assert := assert.New(t)
		var buf bytes.Buffer

		err := writeReports(&buf, two, config.FormatJSON, 0)
		if !assert.NoError(err) {
			return
		}

		var decoded []map[string]interface{}
		assert.NoError(json.Unmarshal(buf.Bytes(), &decoded))
		if assert.Len(decoded, 2) {
			assert.Equal("b.c", decoded[1]["file"])
		}
	})

	t.Run("binary", func(t *testing.T) {
		assert := assert.New(t)
		var buf bytes.Buffer

		err := writeReports(&buf, two, config.FormatBinary, 0)
		if !assert.NoError(err) {
			return
		}

		actual, err := readBinaryReports(buf.Bytes())
		assert.NoError(err)
		assert.Equal(two, actual)
	})

	t.Run("unknown format", func(t *testing.T) {
		assert := assert.New(t)

		err := writeReports(&bytes.Buffer{}, one, "xml", 0)

		assert.Error(err)
	})
}
