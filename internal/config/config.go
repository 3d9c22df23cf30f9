// Package config loads lexcheck configuration from TOML files. A config file
// can change the tables the analyzer runs with, the default output settings of
// the CLI, and the settings of the analysis server.
package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/dekarrin/lexcheck/internal/token"
)

// Environment variables that override the [server] section.
const (
	EnvListen = "LEXCHECK_LISTEN_ADDRESS"
	EnvSecret = "LEXCHECK_TOKEN_SECRET"
	EnvDB     = "LEXCHECK_DATABASE"
)

// Output formats.
const (
	FormatText   = "text"
	FormatJSON   = "json"
	FormatBinary = "binary"
)

// Config is the complete configuration of lexcheck and lexcheckd.
type Config struct {
	Analyzer Analyzer `toml:"analyzer"`
	Output   Output   `toml:"output"`
	Server   Server   `toml:"server"`
}

// Analyzer holds the lookup tables. Language is "java" or "kotlin" and picks
// the built-in tables and the declaration syntax; blank means java. Any other
// field left unset takes the built-in value for the language; types and value
// keywords that are not in a custom keyword list are dropped from the built-in
// sets instead of being an error.
type Analyzer struct {
	Language             string            `toml:"language"`
	Keywords             []string          `toml:"keywords"`
	ValueKeywords        []string          `toml:"value_keywords"`
	MinMisspellingLength int               `toml:"min_misspelling_length"`
	Types                map[string]string `toml:"types"`
}

// Output holds the default report settings of the CLI.
type Output struct {
	Format string `toml:"format"`
	Width  int    `toml:"width"`
}

// Server holds the settings of the analysis server.
type Server struct {
	Listen            string    `toml:"listen"`
	Secret            string    `toml:"secret"`
	DB                string    `toml:"db"`
	UnauthDelayMillis int       `toml:"unauth_delay_ms"`
	Accounts          []Account `toml:"accounts"`
}

// Account is a user allowed to log in to the analysis server. PasswordHash is
// a bcrypt hash, base64 encoded. Role is "normal" or "admin"; blank means
// normal.
type Account struct {
	Username     string `toml:"username"`
	PasswordHash string `toml:"password_hash"`
	Role         string `toml:"role"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Analyzer: Analyzer{
			MinMisspellingLength: token.DefaultMinMisspellingLength,
		},
		Output: Output{
			Format: FormatText,
			Width:  80,
		},
		Server: Server{
			Listen:            "localhost:8080",
			DB:                "inmem",
			UnauthDelayMillis: 1000,
		},
	}
}

// Load reads the TOML config file at path. Values not given in the file keep
// their values from Default. The result is validated before it is returned.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a config from TOML data. Values not given keep their values
// from Default.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Config{}, err
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return Config{}, fmt.Errorf("unknown key %q", undec[0].String())
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides server settings with any of the LEXCHECK_* environment
// variables that are set to a non-empty value.
func (cfg *Config) ApplyEnv() {
	if v := os.Getenv(EnvListen); v != "" {
		cfg.Server.Listen = v
	}
	if v := os.Getenv(EnvSecret); v != "" {
		cfg.Server.Secret = v
	}
	if v := os.Getenv(EnvDB); v != "" {
		cfg.Server.DB = v
	}
}

// Validate returns an error naming the first key that holds an invalid value.
func (cfg Config) Validate() error {
	if _, err := cfg.Tables(); err != nil {
		return err
	}

	switch strings.ToLower(cfg.Output.Format) {
	case FormatText, FormatJSON, FormatBinary:
	default:
		return fmt.Errorf("output.format: must be one of %q, %q, or %q but was %q", FormatText, FormatJSON, FormatBinary, cfg.Output.Format)
	}
	if cfg.Output.Width < 0 {
		return fmt.Errorf("output.width: must not be negative")
	}

	if cfg.Server.UnauthDelayMillis < 0 {
		return fmt.Errorf("server.unauth_delay_ms: must not be negative")
	}
	seen := map[string]bool{}
	for i, acc := range cfg.Server.Accounts {
		if acc.Username == "" {
			return fmt.Errorf("server.accounts[%d].username: must not be blank", i)
		}
		if seen[acc.Username] {
			return fmt.Errorf("server.accounts[%d].username: duplicate account %q", i, acc.Username)
		}
		seen[acc.Username] = true
		if _, err := base64.StdEncoding.DecodeString(acc.PasswordHash); err != nil || acc.PasswordHash == "" {
			return fmt.Errorf("server.accounts[%d].password_hash: must be a base64-encoded bcrypt hash", i)
		}
		switch strings.ToLower(acc.Role) {
		case "", "normal", "admin":
		default:
			return fmt.Errorf("server.accounts[%d].role: must be one of \"normal\" or \"admin\" but was %q", i, acc.Role)
		}
	}

	return nil
}

// Language returns the language named by analyzer.language.
func (cfg Config) Language() (token.Language, error) {
	if cfg.Analyzer.Language == "" {
		return token.Java, nil
	}
	lang, err := token.ParseLanguage(cfg.Analyzer.Language)
	if err != nil {
		return 0, fmt.Errorf("analyzer.language: %w", err)
	}
	return lang, nil
}

// Tables builds the analyzer tables described by cfg.
func (cfg Config) Tables() (*token.Tables, error) {
	a := cfg.Analyzer
	lang, err := cfg.Language()
	if err != nil {
		return nil, err
	}
	def := token.BuiltinTables(lang)

	if a.Keywords == nil && a.Types == nil && a.ValueKeywords == nil && (a.MinMisspellingLength == 0 || a.MinMisspellingLength == def.MinMisspellingLength()) {
		return def, nil
	}

	keywords := a.Keywords
	if keywords == nil {
		keywords = def.Keywords()
	}
	for i, kw := range keywords {
		if kw == "" {
			return nil, fmt.Errorf("analyzer.keywords[%d]: must not be blank", i)
		}
	}
	inList := map[string]bool{}
	for _, kw := range keywords {
		inList[kw] = true
	}

	types := map[string]token.PrimitiveType{}
	if a.Types == nil {
		for _, kw := range keywords {
			if pt, ok := def.TypeOf(kw); ok {
				types[kw] = pt
			}
		}
	} else {
		for kw, name := range a.Types {
			pt, err := token.ParsePrimitiveType(name)
			if err != nil {
				return nil, fmt.Errorf("analyzer.types.%s: %w", kw, err)
			}
			if !inList[kw] {
				return nil, fmt.Errorf("analyzer.types.%s: not in analyzer.keywords", kw)
			}
			types[kw] = pt
		}
	}

	var values []string
	if a.ValueKeywords == nil {
		for _, kw := range keywords {
			if def.IsValueKeyword(kw) {
				values = append(values, kw)
			}
		}
	} else {
		for i, kw := range a.ValueKeywords {
			if !inList[kw] {
				return nil, fmt.Errorf("analyzer.value_keywords[%d]: %q is not in analyzer.keywords", i, kw)
			}
		}
		values = a.ValueKeywords
	}

	minLen := a.MinMisspellingLength
	if minLen == 0 {
		minLen = token.DefaultMinMisspellingLength
	}
	if minLen < 0 {
		return nil, fmt.Errorf("analyzer.min_misspelling_length: must be at least 1")
	}

	t, err := token.NewLanguageTables(lang, keywords, types, values, minLen)
	if err != nil {
		return nil, fmt.Errorf("analyzer: %w", err)
	}
	return t, nil
}
