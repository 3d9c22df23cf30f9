package server

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dekarrin/lexcheck/analysis"
	"github.com/dekarrin/lexcheck/internal/config"
	"github.com/dekarrin/lexcheck/server/dao"
	"github.com/dekarrin/lexcheck/server/dao/inmem"
	"github.com/dekarrin/lexcheck/server/dao/sqlite"
)

const (
	MaxSecretSize = 64
	MinSecretSize = 32
)

// Store engines.
const (
	EngineInMemory = "inmem"
	EngineSQLite   = "sqlite"
)

// Store says where users and analyses are kept. It is written as
// "ENGINE[:DIR]", for instance "inmem" or "sqlite:/var/lib/lexcheck".
type Store struct {
	Engine string

	// Dir is the data directory of a sqlite store.
	Dir string
}

// ParseStore parses a store string. The engine is not case sensitive.
func ParseStore(s string) (Store, error) {
	engine, dir, _ := strings.Cut(s, ":")
	st := Store{
		Engine: strings.ToLower(strings.TrimSpace(engine)),
		Dir:    strings.TrimSpace(dir),
	}
	if err := st.Validate(); err != nil {
		return Store{}, err
	}
	return st, nil
}

// String gives st in the form ParseStore reads.
func (st Store) String() string {
	if st.Dir == "" {
		return st.Engine
	}
	return st.Engine + ":" + st.Dir
}

// Validate returns an error if st names an unknown engine or does not have
// exactly the parameters its engine needs.
func (st Store) Validate() error {
	switch st.Engine {
	case EngineInMemory:
		if st.Dir != "" {
			return fmt.Errorf("in-memory store takes no data directory, got %q", st.Dir)
		}
	case EngineSQLite:
		if st.Dir == "" {
			return fmt.Errorf("sqlite store requires path to data directory after ':'")
		}
	default:
		return fmt.Errorf("store engine not one of %q or %q: %q", EngineInMemory, EngineSQLite, st.Engine)
	}
	return nil
}

// Open connects to the store, creating its data directory if needed.
func (st Store) Open() (dao.Store, error) {
	if err := st.Validate(); err != nil {
		return nil, err
	}

	if st.Engine == EngineInMemory {
		return inmem.NewDatastore(), nil
	}

	if err := os.MkdirAll(st.Dir, 0770); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	db, err := sqlite.NewDatastore(st.Dir)
	if err != nil {
		return nil, fmt.Errorf("initialize sqlite: %w", err)
	}
	return db, nil
}

// Account is a user that is created or updated when the server starts.
type Account struct {
	Username     string
	PasswordHash string
	Role         dao.Role
}

// Config configures a Server.
type Config struct {
	// Secret signs tokens. It must be between MinSecretSize and MaxSecretSize
	// bytes long.
	Secret []byte

	// Store is where users and analyses are kept. The zero value is an
	// in-memory store.
	Store Store

	// UnauthDelay is the pause before an HTTP-401, HTTP-403, or HTTP-500 is
	// sent. Zero sends them at once.
	UnauthDelay time.Duration

	// Accounts are made sure to exist with the given password and role each
	// time the server starts.
	Accounts []Account

	// Analyzer reads sources in its own language. Sources in the other
	// language, or all sources if Analyzer is nil, use the built-in tables.
	Analyzer *analysis.Analyzer
}

// FromConfig creates a Config from a lexcheck config. The analyzer is built
// from the [analyzer] section so that the server flags what the CLI would.
// Secret is left nil when the config has none.
func FromConfig(cfg config.Config) (Config, error) {
	st, err := ParseStore(cfg.Server.DB)
	if err != nil {
		return Config{}, fmt.Errorf("server.db: %w", err)
	}

	tables, err := cfg.Tables()
	if err != nil {
		return Config{}, err
	}

	srvCfg := Config{
		Store:       st,
		UnauthDelay: time.Duration(cfg.Server.UnauthDelayMillis) * time.Millisecond,
		Analyzer:    analysis.New(tables),
	}
	if srvCfg.UnauthDelay < 0 {
		srvCfg.UnauthDelay = 0
	}

	if cfg.Server.Secret != "" {
		srvCfg.Secret, err = FitSecret([]byte(cfg.Server.Secret))
		if err != nil {
			return Config{}, fmt.Errorf("server.secret: %w", err)
		}
	}

	for i, acc := range cfg.Server.Accounts {
		role, err := dao.ParseRole(acc.Role)
		if err != nil {
			return Config{}, fmt.Errorf("server.accounts[%d].role: %w", i, err)
		}
		srvCfg.Accounts = append(srvCfg.Accounts, Account{
			Username:     acc.Username,
			PasswordHash: acc.PasswordHash,
			Role:         role,
		})
	}

	return srvCfg, nil
}

// FitSecret repeats a short secret until it is at least MinSecretSize bytes.
// A secret longer than MaxSecretSize is an error rather than being cut, so
// that a long secret never gives less security than it seems to.
func FitSecret(secret []byte) ([]byte, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("secret is empty")
	}

	fitted := secret
	for len(fitted) < MinSecretSize {
		fitted = append(append([]byte{}, fitted...), fitted...)
	}

	if len(fitted) > MaxSecretSize {
		return nil, fmt.Errorf("secret is %d bytes, but it must be <= %d bytes", len(fitted), MaxSecretSize)
	}
	return fitted, nil
}

// Validate returns an error if the Config has invalid field values set. A
// zero Store is taken as an in-memory one.
func (cfg Config) Validate() error {
	if len(cfg.Secret) < MinSecretSize {
		return fmt.Errorf("token secret: must be at least %d bytes, but is %d", MinSecretSize, len(cfg.Secret))
	}
	if len(cfg.Secret) > MaxSecretSize {
		return fmt.Errorf("token secret: must be no more than %d bytes, but is %d", MaxSecretSize, len(cfg.Secret))
	}
	if cfg.Store != (Store{}) {
		if err := cfg.Store.Validate(); err != nil {
			return fmt.Errorf("store: %w", err)
		}
	}
	for i, acc := range cfg.Accounts {
		if acc.Username == "" {
			return fmt.Errorf("accounts[%d]: username is blank", i)
		}
	}
	return nil
}
