// Package server has the HTTP REST server that runs lexcheck analyses for
// remote clients and stores their results.
//
// Routes, all under /api/v1:
//
//	POST   /login           - accepts user and password and returns a session: a jwt and the user's analysis tally.
//	DELETE /login/{id}      - ends user authentication session, invalidating the jwt.
//	POST   /tokens          - gives a fresh session without requiring credentials (requires auth)
//	POST   /analyses        - analyzes a java or kotlin source and stores the result (requires auth)
//	GET    /analyses        - summaries of every stored analysis
//	GET    /analyses/{id}   - a single stored analysis with its full report
//	DELETE /analyses/{id}   - deletes an analysis (requires auth, owner or admin only)
//	GET    /info            - version info on the server and analyzer
//
// Responses that carry a report also summarize it in the X-Lexcheck-Language,
// X-Lexcheck-Flags, and X-Lexcheck-Counts headers.
package server

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log"
	"net/http"

	"github.com/dekarrin/lexcheck/server/api"
	"github.com/dekarrin/lexcheck/server/dao"
	"github.com/dekarrin/lexcheck/server/lcs"
	"github.com/go-chi/chi/v5"
)

// DefaultAdminUsername is the user created when the server starts with no
// users at all.
const DefaultAdminUsername = "admin"

// Server is an HTTP REST server that runs analyses and stores them. The
// zero-value of a Server should not be used directly; call New() to get one
// ready for use.
type Server struct {
	router chi.Router
	db     dao.Store
	api    api.API
}

// New creates a new Server from cfg. Every account in cfg is made sure to
// exist; if afterwards there are no users at all, an admin user with a random
// password is created and its password is logged.
func New(cfg Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	st := cfg.Store
	if st == (Store{}) {
		st = Store{Engine: EngineInMemory}
	}
	db, err := st.Open()
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", st, err)
	}

	s := &Server{
		db: db,
		api: api.API{
			Backend: lcs.Service{
				DB:       db,
				Analyzer: cfg.Analyzer,
			},
			UnauthDelay: cfg.UnauthDelay,
			Secret:      cfg.Secret,
		},
	}

	if err := s.seedAccounts(context.Background(), cfg.Accounts); err != nil {
		db.Close()
		return nil, err
	}

	s.router = newRouter(s.api)
	return s, nil
}

func (s *Server) seedAccounts(ctx context.Context, accounts []Account) error {
	svc := s.api.Backend

	for _, acc := range accounts {
		if _, err := svc.EnsureUser(ctx, acc.Username, acc.PasswordHash, acc.Role); err != nil {
			return fmt.Errorf("account %q: %w", acc.Username, err)
		}
	}

	users, err := svc.DB.Users().GetAll(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}
	if len(users) > 0 {
		return nil
	}

	pass, err := randomPassword()
	if err != nil {
		return fmt.Errorf("generate admin password: %w", err)
	}
	if _, err := svc.CreateUser(ctx, DefaultAdminUsername, pass, dao.Admin); err != nil {
		return fmt.Errorf("create default admin: %w", err)
	}
	log.Printf("WARN  No accounts are configured; created user %q with password %q", DefaultAdminUsername, pass)

	return nil
}

// Handler returns the handler that serves every route of the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ServeForever begins listening on the given address for HTTP REST client
// requests. It only returns if the server stops because of an error.
func (s *Server) ServeForever(address string) error {
	log.Printf("INFO  Listening on %s", address)
	return http.ListenAndServe(address, s.router)
}

// Close closes the connection to the DB.
func (s *Server) Close() error {
	return s.db.Close()
}

func randomPassword() (string, error) {
	buf := make([]byte, 18)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// RandomSecret returns a new random token secret of MaxSecretSize bytes.
func RandomSecret() ([]byte, error) {
	secret := make([]byte, MaxSecretSize)
	if _, err := rand.Read(secret); err != nil {
		return nil, err
	}
	return secret, nil
}
