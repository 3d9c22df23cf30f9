// Package dao provides data access objects for use in the lexcheck analysis
// server.
package dao

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dekarrin/lexcheck/analysis"
	"github.com/google/uuid"
)

// Store holds all the repositories.
type Store interface {
	Users() UserRepository
	Analyses() AnalysisRepository
	Close() error
}

type UserRepository interface {

	// Create creates a new User. All attributes except for auto-generated
	// fields are taken from the provided User.
	Create(ctx context.Context, user User) (User, error)
	GetAll(ctx context.Context) ([]User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)
	Update(ctx context.Context, id uuid.UUID, user User) (User, error)
	Delete(ctx context.Context, id uuid.UUID) (User, error)
	Close() error
}

type AnalysisRepository interface {

	// Create stores a new Analysis. The ID and Created fields are generated;
	// all other fields are taken from the provided Analysis.
	Create(ctx context.Context, a Analysis) (Analysis, error)

	// GetAll returns every Analysis, most recently created first.
	GetAll(ctx context.Context) ([]Analysis, error)
	GetByID(ctx context.Context, id uuid.UUID) (Analysis, error)
	Delete(ctx context.Context, id uuid.UUID) (Analysis, error)
	Close() error
}

type Role int

const (
	Normal Role = iota

	Admin Role = 100
)

func (r Role) String() string {
	switch r {
	case Normal:
		return "normal"
	case Admin:
		return "admin"
	default:
		return fmt.Sprintf("Role(%d)", r)
	}
}

// ParseRole parses a role name. The empty string is Normal.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(s) {
	case "", "normal":
		return Normal, nil
	case "admin":
		return Admin, nil
	default:
		return Normal, fmt.Errorf("must be one of 'normal' or 'admin'")
	}
}

// User is an account that can log in to the server. Password is the
// base64-encoded bcrypt hash of the user's password.
type User struct {
	ID             uuid.UUID
	Username       string
	Password       string
	Role           Role
	Created        time.Time
	Modified       time.Time
	LastLogoutTime time.Time
	LastLoginTime  time.Time
}

// Analysis is a stored analysis run.
type Analysis struct {
	ID      uuid.UUID
	Name    string
	Owner   uuid.UUID
	Created time.Time
	Report  analysis.Report
}
