// Package diag holds the Flag type that every check in lexcheck reports its
// findings with. Flags are plain data; nothing that produces one ever stops
// analysis because of it.
package diag

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dekarrin/lexcheck/internal/lex"
)

// Kind is the category of problem that a Flag reports.
type Kind int

const (
	MisspelledKeyword Kind = iota
	TypeMismatch
	UseBeforeDeclaration
	MisplacedRelationalOperator
)

// Kinds is every Kind in the order they are summarized in.
var Kinds = []Kind{TypeMismatch, MisspelledKeyword, UseBeforeDeclaration, MisplacedRelationalOperator}

func (k Kind) String() string {
	switch k {
	case MisspelledKeyword:
		return "MisspelledKeyword"
	case TypeMismatch:
		return "TypeMismatch"
	case UseBeforeDeclaration:
		return "UseBeforeDeclaration"
	case MisplacedRelationalOperator:
		return "MisplacedRelationalOperator"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Code is the short error code shown in reports, E1 through E4.
func (k Kind) Code() string {
	switch k {
	case TypeMismatch:
		return "E1"
	case MisspelledKeyword:
		return "E2"
	case UseBeforeDeclaration:
		return "E3"
	case MisplacedRelationalOperator:
		return "E4"
	default:
		return "E?"
	}
}

// MarshalText gives the name of the Kind.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText sets k to the Kind named by text.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind parses the name of a Kind. Case is ignored.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if strings.EqualFold(s, k.String()) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("not a flag kind: %q", s)
}

// Flag is a single reported problem tied to the place in source it was found
// at.
type Flag struct {
	Kind     Kind         `json:"kind"`
	Position lex.Position `json:"position"`
	Message  string       `json:"message"`
}

// New creates a Flag with a formatted message.
func New(kind Kind, at lex.Position, format string, a ...interface{}) Flag {
	return Flag{
		Kind:     kind,
		Position: at,
		Message:  fmt.Sprintf(format, a...),
	}
}

// String shows the flag as "E2-MisspelledKeyword at 3:5: message".
func (f Flag) String() string {
	return fmt.Sprintf("%s-%s at %s: %s", f.Kind.Code(), f.Kind, f.Position, f.Message)
}

// Sort orders flags by position. Flags at the same position keep the order
// they were given in.
func Sort(flags []Flag) {
	sort.SliceStable(flags, func(i, j int) bool {
		return flags[i].Position.Before(flags[j].Position)
	})
}

// Count returns the number of flags of each kind.
func Count(flags []Flag) map[Kind]int {
	counts := make(map[Kind]int, len(Kinds))
	for _, k := range Kinds {
		counts[k] = 0
	}
	for _, f := range flags {
		counts[f.Kind]++
	}
	return counts
}
