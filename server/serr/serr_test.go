package serr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Error_Is(t *testing.T) {
	dbErr := errors.New("disk full")

	testCases := []struct {
		name   string
		err    error
		target error
		expect bool
	}{
		{name: "cause", err: New("bad id", ErrBadArgument), target: ErrBadArgument, expect: true},
		{name: "not a cause", err: New("bad id", ErrBadArgument), target: ErrNotFound, expect: false},
		{name: "wrapped db error", err: WrapDB("", dbErr), target: ErrDB, expect: true},
		{name: "original db error", err: WrapDB("", dbErr), target: dbErr, expect: true},
		{name: "through fmt wrap", err: fmt.Errorf("service: %w", New("", ErrPermissions)), target: ErrPermissions, expect: true},
		{name: "equal Error", err: New("x", ErrDB), target: New("x", ErrDB), expect: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			assert.Equal(tc.expect, errors.Is(tc.err, tc.target))
		})
	}
}

func Test_Error_Error(t *testing.T) {
	testCases := []struct {
		name   string
		err    Error
		expect string
	}{
		{name: "message only", err: New("oops"), expect: "oops"},
		{name: "cause only", err: New("", ErrNotFound), expect: ErrNotFound.Error()},
		{name: "both", err: New("get analysis", ErrNotFound), expect: "get analysis: " + ErrNotFound.Error()},
		{name: "db with message", err: WrapDB("could not save", errors.New("locked")), expect: "could not save: locked"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			assert.Equal(tc.expect, tc.err.Error())
		})
	}
}
