package lcerrors

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_ConsoleMessage(t *testing.T) {
	testCases := []struct {
		name   string
		err    error
		expect string
	}{
		{
			name:   "command error",
			err:    Command("no file is loaded", "engine: report is nil"),
			expect: "no file is loaded",
		},
		{
			name:   "formatted",
			err:    Commandf("unknown command %q", "FOO"),
			expect: `unknown command "FOO"`,
		},
		{
			name:   "wrapped",
			err:    WrapCommandf(fs.ErrNotExist, "could not read %s", "a.c"),
			expect: "could not read a.c",
		},
		{
			name:   "plain error",
			err:    errors.New("plain"),
			expect: "plain",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			assert.Equal(tc.expect, ConsoleMessage(tc.err))
		})
	}
}

func Test_WrapCommandf_Unwraps(t *testing.T) {
	assert := assert.New(t)

	err := WrapCommandf(fs.ErrNotExist, "could not read %s", "a.c")

	assert.True(errors.Is(err, fs.ErrNotExist))
	assert.Contains(err.Error(), "could not read a.c")
}
