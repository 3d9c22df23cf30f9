package analysis

import (
	"testing"

	"github.com/dekarrin/lexcheck/internal/token"
	"github.com/dekarrin/rezi"
	"github.com/stretchr/testify/assert"
)

func Test_Report_BinaryRoundTrip(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "small program", input: "int a = 'c'; // note\nif (a <) { b = 2; }"},
		{name: "unicode text", input: "String s = \"héllo wörld\"; /* ünïcode */"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			expect := Analyze(tc.input)

			data, err := expect.MarshalBinary()
			if !assert.NoError(err) {
				return
			}

			var actual Report
			err = actual.UnmarshalBinary(data)
			if !assert.NoError(err) {
				return
			}

			assert.Equal(expect, actual)
		})
	}
}

func Test_Report_UnmarshalBinary_Fixture(t *testing.T) {
	assert := assert.New(t)
	expect := Analyze(readFixture(t, "Input.java"))

	var actual Report
	_, err := rezi.DecBinary(rezi.EncBinary(expect), &actual)
	if !assert.NoError(err) {
		return
	}

	assert.Equal(expect, actual)
}

func Test_Report_UnmarshalBinary_KotlinFixture(t *testing.T) {
	assert := assert.New(t)
	expect := AnalyzeKotlin(readFixture(t, "Input.kt"))

	var actual Report
	_, err := rezi.DecBinary(rezi.EncBinary(expect), &actual)
	if !assert.NoError(err) {
		return
	}

	assert.Equal(token.Kotlin, actual.Language)
	assert.Equal(expect, actual)
}

func Test_Report_UnmarshalBinary_Truncated(t *testing.T) {
	assert := assert.New(t)
	full, err := Analyze("int a = 1;").MarshalBinary()
	if !assert.NoError(err) {
		return
	}

	var r Report
	err = r.UnmarshalBinary(full[:len(full)/2])

	assert.Error(err)
}
