// Package result holds the responses that API endpoints give and writes them
// out over HTTP. Every Result carries a log line that is recorded by the
// server but never sent to the client.
package result

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/dekarrin/lexcheck/analysis"
	"github.com/dekarrin/lexcheck/internal/diag"
	"github.com/dekarrin/lexcheck/server/serr"
)

// Headers set on every response that carries an analysis report.
const (
	HeaderLanguage = "X-Lexcheck-Language"
	HeaderFlags    = "X-Lexcheck-Flags"
	HeaderCounts   = "X-Lexcheck-Counts"
)

// ErrorBody is the body of every JSON error response.
type ErrorBody struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// Result is a response to a request. Create one with the functions in this
// package; the zero value is not writable.
type Result struct {
	Status int

	// Failed is whether the result reports an error to the client.
	Failed bool

	// Log is recorded by the server and never shown to the client.
	Log string

	body     interface{}
	plain    bool
	location string
	header   http.Header

	// set by Encode.
	encoded []byte
}

func respond(status int, body interface{}) Result {
	return Result{
		Status: status,
		Log:    strings.ToLower(http.StatusText(status)),
		body:   body,
	}
}

// OK returns an HTTP-200 with body as its JSON.
func OK(body interface{}) Result {
	return respond(http.StatusOK, body)
}

// Created returns an HTTP-201 with body as its JSON.
func Created(body interface{}) Result {
	return respond(http.StatusCreated, body)
}

// NoContent returns an HTTP-204.
func NoContent() Result {
	return respond(http.StatusNoContent, nil)
}

// Analyzed returns a Result with the given status and body whose headers
// summarize rep, so a client can see the outcome of an analysis without
// decoding the body.
func Analyzed(status int, body interface{}, rep analysis.Report) Result {
	counts := rep.Counts()
	perKind := make([]string, len(diag.Kinds))
	for i, k := range diag.Kinds {
		perKind[i] = k.Code() + "=" + strconv.Itoa(counts[k])
	}

	return respond(status, body).
		WithHeader(HeaderLanguage, rep.Language.String()).
		WithHeader(HeaderFlags, strconv.Itoa(len(rep.Flags))).
		WithHeader(HeaderCounts, strings.Join(perKind, ","))
}

var userMessages = map[int]string{
	http.StatusBadRequest:          "The request is not valid",
	http.StatusUnauthorized:        "You are not authorized to do that",
	http.StatusForbidden:           "You don't have permission to do that",
	http.StatusNotFound:            "The requested resource was not found",
	http.StatusInternalServerError: "An internal server error occurred",
}

// Error returns a JSON error Result that shows userMsg to the client. If
// userMsg is empty, a generic message for the status is used.
func Error(status int, userMsg string) Result {
	if userMsg == "" {
		userMsg = userMessages[status]
		if userMsg == "" {
			userMsg = http.StatusText(status)
		}
	}

	r := respond(status, ErrorBody{Error: userMsg, Status: status})
	r.Failed = true
	return r
}

// Unauthorized returns an HTTP-401 error with the WWW-Authenticate header set.
func Unauthorized(userMsg string) Result {
	return Error(http.StatusUnauthorized, userMsg).
		WithHeader("WWW-Authenticate", `Bearer realm="lexcheck server", charset="utf-8"`)
}

// MethodNotAllowed returns an HTTP-405 error naming the method and path of req.
func MethodNotAllowed(req *http.Request) Result {
	return Error(http.StatusMethodNotAllowed, fmt.Sprintf("Method %s is not allowed for %s", req.Method, req.URL.Path))
}

// FromError returns the error Result for an error from the analysis service.
// The message of err is logged; it is only shown to the client when it is
// about the request itself.
func FromError(err error) Result {
	var r Result
	switch {
	case errors.Is(err, serr.ErrBadArgument), errors.Is(err, serr.ErrBodyUnmarshal):
		r = Error(http.StatusBadRequest, err.Error())
	case errors.Is(err, serr.ErrBadCredentials):
		r = Unauthorized(serr.ErrBadCredentials.Error())
	case errors.Is(err, serr.ErrPermissions):
		r = Error(http.StatusForbidden, "")
	case errors.Is(err, serr.ErrNotFound):
		r = Error(http.StatusNotFound, "")
	case errors.Is(err, serr.ErrAlreadyExists):
		r = Error(http.StatusConflict, serr.ErrAlreadyExists.Error())
	default:
		r = Error(http.StatusInternalServerError, "")
	}
	return r.Logf("%s", err.Error())
}

// Plain returns a Result written as plain text with no JSON encoding. It is
// for reporting failures of the response machinery itself.
func Plain(status int, text string) Result {
	r := respond(status, text)
	r.plain = true
	r.Failed = status >= 400
	return r
}

// Redirect returns an HTTP-308 to uri.
func Redirect(uri string) Result {
	r := respond(http.StatusPermanentRedirect, nil)
	r.location = uri
	r.Log = "redirect -> " + uri
	return r
}

// Logf returns a copy of r whose log line is the formatted message.
func (r Result) Logf(format string, a ...interface{}) Result {
	r.Log = fmt.Sprintf(format, a...)
	return r
}

// WithHeader returns a copy of r that also sets the given header when
// written. r is not modified.
func (r Result) WithHeader(name, val string) Result {
	hdr := r.header.Clone()
	if hdr == nil {
		hdr = http.Header{}
	}
	hdr.Set(name, val)
	r.header = hdr
	return r
}

// Header returns the value of a header set with WithHeader, or "" if it was
// not set.
func (r Result) Header(name string) string {
	return r.header.Get(name)
}

func (r Result) hasBody() bool {
	return r.Status != http.StatusNoContent && r.location == ""
}

// Encode marshals the body of r so that a later WriteResponse cannot fail.
// Calling it again after it has succeeded has no effect.
func (r *Result) Encode() error {
	if r.encoded != nil || !r.hasBody() {
		return nil
	}

	if r.plain {
		r.encoded = []byte(fmt.Sprintf("%v", r.body))
		return nil
	}

	data, err := json.Marshal(r.body)
	if err != nil {
		return err
	}
	r.encoded = data
	return nil
}

// WriteResponse writes r to w. It panics if r was not created by one of the
// functions in this package or if its body cannot be encoded.
func (r Result) WriteResponse(w http.ResponseWriter) {
	if r.Status == 0 {
		panic("result not populated")
	}

	if err := r.Encode(); err != nil {
		panic(fmt.Sprintf("could not marshal response: %s", err.Error()))
	}

	if r.plain {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	} else {
		w.Header().Set("Content-Type", "application/json")
	}
	w.Header().Set("X-Content-Type-Options", "nosniff")

	if r.location != "" {
		w.Header().Set("Location", r.location)
	}
	for name, vals := range r.header {
		w.Header()[name] = vals
	}

	w.WriteHeader(r.Status)
	if r.hasBody() {
		w.Write(r.encoded)
	}
}
