// Package api provides HTTP API endpoints for the lexcheck analysis server.
package api

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/dekarrin/lexcheck/server/lcs"
	"github.com/dekarrin/lexcheck/server/middle"
	"github.com/dekarrin/lexcheck/server/result"
	"github.com/dekarrin/lexcheck/server/serr"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const (
	// PathPrefix is the prefix of all paths in the API. Routers should mount
	// a sub-router that routes all requests to the API at this path.
	PathPrefix = "/api/v1"
)

// maxBodySize leaves room for JSON escaping of a maximum-size source.
const maxBodySize = lcs.MaxSourceSize*6 + 4096

// API serves the lexcheck analysis service over HTTP. Assign the result of
// its HTTP* methods as handlers on a router.
//
// For direct programmatic access to the service, see [lcs.Service].
type API struct {
	// Backend runs and stores analyses and checks logins.
	Backend lcs.Service

	// UnauthDelay is how long a request pauses before an HTTP-401, HTTP-403,
	// or HTTP-500 is sent, so that failed logins and attempts on analyses
	// that belong to others are slowed down.
	UnauthDelay time.Duration

	// Secret signs the JWTs given out by the session endpoints.
	Secret []byte
}

// pathID is the UUID in the "id" parameter of the route. The router only
// matches UUIDs there, so pathID panics if it is missing or malformed.
func pathID(req *http.Request) uuid.UUID {
	id, err := uuid.Parse(chi.URLParam(req, "id"))
	if err != nil {
		panic(fmt.Sprintf("route has no valid id parameter: %s", err.Error()))
	}
	return id
}

// decodeJSON reads the JSON body of req into a new T. The returned error
// matches serr.ErrBadArgument if the request is not JSON and
// serr.ErrBodyUnmarshal if the JSON itself is malformed.
func decodeJSON[T any](req *http.Request) (T, error) {
	var v T

	mediaType, _, err := mime.ParseMediaType(req.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return v, serr.New("request content-type is not application/json", serr.ErrBadArgument)
	}

	data, err := io.ReadAll(io.LimitReader(req.Body, maxBodySize))
	if err != nil {
		return v, serr.New("could not read request body", err, serr.ErrBadArgument)
	}

	if err := json.Unmarshal(data, &v); err != nil {
		return v, serr.New("malformed JSON in request", err, serr.ErrBodyUnmarshal)
	}
	return v, nil
}

type endpointFunc func(req *http.Request) result.Result

// delayed reports whether a response with the given status waits out the
// unauthed delay before it is sent.
func delayed(status int) bool {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusInternalServerError:
		return true
	default:
		return false
	}
}

func logResult(req *http.Request, r result.Result) {
	level := "INFO"
	if r.Failed {
		level = "ERROR"
	}
	middle.LogResponse(level, req, r.Status, r.Log)
}

func (api API) handler(ep endpointFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		defer recoverTo500(w, req)

		r := ep(req)
		if r.Status == 0 {
			r = result.Plain(http.StatusInternalServerError, "An internal server error occurred").
				Logf("endpoint result was never populated")
		}

		// encode now so that WriteResponse cannot panic on it
		if err := r.Encode(); err != nil {
			r = result.Error(http.StatusInternalServerError, "").
				Logf("could not marshal JSON response: %s", err.Error())
		}

		logResult(req, r)
		if delayed(r.Status) {
			time.Sleep(api.UnauthDelay)
		}
		r.WriteResponse(w)
	}
}

func recoverTo500(w http.ResponseWriter, req *http.Request) {
	if panicErr := recover(); panicErr != nil {
		r := result.Plain(http.StatusInternalServerError, "An internal server error occurred").
			Logf("panic: %v\nSTACK TRACE: %s", panicErr, string(debug.Stack()))
		logResult(req, r)
		r.WriteResponse(w)
	}
}
