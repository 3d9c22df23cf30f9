// Package middle contains middleware for use with the lexcheck server.
package middle

import (
	"context"
	"net/http"
	"time"

	"github.com/dekarrin/lexcheck/server/dao"
	"github.com/dekarrin/lexcheck/server/result"
	"github.com/dekarrin/lexcheck/server/token"
)

// Middleware is a function that takes a handler and returns a new handler which
// wraps the given one and provides some additional functionality.
type Middleware func(next http.Handler) http.Handler

// AuthKey is a key in the context of a request populated by an AuthHandler.
type AuthKey int64

const (
	AuthLoggedIn AuthKey = iota
	AuthUser
)

// AuthHandler is middleware that extracts the bearer token from a request and
// looks up the user it was issued to.
//
// Before the request is passed on, AuthUser is set in its context to the
// logged-in user (or the default user if there is none) and AuthLoggedIn is
// set to whether a valid token was given. If auth is required and no valid
// token was given, an HTTP-401 is written after the unauthed delay and the
// request is not passed on.
type AuthHandler struct {
	db            dao.UserRepository
	secret        []byte
	required      bool
	defaultUser   dao.User
	unauthedDelay time.Duration
	next          http.Handler
}

func (ah *AuthHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	var loggedIn bool
	user := ah.defaultUser

	tok, err := token.Get(req)
	if err == nil {
		var lookupUser dao.User
		lookupUser, err = token.Validate(req.Context(), tok, ah.secret, ah.db)
		if err == nil {
			user = lookupUser
			loggedIn = true
		}
	}

	if err != nil && ah.required {
		r := result.Unauthorized("").Logf("%s", err.Error())
		LogResponse("ERROR", req, r.Status, r.Log)
		time.Sleep(ah.unauthedDelay)
		r.WriteResponse(w)
		return
	}

	ctx := req.Context()
	ctx = context.WithValue(ctx, AuthLoggedIn, loggedIn)
	ctx = context.WithValue(ctx, AuthUser, user)
	req = req.WithContext(ctx)
	ah.next.ServeHTTP(w, req)
}

// RequireAuth returns middleware that rejects requests without a valid token.
func RequireAuth(db dao.UserRepository, secret []byte, unauthDelay time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		return &AuthHandler{
			db:            db,
			secret:        secret,
			unauthedDelay: unauthDelay,
			required:      true,
			next:          next,
		}
	}
}

// OptionalAuth returns middleware that looks up the user of a request if a
// token is given but passes the request on either way. defaultUser is used as
// the AuthUser when there is no valid token.
func OptionalAuth(db dao.UserRepository, secret []byte, unauthDelay time.Duration, defaultUser dao.User) Middleware {
	return func(next http.Handler) http.Handler {
		return &AuthHandler{
			db:            db,
			secret:        secret,
			unauthedDelay: unauthDelay,
			defaultUser:   defaultUser,
			required:      false,
			next:          next,
		}
	}
}

// LoggedIn returns whether the request was made by a logged-in user and the
// user it was made by, as set by an AuthHandler.
func LoggedIn(req *http.Request) (dao.User, bool) {
	loggedIn, _ := req.Context().Value(AuthLoggedIn).(bool)
	user, _ := req.Context().Value(AuthUser).(dao.User)
	return user, loggedIn
}
