package api

import (
	"net/http"
	"time"

	"github.com/dekarrin/lexcheck/server/dao"
	"github.com/dekarrin/lexcheck/server/middle"
	"github.com/dekarrin/lexcheck/server/result"
	"github.com/dekarrin/lexcheck/server/serr"
	"github.com/dekarrin/lexcheck/server/token"
)

// issueSession signs a new token for user and pairs it with a tally of the
// analyses the user has run, so a client can show where the user left off.
func (api API) issueSession(req *http.Request, user dao.User) (SessionModel, error) {
	stats, err := api.Backend.AnalysisStats(req.Context(), user.ID)
	if err != nil {
		return SessionModel{}, err
	}

	expires := time.Now().Add(token.Lifetime)
	tok, err := token.Generate(api.Secret, user)
	if err != nil {
		return SessionModel{}, serr.New("could not generate JWT", err)
	}

	sess := SessionModel{
		Token:    tok,
		UserID:   user.ID.String(),
		Role:     user.Role.String(),
		Expires:  expires.Format(time.RFC3339),
		Analyses: stats.Analyses,
		Flags:    codeCounts(stats.Flags),
	}
	return sess, nil
}

// HTTPCreateLogin returns a HandlerFunc that logs in a user with a username
// and password and gives back a session for them.
func (api API) HTTPCreateLogin() http.HandlerFunc {
	return api.handler(api.epCreateLogin)
}

func (api API) epCreateLogin(req *http.Request) result.Result {
	login, err := decodeJSON[LoginRequest](req)
	if err != nil {
		return result.FromError(err)
	}

	if login.Username == "" {
		return result.Error(http.StatusBadRequest, "username: property is empty or missing from request").Logf("empty username")
	}
	if login.Password == "" {
		return result.Error(http.StatusBadRequest, "password: property is empty or missing from request").Logf("empty password")
	}

	user, err := api.Backend.Login(req.Context(), login.Username, login.Password)
	if err != nil {
		return result.FromError(err).Logf("user '%s': %s", login.Username, err.Error())
	}

	sess, err := api.issueSession(req, user)
	if err != nil {
		return result.FromError(err)
	}
	return result.Created(sess).Logf("user '%s' logged in with %d analyses", user.Username, sess.Analyses)
}

// HTTPCreateToken returns a HandlerFunc that gives a fresh session to the
// user the client is already logged in as.
func (api API) HTTPCreateToken() http.HandlerFunc {
	return api.handler(api.epCreateToken)
}

func (api API) epCreateToken(req *http.Request) result.Result {
	user, loggedIn := middle.LoggedIn(req)
	if !loggedIn {
		return result.Error(http.StatusInternalServerError, "").Logf("token requested without a logged-in user in context")
	}

	sess, err := api.issueSession(req, user)
	if err != nil {
		return result.FromError(err)
	}
	return result.Created(sess).Logf("user '%s' refreshed their token", user.Username)
}

// HTTPDeleteLogin returns a HandlerFunc that logs a user out, invalidating
// every token issued to them. Only admins may log out users other than
// themselves.
func (api API) HTTPDeleteLogin() http.HandlerFunc {
	return api.handler(api.epDeleteLogin)
}

func (api API) epDeleteLogin(req *http.Request) result.Result {
	id := pathID(req)
	user, _ := middle.LoggedIn(req)

	if id != user.ID && user.Role != dao.Admin {
		return result.Error(http.StatusForbidden, "").
			Logf("user '%s' (role %s) logout of user %s: forbidden", user.Username, user.Role, id)
	}

	out, err := api.Backend.Logout(req.Context(), id)
	if err != nil {
		return result.FromError(err)
	}

	who := "self"
	if id != user.ID {
		who = "user '" + out.Username + "'"
	}
	return result.NoContent().Logf("user '%s' logged out %s", user.Username, who)
}
