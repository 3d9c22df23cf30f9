package api

import (
	"net/http"

	"github.com/dekarrin/lexcheck/internal/version"
	"github.com/dekarrin/lexcheck/server/middle"
	"github.com/dekarrin/lexcheck/server/result"
)

// HTTPGetInfo returns a HandlerFunc that retrieves information on the API and
// server.
func (api API) HTTPGetInfo() http.HandlerFunc {
	return api.handler(api.epGetInfo)
}

func (api API) epGetInfo(req *http.Request) result.Result {
	var resp InfoModel
	resp.Version.Server = version.ServerCurrent
	resp.Version.Lexcheck = version.Current

	userStr := "unauthed client"
	if user, loggedIn := middle.LoggedIn(req); loggedIn {
		userStr = "user '" + user.Username + "'"
	}
	return result.OK(resp).Logf("%s got API info", userStr)
}
