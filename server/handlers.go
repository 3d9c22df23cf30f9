package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/dekarrin/lexcheck/server/api"
	"github.com/dekarrin/lexcheck/server/dao"
	"github.com/dekarrin/lexcheck/server/middle"
	"github.com/dekarrin/lexcheck/server/result"
	"github.com/go-chi/chi/v5"
)

var (
	paramTypePats = map[string]string{
		"uuid": "[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}",
	}
)

// p is a quick parameter in a URI, made very small to ease readability in route
// listings.
func p(nameType string) string {
	var name string
	var pat string

	parts := strings.SplitN(nameType, ":", 2)
	name = parts[0]
	if len(parts) == 2 {
		// we have a type, if it's a name in the paramTypePats map use that else
		// treat it as a normal pattern
		pat = parts[1]

		if translatedPat, ok := paramTypePats[parts[1]]; ok {
			pat = translatedPat
		}
	}

	if pat == "" {
		return "{" + name + "}"
	}
	return "{" + name + ":" + pat + "}"
}

func newRouter(a api.API) chi.Router {
	r := chi.NewRouter()

	r.Mount(api.PathPrefix, newAPIRouter(a))

	return r
}

func newAPIRouter(a api.API) chi.Router {
	r := chi.NewRouter()

	r.Mount("/login", newLoginRouter(a))
	r.Mount("/tokens", newTokensRouter(a))
	r.Mount("/analyses", newAnalysesRouter(a))
	r.Mount("/info", newInfoRouter(a))
	r.HandleFunc("/info/", RedirectNoTrailingSlash)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		r := result.Error(http.StatusNotFound, "")
		middle.LogResponse("ERROR", req, r.Status, r.Log)
		r.WriteResponse(w)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		r := result.MethodNotAllowed(req)
		middle.LogResponse("ERROR", req, r.Status, r.Log)
		time.Sleep(a.UnauthDelay)
		r.WriteResponse(w)
	})

	return r
}

func newLoginRouter(a api.API) chi.Router {
	reqAuth := middle.RequireAuth(a.Backend.DB.Users(), a.Secret, a.UnauthDelay)

	r := chi.NewRouter()

	r.Post("/", a.HTTPCreateLogin())
	r.With(reqAuth).Delete("/"+p("id:uuid"), a.HTTPDeleteLogin())
	r.HandleFunc("/"+p("id:uuid")+"/", RedirectNoTrailingSlash)

	return r
}

func newTokensRouter(a api.API) chi.Router {
	reqAuth := middle.RequireAuth(a.Backend.DB.Users(), a.Secret, a.UnauthDelay)

	r := chi.NewRouter()

	r.With(reqAuth).Post("/", a.HTTPCreateToken())

	return r
}

func newAnalysesRouter(a api.API) chi.Router {
	reqAuth := middle.RequireAuth(a.Backend.DB.Users(), a.Secret, a.UnauthDelay)

	r := chi.NewRouter()

	r.Get("/", a.HTTPGetAllAnalyses())
	r.With(reqAuth).Post("/", a.HTTPCreateAnalysis())

	r.Route("/"+p("id:uuid"), func(r chi.Router) {
		r.Get("/", a.HTTPGetAnalysis())
		r.With(reqAuth).Delete("/", a.HTTPDeleteAnalysis())
	})

	return r
}

func newInfoRouter(a api.API) chi.Router {
	optAuth := middle.OptionalAuth(a.Backend.DB.Users(), a.Secret, a.UnauthDelay, dao.User{})

	r := chi.NewRouter()

	r.With(optAuth).Get("/", a.HTTPGetInfo())

	return r
}

// RedirectNoTrailingSlash is an http.HandlerFunc that redirects to the same URL as the
// request but with no trailing slash.
func RedirectNoTrailingSlash(w http.ResponseWriter, req *http.Request) {
	redirPath := strings.TrimRight(req.URL.Path, "/")
	r := result.Redirect(redirPath)
	middle.LogResponse("INFO", req, r.Status, r.Log)
	r.WriteResponse(w)
}
