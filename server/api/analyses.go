package api

import (
	"net/http"
	"strings"

	"github.com/dekarrin/lexcheck/analysis"
	"github.com/dekarrin/lexcheck/internal/token"
	"github.com/dekarrin/lexcheck/server/middle"
	"github.com/dekarrin/lexcheck/server/result"
	"github.com/dekarrin/lexcheck/server/serr"
)

// requestLanguage is the language a source in req is read as. An explicit
// language wins; otherwise it is guessed from the extension of the name.
func requestLanguage(req AnalysisRequest) (token.Language, error) {
	if strings.TrimSpace(req.Language) == "" {
		return analysis.LanguageOf(req.Name), nil
	}

	lang, err := token.ParseLanguage(req.Language)
	if err != nil {
		return lang, serr.New("language: "+err.Error(), serr.ErrBadArgument)
	}
	return lang, nil
}

// HTTPCreateAnalysis returns a HandlerFunc that analyzes the source in the
// request and stores the result as an analysis owned by the logged-in user.
func (api API) HTTPCreateAnalysis() http.HandlerFunc {
	return api.handler(api.epCreateAnalysis)
}

func (api API) epCreateAnalysis(req *http.Request) result.Result {
	user, _ := middle.LoggedIn(req)

	createReq, err := decodeJSON[AnalysisRequest](req)
	if err != nil {
		return result.FromError(err)
	}

	lang, err := requestLanguage(createReq)
	if err != nil {
		return result.FromError(err)
	}

	a, err := api.Backend.CreateAnalysis(req.Context(), user.ID, createReq.Name, lang, createReq.Source)
	if err != nil {
		return result.FromError(err)
	}

	resp := analysisModel(a, true)
	return result.Analyzed(http.StatusCreated, resp, a.Report).
		Logf("user '%s' created %s analysis %s with %d flag(s)", user.Username, lang, a.ID, resp.Total)
}

// HTTPGetAllAnalyses returns a HandlerFunc that lists a summary of every
// stored analysis.
func (api API) HTTPGetAllAnalyses() http.HandlerFunc {
	return api.handler(api.epGetAllAnalyses)
}

func (api API) epGetAllAnalyses(req *http.Request) result.Result {
	all, err := api.Backend.GetAllAnalyses(req.Context())
	if err != nil {
		return result.FromError(err)
	}

	resp := make([]AnalysisModel, len(all))
	for i := range all {
		resp[i] = analysisModel(all[i], false)
	}

	return result.OK(resp).Logf("got all analyses (%d)", len(resp))
}

// HTTPGetAnalysis returns a HandlerFunc that gets a single analysis along with
// its full report.
func (api API) HTTPGetAnalysis() http.HandlerFunc {
	return api.handler(api.epGetAnalysis)
}

func (api API) epGetAnalysis(req *http.Request) result.Result {
	id := pathID(req)

	a, err := api.Backend.GetAnalysis(req.Context(), id.String())
	if err != nil {
		return result.FromError(err)
	}

	return result.Analyzed(http.StatusOK, analysisModel(a, true), a.Report).Logf("got analysis %s", a.ID)
}

// HTTPDeleteAnalysis returns a HandlerFunc that deletes an analysis. Only the
// owner of the analysis or an admin may delete it.
func (api API) HTTPDeleteAnalysis() http.HandlerFunc {
	return api.handler(api.epDeleteAnalysis)
}

func (api API) epDeleteAnalysis(req *http.Request) result.Result {
	id := pathID(req)
	user, _ := middle.LoggedIn(req)

	deleted, err := api.Backend.DeleteAnalysis(req.Context(), user, id.String())
	if err != nil {
		r := result.FromError(err)
		if r.Status == http.StatusForbidden {
			r = r.Logf("user '%s' (role %s) delete analysis %s: forbidden", user.Username, user.Role, id)
		}
		return r
	}

	return result.NoContent().Logf("user '%s' deleted analysis %s", user.Username, deleted.ID)
}
