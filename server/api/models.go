package api

import (
	"time"

	"github.com/dekarrin/lexcheck/analysis"
	"github.com/dekarrin/lexcheck/internal/diag"
	"github.com/dekarrin/lexcheck/server/dao"
)

// note that these are *not* the DAO models; those are distinct and closer to
// the DB format they are in. Rather these are the models that are received from
// and sent to the client.

// SessionModel is what a client gets back when it logs in or refreshes its
// token. Analyses and Flags tally the analyses the user owns.
type SessionModel struct {
	Token    string         `json:"token"`
	UserID   string         `json:"user_id"`
	Role     string         `json:"role"`
	Expires  string         `json:"expires"`
	Analyses int            `json:"analyses"`
	Flags    map[string]int `json:"flags"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type InfoModel struct {
	Version struct {
		Server   string `json:"server"`
		Lexcheck string `json:"lexcheck"`
	} `json:"version"`
}

// AnalysisRequest asks for a source to be analyzed. Language is "java" or
// "kotlin"; if blank, it is taken from the extension of Name.
type AnalysisRequest struct {
	Name     string `json:"name"`
	Language string `json:"language"`
	Source   string `json:"source"`
}

// AnalysisModel is a stored analysis as sent to the client. Report is only
// included when a single analysis is requested.
type AnalysisModel struct {
	URI      string           `json:"uri"`
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Language string           `json:"language"`
	OwnerID  string           `json:"owner_id"`
	Created  string           `json:"created"`
	Counts   map[string]int   `json:"counts"`
	Total    int              `json:"total"`
	Report   *analysis.Report `json:"report,omitempty"`
}

func analysisModel(a dao.Analysis, withReport bool) AnalysisModel {
	m := AnalysisModel{
		URI:      PathPrefix + "/analyses/" + a.ID.String(),
		ID:       a.ID.String(),
		Name:     a.Name,
		Language: a.Report.Language.String(),
		OwnerID:  a.Owner.String(),
		Created:  a.Created.Format(time.RFC3339),
		Counts:   codeCounts(a.Report.Counts()),
		Total:    len(a.Report.Flags),
	}

	if withReport {
		rep := a.Report
		m.Report = &rep
	}

	return m
}

// codeCounts keys counts by error code, E1 through E4. Every code is present.
func codeCounts(counts map[diag.Kind]int) map[string]int {
	byCode := make(map[string]int, len(diag.Kinds))
	for _, k := range diag.Kinds {
		byCode[k.Code()] = counts[k]
	}
	return byCode
}
