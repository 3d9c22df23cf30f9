// Package lcs has the service layer of the lexcheck analysis server. It sits
// between the HTTP API and the datastore and performs the actual logic of
// every request.
package lcs

import (
	"github.com/dekarrin/lexcheck/analysis"
	"github.com/dekarrin/lexcheck/internal/token"
	"github.com/dekarrin/lexcheck/server/dao"
)

// MaxSourceSize is the largest source, in bytes, that will be analyzed.
const MaxSourceSize = 1 << 20

// DefaultAnalysisName is the name given to an analysis created without one.
const DefaultAnalysisName = "untitled"

// Service is the lexcheck service. It has everything needed to run and store
// analyses for the users of the server.
//
// The zero value is not ready to use; DB must be set. Analyzer is used for
// sources in its own language; sources in any other language, or all sources
// when Analyzer is nil, are read with the built-in tables for their language.
type Service struct {
	DB       dao.Store
	Analyzer *analysis.Analyzer
}

func (svc Service) analyzerFor(lang token.Language) *analysis.Analyzer {
	if svc.Analyzer != nil && svc.Analyzer.Tables().Language() == lang {
		return svc.Analyzer
	}
	return analysis.New(token.BuiltinTables(lang))
}
