package lcs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dekarrin/lexcheck/internal/diag"
	"github.com/dekarrin/lexcheck/internal/token"
	"github.com/dekarrin/lexcheck/server/dao"
	"github.com/dekarrin/lexcheck/server/serr"
	"github.com/google/uuid"
)

// CreateAnalysis analyzes source as lang and stores the result as a new
// analysis owned by the given user. If name is blank, DefaultAnalysisName is
// used.
//
// The returned error, if non-nil, will match serr.ErrBadArgument if source is
// too large and serr.ErrDB for any problem with the DB.
func (svc Service) CreateAnalysis(ctx context.Context, owner uuid.UUID, name string, lang token.Language, source string) (dao.Analysis, error) {
	if len(source) > MaxSourceSize {
		msg := fmt.Sprintf("source is larger than the maximum of %d bytes", MaxSourceSize)
		return dao.Analysis{}, serr.New(msg, serr.ErrBadArgument)
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultAnalysisName
	}

	a := dao.Analysis{
		Name:   name,
		Owner:  owner,
		Report: svc.analyzerFor(lang).Analyze(source),
	}

	created, err := svc.DB.Analyses().Create(ctx, a)
	if err != nil {
		return dao.Analysis{}, serr.WrapDB("could not create analysis", err)
	}

	return created, nil
}

// GetAnalysis returns the analysis with the given ID.
//
// The returned error, if non-nil, will match serr.ErrBadArgument if id is not
// a valid UUID, serr.ErrNotFound if there is no such analysis, and serr.ErrDB
// for any other problem with the DB.
func (svc Service) GetAnalysis(ctx context.Context, id string) (dao.Analysis, error) {
	uuidID, err := uuid.Parse(id)
	if err != nil {
		return dao.Analysis{}, serr.New("ID is not valid", serr.ErrBadArgument)
	}

	a, err := svc.DB.Analyses().GetByID(ctx, uuidID)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return dao.Analysis{}, serr.ErrNotFound
		}
		return dao.Analysis{}, serr.WrapDB("could not get analysis", err)
	}

	return a, nil
}

// Stats is a tally of the analyses a user owns.
type Stats struct {
	Analyses int
	Flags    map[diag.Kind]int
}

// AnalysisStats counts the analyses owned by the given user and the flags
// raised across all of them.
func (svc Service) AnalysisStats(ctx context.Context, owner uuid.UUID) (Stats, error) {
	all, err := svc.GetAllAnalyses(ctx)
	if err != nil {
		return Stats{}, err
	}

	st := Stats{Flags: map[diag.Kind]int{}}
	for _, a := range all {
		if a.Owner != owner {
			continue
		}
		st.Analyses++
		for k, n := range a.Report.Counts() {
			st.Flags[k] += n
		}
	}
	return st, nil
}

// GetAllAnalyses returns every stored analysis, most recent first.
func (svc Service) GetAllAnalyses(ctx context.Context) ([]dao.Analysis, error) {
	all, err := svc.DB.Analyses().GetAll(ctx)
	if err != nil {
		return nil, serr.WrapDB("", err)
	}
	return all, nil
}

// DeleteAnalysis deletes the analysis with the given ID on behalf of who. Only
// the owner of an analysis or an admin may delete it. Returns the deleted
// analysis.
//
// The returned error, if non-nil, will match serr.ErrBadArgument if id is not
// a valid UUID, serr.ErrNotFound if there is no such analysis,
// serr.ErrPermissions if who may not delete it, and serr.ErrDB for any other
// problem with the DB.
func (svc Service) DeleteAnalysis(ctx context.Context, who dao.User, id string) (dao.Analysis, error) {
	a, err := svc.GetAnalysis(ctx, id)
	if err != nil {
		return dao.Analysis{}, err
	}

	if a.Owner != who.ID && who.Role != dao.Admin {
		return dao.Analysis{}, serr.ErrPermissions
	}

	deleted, err := svc.DB.Analyses().Delete(ctx, a.ID)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return dao.Analysis{}, serr.ErrNotFound
		}
		return dao.Analysis{}, serr.WrapDB("could not delete analysis", err)
	}

	return deleted, nil
}
