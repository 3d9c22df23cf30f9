// Package inmem is a dao.Store that keeps everything in memory. All data is
// lost when the server stops.
package inmem

import (
	"fmt"

	"github.com/dekarrin/lexcheck/server/dao"
)

type store struct {
	users    *UsersRepository
	analyses *AnalysesRepository
}

func NewDatastore() dao.Store {
	return &store{
		users:    NewUsersRepository(),
		analyses: NewAnalysesRepository(),
	}
}

func (s *store) Users() dao.UserRepository {
	return s.users
}

func (s *store) Analyses() dao.AnalysisRepository {
	return s.analyses
}

func (s *store) Close() error {
	var err error

	if usersErr := s.users.Close(); usersErr != nil {
		err = fmt.Errorf("users: %w", usersErr)
	}
	if analysesErr := s.analyses.Close(); analysesErr != nil {
		if err != nil {
			err = fmt.Errorf("%s\nadditionally, analyses: %w", err, analysesErr)
		} else {
			err = fmt.Errorf("analyses: %w", analysesErr)
		}
	}

	return err
}
