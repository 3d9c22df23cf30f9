package inmem

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dekarrin/lexcheck/internal/util"
	"github.com/dekarrin/lexcheck/server/dao"
	"github.com/google/uuid"
)

func NewAnalysesRepository() *AnalysesRepository {
	return &AnalysesRepository{
		analyses: make(map[uuid.UUID]dao.Analysis),
	}
}

type AnalysesRepository struct {
	mtx      sync.RWMutex
	analyses map[uuid.UUID]dao.Analysis
}

func (repo *AnalysesRepository) Close() error {
	return nil
}

func (repo *AnalysesRepository) Create(ctx context.Context, a dao.Analysis) (dao.Analysis, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.Analysis{}, fmt.Errorf("could not generate ID: %w", err)
	}

	repo.mtx.Lock()
	defer repo.mtx.Unlock()

	a.ID = newUUID
	a.Created = time.Now()

	repo.analyses[a.ID] = a

	return a, nil
}

func (repo *AnalysesRepository) GetAll(ctx context.Context) ([]dao.Analysis, error) {
	repo.mtx.RLock()
	defer repo.mtx.RUnlock()

	all := make([]dao.Analysis, 0, len(repo.analyses))
	for k := range repo.analyses {
		all = append(all, repo.analyses[k])
	}

	all = util.SortBy(all, func(l, r dao.Analysis) bool {
		if l.Created.Equal(r.Created) {
			return l.ID.String() < r.ID.String()
		}
		return l.Created.After(r.Created)
	})

	return all, nil
}

func (repo *AnalysesRepository) GetByID(ctx context.Context, id uuid.UUID) (dao.Analysis, error) {
	repo.mtx.RLock()
	defer repo.mtx.RUnlock()

	a, ok := repo.analyses[id]
	if !ok {
		return dao.Analysis{}, dao.ErrNotFound
	}

	return a, nil
}

func (repo *AnalysesRepository) Delete(ctx context.Context, id uuid.UUID) (dao.Analysis, error) {
	repo.mtx.Lock()
	defer repo.mtx.Unlock()

	a, ok := repo.analyses[id]
	if !ok {
		return dao.Analysis{}, dao.ErrNotFound
	}

	delete(repo.analyses, id)

	return a, nil
}
