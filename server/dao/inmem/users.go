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

func NewUsersRepository() *UsersRepository {
	return &UsersRepository{
		users:           make(map[uuid.UUID]dao.User),
		byUsernameIndex: make(map[string]uuid.UUID),
	}
}

type UsersRepository struct {
	mtx             sync.RWMutex
	users           map[uuid.UUID]dao.User
	byUsernameIndex map[string]uuid.UUID
}

func (repo *UsersRepository) Close() error {
	return nil
}

func (repo *UsersRepository) Create(ctx context.Context, user dao.User) (dao.User, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.User{}, fmt.Errorf("could not generate ID: %w", err)
	}

	repo.mtx.Lock()
	defer repo.mtx.Unlock()

	if _, ok := repo.byUsernameIndex[user.Username]; ok {
		return dao.User{}, dao.ErrConstraintViolation
	}

	now := time.Now()
	user.ID = newUUID
	user.Created = now
	user.Modified = now
	user.LastLogoutTime = now
	user.LastLoginTime = time.Time{}

	repo.users[user.ID] = user
	repo.byUsernameIndex[user.Username] = user.ID

	return user, nil
}

func (repo *UsersRepository) GetAll(ctx context.Context) ([]dao.User, error) {
	repo.mtx.RLock()
	defer repo.mtx.RUnlock()

	all := make([]dao.User, 0, len(repo.users))
	for k := range repo.users {
		all = append(all, repo.users[k])
	}

	all = util.SortBy(all, func(l, r dao.User) bool {
		return l.Username < r.Username
	})

	return all, nil
}

func (repo *UsersRepository) Update(ctx context.Context, id uuid.UUID, user dao.User) (dao.User, error) {
	repo.mtx.Lock()
	defer repo.mtx.Unlock()

	existing, ok := repo.users[id]
	if !ok {
		return dao.User{}, dao.ErrNotFound
	}

	if user.Username != existing.Username {
		if _, ok := repo.byUsernameIndex[user.Username]; ok {
			return dao.User{}, dao.ErrConstraintViolation
		}
	}
	if user.ID != id {
		if _, ok := repo.users[user.ID]; ok {
			return dao.User{}, dao.ErrConstraintViolation
		}
	}

	user.Created = existing.Created
	user.Modified = time.Now()

	delete(repo.byUsernameIndex, existing.Username)
	delete(repo.users, id)
	repo.users[user.ID] = user
	repo.byUsernameIndex[user.Username] = user.ID

	return user, nil
}

func (repo *UsersRepository) GetByID(ctx context.Context, id uuid.UUID) (dao.User, error) {
	repo.mtx.RLock()
	defer repo.mtx.RUnlock()

	user, ok := repo.users[id]
	if !ok {
		return dao.User{}, dao.ErrNotFound
	}

	return user, nil
}

func (repo *UsersRepository) GetByUsername(ctx context.Context, username string) (dao.User, error) {
	repo.mtx.RLock()
	defer repo.mtx.RUnlock()

	userID, ok := repo.byUsernameIndex[username]
	if !ok {
		return dao.User{}, dao.ErrNotFound
	}

	return repo.users[userID], nil
}

func (repo *UsersRepository) Delete(ctx context.Context, id uuid.UUID) (dao.User, error) {
	repo.mtx.Lock()
	defer repo.mtx.Unlock()

	user, ok := repo.users[id]
	if !ok {
		return dao.User{}, dao.ErrNotFound
	}

	delete(repo.byUsernameIndex, user.Username)
	delete(repo.users, user.ID)

	return user, nil
}
