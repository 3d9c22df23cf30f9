// Package daotest has tests that every dao.Store implementation must pass.
package daotest

import (
	"context"
	"errors"
	"testing"

	"github.com/dekarrin/lexcheck/analysis"
	"github.com/dekarrin/lexcheck/server/dao"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// RunStoreTests runs the store tests against stores made by newStore. Each
// test gets its own store, which is closed when the test ends.
func RunStoreTests(t *testing.T, newStore func(t *testing.T) dao.Store) {
	t.Run("users", func(t *testing.T) {
		testUsers(t, newStore)
	})
	t.Run("analyses", func(t *testing.T) {
		testAnalyses(t, newStore)
	})
}

func open(t *testing.T, newStore func(t *testing.T) dao.Store) dao.Store {
	st := newStore(t)
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

func testUsers(t *testing.T, newStore func(t *testing.T) dao.Store) {
	ctx := context.Background()

	t.Run("create and get", func(t *testing.T) {
		assert := assert.New(t)
		repo := open(t, newStore).Users()

		created, err := repo.Create(ctx, dao.User{Username: "ana", Password: "aGFzaA==", Role: dao.Admin})
		if !assert.NoError(err) {
			return
		}
		assert.NotEqual(uuid.Nil, created.ID)
		assert.False(created.Created.IsZero())

		byID, err := repo.GetByID(ctx, created.ID)
		assert.NoError(err)
		assert.Equal("ana", byID.Username)
		assert.Equal("aGFzaA==", byID.Password)
		assert.Equal(dao.Admin, byID.Role)

		byName, err := repo.GetByUsername(ctx, "ana")
		assert.NoError(err)
		assert.Equal(created.ID, byName.ID)
	})

	t.Run("duplicate username", func(t *testing.T) {
		assert := assert.New(t)
		repo := open(t, newStore).Users()

		_, err := repo.Create(ctx, dao.User{Username: "ana", Password: "x"})
		assert.NoError(err)
		_, err = repo.Create(ctx, dao.User{Username: "ana", Password: "y"})

		assert.True(errors.Is(err, dao.ErrConstraintViolation))
	})

	t.Run("update", func(t *testing.T) {
		assert := assert.New(t)
		repo := open(t, newStore).Users()

		user, err := repo.Create(ctx, dao.User{Username: "ana", Password: "x"})
		if !assert.NoError(err) {
			return
		}
		user.Password = "y"

		updated, err := repo.Update(ctx, user.ID, user)
		assert.NoError(err)
		assert.Equal("y", updated.Password)

		_, err = repo.Update(ctx, uuid.New(), user)
		assert.True(errors.Is(err, dao.ErrNotFound))
	})

	t.Run("get all and delete", func(t *testing.T) {
		assert := assert.New(t)
		repo := open(t, newStore).Users()

		b, _ := repo.Create(ctx, dao.User{Username: "bo", Password: "x"})
		_, _ = repo.Create(ctx, dao.User{Username: "al", Password: "x"})

		all, err := repo.GetAll(ctx)
		assert.NoError(err)
		if assert.Len(all, 2) {
			assert.Equal("al", all[0].Username)
			assert.Equal("bo", all[1].Username)
		}

		deleted, err := repo.Delete(ctx, b.ID)
		assert.NoError(err)
		assert.Equal("bo", deleted.Username)

		_, err = repo.GetByUsername(ctx, "bo")
		assert.True(errors.Is(err, dao.ErrNotFound))
		_, err = repo.Delete(ctx, b.ID)
		assert.True(errors.Is(err, dao.ErrNotFound))
	})
}

func testAnalyses(t *testing.T, newStore func(t *testing.T) dao.Store) {
	ctx := context.Background()

	t.Run("create and get", func(t *testing.T) {
		assert := assert.New(t)
		repo := open(t, newStore).Analyses()
		owner := uuid.New()
		report := analysis.Analyze("int a = 'c'; // note\nif (a <) { b = 2; }")

		created, err := repo.Create(ctx, dao.Analysis{Name: "prog.c", Owner: owner, Report: report})
		if !assert.NoError(err) {
			return
		}
		assert.NotEqual(uuid.Nil, created.ID)
		assert.False(created.Created.IsZero())

		actual, err := repo.GetByID(ctx, created.ID)
		if !assert.NoError(err) {
			return
		}
		assert.Equal("prog.c", actual.Name)
		assert.Equal(owner, actual.Owner)
		assert.Equal(report, actual.Report)
	})

	t.Run("missing", func(t *testing.T) {
		assert := assert.New(t)
		repo := open(t, newStore).Analyses()

		_, err := repo.GetByID(ctx, uuid.New())
		assert.True(errors.Is(err, dao.ErrNotFound))
		_, err = repo.Delete(ctx, uuid.New())
		assert.True(errors.Is(err, dao.ErrNotFound))
	})

	t.Run("get all and delete", func(t *testing.T) {
		assert := assert.New(t)
		repo := open(t, newStore).Analyses()

		first, _ := repo.Create(ctx, dao.Analysis{Name: "a.c", Report: analysis.Analyze("")})
		second, _ := repo.Create(ctx, dao.Analysis{Name: "b.c", Report: analysis.Analyze("x")})

		all, err := repo.GetAll(ctx)
		assert.NoError(err)
		ids := []uuid.UUID{}
		for _, a := range all {
			ids = append(ids, a.ID)
		}
		assert.ElementsMatch([]uuid.UUID{first.ID, second.ID}, ids)

		_, err = repo.Delete(ctx, first.ID)
		assert.NoError(err)

		all, err = repo.GetAll(ctx)
		assert.NoError(err)
		if assert.Len(all, 1) {
			assert.Equal(second.ID, all[0].ID)
		}
	})
}
