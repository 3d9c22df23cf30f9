package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dekarrin/lexcheck/server/dao"
	"github.com/google/uuid"
)

type AnalysesDB struct {
	db *sql.DB
}

func (repo *AnalysesDB) init() error {
	_, err := repo.db.Exec(`CREATE TABLE IF NOT EXISTS analyses (
		id TEXT NOT NULL PRIMARY KEY,
		name TEXT NOT NULL,
		owner TEXT NOT NULL,
		created INTEGER NOT NULL,
		report TEXT NOT NULL
	);`)
	if err != nil {
		return wrapDBError(err)
	}

	return nil
}

func (repo *AnalysesDB) Create(ctx context.Context, a dao.Analysis) (dao.Analysis, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.Analysis{}, fmt.Errorf("could not generate ID: %w", err)
	}

	stmt, err := repo.db.Prepare(`INSERT INTO analyses (id, name, owner, created, report) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return dao.Analysis{}, wrapDBError(err)
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(
		ctx,
		convertToDB_UUID(newUUID),
		a.Name,
		convertToDB_UUID(a.Owner),
		convertToDB_Time(time.Now()),
		convertToDB_Report(a.Report),
	)
	if err != nil {
		return dao.Analysis{}, wrapDBError(err)
	}

	return repo.GetByID(ctx, newUUID)
}

func (repo *AnalysesDB) GetAll(ctx context.Context) ([]dao.Analysis, error) {
	rows, err := repo.db.QueryContext(ctx, `SELECT id, name, owner, created, report FROM analyses ORDER BY created DESC, id;`)
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	var all []dao.Analysis

	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return all, err
		}
		all = append(all, a)
	}

	if err := rows.Err(); err != nil {
		return all, wrapDBError(err)
	}

	return all, nil
}

func (repo *AnalysesDB) GetByID(ctx context.Context, id uuid.UUID) (dao.Analysis, error) {
	row := repo.db.QueryRowContext(ctx, `SELECT id, name, owner, created, report FROM analyses WHERE id = ?;`, convertToDB_UUID(id))
	return scanAnalysis(row)
}

func (repo *AnalysesDB) Delete(ctx context.Context, id uuid.UUID) (dao.Analysis, error) {
	curVal, err := repo.GetByID(ctx, id)
	if err != nil {
		return curVal, err
	}

	res, err := repo.db.ExecContext(ctx, `DELETE FROM analyses WHERE id = ?`, convertToDB_UUID(id))
	if err != nil {
		return curVal, wrapDBError(err)
	}
	rowsAff, err := res.RowsAffected()
	if err != nil {
		return curVal, wrapDBError(err)
	}
	if rowsAff < 1 {
		return curVal, dao.ErrNotFound
	}

	return curVal, nil
}

// Close does nothing; the connection is shared and closed by the store.
func (repo *AnalysesDB) Close() error {
	return nil
}

func scanAnalysis(row scanner) (dao.Analysis, error) {
	var a dao.Analysis
	var id, owner, report string
	var created int64

	err := row.Scan(&id, &a.Name, &owner, &created, &report)
	if err != nil {
		return dao.Analysis{}, wrapDBError(err)
	}

	if err := convertFromDB_UUID(id, &a.ID); err != nil {
		return dao.Analysis{}, fmt.Errorf("stored UUID %q is invalid: %w", id, err)
	}
	if err := convertFromDB_UUID(owner, &a.Owner); err != nil {
		return dao.Analysis{}, fmt.Errorf("stored owner UUID %q is invalid: %w", owner, err)
	}
	if err := convertFromDB_Time(created, &a.Created); err != nil {
		return dao.Analysis{}, fmt.Errorf("stored created time %d is invalid: %w", created, err)
	}
	if err := convertFromDB_Report(report, &a.Report); err != nil {
		return dao.Analysis{}, fmt.Errorf("stored report is invalid: %w", err)
	}

	return a, nil
}
