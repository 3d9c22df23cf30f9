package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dekarrin/lexcheck/server/dao"
	"github.com/google/uuid"
)

type UsersDB struct {
	db *sql.DB
}

func (repo *UsersDB) init() error {
	_, err := repo.db.Exec(`CREATE TABLE IF NOT EXISTS users (
		id TEXT NOT NULL PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		role INTEGER NOT NULL,
		created INTEGER NOT NULL,
		modified INTEGER NOT NULL,
		last_logout_time INTEGER NOT NULL,
		last_login_time INTEGER NOT NULL
	);`)
	if err != nil {
		return wrapDBError(err)
	}

	return nil
}

const userColumns = `id, username, password, role, created, modified, last_logout_time, last_login_time`

func (repo *UsersDB) Create(ctx context.Context, user dao.User) (dao.User, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.User{}, fmt.Errorf("could not generate ID: %w", err)
	}

	stmt, err := repo.db.Prepare(`INSERT INTO users (` + userColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return dao.User{}, wrapDBError(err)
	}
	defer stmt.Close()

	now := time.Now()
	_, err = stmt.ExecContext(
		ctx,
		convertToDB_UUID(newUUID),
		user.Username,
		user.Password,
		convertToDB_Role(user.Role),
		convertToDB_Time(now),
		convertToDB_Time(now),
		convertToDB_Time(now),
		convertToDB_Time(time.Time{}),
	)
	if err != nil {
		return dao.User{}, wrapDBError(err)
	}

	return repo.GetByID(ctx, newUUID)
}

func (repo *UsersDB) GetAll(ctx context.Context) ([]dao.User, error) {
	rows, err := repo.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY username;`)
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	var all []dao.User

	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return all, err
		}
		all = append(all, user)
	}

	if err := rows.Err(); err != nil {
		return all, wrapDBError(err)
	}

	return all, nil
}

func (repo *UsersDB) Update(ctx context.Context, id uuid.UUID, user dao.User) (dao.User, error) {
	// created is never updated
	res, err := repo.db.ExecContext(ctx, `UPDATE users SET id=?, username=?, password=?, role=?, last_logout_time=?, last_login_time=?, modified=? WHERE id=?;`,
		convertToDB_UUID(user.ID),
		user.Username,
		user.Password,
		convertToDB_Role(user.Role),
		convertToDB_Time(user.LastLogoutTime),
		convertToDB_Time(user.LastLoginTime),
		convertToDB_Time(time.Now()),
		convertToDB_UUID(id),
	)
	if err != nil {
		return dao.User{}, wrapDBError(err)
	}
	rowsAff, err := res.RowsAffected()
	if err != nil {
		return dao.User{}, wrapDBError(err)
	}
	if rowsAff < 1 {
		return dao.User{}, dao.ErrNotFound
	}

	return repo.GetByID(ctx, user.ID)
}

func (repo *UsersDB) GetByUsername(ctx context.Context, username string) (dao.User, error) {
	row := repo.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?;`, username)
	return scanUser(row)
}

func (repo *UsersDB) GetByID(ctx context.Context, id uuid.UUID) (dao.User, error) {
	row := repo.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?;`, convertToDB_UUID(id))
	return scanUser(row)
}

func (repo *UsersDB) Delete(ctx context.Context, id uuid.UUID) (dao.User, error) {
	curVal, err := repo.GetByID(ctx, id)
	if err != nil {
		return curVal, err
	}

	res, err := repo.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, convertToDB_UUID(id))
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
func (repo *UsersDB) Close() error {
	return nil
}

// scanner is a *sql.Row or *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (dao.User, error) {
	var user dao.User
	var id string
	var role int
	var created, modified, logout, login int64

	err := row.Scan(
		&id,
		&user.Username,
		&user.Password,
		&role,
		&created,
		&modified,
		&logout,
		&login,
	)
	if err != nil {
		return dao.User{}, wrapDBError(err)
	}

	if err := convertFromDB_UUID(id, &user.ID); err != nil {
		return dao.User{}, fmt.Errorf("stored UUID %q is invalid: %w", id, err)
	}
	if err := convertFromDB_Role(role, &user.Role); err != nil {
		return dao.User{}, fmt.Errorf("stored role %d is invalid: %w", role, err)
	}
	if err := convertFromDB_Time(created, &user.Created); err != nil {
		return dao.User{}, fmt.Errorf("stored created time %d is invalid: %w", created, err)
	}
	if err := convertFromDB_Time(modified, &user.Modified); err != nil {
		return dao.User{}, fmt.Errorf("stored modified time %d is invalid: %w", modified, err)
	}
	if err := convertFromDB_Time(logout, &user.LastLogoutTime); err != nil {
		return dao.User{}, fmt.Errorf("stored last_logout_time %d is invalid: %w", logout, err)
	}
	if err := convertFromDB_Time(login, &user.LastLoginTime); err != nil {
		return dao.User{}, fmt.Errorf("stored last_login_time %d is invalid: %w", login, err)
	}

	return user, nil
}
