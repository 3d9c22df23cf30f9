// Package sqlite is a dao.Store backed by a SQLite database file.
package sqlite

import (
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dekarrin/lexcheck/analysis"
	"github.com/dekarrin/lexcheck/server/dao"
	"github.com/dekarrin/rezi"
	"github.com/google/uuid"
	"modernc.org/sqlite"
)

type store struct {
	dbFilename string

	db *sql.DB

	users    *UsersDB
	analyses *AnalysesDB
}

// NewDatastore opens (creating if needed) the database in storageDir.
func NewDatastore(storageDir string) (dao.Store, error) {
	st := &store{
		dbFilename: "data.db",
	}

	fileName := filepath.Join(storageDir, st.dbFilename)

	var err error
	st.db, err = sql.Open("sqlite", fileName)
	if err != nil {
		return nil, wrapDBError(err)
	}

	st.users = &UsersDB{db: st.db}
	if err := st.users.init(); err != nil {
		st.db.Close()
		return nil, fmt.Errorf("users: %w", err)
	}

	st.analyses = &AnalysesDB{db: st.db}
	if err := st.analyses.init(); err != nil {
		st.db.Close()
		return nil, fmt.Errorf("analyses: %w", err)
	}

	return st, nil
}

func (s *store) Users() dao.UserRepository {
	return s.users
}

func (s *store) Analyses() dao.AnalysisRepository {
	return s.analyses
}

func (s *store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("%s: %w", s.dbFilename, err)
	}
	return nil
}

func wrapDBError(err error) error {
	sqliteErr := &sqlite.Error{}
	if errors.As(err, &sqliteErr) {
		if sqliteErr.Code() == 19 {
			return dao.ErrConstraintViolation
		}
		return fmt.Errorf("%s", sqlite.ErrorCodeString[sqliteErr.Code()])
	} else if errors.Is(err, sql.ErrNoRows) {
		return dao.ErrNotFound
	}
	return err
}

func convertToDB_UUID(u uuid.UUID) string {
	return u.String()
}

func convertFromDB_UUID(s string, target *uuid.UUID) error {
	u, err := uuid.Parse(s)
	if err != nil {
		return err
	}
	*target = u
	return nil
}

func convertToDB_Time(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

func convertFromDB_Time(i int64, target *time.Time) error {
	if i == 0 {
		*target = time.Time{}
		return nil
	}
	*target = time.Unix(i, 0)
	return nil
}

func convertToDB_Role(r dao.Role) int {
	return int(r)
}

func convertFromDB_Role(i int, target *dao.Role) error {
	r := dao.Role(i)
	if r != dao.Normal && r != dao.Admin {
		return fmt.Errorf("unknown role")
	}
	*target = r
	return nil
}

func convertToDB_Report(r analysis.Report) string {
	return base64.StdEncoding.EncodeToString(rezi.EncBinary(r))
}

func convertFromDB_Report(s string, target *analysis.Report) error {
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return err
	}

	var r analysis.Report
	if _, err := rezi.DecBinary(data, &r); err != nil {
		return err
	}
	*target = r
	return nil
}
