package repository

import (
	"errors"

	"github.com/mattn/go-sqlite3"

	"github.com/2caleb/gold-charp-investments-sub003/internal/application/port"
)

// classify maps SQLite constraint failures onto port errors. A duplicate key
// is a conflict; a dangling foreign key means the parent row is missing.
func classify(err error) error {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) || sqliteErr.Code != sqlite3.ErrConstraint {
		return nil
	}
	switch sqliteErr.ExtendedCode {
	case sqlite3.ErrConstraintPrimaryKey, sqlite3.ErrConstraintUnique:
		return port.ErrConflict
	case sqlite3.ErrConstraintForeignKey:
		return port.ErrNotFound
	}
	return nil
}
