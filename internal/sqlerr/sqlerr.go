// Package sqlerr classifies SQLite driver errors so stores can translate
// constraint violations into domain errors instead of leaking driver text.
package sqlerr

import (
	"errors"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Code is the constraint class of a driver error.
type Code int

const (
	Other Code = iota
	UniqueViolation
	ForeignKeyViolation
	NotNullViolation
	CheckViolation
)

func (c Code) String() string {
	switch c {
	case UniqueViolation:
		return "unique_violation"
	case ForeignKeyViolation:
		return "foreign_key_violation"
	case NotNullViolation:
		return "not_null_violation"
	case CheckViolation:
		return "check_violation"
	default:
		return "other"
	}
}

// ErrCode reports the constraint class of err, walking the wrap chain.
// Errors that did not come from the SQLite driver report Other.
func ErrCode(err error) Code {
	var serr *sqlite.Error
	if !errors.As(err, &serr) {
		return Other
	}

	switch serr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return UniqueViolation
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return ForeignKeyViolation
	case sqlite3.SQLITE_CONSTRAINT_NOTNULL:
		return NotNullViolation
	case sqlite3.SQLITE_CONSTRAINT_CHECK:
		return CheckViolation
	}

	// Primary result code only: fall back to the message.
	if serr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
		msg := serr.Error()
		switch {
		case strings.Contains(msg, "UNIQUE"):
			return UniqueViolation
		case strings.Contains(msg, "FOREIGN KEY"):
			return ForeignKeyViolation
		case strings.Contains(msg, "NOT NULL"):
			return NotNullViolation
		case strings.Contains(msg, "CHECK"):
			return CheckViolation
		}
	}
	return Other
}

func IsUniqueViolation(err error) bool {
	return ErrCode(err) == UniqueViolation
}

func IsForeignKeyViolation(err error) bool {
	return ErrCode(err) == ForeignKeyViolation
}
