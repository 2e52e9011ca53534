package database

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// FailureCode is the driver-independent name of a database failure.
type FailureCode string

const (
	DuplicateEntry      FailureCode = "DUPLICATE_ENTRY"
	NoReferencedRow     FailureCode = "NO_REFERENCED_ROW"
	RowIsReferenced     FailureCode = "ROW_IS_REFERENCED"
	ConstraintViolation FailureCode = "CONSTRAINT_VIOLATION"
	QueryFailed         FailureCode = "QUERY_FAILED"
)

const (
	sqlStateUniqueViolation     = "23505"
	sqlStateForeignKeyViolation = "23503"
	sqlStateNotNullViolation    = "23502"
	sqlStateCheckViolation      = "23514"
)

// Failure describes a database error in a shape that can go on the wire.
type Failure struct {
	Code     FailureCode
	SQLState string
	Message  string
}

// Classify recognises database errors from the postgres driver or from GORM's translated
// errors. It reports false for anything else, including gorm.ErrRecordNotFound.
func Classify(err error) (Failure, bool) {
	if err == nil {
		return Failure{}, false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return Failure{
			Code:     codeForSQLState(pgErr.Code, pgErr.Detail),
			SQLState: pgErr.Code,
			Message:  pgErr.Message,
		}, true
	}

	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return Failure{Code: DuplicateEntry, SQLState: sqlStateUniqueViolation, Message: err.Error()}, true
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return Failure{Code: NoReferencedRow, SQLState: sqlStateForeignKeyViolation, Message: err.Error()}, true
	case errors.Is(err, gorm.ErrCheckConstraintViolated):
		return Failure{Code: ConstraintViolation, SQLState: sqlStateCheckViolation, Message: err.Error()}, true
	case errors.Is(err, gorm.ErrInvalidField), errors.Is(err, gorm.ErrInvalidData):
		return Failure{Code: QueryFailed, Message: err.Error()}, true
	}

	return Failure{}, false
}

// IsDuplicate reports whether err is a unique constraint violation.
func IsDuplicate(err error) bool {
	f, ok := Classify(err)
	return ok && f.Code == DuplicateEntry
}

func codeForSQLState(state, detail string) FailureCode {
	switch state {
	case sqlStateUniqueViolation:
		return DuplicateEntry
	case sqlStateForeignKeyViolation:
		// the same SQLSTATE covers inserting an orphan and deleting a parent
		if strings.Contains(detail, "is still referenced") {
			return RowIsReferenced
		}
		return NoReferencedRow
	case sqlStateNotNullViolation, sqlStateCheckViolation:
		return ConstraintViolation
	default:
		return QueryFailed
	}
}
