package apperrors

import (
	"context"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const mysqlDuplicateEntry = 1062

// FromDB maps persistence errors onto the taxonomy. Unrecognized errors are
// returned unchanged.
func FromDB(err error, entity string) error {
	if err == nil {
		return nil
	}
	if _, ok := As(err); ok {
		return err
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &AppError{Code: CodeNotFound, Message: entity + " not found", Cause: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &AppError{Code: CodeInternal, Message: "database operation timed out", Cause: err}
	}
	if isUniqueViolation(err) {
		return &AppError{Code: CodeConflict, Message: entity + " already exists", Cause: err}
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.UniqueViolation
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// sqlite reports constraint failures only through the message.
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
