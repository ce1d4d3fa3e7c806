package repository

import (
	"errors"

	"github.com/lib/pq"
)

// PostgreSQLのSQLSTATE。
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// isPQCode はerrがPostgreSQLの指定SQLSTATEかどうかを判定する。
func isPQCode(err error, code pq.ErrorCode) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == code
	}
	return false
}
