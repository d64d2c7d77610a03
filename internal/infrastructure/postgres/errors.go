package postgres

import (
	"errors"

	"github.com/lib/pq"
)

// PostgreSQL の SQLSTATE
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeExclusionViolation   = "23P01"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeInvalidTextRep       = "22P02"
)

// pgCode はエラーが pq.Error であればその SQLSTATE を返す
func pgCode(err error) pq.ErrorCode {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code
	}
	return ""
}

// isConcurrencyFailure は再試行で解消しうる競合エラーかを返す
func isConcurrencyFailure(err error) bool {
	code := pgCode(err)
	return code == codeSerializationFailure || code == codeDeadlockDetected
}

// isInvalidID は uuid 列に不正な文字列を渡した場合のエラーかを返す
func isInvalidID(err error) bool {
	return pgCode(err) == codeInvalidTextRep
}
