package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
)

const (
	lockRetries  = 4
	lockInterval = 100 * time.Millisecond
)

// execRetry runs a write statement, retrying a bounded number of times
// when SQLite reports the database as locked. Any other error is returned
// immediately.
func execRetry(db *sql.DB, query string, args ...any) (sql.Result, error) {
	var res sql.Result
	backoff := retry.WithMaxRetries(lockRetries, retry.NewConstant(lockInterval))
	err := retry.Do(context.Background(), backoff, func(ctx context.Context) error {
		var err error
		res, err = db.Exec(query, args...)
		if err != nil && isLockedErr(err) {
			return retry.RetryableError(err)
		}
		return err
	})
	return res, err
}

func isLockedErr(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "SQLITE_BUSY")
}
