// Package sqlxrepos implements the domain repositories on PostgreSQL via
// sqlx. Each repository defaults to its own *sqlx.DB handle; write methods
// accept an optional executor override so services can group them into one
// transaction.
package sqlxrepos

import (
	"github.com/jmoiron/sqlx"

	"github.com/danwahyudir/lapju/core"
)

func getExec(db *sqlx.DB, svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 && svcExec[0] != nil {
		return svcExec[0]
	}
	return db
}
