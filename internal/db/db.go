// internal/db/db.go
package db

import (
	"database/sql"

	_ "github.com/lib/pq"
	"github.com/pkg/errors"
)

// Connect opens and pings the postgres database.
func Connect(dsn string) (*sql.DB, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	if err := conn.Ping(); err != nil {
		return nil, errors.Wrap(err, "ping database")
	}
	return conn, nil
}
