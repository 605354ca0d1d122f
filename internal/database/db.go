// Package database opens the MySQL pool every repository shares.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// pingTimeout bounds the startup connectivity check. A database that does
// not answer within this window fails startup instead of serving requests
// that can only 500.
const pingTimeout = 5 * time.Second

// BuildDSN assembles the driver DSN. parseTime maps DATETIME columns onto
// time.Time and loc pins them to UTC so timestamps compare cleanly between
// the API responses and the queue events. A blank password keeps the
// credential part down to the bare user, which local setups rely on.
func BuildDSN(user, pass, host, port, name string) string {
	cred := user
	if pass != "" {
		cred = user + ":" + pass
	}
	return fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		cred, host, port, name)
}

// Open connects to MySQL, applies the pool limits from configuration and
// verifies connectivity before the server starts taking traffic.
func Open(user, pass, host, port, name string, maxConns int, connMaxLife time.Duration) (*sql.DB, error) {
	db, err := sql.Open("mysql", BuildDSN(user, pass, host, port, name))
	if err != nil {
		return nil, err
	}

	if maxConns < 1 {
		maxConns = 1
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)
	db.SetConnMaxLifetime(connMaxLife)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
