package health

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// checkTimeout bounds a single dependency probe so a hung connection
// cannot stall the readiness endpoint.
const checkTimeout = 2 * time.Second

// DBChecker reports whether the candidate database is reachable.
type DBChecker struct {
	db *sql.DB
}

// NewDBChecker creates a health checker for the candidate database.
func NewDBChecker(db *sql.DB) *DBChecker {
	return &DBChecker{db: db}
}

// HealthCheck runs a trivial query against the database. A query, rather
// than a bare ping, proves the pool can hand out a working connection.
func (d *DBChecker) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	var one int
	if err := d.db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("database health check: %w", err)
	}
	return nil
}
