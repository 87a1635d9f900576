package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// LookupKind selects which student standing is queried.
type LookupKind string

const (
	LookupAcademic  LookupKind = "academic"
	LookupFinancial LookupKind = "financial"
)

// Lookup resolves a student registration code to a status string.
// found=false means the code is unknown; errors are transport failures.
type Lookup interface {
	Lookup(ctx context.Context, code string, kind LookupKind) (status string, found bool, err error)
}

// PostgresLookup reads student standings from the student_records table.
type PostgresLookup struct {
	db *sql.DB
}

// NewPostgresLookup creates a lookup service. Returns nil when no database
// is configured so callers can treat lookups as disabled.
func NewPostgresLookup(db *sql.DB) *PostgresLookup {
	if db == nil {
		return nil
	}
	return &PostgresLookup{db: db}
}

// Lookup fetches the academic or financial status for a registration code.
func (l *PostgresLookup) Lookup(ctx context.Context, code string, kind LookupKind) (string, bool, error) {
	if l == nil || l.db == nil {
		return "", false, errors.New("records: lookup service not configured")
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return "", false, nil
	}

	var column string
	switch kind {
	case LookupAcademic:
		column = "academic_status"
	case LookupFinancial:
		column = "financial_status"
	default:
		return "", false, fmt.Errorf("records: unknown lookup kind %q", kind)
	}

	var status sql.NullString
	err := l.db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT %s FROM student_records
		WHERE registration_code = $1
	`, column), code).Scan(&status)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("records: lookup failed: %w", err)
	}
	if !status.Valid || strings.TrimSpace(status.String) == "" {
		return "", false, nil
	}
	return status.String, true, nil
}
