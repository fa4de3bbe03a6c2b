package journal

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// LoadLedgerCatalog returns the set of valid ledger descriptions for a
// company. Entries are lowercased and trimmed so membership tests are
// case- and whitespace-insensitive. The catalog is owned by the accounting
// side; this core only reads it.
func LoadLedgerCatalog(ctx context.Context, pool *pgxpool.Pool, company string) (map[string]struct{}, error) {
	rows, err := pool.Query(ctx,
		`SELECT description FROM ledgers WHERE company_id = $1`, company)
	if err != nil {
		return nil, fmt.Errorf("ledger catalog for %s: %w", company, err)
	}
	defer rows.Close()

	catalog := make(map[string]struct{})
	for rows.Next() {
		var desc string
		if err := rows.Scan(&desc); err != nil {
			return nil, fmt.Errorf("ledger catalog scan: %w", err)
		}
		catalog[strings.ToLower(strings.TrimSpace(desc))] = struct{}{}
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("ledger catalog for %s: %w", company, rows.Err())
	}
	return catalog, nil
}

// LedgerKnown reports whether a particulars value matches a catalog entry.
func LedgerKnown(catalog map[string]struct{}, particulars string) bool {
	_, ok := catalog[strings.ToLower(strings.TrimSpace(particulars))]
	return ok
}
