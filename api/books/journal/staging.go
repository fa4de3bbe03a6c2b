package journal

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"TallyBridge/api/constants"
)

// ErrStagingCollision is returned when a freshly generated staging identifier
// already exists in the manifest. The caller retries the upload.
var ErrStagingCollision = errors.New(constants.ErrStagingIDCollision)

// All uploads share one fixed set of relations; a staging identifier is an
// opaque key into staged_rows, never a SQL identifier. Item columns are
// nullable and only populated for line-item uploads, banking columns only for
// banking uploads.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS uploads (
	id BIGSERIAL PRIMARY KEY,
	email TEXT NOT NULL,
	company TEXT NOT NULL,
	temp_table TEXT NOT NULL UNIQUE,
	uploaded_file TEXT NOT NULL,
	has_line_items BOOLEAN NOT NULL DEFAULT FALSE,
	mode TEXT NOT NULL DEFAULT 'journal',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS staged_rows (
	id BIGSERIAL PRIMARY KEY,
	upload_id TEXT NOT NULL,
	journal_no TEXT,
	reference_no TEXT,
	date DATE,
	cost_center TEXT,
	particulars TEXT,
	name_of_item TEXT,
	quantity NUMERIC,
	rate NUMERIC,
	dr_cr TEXT,
	amount NUMERIC,
	ledger_narration TEXT,
	narration TEXT,
	transaction_type TEXT,
	description TEXT,
	bank_account TEXT,
	assigned_ledger TEXT,
	status TEXT NOT NULL DEFAULT 'pending'
);
CREATE INDEX IF NOT EXISTS idx_staged_rows_upload ON staged_rows (upload_id);
CREATE TABLE IF NOT EXISTS row_update_log (
	id BIGSERIAL PRIMARY KEY,
	temp_table TEXT NOT NULL,
	row_id BIGINT NOT NULL,
	user_email TEXT NOT NULL,
	company_id TEXT NOT NULL,
	updated_fields JSONB NOT NULL,
	previous_values JSONB NOT NULL,
	reference_no TEXT,
	journal_no TEXT,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS ledgers (
	id BIGSERIAL PRIMARY KEY,
	company_id TEXT NOT NULL,
	description TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_ledgers_company ON ledgers (company_id);
`

// EnsureStagingSchema creates the fixed staging relations if they do not
// exist yet. Idempotent; runs on books service start.
func EnsureStagingSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("ensure staging schema: %w", err)
	}
	return nil
}

var unsafeIdentRe = regexp.MustCompile(`[^a-z0-9_]`)

// SanitizeOwner lowercases the owner email and neutralizes every rune that is
// unsafe in an identifier-like key.
func SanitizeOwner(owner string) string {
	return unsafeIdentRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(owner)), "_")
}

// NewStagingID builds the time-suffixed staging identifier for one upload by
// the given owner.
func NewStagingID(owner string, now time.Time) string {
	return fmt.Sprintf("journal_temp_%s_%d", SanitizeOwner(owner), now.UnixMilli())
}

// AllocateStagingID generates a staging identifier and verifies it is unused.
// Concurrent uploads by the same user within the same millisecond can
// collide; that is surfaced as a creation failure, never overwritten.
func AllocateStagingID(ctx context.Context, pool *pgxpool.Pool, owner string) (string, error) {
	id := NewStagingID(owner, time.Now())
	var exists bool
	err := pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM uploads WHERE temp_table = $1)`, id).Scan(&exists)
	if err != nil {
		return "", fmt.Errorf("staging id lookup: %w", err)
	}
	if exists {
		return "", ErrStagingCollision
	}
	return id, nil
}
