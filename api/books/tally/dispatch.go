package tally

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"TallyBridge/api/constants"
)

// ErrNoEligibleRows is reported when nothing in the upload carries an
// assigned ledger (within the requested subset, if one was given).
var ErrNoEligibleRows = errors.New(constants.ErrNoEligibleRows)

// BatchValidationError blocks the whole dispatch when any transformed row is
// malformed; the offending rows ride along for the caller.
type BatchValidationError struct {
	Invalid []WireTransaction
}

func (e *BatchValidationError) Error() string { return constants.ErrInvalidDispatchRows }

// EligibleRow is one selected staged row before transformation. Values come
// out of the database as text so the transform owns all normalization.
type EligibleRow struct {
	ID              int64
	TransactionDate *string
	TransactionType *string
	Description     *string
	Amount          *string
	BankAccount     *string
	AssignedLedger  *string
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

// DedupKey derives the stable per-row idempotency key from the staging
// identifier and row identity.
func DedupKey(stagingID string, rowID int64) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(stagingID+":"+strconv.FormatInt(rowID, 10))).String()
}

// TransformRows maps selected rows to the connector wire shape: canonical
// date, lowercased type, trimmed text fields, absolute amount.
func TransformRows(stagingID string, rows []EligibleRow) []WireTransaction {
	out := make([]WireTransaction, 0, len(rows))
	for _, r := range rows {
		amt := decimal.Zero
		if s := strings.TrimSpace(deref(r.Amount)); s != "" {
			if d, err := decimal.NewFromString(s); err == nil {
				amt = d.Abs()
			}
		}
		out = append(out, WireTransaction{
			ID:              r.ID,
			TransactionDate: deref(r.TransactionDate),
			TransactionType: strings.ToLower(deref(r.TransactionType)),
			Description:     strings.TrimSpace(deref(r.Description)),
			Amount:          amt.InexactFloat64(),
			BankAccount:     strings.TrimSpace(deref(r.BankAccount)),
			AssignedLedger:  strings.TrimSpace(deref(r.AssignedLedger)),
			DedupKey:        DedupKey(stagingID, r.ID),
		})
	}
	return out
}

// InvalidRows returns the transformed rows that must block the batch: missing
// date, bank account or assigned ledger, or a zero amount.
func InvalidRows(batch []WireTransaction) []WireTransaction {
	var invalid []WireTransaction
	for _, t := range batch {
		if t.TransactionDate == "" || t.BankAccount == "" || t.AssignedLedger == "" || t.Amount == 0 {
			invalid = append(invalid, t)
		}
	}
	return invalid
}

// SelectEligibleRows picks the rows of one upload that carry a non-empty
// assigned ledger, optionally restricted to an explicit id subset, ordered by
// transaction date.
func SelectEligibleRows(ctx context.Context, pool *pgxpool.Pool, stagingID string, subset []int64) ([]EligibleRow, error) {
	query := `
		SELECT id, to_char(date, 'YYYY-MM-DD'), transaction_type, description,
			amount::text, bank_account, assigned_ledger
		FROM staged_rows
		WHERE upload_id = $1
		  AND assigned_ledger IS NOT NULL
		  AND assigned_ledger != ''`
	args := []interface{}{stagingID}
	if len(subset) > 0 {
		query += ` AND id = ANY($2)`
		args = append(args, subset)
	}
	query += ` ORDER BY date`

	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf(constants.ErrQueryFailed+"%w", err)
	}
	defer rows.Close()

	out := make([]EligibleRow, 0)
	for rows.Next() {
		var r EligibleRow
		if err := rows.Scan(&r.ID, &r.TransactionDate, &r.TransactionType,
			&r.Description, &r.Amount, &r.BankAccount, &r.AssignedLedger); err != nil {
			return nil, fmt.Errorf("eligible row scan: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// DispatchResult reports a successful handoff to the connector.
type DispatchResult struct {
	Sent          int                    `json:"transactionsSent"`
	BatchID       string                 `json:"batch_id"`
	TallyResponse map[string]interface{} `json:"tallyResponse"`
}

// DispatchToTally selects eligible rows, transforms and validates the batch,
// forwards it, and marks exactly the forwarded rows as sent. On any connector
// failure the staged rows stay untouched. The handoff is at-least-once: if
// the status update is lost after a successful forward, a retry re-sends the
// same rows and the connector deduplicates on the per-row dedup key.
func DispatchToTally(ctx context.Context, pool *pgxpool.Pool, client *Client, company, stagingID string, subset []int64) (DispatchResult, error) {
	selected, err := SelectEligibleRows(ctx, pool, stagingID, subset)
	if err != nil {
		return DispatchResult{}, err
	}
	if len(selected) == 0 {
		return DispatchResult{}, ErrNoEligibleRows
	}

	batch := TransformRows(stagingID, selected)
	if invalid := InvalidRows(batch); len(invalid) > 0 {
		return DispatchResult{}, &BatchValidationError{Invalid: invalid}
	}

	ack, err := client.SendTransactions(ctx, FormatCompanyName(company), batch)
	if err != nil {
		return DispatchResult{}, err
	}

	sentIDs := make([]int64, len(batch))
	for i, t := range batch {
		sentIDs[i] = t.ID
	}
	_, err = pool.Exec(ctx,
		`UPDATE staged_rows SET status = $3 WHERE upload_id = $1 AND id = ANY($2)`,
		stagingID, sentIDs, constants.StatusSent)
	if err != nil {
		// The connector accepted the batch but the local mark failed; a retry
		// re-sends and relies on the dedup key downstream.
		return DispatchResult{}, fmt.Errorf("mark sent after connector accept: %w", err)
	}

	return DispatchResult{
		Sent:          len(batch),
		BatchID:       uuid.NewString(),
		TallyResponse: ack,
	}, nil
}
