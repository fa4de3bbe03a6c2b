package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"TallyBridge/api/constants"
)

func unmarshalAuditMap(raw []byte, dst *map[string]interface{}) error {
	if len(raw) == 0 {
		*dst = map[string]interface{}{}
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("audit json decode: %w", err)
	}
	return nil
}

// StagedRowView is the read model for one staged row, date already rendered
// canonically by the database.
type StagedRowView struct {
	ID              int64   `json:"id"`
	JournalNo       *string `json:"journal_no"`
	ReferenceNo     *string `json:"reference_no"`
	Date            *string `json:"date"`
	CostCenter      *string `json:"cost_center"`
	Particulars     *string `json:"particulars"`
	NameOfItem      *string `json:"name_of_item,omitempty"`
	Quantity        *string `json:"quantity,omitempty"`
	Rate            *string `json:"rate,omitempty"`
	DrCr            *string `json:"dr_cr"`
	Amount          *string `json:"amount"`
	LedgerNarration *string `json:"ledger_narration"`
	Narration       *string `json:"narration"`
	TransactionType *string `json:"transaction_type,omitempty"`
	Description     *string `json:"description,omitempty"`
	BankAccount     *string `json:"bank_account,omitempty"`
	AssignedLedger  *string `json:"assigned_ledger,omitempty"`
	Status          string  `json:"status"`
}

func uploadExists(ctx context.Context, db *sql.DB, stagingID string) (bool, error) {
	var exists bool
	err := db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM uploads WHERE temp_table = $1)`, stagingID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("upload lookup: %w", err)
	}
	return exists, nil
}

// FetchStagedRows returns the rows of one upload in ingestion order. A
// limit of zero returns the whole upload.
func FetchStagedRows(ctx context.Context, db *sql.DB, stagingID string, limit, offset int) ([]StagedRowView, error) {
	if strings.TrimSpace(stagingID) == "" {
		return nil, &ValidationError{Msg: constants.ErrStagingIDRequired}
	}
	ok, err := uploadExists(ctx, db, stagingID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &NotFoundError{Msg: constants.ErrUploadNotFound}
	}

	query := `
		SELECT id, journal_no, reference_no, to_char(date, 'YYYY-MM-DD'),
			cost_center, particulars, name_of_item, quantity::text, rate::text,
			dr_cr, amount::text, ledger_narration, narration, transaction_type,
			description, bank_account, assigned_ledger, status
		FROM staged_rows
		WHERE upload_id = $1
		ORDER BY id ASC`
	args := []interface{}{stagingID}
	if limit > 0 {
		query += ` LIMIT $2 OFFSET $3`
		args = append(args, limit, offset)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf(constants.ErrQueryFailed+"%w", err)
	}
	defer rows.Close()

	out := make([]StagedRowView, 0)
	for rows.Next() {
		var v StagedRowView
		if err := rows.Scan(
			&v.ID, &v.JournalNo, &v.ReferenceNo, &v.Date, &v.CostCenter,
			&v.Particulars, &v.NameOfItem, &v.Quantity, &v.Rate, &v.DrCr,
			&v.Amount, &v.LedgerNarration, &v.Narration, &v.TransactionType,
			&v.Description, &v.BankAccount, &v.AssignedLedger, &v.Status,
		); err != nil {
			return nil, fmt.Errorf("staged row scan: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// ListUploads returns the manifest entries for one owner and company, newest
// first.
func ListUploads(ctx context.Context, db *sql.DB, owner, company string) ([]UploadEntry, error) {
	if strings.TrimSpace(owner) == "" || strings.TrimSpace(company) == "" {
		return nil, &ValidationError{Msg: constants.ErrMissingOwnerOrCompany}
	}
	rows, err := db.QueryContext(ctx, `
		SELECT id, email, company, temp_table, uploaded_file, has_line_items,
			mode, to_char(created_at, 'YYYY-MM-DD HH24:MI:SS')
		FROM uploads
		WHERE email = $1 AND company = $2
		ORDER BY created_at DESC`, owner, company)
	if err != nil {
		return nil, fmt.Errorf(constants.ErrQueryFailed+"%w", err)
	}
	defer rows.Close()

	out := make([]UploadEntry, 0)
	for rows.Next() {
		var u UploadEntry
		if err := rows.Scan(&u.ID, &u.Owner, &u.Company, &u.StagingID,
			&u.UploadedFile, &u.HasLineItems, &u.Mode, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("upload scan: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// DeleteUpload removes one upload's staged rows and manifest entry together.
func DeleteUpload(ctx context.Context, pool *pgxpool.Pool, stagingID string) error {
	if strings.TrimSpace(stagingID) == "" {
		return &ValidationError{Msg: constants.ErrStagingIDRequired}
	}
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf(constants.ErrTxStartFailed+"%w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM staged_rows WHERE upload_id = $1`, stagingID); err != nil {
		return fmt.Errorf("staged rows delete: %w", err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM uploads WHERE temp_table = $1`, stagingID)
	if err != nil {
		return fmt.Errorf("upload manifest delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &NotFoundError{Msg: constants.ErrUploadNotFound}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf(constants.ErrTxCommitFailed+"%w", err)
	}
	return nil
}

// CountSent returns how many rows of an upload already reached the terminal
// "sent" status.
func CountSent(ctx context.Context, db *sql.DB, stagingID string) (int, error) {
	if strings.TrimSpace(stagingID) == "" {
		return 0, &ValidationError{Msg: constants.ErrStagingIDRequired}
	}
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM staged_rows WHERE upload_id = $1 AND status = $2`,
		stagingID, constants.StatusSent).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf(constants.ErrQueryFailed+"%w", err)
	}
	return count, nil
}

// ListAuditHistory returns audit entries for one owner and company, newest
// first, optionally restricted to one upload.
func ListAuditHistory(ctx context.Context, db *sql.DB, owner, company, stagingID string) ([]AuditEntry, error) {
	if strings.TrimSpace(owner) == "" || strings.TrimSpace(company) == "" {
		return nil, &ValidationError{Msg: constants.ErrMissingOwnerOrCompany}
	}
	query := `
		SELECT id, temp_table, row_id, user_email, company_id, updated_fields,
			previous_values, reference_no, journal_no,
			to_char(updated_at, 'YYYY-MM-DD HH24:MI:SS')
		FROM row_update_log
		WHERE user_email = $1 AND company_id = $2`
	args := []interface{}{owner, company}
	if stagingID != "" {
		query += ` AND temp_table = $3`
		args = append(args, stagingID)
	}
	query += ` ORDER BY updated_at DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf(constants.ErrQueryFailed+"%w", err)
	}
	defer rows.Close()

	out := make([]AuditEntry, 0)
	for rows.Next() {
		var (
			e                       AuditEntry
			updatedRaw, previousRaw []byte
			referenceNo, journalNo  sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.StagingID, &e.RowID, &e.UserEmail,
			&e.Company, &updatedRaw, &previousRaw, &referenceNo, &journalNo,
			&e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("audit scan: %w", err)
		}
		if err := unmarshalAuditMap(updatedRaw, &e.UpdatedFields); err != nil {
			return nil, err
		}
		if err := unmarshalAuditMap(previousRaw, &e.PreviousValues); err != nil {
			return nil, err
		}
		if referenceNo.Valid {
			e.ReferenceNo = referenceNo.String
		}
		if journalNo.Valid {
			e.JournalNo = journalNo.String
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
