package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"TallyBridge/api/constants"
)

// Columns a caller may touch through the update endpoint. Anything else in
// the payload is a malformed request, not a silent skip.
var updatableColumns = map[string]bool{
	"journal_no":       true,
	"reference_no":     true,
	"date":             true,
	"cost_center":      true,
	"particulars":      true,
	"name_of_item":     true,
	"quantity":         true,
	"rate":             true,
	"dr_cr":            true,
	"amount":           true,
	"ledger_narration": true,
	"narration":        true,
	"transaction_type": true,
	"description":      true,
	"bank_account":     true,
	"assigned_ledger":  true,
	"status":           true,
}

// Columns that need a cast when written, because the payload arrives as text.
var castColumns = map[string]string{
	"date":     "::date",
	"quantity": "::numeric",
	"rate":     "::numeric",
	"amount":   "::numeric",
}

// rowColumns is the canonical text projection of a staged row, used for
// pre/post diffing. Dates and numerics are rendered to text by the database
// so comparisons never depend on driver-side types.
var rowColumns = []string{
	"journal_no", "reference_no", "date", "cost_center", "particulars",
	"name_of_item", "quantity", "rate", "dr_cr", "amount",
	"ledger_narration", "narration", "transaction_type", "description",
	"bank_account", "assigned_ledger", "status",
}

const selectRowSQL = `
	SELECT journal_no, reference_no, to_char(date, 'YYYY-MM-DD'), cost_center,
		particulars, name_of_item, quantity::text, rate::text, dr_cr,
		amount::text, ledger_narration, narration, transaction_type,
		description, bank_account, assigned_ledger, status
	FROM staged_rows WHERE upload_id = $1 AND id = $2`

// UpdateInput is one partial row mutation.
type UpdateInput struct {
	StagingID string                 `json:"tempTable"`
	RowID     int64                  `json:"creation_id"`
	Updates   map[string]interface{} `json:"updatedRow"`
	Owner     string                 `json:"email"`
	Company   string                 `json:"company"`
}

// UpdateResult reports which fields actually changed.
type UpdateResult struct {
	UpdatedFields map[string]interface{} `json:"updatedFields"`
}

func fetchRowState(ctx context.Context, tx pgx.Tx, stagingID string, rowID int64) (map[string]*string, error) {
	vals := make([]*string, len(rowColumns))
	dest := make([]interface{}, len(rowColumns))
	for i := range vals {
		dest[i] = &vals[i]
	}
	err := tx.QueryRow(ctx, selectRowSQL, stagingID, rowID).Scan(dest...)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("staged row fetch: %w", err)
	}
	state := make(map[string]*string, len(rowColumns))
	for i, col := range rowColumns {
		state[col] = vals[i]
	}
	return state, nil
}

func textDeref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

// diffFields compares the pre- and post-update row states restricted to the
// caller's payload keys. Returned maps share the same key set.
func diffFields(prev, post map[string]*string, keys []string) (changed, previous map[string]interface{}) {
	changed = map[string]interface{}{}
	previous = map[string]interface{}{}
	for _, k := range keys {
		if textDeref(prev[k]) != textDeref(post[k]) {
			if post[k] != nil {
				changed[k] = *post[k]
			} else {
				changed[k] = nil
			}
			if prev[k] != nil {
				previous[k] = *prev[k]
			} else {
				previous[k] = nil
			}
		}
	}
	return changed, previous
}

// ValidateUpdatePayload checks the payload against the column allow-list and
// applies the status default. An empty (but present) payload still gets the
// status default, so a bare save marks the row saved; only an absent payload
// is an error. Returns the payload keys in a stable order.
func ValidateUpdatePayload(updates map[string]interface{}) ([]string, error) {
	if updates == nil {
		return nil, &ValidationError{Msg: constants.ErrEmptyUpdatePayload}
	}
	if _, ok := updates["status"]; !ok {
		updates["status"] = constants.StatusSaved
	}
	keys := make([]string, 0, len(updates))
	for k := range updates {
		if !updatableColumns[k] {
			return nil, validationErrf(constants.ErrUnknownUpdateField, k)
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// UpdateStagedRow applies a partial update to one staged row and appends an
// audit entry when, and only when, something actually changed. Rows that have
// reached the terminal "sent" status are immutable.
func UpdateStagedRow(ctx context.Context, pool *pgxpool.Pool, in UpdateInput) (UpdateResult, error) {
	if strings.TrimSpace(in.StagingID) == "" {
		return UpdateResult{}, &ValidationError{Msg: constants.ErrStagingIDRequired}
	}
	if in.RowID <= 0 {
		return UpdateResult{}, &ValidationError{Msg: constants.ErrRowIDRequired}
	}
	if strings.TrimSpace(in.Owner) == "" || strings.TrimSpace(in.Company) == "" {
		return UpdateResult{}, &ValidationError{Msg: constants.ErrMissingOwnerOrCompany}
	}
	keys, err := ValidateUpdatePayload(in.Updates)
	if err != nil {
		return UpdateResult{}, err
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return UpdateResult{}, fmt.Errorf(constants.ErrTxStartFailed+"%w", err)
	}
	defer tx.Rollback(ctx)

	prev, err := fetchRowState(ctx, tx, in.StagingID, in.RowID)
	if err != nil {
		return UpdateResult{}, err
	}
	if prev == nil {
		return UpdateResult{}, &NotFoundError{Msg: constants.ErrRowNotFound}
	}
	if textDeref(prev["status"]) == constants.StatusSent {
		return UpdateResult{}, &ValidationError{Msg: constants.ErrRowAlreadySent}
	}

	setParts := make([]string, 0, len(keys))
	args := make([]interface{}, 0, len(keys)+2)
	for i, k := range keys {
		setParts = append(setParts, fmt.Sprintf(`"%s" = $%d%s`, k, i+1, castColumns[k]))
		v := in.Updates[k]
		if v == nil {
			args = append(args, nil)
		} else {
			args = append(args, toString(v))
		}
	}
	args = append(args, in.StagingID, in.RowID)
	updateSQL := fmt.Sprintf(`UPDATE staged_rows SET %s WHERE upload_id = $%d AND id = $%d`,
		strings.Join(setParts, ", "), len(keys)+1, len(keys)+2)
	tag, err := tx.Exec(ctx, updateSQL, args...)
	if err != nil {
		return UpdateResult{}, fmt.Errorf("staged row update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return UpdateResult{}, &NotFoundError{Msg: constants.ErrRowNotFound}
	}

	post, err := fetchRowState(ctx, tx, in.StagingID, in.RowID)
	if err != nil {
		return UpdateResult{}, err
	}
	if post == nil {
		return UpdateResult{}, &NotFoundError{Msg: constants.ErrRowNotFound}
	}

	changed, previous := diffFields(prev, post, keys)
	if len(changed) > 0 {
		changedJSON, err := json.Marshal(changed)
		if err != nil {
			return UpdateResult{}, fmt.Errorf("audit marshal: %w", err)
		}
		previousJSON, err := json.Marshal(previous)
		if err != nil {
			return UpdateResult{}, fmt.Errorf("audit marshal: %w", err)
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO row_update_log
				(temp_table, row_id, user_email, company_id, updated_fields,
				 previous_values, reference_no, journal_no)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			in.StagingID, in.RowID, in.Owner, in.Company,
			changedJSON, previousJSON,
			post["reference_no"], post["journal_no"])
		if err != nil {
			return UpdateResult{}, fmt.Errorf("audit insert: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return UpdateResult{}, fmt.Errorf(constants.ErrTxCommitFailed+"%w", err)
	}
	return UpdateResult{UpdatedFields: changed}, nil
}
