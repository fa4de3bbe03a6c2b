package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"TallyBridge/api/constants"
)

// Required column headers per mode. Order matters only for error reporting:
// the first absent field in this order names the failure.
var (
	requiredJournal   = []string{"Reference No", "Date", "Particulars", "Dr/Cr", "Amount"}
	requiredWithItems = []string{"Reference No", "Date", "Particulars", "Name Of Item", "Quantity", "Rate", "Dr/Cr", "Amount"}
	requiredBanking   = []string{"Date", "Description", "Amount", "Type"}
)

func requiredFields(mode string, withItems bool) []string {
	if mode == ModeBanking {
		return requiredBanking
	}
	if withItems {
		return requiredWithItems
	}
	return requiredJournal
}

// fieldPresent mirrors the loose presence semantics of spreadsheet exports:
// nil, empty string, numeric zero and false all count as missing.
func fieldPresent(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case float64:
		return t != 0
	case int:
		return t != 0
	case int64:
		return t != 0
	case bool:
		return t
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	}
	return true
}

func toString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	}
	return fmt.Sprint(v)
}

// toNullableString maps absent-ish optional values to NULL.
func toNullableString(v interface{}) *string {
	if v == nil {
		return nil
	}
	s := toString(v)
	if s == "" {
		return nil
	}
	return &s
}

func parseAmount(v interface{}, rowNum int) (decimal.Decimal, error) {
	var d decimal.Decimal
	var err error
	switch t := v.(type) {
	case float64:
		d = decimal.NewFromFloat(t)
	case int:
		d = decimal.NewFromInt(int64(t))
	case int64:
		d = decimal.NewFromInt(t)
	case json.Number:
		d, err = decimal.NewFromString(t.String())
	case string:
		d, err = decimal.NewFromString(strings.TrimSpace(t))
	default:
		err = fmt.Errorf("unsupported amount type %T", v)
	}
	if err != nil {
		return decimal.Zero, validationErrf(constants.ErrInvalidAmountInRow, v, rowNum)
	}
	if d.IsNegative() {
		return decimal.Zero, validationErrf(constants.ErrNegativeAmountInRow, v, rowNum)
	}
	return d, nil
}

// toNumericString validates a value as a decimal and returns its text form,
// so quantity/rate drift (thousands separators aside) fails loudly instead of
// dying inside a DB cast.
func toNumericString(v interface{}, field string, rowNum int) (*string, error) {
	if v == nil {
		return nil, nil
	}
	s := strings.TrimSpace(toString(v))
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, validationErrf(constants.ErrInvalidNumericInRow, v, field, rowNum)
	}
	out := d.String()
	return &out, nil
}

// refCanon is the first-seen (journal no, date) pair for a reference number.
type refCanon struct {
	journalNo *string
	date      string
}

// ResolveRows validates and normalizes a raw batch without touching storage.
// Any per-row validation failure aborts the whole batch; unknown-ledger
// particulars accumulate as an advisory list and never block.
//
// Rows sharing a reference number form one logical journal entry: the first
// row seen for a reference number fixes the journal number and date for every
// later row in the group, regardless of what those rows carried themselves.
func ResolveRows(in IngestInput, catalog map[string]struct{}) ([]StagedRow, []string, error) {
	mode := in.Mode
	if mode == "" {
		mode = ModeJournal
	}
	required := requiredFields(mode, in.WithItems)

	refMap := make(map[string]refCanon)
	invalidSeen := make(map[string]struct{})
	invalidLedgers := []string{}
	resolved := make([]StagedRow, 0, len(in.Rows))

	for i, row := range in.Rows {
		rowNum := i + 1
		for _, field := range required {
			if !fieldPresent(row[field]) {
				return nil, nil, validationErrf(constants.ErrMissingFieldInRow, field, rowNum)
			}
		}

		date, err := NormalizeDate(row["Date"], rowNum)
		if err != nil {
			return nil, nil, err
		}
		amount, err := parseAmount(row["Amount"], rowNum)
		if err != nil {
			return nil, nil, err
		}

		if mode == ModeBanking {
			resolved = append(resolved, StagedRow{
				Date:            date,
				Description:     strings.TrimSpace(toString(row["Description"])),
				TransactionType: toString(row["Type"]),
				Amount:          amount,
				BankAccount:     in.BankAccount,
			})
			continue
		}

		refNo := toString(row["Reference No"])
		journalNo := toNullableString(row["Journal No"])
		if canon, ok := refMap[refNo]; ok {
			journalNo = canon.journalNo
			date = canon.date
		} else {
			refMap[refNo] = refCanon{journalNo: journalNo, date: date}
		}

		particulars := toString(row["Particulars"])
		if !LedgerKnown(catalog, particulars) {
			if _, dup := invalidSeen[particulars]; !dup {
				invalidSeen[particulars] = struct{}{}
				invalidLedgers = append(invalidLedgers, particulars)
			}
		}

		sr := StagedRow{
			JournalNo:       journalNo,
			ReferenceNo:     &refNo,
			Date:            date,
			CostCenter:      toNullableString(row["Cost center"]),
			Particulars:     particulars,
			DrCr:            toString(row["Dr/Cr"]),
			Amount:          amount,
			LedgerNarration: toNullableString(row["Ledger Narration"]),
			Narration:       toNullableString(row["Narration"]),
		}
		if in.WithItems {
			name := toString(row["Name Of Item"])
			sr.NameOfItem = &name
			if sr.Quantity, err = toNumericString(row["Quantity"], "Quantity", rowNum); err != nil {
				return nil, nil, err
			}
			if sr.Rate, err = toNumericString(row["Rate"], "Rate", rowNum); err != nil {
				return nil, nil, err
			}
		}
		resolved = append(resolved, sr)
	}
	return resolved, invalidLedgers, nil
}

const insertStagedRowSQL = `
	INSERT INTO staged_rows
		(upload_id, journal_no, reference_no, date, cost_center, particulars,
		 name_of_item, quantity, rate, dr_cr, amount, ledger_narration,
		 narration, transaction_type, description, bank_account, status)
	VALUES ($1, $2, $3, $4::date, $5, $6, $7, $8::numeric, $9::numeric, $10,
		$11::numeric, $12, $13, $14, $15, $16, $17)`

// IngestRows runs the full pipeline for one upload: catalog load, per-row
// validation and normalization, then staged rows plus the manifest entry in a
// single transaction. Nothing is persisted if any row fails validation.
func IngestRows(ctx context.Context, pool *pgxpool.Pool, in IngestInput) (IngestResult, error) {
	if strings.TrimSpace(in.Owner) == "" || strings.TrimSpace(in.Company) == "" {
		return IngestResult{}, &ValidationError{Msg: constants.ErrMissingOwnerOrCompany}
	}
	if len(in.Rows) == 0 {
		return IngestResult{}, &ValidationError{Msg: constants.ErrEmptyBatch}
	}
	mode := in.Mode
	if mode == "" {
		mode = ModeJournal
	}

	var catalog map[string]struct{}
	if mode == ModeJournal {
		var err error
		catalog, err = LoadLedgerCatalog(ctx, pool, in.Company)
		if err != nil {
			return IngestResult{}, err
		}
	}

	rows, invalidLedgers, err := ResolveRows(in, catalog)
	if err != nil {
		return IngestResult{}, err
	}

	stagingID, err := AllocateStagingID(ctx, pool, in.Owner)
	if err != nil {
		return IngestResult{}, err
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return IngestResult{}, fmt.Errorf(constants.ErrTxStartFailed+"%w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, r := range rows {
		var drCr, particulars, txnType, description, bankAccount *string
		if r.DrCr != "" {
			drCr = &r.DrCr
		}
		if r.Particulars != "" {
			particulars = &r.Particulars
		}
		if r.TransactionType != "" {
			txnType = &r.TransactionType
		}
		if r.Description != "" {
			description = &r.Description
		}
		if r.BankAccount != "" {
			bankAccount = &r.BankAccount
		}
		batch.Queue(insertStagedRowSQL,
			stagingID, r.JournalNo, r.ReferenceNo, r.Date, r.CostCenter,
			particulars, r.NameOfItem, r.Quantity, r.Rate, drCr,
			r.Amount.String(), r.LedgerNarration, r.Narration,
			txnType, description, bankAccount, constants.StatusPending)
	}
	br := tx.SendBatch(ctx, batch)
	for range rows {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return IngestResult{}, fmt.Errorf("stage row insert: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return IngestResult{}, fmt.Errorf("stage row insert: %w", err)
	}

	fileName := in.FileName
	if fileName == "" {
		fileName = stagingID
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO uploads (email, company, temp_table, uploaded_file, has_line_items, mode)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		in.Owner, in.Company, stagingID, fileName, in.WithItems, mode)
	if err != nil {
		return IngestResult{}, fmt.Errorf("upload manifest insert: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return IngestResult{}, fmt.Errorf(constants.ErrTxCommitFailed+"%w", err)
	}

	if invalidLedgers == nil {
		invalidLedgers = []string{}
	}
	return IngestResult{StagingID: stagingID, InvalidLedgers: invalidLedgers, RowCount: len(rows)}, nil
}
