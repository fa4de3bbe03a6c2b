package journal

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ValidationError marks caller-correctable input problems. Handlers map it to
// HTTP 400; everything else surfaces as a server error.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationErrf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError marks a missing upload or staged row.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string { return e.Msg }

// Upload mode for an ingestion batch.
const (
	ModeJournal = "journal"
	ModeBanking = "banking"
)

// IngestInput is one ingestion batch as received from the caller: ordered
// spreadsheet rows keyed by column header.
type IngestInput struct {
	Owner       string                   `json:"email"`
	Company     string                   `json:"company"`
	Rows        []map[string]interface{} `json:"data"`
	WithItems   bool                     `json:"withItems"`
	FileName    string                   `json:"uploadedFileName"`
	Mode        string                   `json:"mode,omitempty"`
	BankAccount string                   `json:"bankAccount,omitempty"`
}

// IngestResult reports where the batch was staged and which particulars did
// not match any known ledger (advisory, never fatal).
type IngestResult struct {
	StagingID      string   `json:"table"`
	InvalidLedgers []string `json:"invalidLedgers"`
	RowCount       int      `json:"rowCount"`
}

// StagedRow is the resolved, normalized form of one source row, ready for
// persistence. Item fields are only populated in line-item mode; banking
// fields only in banking mode.
type StagedRow struct {
	JournalNo       *string
	ReferenceNo     *string
	Date            string
	CostCenter      *string
	Particulars     string
	NameOfItem      *string
	Quantity        *string
	Rate            *string
	DrCr            string
	Amount          decimal.Decimal
	LedgerNarration *string
	Narration       *string
	TransactionType string
	Description     string
	BankAccount     string
}

// UploadEntry is one manifest record for a staged upload.
type UploadEntry struct {
	ID           int64  `json:"id"`
	Owner        string `json:"email"`
	Company      string `json:"company"`
	StagingID    string `json:"temp_table"`
	UploadedFile string `json:"uploaded_file"`
	HasLineItems bool   `json:"has_line_items"`
	Mode         string `json:"mode"`
	CreatedAt    string `json:"created_at"`
}

// AuditEntry is one append-only record of a staged-row mutation.
type AuditEntry struct {
	ID             int64                  `json:"id"`
	StagingID      string                 `json:"temp_table"`
	RowID          int64                  `json:"row_id"`
	UserEmail      string                 `json:"user_email"`
	Company        string                 `json:"company_id"`
	UpdatedFields  map[string]interface{} `json:"updated_fields"`
	PreviousValues map[string]interface{} `json:"previous_values"`
	ReferenceNo    interface{}            `json:"reference_no"`
	JournalNo      interface{}            `json:"journal_no"`
	UpdatedAt      string                 `json:"updated_at"`
}
