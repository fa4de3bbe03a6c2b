package tally

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sp(s string) *string { return &s }

func TestDedupKeyStable(t *testing.T) {
	a := DedupKey("journal_temp_user_1717000000000", 42)
	b := DedupKey("journal_temp_user_1717000000000", 42)
	assert.Equal(t, a, b)

	// Different row or different staging id changes the key.
	assert.NotEqual(t, a, DedupKey("journal_temp_user_1717000000000", 43))
	assert.NotEqual(t, a, DedupKey("journal_temp_user_1717000000001", 42))
}

func TestTransformRowsNormalization(t *testing.T) {
	rows := []EligibleRow{
		{
			ID:              7,
			TransactionDate: sp("2024-03-15"),
			TransactionType: sp("CREDIT"),
			Description:     sp("  NEFT transfer  "),
			Amount:          sp("-1250.75"),
			BankAccount:     sp(" HDFC-001 "),
			AssignedLedger:  sp(" Bank Charges "),
		},
	}
	out := TransformRows("journal_temp_u_1", rows)
	require.Len(t, out, 1)
	tx := out[0]
	assert.Equal(t, int64(7), tx.ID)
	assert.Equal(t, "2024-03-15", tx.TransactionDate)
	assert.Equal(t, "credit", tx.TransactionType)
	assert.Equal(t, "NEFT transfer", tx.Description)
	assert.Equal(t, 1250.75, tx.Amount)
	assert.Equal(t, "HDFC-001", tx.BankAccount)
	assert.Equal(t, "Bank Charges", tx.AssignedLedger)
	assert.Equal(t, DedupKey("journal_temp_u_1", 7), tx.DedupKey)
}

func TestTransformRowsNilFieldsBecomeEmpty(t *testing.T) {
	out := TransformRows("journal_temp_u_1", []EligibleRow{{ID: 1}})
	require.Len(t, out, 1)
	assert.Equal(t, "", out[0].TransactionDate)
	assert.Equal(t, "", out[0].BankAccount)
	assert.Equal(t, 0.0, out[0].Amount)
}

func TestInvalidRowsFlagsMissingFields(t *testing.T) {
	batch := []WireTransaction{
		{ID: 1, TransactionDate: "2024-01-01", BankAccount: "A", AssignedLedger: "L", Amount: 10},
		{ID: 2, TransactionDate: "", BankAccount: "A", AssignedLedger: "L", Amount: 10},
		{ID: 3, TransactionDate: "2024-01-01", BankAccount: "", AssignedLedger: "L", Amount: 10},
		{ID: 4, TransactionDate: "2024-01-01", BankAccount: "A", AssignedLedger: "", Amount: 10},
		{ID: 5, TransactionDate: "2024-01-01", BankAccount: "A", AssignedLedger: "L", Amount: 0},
	}
	invalid := InvalidRows(batch)
	require.Len(t, invalid, 4)
	ids := make([]int64, len(invalid))
	for i, tx := range invalid {
		ids[i] = tx.ID
	}
	assert.Equal(t, []int64{2, 3, 4, 5}, ids)
}

func TestInvalidRowsCleanBatch(t *testing.T) {
	batch := []WireTransaction{
		{ID: 1, TransactionDate: "2024-01-01", BankAccount: "A", AssignedLedger: "L", Amount: 10},
	}
	assert.Empty(t, InvalidRows(batch))
}

func TestFormatCompanyName(t *testing.T) {
	assert.Equal(t, "Acme Traders", FormatCompanyName("  Acme   Traders "))
	assert.Equal(t, "Acme", FormatCompanyName("Acme"))
	assert.Equal(t, "", FormatCompanyName("   "))
}

func TestBatchValidationErrorMessage(t *testing.T) {
	err := &BatchValidationError{Invalid: []WireTransaction{{ID: 9}}}
	assert.Equal(t, "Some transactions have invalid data", err.Error())
}
