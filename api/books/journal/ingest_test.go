package journal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func journalRow(ref, date, particulars, drCr string, amount interface{}) map[string]interface{} {
	return map[string]interface{}{
		"Reference No": ref,
		"Date":         date,
		"Particulars":  particulars,
		"Dr/Cr":        drCr,
		"Amount":       amount,
	}
}

func TestResolveRowsMissingFieldAbortsBatch(t *testing.T) {
	in := IngestInput{
		Owner:   "user@example.com",
		Company: "Acme",
		Rows: []map[string]interface{}{
			journalRow("REF-1", "2024-01-10", "Cash", "Dr", 100.0),
			{
				"Reference No": "REF-2",
				"Date":         "2024-01-11",
				"Dr/Cr":        "Cr",
				"Amount":       50.0,
			},
		},
	}
	_, _, err := ResolveRows(in, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `Missing field "Particulars" in row 2`)
}

func TestResolveRowsZeroCountsAsMissing(t *testing.T) {
	in := IngestInput{
		Owner:   "user@example.com",
		Company: "Acme",
		Rows: []map[string]interface{}{
			journalRow("REF-1", "2024-01-10", "Cash", "Dr", 0.0),
		},
	}
	_, _, err := ResolveRows(in, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `Missing field "Amount" in row 1`)
}

func TestResolveRowsReferenceGroupPropagation(t *testing.T) {
	first := journalRow("REF-1", "2024-01-10", "Cash", "Dr", 100.0)
	first["Journal No"] = "J-77"
	second := journalRow("REF-1", "2024-02-20", "Sales", "Cr", 100.0)
	second["Journal No"] = "J-99"
	third := journalRow("REF-2", "2024-03-05", "Rent", "Dr", 40.0)

	in := IngestInput{
		Owner:   "user@example.com",
		Company: "Acme",
		Rows:    []map[string]interface{}{first, second, third},
	}
	rows, _, err := ResolveRows(in, nil)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// The first row seen for REF-1 fixes journal number and date for the group.
	assert.Equal(t, "2024-01-10", rows[0].Date)
	assert.Equal(t, "2024-01-10", rows[1].Date)
	require.NotNil(t, rows[1].JournalNo)
	assert.Equal(t, "J-77", *rows[1].JournalNo)

	// Other reference numbers are untouched.
	assert.Equal(t, "2024-03-05", rows[2].Date)
	assert.Nil(t, rows[2].JournalNo)
}

func TestResolveRowsInvalidLedgersAdvisoryAndDeduped(t *testing.T) {
	catalog := map[string]struct{}{"cash": {}, "sales": {}}
	in := IngestInput{
		Owner:   "user@example.com",
		Company: "Acme",
		Rows: []map[string]interface{}{
			journalRow("R1", "2024-01-10", "Cash", "Dr", 10.0),
			journalRow("R2", "2024-01-10", "Mystery Ledger", "Cr", 10.0),
			journalRow("R3", "2024-01-10", "Mystery Ledger", "Dr", 20.0),
			journalRow("R4", "2024-01-10", "Another Unknown", "Cr", 20.0),
		},
	}
	rows, invalid, err := ResolveRows(in, catalog)
	require.NoError(t, err)
	assert.Len(t, rows, 4)
	assert.Equal(t, []string{"Mystery Ledger", "Another Unknown"}, invalid)
}

func TestResolveRowsLedgerMatchIsCaseInsensitive(t *testing.T) {
	catalog := map[string]struct{}{"cash in hand": {}}
	in := IngestInput{
		Owner:   "user@example.com",
		Company: "Acme",
		Rows: []map[string]interface{}{
			journalRow("R1", "2024-01-10", "  Cash In Hand  ", "Dr", 10.0),
		},
	}
	_, invalid, err := ResolveRows(in, catalog)
	require.NoError(t, err)
	assert.Empty(t, invalid)
}

func TestResolveRowsNegativeAmountRejected(t *testing.T) {
	in := IngestInput{
		Owner:   "user@example.com",
		Company: "Acme",
		Rows: []map[string]interface{}{
			journalRow("R1", "2024-01-10", "Cash", "Dr", -45.5),
		},
	}
	_, _, err := ResolveRows(in, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Negative amount")
	assert.Contains(t, err.Error(), "row 1")
}

func TestResolveRowsInvalidAmountRejected(t *testing.T) {
	in := IngestInput{
		Owner:   "user@example.com",
		Company: "Acme",
		Rows: []map[string]interface{}{
			journalRow("R1", "2024-01-10", "Cash", "Dr", "12abc"),
		},
	}
	_, _, err := ResolveRows(in, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid amount")
}

func TestResolveRowsWithItems(t *testing.T) {
	row := journalRow("R1", "2024-01-10", "Inventory", "Dr", 500.0)
	row["Name Of Item"] = "Widget"
	row["Quantity"] = "10"
	row["Rate"] = "50.00"

	in := IngestInput{
		Owner:     "user@example.com",
		Company:   "Acme",
		WithItems: true,
		Rows:      []map[string]interface{}{row},
	}
	rows, _, err := ResolveRows(in, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].NameOfItem)
	assert.Equal(t, "Widget", *rows[0].NameOfItem)
	require.NotNil(t, rows[0].Quantity)
	assert.Equal(t, "10", *rows[0].Quantity)
	require.NotNil(t, rows[0].Rate)
	assert.Equal(t, "50", *rows[0].Rate)
}

func TestResolveRowsWithItemsBadQuantity(t *testing.T) {
	row := journalRow("R1", "2024-01-10", "Inventory", "Dr", 500.0)
	row["Name Of Item"] = "Widget"
	row["Quantity"] = "ten"
	row["Rate"] = "50"

	in := IngestInput{
		Owner:     "user@example.com",
		Company:   "Acme",
		WithItems: true,
		Rows:      []map[string]interface{}{row},
	}
	_, _, err := ResolveRows(in, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"Quantity"`)
}

func TestResolveRowsBankingMode(t *testing.T) {
	in := IngestInput{
		Owner:       "user@example.com",
		Company:     "Acme",
		Mode:        ModeBanking,
		BankAccount: "HDFC-001",
		Rows: []map[string]interface{}{
			{
				"Date":        "15/03/2024",
				"Description": "  NEFT transfer  ",
				"Amount":      1250.75,
				"Type":        "credit",
			},
		},
	}
	rows, invalid, err := ResolveRows(in, nil)
	require.NoError(t, err)
	assert.Empty(t, invalid)
	require.Len(t, rows, 1)
	assert.Equal(t, "2024-03-15", rows[0].Date)
	assert.Equal(t, "NEFT transfer", rows[0].Description)
	assert.Equal(t, "credit", rows[0].TransactionType)
	assert.Equal(t, "HDFC-001", rows[0].BankAccount)
	assert.Equal(t, "1250.75", rows[0].Amount.String())
}

func TestInsertStagedRowSQLSetsInitialStatus(t *testing.T) {
	// New rows carry the initial lifecycle status explicitly.
	assert.Contains(t, insertStagedRowSQL, "status")
	assert.Contains(t, insertStagedRowSQL, "$17")
}

func TestFieldPresentFalsySemantics(t *testing.T) {
	assert.False(t, fieldPresent(nil))
	assert.False(t, fieldPresent(""))
	assert.False(t, fieldPresent(0.0))
	assert.False(t, fieldPresent(0))
	assert.False(t, fieldPresent(false))
	assert.True(t, fieldPresent("0 but set"))
	assert.True(t, fieldPresent(0.5))
	assert.True(t, fieldPresent(true))
}
