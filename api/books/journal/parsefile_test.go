package journal

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseSpreadsheetCSV(t *testing.T) {
	csvData := "Reference No,Date,Particulars,Dr/Cr,Amount\n" +
		"R1,2024-01-10,Cash,Dr,100\n" +
		"R2,2024-01-11,Sales,Cr,100\n"
	rows, err := ParseSpreadsheet(strings.NewReader(csvData), "upload.csv")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "R1", rows[0]["Reference No"])
	assert.Equal(t, "Cash", rows[0]["Particulars"])
	assert.Equal(t, "100", rows[1]["Amount"])
}

func TestParseSpreadsheetCSVSkipsEmptyRows(t *testing.T) {
	csvData := "Date,Description,Amount,Type\n" +
		"2024-01-10,NEFT,100,credit\n" +
		",,,\n" +
		"2024-01-11,IMPS,200,debit\n"
	rows, err := ParseSpreadsheet(strings.NewReader(csvData), "bank.csv")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestParseSpreadsheetXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"Date", "Description", "Amount", "Type"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"2024-01-10", "NEFT transfer", "1250.75", "credit"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	rows, err := ParseSpreadsheet(buf, "statement.xlsx")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "NEFT transfer", rows[0]["Description"])
	assert.Equal(t, "credit", rows[0]["Type"])
}

func TestParseSpreadsheetRejectsUnknownExtension(t *testing.T) {
	_, err := ParseSpreadsheet(strings.NewReader("x"), "notes.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid file format")
}

func TestParseSpreadsheetHeaderOnlyIsEmpty(t *testing.T) {
	_, err := ParseSpreadsheet(strings.NewReader("Date,Amount\n"), "empty.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestRowsToMapsShortRowsLeaveTrailingHeadersUnset(t *testing.T) {
	rows, err := rowsToMaps([][]string{
		{"Date", "Description", "Amount"},
		{"2024-01-10", "NEFT"},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	_, ok := rows[0]["Amount"]
	assert.False(t, ok)
}

func TestRowsToMapsIgnoresBlankHeaders(t *testing.T) {
	rows, err := rowsToMaps([][]string{
		{"Date", "", "Amount"},
		{"2024-01-10", "stray", "100"},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Len(t, rows[0], 2)
}
