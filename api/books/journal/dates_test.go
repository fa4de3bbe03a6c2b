package journal

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDateISOPassthrough(t *testing.T) {
	got, err := NormalizeDate("2024-01-13", 1)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-13", got)
}

func TestNormalizeDateDashDayMonthYear(t *testing.T) {
	got, err := NormalizeDate("31-12-2023", 1)
	require.NoError(t, err)
	assert.Equal(t, "2023-12-31", got)
}

func TestNormalizeDateDashFlipsWhenMiddleExceedsTwelve(t *testing.T) {
	// 01-13-2024 cannot be day-month, so it reads as January 13th.
	got, err := NormalizeDate("01-13-2024", 1)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-13", got)
}

func TestNormalizeDateSlashDayMonthYear(t *testing.T) {
	got, err := NormalizeDate("05/04/2024", 1)
	require.NoError(t, err)
	assert.Equal(t, "2024-04-05", got)
}

func TestNormalizeDateSlashMonthDayYear(t *testing.T) {
	// Second segment 13 cannot be a month, so the first segment is the month.
	got, err := NormalizeDate("01/13/2024", 1)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-13", got)
}

func TestNormalizeDateSlashDayFirst(t *testing.T) {
	got, err := NormalizeDate("13/01/2024", 1)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-13", got)
}

func TestNormalizeDateTwoDigitYear(t *testing.T) {
	got, err := NormalizeDate("01/02/23", 1)
	require.NoError(t, err)
	assert.Equal(t, "2023-02-01", got)
}

func TestNormalizeDateExcelSerial(t *testing.T) {
	got, err := NormalizeDate(float64(45000), 1)
	require.NoError(t, err)
	assert.Equal(t, "2023-03-15", got)

	got, err = NormalizeDate(float64(25569), 1)
	require.NoError(t, err)
	assert.Equal(t, "1970-01-01", got)
}

func TestNormalizeDateJSONNumberSerial(t *testing.T) {
	got, err := NormalizeDate(json.Number("45000"), 1)
	require.NoError(t, err)
	assert.Equal(t, "2023-03-15", got)
}

func TestNormalizeDateRejectsImpossibleParts(t *testing.T) {
	cases := []string{
		"32-01-2024", // day out of range
		"13-13-2024", // both segments month-sized failures
		"00/05/2024", // zero day
		"05/00/2024", // zero month
		"1/2",        // too few segments
		"yesterday",  // no separator at all
	}
	for _, c := range cases {
		_, err := NormalizeDate(c, 3)
		assert.Errorf(t, err, "expected %q to be rejected", c)
	}
}

func TestNormalizeDateErrorNamesRow(t *testing.T) {
	_, err := NormalizeDate("garbage", 7)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 7")
	assert.Contains(t, err.Error(), "garbage")
}

func TestNormalizeDateRejectsUnsupportedType(t *testing.T) {
	_, err := NormalizeDate([]string{"2024-01-01"}, 1)
	assert.Error(t, err)
}
