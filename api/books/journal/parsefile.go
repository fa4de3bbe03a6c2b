package journal

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"TallyBridge/api/constants"
)

func getFileExt(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

// ParseSpreadsheet reads an uploaded spreadsheet into ordered row maps keyed
// by the header row. Supports .xlsx, legacy .xls and .csv.
func ParseSpreadsheet(file io.Reader, filename string) ([]map[string]interface{}, error) {
	switch getFileExt(filename) {
	case ".csv":
		records, err := csv.NewReader(file).ReadAll()
		if err != nil {
			return nil, err
		}
		return rowsToMaps(records)
	case ".xlsx":
		f, err := excelize.OpenReader(file)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		sheet := f.GetSheetName(0)
		records, err := f.GetRows(sheet)
		if err != nil {
			return nil, err
		}
		return rowsToMaps(records)
	case ".xls":
		raw, err := io.ReadAll(file)
		if err != nil {
			return nil, err
		}
		wb, err := xls.OpenReader(bytes.NewReader(raw), "utf-8")
		if err != nil {
			return nil, err
		}
		sheet := wb.GetSheet(0)
		if sheet == nil {
			return nil, errors.New(constants.ErrEmptyFile)
		}
		records := make([][]string, 0, int(sheet.MaxRow)+1)
		for i := 0; i <= int(sheet.MaxRow); i++ {
			row := sheet.Row(i)
			if row == nil {
				continue
			}
			cells := make([]string, 0, row.LastCol())
			for j := 0; j < row.LastCol(); j++ {
				cells = append(cells, row.Col(j))
			}
			records = append(records, cells)
		}
		return rowsToMaps(records)
	}
	return nil, errors.New(constants.ErrInvalidFileFormat)
}

// rowsToMaps turns a header row plus data rows into ordered maps. Cells past
// the header width are dropped; short rows leave the trailing headers unset.
func rowsToMaps(records [][]string) ([]map[string]interface{}, error) {
	if len(records) < 2 {
		return nil, errors.New(constants.ErrEmptyFile)
	}
	header := records[0]
	out := make([]map[string]interface{}, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(map[string]interface{}, len(header))
		empty := true
		for j, h := range header {
			h = strings.TrimSpace(h)
			if h == "" || j >= len(rec) {
				continue
			}
			if strings.TrimSpace(rec[j]) != "" {
				empty = false
			}
			row[h] = rec[j]
		}
		if empty {
			continue
		}
		out = append(out, row)
	}
	if len(out) == 0 {
		return nil, errors.New(constants.ErrEmptyFile)
	}
	return out, nil
}
