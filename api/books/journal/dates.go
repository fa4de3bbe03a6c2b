package journal

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"

	"TallyBridge/api/constants"
)

// Excel-style day serial for 1970-01-01.
const serialEpochOffset = 25569

var isoDateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// NormalizeDate converts a raw spreadsheet date value of unknown shape into a
// canonical YYYY-MM-DD string. Mixed-format files carry no format hint, so
// detection is heuristic and ordered; the precedence below is load-bearing
// and must not be reordered. rowNum is 1-based, used only for error context.
//
// Precedence:
//  1. already YYYY-MM-DD: accepted as-is
//  2. dash-separated, 3 segments: day-month-year, flipped to month-day-year
//     when the middle segment exceeds 12
//  3. slash-separated, 3 segments: month/day/year when the second segment
//     exceeds 12, else day/month/year
//  4. numeric: day-count serial (serial 25569 = 1970-01-01)
//
// Two-digit years expand by prefixing "20". Note that 03-04-2024 stays
// day-month by rule 2 even if the file was US-formatted; that ambiguity is
// inherent to hint-free detection.
func NormalizeDate(raw interface{}, rowNum int) (string, error) {
	switch v := raw.(type) {
	case string:
		return normalizeDateString(v, rowNum)
	case float64:
		return serialToISO(v), nil
	case int:
		return serialToISO(float64(v)), nil
	case int64:
		return serialToISO(float64(v)), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return "", dateError(raw, rowNum)
		}
		return serialToISO(f), nil
	}
	return "", dateError(raw, rowNum)
}

func normalizeDateString(s string, rowNum int) (string, error) {
	if isoDateRe.MatchString(s) {
		return s, nil
	}
	if strings.Contains(s, "-") {
		parts := strings.Split(s, "-")
		if len(parts) != 3 {
			return "", dateError(s, rowNum)
		}
		dd, mm, yyyy := parts[0], parts[1], parts[2]
		if n, err := strconv.Atoi(strings.TrimSpace(mm)); err == nil && n > 12 {
			// Middle segment cannot be a month, so the file is month-day-year.
			mm, dd = parts[0], parts[1]
		}
		return assembleDate(dd, mm, yyyy, s, rowNum)
	}
	if strings.Contains(s, "/") {
		parts := strings.Split(s, "/")
		if len(parts) != 3 {
			return "", dateError(s, rowNum)
		}
		var dd, mm, yyyy string
		if n, err := strconv.Atoi(strings.TrimSpace(parts[1])); err == nil && n > 12 {
			mm, dd, yyyy = parts[0], parts[1], parts[2]
		} else {
			dd, mm, yyyy = parts[0], parts[1], parts[2]
		}
		return assembleDate(dd, mm, yyyy, s, rowNum)
	}
	return "", dateError(s, rowNum)
}

func assembleDate(dd, mm, yyyy, raw string, rowNum int) (string, error) {
	dd = strings.TrimSpace(dd)
	mm = strings.TrimSpace(mm)
	yyyy = strings.TrimSpace(yyyy)
	if len(yyyy) == 2 {
		yyyy = "20" + yyyy
	}
	mN, err := strconv.Atoi(mm)
	if err != nil || mN < 1 || mN > 12 {
		return "", dateError(raw, rowNum)
	}
	dN, err := strconv.Atoi(dd)
	if err != nil || dN < 1 || dN > 31 {
		return "", dateError(raw, rowNum)
	}
	if _, err := strconv.Atoi(yyyy); err != nil {
		return "", dateError(raw, rowNum)
	}
	return yyyy + "-" + pad2(mN) + "-" + pad2(dN), nil
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

func serialToISO(serial float64) string {
	secs := int64((serial - serialEpochOffset) * 86400)
	return time.Unix(secs, 0).UTC().Format(constants.DateFormat)
}

func dateError(raw interface{}, rowNum int) error {
	return validationErrf(constants.ErrInvalidDateInRow, raw, rowNum)
}
