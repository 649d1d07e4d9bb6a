package sheet

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// ParseExcelDateTime converts an Excel serial number to a time. Serials before
// 1900-03-01 are shifted by a day to skip Excel's phantom 1900-02-29.
func ParseExcelDateTime(serialNumber float64, date1904 bool) time.Time {
	excelEpoch := time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
	if date1904 {
		excelEpoch = time.Date(1904, 1, 1, 0, 0, 0, 0, time.UTC)
	} else if serialNumber < 61 {
		excelEpoch = time.Date(1899, 12, 31, 0, 0, 0, 0, time.UTC)
	}
	// round to the millisecond so 0.99999999 of a day does not fall back a date
	ms := math.Round(serialNumber * float64(24*time.Hour/time.Millisecond))
	return excelEpoch.Add(time.Duration(ms) * time.Millisecond)
}

// FormatNumber is the default textual form of a float: shortest
// representation, no exponent, no trailing ".0".
func FormatNumber(num float64) string {
	return strconv.FormatFloat(num, 'f', -1, 64)
}

// IsDateFormat reports whether a number format renders a date or time.
// Built-in ids follow ECMA-376 18.8.30 plus the CJK date ids.
func IsDateFormat(numFmtID int, custom string) bool {
	switch {
	case numFmtID >= 14 && numFmtID <= 22,
		numFmtID >= 27 && numFmtID <= 36,
		numFmtID >= 45 && numFmtID <= 47,
		numFmtID >= 50 && numFmtID <= 58:
		return true
	}
	if custom == "" {
		return false
	}
	return isDateFormatCode(custom)
}

func isDateFormatCode(code string) bool {
	// only the first (positive) section decides
	if i := strings.IndexByte(code, ';'); i >= 0 {
		code = code[:i]
	}
	lower := strings.ToLower(code)
	if lower == "general" || lower == "@" {
		return false
	}

	inQuote := false
	inBracket := false
	for i := 0; i < len(lower); i++ {
		ch := lower[i]
		switch {
		case inQuote:
			if ch == '"' {
				inQuote = false
			}
		case inBracket:
			if ch == ']' {
				inBracket = false
			}
		case ch == '"':
			inQuote = true
		case ch == '[':
			// [h], [mm], [ss] are elapsed time, still a date/time format
			if strings.HasPrefix(lower[i:], "[h") || strings.HasPrefix(lower[i:], "[m") || strings.HasPrefix(lower[i:], "[s") {
				return true
			}
			inBracket = true
		case ch == '\\' || ch == '_' || ch == '*':
			i++ // escaped or padding character
		case ch == 'y' || ch == 'd' || ch == 'm' || ch == 'h' || ch == 's':
			return true
		}
	}
	return false
}
