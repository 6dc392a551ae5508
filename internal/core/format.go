package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// FormatCell renders one row value for display or export. Values arrive
// as whatever the driver scanned, so the switch covers the plain Go types
// pgx produces for common column types plus the pgtype wrappers used for
// numerics and dates.
func FormatCell(v interface{}) string {
	if v == nil {
		return ""
	}

	switch val := v.(type) {
	case string:
		return val
	case bool:
		if val {
			return "Yes"
		}
		return "No"
	case int, int16, int32, int64:
		return fmt.Sprintf("%v", val)
	case float32, float64:
		s := fmt.Sprintf("%.2f", val)
		s = strings.TrimRight(s, "0")
		s = strings.TrimRight(s, ".")
		return s
	case time.Time:
		return val.Format("2006-01-02")

	case pgtype.Numeric:
		if !val.Valid {
			return ""
		}
		f, err := val.Float64Value()
		if err != nil || !f.Valid {
			return ""
		}
		if f.Float64 == float64(int64(f.Float64)) {
			return fmt.Sprintf("%.0f", f.Float64)
		}
		return fmt.Sprintf("%.2f", f.Float64)

	case pgtype.Date:
		if !val.Valid {
			return ""
		}
		return val.Time.Format("2006-01-02")

	case pgtype.Text:
		if !val.Valid {
			return ""
		}
		return val.String

	case pgtype.Bool:
		if !val.Valid {
			return ""
		}
		if val.Bool {
			return "Yes"
		}
		return "No"
	}

	return fmt.Sprintf("%v", v)
}
