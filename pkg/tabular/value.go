package tabular

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// AsString coerces any cell value to its string form. It is total: nil maps
// to the empty string, never an error. Numbers render without a trailing
// ".0" when integral so "42" and 42.0 compare equal after normalization.
func AsString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		if val == math.Trunc(val) && !math.IsInf(val, 0) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return AsString(float64(val))
	case time.Time:
		return val.Format(time.RFC3339)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}
