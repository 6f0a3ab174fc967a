package normalize

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Display renders a raw vital-sign value the way it arrived, for reports.
// Missing values render as "N/A".
func Display(v any) string {
	switch x := v.(type) {
	case nil:
		return "N/A"
	case string:
		if strings.TrimSpace(x) == "" {
			return "N/A"
		}
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case json.Number:
		return string(x)
	case bool:
		return strconv.FormatBool(x)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return "N/A"
		}
		return string(b)
	}
}
