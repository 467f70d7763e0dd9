package catalog

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// AsID converts a decoded column value into a row id. present is false for nil and empty values.
func AsID(v any) (int64, bool, error) {
	switch value := v.(type) {
	case nil:
		return 0, false, nil
	case int64:
		return value, true, nil
	case int:
		return int64(value), true, nil
	case int32:
		return int64(value), true, nil
	case float64:
		if value != math.Trunc(value) {
			return 0, false, fmt.Errorf("non-integer id %v", value)
		}
		return int64(value), true, nil
	case json.Number:
		id, err := value.Int64()
		if err != nil {
			return 0, false, fmt.Errorf("invalid id %q: %w", value, err)
		}
		return id, true, nil
	case string:
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			return 0, false, nil
		}
		id, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			return 0, false, fmt.Errorf("invalid id %q: %w", value, err)
		}
		return id, true, nil
	default:
		return 0, false, fmt.Errorf("unsupported id type %T", v)
	}
}
