package templating

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// Stringify renders a context value as template text.
// Strings, byte slices and Stringers render directly,
// maps and slices render as JSON, nil renders empty.
func Stringify(val interface{}) (string, error) {
	switch typed := val.(type) {
	case nil:
		return "", nil
	case string:
		return typed, nil
	case []byte:
		return string(typed), nil
	case fmt.Stringer:
		return typed.String(), nil
	case map[string]interface{}:
		if typed == nil {
			return "", nil
		}

		return marshal(typed)
	case bool, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return fmt.Sprint(typed), nil
	default:
		return marshal(typed)
	}
}

func marshal(val interface{}) (string, error) {
	by, err := json.Marshal(val)
	if err != nil {
		return "", fmt.Errorf("stringifying value: %w", err)
	}

	return string(by), nil
}
