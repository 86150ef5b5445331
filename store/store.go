// Package store persists parsed series records.
//
// Both backends keep one row per series with a completeness flag plus one
// value per field. A record written by the field path is partial; GetSeries
// only returns records that were stored complete at least once.
package store

import (
	"encoding/json"
	"fmt"
	"strings"
)

func encodeValue(v any) (string, error) {
	switch v.(type) {
	case string, []string:
	default:
		return "", fmt.Errorf("unsupported field value type %T", v)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeValue(raw string) (any, error) {
	if strings.HasPrefix(raw, "[") {
		var list []string
		if err := json.Unmarshal([]byte(raw), &list); err != nil {
			return nil, err
		}
		if list == nil {
			list = []string{}
		}
		return list, nil
	}
	var s string
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, err
	}
	return s, nil
}
