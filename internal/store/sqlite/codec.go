package sqlite

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/agentstation/utc"
)

// Lists are stored as JSON TEXT; timestamps as RFC 3339 TEXT with '' for zero.

func encodeList(list []string) (string, error) {
	if list == nil {
		list = []string{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return "", fmt.Errorf("sqlite: encode list: %w", err)
	}
	return string(b), nil
}

func decodeList(s string) ([]string, error) {
	if s == "" {
		return []string{}, nil
	}
	var list []string
	if err := json.Unmarshal([]byte(s), &list); err != nil {
		return nil, fmt.Errorf("sqlite: decode list: %w", err)
	}
	if list == nil {
		list = []string{}
	}
	return list, nil
}

func encodeTime(t utc.Time) string {
	if t.Time.IsZero() {
		return ""
	}
	return t.Time.UTC().Format(time.RFC3339Nano)
}

func decodeTime(s string) (utc.Time, error) {
	if s == "" {
		return utc.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return utc.Time{}, fmt.Errorf("sqlite: decode time %q: %w", s, err)
	}
	return utc.New(t), nil
}
