package types

import (
	"encoding/json"
	"strings"
)

// FlexList is a slice that can be unmarshaled from either a single JSON value or a JSON array.
// A comma separated string is split into its trimmed parts.
type FlexList[T any] []T

// UnmarshalJSON implements the json.Unmarshaler interface.
func (f *FlexList[T]) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*f = nil
		return nil
	}

	if data[0] == '[' {
		var slice []T
		if err := json.Unmarshal(data, &slice); err != nil {
			return err
		}
		*f = FlexList[T](slice)
		return nil
	}

	// "Vegan, Gluten-Free" style strings, as submitted by plain form posts
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		var out FlexList[T]
		for _, part := range strings.Split(s, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			raw, _ := json.Marshal(part)
			var item T
			if err := json.Unmarshal(raw, &item); err != nil {
				return err
			}
			out = append(out, item)
		}
		*f = out
		return nil
	}

	var item T
	if err := json.Unmarshal(data, &item); err != nil {
		return err
	}
	*f = FlexList[T]{item}
	return nil
}

// Slice converts FlexList[T] back to []T.
func (f FlexList[T]) Slice() []T {
	return []T(f)
}
