package store

import (
	"encoding/json"
	"fmt"
)

// migrateLegacy lifts a bare version 1 value into the envelope layout. The
// data itself is unchanged; per-collection fixes are chained on top of it with
// WithMigration by the caller that knows the collections.
func migrateLegacy(_ string, data json.RawMessage) (json.RawMessage, error) {
	return data, nil
}

// Chain runs several migrations for the same version step in order.
func Chain(steps ...Migration) Migration {
	return func(key string, data json.RawMessage) (json.RawMessage, error) {
		var err error
		for _, step := range steps {
			if data, err = step(key, data); err != nil {
				return nil, err
			}
		}
		return data, nil
	}
}

// MapRecords applies fn to every object in a JSON array. Non-array data is
// returned untouched.
func MapRecords(data json.RawMessage, fn func(record map[string]any)) (json.RawMessage, error) {
	if len(data) == 0 || data[0] != '[' {
		return data, nil
	}
	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupted, err)
	}
	for _, r := range records {
		if r != nil {
			fn(r)
		}
	}
	return json.Marshal(records)
}
