package store

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// Collection is a typed view of one named array in the Store.
type Collection[T any] struct {
	store *Store
	key   string
}

func NewCollection[T any](s *Store, key string) *Collection[T] {
	return &Collection[T]{store: s, key: key}
}

func (c *Collection[T]) Key() string { return c.key }

// Exists reports whether the collection has ever been written.
func (c *Collection[T]) Exists() bool {
	_, ok, err := c.store.backend.Get(c.key)
	return err == nil && ok
}

type rawRecord = map[string]json.RawMessage

func (c *Collection[T]) readRaw() ([]rawRecord, error) {
	data, ok, err := c.store.read(c.key)
	if err != nil {
		return nil, err
	}
	if !ok || string(data) == "null" {
		return []rawRecord{}, nil
	}
	var records []rawRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", c.key, ErrCorrupted, err)
	}
	return records, nil
}

func (c *Collection[T]) writeRaw(records []rawRecord) error {
	return c.store.write(c.key, records)
}

// Load returns every valid record in stored order. A missing or unreadable
// collection yields an empty slice; individual invalid records are skipped.
func (c *Collection[T]) Load() []T {
	records, err := c.readRaw()
	if err != nil {
		c.store.logf("Error loading %s: %v", c.key, err)
		return []T{}
	}
	out := make([]T, 0, len(records))
	for i, r := range records {
		rec, err := decode[T](r)
		if err != nil {
			c.store.logf("Skipping record %d of %s: %v", i, c.key, err)
			continue
		}
		out = append(out, rec)
	}
	return out
}

// Find returns the first record, in stored order, matching pred.
func (c *Collection[T]) Find(pred func(T) bool) (T, bool) {
	for _, rec := range c.Load() {
		if pred(rec) {
			return rec, true
		}
	}
	var zero T
	return zero, false
}

// Append adds record to the end of the collection and reports any failure.
func (c *Collection[T]) Append(record T) error {
	encoded, err := encode(record)
	if err != nil {
		return err
	}
	records, err := c.readRaw()
	if err != nil {
		return err
	}
	return c.writeRaw(append(records, encoded))
}

// Save is the fail-soft form of Append: it always returns record.
func (c *Collection[T]) Save(record T) T {
	if err := c.Append(record); err != nil {
		c.store.logf("Error saving to %s: %v", c.key, err)
	}
	return record
}

// Update shallow-merges fields into the record whose "id" equals id.
func (c *Collection[T]) Update(id string, fields map[string]any) *T {
	return c.UpdateBy("id", id, fields)
}

// UpdateBy shallow-merges fields into the first record whose idField equals id
// and returns the merged record, or nil when nothing matched or the write failed.
func (c *Collection[T]) UpdateBy(idField, id string, fields map[string]any) *T {
	updated, err := c.update(idField, id, fields)
	if err != nil {
		c.store.logf("Error updating %s: %v", c.key, err)
		return nil
	}
	return updated
}

func (c *Collection[T]) update(idField, id string, fields map[string]any) (*T, error) {
	records, err := c.readRaw()
	if err != nil {
		return nil, err
	}
	for i, r := range records {
		if !fieldEquals(r, idField, id) {
			continue
		}
		merged, err := merge(r, fields)
		if err != nil {
			return nil, err
		}
		rec, err := decode[T](merged)
		if err != nil {
			return nil, err
		}
		records[i] = merged
		if err := c.writeRaw(records); err != nil {
			return nil, err
		}
		return &rec, nil
	}
	return nil, nil
}

// Delete removes every record whose "id" equals id.
func (c *Collection[T]) Delete(id string) {
	c.DeleteBy("id", id)
}

// DeleteBy removes every record whose idField equals id. Nothing matching is
// not an error.
func (c *Collection[T]) DeleteBy(idField, id string) {
	records, err := c.readRaw()
	if err != nil {
		c.store.logf("Error deleting from %s: %v", c.key, err)
		return
	}
	kept := records[:0]
	for _, r := range records {
		if !fieldEquals(r, idField, id) {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(records) {
		return
	}
	if err := c.writeRaw(kept); err != nil {
		c.store.logf("Error deleting from %s: %v", c.key, err)
	}
}

// Upsert shallow-merges record into the first record whose matchField equals
// matchValue, or appends it when none does. It always returns record.
func (c *Collection[T]) Upsert(record T, matchField string, matchValue any) T {
	if err := c.upsert(record, matchField, matchValue); err != nil {
		c.store.logf("Error upserting to %s: %v", c.key, err)
	}
	return record
}

func (c *Collection[T]) upsert(record T, matchField string, matchValue any) error {
	encoded, err := encode(record)
	if err != nil {
		return err
	}
	records, err := c.readRaw()
	if err != nil {
		return err
	}
	for i, r := range records {
		if fieldEquals(r, matchField, matchValue) {
			for k, v := range encoded {
				r[k] = v
			}
			if _, err := decode[T](r); err != nil {
				return err
			}
			records[i] = r
			return c.writeRaw(records)
		}
	}
	return c.writeRaw(append(records, encoded))
}

// Check validates records the way Replace would, without writing anything.
func (c *Collection[T]) Check(records []T) error {
	for i, rec := range records {
		if _, err := encode(rec); err != nil {
			return fmt.Errorf("%s record %d: %w", c.key, i, err)
		}
	}
	return nil
}

// Replace overwrites the whole collection with records.
func (c *Collection[T]) Replace(records []T) error {
	out := make([]rawRecord, 0, len(records))
	for _, rec := range records {
		encoded, err := encode(rec)
		if err != nil {
			return err
		}
		out = append(out, encoded)
	}
	if err := c.writeRaw(out); err != nil {
		c.store.logf("Error replacing %s: %v", c.key, err)
		return err
	}
	return nil
}

func encode[T any](record T) (rawRecord, error) {
	if err := Validate(record); err != nil {
		return nil, err
	}
	b, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}
	var r rawRecord
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("record does not encode as a JSON object: %w", err)
	}
	return r, nil
}

func decode[T any](r rawRecord) (T, error) {
	var rec T
	b, err := json.Marshal(r)
	if err != nil {
		return rec, err
	}
	if err := json.Unmarshal(b, &rec); err != nil {
		return rec, err
	}
	if err := Validate(rec); err != nil {
		return rec, err
	}
	return rec, nil
}

func merge(r rawRecord, fields map[string]any) (rawRecord, error) {
	merged := make(rawRecord, len(r)+len(fields))
	for k, v := range r {
		merged[k] = v
	}
	for k, v := range fields {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		merged[k] = b
	}
	return merged, nil
}

func fieldEquals(r rawRecord, field string, want any) bool {
	raw, ok := r[field]
	if !ok {
		return false
	}
	var got any
	if err := json.Unmarshal(raw, &got); err != nil {
		return false
	}
	b, err := json.Marshal(want)
	if err != nil {
		return false
	}
	var norm any
	if err := json.Unmarshal(b, &norm); err != nil {
		return false
	}
	return reflect.DeepEqual(got, norm)
}
