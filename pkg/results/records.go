package results

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Record is one stored JSON object.
type Record map[string]any

// Records is a JSON array of objects kept in a single file.
type Records struct {
	mu   sync.Mutex
	path string
}

// NewRecords returns a store backed by path. The file is created on the
// first Append.
func NewRecords(path string) *Records {
	return &Records{path: path}
}

// Append adds v, which must encode to a JSON object.
func (r *Records) Append(v any) error {
	rec, err := toRecord(v)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.load()
	if err != nil {
		return err
	}
	all = append(all, rec)

	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode records: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("failed to create records dir: %w", err)
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write records %s: %w", r.path, err)
	}
	return os.Rename(tmp, r.path)
}

// All returns every record in insertion order.
func (r *Records) All() ([]Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load()
}

// Search returns the records whose key field equals value exactly. Values
// are compared in their printed form, so a host id 7 matches "7".
func (r *Records) Search(key, value string) ([]Record, error) {
	all, err := r.All()
	if err != nil {
		return nil, err
	}
	var out []Record
	for _, rec := range all {
		v, ok := rec[key]
		if !ok {
			continue
		}
		if fmt.Sprint(v) == value {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *Records) load() ([]Record, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read records %s: %w", r.path, err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	var all []Record
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("failed to decode records %s: %w", r.path, err)
	}
	return all, nil
}

func toRecord(v any) (Record, error) {
	if rec, ok := v.(Record); ok {
		return rec, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("record is not a JSON object: %w", err)
	}
	return rec, nil
}
