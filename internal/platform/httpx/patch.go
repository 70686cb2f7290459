package httpx

import "encoding/json"

// Field carries one patchable request field and records whether the key was
// present in the body at all, and if present whether it was null. An absent
// field keeps the stored value; an explicit null clears a nullable column.
type Field[T any] struct {
	Set   bool
	Valid bool
	Value T
}

// UnmarshalJSON is only invoked for keys present in the body, which is what
// makes Set reliable.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if string(data) == "null" {
		f.Valid = false
		return nil
	}
	if err := json.Unmarshal(data, &f.Value); err != nil {
		return err
	}
	f.Valid = true
	return nil
}

// MarshalJSON keeps Field symmetric for logging and tests.
func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Set || !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}
