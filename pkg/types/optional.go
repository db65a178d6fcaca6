// Package types holds small value types shared by request decoding and
// service parameters.
package types

import (
	"bytes"
	"encoding/json"
)

// Optional distinguishes a field that was not provided from one explicitly
// set to null. The zero value is "not provided".
type Optional[T any] struct {
	Set   bool
	Value *T
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: &v}
}

func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

// IsNull reports whether the field was provided as null.
func (o Optional[T]) IsNull() bool {
	return o.Set && o.Value == nil
}

// Apply returns the new value when provided, otherwise current.
func (o Optional[T]) Apply(current *T) *T {
	if !o.Set {
		return current
	}
	return o.Value
}

// UnmarshalJSON is only invoked for keys present in the payload, which is
// what marks the field as provided.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.Value)
}
