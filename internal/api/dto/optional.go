package dto

import (
	"bytes"
	"encoding/json"
	"reflect"
)

// OptionalString distinguishes an absent JSON field from an explicit null.
// Set is true whenever the key was present; Value is nil for null.
type OptionalString struct {
	Set   bool
	Value *string
}

func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

// OptionalStringValue exposes the inner string to validator tags, so
// `validate:"omitempty,uuid"` checks a present, non-null value only.
func OptionalStringValue(field reflect.Value) any {
	if o, ok := field.Interface().(OptionalString); ok && o.Value != nil {
		return *o.Value
	}
	return ""
}
