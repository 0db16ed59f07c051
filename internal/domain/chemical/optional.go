package chemical

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Optional is a value that is either present or absent. Absent is distinct
// from the zero value of T: Some(0) is present, None[int64]() is not.
type Optional[T comparable] struct {
	value T
	ok    bool
}

// Some wraps v as a present value.
func Some[T comparable](v T) Optional[T] {
	return Optional[T]{value: v, ok: true}
}

// None returns an absent value.
func None[T comparable]() Optional[T] {
	return Optional[T]{}
}

// Present reports whether a value is held.
func (o Optional[T]) Present() bool { return o.ok }

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) { return o.value, o.ok }

// OrElse returns the held value, or def when absent.
func (o Optional[T]) OrElse(def T) T {
	if o.ok {
		return o.value
	}
	return def
}

// Or returns o when present, otherwise other.
func (o Optional[T]) Or(other Optional[T]) Optional[T] {
	if o.ok {
		return o
	}
	return other
}

func (o Optional[T]) String() string {
	if !o.ok {
		return "<absent>"
	}
	return fmt.Sprint(o.value)
}

// MarshalJSON encodes an absent value as null.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.ok {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

// UnmarshalJSON decodes null as absent.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = Optional[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}

// OptionalFromPtr converts a nullable pointer (e.g. a scanned SQL column).
func OptionalFromPtr[T comparable](p *T) Optional[T] {
	if p == nil {
		return None[T]()
	}
	return Some(*p)
}

// Ptr converts back to a nullable pointer.
func (o Optional[T]) Ptr() *T {
	if !o.ok {
		return nil
	}
	v := o.value
	return &v
}

//Personal.AI order the ending
