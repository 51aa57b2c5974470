package data

import (
	"strconv"
)

// ----------------------------------------------------------------------------
// Copies and coercions

// Returns a fresh unowned deep copy of 'v'. Scalars copy their payload, maps
// and lists copy every contained value recursively (the copies are owned by
// the new collection, never by the original's owner).
func Copy(v *Value) *Value {
	if v == nil {
		return nil
	}

	switch v.kind {
	case Integer:
		return NewInteger(v.integer)
	case Double:
		return NewDouble(v.double)
	case String:
		return NewString(v.str)

	case List:
		duplicate := NewList()
		for _, item := range v.items {
			duplicate.Append(Copy(item))
		}
		return duplicate

	case Map:
		duplicate := NewMap()
		for _, key := range v.entries.Keys() {
			item, _ := v.entries.Get(key)
			duplicate.Set(key, Copy(item))
		}
		return duplicate
	}
	return nil
}

// Renders a scalar value as the string used for template substitution:
// integers in decimal, doubles in shortest round-trip form, strings as-is.
// Lists and maps are not coercible and report false.
func CoerceString(v *Value) (string, bool) {
	if v == nil {
		return "", false
	}

	switch v.kind {
	case Integer:
		return strconv.FormatInt(int64(v.integer), 10), true
	case Double:
		return strconv.FormatFloat(v.double, 'g', -1, 64), true
	case String:
		return v.str, true
	}
	return "", false
}
