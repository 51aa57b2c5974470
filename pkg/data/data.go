package data

import (
	"its-hmny.dev/agerun/pkg/utils"
)

// ----------------------------------------------------------------------------
// General information

// This section contains some general information about the AgeRun data model.
//
// Every runtime datum is a 'Value' carrying exactly one of five tags: integer,
// double, string, list or map. Collections (lists and maps) own their contained
// values transitively, and every value tracks a single owner token so that the
// runtime can enforce the one-owner discipline at the boundaries where values
// migrate between collections, evaluators and the agent registry:
// - a value may be destroyed only while unowned
// - inserting into a collection requires an unowned value (the collection
//   then becomes its owner), removing releases it back to unowned
// - reading from a collection yields a borrow, no ownership change

// Enum to manage the runtime tag carried by each 'Value'.
type Type string

const (
	Integer Type = "integer" // 32-bit signed integer
	Double  Type = "double"  // IEEE 754 double
	String  Type = "string"  // Owned byte string
	List    Type = "list"    // Ordered sequence of owned values
	Map     Type = "map"     // String-keyed, insertion-ordered map of owned values
)

// ----------------------------------------------------------------------------
// Values

// In memory representation of a single AgeRun runtime value.
//
// The struct is a tagged union: only the field matching 'kind' is meaningful.
// The 'owner' field holds an opaque token (any pointer identity will do, maps
// and lists use their own '*Value') or nil while the value is unowned.
type Value struct {
	kind Type

	integer int32
	double  float64
	str     string
	items   []*Value                            // List payload, insertion order significant
	entries *utils.OrderedMap[string, *Value]   // Map payload, insertion order tracked for enumeration

	owner any // nil = unowned, non-nil = owned by that token
}

// Initializes and returns a fresh unowned integer value.
func NewInteger(value int32) *Value {
	return &Value{kind: Integer, integer: value}
}

// Initializes and returns a fresh unowned double value.
func NewDouble(value float64) *Value {
	return &Value{kind: Double, double: value}
}

// Initializes and returns a fresh unowned string value.
func NewString(value string) *Value {
	return &Value{kind: String, str: value}
}

// Initializes and returns a fresh unowned empty list value.
func NewList() *Value {
	return &Value{kind: List}
}

// Initializes and returns a fresh unowned empty map value.
func NewMap() *Value {
	return &Value{kind: Map, entries: utils.NewOrderedMap[string, *Value]()}
}

// Returns the runtime tag of the value ("" on a nil value).
func (v *Value) Kind() Type {
	if v == nil {
		return ""
	}
	return v.kind
}

// Returns the integer payload, or 0 when the tag doesn't match.
func (v *Value) Integer() int32 {
	if v == nil || v.kind != Integer {
		return 0
	}
	return v.integer
}

// Returns the double payload, or 0.0 when the tag doesn't match.
func (v *Value) Double() float64 {
	if v == nil || v.kind != Double {
		return 0
	}
	return v.double
}

// Returns the string payload, or "" when the tag doesn't match.
func (v *Value) String() string {
	if v == nil || v.kind != String {
		return ""
	}
	return v.str
}

// ----------------------------------------------------------------------------
// Ownership

// Stamps the value with 'token' as its owner. Succeeds when the value is
// unowned or already held by the same token (hold is idempotent), fails
// when another owner is in place.
func (v *Value) Hold(token any) bool {
	if v == nil || token == nil {
		return false
	}

	if v.owner == nil || v.owner == token {
		v.owner = token
		return true
	}
	return false
}

// Releases the value back to unowned. Only the current owner may transfer;
// any other token is rejected.
func (v *Value) Transfer(token any) bool {
	if v == nil || token == nil {
		return false
	}

	if v.owner == token {
		v.owner = nil
		return true
	}
	return false
}

// Reports whether the value is currently held by some owner.
func (v *Value) Owned() bool {
	return v != nil && v.owner != nil
}

// Releases and destroys every owned child, then clears the value itself.
// Destroying a value that is still owned is a programmer error and is
// refused (returns false) without touching the children.
func (v *Value) Destroy() bool {
	if v == nil {
		return true
	}
	if v.owner != nil {
		return false
	}

	switch v.kind {
	case List:
		for _, item := range v.items {
			if item.owner == v {
				item.Transfer(v)
			}
			item.Destroy()
		}
		v.items = nil

	case Map:
		if v.entries != nil {
			for _, key := range v.entries.Keys() {
				item, _ := v.entries.Get(key)
				if item.owner == v {
					item.Transfer(v)
				}
				item.Destroy()
				v.entries.Delete(key)
			}
		}
	}

	v.str = ""
	return true
}

// ----------------------------------------------------------------------------
// Lists

// Appends 'item' to the list, taking ownership of it. Fails when the value
// is not a list or the item is nil or already owned elsewhere.
func (v *Value) Append(item *Value) bool {
	if v == nil || v.kind != List || item == nil {
		return false
	}
	if !item.Hold(v) {
		return false
	}

	v.items = append(v.items, item)
	return true
}

// Removes and returns the first list element, released back to unowned.
// Returns nil on an empty value or a tag mismatch.
func (v *Value) RemoveFirst() *Value {
	if v == nil || v.kind != List || len(v.items) == 0 {
		return nil
	}

	first := v.items[0]
	v.items = v.items[1:]
	first.Transfer(v)
	return first
}

// Returns a borrow of the first list element (nil when empty).
func (v *Value) First() *Value {
	if v == nil || v.kind != List || len(v.items) == 0 {
		return nil
	}
	return v.items[0]
}

// Returns a borrow of the last list element (nil when empty).
func (v *Value) Last() *Value {
	if v == nil || v.kind != List || len(v.items) == 0 {
		return nil
	}
	return v.items[len(v.items)-1]
}

// Returns the number of elements in a list or entries in a map, 0 otherwise.
func (v *Value) Count() int {
	if v == nil {
		return 0
	}

	switch v.kind {
	case List:
		return len(v.items)
	case Map:
		return v.entries.Count()
	}
	return 0
}

// Returns a borrow of the list element at 'index' (nil when out of range).
func (v *Value) Item(index int) *Value {
	if v == nil || v.kind != List || index < 0 || index >= len(v.items) {
		return nil
	}
	return v.items[index]
}
