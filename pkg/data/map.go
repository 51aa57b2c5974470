package data

import (
	"strings"
)

// ----------------------------------------------------------------------------
// Map access

// This section implements the dotted-path convenience access on map values.
//
// 'Get' walks nested maps one segment at a time ("a.b.c" reads key "c" of the
// map stored under "b" of the map stored under "a"); 'Set' does the same but
// requires every interior map to already exist, it never auto-creates them.

// Returns a borrow of the value stored under 'path'. The path may be a plain
// key or a dotted chain of keys; nil is returned when any interior segment is
// missing or is not a map, or when the final key is absent.
func (v *Value) Get(path string) *Value {
	if v == nil || v.kind != Map {
		return nil
	}

	segments := strings.Split(path, ".")
	current := v
	for i, segment := range segments {
		if current == nil || current.kind != Map {
			return nil
		}

		next, found := current.entries.Get(segment)
		if !found {
			return nil
		}
		if i == len(segments)-1 {
			return next
		}
		current = next
	}
	return nil
}

// Stores 'item' under 'path', taking ownership of it. With a dotted path all
// interior maps must already exist; on any missing or non-map interior segment
// the call fails without mutating the map or claiming the item. A value
// already present under the final key is released and destroyed.
func (v *Value) Set(path string, item *Value) bool {
	if v == nil || v.kind != Map || item == nil || path == "" {
		return false
	}

	segments := strings.Split(path, ".")
	current := v
	for _, segment := range segments[:len(segments)-1] {
		next, found := current.entries.Get(segment)
		if !found || next.kind != Map {
			return false
		}
		current = next
	}

	if !item.Hold(current) {
		return false
	}

	key := segments[len(segments)-1]
	if previous, found := current.entries.Get(key); found {
		previous.Transfer(current)
		previous.Destroy()
	}
	current.entries.Set(key, item)
	return true
}

// Removes and returns the value stored under 'path', released back to
// unowned. Returns nil when the path does not resolve.
func (v *Value) Take(path string) *Value {
	if v == nil || v.kind != Map || path == "" {
		return nil
	}

	segments := strings.Split(path, ".")
	current := v
	for _, segment := range segments[:len(segments)-1] {
		next, found := current.entries.Get(segment)
		if !found || next.kind != Map {
			return nil
		}
		current = next
	}

	key := segments[len(segments)-1]
	item, found := current.entries.Get(key)
	if !found {
		return nil
	}

	current.entries.Delete(key)
	item.Transfer(current)
	return item
}

// Returns a freshly owned list of string values holding the map's keys in
// insertion order. An empty map yields an empty list; nil on tag mismatch.
func (v *Value) Keys() *Value {
	if v == nil || v.kind != Map {
		return nil
	}

	keys := NewList()
	for _, key := range v.entries.Keys() {
		keys.Append(NewString(key))
	}
	return keys
}
