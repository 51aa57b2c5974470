package data

import (
	"strings"
)

// ----------------------------------------------------------------------------
// Paths

// This section implements the separator-delimited paths used to address both
// nested map entries ("memory.user.name", separator '.') and files on disk
// ("/usr/local", separator '/').
//
// A path is immutable: every operation that changes the shape (Parent, Join,
// Normalize) returns a new value. Segmentation keeps empty segments produced
// by adjacent separators, so "a..b" has three segments and "" has none.
type Path struct {
	raw       string   // The original path string, unchanged
	separator byte     // Separator character ('.' for variables, '/' for files)
	segments  []string // The decomposed segments, adjacent separators yield empty ones
}

// Initializes and returns a path over 'raw' split on 'separator'.
func NewPath(raw string, separator byte) Path {
	path := Path{raw: raw, separator: separator}
	if raw != "" {
		path.segments = strings.Split(raw, string(separator))
	}
	return path
}

// Initializes a variable path, the '.'-separated form used for memory access.
func NewVariablePath(raw string) Path {
	return NewPath(raw, '.')
}

// Initializes a file path, the '/'-separated form used for store files.
func NewFilePath(raw string) Path {
	return NewPath(raw, '/')
}

// Returns the original path string.
func (p Path) String() string {
	return p.raw
}

// Returns the separator character the path was split on.
func (p Path) Separator() byte {
	return p.separator
}

// Returns the number of segments ("" has zero, "a.b" has two).
func (p Path) Count() int {
	return len(p.segments)
}

// Returns the segment at 'index', reporting false when out of range.
func (p Path) Segment(index int) (string, bool) {
	if index < 0 || index >= len(p.segments) {
		return "", false
	}
	return p.segments[index], true
}

// Returns the first segment, reporting false on an empty path.
func (p Path) Root() (string, bool) {
	if len(p.segments) == 0 {
		return "", false
	}
	return p.segments[0], true
}

// Returns the path made of every segment but the last. Paths with fewer than
// two segments have no parent (".a.b" parents to ".a", "a.b." to "a.b").
func (p Path) Parent() (Path, bool) {
	if len(p.segments) <= 1 {
		return Path{}, false
	}

	joined := strings.Join(p.segments[:len(p.segments)-1], string(p.separator))
	return NewPath(joined, p.separator), true
}

// Reports whether the path starts with 'prefix' segment-wise: "memoryx" does
// NOT start with "memory" even though the strings share a byte prefix.
func (p Path) StartsWith(prefix string) bool {
	other := NewPath(prefix, p.separator)
	if len(other.segments) > len(p.segments) {
		return false
	}

	for i, segment := range other.segments {
		if p.segments[i] != segment {
			return false
		}
	}
	return true
}

// Returns a new path with 'suffix' appended after a separator. An empty
// suffix copies the base, an empty base yields just the suffix.
func (p Path) Join(suffix string) Path {
	if suffix == "" {
		return NewPath(p.raw, p.separator)
	}
	if p.raw == "" {
		return NewPath(suffix, p.separator)
	}

	return NewPath(p.raw+string(p.separator)+suffix, p.separator)
}

// Returns a copy with empty interior segments dropped. A single leading
// empty segment is preserved, it marks absolute file paths like "/usr".
func (p Path) Normalize() Path {
	kept := []string{}
	for i, segment := range p.segments {
		if segment != "" || (i == 0 && len(p.segments) > 1) {
			kept = append(kept, segment)
		}
	}

	return NewPath(strings.Join(kept, string(p.separator)), p.separator)
}

// Returns the substring after the first separator ("memory.a.b" yields
// "a.b"). Reports false with fewer than two segments or an empty suffix
// ("memory." has no valid suffix).
func (p Path) SuffixAfterRoot() (string, bool) {
	if len(p.segments) < 2 {
		return "", false
	}

	index := strings.IndexByte(p.raw, p.separator)
	if index < 0 || index+1 >= len(p.raw) {
		return "", false
	}
	return p.raw[index+1:], true
}

// Reports whether the path addresses the agent's mutable memory map.
func (p Path) IsMemory() bool {
	return p.StartsWith("memory")
}

// Reports whether the path addresses the read-only context map.
func (p Path) IsContext() bool {
	return p.StartsWith("context")
}

// Reports whether the path addresses the message being processed.
func (p Path) IsMessage() bool {
	return p.StartsWith("message")
}
