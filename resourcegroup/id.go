package resourcegroup

import "strings"

// ID is the structural identifier of a group: an ordered sequence of
// name segments from the root to the group itself. Two IDs are equal
// iff their segments are equal, regardless of how they were built.
type ID struct {
	segments []string
}

// RootID returns the ID of a root group with the given name.
func RootID(name string) ID {
	return ID{segments: []string{name}}
}

// Child returns the ID of a sub-group named name under this ID.
func (id ID) Child(name string) ID {
	segments := make([]string, len(id.segments)+1)
	copy(segments, id.segments)
	segments[len(id.segments)] = name
	return ID{segments: segments}
}

// Name returns the last segment of the ID.
func (id ID) Name() string {
	if len(id.segments) == 0 {
		return ""
	}
	return id.segments[len(id.segments)-1]
}

// Equal reports whether id and other name the same group.
func (id ID) Equal(other ID) bool {
	if len(id.segments) != len(other.segments) {
		return false
	}
	for i, s := range id.segments {
		if s != other.segments[i] {
			return false
		}
	}
	return true
}

// String renders the ID as a dotted path, e.g. "root.batch.adhoc".
func (id ID) String() string {
	return strings.Join(id.segments, ".")
}
