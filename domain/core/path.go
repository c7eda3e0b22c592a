package core

import (
	"sort"
	"strings"
)

// Path identifies a feature inside a dataset, possibly nested for
// struct-valued features. It is an immutable value: constructors copy
// their inputs and accessors return copies.
type Path struct {
	steps []string
}

// NewPath creates a path from individual steps.
func NewPath(steps ...string) Path {
	copied := make([]string, len(steps))
	copy(copied, steps)
	return Path{steps: copied}
}

// ParsePath parses the dotted serialization ("parent.child") used by the
// document formats. An empty string yields the empty path.
func ParsePath(s string) Path {
	if s == "" {
		return Path{}
	}
	return NewPath(strings.Split(s, ".")...)
}

// Steps returns a copy of the path steps.
func (p Path) Steps() []string {
	copied := make([]string, len(p.steps))
	copy(copied, p.steps)
	return copied
}

// String returns the dotted serialization of the path.
func (p Path) String() string {
	return strings.Join(p.steps, ".")
}

// IsEmpty reports whether the path has no steps.
func (p Path) IsEmpty() bool {
	return len(p.steps) == 0
}

// Len returns the number of steps.
func (p Path) Len() int {
	return len(p.steps)
}

// Child returns a new path with one more step appended.
func (p Path) Child(step string) Path {
	steps := make([]string, 0, len(p.steps)+1)
	steps = append(steps, p.steps...)
	steps = append(steps, step)
	return Path{steps: steps}
}

// Equal reports structural equality.
func (p Path) Equal(other Path) bool {
	return p.Compare(other) == 0
}

// Compare orders paths step-wise lexicographically, shorter prefix first.
// The total order makes every engine iteration deterministic.
func (p Path) Compare(other Path) int {
	for i := 0; i < len(p.steps) && i < len(other.steps); i++ {
		if p.steps[i] != other.steps[i] {
			if p.steps[i] < other.steps[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(p.steps) < len(other.steps):
		return -1
	case len(p.steps) > len(other.steps):
		return 1
	default:
		return 0
	}
}

// Less reports whether p sorts before other.
func (p Path) Less(other Path) bool {
	return p.Compare(other) < 0
}

// SortPaths sorts paths in place by their total order.
func SortPaths(paths []Path) {
	sort.Slice(paths, func(i, j int) bool { return paths[i].Less(paths[j]) })
}
