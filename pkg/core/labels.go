package core

import "strings"

// LabelSet is an unordered set of text labels such as tags or categories.
// Insertion order is kept only so that serialized output stays stable.
type LabelSet []string

// NewLabelSet builds a set from labels, trimming whitespace and dropping
// blanks and repeats.
func NewLabelSet(labels ...string) LabelSet {
	var set LabelSet
	for _, l := range labels {
		set = set.Add(l)
	}
	return set
}

// Add returns the set with label included. Adding a label twice has no effect.
func (s LabelSet) Add(label string) LabelSet {
	label = strings.TrimSpace(label)
	if label == "" || s.Has(label) {
		return s
	}
	return append(s, label)
}

// Has reports whether label is a member of the set.
func (s LabelSet) Has(label string) bool {
	label = strings.TrimSpace(label)
	for _, l := range s {
		if l == label {
			return true
		}
	}
	return false
}

// Len returns the number of distinct labels.
func (s LabelSet) Len() int {
	return len(s)
}

// Equal reports whether both sets have the same members, regardless of order.
func (s LabelSet) Equal(other LabelSet) bool {
	if len(s) != len(other) {
		return false
	}
	for _, l := range s {
		if !other.Has(l) {
			return false
		}
	}
	return true
}
