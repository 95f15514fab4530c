package family

import "github.com/emirpasic/gods/sets/linkedhashset"

// IDSet is an insertion-ordered set of member IDs.
type IDSet struct {
	s *linkedhashset.Set
}

func newIDSet() IDSet { return IDSet{s: linkedhashset.New()} }

// add inserts id and reports whether it was not already present.
func (s IDSet) add(id string) bool {
	if s.s.Contains(id) {
		return false
	}
	s.s.Add(id)
	return true
}

// Contains reports whether id is in the set.
func (s IDSet) Contains(id string) bool {
	return s.s != nil && s.s.Contains(id)
}

// Len returns the number of IDs in the set.
func (s IDSet) Len() int {
	if s.s == nil {
		return 0
	}
	return s.s.Size()
}

// IDs returns the members of the set in insertion order.
func (s IDSet) IDs() []string {
	if s.s == nil {
		return nil
	}
	values := s.s.Values()
	ids := make([]string, len(values))
	for i, v := range values {
		ids[i] = v.(string)
	}
	return ids
}

// First returns the earliest inserted ID, or "" and false for an empty set.
func (s IDSet) First() (string, bool) {
	if s.Len() == 0 {
		return "", false
	}
	return s.s.Values()[0].(string), true
}
