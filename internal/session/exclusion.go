package session

import (
	"slices"
	"strings"
)

// ExclusionSet holds post IDs removed by the operator for the rest of the
// session. There is no removal operation and no eviction.
type ExclusionSet struct {
	ids map[string]struct{}
}

func NewExclusionSet(ids ...string) *ExclusionSet {
	s := &ExclusionSet{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		s.Add(id)
	}

	return s
}

// Add reports whether id was newly added.
func (s *ExclusionSet) Add(id string) bool {
	id = strings.TrimSpace(id)
	if id == "" {
		return false
	}

	if _, ok := s.ids[id]; ok {
		return false
	}

	s.ids[id] = struct{}{}

	return true
}

func (s *ExclusionSet) Contains(id string) bool {
	if s == nil {
		return false
	}

	_, ok := s.ids[strings.TrimSpace(id)]

	return ok
}

func (s *ExclusionSet) Len() int {
	if s == nil {
		return 0
	}

	return len(s.ids)
}

// IDs returns the excluded IDs in lexical order.
func (s *ExclusionSet) IDs() []string {
	if s == nil {
		return nil
	}

	ids := make([]string, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	return ids
}
