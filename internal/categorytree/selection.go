package categorytree

import "sort"

// IDSet is a set of category ids. The view controller keeps two of them: the
// bulk selection and the expanded rows.
type IDSet struct {
	ids map[string]struct{}
}

func NewIDSet(ids ...string) *IDSet {
	s := &IDSet{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return s
}

// Toggle removes id when present and adds it otherwise.
func (s *IDSet) Toggle(id string) {
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return
	}
	s.ids[id] = struct{}{}
}

// SelectAll replaces the whole set with ids.
func (s *IDSet) SelectAll(ids []string) {
	s.ids = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
}

func (s *IDSet) Clear() {
	s.ids = make(map[string]struct{})
}

func (s *IDSet) Count() int {
	return len(s.ids)
}

func (s *IDSet) Has(id string) bool {
	if s == nil {
		return false
	}
	_, ok := s.ids[id]
	return ok
}

// IDs returns the members in sorted order.
func (s *IDSet) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Prune drops every id not in valid and returns how many were removed.
func (s *IDSet) Prune(valid []string) int {
	keep := make(map[string]struct{}, len(valid))
	for _, id := range valid {
		keep[id] = struct{}{}
	}
	removed := 0
	for id := range s.ids {
		if _, ok := keep[id]; !ok {
			delete(s.ids, id)
			removed++
		}
	}
	return removed
}
