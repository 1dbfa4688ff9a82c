package engine

import "slices"

// Selection is the set of chosen participants plus the order they were chosen in.
// Both views are updated together; re-adding an id appends it at the end.
type Selection struct {
	members map[int]bool
	order   []int
}

func NewSelection(ids ...int) Selection {
	s := Selection{members: map[int]bool{}}
	for _, id := range ids {
		if !s.members[id] {
			s.Toggle(id)
		}
	}
	return s
}

// Toggle adds id when absent and removes it when present. It reports whether id
// is selected afterwards.
func (s *Selection) Toggle(id int) bool {
	if s.members == nil {
		s.members = map[int]bool{}
	}
	if s.members[id] {
		delete(s.members, id)
		if i := slices.Index(s.order, id); i >= 0 {
			s.order = slices.Delete(s.order, i, i+1)
		}
		return false
	}
	s.members[id] = true
	if !slices.Contains(s.order, id) {
		s.order = append(s.order, id)
	}
	return true
}

// Ordered returns the selected ids in selection order. Callers get their own copy.
func (s Selection) Ordered() []int {
	out := make([]int, 0, len(s.members))
	for _, id := range s.order {
		if s.members[id] {
			out = append(out, id)
		}
	}
	return out
}

func (s Selection) Has(id int) bool { return s.members[id] }

func (s Selection) Len() int { return len(s.members) }

func (s *Selection) Clear() {
	s.members = map[int]bool{}
	s.order = nil
}

// Swap exchanges the positions of two selected ids.
func (s *Selection) Swap(a, b int) bool {
	if !s.members[a] || !s.members[b] {
		return false
	}
	i, j := slices.Index(s.order, a), slices.Index(s.order, b)
	s.order[i], s.order[j] = s.order[j], s.order[i]
	return true
}

func (s Selection) Clone() Selection {
	out := Selection{members: make(map[int]bool, len(s.members))}
	for id := range s.members {
		out.members[id] = true
	}
	out.order = slices.Clone(s.order)
	return out
}
