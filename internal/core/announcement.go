package core

import "sort"

// MethodCount is one row of the announcement summary.
type MethodCount struct {
	Method string
	Count  int
}

// AnnouncementTally counts announcements per purchase method.
type AnnouncementTally struct {
	counts *OrderedMap[string, int]
	total  int
}

// TallyAnnouncements counts announcements by method label in one pass.
func TallyAnnouncements(items []Announcement) *AnnouncementTally {
	t := &AnnouncementTally{counts: NewOrderedMap[string, int]()}
	for _, a := range items {
		t.Add(a.MethodLabel)
	}
	return t
}

// Add counts one announcement under method.
func (t *AnnouncementTally) Add(method string) {
	if method == "" {
		method = UnspecifiedLabel
	}
	if t.counts == nil {
		t.counts = NewOrderedMap[string, int]()
	}
	n := t.counts.GetOrInsert(method, nil)
	*n++
	t.total++
}

// Count returns the number of announcements seen for method.
func (t *AnnouncementTally) Count(method string) int {
	if t == nil || t.counts == nil {
		return 0
	}
	n, _ := t.counts.Get(method)
	return n
}

// Total is the number of announcements tallied.
func (t *AnnouncementTally) Total() int {
	if t == nil {
		return 0
	}
	return t.total
}

// Sorted returns the tally by descending count; methods with equal counts
// keep their first-seen order.
func (t *AnnouncementTally) Sorted() []MethodCount {
	if t == nil || t.counts == nil {
		return nil
	}
	out := make([]MethodCount, 0, t.counts.Len())
	for method, n := range t.counts.All() {
		out = append(out, MethodCount{Method: method, Count: n})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}
