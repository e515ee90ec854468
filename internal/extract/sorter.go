package extract

import "sort"

// Sorter is the external sorted merger extraction-cache evictions (and
// the final drain) flush into. It merges repeated writes to the same
// key via Merge and, on Drain, yields every key once in ascending
// order — the Go stand-in for grenad::Sorter plus its merge function.
type Sorter struct {
	entries map[string]*DelAddBitmaps
}

// NewSorter returns an empty Sorter.
func NewSorter() *Sorter {
	return &Sorter{entries: make(map[string]*DelAddBitmaps)}
}

// Insert merges value into whatever is already recorded under key.
func (s *Sorter) Insert(key string, value *DelAddBitmaps) {
	if existing, ok := s.entries[key]; ok {
		existing.Merge(value)
		return
	}
	s.entries[key] = value
}

// Entry is one globally sorted (key, merged value) pair.
type Entry struct {
	Key   string
	Value *DelAddBitmaps
}

// Drain returns every entry in ascending key order, consuming the
// sorter.
func (s *Sorter) Drain() []Entry {
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	entries := make([]Entry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, Entry{Key: k, Value: s.entries[k]})
	}
	s.entries = make(map[string]*DelAddBitmaps)
	return entries
}

// Len reports how many distinct keys are buffered.
func (s *Sorter) Len() int {
	return len(s.entries)
}
