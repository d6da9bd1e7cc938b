package models

import "encoding/json"

// TagSet holds unique tag strings. Insertion order is kept so tags display in
// first-seen order, but membership is what matters; duplicates are never
// stored and matching is exact and case-sensitive.
type TagSet struct {
	elems []string
}

// NewTagSet builds a set from the given tags, dropping duplicates.
func NewTagSet(tags ...string) TagSet {
	var s TagSet
	s.Union(tags)
	return s
}

// Add inserts a tag and reports whether it was not already present.
func (s *TagSet) Add(tag string) bool {
	if s.Contains(tag) {
		return false
	}
	s.elems = append(s.elems, tag)
	return true
}

// Union inserts every tag, skipping ones already present.
func (s *TagSet) Union(tags []string) {
	for _, t := range tags {
		s.Add(t)
	}
}

func (s TagSet) Contains(tag string) bool {
	for _, e := range s.elems {
		if e == tag {
			return true
		}
	}
	return false
}

// Remove deletes a tag and reports whether it was present.
func (s *TagSet) Remove(tag string) bool {
	for i, e := range s.elems {
		if e == tag {
			s.elems = append(s.elems[:i], s.elems[i+1:]...)
			return true
		}
	}
	return false
}

func (s TagSet) Len() int { return len(s.elems) }

// Values returns the tags in first-seen order. The slice is a copy; mutating
// it does not affect the set.
func (s TagSet) Values() []string {
	out := make([]string, len(s.elems))
	copy(out, s.elems)
	return out
}

func (s TagSet) Clone() TagSet {
	return TagSet{elems: s.Values()}
}

// MarshalJSON renders the set as a plain JSON array, never null.
func (s TagSet) MarshalJSON() ([]byte, error) {
	if s.elems == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.elems)
}

// UnmarshalJSON accepts a JSON array and de-duplicates on the way in.
func (s *TagSet) UnmarshalJSON(b []byte) error {
	var raw []string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	s.elems = nil
	s.Union(raw)
	return nil
}
