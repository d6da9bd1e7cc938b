package models

import (
	"encoding/json"
	"testing"
)

func TestTagSetAddIsIdempotent(t *testing.T) {
	var s TagSet
	if !s.Add("mg_roja") {
		t.Error("first Add should report true")
	}
	if s.Add("mg_roja") {
		t.Error("second Add of same tag should report false")
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, expected 1", s.Len())
	}
}

func TestTagSetUnionKeepsOrderAndDedups(t *testing.T) {
	s := NewTagSet("a", "b")
	s.Union([]string{"b", "c", "a", "d"})

	got := s.Values()
	want := []string{"a", "b", "c", "d"}
	if len(got) != len(want) {
		t.Fatalf("Values = %v, expected %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Values[%d] = %q, expected %q", i, got[i], want[i])
		}
	}
}

func TestTagSetRemove(t *testing.T) {
	s := NewTagSet("a", "b", "c")
	if !s.Remove("b") {
		t.Error("Remove of present tag should report true")
	}
	if s.Remove("b") {
		t.Error("Remove of absent tag should report false")
	}
	if s.Contains("b") {
		t.Error("set should not contain removed tag")
	}
	if s.Len() != 2 {
		t.Errorf("Len = %d, expected 2", s.Len())
	}
}

func TestTagSetCloneIsIndependent(t *testing.T) {
	s := NewTagSet("a")
	c := s.Clone()
	c.Add("b")
	if s.Contains("b") {
		t.Error("mutating the clone must not affect the original")
	}
}

func TestTagSetMarshalEmptyAsArray(t *testing.T) {
	var s TagSet
	b, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "[]" {
		t.Errorf("empty set marshals to %s, expected []", b)
	}
}

func TestTagSetUnmarshalDedups(t *testing.T) {
	var s TagSet
	if err := json.Unmarshal([]byte(`["a","b","a"]`), &s); err != nil {
		t.Fatal(err)
	}
	if s.Len() != 2 {
		t.Errorf("Len = %d, expected 2", s.Len())
	}
}
