package trie

import (
	"reflect"
	"sort"
	"testing"

	"github.com/ko-nlp/komorph/jamo"
)

func buildSample() *Trie {
	tr := New()
	tr.Insert(jamo.Normalize("먹"), 1)
	tr.Insert(jamo.Normalize("먹다"), 2)
	tr.Insert(jamo.Normalize("다"), 3)
	tr.Insert(jamo.Normalize("갈다"), 4)
	tr.Build()
	return tr
}

func TestGetExactKeys(t *testing.T) {
	tr := buildSample()
	cases := []struct {
		key  string
		want int32
		ok   bool
	}{
		{"먹", 1, true},
		{"먹다", 2, true},
		{"다", 3, true},
		{"갈다", 4, true},
		{"간다", 0, false},
	}
	for _, c := range cases {
		got, ok := tr.Get(jamo.Normalize(c.key))
		if ok != c.ok || (ok && got != c.want) {
			t.Errorf("Get(%q) = %d,%v want %d,%v", c.key, got, ok, c.want, c.ok)
		}
	}
}

func TestFindAllReportsEveryOccurrence(t *testing.T) {
	tr := buildSample()
	units := jamo.Normalize("먹다")
	matches := tr.FindAll(units)

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].End != matches[j].End {
			return matches[i].End < matches[j].End
		}
		return matches[i].Start < matches[j].Start
	})

	got := map[[2]int]int32{}
	for _, m := range matches {
		got[[2]int{m.Start, m.End}] = m.FormID
	}

	// "먹다" contains dictionary forms "먹" (0,1 units... actually per-jamo
	// unit positions, not syllable positions) "먹다" (whole), and "다"
	// (suffix). Exact unit offsets depend on jamo decomposition width, so
	// check by FormID membership instead of raw offsets.
	foundForms := map[int32]bool{}
	for _, m := range matches {
		foundForms[m.FormID] = true
	}
	for _, want := range []int32{1, 2, 3} {
		if !foundForms[want] {
			t.Errorf("FindAll(먹다) missing form id %d; got %v", want, matches)
		}
	}
	if foundForms[4] {
		t.Errorf("FindAll(먹다) unexpectedly matched form 4 (갈다)")
	}
}

func TestFindAllEmptyAndNoMatch(t *testing.T) {
	tr := buildSample()
	if m := tr.FindAll(nil); len(m) != 0 {
		t.Errorf("FindAll(nil) = %v, want empty", m)
	}
	if m := tr.FindAll(jamo.Normalize("하늘")); len(m) != 0 {
		t.Errorf("FindAll(하늘) = %v, want empty (no dictionary substrings)", m)
	}
}

func TestHasPrefix(t *testing.T) {
	tr := buildSample()
	if !tr.HasPrefix(jamo.Normalize("먹")) {
		t.Errorf("HasPrefix(먹) = false, want true")
	}
	if tr.HasPrefix(jamo.Normalize("자")) {
		t.Errorf("HasPrefix(자) = true, want false")
	}
}

func TestPrefixMatches(t *testing.T) {
	tr := New()
	tr.Insert([]rune("a"), 1)
	tr.Insert([]rune("ab"), 2)
	tr.Insert([]rune("abc"), 3)
	tr.Build()

	matches := tr.PrefixMatches([]rune("abcd"))
	var ids []int32
	for _, m := range matches {
		ids = append(ids, m.FormID)
	}
	want := []int32{1, 2, 3}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("PrefixMatches(abcd) ids = %v, want %v", ids, want)
	}

	if m := tr.PrefixMatches([]rune("xyz")); len(m) != 0 {
		t.Errorf("PrefixMatches(xyz) = %v, want empty", m)
	}
}

func TestInsertAfterBuildPanics(t *testing.T) {
	tr := buildSample()
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("Insert after Build did not panic")
		}
	}()
	tr.Insert(jamo.Normalize("간다"), 5)
}

func TestFindAllOverlappingFormsAtSameEnd(t *testing.T) {
	// Construct a trie where two forms of different lengths end at the same
	// position, and confirm both are reported (longest first).
	tr := New()
	tr.Insert([]rune("a"), 10)
	tr.Insert([]rune("ba"), 11)
	tr.Insert([]rune("cba"), 12)
	tr.Build()

	matches := tr.FindAll([]rune("cba"))
	var ids []int32
	for _, m := range matches {
		if m.End == 3 {
			ids = append(ids, m.FormID)
		}
	}
	want := []int32{12, 11, 10}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("FindAll(cba) end=3 ids = %v, want %v (longest first)", ids, want)
	}
}
