package wordindex

import (
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func buildIndex(t *testing.T, words ...string) *Index {
	t.Helper()
	idx, err := Build(strings.NewReader(strings.Join(words, "\n")))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return idx
}

func mustPattern(t *testing.T, raw string) Pattern {
	t.Helper()
	p, err := ParsePattern(raw)
	if err != nil {
		t.Fatalf("ParsePattern(%q): %v", raw, err)
	}
	return p
}

func TestBuildNormalizesAndDedups(t *testing.T) {
	idx := buildIndex(t, "Apple", "apple", "APPLE", "it's", "pear", "", "  ", "banana\r")
	if idx.WordCount() != 3 {
		t.Errorf("WordCount() = %d, want 3", idx.WordCount())
	}
	want := map[int]int{4: 1, 5: 1, 6: 1}
	if got := idx.Lengths(); !reflect.DeepEqual(got, want) {
		t.Errorf("Lengths() = %v, want %v", got, want)
	}
}

func TestBuildFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	if err := os.WriteFile(path, []byte("cat\ndog\ncow\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	idx, err := BuildFromFile(path)
	if err != nil {
		t.Fatal(err)
	}
	res := idx.Query(QueryParams{Pattern: mustPattern(t, "c__"), Page: 1, PageSize: 10})
	if !reflect.DeepEqual(res.Items, []string{"cat", "cow"}) {
		t.Errorf("items = %v", res.Items)
	}
	if _, err := BuildFromFile(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("missing file accepted")
	}
}

func TestQuery(t *testing.T) {
	idx := buildIndex(t, "apple", "ample", "angle", "ankle", "addle", "aisle", "maple", "table")

	tests := []struct {
		name     string
		pattern  string
		must     string
		cannot   string
		want     []string
		wantTotl int
	}{
		{"fixed ends", "a__le", "", "", []string{"addle", "aisle", "ample", "angle", "ankle", "apple"}, 6},
		{"must include", "a__le", "p", "", []string{"ample", "apple"}, 2},
		{"cannot include", "a__le", "", "pn", []string{"addle", "aisle"}, 2},
		{"no bucket", "a____le", "", "", []string{}, 0},
		{"no match", "z____", "", "", []string{}, 0},
		{"open", "_____", "t", "", []string{"table"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			must, _ := ParseLetters(tt.must)
			cannot, _ := ParseLetters(tt.cannot)
			res := idx.Query(QueryParams{
				Pattern:       mustPattern(t, tt.pattern),
				MustInclude:   must,
				CannotInclude: cannot,
				Page:          1,
				PageSize:      50,
			})
			if res.Total != tt.wantTotl {
				t.Errorf("Total = %d, want %d", res.Total, tt.wantTotl)
			}
			if !reflect.DeepEqual(res.Items, tt.want) {
				t.Errorf("Items = %v, want %v", res.Items, tt.want)
			}
			if res.HasMore {
				t.Error("HasMore = true on a single full page")
			}
		})
	}
}

func TestQueryConstraintsAreMonotonic(t *testing.T) {
	idx := buildIndex(t, "crane", "crate", "trace", "caret", "react", "cater", "brace", "grace", "earth")
	p := mustPattern(t, "_____")
	base := idx.Query(QueryParams{Pattern: p, Page: 1, PageSize: 100}).Total

	var prev = base
	must := []byte{}
	for _, c := range []byte("cret") {
		must = append(must, c)
		total := idx.Query(QueryParams{Pattern: p, MustInclude: must, Page: 1, PageSize: 100}).Total
		if total > prev {
			t.Errorf("adding must-include %q raised total %d -> %d", c, prev, total)
		}
		prev = total
	}

	prev = base
	cannot := []byte{}
	for _, c := range []byte("bgnh") {
		cannot = append(cannot, c)
		total := idx.Query(QueryParams{Pattern: p, CannotInclude: cannot, Page: 1, PageSize: 100}).Total
		if total > prev {
			t.Errorf("adding cannot-include %q raised total %d -> %d", c, prev, total)
		}
		prev = total
	}
}

func TestQueryCannotIncludeNoPhantomIDs(t *testing.T) {
	// Three words leave most of any bitmap container unused; excluding a
	// letter none of them have must still report exactly three.
	idx := buildIndex(t, "abc", "abd", "abe")
	res := idx.Query(QueryParams{Pattern: mustPattern(t, "___"), CannotInclude: []byte("z"), Page: 1, PageSize: 10})
	if res.Total != 3 || len(res.Items) != 3 {
		t.Errorf("Total = %d, items = %v", res.Total, res.Items)
	}
}

func TestQueryPagination(t *testing.T) {
	words := []string{"bat", "cat", "eat", "fat", "hat", "mat"}
	idx := buildIndex(t, words...)
	p := mustPattern(t, "_at")

	var seen []string
	for page, wantMore := range []bool{true, true, false} {
		res := idx.Query(QueryParams{Pattern: p, Page: page + 1, PageSize: 2})
		if res.Total != 6 {
			t.Fatalf("page %d Total = %d", page+1, res.Total)
		}
		if len(res.Items) != 2 {
			t.Fatalf("page %d returned %d items", page+1, len(res.Items))
		}
		if res.HasMore != wantMore {
			t.Errorf("page %d HasMore = %v, want %v", page+1, res.HasMore, wantMore)
		}
		seen = append(seen, res.Items...)
	}
	if !reflect.DeepEqual(seen, words) {
		t.Errorf("pages concatenated = %v, want %v", seen, words)
	}

	beyond := idx.Query(QueryParams{Pattern: p, Page: 4, PageSize: 2})
	if beyond.Total != 6 || len(beyond.Items) != 0 || beyond.HasMore {
		t.Errorf("page past end = %+v", beyond)
	}

	huge := idx.Query(QueryParams{Pattern: p, Page: 1<<62 + 1, PageSize: 4})
	if huge.Total != 6 || len(huge.Items) != 0 || huge.HasMore {
		t.Errorf("huge page = %+v, want no items", huge)
	}
}

func TestQueryAnagramHugePage(t *testing.T) {
	idx := buildIndex(t, "cat", "act", "tac")
	bag, err := ParseLetterBag("cat", 3)
	if err != nil {
		t.Fatal(err)
	}
	res := idx.QueryAnagram(AnagramParams{Pattern: mustPattern(t, "___"), Bag: bag, Page: 1<<62 + 1, PageSize: 4})
	if res.Total != 3 || len(res.Items) != 0 || res.HasMore {
		t.Errorf("huge page = %+v, want no items", res)
	}
}

func TestPageOffset(t *testing.T) {
	tests := []struct {
		page, size, want int
	}{
		{1, 50, 0},
		{3, 2, 4},
		{0, 5, 0},
		{1<<62 + 1, 4, math.MaxInt},
		{math.MaxInt, math.MaxInt, math.MaxInt},
	}
	for _, tt := range tests {
		if got := pageOffset(tt.page, tt.size); got != tt.want {
			t.Errorf("pageOffset(%d, %d) = %d, want %d", tt.page, tt.size, got, tt.want)
		}
	}
}

func TestQueryAnagram(t *testing.T) {
	idx := buildIndex(t, "listen", "silent", "enlist", "tinsel", "inlets", "tile")
	bag, err := ParseLetterBag("listen", 6)
	if err != nil {
		t.Fatal(err)
	}

	res := idx.QueryAnagram(AnagramParams{Pattern: mustPattern(t, "______"), Bag: bag, Page: 1, PageSize: 50})
	if res.Total != 5 {
		t.Errorf("Total = %d, want 5", res.Total)
	}
	want := []string{"enlist", "inlets", "listen", "silent", "tinsel"}
	if !reflect.DeepEqual(res.Items, want) {
		t.Errorf("Items = %v, want %v", res.Items, want)
	}

	fixed := idx.QueryAnagram(AnagramParams{Pattern: mustPattern(t, "s_____"), Bag: bag, Page: 1, PageSize: 50})
	if !reflect.DeepEqual(fixed.Items, []string{"silent"}) {
		t.Errorf("s_____ Items = %v", fixed.Items)
	}
}

func TestQueryAnagramIsExact(t *testing.T) {
	idx := buildIndex(t, "stop", "tops", "post", "spot", "pots", "toss", "opts")
	subset, _ := ParseLetterBag("spto", 4)
	res := idx.QueryAnagram(AnagramParams{Pattern: mustPattern(t, "____"), Bag: subset, Page: 1, PageSize: 50})
	if res.Total != 6 {
		t.Errorf("Total = %d, want 6 (toss must not match)", res.Total)
	}

	paged := idx.QueryAnagram(AnagramParams{Pattern: mustPattern(t, "____"), Bag: subset, Page: 2, PageSize: 4})
	if len(paged.Items) != 2 || paged.HasMore || paged.Total != 6 {
		t.Errorf("page 2 = %+v", paged)
	}
}
