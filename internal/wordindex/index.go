// Package wordindex answers crossword-pattern and anagram queries over a word
// list. Words are bucketed by length; each bucket keeps roaring bitmaps of
// which words carry a letter at a position and which contain a letter at all,
// so a query is a handful of bitmap intersections regardless of list size.
package wordindex

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"sort"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
)

// Index is immutable after Build and safe for concurrent queries.
type Index struct {
	buckets [MaxWordLen + 1]*bucket
	words   int
}

type bucket struct {
	words        []string
	all          *roaring.Bitmap
	posLetter    [][alphabetSize]*roaring.Bitmap
	contains     [alphabetSize]*roaring.Bitmap
	letterCounts []LetterCounts
}

// QueryParams describes a crossword query. Page is 1-based.
type QueryParams struct {
	Pattern       Pattern
	MustInclude   []byte
	CannotInclude []byte
	Page          int
	PageSize      int
}

// AnagramParams describes an exact-multiset anagram query.
type AnagramParams struct {
	Pattern  Pattern
	Bag      LetterCounts
	Page     int
	PageSize int
}

// Result is one page of matches.
type Result struct {
	Total   int      `json:"total"`
	Items   []string `json:"items"`
	HasMore bool     `json:"has_more"`
}

// BuildFromFile opens path and builds an index from it.
func BuildFromFile(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening word list %s: %w", path, err)
	}
	defer f.Close()
	return Build(f)
}

// Build reads one word per line. Lines that do not normalize are dropped;
// only read errors fail the build.
func Build(r io.Reader) (*Index, error) {
	start := time.Now()
	var byLen [MaxWordLen + 1][]string

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	dropped := 0
	for scanner.Scan() {
		word, ok := NormalizeWord(scanner.Text())
		if !ok {
			dropped++
			continue
		}
		byLen[len(word)] = append(byLen[len(word)], word)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading word list: %w", err)
	}

	idx := &Index{}
	for length := 1; length <= MaxWordLen; length++ {
		words := dedupSorted(byLen[length])
		if len(words) == 0 {
			continue
		}
		idx.buckets[length] = newBucket(length, words)
		idx.words += len(words)
	}

	slog.Default().With("component", "wordindex").Info("word index built",
		"words", idx.words,
		"dropped_lines", dropped,
		"duration", time.Since(start),
	)
	return idx, nil
}

func dedupSorted(words []string) []string {
	if len(words) == 0 {
		return nil
	}
	sort.Strings(words)
	out := words[:1]
	for _, w := range words[1:] {
		if w != out[len(out)-1] {
			out = append(out, w)
		}
	}
	return out
}

func newBucket(length int, words []string) *bucket {
	b := &bucket{
		words:        words,
		all:          roaring.New(),
		posLetter:    make([][alphabetSize]*roaring.Bitmap, length),
		letterCounts: make([]LetterCounts, len(words)),
	}
	for pos := range b.posLetter {
		for l := range b.posLetter[pos] {
			b.posLetter[pos][l] = roaring.New()
		}
	}
	for l := range b.contains {
		b.contains[l] = roaring.New()
	}

	b.all.AddRange(0, uint64(len(words)))
	for id, word := range words {
		wid := uint32(id)
		for pos := 0; pos < len(word); pos++ {
			l := word[pos] - 'a'
			b.posLetter[pos][l].Add(wid)
			b.contains[l].Add(wid)
		}
		b.letterCounts[id] = countLetters(word)
	}

	for pos := range b.posLetter {
		for l := range b.posLetter[pos] {
			b.posLetter[pos][l].RunOptimize()
		}
	}
	for l := range b.contains {
		b.contains[l].RunOptimize()
	}
	return b
}

// WordCount returns the number of distinct words indexed.
func (idx *Index) WordCount() int {
	return idx.words
}

// Lengths returns the bucket sizes keyed by word length.
func (idx *Index) Lengths() map[int]int {
	out := make(map[int]int)
	for length, b := range idx.buckets {
		if b != nil {
			out[length] = len(b.words)
		}
	}
	return out
}

func (idx *Index) bucketFor(p Pattern) *bucket {
	if len(p) == 0 || len(p) > MaxWordLen {
		return nil
	}
	return idx.buckets[len(p)]
}

// filterPattern intersects the bucket with every fixed pattern position.
func (b *bucket) filterPattern(p Pattern) *roaring.Bitmap {
	candidates := b.all.Clone()
	for pos, c := range p {
		if c == Blank {
			continue
		}
		candidates.And(b.posLetter[pos][c-'a'])
		if candidates.IsEmpty() {
			break
		}
	}
	return candidates
}

// Query returns the page of words matching the pattern that contain every
// MustInclude letter and none of the CannotInclude letters.
func (idx *Index) Query(params QueryParams) Result {
	b := idx.bucketFor(params.Pattern)
	if b == nil {
		return Result{Items: []string{}}
	}

	candidates := b.filterPattern(params.Pattern)
	for _, c := range params.MustInclude {
		if candidates.IsEmpty() {
			break
		}
		candidates.And(b.contains[c-'a'])
	}
	for _, c := range params.CannotInclude {
		if candidates.IsEmpty() {
			break
		}
		candidates.AndNot(b.contains[c-'a'])
	}

	total := int(candidates.GetCardinality())
	offset := pageOffset(params.Page, params.PageSize)
	items := make([]string, 0, min(params.PageSize, max(total-offset, 0)))
	if offset < total {
		first, err := candidates.Select(uint32(offset))
		if err == nil {
			it := candidates.Iterator()
			it.AdvanceIfNeeded(first)
			for it.HasNext() && len(items) < params.PageSize {
				items = append(items, b.words[it.Next()])
			}
		}
	}
	return Result{
		Total:   total,
		Items:   items,
		HasMore: offset+len(items) < total,
	}
}

// QueryAnagram returns the page of words matching the pattern whose letter
// multiset equals the bag exactly.
func (idx *Index) QueryAnagram(params AnagramParams) Result {
	b := idx.bucketFor(params.Pattern)
	if b == nil {
		return Result{Items: []string{}}
	}

	candidates := b.filterPattern(params.Pattern)
	offset := pageOffset(params.Page, params.PageSize)
	items := make([]string, 0)
	total := 0
	it := candidates.Iterator()
	for it.HasNext() {
		id := it.Next()
		if b.letterCounts[id] != params.Bag {
			continue
		}
		if total >= offset && len(items) < params.PageSize {
			items = append(items, b.words[id])
		}
		total++
	}
	return Result{
		Total:   total,
		Items:   items,
		HasMore: offset+len(items) < total,
	}
}

// pageOffset saturates at math.MaxInt so huge page numbers land past the end
// instead of wrapping.
func pageOffset(page, pageSize int) int {
	if page < 1 || pageSize < 1 {
		return 0
	}
	if page-1 > (math.MaxInt-1)/pageSize {
		return math.MaxInt
	}
	return (page - 1) * pageSize
}
