// Package lookup answers dictionary and related-word questions by combining
// the lemmatizer with the WordNet store.
package lookup

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/internal/morphy"
	"github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/internal/wntypes"
	apperrors "github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/pkg/tracing"
)

// Dictionary is the read side of the WordNet store.
type Dictionary interface {
	LemmaExists(pos wntypes.Pos, lemma string) bool
	SynsetsForLemma(pos wntypes.Pos, lemma string) []wntypes.SynsetID
	Synset(id wntypes.SynsetID) (wntypes.Synset, bool)
	SenseCount(pos wntypes.Pos, lemma string, offset uint32) (uint32, bool)
	FrameTemplate(number uint16) (string, bool)
}

// Lemmatizer proposes base forms for a surface word.
type Lemmatizer interface {
	LemmasFor(pos wntypes.Pos, surface string, exists morphy.ExistsFunc) []morphy.Candidate
}

// SynsetRef identifies a synset in responses.
type SynsetRef struct {
	Pos    string `json:"pos"`
	Offset uint32 `json:"offset"`
}

// DictionaryEntry is one synset in a dictionary response.
type DictionaryEntry struct {
	Pos        string    `json:"pos"`
	SynsetID   SynsetRef `json:"synset_id"`
	Lemmas     []string  `json:"lemmas"`
	Definition string    `json:"definition"`
	Examples   []string  `json:"examples"`
	SenseCount *uint32   `json:"sense_count"`
}

// DictionaryResponse is the result of a dictionary lookup.
type DictionaryResponse struct {
	Word       string            `json:"word"`
	Normalized string            `json:"normalized"`
	Lemmas     []string          `json:"lemmas"`
	Results    []DictionaryEntry `json:"results"`
	Note       *string           `json:"note"`
}

// Service is safe for concurrent use once constructed.
type Service struct {
	dict   Dictionary
	morphy Lemmatizer
	logger *slog.Logger
}

func New(dict Dictionary, lemmatizer Lemmatizer) *Service {
	return &Service{
		dict:   dict,
		morphy: lemmatizer,
		logger: slog.Default().With("component", "lookup"),
	}
}

// ParsePosFilter reads the optional pos query value. Only the first
// character counts. An absent value selects every part of speech.
func ParsePosFilter(raw string, present bool) ([]wntypes.Pos, error) {
	if !present {
		return wntypes.AllPos, nil
	}
	if raw == "" {
		return nil, apperrors.Invalidf(apperrors.ErrInvalidInput, "pos is invalid")
	}
	c := raw[0]
	if 'A' <= c && c <= 'Z' {
		c += 'a' - 'A'
	}
	pos, ok := wntypes.PosFromChar(c)
	if !ok {
		return nil, apperrors.Invalidf(apperrors.ErrInvalidInput, "pos must be one of n|v|a|r")
	}
	return []wntypes.Pos{pos}, nil
}

// candidate is a synset reached through one of the query's lemmas.
type candidate struct {
	pos   wntypes.Pos
	lemma string
	id    wntypes.SynsetID
}

// discover runs the lemmatizer for every requested pos and returns the
// distinct lemmas in discovery order plus every (lemma, synset) pair.
func (s *Service) discover(word string, posFilter []wntypes.Pos) ([]string, []candidate) {
	var lemmas []string
	var found []candidate
	seen := make(map[string]struct{})
	for _, pos := range posFilter {
		for _, cand := range s.morphy.LemmasFor(pos, word, s.dict.LemmaExists) {
			if _, ok := seen[cand.Lemma]; !ok {
				seen[cand.Lemma] = struct{}{}
				lemmas = append(lemmas, cand.Lemma)
			}
			for _, id := range s.dict.SynsetsForLemma(pos, cand.Lemma) {
				found = append(found, candidate{pos: pos, lemma: cand.Lemma, id: id})
			}
		}
	}
	return lemmas, found
}

func cleanWord(word string) (string, error) {
	word = strings.TrimSpace(word)
	if word == "" {
		return "", apperrors.Invalidf(apperrors.ErrInvalidInput, "word is required")
	}
	return word, nil
}

func notFoundNote(word string) *string {
	note := fmt.Sprintf("no WordNet entries found for %q", word)
	return &note
}

// Dictionary looks word up under every pos in posFilter. Results are ordered
// by best sense count, then pos, then offset.
func (s *Service) Dictionary(ctx context.Context, word string, posFilter []wntypes.Pos) (*DictionaryResponse, error) {
	word, err := cleanWord(word)
	if err != nil {
		return nil, err
	}
	_, span := tracing.StartChildSpan(ctx, "lookup.dictionary")
	defer span.End()

	lemmas, found := s.discover(word, posFilter)
	byID := make(map[wntypes.SynsetID]*DictionaryEntry)
	order := make([]wntypes.SynsetID, 0, len(found))
	for _, c := range found {
		entry, ok := byID[c.id]
		if !ok {
			syn, ok := s.dict.Synset(c.id)
			if !ok {
				continue
			}
			entry = &DictionaryEntry{
				Pos:        syn.ID.Pos.Label(),
				SynsetID:   ref(syn.ID),
				Lemmas:     wordTexts(syn),
				Definition: syn.Gloss.Definition,
				Examples:   nonNil(syn.Gloss.Examples),
			}
			byID[c.id] = entry
			order = append(order, c.id)
		}
		if count, ok := s.dict.SenseCount(c.pos, c.lemma, c.id.Offset); ok {
			entry.SenseCount = maxCount(entry.SenseCount, count)
		}
	}

	results := make([]DictionaryEntry, 0, len(order))
	for _, id := range order {
		results = append(results, *byID[id])
	}
	slices.SortStableFunc(results, func(a, b DictionaryEntry) int {
		return compareRanked(a.SenseCount, b.SenseCount, a.SynsetID, b.SynsetID)
	})

	resp := &DictionaryResponse{
		Word:       word,
		Normalized: asciiLower(word),
		Lemmas:     nonNil(lemmas),
		Results:    results,
	}
	if len(results) == 0 {
		resp.Note = notFoundNote(word)
	}
	span.SetAttr("word", word)
	span.SetAttr("results", len(results))
	s.logger.Debug("dictionary lookup", "word", word, "lemmas", len(lemmas), "results", len(results))
	return resp, nil
}

func ref(id wntypes.SynsetID) SynsetRef {
	return SynsetRef{Pos: string(id.Pos.Char()), Offset: id.Offset}
}

func wordTexts(syn wntypes.Synset) []string {
	out := make([]string, len(syn.Words))
	for i, w := range syn.Words {
		out[i] = w.Text
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func maxCount(cur *uint32, count uint32) *uint32 {
	if cur != nil && *cur >= count {
		return cur
	}
	return &count
}

func countOrZero(c *uint32) uint32 {
	if c == nil {
		return 0
	}
	return *c
}

func posOrder(char string) int {
	if char == "" {
		return 0
	}
	pos, _ := wntypes.PosFromChar(char[0])
	return int(pos)
}

// compareRanked orders by sense count descending, then pos, then offset.
func compareRanked(ca, cb *uint32, a, b SynsetRef) int {
	if c := cmp.Compare(countOrZero(cb), countOrZero(ca)); c != 0 {
		return c
	}
	if c := cmp.Compare(posOrder(a.Pos), posOrder(b.Pos)); c != 0 {
		return c
	}
	return cmp.Compare(a.Offset, b.Offset)
}

// asciiLower folds A-Z only, matching the lemma normalization used by the
// WordNet store. Other bytes pass through unchanged.
func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}
