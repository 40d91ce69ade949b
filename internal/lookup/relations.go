package lookup

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/internal/wntypes"
	"github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/pkg/tracing"
)

// RelatedTarget is a synset reached through a pointer.
type RelatedTarget struct {
	Pos        string    `json:"pos"`
	SynsetID   SynsetRef `json:"synset_id"`
	Lemmas     []string  `json:"lemmas"`
	Definition string    `json:"definition"`
	SenseCount *uint32   `json:"sense_count"`
}

// RelationGroup collects the targets of one relation kind. Symbol is the
// first pointer symbol seen for the kind.
type RelationGroup struct {
	Kind    string          `json:"kind"`
	Label   string          `json:"label"`
	Symbol  string          `json:"symbol"`
	Targets []RelatedTarget `json:"targets"`
}

// RelatedSynset is one synset of the looked-up word with its relations.
type RelatedSynset struct {
	Pos        string          `json:"pos"`
	SynsetID   SynsetRef       `json:"synset_id"`
	Lemmas     []string        `json:"lemmas"`
	Definition string          `json:"definition"`
	Examples   []string        `json:"examples"`
	SenseCount *uint32         `json:"sense_count"`
	Frames     []string        `json:"frames,omitempty"`
	Relations  []RelationGroup `json:"relations"`
}

// RelatedResponse is the result of a related-words lookup.
type RelatedResponse struct {
	Word       string          `json:"word"`
	Normalized string          `json:"normalized"`
	Lemmas     []string        `json:"lemmas"`
	Synsets    []RelatedSynset `json:"synsets"`
	Note       *string         `json:"note"`
}

type relation struct {
	kind  string
	label string
}

var relations = map[string]relation{
	"!":  {"antonyms", "Antonyms"},
	"@":  {"hypernyms", "Hypernyms"},
	"@i": {"hypernyms", "Hypernyms"},
	"~":  {"hyponyms", "Hyponyms"},
	"~i": {"hyponyms", "Hyponyms"},
	"&":  {"similar_to", "Similar to"},
	"^":  {"also_see", "Also see"},
	"+":  {"derivations", "Derivationally related"},
	"=":  {"attributes", "Attributes"},
	"<":  {"participle", "Participle of"},
	`\`:  {"pertainyms", "Pertainyms"},
	"*":  {"entails", "Entails"},
	">":  {"causes", "Causes"},
	"$":  {"verb_group", "Verb group"},
	"#m": {"member_holonyms", "Member holonyms"},
	"#s": {"substance_holonyms", "Substance holonyms"},
	"#p": {"part_holonyms", "Part holonyms"},
	"%m": {"member_meronyms", "Member meronyms"},
	"%s": {"substance_meronyms", "Substance meronyms"},
	"%p": {"part_meronyms", "Part meronyms"},
	";c": {"topic_domain", "Topic domain"},
	"-c": {"topic_members", "Topic members"},
	";r": {"region_domain", "Region domain"},
	"-r": {"region_members", "Region members"},
	";u": {"usage_domain", "Usage domain"},
	"-u": {"usage_members", "Usage members"},
}

var otherRelation = relation{"other", "Other"}

// relationRank lists kinds in display order. Unlisted kinds sort last, by label.
var relationRank = func() map[string]int {
	order := []string{
		"hypernyms", "hyponyms", "similar_to", "antonyms", "derivations",
		"also_see", "entails", "causes", "verb_group", "attributes",
		"participle", "pertainyms", "member_meronyms", "part_meronyms",
		"substance_meronyms", "member_holonyms", "part_holonyms",
		"substance_holonyms", "topic_domain", "topic_members",
		"region_domain", "region_members", "usage_domain",
	}
	m := make(map[string]int, len(order))
	for i, k := range order {
		m[k] = i
	}
	return m
}()

// RelationFor maps a pointer symbol to its relation kind and display label.
func RelationFor(symbol string) (kind, label string) {
	r, ok := relations[symbol]
	if !ok {
		r = otherRelation
	}
	return r.kind, r.label
}

func rankOf(kind string) int {
	if r, ok := relationRank[kind]; ok {
		return r
	}
	return len(relationRank) + 1
}

// Related looks word up like Dictionary and expands each synset's pointers
// into relation groups. Verb synsets also carry their rendered frames.
func (s *Service) Related(ctx context.Context, word string, posFilter []wntypes.Pos) (*RelatedResponse, error) {
	word, err := cleanWord(word)
	if err != nil {
		return nil, err
	}
	_, span := tracing.StartChildSpan(ctx, "lookup.related")
	defer span.End()

	lemmas, found := s.discover(word, posFilter)
	seen := make(map[wntypes.SynsetID]struct{})
	out := make([]RelatedSynset, 0)
	for _, c := range found {
		if _, dup := seen[c.id]; dup {
			continue
		}
		seen[c.id] = struct{}{}
		syn, ok := s.dict.Synset(c.id)
		if !ok {
			continue
		}
		out = append(out, RelatedSynset{
			Pos:        syn.ID.Pos.Label(),
			SynsetID:   ref(syn.ID),
			Lemmas:     wordTexts(syn),
			Definition: syn.Gloss.Definition,
			Examples:   nonNil(syn.Gloss.Examples),
			SenseCount: s.bestSenseCount(syn.ID, lemmas),
			Frames:     s.renderFrames(syn),
			Relations:  s.collectRelations(syn),
		})
	}
	slices.SortStableFunc(out, func(a, b RelatedSynset) int {
		return compareRanked(a.SenseCount, b.SenseCount, a.SynsetID, b.SynsetID)
	})

	resp := &RelatedResponse{
		Word:       word,
		Normalized: asciiLower(word),
		Lemmas:     nonNil(lemmas),
		Synsets:    out,
	}
	if len(out) == 0 {
		resp.Note = notFoundNote(word)
	}
	span.SetAttr("word", word)
	span.SetAttr("synsets", len(out))
	return resp, nil
}

func (s *Service) bestSenseCount(id wntypes.SynsetID, lemmas []string) *uint32 {
	var best *uint32
	for _, lemma := range lemmas {
		if count, ok := s.dict.SenseCount(id.Pos, lemma, id.Offset); ok {
			best = maxCount(best, count)
		}
	}
	return best
}

func (s *Service) collectRelations(syn wntypes.Synset) []RelationGroup {
	groups := make(map[string]*RelationGroup)
	var kinds []string
	for _, ptr := range syn.Pointers {
		target, ok := s.dict.Synset(ptr.Target)
		if !ok {
			continue
		}
		kind, label := RelationFor(ptr.Symbol)
		g, ok := groups[kind]
		if !ok {
			g = &RelationGroup{Kind: kind, Label: label, Symbol: ptr.Symbol}
			groups[kind] = g
			kinds = append(kinds, kind)
		}
		tref := ref(target.ID)
		if slices.ContainsFunc(g.Targets, func(t RelatedTarget) bool { return t.SynsetID == tref }) {
			continue
		}
		targetLemmas := wordTexts(target)
		g.Targets = append(g.Targets, RelatedTarget{
			Pos:        target.ID.Pos.Label(),
			SynsetID:   tref,
			Lemmas:     targetLemmas,
			Definition: target.Gloss.Definition,
			SenseCount: s.bestSenseCount(target.ID, targetLemmas),
		})
	}

	out := make([]RelationGroup, 0, len(kinds))
	for _, kind := range kinds {
		g := groups[kind]
		slices.SortStableFunc(g.Targets, func(a, b RelatedTarget) int {
			if c := cmp.Compare(countOrZero(b.SenseCount), countOrZero(a.SenseCount)); c != 0 {
				return c
			}
			return cmp.Compare(firstLemmaKey(a.Lemmas), firstLemmaKey(b.Lemmas))
		})
		out = append(out, *g)
	}
	slices.SortStableFunc(out, func(a, b RelationGroup) int {
		if c := cmp.Compare(rankOf(a.Kind), rankOf(b.Kind)); c != 0 {
			return c
		}
		return cmp.Compare(a.Label, b.Label)
	})
	return out
}

func firstLemmaKey(lemmas []string) string {
	if len(lemmas) == 0 {
		return ""
	}
	return asciiLower(lemmas[0])
}

// renderFrames fills each frame template with the word it applies to: the
// numbered word for word frames, the first word for whole-synset frames.
func (s *Service) renderFrames(syn wntypes.Synset) []string {
	if len(syn.Frames) == 0 || len(syn.Words) == 0 {
		return nil
	}
	var out []string
	seen := make(map[string]struct{})
	for _, f := range syn.Frames {
		tmpl, ok := s.dict.FrameTemplate(f.Number)
		if !ok {
			continue
		}
		w := syn.Words[0].Text
		if f.WordNumber > 0 && int(f.WordNumber) <= len(syn.Words) {
			w = syn.Words[f.WordNumber-1].Text
		}
		line := strings.ReplaceAll(tmpl, "----", strings.ReplaceAll(w, "_", " "))
		if _, dup := seen[line]; dup {
			continue
		}
		seen[line] = struct{}{}
		out = append(out, line)
	}
	return out
}
