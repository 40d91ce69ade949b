// Package morphy reduces inflected surface forms to candidate dictionary
// lemmas using WordNet exception lists and suffix-detachment rules. It
// never touches the dictionary directly: callers pass an ExistsFunc.
package morphy

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/internal/wntypes"
)

// ExistsFunc reports whether lemma is a dictionary entry for pos.
type ExistsFunc func(pos wntypes.Pos, lemma string) bool

// SourceKind records how a candidate was produced.
type SourceKind uint8

const (
	FromSurface SourceKind = iota
	FromException
	FromRule
)

// Source is a candidate's provenance. Rule is set only for FromRule.
type Source struct {
	Kind SourceKind
	Rule Rule
}

func (s Source) String() string {
	switch s.Kind {
	case FromSurface:
		return "surface"
	case FromException:
		return "exception"
	default:
		return fmt.Sprintf("rule(-%s+%s)", s.Rule.Suffix, s.Rule.Replacement)
	}
}

// Candidate is one lemma proposal.
type Candidate struct {
	Pos    wntypes.Pos
	Lemma  string
	Source Source
}

// Lemmatizer is read-only after construction.
type Lemmatizer struct {
	exceptions map[wntypes.Pos]map[string][]string
}

// New builds a Lemmatizer from in-memory exception tables. Keys and lemmas
// are normalized.
func New(exceptions map[wntypes.Pos]map[string][]string) *Lemmatizer {
	l := &Lemmatizer{exceptions: make(map[wntypes.Pos]map[string][]string, len(wntypes.AllPos))}
	for _, pos := range wntypes.AllPos {
		table := make(map[string][]string)
		for surface, lemmas := range exceptions[pos] {
			norm := make([]string, 0, len(lemmas))
			for _, lemma := range lemmas {
				norm = append(norm, normalize(lemma))
			}
			if len(norm) > 0 {
				table[normalize(surface)] = norm
			}
		}
		l.exceptions[pos] = table
	}
	return l
}

// Load reads noun.exc, verb.exc, adj.exc and adv.exc from dir. Missing files
// give empty tables.
func Load(dir string) (*Lemmatizer, error) {
	l := &Lemmatizer{exceptions: make(map[wntypes.Pos]map[string][]string, len(wntypes.AllPos))}
	for _, pos := range wntypes.AllPos {
		table, err := loadExceptions(filepath.Join(dir, pos.Label()+".exc"))
		if err != nil {
			return nil, err
		}
		l.exceptions[pos] = table
	}
	slog.Default().With("component", "morphy").Info("exception lists loaded",
		"dir", dir,
		"noun", len(l.exceptions[wntypes.Noun]),
		"verb", len(l.exceptions[wntypes.Verb]),
		"adj", len(l.exceptions[wntypes.Adj]),
		"adv", len(l.exceptions[wntypes.Adv]),
	)
	return l, nil
}

func loadExceptions(path string) (map[string][]string, error) {
	table := make(map[string][]string)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return table, nil
		}
		return nil, fmt.Errorf("opening exception file %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		parts := strings.Fields(scanner.Text())
		if len(parts) < 2 {
			continue
		}
		lemmas := make([]string, 0, len(parts)-1)
		for _, p := range parts[1:] {
			lemmas = append(lemmas, normalize(p))
		}
		table[normalize(parts[0])] = lemmas
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s line %d: %w", path, lineNo+1, err)
	}
	return table, nil
}

// ExceptionCount returns the number of surface forms listed for pos.
func (l *Lemmatizer) ExceptionCount(pos wntypes.Pos) int {
	return len(l.exceptions[pos])
}

// LemmasFor returns the candidates for surface in order: the surface form
// itself, exception-list lemmas, then rule detachments. Every candidate
// passed exists and each lemma appears once.
func (l *Lemmatizer) LemmasFor(pos wntypes.Pos, surface string, exists ExistsFunc) []Candidate {
	var out []Candidate
	seen := make(map[string]struct{})
	add := func(lemma string, src Source) {
		if _, dup := seen[lemma]; dup {
			return
		}
		seen[lemma] = struct{}{}
		out = append(out, Candidate{Pos: pos, Lemma: lemma, Source: src})
	}

	norm := normalize(surface)
	if exists(pos, norm) {
		add(norm, Source{Kind: FromSurface})
	}
	for _, lemma := range l.exceptions[pos][norm] {
		if exists(pos, lemma) {
			add(lemma, Source{Kind: FromException})
		}
	}
	for _, rule := range RulesFor(pos) {
		candidate, ok := rule.apply(norm)
		if ok && exists(pos, candidate) {
			add(candidate, Source{Kind: FromRule, Rule: rule})
		}
	}
	return out
}

func normalize(text string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(text)), " ", "_")
}
