package wordnet

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/internal/wntypes"
)

const fixtureDir = "testdata/wn"

func loadFixture(t *testing.T, mode LoadMode) *Store {
	t.Helper()
	s, err := Load(fixtureDir, mode)
	if err != nil {
		t.Fatalf("Load(%s): %v", mode, err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return s
}

func forEachMode(t *testing.T, fn func(t *testing.T, s *Store)) {
	for _, mode := range []LoadMode{LoadMemoryMapped, LoadOwned} {
		t.Run(mode.String(), func(t *testing.T) {
			fn(t, loadFixture(t, mode))
		})
	}
}

func TestIndexEntry(t *testing.T) {
	forEachMode(t, func(t *testing.T, s *Store) {
		entry, ok := s.IndexEntry(wntypes.Noun, "dog")
		if !ok {
			t.Fatal("dog index entry missing")
		}
		want := wntypes.IndexEntry{
			Lemma:         "dog",
			Pos:           wntypes.Noun,
			SynsetCnt:     1,
			PCnt:          1,
			PtrSymbols:    []string{"@"},
			SenseCnt:      1,
			TagsenseCnt:   1,
			SynsetOffsets: []uint32{1740},
		}
		if !reflect.DeepEqual(entry, want) {
			t.Errorf("IndexEntry(dog) = %+v, want %+v", entry, want)
		}
		if _, ok := s.IndexEntry(wntypes.Verb, "dog"); ok {
			t.Error("dog found as a verb")
		}
	})
}

func TestSynset(t *testing.T) {
	forEachMode(t, func(t *testing.T, s *Store) {
		syn, ok := s.Synset(wntypes.SynsetID{Pos: wntypes.Noun, Offset: 1740})
		if !ok {
			t.Fatal("synset 1740 missing")
		}
		if syn.LexFilenum != 3 || syn.Type != wntypes.SynsetNoun {
			t.Errorf("header = %d/%v", syn.LexFilenum, syn.Type)
		}
		wantWords := []wntypes.Lemma{{Text: "dog", LexID: 0}, {Text: "domestic_dog", LexID: 1}}
		if !reflect.DeepEqual(syn.Words, wantWords) {
			t.Errorf("Words = %+v", syn.Words)
		}
		wantPtr := []wntypes.Pointer{{
			Symbol:     "@",
			Target:     wntypes.SynsetID{Pos: wntypes.Noun, Offset: 2140},
			SourceWord: 1,
			TargetWord: 1,
		}}
		if !reflect.DeepEqual(syn.Pointers, wantPtr) {
			t.Errorf("Pointers = %+v", syn.Pointers)
		}
		if !strings.HasPrefix(syn.Gloss.Definition, "domestic animal") {
			t.Errorf("Definition = %q", syn.Gloss.Definition)
		}
		if !strings.Contains(syn.Gloss.Raw, "domestic animal") {
			t.Errorf("Raw = %q", syn.Gloss.Raw)
		}
		if !reflect.DeepEqual(syn.Gloss.Examples, []string{"a pet dog"}) {
			t.Errorf("Examples = %q", syn.Gloss.Examples)
		}
		if len(syn.Frames) != 0 {
			t.Errorf("noun has frames: %v", syn.Frames)
		}
	})
}

func TestVerbFrames(t *testing.T) {
	s := loadFixture(t, LoadOwned)
	syn, ok := s.Synset(wntypes.SynsetID{Pos: wntypes.Verb, Offset: 2500})
	if !ok {
		t.Fatal("verb synset 2500 missing")
	}
	want := []wntypes.Frame{{Number: 1, WordNumber: 1}, {Number: 2, WordNumber: 0}}
	if !reflect.DeepEqual(syn.Frames, want) {
		t.Errorf("Frames = %+v, want %+v", syn.Frames, want)
	}
	if syn.Gloss.Definition != "move fast by using one's feet" {
		t.Errorf("Definition = %q", syn.Gloss.Definition)
	}
	if tmpl, ok := s.FrameTemplate(2); !ok || tmpl != "Somebody ----s" {
		t.Errorf("FrameTemplate(2) = %q, %v", tmpl, ok)
	}
	if _, ok := s.FrameTemplate(9); ok {
		t.Error("FrameTemplate(9) found")
	}
}

func TestAdjectivePointerTarget(t *testing.T) {
	s := loadFixture(t, LoadMemoryMapped)
	syn, ok := s.Synset(wntypes.SynsetID{Pos: wntypes.Adv, Offset: 5000})
	if !ok {
		t.Fatal("adverb synset missing")
	}
	if len(syn.Pointers) != 1 || syn.Pointers[0].Symbol != `\` || syn.Pointers[0].Target.Pos != wntypes.Adj {
		t.Errorf("Pointers = %+v", syn.Pointers)
	}
}

func TestLemmaQueries(t *testing.T) {
	s := loadFixture(t, LoadMemoryMapped)

	tests := []struct {
		pos   wntypes.Pos
		lemma string
		want  bool
	}{
		{wntypes.Noun, "dog", true},
		{wntypes.Noun, "  DOG ", true},
		{wntypes.Noun, "domestic dog", true},
		{wntypes.Verb, "run", true},
		{wntypes.Verb, "running", false},
		{wntypes.Adj, "dog", false},
	}
	for _, tt := range tests {
		if got := s.LemmaExists(tt.pos, tt.lemma); got != tt.want {
			t.Errorf("LemmaExists(%v, %q) = %v, want %v", tt.pos, tt.lemma, got, tt.want)
		}
	}

	ids := s.SynsetsForLemma(wntypes.Noun, "Domestic_Dog")
	if !reflect.DeepEqual(ids, []wntypes.SynsetID{{Pos: wntypes.Noun, Offset: 1740}}) {
		t.Errorf("SynsetsForLemma = %v", ids)
	}
	if ids := s.SynsetsForLemma(wntypes.Noun, "cat"); len(ids) != 0 {
		t.Errorf("SynsetsForLemma(cat) = %v", ids)
	}
}

func TestSenseCount(t *testing.T) {
	s := loadFixture(t, LoadOwned)
	if n, ok := s.SenseCount(wntypes.Noun, "dog", 1740); !ok || n != 42 {
		t.Errorf("SenseCount(dog) = %d, %v", n, ok)
	}
	if n, ok := s.SenseCount(wntypes.Verb, "run", 2500); !ok || n != 7 {
		t.Errorf("SenseCount(run) = %d, %v (sense number should default to 1)", n, ok)
	}
	if _, ok := s.SenseCount(wntypes.Noun, "dog", 2140); ok {
		t.Error("SenseCount for an offset not in the entry should be absent")
	}
	if _, ok := s.SenseCount(wntypes.Noun, "child", 3000); ok {
		t.Error("SenseCount for a lemma without cntlist data should be absent")
	}
	if _, ok := s.SenseCount(wntypes.Adj, "quick", 4000); ok {
		t.Error("cntlist line with an unknown pos should be skipped")
	}
}

func TestCounts(t *testing.T) {
	s := loadFixture(t, LoadMemoryMapped)
	if got := s.IndexCount(); got != 8 {
		t.Errorf("IndexCount() = %d", got)
	}
	if got := s.LemmaCount(); got != 8 {
		t.Errorf("LemmaCount() = %d", got)
	}
	if got := s.SynsetCount(); got != 7 {
		t.Errorf("SynsetCount() = %d", got)
	}
	if got := s.FrameTemplateCount(); got != 2 {
		t.Errorf("FrameTemplateCount() = %d", got)
	}
	if got := s.SenseCountEntries(); got != 3 {
		t.Errorf("SenseCountEntries() = %d", got)
	}

	n := 0
	pointers := 0
	for syn := range s.Synsets() {
		n++
		pointers += len(syn.Pointers)
	}
	if n != 7 || pointers != 4 {
		t.Errorf("iterated %d synsets with %d pointers", n, pointers)
	}
}

func TestNormalizeLemma(t *testing.T) {
	for _, in := range []string{" Ice Cream ", "ice_cream", "ICE cream"} {
		got := NormalizeLemma(in)
		if got != "ice_cream" {
			t.Errorf("NormalizeLemma(%q) = %q", in, got)
		}
		if NormalizeLemma(got) != got {
			t.Errorf("NormalizeLemma not idempotent for %q", in)
		}
	}
}

// copyFixture copies the fixture into a temp dir so a test can damage it.
func copyFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	entries, err := os.ReadDir(fixtureDir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		data, err := os.ReadFile(filepath.Join(fixtureDir, e.Name()))
		if err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, e.Name()), data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestLoadMissingRequiredFile(t *testing.T) {
	dir := copyFixture(t)
	if err := os.Remove(filepath.Join(dir, "index.adv")); err != nil {
		t.Fatal(err)
	}
	_, err := Load(dir, LoadOwned)
	if err == nil || !strings.Contains(err.Error(), "missing required WordNet file") {
		t.Errorf("Load error = %v", err)
	}
}

func TestLoadWithoutOptionalFiles(t *testing.T) {
	dir := copyFixture(t)
	for _, name := range []string{"frames.vrb", "cntlist.rev"} {
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			t.Fatal(err)
		}
	}
	s, err := Load(dir, LoadMemoryMapped)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer s.Close()
	if s.FrameTemplateCount() != 0 || s.SenseCountEntries() != 0 {
		t.Errorf("optional tables not empty: %d frames, %d counts", s.FrameTemplateCount(), s.SenseCountEntries())
	}
	if _, ok := s.SenseCount(wntypes.Noun, "dog", 1740); ok {
		t.Error("SenseCount present without cntlist.rev")
	}
}

func TestLoadEmptyDataFile(t *testing.T) {
	dir := copyFixture(t)
	for _, name := range []string{"index.adv", "data.adv"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	s, err := Load(dir, LoadMemoryMapped)
	if err != nil {
		t.Fatalf("Load with empty adverb files: %v", err)
	}
	defer s.Close()
	if s.LemmaExists(wntypes.Adv, "quickly") {
		t.Error("quickly should be gone")
	}
}

func TestLoadRejectsMalformedLines(t *testing.T) {
	tests := []struct {
		name string
		file string
		line string
		msg  string
	}{
		{"too few index tokens", "index.noun", "cat n 1 0\n", "too few tokens"},
		{"pointer count", "index.noun", "cat n 1 9 @ 1 0 00001740\n", "pointer count mismatch"},
		{"synset count", "index.noun", "cat n 2 0 1 0 00001740\n", "synset_cnt mismatch (expected 2, got 1)"},
		{"bad offset", "index.noun", "cat n 1 0 1 0 zz\n", "synset_offset"},
		{"bad ss_type", "data.noun", "00009000 03 q 01 cat 0 000 | a cat\n", "invalid ss_type"},
		{"bad w_cnt", "data.noun", "00009000 03 n zz cat 0 000 | a cat\n", "w_cnt"},
		{"short words", "data.noun", "00009000 03 n 03 cat 0 | a cat\n", "word count mismatch"},
		{"short pointers", "data.noun", "00009000 03 n 01 cat 0 002 @ 00001740 n 0000 | a cat\n", "pointer count mismatch"},
		{"bad pointer pos", "data.noun", "00009000 03 n 01 cat 0 001 @ 00001740 q 0000 | a cat\n", "invalid pointer pos"},
		{"missing plus", "data.verb", "00009000 38 v 01 nap 0 000 01 - 01 00 | sleep\n", "expected '+'"},
		{"short frames", "data.verb", "00009000 38 v 01 nap 0 000 02 + 01 00 | sleep\n", "incomplete frame entry"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := copyFixture(t)
			path := filepath.Join(dir, tt.file)
			f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
			if err != nil {
				t.Fatal(err)
			}
			if _, err := f.WriteString(tt.line); err != nil {
				t.Fatal(err)
			}
			f.Close()

			_, err = Load(dir, LoadOwned)
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("Load error = %v, want *ParseError", err)
			}
			if perr.File != tt.file {
				t.Errorf("File = %q, want %q", perr.File, tt.file)
			}
			if perr.Line < 2 {
				t.Errorf("Line = %d", perr.Line)
			}
			if !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("error %q does not mention %q", err, tt.msg)
			}
		})
	}
}

func TestPointerFieldDegrades(t *testing.T) {
	dir := copyFixture(t)
	f, err := os.OpenFile(filepath.Join(dir, "data.noun"), os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	f.WriteString("00009000 05 n 01 cat 0 001 @ 00002140 n 01 | a small feline\n")
	f.Close()

	s, err := Load(dir, LoadOwned)
	if err != nil {
		t.Fatalf("short src/dst field should not fail the load: %v", err)
	}
	defer s.Close()
	syn, _ := s.Synset(wntypes.SynsetID{Pos: wntypes.Noun, Offset: 9000})
	if len(syn.Pointers) != 1 || syn.Pointers[0].SourceWord != 0 || syn.Pointers[0].TargetWord != 0 {
		t.Errorf("Pointers = %+v", syn.Pointers)
	}
}

func TestParseGloss(t *testing.T) {
	tests := []struct {
		gloss    string
		def      string
		examples []string
	}{
		{` domestic animal; "a pet dog" `, "domestic animal", []string{"a pet dog"}},
		{`no examples here`, "no examples here", nil},
		{`a; "one"; "two"`, "a", []string{"one", "two"}},
		{`"quoted; semicolon" first; rest`, `"quoted; semicolon" first`, []string{"quoted; semicolon"}},
		{`empty ""; "x"`, `empty ""`, []string{"x"}},
		{`open; "never closed`, "open", nil},
	}
	for _, tt := range tests {
		buf := []byte(tt.gloss)
		p := &lineParser{file: fileDataNoun, buf: buf}
		g := p.parseGloss(span{0, len(buf)})
		text := func(r TextRef) string { return string(buf[r.start : r.start+r.length]) }
		if got := text(g.definition); got != tt.def {
			t.Errorf("%q: definition = %q, want %q", tt.gloss, got, tt.def)
		}
		var examples []string
		for _, ex := range g.examples {
			examples = append(examples, text(ex))
		}
		if !reflect.DeepEqual(examples, tt.examples) {
			t.Errorf("%q: examples = %q, want %q", tt.gloss, examples, tt.examples)
		}
	}
}

func TestParseWordNumber(t *testing.T) {
	tests := map[string]uint16{"00": 0, "01": 1, "0a": 10, "12": 18, "zz": 0}
	for in, want := range tests {
		if got := parseWordNumber(in); got != want {
			t.Errorf("parseWordNumber(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestParseLoadMode(t *testing.T) {
	if m, err := ParseLoadMode("owned"); err != nil || m != LoadOwned {
		t.Errorf("ParseLoadMode(owned) = %v, %v", m, err)
	}
	if m, err := ParseLoadMode("mmap"); err != nil || m != LoadMemoryMapped {
		t.Errorf("ParseLoadMode(mmap) = %v, %v", m, err)
	}
	if _, err := ParseLoadMode("disk"); err == nil {
		t.Error("ParseLoadMode(disk) accepted")
	}
}
