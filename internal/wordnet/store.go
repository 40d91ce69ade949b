// Package wordnet loads a WordNet dictionary directory into an immutable,
// byte-range addressed store. Records keep offsets into the file images and
// strings are only built when a caller asks for a synset or entry.
package wordnet

import (
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/internal/wntypes"
)

type fileKind uint8

const (
	fileDataNoun fileKind = iota
	fileDataVerb
	fileDataAdj
	fileDataAdv
	fileIndexNoun
	fileIndexVerb
	fileIndexAdj
	fileIndexAdv
	fileFrames
	fileCntlist
	numFileKinds
)

var fileNames = [numFileKinds]string{
	"data.noun", "data.verb", "data.adj", "data.adv",
	"index.noun", "index.verb", "index.adj", "index.adv",
	"frames.vrb", "cntlist.rev",
}

func (k fileKind) name() string { return fileNames[k] }

func dataFile(p wntypes.Pos) fileKind  { return fileDataNoun + fileKind(p) }
func indexFile(p wntypes.Pos) fileKind { return fileIndexNoun + fileKind(p) }

// TextRef addresses text inside one of the store's file images.
type TextRef struct {
	file   fileKind
	start  uint32
	length uint32
}

type lemmaRecord struct {
	text  TextRef
	lexID uint8
}

type pointerRecord struct {
	symbol   TextRef
	target   wntypes.SynsetID
	src, dst uint16
}

type glossRecord struct {
	raw        TextRef
	definition TextRef
	examples   []TextRef
}

type synsetRecord struct {
	id         wntypes.SynsetID
	lexFilenum uint8
	synsetType wntypes.SynsetType
	words      []lemmaRecord
	pointers   []pointerRecord
	frames     []wntypes.Frame
	gloss      glossRecord
}

type indexRecord struct {
	lemma       TextRef
	pos         wntypes.Pos
	synsetCnt   uint32
	pCnt        uint32
	ptrSymbols  []TextRef
	senseCnt    uint32
	tagsenseCnt uint32
	offsets     []uint32
}

type indexKey struct {
	pos   wntypes.Pos
	lemma string
}

type senseKey struct {
	lemma string
	pos   wntypes.Pos
	sense uint32
}

// Store is immutable after Load and safe for concurrent readers. Close
// releases mapped files; the store must not be used afterwards.
type Store struct {
	dir         string
	mode        LoadMode
	sources     [numFileKinds]byteSource
	index       map[indexKey]*indexRecord
	synsets     map[wntypes.SynsetID]*synsetRecord
	frames      map[uint16]TextRef
	senseCounts map[senseKey]uint32
	lemmas      int
}

// Load reads the eight required data and index files plus the optional
// frames.vrb and cntlist.rev from dir. Any structural error aborts the load.
func Load(dir string, mode LoadMode) (*Store, error) {
	start := time.Now()
	log := slog.Default().With("component", "wordnet")

	for k := fileDataNoun; k <= fileIndexAdv; k++ {
		path := filepath.Join(dir, k.name())
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("missing required WordNet file: %s: %w", path, err)
		}
	}

	s := &Store{
		dir:         dir,
		mode:        mode,
		index:       make(map[indexKey]*indexRecord),
		synsets:     make(map[wntypes.SynsetID]*synsetRecord),
		frames:      make(map[uint16]TextRef),
		senseCounts: make(map[senseKey]uint32),
	}
	if err := s.load(log); err != nil {
		s.Close()
		return nil, err
	}

	log.Info("wordnet loaded",
		"dir", dir,
		"mode", mode.String(),
		"index_entries", len(s.index),
		"synsets", len(s.synsets),
		"frame_templates", len(s.frames),
		"sense_counts", len(s.senseCounts),
		"duration", time.Since(start),
	)
	return s, nil
}

func (s *Store) load(log *slog.Logger) error {
	for k := fileKind(0); k < numFileKinds; k++ {
		src, err := openSource(filepath.Join(s.dir, k.name()), s.mode)
		if err != nil {
			if k >= fileFrames && errors.Is(err, fs.ErrNotExist) {
				s.sources[k] = ownedSource(nil)
				continue
			}
			return fmt.Errorf("reading %s: %w", k.name(), err)
		}
		s.sources[k] = src
	}

	distinct := make(map[string]struct{})
	for _, pos := range wntypes.AllPos {
		if err := s.parseIndex(pos, distinct); err != nil {
			return err
		}
		if err := s.parseData(pos); err != nil {
			return err
		}
	}
	s.lemmas = len(distinct)
	s.parseFrames(log)
	s.parseCntlist(log)
	return nil
}

func (s *Store) parseIndex(pos wntypes.Pos, distinct map[string]struct{}) error {
	kind := indexFile(pos)
	buf := s.sources[kind].Bytes()
	p := &lineParser{file: kind, buf: buf}
	var toks []span
	return forEachLine(buf, func(lineNo, start, end int) error {
		if isHeaderLine(buf, start, end) {
			return nil
		}
		p.lineNo = lineNo
		if !validUTF8(buf, start, end) {
			return p.fail("invalid UTF-8", nil)
		}
		toks = fields(buf, start, end, toks)
		rec, err := p.parseIndexLine(pos, toks)
		if err != nil {
			return err
		}
		key := NormalizeLemma(tokenString(buf, toks[0]))
		s.index[indexKey{pos: pos, lemma: key}] = rec
		distinct[key] = struct{}{}
		return nil
	})
}

func (s *Store) parseData(pos wntypes.Pos) error {
	kind := dataFile(pos)
	buf := s.sources[kind].Bytes()
	p := &lineParser{file: kind, buf: buf}
	var toks []span
	return forEachLine(buf, func(lineNo, start, end int) error {
		if isHeaderLine(buf, start, end) {
			return nil
		}
		p.lineNo = lineNo
		if !validUTF8(buf, start, end) {
			return p.fail("invalid UTF-8", nil)
		}
		rec, err := p.parseDataLine(pos, start, end, toks)
		if err != nil {
			return err
		}
		s.synsets[rec.id] = rec
		return nil
	})
}

// parseFrames reads "number template" lines. Bad numbers are logged and
// skipped.
func (s *Store) parseFrames(log *slog.Logger) {
	buf := s.sources[fileFrames].Bytes()
	p := &lineParser{file: fileFrames, buf: buf}
	forEachLine(buf, func(lineNo, start, end int) error {
		if start == end {
			return nil
		}
		sp := start
		for sp < end && buf[sp] != ' ' {
			sp++
		}
		num, err := strconv.ParseUint(string(buf[start:sp]), 10, 16)
		if err != nil {
			log.Warn("skipping frames.vrb line", "line", lineNo, "error", "invalid frame number")
			return nil
		}
		text := span{end, end}
		if sp < end {
			text = trimSpan(buf, span{sp + 1, end})
		}
		s.frames[uint16(num)] = p.ref(text)
		return nil
	})
}

// parseCntlist reads "count lemma pos [sense_number]" lines. Lines that do
// not fit are skipped.
func (s *Store) parseCntlist(log *slog.Logger) {
	buf := s.sources[fileCntlist].Bytes()
	var toks []span
	skipped := 0
	forEachLine(buf, func(lineNo, start, end int) error {
		toks = fields(buf, start, end, toks)
		if len(toks) == 0 {
			return nil
		}
		if len(toks) < 3 {
			skipped++
			return nil
		}
		count, err := parseUint(buf, toks[0], 10, 32)
		if err != nil {
			skipped++
			return nil
		}
		pos, ok := wntypes.PosFromChar(buf[toks[2].start])
		if !ok {
			skipped++
			return nil
		}
		sense := uint64(1)
		if len(toks) > 3 {
			if n, err := parseUint(buf, toks[3], 10, 32); err == nil {
				sense = n
			}
		}
		key := senseKey{lemma: NormalizeLemma(tokenString(buf, toks[1])), pos: pos, sense: uint32(sense)}
		s.senseCounts[key] = uint32(count)
		return nil
	})
	if skipped > 0 {
		log.Warn("skipped cntlist.rev lines", "count", skipped)
	}
}

// Close unmaps memory-mapped files.
func (s *Store) Close() error {
	var errs []error
	for k, src := range s.sources {
		if src == nil {
			continue
		}
		if err := src.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing %s: %w", fileKind(k).name(), err))
		}
	}
	return errors.Join(errs...)
}

// Dir returns the directory the store was loaded from.
func (s *Store) Dir() string { return s.dir }

// Mode returns the backing mode used by Load.
func (s *Store) Mode() LoadMode { return s.mode }

func (s *Store) bytes(ref TextRef) []byte {
	buf := s.sources[ref.file].Bytes()
	return buf[ref.start : ref.start+ref.length]
}

// Text materializes a TextRef.
func (s *Store) Text(ref TextRef) string {
	return string(s.bytes(ref))
}

// NormalizeLemma trims, ASCII-lowercases and replaces spaces with underscores.
func NormalizeLemma(text string) string {
	text = strings.TrimSpace(text)
	b := []byte(text)
	for i, c := range b {
		switch {
		case 'A' <= c && c <= 'Z':
			b[i] = c + 'a' - 'A'
		case c == ' ':
			b[i] = '_'
		}
	}
	return string(b)
}

// LemmaExists reports whether lemma has at least one synset under pos.
func (s *Store) LemmaExists(pos wntypes.Pos, lemma string) bool {
	rec, ok := s.index[indexKey{pos: pos, lemma: NormalizeLemma(lemma)}]
	return ok && len(rec.offsets) > 0
}

// IndexEntry returns the parsed index line for (pos, lemma).
func (s *Store) IndexEntry(pos wntypes.Pos, lemma string) (wntypes.IndexEntry, bool) {
	rec, ok := s.index[indexKey{pos: pos, lemma: NormalizeLemma(lemma)}]
	if !ok {
		return wntypes.IndexEntry{}, false
	}
	entry := wntypes.IndexEntry{
		Lemma:         s.Text(rec.lemma),
		Pos:           rec.pos,
		SynsetCnt:     rec.synsetCnt,
		PCnt:          rec.pCnt,
		PtrSymbols:    make([]string, len(rec.ptrSymbols)),
		SenseCnt:      rec.senseCnt,
		TagsenseCnt:   rec.tagsenseCnt,
		SynsetOffsets: append([]uint32(nil), rec.offsets...),
	}
	for i, ref := range rec.ptrSymbols {
		entry.PtrSymbols[i] = s.Text(ref)
	}
	return entry, true
}

// SynsetsForLemma returns the lemma's synsets in index order; position k is
// sense number k+1.
func (s *Store) SynsetsForLemma(pos wntypes.Pos, lemma string) []wntypes.SynsetID {
	rec, ok := s.index[indexKey{pos: pos, lemma: NormalizeLemma(lemma)}]
	if !ok {
		return nil
	}
	ids := make([]wntypes.SynsetID, len(rec.offsets))
	for i, off := range rec.offsets {
		ids[i] = wntypes.SynsetID{Pos: pos, Offset: off}
	}
	return ids
}

// Synset materializes one synset.
func (s *Store) Synset(id wntypes.SynsetID) (wntypes.Synset, bool) {
	rec, ok := s.synsets[id]
	if !ok {
		return wntypes.Synset{}, false
	}
	return s.materialize(rec), true
}

// Synsets yields every synset in unspecified order.
func (s *Store) Synsets() iter.Seq[wntypes.Synset] {
	return func(yield func(wntypes.Synset) bool) {
		for _, rec := range s.synsets {
			if !yield(s.materialize(rec)) {
				return
			}
		}
	}
}

func (s *Store) materialize(rec *synsetRecord) wntypes.Synset {
	syn := wntypes.Synset{
		ID:         rec.id,
		LexFilenum: rec.lexFilenum,
		Type:       rec.synsetType,
		Words:      make([]wntypes.Lemma, len(rec.words)),
		Pointers:   make([]wntypes.Pointer, len(rec.pointers)),
		Frames:     append([]wntypes.Frame(nil), rec.frames...),
		Gloss: wntypes.Gloss{
			Raw:        s.Text(rec.gloss.raw),
			Definition: s.Text(rec.gloss.definition),
			Examples:   make([]string, len(rec.gloss.examples)),
		},
	}
	for i, w := range rec.words {
		syn.Words[i] = wntypes.Lemma{Text: s.Text(w.text), LexID: w.lexID}
	}
	for i, ptr := range rec.pointers {
		syn.Pointers[i] = wntypes.Pointer{
			Symbol:     s.Text(ptr.symbol),
			Target:     ptr.target,
			SourceWord: ptr.src,
			TargetWord: ptr.dst,
		}
	}
	for i, ex := range rec.gloss.examples {
		syn.Gloss.Examples[i] = s.Text(ex)
	}
	return syn
}

// SenseCount returns the cntlist frequency of lemma in the synset at offset.
func (s *Store) SenseCount(pos wntypes.Pos, lemma string, offset uint32) (uint32, bool) {
	key := NormalizeLemma(lemma)
	rec, ok := s.index[indexKey{pos: pos, lemma: key}]
	if !ok {
		return 0, false
	}
	for i, off := range rec.offsets {
		if off == offset {
			count, ok := s.senseCounts[senseKey{lemma: key, pos: pos, sense: uint32(i + 1)}]
			return count, ok
		}
	}
	return 0, false
}

// FrameTemplate returns the frames.vrb text for a frame number.
func (s *Store) FrameTemplate(number uint16) (string, bool) {
	ref, ok := s.frames[number]
	if !ok {
		return "", false
	}
	return s.Text(ref), true
}

// IndexCount is the number of (pos, lemma) index entries.
func (s *Store) IndexCount() int { return len(s.index) }

// LemmaCount is the number of distinct lemma strings across all parts of speech.
func (s *Store) LemmaCount() int { return s.lemmas }

// SynsetCount is the number of synsets.
func (s *Store) SynsetCount() int { return len(s.synsets) }

// FrameTemplateCount is the number of frames.vrb templates.
func (s *Store) FrameTemplateCount() int { return len(s.frames) }

// SenseCountEntries is the number of cntlist.rev entries.
func (s *Store) SenseCountEntries() int { return len(s.senseCounts) }
