// Package wntypes holds the WordNet data model shared by the dictionary
// store, the lemmatizer and the lookup layer.
package wntypes

import (
	"fmt"
	"strconv"
)

// Pos is a WordNet part of speech. Adjective satellites fold into Adj.
type Pos uint8

const (
	Noun Pos = iota
	Verb
	Adj
	Adv
)

// AllPos lists every part of speech in lookup order.
var AllPos = []Pos{Noun, Verb, Adj, Adv}

// PosFromChar maps a WordNet pos character. 's' (satellite) maps to Adj.
func PosFromChar(c byte) (Pos, bool) {
	switch c {
	case 'n':
		return Noun, true
	case 'v':
		return Verb, true
	case 'a', 's':
		return Adj, true
	case 'r':
		return Adv, true
	default:
		return 0, false
	}
}

// Char returns the single-letter code used in index and data files.
func (p Pos) Char() byte {
	switch p {
	case Noun:
		return 'n'
	case Verb:
		return 'v'
	case Adj:
		return 'a'
	default:
		return 'r'
	}
}

// Label is the name used in API responses.
func (p Pos) Label() string {
	switch p {
	case Noun:
		return "noun"
	case Verb:
		return "verb"
	case Adj:
		return "adj"
	default:
		return "adv"
	}
}

func (p Pos) String() string {
	return p.Label()
}

// SynsetID keys a synset by part of speech and byte offset in its data file.
type SynsetID struct {
	Pos    Pos
	Offset uint32
}

func (id SynsetID) String() string {
	return fmt.Sprintf("%c%08d", id.Pos.Char(), id.Offset)
}

// SynsetType distinguishes adjective satellites from head adjectives.
type SynsetType uint8

const (
	SynsetNoun SynsetType = iota
	SynsetVerb
	SynsetAdj
	SynsetAdjSatellite
	SynsetAdv
)

// SynsetTypeFromChar parses the ss_type field of a data line.
func SynsetTypeFromChar(c byte) (SynsetType, bool) {
	switch c {
	case 'n':
		return SynsetNoun, true
	case 'v':
		return SynsetVerb, true
	case 'a':
		return SynsetAdj, true
	case 's':
		return SynsetAdjSatellite, true
	case 'r':
		return SynsetAdv, true
	default:
		return 0, false
	}
}

// Lemma is one word of a synset.
type Lemma struct {
	Text  string
	LexID uint8
}

// Pointer is a relation to another synset. SourceWord and TargetWord are
// 1-based word numbers; zero means the relation holds for the whole synset.
type Pointer struct {
	Symbol     string
	Target     SynsetID
	SourceWord uint16
	TargetWord uint16
}

// Frame is a verb frame. WordNumber zero means every word of the synset.
type Frame struct {
	Number     uint16
	WordNumber uint16
}

// Gloss is the text after '|' in a data line.
type Gloss struct {
	Raw        string
	Definition string
	Examples   []string
}

// Synset is a fully materialized data-file record.
type Synset struct {
	ID         SynsetID
	LexFilenum uint8
	Type       SynsetType
	Words      []Lemma
	Pointers   []Pointer
	Frames     []Frame
	Gloss      Gloss
}

// IndexEntry is a parsed index-file line.
type IndexEntry struct {
	Lemma         string
	Pos           Pos
	SynsetCnt     uint32
	PCnt          uint32
	PtrSymbols    []string
	SenseCnt      uint32
	TagsenseCnt   uint32
	SynsetOffsets []uint32
}

// DecodeSourceTarget splits the four-hex-digit source/target field of a
// pointer. Anything but exactly four hex digits decodes to (0, 0).
func DecodeSourceTarget(field string) (src, dst uint16) {
	if len(field) != 4 {
		return 0, 0
	}
	v, err := strconv.ParseUint(field, 16, 16)
	if err != nil {
		return 0, 0
	}
	return uint16(v >> 8), uint16(v & 0xff)
}
