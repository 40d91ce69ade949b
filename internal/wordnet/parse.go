package wordnet

import (
	"bytes"
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/internal/wntypes"
)

// ParseError reports a structural problem in a dictionary file.
type ParseError struct {
	File string
	Line int
	Msg  string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s:%d: %s: %v", e.File, e.Line, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Msg)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// span is a half-open byte range into a file image.
type span struct {
	start, end int
}

// forEachLine calls fn with the bounds of every line, CR stripped.
func forEachLine(buf []byte, fn func(lineNo, start, end int) error) error {
	lineNo := 0
	for pos := 0; pos < len(buf); {
		lineNo++
		end := len(buf)
		next := len(buf)
		if nl := bytes.IndexByte(buf[pos:], '\n'); nl >= 0 {
			end = pos + nl
			next = end + 1
		}
		lineEnd := end
		if lineEnd > pos && buf[lineEnd-1] == '\r' {
			lineEnd--
		}
		if err := fn(lineNo, pos, lineEnd); err != nil {
			return err
		}
		pos = next
	}
	return nil
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

func isHeaderLine(buf []byte, start, end int) bool {
	return start == end || buf[start] == ' ' || buf[start] == '\t'
}

// fields splits buf[start:end] on ASCII whitespace into dst.
func fields(buf []byte, start, end int, dst []span) []span {
	dst = dst[:0]
	i := start
	for i < end {
		for i < end && isSpace(buf[i]) {
			i++
		}
		if i >= end {
			break
		}
		j := i
		for j < end && !isSpace(buf[j]) {
			j++
		}
		dst = append(dst, span{i, j})
		i = j
	}
	return dst
}

func trimSpan(buf []byte, s span) span {
	for s.start < s.end && isSpace(buf[s.start]) {
		s.start++
	}
	for s.end > s.start && isSpace(buf[s.end-1]) {
		s.end--
	}
	return s
}

func tokenString(buf []byte, s span) string {
	return string(buf[s.start:s.end])
}

func parseUint(buf []byte, s span, base, bits int) (uint64, error) {
	return strconv.ParseUint(tokenString(buf, s), base, bits)
}

type lineParser struct {
	file   fileKind
	buf    []byte
	lineNo int
}

func (p *lineParser) fail(msg string, err error) *ParseError {
	return &ParseError{File: p.file.name(), Line: p.lineNo, Msg: msg, Err: err}
}

func (p *lineParser) ref(s span) TextRef {
	return TextRef{file: p.file, start: uint32(s.start), length: uint32(s.end - s.start)}
}

func (p *lineParser) uint(s span, base, bits int, field string) (uint64, error) {
	v, err := parseUint(p.buf, s, base, bits)
	if err != nil {
		return 0, p.fail(field, err)
	}
	return v, nil
}

// parseIndexLine reads
// lemma pos synset_cnt p_cnt ptr_symbol* sense_cnt tagsense_cnt synset_offset*.
func (p *lineParser) parseIndexLine(pos wntypes.Pos, toks []span) (*indexRecord, error) {
	if len(toks) < 6 {
		return nil, p.fail("malformed index line (too few tokens)", nil)
	}
	synsetCnt, err := p.uint(toks[2], 10, 32, "synset_cnt")
	if err != nil {
		return nil, err
	}
	pCnt, err := p.uint(toks[3], 10, 32, "p_cnt")
	if err != nil {
		return nil, err
	}

	i := 4
	if uint64(len(toks)-i) < pCnt {
		return nil, p.fail("pointer count mismatch", nil)
	}
	rec := &indexRecord{
		lemma:      p.ref(toks[0]),
		pos:        pos,
		synsetCnt:  uint32(synsetCnt),
		pCnt:       uint32(pCnt),
		ptrSymbols: make([]TextRef, 0, pCnt),
	}
	for _, sym := range toks[i : i+int(pCnt)] {
		rec.ptrSymbols = append(rec.ptrSymbols, p.ref(sym))
	}
	i += int(pCnt)

	if len(toks) < i+2 {
		return nil, p.fail("missing sense counts", nil)
	}
	senseCnt, err := p.uint(toks[i], 10, 32, "sense_cnt")
	if err != nil {
		return nil, err
	}
	tagsenseCnt, err := p.uint(toks[i+1], 10, 32, "tagsense_cnt")
	if err != nil {
		return nil, err
	}
	rec.senseCnt = uint32(senseCnt)
	rec.tagsenseCnt = uint32(tagsenseCnt)
	i += 2

	offsets := toks[i:]
	if uint64(len(offsets)) != synsetCnt {
		return nil, p.fail(fmt.Sprintf("synset_cnt mismatch (expected %d, got %d)", synsetCnt, len(offsets)), nil)
	}
	rec.offsets = make([]uint32, len(offsets))
	for k, tok := range offsets {
		off, err := p.uint(tok, 10, 32, "synset_offset")
		if err != nil {
			return nil, err
		}
		rec.offsets[k] = uint32(off)
	}
	return rec, nil
}

// parseDataLine reads one synset. Everything before '|' is structural and
// strict; the gloss after it is free text.
func (p *lineParser) parseDataLine(pos wntypes.Pos, start, end int, scratch []span) (*synsetRecord, error) {
	structEnd := end
	gloss := span{end, end}
	if bar := bytes.IndexByte(p.buf[start:end], '|'); bar >= 0 {
		structEnd = start + bar
		gloss = span{start + bar + 1, end}
	}
	toks := fields(p.buf, start, structEnd, scratch)
	if len(toks) < 4 {
		return nil, p.fail("malformed data line (too few tokens)", nil)
	}

	offset, err := p.uint(toks[0], 10, 32, "offset")
	if err != nil {
		return nil, err
	}
	lexFilenum, err := p.uint(toks[1], 10, 8, "lex_filenum")
	if err != nil {
		return nil, err
	}
	ssTok := toks[2]
	if ssTok.end-ssTok.start != 1 {
		return nil, p.fail("invalid ss_type "+tokenString(p.buf, ssTok), nil)
	}
	ssType, ok := wntypes.SynsetTypeFromChar(p.buf[ssTok.start])
	if !ok {
		return nil, p.fail("invalid ss_type "+tokenString(p.buf, ssTok), nil)
	}
	wCnt, err := p.uint(toks[3], 16, 32, "w_cnt")
	if err != nil {
		return nil, err
	}

	rec := &synsetRecord{
		id:         wntypes.SynsetID{Pos: pos, Offset: uint32(offset)},
		lexFilenum: uint8(lexFilenum),
		synsetType: ssType,
	}

	i := 4
	if uint64(len(toks)-i) < 2*wCnt {
		return nil, p.fail("word count mismatch", nil)
	}
	rec.words = make([]lemmaRecord, 0, wCnt)
	for w := uint64(0); w < wCnt; w++ {
		lexID, err := p.uint(toks[i+1], 16, 8, "lex_id")
		if err != nil {
			return nil, err
		}
		rec.words = append(rec.words, lemmaRecord{text: p.ref(toks[i]), lexID: uint8(lexID)})
		i += 2
	}

	if i >= len(toks) {
		return nil, p.fail("missing p_cnt", nil)
	}
	pCnt, err := p.uint(toks[i], 10, 32, "p_cnt")
	if err != nil {
		return nil, err
	}
	i++
	if uint64(len(toks)-i) < 4*pCnt {
		return nil, p.fail("pointer count mismatch", nil)
	}
	rec.pointers = make([]pointerRecord, 0, pCnt)
	for k := uint64(0); k < pCnt; k++ {
		target, err := p.uint(toks[i+1], 10, 32, "pointer offset")
		if err != nil {
			return nil, err
		}
		posTok := toks[i+2]
		targetPos, ok := wntypes.PosFromChar(p.buf[posTok.start])
		if !ok || posTok.end-posTok.start != 1 {
			return nil, p.fail("invalid pointer pos "+tokenString(p.buf, posTok), nil)
		}
		src, dst := wntypes.DecodeSourceTarget(tokenString(p.buf, toks[i+3]))
		rec.pointers = append(rec.pointers, pointerRecord{
			symbol: p.ref(toks[i]),
			target: wntypes.SynsetID{Pos: targetPos, Offset: uint32(target)},
			src:    src,
			dst:    dst,
		})
		i += 4
	}

	if pos == wntypes.Verb && i < len(toks) {
		fCnt, err := p.uint(toks[i], 10, 32, "f_cnt")
		if err != nil {
			return nil, err
		}
		i++
		if uint64(len(toks)-i) < 3*fCnt {
			return nil, p.fail("incomplete frame entry", nil)
		}
		rec.frames = make([]wntypes.Frame, 0, fCnt)
		for k := uint64(0); k < fCnt; k++ {
			if tokenString(p.buf, toks[i]) != "+" {
				return nil, p.fail("expected '+' before frame entry", nil)
			}
			num, err := p.uint(toks[i+1], 10, 16, "frame_number")
			if err != nil {
				return nil, err
			}
			rec.frames = append(rec.frames, wntypes.Frame{
				Number:     uint16(num),
				WordNumber: parseWordNumber(tokenString(p.buf, toks[i+2])),
			})
			i += 3
		}
	}

	rec.gloss = p.parseGloss(gloss)
	return rec, nil
}

// parseWordNumber accepts hex or decimal. Zero and garbage both mean the
// frame applies to every word.
func parseWordNumber(tok string) uint16 {
	if v, err := strconv.ParseUint(tok, 16, 16); err == nil {
		return uint16(v)
	}
	if v, err := strconv.ParseUint(tok, 10, 16); err == nil {
		return uint16(v)
	}
	return 0
}

// parseGloss splits the definition (text before the first unquoted ';')
// from the double-quoted examples.
func (p *lineParser) parseGloss(s span) glossRecord {
	s = trimSpan(p.buf, s)
	g := glossRecord{raw: p.ref(s)}

	defEnd := -1
	inQuote := false
	quoteStart := 0
	for i := s.start; i < s.end; i++ {
		switch p.buf[i] {
		case '"':
			if inQuote {
				if i > quoteStart+1 {
					g.examples = append(g.examples, p.ref(span{quoteStart + 1, i}))
				}
				inQuote = false
			} else {
				inQuote = true
				quoteStart = i
			}
		case ';':
			if !inQuote && defEnd < 0 {
				defEnd = i
			}
		}
	}
	if defEnd < 0 {
		defEnd = s.end
	}
	g.definition = p.ref(trimSpan(p.buf, span{s.start, defEnd}))
	return g
}

func validUTF8(buf []byte, start, end int) bool {
	return utf8.Valid(buf[start:end])
}
