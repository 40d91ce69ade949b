package wntypes

import "testing"

func TestDecodeSourceTarget(t *testing.T) {
	tests := []struct {
		field    string
		src, dst uint16
	}{
		{"0101", 1, 1},
		{"0000", 0, 0},
		{"0a03", 10, 3},
		{"FF00", 255, 0},
		{"101", 0, 0},
		{"01010", 0, 0},
		{"zz01", 0, 0},
		{"", 0, 0},
	}
	for _, tt := range tests {
		src, dst := DecodeSourceTarget(tt.field)
		if src != tt.src || dst != tt.dst {
			t.Errorf("DecodeSourceTarget(%q) = (%d, %d), want (%d, %d)", tt.field, src, dst, tt.src, tt.dst)
		}
	}
}

func TestPosFromChar(t *testing.T) {
	tests := map[byte]Pos{'n': Noun, 'v': Verb, 'a': Adj, 's': Adj, 'r': Adv}
	for c, want := range tests {
		got, ok := PosFromChar(c)
		if !ok || got != want {
			t.Errorf("PosFromChar(%q) = %v, %v", c, got, ok)
		}
	}
	if _, ok := PosFromChar('x'); ok {
		t.Error("PosFromChar('x') accepted")
	}
	for _, p := range AllPos {
		back, _ := PosFromChar(p.Char())
		if back != p {
			t.Errorf("Char round trip for %v gave %v", p, back)
		}
	}
}

func TestSynsetIDString(t *testing.T) {
	id := SynsetID{Pos: Noun, Offset: 1740}
	if got := id.String(); got != "n00001740" {
		t.Errorf("String() = %q", got)
	}
}
