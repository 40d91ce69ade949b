package morphy

import (
	"testing"

	"github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/internal/wntypes"
)

func BenchmarkLemmasFor(b *testing.B) {
	l := New(map[wntypes.Pos]map[string][]string{
		wntypes.Verb: {"ran": {"run"}},
	})
	exists := fakeExists(wntypes.Verb, "run", "walk", "happy")
	words := []string{"ran", "running", "walked", "walks", "happiest"}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, w := range words {
			_ = l.LemmasFor(wntypes.Verb, w, exists)
		}
	}
}
