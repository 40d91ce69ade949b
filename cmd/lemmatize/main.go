package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/internal/morphy"
	"github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/internal/wntypes"
	"github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/internal/wordnet"
	"github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/pkg/logger"
)

var demoWords = []string{"running", "better", "children", "dogs", "happiest"}

func main() {
	dir := flag.String("dir", "dict", "WordNet dictionary directory")
	demo := flag.Bool("demo", false, "lemmatize a fixed list of sample words")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: lemmatize [-dir DIR] (-demo | WORD)\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	var words []string
	switch {
	case *demo && flag.NArg() == 0:
		words = demoWords
	case !*demo && flag.NArg() == 1:
		words = flag.Args()
	default:
		flag.Usage()
		os.Exit(2)
	}

	logger.Setup("warn", "text")

	dict, err := wordnet.Load(*dir, wordnet.LoadMemoryMapped)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading WordNet from %s: %v\n", *dir, err)
		os.Exit(1)
	}
	defer dict.Close()
	lemmatizer, err := morphy.Load(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading exceptions from %s: %v\n", *dir, err)
		os.Exit(1)
	}

	fmt.Printf("Dictionary: %s\n", *dir)
	for _, word := range words {
		fmt.Printf("\nSurface: %s\n", word)
		for _, pos := range wntypes.AllPos {
			candidates := lemmatizer.LemmasFor(pos, word, dict.LemmaExists)
			if len(candidates) == 0 {
				continue
			}
			fmt.Printf("  %s:\n", pos)
			for _, c := range candidates {
				fmt.Printf("    %-12s [%s]\n", c.Lemma, c.Source)
			}
		}
	}
}
