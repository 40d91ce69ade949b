package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/internal/wntypes"
	"github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/internal/wordnet"
	"github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/pkg/logger"
)

func main() {
	dir := flag.String("dir", "dict", "WordNet dictionary directory")
	modeFlag := flag.String("mode", "mmap", "load mode: mmap or owned")
	flag.Parse()

	logger.Setup("warn", "text")

	mode, err := wordnet.ParseLoadMode(*modeFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	dict, err := wordnet.Load(*dir, mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading WordNet from %s: %v\n", *dir, err)
		os.Exit(1)
	}
	defer dict.Close()

	var words, pointers, examples, frameInstances int
	for syn := range dict.Synsets() {
		words += len(syn.Words)
		pointers += len(syn.Pointers)
		examples += len(syn.Gloss.Examples)
		if syn.ID.Pos == wntypes.Verb {
			frameInstances += len(syn.Frames)
		}
	}

	fmt.Printf("Dictionary:             %s (%s)\n", dict.Dir(), dict.Mode())
	fmt.Printf("Index entries:          %d\n", dict.IndexCount())
	fmt.Printf("Lemma keys:             %d\n", dict.LemmaCount())
	fmt.Printf("Synsets:                %d\n", dict.SynsetCount())
	fmt.Printf("Words in synsets:       %d\n", words)
	fmt.Printf("Pointers:               %d\n", pointers)
	fmt.Printf("Gloss examples:         %d\n", examples)
	fmt.Printf("Verb frame templates:   %d\n", dict.FrameTemplateCount())
	fmt.Printf("Verb frame instances:   %d\n", frameInstances)
	fmt.Printf("Sense-count entries:    %d\n", dict.SenseCountEntries())

	fmt.Println()
	for _, check := range []struct {
		pos   wntypes.Pos
		lemma string
	}{
		{wntypes.Noun, "dog"},
		{wntypes.Verb, "run"},
	} {
		fmt.Printf("%s (%s): exists=%t synsets=%d\n",
			check.lemma, check.pos, dict.LemmaExists(check.pos, check.lemma),
			len(dict.SynsetsForLemma(check.pos, check.lemma)))
	}
}
