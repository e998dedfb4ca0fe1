package reviewsense

import (
	"cmp"
	"slices"
)

// buildFrequencyMap counts every occurrence of every informative word across
// the corpus.
func buildFrequencyMap(lex *Lexicon, classifier *Classifier) map[string]int {
	frequencies := make(map[string]int)
	for _, cl := range lex.corpus {
		for _, tok := range cl.tokens {
			if classifier.IsStopWord(tok) {
				continue
			}
			frequencies[normalizeWord(tok)]++
		}
	}
	return frequencies
}

// rankFrequencies sorts the frequency map by count, descending. Equal counts
// are ordered alphabetically so the ranking is deterministic.
func rankFrequencies(frequencies map[string]int) []WordFrequency {
	ranking := make([]WordFrequency, 0, len(frequencies))
	for word, count := range frequencies {
		ranking = append(ranking, WordFrequency{Word: word, Count: count})
	}
	slices.SortFunc(ranking, func(a, b WordFrequency) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Word, b.Word)
	})
	return ranking
}

// WordCount returns the number of whole-word, case-insensitive occurrences of
// word across all corpus lines. A line may contribute more than once.
func (m *Model) WordCount(word string) int {
	key := normalizeWord(word)
	total := 0
	for _, cl := range m.lex.corpus {
		total += countWord(key, cl.tokens)
	}
	return total
}

// TopWords returns the n most frequent informative words. The words are
// distinct and callers should treat them as a set. A negative n is an
// ErrInvalidArgument; an n larger than the vocabulary returns every word.
func (m *Model) TopWords(n int) ([]string, error) {
	if n < 0 {
		return nil, invalidArgument("top words size %d is negative", n)
	}
	n = min(n, len(m.ranking))
	words := make([]string, n)
	for i := range words {
		words[i] = m.ranking[i].Word
	}
	return words, nil
}

// Ranking returns every informative word with its count, most frequent first.
func (m *Model) Ranking() []WordFrequency {
	return slices.Clone(m.ranking)
}
