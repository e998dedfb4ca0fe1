package reviewsense

import "slices"

// corpusLine is a labeled reference review with its tokens precomputed.
type corpusLine struct {
	number int      // 1-based position in the loaded corpus
	text   string   // the raw line, label included
	tokens []string // tokens used for word statistics
}

// Lexicon holds the stopword lines and the labeled corpus lines of one corpus
// version and answers whole-word membership queries against them.
//
// A Lexicon is immutable once built.
type Lexicon struct {
	stopwords []string
	corpus    []corpusLine

	stopIndex map[string]struct{} // normalized tokens of every stopword line
	vocab     map[string]struct{} // normalized tokens of every corpus line
}

// NewLexicon indexes stopword and corpus lines. When countLabelTokens is
// false only the review body of a corpus line (the text after its label) is
// tokenized; otherwise the whole line is.
func NewLexicon(stopwords, corpus []string, countLabelTokens bool) *Lexicon {
	lex := &Lexicon{
		stopwords: slices.Clone(stopwords),
		corpus:    make([]corpusLine, 0, len(corpus)),
		stopIndex: make(map[string]struct{}),
		vocab:     make(map[string]struct{}),
	}

	for _, line := range stopwords {
		for _, tok := range SplitWords(line) {
			lex.stopIndex[normalizeWord(tok)] = struct{}{}
		}
	}

	for i, line := range corpus {
		text := line
		if !countLabelTokens {
			_, text = splitLabel(line)
		}
		tokens := SplitWords(text)
		for _, tok := range tokens {
			lex.vocab[normalizeWord(tok)] = struct{}{}
		}
		lex.corpus = append(lex.corpus, corpusLine{
			number: i + 1,
			text:   line,
			tokens: tokens,
		})
	}

	return lex
}

// Stopwords returns a copy of the stopword lines.
func (l *Lexicon) Stopwords() []string {
	return slices.Clone(l.stopwords)
}

// Corpus returns a copy of the corpus lines.
func (l *Lexicon) Corpus() []string {
	lines := make([]string, len(l.corpus))
	for i, cl := range l.corpus {
		lines[i] = cl.text
	}
	return lines
}

// Len returns the number of corpus lines.
func (l *Lexicon) Len() int {
	return len(l.corpus)
}

// InStopwords reports whether word case-insensitively equals a whole word of
// any stopword line.
func (l *Lexicon) InStopwords(word string) bool {
	_, ok := l.stopIndex[normalizeWord(word)]
	return ok
}

// InCorpus reports whether word case-insensitively appears as a whole word in
// any corpus line.
func (l *Lexicon) InCorpus(word string) bool {
	_, ok := l.vocab[normalizeWord(word)]
	return ok
}

// linesContaining returns the corpus lines holding key as a whole word.
func (l *Lexicon) linesContaining(key string) []corpusLine {
	var lines []corpusLine
	for _, cl := range l.corpus {
		if countWord(key, cl.tokens) > 0 {
			lines = append(lines, cl)
		}
	}
	return lines
}

// sameLines reports whether the lexicon was built from exactly these lines.
func (l *Lexicon) sameLines(stopwords, corpus []string) bool {
	if !slices.Equal(l.stopwords, stopwords) || len(l.corpus) != len(corpus) {
		return false
	}
	for i, cl := range l.corpus {
		if cl.text != corpus[i] {
			return false
		}
	}
	return true
}
