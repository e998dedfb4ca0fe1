package reviewsense

import (
	"fmt"
	"maps"

	"gonum.org/v1/gonum/stat"
)

// A Model is the sentiment and frequency statistics derived from one version
// of the corpus. Models are immutable; a changed corpus produces a new Model.
type Model struct {
	config     Config
	lex        *Lexicon
	classifier *Classifier

	sentiments  map[string]float64
	frequencies map[string]int
	ranking     []WordFrequency // frequencies sorted by count, descending
}

// BuildModel derives a Model from stopword and corpus lines.
//
// It fails with a *LineError wrapping ErrConfiguration when a corpus line
// holding an informative word does not start with a label digit 0-4.
func BuildModel(stopwords, corpus []string, cfg Config) (*Model, error) {
	return buildModel(NewLexicon(stopwords, corpus, cfg.CountLabelTokens), cfg)
}

func buildModel(lex *Lexicon, cfg Config) (*Model, error) {
	m := &Model{
		config:     cfg,
		lex:        lex,
		classifier: NewClassifier(lex, cfg),
	}

	sentiments, err := buildSentimentMap(lex, m.classifier)
	if err != nil {
		return nil, err
	}
	m.sentiments = sentiments
	m.frequencies = buildFrequencyMap(lex, m.classifier)
	m.ranking = rankFrequencies(m.frequencies)

	return m, nil
}

// buildSentimentMap computes the mean label of every informative corpus word
// in a single pass. A line contributes its label once per distinct word.
func buildSentimentMap(lex *Lexicon, classifier *Classifier) (map[string]float64, error) {
	labelsByWord := make(map[string][]float64)

	for _, cl := range lex.corpus {
		seen := make(map[string]struct{}, len(cl.tokens))
		var (
			label  float64
			parsed bool
		)
		for _, tok := range cl.tokens {
			if classifier.IsStopWord(tok) {
				continue
			}
			key := normalizeWord(tok)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			if !parsed {
				var err error
				if label, err = parseLabel(cl); err != nil {
					return nil, err
				}
				parsed = true
			}
			labelsByWord[key] = append(labelsByWord[key], label)
		}
	}

	sentiments := make(map[string]float64, len(labelsByWord))
	for key, labels := range labelsByWord {
		sentiments[key] = stat.Mean(labels, nil)
	}
	return sentiments, nil
}

// parseLabel reads the sentiment label from the first character of a line.
func parseLabel(cl corpusLine) (float64, error) {
	if cl.text == "" || cl.text[0] < '0' || cl.text[0] > '4' {
		first := ""
		if cl.text != "" {
			first = cl.text[:1]
		}
		return 0, &LineError{
			Line: cl.number,
			Text: cl.text,
			Err:  fmt.Errorf("%w: label %q is not a digit between 0 and 4", ErrConfiguration, first),
		}
	}
	return float64(cl.text[0] - '0'), nil
}

// IsStopWord reports whether token is a stop word for this corpus.
func (m *Model) IsStopWord(token string) bool {
	return m.classifier.IsStopWord(token)
}

// WordSentiment returns the mean label of the corpus lines containing word,
// or Unscored when word is a stop word.
//
// The corpus is scanned directly rather than read from the sentiment map. A
// word that is not a stop word but has no containing line is an
// ErrInvalidState.
func (m *Model) WordSentiment(word string) (float64, error) {
	if m.IsStopWord(word) {
		return Unscored, nil
	}

	lines := m.lex.linesContaining(normalizeWord(word))
	if len(lines) == 0 {
		return 0, fmt.Errorf("%w: word %q is not a stop word but no corpus line contains it", ErrInvalidState, word)
	}

	labels := make([]float64, 0, len(lines))
	for _, cl := range lines {
		label, err := parseLabel(cl)
		if err != nil {
			return 0, err
		}
		labels = append(labels, label)
	}
	return stat.Mean(labels, nil), nil
}

// Sentiment returns the cached sentiment of word and whether it has one.
func (m *Model) Sentiment(word string) (float64, bool) {
	v, ok := m.sentiments[normalizeWord(word)]
	return v, ok
}

// SentimentMap returns a copy of the word sentiment map.
func (m *Model) SentimentMap() map[string]float64 {
	return maps.Clone(m.sentiments)
}

// FrequencyMap returns a copy of the word frequency map.
func (m *Model) FrequencyMap() map[string]int {
	return maps.Clone(m.frequencies)
}

// Lexicon returns the lexicon the model was built from.
func (m *Model) Lexicon() *Lexicon {
	return m.lex
}

// Config returns the configuration the model was built with.
func (m *Model) Config() Config {
	return m.config
}
