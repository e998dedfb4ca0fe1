package reviewsense

import (
	"fmt"
	"strings"
	"sync"

	"gopkg.in/neurosnap/sentences.v1"
	"gopkg.in/neurosnap/sentences.v1/english"
)

var (
	segmenterOnce sync.Once
	segmenter     *sentences.DefaultSentenceTokenizer
	segmenterErr  error
)

// splitSentences segments text into sentences with the punkt English model.
func splitSentences(text string) ([]string, error) {
	segmenterOnce.Do(func() {
		segmenter, segmenterErr = english.NewSentenceTokenizer(nil)
	})
	if segmenterErr != nil {
		return nil, fmt.Errorf("error loading sentence tokenizer: %w", segmenterErr)
	}

	var out []string
	for _, s := range segmenter.Tokenize(text) {
		if t := strings.TrimSpace(s.Text); t != "" {
			out = append(out, t)
		}
	}
	return out, nil
}

// ScoreSentences scores each sentence of review on its own.
func (m *Model) ScoreSentences(review string) ([]SentenceResult, error) {
	sents, err := splitSentences(review)
	if err != nil {
		return nil, err
	}

	results := make([]SentenceResult, 0, len(sents))
	for _, s := range sents {
		score := m.ReviewSentiment(s)
		rounded := Round(score)
		results = append(results, SentenceResult{
			Text:    s,
			Score:   score,
			Rounded: rounded,
			Label:   LabelFor(rounded),
		})
	}
	return results, nil
}
