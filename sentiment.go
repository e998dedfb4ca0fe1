package reviewsense

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// ReviewSentiment returns the mean sentiment of the words of review.
//
// Words without a sentiment value are skipped rather than counted as zero.
// The result is Unscored when every token is a stop word or when no token has
// a value; otherwise it lies within [0, 4].
func (m *Model) ReviewSentiment(review string) float64 {
	words := SplitWords(review)

	stop := 0
	for _, w := range words {
		if m.IsStopWord(w) {
			stop++
		}
	}
	if stop == len(words) {
		return Unscored
	}

	values := make([]float64, 0, len(words))
	for _, w := range words {
		if v, ok := m.sentiments[normalizeWord(w)]; ok {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return Unscored
	}
	return stat.Mean(values, nil)
}

// ReviewLabel returns the label of the rounded sentiment of review.
func (m *Model) ReviewLabel(review string) Label {
	return LabelFor(Round(m.ReviewSentiment(review)))
}

// Round rounds a sentiment value to the nearest integer, halves up.
func Round(score float64) int {
	return int(math.Floor(score + 0.5))
}

// LabelFor maps a rounded sentiment value to its label. Values outside 0-4,
// including the rounded Unscored sentinel, map to Unknown.
func LabelFor(rounded int) Label {
	if rounded < 0 || rounded >= len(labels) {
		return Unknown
	}
	return labels[rounded]
}

// Score scores review against the model and attaches the configured number
// of top words and, when enabled, a per-sentence breakdown.
func (m *Model) Score(review string) (*Result, error) {
	score := m.ReviewSentiment(review)
	rounded := Round(score)

	top, err := m.TopWords(m.config.TopN)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Review:   review,
		Score:    score,
		Rounded:  rounded,
		Label:    LabelFor(rounded),
		TopWords: top,
	}

	if m.config.SplitSentences {
		if res.Sentences, err = m.ScoreSentences(review); err != nil {
			return nil, err
		}
	}
	return res, nil
}
