package reviewsense

import (
	"fmt"
	"strings"
)

// Unscored is the sentiment value of a review, or a word, that carries no
// sentiment: every token is a stop word, or no token has a known value.
const Unscored = -1.0

// Label is the human-readable name of a rounded sentiment value.
type Label string

const (
	Negative         Label = "negative"          // 0
	SomewhatNegative Label = "somewhat negative" // 1
	Neutral          Label = "neutral"           // 2
	SomewhatPositive Label = "somewhat positive" // 3
	Positive         Label = "positive"          // 4
	Unknown          Label = "unknown"           // anything else, including Unscored
)

// labels is indexed by rounded sentiment value.
var labels = [...]Label{Negative, SomewhatNegative, Neutral, SomewhatPositive, Positive}

// String returns the label text.
func (l Label) String() string {
	return string(l)
}

// WordFrequency pairs a word with its occurrence count across the corpus.
type WordFrequency struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// SentenceResult is the score of one sentence of a review.
type SentenceResult struct {
	Text    string  `json:"text"`
	Score   float64 `json:"score"`
	Rounded int     `json:"rounded"`
	Label   Label   `json:"label"`
}

// Result is the outcome of scoring a review.
type Result struct {
	Review    string           `json:"review"`
	Score     float64          `json:"score"`   // mean word sentiment, or Unscored
	Rounded   int              `json:"rounded"` // Score rounded half-up
	Label     Label            `json:"label"`
	TopWords  []string         `json:"top_words"`
	Sentences []SentenceResult `json:"sentences,omitempty"`
}

// Scored reports whether the review received a sentiment value.
func (r *Result) Scored() bool {
	return r.Score != Unscored
}

// Annotated renders the result the way it is written back to object storage:
// the rounded score, the label and the review, followed by the top words.
func (r *Result) Annotated() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%.1f (%s) %s\n\n", float64(r.Rounded), r.Label, r.Review)
	b.WriteString(" most frequent words from input reviews are: ")
	b.WriteString(strings.Join(r.TopWords, " "))
	return b.String()
}

// String returns a debug representation of the result.
func (r *Result) String() string {
	return fmt.Sprintf("%s(score=%.2f, rounded=%d, top=%v)", r.Label, r.Score, r.Rounded, r.TopWords)
}
