package reviewsense

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// DefaultTopN is the number of top words attached to a scored review.
const DefaultTopN = 3

// Config configures how the corpus is interpreted.
type Config struct {
	TopN             int    // Number of top words attached to each Result
	AllowApostrophes bool   // Accept apostrophes inside informative words
	CountLabelTokens bool   // Tokenize the label field of corpus lines as a word
	StrictLabels     bool   // Reject append labels outside 0-4
	Language         string // ISO 639-1 code of an extra stop-word list, never applied to numbers; empty disables it
	SplitSentences   bool   // Attach a per-sentence breakdown to each Result
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{
		TopN: DefaultTopN,
	}
}

// An Option changes how an Engine is created.
type Option func(e *Engine)

// WithConfig sets the engine configuration.
func WithConfig(cfg Config) Option {
	return func(e *Engine) {
		e.config = cfg
	}
}

// WithLogger sets the logger. The default logger discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// Engine scores reviews against a labeled corpus read from a Source and
// appends new labeled reviews to it.
//
// Calls are serialized: one Score or Append runs to completion before the
// next begins, and a failed rebuild keeps the previous Model.
type Engine struct {
	source Source
	config Config
	logger *zap.Logger

	mu    sync.Mutex
	model *Model
}

// New creates an Engine reading from source. Nothing is loaded until the
// first call that needs the corpus.
func New(source Source, opts ...Option) *Engine {
	e := &Engine{
		source: source,
		config: DefaultConfig(),
		logger: zap.NewNop(),
	}
	for _, applyOpt := range opts {
		applyOpt(e)
	}
	return e
}

// Load reads both resources from the source and rebuilds the model when they
// changed since the last load.
func (e *Engine) Load(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, err := e.refresh(ctx)
	return err
}

// Model returns the model of the current corpus, loading it if needed.
func (e *Engine) Model(ctx context.Context) (*Model, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.model != nil {
		return e.model, nil
	}
	return e.refresh(ctx)
}

// Score reloads the lexicon and scores review.
func (e *Engine) Score(ctx context.Context, review string) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	m, err := e.refresh(ctx)
	if err != nil {
		return nil, err
	}

	res, err := m.Score(review)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("review scored",
		zap.Float64("score", res.Score),
		zap.String("label", res.Label.String()),
		zap.Strings("top_words", res.TopWords))
	return res, nil
}

// TopWords returns the n most frequent informative words of the current
// corpus.
func (e *Engine) TopWords(ctx context.Context, n int) ([]string, error) {
	if n < 0 {
		return nil, invalidArgument("top words size %d is negative", n)
	}
	m, err := e.Model(ctx)
	if err != nil {
		return nil, err
	}
	return m.TopWords(n)
}

// Append adds a labeled review to the corpus, then reloads the corpus from
// the source and rebuilds the model from it.
//
// label must be a single digit, and within 0-4 when StrictLabels is set. Line
// breaks in text are folded into spaces. When the write fails the corpus is
// unchanged; when the reload fails the previous model stays in place.
//
// A label of 5-9 is written but cannot be parsed back, so this and every
// later Score fail with a *LineError wrapping ErrConfiguration until the line
// is removed from the corpus. Set StrictLabels to reject such labels here.
func (e *Engine) Append(ctx context.Context, text string, label int) error {
	if err := e.validateLabel(label); err != nil {
		return err
	}
	text = foldLineBreaks(text)
	if text == "" {
		return invalidArgument("review text is empty")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	line := strconv.Itoa(label) + " " + text
	if err := e.source.AppendCorpus(ctx, line); err != nil {
		return fmt.Errorf("error appending review: %w", err)
	}
	e.logger.Info("review appended", zap.Int("label", label), zap.Int("length", len(text)))

	if _, err := e.refresh(ctx); err != nil {
		return fmt.Errorf("error reloading corpus after append: %w", err)
	}
	return nil
}

func (e *Engine) validateLabel(label int) error {
	if label < 0 || label > 9 {
		return invalidArgument("label %d is not a single digit", label)
	}
	if e.config.StrictLabels && label >= len(labels) {
		return invalidArgument("label %d is outside 0-%d", label, len(labels)-1)
	}
	return nil
}

// refresh loads both resources and swaps in a new model when they changed.
// The caller must hold e.mu.
func (e *Engine) refresh(ctx context.Context) (*Model, error) {
	stopwords, err := e.source.LoadStopwords(ctx)
	if err != nil {
		return nil, configError("error loading stopwords", err)
	}
	corpus, err := e.source.LoadCorpus(ctx)
	if err != nil {
		return nil, configError("error loading corpus", err)
	}

	if e.model != nil && e.model.lex.sameLines(stopwords, corpus) {
		return e.model, nil
	}

	m, err := BuildModel(stopwords, corpus, e.config)
	if err != nil {
		if e.model != nil {
			e.logger.Warn("corpus rebuild failed, keeping previous model", zap.Error(err))
		}
		return nil, err
	}
	e.model = m

	e.logger.Debug("model rebuilt",
		zap.Int("stopword_lines", len(stopwords)),
		zap.Int("corpus_lines", len(corpus)),
		zap.Int("words", len(m.sentiments)))
	return m, nil
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

func foldLineBreaks(text string) string {
	return strings.TrimSpace(lineBreaks.Replace(text))
}
