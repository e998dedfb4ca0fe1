package reviewsense

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// flakySource wraps a MemorySource and fails selected operations.
type flakySource struct {
	*MemorySource
	failStopwords bool
	failCorpus    bool
	failAppend    bool
	// failCorpusAfterAppend makes every corpus load fail once a line was appended.
	failCorpusAfterAppend bool
	appended              bool
}

var errFlaky = errors.New("flaky source")

func (s *flakySource) LoadStopwords(ctx context.Context) ([]string, error) {
	if s.failStopwords {
		return nil, errFlaky
	}
	return s.MemorySource.LoadStopwords(ctx)
}

func (s *flakySource) LoadCorpus(ctx context.Context) ([]string, error) {
	if s.failCorpus || (s.failCorpusAfterAppend && s.appended) {
		return nil, errFlaky
	}
	return s.MemorySource.LoadCorpus(ctx)
}

func (s *flakySource) AppendCorpus(ctx context.Context, line string) error {
	if s.failAppend {
		return errFlaky
	}
	s.appended = true
	return s.MemorySource.AppendCorpus(ctx, line)
}

func newTestEngine(opts ...Option) (*Engine, *MemorySource) {
	src := NewMemorySource(testStopwords, testCorpus)
	return New(src, opts...), src
}

func TestEngineScore(t *testing.T) {
	e, _ := newTestEngine()
	ctx := context.Background()

	res, err := e.Score(ctx, "great staff")
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if res.Score != 4 || res.Rounded != 4 || res.Label != Positive {
		t.Errorf("Score(great staff) = %v, want 4 (positive)", res)
	}

	want := "4.0 (positive) great staff\n\n most frequent words from input reviews are: amazing food great"
	if got := res.Annotated(); got != want {
		t.Errorf("Annotated() =\n%q\nwant\n%q", got, want)
	}

	res, err = e.Score(ctx, "the a")
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if res.Scored() || res.Label != Unknown || res.Rounded != -1 {
		t.Errorf("Score(the a) = %v, want unscored", res)
	}
	if got := res.Annotated(); !strings.HasPrefix(got, "-1.0 (unknown) the a\n") {
		t.Errorf("Annotated() = %q, want -1.0 (unknown) prefix", got)
	}
}

func TestEngineAppendMonotonicity(t *testing.T) {
	e, src := newTestEngine()
	ctx := context.Background()

	if err := e.Append(ctx, "okay place", 2); err != nil {
		t.Fatalf("Append: %v", err)
	}
	corpus, _ := src.LoadCorpus(ctx)
	if last := corpus[len(corpus)-1]; last != "2 okay place" {
		t.Errorf("appended line = %q, want %q", last, "2 okay place")
	}

	res, err := e.Score(ctx, "okay")
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if res.Score != 2 || res.Label != Neutral {
		t.Errorf("Score(okay) = %v, want 2 (neutral)", res)
	}

	if err := e.Append(ctx, "okay food\nreally", 4); err != nil {
		t.Fatalf("Append: %v", err)
	}
	res, err = e.Score(ctx, "okay")
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if math.Abs(res.Score-3) > 1e-9 || res.Label != SomewhatPositive {
		t.Errorf("Score(okay) after second append = %v, want 3 (somewhat positive)", res)
	}

	m, err := e.Model(ctx)
	if err != nil {
		t.Fatalf("Model: %v", err)
	}
	if got, _ := m.WordSentiment("food"); got != 2 {
		t.Errorf("WordSentiment(food) = %.3f, want 2", got)
	}
	if got := m.WordCount("really"); got != 1 {
		t.Errorf("WordCount(really) = %d, want 1 after line breaks were folded", got)
	}
}

func TestEngineAppendInvalid(t *testing.T) {
	strict := DefaultConfig()
	strict.StrictLabels = true

	tests := []struct {
		text  string
		label int
		cfg   Config
		desc  string
	}{
		{"okay", -1, DefaultConfig(), "Negative label"},
		{"okay", 10, DefaultConfig(), "Two-digit label"},
		{"okay", 5, strict, "Label above 4 in strict mode"},
		{"  \n ", 2, DefaultConfig(), "Blank text"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			e, src := newTestEngine(WithConfig(tt.cfg))
			err := e.Append(context.Background(), tt.text, tt.label)
			if !errors.Is(err, ErrInvalidArgument) {
				t.Fatalf("Append error = %v, want ErrInvalidArgument", err)
			}
			corpus, _ := src.LoadCorpus(context.Background())
			if diff := cmp.Diff(testCorpus, corpus); diff != "" {
				t.Errorf("corpus changed (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEngineAppendOutOfRangeLabelFailsAtRebuild(t *testing.T) {
	e, src := newTestEngine()
	ctx := context.Background()

	before, err := e.Model(ctx)
	if err != nil {
		t.Fatalf("Model: %v", err)
	}

	err = e.Append(ctx, "great again", 7)
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("Append error = %v, want ErrConfiguration", err)
	}
	corpus, _ := src.LoadCorpus(ctx)
	if len(corpus) != len(testCorpus)+1 {
		t.Errorf("corpus has %d lines, want the out-of-range line appended", len(corpus))
	}

	after, err := e.Model(ctx)
	if err != nil {
		t.Fatalf("Model: %v", err)
	}
	if after != before {
		t.Error("model was replaced after a failed rebuild")
	}

	// Scoring keeps reporting the bad line until it leaves the corpus.
	for i := 0; i < 2; i++ {
		_, err = e.Score(ctx, "great")
		var lineErr *LineError
		if !errors.As(err, &lineErr) {
			t.Fatalf("Score error = %v, want a *LineError", err)
		}
		if lineErr.Line != len(testCorpus)+1 || lineErr.Text != "7 great again" {
			t.Errorf("LineError = line %d %q, want line %d %q", lineErr.Line, lineErr.Text, len(testCorpus)+1, "7 great again")
		}
	}
}

func TestEngineLoadFailures(t *testing.T) {
	tests := []struct {
		src  *flakySource
		desc string
	}{
		{&flakySource{MemorySource: NewMemorySource(testStopwords, testCorpus), failStopwords: true}, "Stopwords unreadable"},
		{&flakySource{MemorySource: NewMemorySource(testStopwords, testCorpus), failCorpus: true}, "Corpus unreadable"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			e := New(tt.src)
			_, err := e.Score(context.Background(), "great staff")
			if !errors.Is(err, ErrConfiguration) {
				t.Errorf("Score error = %v, want ErrConfiguration", err)
			}
			if !errors.Is(err, errFlaky) {
				t.Errorf("Score error = %v, want it to wrap the source error", err)
			}
		})
	}
}

func TestEngineAppendWriteFailure(t *testing.T) {
	src := &flakySource{MemorySource: NewMemorySource(testStopwords, testCorpus), failAppend: true}
	e := New(src)

	err := e.Append(context.Background(), "okay place", 2)
	if !errors.Is(err, errFlaky) {
		t.Fatalf("Append error = %v, want the write error", err)
	}
	corpus, _ := src.MemorySource.LoadCorpus(context.Background())
	if diff := cmp.Diff(testCorpus, corpus); diff != "" {
		t.Errorf("corpus changed (-want +got):\n%s", diff)
	}
}

func TestEngineAppendReloadFailureKeepsModel(t *testing.T) {
	src := &flakySource{MemorySource: NewMemorySource(testStopwords, testCorpus), failCorpusAfterAppend: true}
	e := New(src)
	ctx := context.Background()

	before, err := e.Model(ctx)
	if err != nil {
		t.Fatalf("Model: %v", err)
	}

	err = e.Append(ctx, "okay place", 2)
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("Append error = %v, want ErrConfiguration", err)
	}

	after, err := e.Model(ctx)
	if err != nil {
		t.Fatalf("Model: %v", err)
	}
	if after != before {
		t.Error("model was replaced after a failed reload")
	}
	if !after.IsStopWord("okay") {
		t.Error("IsStopWord(okay) = false, want the previous model without the appended line")
	}
}

func TestEngineReusesModelForUnchangedCorpus(t *testing.T) {
	e, src := newTestEngine()
	ctx := context.Background()

	if err := e.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	first, _ := e.Model(ctx)
	if _, err := e.Score(ctx, "great"); err != nil {
		t.Fatalf("Score: %v", err)
	}
	second, _ := e.Model(ctx)
	if first != second {
		t.Error("model was rebuilt for an unchanged corpus")
	}

	// An append made behind the engine's back is picked up by the next call.
	if err := src.AppendCorpus(ctx, "1 slow service"); err != nil {
		t.Fatalf("AppendCorpus: %v", err)
	}
	res, err := e.Score(ctx, "slow")
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if res.Score != 1 {
		t.Errorf("Score(slow) = %.3f, want 1", res.Score)
	}
}

func TestEngineTopWords(t *testing.T) {
	e, _ := newTestEngine()
	ctx := context.Background()

	words, err := e.TopWords(ctx, 100)
	if err != nil {
		t.Fatalf("TopWords: %v", err)
	}
	if len(words) != 6 {
		t.Errorf("TopWords(100) = %v, want all 6 words", words)
	}
	if _, err := e.TopWords(ctx, -3); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("TopWords(-3) error = %v, want ErrInvalidArgument", err)
	}
}
