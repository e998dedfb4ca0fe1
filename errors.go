package reviewsense

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration reports a missing, unreadable or malformed lexicon
	// resource. Nothing is scored when it is returned.
	ErrConfiguration = errors.New("reviewsense: configuration error")

	// ErrInvalidArgument reports bad caller input, such as a negative top-N
	// size or a malformed append label. No state is mutated.
	ErrInvalidArgument = errors.New("reviewsense: invalid argument")

	// ErrInvalidState reports a violated internal invariant.
	ErrInvalidState = errors.New("reviewsense: invalid state")

	// ErrReadOnly is returned by sources that cannot be appended to.
	ErrReadOnly = errors.New("reviewsense: source is read-only")
)

// LineError identifies a corpus line that could not be parsed.
type LineError struct {
	Line int    // 1-based line number within the loaded corpus
	Text string // The offending line
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("corpus line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

func configError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrConfiguration, err)
}

func invalidArgument(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
