package reviewsense

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"sync"
)

// maxLineBytes bounds a single stopword or corpus line.
const maxLineBytes = 1 << 20 // 1 MiB

// A Source supplies the stopword lines and the labeled corpus lines, and
// persists appended corpus lines. The engine treats the Source as the system
// of record and reloads from it after every append.
type Source interface {
	LoadStopwords(ctx context.Context) ([]string, error)
	LoadCorpus(ctx context.Context) ([]string, error)
	AppendCorpus(ctx context.Context, line string) error
}

// ReadLines reads non-blank lines from r, dropping line terminators.
func ReadLines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var lines []string
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// FileSource reads both resources from the local file system and appends to
// the corpus file in place.
type FileSource struct {
	StopwordsPath string
	CorpusPath    string
}

// NewFileSource creates a FileSource for the given paths.
func NewFileSource(stopwordsPath, corpusPath string) *FileSource {
	return &FileSource{StopwordsPath: stopwordsPath, CorpusPath: corpusPath}
}

// LoadStopwords reads the stopword file.
func (fsrc *FileSource) LoadStopwords(ctx context.Context) ([]string, error) {
	return readLinesFromFile(ctx, fsrc.StopwordsPath)
}

// LoadCorpus reads the corpus file.
func (fsrc *FileSource) LoadCorpus(ctx context.Context) ([]string, error) {
	return readLinesFromFile(ctx, fsrc.CorpusPath)
}

// AppendCorpus appends line to the corpus file, starting a new line first when
// the file does not end with one.
func (fsrc *FileSource) AppendCorpus(ctx context.Context, line string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := os.OpenFile(fsrc.CorpusPath, os.O_RDWR|os.O_APPEND|os.O_CREATE, 0644)
	if err != nil {
		return fmt.Errorf("error opening corpus file: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("error reading corpus file: %w", err)
	}
	if info.Size() > 0 {
		last := make([]byte, 1)
		if _, err := f.ReadAt(last, info.Size()-1); err != nil {
			return fmt.Errorf("error reading corpus file: %w", err)
		}
		if last[0] != '\n' {
			buf.WriteByte('\n')
		}
	}
	buf.WriteString(line)
	buf.WriteByte('\n')

	if _, err := f.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("error writing corpus file: %w", err)
	}
	return f.Sync()
}

func readLinesFromFile(ctx context.Context, path string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadLines(f)
}

// FSSource reads both resources from an fs.FS, typically an embed.FS. It
// cannot be appended to.
type FSSource struct {
	FS            fs.FS
	StopwordsName string
	CorpusName    string
}

// LoadStopwords reads the stopword file from the file system.
func (s *FSSource) LoadStopwords(ctx context.Context) ([]string, error) {
	return readLinesFromFS(ctx, s.FS, s.StopwordsName)
}

// LoadCorpus reads the corpus file from the file system.
func (s *FSSource) LoadCorpus(ctx context.Context) ([]string, error) {
	return readLinesFromFS(ctx, s.FS, s.CorpusName)
}

// AppendCorpus always fails with ErrReadOnly.
func (s *FSSource) AppendCorpus(ctx context.Context, line string) error {
	return fmt.Errorf("append to %s: %w", s.CorpusName, ErrReadOnly)
}

func readLinesFromFS(ctx context.Context, fsys fs.FS, name string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, err
	}
	return ReadLines(bytes.NewReader(data))
}

// MemorySource keeps both resources in memory. It is safe for concurrent use.
type MemorySource struct {
	mu        sync.Mutex
	stopwords []string
	corpus    []string
}

// NewMemorySource creates a MemorySource holding copies of the given lines.
func NewMemorySource(stopwords, corpus []string) *MemorySource {
	return &MemorySource{
		stopwords: append([]string(nil), stopwords...),
		corpus:    append([]string(nil), corpus...),
	}
}

// LoadStopwords returns a copy of the stopword lines.
func (m *MemorySource) LoadStopwords(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.stopwords...), nil
}

// LoadCorpus returns a copy of the corpus lines.
func (m *MemorySource) LoadCorpus(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.corpus...), nil
}

// AppendCorpus appends line to the corpus.
func (m *MemorySource) AppendCorpus(ctx context.Context, line string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.corpus = append(m.corpus, line)
	return nil
}
