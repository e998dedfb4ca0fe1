package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/reviewsense"
	"github.com/tsawler/reviewsense/internal/config"
)

// writeTestConfig creates a corpus and a config file pointing at it.
func writeTestConfig(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()

	cfg := config.DefaultConfig()
	cfg.Storage.StopwordsPath = filepath.Join(dir, "stopWords.txt")
	cfg.Storage.CorpusPath = filepath.Join(dir, "reviewsInput.txt")
	cfg.Storage.DatabasePath = filepath.Join(dir, "reviewsense.db")
	cfg.Logging.Level = "error"
	require.NoError(t, os.WriteFile(cfg.Storage.StopwordsPath, []byte("the\na\n"), 0644))
	require.NoError(t, os.WriteFile(cfg.Storage.CorpusPath, []byte("4 great service\n0 terrible food\n4 amazing staff\n"), 0644))

	path := filepath.Join(dir, "reviewsense.yaml")
	require.NoError(t, cfg.Save(path))
	return path, cfg.Storage.CorpusPath
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestScoreCommand(t *testing.T) {
	path, _ := writeTestConfig(t)

	out, err := run(t, "--config", path, "score", "great", "staff")
	require.NoError(t, err)
	assert.Equal(t, "4.0 (positive) great staff\n\n most frequent words from input reviews are: amazing food great\n", out)
}

func TestAppendCommand(t *testing.T) {
	path, corpusPath := writeTestConfig(t)

	out, err := run(t, "--config", path, "append", "2", "okay", "place")
	require.NoError(t, err)
	assert.Contains(t, out, "appended: 2 okay place")

	data, err := os.ReadFile(corpusPath)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(data), "2 okay place\n"))

	_, err = run(t, "--config", path, "append", "two", "okay")
	assert.Error(t, err)
}

func TestTopCommand(t *testing.T) {
	path, _ := writeTestConfig(t)

	out, err := run(t, "--config", path, "top", "-n", "2")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "amazing"))
}

func TestTopCommandNegative(t *testing.T) {
	path, _ := writeTestConfig(t)

	tests := []struct {
		args []string
		desc string
	}{
		{[]string{"top", "--number=-5"}, "Long flag"},
		{[]string{"top", "-n", "-1"}, "Shorthand flag"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			out, err := run(t, append([]string{"--config", path}, tt.args...)...)
			assert.ErrorIs(t, err, reviewsense.ErrInvalidArgument)
			assert.NotContains(t, out, "amazing")
		})
	}
}

func TestTopCommandZero(t *testing.T) {
	path, _ := writeTestConfig(t)

	out, err := run(t, "--config", path, "top", "-n", "0")
	require.NoError(t, err)
	assert.Empty(t, strings.TrimSpace(out))
}

func TestImportCommand(t *testing.T) {
	path, corpusPath := writeTestConfig(t)
	stopPath := filepath.Join(filepath.Dir(corpusPath), "stopWords.txt")

	out, err := run(t, "--config", path, "import", stopPath, corpusPath)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 2 stopword lines and 3 corpus lines")
}

func TestEventCommandLocal(t *testing.T) {
	path, corpusPath := writeTestConfig(t)
	inbox := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(inbox, "reviews"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(inbox, "reviews", "append-r1.txt"), []byte("1 slow service"), 0644))

	eventPath := filepath.Join(t.TempDir(), "event.json")
	event := `{"Records":[{"s3":{"bucket":{"name":"reviews"},"object":{"key":"append-r1.txt"}}}]}`
	require.NoError(t, os.WriteFile(eventPath, []byte(event), 0644))

	out, err := run(t, "--config", path, "event", "--local", inbox, eventPath)
	require.NoError(t, err)
	assert.Contains(t, out, "reviews-resized/sentimented-append-r1.txt")

	data, err := os.ReadFile(corpusPath)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(data), "1 slow service\n"))

	verdict, err := os.ReadFile(filepath.Join(inbox, "reviews-resized", "sentimented-append-r1.txt"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(verdict), "2.0 (neutral) slow service"), string(verdict))
}
