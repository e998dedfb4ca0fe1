// Package data embeds a small reference corpus of labeled movie reviews and
// its stopword list, so the engine can run without any files on disk.
package data

import (
	"embed"

	"github.com/tsawler/reviewsense"
)

// File names inside FS.
const (
	StopwordsName = "stopWords.txt"
	CorpusName    = "reviewsInput.txt"
)

//go:embed stopWords.txt reviewsInput.txt
var FS embed.FS

// Source returns a read-only source over the embedded files.
func Source() *reviewsense.FSSource {
	return &reviewsense.FSSource{FS: FS, StopwordsName: StopwordsName, CorpusName: CorpusName}
}
