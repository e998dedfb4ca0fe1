package reviewsense

import (
	"regexp"
	"strings"
)

// wordSplitter matches the separators between words: every run of characters
// that is neither an ASCII word character nor an apostrophe.
var wordSplitter = regexp.MustCompile(`[^\w']+`)

var (
	strictWordRE     = regexp.MustCompile(`^[a-zA-Z0-9]*$`)
	apostropheWordRE = regexp.MustCompile(`^[a-zA-Z0-9']*$`)
)

// SplitWords splits text into word tokens.
//
// A separator at the start of text yields a leading empty token, trailing
// empty tokens are dropped, and empty text yields a single empty token. Tokens
// keep their original case.
func SplitWords(text string) []string {
	if text == "" {
		return []string{""}
	}
	words := wordSplitter.Split(text, -1)
	end := len(words)
	for end > 0 && words[end-1] == "" {
		end--
	}
	return words[:end]
}

// normalizeWord returns the lookup key for a token.
func normalizeWord(word string) string {
	return strings.ToLower(word)
}

// splitLabel separates a corpus line into its label field and review body.
// The body is everything after the first run of whitespace.
func splitLabel(line string) (label, body string) {
	i := strings.IndexAny(line, " \t")
	if i < 0 {
		return line, ""
	}
	return line[:i], strings.TrimLeft(line[i:], " \t")
}

// countWord counts whole-word, case-insensitive occurrences of key in tokens.
// key must already be normalized.
func countWord(key string, tokens []string) int {
	n := 0
	for _, tok := range tokens {
		if normalizeWord(tok) == key {
			n++
		}
	}
	return n
}
