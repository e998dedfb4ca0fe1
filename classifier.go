package reviewsense

import (
	"regexp"
	"strings"

	"github.com/bbalet/stopwords"
)

// Classifier decides whether a token is a stop word: a token that carries no
// sentiment or frequency information.
type Classifier struct {
	lex      *Lexicon
	wordRE   *regexp.Regexp
	language string
}

// NewClassifier creates a classifier over lex configured by cfg.
func NewClassifier(lex *Lexicon, cfg Config) *Classifier {
	c := &Classifier{
		lex:      lex,
		wordRE:   strictWordRE,
		language: cfg.Language,
	}
	if cfg.AllowApostrophes {
		c.wordRE = apostropheWordRE
	}
	return c
}

// IsStopWord reports whether token is a stop word. A token is a stop word when
// it is empty or a single space, contains a character outside [a-zA-Z0-9]
// (apostrophes are allowed when configured), appears in a stopword line, or
// does not appear in any corpus line. With a language configured, words the
// language's stop-word list removes are stop words too; numbers never are.
func (c *Classifier) IsStopWord(token string) bool {
	if token == "" || token == " " {
		return true
	}
	if !c.wordRE.MatchString(token) {
		return true
	}
	if c.lex.InStopwords(token) {
		return true
	}
	if !c.lex.InCorpus(token) {
		return true
	}
	if c.language != "" && !isNumber(token) && isLanguageStopWord(token, c.language) {
		return true
	}
	return false
}

// isLanguageStopWord reports whether the bbalet/stopwords list for langCode
// removes word. The library only exposes cleaning, so a word is a stop word
// when cleaning it leaves nothing behind.
func isLanguageStopWord(word, langCode string) bool {
	cleaned := stopwords.CleanString(word, langCode, false)
	return strings.TrimSpace(cleaned) == ""
}

// isNumber reports whether token is made of ASCII digits only. CleanString
// strips digits, so numbers would otherwise look like stop words.
func isNumber(token string) bool {
	for i := 0; i < len(token); i++ {
		if token[i] < '0' || token[i] > '9' {
			return false
		}
	}
	return token != ""
}
