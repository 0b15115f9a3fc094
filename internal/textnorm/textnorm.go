package textnorm

import (
	"strings"
	"unicode"
)

// Normalize canonicalizes clause text for comparison: lower-cased with
// whitespace runs collapsed to single spaces. Punctuation is kept so
// spans computed on the normalized text stay meaningful.
func Normalize(text string) string {
	lowered := strings.ToLower(strings.TrimSpace(text))
	return strings.Join(strings.Fields(lowered), " ")
}

// Tokenize splits normalized text into letter/number tokens
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// Signature builds a weighted token set from text: stopwords and
// single-character tokens removed, weight is term frequency. Numeric
// tokens are always kept, they carry the contractual specifics.
func Signature(text string) map[string]float64 {
	sig := make(map[string]float64)
	for _, tok := range Tokenize(text) {
		if len(tok) < 2 && !isNumeric(tok) {
			continue
		}
		if stopWords[tok] {
			continue
		}
		sig[tok]++
	}
	return sig
}

func isNumeric(tok string) bool {
	if tok == "" {
		return false
	}
	for _, r := range tok {
		if !unicode.IsNumber(r) {
			return false
		}
	}
	return true
}

var stopWords = buildStopWords()

func buildStopWords() map[string]bool {
	words := []string{
		"a", "an", "and", "are", "as", "at", "be", "by", "for", "from",
		"has", "have", "he", "in", "is", "it", "its", "of", "on", "or",
		"she", "that", "the", "they", "this", "to", "was", "were", "will",
		"with", "you", "your", "we", "our", "their", "them", "there", "these",
		"those", "been", "being", "had", "having", "do", "does", "did", "doing",
		"about", "above", "after", "again", "against", "all", "am", "any",
		"because", "before", "below", "between", "both", "but", "during",
		"each", "here", "how", "if", "into", "just",
		"no", "nor", "now", "only", "other", "out", "own",
		"same", "so", "such", "than", "then", "through", "too", "under",
		"until", "up", "very", "what", "when", "where", "which", "while", "who",
		"whom", "why", "also", "however", "therefore", "thus", "hence", "yet",
	}

	result := make(map[string]bool, len(words))
	for _, w := range words {
		result[w] = true
	}
	return result
}
