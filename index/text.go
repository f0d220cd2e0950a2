package index

import (
	"strings"
	"unicode/utf8"
)

// Stop words to filter out when tokenizing queries and entry text
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true, "what": true, "who": true, "about": true,
}

// fuzzyMinLength is the minimum token length (in runes) at which a single
// edit of distance tolerance is applied. Short tokens must match exactly,
// otherwise deity names like "uṣas" and "vṛṣa" blur into each other.
const fuzzyMinLength = 5

// tokenize splits text into words, lowercases, trims punctuation, and
// removes stop words.
func tokenize(text string) []string {
	words := strings.Fields(text)
	filtered := make([]string, 0, len(words))

	for _, word := range words {
		cleaned := strings.ToLower(strings.Trim(word, ".,!?;:'\"-()[]{}|"))
		if cleaned != "" && !stopWords[cleaned] {
			filtered = append(filtered, cleaned)
		}
	}

	return filtered
}

// tokensMatch reports whether a query token matches a document token,
// allowing one edit for longer tokens.
func tokensMatch(query, doc string) bool {
	if query == doc {
		return true
	}
	if utf8.RuneCountInString(query) < fuzzyMinLength {
		return false
	}
	return withinOneEdit(query, doc)
}

// withinOneEdit reports whether two strings are at Levenshtein distance 1 or
// less. Working on runes keeps diacritics intact.
func withinOneEdit(a, b string) bool {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}
	if len(rb)-len(ra) > 1 {
		return false
	}

	i, j := 0, 0
	edits := 0
	for i < len(ra) && j < len(rb) {
		if ra[i] == rb[j] {
			i++
			j++
			continue
		}
		edits++
		if edits > 1 {
			return false
		}
		if len(ra) == len(rb) {
			// substitution
			i++
			j++
		} else {
			// insertion into the shorter string
			j++
		}
	}
	edits += len(rb) - j
	return edits <= 1
}
