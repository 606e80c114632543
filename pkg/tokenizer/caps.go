package tokenizer

import (
	"strings"
	"unicode"
)

// IsAllCaps reports whether word is entirely upper case and actually cased,
// so "NASA" qualifies but "123" does not.
func IsAllCaps(word string) bool {
	hasUpper := false
	for _, r := range word {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			hasUpper = true
		}
	}
	return hasUpper
}

// IsFirstCaps reports whether word starts with an upper-case rune followed
// by no further upper-case runes, the shape of a sentence-initial word.
func IsFirstCaps(word string) bool {
	for i, r := range word {
		if i == 0 {
			if !unicode.IsUpper(r) {
				return false
			}
			continue
		}
		if unicode.IsUpper(r) {
			return false
		}
	}
	return word != ""
}

// UpperFirst upper-cases the first rune of word.
func UpperFirst(word string) string {
	for _, r := range word {
		return string(unicode.ToUpper(r)) + word[len(string(r)):]
	}
	return word
}

// LowerFirst lower-cases the first rune of word.
func LowerFirst(word string) string {
	for _, r := range word {
		return string(unicode.ToLower(r)) + word[len(string(r)):]
	}
	return word
}

// WordVariants returns the casing variants to try when looking a word up
// against a lexicon that stores lower-case entries: the word itself first,
// then progressively lowered forms. The order is the lookup priority.
func WordVariants(word string) []string {
	variants := []string{word}
	switch {
	case IsAllCaps(word):
		lower := strings.ToLower(word)
		variants = append(variants, UpperFirst(lower), lower)
	case IsFirstCaps(word):
		variants = append(variants, strings.ToLower(word))
	}
	return variants
}

// MatchCase re-cases suggestion to follow the casing pattern of original,
// so corrections for "Kat" come back as "Cat" and for "KAT" as "CAT".
func MatchCase(original, suggestion string) string {
	switch {
	case IsAllCaps(original):
		return strings.ToUpper(suggestion)
	case IsFirstCaps(original):
		return UpperFirst(suggestion)
	default:
		return suggestion
	}
}
