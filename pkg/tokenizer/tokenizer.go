// Package tokenizer splits text into word tokens and classifies their
// casing, so the speller can check words in running text and re-case its
// suggestions to match the input.
package tokenizer

import "unicode"

// WordBound is a word token and its byte offset in the source text.
type WordBound struct {
	Offset int
	Token  string
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

// isJoiner reports runes that bind two word runes into one token, like the
// apostrophe in "don't".
func isJoiner(r rune) bool {
	return r == '\'' || r == '’' || r == '-'
}

// WordBounds returns every word token in text with its byte offset.
// A token is a maximal run of letters, digits and combining marks, with
// single joiner runes allowed between word runes.
func WordBounds(text string) []WordBound {
	var bounds []WordBound
	runes := []rune(text)

	byteOffset := 0
	i := 0
	for i < len(runes) {
		if !isWordRune(runes[i]) {
			byteOffset += len(string(runes[i]))
			i++
			continue
		}
		start := i
		startOffset := byteOffset
		for i < len(runes) {
			switch {
			case isWordRune(runes[i]):
				byteOffset += len(string(runes[i]))
				i++
			case isJoiner(runes[i]) && i+1 < len(runes) && isWordRune(runes[i+1]):
				byteOffset += len(string(runes[i]))
				i++
			default:
				goto done
			}
		}
	done:
		bounds = append(bounds, WordBound{Offset: startOffset, Token: string(runes[start:i])})
	}
	return bounds
}

// Words returns the word tokens of text in order.
func Words(text string) []string {
	bounds := WordBounds(text)
	words := make([]string, len(bounds))
	for i, b := range bounds {
		words[i] = b.Token
	}
	return words
}
