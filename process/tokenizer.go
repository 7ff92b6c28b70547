package process

import (
	"unicode"
)

// TokenizeWords splits one sentence into word tokens. Splitting follows
// whitespace plus boundary punctuation: brackets, quotes, commas, sentence
// terminators and comparison symbols become their own tokens, while internal
// hyphens, periods inside numbers and formula subscripts stay attached
// ("LiFePO4", "2.5", "yttria-stabilized" are single tokens).
func TokenizeWords(sentence string) []string {
	var tokens []string
	runes := []rune(sentence)

	i := 0
	for i < len(runes) {
		if unicode.IsSpace(runes[i]) {
			i++
			continue
		}
		if isBoundaryPunct(runes[i]) {
			tokens = append(tokens, string(runes[i]))
			i++
			continue
		}
		end := scanWord(runes, i)

		// trailing terminators stick to the word while scanning, peel them
		// off into their own tokens
		wordEnd := end
		for wordEnd-i > 1 && isTrailingPunct(runes[wordEnd-1]) {
			wordEnd--
		}
		tokens = append(tokens, string(runes[i:wordEnd]))
		for p := wordEnd; p < end; p++ {
			tokens = append(tokens, string(runes[p]))
		}
		i = end
	}
	return tokens
}

func scanWord(runes []rune, fromIndex int) int {
	i := fromIndex
	for i < len(runes) {
		r := runes[i]
		if unicode.IsSpace(r) {
			return i
		}
		if isBoundaryPunct(r) {
			return i
		}
		i++
	}
	return i
}

func isBoundaryPunct(r rune) bool {
	switch r {
	case '(', ')', '[', ']', '{', '}', ',', ';', ':', '"', '“', '”', '=', '<', '>', '≤', '≥', '±':
		return true
	}
	return false
}

// Final sentence punctuation splits into its own token. A period inside
// "2.5" is never trailing because it is not final.
func isTrailingPunct(r rune) bool {
	switch r {
	case '.', '!', '?', '\'':
		return true
	}
	return false
}
