package process

import (
	"strings"
	"unicode"
)

// Abbreviations that end with a period without ending the sentence.
var nonTerminalAbbrevs = map[string]bool{
	"fig.":    true,
	"figs.":   true,
	"eq.":     true,
	"eqs.":    true,
	"ref.":    true,
	"refs.":   true,
	"al.":     true,
	"e.g.":    true,
	"i.e.":    true,
	"etc.":    true,
	"vs.":     true,
	"ca.":     true,
	"approx.": true,
	"dr.":     true,
	"prof.":   true,
	"no.":     true,
}

// SplitSentences splits raw text into sentences. Terminators are '.', '!'
// and '?' followed by whitespace and an uppercase/digit start; periods that
// belong to known abbreviations, initials or decimal numbers do not split.
func SplitSentences(text string) []string {
	var sentences []string
	runes := []rune(text)

	start := 0
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '\n' {
			if j := nextNonSpace(runes, i); j == len(runes) || runes[j] == '\n' {
				// blank line always terminates
				if sent := strings.TrimSpace(string(runes[start:i])); len(sent) > 0 {
					sentences = append(sentences, sent)
				}
				start = i + 1
			}
			continue
		}
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if !terminatesSentence(runes, i) {
			continue
		}
		if sent := strings.TrimSpace(string(runes[start : i+1])); len(sent) > 0 {
			sentences = append(sentences, sent)
		}
		start = i + 1
	}
	if sent := strings.TrimSpace(string(runes[start:])); len(sent) > 0 {
		sentences = append(sentences, sent)
	}
	return sentences
}

func terminatesSentence(runes []rune, idx int) bool {
	r := runes[idx]
	next := nextNonWhitespace(runes, idx)
	if next == len(runes) {
		return true
	}
	// must be followed by whitespace
	if next == idx+1 {
		return false
	}
	if r == '!' || r == '?' {
		return true
	}
	// decimal like "1. 5" never happens after trimming, but "2.5" is guarded
	// by the whitespace requirement above; here the period ends a word
	word := strings.ToLower(lastWord(runes, idx))
	if nonTerminalAbbrevs[word+"."] {
		return false
	}
	// single-letter initials: "J. Smith"
	if len(word) == 1 {
		return false
	}
	following := runes[next]
	return unicode.IsUpper(following) || unicode.IsDigit(following) || following == '(' || following == '['
}

func lastWord(runes []rune, idx int) string {
	end := idx
	begin := end
	for begin > 0 && !unicode.IsSpace(runes[begin-1]) {
		begin--
	}
	word := string(runes[begin:end])
	return strings.TrimRight(word, ".")
}

func nextNonSpace(runes []rune, fromIndex int) int {
	for i := fromIndex + 1; i < len(runes); i++ {
		if !unicode.IsSpace(runes[i]) || runes[i] == '\n' {
			return i
		}
	}
	return len(runes)
}

func nextNonWhitespace(runes []rune, fromIndex int) int {
	for i := fromIndex + 1; i < len(runes); i++ {
		if !unicode.IsSpace(runes[i]) {
			return i
		}
	}
	return len(runes)
}
