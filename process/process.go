package process

import (
	"regexp"
	"strings"
	"unicode"
)

// NumSentinel replaces every numeral on the model-input token track.
const NumSentinel = "<nUm>"

var numberPattern = regexp.MustCompile(`^[+-]?\d+(,\d{3})*(\.\d+)?([eE][+-]?\d+)?$`)

// ProcessedSentence carries both token tracks for one sentence. Tokens is
// the model-input track with numerals replaced by NumSentinel, NumTokens
// preserves the original numeral text, IsNumber marks the substituted
// positions. All three slices always have identical length: they are
// produced by a single pass over the same tokens, so the tracks cannot
// drift out of alignment.
type ProcessedSentence struct {
	Tokens    []string
	NumTokens []string
	IsNumber  []bool
}

// Tokenize splits raw text into sentences of word tokens.
func Tokenize(text string) [][]string {
	sentences := SplitSentences(text)
	tokenized := make([][]string, 0, len(sentences))
	for _, sent := range sentences {
		tokenized = append(tokenized, TokenizeWords(sent))
	}
	return tokenized
}

// Process normalizes one tokenized sentence and emits both numeric tracks.
func Process(rawTokens []string) ProcessedSentence {
	processed := ProcessedSentence{
		Tokens:    make([]string, len(rawTokens)),
		NumTokens: make([]string, len(rawTokens)),
		IsNumber:  make([]bool, len(rawTokens)),
	}
	for i, raw := range rawTokens {
		if IsNumeral(raw) {
			processed.Tokens[i] = NumSentinel
			processed.NumTokens[i] = raw
			processed.IsNumber[i] = true
			continue
		}
		normalized := NormalizeToken(raw)
		processed.Tokens[i] = normalized
		processed.NumTokens[i] = normalized
	}
	return processed
}

// IsNumeral reports whether a token is a bare numeric literal (integer,
// decimal, scientific notation, with optional sign and thousands commas).
func IsNumeral(token string) bool {
	return numberPattern.MatchString(token)
}

// NormalizeToken lowercases plain words. Tokens that look like chemical
// formulas or acronyms keep their case: lowercasing "GaN" or "XRD" would
// destroy the surface form the model was trained on.
func NormalizeToken(token string) string {
	if keepsCase(token) {
		return token
	}
	return strings.ToLower(token)
}

// keepsCase: mixed letters and digits ("Fe2O3"), an uppercase letter after
// the first position ("GaN", "pH"-style bumps) or a short all-caps run
// ("XRD", "SEM") all indicate formulas or abbreviations.
func keepsCase(token string) bool {
	runes := []rune(token)
	hasLetter := false
	hasDigit := false
	upperCount := 0
	for i, r := range runes {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsUpper(r):
			hasLetter = true
			upperCount++
			if i > 0 {
				return true
			}
		case unicode.IsLetter(r):
			hasLetter = true
		}
	}
	if hasLetter && hasDigit {
		return true
	}
	return upperCount == len(runes) && upperCount > 1 && upperCount <= 5
}
