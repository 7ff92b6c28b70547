package normalize

import (
	"strings"

	"matscholar.com/ner/types"
)

// Concatenate merges a flat tagged token sequence into entity spans by the
// IOB continuation rule: a B- tag opens a span, an I- tag of the same type
// extends it, anything else closes it. An I- tag with no open span of its
// type opens one (malformed sequences are repaired, not rejected). Outside
// tokens pass through as singleton spans.
func Concatenate(tokens types.TaggedSentence) types.EntityDocument {
	entities := make(types.EntityDocument, 0, len(tokens))

	var current []string
	currentType := ""

	flush := func() {
		if len(current) == 0 {
			return
		}
		entities = append(entities, types.Entity{
			Text: strings.Join(current, " "),
			Type: currentType,
		})
		current = nil
		currentType = ""
	}

	for _, token := range tokens {
		prefix, entityType := types.SplitTag(token.Tag)
		switch {
		case entityType == types.OutsideTag:
			flush()
			entities = append(entities, types.Entity{Text: token.Text, Type: types.OutsideTag})
		case prefix == types.TagPrefixInside && entityType == currentType:
			current = append(current, token.Text)
		default:
			// B- of any type, or an orphan I- starting a repaired span
			flush()
			current = []string{token.Text}
			currentType = entityType
		}
	}
	flush()

	return entities
}

// ConcatenateDocument merges each sentence independently. Sentences are
// tagged one at a time, so a span never continues across a sentence
// boundary even when the tags would otherwise line up.
func ConcatenateDocument(doc types.TaggedDocument) types.EntityDocument {
	entities := make(types.EntityDocument, 0, doc.TokenCount())
	for _, sentence := range doc {
		entities = append(entities, Concatenate(sentence)...)
	}
	return entities
}
