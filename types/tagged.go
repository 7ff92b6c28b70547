package types

import "strings"

// OutsideTag marks a token that is not part of any entity span.
const OutsideTag = "O"

const (
	TagPrefixBegin  = "B"
	TagPrefixInside = "I"
)

// TaggedToken is one surface token paired with its IOB tag.
type TaggedToken struct {
	Text string `json:"text"`
	Tag  string `json:"tag"`
}

// TaggedSentence keeps tokens in their original sentence order.
type TaggedSentence []TaggedToken

// TaggedDocument keeps sentences in their original document order.
type TaggedDocument []TaggedSentence

// Entity is one concatenated span: the joined surface string plus the bare
// entity type (no IOB prefix). Outside tokens appear as singleton entities
// with Type == OutsideTag.
type Entity struct {
	Text string `json:"text"`
	Type string `json:"type"`
}

// EntityDocument is the concatenated form of a tagged document.
type EntityDocument []Entity

// SplitTag splits an IOB tag into its prefix and entity type. The outside
// tag has no prefix; a malformed tag without a dash is treated the same way.
func SplitTag(tag string) (prefix string, entityType string) {
	if tag == OutsideTag {
		return "", OutsideTag
	}
	idx := strings.Index(tag, "-")
	if idx < 0 {
		return "", tag
	}
	return tag[:idx], tag[idx+1:]
}

// TokenCount reports the total number of tokens across all sentences.
func (doc TaggedDocument) TokenCount() int {
	count := 0
	for _, sent := range doc {
		count += len(sent)
	}
	return count
}