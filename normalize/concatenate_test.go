package normalize

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"matscholar.com/ner/types"
)

func TestConcatenate(t *testing.T) {
	scenarios := []struct {
		name     string
		tokens   types.TaggedSentence
		expected types.EntityDocument
	}{
		{
			name: "spans and singletons",
			tokens: types.TaggedSentence{
				{Text: "Fe2O3", Tag: "B-MAT"},
				{Text: "was", Tag: "O"},
				{Text: "heated", Tag: "O"},
				{Text: "to", Tag: "O"},
				{Text: "100", Tag: "B-PROPERTY"},
				{Text: "degrees", Tag: "I-PROPERTY"},
				{Text: ".", Tag: "O"},
			},
			expected: types.EntityDocument{
				{Text: "Fe2O3", Type: "MAT"},
				{Text: "was", Type: "O"},
				{Text: "heated", Type: "O"},
				{Text: "to", Type: "O"},
				{Text: "100 degrees", Type: "PROPERTY"},
				{Text: ".", Type: "O"},
			},
		},
		{
			name: "orphan inside tag opens a span",
			tokens: types.TaggedSentence{
				{Text: "thin", Tag: "I-DSC"},
				{Text: "film", Tag: "I-DSC"},
				{Text: "grown", Tag: "O"},
			},
			expected: types.EntityDocument{
				{Text: "thin film", Type: "DSC"},
				{Text: "grown", Type: "O"},
			},
		},
		{
			name: "type change closes the open span",
			tokens: types.TaggedSentence{
				{Text: "band", Tag: "B-PROPERTY"},
				{Text: "gap", Tag: "I-PROPERTY"},
				{Text: "GaN", Tag: "I-MAT"},
			},
			expected: types.EntityDocument{
				{Text: "band gap", Type: "PROPERTY"},
				{Text: "GaN", Type: "MAT"},
			},
		},
		{
			name: "adjacent begin tags stay separate",
			tokens: types.TaggedSentence{
				{Text: "GaN", Tag: "B-MAT"},
				{Text: "AlN", Tag: "B-MAT"},
			},
			expected: types.EntityDocument{
				{Text: "GaN", Type: "MAT"},
				{Text: "AlN", Type: "MAT"},
			},
		},
		{
			name: "all outside",
			tokens: types.TaggedSentence{
				{Text: "nothing", Tag: "O"},
				{Text: "here", Tag: "O"},
			},
			expected: types.EntityDocument{
				{Text: "nothing", Type: "O"},
				{Text: "here", Type: "O"},
			},
		},
		{
			name:     "empty sentence",
			tokens:   types.TaggedSentence{},
			expected: types.EntityDocument{},
		},
	}

	for _, scenario := range scenarios {
		t.Run(scenario.name, func(t *testing.T) {
			actual := Concatenate(scenario.tokens)
			if diff := cmp.Diff(scenario.expected, actual); diff != "" {
				t.Errorf("unexpected entities (-want +got):\n%s", diff)
			}
		})
	}
}

func TestConcatenateIdempotence(t *testing.T) {
	// merged spans re-fed as atomic single tokens with their bare type
	// come out unchanged
	tokens := types.TaggedSentence{
		{Text: "Fe2O3", Tag: "B-MAT"},
		{Text: "was", Tag: "O"},
		{Text: "heated", Tag: "O"},
		{Text: "to", Tag: "O"},
		{Text: "100", Tag: "B-PROPERTY"},
		{Text: "degrees", Tag: "I-PROPERTY"},
		{Text: "GaN", Tag: "B-MAT"},
		{Text: "AlN", Tag: "B-MAT"},
		{Text: ".", Tag: "O"},
	}
	once := Concatenate(tokens)

	atomic := make(types.TaggedSentence, len(once))
	for i, entity := range once {
		tag := types.OutsideTag
		if entity.Type != types.OutsideTag {
			tag = types.TagPrefixBegin + "-" + entity.Type
		}
		atomic[i] = types.TaggedToken{Text: entity.Text, Tag: tag}
	}

	twice := Concatenate(atomic)
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("concatenation is not idempotent (-once +twice):\n%s", diff)
	}
}

func TestConcatenateDocument(t *testing.T) {
	doc := types.TaggedDocument{
		{
			{Text: "LiFePO4", Tag: "B-MAT"},
			{Text: "cathodes", Tag: "O"},
		},
		{
			{Text: "were", Tag: "O"},
			{Text: "ball", Tag: "B-SMT"},
			{Text: "milled", Tag: "I-SMT"},
		},
	}

	expected := types.EntityDocument{
		{Text: "LiFePO4", Type: "MAT"},
		{Text: "cathodes", Type: "O"},
		{Text: "were", Type: "O"},
		{Text: "ball milled", Type: "SMT"},
	}
	assert.Equal(t, expected, ConcatenateDocument(doc))

	// a span never merges across a sentence boundary
	split := types.TaggedDocument{
		{{Text: "ball", Tag: "B-SMT"}},
		{{Text: "milled", Tag: "I-SMT"}},
	}
	assert.Equal(t, types.EntityDocument{
		{Text: "ball", Type: "SMT"},
		{Text: "milled", Type: "SMT"},
	}, ConcatenateDocument(split))
}
