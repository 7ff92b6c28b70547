package normalize

import (
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matscholar.com/ner/types"
)

const canonicalFormsFixture = `# entity|type|canonical
iron oxide|MAT|Fe2O3
titania|MAT|TiO2
band gap|PROPERTY|band gap energy

iron oxide|MAT|Fe2O3
`

func writeCanonicalForms(t *testing.T) string {
	t.Helper()
	bsvPath := path.Join(t.TempDir(), "normalizations.bsv")
	require.NoError(t, os.WriteFile(bsvPath, []byte(canonicalFormsFixture), 0644))
	return bsvPath
}

func TestNewNormalizerMissingFile(t *testing.T) {
	_, err := NewNormalizer(path.Join(t.TempDir(), "missing.bsv"))
	assert.Error(t, err)
}

func TestNormalizeEntities(t *testing.T) {
	normalizer, err := NewNormalizer(writeCanonicalForms(t))
	require.NoError(t, err)

	entities := types.EntityDocument{
		{Text: "iron oxide", Type: "MAT"},
		{Text: "was", Type: "O"},
		{Text: "unmapped carbide", Type: "MAT"},
		{Text: "band gap", Type: "PROPERTY"},
		{Text: "band gap", Type: "O"},
	}

	expected := types.EntityDocument{
		{Text: "Fe2O3", Type: "MAT"},
		{Text: "was", Type: "O"},
		{Text: "unmapped carbide", Type: "MAT"},
		{Text: "band gap energy", Type: "PROPERTY"},
		{Text: "band gap", Type: "O"},
	}
	assert.Equal(t, expected, normalizer.NormalizeEntities(entities))

	// input slice must not be mutated
	assert.Equal(t, "iron oxide", entities[0].Text)
}

func TestNormalize(t *testing.T) {
	normalizer, err := NewNormalizer(writeCanonicalForms(t))
	require.NoError(t, err)

	taggedDocs := []types.TaggedDocument{
		{
			{
				{Text: "iron", Tag: "B-MAT"},
				{Text: "oxide", Tag: "I-MAT"},
				{Text: "powder", Tag: "O"},
			},
		},
		{
			{
				{Text: "titania", Tag: "B-MAT"},
			},
		},
	}
	docs := []string{"iron oxide powder", "titania"}

	normalized, err := normalizer.Normalize(docs, taggedDocs)
	require.NoError(t, err)

	expected := []types.EntityDocument{
		{
			{Text: "Fe2O3", Type: "MAT"},
			{Text: "powder", Type: "O"},
		},
		{
			{Text: "TiO2", Type: "MAT"},
		},
	}
	assert.Equal(t, expected, normalized)
}

func TestNormalizeMisalignedInputs(t *testing.T) {
	normalizer, err := NewNormalizer(writeCanonicalForms(t))
	require.NoError(t, err)

	_, err = normalizer.Normalize([]string{"one", "two"}, []types.TaggedDocument{{}})
	assert.Error(t, err)
}
