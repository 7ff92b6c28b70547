package pipeline

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matscholar.com/ner/types"
)

type taggerMock struct {
	tagged       types.TaggedDocument
	tagErr       error
	normalizeErr error
	panicMsg     string
}

func (mock *taggerMock) TagDoc(doc string) (types.TaggedDocument, error) {
	if mock.panicMsg != "" {
		panic(mock.panicMsg)
	}
	if mock.tagErr != nil {
		return nil, mock.tagErr
	}
	return mock.tagged, nil
}

func (mock *taggerMock) ConcatenateEntities(taggedDoc types.TaggedDocument) types.EntityDocument {
	entities := make(types.EntityDocument, 0, taggedDoc.TokenCount())
	for _, sentence := range taggedDoc {
		for _, token := range sentence {
			_, entityType := types.SplitTag(token.Tag)
			entities = append(entities, types.Entity{Text: token.Text, Type: entityType})
		}
	}
	return entities
}

func (mock *taggerMock) NormalizeEntities(doc string, taggedDoc types.TaggedDocument) (types.EntityDocument, error) {
	if mock.normalizeErr != nil {
		return nil, mock.normalizeErr
	}
	return mock.ConcatenateEntities(taggedDoc), nil
}

var taggedFixture = types.TaggedDocument{
	{
		{Text: "GaN", Tag: "B-MAT"},
		{Text: "films", Tag: "O"},
	},
}

func TestPipelineFormats(t *testing.T) {
	ppln := NewNERPipeline(&taggerMock{tagged: taggedFixture})

	scenarios := []struct {
		name   string
		format Format
	}{
		{"iob", FormatIOB},
		{"default is iob", ""},
		{"concatenated", FormatConcatenated},
		{"normalized", FormatNormalized},
	}

	for _, scenario := range scenarios {
		t.Run(scenario.name, func(t *testing.T) {
			response := <-ppln(Request{Text: "GaN films", Tid: "tid-1", Format: scenario.format})
			require.NoError(t, response.Err)

			var envelope struct {
				Tid    string          `json:"tid"`
				Format Format          `json:"format"`
				Result json.RawMessage `json:"result"`
			}
			require.NoError(t, json.Unmarshal([]byte(response.Result), &envelope))
			assert.Equal(t, "tid-1", envelope.Tid)
			assert.Equal(t, scenario.format, envelope.Format)
			assert.NotEmpty(t, envelope.Result)
		})
	}
}

func TestPipelineDeliversExactlyOneResponse(t *testing.T) {
	ppln := NewNERPipeline(&taggerMock{tagged: taggedFixture})

	responseChan := ppln(Request{Text: "GaN films", Format: FormatIOB})
	_, ok := <-responseChan
	require.True(t, ok)
	_, ok = <-responseChan
	assert.False(t, ok)
}

func TestPipelineErrors(t *testing.T) {
	tagErr := errors.New("serving endpoint unreachable")

	t.Run("tagging failure", func(t *testing.T) {
		ppln := NewNERPipeline(&taggerMock{tagErr: tagErr})
		response := <-ppln(Request{Text: "GaN films", Format: FormatIOB})
		assert.True(t, errors.Is(response.Err, tagErr))
		assert.Empty(t, response.Result)
	})

	t.Run("normalization failure", func(t *testing.T) {
		normalizeErr := errors.New("misaligned inputs")
		ppln := NewNERPipeline(&taggerMock{tagged: taggedFixture, normalizeErr: normalizeErr})
		response := <-ppln(Request{Text: "GaN films", Format: FormatNormalized})
		assert.True(t, errors.Is(response.Err, normalizeErr))
	})

	t.Run("unknown format", func(t *testing.T) {
		ppln := NewNERPipeline(&taggerMock{tagged: taggedFixture})
		response := <-ppln(Request{Text: "GaN films", Format: "yaml"})
		require.Error(t, response.Err)
		assert.Contains(t, response.Err.Error(), "unknown output format")
	})

	t.Run("panic is recovered into an error", func(t *testing.T) {
		ppln := NewNERPipeline(&taggerMock{panicMsg: "index out of range"})
		response := <-ppln(Request{Text: "GaN films", Format: FormatIOB})
		require.Error(t, response.Err)
		assert.Contains(t, response.Err.Error(), "index out of range")
	})
}
