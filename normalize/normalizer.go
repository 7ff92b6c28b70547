package normalize

import (
	"fmt"
	"strings"

	"matscholar.com/ner/logger"
	"matscholar.com/ner/types"
	"matscholar.com/ner/utils"
)

// Normalizer maps concatenated entity strings to their canonical forms.
// The mapping ships with the model data as a BSV file with rows
// entity|type|canonical; entities without a row pass through unchanged.
type Normalizer struct {
	canonical map[string]string
}

// NewNormalizer loads the canonical-form dictionary.
func NewNormalizer(bsvPath string) (*Normalizer, error) {
	normLogger := logger.NewLogger("Entity normalizer")

	rows, err := utils.NewBSVReader(bsvPath, func(columns []string) uint64 {
		return utils.HashString(strings.Join(columns, "|"))
	})
	if err != nil {
		normLogger.Error().Err(err).Str("path", bsvPath).Msg("Failed to open canonical forms file")
		return nil, err
	}

	canonical := make(map[string]string)
	count := 0
	for columns := range rows {
		if len(columns) != 3 {
			normLogger.Warn().Strs("columns", columns).Msg("Skipping malformed canonical forms row")
			continue
		}
		canonical[canonicalKey(columns[0], columns[1])] = columns[2]
		count++
	}
	normLogger.Info().Int("entries", count).Msg("Loaded canonical entity forms")

	return &Normalizer{canonical: canonical}, nil
}

// Normalize concatenates each tagged document and replaces every entity
// string that has a canonical form. docs carries the original text for
// alignment: both slices must be the same length and in the same order,
// and the output preserves that order.
func (normalizer *Normalizer) Normalize(docs []string, taggedDocs []types.TaggedDocument) ([]types.EntityDocument, error) {
	if len(docs) != len(taggedDocs) {
		return nil, fmt.Errorf(
			"got %d documents and %d tagged documents, inputs are misaligned",
			len(docs), len(taggedDocs),
		)
	}
	normalized := make([]types.EntityDocument, len(taggedDocs))
	for i, taggedDoc := range taggedDocs {
		normalized[i] = normalizer.NormalizeEntities(ConcatenateDocument(taggedDoc))
	}
	return normalized, nil
}

// NormalizeEntities maps an already-concatenated document in place order,
// leaving outside spans and unmapped entities untouched.
func (normalizer *Normalizer) NormalizeEntities(entities types.EntityDocument) types.EntityDocument {
	out := make(types.EntityDocument, len(entities))
	for i, entity := range entities {
		out[i] = entity
		if entity.Type == types.OutsideTag {
			continue
		}
		if canonical, ok := normalizer.canonical[canonicalKey(entity.Text, entity.Type)]; ok {
			out[i].Text = canonical
		}
	}
	return out
}

func canonicalKey(text string, entityType string) string {
	return entityType + "|" + text
}
