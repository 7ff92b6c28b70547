package ner

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"matscholar.com/ner/logger"
	"matscholar.com/ner/normalize"
	"matscholar.com/ner/process"
	"matscholar.com/ner/types"
)

// Classifier tags scientific text with named entities. The inference
// backend is chosen once at construction: a remote serving endpoint when
// MAT_NER_SERVING_URL is set, otherwise the resident local model. One
// classifier owns one backend. Both backends only read their state during
// Predict, so concurrent tagging calls are safe; CloseSession must not
// overlap in-flight tagging.
type Classifier struct {
	config     *Config
	model      Model
	normalizer *normalize.Normalizer
	clsLogger  zerolog.Logger
}

// NewClassifier resolves configuration, selects the inference backend and
// loads the canonical-form dictionary. Construction either succeeds
// completely or returns an error; no partially initialized classifier is
// ever returned.
func NewClassifier() (*Classifier, error) {
	clsLogger := logger.NewLogger("NER classifier")

	cfg, env, err := NewConfig()
	if err != nil {
		return nil, err
	}

	var model Model
	if env.ServingURL != "" {
		model = NewServingModel(env.ServingURL, time.Duration(env.ServingTimeoutSeconds)*time.Second)
	} else {
		model, err = NewLocalModel(cfg)
		if err != nil {
			clsLogger.Error().Err(err).Msg("Failed to restore local model")
			return nil, err
		}
	}

	normalizer, err := normalize.NewNormalizer(cfg.FilenameNormalizations)
	if err != nil {
		clsLogger.Error().Err(err).Msg("Failed to load canonical forms")
		// do not leave a half-built classifier holding model resources
		_ = model.Close()
		return nil, err
	}

	return &Classifier{
		config:     cfg,
		model:      model,
		normalizer: normalizer,
		clsLogger:  clsLogger,
	}, nil
}

// TagSequence tags one pre-tokenized sentence directly, with no
// preprocessing or numeral reconstruction.
func (cls *Classifier) TagSequence(tokens []string) (types.TaggedSentence, error) {
	tags, err := cls.model.Predict(tokens)
	if err != nil {
		return nil, err
	}
	if len(tags) != len(tokens) {
		return nil, fmt.Errorf("model returned %d tags for %d tokens", len(tags), len(tokens))
	}
	tagged := make(types.TaggedSentence, len(tokens))
	for i, token := range tokens {
		tagged[i] = types.TaggedToken{Text: token, Tag: tags[i]}
	}
	return tagged, nil
}

// TagDoc tokenizes a raw document and tags every sentence, restoring the
// original numeral text at substituted positions. The result has exactly
// one tagged sentence per tokenized sentence, in input order.
func (cls *Classifier) TagDoc(doc string) (types.TaggedDocument, error) {
	sentences := process.Tokenize(doc)
	tagged := make(types.TaggedDocument, 0, len(sentences))
	for i, sentence := range sentences {
		taggedSent, err := cls.tagSentence(process.Process(sentence))
		if err != nil {
			return nil, fmt.Errorf("sentence %d: %w", i, err)
		}
		tagged = append(tagged, taggedSent)
	}
	return tagged, nil
}

// TagDocs tags a batch of documents, one tagged document per input, order
// preserved. The batch fails as a whole: on any error the returned slice is
// nil and the error names the failing document. Documents are processed
// independently, so a failing document cannot alter a sibling's result.
func (cls *Classifier) TagDocs(docs []string) ([]types.TaggedDocument, error) {
	tagged := make([]types.TaggedDocument, 0, len(docs))
	for i, doc := range docs {
		taggedDoc, err := cls.TagDoc(doc)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		tagged = append(tagged, taggedDoc)
	}
	return tagged, nil
}

// AsIOB tags documents and returns them in IOB format. Alias of TagDocs,
// named for its output contract.
func (cls *Classifier) AsIOB(docs []string) ([]types.TaggedDocument, error) {
	return cls.TagDocs(docs)
}

// AsConcatenated tags documents and merges each entity into a single
// string.
func (cls *Classifier) AsConcatenated(docs []string) ([]types.EntityDocument, error) {
	taggedDocs, err := cls.TagDocs(docs)
	if err != nil {
		return nil, err
	}
	concatenated := make([]types.EntityDocument, len(taggedDocs))
	for i, taggedDoc := range taggedDocs {
		concatenated[i] = normalize.ConcatenateDocument(taggedDoc)
	}
	return concatenated, nil
}

// AsNormalized tags documents, concatenates entities and swaps each for its
// canonical form where one exists. Concatenation always happens first; this
// is the single normalization path.
func (cls *Classifier) AsNormalized(docs []string) ([]types.EntityDocument, error) {
	taggedDocs, err := cls.TagDocs(docs)
	if err != nil {
		return nil, err
	}
	return cls.normalizer.Normalize(docs, taggedDocs)
}

// ConcatenateEntities merges the entities of one tagged document.
func (cls *Classifier) ConcatenateEntities(taggedDoc types.TaggedDocument) types.EntityDocument {
	return normalize.ConcatenateDocument(taggedDoc)
}

// NormalizeEntities is the single-document convenience form of
// AsNormalized for an already tagged document.
func (cls *Classifier) NormalizeEntities(doc string, taggedDoc types.TaggedDocument) (types.EntityDocument, error) {
	normalized, err := cls.normalizer.Normalize([]string{doc}, []types.TaggedDocument{taggedDoc})
	if err != nil {
		return nil, err
	}
	return normalized[0], nil
}

// SaveModel exports an inference-ready artifact of the resident model.
// Only meaningful for the local variant.
func (cls *Classifier) SaveModel(saveDir string) error {
	return cls.model.SaveExported(saveDir)
}

// CloseSession releases the inference backend's resources. No predict
// calls are valid afterwards.
func (cls *Classifier) CloseSession() error {
	return cls.model.Close()
}

// tagSentence predicts on the placeholder track and reconstitutes the
// surface form from the numeric-preserved track at substituted positions.
func (cls *Classifier) tagSentence(sentence process.ProcessedSentence) (types.TaggedSentence, error) {
	tags, err := cls.model.Predict(sentence.Tokens)
	if err != nil {
		return nil, err
	}
	if len(tags) != len(sentence.Tokens) {
		return nil, fmt.Errorf("model returned %d tags for %d tokens", len(tags), len(sentence.Tokens))
	}
	tagged := make(types.TaggedSentence, len(sentence.Tokens))
	for i, token := range sentence.Tokens {
		text := token
		if sentence.IsNumber[i] {
			text = sentence.NumTokens[i]
		}
		tagged[i] = types.TaggedToken{Text: text, Tag: tags[i]}
	}
	return tagged, nil
}
