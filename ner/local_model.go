package ner

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/rs/zerolog"

	"matscholar.com/ner/logger"
	"matscholar.com/ner/process"
	"matscholar.com/ner/utils"
)

// Vocabulary entries written by the training pipeline for out-of-vocabulary
// words and substituted numerals.
const (
	unknownWordEntry = "$UNK$"
	numberWordEntry  = "$NUM$"
)

type embeddingFile struct {
	Words [][]float64 `json:"words"`
	Chars [][]float64 `json:"chars"`
}

// LocalModel is the resident inference backend: restored CRF weights plus
// trimmed embedding matrices. It owns those resources until Close. The
// weights are immutable after construction and Predict only reads them, so
// concurrent Predict calls are safe; Close must not overlap an in-flight
// Predict.
type LocalModel struct {
	config   *Config
	crf      *CRF
	words    map[string]int
	chars    map[rune]int
	wordVecs [][]float64
	charVecs [][]float64
	closed   bool
	modelLog zerolog.Logger
}

// NewLocalModel restores the trained model from the configured storage
// layout. Any missing or malformed file fails construction; a partially
// restored model is never returned.
func NewLocalModel(cfg *Config) (*LocalModel, error) {
	modelLog := logger.NewLogger("NER local model")

	words, err := utils.ReadLines(cfg.FilenameWords)
	if err != nil {
		modelLog.Error().Err(err).Str("path", cfg.FilenameWords).Msg("Failed to load word vocabulary")
		return nil, fmt.Errorf("load word vocabulary: %w", err)
	}
	tags, err := utils.ReadLines(cfg.FilenameTags)
	if err != nil {
		modelLog.Error().Err(err).Str("path", cfg.FilenameTags).Msg("Failed to load tag vocabulary")
		return nil, fmt.Errorf("load tag vocabulary: %w", err)
	}
	chars, err := utils.ReadLines(cfg.FilenameChars)
	if err != nil {
		modelLog.Error().Err(err).Str("path", cfg.FilenameChars).Msg("Failed to load char vocabulary")
		return nil, fmt.Errorf("load char vocabulary: %w", err)
	}

	var embeddings embeddingFile
	buf, err := os.ReadFile(cfg.FilenameTrimmed)
	if err != nil {
		modelLog.Error().Err(err).Str("path", cfg.FilenameTrimmed).Msg("Failed to load trimmed embeddings")
		return nil, fmt.Errorf("load trimmed embeddings: %w", err)
	}
	if err = json.Unmarshal(buf, &embeddings); err != nil {
		modelLog.Error().Err(err).Str("path", cfg.FilenameTrimmed).Msg("Failed to decode trimmed embeddings")
		return nil, fmt.Errorf("decode trimmed embeddings: %w", err)
	}
	if len(embeddings.Words) != len(words) {
		return nil, fmt.Errorf(
			"embedding matrix has %d rows for %d vocabulary words",
			len(embeddings.Words), len(words),
		)
	}
	if len(embeddings.Chars) != len(chars) {
		return nil, fmt.Errorf(
			"char embedding matrix has %d rows for %d vocabulary chars",
			len(embeddings.Chars), len(chars),
		)
	}

	crfPath := path.Join(cfg.DirFinalModel, "crf.json")
	crf, err := LoadCRF(crfPath)
	if err != nil {
		modelLog.Error().Err(err).Str("path", crfPath).Msg("Failed to restore model weights")
		return nil, fmt.Errorf("restore model weights: %w", err)
	}
	if err = checkTagVocabulary(tags, crf.States); err != nil {
		modelLog.Error().Err(err).Msg("Tag vocabulary does not match restored weights")
		return nil, err
	}

	wordIndex := make(map[string]int, len(words))
	for i, w := range words {
		wordIndex[w] = i
	}
	charIndex := make(map[rune]int, len(chars))
	for i, c := range chars {
		runes := []rune(c)
		if len(runes) != 1 {
			return nil, fmt.Errorf("char vocabulary line %d is not a single rune: %q", i+1, c)
		}
		charIndex[runes[0]] = i
	}

	modelLog.Info().
		Int("words", len(words)).
		Int("tags", len(tags)).
		Str("data_dir", cfg.DirData).
		Msg("Restored NER model")

	return &LocalModel{
		config:   cfg,
		crf:      crf,
		words:    wordIndex,
		chars:    charIndex,
		wordVecs: embeddings.Words,
		charVecs: embeddings.Chars,
		modelLog: modelLog,
	}, nil
}

func checkTagVocabulary(tags []string, states []string) error {
	if len(tags) != len(states) {
		return fmt.Errorf("tags.txt has %d tags, weights have %d states", len(tags), len(states))
	}
	known := make(map[string]bool, len(states))
	for _, s := range states {
		known[s] = true
	}
	for _, t := range tags {
		if !known[t] {
			return fmt.Errorf("tag %q is not a state of the restored weights", t)
		}
	}
	return nil
}

// Predict decodes one tag per token.
func (model *LocalModel) Predict(tokens []string) ([]string, error) {
	if model.closed {
		return nil, ErrSessionClosed
	}
	if len(tokens) == 0 {
		return []string{}, nil
	}
	emissions := make([][]float64, len(tokens))
	for i, token := range tokens {
		emissions[i] = model.crf.Emissions(model.wordVector(token), model.charVector(token))
	}
	tags := model.crf.Decode(emissions)
	if len(tags) != len(tokens) {
		return nil, fmt.Errorf("decoded %d tags for %d tokens", len(tags), len(tokens))
	}
	return tags, nil
}

func (model *LocalModel) wordVector(token string) []float64 {
	lookup := token
	if token == process.NumSentinel {
		lookup = numberWordEntry
	}
	idx, ok := model.words[lookup]
	if !ok {
		idx, ok = model.words[unknownWordEntry]
	}
	if !ok {
		return make([]float64, model.config.Params.DimWord)
	}
	return model.wordVecs[idx]
}

// charVector averages the character embeddings of the token; characters
// missing from the vocabulary contribute nothing.
func (model *LocalModel) charVector(token string) []float64 {
	vec := make([]float64, model.config.Params.DimChar)
	seen := 0
	for _, r := range token {
		idx, ok := model.chars[r]
		if !ok {
			continue
		}
		row := model.charVecs[idx]
		for d := 0; d < len(vec) && d < len(row); d++ {
			vec[d] += row[d]
		}
		seen++
	}
	if seen > 1 {
		for d := range vec {
			vec[d] /= float64(seen)
		}
	}
	return vec
}

// SaveExported writes an inference-ready copy of the restored artifact:
// vocabularies, trimmed embeddings and weights.
func (model *LocalModel) SaveExported(dir string) error {
	if model.closed {
		return ErrSessionClosed
	}
	weightsDir := path.Join(dir, "model.weights")
	if err := os.MkdirAll(weightsDir, 0o755); err != nil {
		return err
	}
	cfg := model.config
	files := map[string]string{
		cfg.FilenameWords:   path.Join(dir, "words.txt"),
		cfg.FilenameTags:    path.Join(dir, "tags.txt"),
		cfg.FilenameChars:   path.Join(dir, "chars.txt"),
		cfg.FilenameTrimmed: path.Join(dir, "embeddings.trimmed.json"),
		path.Join(cfg.DirFinalModel, "crf.json"): path.Join(weightsDir, "crf.json"),
	}
	for src, dst := range files {
		if err := copyFile(src, dst); err != nil {
			model.modelLog.Error().Err(err).Str("src", src).Str("dst", dst).Msg("Failed to export model file")
			return err
		}
	}
	model.modelLog.Info().Str("dir", dir).Msg("Exported inference model")
	return nil
}

// Close releases the restored weights. Further Predict calls return
// ErrSessionClosed; closing twice is an error.
func (model *LocalModel) Close() error {
	if model.closed {
		return ErrSessionClosed
	}
	model.closed = true
	model.crf = nil
	model.wordVecs = nil
	model.charVecs = nil
	model.words = nil
	model.chars = nil
	return nil
}

func copyFile(src string, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err = io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
