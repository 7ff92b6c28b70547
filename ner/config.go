package ner

import (
	"os"
	"path"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"matscholar.com/ner/logger"
)

// Environment is the construction-time configuration. ServingURL switches
// the classifier to the remote inference variant; it is read once in
// NewClassifier and never re-checked.
type Environment struct {
	DataDir               string `envconfig:"MAT_NER_DATA_DIR" default:""`
	ServingURL            string `envconfig:"MAT_NER_SERVING_URL" default:""`
	ServingTimeoutSeconds int    `envconfig:"MAT_NER_SERVING_TIMEOUT" default:"60"`
}

// ModelParams are the hyperparameters shipped with the model data.
type ModelParams struct {
	DimWord int `yaml:"dim_word"`
	DimChar int `yaml:"dim_char"`
}

// Config resolves the model storage layout: every path is fixed relative to
// the data directory.
type Config struct {
	DirData       string
	DirFinalModel string
	FilenameWords string
	FilenameTags  string
	FilenameChars string

	// trimmed embedding matrices (word + char rows)
	FilenameTrimmed string

	// canonical entity forms for the normalizer
	FilenameNormalizations string

	LogPath   string
	DirOutput string

	Params ModelParams
}

// NewConfig reads the environment and resolves all model paths. When
// MAT_NER_DATA_DIR is unset the data directory defaults to models/ner next
// to the installed binary.
func NewConfig() (*Config, Environment, error) {
	cfgLogger := logger.NewLogger("NER config")

	var env Environment
	if err := envconfig.Process("", &env); err != nil {
		cfgLogger.Error().Err(err).Msg("Could not read environment")
		return nil, env, err
	}

	dirData := env.DataDir
	if dirData == "" {
		executable, err := os.Executable()
		if err != nil {
			cfgLogger.Error().Err(err).Msg("Could not resolve executable location for default data dir")
			return nil, env, err
		}
		dirData = path.Join(filepath.Dir(executable), "models", "ner")
	}

	cfg := &Config{
		DirData:                dirData,
		DirFinalModel:          path.Join(dirData, "model.weights"),
		FilenameWords:          path.Join(dirData, "words.txt"),
		FilenameTags:           path.Join(dirData, "tags.txt"),
		FilenameChars:          path.Join(dirData, "chars.txt"),
		FilenameTrimmed:        path.Join(dirData, "embeddings.trimmed.json"),
		FilenameNormalizations: path.Join(dirData, "normalizations.bsv"),
		LogPath:                path.Join(dirData, "logs.txt"),
		DirOutput:              path.Join(dirData, "results"),
		Params:                 ModelParams{DimWord: 250, DimChar: 50},
	}

	if err := cfg.loadParams(); err != nil {
		cfgLogger.Error().Err(err).Str("data_dir", dirData).Msg("Could not read model.yaml")
		return nil, env, err
	}
	return cfg, env, nil
}

// loadParams overrides the default hyperparameters from model.yaml when the
// file is present.
func (cfg *Config) loadParams() error {
	paramsPath := path.Join(cfg.DirData, "model.yaml")
	buf, err := os.ReadFile(paramsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(buf, &cfg.Params)
}
