package ner

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"matscholar.com/ner/logger"
)

type predictRequest struct {
	Instances [][]string `json:"instances"`
}

type predictResponse struct {
	Predictions [][]string `json:"predictions"`
	Error       string     `json:"error"`
}

// ServingModel fetches predictions from a TF-Serving style REST endpoint.
// It holds no state beyond the endpoint address and is safe for concurrent
// use. Transport failures surface from Predict; there is no retry policy
// here, callers decide whether to retry.
type ServingModel struct {
	apiURL     string
	httpClient *http.Client
	modelLog   zerolog.Logger
}

func NewServingModel(apiURL string, timeout time.Duration) *ServingModel {
	modelLog := logger.NewLogger("NER serving model")
	modelLog.Info().Str("api_url", apiURL).Msg("Using remote inference endpoint")
	return &ServingModel{
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: timeout},
		modelLog:   modelLog,
	}
}

func (model *ServingModel) Predict(tokens []string) ([]string, error) {
	if len(tokens) == 0 {
		return []string{}, nil
	}
	body, err := json.Marshal(predictRequest{Instances: [][]string{tokens}})
	if err != nil {
		return nil, err
	}
	resp, err := model.httpClient.Post(model.apiURL, "application/json", bytes.NewReader(body))
	if err != nil {
		model.modelLog.Error().Err(err).Msg("Predict request failed")
		return nil, fmt.Errorf("predict request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read predict response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		model.modelLog.Error().
			Int("status", resp.StatusCode).
			Msg("Predict endpoint returned non-OK status")
		return nil, fmt.Errorf("predict endpoint returned status %d: %s", resp.StatusCode, raw)
	}

	var decoded predictResponse
	if err = json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("decode predict response: %w", err)
	}
	if decoded.Error != "" {
		return nil, fmt.Errorf("predict endpoint error: %s", decoded.Error)
	}
	if len(decoded.Predictions) != 1 {
		return nil, fmt.Errorf("predict endpoint returned %d sequences, want 1", len(decoded.Predictions))
	}
	tags := decoded.Predictions[0]
	if len(tags) != len(tokens) {
		return nil, fmt.Errorf("predict endpoint returned %d tags for %d tokens", len(tags), len(tokens))
	}
	return tags, nil
}

func (model *ServingModel) SaveExported(dir string) error {
	return ErrRemoteExport
}

func (model *ServingModel) Close() error {
	model.httpClient.CloseIdleConnections()
	return nil
}
