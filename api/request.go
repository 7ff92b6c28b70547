package api

import (
	"encoding/json"
	"io"
	"net/http"

	"matscholar.com/ner/pipeline"
)

type Request struct {
	Pipeline pipeline.Pipeline
}

// ProcessData tags the posted document. The body is either a JSON
// pipeline.Request or raw text, in which case the whole body is tagged in
// IOB format.
func (req *Request) ProcessData(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	logger := makeRequestLogger(r)

	if r.Method != "POST" {
		logger.Err(nil).Int("status", http.StatusMethodNotAllowed).Msg("Only 'POST' method is allowed here")
		http.Error(w, "", http.StatusMethodNotAllowed)
		return
	}

	msg, err := io.ReadAll(r.Body)
	if err != nil {
		logger.Err(err).Int("status", http.StatusBadRequest).Msg("Could not read request body")
		http.Error(w, "", http.StatusBadRequest)
		return
	}

	var request pipeline.Request
	if err := json.Unmarshal(msg, &request); err != nil || request.Text == "" {
		request = pipeline.Request{
			Text:   string(msg),
			Format: pipeline.FormatIOB,
		}
	}
	if request.Tid == "" {
		request.Tid = "api_request"
	}

	logger.Info().Str("tid", request.Tid).Msg("Starting pipeline for request from API")
	resp := <-req.Pipeline(request)
	if resp.Err != nil {
		logger.Err(resp.Err).Int("status", http.StatusInternalServerError).Msg("Pipeline failed")
		http.Error(w, resp.Err.Error(), http.StatusInternalServerError)
		return
	}
	_, _ = w.Write([]byte(resp.Result))
	logger.Info().Int("status", http.StatusOK).Msg("Finished processing request")
}
