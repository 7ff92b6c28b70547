package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matscholar.com/ner/pipeline"
)

func respondWith(response pipeline.Response) pipeline.Pipeline {
	return func(request pipeline.Request) <-chan pipeline.Response {
		responseChan := make(chan pipeline.Response, 1)
		responseChan <- response
		close(responseChan)
		return responseChan
	}
}

func TestProcessDataRawText(t *testing.T) {
	var captured pipeline.Request
	handler := &Request{Pipeline: func(request pipeline.Request) <-chan pipeline.Response {
		captured = request
		return respondWith(pipeline.Response{Result: `{"ok":true}`})(request)
	}}

	recorder := httptest.NewRecorder()
	handler.ProcessData(recorder, httptest.NewRequest("POST", "/", strings.NewReader("GaN films were grown.")))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, `{"ok":true}`, recorder.Body.String())
	assert.Equal(t, "GaN films were grown.", captured.Text)
	assert.Equal(t, pipeline.FormatIOB, captured.Format)
	assert.Equal(t, "api_request", captured.Tid)
}

func TestProcessDataJSONRequest(t *testing.T) {
	var captured pipeline.Request
	handler := &Request{Pipeline: func(request pipeline.Request) <-chan pipeline.Response {
		captured = request
		return respondWith(pipeline.Response{Result: "{}"})(request)
	}}

	body := `{"text":"GaN films","tid":"tid-9","format":"normalized"}`
	recorder := httptest.NewRecorder()
	handler.ProcessData(recorder, httptest.NewRequest("POST", "/", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "GaN films", captured.Text)
	assert.Equal(t, "tid-9", captured.Tid)
	assert.Equal(t, pipeline.FormatNormalized, captured.Format)
}

func TestProcessDataMethodNotAllowed(t *testing.T) {
	handler := &Request{Pipeline: respondWith(pipeline.Response{})}

	recorder := httptest.NewRecorder()
	handler.ProcessData(recorder, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, recorder.Code)
}

func TestProcessDataPipelineFailure(t *testing.T) {
	handler := &Request{Pipeline: respondWith(pipeline.Response{Err: errors.New("model session is closed")})}

	recorder := httptest.NewRecorder()
	handler.ProcessData(recorder, httptest.NewRequest("POST", "/", strings.NewReader("text")))
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "model session is closed")
}
