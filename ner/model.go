package ner

import "errors"

// Model is the single inference capability both backends satisfy: one tag
// per input token. Predict must never return a short or empty tag slice on
// failure, it returns an error instead.
type Model interface {
	Predict(tokens []string) ([]string, error)
	SaveExported(dir string) error
	Close() error
}

var (
	// ErrSessionClosed is returned by Predict after Close has released the
	// model's resources.
	ErrSessionClosed = errors.New("model session is closed")

	// ErrRemoteExport is returned when a save is requested against the
	// remote serving variant, which holds no local weights to export.
	ErrRemoteExport = errors.New("cannot export a remotely served model")
)
