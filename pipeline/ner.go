package pipeline

import (
	"encoding/json"
	"fmt"

	"matscholar.com/ner/logger"
	"matscholar.com/ner/types"
	"matscholar.com/ner/utils"
)

// Pipeline runs one tagging request to completion and delivers exactly one
// response on the returned channel.
type Pipeline func(request Request) <-chan Response

// Tagger is the slice of the classifier the pipeline consumes.
type Tagger interface {
	TagDoc(doc string) (types.TaggedDocument, error)
	ConcatenateEntities(taggedDoc types.TaggedDocument) types.EntityDocument
	NormalizeEntities(doc string, taggedDoc types.TaggedDocument) (types.EntityDocument, error)
}

type resultEnvelope struct {
	Tid    string      `json:"tid"`
	Format Format      `json:"format"`
	Result interface{} `json:"result"`
}

// NewNERPipeline wraps the classifier into the request/response shape the
// worker and the REST API consume. The requested format picks the output
// surface: raw IOB sentences, concatenated entities, or normalized
// entities.
func NewNERPipeline(cls Tagger) Pipeline {
	pplnLogger := logger.NewLogger("NER pipeline")

	return func(request Request) <-chan Response {
		responseChan := make(chan Response, 1)

		go func() {
			defer close(responseChan)

			reqLogger := pplnLogger.With().Str("tid", request.Tid).Logger()
			reqLogger.Info().Str("format", string(request.Format)).Msg("Started NER pipeline")

			result, err := runRequest(cls, request)
			if err != nil {
				reqLogger.Err(err).Msg("NER pipeline failed")
				responseChan <- Response{Err: err}
				return
			}

			envelope := resultEnvelope{
				Tid:    request.Tid,
				Format: request.Format,
				Result: result,
			}
			b, err := json.Marshal(envelope)
			if err != nil {
				reqLogger.Err(err).Msg("Failed to marshal pipeline result")
				responseChan <- Response{Err: err}
				return
			}
			reqLogger.Info().Msg("Finished NER pipeline")
			responseChan <- Response{Result: string(b)}
		}()

		return responseChan
	}
}

func runRequest(cls Tagger, request Request) (result interface{}, err error) {
	defer utils.RecoverWithError(&err)

	switch request.Format {
	case FormatIOB, "":
		return cls.TagDoc(request.Text)
	case FormatConcatenated:
		tagged, err := cls.TagDoc(request.Text)
		if err != nil {
			return nil, err
		}
		return cls.ConcatenateEntities(tagged), nil
	case FormatNormalized:
		tagged, err := cls.TagDoc(request.Text)
		if err != nil {
			return nil, err
		}
		return cls.NormalizeEntities(request.Text, tagged)
	default:
		return nil, fmt.Errorf("unknown output format %q", request.Format)
	}
}
