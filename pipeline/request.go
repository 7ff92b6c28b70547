package pipeline

type Format string

const (
	FormatIOB          Format = "iob"
	FormatConcatenated Format = "concatenated"
	FormatNormalized   Format = "normalized"
)

type Request struct {
	Text   string `json:"text"`
	Tid    string `json:"tid"`
	Format Format `json:"format"`
}

type Response struct {
	Result string
	Err    error
}
