package port

import "context"

// ResponseFormat selects how the provider should shape its answer.
type ResponseFormat string

const (
	ResponseFormatJSON ResponseFormat = "json"
	ResponseFormatText ResponseFormat = "text"
)

// ImagePayload is a base64-encoded image or PDF for vision-capable models.
type ImagePayload struct {
	MIMEType string
	Base64   string
}

// CompletionRequest carries one instruction/content pair to a model.
type CompletionRequest struct {
	Instructions   string
	Content        string
	Image          *ImagePayload
	ResponseFormat ResponseFormat
	MaxTokens      int
}

// Completion is the raw model answer.
type Completion struct {
	Text         string
	Model        string
	FinishReason string
}

// InferenceProvider abstracts an LLM API behind a single call.
type InferenceProvider interface {
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)
	Model() string
}
