package port

import "context"

// CompletionRequest carries one model round-trip. Exactly one of Text or
// Image should be set; Image requires a vision-capable model.
type CompletionRequest struct {
	SystemPrompt string
	UserPrompt   string
	Text         string
	Image        []byte
	ImageType    string // MIME type, required when Image is set
}

// ChatModel abstracts a language-model backend constrained to JSON output.
// Complete returns the raw model text, which callers must decode strictly.
type ChatModel interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
	Model() string
}
