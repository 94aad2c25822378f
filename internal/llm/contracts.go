package llm

import "context"

// Image is an image payload attached to a chat completion.
type Image struct {
	Data     []byte
	MIMEType string
}

// Gateway issues a single-message chat completion and returns the raw text
// content of the first choice. Implementations never retry.
type Gateway interface {
	CompleteChat(ctx context.Context, model, prompt string, image *Image) (string, error)
}

// GatewayFunc adapts a function to the Gateway interface.
type GatewayFunc func(ctx context.Context, model, prompt string, image *Image) (string, error)

func (f GatewayFunc) CompleteChat(ctx context.Context, model, prompt string, image *Image) (string, error) {
	return f(ctx, model, prompt, image)
}
