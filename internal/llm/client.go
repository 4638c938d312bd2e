package llm

import "context"

// Request is a single-turn completion request. System carries the
// assistant persona; Prompt is the user instruction.
type Request struct {
	Model       string
	System      string
	Prompt      string
	MaxTokens   int32
	Temperature float32
}

// Response holds the generated text and provider bookkeeping.
type Response struct {
	Text       string
	StopReason string
}

// Client generates text from a prompt. Implementations make exactly one
// provider attempt per call; fallback policy lives in FallbackClient and
// in the message composer.
type Client interface {
	Complete(ctx context.Context, req Request) (Response, error)
}

type modelBoundClient struct {
	inner Client
	model string
}

// WithModel pins a model id on every request that doesn't set one. Useful
// when a primary/fallback pair targets different providers.
func WithModel(c Client, model string) Client {
	if model == "" {
		return c
	}
	return &modelBoundClient{inner: c, model: model}
}

func (c *modelBoundClient) Complete(ctx context.Context, req Request) (Response, error) {
	if req.Model == "" {
		req.Model = c.model
	}
	return c.inner.Complete(ctx, req)
}
