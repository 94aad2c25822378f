// Package llmtest provides a scripted llm.Gateway for tests.
package llmtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/joseph-ayodele/personal-info-parser/internal/llm"
)

// Call records one CompleteChat invocation.
type Call struct {
	Model  string
	Prompt string
	Image  *llm.Image
}

// Reply is one scripted answer: Content, or Err when set.
type Reply struct {
	Content string
	Err     error
}

// Gateway answers calls with its scripted replies in order. Running out of
// replies is an error, so an unexpected extra call fails the test.
type Gateway struct {
	mu      sync.Mutex
	replies []Reply
	calls   []Call
}

// New scripts successful replies.
func New(contents ...string) *Gateway {
	g := &Gateway{}
	for _, c := range contents {
		g.replies = append(g.replies, Reply{Content: c})
	}
	return g
}

// Then appends a reply, e.g. an error.
func (g *Gateway) Then(r Reply) *Gateway {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.replies = append(g.replies, r)
	return g
}

func (g *Gateway) CompleteChat(ctx context.Context, model, prompt string, image *llm.Image) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, Call{Model: model, Prompt: prompt, Image: image})
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(g.calls) > len(g.replies) {
		return "", fmt.Errorf("llmtest: unexpected call %d", len(g.calls))
	}
	r := g.replies[len(g.calls)-1]
	return r.Content, r.Err
}

// Calls returns a copy of the recorded calls.
func (g *Gateway) Calls() []Call {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Call(nil), g.calls...)
}
