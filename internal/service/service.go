// Package service orchestrates the LLM-backed founder workflows: chat,
// idea validation, roadmap generation, weekly reviews and insights.  Each
// service depends on narrow interfaces so tests can run on fakes.
package service

import (
	"context"
	"errors"
	"io"

	"github.com/iliyamo/founder-copilot/internal/llm"
	"github.com/iliyamo/founder-copilot/internal/stream"
)

// ErrEmptyReply is returned when the model streamed no text at all.
var ErrEmptyReply = errors.New("model returned an empty reply")

// StreamOpener opens a streaming completion.  *llm.Gateway implements it.
type StreamOpener interface {
	OpenStream(ctx context.Context, req llm.ChatRequest) (io.ReadCloser, error)
}

// Completer runs a single non-streaming completion.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// generate sends one user prompt with the given context type and returns the
// full reply text.  The generation flows send no stored context; the prompt
// carries everything the model needs.
func generate(ctx context.Context, gw StreamOpener, contextType, prompt string) (string, error) {
	body, err := gw.OpenStream(ctx, llm.ChatRequest{
		Messages:    []llm.Message{{Role: "user", Content: prompt}},
		ContextType: contextType,
	})
	if err != nil {
		return "", err
	}
	defer body.Close()

	text, err := stream.Collect(body)
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", ErrEmptyReply
	}
	return text, nil
}
