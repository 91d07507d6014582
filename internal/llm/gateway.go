// Package llm talks to the OpenAI-compatible chat-completions gateway and
// owns the co-founder prompts.
package llm

import (
    "bytes"
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "io"
    "net/http"
    "strings"

    "github.com/openai/openai-go"
    "github.com/openai/openai-go/option"

    "github.com/iliyamo/founder-copilot/internal/config"
    "github.com/iliyamo/founder-copilot/internal/logger"
)

// ErrNotConfigured is returned when LLM_API_KEY is unset.
var ErrNotConfigured = errors.New("LLM_API_KEY is not configured")

// UpstreamError is a non-2xx answer from the gateway.
type UpstreamError struct {
    Status int
    Body   string
}

func (e *UpstreamError) Error() string {
    return fmt.Sprintf("llm gateway status %d: %s", e.Status, e.Body)
}

// Message is one chat message in gateway wire form.
type Message struct {
    Role    string `json:"role"`
    Content string `json:"content"`
}

// ChatRequest is what the relay needs to open a completion stream.
type ChatRequest struct {
    Messages            []Message
    UserContext         string
    ConversationContext string
    ContextType         string
    UserCountry         string
    CurrentDate         string
}

// Gateway holds the credentials for both the raw streaming path and the
// SDK-backed completion path.
type Gateway struct {
    APIKey  string
    BaseURL string
    Model   string
    HTTP    *http.Client
    Log     *logger.Logger

    sdk openai.Client
}

// NewGateway builds a gateway from config.  A missing key is not an error
// here; calls fail with ErrNotConfigured instead.
func NewGateway(cfg config.LLMConfig, log *logger.Logger) *Gateway {
    base := strings.TrimRight(cfg.BaseURL, "/")
    g := &Gateway{
        APIKey:  strings.TrimSpace(cfg.APIKey),
        BaseURL: base,
        Model:   cfg.Model,
        // no client timeout: a stream lives as long as the request context
        HTTP: &http.Client{},
        Log:  log,
    }
    g.sdk = openai.NewClient(
        option.WithAPIKey(g.APIKey),
        option.WithBaseURL(base+"/v1/"),
        option.WithRequestTimeout(cfg.Timeout),
        option.WithMaxRetries(0),
    )
    return g
}

type completionBody struct {
    Model    string    `json:"model"`
    Messages []Message `json:"messages"`
    Stream   bool      `json:"stream"`
}

// OpenStream posts a streaming completion and returns the raw SSE body.  The
// caller must close it.  The system message is built from req and prepended
// to the caller's messages.
func (g *Gateway) OpenStream(ctx context.Context, req ChatRequest) (io.ReadCloser, error) {
    if g.APIKey == "" {
        return nil, ErrNotConfigured
    }
    system := BuildSystemPrompt(req.ContextType, req.UserContext, req.ConversationContext, req.UserCountry, req.CurrentDate)
    msgs := make([]Message, 0, len(req.Messages)+1)
    msgs = append(msgs, Message{Role: "system", Content: system})
    msgs = append(msgs, req.Messages...)

    body, err := json.Marshal(completionBody{Model: g.Model, Messages: msgs, Stream: true})
    if err != nil {
        return nil, err
    }
    httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.BaseURL+"/v1/chat/completions", bytes.NewReader(body))
    if err != nil {
        return nil, err
    }
    httpReq.Header.Set("Authorization", "Bearer "+g.APIKey)
    httpReq.Header.Set("Content-Type", "application/json")
    httpReq.Header.Set("Accept", "text/event-stream")

    resp, err := g.HTTP.Do(httpReq)
    if err != nil {
        return nil, fmt.Errorf("llm gateway request: %w", err)
    }
    if resp.StatusCode < 200 || resp.StatusCode > 299 {
        raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
        _ = resp.Body.Close()
        uerr := &UpstreamError{Status: resp.StatusCode, Body: string(raw)}
        g.Log.Error("AI gateway error", "status", resp.StatusCode, "body", uerr.Body)
        return nil, uerr
    }
    return resp.Body, nil
}

// Complete runs a single non-streaming completion through the SDK.
func (g *Gateway) Complete(ctx context.Context, system, user string) (string, error) {
    if g.APIKey == "" {
        return "", ErrNotConfigured
    }
    resp, err := g.sdk.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
        Model: openai.ChatModel(g.Model),
        Messages: []openai.ChatCompletionMessageParamUnion{
            openai.SystemMessage(system),
            openai.UserMessage(user),
        },
    })
    if err != nil {
        var apiErr *openai.Error
        if errors.As(err, &apiErr) {
            uerr := &UpstreamError{Status: apiErr.StatusCode, Body: apiErr.RawJSON()}
            g.Log.Error("AI gateway error", "status", uerr.Status, "body", uerr.Body)
            return "", uerr
        }
        return "", fmt.Errorf("llm completion: %w", err)
    }
    if len(resp.Choices) == 0 {
        return "", nil
    }
    return resp.Choices[0].Message.Content, nil
}

// StatusFor maps a gateway error to the status and message shown to clients.
func StatusFor(err error) (int, string) {
    if errors.Is(err, ErrNotConfigured) {
        return http.StatusInternalServerError, ErrNotConfigured.Error()
    }
    var uerr *UpstreamError
    if errors.As(err, &uerr) {
        switch uerr.Status {
        case http.StatusTooManyRequests:
            return http.StatusTooManyRequests, "Rate limit exceeded. Please try again in a moment."
        case http.StatusPaymentRequired:
            return http.StatusPaymentRequired, "AI credits exhausted. Please add credits to continue."
        }
    }
    return http.StatusInternalServerError, "AI service temporarily unavailable"
}
