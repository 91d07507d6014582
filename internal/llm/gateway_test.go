package llm

import (
    "context"
    "encoding/json"
    "errors"
    "io"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"
    "time"

    "github.com/iliyamo/founder-copilot/internal/config"
    "github.com/iliyamo/founder-copilot/internal/logger"
)

func testGateway(url, key string) *Gateway {
    return NewGateway(config.LLMConfig{APIKey: key, BaseURL: url, Model: "test-model", Timeout: 5 * time.Second}, logger.Nop())
}

func TestOpenStreamNotConfigured(t *testing.T) {
    g := testGateway("http://127.0.0.1:1", "  ")
    if _, err := g.OpenStream(context.Background(), ChatRequest{}); !errors.Is(err, ErrNotConfigured) {
        t.Fatalf("err = %v", err)
    }
    if _, err := g.Complete(context.Background(), "s", "u"); !errors.Is(err, ErrNotConfigured) {
        t.Fatalf("Complete err = %v", err)
    }
}

func TestOpenStreamSendsSystemPromptFirst(t *testing.T) {
    var body completionBody
    var auth, accept string
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        if r.URL.Path != "/v1/chat/completions" {
            http.NotFound(w, r)
            return
        }
        auth = r.Header.Get("Authorization")
        accept = r.Header.Get("Accept")
        _ = json.NewDecoder(r.Body).Decode(&body)
        w.Header().Set("Content-Type", "text/event-stream")
        _, _ = io.WriteString(w, "data: {\"choices\":[{\"delta\":{\"content\":\"hi\"}}]}\n\ndata: [DONE]\n\n")
    }))
    defer srv.Close()

    g := testGateway(srv.URL+"/", "key-1")
    rc, err := g.OpenStream(context.Background(), ChatRequest{
        Messages:    []Message{{Role: "user", Content: "hello"}},
        ContextType: ContextDecision,
        UserCountry: "India",
        CurrentDate: "2025-03-10",
    })
    if err != nil {
        t.Fatalf("OpenStream: %v", err)
    }
    raw, _ := io.ReadAll(rc)
    _ = rc.Close()

    if !strings.Contains(string(raw), "[DONE]") {
        t.Fatalf("body not passed through: %q", raw)
    }
    if auth != "Bearer key-1" || accept != "text/event-stream" {
        t.Fatalf("headers auth=%q accept=%q", auth, accept)
    }
    if !body.Stream || body.Model != "test-model" {
        t.Fatalf("body = %+v", body)
    }
    if len(body.Messages) != 2 || body.Messages[0].Role != "system" || body.Messages[1].Content != "hello" {
        t.Fatalf("messages = %+v", body.Messages)
    }
    sys := body.Messages[0].Content
    if !strings.Contains(sys, "USER'S COUNTRY: India\nCURRENT DATE: 2025-03-10") {
        t.Fatal("country block missing")
    }
    if !strings.HasSuffix(sys, contextInstructions[ContextDecision]) {
        t.Fatal("decision instruction not appended")
    }
}

func TestOpenStreamUpstreamStatus(t *testing.T) {
    tests := []struct {
        status     int
        wantStatus int
        wantMsg    string
    }{
        {status: 429, wantStatus: 429, wantMsg: "Rate limit exceeded. Please try again in a moment."},
        {status: 402, wantStatus: 402, wantMsg: "AI credits exhausted. Please add credits to continue."},
        {status: 500, wantStatus: 500, wantMsg: "AI service temporarily unavailable"},
        {status: 401, wantStatus: 500, wantMsg: "AI service temporarily unavailable"},
    }
    for _, tt := range tests {
        srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
            http.Error(w, "upstream says no", tt.status)
        }))
        _, err := testGateway(srv.URL, "k").OpenStream(context.Background(), ChatRequest{})
        srv.Close()

        var uerr *UpstreamError
        if !errors.As(err, &uerr) || uerr.Status != tt.status {
            t.Fatalf("status %d: err = %v", tt.status, err)
        }
        if !strings.Contains(uerr.Body, "upstream says no") {
            t.Errorf("status %d: body = %q", tt.status, uerr.Body)
        }
        gotStatus, gotMsg := StatusFor(err)
        if gotStatus != tt.wantStatus || gotMsg != tt.wantMsg {
            t.Errorf("StatusFor(%d) = %d %q", tt.status, gotStatus, gotMsg)
        }
    }
}

func TestStatusForNotConfigured(t *testing.T) {
    status, msg := StatusFor(ErrNotConfigured)
    if status != http.StatusInternalServerError || msg != "LLM_API_KEY is not configured" {
        t.Fatalf("StatusFor = %d %q", status, msg)
    }
    status, _ = StatusFor(errors.New("dial tcp: refused"))
    if status != http.StatusInternalServerError {
        t.Fatalf("network error status = %d", status)
    }
}

func TestComplete(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        if r.URL.Path != "/v1/chat/completions" {
            http.NotFound(w, r)
            return
        }
        w.Header().Set("Content-Type", "application/json")
        _, _ = io.WriteString(w, `{"id":"c1","object":"chat.completion","created":1,"model":"test-model",`+
            `"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"VALIDATION_SCORE: 70"}}]}`)
    }))
    defer srv.Close()

    out, err := testGateway(srv.URL, "k").Complete(context.Background(), "system", "user")
    if err != nil {
        t.Fatalf("Complete: %v", err)
    }
    if out != "VALIDATION_SCORE: 70" {
        t.Fatalf("out = %q", out)
    }
}

func TestCompleteRateLimited(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        w.Header().Set("Content-Type", "application/json")
        w.WriteHeader(http.StatusTooManyRequests)
        _, _ = io.WriteString(w, `{"error":{"message":"slow down"}}`)
    }))
    defer srv.Close()

    _, err := testGateway(srv.URL, "k").Complete(context.Background(), "system", "user")
    status, _ := StatusFor(err)
    if status != http.StatusTooManyRequests {
        t.Fatalf("status = %d, err = %v", status, err)
    }
}
