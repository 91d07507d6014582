package chatcontext

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "strings"
    "testing"

    "github.com/iliyamo/founder-copilot/internal/model"
)

type profiles struct {
    p   model.Profile
    err error
}

func (s profiles) GetByUserID(context.Context, uint64) (model.Profile, error) { return s.p, s.err }

// ideas ignores the limit so the caps are exercised on our side.
type ideas struct{ n int }

func (s ideas) ListByUser(context.Context, uint64, int) ([]model.Idea, error) {
    out := make([]model.Idea, s.n)
    for i := range out {
        out[i] = model.Idea{Title: fmt.Sprintf("idea %d", i), Status: "draft"}
    }
    return out, nil
}

type decisions struct{ err error }

func (s decisions) ListByUser(context.Context, uint64, int) ([]model.Decision, error) {
    return nil, s.err
}

type metrics struct{ n int }

func (s metrics) ListByUser(context.Context, uint64, int) ([]model.Metric, error) {
    out := make([]model.Metric, s.n)
    for i := range out {
        out[i] = model.Metric{MetricType: "users", Value: fmt.Sprint(i)}
    }
    return out, nil
}

type messages struct {
    msgs []model.ChatMessage
    err  error
}

func (s messages) ListRecent(context.Context, uint64, int) ([]model.ChatMessage, error) {
    return s.msgs, s.err
}

func decodeUser(t *testing.T, s string) map[string]json.RawMessage {
    t.Helper()
    var out map[string]json.RawMessage
    if err := json.Unmarshal([]byte(s), &out); err != nil {
        t.Fatalf("user context is not JSON: %v\n%s", err, s)
    }
    return out
}

func count(t *testing.T, raw json.RawMessage) int {
    t.Helper()
    var list []json.RawMessage
    if err := json.Unmarshal(raw, &list); err != nil {
        t.Fatalf("not an array: %s", raw)
    }
    return len(list)
}

func TestAssembleCapsLists(t *testing.T) {
    name := "Ada"
    a := &Assembler{
        Profiles: profiles{p: model.Profile{UserID: 1, FullName: &name}},
        Ideas:    ideas{n: 9},
        Metrics:  metrics{n: 25},
    }
    b := a.Assemble(context.Background(), 1)
    uc := decodeUser(t, b.UserContext)

    if got := count(t, uc["recentIdeas"]); got != MaxIdeas {
        t.Errorf("ideas = %d, want %d", got, MaxIdeas)
    }
    if got := count(t, uc["recentMetrics"]); got != MaxMetrics {
        t.Errorf("metrics = %d, want %d", got, MaxMetrics)
    }
    if got := count(t, uc["recentDecisions"]); got != 0 {
        t.Errorf("decisions = %d, want 0", got)
    }
    if !strings.Contains(string(uc["profile"]), `"full_name":"Ada"`) {
        t.Errorf("profile = %s", uc["profile"])
    }
    if b.ConversationContext != "" {
        t.Errorf("conversation = %q", b.ConversationContext)
    }
}

func TestAssembleDegradesOnErrors(t *testing.T) {
    boom := errors.New("boom")
    a := &Assembler{
        Profiles:  profiles{err: boom},
        Decisions: decisions{err: boom},
        Messages:  messages{err: boom},
    }
    b := a.Assemble(context.Background(), 1)
    uc := decodeUser(t, b.UserContext)
    if string(uc["profile"]) != "{}" {
        t.Errorf("profile = %s, want {}", uc["profile"])
    }
    if string(uc["recentDecisions"]) != "[]" {
        t.Errorf("decisions = %s, want []", uc["recentDecisions"])
    }
    if b.ConversationContext != "" {
        t.Errorf("conversation = %q", b.ConversationContext)
    }
}

func TestConversationOldestFirst(t *testing.T) {
    var msgs []model.ChatMessage
    // newest first, as the store returns them
    for i := 30; i > 0; i-- {
        role := "user"
        if i%2 == 0 {
            role = "assistant"
        }
        msgs = append(msgs, model.ChatMessage{Role: role, Content: fmt.Sprintf("m%d", i)})
    }
    a := &Assembler{Messages: messages{msgs: msgs}}
    got := strings.Split(a.Assemble(context.Background(), 1).ConversationContext, "\n")

    if len(got) != MaxMessages {
        t.Fatalf("lines = %d, want %d", len(got), MaxMessages)
    }
    if got[0] != "user: m11" || got[len(got)-1] != "assistant: m30" {
        t.Fatalf("first=%q last=%q", got[0], got[len(got)-1])
    }
}
