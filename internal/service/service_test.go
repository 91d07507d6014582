package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/iliyamo/founder-copilot/internal/chatcontext"
	"github.com/iliyamo/founder-copilot/internal/llm"
	"github.com/iliyamo/founder-copilot/internal/logger"
	"github.com/iliyamo/founder-copilot/internal/model"
	"github.com/iliyamo/founder-copilot/internal/repository"
)

// sse renders text deltas the way the gateway streams them.
func sse(deltas ...string) string {
	var b strings.Builder
	for _, d := range deltas {
		frame, _ := json.Marshal(map[string]any{
			"choices": []any{map[string]any{"delta": map[string]string{"content": d}}},
		})
		b.WriteString("data: ")
		b.Write(frame)
		b.WriteString("\n\n")
	}
	b.WriteString("data: [DONE]\n\n")
	return b.String()
}

type fakeGateway struct {
	body string
	err  error
	reqs []llm.ChatRequest
}

func (g *fakeGateway) OpenStream(_ context.Context, req llm.ChatRequest) (io.ReadCloser, error) {
	g.reqs = append(g.reqs, req)
	if g.err != nil {
		return nil, g.err
	}
	return io.NopCloser(strings.NewReader(g.body)), nil
}

type memChat struct {
	msgs []model.ChatMessage
}

func (m *memChat) Create(_ context.Context, msg model.ChatMessage) (uint64, error) {
	msg.ID = uint64(len(m.msgs) + 1)
	m.msgs = append(m.msgs, msg)
	return msg.ID, nil
}

func (m *memChat) History(_ context.Context, userID uint64, contextType, contextID string, limit int) ([]model.ChatMessage, error) {
	var out []model.ChatMessage
	for _, msg := range m.msgs {
		if msg.UserID != userID || msg.ContextType == nil || *msg.ContextType != contextType {
			continue
		}
		if contextID != "" && (msg.ContextID == nil || *msg.ContextID != contextID) {
			continue
		}
		out = append(out, msg)
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

type staticAssembler struct{}

func (staticAssembler) Assemble(context.Context, uint64) chatcontext.Bundle {
	return chatcontext.Bundle{UserContext: `{"profile":{}}`, ConversationContext: "user: hi"}
}

type sink struct {
	bytes.Buffer
	flushes int
	err     error
}

func (s *sink) Write(p []byte) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.Buffer.Write(p)
}

func (s *sink) Flush() { s.flushes++ }

func newChat(gw *fakeGateway) (*ChatService, *memChat) {
	store := &memChat{}
	return &ChatService{Messages: store, Assembler: staticAssembler{}, Gateway: gw, Log: logger.Nop()}, store
}

func TestChatSendRelaysAndStores(t *testing.T) {
	body := sse("Talk to ", "ten users", " this week.")
	gw := &fakeGateway{body: body}
	svc, store := newChat(gw)
	ctx := context.Background()

	reply, err := svc.Start(ctx, 1, SendInput{Content: "What next?", ContextType: llm.ContextDecision, Country: "India"})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	out := &sink{}
	text, err := svc.Relay(ctx, reply, out)
	if err != nil {
		t.Fatalf("Relay: %v", err)
	}

	if out.String() != body {
		t.Fatal("relayed bytes differ from upstream")
	}
	if out.flushes == 0 {
		t.Fatal("sink never flushed")
	}
	if text != "Talk to ten users this week." {
		t.Fatalf("text = %q", text)
	}
	if len(store.msgs) != 2 {
		t.Fatalf("stored %d messages", len(store.msgs))
	}
	if store.msgs[0].Role != model.RoleUser || store.msgs[1].Role != model.RoleAssistant || store.msgs[1].Content != text {
		t.Fatalf("stored = %+v", store.msgs)
	}
	if *store.msgs[1].ContextType != llm.ContextDecision {
		t.Fatalf("assistant context = %q", *store.msgs[1].ContextType)
	}

	req := gw.reqs[0]
	if len(req.Messages) != 1 || req.Messages[0].Content != "What next?" {
		t.Fatalf("upstream messages = %+v", req.Messages)
	}
	if req.UserContext == "" || req.ConversationContext != "user: hi" || req.UserCountry != "India" {
		t.Fatalf("upstream request = %+v", req)
	}
}

func TestChatHistoryFeedsNextTurn(t *testing.T) {
	gw := &fakeGateway{body: sse("first answer")}
	svc, _ := newChat(gw)
	ctx := context.Background()

	r, _ := svc.Start(ctx, 1, SendInput{Content: "one"})
	_, _ = svc.Relay(ctx, r, &sink{})
	r, _ = svc.Start(ctx, 1, SendInput{Content: "two"})
	_, _ = svc.Relay(ctx, r, &sink{})

	msgs := gw.reqs[1].Messages
	if len(msgs) != 3 || msgs[1].Role != "assistant" || msgs[2].Content != "two" {
		t.Fatalf("second turn messages = %+v", msgs)
	}
	if gw.reqs[1].ContextType != llm.ContextGeneral {
		t.Fatalf("context type = %q", gw.reqs[1].ContextType)
	}
}

func TestChatRelayClientGone(t *testing.T) {
	svc, store := newChat(&fakeGateway{body: sse("lost")})
	ctx := context.Background()

	r, _ := svc.Start(ctx, 1, SendInput{Content: "hello"})
	gone := errors.New("broken pipe")
	if _, err := svc.Relay(ctx, r, &sink{err: gone}); !errors.Is(err, gone) {
		t.Fatalf("err = %v", err)
	}
	if len(store.msgs) != 1 {
		t.Fatalf("assistant message stored after disconnect: %+v", store.msgs)
	}
}

func TestChatEmptyReplyNotStored(t *testing.T) {
	svc, store := newChat(&fakeGateway{body: "data: [DONE]\n\n"})
	ctx := context.Background()

	r, _ := svc.Start(ctx, 1, SendInput{Content: "hello"})
	text, err := svc.Relay(ctx, r, &sink{})
	if err != nil || text != "" {
		t.Fatalf("Relay = %q, %v", text, err)
	}
	if len(store.msgs) != 1 {
		t.Fatalf("stored %d messages", len(store.msgs))
	}
}

func TestChatStartGatewayError(t *testing.T) {
	svc, store := newChat(&fakeGateway{err: &llm.UpstreamError{Status: 429}})
	_, err := svc.Start(context.Background(), 1, SendInput{Content: "hello"})
	var uerr *llm.UpstreamError
	if !errors.As(err, &uerr) {
		t.Fatalf("err = %v", err)
	}
	if len(store.msgs) != 1 || store.msgs[0].Role != model.RoleUser {
		t.Fatal("founder message should be kept")
	}
}

type memIdeas struct {
	idea     model.Idea
	statuses []string
	saveErr  error
}

func (m *memIdeas) GetByID(_ context.Context, userID, id uint64) (model.Idea, error) {
	if userID != m.idea.UserID || id != m.idea.ID {
		return model.Idea{}, repository.ErrNotFound
	}
	return m.idea, nil
}

func (m *memIdeas) SetStatus(_ context.Context, _, _ uint64, status string) error {
	m.statuses = append(m.statuses, status)
	m.idea.Status = status
	return nil
}

func (m *memIdeas) SaveValidation(_ context.Context, _, _ uint64, score *int, reasoning string) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.idea.ValidationScore = score
	m.idea.ValidationReasoning = &reasoning
	m.idea.Status = model.IdeaValidated
	return nil
}

func TestValidateStoresScore(t *testing.T) {
	ideas := &memIdeas{idea: model.Idea{ID: 3, UserID: 1, Title: "Invoices", Status: model.IdeaDraft}}
	gw := &fakeGateway{body: sse("Strong pain.\n", "VALIDATION_SCORE: 72\n", "Clear buyer.")}
	svc := &IdeaService{Ideas: ideas, Gateway: gw, Log: logger.Nop()}

	idea, err := svc.Validate(context.Background(), 1, 3)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if idea.ValidationScore == nil || *idea.ValidationScore != 72 || idea.Status != model.IdeaValidated {
		t.Fatalf("idea = %+v", idea)
	}
	if strings.Contains(*idea.ValidationReasoning, "VALIDATION_SCORE") {
		t.Fatal("score token left in reasoning")
	}
	if gw.reqs[0].ContextType != llm.ContextIdeaValidation {
		t.Fatalf("context type = %q", gw.reqs[0].ContextType)
	}
	if ideas.statuses[0] != model.IdeaValidating {
		t.Fatalf("statuses = %v", ideas.statuses)
	}
}

func TestValidateFailureRevertsToDraft(t *testing.T) {
	prior := 40
	ideas := &memIdeas{idea: model.Idea{ID: 3, UserID: 1, Title: "Invoices", Status: model.IdeaValidated, ValidationScore: &prior}}
	svc := &IdeaService{Ideas: ideas, Gateway: &fakeGateway{err: errors.New("gateway down")}, Log: logger.Nop()}

	if _, err := svc.Validate(context.Background(), 1, 3); err == nil {
		t.Fatal("expected error")
	}
	if ideas.idea.Status != model.IdeaDraft {
		t.Fatalf("status = %s", ideas.idea.Status)
	}
	if ideas.idea.ValidationScore == nil || *ideas.idea.ValidationScore != 40 {
		t.Fatal("previous score lost")
	}
}

func TestValidateEmptyReply(t *testing.T) {
	ideas := &memIdeas{idea: model.Idea{ID: 3, UserID: 1, Status: model.IdeaDraft}}
	svc := &IdeaService{Ideas: ideas, Gateway: &fakeGateway{body: "data: [DONE]\n\n"}, Log: logger.Nop()}
	if _, err := svc.Validate(context.Background(), 1, 3); !errors.Is(err, ErrEmptyReply) {
		t.Fatalf("err = %v", err)
	}
	if ideas.idea.Status != model.IdeaDraft {
		t.Fatalf("status = %s", ideas.idea.Status)
	}
}

func TestValidateOtherUsersIdea(t *testing.T) {
	ideas := &memIdeas{idea: model.Idea{ID: 3, UserID: 1}}
	gw := &fakeGateway{body: sse("x")}
	svc := &IdeaService{Ideas: ideas, Gateway: gw, Log: logger.Nop()}
	if _, err := svc.Validate(context.Background(), 2, 3); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
	if len(gw.reqs) != 0 || len(ideas.statuses) != 0 {
		t.Fatal("foreign idea touched")
	}
}

type memRoadmaps struct {
	saved model.Roadmap
}

func (m *memRoadmaps) Create(_ context.Context, rm model.Roadmap) (uint64, error) {
	rm.ID = 11
	m.saved = rm
	return rm.ID, nil
}

func (m *memRoadmaps) GetLatestByIdea(_ context.Context, _, ideaID uint64) (model.Roadmap, error) {
	if m.saved.IdeaID != ideaID {
		return model.Roadmap{}, repository.ErrNotFound
	}
	return m.saved, nil
}

func (m *memRoadmaps) SetStepCompleted(_ context.Context, _, stepID uint64, completed bool, at time.Time) (model.RoadmapStep, error) {
	st := model.RoadmapStep{ID: stepID, Completed: completed}
	if completed {
		st.CompletedAt = &at
	}
	return st, nil
}

func TestRoadmapGenerate(t *testing.T) {
	reply := "MVP_SCOPE: Invoice upload and reminders.\n" +
		"TECH_STACK: Go, Postgres, Stripe\n" +
		"BUILD_TIME: 2-3 weeks\n" +
		"STEPS:\n1. Landing page | Collect emails\n2. Upload flow | Parse PDFs\n"
	ideas := &memIdeas{idea: model.Idea{ID: 3, UserID: 1, Title: "Invoices"}}
	store := &memRoadmaps{}
	gw := &fakeGateway{body: sse(reply)}
	svc := &RoadmapService{Ideas: ideas, Roadmaps: store, Gateway: gw, Log: logger.Nop()}

	rm, err := svc.Generate(context.Background(), 1, 3)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if rm.ID != 11 || rm.IdeaID != 3 || rm.UserID != 1 {
		t.Fatalf("roadmap = %+v", rm)
	}
	if len(rm.TechStack) != 3 || rm.TechStack[1] != "Postgres" {
		t.Fatalf("tech stack = %v", rm.TechStack)
	}
	if rm.FirstUserPath != nil {
		t.Fatalf("missing section stored as %q", *rm.FirstUserPath)
	}
	if len(rm.Steps) != 2 || rm.Steps[1].StepNumber != 2 || rm.Steps[1].Title != "Upload flow" {
		t.Fatalf("steps = %+v", rm.Steps)
	}
	if gw.reqs[0].ContextType != llm.ContextMVPPlanning {
		t.Fatalf("context type = %q", gw.reqs[0].ContextType)
	}
}

func TestRoadmapSetStepStamps(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := &RoadmapService{Roadmaps: &memRoadmaps{}, Log: logger.Nop(), Now: func() time.Time { return now }}

	st, err := svc.SetStep(context.Background(), 1, 7, true)
	if err != nil || st.CompletedAt == nil || !st.CompletedAt.Equal(now) {
		t.Fatalf("SetStep = %+v, %v", st, err)
	}
	st, _ = svc.SetStep(context.Background(), 1, 7, false)
	if st.CompletedAt != nil {
		t.Fatal("completed_at not cleared")
	}
}

func TestPreviousWeek(t *testing.T) {
	wantStart := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2025, 3, 8, 23, 59, 59, int(999*time.Millisecond), time.UTC)
	for _, now := range []time.Time{
		time.Date(2025, 3, 12, 15, 0, 0, 0, time.UTC), // Wednesday
		time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC),   // Sunday midnight
		time.Date(2025, 3, 15, 23, 59, 0, 0, time.UTC), // Saturday
	} {
		start, end := PreviousWeek(now, time.UTC)
		if !start.Equal(wantStart) || !end.Equal(wantEnd) {
			t.Errorf("PreviousWeek(%v) = %v .. %v", now, start, end)
		}
	}
}

func TestPreviousWeekUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*3600)
	// Saturday 20:00 UTC is already Sunday in UTC+10
	now := time.Date(2025, 3, 8, 20, 0, 0, 0, time.UTC)
	start, _ := PreviousWeek(now, loc)
	if want := time.Date(2025, 3, 2, 0, 0, 0, 0, loc); !start.Equal(want) {
		t.Fatalf("start = %v, want %v", start, want)
	}
}

type weekData struct {
	decisions []model.Decision
	err       error
}

func (w weekData) ListBetween(context.Context, uint64, time.Time, time.Time) ([]model.Decision, error) {
	return w.decisions, w.err
}

type weekMetrics struct{}

func (weekMetrics) ListBetween(context.Context, uint64, time.Time, time.Time) ([]model.Metric, error) {
	return []model.Metric{{MetricType: "users", Value: "12"}}, nil
}

type weekMessages struct{}

func (weekMessages) ListBetween(context.Context, uint64, time.Time, time.Time, int) ([]model.ChatMessage, error) {
	return []model.ChatMessage{{Role: "user", Content: "should I pivot?"}}, nil
}

type memReviews struct{ saved []model.WeeklyReview }

func (m *memReviews) Create(_ context.Context, rv model.WeeklyReview) (uint64, error) {
	m.saved = append(m.saved, rv)
	return uint64(len(m.saved)), nil
}

func (m *memReviews) ListByUser(context.Context, uint64, int) ([]model.WeeklyReview, error) {
	return m.saved, nil
}

type profileOnly struct {
	p   model.Profile
	err error
}

func (p profileOnly) GetByUserID(context.Context, uint64) (model.Profile, error) { return p.p, p.err }

func TestGenerateWeekly(t *testing.T) {
	now := time.Date(2025, 3, 12, 15, 0, 0, 0, time.UTC)
	reviews := &memReviews{}
	gw := &fakeGateway{body: sse("WHAT_WORKED: shipped\n", "HARD_TRUTH: no revenue")}
	svc := &ReviewService{
		Profiles:  profileOnly{err: repository.ErrNotFound},
		Decisions: weekData{err: errors.New("db down")},
		Metrics:   weekMetrics{},
		Messages:  weekMessages{},
		Reviews:   reviews,
		Gateway:   gw,
		Log:       logger.Nop(),
		Now:       func() time.Time { return now },
	}

	rv, err := svc.GenerateWeekly(context.Background(), 1)
	if err != nil {
		t.Fatalf("GenerateWeekly: %v", err)
	}
	if rv.ID != 1 || !rv.WeekStart.Equal(time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("review = %+v", rv)
	}
	if rv.WhatWorked == nil || *rv.WhatWorked != "shipped" || rv.KeyLearnings != nil {
		t.Fatalf("sections = %+v", rv)
	}
	prompt := gw.reqs[0].Messages[0].Content
	if !strings.Contains(prompt, "Decisions made: []") || !strings.Contains(prompt, `"value":"12"`) || !strings.Contains(prompt, "should I pivot?") {
		t.Fatalf("prompt = %s", prompt)
	}
	if gw.reqs[0].ContextType != llm.ContextReview {
		t.Fatalf("context type = %q", gw.reqs[0].ContextType)
	}
}

func TestGenerateWeeklyGatewayError(t *testing.T) {
	reviews := &memReviews{}
	svc := &ReviewService{
		Profiles:  profileOnly{},
		Decisions: weekData{},
		Metrics:   weekMetrics{},
		Messages:  weekMessages{},
		Reviews:   reviews,
		Gateway:   &fakeGateway{err: llm.ErrNotConfigured},
		Log:       logger.Nop(),
	}
	if _, err := svc.GenerateWeekly(context.Background(), 1); !errors.Is(err, llm.ErrNotConfigured) {
		t.Fatalf("err = %v", err)
	}
	if len(reviews.saved) != 0 {
		t.Fatal("review stored after failure")
	}
}

type fakeCompleter struct {
	reply        string
	err          error
	system, user string
}

func (f *fakeCompleter) Complete(_ context.Context, system, user string) (string, error) {
	f.system, f.user = system, user
	return f.reply, f.err
}

type emptyIdeas struct{}

func (emptyIdeas) ListByUser(context.Context, uint64, int) ([]model.Idea, error) { return nil, errors.New("down") }

type emptyRoadmaps struct{}

func (emptyRoadmaps) ListByUser(context.Context, uint64, int) ([]model.Roadmap, error) { return nil, nil }

type emptyMetrics struct{}

func (emptyMetrics) ListByUser(context.Context, uint64, int) ([]model.Metric, error) { return nil, nil }

func newInsights(c *fakeCompleter) *InsightService {
	country := "India"
	return &InsightService{
		Profiles:  profileOnly{p: model.Profile{Country: &country}},
		Ideas:     emptyIdeas{},
		Roadmaps:  emptyRoadmaps{},
		Metrics:   emptyMetrics{},
		Reviews:   &memReviews{},
		Completer: c,
		Log:       logger.Nop(),
		Now:       func() time.Time { return time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC) },
	}
}

func TestInsightsGenerate(t *testing.T) {
	c := &fakeCompleter{reply: "```json\n[{\"type\":\"compliance\",\"priority\":\"high\",\"title\":\"GST return\",\"description\":\"File GSTR-3B\",\"action\":\"Open the portal\"}]\n```"}
	got, err := newInsights(c).Generate(context.Background(), 1)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(got) != 1 || got[0].Title != "GST return" {
		t.Fatalf("insights = %+v", got)
	}
	if !strings.Contains(c.system, "USER'S COUNTRY: India") || !strings.Contains(c.system, "Monday, March 10, 2025") {
		t.Fatal("system prompt not personalised")
	}
	if !strings.Contains(c.user, `"ideas": []`) {
		t.Fatalf("failed source not rendered as empty list: %s", c.user)
	}
}

func TestInsightsUnparseableReply(t *testing.T) {
	got, err := newInsights(&fakeCompleter{reply: "I cannot help with that."}).Generate(context.Background(), 1)
	if err != nil || len(got) != 0 {
		t.Fatalf("Generate = %+v, %v", got, err)
	}
}

func TestInsightsGatewayError(t *testing.T) {
	_, err := newInsights(&fakeCompleter{err: &llm.UpstreamError{Status: 500}}).Generate(context.Background(), 1)
	var uerr *llm.UpstreamError
	if !errors.As(err, &uerr) {
		t.Fatalf("err = %v", err)
	}
}
