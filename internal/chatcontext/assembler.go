// Package chatcontext builds the bounded snapshot of a founder's data that is
// injected into the co-founder system prompt.
package chatcontext

import (
    "context"
    "encoding/json"
    "strings"
    "time"

    "github.com/iliyamo/founder-copilot/internal/logger"
    "github.com/iliyamo/founder-copilot/internal/model"
)

// Hard caps on what goes into a prompt.
const (
    MaxIdeas     = 5
    MaxDecisions = 5
    MaxMetrics   = 10
    MaxMessages  = 20
)

type ProfileSource interface {
    GetByUserID(ctx context.Context, userID uint64) (model.Profile, error)
}

type IdeaSource interface {
    ListByUser(ctx context.Context, userID uint64, limit int) ([]model.Idea, error)
}

type DecisionSource interface {
    ListByUser(ctx context.Context, userID uint64, limit int) ([]model.Decision, error)
}

type MetricSource interface {
    ListByUser(ctx context.Context, userID uint64, limit int) ([]model.Metric, error)
}

// MessageSource returns the newest messages first.
type MessageSource interface {
    ListRecent(ctx context.Context, userID uint64, limit int) ([]model.ChatMessage, error)
}

// Bundle is the pair of strings substituted into the system prompt.
type Bundle struct {
    UserContext         string
    ConversationContext string
}

type ideaSummary struct {
    Title           string `json:"title"`
    Status          string `json:"status"`
    ValidationScore *int   `json:"validation_score"`
}

type decisionSummary struct {
    Title           string  `json:"title"`
    ChosenOption    string  `json:"chosen_option"`
    ConfidenceLevel *string `json:"confidence_level"`
}

type metricSummary struct {
    MetricType string    `json:"metric_type"`
    Value      string    `json:"value"`
    RecordedAt time.Time `json:"recorded_at"`
}

type userContext struct {
    Profile         any               `json:"profile"`
    RecentIdeas     []ideaSummary     `json:"recentIdeas"`
    RecentDecisions []decisionSummary `json:"recentDecisions"`
    RecentMetrics   []metricSummary   `json:"recentMetrics"`
}

// Assembler reads from the repositories.  Every source is optional.
type Assembler struct {
    Profiles  ProfileSource
    Ideas     IdeaSource
    Decisions DecisionSource
    Metrics   MetricSource
    Messages  MessageSource
    Log       *logger.Logger
}

// Assemble never fails: a source that errors contributes its empty default.
func (a *Assembler) Assemble(ctx context.Context, userID uint64) Bundle {
    return Bundle{
        UserContext:         a.userContext(ctx, userID),
        ConversationContext: a.conversationContext(ctx, userID),
    }
}

func (a *Assembler) warn(what string, userID uint64, err error) {
    if a.Log != nil {
        a.Log.Warn("context source failed, using empty default", "source", what, "user_id", userID, "error", err)
    }
}

func (a *Assembler) userContext(ctx context.Context, userID uint64) string {
    uc := userContext{
        Profile:         struct{}{},
        RecentIdeas:     []ideaSummary{},
        RecentDecisions: []decisionSummary{},
        RecentMetrics:   []metricSummary{},
    }

    if a.Profiles != nil {
        if p, err := a.Profiles.GetByUserID(ctx, userID); err == nil {
            uc.Profile = p
        } else {
            a.warn("profile", userID, err)
        }
    }
    if a.Ideas != nil {
        ideas, err := a.Ideas.ListByUser(ctx, userID, MaxIdeas)
        if err != nil {
            a.warn("ideas", userID, err)
        }
        for i, it := range ideas {
            if i == MaxIdeas {
                break
            }
            uc.RecentIdeas = append(uc.RecentIdeas, ideaSummary{Title: it.Title, Status: it.Status, ValidationScore: it.ValidationScore})
        }
    }
    if a.Decisions != nil {
        decisions, err := a.Decisions.ListByUser(ctx, userID, MaxDecisions)
        if err != nil {
            a.warn("decisions", userID, err)
        }
        for i, d := range decisions {
            if i == MaxDecisions {
                break
            }
            uc.RecentDecisions = append(uc.RecentDecisions, decisionSummary{Title: d.Title, ChosenOption: d.ChosenOption, ConfidenceLevel: d.ConfidenceLevel})
        }
    }
    if a.Metrics != nil {
        metrics, err := a.Metrics.ListByUser(ctx, userID, MaxMetrics)
        if err != nil {
            a.warn("metrics", userID, err)
        }
        for i, m := range metrics {
            if i == MaxMetrics {
                break
            }
            uc.RecentMetrics = append(uc.RecentMetrics, metricSummary{MetricType: m.MetricType, Value: m.Value, RecordedAt: m.RecordedAt})
        }
    }

    b, err := json.Marshal(uc)
    if err != nil {
        a.warn("encode", userID, err)
        return ""
    }
    return string(b)
}

func (a *Assembler) conversationContext(ctx context.Context, userID uint64) string {
    if a.Messages == nil {
        return ""
    }
    msgs, err := a.Messages.ListRecent(ctx, userID, MaxMessages)
    if err != nil {
        a.warn("messages", userID, err)
        return ""
    }
    if len(msgs) > MaxMessages {
        msgs = msgs[:MaxMessages]
    }
    lines := make([]string, len(msgs))
    // newest first in, oldest first out
    for i, m := range msgs {
        lines[len(msgs)-1-i] = m.Role + ": " + m.Content
    }
    return strings.Join(lines, "\n")
}
