package llm

import (
    "strings"
    "testing"
    "time"

    "github.com/iliyamo/founder-copilot/internal/model"
)

func TestBuildSystemPromptPlaceholders(t *testing.T) {
    p := BuildSystemPrompt(ContextGeneral, "", "  ", "", "")
    if !strings.Contains(p, defaultUserContext) || !strings.Contains(p, defaultConversationContext) {
        t.Fatal("empty contexts not replaced by placeholders")
    }
    if strings.Contains(p, "{userContext}") || strings.Contains(p, "{complianceTable}") {
        t.Fatal("unfilled placeholder left in prompt")
    }
    if strings.Contains(p, "USER'S COUNTRY") {
        t.Fatal("country block added without country or date")
    }
}

func TestBuildSystemPromptDoesNotReexpand(t *testing.T) {
    p := BuildSystemPrompt(ContextGeneral, "I wrote {conversationContext} here", "prior talk", "", "")
    if !strings.Contains(p, "I wrote {conversationContext} here") {
        t.Fatal("user text was rewritten")
    }
}

func TestBuildSystemPromptCountryBlock(t *testing.T) {
    p := BuildSystemPrompt(ContextGeneral, "u", "c", "", "2025-01-05")
    if !strings.HasSuffix(p, "USER'S COUNTRY: Not specified\nCURRENT DATE: 2025-01-05") {
        t.Fatalf("unexpected tail: %q", p[len(p)-80:])
    }

    before := time.Now().UTC().Format("2006-01-02")
    p = BuildSystemPrompt(ContextGeneral, "u", "c", "Germany", "")
    after := time.Now().UTC().Format("2006-01-02")
    if !strings.Contains(p, "USER'S COUNTRY: Germany\nCURRENT DATE: ") {
        t.Fatal("country block missing")
    }
    if !strings.HasSuffix(p, before) && !strings.HasSuffix(p, after) {
        t.Fatal("missing date not defaulted to today")
    }
}

func TestBuildSystemPromptContextInstruction(t *testing.T) {
    p := BuildSystemPrompt(ContextIdeaValidation, "u", "c", "", "")
    if !strings.HasSuffix(p, `"VALIDATION_SCORE: [number]" where number is 0-100, followed by a brief justification for the score.`) {
        t.Fatal("idea validation instruction missing")
    }
    general := BuildSystemPrompt(ContextGeneral, "u", "c", "", "")
    if !strings.HasSuffix(general, "PREVIOUS CONVERSATIONS AND DECISIONS:\nc") {
        t.Fatal("general prompt should end with the conversation context")
    }
}

func TestValidContextType(t *testing.T) {
    for _, ct := range []string{"general", "idea_validation", "mvp_planning", "decision", "metrics", "review", "compliance"} {
        if !ValidContextType(ct) {
            t.Errorf("%s rejected", ct)
        }
    }
    for _, ct := range []string{"", "General", "pitch"} {
        if ValidContextType(ct) {
            t.Errorf("%q accepted", ct)
        }
    }
}

func TestRequirementsFor(t *testing.T) {
    india := RequirementsFor("india")
    if len(india) == 0 {
        t.Fatal("no rows for India")
    }
    for _, r := range india {
        if r.Country != "India" {
            t.Fatalf("unexpected row %+v", r)
        }
    }
    byISO := RequirementsFor("IN")
    if len(byISO) != len(india) {
        t.Fatalf("ISO lookup returned %d rows, want %d", len(byISO), len(india))
    }

    for _, country := range []string{"Atlantis", ""} {
        rows := RequirementsFor(country)
        if len(rows) == 0 {
            t.Fatalf("%q: no fallback rows", country)
        }
        for _, r := range rows {
            if r.ISOCode != FallbackISO {
                t.Fatalf("%q: non-fallback row %+v", country, r)
            }
        }
    }
}

func TestComplianceTable(t *testing.T) {
    out := ComplianceTable([]Requirement{{ISOCode: "US", Country: "United States", Requirement: "Payroll", Frequency: "Quarterly", Authority: "IRS", Risk: "High"}})
    lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
    if len(lines) != 3 {
        t.Fatalf("got %d lines", len(lines))
    }
    if lines[2] != "| US | United States | Payroll | Quarterly | IRS | High |" {
        t.Fatalf("row = %q", lines[2])
    }
}

func TestInsightsSystemPrompt(t *testing.T) {
    p := InsightsSystemPrompt(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), "")
    if !strings.Contains(p, "CURRENT DATE: Monday, March 10, 2025") {
        t.Fatal("date not rendered")
    }
    if !strings.Contains(p, "USER'S COUNTRY: United States") {
        t.Fatal("country default missing")
    }
}

func TestRoadmapPromptScore(t *testing.T) {
    idea := model.Idea{Title: "Invoices"}
    if !strings.Contains(RoadmapPrompt(idea), "Validation Score: Not yet validated") {
        t.Fatal("missing score placeholder")
    }
    score := 81
    idea.ValidationScore = &score
    p := RoadmapPrompt(idea)
    if !strings.Contains(p, "Validation Score: 81") || !strings.Contains(p, "Problem: Not specified") {
        t.Fatal("prompt fields not rendered")
    }
}

func TestWeeklyReviewPromptNoDiscussions(t *testing.T) {
    start := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
    end := time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC)
    p := WeeklyReviewPrompt(start, end, "[]", "[]", nil)
    if !strings.Contains(p, "week of Mar 2 - Mar 8, 2025") {
        t.Fatal("week range not rendered")
    }
    if !strings.Contains(p, "Recent discussions: None") {
        t.Fatal("empty discussions not rendered as None")
    }
}
