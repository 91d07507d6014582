package model

import "time"

// Chat roles.
const (
    RoleUser      = "user"
    RoleAssistant = "assistant"
)

// ChatMessage is an append-only history entry.  Content never changes after
// insert; corrections are new messages.
type ChatMessage struct {
    ID          uint64    `json:"id"`
    UserID      uint64    `json:"user_id"`
    Role        string    `json:"role"`
    Content     string    `json:"content"`
    ContextType *string   `json:"context_type,omitempty"`
    ContextID   *string   `json:"context_id,omitempty"`
    CreatedAt   time.Time `json:"created_at"`
}
