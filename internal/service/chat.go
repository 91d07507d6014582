package service

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/iliyamo/founder-copilot/internal/chatcontext"
	"github.com/iliyamo/founder-copilot/internal/llm"
	"github.com/iliyamo/founder-copilot/internal/logger"
	"github.com/iliyamo/founder-copilot/internal/model"
	"github.com/iliyamo/founder-copilot/internal/stream"
)

// HistoryLimit caps the messages loaded for display and sent upstream.
const HistoryLimit = 50

const relayBufferSize = 4096

// ChatStore is the chat history the chat service reads and appends to.
type ChatStore interface {
	Create(ctx context.Context, m model.ChatMessage) (uint64, error)
	History(ctx context.Context, userID uint64, contextType, contextID string, limit int) ([]model.ChatMessage, error)
}

// ContextAssembler produces the prompt context for a founder.
type ContextAssembler interface {
	Assemble(ctx context.Context, userID uint64) chatcontext.Bundle
}

// Sink receives relayed bytes.  Flush pushes them to the client.
type Sink interface {
	Write(p []byte) (int, error)
	Flush()
}

// ChatService persists chat turns and relays co-founder replies.
type ChatService struct {
	Messages  ChatStore
	Assembler ContextAssembler
	Gateway   StreamOpener
	Log       *logger.Logger
}

// SendInput is one founder message.
type SendInput struct {
	Content     string
	ContextType string
	ContextID   string
	Country     string
	CurrentDate string
}

// Reply is an open upstream stream waiting to be relayed.  Relay closes it.
type Reply struct {
	userID      uint64
	contextType *string
	contextID   *string
	body        io.ReadCloser
	turn        *stream.Turn
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// History returns the latest messages of a conversation, oldest first.
func (s *ChatService) History(ctx context.Context, userID uint64, contextType, contextID string) ([]model.ChatMessage, error) {
	return s.Messages.History(ctx, userID, contextType, contextID, HistoryLimit)
}

// Start stores the founder's message and opens the upstream stream.  The
// message is kept even when the gateway then fails, the same as a message
// the founder typed into a chat that did not answer.
func (s *ChatService) Start(ctx context.Context, userID uint64, in SendInput) (*Reply, error) {
	if in.ContextType == "" {
		in.ContextType = llm.ContextGeneral
	}
	ct, cid := optional(in.ContextType), optional(in.ContextID)
	if _, err := s.Messages.Create(ctx, model.ChatMessage{
		UserID:      userID,
		Role:        model.RoleUser,
		Content:     in.Content,
		ContextType: ct,
		ContextID:   cid,
		CreatedAt:   time.Now().UTC(),
	}); err != nil {
		return nil, err
	}

	history, err := s.Messages.History(ctx, userID, in.ContextType, in.ContextID, HistoryLimit)
	if err != nil {
		return nil, err
	}
	msgs := make([]llm.Message, 0, len(history))
	turnMsgs := make([]stream.Message, 0, len(history))
	for _, m := range history {
		msgs = append(msgs, llm.Message{Role: m.Role, Content: m.Content})
		turnMsgs = append(turnMsgs, stream.Message{Role: m.Role, Content: m.Content})
	}

	bundle := s.Assembler.Assemble(ctx, userID)
	body, err := s.Gateway.OpenStream(ctx, llm.ChatRequest{
		Messages:            msgs,
		UserContext:         bundle.UserContext,
		ConversationContext: bundle.ConversationContext,
		ContextType:         in.ContextType,
		UserCountry:         in.Country,
		CurrentDate:         in.CurrentDate,
	})
	if err != nil {
		return nil, err
	}
	return &Reply{
		userID:      userID,
		contextType: ct,
		contextID:   cid,
		body:        body,
		turn:        stream.NewTurn(turnMsgs),
	}, nil
}

// Relay copies the upstream bytes to sink unmodified while reassembling the
// assistant text.  When the stream ends normally the text (if any) is stored
// as an assistant message.  A sink write error means the client went away:
// relaying stops and nothing is stored.
func (s *ChatService) Relay(ctx context.Context, r *Reply, sink Sink) (string, error) {
	defer r.body.Close()

	var re stream.Reassembler
	buf := make([]byte, relayBufferSize)
	for {
		n, rerr := r.body.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			if _, werr := sink.Write(chunk); werr != nil {
				s.Log.Debug("chat relay: client disconnected", "user_id", r.userID, "error", werr)
				return r.turn.Freeze(), werr
			}
			sink.Flush()
			for _, d := range re.Feed(chunk) {
				_ = r.turn.ApplyDelta(d)
			}
		}
		if rerr != nil {
			if !errors.Is(rerr, io.EOF) {
				s.Log.Warn("chat relay: upstream read failed", "user_id", r.userID, "error", rerr)
				return r.turn.Freeze(), rerr
			}
			for _, d := range re.Finish() {
				_ = r.turn.ApplyDelta(d)
			}
			break
		}
	}

	text := r.turn.Freeze()
	if text == "" {
		return "", nil
	}
	if _, err := s.Messages.Create(ctx, model.ChatMessage{
		UserID:      r.userID,
		Role:        model.RoleAssistant,
		Content:     text,
		ContextType: r.contextType,
		ContextID:   r.contextID,
		CreatedAt:   time.Now().UTC(),
	}); err != nil {
		s.Log.Error("chat relay: store assistant message failed", "user_id", r.userID, "error", err)
		return text, err
	}
	return text, nil
}
