package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/founder-copilot/internal/llm"
	"github.com/iliyamo/founder-copilot/internal/logger"
	"github.com/iliyamo/founder-copilot/internal/service"
)

const relayChunk = 4096

// ChatHandler serves the co-founder chat: the raw relay, the persisted
// conversation and its history.
type ChatHandler struct {
	Gateway service.StreamOpener
	Chat    *service.ChatService
	Log     *logger.Logger
}

func NewChatHandler(gw service.StreamOpener, chat *service.ChatService, log *logger.Logger) *ChatHandler {
	return &ChatHandler{Gateway: gw, Chat: chat, Log: log}
}

type relayReq struct {
	Messages            []llm.Message `json:"messages"`
	UserContext         string        `json:"userContext"`
	ConversationContext string        `json:"conversationContext"`
	ContextType         string        `json:"contextType"`
	UserCountry         string        `json:"userCountry"`
	CurrentDate         string        `json:"currentDate"`
}

type sendReq struct {
	Content     string `json:"content"`
	ContextType string `json:"contextType"`
	ContextID   string `json:"contextId"`
	UserCountry string `json:"userCountry"`
	CurrentDate string `json:"currentDate"`
}

func contextTypeOrDefault(t string) (string, bool) {
	t = strings.TrimSpace(t)
	if t == "" {
		return llm.ContextGeneral, true
	}
	return t, llm.ValidContextType(t)
}

func startEventStream(c echo.Context) {
	h := c.Response().Header()
	h.Set(echo.HeaderContentType, "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	c.Response().WriteHeader(http.StatusOK)
}

// Relay proxies the upstream completion stream byte for byte.
func (h *ChatHandler) Relay(c echo.Context) error {
	var req relayReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if len(req.Messages) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "messages required"})
	}
	ct, ok := contextTypeOrDefault(req.ContextType)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid contextType"})
	}

	body, err := h.Gateway.OpenStream(c.Request().Context(), llm.ChatRequest{
		Messages:            req.Messages,
		UserContext:         req.UserContext,
		ConversationContext: req.ConversationContext,
		ContextType:         ct,
		UserCountry:         req.UserCountry,
		CurrentDate:         req.CurrentDate,
	})
	if err != nil {
		status, msg := llm.StatusFor(err)
		return c.JSON(status, echo.Map{"error": msg})
	}
	defer body.Close()

	startEventStream(c)
	buf := make([]byte, relayChunk)
	for {
		n, rerr := body.Read(buf)
		if n > 0 {
			if _, werr := c.Response().Write(buf[:n]); werr != nil {
				return nil // client went away
			}
			c.Response().Flush()
		}
		if rerr != nil {
			if !errors.Is(rerr, io.EOF) {
				h.Log.Warn("chat relay: upstream read failed", "error", rerr)
			}
			return nil
		}
	}
}

// Send stores the founder's message, streams the reply back and stores the
// reply once the stream completes.
func (h *ChatHandler) Send(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req sendReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "content required"})
	}
	ct, ok := contextTypeOrDefault(req.ContextType)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid contextType"})
	}

	reply, err := h.Chat.Start(c.Request().Context(), uid, service.SendInput{
		Content:     req.Content,
		ContextType: ct,
		ContextID:   strings.TrimSpace(req.ContextID),
		Country:     req.UserCountry,
		CurrentDate: req.CurrentDate,
	})
	if err != nil {
		var uerr *llm.UpstreamError
		if errors.Is(err, llm.ErrNotConfigured) || errors.As(err, &uerr) {
			status, msg := llm.StatusFor(err)
			return c.JSON(status, echo.Map{"error": msg})
		}
		h.Log.Error("chat send failed", "user_id", uid, "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to send message"})
	}

	startEventStream(c)
	// headers are out; failures from here on can only be logged
	if _, err := h.Chat.Relay(c.Request().Context(), reply, c.Response()); err != nil {
		h.Log.Debug("chat send ended early", "user_id", uid, "error", err)
	}
	return nil
}

// History lists the conversation for a context, oldest first.
func (h *ChatHandler) History(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	ct, ok := contextTypeOrDefault(c.QueryParam("context_type"))
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid context_type"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	msgs, err := h.Chat.History(ctx, uid, ct, strings.TrimSpace(c.QueryParam("context_id")))
	if err != nil {
		return storeError(c, err, "failed to load messages")
	}
	return c.JSON(http.StatusOK, echo.Map{"messages": msgs})
}
