// Package webhook answers LINE Messaging API events with the chat
// assistant. A LINE chat (user, group or room) is one chat session.
package webhook

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"

	"github.com/myschoolct/portal-assistant/internal/assistant"
	"github.com/myschoolct/portal-assistant/internal/config"
	"github.com/myschoolct/portal-assistant/internal/ctxutil"
	"github.com/myschoolct/portal-assistant/internal/lineutil"
	"github.com/myschoolct/portal-assistant/internal/logger"
	"github.com/myschoolct/portal-assistant/internal/metrics"
	"github.com/myschoolct/portal-assistant/internal/ratelimit"
)

// LINE platform constraints.
const (
	maxEventsPerWebhook = 100
	minReplyTokenLength = 10
	maxMessageRunes     = 1000
	// replyRateRPS stays under the reply API's per-channel limit.
	replyRateRPS = 100
)

// Channel is the ctxutil channel label for LINE traffic.
const Channel = "line"

// Chatter answers one chat message.
type Chatter interface {
	Chat(ctx context.Context, req assistant.ChatRequest) assistant.ChatResponse
}

// Config holds what NewHandler needs. ChatLimiter and Metrics may be nil.
type Config struct {
	ChannelSecret string
	ChannelToken  string
	Chat          Chatter
	// ChatLimiter bounds messages per LINE chat.
	ChatLimiter *ratelimit.KeyedLimiter
	// Language is sent with every chat request; LINE does not report one.
	Language string
	Logger   *logger.Logger
	Metrics  *metrics.Metrics
}

// Handler handles LINE webhook events.
type Handler struct {
	channelSecret string
	chat          Chatter
	chatLimiter   *ratelimit.KeyedLimiter
	replyLimiter  *ratelimit.Limiter
	language      string
	logger        *logger.Logger
	metrics       *metrics.Metrics
	wg            sync.WaitGroup

	// LINE API calls, swappable in tests
	reply       func(replyToken string, messages []messaging_api.MessageInterface) error
	showLoading func(chatID string) error
}

// NewHandler creates a webhook handler backed by the LINE Messaging API.
func NewHandler(cfg Config) (*Handler, error) {
	if cfg.ChannelSecret == "" || cfg.ChannelToken == "" {
		return nil, errors.New("LINE channel secret and token are required")
	}
	client, err := messaging_api.NewMessagingApiAPI(cfg.ChannelToken)
	if err != nil {
		return nil, fmt.Errorf("create messaging API client: %w", err)
	}

	log := cfg.Logger
	if log == nil {
		log = logger.Discard()
	}
	lang := cfg.Language
	if lang == "" {
		lang = assistant.DefaultLanguage
	}

	h := &Handler{
		channelSecret: cfg.ChannelSecret,
		chat:          cfg.Chat,
		chatLimiter:   cfg.ChatLimiter,
		replyLimiter:  ratelimit.New(replyRateRPS, replyRateRPS),
		language:      lang,
		logger:        log.WithModule("webhook"),
		metrics:       cfg.Metrics,
	}
	h.reply = func(replyToken string, messages []messaging_api.MessageInterface) error {
		_, err := client.ReplyMessage(&messaging_api.ReplyMessageRequest{
			ReplyToken: replyToken,
			Messages:   messages,
		})
		return err
	}
	h.showLoading = func(chatID string) error {
		// 5 to 60 seconds in steps of 5; 45 covers LineWebhookProcessing.
		_, err := client.ShowLoadingAnimation(&messaging_api.ShowLoadingAnimationRequest{
			ChatId:         chatID,
			LoadingSeconds: 45,
		})
		return err
	}
	return h, nil
}

// Handle is the gin handler for POST /webhook. It acknowledges LINE at once
// and processes the events in the background.
func (h *Handler) Handle(c *gin.Context) {
	cb, err := webhook.ParseRequest(h.channelSecret, c.Request)
	if err != nil {
		if errors.Is(err, webhook.ErrInvalidSignature) {
			h.logger.Warn("Invalid webhook signature")
			h.metrics.RecordHTTPError("invalid_signature", "webhook")
		} else {
			h.logger.WithError(err).Warn("Failed to parse webhook request")
			h.metrics.RecordHTTPError("bad_request", "webhook")
		}
		c.Status(http.StatusBadRequest)
		return
	}

	c.Status(http.StatusOK)

	events := cb.Events
	if len(events) > maxEventsPerWebhook {
		h.logger.WithField("event_count", len(events)).Warn("Too many events in webhook batch; truncating")
		events = events[:maxEventsPerWebhook]
	}
	events = append([]webhook.EventInterface(nil), events...)
	base := ctxutil.PreserveTracing(c.Request.Context())

	h.wg.Go(func() {
		defer func() {
			if r := recover(); r != nil {
				h.logger.WithField("panic", r).Error("Panic in async event processing")
			}
		}()
		for _, event := range events {
			h.processEvent(base, event)
		}
	})
}

func (h *Handler) processEvent(ctx context.Context, event webhook.EventInterface) {
	start := time.Now()

	var (
		eventType  string
		replyToken string
		source     webhook.SourceInterface
		messages   []messaging_api.MessageInterface
	)

	switch e := event.(type) {
	case webhook.MessageEvent:
		eventType, replyToken, source = "message", e.ReplyToken, e.Source
		if e.WebhookEventId != "" {
			ctx = ctxutil.WithRequestID(ctx, e.WebhookEventId)
		}
		text, ok := h.messageText(e)
		if !ok {
			h.metrics.RecordWebhook(eventType, "ignored", time.Since(start).Seconds())
			return
		}
		chatID := chatID(source)
		if !h.chatLimiter.Allow(chatID) {
			h.logger.WithField("chat_id", chatID).Info("Chat rate limited; dropping message")
			h.metrics.RecordWebhook(eventType, "rate_limited", time.Since(start).Seconds())
			return
		}
		if err := h.showLoading(chatID); err != nil {
			h.logger.WithError(err).Debug("Failed to show loading animation")
		}
		messages = h.answer(ctx, chatID, text)
	case webhook.FollowEvent:
		eventType, replyToken, source = "follow", e.ReplyToken, e.Source
		messages = welcomeMessages()
	case webhook.JoinEvent:
		eventType, replyToken, source = "join", e.ReplyToken, e.Source
		messages = welcomeMessages()
	default:
		h.logger.WithField("event_type", fmt.Sprintf("%T", e)).Debug("Unsupported event type")
		return
	}

	log := h.logger.WithField("event_type", eventType)
	if requestID, ok := ctxutil.GetRequestID(ctx); ok {
		log = log.WithRequestID(requestID)
	}

	status := "success"
	if err := h.send(ctx, replyToken, messages); err != nil {
		status = "reply_error"
		if strings.Contains(err.Error(), "Invalid reply token") {
			log.WithError(err).Debug("Reply token already used or expired")
		} else {
			log.WithError(err).Error("Failed to send reply")
			h.metrics.RecordHTTPError("reply_failed", "webhook")
		}
	}
	h.metrics.RecordWebhook(eventType, status, time.Since(start).Seconds())
	log.WithField("duration_ms", time.Since(start).Milliseconds()).Info("Event processed")
}

// messageText returns the text to answer. Non-text messages and group
// messages that do not mention the bot are ignored.
func (h *Handler) messageText(e webhook.MessageEvent) (string, bool) {
	msg, ok := e.Message.(webhook.TextMessageContent)
	if !ok {
		return "", false
	}

	text := msg.Text
	if _, personal := e.Source.(webhook.UserSource); !personal {
		if !isBotMentioned(msg) {
			return "", false
		}
		text = removeBotMentions(text, msg.Mention)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}
	return lineutil.TruncateRunes(text, maxMessageRunes), true
}

func (h *Handler) answer(ctx context.Context, chatID, text string) []messaging_api.MessageInterface {
	ctx, cancel := context.WithTimeout(ctxutil.WithChannel(ctx, Channel), config.LineWebhookProcessing)
	defer cancel()

	resp := h.chat.Chat(ctx, assistant.ChatRequest{
		Message:   text,
		SessionID: chatID,
		Language:  h.language,
	})
	return BuildReply(resp)
}

func (h *Handler) send(ctx context.Context, replyToken string, messages []messaging_api.MessageInterface) error {
	if len(messages) == 0 {
		return nil
	}
	if len(replyToken) < minReplyTokenLength {
		h.logger.WithField("token_length", len(replyToken)).Debug("Invalid reply token; skipping reply")
		return nil
	}
	if len(messages) > lineutil.MaxMessagesPerReply {
		messages = messages[:lineutil.MaxMessagesPerReply]
	}

	if !h.replyLimiter.Allow() {
		h.metrics.RecordRateLimiterDrop("line_reply")
		if err := h.replyLimiter.Wait(ctx); err != nil {
			return err
		}
	}
	return h.reply(replyToken, messages)
}

// Shutdown waits for in-flight events or until ctx is done.
func (h *Handler) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.wg.Wait()
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// chatID is the user, group or room ID of a source.
func chatID(source webhook.SourceInterface) string {
	switch s := source.(type) {
	case webhook.UserSource:
		return s.UserId
	case webhook.GroupSource:
		return s.GroupId
	case webhook.RoomSource:
		return s.RoomId
	}
	return ""
}
