package assistant

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/myschoolct/portal-assistant/internal/config"
	"github.com/myschoolct/portal-assistant/internal/ctxutil"
	"github.com/myschoolct/portal-assistant/internal/genai"
	"github.com/myschoolct/portal-assistant/internal/portal"
	"github.com/myschoolct/portal-assistant/internal/sentry"
	"github.com/myschoolct/portal-assistant/internal/storage"
)

// Search types reported in ChatResponse.SearchType.
const (
	SearchTypeGreeting     = "greeting"
	SearchTypeDirectSearch = "direct_search"
	SearchTypeNoResults    = "no_results"
)

// DefaultLanguage needs no translation.
const DefaultLanguage = "en"

// CannedGreeting is sent when no responder is configured or it fails.
const CannedGreeting = "Hello! I'm your MySchool Assistant. How can I help you find educational resources today?"

// greetingHistoryLimit is how many stored turns feed the responder when the
// request carries none.
const greetingHistoryLimit = 10

// GreetingSuggestions are offered with every greeting.
var GreetingSuggestions = []string{"Search animals", "Class 5 Maths", "Age 8 resources"}

var greetingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(hi|hello|hey|hii+|helo|hai|hola)\b`),
	regexp.MustCompile(`^good\s*(morning|afternoon|evening)`),
	regexp.MustCompile(`^(what'?s?\s*up|howdy|greetings|namaste)`),
}

// IsGreeting reports whether message opens with a greeting.
func IsGreeting(message string) bool {
	m := strings.ToLower(strings.TrimSpace(message))
	for _, re := range greetingPatterns {
		if re.MatchString(m) {
			return true
		}
	}
	return false
}

// HistoryMessage is one prior turn sent by the client.
type HistoryMessage struct {
	Role    string `json:"role" binding:"omitempty,oneof=user assistant"`
	Content string `json:"content"`
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message   string           `json:"message" binding:"required"`
	SessionID string           `json:"sessionId" binding:"required"`
	Language  string           `json:"language,omitempty"`
	History   []HistoryMessage `json:"history,omitempty"`
}

// Thumbnail describes one portal result for the chat UI.
type Thumbnail struct {
	URL       string `json:"url"`
	Thumbnail string `json:"thumbnail"`
	Title     string `json:"title"`
	Category  string `json:"category"`
}

// ChatResponse is the reply to a ChatRequest.
type ChatResponse struct {
	Response            string      `json:"response"`
	ResourceURL         string      `json:"resourceUrl"`
	ResourceName        string      `json:"resourceName"`
	ResourceDescription string      `json:"resourceDescription"`
	Suggestions         []string    `json:"suggestions"`
	SearchType          string      `json:"searchType"`
	Thumbnails          []Thumbnail `json:"thumbnails"`
	// MatchedTerm is the candidate or fallback topic that produced the results.
	MatchedTerm string `json:"matchedTerm,omitempty"`
}

// Chat answers one message. It never fails: every collaborator error
// degrades to a fallback and is logged.
func (s *Service) Chat(ctx context.Context, req ChatRequest) ChatResponse {
	start := time.Now()
	if req.Language == "" {
		req.Language = DefaultLanguage
	}
	ctx = ctxutil.WithSessionID(ctx, req.SessionID)

	var resp ChatResponse
	if IsGreeting(req.Message) {
		resp = s.greet(ctx, req)
	} else {
		resp = s.searchChat(ctx, req)
	}

	channel := ctxutil.GetChannel(ctx)
	if channel == "" {
		channel = "web"
	}
	s.metrics.RecordChat(channel, resp.SearchType, time.Since(start).Seconds())
	return resp
}

func (s *Service) greet(ctx context.Context, req ChatRequest) ChatResponse {
	reply := CannedGreeting
	if s.responder != nil && s.limiter.Allow(req.SessionID) {
		llmCtx, cancel := context.WithTimeout(ctx, config.LLMRequest)
		out, err := s.responder.Respond(llmCtx, req.Message, s.history(llmCtx, req))
		cancel()
		if err != nil {
			s.logger.WithError(err).Warn("Greeting responder failed, using canned reply")
		} else {
			reply = out
		}
	}

	s.persist(ctx, req, reply, nil)

	return ChatResponse{
		Response:    reply,
		Suggestions: slices.Clone(GreetingSuggestions),
		SearchType:  SearchTypeGreeting,
		Thumbnails:  []Thumbnail{},
	}
}

// history prefers the client's transcript and falls back to stored turns.
func (s *Service) history(ctx context.Context, req ChatRequest) []genai.Message {
	if len(req.History) > 0 {
		out := make([]genai.Message, 0, len(req.History))
		for _, h := range req.History {
			role := genai.RoleUser
			if h.Role == storage.RoleAssistant {
				role = genai.RoleAssistant
			}
			out = append(out, genai.Message{Role: role, Content: h.Content})
		}
		return out
	}

	if s.store == nil {
		return nil
	}
	stored, err := s.store.GetChatHistory(ctx, req.SessionID, greetingHistoryLimit)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to load chat history")
		return nil
	}
	out := make([]genai.Message, 0, len(stored))
	for _, m := range stored {
		out = append(out, genai.Message{Role: genai.Role(m.Role), Content: m.Message})
	}
	return out
}

func (s *Service) searchChat(ctx context.Context, req ChatRequest) ChatResponse {
	query := s.translate(ctx, req)

	eq := s.enhancer.Enhance(query)
	if eq.Corrected != "" {
		query = eq.Corrected
	}

	resolution := s.resolver.Resolve(query)
	out := s.search(ctx, eq)

	s.logger.WithFields(map[string]any{
		"query":    query,
		"rule":     string(resolution.Rule),
		"term":     out.Term,
		"attempts": out.Attempts,
		"results":  len(out.Results),
	}).InfoContext(ctx, "Chat search completed")

	resp := buildSearchResponse(query, resolution.URL, out)
	s.persist(ctx, req, resp.Response, &storage.SearchLog{
		SessionID:       req.SessionID,
		Query:           req.Message,
		TranslatedQuery: differentOrEmpty(query, req.Message),
		Language:        req.Language,
		ResultsCount:    len(out.Results),
		TopResultURL:    resolution.URL,
		TopResultName:   topTitle(out.Results),
	})
	return resp
}

// translate returns the working query. Any failure keeps the original message.
func (s *Service) translate(ctx context.Context, req ChatRequest) string {
	if req.Language == DefaultLanguage || s.translator == nil {
		return req.Message
	}
	if !s.limiter.Allow(req.SessionID) {
		s.logger.WithField("language", req.Language).Info("Translation rate limited, searching original text")
		return req.Message
	}

	llmCtx, cancel := context.WithTimeout(ctx, config.LLMRequest)
	defer cancel()

	translated, err := s.translator.Translate(llmCtx, req.Message, req.Language)
	if err != nil || strings.TrimSpace(translated) == "" {
		s.logger.WithError(err).WithField("language", req.Language).Warn("Translation failed, searching original text")
		return req.Message
	}
	return strings.TrimSpace(translated)
}

func buildSearchResponse(query, resourceURL string, out portal.Outcome) ChatResponse {
	resp := ChatResponse{
		ResourceURL: resourceURL,
		Suggestions: []string{},
		Thumbnails:  make([]Thumbnail, 0, len(out.Results)),
	}

	n := len(out.Results)
	if n == 0 {
		resp.Response = fmt.Sprintf(`No results for "%s". Try browsing our resources!`, query)
		resp.SearchType = SearchTypeNoResults
		return resp
	}

	resp.Response = fmt.Sprintf(`Found %d results for "%s"`, n, query)
	resp.ResourceName = fmt.Sprintf("%d resources found", n)
	resp.SearchType = SearchTypeDirectSearch
	resp.MatchedTerm = out.Term

	titles := make([]string, 0, 3)
	for i, r := range out.Results {
		if i < 3 {
			titles = append(titles, r.Title)
		}
		resp.Thumbnails = append(resp.Thumbnails, Thumbnail{
			URL:       r.Path,
			Thumbnail: r.Thumbnail,
			Title:     r.Title,
			Category:  r.Category,
		})
	}
	resp.ResourceDescription = strings.Join(titles, "\n")
	return resp
}

// persist stores both sides of the exchange and, for searches, the analytics
// record. It runs detached from the request so a client disconnect does not
// lose the transcript. Failures are logged and swallowed.
func (s *Service) persist(ctx context.Context, req ChatRequest, reply string, entry *storage.SearchLog) {
	if s.store == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), config.PersistenceWrite)
	defer cancel()

	var g errgroup.Group
	g.Go(func() error {
		if err := s.store.SaveChatMessage(ctx, &storage.ChatMessage{
			SessionID: req.SessionID,
			Role:      storage.RoleUser,
			Message:   req.Message,
			Language:  req.Language,
		}); err != nil {
			s.persistFailed(ctx, "save_message", err)
			return nil
		}
		if err := s.store.SaveChatMessage(ctx, &storage.ChatMessage{
			SessionID: req.SessionID,
			Role:      storage.RoleAssistant,
			Message:   reply,
			Language:  DefaultLanguage,
		}); err != nil {
			s.persistFailed(ctx, "save_message", err)
		}
		return nil
	})
	if entry != nil {
		g.Go(func() error {
			if err := s.store.LogSearchQuery(ctx, entry); err != nil {
				s.persistFailed(ctx, "log_search", err)
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (s *Service) persistFailed(ctx context.Context, operation string, err error) {
	s.logger.WithError(err).WithField("operation", operation).ErrorContext(ctx, "Persistence failed")
	s.metrics.RecordPersistenceError(operation)
	sentry.CaptureError(ctx, err, map[string]string{"operation": operation})
}

func differentOrEmpty(query, message string) string {
	if query == message {
		return ""
	}
	return query
}

func topTitle(results []portal.Result) string {
	if len(results) == 0 {
		return ""
	}
	return results[0].Title
}
