// Package lineutil builds LINE Messaging API messages within the API's
// size limits.
package lineutil

import (
	"strings"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

// ImageColumn is one tile of an image carousel.
type ImageColumn struct {
	ImageURL string
	Label    string
	LinkURL  string
}

// NewTextMessage creates a text message, truncated to the API limit.
func NewTextMessage(text string) *messaging_api.TextMessage {
	return &messaging_api.TextMessage{
		Text: TruncateRunes(text, MaxTextMessageLength),
	}
}

// NewMessageAction creates an action that sends text back as the user.
func NewMessageAction(label, text string) messaging_api.ActionInterface {
	return &messaging_api.MessageAction{
		Label: TruncateRunes(label, MaxQuickReplyLabel),
		Text:  text,
	}
}

// NewURIAction creates an action that opens uri.
func NewURIAction(label, uri string) messaging_api.ActionInterface {
	return &messaging_api.UriAction{
		Label: TruncateRunes(label, MaxImageCarouselLabel),
		Uri:   uri,
	}
}

// NewQuickReply turns texts into quick reply buttons that send themselves.
// Returns nil for no texts.
func NewQuickReply(texts []string) *messaging_api.QuickReply {
	if len(texts) == 0 {
		return nil
	}
	if len(texts) > MaxQuickReplyItemCount {
		texts = texts[:MaxQuickReplyItemCount]
	}

	items := make([]messaging_api.QuickReplyItem, 0, len(texts))
	for _, t := range texts {
		items = append(items, messaging_api.QuickReplyItem{Action: NewMessageAction(t, t)})
	}
	return &messaging_api.QuickReply{Items: items}
}

// NewImageCarousel creates an image carousel template. Columns whose image
// is not served over HTTPS are skipped, since LINE rejects them. Returns nil
// when no column is usable.
func NewImageCarousel(altText string, columns []ImageColumn) messaging_api.MessageInterface {
	cols := make([]messaging_api.ImageCarouselColumn, 0, min(len(columns), MaxImageCarouselColumns))
	for _, c := range columns {
		if len(cols) == MaxImageCarouselColumns {
			break
		}
		if !strings.HasPrefix(c.ImageURL, "https://") || !strings.HasPrefix(c.LinkURL, "https://") {
			continue
		}
		cols = append(cols, messaging_api.ImageCarouselColumn{
			ImageUrl: c.ImageURL,
			Action:   NewURIAction(c.Label, c.LinkURL),
		})
	}
	if len(cols) == 0 {
		return nil
	}

	return &messaging_api.TemplateMessage{
		AltText:  TruncateRunes(altText, MaxAltTextLength),
		Template: &messaging_api.ImageCarouselTemplate{Columns: cols},
	}
}

// TruncateRunes shortens text to at most maxRunes runes, ending in "..."
// when anything was cut.
func TruncateRunes(text string, maxRunes int) string {
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}
	if maxRunes <= 3 {
		return string(runes[:maxRunes])
	}
	return string(runes[:maxRunes-3]) + "..."
}
