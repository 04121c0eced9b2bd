package webhook

import (
	"strings"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	"github.com/myschoolct/portal-assistant/internal/assistant"
	"github.com/myschoolct/portal-assistant/internal/lineutil"
)

// BuildReply renders a chat response as LINE messages: a text summary with
// the portal link, then an image carousel of the results when their
// thumbnails can be shown.
func BuildReply(resp assistant.ChatResponse) []messaging_api.MessageInterface {
	var b strings.Builder
	b.WriteString(resp.Response)
	if resp.ResourceDescription != "" {
		b.WriteString("\n\n")
		b.WriteString(resp.ResourceDescription)
	}
	if resp.ResourceURL != "" {
		b.WriteString("\n\n")
		b.WriteString(resp.ResourceURL)
	}

	text := lineutil.NewTextMessage(b.String())
	text.QuickReply = lineutil.NewQuickReply(resp.Suggestions)
	messages := []messaging_api.MessageInterface{text}

	columns := make([]lineutil.ImageColumn, 0, len(resp.Thumbnails))
	for _, t := range resp.Thumbnails {
		link := t.URL
		if !strings.HasPrefix(link, "https://") {
			link = resp.ResourceURL
		}
		columns = append(columns, lineutil.ImageColumn{
			ImageURL: t.Thumbnail,
			Label:    t.Title,
			LinkURL:  link,
		})
	}
	if carousel := lineutil.NewImageCarousel(resp.Response, columns); carousel != nil {
		messages = append(messages, carousel)
	}
	return messages
}

func welcomeMessages() []messaging_api.MessageInterface {
	msg := lineutil.NewTextMessage(assistant.CannedGreeting)
	msg.QuickReply = lineutil.NewQuickReply(assistant.GreetingSuggestions)
	return []messaging_api.MessageInterface{msg}
}
