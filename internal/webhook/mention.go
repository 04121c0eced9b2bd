package webhook

import (
	"slices"
	"strings"

	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"
)

// isBotMentioned reports whether any mentionee of the message is the bot.
func isBotMentioned(msg webhook.TextMessageContent) bool {
	return len(selfMentions(msg.Mention)) > 0
}

// mentionSpan is a mention's position in runes, as LINE reports it.
type mentionSpan struct {
	index  int
	length int
}

func selfMentions(mention *webhook.Mention) []mentionSpan {
	if mention == nil {
		return nil
	}
	var spans []mentionSpan
	for _, m := range mention.Mentionees {
		if u, ok := m.(webhook.UserMentionee); ok && u.IsSelf {
			spans = append(spans, mentionSpan{index: int(u.Index), length: int(u.Length)})
		}
	}
	return spans
}

// removeBotMentions cuts every bot mention out of text and collapses the
// remaining whitespace. Other users' mentions are kept.
func removeBotMentions(text string, mention *webhook.Mention) string {
	spans := selfMentions(mention)
	if len(spans) == 0 {
		return text
	}

	// back to front so earlier indexes stay valid
	slices.SortFunc(spans, func(a, b mentionSpan) int { return b.index - a.index })

	runes := []rune(text)
	for _, s := range spans {
		start := max(s.index, 0)
		end := min(s.index+s.length, len(runes))
		if start >= end {
			continue
		}
		runes = append(runes[:start], runes[end:]...)
	}

	return strings.Join(strings.Fields(string(runes)), " ")
}
