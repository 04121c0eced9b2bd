package lineutil

import (
	"strings"
	"testing"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

func TestTruncateRunes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		max  int
		want string
	}{
		{"fits", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"cut", "hello world", 8, "hello..."},
		{"multibyte", "बंदर बंदर", 4, "ब..."},
		{"tiny limit", "hello", 2, "he"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := TruncateRunes(tt.text, tt.max); got != tt.want {
				t.Errorf("TruncateRunes(%q, %d) = %q, want %q", tt.text, tt.max, got, tt.want)
			}
		})
	}
}

func TestNewTextMessage_Truncates(t *testing.T) {
	t.Parallel()

	msg := NewTextMessage(strings.Repeat("a", MaxTextMessageLength+10))
	if n := len([]rune(msg.Text)); n != MaxTextMessageLength {
		t.Errorf("text length = %d, want %d", n, MaxTextMessageLength)
	}
}

func TestNewQuickReply(t *testing.T) {
	t.Parallel()

	if NewQuickReply(nil) != nil {
		t.Error("NewQuickReply(nil) should be nil")
	}

	qr := NewQuickReply([]string{"Search animals", "Class 5 Maths"})
	if len(qr.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(qr.Items))
	}
	action, ok := qr.Items[0].Action.(*messaging_api.MessageAction)
	if !ok {
		t.Fatalf("action type = %T, want *MessageAction", qr.Items[0].Action)
	}
	if action.Label != "Search animals" || action.Text != "Search animals" {
		t.Errorf("action = %+v", action)
	}

	many := make([]string, 20)
	for i := range many {
		many[i] = "x"
	}
	if got := len(NewQuickReply(many).Items); got != MaxQuickReplyItemCount {
		t.Errorf("items = %d, want %d", got, MaxQuickReplyItemCount)
	}
}

func TestNewImageCarousel(t *testing.T) {
	t.Parallel()

	if NewImageCarousel("alt", []ImageColumn{{ImageURL: "http://insecure/x.jpg", LinkURL: "https://p/x"}}) != nil {
		t.Error("carousel with only insecure images should be nil")
	}

	cols := make([]ImageColumn, 0, 12)
	for range 12 {
		cols = append(cols, ImageColumn{ImageURL: "https://cdn/x.jpg", Label: "Monkey and the Cap Seller", LinkURL: "https://portal/x"})
	}
	msg, ok := NewImageCarousel("Found 12 results", cols).(*messaging_api.TemplateMessage)
	if !ok {
		t.Fatal("expected *TemplateMessage")
	}
	tmpl, ok := msg.Template.(*messaging_api.ImageCarouselTemplate)
	if !ok {
		t.Fatalf("template type = %T", msg.Template)
	}
	if len(tmpl.Columns) != MaxImageCarouselColumns {
		t.Errorf("columns = %d, want %d", len(tmpl.Columns), MaxImageCarouselColumns)
	}
	uri, ok := tmpl.Columns[0].Action.(*messaging_api.UriAction)
	if !ok {
		t.Fatalf("action type = %T", tmpl.Columns[0].Action)
	}
	if len([]rune(uri.Label)) > MaxImageCarouselLabel {
		t.Errorf("label %q exceeds %d runes", uri.Label, MaxImageCarouselLabel)
	}
}
