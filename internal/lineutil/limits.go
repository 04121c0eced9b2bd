package lineutil

// LINE Messaging API limits, counted in runes.
// https://developers.line.biz/en/reference/messaging-api/
const (
	MaxTextMessageLength = 5000
	MaxAltTextLength     = 400
	MaxMessagesPerReply  = 5

	MaxImageCarouselColumns = 10
	MaxImageCarouselLabel   = 12

	MaxQuickReplyItemCount = 13
	MaxQuickReplyLabel     = 20
)
