package notifications

import (
	"fmt"

	"github.com/ripplehq/ripple/backend/internal/models"
)

// messageTemplates maps each notification kind to its default message,
// parameterized by the sender's display name.
var messageTemplates = map[string]string{
	models.KindLike:      "%s liked your post",
	models.KindUnlike:    "%s removed their like from your post",
	models.KindComment:   "%s commented on your post",
	models.KindUncomment: "%s removed their comment from your post",
	models.KindFollow:    "%s started following you",
	models.KindUnfollow:  "%s stopped following you",
	models.KindPost:      "%s published a new post",
	models.KindRetweet:   "%s retweeted your post",
	models.KindAnswer:    "%s answered your comment",
	models.KindBookmark:  "%s bookmarked your post",
	models.KindTest:      "%s sent a test notification",
}

// DefaultMessage returns the message for a kind and sender name, falling
// back to a generic template for unrecognized kinds.
func DefaultMessage(kind, senderName string) string {
	if tmpl, ok := messageTemplates[kind]; ok {
		return fmt.Sprintf(tmpl, senderName)
	}
	return fmt.Sprintf("%s sent you a notification", senderName)
}
