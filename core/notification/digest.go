package notification

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-notify/core"
)

var ErrNoEmail = errors.New("parent has no email address")

// DigestData is what the feed_digest email templates render.
type DigestData struct {
	RecipientName string
	GeneratedAt   string
	Items         []Notification
	Total         int
}

// NewDigestMessage returns the email summarising feed for its recipient.
func NewDigestMessage(to mail.Address, feed Feed) *core.EmailMessage {
	return &core.EmailMessage{
		To:           []mail.Address{to},
		Subject:      "What's new at school",
		TemplateName: "feed_digest",
		TemplateData: DigestData{
			RecipientName: to.Name,
			GeneratedAt:   feed.GeneratedAt.Format("Mon 2 Jan 2006, 15:04"),
			Items:         feed.Items,
			Total:         feed.Summary.Total,
		},
	}
}

// ParentDigest builds the parent's feed at now and the email delivering it.
func (svc *Service) ParentDigest(ctx context.Context, parentID string, now time.Time, opts Options) (*core.EmailMessage, Feed, error) {
	parent, err := svc.directory.Parent(ctx, parentID)
	if err != nil {
		return nil, Feed{}, errors.Wrap(err, "getting parent")
	}
	if parent.Email == "" {
		return nil, Feed{}, ErrNoEmail
	}

	feed, err := svc.BuildParentFeed(ctx, parentID, now, opts)
	if err != nil {
		return nil, Feed{}, err
	}
	to := mail.Address{Name: core.Clip(parent.DisplayName, maxNameLen), Address: parent.Email}
	return NewDigestMessage(to, feed), feed, nil
}
