package notifier

import (
	"context"
	"fmt"
	"time"

	"trendscribe/internal/domain/entity"
)

// SlackConfig contains configuration for Slack webhook notifications.
type SlackConfig struct {
	Enabled bool

	// WebhookURL is the Slack Incoming Webhook URL (includes authentication token)
	WebhookURL string

	// Timeout is the HTTP request timeout for Slack API calls
	Timeout time.Duration

	// PublicBaseURL, when set, links the title to the post on the read API.
	PublicBaseURL string
}

// SlackNotifier sends post notifications to Slack via Incoming Webhook.
type SlackNotifier struct {
	config  SlackConfig
	webhook *webhook
}

// NewSlackNotifier creates a new SlackNotifier.
//
// Requests are throttled at 1 request/second with a burst of 1
// (Slack webhook limit: 1 message per second).
func NewSlackNotifier(config SlackConfig) *SlackNotifier {
	return &SlackNotifier{
		config:  config,
		webhook: newWebhook("slack", config.WebhookURL, config.Timeout, NewRateLimiter(1.0, 1)),
	}
}

// SlackWebhookPayload represents the JSON payload sent to Slack webhook using Block Kit.
type SlackWebhookPayload struct {
	Text   string       `json:"text"`   // Fallback text (required)
	Blocks []SlackBlock `json:"blocks"` // Rich formatting blocks
}

// SlackBlock represents a Slack Block Kit block.
type SlackBlock struct {
	Type     string            `json:"type"`               // "section", "context"
	Text     *SlackTextObject  `json:"text,omitempty"`     // for section
	Elements []SlackTextObject `json:"elements,omitempty"` // for context
}

// SlackTextObject represents a text object in Slack Block Kit.
type SlackTextObject struct {
	Type string `json:"type"` // "mrkdwn" or "plain_text"
	Text string `json:"text"`
}

const (
	// Slack Block Kit limits
	maxSectionTextLength = 3000
	maxContextTextLength = 2000
	maxFallbackLength    = 150

	slackTruncationSuffix = "..."
)

// buildBlockKitPayload creates a section block with the bold (optionally
// linked) title and excerpt, and a context block with sources and time.
func (s *SlackNotifier) buildBlockKitPayload(post *entity.Post) SlackWebhookPayload {
	fallbackText := truncate("New post: "+post.Title, maxFallbackLength, slackTruncationSuffix)

	title := fmt.Sprintf("*%s*", post.Title)
	if link := postLink(s.config.PublicBaseURL, post.ID); link != "" {
		title = fmt.Sprintf("*<%s|%s>*", link, post.Title)
	}
	sectionText := truncate(title+"\n\n"+excerpt(post.Body), maxSectionTextLength, slackTruncationSuffix)

	contextText := truncate(
		fmt.Sprintf("%s • %s", post.SourcesAnalyzed, post.CreatedAt.Format(time.RFC3339)),
		maxContextTextLength, slackTruncationSuffix)

	return SlackWebhookPayload{
		Text: fallbackText,
		Blocks: []SlackBlock{
			{
				Type: "section",
				Text: &SlackTextObject{Type: "mrkdwn", Text: sectionText},
			},
			{
				Type:     "context",
				Elements: []SlackTextObject{{Type: "mrkdwn", Text: contextText}},
			},
		},
	}
}

// NotifyPost implements Notifier.
func (s *SlackNotifier) NotifyPost(ctx context.Context, post *entity.Post) error {
	return s.webhook.deliver(ctx, post.ID, s.buildBlockKitPayload(post))
}
