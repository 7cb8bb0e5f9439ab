package notifier

import (
	"context"
	"time"

	"trendscribe/internal/domain/entity"
)

type DiscordConfig struct {
	Enabled bool
	// WebhookURL carries the webhook token; never log it.
	WebhookURL string
	Timeout    time.Duration
	// PublicBaseURL, when set, links the embed to the post on the read API.
	PublicBaseURL string
}

// DiscordNotifier posts one embed per new post. Discord allows 30 webhook
// calls a minute, so deliveries are paced at 0.5/s with a burst of 3.
type DiscordNotifier struct {
	baseURL string
	webhook *webhook
}

func NewDiscordNotifier(config DiscordConfig) *DiscordNotifier {
	return &DiscordNotifier{
		baseURL: config.PublicBaseURL,
		webhook: newWebhook("discord", config.WebhookURL, config.Timeout, NewRateLimiter(0.5, 3)),
	}
}

// Embed field limits from the Discord API.
const (
	embedTitleMax       = 256
	embedDescriptionMax = 4096
	embedFooterMax      = 2048
	ellipsis            = "..."

	blurple = 0x5865F2
)

type discordPayload struct {
	Embeds []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url,omitempty"`
	Color       int    `json:"color"`
	Footer      struct {
		Text string `json:"text"`
	} `json:"footer"`
	Timestamp string `json:"timestamp"`
}

// embed renders the opening paragraph of the post with the sources in the
// footer.
func (d *DiscordNotifier) embed(post *entity.Post) discordPayload {
	e := discordEmbed{
		Title:       truncate(post.Title, embedTitleMax, ""),
		Description: truncate(excerpt(post.Body), embedDescriptionMax, ellipsis),
		URL:         postLink(d.baseURL, post.ID),
		Color:       blurple,
		Timestamp:   post.CreatedAt.Format(time.RFC3339),
	}
	e.Footer.Text = truncate("Sources: "+post.SourcesAnalyzed, embedFooterMax, ellipsis)
	return discordPayload{Embeds: []discordEmbed{e}}
}

func (d *DiscordNotifier) NotifyPost(ctx context.Context, post *entity.Post) error {
	return d.webhook.deliver(ctx, post.ID, d.embed(post))
}
