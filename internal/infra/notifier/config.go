package notifier

import (
	"fmt"
	"net/url"
	"time"

	pkgconfig "trendscribe/pkg/config"
)

const defaultWebhookTimeout = 10 * time.Second

// LoadDiscordConfig reads DISCORD_WEBHOOK_URL, DISCORD_ENABLED (default: true
// when a URL is set), NOTIFY_TIMEOUT and PUBLIC_BASE_URL.
func LoadDiscordConfig() (DiscordConfig, error) {
	webhookURL := pkgconfig.GetEnvString("DISCORD_WEBHOOK_URL", "")
	cfg := DiscordConfig{
		Enabled:       pkgconfig.GetEnvBool("DISCORD_ENABLED", webhookURL != ""),
		WebhookURL:    webhookURL,
		Timeout:       pkgconfig.GetEnvDuration("NOTIFY_TIMEOUT", defaultWebhookTimeout),
		PublicBaseURL: pkgconfig.GetEnvString("PUBLIC_BASE_URL", ""),
	}
	if cfg.Enabled {
		if err := validateWebhookURL(cfg.WebhookURL); err != nil {
			return DiscordConfig{}, fmt.Errorf("DISCORD_WEBHOOK_URL: %w", err)
		}
	}
	return cfg, nil
}

// LoadSlackConfig reads SLACK_WEBHOOK_URL, SLACK_ENABLED (default: true when
// a URL is set), NOTIFY_TIMEOUT and PUBLIC_BASE_URL.
func LoadSlackConfig() (SlackConfig, error) {
	webhookURL := pkgconfig.GetEnvString("SLACK_WEBHOOK_URL", "")
	cfg := SlackConfig{
		Enabled:       pkgconfig.GetEnvBool("SLACK_ENABLED", webhookURL != ""),
		WebhookURL:    webhookURL,
		Timeout:       pkgconfig.GetEnvDuration("NOTIFY_TIMEOUT", defaultWebhookTimeout),
		PublicBaseURL: pkgconfig.GetEnvString("PUBLIC_BASE_URL", ""),
	}
	if cfg.Enabled {
		if err := validateWebhookURL(cfg.WebhookURL); err != nil {
			return SlackConfig{}, fmt.Errorf("SLACK_WEBHOOK_URL: %w", err)
		}
	}
	return cfg, nil
}

// validateWebhookURL requires an absolute http(s) URL. The URL itself is
// never included in the error.
func validateWebhookURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("required when the channel is enabled")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL")
	}
	if (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return fmt.Errorf("must be an absolute http(s) URL")
	}
	return nil
}
