package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	pkgconfig "trendscribe/pkg/config"
	"trendscribe/pkg/ratelimit"
)

// News provider types accepted in NEWS_PROVIDER.
const (
	NewsProviderNewsAPI = "newsapi"
	NewsProviderRSS     = "rss"
)

// DefaultExcludedKeywords are dropped from article titles unless overridden.
var DefaultExcludedKeywords = []string{"sex", "adult"}

// NewsConfig holds settings for the news aggregation gateway.
type NewsConfig struct {
	// Provider selects the upstream search API. Default: "newsapi".
	Provider string

	// APIKey authenticates with NewsAPI. Required for "newsapi".
	APIKey string

	// BaseURL overrides the provider endpoint.
	BaseURL string

	// Timeout bounds a single provider call. Default: 10s.
	Timeout time.Duration

	// CacheTTL is how long a topic's results are served from cache. Default: 300s.
	CacheTTL time.Duration

	// CacheSize bounds the number of cached topics. Default: 256.
	CacheSize int

	// ExcludedKeywords are matched case-insensitively against titles.
	ExcludedKeywords []string

	// RateLimit throttles callers per client IP.
	RateLimit ratelimit.RateLimitConfig
}

// NewsFilterFile is the optional YAML file named by NEWS_FILTER_FILE.
//
//	news:
//	  excluded_keywords:
//	    - gambling
//	    - casino
type NewsFilterFile struct {
	News struct {
		ExcludedKeywords []string `yaml:"excluded_keywords"`
	} `yaml:"news"`
}

// LoadNewsConfig loads gateway configuration from environment variables.
//
// Environment variables:
//   - NEWS_PROVIDER: newsapi or rss (default: newsapi)
//   - NEWS_API_KEY, NEWS_BASE_URL
//   - NEWS_PROVIDER_TIMEOUT (default: 10s)
//   - NEWS_CACHE_TTL (default: 300s), NEWS_CACHE_SIZE (default: 256)
//   - NEWS_EXCLUDED_KEYWORDS: comma separated (default: sex,adult)
//   - NEWS_FILTER_FILE: YAML file whose keywords are added to the list
//   - RATELIMIT_*: see pkg/config.LoadRateLimitConfig
func LoadNewsConfig() (*NewsConfig, error) {
	config := &NewsConfig{
		Provider:         strings.ToLower(pkgconfig.GetEnvString("NEWS_PROVIDER", NewsProviderNewsAPI)),
		APIKey:           pkgconfig.GetEnvString("NEWS_API_KEY", ""),
		BaseURL:          pkgconfig.GetEnvString("NEWS_BASE_URL", ""),
		Timeout:          pkgconfig.GetEnvDuration("NEWS_PROVIDER_TIMEOUT", 10*time.Second),
		CacheTTL:         pkgconfig.GetEnvDuration("NEWS_CACHE_TTL", 300*time.Second),
		CacheSize:        pkgconfig.GetEnvInt("NEWS_CACHE_SIZE", 256),
		ExcludedKeywords: pkgconfig.GetEnvStringList("NEWS_EXCLUDED_KEYWORDS", DefaultExcludedKeywords),
		RateLimit:        pkgconfig.LoadRateLimitConfig(),
	}

	if path := pkgconfig.GetEnvString("NEWS_FILTER_FILE", ""); path != "" {
		file, err := LoadNewsFilterFile(path)
		if err != nil {
			return nil, err
		}
		config.ExcludedKeywords = mergeKeywords(config.ExcludedKeywords, file.News.ExcludedKeywords)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid news configuration: %w", err)
	}

	return config, nil
}

// LoadNewsFilterFile reads a keyword filter file.
// The path comes from the operator's environment, not from requests.
func LoadNewsFilterFile(path string) (*NewsFilterFile, error) {
	// #nosec G304 -- path is operator supplied configuration
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read news filter file: %w", err)
	}

	var file NewsFilterFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse news filter file: %w", err)
	}

	for i, kw := range file.News.ExcludedKeywords {
		if strings.TrimSpace(kw) == "" {
			return nil, fmt.Errorf("news filter file: excluded_keywords[%d] is empty", i)
		}
	}

	return &file, nil
}

// Validate checks configuration correctness.
func (c *NewsConfig) Validate() error {
	switch c.Provider {
	case NewsProviderNewsAPI:
		if c.APIKey == "" {
			return fmt.Errorf("NEWS_API_KEY is required for provider %q", c.Provider)
		}
	case NewsProviderRSS:
	default:
		return fmt.Errorf("NEWS_PROVIDER %q is not supported", c.Provider)
	}

	if err := pkgconfig.ValidatePositiveDuration(c.Timeout); err != nil {
		return fmt.Errorf("NEWS_PROVIDER_TIMEOUT: %w", err)
	}

	if err := pkgconfig.ValidatePositiveDuration(c.CacheTTL); err != nil {
		return fmt.Errorf("NEWS_CACHE_TTL: %w", err)
	}

	if c.CacheSize <= 0 {
		return fmt.Errorf("NEWS_CACHE_SIZE must be positive, got %d", c.CacheSize)
	}

	return c.RateLimit.Validate()
}

// mergeKeywords appends extra to base, lower-cased and without duplicates.
func mergeKeywords(base, extra []string) []string {
	seen := make(map[string]struct{}, len(base)+len(extra))
	out := make([]string, 0, len(base)+len(extra))
	for _, list := range [][]string{base, extra} {
		for _, kw := range list {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				continue
			}
			if _, dup := seen[kw]; dup {
				continue
			}
			seen[kw] = struct{}{}
			out = append(out, kw)
		}
	}
	return out
}
