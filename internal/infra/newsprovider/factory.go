package newsprovider

import (
	"fmt"

	"trendscribe/internal/config"
	"trendscribe/internal/usecase/news"
)

// New returns the provider selected by cfg.Provider.
func New(cfg *config.NewsConfig) (news.Provider, error) {
	switch cfg.Provider {
	case config.NewsProviderNewsAPI:
		return NewNewsAPI(cfg.APIKey, cfg.BaseURL, cfg.Timeout), nil
	case config.NewsProviderRSS:
		return NewRSS(cfg.BaseURL, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("unsupported news provider %q", cfg.Provider)
	}
}
