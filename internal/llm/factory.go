package llm

import (
	"fmt"

	"lead-assistant/internal/config"
)

// New creates the model client selected by cfg.LLMProvider.
func New(cfg *config.Config) (Client, error) {
	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		return NewOpenAI(OpenAIOptions{
			APIKey:      cfg.ModelAPIKey(),
			BaseURL:     cfg.OpenAIBaseURL,
			Model:       cfg.OpenAIModel,
			Referrer:    cfg.OpenRouterReferrer,
			Title:       cfg.OpenRouterTitle,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
		}), nil
	case config.ProviderYandex:
		return NewYandex(cfg.YandexOAuthToken, cfg.YandexFolderID)
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.LLMProvider)
	}
}
