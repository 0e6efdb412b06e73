package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

type LLMProvider string

const (
	ProviderOpenAI LLMProvider = "openai"
	ProviderYandex LLMProvider = "yandex"
)

type Config struct {
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN,required,notEmpty"`
	AdminUserID      int64  `env:"ADMIN_USER"`

	// LLM settings
	LLMProvider      LLMProvider   `env:"LLM_PROVIDER" envDefault:"openai"`
	OpenAIAPIKey     string        `env:"OPENAI_API_KEY"`
	OpenRouterAPIKey string        `env:"OPENROUTER_API_KEY"`
	OpenAIBaseURL    string        `env:"OPENAI_BASE_URL" envDefault:"https://openrouter.ai/api/v1"`
	OpenAIModel      string        `env:"OPENAI_MODEL" envDefault:"deepseek/deepseek-chat-v3.1:free"`
	YandexOAuthToken string        `env:"YANDEX_OAUTH_TOKEN"`
	YandexFolderID   string        `env:"YANDEX_FOLDER_ID"`
	MaxTokens        int           `env:"MODEL_MAX_TOKENS" envDefault:"1500"`
	Temperature      float32       `env:"MODEL_TEMPERATURE" envDefault:"0.4"`
	ModelTimeout     time.Duration `env:"MODEL_TIMEOUT" envDefault:"60s"`

	// OpenRouter attribution
	OpenRouterReferrer string `env:"OPENROUTER_REFERRER" envDefault:"https://github.com"`
	OpenRouterTitle    string `env:"OPENROUTER_TITLE" envDefault:"Telegram Business Bot"`

	// Prompts and knowledge
	SystemPromptPath string `env:"SYSTEM_PROMPT_PATH" envDefault:"prompts/system_prompt.txt"`
	KnowledgeDir     string `env:"KNOWLEDGE_DIR" envDefault:"knowledge_base"`

	// Storage
	ContactsJSONPath string `env:"CONTACTS_JSON_PATH" envDefault:"data/contacts.json"`
	ContactsCSVPath  string `env:"CONTACTS_CSV_PATH" envDefault:"data/contacts.csv"`
	LogFilePath      string `env:"LOG_FILE_PATH" envDefault:"logs/turns.jsonl"`

	// Dialog
	HistoryMax          int  `env:"HISTORY_MAX" envDefault:"10"`
	HistoryContextTurns int  `env:"HISTORY_CONTEXT_TURNS" envDefault:"6"`
	MessageMaxLength    int  `env:"MESSAGE_MAX_LENGTH" envDefault:"4096"`
	KnowledgeAsContext  bool `env:"KNOWLEDGE_AS_CONTEXT" envDefault:"false"`
	ConsultationGate    bool `env:"CONSULTATION_GATE" envDefault:"true"`
	TextContactFallback bool `env:"TEXT_CONTACT_FALLBACK" envDefault:"true"`

	// Operations
	HTTPAddr        string `env:"HTTP_ADDR" envDefault:":8080"`
	DailyReportSpec string `env:"DAILY_REPORT_SPEC" envDefault:"0 21 * * *"`
	LogLevel        string `env:"LOG_LEVEL" envDefault:"info"`

	// E-mail lead notifications (optional)
	GmailCredentialsPath string `env:"GMAIL_CREDENTIALS_JSON_PATH"`
	GmailRefreshToken    string `env:"GMAIL_REFRESH_TOKEN"`
	NotifyEmailTo        string `env:"NOTIFY_EMAIL_TO"`
}

var (
	ErrMissingModelCredential = errors.New("model API credential is not set")
	ErrUnknownProvider        = errors.New("unknown llm provider")
)

// New parses the environment and validates the result.
func New() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.LLMProvider = LLMProvider(strings.ToLower(strings.TrimSpace(string(cfg.LLMProvider))))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the credential for the selected provider is present.
func (c *Config) Validate() error {
	switch c.LLMProvider {
	case ProviderOpenAI:
		if c.ModelAPIKey() == "" {
			return fmt.Errorf("%w: set OPENAI_API_KEY or OPENROUTER_API_KEY", ErrMissingModelCredential)
		}
	case ProviderYandex:
		if c.YandexOAuthToken == "" || c.YandexFolderID == "" {
			return fmt.Errorf("%w: set YANDEX_OAUTH_TOKEN and YANDEX_FOLDER_ID", ErrMissingModelCredential)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownProvider, c.LLMProvider)
	}
	if c.HistoryMax <= 0 {
		return fmt.Errorf("HISTORY_MAX must be positive, got %d", c.HistoryMax)
	}
	return nil
}

// ModelAPIKey returns the OpenAI-compatible key, preferring OPENAI_API_KEY.
func (c *Config) ModelAPIKey() string {
	if c.OpenAIAPIKey != "" {
		return c.OpenAIAPIKey
	}
	return c.OpenRouterAPIKey
}

// EmailNotificationsEnabled reports whether all Gmail settings are present.
func (c *Config) EmailNotificationsEnabled() bool {
	return c.GmailCredentialsPath != "" && c.GmailRefreshToken != "" && c.NotifyEmailTo != ""
}
