package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds all configuration for the concierge server
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Store      StoreConfig      `mapstructure:"store"`
	OpenAI     OpenAIConfig     `mapstructure:"openai"`
	Pinecone   PineconeConfig   `mapstructure:"pinecone"`
	ElevenLabs ElevenLabsConfig `mapstructure:"elevenlabs"`
	Calendly   CalendlyConfig   `mapstructure:"calendly"`
	Webhook    WebhookConfig    `mapstructure:"webhook"`
	Widget     WidgetConfig     `mapstructure:"widget"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	BaseURL string `mapstructure:"base_url"`
}

// StoreConfig selects and configures the persistence backend
type StoreConfig struct {
	Driver     string `mapstructure:"driver"` // sqlite, supabase
	SQLitePath string `mapstructure:"sqlite_path"`
	SupabaseConfig
}

// SupabaseConfig holds Supabase PostgREST access settings
type SupabaseConfig struct {
	SupabaseURL string `mapstructure:"supabase_url"`
	ServiceKey  string `mapstructure:"supabase_service_key"`
}

// OpenAIConfig holds completion/embedding provider configuration
type OpenAIConfig struct {
	APIKey         string `mapstructure:"api_key"`
	BaseURL        string `mapstructure:"base_url"`
	ChatModel      string `mapstructure:"chat_model"`
	EmbeddingModel string `mapstructure:"embedding_model"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// PineconeConfig holds vector index configuration
type PineconeConfig struct {
	APIKey    string  `mapstructure:"api_key"`
	IndexHost string  `mapstructure:"index_host"`
	TopK      int     `mapstructure:"top_k"`
	MinScore  float64 `mapstructure:"min_score"`
}

// ElevenLabsConfig holds text-to-speech configuration
type ElevenLabsConfig struct {
	APIKey  string `mapstructure:"api_key"`
	VoiceID string `mapstructure:"voice_id"`
}

// CalendlyConfig holds scheduling configuration
type CalendlyConfig struct {
	APIKey    string `mapstructure:"api_key"`
	UserURI   string `mapstructure:"user_uri"`
	EventName string `mapstructure:"event_name"`
}

// WebhookConfig holds outbound automation endpoints
type WebhookConfig struct {
	LeadURL string `mapstructure:"lead_url"`
}

// WidgetConfig holds UI defaults served to the embed loader
type WidgetConfig struct {
	PrimaryColor   string `mapstructure:"primary_color"`
	Position       string `mapstructure:"position"`
	WelcomeMessage string `mapstructure:"welcome_message"`
	Placeholder    string `mapstructure:"placeholder"`
}

// Load loads configuration from file and environment
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("CONCIERGE")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found, use defaults and environment
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")

	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.sqlite_path", "./data/concierge.db")

	v.SetDefault("openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("openai.chat_model", "gpt-4o-mini")
	v.SetDefault("openai.embedding_model", "text-embedding-3-small")
	v.SetDefault("openai.timeout_seconds", 8)

	v.SetDefault("pinecone.top_k", 4)
	v.SetDefault("pinecone.min_score", 0.35)

	v.SetDefault("elevenlabs.voice_id", "21m00Tcm4TlvDq8ikWAM")

	v.SetDefault("calendly.event_name", "Property Viewing")

	v.SetDefault("widget.primary_color", "#1f6f54")
	v.SetDefault("widget.position", "bottom-right")
	v.SetDefault("widget.welcome_message", "Hi! Ask me anything about the residence.")
	v.SetDefault("widget.placeholder", "Ask about apartments, prices, viewings...")
}

// validate fails fast on settings that would otherwise surface as
// confusing collaborator errors deep inside a request.
func (c *Config) validate() error {
	switch c.Store.Driver {
	case "sqlite":
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("store.sqlite_path is required for the sqlite driver")
		}
	case "supabase":
		if c.Store.SupabaseURL == "" || c.Store.ServiceKey == "" {
			return fmt.Errorf("store.supabase_url and store.supabase_service_key are required for the supabase driver")
		}
	default:
		return fmt.Errorf("unknown store driver %q (want sqlite or supabase)", c.Store.Driver)
	}
	return nil
}

// Address returns the server address
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
