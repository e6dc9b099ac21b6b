package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	StorageDriverS3    = "s3"
	StorageDriverMinio = "minio"

	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

type Config struct {
	Log     LogConfig
	Server  ServerConfig
	Storage StorageConfig
	S3      S3Config
	AI      AIConfig
	App     AppConfig
}

type LogConfig struct {
	Level  string
	Format string
}

type ServerConfig struct {
	Host string
	Port string
}

type StorageConfig struct {
	Driver string
}

type S3Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	BucketName      string
	Region          string
	PublicBaseURL   string
	// ConditionalWrite sends If-None-Match: * so an existing key is never
	// overwritten.
	ConditionalWrite bool
}

type AIConfig struct {
	Provider      string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	Model         string
	MaxTokens     int
	GeminiAPIKey  string
	GeminiModel   string
}

type AppConfig struct {
	UploadPrefix   string
	GalleryLimit   int
	MaxUploadSize  int64
	UploadTimeout  time.Duration
	ListTimeout    time.Duration
	AnalyzeTimeout time.Duration
}

func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("SERVER_HOST", "localhost")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("STORAGE_DRIVER", StorageDriverS3)
	v.SetDefault("S3_ENDPOINT", "localhost:9000")
	v.SetDefault("S3_ACCESS_KEY_ID", "minioadmin")
	v.SetDefault("S3_SECRET_ACCESS_KEY", "minioadmin")
	v.SetDefault("S3_USE_SSL", false)
	v.SetDefault("S3_BUCKET_NAME", "images")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_PUBLIC_BASE_URL", "")
	v.SetDefault("S3_CONDITIONAL_WRITE", true)
	v.SetDefault("AI_PROVIDER", ProviderOpenAI)
	v.SetDefault("OPENAI_API_KEY", "")
	v.SetDefault("OPENAI_BASE_URL", "")
	v.SetDefault("AI_MODEL", "gpt-4o")
	v.SetDefault("AI_MAX_TOKENS", 200)
	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("GEMINI_MODEL", "gemini-2.5-flash")
	v.SetDefault("APP_UPLOAD_PREFIX", "public")
	v.SetDefault("APP_GALLERY_LIMIT", 100)
	v.SetDefault("APP_MAX_UPLOAD_SIZE", 32<<20) // multipart memory, not a limit
	v.SetDefault("UPLOAD_TIMEOUT", 30*time.Second)
	v.SetDefault("LIST_TIMEOUT", 10*time.Second)
	v.SetDefault("ANALYZE_TIMEOUT", 60*time.Second)

	v.AutomaticEnv()

	cfg := &Config{
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Server: ServerConfig{
			Host: v.GetString("SERVER_HOST"),
			Port: v.GetString("SERVER_PORT"),
		},
		Storage: StorageConfig{
			Driver: strings.ToLower(v.GetString("STORAGE_DRIVER")),
		},
		S3: S3Config{
			Endpoint:         v.GetString("S3_ENDPOINT"),
			AccessKeyID:      v.GetString("S3_ACCESS_KEY_ID"),
			SecretAccessKey:  v.GetString("S3_SECRET_ACCESS_KEY"),
			UseSSL:           v.GetBool("S3_USE_SSL"),
			BucketName:       v.GetString("S3_BUCKET_NAME"),
			Region:           v.GetString("S3_REGION"),
			PublicBaseURL:    v.GetString("S3_PUBLIC_BASE_URL"),
			ConditionalWrite: v.GetBool("S3_CONDITIONAL_WRITE"),
		},
		AI: AIConfig{
			Provider:      strings.ToLower(v.GetString("AI_PROVIDER")),
			OpenAIAPIKey:  v.GetString("OPENAI_API_KEY"),
			OpenAIBaseURL: v.GetString("OPENAI_BASE_URL"),
			Model:         v.GetString("AI_MODEL"),
			MaxTokens:     v.GetInt("AI_MAX_TOKENS"),
			GeminiAPIKey:  v.GetString("GEMINI_API_KEY"),
			GeminiModel:   v.GetString("GEMINI_MODEL"),
		},
		App: AppConfig{
			UploadPrefix:   strings.Trim(v.GetString("APP_UPLOAD_PREFIX"), "/"),
			GalleryLimit:   v.GetInt("APP_GALLERY_LIMIT"),
			MaxUploadSize:  v.GetInt64("APP_MAX_UPLOAD_SIZE"),
			UploadTimeout:  v.GetDuration("UPLOAD_TIMEOUT"),
			ListTimeout:    v.GetDuration("LIST_TIMEOUT"),
			AnalyzeTimeout: v.GetDuration("ANALYZE_TIMEOUT"),
		},
	}

	if cfg.S3.PublicBaseURL == "" {
		cfg.S3.PublicBaseURL = cfg.S3.DefaultPublicBaseURL()
	}
	cfg.S3.PublicBaseURL = strings.TrimRight(cfg.S3.PublicBaseURL, "/")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// DefaultPublicBaseURL is the path-style URL of the bucket on its own endpoint.
func (c S3Config) DefaultPublicBaseURL() string {
	endpoint := c.Endpoint
	if !strings.Contains(endpoint, "://") {
		scheme := "http"
		if c.UseSSL {
			scheme = "https"
		}
		endpoint = scheme + "://" + endpoint
	}
	return strings.TrimRight(endpoint, "/") + "/" + c.BucketName
}

// EndpointURL returns the endpoint with a scheme, as the AWS SDK expects it.
func (c S3Config) EndpointURL() string {
	if c.Endpoint == "" || strings.Contains(c.Endpoint, "://") {
		return c.Endpoint
	}
	if c.UseSSL {
		return "https://" + c.Endpoint
	}
	return "http://" + c.Endpoint
}

// EndpointHost returns the endpoint without a scheme, as minio-go expects it.
func (c S3Config) EndpointHost() string {
	host := c.Endpoint
	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}
	return strings.TrimRight(host, "/")
}

// ActiveModel is the model identifier sent to the selected provider.
func (c AIConfig) ActiveModel() string {
	if c.Provider == ProviderGemini {
		return c.GeminiModel
	}
	return c.Model
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageDriverS3, StorageDriverMinio:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	switch c.AI.Provider {
	case ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("unknown ai provider %q", c.AI.Provider)
	}

	if c.S3.BucketName == "" {
		return fmt.Errorf("bucket name is required")
	}
	if c.App.UploadPrefix == "" {
		return fmt.Errorf("upload prefix is required")
	}
	if c.App.GalleryLimit <= 0 {
		return fmt.Errorf("gallery limit must be positive, got %d", c.App.GalleryLimit)
	}
	if c.AI.MaxTokens <= 0 {
		return fmt.Errorf("max tokens must be positive, got %d", c.AI.MaxTokens)
	}
	if c.App.UploadTimeout <= 0 || c.App.ListTimeout <= 0 || c.App.AnalyzeTimeout <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}

	return nil
}
