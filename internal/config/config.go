package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	DB      DBConfig
	Storage StorageConfig
	S3      S3Config
	Log     LogConfig
	Extract ExtractConfig
	OCR     OCRConfig
	Parser  ParserConfig
	Queue   QueueConfig
	CORS    CORSConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// StorageConfig selects the repository backend. Driver is "postgres" or
// "memory"; memory exists for local development and tests.
type StorageConfig struct {
	Driver string `mapstructure:"driver"`
}

// S3Config holds AWS S3 settings for raw document storage.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ExtractConfig holds text extraction and fallback gate settings.
type ExtractConfig struct {
	MinConfidence  float64 `mapstructure:"min_confidence"`
	MinTextLength  int     `mapstructure:"min_text_length"`
	EnableFallback bool    `mapstructure:"enable_fallback"`
}

// OCRProviderConfig holds settings for the hosted OCR service.
type OCRProviderConfig struct {
	Endpoint    string `mapstructure:"endpoint"`
	APIKey      string `mapstructure:"api_key"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

// TesseractConfig holds settings for the local tesseract binary.
type TesseractConfig struct {
	Binary      string `mapstructure:"binary"`
	Languages   string `mapstructure:"languages"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

// OCRConfig holds OCR engine settings. The hosted engine is tried first,
// tesseract picks up when it is unreachable.
type OCRConfig struct {
	Hosted    OCRProviderConfig `mapstructure:"hosted"`
	Tesseract TesseractConfig   `mapstructure:"tesseract"`
}

// ParserProviderConfig holds settings for a single LLM provider.
type ParserProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	MaxRetries   int    `mapstructure:"max_retries"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// ParserConfig holds LLM fallback parser settings. Vision handles image
// inputs, Text handles recovered-but-messy text.
type ParserConfig struct {
	Vision ParserProviderConfig `mapstructure:"vision"`
	Text   ParserProviderConfig `mapstructure:"text"`
}

// QueueConfig holds commit worker settings.
type QueueConfig struct {
	PollIntervalSecs int `mapstructure:"poll_interval_secs"`
	Concurrency      int `mapstructure:"concurrency"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load reads configuration from environment variables with the LEDGERD_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("LEDGERD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "ledgerd")
	v.SetDefault("db.password", "ledgerd_secret")
	v.SetDefault("db.name", "ledgerd_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// Storage defaults
	v.SetDefault("storage.driver", "postgres")

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "ledgerd-uploads")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_file_size_mb", 25)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// Extraction defaults
	v.SetDefault("extract.min_confidence", 0.3)
	v.SetDefault("extract.min_text_length", 50)
	v.SetDefault("extract.enable_fallback", true)

	// OCR defaults
	v.SetDefault("ocr.hosted.endpoint", "")
	v.SetDefault("ocr.hosted.api_key", "")
	v.SetDefault("ocr.hosted.timeout_secs", 60)
	v.SetDefault("ocr.tesseract.binary", "tesseract")
	v.SetDefault("ocr.tesseract.languages", "eng")
	v.SetDefault("ocr.tesseract.timeout_secs", 60)

	// Parser defaults
	v.SetDefault("parser.vision.provider", "openai")
	v.SetDefault("parser.vision.api_key", "")
	v.SetDefault("parser.vision.default_model", "gpt-4o")
	v.SetDefault("parser.vision.max_retries", 2)
	v.SetDefault("parser.vision.timeout_secs", 120)
	v.SetDefault("parser.text.provider", "openai")
	v.SetDefault("parser.text.api_key", "")
	v.SetDefault("parser.text.default_model", "gpt-4o-mini")
	v.SetDefault("parser.text.max_retries", 2)
	v.SetDefault("parser.text.timeout_secs", 120)

	// Queue defaults
	v.SetDefault("queue.poll_interval_secs", 10)
	v.SetDefault("queue.concurrency", 4)

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                 "LEDGERD_SERVER_PORT",
		"server.read_timeout":         "LEDGERD_SERVER_READ_TIMEOUT",
		"server.write_timeout":        "LEDGERD_SERVER_WRITE_TIMEOUT",
		"server.environment":          "LEDGERD_SERVER_ENVIRONMENT",
		"db.host":                     "LEDGERD_DB_HOST",
		"db.port":                     "LEDGERD_DB_PORT",
		"db.user":                     "LEDGERD_DB_USER",
		"db.password":                 "LEDGERD_DB_PASSWORD",
		"db.name":                     "LEDGERD_DB_NAME",
		"db.sslmode":                  "LEDGERD_DB_SSLMODE",
		"db.max_open":                 "LEDGERD_DB_MAX_OPEN",
		"db.max_idle":                 "LEDGERD_DB_MAX_IDLE",
		"storage.driver":              "LEDGERD_STORAGE_DRIVER",
		"s3.region":                   "LEDGERD_S3_REGION",
		"s3.bucket":                   "LEDGERD_S3_BUCKET",
		"s3.endpoint":                 "LEDGERD_S3_ENDPOINT",
		"s3.access_key":               "LEDGERD_S3_ACCESS_KEY",
		"s3.secret_key":               "LEDGERD_S3_SECRET_KEY",
		"s3.max_file_size_mb":         "LEDGERD_S3_MAX_FILE_SIZE_MB",
		"log.level":                   "LEDGERD_LOG_LEVEL",
		"log.format":                  "LEDGERD_LOG_FORMAT",
		"extract.min_confidence":      "LEDGERD_EXTRACT_MIN_CONFIDENCE",
		"extract.min_text_length":     "LEDGERD_EXTRACT_MIN_TEXT_LENGTH",
		"extract.enable_fallback":     "LEDGERD_EXTRACT_ENABLE_FALLBACK",
		"ocr.hosted.endpoint":         "LEDGERD_OCR_HOSTED_ENDPOINT",
		"ocr.hosted.api_key":          "LEDGERD_OCR_HOSTED_API_KEY",
		"ocr.hosted.timeout_secs":     "LEDGERD_OCR_HOSTED_TIMEOUT_SECS",
		"ocr.tesseract.binary":        "LEDGERD_OCR_TESSERACT_BINARY",
		"ocr.tesseract.languages":     "LEDGERD_OCR_TESSERACT_LANGUAGES",
		"ocr.tesseract.timeout_secs":  "LEDGERD_OCR_TESSERACT_TIMEOUT_SECS",
		"parser.vision.provider":      "LEDGERD_PARSER_VISION_PROVIDER",
		"parser.vision.api_key":       "LEDGERD_PARSER_VISION_API_KEY",
		"parser.vision.default_model": "LEDGERD_PARSER_VISION_DEFAULT_MODEL",
		"parser.vision.max_retries":   "LEDGERD_PARSER_VISION_MAX_RETRIES",
		"parser.vision.timeout_secs":  "LEDGERD_PARSER_VISION_TIMEOUT_SECS",
		"parser.text.provider":        "LEDGERD_PARSER_TEXT_PROVIDER",
		"parser.text.api_key":         "LEDGERD_PARSER_TEXT_API_KEY",
		"parser.text.default_model":   "LEDGERD_PARSER_TEXT_DEFAULT_MODEL",
		"parser.text.max_retries":     "LEDGERD_PARSER_TEXT_MAX_RETRIES",
		"parser.text.timeout_secs":    "LEDGERD_PARSER_TEXT_TIMEOUT_SECS",
		"queue.poll_interval_secs":    "LEDGERD_QUEUE_POLL_INTERVAL_SECS",
		"queue.concurrency":           "LEDGERD_QUEUE_CONCURRENCY",
		"cors.allowed_origins":        "LEDGERD_CORS_ALLOWED_ORIGINS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if LEDGERD_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("LEDGERD_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.Storage = StorageConfig{
		Driver: v.GetString("storage.driver"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		MaxFileSizeMB: v.GetInt64("s3.max_file_size_mb"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.Extract = ExtractConfig{
		MinConfidence:  v.GetFloat64("extract.min_confidence"),
		MinTextLength:  v.GetInt("extract.min_text_length"),
		EnableFallback: v.GetBool("extract.enable_fallback"),
	}
	cfg.OCR = OCRConfig{
		Hosted: OCRProviderConfig{
			Endpoint:    v.GetString("ocr.hosted.endpoint"),
			APIKey:      v.GetString("ocr.hosted.api_key"),
			TimeoutSecs: v.GetInt("ocr.hosted.timeout_secs"),
		},
		Tesseract: TesseractConfig{
			Binary:      v.GetString("ocr.tesseract.binary"),
			Languages:   v.GetString("ocr.tesseract.languages"),
			TimeoutSecs: v.GetInt("ocr.tesseract.timeout_secs"),
		},
	}
	cfg.Parser = ParserConfig{
		Vision: ParserProviderConfig{
			Provider:     v.GetString("parser.vision.provider"),
			APIKey:       v.GetString("parser.vision.api_key"),
			DefaultModel: v.GetString("parser.vision.default_model"),
			MaxRetries:   v.GetInt("parser.vision.max_retries"),
			TimeoutSecs:  v.GetInt("parser.vision.timeout_secs"),
		},
		Text: ParserProviderConfig{
			Provider:     v.GetString("parser.text.provider"),
			APIKey:       v.GetString("parser.text.api_key"),
			DefaultModel: v.GetString("parser.text.default_model"),
			MaxRetries:   v.GetInt("parser.text.max_retries"),
			TimeoutSecs:  v.GetInt("parser.text.timeout_secs"),
		},
	}
	cfg.Queue = QueueConfig{
		PollIntervalSecs: v.GetInt("queue.poll_interval_secs"),
		Concurrency:      v.GetInt("queue.concurrency"),
	}

	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	return cfg, nil
}
