package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host          string `yaml:"host"`
		Port          int    `yaml:"port"`
		Env           string `yaml:"env"`
		Debug         bool   `yaml:"debug"`
		FrontendURL   string `yaml:"frontend_url"`
		BackendDomain string `yaml:"backend_domain"`
		Timezone      string `yaml:"timezone"`
	} `yaml:"server"`

	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`

	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUsername string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
		AdminEmail   string `yaml:"admin_email"`
		Enabled      bool   `yaml:"enabled"`
	} `yaml:"email"`

	JWT struct {
		Secret     string `yaml:"secret"`
		AccessTTL  int    `yaml:"access_ttl"`  // минуты
		RefreshTTL int    `yaml:"refresh_ttl"` // часы
	} `yaml:"jwt"`

	Google struct {
		ClientID string `yaml:"client_id"`
	} `yaml:"google"`

	FedaPay struct {
		APIURL        string `yaml:"api_url"`
		SecretKey     string `yaml:"secret_key"`
		WebhookSecret string `yaml:"webhook_secret"`
		Timeout       int    `yaml:"timeout"` // секунды
	} `yaml:"fedapay"`

	Storage struct {
		Type       string `yaml:"type"` // local, s3, cloudflare_r2
		BasePath   string `yaml:"base_path"`
		BaseURL    string `yaml:"base_url"`
		Bucket     string `yaml:"bucket"`
		Region     string `yaml:"region"`
		AccessKey  string `yaml:"access_key"`
		SecretKey  string `yaml:"secret_key"`
		Endpoint   string `yaml:"endpoint"`
		PublicRead bool   `yaml:"public_read"`
	} `yaml:"storage"`

	Upload struct {
		MaxSize      int64    `yaml:"max_size"`
		AllowedTypes []string `yaml:"allowed_types"`
		ImageQuality int      `yaml:"image_quality"`
	} `yaml:"upload"`

	RateLimit struct {
		RPS   float64 `yaml:"rps"`
		Burst int     `yaml:"burst"`
	} `yaml:"rate_limit"`

	FirstAdminEmail    string `yaml:"first_admin_email"`
	FirstAdminPassword string `yaml:"first_admin_password"`
}

var AppConfig *Config

func LoadConfig() {
	// .env не обязателен
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to load .env: %v", err)
	}

	var cfg Config

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		configPath := os.Getenv("CONFIG_PATH")
		if configPath == "" {
			configPath = "config/config.yaml"
		}
		log.Printf("Loading configuration from %s", configPath)

		f, err := os.Open(configPath)
		if err != nil {
			log.Fatalf("Failed to open config file at %s: %v", configPath, err)
		}
		defer f.Close()

		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
			log.Fatalf("Failed to parse config file at %s: %v", configPath, err)
		}
	} else {
		log.Println("Loading configuration from environment variables")
		loadFromEnv(&cfg, dbURL)
	}

	applyDefaults(&cfg)
	AppConfig = &cfg
}

func loadFromEnv(cfg *Config, dbURL string) {
	cfg.Database.DSN = dbURL
	cfg.Server.Host = os.Getenv("SERVER_HOST")
	cfg.Server.Env = os.Getenv("SERVER_ENV")
	cfg.Server.Port = envInt("SERVER_PORT", 0)
	cfg.Server.Debug = envBool("DEBUG", false)
	cfg.Server.FrontendURL = os.Getenv("FRONTEND_URL")
	cfg.Server.BackendDomain = os.Getenv("BACKEND_DOMAIN")
	cfg.Server.Timezone = os.Getenv("TIME_ZONE")

	cfg.JWT.Secret = os.Getenv("JWT_SECRET")
	cfg.JWT.AccessTTL = envInt("JWT_ACCESS_TTL", 0)
	cfg.JWT.RefreshTTL = envInt("JWT_REFRESH_TTL", 0)

	cfg.Google.ClientID = os.Getenv("GOOGLE_OAUTH_CLIENT_ID")

	cfg.FedaPay.APIURL = os.Getenv("FEDAPAY_API_URL")
	cfg.FedaPay.SecretKey = os.Getenv("FEDAPAY_SECRET_KEY")
	cfg.FedaPay.WebhookSecret = os.Getenv("FEDAPAY_WEBHOOK_SECRET")
	cfg.FedaPay.Timeout = envInt("FEDAPAY_TIMEOUT", 0)

	cfg.Email.SMTPHost = os.Getenv("EMAIL_HOST")
	cfg.Email.SMTPPort = envInt("EMAIL_PORT", 0)
	cfg.Email.SMTPUsername = os.Getenv("EMAIL_HOST_USER")
	cfg.Email.SMTPPassword = os.Getenv("EMAIL_HOST_PASSWORD")
	cfg.Email.FromEmail = os.Getenv("DEFAULT_FROM_EMAIL")
	cfg.Email.AdminEmail = os.Getenv("ADMIN_EMAIL")
	cfg.Email.Enabled = envBool("EMAIL_ENABLED", false)

	cfg.Storage.Type = os.Getenv("STORAGE_TYPE")
	cfg.Storage.BasePath = os.Getenv("STORAGE_BASE_PATH")
	cfg.Storage.BaseURL = os.Getenv("STORAGE_BASE_URL")
	cfg.Storage.Bucket = os.Getenv("STORAGE_BUCKET")
	cfg.Storage.Region = os.Getenv("STORAGE_REGION")
	cfg.Storage.AccessKey = os.Getenv("STORAGE_ACCESS_KEY")
	cfg.Storage.SecretKey = os.Getenv("STORAGE_SECRET_KEY")
	cfg.Storage.Endpoint = os.Getenv("STORAGE_ENDPOINT")

	if types := os.Getenv("UPLOAD_ALLOWED_TYPES"); types != "" {
		cfg.Upload.AllowedTypes = strings.Split(types, ",")
	}

	cfg.FirstAdminEmail = os.Getenv("FIRST_ADMIN_EMAIL")
	cfg.FirstAdminPassword = os.Getenv("FIRST_ADMIN_PASSWORD")
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Server.Env == "" {
		cfg.Server.Env = "development"
	}
	if cfg.Server.FrontendURL == "" {
		cfg.Server.FrontendURL = "http://localhost:3000"
	}
	if cfg.Server.BackendDomain == "" {
		cfg.Server.BackendDomain = "http://localhost:8000"
	}
	if cfg.Server.Timezone == "" {
		cfg.Server.Timezone = "Africa/Porto-Novo"
	}
	if cfg.JWT.AccessTTL == 0 {
		cfg.JWT.AccessTTL = 60
	}
	if cfg.JWT.RefreshTTL == 0 {
		cfg.JWT.RefreshTTL = 7 * 24
	}
	if cfg.FedaPay.APIURL == "" {
		cfg.FedaPay.APIURL = "https://sandbox-api.fedapay.com/v1"
	}
	if cfg.FedaPay.Timeout == 0 {
		cfg.FedaPay.Timeout = 10
	}
	if cfg.Email.SMTPPort == 0 {
		cfg.Email.SMTPPort = 587
	}
	if cfg.Email.FromEmail == "" {
		cfg.Email.FromEmail = "noreply@rencontre.bj"
	}
	if cfg.Storage.Type == "" {
		cfg.Storage.Type = "local"
	}
	if cfg.Storage.BasePath == "" {
		cfg.Storage.BasePath = "./uploads"
	}
	if cfg.Storage.BaseURL == "" {
		cfg.Storage.BaseURL = "/media"
	}
	if cfg.Upload.MaxSize == 0 {
		cfg.Upload.MaxSize = 10 * 1024 * 1024
	}
	if len(cfg.Upload.AllowedTypes) == 0 {
		cfg.Upload.AllowedTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}
	}
	if cfg.Upload.ImageQuality == 0 {
		cfg.Upload.ImageQuality = 85
	}
	if cfg.RateLimit.RPS == 0 {
		cfg.RateLimit.RPS = 5
	}
	if cfg.RateLimit.Burst == 0 {
		cfg.RateLimit.Burst = 10
	}
}

// IsDevelopment - локальный режим (текстовые логи, debug)
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

func envInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}

func envBool(key string, def bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}

func GetConfig() *Config {
	if AppConfig == nil {
		LoadConfig()
	}
	return AppConfig
}
