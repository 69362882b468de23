// File: internal/config/config.go
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"receipt-desk-bot/internal/domain/model"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token    string `yaml:"token"`
	Username string `yaml:"username"` // used in referral links; filled from getMe when empty
	Workers  int    `yaml:"workers"`  // updates handled at once, across users
	Queue    int    `yaml:"queue"`    // per-user queue length
	Language string `yaml:"language"` // es | en
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type AdminConfig struct {
	Port int `yaml:"port"` // 0 disables the admin server
}

type StoreConfig struct {
	Backend string `yaml:"backend"` // memory | redis
}

type RedisConfig struct {
	URL       string        `yaml:"url"`
	Password  string        `yaml:"password"`
	DB        int           `yaml:"db"`
	KeyPrefix string        `yaml:"key_prefix"`
	LockTTL   time.Duration `yaml:"lock_ttl"` // per-user lock lease
}

type ReceiptConfig struct {
	ModerationChatID  int64         `yaml:"moderation_chat_id"`
	ExtractionTimeout time.Duration `yaml:"extraction_timeout"`
	MaxConcurrent     int           `yaml:"max_concurrent"` // concurrent extractions
	MaxDownloadBytes  int64         `yaml:"max_download_bytes"`
	ExtraKeywords     []string      `yaml:"extra_keywords"`
}

type OCRConfig struct {
	Provider  string          `yaml:"provider"` // tesseract | openai | gemini | chain | none
	Chain     []string        `yaml:"chain"`    // order used by provider=chain
	Tesseract TesseractConfig `yaml:"tesseract"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Gemini    GeminiConfig    `yaml:"gemini"`
}

type TesseractConfig struct {
	Binary   string `yaml:"binary"`
	Language string `yaml:"language"`
}

type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

type GeminiConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

type CatalogConfig struct {
	Path string `yaml:"path"`
}

type ReferralConfig struct {
	Tiers []model.ReferralTier `yaml:"tiers"`
}

type Config struct {
	Bot      BotConfig      `yaml:"bot"`
	Log      LogConfig      `yaml:"log"`
	Admin    AdminConfig    `yaml:"admin"`
	Store    StoreConfig    `yaml:"store"`
	Redis    RedisConfig    `yaml:"redis"`
	Receipt  ReceiptConfig  `yaml:"receipt"`
	OCR      OCRConfig      `yaml:"ocr"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Referral ReferralConfig `yaml:"referral"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig parses -config and -dev from the command line and loads the file.
func LoadConfig() (*Config, error) {
	var configPath string
	var dev bool
	flag.StringVar(&configPath, "config", "config.yaml", "path to config yaml")
	flag.BoolVar(&dev, "dev", false, "development mode")
	flag.Parse()
	return Load(configPath, dev)
}

// Load reads the YAML file at path, applies the TELEGRAM_TOKEN override and
// defaults, and validates the result.
func Load(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b, dev)
}

func Parse(b []byte, dev bool) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if tok := strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")); tok != "" {
		cfg.Bot.Token = tok
	}
	cfg.Runtime.Dev = dev
	applyDefaults(&cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 64
	}
	if cfg.Bot.Queue <= 0 {
		cfg.Bot.Queue = 16
	}
	if cfg.Bot.Language == "" {
		cfg.Bot.Language = "es"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = "memory"
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = "receiptdesk"
	}
	if cfg.Receipt.ExtractionTimeout <= 0 {
		cfg.Receipt.ExtractionTimeout = 20 * time.Second
	}
	if cfg.Redis.LockTTL <= 0 {
		cfg.Redis.LockTTL = cfg.MinLockTTL() + 30*time.Second
	}
	if cfg.Receipt.MaxConcurrent <= 0 {
		cfg.Receipt.MaxConcurrent = 4
	}
	if cfg.Receipt.MaxDownloadBytes <= 0 {
		cfg.Receipt.MaxDownloadBytes = 10 << 20
	}
	if cfg.OCR.Provider == "" {
		cfg.OCR.Provider = "tesseract"
	}
	if len(cfg.OCR.Chain) == 0 {
		cfg.OCR.Chain = []string{"tesseract", "openai", "gemini"}
	}
	if cfg.OCR.Tesseract.Binary == "" {
		cfg.OCR.Tesseract.Binary = "tesseract"
	}
	if cfg.OCR.Tesseract.Language == "" {
		cfg.OCR.Tesseract.Language = "spa"
	}
	if cfg.OCR.OpenAI.Model == "" {
		cfg.OCR.OpenAI.Model = "gpt-4o-mini"
	}
	if cfg.OCR.Gemini.Model == "" {
		cfg.OCR.Gemini.Model = "gemini-2.0-flash"
	}
	if cfg.Catalog.Path == "" {
		cfg.Catalog.Path = "catalog.yaml"
	}
	if len(cfg.Referral.Tiers) == 0 {
		cfg.Referral.Tiers = model.DefaultReferralTiers()
	}
}

// DownloadTimeout bounds one receipt photo download.
const DownloadTimeout = 30 * time.Second

// lockSlack covers the replies and the moderation relay around a receipt.
const lockSlack = 15 * time.Second

// MinLockTTL is the shortest user-lock lease that outlives the slowest event
// (download, extraction, relay). A shorter lease could expire mid-event and
// let another replica handle the same user.
func (cfg *Config) MinLockTTL() time.Duration {
	return DownloadTimeout + cfg.Receipt.ExtractionTimeout + lockSlack
}

var ocrProviders = map[string]bool{"tesseract": true, "openai": true, "gemini": true, "chain": true, "none": true}

// Minimal validation. Dev mode may run without a token (noop transport).
func (cfg *Config) validate() error {
	if cfg.Bot.Token == "" && !cfg.Runtime.Dev {
		return errors.New("bot.token is required (or set TELEGRAM_TOKEN)")
	}
	if cfg.Receipt.ModerationChatID == 0 {
		return errors.New("receipt.moderation_chat_id is required")
	}
	switch cfg.Store.Backend {
	case "memory":
	case "redis":
		if cfg.Redis.URL == "" {
			return errors.New("redis.url is required when store.backend is redis")
		}
		if cfg.Redis.LockTTL < cfg.MinLockTTL() {
			return fmt.Errorf("redis.lock_ttl %s must be at least %s to outlast one receipt",
				cfg.Redis.LockTTL, cfg.MinLockTTL())
		}
	default:
		return fmt.Errorf("store.backend %q: want memory or redis", cfg.Store.Backend)
	}
	if !ocrProviders[cfg.OCR.Provider] {
		return fmt.Errorf("ocr.provider %q is not supported", cfg.OCR.Provider)
	}
	for _, p := range cfg.OCR.Chain {
		if !ocrProviders[p] || p == "chain" {
			return fmt.Errorf("ocr.chain entry %q is not supported", p)
		}
	}
	for _, t := range cfg.Referral.Tiers {
		if t.Name == "" || t.Threshold <= 0 {
			return fmt.Errorf("referral tier %+v: name and positive threshold required", t)
		}
	}
	return nil
}
