package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone   = "America/Los_Angeles"
	defaultConfigPath = "data/starlink_config.yml"
	configPathEnv     = "STARLINK_WATCH_CONFIG"
	openAIAPIKeyEnv   = "OPENAI_API_KEY"
	anthropicKeyEnv   = "ANTHROPIC_API_KEY"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
	forceEmitEnv      = "FORCE_EMIT"

	defaultAluminumFraction = 0.7
	defaultAluminaYield     = 1.89
	defaultRetentionDays    = 120
)

// ErrMissingConfig reports a required key absent from the assumptions document.
var ErrMissingConfig = errors.New("missing required config key")

// Generations lists the satellite generation classes used by masses and mixes.
var Generations = []string{"v1", "v15", "v2m"}

// Config holds every setting the pipelines need.
type Config struct {
	Assumptions   Assumptions        `yaml:",inline"`
	Endpoints     EndpointsConfig    `yaml:"endpoints"`
	Paths         PathsConfig        `yaml:"paths"`
	Digest        DigestConfig       `yaml:"digest"`
	Feeds         []FeedConfig       `yaml:"feeds"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Server        ServerConfig       `yaml:"server"`
	Notifications NotificationConfig `yaml:"notifications"`
	Logging       LoggingConfig      `yaml:"logging"`

	// ForceEmit bypasses the digest emission gate.
	ForceEmit bool `yaml:"-"`
}

// Assumptions are the static physical parameters behind the derived metrics.
type Assumptions struct {
	Masses           map[string]float64 `yaml:"masses" json:"masses"`
	MixActive        map[string]float64 `yaml:"mix_active" json:"mix_active"`
	MixDecayed       map[string]float64 `yaml:"mix_decayed" json:"mix_decayed"`
	AluminumFraction *float64           `yaml:"aluminum_fraction_of_satellite" json:"aluminum_fraction"`
	AluminaYield     *float64           `yaml:"alumina_kg_per_kg_aluminum" json:"alumina_yield"`
	RetentionDays    int                `yaml:"retention_days" json:"retention_days"`
}

// Fraction returns the aluminum mass fraction, defaulting when unset.
func (a Assumptions) Fraction() float64 {
	if a.AluminumFraction == nil {
		return defaultAluminumFraction
	}
	return *a.AluminumFraction
}

// Yield returns kg of Al2O3 per kg of aluminum, defaulting when unset.
func (a Assumptions) Yield() float64 {
	if a.AluminaYield == nil {
		return defaultAluminaYield
	}
	return *a.AluminaYield
}

// Retention returns the series retention window in days.
func (a Assumptions) Retention() int {
	if a.RetentionDays <= 0 {
		return defaultRetentionDays
	}
	return a.RetentionDays
}

// EndpointsConfig holds the two CelesTrak source URLs.
type EndpointsConfig struct {
	StarlinkGPCSV     string `yaml:"starlink_gp_csv"`
	DecayedRecentHTML string `yaml:"decayed_recent_html"`
}

// PathsConfig locates every persisted artifact.
type PathsConfig struct {
	DataDir    string `yaml:"data_dir"`
	StateDir   string `yaml:"state_dir"`
	ArchiveDir string `yaml:"archive_dir"`
	EventsDir  string `yaml:"events_dir"`
	HistoryDB  string `yaml:"history_db"`
}

// DigestConfig drives feed gathering, emission windows and the summarizer.
type DigestConfig struct {
	Timezone      string  `yaml:"timezone"`
	EmissionHours []int   `yaml:"emission_hours"`
	LookbackDays  int     `yaml:"lookback_days"`
	MaxItems      int     `yaml:"max_items"`
	Provider      string  `yaml:"provider"`
	Model         string  `yaml:"model"`
	Endpoint      string  `yaml:"endpoint"`
	Temperature   float64 `yaml:"temperature"`
	MaxTokens     int     `yaml:"max_tokens"`
	OpenAIKey     string  `yaml:"openai_key"`
	AnthropicKey  string  `yaml:"anthropic_key"`

	location *time.Location `yaml:"-"`
}

// Location resolves the digest timezone to a time.Location.
func (d DigestConfig) Location() *time.Location {
	if d.location != nil {
		return d.location
	}
	loc, err := time.LoadLocation(defaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// FeedConfig is one RSS or Atom source for digest candidates.
type FeedConfig struct {
	Name    string `yaml:"name"`
	URL     string `yaml:"url"`
	Scanner string `yaml:"scanner"`
}

// SchedulerConfig sets the tick interval for watch mode.
type SchedulerConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// ServerConfig sets the read-only API listen address.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// LoggingConfig selects the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// ResolvePath picks the config path: explicit flag, then env var, then default.
func ResolvePath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if path := os.Getenv(configPathEnv); path != "" {
		return path
	}
	return defaultConfigPath
}

// Load reads the YAML document at path, merges it over defaults, applies
// environment overrides and validates the required assumptions.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse is Load without the filesystem.
func Parse(raw []byte) (Config, error) {
	var fileCfg Config
	if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg := mergeConfig(defaultConfig(), fileCfg)
	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the keys the metrics calculator cannot run without.
func (c Config) Validate() error {
	if len(c.Assumptions.Masses) == 0 {
		return fmt.Errorf("%w: masses", ErrMissingConfig)
	}
	for _, gen := range Generations {
		if _, ok := c.Assumptions.Masses[gen]; !ok {
			return fmt.Errorf("%w: masses.%s", ErrMissingConfig, gen)
		}
	}
	if c.Assumptions.MixActive == nil {
		return fmt.Errorf("%w: mix_active", ErrMissingConfig)
	}
	if c.Assumptions.MixDecayed == nil {
		return fmt.Errorf("%w: mix_decayed", ErrMissingConfig)
	}
	if c.Endpoints.StarlinkGPCSV == "" {
		return fmt.Errorf("%w: endpoints.starlink_gp_csv", ErrMissingConfig)
	}
	if c.Endpoints.DecayedRecentHTML == "" {
		return fmt.Errorf("%w: endpoints.decayed_recent_html", ErrMissingConfig)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(openAIAPIKeyEnv); v != "" {
		c.Digest.OpenAIKey = v
	}

	if v := os.Getenv(anthropicKeyEnv); v != "" {
		c.Digest.AnthropicKey = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}

	if os.Getenv(forceEmitEnv) == "1" {
		c.ForceEmit = true
	}
}

func (c *Config) bindTimezone() {
	tz := c.Digest.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to UTC", tz)
		loc = time.UTC
	}
	c.Digest.location = loc
}

func mergeConfig(base, override Config) Config {
	base.Assumptions = override.Assumptions

	if override.Endpoints.StarlinkGPCSV != "" {
		base.Endpoints.StarlinkGPCSV = override.Endpoints.StarlinkGPCSV
	}
	if override.Endpoints.DecayedRecentHTML != "" {
		base.Endpoints.DecayedRecentHTML = override.Endpoints.DecayedRecentHTML
	}

	if override.Paths.DataDir != "" {
		base.Paths.DataDir = override.Paths.DataDir
	}
	if override.Paths.StateDir != "" {
		base.Paths.StateDir = override.Paths.StateDir
	}
	if override.Paths.ArchiveDir != "" {
		base.Paths.ArchiveDir = override.Paths.ArchiveDir
	}
	if override.Paths.EventsDir != "" {
		base.Paths.EventsDir = override.Paths.EventsDir
	}
	if override.Paths.HistoryDB != "" {
		base.Paths.HistoryDB = override.Paths.HistoryDB
	}

	if override.Digest.Timezone != "" {
		base.Digest.Timezone = override.Digest.Timezone
	}
	if len(override.Digest.EmissionHours) > 0 {
		base.Digest.EmissionHours = override.Digest.EmissionHours
	}
	if override.Digest.LookbackDays > 0 {
		base.Digest.LookbackDays = override.Digest.LookbackDays
	}
	if override.Digest.MaxItems > 0 {
		base.Digest.MaxItems = override.Digest.MaxItems
	}
	if override.Digest.Provider != "" {
		base.Digest.Provider = override.Digest.Provider
	}
	if override.Digest.Model != "" {
		base.Digest.Model = override.Digest.Model
	}
	if override.Digest.Endpoint != "" {
		base.Digest.Endpoint = override.Digest.Endpoint
	}
	if override.Digest.Temperature > 0 {
		base.Digest.Temperature = override.Digest.Temperature
	}
	if override.Digest.MaxTokens > 0 {
		base.Digest.MaxTokens = override.Digest.MaxTokens
	}
	if override.Digest.OpenAIKey != "" {
		base.Digest.OpenAIKey = override.Digest.OpenAIKey
	}
	if override.Digest.AnthropicKey != "" {
		base.Digest.AnthropicKey = override.Digest.AnthropicKey
	}

	if len(override.Feeds) > 0 {
		base.Feeds = override.Feeds
	}

	if override.Scheduler.Interval > 0 {
		base.Scheduler.Interval = override.Scheduler.Interval
	}

	if override.Server.Addr != "" {
		base.Server.Addr = override.Server.Addr
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	return base
}

func defaultConfig() Config {
	vault := "Starlink Watch"
	return Config{
		Paths: PathsConfig{
			DataDir:    "data",
			StateDir:   ".state",
			ArchiveDir: filepath.Join(vault, "Archive"),
			EventsDir:  filepath.Join(vault, "Events"),
			HistoryDB:  filepath.Join(".state", "history.db"),
		},
		Digest: DigestConfig{
			Timezone:      defaultTimezone,
			EmissionHours: []int{9, 17},
			LookbackDays:  30,
			MaxItems:      40,
			Provider:      "openai",
			Temperature:   0.25,
			MaxTokens:     4000,
		},
		Scheduler: SchedulerConfig{Interval: time.Hour},
		Server:    ServerConfig{Addr: "127.0.0.1:8089"},
		Logging:   LoggingConfig{Level: "info"},
	}
}
