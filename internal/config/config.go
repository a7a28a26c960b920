// Package config loads the YAML configuration file and overlays
// environment secrets on top of it.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/DavidJovino/deivao-recon/internal/report"
	"github.com/DavidJovino/deivao-recon/internal/tools"
)

const appDirName = "deivao-recon"

// Config is the resolved runtime configuration.
type Config struct {
	Threads   int    `yaml:"threads"`
	Timeout   int    `yaml:"timeout"` // seconds per external command
	OutputDir string `yaml:"output_dir"`
	ToolsDir  string `yaml:"tools_dir"`

	Report        ReportConfig        `yaml:"report"`
	Notifications NotificationsConfig `yaml:"notifications"`
}

// ReportConfig selects the formats generated after a run.
type ReportConfig struct {
	Formats []string `yaml:"formats"`
}

// NotificationsConfig holds one block per delivery channel.
type NotificationsConfig struct {
	Discord  DiscordConfig  `yaml:"discord"`
	Slack    SlackConfig    `yaml:"slack"`
	Telegram TelegramConfig `yaml:"telegram"`
	Email    EmailConfig    `yaml:"email"`
}

type DiscordConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhook_url"`
}

type SlackConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhook_url"`
}

type TelegramConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BotToken string `yaml:"bot_token"`
	ChatID   string `yaml:"chat_id"`
}

type EmailConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Host     string   `yaml:"smtp_host"`
	Port     int      `yaml:"smtp_port"`
	Username string   `yaml:"smtp_user"`
	Password string   `yaml:"smtp_password"`
	From     string   `yaml:"from"`
	To       []string `yaml:"to"`
}

// Default returns the configuration used when no file exists yet.
func Default() *Config {
	return &Config{
		Threads:   10,
		Timeout:   2800,
		OutputDir: "~/Documents/Bugbounty",
		ToolsDir:  "~/tools",
		Report:    ReportConfig{Formats: []string{report.FormatMarkdown}},
		Notifications: NotificationsConfig{
			Email: EmailConfig{Port: 587},
		},
	}
}

// Dir returns the application config directory.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appDirName), nil
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the configuration. An empty path means the default
// location; a missing file gets a commented template written in its
// place first. Environment variables, optionally sourced from a .env
// file, overlay the file values and win over them.
func Load(path string) (*Config, error) {
	var err error
	if path == "" {
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	cfg := Default()
	if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
		if err := writeTemplate(path); err != nil {
			return nil, fmt.Errorf("creating config template: %w", err)
		}
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	cfg.overlayEnv()
	cfg.normalize()
	return cfg, nil
}

// Validate rejects configurations the pipeline cannot honor.
func Validate(cfg *Config) error {
	for _, f := range cfg.Report.Formats {
		if !report.ValidFormat(f) {
			return fmt.Errorf("unknown report format %q", f)
		}
	}
	return nil
}

// TimeoutDuration converts the timeout seconds into a duration.
func (c *Config) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// overlayEnv applies environment secrets. A secret arriving through the
// environment also enables its channel.
func (c *Config) overlayEnv() {
	// Real environment variables win over .env contents.
	_ = godotenv.Load()

	if v := os.Getenv("DISCORD_WEBHOOK_URL"); v != "" {
		c.Notifications.Discord.WebhookURL = v
		c.Notifications.Discord.Enabled = true
	}
	if v := os.Getenv("SLACK_WEBHOOK_URL"); v != "" {
		c.Notifications.Slack.WebhookURL = v
		c.Notifications.Slack.Enabled = true
	}

	fromEnv := false
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Notifications.Telegram.BotToken = v
		fromEnv = true
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Notifications.Telegram.ChatID = v
		fromEnv = true
	}
	if fromEnv && c.Notifications.Telegram.BotToken != "" && c.Notifications.Telegram.ChatID != "" {
		c.Notifications.Telegram.Enabled = true
	}

	if v := os.Getenv("SMTP_HOST"); v != "" {
		c.Notifications.Email.Host = v
		c.Notifications.Email.Enabled = true
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Notifications.Email.Port = p
		}
	}
	if v := os.Getenv("SMTP_USER"); v != "" {
		c.Notifications.Email.Username = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		c.Notifications.Email.Password = v
	}
	if v := os.Getenv("SMTP_FROM"); v != "" {
		c.Notifications.Email.From = v
	}
	if v := os.Getenv("SMTP_TO"); v != "" {
		c.Notifications.Email.To = splitList(v)
	}

	if v := os.Getenv("TOOLS_DIR"); v != "" {
		c.ToolsDir = v
	}
}

func (c *Config) normalize() {
	def := Default()
	if c.Threads <= 0 {
		c.Threads = def.Threads
	}
	if c.Timeout <= 0 {
		c.Timeout = def.Timeout
	}
	if c.OutputDir == "" {
		c.OutputDir = def.OutputDir
	}
	if c.ToolsDir == "" {
		c.ToolsDir = def.ToolsDir
	}
	if len(c.Report.Formats) == 0 {
		c.Report.Formats = def.Report.Formats
	}
	if c.Notifications.Email.Port <= 0 {
		c.Notifications.Email.Port = def.Notifications.Email.Port
	}
	c.OutputDir = tools.ExpandHome(c.OutputDir)
	c.ToolsDir = tools.ExpandHome(c.ToolsDir)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func writeTemplate(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	template := `# deivao-recon configuration
# subdomain reconnaissance pipeline

# ========== Run Settings ==========

# Worker pool size for concurrent tools
threads: 10

# Per-command timeout in seconds
timeout: 2800

# Where per-domain result directories are created
output_dir: "~/Documents/Bugbounty"

# Where installed tools land (go binaries, cloned repos)
tools_dir: "~/tools"

# ========== Reports ==========

report:
  # Formats generated after each run: md, html, json
  formats:
    - md

# ========== Notifications ==========
# Secrets can also come from the environment or a .env file
# (DISCORD_WEBHOOK_URL, SLACK_WEBHOOK_URL, TELEGRAM_BOT_TOKEN,
# TELEGRAM_CHAT_ID, SMTP_HOST, SMTP_PORT, SMTP_USER, SMTP_PASSWORD,
# SMTP_FROM, SMTP_TO, TOOLS_DIR). A secret set in the environment
# enables its channel.

notifications:
  discord:
    enabled: false
    webhook_url: ""
  slack:
    enabled: false
    webhook_url: ""
  telegram:
    enabled: false
    bot_token: ""
    chat_id: ""
  email:
    enabled: false
    smtp_host: ""
    smtp_port: 587
    smtp_user: ""
    smtp_password: ""
    from: ""
    to: []
`

	return os.WriteFile(path, []byte(template), 0644)
}
