package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// DefaultFallbackSender is the sender identity the email provider always accepts.
const DefaultFallbackSender = "PacNW Studio <onboarding@resend.dev>"

// Email providers
const (
	ProviderResend = "resend"
	ProviderGmail  = "gmail"
	ProviderSMTP   = "smtp"
)

// Config holds all configuration for the application
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Contact   ContactConfig   `mapstructure:"contact"`
	Email     EmailConfig     `mapstructure:"email"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Log       LogConfig       `mapstructure:"log"`
}

// AppConfig holds the execution mode
type AppConfig struct {
	Env string `mapstructure:"env"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           string        `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	MaxBodyKB      int           `mapstructure:"max_body_kb"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	StaticDir      string        `mapstructure:"static_dir"`
}

// ContactConfig holds the contact pipeline settings
type ContactConfig struct {
	ToEmail    string        `mapstructure:"to_email"`
	FromEmail  string        `mapstructure:"from_email"`
	StudioName string        `mapstructure:"studio_name"`
	MinElapsed time.Duration `mapstructure:"min_elapsed"`
}

// EmailConfig holds email provider configuration
type EmailConfig struct {
	Provider     string        `mapstructure:"provider"`
	APIKey       string        `mapstructure:"api_key"`
	Endpoint     string        `mapstructure:"endpoint"`
	FallbackFrom string        `mapstructure:"fallback_from"`
	Timeout      time.Duration `mapstructure:"timeout"`
	Gmail        GmailConfig   `mapstructure:"gmail"`
	SMTP         SMTPConfig    `mapstructure:"smtp"`
}

// GmailConfig holds Gmail API configuration
type GmailConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RefreshToken string `mapstructure:"refresh_token"`
	UserEmail    string `mapstructure:"user_email"`
}

// SMTPConfig holds SMTP relay configuration
type SMTPConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	User string `mapstructure:"user"`
	Pass string `mapstructure:"pass"`
	SSL  bool   `mapstructure:"ssl"`
}

// RateLimitConfig holds the two per-client windows
type RateLimitConfig struct {
	ShortWindow time.Duration `mapstructure:"short_window"`
	ShortMax    int           `mapstructure:"short_max"`
	LongWindow  time.Duration `mapstructure:"long_window"`
	LongMax     int           `mapstructure:"long_max"`
}

// SchedulerConfig holds sweeper configuration
type SchedulerConfig struct {
	SweepIntervalMinutes int `mapstructure:"sweep_interval_minutes"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// RegisterFlags attaches the CLI flags that override file and env values.
func RegisterFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.String("config", "", "Path to a YAML config file")
	flags.String("port", "", "HTTP listen port")
	flags.String("env", "", "Execution mode (production enables strict behavior)")
	flags.String("log-level", "", "Logging level: debug, info, warn, error")
}

// LoadConfig loads configuration from config file, environment variables and,
// when cmd is non-nil, command-line flags.
func LoadConfig(cmd *cobra.Command) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	setDefaults(v)

	if cmd != nil {
		if path, _ := cmd.Flags().GetString("config"); path != "" {
			v.SetConfigFile(path)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.AutomaticEnv()
	bindEnvVars(v)

	if cmd != nil {
		if err := bindFlags(v, cmd); err != nil {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	config.Email.Provider = strings.ToLower(strings.TrimSpace(config.Email.Provider))
	config.Server.AllowedOrigins = splitList(config.Server.AllowedOrigins)

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.max_body_kb", 64)

	v.SetDefault("contact.from_email", DefaultFallbackSender)
	v.SetDefault("contact.studio_name", "PacNW Studio")
	v.SetDefault("contact.min_elapsed", "2500ms")

	v.SetDefault("email.provider", ProviderResend)
	v.SetDefault("email.endpoint", "https://api.resend.com/emails")
	v.SetDefault("email.fallback_from", DefaultFallbackSender)
	v.SetDefault("email.timeout", "10s")
	v.SetDefault("email.smtp.port", 587)
	v.SetDefault("email.smtp.ssl", false)

	v.SetDefault("rate_limit.short_window", "1m")
	v.SetDefault("rate_limit.short_max", 5)
	v.SetDefault("rate_limit.long_window", "1h")
	v.SetDefault("rate_limit.long_max", 20)

	v.SetDefault("scheduler.sweep_interval_minutes", 10)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

func bindEnvVars(v *viper.Viper) {
	v.BindEnv("app.env", "APP_ENV")

	// Server
	v.BindEnv("server.port", "SERVER_PORT", "PORT")
	v.BindEnv("server.read_timeout", "SERVER_READ_TIMEOUT")
	v.BindEnv("server.write_timeout", "SERVER_WRITE_TIMEOUT")
	v.BindEnv("server.max_body_kb", "SERVER_MAX_BODY_KB")
	v.BindEnv("server.allowed_origins", "SERVER_ALLOWED_ORIGINS")
	v.BindEnv("server.static_dir", "SERVER_STATIC_DIR")

	// Contact
	v.BindEnv("contact.to_email", "CONTACT_TO_EMAIL")
	v.BindEnv("contact.from_email", "CONTACT_FROM_EMAIL")
	v.BindEnv("contact.studio_name", "CONTACT_STUDIO_NAME")
	v.BindEnv("contact.min_elapsed", "CONTACT_MIN_ELAPSED")

	// Email provider
	v.BindEnv("email.provider", "EMAIL_PROVIDER")
	v.BindEnv("email.api_key", "EMAIL_API_KEY", "RESEND_API_KEY")
	v.BindEnv("email.endpoint", "EMAIL_ENDPOINT")
	v.BindEnv("email.fallback_from", "EMAIL_FALLBACK_FROM")
	v.BindEnv("email.timeout", "EMAIL_TIMEOUT")
	v.BindEnv("email.gmail.client_id", "GMAIL_CLIENT_ID")
	v.BindEnv("email.gmail.client_secret", "GMAIL_CLIENT_SECRET")
	v.BindEnv("email.gmail.refresh_token", "GMAIL_REFRESH_TOKEN")
	v.BindEnv("email.gmail.user_email", "GMAIL_USER_EMAIL")
	v.BindEnv("email.smtp.host", "SMTP_HOST")
	v.BindEnv("email.smtp.port", "SMTP_PORT")
	v.BindEnv("email.smtp.user", "SMTP_USER")
	v.BindEnv("email.smtp.pass", "SMTP_PASS")
	v.BindEnv("email.smtp.ssl", "SMTP_SSL")

	// Rate limiting
	v.BindEnv("rate_limit.short_window", "RATE_LIMIT_SHORT_WINDOW")
	v.BindEnv("rate_limit.short_max", "RATE_LIMIT_SHORT_MAX")
	v.BindEnv("rate_limit.long_window", "RATE_LIMIT_LONG_WINDOW")
	v.BindEnv("rate_limit.long_max", "RATE_LIMIT_LONG_MAX")

	// Scheduler
	v.BindEnv("scheduler.sweep_interval_minutes", "SCHEDULER_SWEEP_INTERVAL_MINUTES")

	// Logging
	v.BindEnv("log.level", "LOG_LEVEL")
	v.BindEnv("log.format", "LOG_FORMAT")
}

func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	bindings := map[string]string{
		"server.port": "port",
		"app.env":     "env",
		"log.level":   "log-level",
	}
	for key, name := range bindings {
		flag := cmd.Flags().Lookup(name)
		if flag == nil || !flag.Changed {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.App.Env), "production")
}

// HasCredentials reports whether the selected provider has enough settings to send.
func (c *EmailConfig) HasCredentials() bool {
	switch c.Provider {
	case ProviderGmail:
		return c.Gmail.ClientID != "" && c.Gmail.ClientSecret != "" && c.Gmail.RefreshToken != ""
	case ProviderSMTP:
		return c.SMTP.Host != ""
	default:
		return c.APIKey != ""
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	switch c.Email.Provider {
	case ProviderResend, ProviderGmail, ProviderSMTP:
	default:
		return fmt.Errorf("unknown email provider %q", c.Email.Provider)
	}

	if c.Email.Timeout <= 0 {
		return fmt.Errorf("email timeout must be greater than 0")
	}

	if c.Contact.MinElapsed <= 0 {
		return fmt.Errorf("contact min_elapsed must be greater than 0")
	}

	if c.RateLimit.ShortWindow <= 0 || c.RateLimit.LongWindow <= 0 {
		return fmt.Errorf("rate limit windows must be greater than 0")
	}
	if c.RateLimit.ShortMax <= 0 || c.RateLimit.LongMax <= 0 {
		return fmt.Errorf("rate limit maximums must be greater than 0")
	}

	if c.Scheduler.SweepIntervalMinutes <= 0 {
		return fmt.Errorf("scheduler sweep interval must be greater than 0")
	}

	return nil
}

// splitList accepts both YAML lists and a single comma-separated env value.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
