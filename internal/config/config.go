// Package config loads application configuration from YAML with
// environment-variable overrides for secrets.
package config

import (
	"fmt"
	"time"

	"github.com/abinmathew/leave-letter-assistant/pkg/utils"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Reference   ReferenceConfig   `mapstructure:"reference"`
	AI          AIConfig          `mapstructure:"ai"`
	SMTP        SMTPConfig        `mapstructure:"smtp"`
	Session     SessionConfig     `mapstructure:"session"`
	Institution InstitutionConfig `mapstructure:"institution"`
	Logger      LoggerConfig      `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// ReferenceConfig locates the immutable reference data loaded at
// startup.
type ReferenceConfig struct {
	FacultyPath   string `mapstructure:"faculty_path"`
	TemplatesPath string `mapstructure:"templates_path"`
}

// AIConfig holds the narrative-generation service settings.
type AIConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	Temperature float32       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// SMTPConfig holds email delivery settings.
type SMTPConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	Sender    string `mapstructure:"sender"`
	Recipient string `mapstructure:"recipient"`
}

// SessionConfig governs session lifetime and the roster cap.
type SessionConfig struct {
	TTL       time.Duration `mapstructure:"ttl"`
	MaxRoster int           `mapstructure:"max_roster"`
}

// InstitutionConfig names the college used in address blocks.
type InstitutionConfig struct {
	Name  string `mapstructure:"name"`
	Place string `mapstructure:"place"`
}

// LoggerConfig holds logger configuration.
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	bindEnvVars()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)

	viper.SetDefault("reference.faculty_path", "configs/facultylist.xlsx")
	viper.SetDefault("reference.templates_path", "configs/templates.json")

	viper.SetDefault("ai.base_url", "https://api.groq.com/openai/v1")
	viper.SetDefault("ai.model", "llama-3.3-70b-versatile")
	viper.SetDefault("ai.temperature", 0.3)
	viper.SetDefault("ai.timeout", 60*time.Second)

	viper.SetDefault("smtp.port", 587)

	viper.SetDefault("session.ttl", 180*time.Second)
	viper.SetDefault("session.max_roster", 5)

	viper.SetDefault("institution.name", "St. Joseph's College of Engineering and Technology")
	viper.SetDefault("institution.place", "Palai")

	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.output_path", "stdout")
	viper.SetDefault("logger.format", "json")
}

func bindEnvVars() {
	// Sensitive credentials from environment.
	viper.BindEnv("ai.api_key", "GROQ_API_KEY")
	viper.BindEnv("smtp.username", "SMTP_USERNAME")
	viper.BindEnv("smtp.password", "SMTP_PASSWORD")
	viper.BindEnv("smtp.recipient", "LETTER_RECIPIENT_EMAIL")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Reference.FacultyPath == "" {
		return fmt.Errorf("reference.faculty_path is required")
	}
	if c.Reference.TemplatesPath == "" {
		return fmt.Errorf("reference.templates_path is required")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session.ttl must be positive")
	}
	if c.Session.MaxRoster <= 0 {
		return fmt.Errorf("session.max_roster must be positive")
	}
	if c.Institution.Name == "" {
		return fmt.Errorf("institution.name is required")
	}
	if c.SMTP.Recipient != "" {
		if err := utils.ValidateEmail(c.SMTP.Recipient); err != nil {
			return fmt.Errorf("smtp.recipient: %w", err)
		}
	}
	return nil
}
