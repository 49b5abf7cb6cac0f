/**
 * @description
 * This file handles the configuration management for the Flixxit backend.
 * It uses the 'viper' library to load configuration from environment variables,
 * providing a centralized and consistent way to manage application settings.
 */
package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	ServerPort  string `mapstructure:"SERVER_PORT"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	JWTSecret   string `mapstructure:"JWT_SECRET"`
	RabbitMQURL string `mapstructure:"RABBITMQ_URL"`

	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUsername string `mapstructure:"SMTP_USERNAME"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	SMTPFrom     string `mapstructure:"SMTP_FROM"`
	AdminEmail   string `mapstructure:"ADMIN_EMAIL"`

	// Cron schedules for the three reconciliation cadences.
	HealthSweepSchedule   string `mapstructure:"HEALTH_SWEEP_SCHEDULE"`
	DailySweepSchedule    string `mapstructure:"DAILY_SWEEP_SCHEDULE"`
	WeeklySummarySchedule string `mapstructure:"WEEKLY_SUMMARY_SCHEDULE"`

	// Reminder policy knobs.
	WarningWindowDays     int `mapstructure:"WARNING_WINDOW_DAYS"`
	ReminderCooldownHours int `mapstructure:"REMINDER_COOLDOWN_HOURS"`
	SweepMaxRetries       int `mapstructure:"SWEEP_MAX_RETRIES"`

	// Optional JSON object overriding the built-in plan catalog, keyed by
	// plan ID: {"monthly":{"days":30,"cost":10}}.
	PlanCatalogJSON string `mapstructure:"PLAN_CATALOG_JSON"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (config Config, err error) {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SMTP_PORT", 465)
	viper.SetDefault("SMTP_FROM", "no-reply@flixxit.app")
	viper.SetDefault("HEALTH_SWEEP_SCHEDULE", "*/15 * * * *")
	viper.SetDefault("DAILY_SWEEP_SCHEDULE", "0 2 * * *")
	viper.SetDefault("WEEKLY_SUMMARY_SCHEDULE", "0 8 * * 1")
	viper.SetDefault("WARNING_WINDOW_DAYS", 7)
	viper.SetDefault("REMINDER_COOLDOWN_HOURS", 24)
	viper.SetDefault("SWEEP_MAX_RETRIES", 5)

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	for _, key := range []string{
		"SERVER_PORT", "DATABASE_URL", "JWT_SECRET", "RABBITMQ_URL",
		"SMTP_HOST", "SMTP_PORT", "SMTP_USERNAME", "SMTP_PASSWORD", "SMTP_FROM", "ADMIN_EMAIL",
		"HEALTH_SWEEP_SCHEDULE", "DAILY_SWEEP_SCHEDULE", "WEEKLY_SUMMARY_SCHEDULE",
		"WARNING_WINDOW_DAYS", "REMINDER_COOLDOWN_HOURS", "SWEEP_MAX_RETRIES",
		"PLAN_CATALOG_JSON",
	} {
		_ = viper.BindEnv(key)
	}

	err = viper.Unmarshal(&config)
	return
}
