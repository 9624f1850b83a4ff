package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Email    EmailConfig    `mapstructure:"email"`
	Reminder ReminderConfig `mapstructure:"reminder" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`
}

// EmailConfig contains the SMTP settings for the email reminder channel.
// It is only consulted when reminder.email_enabled is true.
type EmailConfig struct {
	SMTPHost string `mapstructure:"smtp_host"`
	SMTPPort int    `mapstructure:"smtp_port" validate:"omitempty,gt=0,lt=65536"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"      validate:"omitempty,email"`
}

// ReminderConfig drives the reminder scheduler. It may be replaced wholesale
// at runtime, which restarts the scheduler with the new parameters.
type ReminderConfig struct {
	// Enabled gates the whole scheduler; when false Start is a no-op.
	Enabled bool `mapstructure:"enabled"`

	// CheckInterval is the schedule expression for the interval scan,
	// either a cron spec or an @every duration.
	CheckInterval string `mapstructure:"check_interval" validate:"required"`

	// ImmediateInterval is the schedule expression for the more aggressive
	// near-due scan.
	ImmediateInterval string `mapstructure:"immediate_interval" validate:"required"`

	// OverdueSweep optionally schedules the overdue sweep; empty means the
	// sweep only runs on demand.
	OverdueSweep string `mapstructure:"overdue_sweep"`

	// ReminderTimes is the ordered list of hours-before-due thresholds the
	// interval scan walks, e.g. [24, 12, 6, 1]. Duplicates are rejected;
	// an empty list disables interval reminders but leaves the immediate
	// scan and overdue sweep functional.
	ReminderTimes []int `mapstructure:"reminder_times" validate:"unique,dive,gt=0"`

	// EmailEnabled toggles the email delivery channel.
	EmailEnabled bool `mapstructure:"email_enabled"`

	// SocketEnabled toggles the realtime delivery channel.
	SocketEnabled bool `mapstructure:"socket_enabled"`
}
