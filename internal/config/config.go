package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	App              App              `mapstructure:",squash"`
	Server           Server           `mapstructure:",squash"`
	Database         Database         `mapstructure:",squash"`
	Email            Email            `mapstructure:",squash"`
	MonthlyReminder  MonthlyReminder  `mapstructure:",squash"`
	DeadlineReminder DeadlineReminder `mapstructure:",squash"`
	SecretKey        string           `mapstructure:"secret_key"`
}

type App struct {
	LogLevel string `mapstructure:"log_level"`
}

type Server struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

type Database struct {
	DSN      string `mapstructure:"-"`
	Driver   string `mapstructure:"database_driver"`
	Password string `mapstructure:"database_password"`
	URL      string `mapstructure:"database_url"`
	User     string `mapstructure:"database_user"`
}

type Email struct {
	Enabled        bool   `mapstructure:"email_enabled"`
	SendgridAPIKey string `mapstructure:"sendgrid_api_key"`
	FromName       string `mapstructure:"email_from_name"`
	FromAddress    string `mapstructure:"email_from_address"`
}

type MonthlyReminder struct {
	CronSchedule string `mapstructure:"monthly_reminder_cron"`
	Enabled      bool   `mapstructure:"monthly_reminder_enabled"`
}

type DeadlineReminder struct {
	CronSchedule string `mapstructure:"deadline_reminder_cron"`
	Enabled      bool   `mapstructure:"deadline_reminder_enabled"`
	DeadlineDay  int    `mapstructure:"deadline_reminder_day"`
	DaysBefore   int    `mapstructure:"deadline_reminder_days_before"`
}

func SetDefaults() {
	viper.SetDefault("HOST", "localhost")
	viper.SetDefault("PORT", 8000)

	viper.SetDefault("DATABASE_DRIVER", "postgres")
	viper.SetDefault("DATABASE_URL", "localhost:5432/tourism")
	viper.SetDefault("DATABASE_USER", "postgres")
	viper.SetDefault("DATABASE_PASSWORD", "root")

	viper.SetDefault("SECRET_KEY", "your_secret_key")

	viper.SetDefault("EMAIL_ENABLED", false)
	viper.SetDefault("SENDGRID_API_KEY", "")
	viper.SetDefault("EMAIL_FROM_NAME", "Tourism Data Management System")
	viper.SetDefault("EMAIL_FROM_ADDRESS", "noreply@tourismdata.local")

	// Reminder to file last month's report, every 1st at 08:00
	viper.SetDefault("MONTHLY_REMINDER_CRON", "0 8 1 * *")
	viper.SetDefault("MONTHLY_REMINDER_ENABLED", false)

	// Deadline nag, daily at 08:00, active only near the filing deadline
	viper.SetDefault("DEADLINE_REMINDER_CRON", "0 8 * * *")
	viper.SetDefault("DEADLINE_REMINDER_ENABLED", false)
	viper.SetDefault("DEADLINE_REMINDER_DAY", 10)
	viper.SetDefault("DEADLINE_REMINDER_DAYS_BEFORE", 3)

	viper.SetDefault("LOG_LEVEL", "debug")
}

func NewConfig() (*Config, error) {
	loadEnvFile()

	config := &Config{}

	SetDefaults()

	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logrus.Info("no .env readable by viper, relying on environment: ", err)
	}

	err := viper.Unmarshal(&config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, err
	}

	config.Database.DSN = fmt.Sprintf(
		"%s://%s:%s@%s",
		config.Database.Driver,
		config.Database.User,
		config.Database.Password,
		config.Database.URL,
	)

	return config, nil
}

// loadEnvFile loads .env from the working directory or a few parents, for
// local runs; in deployed environments everything comes from real env vars.
func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("could not determine working directory: ", err)
		return
	}

	locations := []string{
		filepath.Join(cwd, ".env"),
		filepath.Join(filepath.Dir(cwd), ".env"),
		filepath.Join(cwd, "../../.env"),
	}

	for _, location := range locations {
		if err := godotenv.Load(location); err == nil {
			logrus.Info("loaded .env from ", location)
			return
		}
	}
}
