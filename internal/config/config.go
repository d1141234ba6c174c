package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	DBUser        string
	DBPassword    string
	DBName        string
	DBHost        string
	DBPort        string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	BotToken      string

	// Economy. Cooldowns are in seconds.
	FarmCooldown  int64
	BonusCooldown int64
	FarmReward    int64
	BonusReward   int64
	ReferralBonus int64

	ReminderInterval time.Duration

	LogLevel  string
	LogFormat string
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, using system environment variables")
	}

	return &Config{
		DBUser:           getEnv("DB_USER", "postgres"),
		DBPassword:       getEnv("DB_PASSWORD", "postgres"),
		DBName:           getEnv("DB_NAME", "stars_bot"),
		DBHost:           getEnv("DB_HOST", "localhost"),
		DBPort:           getEnv("DB_PORT", "5432"),
		RedisHost:        getEnv("REDIS_HOST", "localhost"),
		RedisPort:        getEnv("REDIS_PORT", "6379"),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		BotToken:         getEnv("TELEGRAM_BOT_TOKEN", ""),
		FarmCooldown:     getEnvInt("FARM_COOLDOWN", 60),
		BonusCooldown:    getEnvInt("BONUS_COOLDOWN", 3600),
		FarmReward:       getEnvInt("FARM_REWARD", 1),
		BonusReward:      getEnvInt("BONUS_REWARD", 5),
		ReferralBonus:    getEnvInt("REFERRAL_BONUS", 10),
		ReminderInterval: getEnvDuration("REMINDER_INTERVAL", 5*time.Minute),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "text"),
	}
}

// Validate reports settings the bot cannot start without.
func (c *Config) Validate() error {
	if c.BotToken == "" {
		return errors.New("TELEGRAM_BOT_TOKEN is required")
	}
	return nil
}

// ConfigureLogger applies the log level and formatter to the standard logrus logger.
func (c *Config) ConfigureLogger() {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if c.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int64) int64 {
	raw, exists := os.LookupEnv(key)
	if !exists || raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || parsed < 0 {
		log.WithField("key", key).Warnf("Invalid integer %q, using default %d", raw, fallback)
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	raw, exists := os.LookupEnv(key)
	if !exists || raw == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		log.WithField("key", key).Warnf("Invalid duration %q, using default %s", raw, fallback)
		return fallback
	}
	return parsed
}
