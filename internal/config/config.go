package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDSN          string
	Port           string
	Environment    string
	MigrationsPath string

	// Расчёт доступности
	Timezone          string
	LeadTimeMinutes   int
	ScheduleOpenHour  int
	ScheduleCloseHour int
	ScheduleBreakHour int

	// Проверка LINE-профиля
	LineProfileURL  string
	MockAuthEnabled bool

	// Уведомления администратору
	TelegramToken string
	AdminChatID   string

	// Внешний календарь
	GoogleAPIBase     string
	GoogleCalendarID  string
	GoogleAccessToken string
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	} else {
		log.Println("✅ Loaded configuration from .env file")
	}

	cfg := &Config{
		DBDSN:             os.Getenv("DB_DSN"),
		Port:              getEnv("PORT", "8080"),
		Environment:       getEnv("ENV", "development"),
		MigrationsPath:    getEnv("MIGRATIONS_PATH", "migrations"),
		Timezone:          getEnv("TIMEZONE", "Asia/Tokyo"),
		LeadTimeMinutes:   getEnvInt("BOOKING_LEAD_TIME_MINUTES", 60),
		ScheduleOpenHour:  getEnvInt("SCHEDULE_OPEN_HOUR", 10),
		ScheduleCloseHour: getEnvInt("SCHEDULE_CLOSE_HOUR", 19),
		ScheduleBreakHour: getEnvInt("SCHEDULE_BREAK_HOUR", 12),
		LineProfileURL:    getEnv("LINE_PROFILE_URL", "https://api.line.me/v2/profile"),
		MockAuthEnabled:   getEnvBool("MOCK_AUTH_ENABLED", false),
		TelegramToken:     os.Getenv("TELEGRAM_TOKEN"),
		AdminChatID:       os.Getenv("ADMIN_CHAT_ID"),
		GoogleAPIBase:     getEnv("GOOGLE_API_BASE", "https://www.googleapis.com/calendar/v3"),
		GoogleCalendarID:  os.Getenv("GOOGLE_CALENDAR_ID"),
		GoogleAccessToken: os.Getenv("GOOGLE_ACCESS_TOKEN"),
	}

	// Проверяем обязательные поля
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}

	if cfg.ScheduleOpenHour >= cfg.ScheduleCloseHour {
		return nil, fmt.Errorf("SCHEDULE_OPEN_HOUR must be before SCHEDULE_CLOSE_HOUR")
	}

	// Мок-авторизация никогда не работает в production
	if cfg.IsProduction() && cfg.MockAuthEnabled {
		log.Println("⚠️  MOCK_AUTH_ENABLED is ignored in production")
		cfg.MockAuthEnabled = false
	}

	log.Printf("Config loaded\n")

	return cfg, nil
}

// IsProduction проверяет, запущен ли сервис в production-окружении
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("⚠️  %s is not a number, using default %d", key, fallback)
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
