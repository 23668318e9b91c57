// Пакет config — загрузка и валидация конфигурации Fotoalbum
// из переменных окружения.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Config содержит все параметры конфигурации сервиса Fotoalbum.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string

	// --- HTTP Server Timeouts ---

	// Таймаут чтения HTTP-сервера (по умолчанию 30s)
	HTTPReadTimeout time.Duration
	// Таймаут записи HTTP-сервера (по умолчанию 60s)
	HTTPWriteTimeout time.Duration
	// Таймаут простоя HTTP-сервера (по умолчанию 120s)
	HTTPIdleTimeout time.Duration
	// Таймаут graceful shutdown (по умолчанию 5s)
	ShutdownTimeout time.Duration

	// --- PostgreSQL ---

	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	// --- Object storage (S3-совместимое) ---

	// Endpoint S3 API (пустой — AWS по региону)
	S3Endpoint string
	// Регион
	S3Region string
	// Имя bucket с фотографиями
	S3Bucket string
	// Ключи доступа
	S3AccessKey string
	S3SecretKey string
	// Срок действия подписанных URL (по умолчанию 3600s — контракт share-ответа)
	SignedURLTTL time.Duration

	// --- Identity provider (passwordless email) ---

	// Базовый URL identity provider
	IDPURL string
	// Сервисный API-ключ для magic-link endpoint
	IDPAPIKey string
	// URL JWKS endpoint для валидации JWT
	JWTJWKSURL string
	// Ожидаемый issuer JWT (пустой — не проверяется)
	JWTIssuer string
	// Допустимое отклонение времени при проверке JWT
	JWTLeeway time.Duration
	// Интервал обновления JWKS-ключей
	JWKSRefreshInterval time.Duration
	// Таймаут HTTP-клиента JWKS
	JWKSClientTimeout time.Duration

	// --- Кэш снимков альбомов ---

	// Максимальное количество записей в LRU-кэше
	CacheSize int
	// TTL записи кэша
	CacheTTL time.Duration

	// --- Ограничения загрузки ---

	// Максимальный размер загружаемой фотографии (байт)
	MaxUploadSize int64
	// Максимальная сторона миниатюры (px)
	ThumbMaxSide int
}

// Load загружает конфигурацию из переменных окружения.
// Возвращает ошибку, если обязательные переменные не заданы
// или значения некорректны.
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// --- Сервер ---

	// FA_PORT — порт HTTP-сервера (по умолчанию 8080)
	cfg.Port, err = getEnvInt("FA_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("FA_PORT: %w", err)
	}

	// FA_LOG_LEVEL — уровень логирования (по умолчанию info)
	logLevel := getEnvDefault("FA_LOG_LEVEL", "info")
	cfg.LogLevel, err = parseLogLevel(logLevel)
	if err != nil {
		return nil, fmt.Errorf("FA_LOG_LEVEL: %w", err)
	}

	// FA_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("FA_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("FA_LOG_FORMAT: недопустимый формат %q, допустимые: json, text", cfg.LogFormat)
	}

	// --- HTTP Server Timeouts ---

	cfg.HTTPReadTimeout, err = getEnvDuration("FA_HTTP_READ_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("FA_HTTP_READ_TIMEOUT: %w", err)
	}
	cfg.HTTPWriteTimeout, err = getEnvDuration("FA_HTTP_WRITE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("FA_HTTP_WRITE_TIMEOUT: %w", err)
	}
	cfg.HTTPIdleTimeout, err = getEnvDuration("FA_HTTP_IDLE_TIMEOUT", 120*time.Second)
	if err != nil {
		return nil, fmt.Errorf("FA_HTTP_IDLE_TIMEOUT: %w", err)
	}
	cfg.ShutdownTimeout, err = getEnvDuration("FA_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("FA_SHUTDOWN_TIMEOUT: %w", err)
	}

	// --- PostgreSQL ---

	cfg.DBHost = getEnvDefault("FA_DB_HOST", "localhost")
	cfg.DBPort, err = getEnvInt("FA_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("FA_DB_PORT: %w", err)
	}
	cfg.DBName = getEnvDefault("FA_DB_NAME", "fotoalbum")
	cfg.DBUser, err = getEnvRequired("FA_DB_USER")
	if err != nil {
		return nil, err
	}
	cfg.DBPassword, err = getEnvRequired("FA_DB_PASSWORD")
	if err != nil {
		return nil, err
	}
	cfg.DBSSLMode = getEnvDefault("FA_DB_SSLMODE", "disable")

	// --- Object storage ---

	cfg.S3Endpoint = getEnvDefault("FA_S3_ENDPOINT", "")
	cfg.S3Region = getEnvDefault("FA_S3_REGION", "us-east-1")
	cfg.S3Bucket, err = getEnvRequired("FA_S3_BUCKET")
	if err != nil {
		return nil, err
	}
	cfg.S3AccessKey, err = getEnvRequired("FA_S3_ACCESS_KEY")
	if err != nil {
		return nil, err
	}
	cfg.S3SecretKey, err = getEnvRequired("FA_S3_SECRET_KEY")
	if err != nil {
		return nil, err
	}

	// FA_SIGNED_URL_TTL — срок действия подписанных URL (по умолчанию 1h,
	// фиксированное окно 3600s из контракта share-ответа)
	cfg.SignedURLTTL, err = getEnvDuration("FA_SIGNED_URL_TTL", time.Hour)
	if err != nil {
		return nil, fmt.Errorf("FA_SIGNED_URL_TTL: %w", err)
	}
	if cfg.SignedURLTTL <= 0 {
		return nil, fmt.Errorf("FA_SIGNED_URL_TTL: значение должно быть > 0")
	}

	// --- Identity provider ---

	cfg.IDPURL, err = getEnvRequired("FA_IDP_URL")
	if err != nil {
		return nil, err
	}
	cfg.IDPAPIKey = getEnvDefault("FA_IDP_API_KEY", "")
	cfg.JWTJWKSURL, err = getEnvRequired("FA_JWT_JWKS_URL")
	if err != nil {
		return nil, err
	}
	cfg.JWTIssuer = getEnvDefault("FA_JWT_ISSUER", "")
	cfg.JWTLeeway, err = getEnvDuration("FA_JWT_LEEWAY", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("FA_JWT_LEEWAY: %w", err)
	}
	cfg.JWKSRefreshInterval, err = getEnvDuration("FA_JWKS_REFRESH_INTERVAL", 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("FA_JWKS_REFRESH_INTERVAL: %w", err)
	}
	cfg.JWKSClientTimeout, err = getEnvDuration("FA_JWKS_CLIENT_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("FA_JWKS_CLIENT_TIMEOUT: %w", err)
	}

	// --- Кэш ---

	cfg.CacheSize, err = getEnvInt("FA_CACHE_SIZE", 1024)
	if err != nil {
		return nil, fmt.Errorf("FA_CACHE_SIZE: %w", err)
	}
	cfg.CacheTTL, err = getEnvDuration("FA_CACHE_TTL", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("FA_CACHE_TTL: %w", err)
	}

	// --- Ограничения загрузки ---

	maxUpload, err := getEnvInt("FA_MAX_UPLOAD_SIZE", 10<<20)
	if err != nil {
		return nil, fmt.Errorf("FA_MAX_UPLOAD_SIZE: %w", err)
	}
	cfg.MaxUploadSize = int64(maxUpload)

	cfg.ThumbMaxSide, err = getEnvInt("FA_THUMB_MAX_SIDE", 320)
	if err != nil {
		return nil, fmt.Errorf("FA_THUMB_MAX_SIDE: %w", err)
	}

	return cfg, nil
}

// DatabaseDSN возвращает DSN для подключения pgx к PostgreSQL.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	return d, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
