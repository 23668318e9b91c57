// Точка входа Fotoalbum — сервис фотоальбомов с share-ссылками.
// Загружает конфигурацию, подключается к PostgreSQL, применяет миграции,
// инициализирует object storage и identity provider клиенты, создаёт
// сервисный слой и API handlers, запускает HTTP-сервер с JWT middleware
// и graceful shutdown.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/bigkaa/fotoalbum/internal/api/handlers"
	"github.com/bigkaa/fotoalbum/internal/api/middleware"
	"github.com/bigkaa/fotoalbum/internal/config"
	"github.com/bigkaa/fotoalbum/internal/database"
	"github.com/bigkaa/fotoalbum/internal/idclient"
	"github.com/bigkaa/fotoalbum/internal/repository"
	"github.com/bigkaa/fotoalbum/internal/server"
	"github.com/bigkaa/fotoalbum/internal/service"
	"github.com/bigkaa/fotoalbum/internal/storage"
)

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("Fotoalbum запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
	)

	// 3. Применение миграций БД
	logger.Info("Применение миграций БД...")
	if err := database.Migrate(cfg, logger); err != nil {
		logger.Error("Ошибка миграций БД", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Подключение к PostgreSQL (pgxpool)
	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Error("Ошибка подключения к PostgreSQL", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	// 5. Object storage (S3-совместимое)
	store, err := storage.New(storage.Options{
		Endpoint:  cfg.S3Endpoint,
		Region:    cfg.S3Region,
		Bucket:    cfg.S3Bucket,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
	}, logger)
	if err != nil {
		logger.Error("Ошибка создания object storage клиента", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Object storage клиент создан",
		slog.String("bucket", cfg.S3Bucket),
		slog.String("endpoint", cfg.S3Endpoint),
	)

	// 6. Identity provider клиент (passwordless email)
	idp := idclient.New(cfg.IDPURL, cfg.IDPAPIKey, 10*time.Second, logger)

	// 7. Repositories
	albumRepo := repository.NewAlbumRepository(pool)
	photoRepo := repository.NewPhotoRepository(pool)
	shareRepo := repository.NewShareLinkRepository(pool)

	// 8. Кэш снимков альбомов
	cache := service.NewCacheService(cfg.CacheSize, cfg.CacheTTL)

	// 9. Services
	albumSvc := service.NewAlbumService(albumRepo, photoRepo, store, cache, logger)
	photoSvc := service.NewPhotoService(
		photoRepo, albumRepo, store, cache,
		cfg.SignedURLTTL, cfg.MaxUploadSize, cfg.ThumbMaxSide,
		logger,
	)
	shareSvc := service.NewShareService(
		shareRepo, albumRepo, photoRepo, store, cache,
		cfg.SignedURLTTL,
		logger,
	)

	// 10. Readiness checkers (PostgreSQL + object storage + IdP)
	pgChecker := database.NewReadinessChecker(pool)
	s3Checker := storage.NewReadinessChecker(store)
	idpChecker := middleware.NewIDPReadinessChecker(cfg.JWTJWKSURL, cfg.JWKSClientTimeout)
	healthHandler := handlers.NewHealthHandler(pgChecker, s3Checker, idpChecker)

	// 11. API handlers
	apiHandler := handlers.NewAPIHandler(
		healthHandler,
		handlers.NewAuthHandler(idp, logger),
		handlers.NewAlbumHandler(albumSvc, logger),
		handlers.NewPhotoHandler(photoSvc, cfg.MaxUploadSize, logger),
		handlers.NewShareHandler(shareSvc, logger),
		logger,
	)

	// 12. JWT middleware
	jwtAuth, err := middleware.NewJWTAuth(
		cfg.JWTJWKSURL,
		cfg.JWTIssuer,
		cfg.JWKSClientTimeout,
		cfg.JWKSRefreshInterval,
		cfg.JWTLeeway,
		logger,
	)
	if err != nil {
		logger.Error("Ошибка создания JWT middleware", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("JWT middleware инициализирован",
		slog.String("jwks_url", cfg.JWTJWKSURL),
		slog.String("issuer", cfg.JWTIssuer),
	)

	// 13. HTTP-сервер с middleware.
	// Публичные пути исключаются из JWT: health, метрики, share-резолвер
	// и запрос magic-link.
	srv := server.New(cfg, logger, apiHandler,
		middleware.MetricsMiddleware(),
		middleware.RequestLogger(logger),
		server.JWTAuthWithExclusions(
			jwtAuth.Middleware(),
			"/health/",
			"/metrics",
			"/api/v1/share",
			"/api/v1/auth/magic-link",
		),
	)

	// 14. Запуск сервера (блокируется до сигнала завершения)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка HTTP-сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Fotoalbum остановлен")
}
