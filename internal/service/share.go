// share.go — сервис share-ссылок: выпуск, отзыв и разрешение токена
// в готовый к рендерингу read-only снимок альбома.
// Полный pipeline разрешения: токен → валидность → альбом + фотографии →
// batch подписанных URL → составной ответ.
package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/fotoalbum/internal/domain/model"
	"github.com/bigkaa/fotoalbum/internal/repository"
	"github.com/bigkaa/fotoalbum/internal/storage"
)

// shareTokenBytes — количество случайных байт share-токена.
// 16 байт = 128 бит энтропии: коллизии пренебрежимы без retry-цикла,
// уникальный индекс в схеме остаётся страховкой.
const shareTokenBytes = 16

// Prometheus-метрики share-резолвера.
var (
	shareResolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fa_share_resolutions_total",
		Help: "Общее количество разрешений share-токенов (по статусу).",
	}, []string{"status"})

	shareResolutionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fa_share_resolution_duration_seconds",
		Help:    "Длительность разрешения share-токена.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	})
)

// ShareService — сервис share-ссылок.
type ShareService struct {
	shares repository.ShareLinkRepository
	albums repository.AlbumRepository
	photos repository.PhotoRepository
	store  storage.ObjectStorage
	cache  *CacheService
	urlTTL time.Duration
	logger *slog.Logger

	// now подменяется в тестах для проверки границ expires_at.
	now func() time.Time
}

// NewShareService создаёт сервис share-ссылок.
// urlTTL — срок действия подписанных URL в share-ответах.
func NewShareService(
	shares repository.ShareLinkRepository,
	albums repository.AlbumRepository,
	photos repository.PhotoRepository,
	store storage.ObjectStorage,
	cache *CacheService,
	urlTTL time.Duration,
	logger *slog.Logger,
) *ShareService {
	return &ShareService{
		shares: shares,
		albums: albums,
		photos: photos,
		store:  store,
		cache:  cache,
		urlTTL: urlTTL,
		logger: logger.With(slog.String("component", "share_service")),
		now:    time.Now,
	}
}

// Resolve разрешает share-токен в полностью гидрированный снимок альбома.
//
// Pipeline:
//  1. ShareLink по точному совпадению токена (нет → ErrShareNotFound)
//  2. Инвариант действительности: disabled = false И expires_at не в прошлом
//     (нарушен → ErrShareForbidden)
//  3. Альбом по share.AlbumID (нет → ErrAlbumNotFound)
//  4. Фотографии альбома по created_at ASC (пустой список — валидный результат)
//  5. ОДИН batch-запрос подписанных URL на все ключи (оригиналы + миниатюры)
//  6. Корреляция результата строго по ключу через map: ключ, опущенный
//     подписывающей стороной, даёт signed_url = null у фотографии,
//     а не ошибку всего ответа
//
// Токен при чтении не расходуется: ссылка переиспользуема до истечения
// срока или отзыва. Повторное разрешение не имеет побочных эффектов.
func (s *ShareService) Resolve(ctx context.Context, token string) (*model.ShareView, error) {
	start := time.Now()
	defer func() {
		shareResolutionDuration.Observe(time.Since(start).Seconds())
	}()

	// 1. Поиск ссылки по токену
	link, err := s.shares.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			shareResolutionsTotal.WithLabelValues("not_found").Inc()
			return nil, ErrShareNotFound
		}
		shareResolutionsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("поиск share-ссылки: %w", err)
	}

	// 2. Инвариант действительности
	if !link.IsValid(s.now()) {
		shareResolutionsTotal.WithLabelValues("forbidden").Inc()
		return nil, ErrShareForbidden
	}

	// 3-4. Альбом + упорядоченные фотографии (кэш или БД)
	snap, err := s.getSnapshot(ctx, link.AlbumID)
	if err != nil {
		if errors.Is(err, ErrAlbumNotFound) {
			shareResolutionsTotal.WithLabelValues("album_not_found").Inc()
			return nil, err
		}
		shareResolutionsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	// 5. Batch подписанных URL: оригиналы и миниатюры в одном вызове
	keys := make([]string, 0, len(snap.Photos)*2)
	for _, p := range snap.Photos {
		keys = append(keys, p.StorageKey)
		if p.ThumbKey != "" {
			keys = append(keys, p.ThumbKey)
		}
	}

	urls, err := s.store.SignedURLs(ctx, keys, s.urlTTL)
	if err != nil {
		shareResolutionsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("выдача подписанных URL: %w", err)
	}

	// 6. Сборка ответа с корреляцией по ключу
	view := &model.ShareView{
		Album: model.SharedAlbum{
			Title:        snap.Album.Title,
			Description:  snap.Album.Description,
			Category:     snap.Album.Category,
			CoverPhotoID: snap.Album.CoverPhotoID,
		},
		Photos:     make([]model.SharedPhoto, 0, len(snap.Photos)),
		Permission: link.Permission,
	}

	for _, p := range snap.Photos {
		sp := model.SharedPhoto{
			ID:         p.ID,
			Caption:    p.Caption,
			CreatedAt:  p.CreatedAt,
			StorageKey: p.StorageKey,
		}
		if u, ok := urls[p.StorageKey]; ok {
			sp.SignedURL = &u
		}
		if u, ok := urls[p.ThumbKey]; ok {
			sp.ThumbURL = &u
		}
		view.Photos = append(view.Photos, sp)
	}

	shareResolutionsTotal.WithLabelValues("success").Inc()
	s.logger.Debug("Share-токен разрешён",
		slog.String("album_id", link.AlbumID),
		slog.Int("photos", len(view.Photos)),
	)

	return view, nil
}

// CreateLink выпускает новую share-ссылку на альбом владельца.
// Токен — hex от shareTokenBytes случайных байт, permission = viewer,
// expiresAt опционален (nil — бессрочная ссылка).
func (s *ShareService) CreateLink(ctx context.Context, ownerID, albumID string, expiresAt *time.Time) (*model.ShareLink, error) {
	if err := s.checkOwner(ctx, ownerID, albumID); err != nil {
		return nil, err
	}

	token, err := generateShareToken()
	if err != nil {
		return nil, fmt.Errorf("генерация share-токена: %w", err)
	}

	link := &model.ShareLink{
		Token:      token,
		AlbumID:    albumID,
		Permission: model.PermissionViewer,
		ExpiresAt:  expiresAt,
		Disabled:   false,
	}
	if err := s.shares.Create(ctx, link); err != nil {
		return nil, fmt.Errorf("создание share-ссылки: %w", err)
	}

	s.logger.Info("Share-ссылка создана",
		slog.String("album_id", albumID),
	)
	return link, nil
}

// DisableLink отзывает share-ссылку (disabled = true). Единственная
// мутация существующей ссылки.
func (s *ShareService) DisableLink(ctx context.Context, ownerID, albumID, token string) error {
	if err := s.checkOwner(ctx, ownerID, albumID); err != nil {
		return err
	}

	if err := s.shares.Disable(ctx, albumID, token); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrShareNotFound
		}
		return fmt.Errorf("отзыв share-ссылки: %w", err)
	}

	s.logger.Info("Share-ссылка отозвана",
		slog.String("album_id", albumID),
	)
	return nil
}

// ListLinks возвращает все share-ссылки альбома владельца.
func (s *ShareService) ListLinks(ctx context.Context, ownerID, albumID string) ([]*model.ShareLink, error) {
	if err := s.checkOwner(ctx, ownerID, albumID); err != nil {
		return nil, err
	}
	links, err := s.shares.ListByAlbum(ctx, albumID)
	if err != nil {
		return nil, fmt.Errorf("получение share-ссылок: %w", err)
	}
	return links, nil
}

// getSnapshot возвращает снимок альбома (метаданные + упорядоченные
// фотографии) из кэша или БД.
func (s *ShareService) getSnapshot(ctx context.Context, albumID string) (*model.AlbumSnapshot, error) {
	if snap, ok := s.cache.Get(albumID); ok {
		return snap, nil
	}

	album, err := s.albums.GetByID(ctx, albumID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAlbumNotFound
		}
		return nil, fmt.Errorf("получение альбома: %w", err)
	}

	photos, err := s.photos.ListByAlbum(ctx, albumID)
	if err != nil {
		return nil, fmt.Errorf("получение фотографий: %w", err)
	}

	snap := &model.AlbumSnapshot{Album: album, Photos: photos}
	s.cache.Set(albumID, snap)
	return snap, nil
}

// checkOwner проверяет, что альбом существует и принадлежит ownerID.
func (s *ShareService) checkOwner(ctx context.Context, ownerID, albumID string) error {
	album, err := s.albums.GetByID(ctx, albumID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAlbumNotFound
		}
		return fmt.Errorf("получение альбома: %w", err)
	}
	if album.OwnerID != ownerID {
		return ErrNotOwner
	}
	return nil
}

// generateShareToken генерирует непрозрачный share-токен:
// hex-строка от shareTokenBytes криптографически случайных байт.
func generateShareToken() (string, error) {
	buf := make([]byte, shareTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
