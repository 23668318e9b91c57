// photo.go — сервис фотографий: загрузка в object storage с генерацией
// миниатюры, листинг с подписанными URL, удаление.
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // регистрация PNG-декодера для image.Decode
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/nfnt/resize"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/fotoalbum/internal/domain/model"
	"github.com/bigkaa/fotoalbum/internal/repository"
	"github.com/bigkaa/fotoalbum/internal/storage"
)

// Качество JPEG миниатюр.
const thumbJPEGQuality = 80

// Prometheus-метрики загрузки фотографий.
var (
	photoUploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fa_photo_uploads_total",
		Help: "Общее количество загрузок фотографий (по статусу).",
	}, []string{"status"})

	photoUploadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fa_photo_upload_duration_seconds",
		Help:    "Длительность загрузки фотографии (включая миниатюру).",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	})
)

// PhotoService — сервис фотографий.
type PhotoService struct {
	photos   repository.PhotoRepository
	albums   repository.AlbumRepository
	store    storage.ObjectStorage
	cache    *CacheService
	urlTTL   time.Duration
	maxSize  int64
	thumbMax int
	logger   *slog.Logger
}

// NewPhotoService создаёт сервис фотографий.
// maxSize — максимальный размер загружаемого файла в байтах.
// thumbMax — максимальная сторона миниатюры в пикселях.
func NewPhotoService(
	photos repository.PhotoRepository,
	albums repository.AlbumRepository,
	store storage.ObjectStorage,
	cache *CacheService,
	urlTTL time.Duration,
	maxSize int64,
	thumbMax int,
	logger *slog.Logger,
) *PhotoService {
	return &PhotoService{
		photos:   photos,
		albums:   albums,
		store:    store,
		cache:    cache,
		urlTTL:   urlTTL,
		maxSize:  maxSize,
		thumbMax: thumbMax,
		logger:   logger.With(slog.String("component", "photo_service")),
	}
}

// Upload загружает фотографию в альбом владельца.
//
// Pipeline:
//  1. Проверка размера и формата (sniffing содержимого, только JPEG/PNG)
//  2. Генерация миниатюры (nfnt/resize, JPEG)
//  3. Загрузка оригинала и миниатюры в object storage
//  4. Вставка строки в БД, инвалидация кэша снимков
func (s *PhotoService) Upload(ctx context.Context, ownerID, albumID, caption string, data []byte) (*model.Photo, error) {
	start := time.Now()

	if _, err := s.ownedAlbum(ctx, ownerID, albumID); err != nil {
		photoUploadsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	if int64(len(data)) > s.maxSize {
		photoUploadsTotal.WithLabelValues("too_large").Inc()
		return nil, ErrFileTooLarge
	}

	// Формат определяется по содержимому, а не по имени файла
	contentType := http.DetectContentType(data)
	var ext string
	switch contentType {
	case "image/jpeg":
		ext = ".jpg"
	case "image/png":
		ext = ".png"
	default:
		photoUploadsTotal.WithLabelValues("bad_format").Inc()
		return nil, ErrUnsupportedFormat
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		photoUploadsTotal.WithLabelValues("bad_format").Inc()
		return nil, ErrUnsupportedFormat
	}

	photoID := uuid.New().String()
	storageKey := fmt.Sprintf("photos/%s/%s%s", albumID, photoID, ext)
	thumbKey := fmt.Sprintf("thumbs/%s/%s.jpg", albumID, photoID)

	// Миниатюра: вписывается в квадрат thumbMax x thumbMax с сохранением пропорций
	thumb := resize.Thumbnail(uint(s.thumbMax), uint(s.thumbMax), img, resize.Lanczos3)
	var thumbBuf bytes.Buffer
	if err := jpeg.Encode(&thumbBuf, thumb, &jpeg.Options{Quality: thumbJPEGQuality}); err != nil {
		photoUploadsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("кодирование миниатюры: %w", err)
	}

	if err := s.store.Upload(ctx, storageKey, contentType, bytes.NewReader(data)); err != nil {
		photoUploadsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("загрузка оригинала: %w", err)
	}
	if err := s.store.Upload(ctx, thumbKey, "image/jpeg", &thumbBuf); err != nil {
		// Оригинал уже в storage — миниатюра не критична, откат не нужен
		s.logger.Error("Ошибка загрузки миниатюры",
			slog.String("key", thumbKey),
			slog.String("error", err.Error()),
		)
		thumbKey = ""
	}

	photo := &model.Photo{
		ID:          photoID,
		AlbumID:     albumID,
		StorageKey:  storageKey,
		ThumbKey:    thumbKey,
		Caption:     caption,
		ContentType: contentType,
		Size:        int64(len(data)),
	}
	if err := s.photos.Create(ctx, photo); err != nil {
		photoUploadsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("сохранение фотографии: %w", err)
	}
	s.cache.Delete(albumID)

	photoUploadsTotal.WithLabelValues("success").Inc()
	photoUploadDuration.Observe(time.Since(start).Seconds())
	s.logger.Info("Фотография загружена",
		slog.String("photo_id", photoID),
		slog.String("album_id", albumID),
		slog.Int("size", len(data)),
	)
	return photo, nil
}

// List возвращает фотографии альбома владельца с подписанными URL.
// Использует тот же единый batch-вызов, что и share-резолвер.
func (s *PhotoService) List(ctx context.Context, ownerID, albumID string) ([]model.SharedPhoto, error) {
	if _, err := s.ownedAlbum(ctx, ownerID, albumID); err != nil {
		return nil, err
	}

	photos, err := s.photos.ListByAlbum(ctx, albumID)
	if err != nil {
		return nil, fmt.Errorf("получение фотографий: %w", err)
	}

	keys := make([]string, 0, len(photos)*2)
	for _, p := range photos {
		keys = append(keys, p.StorageKey)
		if p.ThumbKey != "" {
			keys = append(keys, p.ThumbKey)
		}
	}

	urls, err := s.store.SignedURLs(ctx, keys, s.urlTTL)
	if err != nil {
		return nil, fmt.Errorf("выдача подписанных URL: %w", err)
	}

	result := make([]model.SharedPhoto, 0, len(photos))
	for _, p := range photos {
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
		result = append(result, sp)
	}
	return result, nil
}

// Delete удаляет фотографию владельца: строку из БД и объекты из storage
// (best-effort, ошибки логируются).
func (s *PhotoService) Delete(ctx context.Context, ownerID, photoID string) error {
	photo, err := s.photos.GetByID(ctx, photoID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPhotoNotFound
		}
		return fmt.Errorf("получение фотографии: %w", err)
	}

	if _, err := s.ownedAlbum(ctx, ownerID, photo.AlbumID); err != nil {
		return err
	}

	if err := s.photos.Delete(ctx, photoID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPhotoNotFound
		}
		return fmt.Errorf("удаление фотографии: %w", err)
	}
	s.cache.Delete(photo.AlbumID)

	// Best-effort очистка object storage
	for _, key := range []string{photo.StorageKey, photo.ThumbKey} {
		if key == "" {
			continue
		}
		if err := s.store.Delete(ctx, key); err != nil {
			s.logger.Error("Ошибка удаления объекта из storage",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.Info("Фотография удалена",
		slog.String("photo_id", photoID),
		slog.String("album_id", photo.AlbumID),
	)
	return nil
}

// ownedAlbum возвращает альбом, если он существует и принадлежит ownerID.
func (s *PhotoService) ownedAlbum(ctx context.Context, ownerID, albumID string) (*model.Album, error) {
	album, err := s.albums.GetByID(ctx, albumID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAlbumNotFound
		}
		return nil, fmt.Errorf("получение альбома: %w", err)
	}
	if album.OwnerID != ownerID {
		return nil, ErrNotOwner
	}
	return album, nil
}
