// album.go — сервис альбомов: CRUD поверх реляционного хранилища.
// Логики здесь намеренно мало — прямые вызовы репозитория с проверкой
// владельца и инвалидацией кэша снимков.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/bigkaa/fotoalbum/internal/domain/model"
	"github.com/bigkaa/fotoalbum/internal/repository"
	"github.com/bigkaa/fotoalbum/internal/storage"
)

// AlbumParams — изменяемые поля альбома.
type AlbumParams struct {
	Title        string
	Description  string
	CoverPhotoID *string
	IsPublic     bool
	Category     string
}

// AlbumService — сервис альбомов.
type AlbumService struct {
	albums repository.AlbumRepository
	photos repository.PhotoRepository
	store  storage.ObjectStorage
	cache  *CacheService
	logger *slog.Logger
}

// NewAlbumService создаёт сервис альбомов.
func NewAlbumService(
	albums repository.AlbumRepository,
	photos repository.PhotoRepository,
	store storage.ObjectStorage,
	cache *CacheService,
	logger *slog.Logger,
) *AlbumService {
	return &AlbumService{
		albums: albums,
		photos: photos,
		store:  store,
		cache:  cache,
		logger: logger.With(slog.String("component", "album_service")),
	}
}

// Create создаёт новый альбом владельца.
func (s *AlbumService) Create(ctx context.Context, ownerID string, params AlbumParams) (*model.Album, error) {
	category := params.Category
	if category == "" {
		category = "other"
	}

	album := &model.Album{
		ID:          uuid.New().String(),
		OwnerID:     ownerID,
		Title:       params.Title,
		Description: params.Description,
		IsPublic:    params.IsPublic,
		Category:    category,
	}
	if err := s.albums.Create(ctx, album); err != nil {
		return nil, fmt.Errorf("создание альбома: %w", err)
	}

	s.logger.Info("Альбом создан",
		slog.String("album_id", album.ID),
		slog.String("owner_id", ownerID),
	)
	return album, nil
}

// Get возвращает альбом владельца.
func (s *AlbumService) Get(ctx context.Context, ownerID, albumID string) (*model.Album, error) {
	album, err := s.getOwned(ctx, ownerID, albumID)
	if err != nil {
		return nil, err
	}
	return album, nil
}

// List возвращает все альбомы владельца, новые первыми.
func (s *AlbumService) List(ctx context.Context, ownerID string) ([]*model.Album, error) {
	albums, err := s.albums.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("получение альбомов: %w", err)
	}
	return albums, nil
}

// Update обновляет изменяемые поля альбома и инвалидирует кэш снимков.
func (s *AlbumService) Update(ctx context.Context, ownerID, albumID string, params AlbumParams) (*model.Album, error) {
	album, err := s.getOwned(ctx, ownerID, albumID)
	if err != nil {
		return nil, err
	}

	album.Title = params.Title
	album.Description = params.Description
	album.CoverPhotoID = params.CoverPhotoID
	album.IsPublic = params.IsPublic
	if params.Category != "" {
		album.Category = params.Category
	}

	if err := s.albums.Update(ctx, album); err != nil {
		return nil, fmt.Errorf("обновление альбома: %w", err)
	}
	s.cache.Delete(albumID)

	return album, nil
}

// Delete удаляет альбом. Строки фотографий и share-ссылки удаляются
// каскадно схемой; объекты в storage удаляются best-effort — ошибка
// удаления объекта логируется, но не отменяет удаление альбома.
func (s *AlbumService) Delete(ctx context.Context, ownerID, albumID string) error {
	if _, err := s.getOwned(ctx, ownerID, albumID); err != nil {
		return err
	}

	photos, err := s.photos.ListByAlbum(ctx, albumID)
	if err != nil {
		return fmt.Errorf("получение фотографий альбома: %w", err)
	}

	if err := s.albums.Delete(ctx, albumID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAlbumNotFound
		}
		return fmt.Errorf("удаление альбома: %w", err)
	}
	s.cache.Delete(albumID)

	// Best-effort очистка object storage
	for _, p := range photos {
		s.deleteObject(ctx, p.StorageKey)
		s.deleteObject(ctx, p.ThumbKey)
	}

	s.logger.Info("Альбом удалён",
		slog.String("album_id", albumID),
		slog.Int("photos", len(photos)),
	)
	return nil
}

// getOwned возвращает альбом, если он существует и принадлежит ownerID.
func (s *AlbumService) getOwned(ctx context.Context, ownerID, albumID string) (*model.Album, error) {
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

// deleteObject удаляет объект из storage, логируя ошибку вместо возврата.
func (s *AlbumService) deleteObject(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.store.Delete(ctx, key); err != nil {
		s.logger.Error("Ошибка удаления объекта из storage",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}
