package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/bigkaa/fotoalbum/internal/domain/model"
)

// newTestAlbumService создаёт AlbumService с переданными моками.
func newTestAlbumService(albums *mockAlbumRepo, photos *mockPhotoRepo, store *mockStorage) *AlbumService {
	cache := NewCacheService(100, 5*time.Minute)
	return NewAlbumService(albums, photos, store, cache, slog.Default())
}

// TestAlbumService_Create проверяет создание альбома: UUID, владелец,
// категория по умолчанию.
func TestAlbumService_Create(t *testing.T) {
	var created *model.Album
	albums := &mockAlbumRepo{
		createFn: func(_ context.Context, a *model.Album) error {
			created = a
			return nil
		},
	}

	svc := newTestAlbumService(albums, &mockPhotoRepo{}, &mockStorage{})

	album, err := svc.Create(context.Background(), "owner-1", AlbumParams{Title: "Новый год"})
	if err != nil {
		t.Fatalf("Create ошибка: %v", err)
	}

	if created == nil {
		t.Fatal("репозиторий Create не был вызван")
	}
	if album.ID == "" {
		t.Error("ID альбома пустой, ожидался UUID")
	}
	if album.OwnerID != "owner-1" {
		t.Errorf("OwnerID = %q, ожидался owner-1", album.OwnerID)
	}
	if album.Category != "other" {
		t.Errorf("Category = %q, ожидалась категория по умолчанию other", album.Category)
	}
}

// TestAlbumService_Get_NotOwner проверяет запрет чтения чужого альбома.
func TestAlbumService_Get_NotOwner(t *testing.T) {
	albums := &mockAlbumRepo{
		getByIDFn: func(_ context.Context, _ string) (*model.Album, error) {
			return &model.Album{ID: "album-1", OwnerID: "owner-1"}, nil
		},
	}

	svc := newTestAlbumService(albums, &mockPhotoRepo{}, &mockStorage{})

	_, err := svc.Get(context.Background(), "intruder", "album-1")
	if !errors.Is(err, ErrNotOwner) {
		t.Fatalf("err = %v, ожидался ErrNotOwner", err)
	}
}

// TestAlbumService_Get_Unknown проверяет ErrAlbumNotFound.
func TestAlbumService_Get_Unknown(t *testing.T) {
	svc := newTestAlbumService(&mockAlbumRepo{}, &mockPhotoRepo{}, &mockStorage{})

	_, err := svc.Get(context.Background(), "owner-1", "no-such")
	if !errors.Is(err, ErrAlbumNotFound) {
		t.Fatalf("err = %v, ожидался ErrAlbumNotFound", err)
	}
}

// TestAlbumService_Delete проверяет удаление альбома вместе с объектами
// storage (best-effort).
func TestAlbumService_Delete(t *testing.T) {
	albums := &mockAlbumRepo{
		getByIDFn: func(_ context.Context, _ string) (*model.Album, error) {
			return &model.Album{ID: "album-1", OwnerID: "owner-1"}, nil
		},
	}
	photos := &mockPhotoRepo{
		listByAlbumFn: func(_ context.Context, _ string) ([]*model.Photo, error) {
			return []*model.Photo{
				{ID: "p1", StorageKey: "photos/album-1/p1.jpg", ThumbKey: "thumbs/album-1/p1.jpg"},
				{ID: "p2", StorageKey: "photos/album-1/p2.jpg"},
			}, nil
		},
	}

	var deletedKeys []string
	store := &mockStorage{
		deleteFn: func(_ context.Context, key string) error {
			deletedKeys = append(deletedKeys, key)
			return nil
		},
	}

	svc := newTestAlbumService(albums, photos, store)

	if err := svc.Delete(context.Background(), "owner-1", "album-1"); err != nil {
		t.Fatalf("Delete ошибка: %v", err)
	}

	// p1: оригинал + миниатюра, p2: только оригинал (thumb_key пустой)
	if len(deletedKeys) != 3 {
		t.Errorf("удалено объектов: %d, ожидалось 3", len(deletedKeys))
	}
}

// TestAlbumService_Delete_StorageErrorNotFatal проверяет, что ошибка
// удаления объекта из storage не отменяет удаление альбома.
func TestAlbumService_Delete_StorageErrorNotFatal(t *testing.T) {
	albums := &mockAlbumRepo{
		getByIDFn: func(_ context.Context, _ string) (*model.Album, error) {
			return &model.Album{ID: "album-1", OwnerID: "owner-1"}, nil
		},
	}
	photos := &mockPhotoRepo{
		listByAlbumFn: func(_ context.Context, _ string) ([]*model.Photo, error) {
			return []*model.Photo{{ID: "p1", StorageKey: "photos/album-1/p1.jpg"}}, nil
		},
	}
	store := &mockStorage{
		deleteFn: func(_ context.Context, _ string) error {
			return errors.New("storage недоступен")
		},
	}

	svc := newTestAlbumService(albums, photos, store)

	if err := svc.Delete(context.Background(), "owner-1", "album-1"); err != nil {
		t.Fatalf("Delete должен завершиться успешно несмотря на ошибку storage: %v", err)
	}
}

// TestAlbumService_Update проверяет обновление изменяемых полей.
func TestAlbumService_Update(t *testing.T) {
	albums := &mockAlbumRepo{
		getByIDFn: func(_ context.Context, _ string) (*model.Album, error) {
			return &model.Album{ID: "album-1", OwnerID: "owner-1", Title: "Старый", Category: "other"}, nil
		},
	}

	svc := newTestAlbumService(albums, &mockPhotoRepo{}, &mockStorage{})

	album, err := svc.Update(context.Background(), "owner-1", "album-1", AlbumParams{
		Title:    "Новый",
		IsPublic: true,
		Category: "family",
	})
	if err != nil {
		t.Fatalf("Update ошибка: %v", err)
	}
	if album.Title != "Новый" {
		t.Errorf("Title = %q, ожидался Новый", album.Title)
	}
	if !album.IsPublic {
		t.Error("IsPublic = false, ожидался true")
	}
	if album.Category != "family" {
		t.Errorf("Category = %q, ожидалась family", album.Category)
	}
}
