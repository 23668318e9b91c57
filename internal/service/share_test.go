package service

import (
	"context"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/bigkaa/fotoalbum/internal/domain/model"
	"github.com/bigkaa/fotoalbum/internal/repository"
)

// --- Моки репозиториев и storage для unit-тестов ---

// mockShareRepo — мок ShareLinkRepository.
type mockShareRepo struct {
	createFn      func(ctx context.Context, s *model.ShareLink) error
	getByTokenFn  func(ctx context.Context, token string) (*model.ShareLink, error)
	listByAlbumFn func(ctx context.Context, albumID string) ([]*model.ShareLink, error)
	disableFn     func(ctx context.Context, albumID, token string) error
}

func (m *mockShareRepo) Create(ctx context.Context, s *model.ShareLink) error {
	if m.createFn != nil {
		return m.createFn(ctx, s)
	}
	return nil
}

func (m *mockShareRepo) GetByToken(ctx context.Context, token string) (*model.ShareLink, error) {
	if m.getByTokenFn != nil {
		return m.getByTokenFn(ctx, token)
	}
	return nil, repository.ErrNotFound
}

func (m *mockShareRepo) ListByAlbum(ctx context.Context, albumID string) ([]*model.ShareLink, error) {
	if m.listByAlbumFn != nil {
		return m.listByAlbumFn(ctx, albumID)
	}
	return nil, nil
}

func (m *mockShareRepo) Disable(ctx context.Context, albumID, token string) error {
	if m.disableFn != nil {
		return m.disableFn(ctx, albumID, token)
	}
	return nil
}

// mockAlbumRepo — мок AlbumRepository.
type mockAlbumRepo struct {
	createFn      func(ctx context.Context, a *model.Album) error
	getByIDFn     func(ctx context.Context, albumID string) (*model.Album, error)
	listByOwnerFn func(ctx context.Context, ownerID string) ([]*model.Album, error)
	updateFn      func(ctx context.Context, a *model.Album) error
	deleteFn      func(ctx context.Context, albumID string) error
}

func (m *mockAlbumRepo) Create(ctx context.Context, a *model.Album) error {
	if m.createFn != nil {
		return m.createFn(ctx, a)
	}
	return nil
}

func (m *mockAlbumRepo) GetByID(ctx context.Context, albumID string) (*model.Album, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, albumID)
	}
	return nil, repository.ErrNotFound
}

func (m *mockAlbumRepo) ListByOwner(ctx context.Context, ownerID string) ([]*model.Album, error) {
	if m.listByOwnerFn != nil {
		return m.listByOwnerFn(ctx, ownerID)
	}
	return nil, nil
}

func (m *mockAlbumRepo) Update(ctx context.Context, a *model.Album) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, a)
	}
	return nil
}

func (m *mockAlbumRepo) Delete(ctx context.Context, albumID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, albumID)
	}
	return nil
}

// mockPhotoRepo — мок PhotoRepository.
type mockPhotoRepo struct {
	createFn      func(ctx context.Context, p *model.Photo) error
	getByIDFn     func(ctx context.Context, photoID string) (*model.Photo, error)
	listByAlbumFn func(ctx context.Context, albumID string) ([]*model.Photo, error)
	deleteFn      func(ctx context.Context, photoID string) error
}

func (m *mockPhotoRepo) Create(ctx context.Context, p *model.Photo) error {
	if m.createFn != nil {
		return m.createFn(ctx, p)
	}
	return nil
}

func (m *mockPhotoRepo) GetByID(ctx context.Context, photoID string) (*model.Photo, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, photoID)
	}
	return nil, repository.ErrNotFound
}

func (m *mockPhotoRepo) ListByAlbum(ctx context.Context, albumID string) ([]*model.Photo, error) {
	if m.listByAlbumFn != nil {
		return m.listByAlbumFn(ctx, albumID)
	}
	return nil, nil
}

func (m *mockPhotoRepo) Delete(ctx context.Context, photoID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, photoID)
	}
	return nil
}

// mockStorage — мок ObjectStorage. Фиксирует вызовы SignedURLs.
type mockStorage struct {
	uploadFn     func(ctx context.Context, key, contentType string, body io.Reader) error
	deleteFn     func(ctx context.Context, key string) error
	signedURLsFn func(ctx context.Context, keys []string, ttl time.Duration) (map[string]string, error)

	signedURLCalls int
}

func (m *mockStorage) Upload(ctx context.Context, key, contentType string, body io.Reader) error {
	if m.uploadFn != nil {
		return m.uploadFn(ctx, key, contentType, body)
	}
	return nil
}

func (m *mockStorage) Delete(ctx context.Context, key string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, key)
	}
	return nil
}

func (m *mockStorage) SignedURLs(ctx context.Context, keys []string, ttl time.Duration) (map[string]string, error) {
	m.signedURLCalls++
	if m.signedURLsFn != nil {
		return m.signedURLsFn(ctx, keys, ttl)
	}
	result := make(map[string]string, len(keys))
	for _, k := range keys {
		result[k] = "https://storage.example.com/" + k + "?sig=test"
	}
	return result, nil
}

// newTestShareService создаёт ShareService с переданными моками.
func newTestShareService(
	shares *mockShareRepo,
	albums *mockAlbumRepo,
	photos *mockPhotoRepo,
	store *mockStorage,
) *ShareService {
	cache := NewCacheService(100, 5*time.Minute)
	return NewShareService(shares, albums, photos, store, cache, time.Hour, slog.Default())
}

// --- Тесты Resolve ---

// TestShareService_Resolve_UnknownToken проверяет, что несуществующий токен
// даёт ErrShareNotFound, а не ErrShareForbidden.
func TestShareService_Resolve_UnknownToken(t *testing.T) {
	svc := newTestShareService(&mockShareRepo{}, &mockAlbumRepo{}, &mockPhotoRepo{}, &mockStorage{})

	_, err := svc.Resolve(context.Background(), "no-such-token")
	if !errors.Is(err, ErrShareNotFound) {
		t.Fatalf("err = %v, ожидался ErrShareNotFound", err)
	}
}

// TestShareService_Resolve_Disabled проверяет, что отозванная ссылка
// даёт ErrShareForbidden даже с expires_at в будущем.
func TestShareService_Resolve_Disabled(t *testing.T) {
	future := time.Now().Add(24 * time.Hour)
	shares := &mockShareRepo{
		getByTokenFn: func(_ context.Context, _ string) (*model.ShareLink, error) {
			return &model.ShareLink{
				Token:      "tok-disabled",
				AlbumID:    "album-1",
				Permission: model.PermissionViewer,
				ExpiresAt:  &future,
				Disabled:   true,
			}, nil
		},
	}

	svc := newTestShareService(shares, &mockAlbumRepo{}, &mockPhotoRepo{}, &mockStorage{})

	_, err := svc.Resolve(context.Background(), "tok-disabled")
	if !errors.Is(err, ErrShareForbidden) {
		t.Fatalf("err = %v, ожидался ErrShareForbidden", err)
	}
}

// TestShareService_Resolve_Expired проверяет, что просроченная ссылка
// даёт ErrShareForbidden.
func TestShareService_Resolve_Expired(t *testing.T) {
	past := time.Now().Add(-time.Minute)
	shares := &mockShareRepo{
		getByTokenFn: func(_ context.Context, _ string) (*model.ShareLink, error) {
			return &model.ShareLink{
				Token:      "tok-expired",
				AlbumID:    "album-1",
				Permission: model.PermissionViewer,
				ExpiresAt:  &past,
			}, nil
		},
	}

	svc := newTestShareService(shares, &mockAlbumRepo{}, &mockPhotoRepo{}, &mockStorage{})

	_, err := svc.Resolve(context.Background(), "tok-expired")
	if !errors.Is(err, ErrShareForbidden) {
		t.Fatalf("err = %v, ожидался ErrShareForbidden", err)
	}
}

// TestShareService_Resolve_AlbumMissing проверяет ErrAlbumNotFound,
// когда ссылка валидна, но альбом удалён.
func TestShareService_Resolve_AlbumMissing(t *testing.T) {
	shares := &mockShareRepo{
		getByTokenFn: func(_ context.Context, _ string) (*model.ShareLink, error) {
			return &model.ShareLink{
				Token:      "tok-orphan",
				AlbumID:    "gone",
				Permission: model.PermissionViewer,
			}, nil
		},
	}

	svc := newTestShareService(shares, &mockAlbumRepo{}, &mockPhotoRepo{}, &mockStorage{})

	_, err := svc.Resolve(context.Background(), "tok-orphan")
	if !errors.Is(err, ErrAlbumNotFound) {
		t.Fatalf("err = %v, ожидался ErrAlbumNotFound", err)
	}
}

// TestShareService_Resolve_Success проверяет полный pipeline: валидная
// бессрочная ссылка, две фотографии в порядке created_at ASC, один
// batch-вызов подписанных URL, permission = viewer.
func TestShareService_Resolve_Success(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	shares := &mockShareRepo{
		getByTokenFn: func(_ context.Context, token string) (*model.ShareLink, error) {
			if token != "abc123" {
				t.Errorf("token = %q, ожидался abc123", token)
			}
			return &model.ShareLink{
				Token:      "abc123",
				AlbumID:    "album-1",
				Permission: model.PermissionViewer,
			}, nil
		},
	}
	albums := &mockAlbumRepo{
		getByIDFn: func(_ context.Context, _ string) (*model.Album, error) {
			return &model.Album{
				ID:       "album-1",
				OwnerID:  "owner-1",
				Title:    "Отпуск",
				Category: "travel",
			}, nil
		},
	}
	photos := &mockPhotoRepo{
		listByAlbumFn: func(_ context.Context, _ string) ([]*model.Photo, error) {
			return []*model.Photo{
				{ID: "p1", AlbumID: "album-1", StorageKey: "photos/album-1/p1.jpg", ThumbKey: "thumbs/album-1/p1.jpg", CreatedAt: base},
				{ID: "p2", AlbumID: "album-1", StorageKey: "photos/album-1/p2.jpg", ThumbKey: "thumbs/album-1/p2.jpg", CreatedAt: base.Add(time.Minute)},
			}, nil
		},
	}
	store := &mockStorage{}

	svc := newTestShareService(shares, albums, photos, store)

	view, err := svc.Resolve(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("Resolve ошибка: %v", err)
	}

	if view.Permission != model.PermissionViewer {
		t.Errorf("Permission = %q, ожидался viewer", view.Permission)
	}
	if view.Album.Title != "Отпуск" {
		t.Errorf("Album.Title = %q, ожидался Отпуск", view.Album.Title)
	}
	if len(view.Photos) != 2 {
		t.Fatalf("Photos count = %d, ожидался 2", len(view.Photos))
	}

	// Порядок фотографий — created_at ASC, как вернул репозиторий
	if view.Photos[0].ID != "p1" || view.Photos[1].ID != "p2" {
		t.Errorf("порядок фотографий = [%s, %s], ожидался [p1, p2]",
			view.Photos[0].ID, view.Photos[1].ID)
	}

	// Подписанные URL скоррелированы по ключу
	if view.Photos[0].SignedURL == nil {
		t.Fatal("Photos[0].SignedURL = nil, ожидался URL")
	}
	if *view.Photos[0].SignedURL != "https://storage.example.com/photos/album-1/p1.jpg?sig=test" {
		t.Errorf("Photos[0].SignedURL = %q, неверная корреляция по ключу", *view.Photos[0].SignedURL)
	}
	if view.Photos[1].ThumbURL == nil {
		t.Error("Photos[1].ThumbURL = nil, ожидался URL миниатюры")
	}

	// Ровно один batch-вызов подписанных URL на весь запрос
	if store.signedURLCalls != 1 {
		t.Errorf("SignedURLs вызван %d раз, ожидался 1", store.signedURLCalls)
	}
}

// TestShareService_Resolve_EmptyAlbum проверяет, что альбом без фотографий —
// валидный результат с пустым списком.
func TestShareService_Resolve_EmptyAlbum(t *testing.T) {
	shares := &mockShareRepo{
		getByTokenFn: func(_ context.Context, _ string) (*model.ShareLink, error) {
			return &model.ShareLink{Token: "tok", AlbumID: "album-1", Permission: model.PermissionViewer}, nil
		},
	}
	albums := &mockAlbumRepo{
		getByIDFn: func(_ context.Context, _ string) (*model.Album, error) {
			return &model.Album{ID: "album-1", OwnerID: "owner-1", Title: "Пустой"}, nil
		},
	}

	svc := newTestShareService(shares, albums, &mockPhotoRepo{}, &mockStorage{})

	view, err := svc.Resolve(context.Background(), "tok")
	if err != nil {
		t.Fatalf("Resolve ошибка: %v", err)
	}
	if len(view.Photos) != 0 {
		t.Errorf("Photos count = %d, ожидался 0", len(view.Photos))
	}
}

// TestShareService_Resolve_MissingSignedKey проверяет, что ключ, опущенный
// подписывающей стороной, даёт SignedURL = nil у фотографии, а не ошибку.
func TestShareService_Resolve_MissingSignedKey(t *testing.T) {
	shares := &mockShareRepo{
		getByTokenFn: func(_ context.Context, _ string) (*model.ShareLink, error) {
			return &model.ShareLink{Token: "tok", AlbumID: "album-1", Permission: model.PermissionViewer}, nil
		},
	}
	albums := &mockAlbumRepo{
		getByIDFn: func(_ context.Context, _ string) (*model.Album, error) {
			return &model.Album{ID: "album-1", OwnerID: "owner-1", Title: "Тест"}, nil
		},
	}
	photos := &mockPhotoRepo{
		listByAlbumFn: func(_ context.Context, _ string) ([]*model.Photo, error) {
			return []*model.Photo{
				{ID: "p1", StorageKey: "photos/album-1/p1.jpg"},
				{ID: "p2", StorageKey: "photos/album-1/p2.jpg"},
			}, nil
		},
	}
	store := &mockStorage{
		signedURLsFn: func(_ context.Context, _ []string, _ time.Duration) (map[string]string, error) {
			// p2 опущен из результата подписи
			return map[string]string{
				"photos/album-1/p1.jpg": "https://storage.example.com/p1",
			}, nil
		},
	}

	svc := newTestShareService(shares, albums, photos, store)

	view, err := svc.Resolve(context.Background(), "tok")
	if err != nil {
		t.Fatalf("Resolve ошибка: %v", err)
	}
	if len(view.Photos) != 2 {
		t.Fatalf("Photos count = %d, ожидался 2 (фотография не выпадает)", len(view.Photos))
	}
	if view.Photos[0].SignedURL == nil {
		t.Error("Photos[0].SignedURL = nil, ожидался URL")
	}
	if view.Photos[1].SignedURL != nil {
		t.Errorf("Photos[1].SignedURL = %q, ожидался nil для неподписанного ключа", *view.Photos[1].SignedURL)
	}
}

// TestShareService_Resolve_Idempotent проверяет, что повторное разрешение
// того же токена даёт тот же результат — чтение не расходует ссылку.
func TestShareService_Resolve_Idempotent(t *testing.T) {
	getCalls := 0
	shares := &mockShareRepo{
		getByTokenFn: func(_ context.Context, _ string) (*model.ShareLink, error) {
			getCalls++
			return &model.ShareLink{Token: "tok", AlbumID: "album-1", Permission: model.PermissionViewer}, nil
		},
	}
	albums := &mockAlbumRepo{
		getByIDFn: func(_ context.Context, _ string) (*model.Album, error) {
			return &model.Album{ID: "album-1", OwnerID: "owner-1", Title: "Тест"}, nil
		},
	}

	svc := newTestShareService(shares, albums, &mockPhotoRepo{}, &mockStorage{})

	first, err := svc.Resolve(context.Background(), "tok")
	if err != nil {
		t.Fatalf("первый Resolve ошибка: %v", err)
	}
	second, err := svc.Resolve(context.Background(), "tok")
	if err != nil {
		t.Fatalf("второй Resolve ошибка: %v", err)
	}

	if first.Album.Title != second.Album.Title || first.Permission != second.Permission {
		t.Error("повторное разрешение вернуло другой результат")
	}
	// Действительность ссылки проверяется по базе на каждый запрос
	if getCalls != 2 {
		t.Errorf("GetByToken вызван %d раз, ожидался 2", getCalls)
	}
}

// TestShareService_Resolve_ExpiryBoundary проверяет границу expires_at:
// ссылка с истечением ровно в текущий момент ещё валидна (Before, не Equal).
func TestShareService_Resolve_ExpiryBoundary(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	shares := &mockShareRepo{
		getByTokenFn: func(_ context.Context, _ string) (*model.ShareLink, error) {
			exp := now
			return &model.ShareLink{Token: "tok", AlbumID: "album-1", Permission: model.PermissionViewer, ExpiresAt: &exp}, nil
		},
	}
	albums := &mockAlbumRepo{
		getByIDFn: func(_ context.Context, _ string) (*model.Album, error) {
			return &model.Album{ID: "album-1", OwnerID: "owner-1", Title: "Граница"}, nil
		},
	}

	svc := newTestShareService(shares, albums, &mockPhotoRepo{}, &mockStorage{})
	svc.now = func() time.Time { return now }

	if _, err := svc.Resolve(context.Background(), "tok"); err != nil {
		t.Fatalf("Resolve на границе expires_at ошибка: %v", err)
	}

	// Секунда спустя — уже просрочена
	svc.now = func() time.Time { return now.Add(time.Second) }
	_, err := svc.Resolve(context.Background(), "tok")
	if !errors.Is(err, ErrShareForbidden) {
		t.Fatalf("err = %v, ожидался ErrShareForbidden после истечения", err)
	}
}

// --- Тесты CreateLink / DisableLink / ListLinks ---

// TestShareService_CreateLink проверяет выпуск ссылки: hex-токен от 16
// случайных байт, permission = viewer, владелец обязателен.
func TestShareService_CreateLink(t *testing.T) {
	var created *model.ShareLink
	shares := &mockShareRepo{
		createFn: func(_ context.Context, s *model.ShareLink) error {
			created = s
			return nil
		},
	}
	albums := &mockAlbumRepo{
		getByIDFn: func(_ context.Context, _ string) (*model.Album, error) {
			return &model.Album{ID: "album-1", OwnerID: "owner-1", Title: "Мой"}, nil
		},
	}

	svc := newTestShareService(shares, albums, &mockPhotoRepo{}, &mockStorage{})

	link, err := svc.CreateLink(context.Background(), "owner-1", "album-1", nil)
	if err != nil {
		t.Fatalf("CreateLink ошибка: %v", err)
	}

	if created == nil {
		t.Fatal("Create не был вызван")
	}
	if link.Permission != model.PermissionViewer {
		t.Errorf("Permission = %q, ожидался viewer", link.Permission)
	}
	if link.Disabled {
		t.Error("новая ссылка создана отозванной")
	}
	if link.ExpiresAt != nil {
		t.Errorf("ExpiresAt = %v, ожидался nil (бессрочная)", link.ExpiresAt)
	}

	// Токен — hex от 16 байт: 32 символа
	if len(link.Token) != 2*shareTokenBytes {
		t.Errorf("длина токена = %d, ожидалась %d", len(link.Token), 2*shareTokenBytes)
	}
	if _, err := hex.DecodeString(link.Token); err != nil {
		t.Errorf("токен %q не является hex-строкой: %v", link.Token, err)
	}
}

// TestShareService_CreateLink_NotOwner проверяет запрет выпуска ссылки
// на чужой альбом.
func TestShareService_CreateLink_NotOwner(t *testing.T) {
	albums := &mockAlbumRepo{
		getByIDFn: func(_ context.Context, _ string) (*model.Album, error) {
			return &model.Album{ID: "album-1", OwnerID: "owner-1"}, nil
		},
	}

	svc := newTestShareService(&mockShareRepo{}, albums, &mockPhotoRepo{}, &mockStorage{})

	_, err := svc.CreateLink(context.Background(), "intruder", "album-1", nil)
	if !errors.Is(err, ErrNotOwner) {
		t.Fatalf("err = %v, ожидался ErrNotOwner", err)
	}
}

// TestShareService_DisableLink проверяет отзыв ссылки владельцем.
func TestShareService_DisableLink(t *testing.T) {
	disabled := false
	shares := &mockShareRepo{
		disableFn: func(_ context.Context, albumID, token string) error {
			if albumID != "album-1" || token != "tok" {
				t.Errorf("Disable(%q, %q), ожидался (album-1, tok)", albumID, token)
			}
			disabled = true
			return nil
		},
	}
	albums := &mockAlbumRepo{
		getByIDFn: func(_ context.Context, _ string) (*model.Album, error) {
			return &model.Album{ID: "album-1", OwnerID: "owner-1"}, nil
		},
	}

	svc := newTestShareService(shares, albums, &mockPhotoRepo{}, &mockStorage{})

	if err := svc.DisableLink(context.Background(), "owner-1", "album-1", "tok"); err != nil {
		t.Fatalf("DisableLink ошибка: %v", err)
	}
	if !disabled {
		t.Error("Disable не был вызван")
	}
}

// TestShareService_DisableLink_Unknown проверяет ErrShareNotFound при
// отзыве несуществующей (или уже отозванной) ссылки.
func TestShareService_DisableLink_Unknown(t *testing.T) {
	shares := &mockShareRepo{
		disableFn: func(_ context.Context, _, _ string) error {
			return repository.ErrNotFound
		},
	}
	albums := &mockAlbumRepo{
		getByIDFn: func(_ context.Context, _ string) (*model.Album, error) {
			return &model.Album{ID: "album-1", OwnerID: "owner-1"}, nil
		},
	}

	svc := newTestShareService(shares, albums, &mockPhotoRepo{}, &mockStorage{})

	err := svc.DisableLink(context.Background(), "owner-1", "album-1", "no-such")
	if !errors.Is(err, ErrShareNotFound) {
		t.Fatalf("err = %v, ожидался ErrShareNotFound", err)
	}
}

// TestGenerateShareToken проверяет уникальность сгенерированных токенов.
func TestGenerateShareToken(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := generateShareToken()
		if err != nil {
			t.Fatalf("generateShareToken ошибка: %v", err)
		}
		if seen[token] {
			t.Fatalf("токен %q сгенерирован дважды", token)
		}
		seen[token] = true
	}
}
