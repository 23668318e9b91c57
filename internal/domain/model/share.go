package model

import "time"

// Уровни доступа share-ссылки. Сейчас поддерживается только viewer —
// read-only доступ к фотографиям альбома.
const (
	PermissionViewer = "viewer"
)

// ShareLink — персистентный токенизированный грант read-доступа к одному альбому.
type ShareLink struct {
	// Token — непрозрачный уникальный токен (hex от случайных байт).
	Token string `json:"token"`
	// AlbumID — UUID альбома, к которому даёт доступ ссылка.
	AlbumID string `json:"album_id"`
	// Permission — уровень доступа (сейчас всегда viewer).
	Permission string `json:"permission"`
	// ExpiresAt — срок действия (nil — бессрочная).
	ExpiresAt *time.Time `json:"expires_at"`
	// Disabled — ссылка отозвана владельцем.
	Disabled bool `json:"disabled"`
	// CreatedAt — время создания.
	CreatedAt time.Time `json:"created_at"`
}

// IsValid проверяет инвариант действительности ссылки:
// disabled = false И (expires_at не задан ИЛИ expires_at >= now).
// Других условий действительности не существует.
func (s *ShareLink) IsValid(now time.Time) bool {
	if s.Disabled {
		return false
	}
	if s.ExpiresAt != nil && s.ExpiresAt.Before(now) {
		return false
	}
	return true
}

// SharedPhoto — фотография в составе share-ответа.
// SignedURL может быть nil, если object storage не смог подписать ключ —
// клиент трактует это как «фото временно недоступно», а не как ошибку.
type SharedPhoto struct {
	ID         string    `json:"id"`
	Caption    string    `json:"caption"`
	CreatedAt  time.Time `json:"created_at"`
	StorageKey string    `json:"storage_key"`
	SignedURL  *string   `json:"signed_url"`
	ThumbURL   *string   `json:"thumb_url,omitempty"`
}

// SharedAlbum — проекция альбома для share-ответа (без owner-полей).
type SharedAlbum struct {
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Category     string  `json:"category"`
	CoverPhotoID *string `json:"cover_photo_id,omitempty"`
}

// ShareView — итоговый ответ share-резолвера: полностью гидрированный
// read-only снимок альбома, готовый к рендерингу.
type ShareView struct {
	Album      SharedAlbum   `json:"album"`
	Photos     []SharedPhoto `json:"photos"`
	Permission string        `json:"permission"`
}

// AlbumSnapshot — альбом вместе с упорядоченным списком фотографий.
// Единица кэширования CacheService: метаданные неизменны между мутациями
// альбома, подписанные URL в снимок не входят (вычисляются на каждый запрос).
type AlbumSnapshot struct {
	Album  *Album
	Photos []*Photo
}
