// Пакет model — доменные модели Fotoalbum.
// Чистые структуры данных без бизнес-логики, используются
// слоями repository, service и api.
package model

import "time"

// Album — фотоальбом пользователя.
type Album struct {
	// ID — UUID альбома.
	ID string `json:"id"`
	// OwnerID — идентификатор владельца (sub из JWT identity provider).
	OwnerID string `json:"owner_id"`
	// Title — название альбома.
	Title string `json:"title"`
	// Description — описание альбома (может быть пустым).
	Description string `json:"description"`
	// CoverPhotoID — UUID фотографии-обложки (nil, если не выбрана).
	CoverPhotoID *string `json:"cover_photo_id,omitempty"`
	// IsPublic — публичный альбом (отображается в общем каталоге).
	IsPublic bool `json:"is_public"`
	// Category — категория альбома (travel, family, other и т.д.).
	Category string `json:"category"`
	// CreatedAt — время создания.
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt — время последнего изменения.
	UpdatedAt time.Time `json:"updated_at"`
}

// Photo — фотография в альбоме.
type Photo struct {
	// ID — UUID фотографии.
	ID string `json:"id"`
	// AlbumID — UUID альбома.
	AlbumID string `json:"album_id"`
	// StorageKey — ключ объекта в object storage (photos/{album_id}/{uuid}.{ext}).
	StorageKey string `json:"storage_key"`
	// ThumbKey — ключ миниатюры в object storage (thumbs/{album_id}/{uuid}.jpg).
	ThumbKey string `json:"thumb_key,omitempty"`
	// Caption — подпись (может быть пустой).
	Caption string `json:"caption"`
	// ContentType — MIME-тип оригинала (image/jpeg, image/png).
	ContentType string `json:"content_type"`
	// Size — размер оригинала в байтах.
	Size int64 `json:"size"`
	// CreatedAt — время загрузки. Порядок показа в альбоме — по возрастанию.
	CreatedAt time.Time `json:"created_at"`
}
