// Пакет storage — доступ к object storage с фотографиями.
// Единственный коллаборатор с capability подписанных URL: выдача
// time-limited ссылок на приватные объекты выполняется платформой,
// сервис лишь запрашивает подпись.
package storage

import (
	"context"
	"io"
	"time"
)

// ObjectStorage — контракт object storage, потребляемый сервисным слоем.
type ObjectStorage interface {
	// Upload загружает объект под указанным ключом.
	Upload(ctx context.Context, key, contentType string, body io.Reader) error
	// Delete удаляет объект по ключу.
	Delete(ctx context.Context, key string) error
	// SignedURLs выдаёт подписанные URL для набора ключей за ОДИН batch-вызов
	// (не N последовательных — стоимость линейна по числу ключей).
	// Возвращает map ключ → URL. Ключи, которые не удалось подписать,
	// в map отсутствуют — вызывающая сторона обязана коррелировать
	// результат строго по ключу, а не по позиции.
	SignedURLs(ctx context.Context, keys []string, ttl time.Duration) (map[string]string, error)
}
