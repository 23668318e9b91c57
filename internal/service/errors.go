// Пакет service — бизнес-логика сервиса Fotoalbum.
package service

import "errors"

// Ошибки сервисного слоя. Классы «токен не найден» и «альбом не найден»
// намеренно различаются: оба наружу выглядят как 404, но диагностика
// и тесты опираются на разные идентификаторы.
var (
	// ErrShareNotFound — share-токен отсутствует в хранилище.
	ErrShareNotFound = errors.New("share-ссылка не найдена")
	// ErrShareForbidden — ссылка существует, но просрочена или отозвана.
	// Два условия (expires_at в прошлом, disabled = true) схлопнуты
	// в один класс — наружу они неразличимы.
	ErrShareForbidden = errors.New("ссылка просрочена или отозвана")
	// ErrAlbumNotFound — альбом не найден.
	ErrAlbumNotFound = errors.New("альбом не найден")
	// ErrPhotoNotFound — фотография не найдена.
	ErrPhotoNotFound = errors.New("фотография не найдена")
	// ErrNotOwner — операция над чужим альбомом.
	ErrNotOwner = errors.New("доступ запрещён: не владелец альбома")
	// ErrFileTooLarge — загружаемый файл превышает лимит.
	ErrFileTooLarge = errors.New("файл превышает максимальный размер")
	// ErrUnsupportedFormat — формат файла не поддерживается (только JPEG/PNG).
	ErrUnsupportedFormat = errors.New("поддерживаются только форматы JPEG и PNG")
)
