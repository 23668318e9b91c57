// photos.go — обработчики фотографий: multipart-загрузка, листинг
// с подписанными URL, удаление.
package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/bigkaa/fotoalbum/internal/api/errors"
	"github.com/bigkaa/fotoalbum/internal/api/middleware"
	"github.com/bigkaa/fotoalbum/internal/service"
)

// PhotoHandler — обработчик фотографий.
type PhotoHandler struct {
	photos  *service.PhotoService
	maxSize int64
	logger  *slog.Logger
}

// NewPhotoHandler создаёт обработчик фотографий.
// maxSize — лимит размера загружаемого файла в байтах.
func NewPhotoHandler(photos *service.PhotoService, maxSize int64, logger *slog.Logger) *PhotoHandler {
	return &PhotoHandler{
		photos:  photos,
		maxSize: maxSize,
		logger:  logger.With(slog.String("component", "photo_handler")),
	}
}

// Upload — POST /api/v1/albums/{albumID}/photos.
// Multipart form: file (обязательно), caption (опционально).
// Тело запроса ограничено maxSize + 1 МиБ на накладные расходы multipart.
func (h *PhotoHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.SubjectFromContext(r.Context())
	albumID := chi.URLParam(r, "albumID")

	r.Body = http.MaxBytesReader(w, r.Body, h.maxSize+1<<20)
	if err := r.ParseMultipartForm(h.maxSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			apierrors.PayloadTooLarge(w, "Файл превышает максимальный размер")
			return
		}
		apierrors.BadRequest(w, "Некорректный multipart-запрос: "+err.Error())
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		apierrors.BadRequest(w, "Поле file обязательно")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		apierrors.BadRequest(w, "Ошибка чтения файла: "+err.Error())
		return
	}

	caption := r.FormValue("caption")

	photo, err := h.photos.Upload(r.Context(), ownerID, albumID, caption, data)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, photo)
}

// List — GET /api/v1/albums/{albumID}/photos.
// Возвращает фотографии альбома владельца с подписанными URL,
// упорядоченные по created_at ASC.
func (h *PhotoHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.SubjectFromContext(r.Context())
	albumID := chi.URLParam(r, "albumID")

	photos, err := h.photos.List(r.Context(), ownerID, albumID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, photos)
}

// Delete — DELETE /api/v1/albums/{albumID}/photos/{photoID}.
func (h *PhotoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.SubjectFromContext(r.Context())
	photoID := chi.URLParam(r, "photoID")

	if err := h.photos.Delete(r.Context(), ownerID, photoID); err != nil {
		h.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeError маппит ошибки сервиса фотографий в HTTP-ответы.
func (h *PhotoHandler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrAlbumNotFound):
		apierrors.NotFound(w, "Album not found")
	case errors.Is(err, service.ErrPhotoNotFound):
		apierrors.NotFound(w, "Фотография не найдена")
	case errors.Is(err, service.ErrNotOwner):
		apierrors.Forbidden(w, "Доступ запрещён")
	case errors.Is(err, service.ErrFileTooLarge):
		apierrors.PayloadTooLarge(w, "Файл превышает максимальный размер")
	case errors.Is(err, service.ErrUnsupportedFormat):
		apierrors.UnsupportedMediaType(w, "Поддерживаются только форматы JPEG и PNG")
	default:
		h.logger.Error("Ошибка операции с фотографией",
			slog.String("error", err.Error()),
		)
		apierrors.InternalError(w, "Internal server error")
	}
}
