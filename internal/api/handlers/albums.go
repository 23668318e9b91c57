// albums.go — обработчики CRUD альбомов. Все операции owner-scoped:
// owner_id берётся из sub JWT, проверка владельца — в сервисном слое.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/bigkaa/fotoalbum/internal/api/errors"
	"github.com/bigkaa/fotoalbum/internal/api/middleware"
	"github.com/bigkaa/fotoalbum/internal/service"
)

// AlbumHandler — обработчик альбомов.
type AlbumHandler struct {
	albums *service.AlbumService
	logger *slog.Logger
}

// NewAlbumHandler создаёт обработчик альбомов.
func NewAlbumHandler(albums *service.AlbumService, logger *slog.Logger) *AlbumHandler {
	return &AlbumHandler{
		albums: albums,
		logger: logger.With(slog.String("component", "album_handler")),
	}
}

// albumRequest — тело запроса создания/обновления альбома.
type albumRequest struct {
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	CoverPhotoID *string `json:"cover_photo_id"`
	IsPublic     bool    `json:"is_public"`
	Category     string  `json:"category"`
}

// Create — POST /api/v1/albums.
func (h *AlbumHandler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.SubjectFromContext(r.Context())

	var req albumRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.BadRequest(w, "Некорректное тело запроса: "+err.Error())
		return
	}
	if req.Title == "" {
		apierrors.BadRequest(w, "Поле title обязательно")
		return
	}

	album, err := h.albums.Create(r.Context(), ownerID, service.AlbumParams{
		Title:        req.Title,
		Description:  req.Description,
		CoverPhotoID: req.CoverPhotoID,
		IsPublic:     req.IsPublic,
		Category:     req.Category,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, album)
}

// List — GET /api/v1/albums.
func (h *AlbumHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.SubjectFromContext(r.Context())

	albums, err := h.albums.List(r.Context(), ownerID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, albums)
}

// Get — GET /api/v1/albums/{albumID}.
func (h *AlbumHandler) Get(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.SubjectFromContext(r.Context())
	albumID := chi.URLParam(r, "albumID")

	album, err := h.albums.Get(r.Context(), ownerID, albumID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, album)
}

// Update — PATCH /api/v1/albums/{albumID}.
func (h *AlbumHandler) Update(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.SubjectFromContext(r.Context())
	albumID := chi.URLParam(r, "albumID")

	var req albumRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.BadRequest(w, "Некорректное тело запроса: "+err.Error())
		return
	}
	if req.Title == "" {
		apierrors.BadRequest(w, "Поле title обязательно")
		return
	}

	album, err := h.albums.Update(r.Context(), ownerID, albumID, service.AlbumParams{
		Title:        req.Title,
		Description:  req.Description,
		CoverPhotoID: req.CoverPhotoID,
		IsPublic:     req.IsPublic,
		Category:     req.Category,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, album)
}

// Delete — DELETE /api/v1/albums/{albumID}.
// Каскадно удаляет фотографии и share-ссылки (схема), объекты storage —
// best effort.
func (h *AlbumHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.SubjectFromContext(r.Context())
	albumID := chi.URLParam(r, "albumID")

	if err := h.albums.Delete(r.Context(), ownerID, albumID); err != nil {
		h.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeError маппит ошибки сервиса альбомов в HTTP-ответы.
func (h *AlbumHandler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrAlbumNotFound):
		apierrors.NotFound(w, "Album not found")
	case errors.Is(err, service.ErrNotOwner):
		apierrors.Forbidden(w, "Доступ запрещён")
	default:
		h.logger.Error("Ошибка операции с альбомом",
			slog.String("error", err.Error()),
		)
		apierrors.InternalError(w, "Internal server error")
	}
}
