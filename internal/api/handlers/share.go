// share.go — обработчики share-ссылок.
// GET /api/v1/share — публичное разрешение токена в read-only снимок альбома.
// Остальные операции (выпуск, листинг, отзыв) — только для владельца альбома.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/bigkaa/fotoalbum/internal/api/errors"
	"github.com/bigkaa/fotoalbum/internal/api/middleware"
	"github.com/bigkaa/fotoalbum/internal/service"
)

// ShareHandler — обработчик share-ссылок.
type ShareHandler struct {
	shares *service.ShareService
	logger *slog.Logger
}

// NewShareHandler создаёт обработчик share-ссылок.
func NewShareHandler(shares *service.ShareService, logger *slog.Logger) *ShareHandler {
	return &ShareHandler{
		shares: shares,
		logger: logger.With(slog.String("component", "share_handler")),
	}
}

// Resolve — GET /api/v1/share?token=<string>.
// Публичный endpoint, единственный вход для получателей ссылок.
//
// Контракт ответов:
//
//	200 — {"album": {...}, "photos": [...], "permission": "viewer"}
//	400 — {"error": "Missing token"} (параметр отсутствует или пуст)
//	403 — {"error": "Link expired or disabled"}
//	404 — {"error": "Link not found"} / {"error": "Album not found"}
//	500 — {"error": "Internal server error"}
func (h *ShareHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		apierrors.BadRequest(w, "Missing token")
		return
	}

	view, err := h.shares.Resolve(r.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrShareNotFound):
			apierrors.NotFound(w, "Link not found")
		case errors.Is(err, service.ErrShareForbidden):
			apierrors.Forbidden(w, "Link expired or disabled")
		case errors.Is(err, service.ErrAlbumNotFound):
			apierrors.NotFound(w, "Album not found")
		default:
			h.logger.Error("Ошибка разрешения share-токена",
				slog.String("error", err.Error()),
			)
			apierrors.InternalError(w, "Internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// createLinkRequest — тело запроса выпуска share-ссылки.
type createLinkRequest struct {
	// ExpiresAt — опциональный срок действия (RFC3339). nil — бессрочно.
	ExpiresAt *time.Time `json:"expires_at"`
}

// CreateLink — POST /api/v1/albums/{albumID}/share.
// Выпускает новую viewer-ссылку на альбом владельца.
func (h *ShareHandler) CreateLink(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.SubjectFromContext(r.Context())
	albumID := chi.URLParam(r, "albumID")

	var req createLinkRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apierrors.BadRequest(w, "Некорректное тело запроса: "+err.Error())
			return
		}
	}

	link, err := h.shares.CreateLink(r.Context(), ownerID, albumID, req.ExpiresAt)
	if err != nil {
		h.writeOwnerError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, link)
}

// ListLinks — GET /api/v1/albums/{albumID}/share.
// Возвращает все share-ссылки альбома владельца, включая отозванные.
func (h *ShareHandler) ListLinks(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.SubjectFromContext(r.Context())
	albumID := chi.URLParam(r, "albumID")

	links, err := h.shares.ListLinks(r.Context(), ownerID, albumID)
	if err != nil {
		h.writeOwnerError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, links)
}

// DisableLink — DELETE /api/v1/albums/{albumID}/share/{token}.
// Отзывает ссылку (disabled = true). Ссылка остаётся в листинге.
func (h *ShareHandler) DisableLink(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.SubjectFromContext(r.Context())
	albumID := chi.URLParam(r, "albumID")
	token := chi.URLParam(r, "token")

	if err := h.shares.DisableLink(r.Context(), ownerID, albumID, token); err != nil {
		if errors.Is(err, service.ErrShareNotFound) {
			apierrors.NotFound(w, "Link not found")
			return
		}
		h.writeOwnerError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeOwnerError маппит ошибки владельческих операций в HTTP-ответы.
func (h *ShareHandler) writeOwnerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrAlbumNotFound):
		apierrors.NotFound(w, "Album not found")
	case errors.Is(err, service.ErrNotOwner):
		apierrors.Forbidden(w, "Доступ запрещён")
	default:
		h.logger.Error("Ошибка операции share-ссылки",
			slog.String("error", err.Error()),
		)
		apierrors.InternalError(w, "Internal server error")
	}
}
