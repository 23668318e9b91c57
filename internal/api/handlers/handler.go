// handler.go — основной обработчик API Fotoalbum.
// Объединяет health, auth и бизнес-обработчики, собирает chi-роутер.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// APIHandler — основной обработчик API Fotoalbum.
// Делегирует запросы в сервисный слой.
type APIHandler struct {
	health *HealthHandler
	auth   *AuthHandler
	albums *AlbumHandler
	photos *PhotoHandler
	share  *ShareHandler
	logger *slog.Logger
}

// NewAPIHandler создаёт основной обработчик API.
func NewAPIHandler(
	health *HealthHandler,
	auth *AuthHandler,
	albums *AlbumHandler,
	photos *PhotoHandler,
	share *ShareHandler,
	logger *slog.Logger,
) *APIHandler {
	return &APIHandler{
		health: health,
		auth:   auth,
		albums: albums,
		photos: photos,
		share:  share,
		logger: logger.With(slog.String("component", "api_handler")),
	}
}

// Routes регистрирует все маршруты API на роутере.
// Публичные пути (share, auth/magic-link, health, metrics) исключаются
// из JWT middleware на уровне сервера.
func (h *APIHandler) Routes(r chi.Router) {
	// Health и метрики
	r.Get("/health/live", h.health.HealthLive)
	r.Get("/health/ready", h.health.HealthReady)
	r.Get("/metrics", h.health.GetMetrics)

	// Аутентификация
	r.Post("/api/v1/auth/magic-link", h.auth.SendMagicLink)
	r.Get("/api/v1/auth/me", h.auth.Me)

	// Публичное разрешение share-токена
	r.Get("/api/v1/share", h.share.Resolve)

	// Альбомы (владелец)
	r.Route("/api/v1/albums", func(r chi.Router) {
		r.Post("/", h.albums.Create)
		r.Get("/", h.albums.List)
		r.Route("/{albumID}", func(r chi.Router) {
			r.Get("/", h.albums.Get)
			r.Patch("/", h.albums.Update)
			r.Delete("/", h.albums.Delete)

			// Share-ссылки альбома
			r.Post("/share", h.share.CreateLink)
			r.Get("/share", h.share.ListLinks)
			r.Delete("/share/{token}", h.share.DisableLink)

			// Фотографии альбома
			r.Post("/photos", h.photos.Upload)
			r.Get("/photos", h.photos.List)
			r.Delete("/photos/{photoID}", h.photos.Delete)
		})
	})
}

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
