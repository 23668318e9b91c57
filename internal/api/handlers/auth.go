// auth.go — обработчики аутентификации.
// POST /api/v1/auth/magic-link — публичный, проксирует запрос к IdP.
// GET /api/v1/auth/me — профиль текущего пользователя из claims JWT.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	apierrors "github.com/bigkaa/fotoalbum/internal/api/errors"
	"github.com/bigkaa/fotoalbum/internal/api/middleware"
	"github.com/bigkaa/fotoalbum/internal/idclient"
)

// AuthHandler — обработчик аутентификации.
type AuthHandler struct {
	idp    *idclient.Client
	logger *slog.Logger
}

// NewAuthHandler создаёт обработчик аутентификации.
func NewAuthHandler(idp *idclient.Client, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		idp:    idp,
		logger: logger.With(slog.String("component", "auth_handler")),
	}
}

// magicLinkRequest — тело запроса отправки magic-link.
type magicLinkRequest struct {
	Email string `json:"email"`
}

// SendMagicLink — POST /api/v1/auth/magic-link.
// Запрашивает у IdP отправку письма со ссылкой входа. Ответ всегда 202
// при принятом email — существование аккаунта не раскрывается.
func (h *AuthHandler) SendMagicLink(w http.ResponseWriter, r *http.Request) {
	var req magicLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.BadRequest(w, "Некорректное тело запроса: "+err.Error())
		return
	}

	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		apierrors.BadRequest(w, "Поле email обязательно")
		return
	}

	if err := h.idp.SendMagicLink(r.Context(), email); err != nil {
		h.logger.Error("Ошибка отправки magic-link",
			slog.String("error", err.Error()),
		)
		apierrors.IDPUnavailable(w, "Identity provider недоступен")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "sent"})
}

// meResponse — ответ GET /api/v1/auth/me.
type meResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Me — GET /api/v1/auth/me. Профиль текущего пользователя из claims JWT.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		apierrors.Unauthorized(w, "Отсутствуют claims в контексте")
		return
	}

	writeJSON(w, http.StatusOK, meResponse{
		ID:    claims.Subject,
		Email: claims.Email,
	})
}
