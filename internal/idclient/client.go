// Пакет idclient — HTTP-клиент managed identity provider.
// Провайдер реализует passwordless-аутентификацию: по запросу отправляет
// пользователю email со ссылкой входа и выдаёт RS256 JWT после перехода.
// Валидация выданных JWT выполняется middleware через JWKS провайдера,
// сам клиент отвечает только за отправку magic-link и запрос профиля.
package idclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// UserInfo — профиль пользователя из identity provider.
type UserInfo struct {
	// ID — стабильный идентификатор пользователя (sub в JWT)
	ID string `json:"id"`
	// Email — подтверждённый email
	Email string `json:"email"`
	// CreatedAt — время регистрации
	CreatedAt time.Time `json:"created_at"`
}

// Client — HTTP-клиент identity provider.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *slog.Logger
}

// New создаёт клиент identity provider.
// baseURL — базовый URL провайдера (например, https://auth.example.com).
// apiKey — сервисный API-ключ (пустая строка — без заголовка авторизации).
func New(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		logger:     logger.With(slog.String("component", "id_client")),
	}
}

// SendMagicLink запрашивает у провайдера отправку email со ссылкой входа.
// POST /magiclink {"email": "..."}. Письмо отправляет провайдер — сервис
// не касается SMTP и не узнаёт содержимое ссылки.
func (c *Client) SendMagicLink(ctx context.Context, email string) error {
	payload, err := json.Marshal(map[string]string{"email": email})
	if err != nil {
		return fmt.Errorf("сериализация запроса magic-link: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/magiclink", strings.NewReader(string(payload)))
	if err != nil {
		return fmt.Errorf("создание запроса magic-link: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("запрос magic-link: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("identity provider вернул статус %d: %s", resp.StatusCode, string(body))
	}

	c.logger.Debug("Magic-link отправлен", slog.String("email", email))
	return nil
}

// GetUser запрашивает профиль пользователя по его access token.
// GET /user с Bearer-токеном пользователя.
func (c *Client) GetUser(ctx context.Context, accessToken string) (*UserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/user", http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("создание запроса профиля: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("запрос профиля: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, fmt.Errorf("identity provider отклонил токен")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("identity provider вернул статус %d", resp.StatusCode)
	}

	var user UserInfo
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("декодирование профиля: %w", err)
	}
	return &user, nil
}
