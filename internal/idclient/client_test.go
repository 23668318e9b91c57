package idclient

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// TestSendMagicLink проверяет отправку запроса magic-link:
// путь, метод, тело и сервисный API-ключ.
func TestSendMagicLink(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/magiclink" {
			t.Errorf("path = %q, ожидался /magiclink", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("method = %q, ожидался POST", r.Method)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer svc-key" {
			t.Errorf("Authorization = %q, ожидался Bearer svc-key", auth)
		}

		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("декодирование тела: %v", err)
		}
		if body["email"] != "user@example.com" {
			t.Errorf("email = %q, ожидался user@example.com", body["email"])
		}

		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL, "svc-key", 5*time.Second, slog.Default())
	if err := c.SendMagicLink(context.Background(), "user@example.com"); err != nil {
		t.Fatalf("SendMagicLink ошибка: %v", err)
	}
}

// TestSendMagicLink_ProviderError проверяет ошибку при неуспешном статусе.
func TestSendMagicLink_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, "", 5*time.Second, slog.Default())
	if err := c.SendMagicLink(context.Background(), "user@example.com"); err == nil {
		t.Fatal("ожидалась ошибка при статусе 500 от провайдера")
	}
}

// TestGetUser проверяет запрос профиля с Bearer-токеном пользователя.
func TestGetUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user" {
			t.Errorf("path = %q, ожидался /user", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer user-token" {
			t.Errorf("Authorization = %q, ожидался Bearer user-token", auth)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"user-1","email":"user@example.com"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "", 5*time.Second, slog.Default())
	user, err := c.GetUser(context.Background(), "user-token")
	if err != nil {
		t.Fatalf("GetUser ошибка: %v", err)
	}
	if user.ID != "user-1" {
		t.Errorf("ID = %q, ожидался user-1", user.ID)
	}
	if user.Email != "user@example.com" {
		t.Errorf("Email = %q, ожидался user@example.com", user.Email)
	}
}

// TestGetUser_Unauthorized проверяет ошибку при отклонённом токене.
func TestGetUser_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := New(srv.URL, "", 5*time.Second, slog.Default())
	if _, err := c.GetUser(context.Background(), "bad-token"); err == nil {
		t.Fatal("ожидалась ошибка для отклонённого токена")
	}
}
