package helpers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"rencontre_backend/database"
	"rencontre_backend/internal/app"
	"rencontre_backend/internal/config"
	"rencontre_backend/internal/logger"

	"gorm.io/gorm"
)

// WebhookSecret - секрет подписи вебхуков FedaPay на тестовом сервере
const WebhookSecret = "whsec_test_secret"

type TestServer struct {
	Server *httptest.Server
	DB     *gorm.DB
}

// NewTestServer поднимает приложение поверх базы из TEST_DATABASE_URL.
// Без переменной тест пропускается.
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}

	os.Setenv("DATABASE_URL", dsn)
	os.Setenv("SERVER_ENV", "test")
	os.Setenv("JWT_SECRET", "my_super_secret_key_for_tests_12345")
	os.Setenv("STORAGE_BASE_PATH", t.TempDir())

	config.LoadConfig()
	cfg := config.GetConfig()
	cfg.FedaPay.WebhookSecret = WebhookSecret
	cfg.RateLimit.RPS = 1000
	cfg.RateLimit.Burst = 1000
	logger.Init(cfg.Server.Env)

	db, err := database.Connect(dsn, false)
	if err != nil {
		t.Fatalf("Не удалось подключиться к тестовой БД: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Не удалось выполнить AutoMigrate: %v", err)
	}

	return &TestServer{
		Server: httptest.NewServer(app.SetupRouter(cfg, db)),
		DB:     db,
	}
}

func (ts *TestServer) Close() {
	ts.Server.Close()
	if sqlDB, err := ts.DB.DB(); err == nil {
		sqlDB.Close()
	}
}

// ClearTables очищает все таблицы приложения. Вызывается в начале каждого теста.
func (ts *TestServer) ClearTables(t *testing.T) {
	t.Helper()
	tables := []string{
		"users", "refresh_tokens", "profiles", "profile_images", "profile_views", "likes",
		"categories", "posts", "post_categories", "comments", "post_ratings",
		"threads", "thread_participants", "messages",
		"documents", "transactions", "premium_subscriptions", "download_credits",
		"contact_messages",
	}
	if err := ts.DB.Exec("TRUNCATE TABLE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE").Error; err != nil {
		t.Fatalf("Не удалось очистить таблицы: %v", err)
	}
}

// SendRequest отправляет JSON и возвращает ответ с телом
func (ts *TestServer) SendRequest(t *testing.T, method, path, token string, body interface{}) (*http.Response, string) {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Ошибка кодирования JSON для запроса: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, ts.Server.URL+path, reqBody)
	if err != nil {
		t.Fatalf("Ошибка создания HTTP-запроса: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return ts.do(t, req, token)
}

// SendRaw - запрос с готовым телом и заголовками (вебхуки)
func (ts *TestServer) SendRaw(t *testing.T, method, path string, body []byte, headers map[string]string) (*http.Response, string) {
	t.Helper()

	req, err := http.NewRequest(method, ts.Server.URL+path, bytes.NewReader(body))
	if err != nil {
		t.Fatalf("Ошибка создания HTTP-запроса: %v", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return ts.do(t, req, "")
}

// SendMultipart отправляет поля формы и один файл
func (ts *TestServer) SendMultipart(t *testing.T, method, path, token string, fields map[string]string, fileField, fileName string, content []byte) (*http.Response, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("Ошибка записи поля формы: %v", err)
		}
	}
	if fileField != "" {
		part, err := w.CreateFormFile(fileField, fileName)
		if err != nil {
			t.Fatalf("Ошибка создания файла формы: %v", err)
		}
		if _, err := part.Write(content); err != nil {
			t.Fatalf("Ошибка записи файла формы: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Ошибка закрытия формы: %v", err)
	}

	req, err := http.NewRequest(method, ts.Server.URL+path, &buf)
	if err != nil {
		t.Fatalf("Ошибка создания HTTP-запроса: %v", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return ts.do(t, req, token)
}

func (ts *TestServer) do(t *testing.T, req *http.Request, token string) (*http.Response, string) {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := ts.Server.Client()
	client.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }

	res, err := client.Do(req)
	if err != nil {
		t.Fatalf("Ошибка отправки HTTP-запроса: %v", err)
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("Ошибка чтения тела ответа: %v", err)
	}
	return res, string(resBody)
}
