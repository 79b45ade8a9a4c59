package integration_test

import (
	"encoding/json"
	"os"
	"sync"
	"testing"

	"rencontre_backend/test/helpers"

	"github.com/stretchr/testify/require"
)

var (
	globalTestServer *helpers.TestServer
	serverOnce       sync.Once
)

// GetTestServer возвращает общий тестовый сервер и очищает базу.
// Тесты в пакете не параллельные: они делят одну базу.
func GetTestServer(t *testing.T) *helpers.TestServer {
	t.Helper()
	if os.Getenv("TEST_DATABASE_URL") == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}
	serverOnce.Do(func() {
		globalTestServer = helpers.NewTestServer(t)
	})
	require.NotNil(t, globalTestServer, "test server failed to start")
	globalTestServer.ClearTables(t)
	return globalTestServer
}

func decode(t *testing.T, body string, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(body), v), "тело ответа: %s", body)
}

func TestMain(m *testing.M) {
	code := m.Run()
	if globalTestServer != nil {
		globalTestServer.Close()
	}
	os.Exit(code)
}
