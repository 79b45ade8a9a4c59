package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveWorker(t *testing.T) {
	before := testutil.ToFloat64(WorkerRuns.WithLabelValues("test_worker", "error"))
	ObserveWorker("test_worker", errors.New("boom"))
	assert.Equal(t, before+1, testutil.ToFloat64(WorkerRuns.WithLabelValues("test_worker", "error")))
}

func TestHandler_ExposesNamespace(t *testing.T) {
	MessagesSent.Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "rencontre_messaging_messages_sent_total")
}
