package logger

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromContext_AddsRequestAndUser(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("production", &buf)
	t.Cleanup(func() { Init("test") })

	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithUserID(ctx, "user-42")

	CtxInfo(ctx, "profile viewed", "profile_id", "p-1")

	out := buf.String()
	assert.Contains(t, out, `"request_id":"req-1"`)
	assert.Contains(t, out, `"user_id":"user-42"`)
	assert.Contains(t, out, `"profile_id":"p-1"`)
}

func TestCtxWithError(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("production", &buf)
	t.Cleanup(func() { Init("test") })

	CtxWithError(context.Background(), "smtp failed", errors.New("connection refused"))

	assert.Contains(t, buf.String(), "connection refused")
	assert.Contains(t, buf.String(), `"level":"ERROR"`)
}

func TestWorkerLog(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("production", &buf)
	t.Cleanup(func() { Init("test") })

	WorkerLog("subscription_worker", "expire", nil, "rows", 3)

	assert.Contains(t, buf.String(), `"worker":"subscription_worker"`)
	assert.Contains(t, buf.String(), `"rows":3`)
}
