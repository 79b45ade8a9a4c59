package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newWorker(t *testing.T) (*SubscriptionWorker, sqlmock.Sqlmock, time.Time) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	w := NewSubscriptionWorker(db)
	w.now = func() time.Time { return now }
	return w, mock, now
}

func TestExpireSubscriptions(t *testing.T) {
	w, mock, now := newWorker(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE users\s+SET is_premium_subscriber = false`).
		WithArgs(now, now).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`UPDATE premium_subscriptions\s+SET is_active = false`).
		WithArgs(now, now).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	expired, err := w.ExpireSubscriptions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), expired)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExpireSubscriptions_RollsBackOnError(t *testing.T) {
	w, mock, now := newWorker(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE users`).
		WithArgs(now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE premium_subscriptions`).
		WithArgs(now, now).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	expired, err := w.ExpireSubscriptions(context.Background())
	require.Error(t, err)
	assert.Zero(t, expired)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStart_StopsWithContext(t *testing.T) {
	w, _, _ := newWorker(t)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx))
	cancel()
}
