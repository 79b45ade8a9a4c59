package workers

import (
	"context"
	"time"

	"rencontre_backend/internal/logger"
	"rencontre_backend/internal/metrics"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

const (
	subscriptionWorkerName = "subscription_expiry"
	subscriptionSchedule   = "@every 1h"
)

// SubscriptionWorker снимает премиум с пользователей, у которых истекла подписка
type SubscriptionWorker struct {
	db  *gorm.DB
	now func() time.Time
}

func NewSubscriptionWorker(db *gorm.DB) *SubscriptionWorker {
	return &SubscriptionWorker{db: db, now: time.Now}
}

// Start регистрирует задачу в cron и останавливает его вместе с ctx
func (w *SubscriptionWorker) Start(ctx context.Context) error {
	c := cron.New()
	// ошибки уже залогированы в ExpireSubscriptions
	if _, err := c.AddFunc(subscriptionSchedule, func() { _, _ = w.ExpireSubscriptions(ctx) }); err != nil {
		return err
	}
	c.Start()
	logger.Info("Subscription worker started", "schedule", subscriptionSchedule)

	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
		logger.Info("Subscription worker stopped")
	}()
	return nil
}

// ExpireSubscriptions деактивирует просроченные подписки и сбрасывает
// is_premium_subscriber у их владельцев. Возвращает число подписок.
func (w *SubscriptionWorker) ExpireSubscriptions(ctx context.Context) (int64, error) {
	now := w.now()
	var expired int64

	err := w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`
			UPDATE users
			SET is_premium_subscriber = false, updated_at = ?
			WHERE id IN (
				SELECT user_id FROM premium_subscriptions
				WHERE is_active = true AND end_date < ?
			)`, now, now).Error; err != nil {
			return err
		}

		result := tx.Exec(`
			UPDATE premium_subscriptions
			SET is_active = false, updated_at = ?
			WHERE is_active = true AND end_date < ?`, now, now)
		if result.Error != nil {
			return result.Error
		}
		expired = result.RowsAffected
		return nil
	})

	metrics.ObserveWorker(subscriptionWorkerName, err)
	logger.WorkerLog(subscriptionWorkerName, "expire", err, "expired", expired)
	if err != nil {
		return 0, err
	}
	return expired, nil
}
