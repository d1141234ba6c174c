package worker

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"stars-bot/internal/ledger"
	"stars-bot/internal/models"
)

// AccountSource lists accounts whose bonus cooldown has elapsed.
type AccountSource interface {
	BonusReady(ctx context.Context, cutoff int64) ([]models.Account, error)
}

type Notifier interface {
	BonusReady(ctx context.Context, account models.Account, reward int64) error
}

// Marker is the subset of the redis client used to remember sent reminders.
type Marker interface {
	SetArgs(ctx context.Context, key string, value interface{}, a redis.SetArgs) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Reminder tells users their bonus can be claimed again, once per bonus window.
type Reminder struct {
	Accounts AccountSource
	Marks    Marker
	Notifier Notifier
	Settings ledger.Settings
	Interval time.Duration

	now func() time.Time
}

func NewReminder(accounts AccountSource, marks Marker, notifier Notifier, settings ledger.Settings, interval time.Duration) *Reminder {
	return &Reminder{
		Accounts: accounts,
		Marks:    marks,
		Notifier: notifier,
		Settings: settings,
		Interval: interval,
		now:      time.Now,
	}
}

// Run checks once immediately and then on every tick until ctx is done.
func (r *Reminder) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()
	log.WithField("interval", r.Interval).Info("Bonus reminder worker started")

	r.check(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Info("Bonus reminder worker stopped")
			return nil
		case <-ticker.C:
			r.check(ctx)
		}
	}
}

// check returns the number of reminders delivered.
func (r *Reminder) check(ctx context.Context) int {
	cutoff := r.now().Unix() - r.Settings.BonusCooldown

	accounts, err := r.Accounts.BonusReady(ctx, cutoff)
	if err != nil {
		log.WithError(err).Error("Error querying accounts with a ready bonus")
		return 0
	}

	sent := 0
	for _, account := range accounts {
		key := reminderKey(account)
		window := strconv.FormatInt(account.LastBonusAt, 10)

		// the key holds the last reminded window and never expires
		prev, err := r.Marks.SetArgs(ctx, key, window, redis.SetArgs{Get: true}).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			log.WithError(err).WithField("key", key).Warn("Failed to mark reminder")
			continue
		}
		if err == nil && prev == window {
			continue
		}

		if err := r.Notifier.BonusReady(ctx, account, r.Settings.BonusReward); err != nil {
			// not delivered, let the next tick retry
			r.Marks.Del(ctx, key)
			log.WithError(err).WithField("account_id", account.ID).Warn("Failed to send bonus reminder")
			continue
		}
		sent++
	}

	if sent > 0 {
		log.WithField("sent", sent).Info("Bonus reminders sent")
	}
	return sent
}

func reminderKey(account models.Account) string {
	return fmt.Sprintf("bonus_ready_%d", account.ID)
}
