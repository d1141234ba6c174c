package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"FARM_COOLDOWN", "BONUS_COOLDOWN", "REFERRAL_BONUS", "REMINDER_INTERVAL", "TELEGRAM_BOT_TOKEN"} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()

	assert.Equal(t, int64(60), cfg.FarmCooldown)
	assert.Equal(t, int64(3600), cfg.BonusCooldown)
	assert.Equal(t, int64(10), cfg.ReferralBonus)
	assert.Equal(t, int64(1), cfg.FarmReward)
	assert.Equal(t, int64(5), cfg.BonusReward)
	assert.Equal(t, 5*time.Minute, cfg.ReminderInterval)
	assert.Error(t, cfg.Validate())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("FARM_COOLDOWN", "30")
	t.Setenv("BONUS_COOLDOWN", "7200")
	t.Setenv("REFERRAL_BONUS", "25")
	t.Setenv("REMINDER_INTERVAL", "1m")

	cfg := LoadConfig()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, int64(30), cfg.FarmCooldown)
	assert.Equal(t, int64(7200), cfg.BonusCooldown)
	assert.Equal(t, int64(25), cfg.ReferralBonus)
	assert.Equal(t, time.Minute, cfg.ReminderInterval)
}

func TestLoadConfig_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("FARM_COOLDOWN", "soon")
	t.Setenv("REFERRAL_BONUS", "-5")
	t.Setenv("REMINDER_INTERVAL", "never")

	cfg := LoadConfig()

	assert.Equal(t, int64(60), cfg.FarmCooldown)
	assert.Equal(t, int64(10), cfg.ReferralBonus)
	assert.Equal(t, 5*time.Minute, cfg.ReminderInterval)
}
