package bot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mymmrac/telego"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stars-bot/internal/ledger"
	"stars-bot/internal/models"
	"stars-bot/internal/storage/memory"
)

func newTestBot(t *testing.T, now *int64) (*Bot, *ledger.Service) {
	t.Helper()
	clock := func() time.Time { return time.Unix(*now, 0) }
	svc := ledger.NewService(memory.NewStore(), nil, ledger.DefaultSettings(), ledger.WithClock(clock))
	return &Bot{Ledger: svc, Username: "stars_bot"}, svc
}

func TestStartReply_WithReferral(t *testing.T) {
	ctx := context.Background()
	now := int64(1000)
	b, svc := newTestBot(t, &now)

	alice := &telego.User{ID: 1, Username: "alice"}
	bob := &telego.User{ID: 2, FirstName: "Bob"}

	text, err := b.startReply(ctx, alice, "")
	require.NoError(t, err)
	assert.Contains(t, text, "Welcome, alice!")

	text, err = b.startReply(ctx, bob, ledger.ReferralToken(alice.ID))
	require.NoError(t, err)
	assert.Contains(t, text, "Welcome, Bob!")

	text, err = b.startReply(ctx, bob, ledger.ReferralToken(alice.ID))
	require.NoError(t, err)
	assert.Contains(t, text, "Welcome back, Bob!")

	referrer, err := svc.GetProfile(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), referrer.Balance)

	invited, err := svc.GetProfile(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bob", invited.DisplayName)
	assert.Zero(t, invited.Balance)
}

func TestStartReply_MalformedTokenIsIgnored(t *testing.T) {
	ctx := context.Background()
	now := int64(1000)
	b, svc := newTestBot(t, &now)

	_, err := b.startReply(ctx, &telego.User{ID: 1, Username: "alice"}, "")
	require.NoError(t, err)
	_, err = b.startReply(ctx, &telego.User{ID: 2, Username: "bob"}, "ref_1")
	require.NoError(t, err)

	invited, err := svc.GetProfile(ctx, 2)
	require.NoError(t, err)
	assert.Nil(t, invited.ReferrerID)
}

func TestFarmReply_Cooldown(t *testing.T) {
	ctx := context.Background()
	now := int64(1000)
	b, _ := newTestBot(t, &now)
	user := &telego.User{ID: 1, Username: "alice"}

	text, err := b.farmReply(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, "🌾 You farmed +1 ⭐\nBalance: 1 ⭐", text)

	now = 1030
	text, err = b.farmReply(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, "⏳ Farming is recharging. Come back in 30s.\nBalance: 1 ⭐", text)
}

func TestBonusReply_Cooldown(t *testing.T) {
	ctx := context.Background()
	now := int64(1000)
	b, _ := newTestBot(t, &now)
	user := &telego.User{ID: 1, Username: "alice"}

	text, err := b.bonusReply(ctx, user)
	require.NoError(t, err)
	assert.Contains(t, text, "+5 ⭐")

	now = 1000 + 90
	text, err = b.bonusReply(ctx, user)
	require.NoError(t, err)
	assert.Contains(t, text, "Next one in 59 min.")
}

func TestRefReply(t *testing.T) {
	ctx := context.Background()
	now := int64(1000)
	b, _ := newTestBot(t, &now)
	alice := &telego.User{ID: 1, Username: "alice"}

	_, err := b.startReply(ctx, alice, "")
	require.NoError(t, err)
	_, err = b.startReply(ctx, &telego.User{ID: 2, Username: "bob"}, "referral_1")
	require.NoError(t, err)

	text, err := b.refReply(ctx, alice)
	require.NoError(t, err)
	assert.Contains(t, text, "https://t.me/stars_bot?start=referral_1")
	assert.Contains(t, text, "👥 Invited: 1")
	assert.Contains(t, text, "💰 Earned: 10 ⭐")

	text, err = b.referralsReply(ctx, alice)
	require.NoError(t, err)
	assert.Contains(t, text, "1. bob — 0 ⭐")
}

func TestTopAndStatsReply_CreateSenderLazily(t *testing.T) {
	ctx := context.Background()
	now := int64(1000)
	b, _ := newTestBot(t, &now)

	text, err := b.topReply(ctx, &telego.User{ID: 3, Username: "carol"})
	require.NoError(t, err)
	assert.Contains(t, text, "🥇 carol — 0 ⭐")

	text, err = b.statsReply(ctx, &telego.User{ID: 4, Username: "dave"})
	require.NoError(t, err)
	assert.Contains(t, text, "👥 Players: 2")
	assert.Contains(t, text, "Stars in circulation: 0")
}

type failingLedger struct {
	Ledger
}

func (failingLedger) GetOrCreate(ctx context.Context, id int64, name string, referrerID *int64) (*models.Account, bool, error) {
	return nil, false, ledger.NewStorageError("get account", errors.New("connection refused"))
}

func TestReplies_PropagateStorageErrors(t *testing.T) {
	b := &Bot{Ledger: failingLedger{}, Username: "stars_bot"}
	user := &telego.User{ID: 1}

	for name, reply := range commands {
		t.Run(name, func(t *testing.T) {
			_, err := reply(b, context.Background(), user)
			assert.True(t, ledger.IsStorageError(err))
		})
	}
}
