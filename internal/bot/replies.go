package bot

import (
	"context"
	"strings"

	"github.com/mymmrac/telego"

	"stars-bot/internal/ledger"
	"stars-bot/internal/models"
)

// replyFunc builds the answer to one command for the sending user.
type replyFunc func(b *Bot, ctx context.Context, from *telego.User) (string, error)

// commands maps a command name, also used as inline button callback data, to its reply.
var commands = map[string]replyFunc{
	"farm":      (*Bot).farmReply,
	"bonus":     (*Bot).bonusReply,
	"profile":   (*Bot).profileReply,
	"top":       (*Bot).topReply,
	"stats":     (*Bot).statsReply,
	"ref":       (*Bot).refReply,
	"referrals": (*Bot).referralsReply,
}

func userName(u *telego.User) string {
	if u.Username != "" {
		return u.Username
	}
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// ensure lazily creates the sender's account.
func (b *Bot) ensure(ctx context.Context, from *telego.User) (*models.Account, error) {
	account, _, err := b.Ledger.GetOrCreate(ctx, from.ID, userName(from), nil)
	return account, err
}

func (b *Bot) startReply(ctx context.Context, from *telego.User, payload string) (string, error) {
	var referrerID *int64
	if id, ok := ledger.ParseReferralToken(payload); ok {
		referrerID = &id
	}

	name := userName(from)
	_, created, err := b.Ledger.GetOrCreate(ctx, from.ID, name, referrerID)
	if err != nil {
		return "", err
	}
	return renderWelcome(name, created, b.Ledger.Settings()), nil
}

func (b *Bot) farmReply(ctx context.Context, from *telego.User) (string, error) {
	if _, err := b.ensure(ctx, from); err != nil {
		return "", err
	}
	res, err := b.Ledger.ClaimFarm(ctx, from.ID)
	if err != nil {
		return "", err
	}
	return renderFarm(res, b.Ledger.Settings().FarmReward), nil
}

func (b *Bot) bonusReply(ctx context.Context, from *telego.User) (string, error) {
	if _, err := b.ensure(ctx, from); err != nil {
		return "", err
	}
	res, err := b.Ledger.ClaimBonus(ctx, from.ID)
	if err != nil {
		return "", err
	}
	return renderBonus(res, b.Ledger.Settings().BonusReward), nil
}

func (b *Bot) profileReply(ctx context.Context, from *telego.User) (string, error) {
	account, err := b.ensure(ctx, from)
	if err != nil {
		return "", err
	}
	return renderProfile(account), nil
}

func (b *Bot) topReply(ctx context.Context, from *telego.User) (string, error) {
	if _, err := b.ensure(ctx, from); err != nil {
		return "", err
	}
	entries, err := b.Ledger.GetLeaderboard(ctx, ledger.DefaultLeaderboardLimit)
	if err != nil {
		return "", err
	}
	return renderLeaderboard(entries), nil
}

func (b *Bot) statsReply(ctx context.Context, from *telego.User) (string, error) {
	if _, err := b.ensure(ctx, from); err != nil {
		return "", err
	}
	stats, err := b.Ledger.GetAggregateStats(ctx)
	if err != nil {
		return "", err
	}
	return renderStats(stats), nil
}

func (b *Bot) refReply(ctx context.Context, from *telego.User) (string, error) {
	if _, err := b.ensure(ctx, from); err != nil {
		return "", err
	}
	referrals, err := b.Ledger.ListReferrals(ctx, from.ID)
	if err != nil {
		return "", err
	}
	earned, err := b.Ledger.ReferralEarnings(ctx, from.ID)
	if err != nil {
		return "", err
	}
	link := ledger.ReferralLink(b.Username, from.ID)
	return renderReferralLink(link, len(referrals), earned, b.Ledger.Settings().ReferralBonus), nil
}

func (b *Bot) referralsReply(ctx context.Context, from *telego.User) (string, error) {
	if _, err := b.ensure(ctx, from); err != nil {
		return "", err
	}
	referrals, err := b.Ledger.ListReferrals(ctx, from.ID)
	if err != nil {
		return "", err
	}
	return renderReferrals(referrals), nil
}
