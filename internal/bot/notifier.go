package bot

import (
	"context"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"stars-bot/internal/models"
)

// Notifier sends proactive messages: referral credits and bonus reminders.
type Notifier struct {
	Instance *telego.Bot
}

func NewNotifier(instance *telego.Bot) *Notifier {
	return &Notifier{Instance: instance}
}

func (n *Notifier) ReferralCredited(ctx context.Context, referrer, invited models.Account, bonus int64) error {
	return n.sendText(ctx, referrer.ID, renderReferralCredited(invited, bonus))
}

func (n *Notifier) BonusReady(ctx context.Context, account models.Account, reward int64) error {
	return n.sendText(ctx, account.ID, renderBonusReady(reward))
}

func (n *Notifier) sendText(ctx context.Context, chatID int64, text string) error {
	_, err := n.Instance.SendMessage(ctx, tu.Message(tu.ID(chatID), text).WithParseMode(telego.ModeHTML))
	return err
}
