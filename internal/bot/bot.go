package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
	tu "github.com/mymmrac/telego/telegoutil"
	log "github.com/sirupsen/logrus"

	"stars-bot/internal/ledger"
	"stars-bot/internal/models"
)

const defaultUsername = "stars_bot"

// Ledger is what the handlers need from the account ledger.
type Ledger interface {
	GetOrCreate(ctx context.Context, id int64, displayName string, referrerID *int64) (*models.Account, bool, error)
	ClaimFarm(ctx context.Context, id int64) (ledger.FarmResult, error)
	ClaimBonus(ctx context.Context, id int64) (ledger.BonusResult, error)
	GetProfile(ctx context.Context, id int64) (*models.Account, error)
	GetLeaderboard(ctx context.Context, limit int) ([]ledger.LeaderboardEntry, error)
	GetAggregateStats(ctx context.Context) (models.Stats, error)
	ListReferrals(ctx context.Context, referrerID int64) ([]models.Account, error)
	ReferralEarnings(ctx context.Context, referrerID int64) (int64, error)
	Settings() ledger.Settings
}

type Bot struct {
	Instance *telego.Bot
	Ledger   Ledger
	Username string
}

func NewBot(instance *telego.Bot, l Ledger) *Bot {
	return &Bot{
		Instance: instance,
		Ledger:   l,
		Username: defaultUsername,
	}
}

func mainMenu() *telego.InlineKeyboardMarkup {
	return tu.InlineKeyboard(
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("🌾 Farm").WithCallbackData("farm"),
			tu.InlineKeyboardButton("🎁 Bonus").WithCallbackData("bonus"),
		),
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("👤 Profile").WithCallbackData("profile"),
			tu.InlineKeyboardButton("🏆 Top").WithCallbackData("top"),
		),
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("🤝 Invite").WithCallbackData("ref"),
			tu.InlineKeyboardButton("👥 My referrals").WithCallbackData("referrals"),
		),
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("📊 Stats").WithCallbackData("stats"),
		),
	)
}

// Start long-polls updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	if me, err := b.Instance.GetMe(ctx); err == nil {
		b.Username = me.Username
	} else {
		log.WithError(err).Warn("Failed to fetch bot username, referral links use the default")
	}

	updates, err := b.Instance.UpdatesViaLongPolling(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start long polling: %w", err)
	}

	handler, err := th.NewBotHandler(b.Instance, updates)
	if err != nil {
		return fmt.Errorf("failed to create bot handler: %w", err)
	}

	b.register(handler)

	go func() {
		<-ctx.Done()
		if err := handler.Stop(); err != nil {
			log.WithError(err).Warn("Failed to stop bot handler")
		}
	}()

	log.WithField("username", b.Username).Info("Bot started")
	return handler.Start()
}

func (b *Bot) register(handler *th.BotHandler) {
	handler.Handle(b.handleStart, th.CommandEqual("start"))

	for name, reply := range commands {
		handler.Handle(b.commandHandler(name, reply), th.CommandEqual(name))
		handler.Handle(b.callbackHandler(name, reply), th.CallbackDataEqual(name))
	}
}

func (b *Bot) handleStart(ctx *th.Context, update telego.Update) error {
	message := update.Message
	if message.From == nil {
		return nil
	}

	payload := ""
	if parts := strings.Fields(message.Text); len(parts) > 1 {
		payload = parts[1]
	}

	text, err := b.startReply(ctx, message.From, payload)
	b.send(ctx, message.Chat.ID, "start", text, err)
	return nil
}

func (b *Bot) commandHandler(name string, reply replyFunc) th.Handler {
	return func(ctx *th.Context, update telego.Update) error {
		message := update.Message
		if message.From == nil {
			return nil
		}
		text, err := reply(b, ctx, message.From)
		b.send(ctx, message.Chat.ID, name, text, err)
		return nil
	}
}

func (b *Bot) callbackHandler(name string, reply replyFunc) th.Handler {
	return func(ctx *th.Context, update telego.Update) error {
		callback := update.CallbackQuery
		text, err := reply(b, ctx, &callback.From)
		b.send(ctx, callback.From.ID, name, text, err)
		_ = ctx.Bot().AnswerCallbackQuery(ctx, tu.CallbackQuery(callback.ID))
		return nil
	}
}

// send delivers the reply, or the generic failure text when the command failed.
func (b *Bot) send(ctx context.Context, chatID int64, command, text string, cmdErr error) {
	if cmdErr != nil {
		log.WithError(cmdErr).WithFields(log.Fields{
			"command": command,
			"chat_id": chatID,
			"storage": ledger.IsStorageError(cmdErr),
		}).Error("Command failed")
		text = genericFailure
	}

	msg := tu.Message(tu.ID(chatID), text).
		WithParseMode(telego.ModeHTML).
		WithReplyMarkup(mainMenu())
	if _, err := b.Instance.SendMessage(ctx, msg); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Warn("Failed to send reply")
	}
}
