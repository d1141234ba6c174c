package bot

import (
	"fmt"
	"html"
	"strings"

	"stars-bot/internal/ledger"
	"stars-bot/internal/models"
)

const genericFailure = "⚠️ Something went wrong. Please try again later."

func displayName(name string, id int64) string {
	if name == "" {
		return fmt.Sprintf("User %d", id)
	}
	return html.EscapeString(name)
}

func renderWelcome(name string, created bool, settings ledger.Settings) string {
	greeting := "Welcome back"
	if created {
		greeting = "Welcome"
	}
	return fmt.Sprintf("%s, %s! ⭐\n\n"+
		"Collect stars and climb the leaderboard:\n"+
		"• /farm — +%d ⭐ every %s\n"+
		"• /bonus — +%d ⭐ every %s\n"+
		"• /ref — invite friends, +%d ⭐ for each one\n"+
		"• /profile, /top, /stats",
		greeting, html.EscapeString(name),
		settings.FarmReward, formatSeconds(settings.FarmCooldown),
		settings.BonusReward, formatSeconds(settings.BonusCooldown),
		settings.ReferralBonus)
}

func renderFarm(res ledger.FarmResult, reward int64) string {
	if !res.Granted {
		return fmt.Sprintf("⏳ Farming is recharging. Come back in %s.\nBalance: %d ⭐", formatSeconds(res.SecondsRemaining), res.NewBalance)
	}
	return fmt.Sprintf("🌾 You farmed +%d ⭐\nBalance: %d ⭐", reward, res.NewBalance)
}

func renderBonus(res ledger.BonusResult, reward int64) string {
	if !res.Granted {
		return fmt.Sprintf("⏳ Bonus already claimed. Next one in %d min.\nBalance: %d ⭐", res.MinutesRemaining, res.NewBalance)
	}
	return fmt.Sprintf("🎁 Bonus claimed: +%d ⭐\nBalance: %d ⭐", reward, res.NewBalance)
}

func renderProfile(account *models.Account) string {
	var b strings.Builder
	fmt.Fprintf(&b, "👤 <b>%s</b>\n\n", displayName(account.DisplayName, account.ID))
	fmt.Fprintf(&b, "🔹 ID: <code>%d</code>\n", account.ID)
	fmt.Fprintf(&b, "🔹 Balance: %d ⭐\n", account.Balance)
	if account.ReferrerID != nil {
		fmt.Fprintf(&b, "🔹 Invited by: <code>%d</code>\n", *account.ReferrerID)
	}
	if !account.CreatedAt.IsZero() {
		fmt.Fprintf(&b, "🔹 Joined: %s\n", account.CreatedAt.UTC().Format("02.01.2006"))
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderLeaderboard(entries []ledger.LeaderboardEntry) string {
	if len(entries) == 0 {
		return "🏆 The leaderboard is empty. Be the first to /farm!"
	}

	var b strings.Builder
	b.WriteString("🏆 <b>Top players</b>\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "\n%s %s — %d ⭐", rankBadge(e.Rank), displayName(e.DisplayName, e.ID), e.Balance)
	}
	return b.String()
}

func rankBadge(rank int) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	default:
		return fmt.Sprintf("%d.", rank)
	}
}

func renderStats(stats models.Stats) string {
	return fmt.Sprintf("📊 <b>Statistics</b>\n\n👥 Players: %d\n⭐ Stars in circulation: %d", stats.UserCount, stats.TotalBalance)
}

func renderReferralLink(link string, invited int, earned, bonus int64) string {
	return fmt.Sprintf("🤝 <b>Invite friends</b>\n\n"+
		"You get +%d ⭐ for every friend who joins with your link.\n\n"+
		"👥 Invited: %d\n"+
		"💰 Earned: %d ⭐\n\n"+
		"🔗 Your link:\n<code>%s</code>", bonus, invited, earned, html.EscapeString(link))
}

func renderReferrals(referrals []models.Account) string {
	if len(referrals) == 0 {
		return "👥 You have not invited anyone yet. Use /ref to get your link."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "👥 <b>Your referrals (%d)</b>\n", len(referrals))
	for i, r := range referrals {
		fmt.Fprintf(&b, "\n%d. %s — %d ⭐", i+1, displayName(r.DisplayName, r.ID), r.Balance)
	}
	return b.String()
}

func renderReferralCredited(invited models.Account, bonus int64) string {
	return fmt.Sprintf("🎉 %s joined with your link! You received +%d ⭐", displayName(invited.DisplayName, invited.ID), bonus)
}

func renderBonusReady(reward int64) string {
	return fmt.Sprintf("🎁 Your bonus is ready! Claim +%d ⭐ with /bonus", reward)
}

// formatSeconds renders a duration as "1h 5m 3s", "2m 10s" or "45s", skipping zero parts.
func formatSeconds(sec int64) string {
	if sec <= 0 {
		return "0s"
	}
	h, m, s := sec/3600, sec%3600/60, sec%60

	var parts []string
	if h > 0 {
		parts = append(parts, fmt.Sprintf("%dh", h))
	}
	if m > 0 {
		parts = append(parts, fmt.Sprintf("%dm", m))
	}
	if s > 0 {
		parts = append(parts, fmt.Sprintf("%ds", s))
	}
	return strings.Join(parts, " ")
}
