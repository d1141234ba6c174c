package ledger

import (
	"fmt"
	"strconv"
	"strings"
)

const referralPrefix = "referral_"

// ReferralToken is the /start payload that credits id when a new user joins with it.
func ReferralToken(id int64) string {
	return referralPrefix + strconv.FormatInt(id, 10)
}

// ParseReferralToken extracts the referrer id. Anything malformed yields ok=false.
func ParseReferralToken(token string) (int64, bool) {
	raw, found := strings.CutPrefix(strings.TrimSpace(token), referralPrefix)
	if !found || raw == "" || raw[0] == '0' {
		return 0, false
	}
	for _, c := range raw {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// ReferralLink builds the t.me deep link for a bot username.
func ReferralLink(botUsername string, id int64) string {
	return fmt.Sprintf("https://t.me/%s?start=%s", botUsername, ReferralToken(id))
}
