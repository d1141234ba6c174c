package ledger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseReferralToken(t *testing.T) {
	tests := []struct {
		token  string
		wantID int64
		wantOK bool
	}{
		{"referral_12345", 12345, true},
		{" referral_7 ", 7, true},
		{"referral_", 0, false},
		{"referral_abc", 0, false},
		{"referral_-3", 0, false},
		{"referral_0", 0, false},
		{"referral_+42", 0, false},
		{"referral_0042", 0, false},
		{"referral_4 2", 0, false},
		{"ref_12345", 0, false},
		{"12345", 0, false},
		{"", 0, false},
		{"referral_99999999999999999999", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			id, ok := ParseReferralToken(tt.token)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestReferralLink(t *testing.T) {
	assert.Equal(t, "referral_42", ReferralToken(42))
	assert.Equal(t, "https://t.me/stars_bot?start=referral_42", ReferralLink("stars_bot", 42))

	id, ok := ParseReferralToken(ReferralToken(42))
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)
}

func TestCooldownRemaining(t *testing.T) {
	assert.Zero(t, cooldownRemaining(0, 10, 60), "never claimed")
	assert.Equal(t, int64(30), cooldownRemaining(1000, 1030, 60))
	assert.Zero(t, cooldownRemaining(1000, 1060, 60))
	assert.Equal(t, int64(60), cooldownRemaining(1000, 900, 60), "clock went backwards")
}

func TestStorageError(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewStorageError("get account", cause)

	assert.True(t, IsStorageError(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "storage get account: connection refused", err.Error())
	assert.Same(t, err, NewStorageError("other", err))
	assert.NoError(t, NewStorageError("noop", nil))
	assert.False(t, IsStorageError(ErrNotFound))
}
