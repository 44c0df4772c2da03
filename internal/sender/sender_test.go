package sender

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/smsledger/internal/validate"
)

func TestIsRecognized(t *testing.T) {
	f, err := NewFilter(DefaultRules())
	require.NoError(t, err)

	tests := []struct {
		sender   string
		body     string
		wantOK   bool
		wantBank string
	}{
		{"VM-HDFCBK", "Rs.100 debited", true, "HDFC Bank"},
		{"ad-icicib", "INR 50 credited", true, "ICICI Bank"},
		{"JD-SBIINB-S", "Rs 10 debited", true, "State Bank of India"},
		{"RANDOM123", "Rs.100 debited", false, ""},
		{"", "Rs.100 debited", false, ""},
		{"VM-PAYTMB", "Rs 20 paid", true, "Paytm Payments Bank"},
		{"AX-PHONPE", "Rs 20 paid to shop", true, "PhonePe"},
		{"AX-PHONPE", "Big cashback offers this weekend", false, ""},
	}
	for _, tt := range tests {
		ok, bank := f.IsRecognized(tt.sender, tt.body)
		assert.Equal(t, tt.wantOK, ok, "IsRecognized(%q)", tt.sender)
		assert.Equal(t, tt.wantBank, bank, "bank for %q", tt.sender)
	}
}

func TestPrefixMatch(t *testing.T) {
	f, err := NewFilter([]Rule{{Pattern: "hdfc", Bank: "HDFC", Match: MatchPrefix}})
	require.NoError(t, err)

	ok, _ := f.IsRecognized("VM-HDFCBK", "")
	assert.True(t, ok)
	ok, _ = f.IsRecognized("XHDFC", "")
	assert.False(t, ok)
}

func TestBankDefaultsToPattern(t *testing.T) {
	f, err := NewFilter([]Rule{{Pattern: "mybank"}})
	require.NoError(t, err)
	ok, bank := f.IsRecognized("MYBANK", "")
	assert.True(t, ok)
	assert.Equal(t, "MYBANK", bank)
}

func TestNewFilter_Invalid(t *testing.T) {
	_, err := NewFilter(nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, validate.ErrInvalid))

	_, err = NewFilter([]Rule{{Pattern: " "}, {Pattern: "X", Match: "regex"}})
	require.Error(t, err)
	var es validate.Errors
	require.True(t, errors.As(err, &es))
	assert.Len(t, es, 2)
}
