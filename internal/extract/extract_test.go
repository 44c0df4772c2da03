package extract

import (
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/smsledger/internal/model"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

var ref = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

func TestExtractUPIDebit(t *testing.T) {
	f := New().Extract("Rs.100.5 debited from A/C XX1234 on 15-Feb-26 to merchant@ybl", ref)

	assert.True(t, dec("100.50").Equal(f.Amount), "amount %s", f.Amount)
	assert.Equal(t, "100.50", f.Amount.StringFixed(2))
	assert.Equal(t, model.DirectionDebit, f.Direction)
	assert.Equal(t, date(2026, 2, 15), f.Date)
	assert.Equal(t, "merchant@ybl", f.UPIID)
	assert.Equal(t, "merchant", f.MerchantPhrase)
	assert.False(t, f.Has(model.FieldMobile))
	assert.False(t, f.Has(model.FieldBalance))
	assert.Equal(t, "currency_prefix", f.Rule(model.FieldAmount))
	assert.Equal(t, "date_dd_mon_yy", f.Rule(model.FieldDate))
}

func TestExtractAmount(t *testing.T) {
	tests := []struct {
		body string
		want string
		rule string
	}{
		{"Rs.100.5 debited", "100.50", "currency_prefix"},
		{"₹1,234.56 spent on card", "1234.56", "currency_prefix"},
		{"INR 1,00,000 credited", "100000.00", "currency_prefix"},
		{"Rs 500, paid to shop", "500.00", "currency_prefix"},
		{"Payment of 750/- received", "750.00", "currency_suffix"},
		{"Txn amt: 89.90 at store", "89.90", "amount_keyword"},
		{"A/c debited by 42.10 on 01-03-26", "42.10", "verb_decimal"},
	}
	e := New()
	for _, tt := range tests {
		v, rule, ok := e.extractKind(model.FieldAmount, tt.body, ref)
		require.True(t, ok, "no amount in %q", tt.body)
		assert.Equal(t, tt.want, v.Decimal.StringFixed(2), tt.body)
		assert.Equal(t, tt.rule, rule, tt.body)
	}
}

func TestExtractNoAmount(t *testing.T) {
	f := New().Extract("Your OTP for login is 482913. Do not share.", ref)
	assert.False(t, f.Has(model.FieldAmount))
	assert.True(t, f.Amount.IsZero())
}

func TestBalanceIsNotAmount(t *testing.T) {
	f := New().Extract("Avl Bal Rs 5,000.00. Rs 200 debited from A/c XX12", ref)
	assert.Equal(t, "200.00", f.Amount.StringFixed(2))
	require.NotNil(t, f.BalanceAfter)
	assert.Equal(t, "5000.00", f.BalanceAfter.StringFixed(2))
}

func TestBalanceAfterAmount(t *testing.T) {
	f := New().Extract("INR 2,500.00 credited to A/c XX9012. Avl Bal: INR 10,000.00", ref)
	assert.Equal(t, "2500.00", f.Amount.StringFixed(2))
	assert.Equal(t, model.DirectionCredit, f.Direction)
	require.NotNil(t, f.BalanceAfter)
	assert.Equal(t, "10000.00", f.BalanceAfter.StringFixed(2))
}

func TestExtractDirection(t *testing.T) {
	tests := []struct {
		body   string
		want   model.Direction
		wantOK bool
	}{
		{"Rs 10 debited", model.DirectionDebit, true},
		{"Rs 10 credited to your a/c", model.DirectionCredit, true},
		{"You have received Rs 10", model.DirectionCredit, true},
		{"Refund of Rs 10 processed", model.DirectionCredit, true},
		{"Rs 10 Dr. from a/c", model.DirectionDebit, true},
		{"Rs 10 Cr. to a/c", model.DirectionCredit, true},
		{"Rs 500 spent on your credit card", model.DirectionDebit, true},
		{"Your credit card XX12 was charged Rs 300", "", false},
	}
	e := New()
	for _, tt := range tests {
		v, _, ok := e.extractKind(model.FieldDirection, tt.body, ref)
		assert.Equal(t, tt.wantOK, ok, tt.body)
		if ok {
			assert.Equal(t, tt.want, v.Direction, tt.body)
		}
	}
}

func TestExtractDate(t *testing.T) {
	tests := []struct {
		body string
		want time.Time
	}{
		{"on 2026-01-31", date(2026, 1, 31)},
		{"on 15-Feb-26", date(2026, 2, 15)},
		{"on 15-Feb-51", date(1951, 2, 15)},
		{"on 15 February 2026", date(2026, 2, 15)},
		{"on 15/02/2026", date(2026, 2, 15)},
		{"on 05-01-26", date(2026, 1, 5)},
		{"on 05 Feb", date(2026, 2, 5)},
		// after the reference date, so last year
		{"on 05 Mar", date(2025, 3, 5)},
		{"at 15 Feb 10:30", date(2026, 2, 15)},
	}
	e := New()
	for _, tt := range tests {
		v, _, ok := e.extractKind(model.FieldDate, tt.body, ref)
		require.True(t, ok, "no date in %q", tt.body)
		assert.Equal(t, tt.want, v.Date, tt.body)
	}
}

func TestExtractDateRejects(t *testing.T) {
	e := New()
	for _, body := range []string{"on 31/02/26", "on 2026-13-01", "paid Rs 10"} {
		_, _, ok := e.extractKind(model.FieldDate, body, ref)
		assert.False(t, ok, body)
	}

	_, _, ok := e.extractKind(model.FieldDate, "on 05 Feb", time.Time{})
	assert.False(t, ok, "yearless date needs a reference time")
}

func TestResolveTwoDigitYear(t *testing.T) {
	assert.Equal(t, 2000, ResolveTwoDigitYear(0))
	assert.Equal(t, 2050, ResolveTwoDigitYear(50))
	assert.Equal(t, 1951, ResolveTwoDigitYear(51))
	assert.Equal(t, 1999, ResolveTwoDigitYear(99))
	assert.Equal(t, 2026, ResolveTwoDigitYear(2026))
}

func TestExtractUPIAndMobile(t *testing.T) {
	tests := []struct {
		body       string
		wantUPI    string
		wantMobile string
	}{
		{"Rs 10 sent to john.doe@okaxis", "john.doe@okaxis", ""},
		{"Paid to Merchant@PAYTM", "merchant@paytm", ""},
		{"Rs 99 paid to 9876543210@ybl", "9876543210@ybl", "9876543210"},
		{"Rs 500 received from 09876543210", "", "9876543210"},
		{"Rs 500 received from +919876543210 ok", "", "9876543210"},
		{"Queries? mail support@hdfcbank.com", "", ""},
		{"A/c XX1234 debited", "", ""},
	}
	e := New()
	for _, tt := range tests {
		f := e.Extract(tt.body, ref)
		assert.Equal(t, tt.wantUPI, f.UPIID, tt.body)
		assert.Equal(t, tt.wantMobile, f.MobileNumber, tt.body)
	}
}

func TestExtractMerchantPhrase(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{"paid to amazon", "amazon"},
		{"paid to amazon for Rs 500", "amazon"},
		{"Rs 250 spent at Cafe Coffee Day. Avl bal Rs 10", "Cafe Coffee Day"},
		{"Received from JOHN DOE on 12-Jan-26", "JOHN DOE"},
		{"Rs 40 paid to vpa swiggy@icici", "swiggy"},
		{"Rs 10 credited to your A/c XX12", ""},
		{"Rs 10 debited from HDFC Bank A/c XX12", ""},
		{"Rs 10 debited by Rs 10", ""},
		{"Rs 5,000 credited to A/c XX12 by NEFT from ACME CORP", "ACME CORP"},
		{"Rs 900 received via IMPS from Ravi Traders. Ref 1234", "Ravi Traders"},
		{"Rs 10 credited to your A/c XX12 from JOHN DOE", "JOHN DOE"},
		{"Rs 10 sent by UPI", ""},
	}
	e := New()
	for _, tt := range tests {
		f := e.Extract(tt.body, ref)
		assert.Equal(t, tt.want, f.MerchantPhrase, tt.body)
		assert.Equal(t, tt.want != "", f.Has(model.FieldMerchantPhrase), tt.body)
	}
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "9876543210", NormalizePhone("+91 98765-43210"))
	assert.Equal(t, "9876543210", NormalizePhone("919876543210"))
	assert.Equal(t, "9876543210", NormalizePhone("09876543210"))
	assert.Equal(t, "", NormalizePhone("12345"))
}

func TestCustomRuleOrder(t *testing.T) {
	custom := Rule{
		Name:    "rupee_word",
		Kind:    model.FieldAmount,
		Pattern: regexp.MustCompile(`(?i)amount\s+(\d+)`),
		Parse:   parseDecimalGroup(1),
	}
	e := NewWithRules(append([]Rule{custom}, DefaultRules()...))

	f := e.Extract("Rs 5 fee, amount 70 debited", ref)
	assert.Equal(t, "70.00", f.Amount.StringFixed(2))
	assert.Equal(t, "rupee_word", f.Rule(model.FieldAmount))
}
