package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/smsledger/internal/categorize"
	"github.com/cleared-dev/smsledger/internal/dedup"
	"github.com/cleared-dev/smsledger/internal/merchant"
	"github.com/cleared-dev/smsledger/internal/model"
	"github.com/cleared-dev/smsledger/internal/sender"
)

var received = time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func event(senderID, body string) model.RawEvent {
	return model.RawEvent{SenderID: senderID, Body: body, ReceivedAt: received}
}

var (
	scenarioA = event("VM-HDFCBK", "Rs.100.5 debited from A/C XX1234 on 15-Feb-26 to merchant@ybl")
	scenarioB = event("AD-ICICIB", "paid to amazon for Rs 500")
	scenarioC = event("RANDOM123", "Rs.100.5 debited from A/C XX1234 on 15-Feb-26 to merchant@ybl")
	noAmount  = event("VM-HDFCBK", "Your OTP for txn is 482913. Do not share it with anyone.")
)

type testOpts struct {
	guard   *dedup.Guard
	workers int
	logger  *zerolog.Logger
}

func newPipeline(t *testing.T, o testOpts) *Pipeline {
	t.Helper()
	senders, err := sender.NewFilter(sender.DefaultRules())
	require.NoError(t, err)
	contacts, err := merchant.NewContactIndex([]merchant.Contact{{Phone: "9876543210", Name: "Ravi Kumar"}})
	require.NoError(t, err)

	p, err := New(Options{
		Senders:    senders,
		Resolver:   merchant.NewResolver(merchant.DefaultTable(), contacts),
		Categories: categorize.DefaultTable(),
		Guard:      o.guard,
		Workers:    o.workers,
		Logger:     o.logger,
	})
	require.NoError(t, err)
	return p
}

func TestParseOneUPIDebit(t *testing.T) {
	rec, err := newPipeline(t, testOpts{}).ParseOne(scenarioA)
	require.NoError(t, err)

	assert.Equal(t, "100.50", rec.Amount.StringFixed(2))
	assert.Equal(t, model.TypeExpense, rec.Type)
	assert.Equal(t, date(2026, 2, 15), rec.Date)
	assert.Equal(t, "Merchant", rec.Merchant)
	assert.Equal(t, "merchant@ybl", rec.UPIID)
	assert.Equal(t, model.OtherCategory, rec.Category)
	assert.GreaterOrEqual(t, rec.Confidence, 0.7)
	assert.InDelta(t, 0.85, rec.Confidence, 1e-9)
	assert.Equal(t, "HDFC Bank", rec.Bank)
	assert.NoError(t, rec.Validate())
}

func TestParseOneKnownMerchantWithoutDate(t *testing.T) {
	rec, err := newPipeline(t, testOpts{}).ParseOne(scenarioB)
	require.NoError(t, err)

	assert.Equal(t, date(2026, 3, 10), rec.Date, "falls back to the receive date")
	assert.Equal(t, "Amazon", rec.Merchant)
	assert.Equal(t, "Shopping", rec.Category)
	assert.Equal(t, "500.00", rec.Amount.StringFixed(2))
	assert.InDelta(t, 0.75, rec.Confidence, 1e-9)
}

func TestParseOneUnrecognizedSender(t *testing.T) {
	_, err := newPipeline(t, testOpts{}).ParseOne(scenarioC)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnrecognizedSender))
	assert.Equal(t, ReasonUnrecognizedSender, ReasonOf(err))

	var de *DiscardError
	require.True(t, errors.As(err, &de))
	assert.Contains(t, de.Error(), "RANDOM123")
}

func TestParseOneNoAmount(t *testing.T) {
	_, err := newPipeline(t, testOpts{}).ParseOne(noAmount)
	assert.True(t, errors.Is(err, ErrNoAmountFound))
	assert.False(t, errors.Is(err, ErrUnrecognizedSender))
}

func TestParseOneLowercasePhrase(t *testing.T) {
	rec, err := newPipeline(t, testOpts{}).ParseOne(event("VM-AXISBK", "Rs 20 paid to amazon"))
	require.NoError(t, err)
	assert.Equal(t, "Amazon", rec.Merchant)
}

func TestParseOneContactAndIncome(t *testing.T) {
	rec, err := newPipeline(t, testOpts{}).ParseOne(event("VM-SBIINB", "Rs 1,500 credited to your A/c from 9876543210@ybl on 08-03-26"))
	require.NoError(t, err)
	assert.Equal(t, model.TypeIncome, rec.Type)
	assert.Equal(t, "Ravi Kumar", rec.Merchant)
	assert.Equal(t, "9876543210", rec.MobileNumber)
	assert.Equal(t, date(2026, 3, 8), rec.Date)
}

func TestParseOneUnresolvedMerchantIsNull(t *testing.T) {
	rec, err := newPipeline(t, testOpts{}).ParseOne(event("VM-HDFCBK", "Rs 300 debited from A/c XX12 on 01-03-26"))
	require.NoError(t, err)
	assert.Empty(t, rec.Merchant)

	out, err := rec.MarshalJSON()
	require.NoError(t, err)
	assert.Contains(t, string(out), `"merchant":null`)
}

func TestParseOneDuplicate(t *testing.T) {
	p := newPipeline(t, testOpts{})
	_, err := p.ParseOne(scenarioA)
	require.NoError(t, err)

	_, err = p.ParseOne(scenarioA)
	assert.True(t, errors.Is(err, ErrDuplicateRecord))
}

func TestParseOneLogsWarnings(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	p := newPipeline(t, testOpts{logger: &logger})

	_, err := p.ParseOne(event("VM-HDFCBK", "Rs 300 debited from A/c XX12"))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "AmbiguousDate")
	assert.Contains(t, buf.String(), "UnresolvableMerchant")
}

func batchEvents() []model.RawEvent {
	return []model.RawEvent{
		scenarioA,
		scenarioA,
		scenarioC,
		scenarioB,
		noAmount,
	}
}

func TestScanBatch(t *testing.T) {
	p := newPipeline(t, testOpts{workers: 3})

	var mu sync.Mutex
	var progress []int
	res, err := p.ScanBatch(context.Background(), batchEvents(), func(done, total int) {
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, 5, total)
		progress = append(progress, done)
	})
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID)
	require.Len(t, res.Records, 2)
	assert.Equal(t, "Merchant", res.Records[0].Merchant)
	assert.Equal(t, "Amazon", res.Records[1].Merchant)
	assert.Equal(t, []Outcome{
		OutcomeEmitted,
		OutcomeRejectedDuplicate,
		OutcomeDiscarded,
		OutcomeEmitted,
		OutcomeDiscarded,
	}, res.Outcomes)
	assert.Equal(t, Counts{Emitted: 2, UnrecognizedSender: 1, NoAmountFound: 1, Duplicates: 1}, res.Counts)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, progress)
}

func TestScanBatchResetsBetweenRuns(t *testing.T) {
	p := newPipeline(t, testOpts{})

	first, err := p.ScanBatch(context.Background(), batchEvents(), nil)
	require.NoError(t, err)
	second, err := p.ScanBatch(context.Background(), batchEvents(), nil)
	require.NoError(t, err)

	assert.Equal(t, first.Records, second.Records)
	assert.Equal(t, first.Outcomes, second.Outcomes)
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestScanBatchConcurrentBatchesKeepOwnKeys(t *testing.T) {
	p := newPipeline(t, testOpts{workers: 2})
	other := event("AD-ICICIB", "paid to amazon for Rs 500")

	var inner BatchResult
	res, err := p.ScanBatch(context.Background(), []model.RawEvent{scenarioA, scenarioA}, func(done, _ int) {
		if done == 1 {
			var err error
			inner, err = p.ScanBatch(context.Background(), []model.RawEvent{other}, nil)
			require.NoError(t, err)
		}
	})
	require.NoError(t, err)

	assert.Equal(t, []Outcome{OutcomeEmitted, OutcomeRejectedDuplicate}, res.Outcomes)
	assert.Equal(t, 1, res.Counts.Duplicates)
	assert.Equal(t, []Outcome{OutcomeEmitted}, inner.Outcomes)
}

func TestScanBatchLargerThanGuardCapacity(t *testing.T) {
	guard, err := dedup.New(dedup.Options{Mode: dedup.ModeBatch, Capacity: 2})
	require.NoError(t, err)
	p := newPipeline(t, testOpts{guard: guard, workers: 2})

	events := []model.RawEvent{
		event("VM-HDFCBK", "Rs 10 debited on 01-03-26"),
		event("VM-HDFCBK", "Rs 20 debited on 01-03-26"),
		event("VM-HDFCBK", "Rs 30 debited on 01-03-26"),
		event("VM-HDFCBK", "Rs 10 debited on 01-03-26"),
	}
	res, err := p.ScanBatch(context.Background(), events, nil)
	require.NoError(t, err)

	assert.Len(t, res.Records, 3)
	assert.Equal(t, OutcomeRejectedDuplicate, res.Outcomes[3])
}

func TestScanBatchRollingRemembersAcrossRuns(t *testing.T) {
	guard, err := dedup.New(dedup.Options{Mode: dedup.ModeRolling, Window: 24 * time.Hour})
	require.NoError(t, err)
	p := newPipeline(t, testOpts{guard: guard})

	_, err = p.ScanBatch(context.Background(), []model.RawEvent{scenarioA}, nil)
	require.NoError(t, err)
	res, err := p.ScanBatch(context.Background(), []model.RawEvent{scenarioA}, nil)
	require.NoError(t, err)
	assert.Empty(t, res.Records)
	assert.Equal(t, 1, res.Counts.Duplicates)
}

func TestScanBatchFirstSeenWinsUnderParallelism(t *testing.T) {
	var events []model.RawEvent
	for i := 0; i < 300; i++ {
		body := fmt.Sprintf("Rs %d.00 debited from A/c XX12 on 01-03-26 ref %d", i%50+1, i)
		events = append(events, event("VM-HDFCBK", body))
	}
	p := newPipeline(t, testOpts{workers: 8})

	res, err := p.ScanBatch(context.Background(), events, nil)
	require.NoError(t, err)

	// Same date and amount, and the first 15 characters are identical for
	// equal amounts, so only the first 50 events are new.
	require.Len(t, res.Records, 50)
	for i, o := range res.Outcomes {
		if i < 50 {
			assert.Equal(t, OutcomeEmitted, o, "event %d", i)
		} else {
			assert.Equal(t, OutcomeRejectedDuplicate, o, "event %d", i)
		}
	}
	for i, r := range res.Records {
		assert.Equal(t, fmt.Sprintf("%d.00", i+1), r.Amount.StringFixed(2))
	}
}

func TestScanBatchCancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := newPipeline(t, testOpts{}).ScanBatch(ctx, batchEvents(), nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, res.Records)
	assert.Equal(t, 5, res.Counts.Skipped)
	for _, o := range res.Outcomes {
		assert.Equal(t, OutcomeSkipped, o)
	}
}

func TestScanBatchCancelledBetweenEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := batchEvents()
	res, err := newPipeline(t, testOpts{workers: 2}).ScanBatch(ctx, events, func(done, _ int) {
		if done == 3 {
			cancel()
		}
	})
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, res.Records, 1)
	assert.Equal(t, []Outcome{OutcomeEmitted, OutcomeRejectedDuplicate, OutcomeDiscarded, OutcomeSkipped, OutcomeSkipped}, res.Outcomes)
	assert.Equal(t, 2, res.Counts.Skipped)
}

func TestScanBatchEmpty(t *testing.T) {
	res, err := newPipeline(t, testOpts{}).ScanBatch(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, res.Records)
	assert.NotEmpty(t, res.RunID)
}

func TestNewRequiresTables(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sender allow-list is required")
	assert.Contains(t, err.Error(), "category table is required")

	_, err = New(Options{MinDisplay: 2})
	assert.Contains(t, err.Error(), "min display")
}

func TestParseOneMerchantInsideHandle(t *testing.T) {
	rec, err := newPipeline(t, testOpts{}).ParseOne(event("VM-HDFCBK", "Rs 349 debited from A/c XX1234 to zomatoorder@hdfcbank on 09-03-26"))
	require.NoError(t, err)
	assert.Equal(t, "Zomato", rec.Merchant)
	assert.Equal(t, "Food & Dining", rec.Category)
	assert.Equal(t, "zomatoorder@hdfcbank", rec.UPIID)
}

func TestParseOneNamesSenderAfterTransferRail(t *testing.T) {
	rec, err := newPipeline(t, testOpts{}).ParseOne(event("JD-SBIINB", "Rs 5,000 credited to A/c XX12 by NEFT from ACME CORP on 09-03-26"))
	require.NoError(t, err)
	assert.Equal(t, model.TypeIncome, rec.Type)
	assert.Equal(t, "Acme Corp", rec.Merchant)
}

func TestAssembleDedupKeyIgnoresWhitespace(t *testing.T) {
	p := newPipeline(t, testOpts{})
	a, err := p.ParseOne(event("VM-HDFCBK", "Rs 10 debited   on 01-03-26"))
	require.NoError(t, err)

	_, err = p.ParseOne(event("VM-HDFCBK", "Rs 10 debited on 01-03-26"))
	assert.True(t, errors.Is(err, ErrDuplicateRecord))
	assert.Equal(t, "Rs 10 debited on 01-03-26", a.Description)
}
