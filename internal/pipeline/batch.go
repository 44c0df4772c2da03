package pipeline

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/cleared-dev/smsledger/internal/dedup"
	"github.com/cleared-dev/smsledger/internal/id"
	"github.com/cleared-dev/smsledger/internal/model"
)

// Outcome is the terminal state of one event in a batch.
type Outcome string

const (
	OutcomeEmitted           Outcome = "emitted"
	OutcomeDiscarded         Outcome = "discarded"
	OutcomeRejectedDuplicate Outcome = "rejected_duplicate"
	// OutcomeSkipped marks events never reached because the scan was cancelled.
	OutcomeSkipped Outcome = "skipped"
)

// Counts tallies outcomes.
type Counts struct {
	Emitted            int
	UnrecognizedSender int
	NoAmountFound      int
	Duplicates         int
	Skipped            int
}

// BatchResult is what ScanBatch produced.
type BatchResult struct {
	RunID string
	// Records holds emitted records in input order.
	Records []model.TransactionRecord
	// Outcomes[i] is the terminal state of events[i].
	Outcomes []Outcome
	Counts   Counts
}

type processed struct {
	index   int
	record  model.TransactionRecord
	discard *DiscardError
}

// ProgressFunc receives the number of events finished so far and the batch size.
type ProgressFunc func(done, total int)

// ScanBatch processes events in parallel and admits the results in input
// order, so the first of several duplicates in the slice is the one emitted
// and repeated runs give the same records. In batch dedup mode every call
// admits into its own empty guard, so concurrent batches never see each
// other's keys; in rolling mode the shared guard is used.
//
// onProgress, if non-nil, is called from the calling goroutine after every
// event. Cancelling ctx stops the scan between events; the records admitted
// so far are returned together with ctx's error.
func (p *Pipeline) ScanBatch(ctx context.Context, events []model.RawEvent, onProgress ProgressFunc) (BatchResult, error) {
	total := len(events)
	res := BatchResult{
		RunID:    id.NewRunID(),
		Outcomes: make([]Outcome, total),
	}
	for i := range res.Outcomes {
		res.Outcomes[i] = OutcomeSkipped
	}
	log := p.log.With().Str("run_id", res.RunID).Logger()

	guard := p.guard
	if guard.Mode() == dedup.ModeBatch {
		guard = guard.ForBatch(total)
	}
	if total == 0 {
		return res, nil
	}

	workers := min(p.workers, total)
	jobs := make(chan int)
	results := make(chan processed, workers)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(jobs)
		for i := range events {
			select {
			case jobs <- i:
			case <-gctx.Done():
				return nil
			}
		}
		return nil
	})
	for range workers {
		g.Go(func() error {
			for i := range jobs {
				rec, derr := p.process(events[i], log)
				select {
				case results <- processed{index: i, record: rec, discard: derr}:
				case <-gctx.Done():
					return nil
				}
			}
			return nil
		})
	}
	go func() {
		_ = g.Wait()
		close(results)
	}()

	pending := make(map[int]processed)
	next := 0
	for r := range results {
		if ctx.Err() != nil {
			continue // drain
		}
		pending[r.index] = r
		for ctx.Err() == nil {
			pr, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			p.admit(&res, guard, pr, log)
			next++
			if onProgress != nil {
				onProgress(next, total)
			}
		}
	}

	res.Counts.Skipped = total - next
	log.Info().
		Int("total", total).
		Int("emitted", res.Counts.Emitted).
		Int("unrecognized_sender", res.Counts.UnrecognizedSender).
		Int("no_amount", res.Counts.NoAmountFound).
		Int("duplicates", res.Counts.Duplicates).
		Int("skipped", res.Counts.Skipped).
		Msg("batch scanned")

	if err := ctx.Err(); err != nil {
		return res, err
	}
	return res, nil
}

// admit records the outcome of one processed event. It runs only on the
// collecting goroutine, in input order.
func (p *Pipeline) admit(res *BatchResult, guard *dedup.Guard, pr processed, log zerolog.Logger) {
	if pr.discard != nil {
		res.Outcomes[pr.index] = OutcomeDiscarded
		switch pr.discard.Reason {
		case ReasonUnrecognizedSender:
			res.Counts.UnrecognizedSender++
		case ReasonNoAmountFound:
			res.Counts.NoAmountFound++
		}
		return
	}

	if guard.AdmitRecord(pr.record) == dedup.RejectedAsDuplicate {
		res.Outcomes[pr.index] = OutcomeRejectedDuplicate
		res.Counts.Duplicates++
		log.Info().Int("index", pr.index).Str("dedup_key", pr.record.DedupKey).Msg("DuplicateRecord")
		return
	}
	res.Outcomes[pr.index] = OutcomeEmitted
	res.Counts.Emitted++
	res.Records = append(res.Records, pr.record)
}
