// Package pipeline turns raw bank notifications into transaction records.
//
// Every stage before admission is a pure function of the event and the
// immutable tables held by the Pipeline, so events can be processed in
// parallel. Admission into the dedup guard is the only shared mutable step.
package pipeline

import (
	"errors"
	"runtime"
	"time"

	"github.com/rs/zerolog"

	"github.com/cleared-dev/smsledger/internal/categorize"
	"github.com/cleared-dev/smsledger/internal/dedup"
	"github.com/cleared-dev/smsledger/internal/extract"
	"github.com/cleared-dev/smsledger/internal/id"
	"github.com/cleared-dev/smsledger/internal/merchant"
	"github.com/cleared-dev/smsledger/internal/model"
	"github.com/cleared-dev/smsledger/internal/score"
	"github.com/cleared-dev/smsledger/internal/sender"
)

// DefaultMinDisplay is the confidence below which records are flagged for review.
const DefaultMinDisplay = 0.3

// Options wires a Pipeline. Senders, Resolver and Categories are required.
type Options struct {
	Senders    *sender.Filter
	Extractor  *extract.Extractor // default extract.New()
	Resolver   *merchant.Resolver
	Categories *categorize.Table
	Guard      *dedup.Guard // default batch mode

	// Location turns receive instants into calendar dates. Default UTC.
	Location *time.Location
	// Workers bounds ScanBatch parallelism. Zero means runtime.NumCPU().
	Workers    int
	MinDisplay float64
	Logger     *zerolog.Logger
}

// Pipeline is safe for concurrent use.
type Pipeline struct {
	senders    *sender.Filter
	extractor  *extract.Extractor
	resolver   *merchant.Resolver
	categories *categorize.Table
	guard      *dedup.Guard
	loc        *time.Location
	workers    int
	minDisplay float64
	log        zerolog.Logger
}

// New validates opts and builds a Pipeline.
func New(opts Options) (*Pipeline, error) {
	var errs []error
	if opts.Senders == nil {
		errs = append(errs, errors.New("sender allow-list is required"))
	}
	if opts.Resolver == nil {
		errs = append(errs, errors.New("merchant resolver is required"))
	}
	if opts.Categories == nil {
		errs = append(errs, errors.New("category table is required"))
	}
	if opts.Workers < 0 {
		errs = append(errs, errors.New("workers must not be negative"))
	}
	if opts.MinDisplay < 0 || opts.MinDisplay > 1 {
		errs = append(errs, errors.New("min display threshold must be within [0,1]"))
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	p := &Pipeline{
		senders:    opts.Senders,
		extractor:  opts.Extractor,
		resolver:   opts.Resolver,
		categories: opts.Categories,
		guard:      opts.Guard,
		loc:        opts.Location,
		workers:    opts.Workers,
		minDisplay: opts.MinDisplay,
		log:        zerolog.Nop(),
	}
	if p.extractor == nil {
		p.extractor = extract.New()
	}
	if p.guard == nil {
		p.guard, _ = dedup.New(dedup.Options{Mode: dedup.ModeBatch})
	}
	if p.loc == nil {
		p.loc = time.UTC
	}
	if p.workers == 0 {
		p.workers = runtime.NumCPU()
	}
	if p.minDisplay == 0 {
		p.minDisplay = DefaultMinDisplay
	}
	if opts.Logger != nil {
		p.log = *opts.Logger
	}
	return p, nil
}

// MinDisplay returns the review threshold.
func (p *Pipeline) MinDisplay() float64 {
	return p.minDisplay
}

// ParseOne runs a single event through every stage including admission.
// A discarded or duplicate event yields a *DiscardError.
func (p *Pipeline) ParseOne(ev model.RawEvent) (model.TransactionRecord, error) {
	rec, derr := p.process(ev, p.log)
	if derr != nil {
		return model.TransactionRecord{}, derr
	}
	if p.guard.AdmitRecord(rec) == dedup.RejectedAsDuplicate {
		p.log.Info().Str("dedup_key", rec.DedupKey).Str("sender", ev.SenderID).Msg("DuplicateRecord")
		return model.TransactionRecord{}, discard(ReasonDuplicateRecord, "dedup key %s already admitted", rec.DedupKey)
	}
	return rec, nil
}

// process runs the pure stages: filter, extract, resolve, categorize,
// score and assemble.
func (p *Pipeline) process(ev model.RawEvent, log zerolog.Logger) (model.TransactionRecord, *DiscardError) {
	ok, bank := p.senders.IsRecognized(ev.SenderID, ev.Body)
	if !ok {
		log.Debug().Str("sender", ev.SenderID).Msg("UnrecognizedSender")
		return model.TransactionRecord{}, discard(ReasonUnrecognizedSender, "sender %q", ev.SenderID)
	}

	ref := ev.ReceivedAt.In(p.loc)
	fields := p.extractor.Extract(ev.Body, ref)
	if !fields.Has(model.FieldAmount) || !fields.Amount.IsPositive() {
		log.Debug().Str("sender", ev.SenderID).Msg("NoAmountFound")
		return model.TransactionRecord{}, discard(ReasonNoAmountFound, "sender %q", ev.SenderID)
	}

	date := fields.Date
	if !fields.Has(model.FieldDate) {
		date = extract.CalendarDate(ref)
		log.Warn().Str("sender", ev.SenderID).Str("date", date.Format(model.DateFormat)).
			Msg("AmbiguousDate: no date in message, using receive time")
	}

	m := p.resolver.Resolve(fields.UPIID, fields.MobileNumber, ev.Body, fields.MerchantPhrase)
	if !m.Resolved() {
		log.Warn().Str("sender", ev.SenderID).Msg("UnresolvableMerchant")
	}
	c := p.categories.Categorize(m, m.Label+" "+ev.Body)
	confidence := score.Score(fields, m, c)

	return Assemble(ev, bank, date, fields, m, c, confidence), nil
}

// Assemble builds the record for one event from its stage outputs.
func Assemble(ev model.RawEvent, bank string, date time.Time, fields model.ExtractedFields,
	m model.MerchantIdentity, c model.Category, confidence float64,
) model.TransactionRecord {
	desc := id.CollapseSpace(ev.Body)
	amount := fields.Amount.Round(2)
	rec := model.TransactionRecord{
		Date:         date,
		Amount:       amount,
		Type:         fields.Direction.Type(),
		UPIID:        fields.UPIID,
		MobileNumber: fields.MobileNumber,
		Category:     c.Label,
		Confidence:   confidence,
		DedupKey:     id.DedupKey(date, amount, desc),
		Bank:         bank,
		Description:  desc,
		ReceivedAt:   ev.ReceivedAt,
	}
	if m.Resolved() {
		rec.Merchant = m.Label
	}
	return rec
}
