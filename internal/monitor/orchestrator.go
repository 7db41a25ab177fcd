// Package monitor wires the fetch → validate → evaluate → dedup →
// notify pipeline together and contains every failure to the narrowest
// scope, so one bad row, fund, or category never takes down a run.
package monitor

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sort"
	"sync/atomic"
	"time"

	"github.com/lofarb/fund-monitor/internal/calendar"
	"github.com/lofarb/fund-monitor/internal/market"
	"github.com/lofarb/fund-monitor/internal/models"
	"github.com/lofarb/fund-monitor/internal/rules"
)

// DefaultMaxBatch bounds notification volume in a single run on days
// with many simultaneous signals.
const DefaultMaxBatch = 20

// Fetcher retrieves the raw listing payload for one fund category.
type Fetcher interface {
	Fetch(ctx context.Context, category string) ([]byte, error)
}

// Ledger is the once-per-day notification dedup store.
type Ledger interface {
	AlreadyNotified(fundID string, date time.Time) (bool, error)
	RecordNotification(fundID string, date time.Time) (*models.FundNotification, error)
}

// Notifier delivers a rendered message to the operator.
type Notifier interface {
	Send(ctx context.Context, title, content string) error
}

// EventPublisher emits audit events for ledgered funds.
type EventPublisher interface {
	PublishFundNotified(ctx context.Context, rec *models.FundRecord, phase string, delivered bool) error
}

// PhaseSource reports the market session phase for an instant.
type PhaseSource interface {
	CurrentPhase(now time.Time) (calendar.Phase, error)
}

// RunLock is a cross-process "run in progress" guard. It is an
// optimization against duplicate upstream load; correctness rests on
// the ledger's atomic upsert, not on the lock.
type RunLock interface {
	TryLock(ctx context.Context) (bool, error)
	Unlock(ctx context.Context)
}

// Orchestrator executes one monitoring run per trigger tick.
type Orchestrator struct {
	// Publisher is the optional Kafka audit stream.
	Publisher EventPublisher
	// Lock is the optional cross-process run guard.
	Lock RunLock

	calendar PhaseSource
	fetcher  Fetcher
	ledger   Ledger
	notifier Notifier
	holdings map[string]bool
	loc      *time.Location
	maxBatch int

	running atomic.Bool
	now     func() time.Time
	jitter  func(ctx context.Context)
}

// NewOrchestrator creates an orchestrator. holdings is the static set
// of fund ids the operator currently holds; loc is the exchange
// timezone used to derive the ledger's notify date (nil means local).
func NewOrchestrator(cal PhaseSource, fetcher Fetcher, ledger Ledger, notifier Notifier, holdings map[string]bool, loc *time.Location) *Orchestrator {
	if loc == nil {
		loc = time.Local
	}
	return &Orchestrator{
		calendar: cal,
		fetcher:  fetcher,
		ledger:   ledger,
		notifier: notifier,
		holdings: holdings,
		loc:      loc,
		maxBatch: DefaultMaxBatch,
		now:      time.Now,
		jitter:   fetchJitter,
	}
}

// RunOnce executes a single monitoring run to completion. It returns
// an error only for run-level failures (calendar unavailable, every
// fetch failed); per-fund failures are logged and contained.
func (o *Orchestrator) RunOnce(ctx context.Context) error {
	now := o.now()

	phase, err := o.calendar.CurrentPhase(now)
	if err != nil {
		// Fail closed: without a trustworthy calendar we must not risk
		// notifying outside market hours.
		return fmt.Errorf("calendar unavailable, skipping run: %w", err)
	}
	if phase == calendar.Closed {
		return nil
	}

	if !o.running.CompareAndSwap(false, true) {
		log.Printf("run already in progress, skipping tick")
		return nil
	}
	defer o.running.Store(false)

	if o.Lock != nil {
		ok, err := o.Lock.TryLock(ctx)
		if err != nil {
			log.Printf("run lock unavailable, proceeding anyway: %v", err)
		} else if !ok {
			log.Printf("run lock held elsewhere, skipping tick")
			return nil
		} else {
			defer o.Lock.Unlock(context.WithoutCancel(ctx))
		}
	}

	payloads := o.fetchAll(ctx)
	if len(payloads) == 0 {
		return fmt.Errorf("all category fetches failed")
	}

	funds := market.ParseFunds(payloads)
	log.Printf("run: phase=%s funds=%d", phase, len(funds))

	today := now.In(o.loc)
	candidates := o.selectCandidates(funds, phase, today)

	for i := range candidates {
		o.notifyFund(ctx, &candidates[i], phase, today)
	}

	return nil
}

func (o *Orchestrator) fetchAll(ctx context.Context) [][]byte {
	payloads := make([][]byte, 0, len(models.AllCategories))
	for i, category := range models.AllCategories {
		if i > 0 {
			o.jitter(ctx)
		}
		if ctx.Err() != nil {
			break
		}
		payload, err := o.fetcher.Fetch(ctx, category)
		if err != nil {
			log.Printf("fetch %s failed: %v", category, err)
			continue
		}
		payloads = append(payloads, payload)
	}
	return payloads
}

// selectCandidates applies the rule engine and the ledger filter, then
// keeps the maxBatch records with the largest premium/discount magnitude.
func (o *Orchestrator) selectCandidates(funds map[string]models.FundRecord, phase calendar.Phase, today time.Time) []models.FundRecord {
	var candidates []models.FundRecord
	for _, rec := range funds {
		if !rules.Qualifies(&rec, o.holdings[rec.FundID], phase) {
			continue
		}
		notified, err := o.ledger.AlreadyNotified(rec.FundID, today)
		if err != nil {
			log.Printf("ledger check for %s failed: %v", rec.FundID, err)
			continue
		}
		if notified {
			continue
		}
		candidates = append(candidates, rec)
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].PremiumRate.Abs().GreaterThan(candidates[j].PremiumRate.Abs())
	})
	if len(candidates) > o.maxBatch {
		candidates = candidates[:o.maxBatch]
	}
	return candidates
}

// notifyFund writes the ledger entry, then delivers the message. The
// ledger write comes first and stands regardless of delivery outcome:
// that is what upholds at-most-once-per-day under notifier outages.
func (o *Orchestrator) notifyFund(ctx context.Context, rec *models.FundRecord, phase calendar.Phase, today time.Time) {
	if _, err := o.ledger.RecordNotification(rec.FundID, today); err != nil {
		log.Printf("ledger write for %s failed, skipping delivery: %v", rec.FundID, err)
		return
	}

	title := fmt.Sprintf("%s %s", rec.FundID, rec.FundName)
	content := fmt.Sprintf("%s%% %s %s", rec.PremiumRate.StringFixed(2), rec.ApplyStatus, rec.RedeemStatus)

	delivered := true
	if err := o.notifier.Send(ctx, title, content); err != nil {
		delivered = false
		log.Printf("delivery for %s failed: %v", rec.FundID, err)
	}

	if o.Publisher != nil {
		if err := o.Publisher.PublishFundNotified(ctx, rec, phase.String(), delivered); err != nil {
			log.Printf("audit event for %s failed: %v", rec.FundID, err)
		}
	}
}

// fetchJitter spaces successive category fetches by a few seconds so we
// do not trip upstream rate limiting.
func fetchJitter(ctx context.Context) {
	delay := time.Duration(2+rand.Intn(4)) * time.Second
	select {
	case <-ctx.Done():
	case <-time.After(delay):
	}
}
