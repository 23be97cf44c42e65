package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"buste/internal/core"
)

// FundingSynchronizer brings every envelope's funding up to the current
// calendar month. It is invoked explicitly (the sync-funds command), never
// on the request path, so a dormant system catches up however many months
// it missed the next time someone runs it.
type FundingSynchronizer struct {
	store     EnvelopeStore
	publisher EventPublisher
	clock     Clock
}

// EnvelopeSync records the outcome of one envelope within a sync run.
type EnvelopeSync struct {
	ID            int64
	Name          string
	PeriodsFunded int
	Balance       decimal.Decimal
	LastFunded    core.Period
	Err           error
}

// SyncReport summarizes a sync run. Failures are per envelope; the run
// itself only errors when the envelope list cannot be loaded at all.
type SyncReport struct {
	Results []EnvelopeSync
	Funded  int
	Skipped int
	Failed  int
}

func NewFundingSynchronizer(store EnvelopeStore, publisher EventPublisher, clock Clock) *FundingSynchronizer {
	if clock == nil {
		clock = SystemClock{}
	}
	return &FundingSynchronizer{
		store:     store,
		publisher: publisher,
		clock:     clock,
	}
}

// Sync applies catch-up funding to every active envelope and commits one
// state transition per envelope. A persistence failure on one envelope is
// recorded and does not stop the rest of the batch.
func (s *FundingSynchronizer) Sync(ctx context.Context) (SyncReport, error) {
	current := core.PeriodOf(s.clock.Now())

	envelopes, err := s.store.ListActiveEnvelopes(ctx)
	if err != nil {
		return SyncReport{}, fmt.Errorf("list envelopes: %w", err)
	}

	slog.InfoContext(ctx, "Funding sync started",
		"period", current.String(),
		"envelopes", len(envelopes))

	report := SyncReport{}
	for i := range envelopes {
		result := s.syncEnvelope(ctx, &envelopes[i], current)
		report.Results = append(report.Results, result)

		switch {
		case result.Err != nil:
			report.Failed++
			slog.ErrorContext(ctx, "Envelope funding failed",
				"id", result.ID,
				"name", result.Name,
				"error", result.Err)
		case result.PeriodsFunded == 0:
			report.Skipped++
		default:
			report.Funded++
			slog.InfoContext(ctx, "Envelope funded",
				"id", result.ID,
				"name", result.Name,
				"periods", result.PeriodsFunded,
				"balance", result.Balance.String(),
				"last_funded", result.LastFunded.String())
		}
	}

	slog.InfoContext(ctx, "Funding sync complete",
		"period", current.String(),
		"funded", report.Funded,
		"skipped", report.Skipped,
		"failed", report.Failed)

	return report, nil
}

// syncEnvelope computes and applies the funding plan for one envelope.
// A never-funded envelope gets exactly one funding event for the current
// period; it does not catch up through months it did not exist in.
func (s *FundingSynchronizer) syncEnvelope(ctx context.Context, env *core.Envelope, current core.Period) EnvelopeSync {
	result := EnvelopeSync{
		ID:         env.ID,
		Name:       env.Name,
		Balance:    env.Balance,
		LastFunded: env.LastFunded,
	}

	var elapsed []core.Period
	if env.LastFunded.IsZero() {
		elapsed = []core.Period{current}
	} else {
		elapsed = core.PeriodsBetween(env.LastFunded, current)
	}

	// Already funded for the current period: running the sync again is a
	// no-op for this envelope.
	if len(elapsed) == 0 {
		return result
	}

	// Chronological order matters: rollover accumulates once per elapsed
	// period, and last_funded must land on the final period.
	for _, p := range elapsed {
		if err := env.ApplyFunding(p); err != nil {
			result.Err = fmt.Errorf("apply funding for %s: %w", p, err)
			return result
		}
	}

	if err := s.store.CommitFunding(ctx, env.ID, env.Balance, env.LastFunded); err != nil {
		result.Err = fmt.Errorf("commit funding: %w", err)
		return result
	}

	result.PeriodsFunded = len(elapsed)
	result.Balance = env.Balance
	result.LastFunded = env.LastFunded

	if s.publisher != nil {
		if err := s.publisher.PublishEnvelopeEvent(ctx, env.ID, EventFunding); err != nil {
			slog.ErrorContext(ctx, "Failed to publish funding event",
				"id", env.ID,
				"error", err)
		}
	}

	return result
}
