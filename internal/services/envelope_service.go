package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"buste/internal/core"
)

// EnvelopeService orchestrates envelope operations against the store and
// publishes change events for the balance mirror.
type EnvelopeService struct {
	store     EnvelopeStore
	publisher EventPublisher
}

func NewEnvelopeService(store EnvelopeStore, publisher EventPublisher) *EnvelopeService {
	return &EnvelopeService{
		store:     store,
		publisher: publisher,
	}
}

// Create validates and persists a new envelope. The initial balance equals
// the base amount; LastFunded stays unset so the next funding sync funds the
// envelope once, for the period it exists in.
func (s *EnvelopeService) Create(ctx context.Context, name string, baseAmount decimal.Decimal, mode core.FundingMode) (*core.Envelope, error) {
	env := &core.Envelope{
		Name:       strings.TrimSpace(name),
		Mode:       mode,
		BaseAmount: baseAmount,
		Balance:    baseAmount,
	}
	if err := env.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.SaveEnvelope(ctx, env); err != nil {
		return nil, fmt.Errorf("save envelope: %w", err)
	}

	slog.InfoContext(ctx, "Envelope created",
		"id", env.ID,
		"name", env.Name,
		"mode", env.Mode,
		"base_amount", env.BaseAmount.String())

	s.publish(ctx, env.ID, EventCreated)
	return env, nil
}

// Spend draws the amount down from an envelope's balance.
func (s *EnvelopeService) Spend(ctx context.Context, id int64, amount decimal.Decimal) (*core.Envelope, error) {
	return s.mutateBalance(ctx, id, amount, EventSpend)
}

// Deposit adds the amount to an envelope's balance.
func (s *EnvelopeService) Deposit(ctx context.Context, id int64, amount decimal.Decimal) (*core.Envelope, error) {
	return s.mutateBalance(ctx, id, amount, EventDeposit)
}

func (s *EnvelopeService) mutateBalance(ctx context.Context, id int64, amount decimal.Decimal, kind string) (*core.Envelope, error) {
	env, err := s.store.GetEnvelope(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get envelope: %w", err)
	}

	switch kind {
	case EventSpend:
		err = env.Spend(amount)
	case EventDeposit:
		err = env.Deposit(amount)
	default:
		err = fmt.Errorf("unknown balance mutation %q", kind)
	}
	if err != nil {
		return nil, err
	}

	if err := s.store.UpdateBalance(ctx, id, env.Balance); err != nil {
		return nil, fmt.Errorf("update balance: %w", err)
	}

	slog.InfoContext(ctx, "Envelope balance updated",
		"id", id,
		"operation", kind,
		"amount", amount.String(),
		"balance", env.Balance.String())

	s.publish(ctx, id, kind)
	return env, nil
}

// Archive soft-deletes an envelope. Archived envelopes keep their record but
// no longer appear in listings or receive funding.
func (s *EnvelopeService) Archive(ctx context.Context, id int64) error {
	if err := s.store.ArchiveEnvelope(ctx, id); err != nil {
		return fmt.Errorf("archive envelope: %w", err)
	}

	slog.InfoContext(ctx, "Envelope archived", "id", id)

	s.publish(ctx, id, EventArchived)
	return nil
}

// List returns the active envelopes.
func (s *EnvelopeService) List(ctx context.Context) ([]core.Envelope, error) {
	envelopes, err := s.store.ListActiveEnvelopes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list envelopes: %w", err)
	}
	return envelopes, nil
}

// Get returns a single envelope by id.
func (s *EnvelopeService) Get(ctx context.Context, id int64) (*core.Envelope, error) {
	env, err := s.store.GetEnvelope(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get envelope: %w", err)
	}
	return env, nil
}

func (s *EnvelopeService) publish(ctx context.Context, id int64, kind string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishEnvelopeEvent(ctx, id, kind); err != nil {
		// The local write already succeeded; the mirror catches up later.
		slog.ErrorContext(ctx, "Failed to publish envelope event",
			"id", id,
			"kind", kind,
			"error", err)
	}
}
