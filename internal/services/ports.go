package services

import (
	"context"

	"github.com/shopspring/decimal"

	"buste/internal/core"
)

// Event kinds published after envelope mutations.
const (
	EventCreated  = "created"
	EventSpend    = "spend"
	EventDeposit  = "deposit"
	EventFunding  = "funding"
	EventArchived = "archived"
)

// Ports for outbound adapters.
type (
	// EnvelopeStore is the durable home of envelope records. The store must
	// serialize each envelope's read-modify-write cycle; CommitFunding in
	// particular must refuse to move last_funded backwards.
	EnvelopeStore interface {
		ListActiveEnvelopes(ctx context.Context) ([]core.Envelope, error)
		GetEnvelope(ctx context.Context, id int64) (*core.Envelope, error)
		SaveEnvelope(ctx context.Context, e *core.Envelope) error
		UpdateBalance(ctx context.Context, id int64, balance decimal.Decimal) error
		CommitFunding(ctx context.Context, id int64, balance decimal.Decimal, p core.Period) error
		ArchiveEnvelope(ctx context.Context, id int64) error
	}

	// EventPublisher notifies downstream consumers (the balance mirror)
	// about envelope changes. Publishing is best effort: a failure is
	// logged by the caller and never fails the local operation.
	EventPublisher interface {
		PublishEnvelopeEvent(ctx context.Context, id int64, kind string) error
	}
)
