package mirror

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"buste/internal/core"
)

// Snapshot is one row of the balance mirror: the state of an envelope right
// after a change.
type Snapshot struct {
	Time       time.Time
	EnvelopeID int64
	Name       string
	Kind       string
	Balance    decimal.Decimal
	LastFunded core.Period
}

// BalanceWriter is the outbound port for the mirror destination.
type BalanceWriter interface {
	AppendSnapshot(ctx context.Context, s Snapshot) error
}
