package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"buste/internal/amqp"
	"buste/internal/core"
	"buste/internal/mirror"
	"buste/internal/storage"
)

// EnvelopeReader is the slice of the repository the mirror needs.
type EnvelopeReader interface {
	GetEnvelope(ctx context.Context, id int64) (*core.Envelope, error)
}

// MirrorWorker consumes envelope events and appends a balance snapshot per
// event to the mirror destination. The event only names the envelope; the
// worker re-reads it so the mirror reflects committed state.
type MirrorWorker struct {
	store  EnvelopeReader
	writer mirror.BalanceWriter
}

func NewMirrorWorker(store EnvelopeReader, writer mirror.BalanceWriter) *MirrorWorker {
	return &MirrorWorker{
		store:  store,
		writer: writer,
	}
}

// HandleEnvelopeEvent processes a single envelope event.
func (w *MirrorWorker) HandleEnvelopeEvent(ctx context.Context, msg *amqp.EnvelopeEventMessage) error {
	env, err := w.store.GetEnvelope(ctx, msg.ID)
	if err != nil {
		if errors.Is(err, storage.ErrEnvelopeNotFound) {
			// The envelope was deleted out from under the queue; there is
			// nothing to mirror and requeueing cannot help.
			slog.WarnContext(ctx, "Envelope gone, dropping event",
				"id", msg.ID,
				"kind", msg.Kind)
			return nil
		}
		return fmt.Errorf("get envelope %d: %w", msg.ID, err)
	}

	snap := mirror.Snapshot{
		Time:       msg.Timestamp,
		EnvelopeID: env.ID,
		Name:       env.Name,
		Kind:       msg.Kind,
		Balance:    env.Balance,
		LastFunded: env.LastFunded,
	}

	if err := w.writer.AppendSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("append snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Mirrored envelope snapshot",
		"id", env.ID,
		"name", env.Name,
		"kind", msg.Kind,
		"balance", env.Balance.String())

	return nil
}
