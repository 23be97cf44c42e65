package worker

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"buste/internal/amqp"
	"buste/internal/core"
	"buste/internal/mirror"
	"buste/internal/mirror/memory"
	"buste/internal/storage"
)

type stubReader struct {
	envelopes map[int64]*core.Envelope
}

func (r *stubReader) GetEnvelope(_ context.Context, id int64) (*core.Envelope, error) {
	env, ok := r.envelopes[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", storage.ErrEnvelopeNotFound, id)
	}
	return env, nil
}

func TestHandleEnvelopeEventMirrorsSnapshot(t *testing.T) {
	balance, _ := decimal.NewFromString("42.50")
	reader := &stubReader{envelopes: map[int64]*core.Envelope{
		3: {
			ID:         3,
			Name:       "Groceries",
			Mode:       core.ModeReset,
			Balance:    balance,
			LastFunded: core.Period{Year: 2024, Month: time.April},
		},
	}}
	writer := memory.New()
	w := NewMirrorWorker(reader, writer)

	msg := &amqp.EnvelopeEventMessage{ID: 3, Kind: "funding", Timestamp: time.Now()}
	if err := w.HandleEnvelopeEvent(context.Background(), msg); err != nil {
		t.Fatalf("HandleEnvelopeEvent() error = %v", err)
	}

	snaps := writer.Snapshots()
	if len(snaps) != 1 {
		t.Fatalf("snapshots = %d, want 1", len(snaps))
	}
	if snaps[0].Name != "Groceries" || snaps[0].Kind != "funding" {
		t.Errorf("snapshot = %+v", snaps[0])
	}
	if !snaps[0].Balance.Equal(balance) {
		t.Errorf("snapshot balance = %s, want %s", snaps[0].Balance, balance)
	}
}

func TestHandleEnvelopeEventDropsMissingEnvelope(t *testing.T) {
	reader := &stubReader{envelopes: map[int64]*core.Envelope{}}
	writer := memory.New()
	w := NewMirrorWorker(reader, writer)

	msg := &amqp.EnvelopeEventMessage{ID: 99, Kind: "spend", Timestamp: time.Now()}
	if err := w.HandleEnvelopeEvent(context.Background(), msg); err != nil {
		t.Fatalf("missing envelope should be dropped, got error %v", err)
	}
	if len(writer.Snapshots()) != 0 {
		t.Error("nothing should have been mirrored")
	}
}

func TestHandleEnvelopeEventPropagatesWriterErrors(t *testing.T) {
	reader := &stubReader{envelopes: map[int64]*core.Envelope{
		1: {ID: 1, Name: "Food", Mode: core.ModeReset},
	}}
	w := NewMirrorWorker(reader, errWriter{})

	msg := &amqp.EnvelopeEventMessage{ID: 1, Kind: "deposit", Timestamp: time.Now()}
	if err := w.HandleEnvelopeEvent(context.Background(), msg); err == nil {
		t.Fatal("writer failure should surface so the delivery is requeued")
	}
}

type errWriter struct{}

func (errWriter) AppendSnapshot(context.Context, mirror.Snapshot) error {
	return errors.New("sheet unavailable")
}
