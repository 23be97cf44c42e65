package services

import (
	"context"
	"errors"
	"testing"

	"buste/internal/core"
)

func TestEnvelopeServiceCreate(t *testing.T) {
	store := newFakeStore()
	pub := &recordingPublisher{}
	svc := NewEnvelopeService(store, pub)

	env, err := svc.Create(context.Background(), "  Groceries ", mustDec(t, "200.00"), core.ModeReset)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if env.Name != "Groceries" {
		t.Errorf("name = %q, want trimmed %q", env.Name, "Groceries")
	}
	if !env.Balance.Equal(mustDec(t, "200.00")) {
		t.Errorf("initial balance = %s, want the base amount", env.Balance)
	}
	if !env.LastFunded.IsZero() {
		t.Errorf("LastFunded = %v, want unset on a new envelope", env.LastFunded)
	}
	if len(pub.events) != 1 || pub.events[0] != EventCreated {
		t.Errorf("events = %v, want one created event", pub.events)
	}
}

func TestEnvelopeServiceCreateValidation(t *testing.T) {
	store := newFakeStore()
	svc := NewEnvelopeService(store, nil)

	tests := []struct {
		name    string
		envName string
		base    string
		mode    core.FundingMode
		wantErr error
	}{
		{name: "blank name", envName: "  ", base: "10.00", mode: core.ModeReset, wantErr: core.ErrEmptyName},
		{name: "bad mode", envName: "Food", base: "10.00", mode: "weekly", wantErr: core.ErrInvalidMode},
		{name: "negative base", envName: "Food", base: "-1.00", mode: core.ModeReset, wantErr: core.ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.envName, mustDec(t, tt.base), tt.mode)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Create() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if len(store.envelopes) != 0 {
		t.Errorf("invalid envelopes were persisted: %d", len(store.envelopes))
	}
}

func TestEnvelopeServiceSpendAndDeposit(t *testing.T) {
	store := newFakeStore()
	id := store.add(core.Envelope{
		Name:       "Food",
		Mode:       core.ModeReset,
		BaseAmount: mustDec(t, "100.00"),
		Balance:    mustDec(t, "100.00"),
	})
	pub := &recordingPublisher{}
	svc := NewEnvelopeService(store, pub)

	env, err := svc.Spend(context.Background(), id, mustDec(t, "30.50"))
	if err != nil {
		t.Fatalf("Spend() error = %v", err)
	}
	if !env.Balance.Equal(mustDec(t, "69.50")) {
		t.Errorf("balance after spend = %s, want 69.50", env.Balance)
	}

	env, err = svc.Deposit(context.Background(), id, mustDec(t, "0.50"))
	if err != nil {
		t.Fatalf("Deposit() error = %v", err)
	}
	if !env.Balance.Equal(mustDec(t, "70.00")) {
		t.Errorf("balance after deposit = %s, want 70.00", env.Balance)
	}

	if !store.envelopes[id].Balance.Equal(mustDec(t, "70.00")) {
		t.Errorf("persisted balance = %s, want 70.00", store.envelopes[id].Balance)
	}
	if len(pub.events) != 2 {
		t.Errorf("events = %v, want spend and deposit", pub.events)
	}
}

func TestEnvelopeServiceSpendInvalidAmountLeavesStateUnchanged(t *testing.T) {
	store := newFakeStore()
	id := store.add(core.Envelope{
		Name:       "Food",
		Mode:       core.ModeReset,
		BaseAmount: mustDec(t, "100.00"),
		Balance:    mustDec(t, "100.00"),
	})
	svc := NewEnvelopeService(store, nil)

	_, err := svc.Spend(context.Background(), id, mustDec(t, "0"))
	if !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("Spend(0) error = %v, want ErrInvalidAmount", err)
	}
	if !store.envelopes[id].Balance.Equal(mustDec(t, "100.00")) {
		t.Errorf("balance = %s, want unchanged 100.00", store.envelopes[id].Balance)
	}
}

func TestEnvelopeServiceArchive(t *testing.T) {
	store := newFakeStore()
	id := store.add(core.Envelope{
		Name:       "Old",
		Mode:       core.ModeRollover,
		BaseAmount: mustDec(t, "10.00"),
	})
	svc := NewEnvelopeService(store, nil)

	if err := svc.Archive(context.Background(), id); err != nil {
		t.Fatalf("Archive() error = %v", err)
	}
	if !store.envelopes[id].Archived {
		t.Error("envelope not archived")
	}

	listed, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(listed) != 0 {
		t.Errorf("List() returned archived envelope: %+v", listed)
	}
}

func TestEnvelopeServicePublisherFailureDoesNotFailOperation(t *testing.T) {
	store := newFakeStore()
	id := store.add(core.Envelope{
		Name:       "Food",
		Mode:       core.ModeReset,
		BaseAmount: mustDec(t, "50.00"),
		Balance:    mustDec(t, "50.00"),
	})
	svc := NewEnvelopeService(store, failingPublisher{})

	env, err := svc.Spend(context.Background(), id, mustDec(t, "10.00"))
	if err != nil {
		t.Fatalf("Spend() error = %v, publish failures must not surface", err)
	}
	if !env.Balance.Equal(mustDec(t, "40.00")) {
		t.Errorf("balance = %s, want 40.00", env.Balance)
	}
}

type failingPublisher struct{}

func (failingPublisher) PublishEnvelopeEvent(context.Context, int64, string) error {
	return errors.New("broker unavailable")
}
