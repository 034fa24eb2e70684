package voiceflow

import (
	"context"
	"errors"
	"testing"
)

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		expected bool
	}{
		{"idle", StateIdle, true},
		{"submitting", StateSubmitting, true},
		{"unknown", State("UNKNOWN"), false},
		{"empty", State(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.expected {
				t.Errorf("State.IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBuilder_ConfigurePanicsOnInvalidState(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Configure() should panic on invalid state")
		}
	}()
	NewBuilder().Configure(State("BOGUS"))
}

func TestMachine_FireMovesState(t *testing.T) {
	b := NewBuilder()
	b.Configure(StateIdle).Permit(TriggerStartCapture, StateListening)
	m := b.Build(StateIdle)

	if !m.CanFire(TriggerStartCapture) {
		t.Fatal("CanFire() should allow configured trigger")
	}
	if err := m.Fire(context.Background(), TriggerStartCapture); err != nil {
		t.Fatalf("Fire() error = %v", err)
	}
	if m.State() != StateListening {
		t.Errorf("State() = %v, want %v", m.State(), StateListening)
	}
}

func TestMachine_FireRejectsUnconfiguredTrigger(t *testing.T) {
	b := NewBuilder()
	b.Configure(StateIdle).Permit(TriggerStartCapture, StateListening)
	m := b.Build(StateIdle)

	err := m.Fire(context.Background(), TriggerConfirm)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Fire() error = %v, want ErrInvalidTransition", err)
	}
	if m.State() != StateIdle {
		t.Errorf("failed Fire() must not move state, got %v", m.State())
	}
}

func TestMachine_GuardsTriedInOrder(t *testing.T) {
	b := NewBuilder()
	b.Configure(StateProcessing).
		PermitIf(TriggerExtractOK, StateReviewing, func(ctx context.Context) bool { return false }).
		PermitIf(TriggerExtractOK, StateTranscribed, func(ctx context.Context) bool { return true })
	m := b.Build(StateProcessing)

	if err := m.Fire(context.Background(), TriggerExtractOK); err != nil {
		t.Fatalf("Fire() error = %v", err)
	}
	if m.State() != StateTranscribed {
		t.Errorf("State() = %v, want %v", m.State(), StateTranscribed)
	}
}

func TestMachine_AllGuardsFailing(t *testing.T) {
	b := NewBuilder()
	b.Configure(StateProcessing).
		PermitIf(TriggerExtractOK, StateReviewing, func(ctx context.Context) bool { return false })
	m := b.Build(StateProcessing)

	err := m.Fire(context.Background(), TriggerExtractOK)
	if !errors.Is(err, ErrGuardFailed) {
		t.Errorf("Fire() error = %v, want ErrGuardFailed", err)
	}
}

func TestNewSessionMachine_HappyPath(t *testing.T) {
	ctx := context.Background()
	m := NewSessionMachine()

	steps := []struct {
		trigger Trigger
		want    State
	}{
		{TriggerStartCapture, StateListening},
		{TriggerCaptureFinal, StateTranscribed},
		{TriggerExtract, StateProcessing},
		{TriggerExtractOK, StateReviewing},
		{TriggerConfirm, StateSubmitting},
		{TriggerSubmitted, StateIdle},
	}

	for _, step := range steps {
		if err := m.Fire(ctx, step.trigger); err != nil {
			t.Fatalf("Fire(%s) error = %v", step.trigger, err)
		}
		if m.State() != step.want {
			t.Fatalf("after %s: State() = %v, want %v", step.trigger, m.State(), step.want)
		}
	}
}

func TestNewSessionMachine_ExtractionFailureKeepsTranscript(t *testing.T) {
	ctx := context.Background()
	m := NewSessionMachine()

	for _, trigger := range []Trigger{TriggerStartCapture, TriggerCaptureFinal, TriggerExtract} {
		if err := m.Fire(ctx, trigger); err != nil {
			t.Fatalf("Fire(%s) error = %v", trigger, err)
		}
	}

	if err := m.Fire(ctx, TriggerExtractFailed); err != nil {
		t.Fatalf("Fire(EXTRACT_FAILED) error = %v", err)
	}
	if m.State() != StateTranscribed {
		t.Errorf("State() = %v, want %v", m.State(), StateTranscribed)
	}
	// Retry must be possible immediately.
	if !m.CanFire(TriggerExtract) {
		t.Error("extraction should be retryable from TRANSCRIBED")
	}
}

func TestNewSessionMachine_CancelFromAnyActiveState(t *testing.T) {
	ctx := context.Background()

	paths := map[string][]Trigger{
		"listening":   {TriggerStartCapture},
		"transcribed": {TriggerStartCapture, TriggerCaptureFinal},
		"processing":  {TriggerStartCapture, TriggerCaptureFinal, TriggerExtract},
		"reviewing":   {TriggerStartCapture, TriggerCaptureFinal, TriggerExtract, TriggerExtractOK},
		"submitting":  {TriggerStartCapture, TriggerCaptureFinal, TriggerExtract, TriggerExtractOK, TriggerConfirm},
	}

	for name, path := range paths {
		t.Run(name, func(t *testing.T) {
			m := NewSessionMachine()
			for _, trigger := range path {
				if err := m.Fire(ctx, trigger); err != nil {
					t.Fatalf("Fire(%s) error = %v", trigger, err)
				}
			}
			if err := m.Fire(ctx, TriggerCancel); err != nil {
				t.Fatalf("Fire(CANCEL) error = %v", err)
			}
			if m.State() != StateIdle {
				t.Errorf("State() = %v, want %v", m.State(), StateIdle)
			}
		})
	}
}
