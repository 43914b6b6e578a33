package session

import (
	"testing"

	"media-scribe/internal/domain"
)

// TestNextTransitions walks the allowed edges of the state machine.
func TestNextTransitions(t *testing.T) {
	cases := []struct {
		from    domain.AppState
		trigger Trigger
		want    domain.AppState
	}{
		{domain.AppStateIdle, TriggerFileSelected, domain.AppStatePreparing},
		{domain.AppStatePreparing, TriggerPrepareSucceeded, domain.AppStateIdle},
		{domain.AppStatePreparing, TriggerPrepareFailed, domain.AppStateIdle},
		{domain.AppStateIdle, TriggerTranscribeRequested, domain.AppStateProcessing},
		{domain.AppStateProcessing, TriggerTranscribeSucceeded, domain.AppStateSuccess},
		{domain.AppStateProcessing, TriggerTranscribeFailed, domain.AppStateError},
		{domain.AppStateError, TriggerTranscribeRequested, domain.AppStateProcessing},
		{domain.AppStateError, TriggerFileSelected, domain.AppStatePreparing},
		{domain.AppStateSuccess, TriggerFileSelected, domain.AppStatePreparing},
		{domain.AppStateProcessing, TriggerReset, domain.AppStateIdle},
		{domain.AppStateSuccess, TriggerReset, domain.AppStateIdle},
	}

	for _, tc := range cases {
		got, ok := Next(tc.from, tc.trigger)
		if !ok || got != tc.want {
			t.Fatalf("Next(%s, %s) = %s, %v; want %s, true", tc.from, tc.trigger, got, ok, tc.want)
		}
	}
}

// TestNextRejectsBusyTriggers ensures in-flight states ignore new work.
func TestNextRejectsBusyTriggers(t *testing.T) {
	cases := []struct {
		from    domain.AppState
		trigger Trigger
	}{
		{domain.AppStatePreparing, TriggerFileSelected},
		{domain.AppStatePreparing, TriggerTranscribeRequested},
		{domain.AppStateProcessing, TriggerFileSelected},
		{domain.AppStateProcessing, TriggerTranscribeRequested},
		{domain.AppStateSuccess, TriggerTranscribeRequested},
		{domain.AppStateIdle, TriggerTranscribeSucceeded},
	}

	for _, tc := range cases {
		got, ok := Next(tc.from, tc.trigger)
		if ok || got != tc.from {
			t.Fatalf("Next(%s, %s) = %s, %v; want unchanged", tc.from, tc.trigger, got, ok)
		}
	}
}
