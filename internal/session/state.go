package session

import "media-scribe/internal/domain"

// Trigger is an input to the session state machine.
type Trigger string

const (
	TriggerFileSelected        Trigger = "file_selected"
	TriggerPrepareSucceeded    Trigger = "prepare_succeeded"
	TriggerPrepareFailed       Trigger = "prepare_failed"
	TriggerTranscribeRequested Trigger = "transcribe_requested"
	TriggerTranscribeSucceeded Trigger = "transcribe_succeeded"
	TriggerTranscribeFailed    Trigger = "transcribe_failed"
	TriggerReset               Trigger = "reset"
)

// Next maps (current state, trigger) to the next state. The boolean is false
// when the trigger is not allowed in current; the state is then unchanged.
//
// Whether a prepared file exists is not part of AppState, so callers check it
// before firing TriggerTranscribeRequested.
func Next(current domain.AppState, trigger Trigger) (domain.AppState, bool) {
	if trigger == TriggerReset {
		return domain.AppStateIdle, true
	}

	switch current {
	case domain.AppStateIdle:
		switch trigger {
		case TriggerFileSelected:
			return domain.AppStatePreparing, true
		case TriggerTranscribeRequested:
			return domain.AppStateProcessing, true
		}
	case domain.AppStatePreparing:
		switch trigger {
		case TriggerPrepareSucceeded, TriggerPrepareFailed:
			return domain.AppStateIdle, true
		}
	case domain.AppStateProcessing:
		switch trigger {
		case TriggerTranscribeSucceeded:
			return domain.AppStateSuccess, true
		case TriggerTranscribeFailed:
			return domain.AppStateError, true
		}
	case domain.AppStateSuccess:
		if trigger == TriggerFileSelected {
			return domain.AppStatePreparing, true
		}
	case domain.AppStateError:
		switch trigger {
		case TriggerFileSelected:
			return domain.AppStatePreparing, true
		case TriggerTranscribeRequested:
			return domain.AppStateProcessing, true
		}
	}
	return current, false
}

// isBusy reports whether an encode or a transcription is in flight.
func isBusy(state domain.AppState) bool {
	return state == domain.AppStatePreparing || state == domain.AppStateProcessing
}
