package voiceflow

// State is a phase of the voice expense capture lifecycle.
type State string

const (
	// StateIdle has no transcript and no candidate. Entered at session
	// start, after cancel, and after a completed submit.
	StateIdle State = "IDLE"

	// StateListening means the capture device is active and interim
	// transcript updates are accumulating.
	StateListening State = "LISTENING"

	// StateTranscribed holds a final transcript not yet sent for
	// extraction.
	StateTranscribed State = "TRANSCRIBED"

	// StateProcessing means an extraction request is in flight.
	StateProcessing State = "PROCESSING"

	// StateReviewing exposes the extracted candidate for field-by-field
	// edits before confirmation.
	StateReviewing State = "REVIEWING"

	// StateSubmitting hands the candidate to the expense creation path.
	StateSubmitting State = "SUBMITTING"
)

var validStates = map[State]bool{
	StateIdle:        true,
	StateListening:   true,
	StateTranscribed: true,
	StateProcessing:  true,
	StateReviewing:   true,
	StateSubmitting:  true,
}

// IsValid reports whether s is a known lifecycle state.
func (s State) IsValid() bool {
	return validStates[s]
}

func (s State) String() string {
	return string(s)
}
