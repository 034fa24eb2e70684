package voiceflow

// NewSessionMachine builds the capture → extract → review → submit machine
// used by a voice expense session.
//
// A failed extraction returns to TRANSCRIBED so the transcript survives and
// the user can retry without re-speaking. Cancel is permitted everywhere
// except IDLE; cancelling an idle session is a no-op handled by the caller.
func NewSessionMachine() *Machine {
	b := NewBuilder()

	b.Configure(StateIdle).
		Permit(TriggerStartCapture, StateListening)

	b.Configure(StateListening).
		Permit(TriggerCaptureFinal, StateTranscribed).
		Permit(TriggerCaptureFailed, StateIdle).
		Permit(TriggerCancel, StateIdle)

	b.Configure(StateTranscribed).
		Permit(TriggerExtract, StateProcessing).
		Permit(TriggerStartCapture, StateListening).
		Permit(TriggerCancel, StateIdle)

	b.Configure(StateProcessing).
		Permit(TriggerExtractOK, StateReviewing).
		Permit(TriggerExtractFailed, StateTranscribed).
		Permit(TriggerCancel, StateIdle)

	b.Configure(StateReviewing).
		Permit(TriggerRetry, StateListening).
		Permit(TriggerConfirm, StateSubmitting).
		Permit(TriggerCancel, StateIdle)

	b.Configure(StateSubmitting).
		Permit(TriggerSubmitted, StateIdle).
		Permit(TriggerCancel, StateIdle)

	return b.Build(StateIdle)
}
