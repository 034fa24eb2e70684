package voiceflow

// Trigger is an event that can move a session between states.
type Trigger string

const (
	TriggerStartCapture  Trigger = "START_CAPTURE"
	TriggerCaptureFinal  Trigger = "CAPTURE_FINAL"
	TriggerCaptureFailed Trigger = "CAPTURE_FAILED"
	TriggerExtract       Trigger = "EXTRACT"
	TriggerExtractOK     Trigger = "EXTRACT_OK"
	TriggerExtractFailed Trigger = "EXTRACT_FAILED"
	TriggerRetry         Trigger = "RETRY"
	TriggerConfirm       Trigger = "CONFIRM"
	TriggerSubmitted     Trigger = "SUBMITTED"
	TriggerCancel        Trigger = "CANCEL"
)

func (t Trigger) String() string {
	return string(t)
}
