// Package voice drives the capture → extract → review → confirm lifecycle
// for one voice expense session. The capture device, speech synthesizer,
// extraction backend and expense creation path are injected as narrow
// interfaces so the session can be exercised with fakes.
package voice

import (
	"context"
	"errors"

	"github.com/trackwise/expense-voice/internal/domain/entity"
	"github.com/trackwise/expense-voice/internal/extraction"
)

// ErrCaptureUnsupported means no capture capability exists in the running
// environment. Terminal for the session: the capture-start control stays
// blocked.
var ErrCaptureUnsupported = errors.New("speech capture is not supported in this environment")

// CaptureHandler receives transcript and error events from a CaptureSource.
// Interim updates (final=false) overwrite the working transcript; a final
// update ends the capture.
type CaptureHandler interface {
	OnTranscript(text string, final bool)
	OnCaptureError(err error)
}

// CaptureSource abstracts the exclusive speech-recognition device. Start
// acquires it; Stop asks for a final transcript; Cancel releases it without
// delivering further events.
type CaptureSource interface {
	Start(language string, handler CaptureHandler) error
	Stop()
	Cancel()
}

// SpeechAnnouncer abstracts the exclusive speech synthesizer. Speak is
// fire-and-forget: done runs exactly once when playback completes or is
// cancelled.
type SpeechAnnouncer interface {
	Speak(text, language string, done func())
	Cancel()
}

// Extractor turns a transcript into an expense candidate.
type Extractor interface {
	Extract(ctx context.Context, transcript, language string) (*extraction.Result, error)
}

// ExpenseCreator is the downstream creation path a confirmed candidate is
// handed to. It owns real validation and persistence; its outcome does not
// influence the session lifecycle.
type ExpenseCreator interface {
	CreateFromCandidate(ctx context.Context, username string, candidate entity.ExpenseCandidate) (*entity.Expense, error)
}
