package voice

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/trackwise/expense-voice/internal/domain/entity"
	"github.com/trackwise/expense-voice/internal/domain/voiceflow"
)

// ErrSessionClosed is returned by operations on a torn-down session.
var ErrSessionClosed = errors.New("voice session is closed")

// ErrBusy is returned when an operation is blocked by the current state,
// e.g. starting capture while extraction is in flight or speech is playing.
var ErrBusy = errors.New("operation not allowed in the current state")

// Deps are the collaborators injected into a Session.
type Deps struct {
	Capture   CaptureSource
	Announcer SpeechAnnouncer
	Extractor Extractor
	Creator   ExpenseCreator
	Logger    *zap.Logger
}

// Session owns one voice expense attempt cycle: capture, extraction,
// review, spoken confirmation, submit or retry. All state lives in memory
// and dies with the session.
//
// Events from the capture source and announcer may arrive on other
// goroutines; a single mutex serializes everything. The state machine
// gates exclusivity: one extraction in flight, one capture acquisition,
// one synthesis at a time.
type Session struct {
	id       string
	username string
	deps     Deps
	logger   *zap.Logger

	mu          sync.Mutex
	machine     *voiceflow.Machine
	transcript  string
	language    string
	candidate   entity.ExpenseCandidate
	lastErr     error
	speaking    bool
	unsupported bool
	closed      bool
}

// NewSession creates an idle session for the given user.
func NewSession(username string, deps Deps) *Session {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	id := uuid.NewString()
	return &Session{
		id:       id,
		username: username,
		deps:     deps,
		logger:   logger.With(zap.String("session_id", id)),
		machine:  voiceflow.NewSessionMachine(),
		language: entity.DefaultLanguage,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// State returns the current lifecycle state.
func (s *Session) State() voiceflow.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.State()
}

// Transcript returns the latest captured utterance.
func (s *Session) Transcript() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcript
}

// Candidate returns the current expense candidate.
func (s *Session) Candidate() entity.ExpenseCandidate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.candidate
}

// DetectedLanguage returns the language tag in effect for feedback.
func (s *Session) DetectedLanguage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.language
}

// Speaking reports whether confirmation speech is playing. The capture
// control stays disabled while true.
func (s *Session) Speaking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speaking
}

// Err returns the last surfaced error, nil when none.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// StartListening acquires the capture device and begins a fresh attempt.
// Any previous transcript, candidate and error are discarded.
func (s *Session) StartListening(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	if s.unsupported {
		return ErrCaptureUnsupported
	}
	if s.speaking || !s.machine.CanFire(voiceflow.TriggerStartCapture) {
		return ErrBusy
	}
	return s.beginCaptureLocked(ctx)
}

// beginCaptureLocked resets attempt state and acquires the device. The
// caller holds s.mu and has verified the trigger is permitted.
func (s *Session) beginCaptureLocked(ctx context.Context) error {
	s.deps.Announcer.Cancel()
	s.speaking = false
	s.transcript = ""
	s.candidate = entity.ExpenseCandidate{}
	s.lastErr = nil

	if err := s.machine.Fire(ctx, voiceflow.TriggerStartCapture); err != nil {
		return err
	}

	if err := s.deps.Capture.Start(s.language, (*captureEvents)(s)); err != nil {
		_ = s.machine.Fire(ctx, voiceflow.TriggerCaptureFailed)
		if errors.Is(err, ErrCaptureUnsupported) {
			s.unsupported = true
		}
		s.lastErr = err
		s.logger.Error("Failed to start capture", zap.Error(err))
		return err
	}

	s.logger.Debug("Capture started", zap.String("language", s.language))
	return nil
}

// StopListening asks the capture device to finalize. The transition to
// TRANSCRIBED happens when the final transcript event arrives.
func (s *Session) StopListening() {
	s.mu.Lock()
	listening := s.machine.State() == voiceflow.StateListening
	s.mu.Unlock()

	if listening {
		s.deps.Capture.Stop()
	}
}

// captureEvents adapts the Session to CaptureHandler without exporting the
// handler methods on Session itself.
type captureEvents Session

func (e *captureEvents) OnTranscript(text string, final bool) {
	s := (*Session)(e)
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.machine.State() != voiceflow.StateListening {
		return
	}

	// Interim updates overwrite the working transcript wholesale.
	s.transcript = text
	if !final {
		return
	}

	ctx := context.Background()
	if s.transcript == "" {
		_ = s.machine.Fire(ctx, voiceflow.TriggerCaptureFailed)
		return
	}
	_ = s.machine.Fire(ctx, voiceflow.TriggerCaptureFinal)
	s.logger.Debug("Final transcript received", zap.Int("len", len(s.transcript)))
}

func (e *captureEvents) OnCaptureError(err error) {
	s := (*Session)(e)
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.machine.State() != voiceflow.StateListening {
		return
	}
	_ = s.machine.Fire(context.Background(), voiceflow.TriggerCaptureFailed)
	s.lastErr = fmt.Errorf("capture failed: %w", err)
	s.logger.Warn("Capture device error", zap.Error(err))
}

// Process sends the captured transcript for extraction. On success the
// session moves to REVIEWING, updates the detected language and triggers
// spoken confirmation once. On failure it returns to TRANSCRIBED with the
// transcript preserved so the user need not re-speak.
func (s *Session) Process(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if err := s.machine.Fire(ctx, voiceflow.TriggerExtract); err != nil {
		s.mu.Unlock()
		return ErrBusy
	}
	transcript := s.transcript
	s.lastErr = nil
	s.mu.Unlock()

	// Network call happens outside the lock; the PROCESSING state keeps a
	// second extraction from starting.
	result, err := s.deps.Extractor.Extract(ctx, transcript, entity.LanguageAuto)

	s.mu.Lock()

	if s.machine.State() != voiceflow.StateProcessing {
		// Cancelled while in flight; drop the result.
		s.mu.Unlock()
		return nil
	}

	if err != nil {
		_ = s.machine.Fire(ctx, voiceflow.TriggerExtractFailed)
		s.lastErr = err
		s.mu.Unlock()
		s.logger.Warn("Extraction failed", zap.Error(err))
		return err
	}

	if err := s.machine.Fire(ctx, voiceflow.TriggerExtractOK); err != nil {
		s.mu.Unlock()
		return err
	}
	s.candidate = result.Candidate
	if result.DetectedLanguage != "" {
		s.language = entity.NormalizeLanguage(result.DetectedLanguage)
	}

	// Spoken feedback fires once on entering REVIEWING and does not block
	// edits; completion clears the flag. Speak runs outside the lock so a
	// synchronous done callback cannot deadlock.
	text := FeedbackText(s.candidate, s.language)
	language := s.language
	s.speaking = true
	s.mu.Unlock()

	s.deps.Announcer.Speak(text, language, func() {
		s.mu.Lock()
		s.speaking = false
		s.mu.Unlock()
	})
	return nil
}

// EditField overwrites a single candidate field during review. No
// validation happens here; the creation path re-validates on submit.
func (s *Session) EditField(field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.machine.State() != voiceflow.StateReviewing {
		return ErrBusy
	}

	switch field {
	case "amount":
		s.candidate.Amount = value
	case "category":
		s.candidate.Category = value
	case "description":
		s.candidate.Description = value
	case "date":
		s.candidate.Date = value
	default:
		return fmt.Errorf("unknown candidate field %q", field)
	}
	return nil
}

// TryAgain discards the candidate and starts a new capture.
func (s *Session) TryAgain(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	if err := s.machine.Fire(ctx, voiceflow.TriggerRetry); err != nil {
		return ErrBusy
	}
	// Re-enter capture the same way a fresh start does. The machine is in
	// LISTENING already, so only the device acquisition remains.
	s.deps.Announcer.Cancel()
	s.speaking = false
	s.transcript = ""
	s.candidate = entity.ExpenseCandidate{}
	s.lastErr = nil

	if err := s.deps.Capture.Start(s.language, (*captureEvents)(s)); err != nil {
		_ = s.machine.Fire(ctx, voiceflow.TriggerCaptureFailed)
		s.lastErr = err
		return err
	}
	return nil
}

// Confirm hands the reviewed candidate to the expense creation path. The
// session returns to IDLE regardless of the creation outcome; reporting a
// failed creation belongs to the surrounding system.
func (s *Session) Confirm(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if err := s.machine.Fire(ctx, voiceflow.TriggerConfirm); err != nil {
		s.mu.Unlock()
		return ErrBusy
	}
	s.deps.Announcer.Cancel()
	s.speaking = false
	candidate := s.candidate
	username := s.username
	s.mu.Unlock()

	if _, err := s.deps.Creator.CreateFromCandidate(ctx, username, candidate); err != nil {
		s.logger.Warn("Expense creation reported an error", zap.Error(err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.machine.State() == voiceflow.StateSubmitting {
		_ = s.machine.Fire(ctx, voiceflow.TriggerSubmitted)
	}
	s.transcript = ""
	s.candidate = entity.ExpenseCandidate{}
	return nil
}

// Cancel aborts the attempt from any state: the capture device is
// released, speech synthesis stops, and the session returns to IDLE.
// Cancelling an idle session is a no-op.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
}

func (s *Session) cancelLocked() {
	s.deps.Capture.Cancel()
	s.deps.Announcer.Cancel()
	s.speaking = false

	if s.machine.State() != voiceflow.StateIdle {
		_ = s.machine.Fire(context.Background(), voiceflow.TriggerCancel)
	}
	s.transcript = ""
	s.candidate = entity.ExpenseCandidate{}
	s.lastErr = nil
}

// Close cancels the session and rejects further operations. Safe to call
// more than once; teardown always releases the device and synthesizer.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.cancelLocked()
	s.closed = true
	s.logger.Debug("Session closed")
}
