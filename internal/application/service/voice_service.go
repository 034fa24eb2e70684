package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/trackwise/expense-voice/internal/domain/entity"
	"github.com/trackwise/expense-voice/internal/extraction"
	"github.com/trackwise/expense-voice/internal/voice"
	"github.com/trackwise/expense-voice/pkg/utils"
)

// TranscriptExtractor turns a transcript into an expense candidate.
type TranscriptExtractor interface {
	Extract(ctx context.Context, transcript, language string) (*extraction.Result, error)
}

// VoiceService handles server-side transcript processing for clients that
// capture speech themselves and post the text.
type VoiceService struct {
	extractor TranscriptExtractor
	logger    *zap.Logger
}

// NewVoiceService creates a voice service.
func NewVoiceService(extractor TranscriptExtractor, logger *zap.Logger) *VoiceService {
	return &VoiceService{extractor: extractor, logger: logger}
}

// VoiceResult is the candidate plus the language the model reported, with
// the feedback phrase the client should speak back.
type VoiceResult struct {
	Candidate        entity.ExpenseCandidate `json:"candidate"`
	DetectedLanguage string                  `json:"detectedLanguage"`
	Feedback         string                  `json:"feedback"`
}

// ProcessTranscript extracts an expense candidate from a transcript. An
// empty language requests detection; the returned language is always a
// supported tag.
func (s *VoiceService) ProcessTranscript(ctx context.Context, transcript, language string) (*VoiceResult, error) {
	transcript = utils.SanitizeString(transcript)

	result, err := s.extractor.Extract(ctx, transcript, language)
	if err != nil {
		return nil, err
	}

	detected := language
	if detected == "" || detected == entity.LanguageAuto {
		detected = result.DetectedLanguage
	}
	detected = entity.NormalizeLanguage(detected)

	s.logger.Debug("Transcript processed",
		zap.String("category", result.Candidate.Category),
		zap.String("language", detected))
	return &VoiceResult{
		Candidate:        result.Candidate,
		DetectedLanguage: detected,
		Feedback:         voice.FeedbackText(result.Candidate, detected),
	}, nil
}
