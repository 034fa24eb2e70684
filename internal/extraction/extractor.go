package extraction

import (
	"context"
	"errors"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Config holds the model connection settings for an Extractor.
type Config struct {
	APIKey      string
	BaseURL     string // empty uses the provider default
	Model       string
	Temperature float32
	MaxTokens   int

	// Timeout bounds a single extraction call so the caller is never
	// stuck waiting on a hung request.
	Timeout time.Duration
}

// Extractor turns a transcript into an expense candidate via a chat
// completion call against the generative model.
type Extractor struct {
	client  *openai.Client
	config  Config
	prompts *PromptBuilder
	logger  *zap.Logger
}

// NewExtractor creates an extractor from connection config and a compiled
// prompt builder.
func NewExtractor(cfg Config, prompts *PromptBuilder, logger *zap.Logger) *Extractor {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &Extractor{
		client:  openai.NewClientWithConfig(clientCfg),
		config:  cfg,
		prompts: prompts,
		logger:  logger,
	}
}

// Extract sends the transcript to the model and parses the reply into an
// expense candidate.
//
// Error kinds follow the retry contract: ErrInvalidInput for a blank
// transcript (never reaches the network), *NetworkError for transport or
// API failures including timeout, *ParseError for an uninterpretable
// reply. All are retryable by resubmitting the same transcript except
// ErrInvalidInput.
func (e *Extractor) Extract(ctx context.Context, transcript, language string) (*Result, error) {
	prompt, err := e.prompts.Build(transcript, language)
	if err != nil {
		return nil, err
	}

	if e.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.Timeout)
		defer cancel()
	}

	e.logger.Debug("Requesting expense extraction",
		zap.Int("transcript_len", len(transcript)),
		zap.String("language", language))

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       e.config.Model,
		Temperature: e.config.Temperature,
		MaxTokens:   e.config.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: e.prompts.System(),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		e.logger.Error("Extraction model call failed", zap.Error(err))
		return nil, &NetworkError{Err: err}
	}

	if len(resp.Choices) == 0 {
		return nil, &NetworkError{Err: errors.New("model returned no choices")}
	}

	content := resp.Choices[0].Message.Content
	result, err := ParseResponse(content)
	if err != nil {
		e.logger.Error("Failed to parse extraction response",
			zap.Error(err),
			zap.String("content", content))
		return nil, err
	}

	e.logger.Info("Expense candidate extracted",
		zap.String("amount", result.Candidate.Amount),
		zap.String("category", result.Candidate.Category),
		zap.String("detected_language", result.DetectedLanguage))

	return result, nil
}
