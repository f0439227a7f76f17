package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/noah-isme/hikelink-api/internal/dto"
	"github.com/noah-isme/hikelink-api/internal/observability"
	"github.com/noah-isme/hikelink-api/pkg/ai"
)

// ErrAssistantUnavailable indicates no assistant provider is configured.
var ErrAssistantUnavailable = errors.New("assistant is not configured")

// AssistantService relays hiking questions to HikeMate.
type AssistantService interface {
	Ask(ctx context.Context, session Session, req dto.AssistantMessageRequest) (dto.AssistantMessageResponse, error)
}

type assistantService struct {
	assistant ai.Assistant
	validate  *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewAssistantService constructs the assistant service. A nil assistant disables the feature.
func NewAssistantService(assistant ai.Assistant, validate *validator.Validate, logger zerolog.Logger) AssistantService {
	return &assistantService{
		assistant: assistant,
		validate:  validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "assistant_service").Logger(),
	}
}

func (s *assistantService) Ask(ctx context.Context, session Session, req dto.AssistantMessageRequest) (dto.AssistantMessageResponse, error) {
	if err := requireSession(session); err != nil {
		return dto.AssistantMessageResponse{}, err
	}
	req.Message = strings.TrimSpace(s.sanitizer.Sanitize(req.Message))
	if err := s.validate.Struct(req); err != nil {
		return dto.AssistantMessageResponse{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if s.assistant == nil {
		return dto.AssistantMessageResponse{}, ErrAssistantUnavailable
	}

	start := time.Now()
	reply := s.assistant.Ask(ctx, req.Message)
	observability.AssistantLatency().Observe(time.Since(start).Seconds())
	observability.AssistantRequests().WithLabelValues(string(reply.Outcome)).Inc()

	s.logger.Debug().
		Str("user_id", session.UserID).
		Str("outcome", string(reply.Outcome)).
		Int("attempts", reply.Attempts).
		Msg("assistant replied")

	return dto.AssistantMessageResponse{Reply: reply.Text}, nil
}
