package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const systemPrompt = `Ești HikeMate, un ghid montan concis care oferă răspunsuri scurte și la obiect despre drumeții în România. Răspunde mereu în maxim 2-3 propoziții, folosind doar informații esențiale despre:

- Trasee montane din România
- Echipament necesar
- Sfaturi de siguranță
- Cabane și puncte de plecare
- Perioade recomandate

Răspunde scurt, direct și practic, fără introduceri sau formule de politețe lungi.`

// FormatErrorReply is returned when the provider rejects the request as malformed.
const FormatErrorReply = "Îmi pare rău, am întâmpinat o eroare de format. Te rog să încerci din nou."

// FallbackReply is returned once every attempt has failed.
const FallbackReply = `Îmi pare rău, am întâmpinat o problemă tehnică temporară.

Te rog să încerci din nou. Între timp, poți să te gândești la întrebări despre:
• Recomandări de trasee pentru nivelul tău
• Echipamentul necesar pentru drumeție
• Sfaturi de siguranță în munți
• Informații despre cabane și trasee
• Obiective turistice interesante`

// HikeMateConfig configures the assistant client.
type HikeMateConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxAttempts int
	Backoff     time.Duration
	HTTPClient  *http.Client
	Logger      zerolog.Logger
	// Sleep waits between attempts; it defaults to a context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// HikeMate talks to an OpenAI-compatible chat completion endpoint.
type HikeMate struct {
	client *openai.Client
	cfg    HikeMateConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewHikeMate builds the assistant client. Mistral is used when no base URL is given.
func NewHikeMate(cfg HikeMateConfig) (*HikeMate, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("assistant api key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.mistral.ai/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "mistral-tiny"
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = time.Second
	}
	if cfg.Sleep == nil {
		cfg.Sleep = sleepContext
	}

	config := openai.DefaultConfig(cfg.APIKey)
	config.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.HTTPClient != nil {
		config.HTTPClient = cfg.HTTPClient
	}

	return &HikeMate{
		client: openai.NewClientWithConfig(config),
		cfg:    cfg,
		tracer: otel.Tracer("github.com/noah-isme/hikelink-api/pkg/ai/hikemate"),
		logger: cfg.Logger.With().Str("component", "hikemate").Logger(),
	}, nil
}

// Ask sends the question with the hiking system prompt. Rate limiting and provider
// outages are retried with a linear backoff; the reply is never empty.
func (h *HikeMate) Ask(parent context.Context, question string) Reply {
	ctx, span := h.tracer.Start(parent, "hikemate.ask", trace.WithAttributes(
		attribute.String("model", h.cfg.Model),
	))
	defer span.End()

	request := openai.ChatCompletionRequest{
		Model: h.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: question},
		},
	}

	var lastErr error
	attempts := 0
	for attempt := 1; attempt <= h.cfg.MaxAttempts; attempt++ {
		attempts = attempt
		resp, err := h.client.CreateChatCompletion(ctx, request)
		if err == nil {
			if len(resp.Choices) > 0 && strings.TrimSpace(resp.Choices[0].Message.Content) != "" {
				span.SetAttributes(attribute.Int("attempts", attempt))
				return Reply{Text: strings.TrimSpace(resp.Choices[0].Message.Content), Outcome: OutcomeAnswered, Attempts: attempt}
			}
			err = errors.New("no choices returned")
		}
		lastErr = err

		status := statusCode(err)
		if status == http.StatusUnprocessableEntity {
			h.logger.Warn().Err(err).Msg("assistant rejected request format")
			span.SetStatus(codes.Error, "format error")
			return Reply{Text: FormatErrorReply, Outcome: OutcomeFormatError, Attempts: attempt}
		}
		if !retryable(status) {
			break
		}

		h.logger.Warn().Err(err).Int("attempt", attempt).Int("status", status).Msg("assistant attempt failed")
		if attempt == h.cfg.MaxAttempts {
			break
		}
		if err := h.cfg.Sleep(ctx, time.Duration(attempt)*h.cfg.Backoff); err != nil {
			lastErr = err
			break
		}
	}

	h.logger.Error().Err(lastErr).Msg("assistant unavailable")
	span.RecordError(lastErr)
	span.SetStatus(codes.Error, "unavailable")
	return Reply{Text: FallbackReply, Outcome: OutcomeUnavailable, Attempts: attempts}
}

func statusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status == http.StatusServiceUnavailable
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
