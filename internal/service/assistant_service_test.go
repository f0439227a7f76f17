package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hikelink-api/internal/dto"
	"github.com/noah-isme/hikelink-api/pkg/ai"
)

type assistantStub struct {
	questions []string
}

func (a *assistantStub) Ask(ctx context.Context, question string) ai.Reply {
	a.questions = append(a.questions, question)
	return ai.Reply{Text: "Ia frontala.", Outcome: ai.OutcomeAnswered, Attempts: 1}
}

func TestAssistantServiceAsk(t *testing.T) {
	stub := &assistantStub{}
	svc := NewAssistantService(stub, validator.New(), testLogger())
	session := Session{UserID: "user-1", DisplayName: "Ana"}

	resp, err := svc.Ask(context.Background(), session, dto.AssistantMessageRequest{Message: "  <b>Ce iau?</b> "})
	require.NoError(t, err)
	require.Equal(t, "Ia frontala.", resp.Reply)
	require.Equal(t, []string{"Ce iau?"}, stub.questions)

	_, err = svc.Ask(context.Background(), session, dto.AssistantMessageRequest{Message: "<p></p>"})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Ask(context.Background(), Session{}, dto.AssistantMessageRequest{Message: "Salut"})
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestAssistantServiceDisabled(t *testing.T) {
	svc := NewAssistantService(nil, validator.New(), testLogger())
	_, err := svc.Ask(context.Background(), Session{UserID: "user-1"}, dto.AssistantMessageRequest{Message: "Salut"})
	require.ErrorIs(t, err, ErrAssistantUnavailable)
}
