package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestHikeMate(t *testing.T, handler http.HandlerFunc) (*HikeMate, *[]time.Duration) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	var waits []time.Duration
	client, err := NewHikeMate(HikeMateConfig{
		APIKey:  "test-key",
		BaseURL: server.URL + "/v1",
		Logger:  zerolog.Nop(),
		Sleep: func(ctx context.Context, d time.Duration) error {
			waits = append(waits, d)
			return nil
		},
	})
	require.NoError(t, err)
	return client, &waits
}

func writeCompletion(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"id":     "cmpl-1",
		"object": "chat.completion",
		"model":  "mistral-tiny",
		"choices": []map[string]interface{}{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]string{"role": "assistant", "content": content},
		}},
	})
}

func writeError(w http.ResponseWriter, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{"message": http.StatusText(status), "type": "error"},
	})
}

func TestHikeMateSendsSystemPrompt(t *testing.T) {
	client, waits := newTestHikeMate(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "mistral-tiny", body.Model)
		require.Len(t, body.Messages, 2)
		require.Equal(t, "system", body.Messages[0].Role)
		require.Contains(t, body.Messages[0].Content, "HikeMate")
		require.Equal(t, "Ce echipament iau pe Omu?", body.Messages[1].Content)

		writeCompletion(w, "Bocanci, frontală și geacă impermeabilă.")
	})

	reply := client.Ask(context.Background(), "Ce echipament iau pe Omu?")
	require.Equal(t, OutcomeAnswered, reply.Outcome)
	require.Equal(t, "Bocanci, frontală și geacă impermeabilă.", reply.Text)
	require.Equal(t, 1, reply.Attempts)
	require.Empty(t, *waits)
}

func TestHikeMateRetriesWithLinearBackoff(t *testing.T) {
	var calls int32
	client, waits := newTestHikeMate(t, func(w http.ResponseWriter, r *http.Request) {
		switch atomic.AddInt32(&calls, 1) {
		case 1:
			writeError(w, http.StatusTooManyRequests)
		case 2:
			writeError(w, http.StatusServiceUnavailable)
		default:
			writeCompletion(w, "Traseul pe creastă durează 6 ore.")
		}
	})

	reply := client.Ask(context.Background(), "Cât durează?")
	require.Equal(t, OutcomeAnswered, reply.Outcome)
	require.Equal(t, 3, reply.Attempts)
	require.Equal(t, []time.Duration{time.Second, 2 * time.Second}, *waits)
}

func TestHikeMateFallsBackAfterAttempts(t *testing.T) {
	var calls int32
	client, waits := newTestHikeMate(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeError(w, http.StatusServiceUnavailable)
	})

	reply := client.Ask(context.Background(), "Salut")
	require.Equal(t, OutcomeUnavailable, reply.Outcome)
	require.Equal(t, FallbackReply, reply.Text)
	require.Equal(t, int32(3), atomic.LoadInt32(&calls))
	require.Len(t, *waits, 2)
}

func TestHikeMateFormatError(t *testing.T) {
	var calls int32
	client, _ := newTestHikeMate(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeError(w, http.StatusUnprocessableEntity)
	})

	reply := client.Ask(context.Background(), "Salut")
	require.Equal(t, OutcomeFormatError, reply.Outcome)
	require.Equal(t, FormatErrorReply, reply.Text)
	require.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestHikeMateDoesNotRetryOtherFailures(t *testing.T) {
	var calls int32
	client, waits := newTestHikeMate(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeError(w, http.StatusUnauthorized)
	})

	reply := client.Ask(context.Background(), "Salut")
	require.Equal(t, OutcomeUnavailable, reply.Outcome)
	require.Equal(t, 1, reply.Attempts)
	require.Equal(t, int32(1), atomic.LoadInt32(&calls))
	require.Empty(t, *waits)
}

func TestNewHikeMateRequiresKey(t *testing.T) {
	_, err := NewHikeMate(HikeMateConfig{})
	require.Error(t, err)
}
