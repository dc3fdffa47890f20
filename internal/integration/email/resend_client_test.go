package email

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/savings-circle/backend/internal/application/adapter"
	domainerror "github.com/savings-circle/backend/internal/domain/error"
)

func newResendServer(t *testing.T, status int, body map[string]any, received *map[string]any) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
		if received != nil {
			_ = json.NewDecoder(r.Body).Decode(received)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestResendClient_Send(t *testing.T) {
	var received map[string]any
	server := newResendServer(t, http.StatusOK, map[string]any{"id": "re_abc"}, &received)

	client := NewResendClient("re_test", "Savings Circle", "circle@example.com")
	require.NoError(t, client.SetBaseURL(server.URL))

	result, err := client.Send(context.Background(), adapter.SendEmailInput{
		To:       "ama@example.com",
		Subject:  "Welcome",
		HTML:     "<p>hi</p>",
		Text:     "hi",
		Category: "member_joined",
	})
	require.NoError(t, err)
	assert.Equal(t, "re_abc", result.MessageID)
	assert.Equal(t, "Savings Circle <circle@example.com>", received["from"])
	assert.Equal(t, "Welcome", received["subject"])
}

func TestResendClient_ClassifiesFailures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		message  string
		wantCode domainerror.EmailErrorCode
	}{
		{"validation is permanent", http.StatusUnprocessableEntity, "invalid `to` field", domainerror.ErrCodePermanentEmailFailure},
		{"server error is temporary", http.StatusInternalServerError, "internal server error", domainerror.ErrCodeTemporaryEmailFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newResendServer(t, tt.status, map[string]any{
				"statusCode": tt.status,
				"message":    tt.message,
				"name":       "error",
			}, nil)

			client := NewResendClient("re_test", "Savings Circle", "circle@example.com")
			require.NoError(t, client.SetBaseURL(server.URL))

			_, err := client.Send(context.Background(), adapter.SendEmailInput{To: "ama@example.com", Subject: "x", Text: "x"})
			require.Error(t, err)
			assert.Equal(t, string(tt.wantCode), domainerror.CodeOf(err))
		})
	}
}
