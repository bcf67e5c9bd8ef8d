package chatclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"docuchat-be/pkg/identity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(handler http.Handler) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	client := New(srv.URL, &identity.StaticTokenProvider{AccessToken: "test-token"})
	return client, srv
}

func TestSendMessageRejectsEmptyQuestionLocally(t *testing.T) {
	called := false
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	for _, question := range []string{"", "   ", "\n\t"} {
		_, err := client.SendMessage(context.Background(), nil, SendMessageRequest{Question: question})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
	}
	assert.False(t, called, "empty question must not reach the network")
}

func TestSendMessageRoundTrip(t *testing.T) {
	sessionId := uuid.New()
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/v1/message", r.URL.Path)
		assert.Equal(t, sessionId.String(), r.URL.Query().Get("session_id"))
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		var req SendMessageRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "hello", req.Question)

		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(envelope[*Exchange]{
			Success: true,
			Message: "Success send message",
			Data: &Exchange{
				Session: &Session{Id: sessionId},
				Sent:    &Message{Role: "user", Content: "hello", Status: StatusCompleted},
				Reply:   &Message{Role: "assistant", Status: StatusPending},
			},
		})
	}))
	defer srv.Close()

	exchange, err := client.SendMessage(context.Background(), &sessionId, SendMessageRequest{Question: "hello"})
	require.NoError(t, err)
	assert.Equal(t, sessionId, exchange.Session.Id)
	assert.Equal(t, StatusCompleted, exchange.Sent.Status)
	assert.Equal(t, StatusPending, exchange.Reply.Status)
}

func TestTypedErrorMapping(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		errorType string
		check     func(t *testing.T, err error)
	}{
		{
			name:      "not found",
			status:    http.StatusNotFound,
			errorType: "NOT_FOUND",
			check: func(t *testing.T, err error) {
				var e *NotFoundError
				require.ErrorAs(t, err, &e)
			},
		},
		{
			name:      "validation",
			status:    http.StatusBadRequest,
			errorType: "VALIDATION",
			check: func(t *testing.T, err error) {
				var e *ValidationError
				require.ErrorAs(t, err, &e)
			},
		},
		{
			name:      "authentication",
			status:    http.StatusUnauthorized,
			errorType: "AUTHENTICATION",
			check: func(t *testing.T, err error) {
				var e *AuthenticationError
				require.ErrorAs(t, err, &e)
			},
		},
		{
			name:      "upstream unavailable",
			status:    http.StatusServiceUnavailable,
			errorType: "UPSTREAM_UNAVAILABLE",
			check: func(t *testing.T, err error) {
				var e *UpstreamUnavailableError
				require.ErrorAs(t, err, &e)
			},
		},
		{
			name:      "timeout",
			status:    http.StatusGatewayTimeout,
			errorType: "TIMEOUT",
			check: func(t *testing.T, err error) {
				var e *TimeoutError
				require.ErrorAs(t, err, &e)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				json.NewEncoder(w).Encode(errorBody{
					Success:   false,
					Message:   "boom",
					ErrorType: tt.errorType,
				})
			}))
			defer srv.Close()

			_, err := client.ActiveSession(context.Background())
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestStatusCodeFallbackWithoutErrorType(t *testing.T) {
	// The auth middleware replies with a plain message body, no error_type.
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Missing token"}`))
	}))
	defer srv.Close()

	_, err := client.ActiveSession(context.Background())
	var e *AuthenticationError
	require.ErrorAs(t, err, &e)
	assert.Contains(t, e.Message, "Missing token")
}

func TestUnexpectedResponseBecomesTransportError(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>nginx</html>"))
	}))
	defer srv.Close()

	_, err := client.ActiveSession(context.Background())
	var e *TransportError
	require.ErrorAs(t, err, &e)
	assert.Equal(t, http.StatusBadGateway, e.StatusCode)
}

func TestExceededDeadlineBecomesTimeoutError(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	t.Run("context deadline", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := client.ActiveSession(ctx)
		var e *TimeoutError
		require.ErrorAs(t, err, &e)
	})

	t.Run("http client timeout", func(t *testing.T) {
		impatient := New(srv.URL,
			&identity.StaticTokenProvider{AccessToken: "test-token"},
			WithHTTPClient(&http.Client{Timeout: 50 * time.Millisecond}),
		)

		_, err := impatient.ActiveSession(context.Background())
		var e *TimeoutError
		require.ErrorAs(t, err, &e)
	})
}

func TestSessionMessagesPagination(t *testing.T) {
	sessionId := uuid.New()
	nextId := uuid.New()
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/v1/session/"+sessionId.String()+"/messages", r.URL.Path)
		assert.Equal(t, "25", r.URL.Query().Get("limit"))
		assert.Equal(t, nextId.String(), r.URL.Query().Get("cursor"))

		json.NewEncoder(w).Encode(envelope[*MessagesPage]{
			Success: true,
			Data: &MessagesPage{
				Messages:   []*Message{{Role: "user"}, {Role: "assistant"}},
				NextCursor: "",
			},
		})
	}))
	defer srv.Close()

	page, err := client.SessionMessages(context.Background(), sessionId, 25, nextId.String())
	require.NoError(t, err)
	assert.Len(t, page.Messages, 2)
	assert.Empty(t, page.NextCursor)
}

func TestDeleteSession(t *testing.T) {
	sessionId := uuid.New()
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/chat/v1/session/"+sessionId.String(), r.URL.Path)
		json.NewEncoder(w).Encode(envelope[any]{Success: true, Message: "Success delete session"})
	}))
	defer srv.Close()

	require.NoError(t, client.DeleteSession(context.Background(), sessionId))
}
