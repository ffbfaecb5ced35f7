package push

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const testToken = "ExponentPushToken[xxxxxxxxxxxxxxxxxxxxxx]"

func TestService_NotifyRosterUpdated(t *testing.T) {
	var got []Message
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(Response{Data: []TicketResponse{{Status: "ok", ID: "t1"}}})
	}))
	t.Cleanup(srv.Close)

	svc := NewService(testLogger()).WithBaseURL(srv.URL)
	err := svc.NotifyRosterUpdated(context.Background(), []string{testToken}, "Segovia capital", 31)
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, testToken, got[0].To)
	assert.Equal(t, "Guardias actualizadas", got[0].Title)
	assert.Contains(t, got[0].Body, "Segovia capital")
}

func TestService_NotifyRefreshFailure_SkipsInvalidTokens(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		_ = json.NewEncoder(w).Encode(Response{})
	}))
	t.Cleanup(srv.Close)

	svc := NewService(testLogger()).WithBaseURL(srv.URL)
	err := svc.NotifyRefreshFailure(context.Background(), []string{"not-a-token"}, "El Espinar")
	require.NoError(t, err)
	assert.Zero(t, hits)
}

func TestService_Send_ErrorTicket(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(Response{Data: []TicketResponse{
			{Status: "error", Message: "DeviceNotRegistered"},
		}})
	}))
	t.Cleanup(srv.Close)

	svc := NewService(testLogger()).WithBaseURL(srv.URL)
	err := svc.Send(context.Background(), &Message{To: testToken, Body: "hola"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DeviceNotRegistered")
}

func TestService_Send_RejectsMissingToken(t *testing.T) {
	svc := NewService(testLogger())
	require.Error(t, svc.Send(context.Background(), &Message{Body: "hola"}))
}
