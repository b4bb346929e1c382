package dispatch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBotNotifierPush(t *testing.T) {
	t.Parallel()

	var got pushPayload
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewBotNotifier(srv.URL, "secret", time.Second)
	err := n.Push(context.Background(), "forge", "mention for @forge (message 1)")
	require.NoError(t, err)
	assert.Equal(t, "forge", got.Target)
	assert.Equal(t, "mention for @forge (message 1)", got.Text)
	assert.Equal(t, "Bearer secret", auth)
}

func TestBotNotifierNon2xx(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	n := NewBotNotifier(srv.URL, "", time.Second)
	err := n.Push(context.Background(), "forge", "hello")
	require.Error(t, err)
}

func TestBotNotifierRequiresEndpoint(t *testing.T) {
	t.Parallel()

	n := NewBotNotifier("", "", time.Second)
	err := n.Push(context.Background(), "forge", "hello")
	require.Error(t, err)
}
