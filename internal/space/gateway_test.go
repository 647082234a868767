package space

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"spacebot/internal/auth"
)

func recordingServer(t *testing.T, status int, got *map[string]any, auths *[]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/http/chats/messages/send-message", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		*auths = append(*auths, r.Header.Get("Authorization"))
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, got))
		w.WriteHeader(status)
	}))
}

func TestSendToChannel(t *testing.T) {
	var got map[string]any
	var auths []string
	srv := recordingServer(t, http.StatusOK, &got, &auths)
	defer srv.Close()

	g := NewGateway(nil, zap.NewNop().Sugar())
	session := auth.Session{ClientID: "c1", ServerURL: srv.URL, AccessToken: "tok-1"}

	err := g.SendToChannel(context.Background(), session, "ch1", "hello")
	require.NoError(t, err)

	assert.Equal(t, []string{"Bearer tok-1"}, auths)
	channel := got["channel"].(map[string]any)
	assert.Equal(t, "ChannelIdentifier.Id", channel["className"])
	assert.Equal(t, "ch1", channel["id"])
	content := got["content"].(map[string]any)
	assert.Equal(t, "ChatMessage.Text", content["className"])
	assert.Equal(t, "hello", content["text"])
}

func TestSendToUser(t *testing.T) {
	var got map[string]any
	var auths []string
	srv := recordingServer(t, http.StatusOK, &got, &auths)
	defer srv.Close()

	g := NewGateway(nil, zap.NewNop().Sugar())
	session := auth.Session{ClientID: "c1", ServerURL: srv.URL, AccessToken: "tok-1"}

	err := g.SendToUser(context.Background(), session, "u1", "welcome")
	require.NoError(t, err)

	recipient := got["recipient"].(map[string]any)
	assert.Equal(t, "MessageRecipient.Member", recipient["className"])
	member := recipient["member"].(map[string]any)
	assert.Equal(t, "ProfileIdentifier.Id", member["className"])
	assert.Equal(t, "u1", member["id"])
}

func TestSendFailureSurfacesStatus(t *testing.T) {
	var got map[string]any
	var auths []string
	srv := recordingServer(t, http.StatusForbidden, &got, &auths)
	defer srv.Close()

	g := NewGateway(nil, zap.NewNop().Sugar())
	session := auth.Session{ServerURL: srv.URL, AccessToken: "tok-1"}

	err := g.SendToChannel(context.Background(), session, "ch1", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
}
