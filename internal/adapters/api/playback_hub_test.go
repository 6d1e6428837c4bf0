package api

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"solarviz.app/internal/core/playback"
	"solarviz.app/internal/core/series"
)

func dialPlayback(t *testing.T, ts *testServer) *websocket.Conn {
	t.Helper()

	server := httptest.NewServer(ts.server.Handler())
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/playback"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) PlaybackMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	var msg PlaybackMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestPlaybackHub_SendsInitialAndBroadcastInstants(t *testing.T) {
	ts := newTestServer(t)
	conn := dialPlayback(t, ts)

	initial := readMessage(t, conn)
	require.Equal(t, MessageInstant, initial.Type)
	require.NotNil(t, initial.Instant)
	assert.True(t, testInstant.Equal(initial.Instant.Current))
	assert.Equal(t, "stopped", initial.Clock)

	require.Eventually(t, func() bool { return ts.session.SubscriberCount() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, ts.server.hub.ClientCount())

	next := series.PlaybackInstant{Current: testInstant.AddDate(0, 0, 1), StepSize: series.Daily}
	ts.session.Set(next)

	msg := readMessage(t, conn)
	require.Equal(t, MessageInstant, msg.Type)
	assert.True(t, next.Current.Equal(msg.Instant.Current))
}

func TestPlaybackHub_ClientScrub(t *testing.T) {
	ts := newTestServer(t)
	conn := dialPlayback(t, ts)
	readMessage(t, conn)
	require.Eventually(t, func() bool { return ts.session.SubscriberCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteJSON(PlaybackMessage{
		Type:     MessageInstant,
		Current:  "2008-03-01T12:00:00Z",
		StepSize: "1day",
	}))

	msg := readMessage(t, conn)
	require.Equal(t, MessageInstant, msg.Type)
	assert.Equal(t, "2008-03-01T00:00:00Z", series.CanonicalKey(msg.Instant.Current))
	assert.Equal(t, "2008-03-01T00:00:00Z", series.CanonicalKey(ts.session.Instant().Current))
}

func TestPlaybackHub_ErrorFrames(t *testing.T) {
	ts := newTestServer(t)
	conn := dialPlayback(t, ts)
	readMessage(t, conn)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	msg := readMessage(t, conn)
	assert.Equal(t, MessageError, msg.Type)
	assert.Equal(t, "malformed message", msg.Error)

	require.NoError(t, conn.WriteJSON(PlaybackMessage{Type: MessageInstant, Current: "1999-01-01T00:00:00Z"}))
	msg = readMessage(t, conn)
	assert.Equal(t, MessageError, msg.Type)
	assert.Contains(t, msg.Error, "outside the available data interval")

	require.NoError(t, conn.WriteJSON(PlaybackMessage{Type: "rewind"}))
	msg = readMessage(t, conn)
	assert.Equal(t, MessageError, msg.Type)
}

func TestPlaybackHub_StartStop(t *testing.T) {
	ts := newTestServer(t)
	conn := dialPlayback(t, ts)
	readMessage(t, conn)

	require.NoError(t, conn.WriteJSON(PlaybackMessage{Type: MessageStart}))
	msg := readMessage(t, conn)
	assert.Equal(t, MessageStart, msg.Type)
	assert.Equal(t, "running", msg.Clock)
	assert.Equal(t, playback.ClockRunning, ts.clock.State())

	require.NoError(t, conn.WriteJSON(PlaybackMessage{Type: MessageStop}))
	msg = readMessage(t, conn)
	assert.Equal(t, MessageStop, msg.Type)
	assert.Equal(t, playback.ClockStopped, ts.clock.State())
}

func TestPlaybackHub_DisconnectUnsubscribes(t *testing.T) {
	ts := newTestServer(t)
	conn := dialPlayback(t, ts)
	readMessage(t, conn)
	require.Eventually(t, func() bool { return ts.session.SubscriberCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())

	assert.Eventually(t, func() bool {
		return ts.session.SubscriberCount() == 0 && ts.server.hub.ClientCount() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestPlaybackHub_CloseDisconnectsClients(t *testing.T) {
	ts := newTestServer(t)
	conn := dialPlayback(t, ts)
	readMessage(t, conn)

	ts.server.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
}

func TestPlaybackHub_RejectsForeignOrigin(t *testing.T) {
	hub := NewPlaybackHub(PlaybackHubOptions{
		AllowedOrigins: []string{"https://viz.example.com"},
		Logger:         nopLogger{},
	})

	req := httptest.NewRequest("GET", "/ws/playback", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	assert.False(t, hub.upgrader.CheckOrigin(req))

	req.Header.Set("Origin", "https://viz.example.com")
	assert.True(t, hub.upgrader.CheckOrigin(req))
}
