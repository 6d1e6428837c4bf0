package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"solarviz.app/internal/core/series"
	"solarviz.app/internal/ports"
)

const (
	wsWriteWait   = 10 * time.Second
	wsPongWait    = 60 * time.Second
	wsPingPeriod  = wsPongWait * 9 / 10
	wsMaxMessage  = 4096
	wsQueueLength = 8
)

// Message types exchanged on the playback stream
const (
	MessageInstant = "instant"
	MessageStart   = "start"
	MessageStop    = "stop"
	MessageError   = "error"
)

// PlaybackMessage is one frame of the playback stream. The server sends an
// instant frame on connect and after every change; clients send instant
// frames to scrub and start/stop frames to drive the clock.
type PlaybackMessage struct {
	Type     string                  `json:"type"`
	Instant  *series.PlaybackInstant `json:"instant,omitempty"`
	Current  string                  `json:"current,omitempty"`
	StepSize string                  `json:"stepSize,omitempty"`
	Clock    string                  `json:"clock,omitempty"`
	Error    string                  `json:"error,omitempty"`
}

// PlaybackHub streams playback instants to WebSocket clients
type PlaybackHub struct {
	upgrader websocket.Upgrader
	session  PlaybackSession
	clock    PlaybackClock
	interval series.Interval
	logger   ports.Logger

	clients sync.Map
	closing chan struct{}
	once    sync.Once
}

// PlaybackHubOptions holds dependencies for the hub
type PlaybackHubOptions struct {
	Session        PlaybackSession
	Clock          PlaybackClock
	Interval       series.Interval
	AllowedOrigins []string
	Logger         ports.Logger
}

// NewPlaybackHub creates a hub with no clients
func NewPlaybackHub(opts PlaybackHubOptions) *PlaybackHub {
	return &PlaybackHub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || originAllowed(opts.AllowedOrigins, origin)
			},
		},
		session:  opts.Session,
		clock:    opts.Clock,
		interval: opts.Interval,
		logger:   opts.Logger,
		closing:  make(chan struct{}),
	}
}

type hubClient struct {
	id   string
	conn *websocket.Conn
	send chan PlaybackMessage
}

// Serve handles GET /ws/playback
func (h *PlaybackHub) Serve(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", ports.F("error", err))
		return
	}

	client := &hubClient{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan PlaybackMessage, wsQueueLength),
	}
	h.clients.Store(client.id, client)
	h.logger.Info("WebSocket client connected",
		ports.F("client", client.id),
		ports.F("clients", h.ClientCount()))

	instants, unsubscribe := h.session.Subscribe(wsQueueLength)
	done := make(chan struct{})

	go h.writeLoop(client, instants, done)
	h.readLoop(client)

	close(done)
	unsubscribe()
	h.clients.Delete(client.id)
	h.logger.Info("WebSocket client disconnected",
		ports.F("client", client.id),
		ports.F("clients", h.ClientCount()))
}

// readLoop owns reads until the client goes away
func (h *PlaybackHub) readLoop(client *hubClient) {
	defer client.conn.Close()

	client.conn.SetReadLimit(wsMaxMessage)
	_ = client.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		_, data, err := client.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				h.logger.Warn("WebSocket read failed", ports.F("client", client.id), ports.F("error", err))
			}
			return
		}

		if reply, ok := h.handleMessage(data); ok {
			select {
			case client.send <- reply:
			default:
			}
		}
	}
}

// handleMessage applies a client frame and returns a frame for the sender
// only when the change is not broadcast to everyone anyway
func (h *PlaybackHub) handleMessage(data []byte) (PlaybackMessage, bool) {
	var msg PlaybackMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return PlaybackMessage{Type: MessageError, Error: "malformed message"}, true
	}

	switch msg.Type {
	case MessageInstant:
		req := InstantRequest{Current: msg.Current, StepSize: msg.StepSize}
		if msg.Instant != nil {
			req = InstantRequest{Current: series.InstantString(msg.Instant.Current), StepSize: msg.Instant.StepSize.String()}
		}
		if _, err := applyInstant(h.session, h.interval, req); err != nil {
			return PlaybackMessage{Type: MessageError, Error: err.Error()}, true
		}
		return PlaybackMessage{}, false
	case MessageStart:
		h.clock.Start()
		return PlaybackMessage{Type: MessageStart, Clock: string(h.clock.State())}, true
	case MessageStop:
		h.clock.Stop()
		return PlaybackMessage{Type: MessageStop, Clock: string(h.clock.State())}, true
	default:
		return PlaybackMessage{Type: MessageError, Error: "unknown message type " + msg.Type}, true
	}
}

// writeLoop owns writes: the initial instant, every broadcast instant,
// replies from the read loop and keepalive pings
func (h *PlaybackHub) writeLoop(client *hubClient, instants <-chan series.PlaybackInstant, done <-chan struct{}) {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()
	defer client.conn.Close()

	current := h.session.Instant()
	if err := h.write(client, PlaybackMessage{Type: MessageInstant, Instant: &current, Clock: string(h.clock.State())}); err != nil {
		return
	}

	for {
		select {
		case <-done:
			return
		case <-h.closing:
			_ = client.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(wsWriteWait))
			return
		case instant, ok := <-instants:
			if !ok {
				return
			}
			if err := h.write(client, PlaybackMessage{Type: MessageInstant, Instant: &instant, Clock: string(h.clock.State())}); err != nil {
				return
			}
		case msg := <-client.send:
			if err := h.write(client, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = client.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *PlaybackHub) write(client *hubClient, msg PlaybackMessage) error {
	_ = client.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	if err := client.conn.WriteJSON(msg); err != nil {
		h.logger.Warn("WebSocket write failed", ports.F("client", client.id), ports.F("error", err))
		return err
	}
	return nil
}

// ClientCount returns the number of connected clients
func (h *PlaybackHub) ClientCount() int {
	count := 0
	h.clients.Range(func(key, value any) bool {
		count++
		return true
	})
	return count
}

// Close asks every client to disconnect
func (h *PlaybackHub) Close() {
	h.once.Do(func() {
		close(h.closing)
	})
}
