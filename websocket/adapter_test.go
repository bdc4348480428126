package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sharedcanvas-server/domain"
)

type recordingHandler struct {
	mu           sync.Mutex
	connected    []string
	handled      []string
	disconnected []string
}

func (r *recordingHandler) Connect(conn domain.Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.connected = append(r.connected, conn.ID())
}

// Handle echoes every frame back to its sender.
func (r *recordingHandler) Handle(conn domain.Connection, data []byte) {
	r.mu.Lock()
	r.handled = append(r.handled, string(data))
	r.mu.Unlock()
	conn.Send(data)
}

func (r *recordingHandler) Disconnect(conn domain.Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.disconnected = append(r.disconnected, conn.ID())
}

func (r *recordingHandler) disconnects() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.disconnected)
}

func startServer(t *testing.T, h domain.MessageHandler) string {
	t.Helper()
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		NewConn("conn-1", ws, h).Start()
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestConn_RoundTrip(t *testing.T) {
	h := &recordingHandler{}
	url := startServer(t, h)

	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	msg := []byte(`{"type":"cursor","data":{"position":{"x":1,"y":2}}}`)
	require.NoError(t, client.WriteMessage(websocket.TextMessage, msg))

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, echoed, err := client.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, string(msg), string(echoed))

	require.NoError(t, client.Close())
	require.Eventually(t, func() bool { return h.disconnects() == 1 }, 2*time.Second, 10*time.Millisecond)

	h.mu.Lock()
	defer h.mu.Unlock()
	assert.Equal(t, []string{"conn-1"}, h.connected)
}

func TestConn_BinaryFramesIgnored(t *testing.T) {
	h := &recordingHandler{}
	url := startServer(t, h)

	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.WriteMessage(websocket.BinaryMessage, []byte{1, 2, 3}))
	require.NoError(t, client.WriteMessage(websocket.TextMessage, []byte(`{"type":"x"}`)))

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, echoed, err := client.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, `{"type":"x"}`, string(echoed))

	h.mu.Lock()
	defer h.mu.Unlock()
	assert.Equal(t, []string{`{"type":"x"}`}, h.handled)
}

func TestConn_OversizedFrameCloses(t *testing.T) {
	h := &recordingHandler{}
	url := startServer(t, h)

	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer client.Close()

	big, _ := json.Marshal(map[string]string{"type": strings.Repeat("a", maxMessageSize)})
	require.NoError(t, client.WriteMessage(websocket.TextMessage, big))

	require.Eventually(t, func() bool { return h.disconnects() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestConn_SendAfterClose(t *testing.T) {
	c := &Conn{
		id:   "c",
		send: make(chan []byte, 1),
		done: make(chan struct{}),
	}
	require.NoError(t, c.Send([]byte("a")))
	assert.ErrorIs(t, c.Send([]byte("b")), ErrSendQueueFull)

	close(c.done)
	assert.ErrorIs(t, c.Send([]byte("c")), ErrClosed)
}
