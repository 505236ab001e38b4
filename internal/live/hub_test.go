package live

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialHub(t *testing.T, h *Hub, bookID uint64) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.Serve(w, r, bookID)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readJSON(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg map[string]any
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestHub_NotesUpdatedReachesBookClients(t *testing.T) {
	h := NewHub(logrus.New())
	conn := dialHub(t, h, 1)
	other := dialHub(t, h, 2)

	// registration races the dial; give Serve a beat
	time.Sleep(20 * time.Millisecond)

	h.NotesUpdated(1, "likes westerns")

	msg := readJSON(t, conn)
	assert.Equal(t, "ai_notes", msg["type"])
	assert.Equal(t, "likes westerns", msg["value"])

	// the other book's client hears nothing
	require.NoError(t, other.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	var none map[string]any
	assert.Error(t, other.ReadJSON(&none))
}

func TestHub_ActivityFanOut(t *testing.T) {
	h := NewHub(logrus.New())
	a := dialHub(t, h, 1)
	b := dialHub(t, h, 1)
	time.Sleep(20 * time.Millisecond)

	h.Activity(1, []string{"Added a paragraph", "Created a chapter"})

	for _, conn := range []*websocket.Conn{a, b} {
		msg := readJSON(t, conn)
		assert.Equal(t, "activity", msg["type"])
		lines := msg["lines"].([]any)
		assert.Len(t, lines, 2)
	}

	// empty batches are suppressed entirely
	h.Activity(1, nil)
	require.NoError(t, a.SetReadDeadline(time.Now().Add(100 * time.Millisecond)))
	var none map[string]any
	assert.Error(t, a.ReadJSON(&none))
}
