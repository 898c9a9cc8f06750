package realtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/docket-dev/docket/internal/logging"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, hub *Hub) string {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.Serve(w, r, strings.TrimPrefix(r.URL.Path, "/"))
	}))
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string, header http.Header) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	var hello Event
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&hello))
	assert.Equal(t, EventConnected, hello.Type)

	return conn
}

func TestPublishReachesCaseSubscribers(t *testing.T) {
	hub := NewHub(nil, logging.Discard())
	base := newServer(t, hub)

	subscribed := dial(t, base+"/case-1", nil)
	other := dial(t, base+"/case-2", nil)

	require.Eventually(t, func() bool { return hub.Subscribers("case-1") == 1 }, time.Second, 10*time.Millisecond)

	hub.Publish("case-1", Event{Type: EventFileUploaded, ID: "file-9"})

	var got Event
	require.NoError(t, subscribed.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, subscribed.ReadJSON(&got))
	assert.Equal(t, EventFileUploaded, got.Type)
	assert.Equal(t, "case-1", got.CaseID)
	assert.Equal(t, "file-9", got.ID)

	require.NoError(t, other.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err := other.ReadMessage()
	assert.Error(t, err)
}

func TestSubscriberRemovedOnClose(t *testing.T) {
	hub := NewHub(nil, logging.Discard())
	base := newServer(t, hub)

	conn := dial(t, base+"/case-1", nil)
	require.Eventually(t, func() bool { return hub.Subscribers("case-1") == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	conn.Close()

	assert.Eventually(t, func() bool { return hub.Subscribers("case-1") == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestRejectsUnknownOrigin(t *testing.T) {
	hub := NewHub([]string{"http://localhost:5173"}, logging.Discard())
	base := newServer(t, hub)

	_, resp, err := websocket.DefaultDialer.Dial(base+"/case-1", http.Header{"Origin": []string{"https://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	dial(t, base+"/case-1", http.Header{"Origin": []string{"http://localhost:5173"}})
}

func TestPublishWithoutSubscribers(t *testing.T) {
	hub := NewHub(nil, logging.Discard())
	assert.NotPanics(t, func() { hub.Publish("nobody", Event{Type: EventFileDeleted}) })
}

func TestPublishDoesNotWaitOnStalledSubscriber(t *testing.T) {
	hub := NewHub(nil, logging.Discard())

	// No writer drains this subscriber, so its queue fills up.
	stalled := newSubscriber(nil)
	hub.add("case-1", stalled)

	start := time.Now()
	for i := 0; i < sendBuffer+1; i++ {
		hub.Publish("case-1", Event{Type: EventAppointmentCreated})
	}

	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, 0, hub.Subscribers("case-1"))

	select {
	case <-stalled.done:
	default:
		t.Fatal("stalled subscriber was not closed")
	}
}

func TestSlowSubscriberDoesNotAffectOthers(t *testing.T) {
	hub := NewHub(nil, logging.Discard())
	base := newServer(t, hub)

	healthy := dial(t, base+"/case-1", nil)
	require.Eventually(t, func() bool { return hub.Subscribers("case-1") == 1 }, time.Second, 10*time.Millisecond)

	stalled := newSubscriber(nil)
	for i := 0; i < sendBuffer; i++ {
		stalled.send <- Event{Type: EventAppointmentCreated}
	}
	hub.add("case-1", stalled)

	hub.Publish("case-1", Event{Type: EventFileUploaded, ID: "file-1"})

	require.Eventually(t, func() bool { return hub.Subscribers("case-1") == 1 }, time.Second, 10*time.Millisecond)

	var got Event
	require.NoError(t, healthy.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, healthy.ReadJSON(&got))
	assert.Equal(t, EventFileUploaded, got.Type)
}
