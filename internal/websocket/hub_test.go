package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gws "github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"hadiqa-backend/internal/models"
)

func newTestHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()

	// Pub/sub never connects in these tests; direct sends don't touch it.
	hub := NewHub(redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"}))
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	t.Cleanup(srv.Close)
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, installID string) *gws.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "?install_id=" + installID
	conn, _, err := gws.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *gws.Conn) models.WSMessage {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage failed: %v", err)
	}

	var msg models.WSMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	return msg
}

func TestHandleWebSocket_RequiresInstallID(t *testing.T) {
	_, srv := newTestHub(t)

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 without install_id, got %d", resp.StatusCode)
	}
}

func TestSendToInstall_DeliversToOwnConnectionOnly(t *testing.T) {
	hub, srv := newTestHub(t)

	connA := dial(t, srv, "install-a")
	connB := dial(t, srv, "install-b")

	hub.SendToInstall("install-a", models.WSMessage{
		Type:    "download_complete",
		Payload: models.DownloadUpdate{VideoID: "v1", Progress: 100},
	})

	msg := readMessage(t, connA)
	if msg.Type != "download_complete" {
		t.Errorf("Expected download_complete, got %q", msg.Type)
	}

	// The other install must not receive it.
	connB.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, _, err := connB.ReadMessage(); err == nil {
		t.Error("Expected no message for install-b")
	}
}

func TestBroadcastAll_ReachesEveryConnection(t *testing.T) {
	hub, srv := newTestHub(t)

	connA := dial(t, srv, "install-a")
	connB := dial(t, srv, "install-b")

	hub.BroadcastAll("rotation", models.RotationUpdate{Counter: 7})

	for _, conn := range []*gws.Conn{connA, connB} {
		msg := readMessage(t, conn)
		if msg.Type != "rotation" {
			t.Errorf("Expected rotation message, got %q", msg.Type)
		}
	}
}
