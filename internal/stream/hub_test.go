package stream

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"chainguard/internal/domain"
)

func dialTestHub(t *testing.T, hub *Hub) (*websocket.Conn, func()) {
	t.Helper()

	srv := httptest.NewServer(hub)
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		srv.Close()
		t.Fatalf("dial: %v", err)
	}

	return conn, func() {
		conn.Close()
		srv.Close()
	}
}

func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.ClientCount() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("client count = %d, want %d", hub.ClientCount(), want)
}

func TestHub_BroadcastDeliversVerdict(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	conn, cleanup := dialTestHub(t, hub)
	defer cleanup()
	waitForClients(t, hub, 1)

	record := &domain.RiskRecord{
		Status:     domain.StatusRed,
		RiskLevel:  domain.RiskCritical,
		Summary:    "🚫 Tornado Cash Router",
		Confidence: 1.0,
		Type:       domain.TypeContract,
	}
	hub.Broadcast("0x910cbd23d2ecdd2b552dd4a09e9a0c6f9c19dbf", record)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var got Verdict
	if err := json.Unmarshal(payload, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Address != "0x910cbd23d2ecdd2b552dd4a09e9a0c6f9c19dbf" {
		t.Errorf("address = %q", got.Address)
	}
	if got.Record == nil || got.Record.Status != domain.StatusRed {
		t.Errorf("record = %+v", got.Record)
	}
}

func TestHub_MultipleClients(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	conn1, cleanup1 := dialTestHub(t, hub)
	defer cleanup1()
	conn2, cleanup2 := dialTestHub(t, hub)
	defer cleanup2()
	waitForClients(t, hub, 2)

	hub.Broadcast("0x1111111111111111111111111111111111111111", &domain.RiskRecord{
		Status: domain.StatusGreen,
	})

	for _, conn := range []*websocket.Conn{conn1, conn2} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, payload, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		var got Verdict
		if err := json.Unmarshal(payload, &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if got.Record.Status != domain.StatusGreen {
			t.Errorf("status = %q", got.Record.Status)
		}
	}
}

func TestHub_DisconnectRemovesClient(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	conn, cleanup := dialTestHub(t, hub)
	waitForClients(t, hub, 1)

	conn.Close()
	cleanup()
	waitForClients(t, hub, 0)

	// Broadcast to an empty hub is a no-op.
	hub.Broadcast("0x2222222222222222222222222222222222222222", &domain.RiskRecord{})
}
