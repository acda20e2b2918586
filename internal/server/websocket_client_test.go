package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// pair starts a websocket server running serve and returns a client wrapped
// around the dialed connection.
func pair(t *testing.T, serve func(conn *websocket.Conn)) *WebSocketClient {
	t.Helper()
	upgrader := websocket.Upgrader{}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("Failed to upgrade: %v", err)
			return
		}
		defer conn.Close()
		serve(conn)
	}))
	t.Cleanup(ts.Close)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return NewWebSocketClient(conn)
}

func TestWebSocketClient_ReadLine_EmptyMessages(t *testing.T) {
	client := pair(t, func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.TextMessage, []byte(""))
		conn.WriteMessage(websocket.TextMessage, []byte("   "))
		conn.WriteMessage(websocket.TextMessage, []byte("\n\n\n"))
		conn.WriteMessage(websocket.TextMessage, []byte("build calm"))
		time.Sleep(100 * time.Millisecond)
	})

	line, err := client.ReadLine()
	if err != nil {
		t.Fatalf("ReadLine failed: %v", err)
	}
	if line != "build calm" {
		t.Errorf("ReadLine() = %q, want %q", line, "build calm")
	}
}

func TestWebSocketClient_ReadLine_MultiLineMessage(t *testing.T) {
	client := pair(t, func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.TextMessage, []byte("presets\n  build storm high \nhistory"))
		time.Sleep(100 * time.Millisecond)
	})

	for _, want := range []string{"presets", "build storm high", "history"} {
		line, err := client.ReadLine()
		if err != nil {
			t.Fatalf("ReadLine failed: %v", err)
		}
		if line != want {
			t.Errorf("ReadLine() = %q, want %q", line, want)
		}
	}
}

func TestWebSocketClient_ReadLine_Closed(t *testing.T) {
	client := pair(t, func(conn *websocket.Conn) {})

	if _, err := client.ReadLine(); err == nil {
		t.Error("ReadLine on a closed connection returned no error")
	}
}

func TestWebSocketClient_WriteLine(t *testing.T) {
	received := make(chan string, 1)
	client := pair(t, func(conn *websocket.Conn) {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		received <- string(msg)
	})

	if err := client.WriteLine("Built Calm"); err != nil {
		t.Fatalf("WriteLine failed: %v", err)
	}

	select {
	case msg := <-received:
		if msg != "Built Calm" {
			t.Errorf("received %q, want %q", msg, "Built Calm")
		}
	case <-time.After(time.Second):
		t.Error("Timeout waiting for message")
	}
}

func TestWebSocketClient_RemoteAddr(t *testing.T) {
	done := make(chan struct{})
	client := pair(t, func(conn *websocket.Conn) { <-done })
	defer close(done)

	if client.RemoteAddr() == "" {
		t.Error("RemoteAddr should not be empty")
	}
}
