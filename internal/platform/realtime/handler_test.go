package realtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorillawebsocket "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func TestHandler_RegisterRoutes(t *testing.T) {
	rt := newTestRouter(nil)
	handler := NewHandler(rt)

	e := echo.New()
	handler.RegisterRoutes(e.Group(""))

	found := false
	for _, r := range e.Routes() {
		if r.Path == "/ws" && r.Method == http.MethodGet {
			found = true
			break
		}
	}
	if !found {
		t.Fatal("expected GET /ws route to be registered")
	}
}

func TestHandler_RejectsPlainHTTP(t *testing.T) {
	rt := newTestRouter(nil)
	handler := NewHandler(rt)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler.HandleConnect(c)
	if err == nil && rec.Code == http.StatusSwitchingProtocols {
		t.Fatal("expected upgrade to fail for non-websocket request")
	}
}

func TestHandler_FullHelloFlow(t *testing.T) {
	registry := NewRegistry()
	rt := NewRouter(registry, &mockContactSource{
		contacts: map[string][]string{"drwho": {"joy"}},
	}, zerolog.Nop())
	handler := NewHandler(rt)

	e := echo.New()
	handler.RegisterRoutes(e.Group(""))
	server := httptest.NewServer(e)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, resp, err := gorillawebsocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("failed to dial websocket: %v", err)
	}
	defer conn.Close()
	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Fatalf("expected 101, got %d", resp.StatusCode)
	}

	if err := conn.WriteJSON(Frame{Type: "hello", Name: "drwho", Role: "doctor"}); err != nil {
		t.Fatalf("failed to send hello: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var ready map[string]interface{}
	if err := conn.ReadJSON(&ready); err != nil {
		t.Fatalf("failed to read ready frame: %v", err)
	}
	if ready["type"] != "ready" || ready["username"] != "drwho" {
		t.Fatalf("expected ready frame, got %v", ready)
	}

	var contacts map[string]interface{}
	if err := conn.ReadJSON(&contacts); err != nil {
		t.Fatalf("failed to read contacts frame: %v", err)
	}
	if contacts["type"] != "contacts" {
		t.Fatalf("expected contacts frame, got %v", contacts)
	}

	time.Sleep(50 * time.Millisecond)
	if registry.Lookup("drwho") == nil {
		t.Fatal("expected session registered after hello")
	}
}

func TestHandler_DisconnectClearsPresence(t *testing.T) {
	registry := NewRegistry()
	rt := NewRouter(registry, &mockContactSource{
		contacts: map[string][]string{"joy": {}},
	}, zerolog.Nop())
	handler := NewHandler(rt)

	e := echo.New()
	handler.RegisterRoutes(e.Group(""))
	server := httptest.NewServer(e)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := gorillawebsocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("failed to dial websocket: %v", err)
	}

	if err := conn.WriteJSON(Frame{Type: "hello", Name: "joy", Role: "nurse"}); err != nil {
		t.Fatalf("failed to send hello: %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	if registry.Lookup("joy") == nil {
		t.Fatal("expected session registered")
	}

	conn.Close()
	deadline := time.Now().Add(2 * time.Second)
	for registry.Lookup("joy") != nil {
		if time.Now().After(deadline) {
			t.Fatal("expected presence cleared after close")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
