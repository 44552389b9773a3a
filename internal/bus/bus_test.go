package bus

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestPublish(t *testing.T) {
	received := make(chan Message, 2)
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var m Message
			if err := json.Unmarshal(data, &m); err != nil {
				t.Errorf("unmarshal: %v", err)
				return
			}
			received <- m
		}
	}))
	defer srv.Close()

	b, err := Dial("ws"+strings.TrimPrefix(srv.URL, "http"), "jarvis")
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer b.Close()

	if err := b.Publish(KindHeard, "what time is it"); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err := b.Publish(KindReply, "The time is 09:05 PM"); err != nil {
		t.Fatalf("publish: %v", err)
	}

	for _, want := range []Message{
		{From: "jarvis", Kind: KindHeard, Content: "what time is it"},
		{From: "jarvis", Kind: KindReply, Content: "The time is 09:05 PM"},
	} {
		select {
		case got := <-received:
			if got.From != want.From || got.Kind != want.Kind || got.Content != want.Content {
				t.Errorf("got %+v, want %+v", got, want)
			}
			if got.Time.IsZero() {
				t.Error("message time not set")
			}
		case <-time.After(5 * time.Second):
			t.Fatal("timeout waiting for message")
		}
	}
}

func TestNilBus(t *testing.T) {
	var b *Bus
	if err := b.Publish(KindReply, "ignored"); err != nil {
		t.Errorf("nil bus publish: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Errorf("nil bus close: %v", err)
	}
}

func TestDial_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	srv.Close()

	if _, err := Dial(url, "jarvis"); err == nil {
		t.Error("expected dial error")
	}
}
