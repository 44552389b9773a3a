// Package bus mirrors what the assistant hears and says to a websocket hub.
package bus

import (
	"encoding/json"
	"fmt"
	log "log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	KindHeard = "heard"
	KindReply = "reply"
)

type Message struct {
	From    string    `json:"from"`
	Kind    string    `json:"kind"`
	Content string    `json:"content"`
	Time    time.Time `json:"time"`
}

type Bus struct {
	mu   sync.Mutex
	conn *websocket.Conn
	from string
}

func Dial(wsURL, from string) (*Bus, error) {
	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, fmt.Errorf("parse bus url: %w", err)
	}

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial bus: %w", err)
	}

	log.Info("Connected to bus", "url", wsURL)
	return &Bus{conn: conn, from: from}, nil
}

// Publish sends one message. A nil Bus drops it.
func (b *Bus) Publish(kind, content string) error {
	if b == nil {
		return nil
	}

	data, err := json.Marshal(Message{
		From:    b.from,
		Kind:    kind,
		Content: content,
		Time:    time.Now(),
	})
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conn.WriteMessage(websocket.TextMessage, data)
}

func (b *Bus) Close() error {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	_ = b.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return b.conn.Close()
}
