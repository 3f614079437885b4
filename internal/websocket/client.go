package websocket

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins, same policy as the REST CORS layer
		return true
	},
}

// Client is a middleman between the websocket connection and the hub
type Client struct {
	id     string
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	logger *slog.Logger
}

// readPump pumps messages from the websocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("websocket read error", "client_id", c.id, "error", err)
			}
			break
		}
		c.handleMessage(data)
	}
}

// handleMessage processes an incoming client message
func (c *Client) handleMessage(data []byte) {
	var message Message
	if err := json.Unmarshal(data, &message); err != nil {
		c.sendError("invalid message format")
		return
	}

	switch message.Type {
	case MessageTypeSubscribe:
		if message.GameID == "" {
			c.sendError("game_id is required for subscribe")
			return
		}
		c.hub.Subscribe(c, message.GameID)
		c.sendAck(MessageTypeSubscribe, message.GameID)

	case MessageTypeUnsubscribe:
		if message.GameID == "" {
			c.sendError("game_id is required for unsubscribe")
			return
		}
		c.hub.Unsubscribe(c, message.GameID)
		c.sendAck(MessageTypeUnsubscribe, message.GameID)

	case MessageTypePing:
		c.sendPong()

	default:
		c.sendError("unknown message type: " + message.Type)
	}
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(data)

			// Drain queued messages into the same frame
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) sendError(msg string) {
	message := Message{
		Type:      MessageTypeError,
		Data:      map[string]string{"error": msg},
		Timestamp: time.Now(),
	}
	if data, err := json.Marshal(message); err == nil {
		select {
		case c.send <- data:
		default:
		}
	}
}

func (c *Client) sendAck(action, gameID string) {
	message := Message{
		Type:      action + "_ack",
		GameID:    gameID,
		Timestamp: time.Now(),
	}
	if data, err := json.Marshal(message); err == nil {
		select {
		case c.send <- data:
		default:
		}
	}
}

func (c *Client) sendPong() {
	message := Message{
		Type:      MessageTypePong,
		Timestamp: time.Now(),
	}
	if data, err := json.Marshal(message); err == nil {
		select {
		case c.send <- data:
		default:
		}
	}
}

// ServeWs upgrades an HTTP request to a websocket connection and registers
// the client with the hub
func ServeWs(hub *Hub, logger *slog.Logger, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("websocket upgrade failed", "error", err)
		return
	}

	client := &Client{
		id:     uuid.New().String(),
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, 64),
		logger: logger,
	}

	hub.Register(client)

	go client.writePump()
	go client.readPump()
}
