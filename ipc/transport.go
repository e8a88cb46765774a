package ipc

import (
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Transport moves whole envelopes between the sidecar and one host peer.
type Transport interface {
	Read() (Envelope, error)
	Write(Envelope) error
	Close() error
}

// StreamTransport frames envelopes over a byte stream such as a unix
// domain socket.
type StreamTransport struct {
	conn net.Conn
}

func NewStreamTransport(conn net.Conn) *StreamTransport {
	return &StreamTransport{conn: conn}
}

func (t *StreamTransport) Read() (Envelope, error)  { return ReadEnvelope(t.conn) }
func (t *StreamTransport) Write(env Envelope) error { return WriteEnvelope(t.conn, env) }
func (t *StreamTransport) Close() error             { return t.conn.Close() }

const writeWait = 10 * time.Second

// WebsocketTransport carries one envelope per text message. Websocket
// frames are already delimited, so there is no length prefix.
type WebsocketTransport struct {
	conn *websocket.Conn
	// gorilla allows one concurrent writer.
	writeMu sync.Mutex
}

func NewWebsocketTransport(conn *websocket.Conn) *WebsocketTransport {
	conn.SetReadLimit(MaxMessageSize)
	return &WebsocketTransport{conn: conn}
}

func (t *WebsocketTransport) Read() (Envelope, error) {
	kind, payload, err := t.conn.ReadMessage()
	if err != nil {
		return Envelope{}, fmt.Errorf("read message: %w", err)
	}
	if kind != websocket.TextMessage && kind != websocket.BinaryMessage {
		return Envelope{}, fmt.Errorf("unexpected websocket message type %d", kind)
	}
	return decodeEnvelope(payload)
}

func (t *WebsocketTransport) Write(env Envelope) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	if err := t.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}
	if err := t.conn.WriteJSON(env); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	return nil
}

func (t *WebsocketTransport) Close() error {
	t.writeMu.Lock()
	deadline := time.Now().Add(writeWait)
	_ = t.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	t.writeMu.Unlock()
	return t.conn.Close()
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Hosts connect from localhost or a trusted match server.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WebsocketHandler upgrades each request and hands the transport to serve,
// which owns it until it returns.
func WebsocketHandler(serve func(Transport)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade has already written an HTTP error.
			return
		}
		serve(NewWebsocketTransport(conn))
	})
}
