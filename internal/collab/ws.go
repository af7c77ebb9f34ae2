package collab

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser origin checks are handled by the CORS layer in front of us.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWS upgrades the request and binds the connection to a fresh session.
func ServeWS(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("Websocket upgrade failed: %v", err)
			return
		}

		sess := hub.NewSession()
		log.Printf("Client connected: %s", sess.ID)

		go writePump(conn, sess)
		go readPump(conn, sess, hub)
	}
}

// readPump turns inbound frames into hub commands. Commands from one
// connection are enqueued in arrival order, so the hub sees each client's
// events in the order it sent them.
func readPump(conn *websocket.Conn, sess *Session, hub *Hub) {
	defer func() {
		hub.Disconnect(sess)
		conn.Close()
		log.Printf("Client disconnected: %s", sess.ID)
	}()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("Websocket read error for %s: %v", sess.ID, err)
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			sess.trySend(ServerMessage{Event: EventError, Payload: ErrorPayload{Message: "malformed message"}})
			continue
		}
		dispatch(hub, sess, msg)
	}
}

func dispatch(hub *Hub, sess *Session, msg ClientMessage) {
	switch msg.Event {
	case EventJoinForm:
		var p JoinPayload
		if decode(sess, msg.Payload, &p) && p.FormID != "" {
			hub.Join(sess, p.FormID, p.User.Name, p.User.Color)
		}
	case EventLeaveForm:
		var p LeavePayload
		if decode(sess, msg.Payload, &p) && p.FormID != "" {
			hub.Leave(sess, p.FormID)
		}
	case EventFormChange:
		var p FormChangePayload
		if decode(sess, msg.Payload, &p) && p.FormID != "" {
			hub.FormChange(sess, p.FormID, p.Data)
		}
	case EventFieldUpdate:
		var p FieldUpdatePayload
		if decode(sess, msg.Payload, &p) && p.FormID != "" && p.Field != "" {
			hub.FieldUpdate(sess, p.FormID, p.Field, p.Value)
		}
	case EventFieldLock:
		var p FieldPayload
		if decode(sess, msg.Payload, &p) && p.FormID != "" && p.Field != "" {
			hub.LockField(sess, p.FormID, p.Field)
		}
	case EventFieldUnlock:
		var p FieldPayload
		if decode(sess, msg.Payload, &p) && p.FormID != "" && p.Field != "" {
			hub.UnlockField(sess, p.FormID, p.Field)
		}
	default:
		sess.trySend(ServerMessage{Event: EventError, Payload: ErrorPayload{Message: "unknown event: " + msg.Event}})
	}
}

func decode(sess *Session, raw json.RawMessage, dest any) bool {
	if err := json.Unmarshal(raw, dest); err != nil {
		sess.trySend(ServerMessage{Event: EventError, Payload: ErrorPayload{Message: "malformed payload"}})
		return false
	}
	return true
}

func writePump(conn *websocket.Conn, sess *Session) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case msg, ok := <-sess.send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
