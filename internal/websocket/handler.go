package websocket

import (
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// ServeWs attaches a connection to a document channel and blocks until it closes.
func ServeWs(hub *Hub, c *websocket.Conn, documentID, userID uuid.UUID) {
	client := &Client{Hub: hub, Conn: c, DocumentID: documentID, UserID: userID, Send: make(chan []byte, 16)}
	client.Hub.register <- client

	go client.writePump()
	client.readPump()
}
