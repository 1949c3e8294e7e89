package events

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/yeremiapane/cafe-pos/models"
)

// Event types pushed to the staff dashboard.
const (
	EventOrderUpdate    = "order_update"
	EventOrderCancelled = "order_cancelled"
	EventTableUpdate    = "table_update"
	EventPaymentSuccess = "payment_success"
	EventReceiptUpdate  = "receipt_generated"
	EventStaffNotif     = "staff_notification"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub holds every connected staff dashboard client.
type Hub struct {
	clients map[*websocket.Conn]string // conn -> role
	mutex   sync.Mutex
}

var hub = Hub{
	clients: make(map[*websocket.Conn]string),
}

// RegisterClient adds a connection with its role.
func RegisterClient(conn *websocket.Conn, role string) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	hub.clients[conn] = role
}

// UnregisterClient releases a connection.
func UnregisterClient(conn *websocket.Conn) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	delete(hub.clients, conn)
	conn.Close()
}

// BroadcastOrderUpdate pushes the latest order state to every client.
func BroadcastOrderUpdate(order models.Order) {
	broadcast(Message{Event: EventOrderUpdate, Data: order})
}

// BroadcastOrderCancelled announces a voided order.
func BroadcastOrderCancelled(order models.Order) {
	broadcast(Message{Event: EventOrderCancelled, Data: order})
}

// BroadcastTableUpdate pushes a table status change.
func BroadcastTableUpdate(table models.Table) {
	broadcast(Message{Event: EventTableUpdate, Data: table})
}

// BroadcastPaymentSuccess announces a settled bill.
func BroadcastPaymentSuccess(order models.Order) {
	broadcast(Message{Event: EventPaymentSuccess, Data: order})
}

// BroadcastReceiptGenerated announces a freshly printed receipt.
func BroadcastReceiptGenerated(receipt models.Receipt) {
	broadcast(Message{Event: EventReceiptUpdate, Data: receipt})
}

// BroadcastStaffNotification sends a plain text note to staff clients.
func BroadcastStaffNotification(message string) {
	broadcast(Message{Event: EventStaffNotif, Data: message})
}

func broadcast(msg Message) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()

	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling message: %v", err)
		return
	}

	for conn := range hub.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("Error sending message to client: %v", err)
		}
	}
}
