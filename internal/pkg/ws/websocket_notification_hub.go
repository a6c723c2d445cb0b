package ws

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const writeWait = 10 * time.Second

var singletonMutex sync.Mutex

type WebSocketNotificationHub struct {
	registrationMutex sync.Mutex
	listeners         map[string][]*websocket.Conn
	writeWait         time.Duration
}

func newHub(writeWait time.Duration) *WebSocketNotificationHub {
	return &WebSocketNotificationHub{
		listeners: make(map[string][]*websocket.Conn),
		writeWait: writeWait,
	}
}

func CoinFlipTopic(player common.Address) string {
	return fmt.Sprintf("coinflip/%s", strings.ToLower(player.Hex()))
}

func (hub *WebSocketNotificationHub) RegisterListener(topic string, conn *websocket.Conn) {
	hub.registrationMutex.Lock()
	defer hub.registrationMutex.Unlock()

	hub.listeners[topic] = append(hub.listeners[topic], conn)
}

func (hub *WebSocketNotificationHub) UnregisterListener(topic string, conn *websocket.Conn) {
	hub.registrationMutex.Lock()
	defer hub.registrationMutex.Unlock()

	hub.removeLocked(topic, conn)
}

func (hub *WebSocketNotificationHub) removeLocked(topic string, conn *websocket.Conn) {
	listeners := hub.listeners[topic]
	for i, listener := range listeners {
		if listener == conn {
			listeners = append(listeners[:i], listeners[i+1:]...)
			break
		}
	}

	if len(listeners) == 0 {
		delete(hub.listeners, topic)
		return
	}
	hub.listeners[topic] = listeners
}

func (hub *WebSocketNotificationHub) ListenerCount(topic string) int {
	hub.registrationMutex.Lock()
	defer hub.registrationMutex.Unlock()

	return len(hub.listeners[topic])
}

// Publish writes event to every listener of targetTopic. Listeners that fail the write or do not
// accept it within writeWait are dropped.
func (hub *WebSocketNotificationHub) Publish(targetTopic string, event any) {
	hub.registrationMutex.Lock()
	defer hub.registrationMutex.Unlock()

	for _, listener := range append([]*websocket.Conn{}, hub.listeners[targetTopic]...) {
		err := listener.SetWriteDeadline(time.Now().Add(hub.writeWait))
		if err == nil {
			err = listener.WriteJSON(event)
		}
		if err != nil {
			log.Warn().Err(err).Str("topic", targetTopic).Msg("Dropping websocket listener")
			hub.removeLocked(targetTopic, listener)
			_ = listener.Close()
		}
	}
}

var notificationHubSingleton *WebSocketNotificationHub

func NewNotificationHub() *WebSocketNotificationHub {
	singletonMutex.Lock()
	defer singletonMutex.Unlock()

	if notificationHubSingleton == nil {
		notificationHubSingleton = newHub(writeWait)
	}

	return notificationHubSingleton
}
