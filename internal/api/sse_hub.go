package api

import (
	"sync"
	"time"

	"doorsim/domain/simulation"
	"doorsim/internal/logging"
)

// SSEClient represents a connected SSE client
type SSEClient struct {
	RunID   string
	Channel chan SimulationEvent
}

// SimulationEvent is one progress or completion event for SSE streaming
type SimulationEvent struct {
	RunID     string               `json:"run_id"`
	EventType string               `json:"event_type"`
	Progress  *simulation.Progress `json:"progress,omitempty"`
	State     string               `json:"state,omitempty"`
	Timestamp time.Time            `json:"timestamp"`
}

// SSEHub fans simulation events out to connected SSE clients. A slow client
// never stalls the runner: events to a full client channel are dropped.
type SSEHub struct {
	clients    map[string]map[chan SimulationEvent]bool
	clientsMu  sync.RWMutex
	register   chan SSEClient
	unregister chan SSEClient
	broadcast  chan SimulationEvent
	log        *logging.Logger
}

// NewSSEHub creates a new SSE hub
func NewSSEHub(log *logging.Logger) *SSEHub {
	if log == nil {
		log = logging.NewDefaultLogger()
	}
	hub := &SSEHub{
		clients:    make(map[string]map[chan SimulationEvent]bool),
		register:   make(chan SSEClient, 10),
		unregister: make(chan SSEClient, 10),
		broadcast:  make(chan SimulationEvent, 100),
		log:        log,
	}

	go hub.run()
	return hub
}

// run processes SSE hub operations
func (h *SSEHub) run() {
	for {
		select {
		case client := <-h.register:
			h.clientsMu.Lock()
			if h.clients[client.RunID] == nil {
				h.clients[client.RunID] = make(map[chan SimulationEvent]bool)
			}
			h.clients[client.RunID][client.Channel] = true
			h.log.Debug("SSE client registered for run %s (total clients: %d)",
				client.RunID, len(h.clients[client.RunID]))
			h.clientsMu.Unlock()

		case client := <-h.unregister:
			h.clientsMu.Lock()
			if clients, exists := h.clients[client.RunID]; exists {
				delete(clients, client.Channel)
				close(client.Channel)
				if len(clients) == 0 {
					delete(h.clients, client.RunID)
				}
			}
			h.clientsMu.Unlock()

		case event := <-h.broadcast:
			h.clientsMu.RLock()
			if clients, exists := h.clients[event.RunID]; exists {
				for clientChan := range clients {
					select {
					case clientChan <- event:
					default:
						// Client channel is full, skip
						h.log.Debug("SSE client channel full for run %s, skipping event", event.RunID)
					}
				}
			}
			h.clientsMu.RUnlock()
		}
	}
}

// Broadcast sends an event to all clients listening to a run. Non-blocking:
// if the hub's queue is full the event is dropped.
func (h *SSEHub) Broadcast(event SimulationEvent) {
	select {
	case h.broadcast <- event:
	default:
		h.log.Debug("SSE broadcast queue full, dropping event for run %s", event.RunID)
	}
}

// Register subscribes a client to a run's events
func (h *SSEHub) Register(client SSEClient) {
	h.register <- client
}

// Unregister removes a client subscription
func (h *SSEHub) Unregister(client SSEClient) {
	h.unregister <- client
}
