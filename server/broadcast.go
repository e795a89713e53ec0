package server

// Event fan-out to WebSocket clients. Every mutation handler calls
// publish; the hub goroutine owns the client set and delivery.

// Event is one mutation notice pushed over the change feed.
type Event struct {
	Type      string `json:"type"`
	Entity    string `json:"entity"`
	Action    string `json:"action"`
	ID        int64  `json:"id"`
	ProjectID int64  `json:"project_id,omitempty"`
}

// publish hands an event to the hub without blocking the HTTP handler.
// Events are dropped when the hub is saturated; clients resync by
// refetching, so a missed notice is not data loss.
func (s *GdtServer) publish(ev Event) {
	select {
	case s.events <- ev:
	default:
		s.logger.Debugw("Event dropped, hub saturated",
			"entity", ev.Entity, "action", ev.Action, "id", ev.ID)
	}
}

// broadcastEvent sends an event to every connected client. Returns the
// number of clients that accepted it (send channel not full).
func (s *GdtServer) broadcastEvent(ev Event) int {
	s.mu.RLock()
	clients := make([]*Client, 0, len(s.clients))
	for client := range s.clients {
		clients = append(clients, client)
	}
	s.mu.RUnlock()

	sent := 0
	for _, client := range clients {
		select {
		case client.send <- ev:
			sent++
		default:
			// Channel full, client is falling behind.
		}
	}
	return sent
}
