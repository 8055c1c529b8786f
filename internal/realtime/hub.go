// Package realtime pushes budget change notifications to websocket clients.
package realtime

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/olahol/melody"

	"pyggy/internal/logger"
)

const budgetKey = "budget_id"

// Event types published after mutations.
const (
	EventBudgetUpdated  = "budget.updated"
	EventMonthProcessed = "month.processed"
	EventMonthDeleted   = "month.deleted"
	EventExpenseChanged = "expense.changed"
	EventItemChanged    = "item.changed"
	EventPaymentChanged = "payment.changed"
)

// Event is the message sent to subscribers of a budget.
type Event struct {
	Type     string `json:"type"`
	BudgetID string `json:"budget_id"`
}

// Publisher notifies subscribers that a budget changed.
type Publisher interface {
	Publish(budgetID, eventType string)
}

// Hub fans events out to websocket sessions subscribed to a budget.
type Hub struct {
	m *melody.Melody
}

// NewHub creates a hub with keep-alive settings suited to proxied hosting.
func NewHub() *Hub {
	m := melody.New()
	m.Config.MaxMessageSize = 1024
	m.Config.PingPeriod = 30 * time.Second
	m.Config.PongWait = 60 * time.Second

	log := logger.Named("realtime")
	m.HandleConnect(func(s *melody.Session) {
		budgetID, _ := s.Get(budgetKey)
		log.Debugw("client connected", "budget_id", budgetID)
	})
	m.HandleDisconnect(func(s *melody.Session) {
		budgetID, _ := s.Get(budgetKey)
		log.Debugw("client disconnected", "budget_id", budgetID)
	})
	m.HandleError(func(s *melody.Session, err error) {
		budgetID, _ := s.Get(budgetKey)
		log.Warnw("websocket error", "budget_id", budgetID, "error", err)
	})

	return &Hub{m: m}
}

// Serve upgrades the request and subscribes the connection to budgetID.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, budgetID string) error {
	return h.m.HandleRequestWithKeys(w, r, map[string]interface{}{budgetKey: budgetID})
}

// Publish sends an event to every session watching budgetID. Failures are
// logged; callers never wait on slow clients. A nil hub drops the event.
func (h *Hub) Publish(budgetID, eventType string) {
	if h == nil {
		return
	}
	msg, err := json.Marshal(Event{Type: eventType, BudgetID: budgetID})
	if err != nil {
		logger.Named("realtime").Errorw("failed to encode event", "error", err)
		return
	}
	err = h.m.BroadcastFilter(msg, func(s *melody.Session) bool {
		id, ok := s.Get(budgetKey)
		return ok && id == budgetID
	})
	if err != nil && !errors.Is(err, melody.ErrClosed) {
		logger.Named("realtime").Warnw("broadcast failed", "budget_id", budgetID, "type", eventType, "error", err)
	}
}

// Sessions returns the number of connected clients.
func (h *Hub) Sessions() int {
	if h == nil {
		return 0
	}
	return h.m.Len()
}

// Close disconnects every client.
func (h *Hub) Close() error {
	return h.m.Close()
}
