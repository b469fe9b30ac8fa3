package web

import (
	"net/http"
	"sync"
	"time"

	"regimenz-pos/internal/core"
)

const (
	maxActivities    = 100
	maxTransactions  = 50
	activeWindowSecs = 5 * 60
)

// activityEntry is one dashboard activity row.
type activityEntry struct {
	Who       string    `json:"who"`
	Action    string    `json:"action"`
	Reference string    `json:"reference"`
	At        time.Time `json:"at"`
}

// activityStore is a process-local monitor for the admin dashboard: a ring
// of recent activity, a ring of recent transactions, and a cashier
// heartbeat map. It is advisory only and resets on restart.
type activityStore struct {
	mu           sync.Mutex
	activities   []activityEntry
	transactions []*core.Sale
	heartbeats   map[string]time.Time
}

func newActivityStore() *activityStore {
	return &activityStore{heartbeats: make(map[string]time.Time)}
}

func (s *activityStore) record(who, action, reference string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activities = append(s.activities, activityEntry{
		Who:       who,
		Action:    action,
		Reference: reference,
		At:        time.Now().UTC(),
	})
	if len(s.activities) > maxActivities {
		s.activities = s.activities[len(s.activities)-maxActivities:]
	}
}

func (s *activityStore) recordTransaction(sale *core.Sale) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions = append(s.transactions, sale)
	if len(s.transactions) > maxTransactions {
		s.transactions = s.transactions[len(s.transactions)-maxTransactions:]
	}
}

func (s *activityStore) heartbeat(cashier string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.heartbeats[cashier] = time.Now().UTC()
}

// active returns cashiers seen within the last five minutes.
func (s *activityStore) active() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := time.Now().UTC().Add(-activeWindowSecs * time.Second)
	var names []string
	for name, seen := range s.heartbeats {
		if seen.After(cutoff) {
			names = append(names, name)
		}
	}
	return names
}

func (s *activityStore) recent() []activityEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]activityEntry, len(s.activities))
	copy(out, s.activities)
	return out
}

func (s *activityStore) recentTransactions() []*core.Sale {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*core.Sale, len(s.transactions))
	copy(out, s.transactions)
	return out
}

// cashierHeartbeat handles POST /api/cashier/heartbeat.
func (h *Handler) cashierHeartbeat(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	if claims == nil {
		writeError(w, r, "not authenticated", "UNAUTHORIZED", http.StatusUnauthorized)
		return
	}
	h.activity.heartbeat(claims.Username)
	writeJSON(w, map[string]string{"status": "ok"})
}

// logActivity handles POST /api/activity/log.
func (h *Handler) logActivity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Action    string `json:"action"`
		Reference string `json:"reference"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	who := ""
	if claims := authFromContext(r.Context()); claims != nil {
		who = claims.Username
	}
	h.activity.record(who, req.Action, req.Reference)
	w.WriteHeader(http.StatusNoContent)
}

// activeCashiers handles GET /api/dashboard/active-cashiers.
func (h *Handler) activeCashiers(w http.ResponseWriter, r *http.Request) {
	names := h.activity.active()
	if names == nil {
		names = []string{}
	}
	writeJSON(w, map[string]any{"activeCashiers": names})
}

// recentActivity handles GET /api/dashboard/recent-activity.
func (h *Handler) recentActivity(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.activity.recent())
}

// liveActivity handles GET /api/dashboard/live-activity: the combined feed
// the admin dashboard polls, recent sales alongside the activity log.
func (h *Handler) liveActivity(w http.ResponseWriter, r *http.Request) {
	sales := h.activity.recentTransactions()
	if sales == nil {
		sales = []*core.Sale{}
	}
	writeJSON(w, map[string]any{
		"recentSales":    sales,
		"recentActivity": h.activity.recent(),
	})
}
