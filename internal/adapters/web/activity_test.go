package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"regimenz-pos/internal/core"
)

func TestActivityStore_RingsAreCapped(t *testing.T) {
	store := newActivityStore()

	for i := 0; i < maxActivities+20; i++ {
		store.record("cashier1", "sale_committed", fmt.Sprintf("sale-%d", i))
	}
	if got := len(store.recent()); got != maxActivities {
		t.Errorf("Expected activity ring capped at %d, got %d", maxActivities, got)
	}

	for i := 0; i < maxTransactions+10; i++ {
		store.recordTransaction(&core.Sale{ID: fmt.Sprintf("sale-%d", i)})
	}
	sales := store.recentTransactions()
	if len(sales) != maxTransactions {
		t.Fatalf("Expected transaction ring capped at %d, got %d", maxTransactions, len(sales))
	}
	// Oldest entries drop off; the newest survives.
	if sales[len(sales)-1].ID != fmt.Sprintf("sale-%d", maxTransactions+9) {
		t.Errorf("Expected newest sale last, got %s", sales[len(sales)-1].ID)
	}
}

func TestLiveActivityFeed(t *testing.T) {
	h := &Handler{activity: newActivityStore()}
	h.activity.record("cashier1", "sale_committed", "sale-1")
	h.activity.recordTransaction(&core.Sale{
		ID:       "sale-1",
		TotalUsd: decimal.NewFromInt(24),
	})

	rec := httptest.NewRecorder()
	h.liveActivity(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard/live-activity", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var body struct {
		RecentSales []struct {
			ID string `json:"id"`
		} `json:"recentSales"`
		RecentActivity []struct {
			Action    string `json:"action"`
			Reference string `json:"reference"`
		} `json:"recentActivity"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(body.RecentSales) != 1 || body.RecentSales[0].ID != "sale-1" {
		t.Errorf("Unexpected recentSales: %+v", body.RecentSales)
	}
	if len(body.RecentActivity) != 1 || body.RecentActivity[0].Reference != "sale-1" {
		t.Errorf("Unexpected recentActivity: %+v", body.RecentActivity)
	}
}

func TestLiveActivityFeed_EmptyStore(t *testing.T) {
	h := &Handler{activity: newActivityStore()}

	rec := httptest.NewRecorder()
	h.liveActivity(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard/live-activity", nil))

	var body map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if string(body["recentSales"]) != "[]" {
		t.Errorf("Expected empty array for recentSales, got %s", body["recentSales"])
	}
}
