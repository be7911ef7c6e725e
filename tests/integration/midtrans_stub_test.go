package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// midtransStub serves the Snap and Core API endpoints the adapter calls.
// Statuses set with setStatus are returned by the status endpoint; other
// orders answer 404 the way Midtrans does for unknown orders.
type midtransStub struct {
	server *httptest.Server

	mu       sync.Mutex
	sessions int
	statuses map[string]map[string]string
}

func newMidtransStub(t *testing.T) *midtransStub {
	t.Helper()

	s := &midtransStub{statuses: make(map[string]map[string]string)}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /snap/v1/transactions", s.createSession)
	mux.HandleFunc("GET /v2/{order_id}/status", s.status)
	s.server = httptest.NewServer(mux)
	t.Cleanup(s.server.Close)
	return s
}

func (s *midtransStub) URL() string {
	return s.server.URL
}

func (s *midtransStub) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions
}

func (s *midtransStub) setStatus(orderID, transactionStatus, grossAmount string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[orderID] = map[string]string{
		"order_id":           orderID,
		"transaction_status": transactionStatus,
		"fraud_status":       "accept",
		"payment_type":       "bank_transfer",
		"status_code":        "200",
		"gross_amount":       grossAmount,
	}
}

func (s *midtransStub) createSession(w http.ResponseWriter, r *http.Request) {
	if user, _, ok := r.BasicAuth(); !ok || user != serverKey {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error_messages":["Access denied due to unauthorized transaction"]}`))
		return
	}

	var req struct {
		TransactionDetails struct {
			OrderID string `json:"order_id"`
		} `json:"transaction_details"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TransactionDetails.OrderID == "" {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error_messages":["transaction_details.order_id is required"]}`))
		return
	}

	s.mu.Lock()
	s.sessions++
	token := fmt.Sprintf("snap-token-%d", s.sessions)
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"token":        token,
		"redirect_url": "https://app.sandbox.midtrans.com/snap/v4/redirection/" + token,
	})
}

func (s *midtransStub) status(w http.ResponseWriter, r *http.Request) {
	orderID := strings.TrimSpace(r.PathValue("order_id"))

	s.mu.Lock()
	body, ok := s.statuses[orderID]
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if !ok {
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status_code":    "404",
			"status_message": "Transaction doesn't exist.",
		})
		return
	}
	_ = json.NewEncoder(w).Encode(body)
}
