package integrationtests

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	bidding "auction-engine/internal/biddingService"
	"auction-engine/internal/ledger"
	"auction-engine/internal/lifecycle"
	model "auction-engine/internal/models"
	"auction-engine/internal/notifier"
	"auction-engine/internal/server"
	"auction-engine/internal/store"

	"github.com/gin-gonic/gin"
)

// TestStack wires the full in-memory service behind a real router, the same
// assembly as main but without the HTTP listener and sweep goroutine. Tests
// that exercise time-based transitions call Manager.Sweep directly.
type TestStack struct {
	Router  *gin.Engine
	Store   *store.MemoryStore
	Ledger  *ledger.MemoryLedger
	Events  *notifier.Broadcaster
	Manager *lifecycle.Manager
}

// SetupTestStack initializes the stack with in-memory storage for integration testing.
func SetupTestStack(t *testing.T) *TestStack {
	gin.SetMode(gin.TestMode)

	auctionStore := store.NewMemoryStore()
	bidLedger := ledger.NewMemoryLedger()

	events := notifier.NewBroadcaster(16)
	events.Start()
	t.Cleanup(events.Close)

	service := bidding.NewBiddingService(auctionStore, bidLedger, events)
	manager := lifecycle.NewManager(auctionStore, bidLedger, events, time.Second)
	router := server.SetupRouter(service, manager, events)

	return &TestStack{
		Router:  router,
		Store:   auctionStore,
		Ledger:  bidLedger,
		Events:  events,
		Manager: manager,
	}
}

// SeedAuction inserts an auction record directly, bypassing spec validation,
// so tests can construct states the API would refuse (already expired, etc.).
func (s *TestStack) SeedAuction(t *testing.T, auction model.Auction) {
	if err := s.Store.Create(auction); err != nil {
		t.Fatalf("failed to seed auction: %v", err)
	}
}

// ExecuteRequest executes an HTTP request and returns the response recorder.
func ExecuteRequest(t *testing.T, router *gin.Engine, method, url string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// ExecuteRequestAndParse executes an HTTP request on the given router and parses the response
func ExecuteRequestAndParse(t *testing.T, router *gin.Engine, method, url string, body any) (map[string]any, *httptest.ResponseRecorder) {
	var reqBody []byte
	var err error

	switch v := body.(type) {
	case []byte:
		reqBody = v
	case nil:
	default:
		reqBody, err = json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	var resp map[string]any
	if len(w.Body.Bytes()) > 0 {
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		if err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
	}

	return resp, w
}

// DataOf extracts the data envelope as an object.
func DataOf(t *testing.T, resp map[string]any) map[string]any {
	data, ok := resp["data"].(map[string]any)
	if !ok {
		t.Fatalf("response has no data object: %v", resp)
	}
	return data
}
