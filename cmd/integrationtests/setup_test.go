package integrationtests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	bidding "ynvest-tube/internal/biddingService"
	"ynvest-tube/internal/lifecycle"
	"ynvest-tube/internal/locker"
	"ynvest-tube/internal/realtime"
	"ynvest-tube/internal/repository"
	"ynvest-tube/internal/server"
	"ynvest-tube/internal/settlement"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// testClock is a manually advanced clock shared by every engine of a TestEnv
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// lowRand always picks the lower bound of a range
type lowRand struct{}

func (lowRand) IntN(int) int { return 0 }

// TestEnv wires the HTTP API and the background engines over one store
type TestEnv struct {
	Router     *gin.Engine
	Repo       repository.AuctionDB
	Hub        *realtime.Hub
	Clock      *testClock
	Lifecycle  *lifecycle.Controller
	Settlement *settlement.Engine
}

type storeFactory func(t *testing.T) repository.AuctionDB

func memoryStore(*testing.T) repository.AuctionDB {
	return repository.NewMemoryRepo()
}

func sqliteStore(t *testing.T) repository.AuctionDB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := repository.OpenDB("sqlite", fmt.Sprintf("file:%s%d?mode=memory&cache=shared", name, time.Now().UnixNano()))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return repository.NewGormRepo(db)
}

func stores() map[string]storeFactory {
	return map[string]storeFactory{
		"memory": memoryStore,
		"sqlite": sqliteStore,
	}
}

// SetupTestEnv initializes the router and engines for integration testing.
func SetupTestEnv(t *testing.T, newStore storeFactory) *TestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := newStore(t)
	clock := &testClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	hub := realtime.NewHub(0)
	locks := locker.New()

	service := bidding.NewBiddingService(repo,
		bidding.WithClock(clock.Now),
		bidding.WithLocker(locks),
		bidding.WithPublisher(hub),
	)
	settings := lifecycle.DefaultSettings
	settings.RequireStatistics = true
	controller := lifecycle.NewController(repo,
		lifecycle.WithSettings(settings),
		lifecycle.WithClock(clock.Now),
		lifecycle.WithRandom(lowRand{}),
		lifecycle.WithLocker(locks),
		lifecycle.WithPublisher(hub),
	)
	engine := settlement.NewEngine(repo,
		settlement.WithClock(clock.Now),
		settlement.WithLocker(locks),
		settlement.WithPublisher(hub),
	)

	return &TestEnv{
		Router:     server.SetupRouter(service, hub),
		Repo:       repo,
		Hub:        hub,
		Clock:      clock,
		Lifecycle:  controller,
		Settlement: engine,
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

// ExecuteRequestAndParse executes an HTTP request on the given router and parses the
// response envelope
func ExecuteRequestAndParse(t *testing.T, router *gin.Engine, method, url string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()
	var reqBody []byte
	var err error

	switch v := body.(type) {
	case nil:
	case []byte:
		reqBody = v
	case string:
		reqBody = []byte(v)
	default:
		reqBody, err = json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
	}

	w := ExecuteRequest(t, router, method, url, reqBody)

	var resp map[string]any
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
	}
	return resp, w
}

// dataObject returns the envelope's data as an object
func dataObject(t *testing.T, resp map[string]any) map[string]any {
	t.Helper()
	data, ok := resp["data"].(map[string]any)
	require.True(t, ok, "data is not an object: %v", resp)
	return data
}

// dataList returns the envelope's data as a list of objects
func dataList(t *testing.T, resp map[string]any) []map[string]any {
	t.Helper()
	raw, ok := resp["data"].([]any)
	require.True(t, ok, "data is not a list: %v", resp)
	out := make([]map[string]any, len(raw))
	for i, v := range raw {
		out[i] = v.(map[string]any)
	}
	return out
}

// registerUser registers a user over HTTP and returns its uuid
func registerUser(t *testing.T, router *gin.Engine) string {
	t.Helper()
	resp, w := ExecuteRequestAndParse(t, router, "POST", "/users/register", nil)
	require.Equal(t, 201, w.Code)
	id, _ := dataObject(t, resp)["uuid"].(string)
	require.NotEmpty(t, id)
	return id
}

// lifecycleWindow keeps generated auctions open for exactly ten minutes
var lifecycleWindow = lifecycle.Range{Min: 10, Max: 10}
