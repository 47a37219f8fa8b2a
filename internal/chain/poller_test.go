package chain

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/goleak"

	"github.com/reliefgrid/reliefgrid/internal/config"
	"github.com/reliefgrid/reliefgrid/internal/models"
	"github.com/reliefgrid/reliefgrid/internal/repository"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// pollerStore stubs the two Store methods the poller touches.
type pollerStore struct {
	repository.Store

	mu          sync.Mutex
	users       []models.User
	balances    map[string]models.ChainBalance
	upsertCount atomic.Int64
}

func newPollerStore(users ...models.User) *pollerStore {
	return &pollerStore{
		users:    users,
		balances: make(map[string]models.ChainBalance),
	}
}

func (s *pollerStore) ListUsersWithWalletAddress(ctx context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users, nil
}

func (s *pollerStore) UpsertChainBalance(ctx context.Context, b *models.ChainBalance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[b.UserID+"/"+b.Symbol] = *b
	s.upsertCount.Add(1)
	return nil
}

func pollerConfig(interval time.Duration) *config.Config {
	return &config.Config{
		Chain: config.ChainConfig{
			Enabled:      true,
			PollInterval: interval,
		},
		Worker: config.WorkerConfig{
			Count:      2,
			BufferSize: 10,
		},
	}
}

func TestPoller_RefreshesBalances(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"balances": []TokenBalance{
				{Symbol: "USDC", Amount: decimal.NewFromInt(7), Decimals: 6},
			},
		})
	}))
	defer srv.Close()

	store := newPollerStore(
		models.User{ID: "u1", WalletAddress: "0xaaa"},
		models.User{ID: "u2", WalletAddress: "0xbbb"},
	)
	p := NewPoller(pollerConfig(time.Hour), NewClient(srv.URL), store)

	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)

	deadline := time.After(2 * time.Second)
	for store.upsertCount.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("expected 2 upserts, got %d", store.upsertCount.Load())
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	p.Stop()

	store.mu.Lock()
	defer store.mu.Unlock()
	for _, key := range []string{"u1/USDC", "u2/USDC"} {
		b, ok := store.balances[key]
		if !ok {
			t.Errorf("missing cached balance %s", key)
			continue
		}
		if !b.Amount.Equal(decimal.NewFromInt(7)) {
			t.Errorf("balance %s: expected 7, got %s", key, b.Amount)
		}
	}
}

func TestPoller_StartStop(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"balances": []TokenBalance{}})
	}))
	defer srv.Close()

	store := newPollerStore()
	p := NewPoller(pollerConfig(time.Hour), NewClient(srv.URL), store)

	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)

	time.Sleep(50 * time.Millisecond)

	cancel()
	p.Stop()
}
