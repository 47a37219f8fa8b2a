package chain

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/reliefgrid/reliefgrid/internal/config"
	"github.com/reliefgrid/reliefgrid/internal/models"
	"github.com/reliefgrid/reliefgrid/internal/repository"
	"github.com/reliefgrid/reliefgrid/internal/worker"
)

// Poller periodically refreshes cached on-chain balances for every user with a
// wallet address. Refreshes fan through a worker pool so one slow address does
// not hold up the rest.
type Poller struct {
	cfg    *config.Config
	client *Client
	store  repository.Store
	pool   *worker.Pool
	wg     sync.WaitGroup
}

type refreshJob struct {
	userID  string
	address string
}

func NewPoller(cfg *config.Config, client *Client, store repository.Store) *Poller {
	return &Poller{
		cfg:    cfg,
		client: client,
		store:  store,
	}
}

func (p *Poller) Start(ctx context.Context) {
	processor := func(ctx context.Context, job worker.Job) error {
		j := job.(refreshJob)

		balances, err := p.client.TokenBalances(ctx, j.address)
		if err != nil {
			slog.Error("chain balance refresh failed", "user", j.userID, "error", err)
			return err
		}

		for _, b := range balances {
			cb := &models.ChainBalance{
				UserID:   j.userID,
				Symbol:   b.Symbol,
				Amount:   b.Amount,
				Decimals: b.Decimals,
			}
			if err := p.store.UpsertChainBalance(ctx, cb); err != nil {
				slog.Error("chain balance upsert failed", "user", j.userID, "symbol", b.Symbol, "error", err)
				return err
			}
		}

		slog.Debug("refreshed chain balances", "user", j.userID, "tokens", len(balances))
		return nil
	}

	p.pool = worker.NewPool(p.cfg.Worker.Count, p.cfg.Worker.BufferSize, processor)
	p.pool.Start(ctx)

	p.wg.Add(1)
	go p.run(ctx)
}

func (p *Poller) run(ctx context.Context) {
	defer p.wg.Done()
	slog.Info("starting chain balance poller", "interval", p.cfg.Chain.PollInterval)

	ticker := time.NewTicker(p.cfg.Chain.PollInterval)
	defer ticker.Stop()

	p.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("chain balance poller shutting down")
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	users, err := p.store.ListUsersWithWalletAddress(ctx)
	if err != nil {
		slog.Error("poll failed", "error", err)
		return
	}

	for _, u := range users {
		p.pool.Submit(refreshJob{userID: u.ID, address: u.WalletAddress})
	}

	slog.Debug("poll complete", "wallets", len(users))
}

func (p *Poller) Stop() {
	p.wg.Wait()
	p.pool.Stop()
}
