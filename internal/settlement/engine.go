// Package settlement pays out finished rents
package settlement

import (
	"context"
	"fmt"
	"time"

	"ynvest-tube/internal/locker"
	"ynvest-tube/internal/models"
	"ynvest-tube/internal/repository"
	"ynvest-tube/utils"
)

// Engine settles rents whose rental window has ended
type Engine struct {
	repo      repository.AuctionDB
	locks     *locker.Keyed
	publisher models.EventPublisher
	now       func() time.Time
	retry     locker.RetryPolicy
}

// Option configures an Engine
type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithPublisher(p models.EventPublisher) Option {
	return func(e *Engine) { e.publisher = p }
}

func WithLocker(l *locker.Keyed) Option {
	return func(e *Engine) { e.locks = l }
}

func WithRetryPolicy(p locker.RetryPolicy) Option {
	return func(e *Engine) { e.retry = p }
}

// NewEngine creates a settlement engine over repo
func NewEngine(repo repository.AuctionDB, opts ...Option) *Engine {
	e := &Engine{
		repo:      repo,
		locks:     locker.New(),
		publisher: models.NopPublisher{},
		now:       func() time.Time { return time.Now().UTC() },
		retry:     locker.DefaultRetryPolicy,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result describes one settlement. Settled is false when the rent was already closed.
type Result struct {
	RentID     int64
	UserID     string
	Settled    bool
	ViewsDelta int64
	Profit     int64
}

// SettleRent credits the renter with the views gained during the rental and
// records the profit net of the winning bid. Settling twice is a no-op.
func (e *Engine) SettleRent(ctx context.Context, rentID int64) (Result, error) {
	var result Result
	err := e.locks.WithRetry(ctx, locker.RentKey(rentID), e.retry, func(ctx context.Context) error {
		var err error
		result, err = e.settle(ctx, rentID)
		return err
	})
	if err != nil {
		return Result{}, fmt.Errorf("settlement: failed to settle rent %d: %w", rentID, err)
	}

	if result.Settled {
		profit := result.Profit
		e.publisher.Publish(models.Event{
			Type:   models.EventRentSettled,
			RentID: rentID,
			UserID: result.UserID,
			Value:  &profit,
			Time:   e.now(),
		})
	}
	return result, nil
}

func (e *Engine) settle(ctx context.Context, rentID int64) (Result, error) {
	now := e.now()
	result := Result{RentID: rentID}
	err := e.repo.Atomic(ctx, func(tx repository.AuctionDB) error {
		rent, err := tx.GetRent(ctx, rentID)
		if err != nil {
			return err
		}
		result.UserID = rent.UserID
		if rent.State != models.RentActive {
			return nil
		}

		auction, err := tx.GetAuction(ctx, rent.AuctionID)
		if err != nil {
			return err
		}
		video, err := tx.GetVideo(ctx, auction.VideoID)
		if err != nil {
			return err
		}

		var paid int64
		if auction.LastBidValue != nil {
			paid = *auction.LastBidValue
		}
		delta := video.Views - auction.ViewsOnOpen
		profit := delta - paid

		if err := tx.AdjustCash(ctx, rent.UserID, delta); err != nil {
			return err
		}
		if err := tx.SetVideoState(ctx, video.ID, models.VideoAvailable); err != nil {
			return err
		}

		rent.State = models.RentInactive
		rent.Profit = &profit
		rent.SettledAt = &now
		if err := tx.UpdateRent(ctx, rent); err != nil {
			return err
		}

		result.Settled = true
		result.ViewsDelta = delta
		result.Profit = profit
		return nil
	})
	return result, err
}

// SettleSummary reports the outcome of one settlement sweep
type SettleSummary struct {
	Settled int
	Failed  int
}

// SettleRents settles every ACTIVE rent whose rental window has passed.
// Failures are logged per rent and retried on the next sweep.
func (e *Engine) SettleRents(ctx context.Context) (SettleSummary, error) {
	now := e.now()
	rents, err := e.repo.ListRents(ctx, repository.RentFilter{State: models.RentActive})
	if err != nil {
		return SettleSummary{}, fmt.Errorf("settlement: failed to list active rents: %w", err)
	}
	if len(rents) == 0 {
		return SettleSummary{}, nil
	}

	ids := make([]int64, 0, len(rents))
	for _, r := range rents {
		ids = append(ids, r.AuctionID)
	}
	auctions, err := e.repo.ListAuctions(ctx, repository.AuctionFilter{IDs: ids})
	if err != nil {
		return SettleSummary{}, fmt.Errorf("settlement: failed to load auctions of active rents: %w", err)
	}
	rentalEnds := make(map[int64]time.Time, len(auctions))
	for _, a := range auctions {
		rentalEnds[a.ID] = a.RentalExpiration
	}

	var summary SettleSummary
	for _, r := range rents {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}
		end, ok := rentalEnds[r.AuctionID]
		if !ok || end.After(now) {
			continue
		}

		res, err := e.SettleRent(ctx, r.ID)
		if err != nil {
			summary.Failed++
			utils.Warn("settlement: rent not settled", map[string]any{"rent_id": r.ID, "error": err.Error()})
			continue
		}
		if res.Settled {
			summary.Settled++
			utils.Info("settlement: rent settled", map[string]any{
				"rent_id":     r.ID,
				"user_id":     res.UserID,
				"views_delta": res.ViewsDelta,
				"profit":      res.Profit,
			})
		}
	}
	return summary, nil
}
