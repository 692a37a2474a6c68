// Package lifecycle closes expired auctions and opens new ones
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"ynvest-tube/internal/biddingerrors"
	"ynvest-tube/internal/locker"
	"ynvest-tube/internal/models"
	"ynvest-tube/internal/repository"
	"ynvest-tube/utils"
)

// RandomSource picks integers in [0, n). *rand.Rand from math/rand/v2 satisfies it.
type RandomSource interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.Intn(n) }

// Range is an inclusive integer interval
type Range struct {
	Min int
	Max int
}

// Pick returns a uniformly distributed value of r
func (r Range) Pick(src RandomSource) int {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + src.IntN(r.Max-r.Min+1)
}

// Settings holds the randomized auction parameters
type Settings struct {
	StartingPrice Range
	RentalDays    Range
	RentalHours   Range
	Retry         locker.RetryPolicy
	// RequireStatistics skips videos whose statistics were never fetched, so the
	// view snapshot taken at open is a real count. Set it when a refresher runs.
	RequireStatistics bool
}

// DefaultSettings matches the marketplace defaults
var DefaultSettings = Settings{
	StartingPrice: Range{Min: 200, Max: 500},
	RentalDays:    Range{Min: 0, Max: 7},
	RentalHours:   Range{Min: 1, Max: 24},
	Retry:         locker.DefaultRetryPolicy,
}

// Controller drives auctions through their lifecycle
type Controller struct {
	repo      repository.AuctionDB
	locks     *locker.Keyed
	publisher models.EventPublisher
	now       func() time.Time
	rng       RandomSource
	settings  Settings
}

// Option configures a Controller
type Option func(*Controller)

func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

func WithRandom(src RandomSource) Option {
	return func(c *Controller) { c.rng = src }
}

func WithPublisher(p models.EventPublisher) Option {
	return func(c *Controller) { c.publisher = p }
}

func WithLocker(l *locker.Keyed) Option {
	return func(c *Controller) { c.locks = l }
}

func WithSettings(s Settings) Option {
	return func(c *Controller) { c.settings = s }
}

// NewController creates a lifecycle controller over repo
func NewController(repo repository.AuctionDB, opts ...Option) *Controller {
	c := &Controller{
		repo:      repo,
		locks:     locker.New(),
		publisher: models.NopPublisher{},
		now:       func() time.Time { return time.Now().UTC() },
		rng:       globalRand{},
		settings:  DefaultSettings,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CloseSummary reports the outcome of one close sweep
type CloseSummary struct {
	Closed int
	Rented int
	Failed int
}

// CloseExpiredAuctions closes every ACTIVE auction whose bidding window has ended.
// Auctions with a bidder become rents; the others release their video.
// A failure on one auction is logged and leaves it for the next sweep.
func (c *Controller) CloseExpiredAuctions(ctx context.Context) (CloseSummary, error) {
	now := c.now()
	expired, err := c.repo.ListAuctions(ctx, repository.AuctionFilter{
		State:     models.AuctionActive,
		ExpiredBy: &now,
	})
	if err != nil {
		return CloseSummary{}, fmt.Errorf("lifecycle: failed to list expired auctions: %w", err)
	}

	var summary CloseSummary
	for _, a := range expired {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}

		var (
			closed bool
			rent   *models.Rent
		)
		err := c.locks.WithRetry(ctx, locker.AuctionKey(a.ID), c.settings.Retry, func(ctx context.Context) error {
			var err error
			closed, rent, err = c.closeAuction(ctx, a.ID, now)
			return err
		})
		if err != nil {
			summary.Failed++
			utils.Warn("lifecycle: failed to close auction", map[string]any{"auction_id": a.ID, "error": err.Error()})
			continue
		}
		if !closed {
			continue
		}

		summary.Closed++
		event := models.Event{Type: models.EventAuctionClosed, AuctionID: a.ID, Time: now}
		if rent != nil {
			summary.Rented++
			event.RentID = rent.ID
			event.UserID = rent.UserID
		}
		c.publisher.Publish(event)
	}

	if summary.Closed > 0 || summary.Failed > 0 {
		utils.Info("lifecycle: close sweep finished", map[string]any{
			"closed": summary.Closed,
			"rented": summary.Rented,
			"failed": summary.Failed,
		})
	}
	return summary, nil
}

func (c *Controller) closeAuction(ctx context.Context, auctionID int64, now time.Time) (bool, *models.Rent, error) {
	var (
		closed bool
		rent   *models.Rent
	)
	err := c.repo.Atomic(ctx, func(tx repository.AuctionDB) error {
		auction, err := tx.GetAuction(ctx, auctionID)
		if err != nil {
			return err
		}
		// closed concurrently or bidding reopened by a clock skew
		if auction.State != models.AuctionActive || auction.AuctionExpiration.After(now) {
			return nil
		}

		if auction.HasBid() {
			if err := tx.SetVideoState(ctx, auction.VideoID, models.VideoRented); err != nil {
				return err
			}
			r := &models.Rent{
				AuctionID: auction.ID,
				UserID:    *auction.LastBidderID,
				State:     models.RentActive,
				CreatedAt: now,
			}
			if err := tx.CreateRent(ctx, r); err != nil {
				return err
			}
			rent = r
		} else {
			if err := tx.SetVideoState(ctx, auction.VideoID, models.VideoAvailable); err != nil {
				return err
			}
		}

		auction.State = models.AuctionInactive
		if err := tx.UpdateAuction(ctx, auction); err != nil {
			return err
		}
		closed = true
		return nil
	})
	if err != nil {
		return false, nil, fmt.Errorf("lifecycle: close auction %d: %w", auctionID, err)
	}
	return closed, rent, nil
}

// GenerateAuction opens one auction on a random AVAILABLE video unless
// maxAuctions auctions are already open. It returns nil when the cap is reached.
func (c *Controller) GenerateAuction(ctx context.Context, maxAuctions int, windowMinutes Range) (*models.Auction, error) {
	var created *models.Auction
	err := c.locks.WithRetry(ctx, locker.GenerateKey, c.settings.Retry, func(ctx context.Context) error {
		var err error
		created, err = c.generate(ctx, maxAuctions, windowMinutes)
		return err
	})
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, nil
	}

	c.publisher.Publish(models.Event{
		Type:      models.EventAuctionOpened,
		AuctionID: created.ID,
		Value:     &created.StartingPrice,
		Time:      created.CreatedAt,
	})
	utils.Info("lifecycle: auction opened", map[string]any{
		"auction_id":     created.ID,
		"video_id":       created.VideoID,
		"starting_price": created.StartingPrice,
		"expires_at":     created.AuctionExpiration,
	})
	return created, nil
}

func (c *Controller) generate(ctx context.Context, maxAuctions int, windowMinutes Range) (*models.Auction, error) {
	now := c.now()
	var created *models.Auction
	err := c.repo.Atomic(ctx, func(tx repository.AuctionDB) error {
		open, err := tx.CountOpenAuctions(ctx, now)
		if err != nil {
			return err
		}
		if open >= int64(maxAuctions) {
			return nil
		}

		videos, err := tx.ListVideos(ctx, repository.VideoFilter{
			State:          models.VideoAvailable,
			WithStatistics: c.settings.RequireStatistics,
		})
		if err != nil {
			return err
		}
		if len(videos) == 0 {
			return biddingerrors.ErrNoAvailableVideo
		}
		video := videos[c.rng.IntN(len(videos))]

		if err := tx.SetVideoState(ctx, video.ID, models.VideoAuctioned); err != nil {
			return err
		}

		rental := time.Duration(c.settings.RentalDays.Pick(c.rng))*24*time.Hour +
			time.Duration(c.settings.RentalHours.Pick(c.rng))*time.Hour
		auction := &models.Auction{
			State:             models.AuctionActive,
			StartingPrice:     int64(c.settings.StartingPrice.Pick(c.rng)),
			VideoID:           video.ID,
			RentalDuration:    rental,
			AuctionExpiration: now.Add(time.Duration(windowMinutes.Pick(c.rng)) * time.Minute),
			RentalExpiration:  now.Add(rental),
			ViewsOnOpen:       video.Views,
			CreatedAt:         now,
		}
		if err := tx.CreateAuction(ctx, auction); err != nil {
			return err
		}
		created = auction
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("lifecycle: generate auction: %w", err)
	}
	return created, nil
}

// IsNoVideo reports whether generation was skipped for lack of an AVAILABLE video
func IsNoVideo(err error) bool {
	return errors.Is(err, biddingerrors.ErrNoAvailableVideo)
}
