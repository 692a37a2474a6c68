package bidding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"

	"ynvest-tube/internal/biddingerrors"
	"ynvest-tube/internal/locker"
	"ynvest-tube/internal/models"
	"ynvest-tube/internal/repository"
	"ynvest-tube/utils"
)

// DefaultInitialCash is the balance granted to newly registered users
const DefaultInitialCash int64 = 1000

// BiddingService defines the business logic for auction bidding
type BiddingService struct {
	repo        repository.AuctionDB
	locks       *locker.Keyed
	publisher   models.EventPublisher
	now         func() time.Time
	newID       func() string
	initialCash int64
	retry       locker.RetryPolicy
}

// Option configures a BiddingService
type Option func(*BiddingService)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *BiddingService) { s.now = now }
}

// WithPublisher sets where accepted bids are announced
func WithPublisher(p models.EventPublisher) Option {
	return func(s *BiddingService) { s.publisher = p }
}

// WithLocker shares a keyed locker with the other engines touching auctions
func WithLocker(l *locker.Keyed) Option {
	return func(s *BiddingService) { s.locks = l }
}

// WithInitialCash sets the balance of newly registered users
func WithInitialCash(cash int64) Option {
	return func(s *BiddingService) { s.initialCash = cash }
}

// WithRetryPolicy bounds how often a bid hitting a persistence conflict is replayed
func WithRetryPolicy(p locker.RetryPolicy) Option {
	return func(s *BiddingService) { s.retry = p }
}

// WithIDGenerator overrides user id generation
func WithIDGenerator(gen func() string) Option {
	return func(s *BiddingService) { s.newID = gen }
}

// NewBiddingService creates a new BiddingService instance
func NewBiddingService(repo repository.AuctionDB, opts ...Option) *BiddingService {
	s := &BiddingService{
		repo:        repo,
		locks:       locker.New(),
		publisher:   models.NopPublisher{},
		now:         func() time.Time { return time.Now().UTC() },
		newID:       utils.GenerateID,
		initialCash: DefaultInitialCash,
		retry:       locker.DefaultRetryPolicy,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PlaceBid validates and records a user's bid on an auction.
// The bidder is debited immediately and the previous top bidder is refunded.
func (s *BiddingService) PlaceBid(ctx context.Context, auctionID int64, userID string, value int64) (models.Auction, error) {
	if userID == "" {
		return models.Auction{}, fmt.Errorf("service: %w - missing userID", biddingerrors.ErrInvalidBid)
	}
	if value <= 0 {
		return models.Auction{}, fmt.Errorf("service: %w - non-positive bid value", biddingerrors.ErrInvalidBid)
	}

	unlock, err := s.locks.Lock(ctx, locker.AuctionKey(auctionID))
	if err != nil {
		return models.Auction{}, fmt.Errorf("service: failed to lock auction %d: %w", auctionID, err)
	}
	defer unlock()

	// the auction lock is held across attempts; only store conflicts are replayed
	var (
		updated models.Auction
		now     time.Time
	)
	err = retry.Do(ctx, s.retry.Backoff(), func(ctx context.Context) error {
		now = s.now()
		var err error
		updated, err = s.placeBid(ctx, auctionID, userID, value, now)
		if IsRetryable(err) {
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		return models.Auction{}, fmt.Errorf("service: failed to place bid on auction %d by user %s: %w", auctionID, userID, err)
	}

	s.publisher.Publish(models.Event{
		Type:      models.EventBidAccepted,
		AuctionID: auctionID,
		Value:     &value,
		Time:      now,
	})
	return updated, nil
}

// placeBid applies one bid inside a single store transaction
func (s *BiddingService) placeBid(ctx context.Context, auctionID int64, userID string, value int64, now time.Time) (models.Auction, error) {
	var updated models.Auction
	err := s.repo.Atomic(ctx, func(tx repository.AuctionDB) error {
		auction, err := tx.GetAuction(ctx, auctionID)
		if err != nil {
			return err
		}
		if !auction.AcceptsBids(now) {
			return fmt.Errorf("%w - auction %d closed at %s", biddingerrors.ErrAuctionExpired, auctionID, auction.AuctionExpiration.Format(time.RFC3339))
		}

		user, err := tx.GetUser(ctx, userID)
		if err != nil {
			return err
		}
		if !auction.IsOutbidBy(value) {
			return fmt.Errorf("%w - starting price %d, last bid %s", biddingerrors.ErrBidTooLow, auction.StartingPrice, formatBid(auction.LastBidValue))
		}
		if user.Cash < value {
			return fmt.Errorf("%w - balance %d, bid %d", biddingerrors.ErrInsufficientFunds, user.Cash, value)
		}

		bid := &models.Bid{AuctionID: auctionID, UserID: userID, Value: value, CreatedAt: now}
		if err := tx.CreateBid(ctx, bid); err != nil {
			return err
		}
		if err := tx.DebitCash(ctx, userID, value); err != nil {
			return err
		}
		if auction.HasBid() {
			if err := tx.AdjustCash(ctx, *auction.LastBidderID, *auction.LastBidValue); err != nil {
				return err
			}
		}

		auction.LastBidValue = &value
		auction.LastBidderID = &userID
		if err := tx.UpdateAuction(ctx, auction); err != nil {
			return err
		}
		updated = auction
		return nil
	})
	return updated, err
}

func formatBid(v *int64) string {
	if v == nil {
		return "none"
	}
	return fmt.Sprint(*v)
}

// RegisterUser creates a user with a fresh id and the initial balance
func (s *BiddingService) RegisterUser(ctx context.Context) (models.User, error) {
	user := models.User{
		ID:        s.newID(),
		Cash:      s.initialCash,
		CreatedAt: s.now(),
	}
	if err := s.repo.CreateUser(ctx, &user); err != nil {
		return models.User{}, fmt.Errorf("service: failed to register user: %w", err)
	}
	return user, nil
}

// GetUser returns a single user
func (s *BiddingService) GetUser(ctx context.Context, userID string) (models.User, error) {
	if userID == "" {
		return models.User{}, fmt.Errorf("service: %w - empty user ID", biddingerrors.ErrUnknownUser)
	}
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return models.User{}, fmt.Errorf("service: failed to get user %s: %w", userID, err)
	}
	return user, nil
}

// ListUsers returns every registered user
func (s *BiddingService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list users: %w", err)
	}
	return users, nil
}

// UserDetails groups a user with everything they took part in
type UserDetails struct {
	User     models.User
	Bids     []models.Bid
	Rents    []models.Rent
	Auctions []models.Auction
}

// GetUserDetails returns a user with their bids, rents and the auctions they bid on
func (s *BiddingService) GetUserDetails(ctx context.Context, userID string) (UserDetails, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return UserDetails{}, err
	}

	bids, err := s.repo.ListBids(ctx, repository.BidFilter{UserID: userID})
	if err != nil {
		return UserDetails{}, fmt.Errorf("service: failed to get bids of user %s: %w", userID, err)
	}
	rents, err := s.repo.ListRents(ctx, repository.RentFilter{UserID: userID})
	if err != nil {
		return UserDetails{}, fmt.Errorf("service: failed to get rents of user %s: %w", userID, err)
	}

	details := UserDetails{User: user, Bids: bids, Rents: rents, Auctions: []models.Auction{}}
	if len(bids) == 0 {
		return details, nil
	}

	seen := make(map[int64]bool, len(bids))
	ids := make([]int64, 0, len(bids))
	for _, b := range bids {
		if !seen[b.AuctionID] {
			seen[b.AuctionID] = true
			ids = append(ids, b.AuctionID)
		}
	}
	auctions, err := s.repo.ListAuctions(ctx, repository.AuctionFilter{IDs: ids})
	if err != nil {
		return UserDetails{}, fmt.Errorf("service: failed to get auctions of user %s: %w", userID, err)
	}
	details.Auctions = auctions
	return details, nil
}

// Contribution describes how a user takes part in an auction
type Contribution int

const (
	ContributionNone    Contribution = 0
	ContributionOutbid  Contribution = 1
	ContributionWinning Contribution = 2
)

// AuctionView is an auction annotated with the caller's contribution.
// Contribution is nil when no user was given.
type AuctionView struct {
	Auction      models.Auction
	Video        models.Video
	Contribution *Contribution
}

// GetAuction returns a single auction, annotated for userID when it is set
func (s *BiddingService) GetAuction(ctx context.Context, auctionID int64, userID string) (AuctionView, error) {
	if userID != "" {
		if _, err := s.GetUser(ctx, userID); err != nil {
			return AuctionView{}, err
		}
	}
	auction, err := s.repo.GetAuction(ctx, auctionID)
	if err != nil {
		return AuctionView{}, fmt.Errorf("service: failed to get auction %d: %w", auctionID, err)
	}
	views, err := s.annotate(ctx, []models.Auction{auction}, userID)
	if err != nil {
		return AuctionView{}, err
	}
	return views[0], nil
}

// ListActiveAuctions returns every ACTIVE auction, annotated for userID when it is set
func (s *BiddingService) ListActiveAuctions(ctx context.Context, userID string) ([]AuctionView, error) {
	if userID != "" {
		if _, err := s.GetUser(ctx, userID); err != nil {
			return nil, err
		}
	}
	auctions, err := s.repo.ListAuctions(ctx, repository.AuctionFilter{State: models.AuctionActive})
	if err != nil {
		return nil, fmt.Errorf("service: failed to list active auctions: %w", err)
	}
	return s.annotate(ctx, auctions, userID)
}

func (s *BiddingService) annotate(ctx context.Context, auctions []models.Auction, userID string) ([]AuctionView, error) {
	var participated map[int64]bool
	if userID != "" {
		bids, err := s.repo.ListBids(ctx, repository.BidFilter{UserID: userID})
		if err != nil {
			return nil, fmt.Errorf("service: failed to get bids of user %s: %w", userID, err)
		}
		participated = make(map[int64]bool, len(bids))
		for _, b := range bids {
			participated[b.AuctionID] = true
		}
	}

	views := make([]AuctionView, 0, len(auctions))
	for _, a := range auctions {
		video, err := s.repo.GetVideo(ctx, a.VideoID)
		if err != nil {
			return nil, fmt.Errorf("service: failed to get video of auction %d: %w", a.ID, err)
		}
		view := AuctionView{Auction: a, Video: video}
		if userID != "" {
			c := ContributionNone
			switch {
			case a.IsWinning(userID):
				c = ContributionWinning
			case participated[a.ID]:
				c = ContributionOutbid
			}
			view.Contribution = &c
		}
		views = append(views, view)
	}
	return views, nil
}

// GetBidsForAuction returns all bids placed on an auction
func (s *BiddingService) GetBidsForAuction(ctx context.Context, auctionID int64) ([]models.Bid, error) {
	if _, err := s.repo.GetAuction(ctx, auctionID); err != nil {
		return nil, fmt.Errorf("service: failed to get bids for auction %d: %w", auctionID, err)
	}
	bids, err := s.repo.ListBids(ctx, repository.BidFilter{AuctionID: auctionID})
	if err != nil {
		return nil, fmt.Errorf("service: failed to get bids for auction %d: %w", auctionID, err)
	}
	return bids, nil
}

// ListBids returns every bid in the ledger
func (s *BiddingService) ListBids(ctx context.Context) ([]models.Bid, error) {
	bids, err := s.repo.ListBids(ctx, repository.BidFilter{})
	if err != nil {
		return nil, fmt.Errorf("service: failed to list bids: %w", err)
	}
	return bids, nil
}

// ListVideos returns every known video
func (s *BiddingService) ListVideos(ctx context.Context) ([]models.Video, error) {
	videos, err := s.repo.ListVideos(ctx, repository.VideoFilter{})
	if err != nil {
		return nil, fmt.Errorf("service: failed to list videos: %w", err)
	}
	return videos, nil
}

// AddVideo registers a new AVAILABLE video identified by its youtube link
func (s *BiddingService) AddVideo(ctx context.Context, link, title, description string) (models.Video, error) {
	if link == "" {
		return models.Video{}, fmt.Errorf("service: %w - empty link", biddingerrors.ErrInvalidVideo)
	}
	video := models.Video{
		Title:       title,
		Link:        link,
		Description: description,
		State:       models.VideoAvailable,
	}
	if err := s.repo.CreateVideo(ctx, &video); err != nil {
		return models.Video{}, fmt.Errorf("service: failed to add video %s: %w", link, err)
	}
	return video, nil
}

// ListRents returns rents, optionally only those of userID
func (s *BiddingService) ListRents(ctx context.Context, userID string) ([]models.Rent, error) {
	if userID != "" {
		if _, err := s.GetUser(ctx, userID); err != nil {
			return nil, err
		}
	}
	rents, err := s.repo.ListRents(ctx, repository.RentFilter{UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("service: failed to list rents: %w", err)
	}
	return rents, nil
}

// IsRetryable reports whether a failed bid may succeed when resubmitted unchanged
func IsRetryable(err error) bool {
	return errors.Is(err, biddingerrors.ErrPersistenceConflict)
}
