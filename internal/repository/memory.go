package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"ynvest-tube/internal/biddingerrors"
	"ynvest-tube/internal/models"
)

// MemoryRepo is a concurrency-safe in-memory implementation of AuctionDB
type MemoryRepo struct {
	mu    sync.RWMutex
	store *memStore
}

// NewMemoryRepo creates a new in-memory repository instance
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: newMemStore()}
}

// Atomic holds the write lock for the duration of fn and rolls every write
// back if fn returns an error or panics.
func (r *MemoryRepo) Atomic(ctx context.Context, fn func(tx AuctionDB) error) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx := memView{s: r.store, log: &undoLog{}}
	defer func() {
		if p := recover(); p != nil {
			tx.log.rollback()
			panic(p)
		}
		if err != nil {
			tx.log.rollback()
		}
	}()

	return fn(tx)
}

func (r *MemoryRepo) view() memView { return memView{s: r.store} }

// CreateUser stores a new user
func (r *MemoryRepo) CreateUser(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view().CreateUser(ctx, user)
}

// GetUser returns a user by id
func (r *MemoryRepo) GetUser(ctx context.Context, userID string) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.view().GetUser(ctx, userID)
}

// ListUsers returns all users ordered by creation date
func (r *MemoryRepo) ListUsers(ctx context.Context) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.view().ListUsers(ctx)
}

// AdjustCash adds delta to a user's balance
func (r *MemoryRepo) AdjustCash(ctx context.Context, userID string, delta int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view().AdjustCash(ctx, userID, delta)
}

// DebitCash subtracts amount from a user's balance if it is covered
func (r *MemoryRepo) DebitCash(ctx context.Context, userID string, amount int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view().DebitCash(ctx, userID, amount)
}

// CreateVideo stores a new video
func (r *MemoryRepo) CreateVideo(ctx context.Context, video *models.Video) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view().CreateVideo(ctx, video)
}

// GetVideo returns a video by id
func (r *MemoryRepo) GetVideo(ctx context.Context, videoID int64) (models.Video, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.view().GetVideo(ctx, videoID)
}

// ListVideos returns videos matching filter
func (r *MemoryRepo) ListVideos(ctx context.Context, filter VideoFilter) ([]models.Video, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.view().ListVideos(ctx, filter)
}

// SetVideoState changes a video's availability state
func (r *MemoryRepo) SetVideoState(ctx context.Context, videoID int64, state models.VideoState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view().SetVideoState(ctx, videoID, state)
}

// UpdateVideoStatistics replaces a video's statistics snapshot
func (r *MemoryRepo) UpdateVideoStatistics(ctx context.Context, videoID int64, stats models.VideoStatistics, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view().UpdateVideoStatistics(ctx, videoID, stats, at)
}

// CreateAuction stores a new auction
func (r *MemoryRepo) CreateAuction(ctx context.Context, auction *models.Auction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view().CreateAuction(ctx, auction)
}

// GetAuction returns an auction by id
func (r *MemoryRepo) GetAuction(ctx context.Context, auctionID int64) (models.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.view().GetAuction(ctx, auctionID)
}

// ListAuctions returns auctions matching filter
func (r *MemoryRepo) ListAuctions(ctx context.Context, filter AuctionFilter) ([]models.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.view().ListAuctions(ctx, filter)
}

// CountOpenAuctions counts active auctions whose rental window is still ahead
func (r *MemoryRepo) CountOpenAuctions(ctx context.Context, now time.Time) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.view().CountOpenAuctions(ctx, now)
}

// UpdateAuction replaces a stored auction
func (r *MemoryRepo) UpdateAuction(ctx context.Context, auction models.Auction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view().UpdateAuction(ctx, auction)
}

// CreateBid appends a bid to the ledger
func (r *MemoryRepo) CreateBid(ctx context.Context, bid *models.Bid) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view().CreateBid(ctx, bid)
}

// ListBids returns bids matching filter in insertion order
func (r *MemoryRepo) ListBids(ctx context.Context, filter BidFilter) ([]models.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.view().ListBids(ctx, filter)
}

// CreateRent stores a new rent
func (r *MemoryRepo) CreateRent(ctx context.Context, rent *models.Rent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view().CreateRent(ctx, rent)
}

// GetRent returns a rent by id
func (r *MemoryRepo) GetRent(ctx context.Context, rentID int64) (models.Rent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.view().GetRent(ctx, rentID)
}

// ListRents returns rents matching filter
func (r *MemoryRepo) ListRents(ctx context.Context, filter RentFilter) ([]models.Rent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.view().ListRents(ctx, filter)
}

// UpdateRent replaces a stored rent
func (r *MemoryRepo) UpdateRent(ctx context.Context, rent models.Rent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view().UpdateRent(ctx, rent)
}

// undoLog records how to revert each write made inside a transaction
type undoLog struct {
	steps []func()
}

func (l *undoLog) push(step func()) {
	if l == nil {
		return
	}
	l.steps = append(l.steps, step)
}

func (l *undoLog) rollback() {
	for i := len(l.steps) - 1; i >= 0; i-- {
		l.steps[i]()
	}
	l.steps = nil
}

func remember[K comparable, V any](log *undoLog, m map[K]V, key K) {
	if log == nil {
		return
	}
	old, existed := m[key]
	log.push(func() {
		if existed {
			m[key] = old
		} else {
			delete(m, key)
		}
	})
}

type memStore struct {
	users    map[string]models.User
	videos   map[int64]models.Video
	links    map[string]int64
	auctions map[int64]models.Auction
	bids     []models.Bid
	rents    map[int64]models.Rent

	nextVideoID   int64
	nextAuctionID int64
	nextBidID     int64
	nextRentID    int64
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[string]models.User),
		videos:   make(map[int64]models.Video),
		links:    make(map[string]int64),
		auctions: make(map[int64]models.Auction),
		rents:    make(map[int64]models.Rent),
	}
}

// memView implements the data operations on a memStore. Locking is the
// caller's job. Inside Atomic, writes are recorded in log so they can be undone.
type memView struct {
	s   *memStore
	log *undoLog
}

// Atomic on a view joins the enclosing transaction
func (v memView) Atomic(_ context.Context, fn func(tx AuctionDB) error) error {
	return fn(v)
}

func (v memView) bumpSeq(seq *int64) int64 {
	old := *seq
	v.log.push(func() { *seq = old })
	*seq = old + 1
	return *seq
}

func (v memView) CreateUser(_ context.Context, user *models.User) error {
	if _, ok := v.s.users[user.ID]; ok {
		return fmt.Errorf("create user %s: already exists", user.ID)
	}
	remember(v.log, v.s.users, user.ID)
	v.s.users[user.ID] = *user
	return nil
}

func (v memView) GetUser(_ context.Context, userID string) (models.User, error) {
	u, ok := v.s.users[userID]
	if !ok {
		return models.User{}, fmt.Errorf("get user %s: %w", userID, biddingerrors.ErrUnknownUser)
	}
	return u, nil
}

func (v memView) ListUsers(_ context.Context) ([]models.User, error) {
	users := make([]models.User, 0, len(v.s.users))
	for _, u := range v.s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].ID < users[j].ID
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}

func (v memView) AdjustCash(_ context.Context, userID string, delta int64) error {
	u, ok := v.s.users[userID]
	if !ok {
		return fmt.Errorf("adjust cash of user %s: %w", userID, biddingerrors.ErrUnknownUser)
	}
	remember(v.log, v.s.users, userID)
	u.Cash += delta
	v.s.users[userID] = u
	return nil
}

func (v memView) DebitCash(_ context.Context, userID string, amount int64) error {
	u, ok := v.s.users[userID]
	if !ok {
		return fmt.Errorf("debit user %s: %w", userID, biddingerrors.ErrUnknownUser)
	}
	if u.Cash < amount {
		return fmt.Errorf("debit user %s by %d: %w", userID, amount, biddingerrors.ErrInsufficientFunds)
	}
	remember(v.log, v.s.users, userID)
	u.Cash -= amount
	v.s.users[userID] = u
	return nil
}

func (v memView) CreateVideo(_ context.Context, video *models.Video) error {
	if _, ok := v.s.links[video.Link]; ok {
		return fmt.Errorf("create video %s: %w", video.Link, biddingerrors.ErrVideoAlreadyExists)
	}
	video.ID = v.bumpSeq(&v.s.nextVideoID)
	remember(v.log, v.s.videos, video.ID)
	remember(v.log, v.s.links, video.Link)
	v.s.videos[video.ID] = *video
	v.s.links[video.Link] = video.ID
	return nil
}

func (v memView) GetVideo(_ context.Context, videoID int64) (models.Video, error) {
	video, ok := v.s.videos[videoID]
	if !ok {
		return models.Video{}, fmt.Errorf("get video %d: %w", videoID, biddingerrors.ErrUnknownVideo)
	}
	return video, nil
}

func (v memView) ListVideos(_ context.Context, filter VideoFilter) ([]models.Video, error) {
	videos := make([]models.Video, 0, len(v.s.videos))
	for _, video := range v.s.videos {
		if filter.State != "" && video.State != filter.State {
			continue
		}
		if filter.WithStatistics && video.StatisticsUpdatedAt == nil {
			continue
		}
		videos = append(videos, video)
	}
	sort.Slice(videos, func(i, j int) bool { return videos[i].ID < videos[j].ID })
	return videos, nil
}

func (v memView) SetVideoState(_ context.Context, videoID int64, state models.VideoState) error {
	video, ok := v.s.videos[videoID]
	if !ok {
		return fmt.Errorf("set state of video %d: %w", videoID, biddingerrors.ErrUnknownVideo)
	}
	remember(v.log, v.s.videos, videoID)
	video.State = state
	v.s.videos[videoID] = video
	return nil
}

func (v memView) UpdateVideoStatistics(_ context.Context, videoID int64, stats models.VideoStatistics, at time.Time) error {
	video, ok := v.s.videos[videoID]
	if !ok {
		return fmt.Errorf("update statistics of video %d: %w", videoID, biddingerrors.ErrUnknownVideo)
	}
	remember(v.log, v.s.videos, videoID)
	video.Views = stats.Views
	video.Likes = stats.Likes
	video.Dislikes = stats.Dislikes
	video.StatisticsUpdatedAt = &at
	v.s.videos[videoID] = video
	return nil
}

func (v memView) CreateAuction(_ context.Context, auction *models.Auction) error {
	if _, ok := v.s.videos[auction.VideoID]; !ok {
		return fmt.Errorf("create auction for video %d: %w", auction.VideoID, biddingerrors.ErrUnknownVideo)
	}
	auction.ID = v.bumpSeq(&v.s.nextAuctionID)
	remember(v.log, v.s.auctions, auction.ID)
	v.s.auctions[auction.ID] = cloneAuction(*auction)
	return nil
}

func (v memView) GetAuction(_ context.Context, auctionID int64) (models.Auction, error) {
	a, ok := v.s.auctions[auctionID]
	if !ok {
		return models.Auction{}, fmt.Errorf("get auction %d: %w", auctionID, biddingerrors.ErrUnknownAuction)
	}
	return cloneAuction(a), nil
}

func (v memView) ListAuctions(_ context.Context, filter AuctionFilter) ([]models.Auction, error) {
	var wanted map[int64]bool
	if len(filter.IDs) > 0 {
		wanted = make(map[int64]bool, len(filter.IDs))
		for _, id := range filter.IDs {
			wanted[id] = true
		}
	}

	auctions := make([]models.Auction, 0)
	for _, a := range v.s.auctions {
		if filter.State != "" && a.State != filter.State {
			continue
		}
		if filter.ExpiredBy != nil && a.AuctionExpiration.After(*filter.ExpiredBy) {
			continue
		}
		if wanted != nil && !wanted[a.ID] {
			continue
		}
		auctions = append(auctions, cloneAuction(a))
	}
	sort.Slice(auctions, func(i, j int) bool { return auctions[i].ID < auctions[j].ID })
	return auctions, nil
}

func (v memView) CountOpenAuctions(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for _, a := range v.s.auctions {
		if a.State == models.AuctionActive && a.RentalExpiration.After(now) {
			n++
		}
	}
	return n, nil
}

func (v memView) UpdateAuction(_ context.Context, auction models.Auction) error {
	if _, ok := v.s.auctions[auction.ID]; !ok {
		return fmt.Errorf("update auction %d: %w", auction.ID, biddingerrors.ErrUnknownAuction)
	}
	remember(v.log, v.s.auctions, auction.ID)
	v.s.auctions[auction.ID] = cloneAuction(auction)
	return nil
}

func (v memView) CreateBid(_ context.Context, bid *models.Bid) error {
	if _, ok := v.s.auctions[bid.AuctionID]; !ok {
		return fmt.Errorf("record bid for auction %d: %w", bid.AuctionID, biddingerrors.ErrUnknownAuction)
	}
	bid.ID = v.bumpSeq(&v.s.nextBidID)
	n := len(v.s.bids)
	v.log.push(func() { v.s.bids = v.s.bids[:n] })
	v.s.bids = append(v.s.bids, *bid)
	return nil
}

func (v memView) ListBids(_ context.Context, filter BidFilter) ([]models.Bid, error) {
	bids := make([]models.Bid, 0)
	for _, b := range v.s.bids {
		if filter.AuctionID != 0 && b.AuctionID != filter.AuctionID {
			continue
		}
		if filter.UserID != "" && b.UserID != filter.UserID {
			continue
		}
		bids = append(bids, b)
	}
	return bids, nil
}

func (v memView) CreateRent(_ context.Context, rent *models.Rent) error {
	for _, existing := range v.s.rents {
		if existing.AuctionID == rent.AuctionID {
			return fmt.Errorf("create rent for auction %d: already rented", rent.AuctionID)
		}
	}
	rent.ID = v.bumpSeq(&v.s.nextRentID)
	remember(v.log, v.s.rents, rent.ID)
	v.s.rents[rent.ID] = cloneRent(*rent)
	return nil
}

func (v memView) GetRent(_ context.Context, rentID int64) (models.Rent, error) {
	r, ok := v.s.rents[rentID]
	if !ok {
		return models.Rent{}, fmt.Errorf("get rent %d: %w", rentID, biddingerrors.ErrUnknownRent)
	}
	return cloneRent(r), nil
}

func (v memView) ListRents(_ context.Context, filter RentFilter) ([]models.Rent, error) {
	rents := make([]models.Rent, 0)
	for _, r := range v.s.rents {
		if filter.State != "" && r.State != filter.State {
			continue
		}
		if filter.UserID != "" && r.UserID != filter.UserID {
			continue
		}
		rents = append(rents, cloneRent(r))
	}
	sort.Slice(rents, func(i, j int) bool { return rents[i].ID < rents[j].ID })
	return rents, nil
}

func (v memView) UpdateRent(_ context.Context, rent models.Rent) error {
	if _, ok := v.s.rents[rent.ID]; !ok {
		return fmt.Errorf("update rent %d: %w", rent.ID, biddingerrors.ErrUnknownRent)
	}
	remember(v.log, v.s.rents, rent.ID)
	v.s.rents[rent.ID] = cloneRent(rent)
	return nil
}

// cloneAuction detaches the nullable fields so stored rows never alias caller memory
func cloneAuction(a models.Auction) models.Auction {
	if a.LastBidValue != nil {
		value := *a.LastBidValue
		a.LastBidValue = &value
	}
	if a.LastBidderID != nil {
		bidder := *a.LastBidderID
		a.LastBidderID = &bidder
	}
	return a
}

func cloneRent(r models.Rent) models.Rent {
	if r.Profit != nil {
		profit := *r.Profit
		r.Profit = &profit
	}
	if r.SettledAt != nil {
		at := *r.SettledAt
		r.SettledAt = &at
	}
	return r
}
