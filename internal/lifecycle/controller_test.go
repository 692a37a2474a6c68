package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	bidding "ynvest-tube/internal/biddingService"
	"ynvest-tube/internal/biddingerrors"
	"ynvest-tube/internal/locker"
	"ynvest-tube/internal/models"
	"ynvest-tube/internal/repository"
)

var now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return now }

// lowRand always picks the lower bound, highRand the upper one
type lowRand struct{}

func (lowRand) IntN(int) int { return 0 }

type highRand struct{}

func (highRand) IntN(n int) int { return n - 1 }

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.Event
}

func (p *recordingPublisher) Publish(e models.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func seedVideo(t *testing.T, repo repository.AuctionDB, link string, views int64, state models.VideoState) models.Video {
	t.Helper()
	v := models.Video{Title: link, Link: link, Views: views, State: state}
	require.NoError(t, repo.CreateVideo(context.Background(), &v))
	return v
}

func seedAuction(t *testing.T, repo repository.AuctionDB, videoID int64, expiresIn time.Duration, bidder string, bid int64) models.Auction {
	t.Helper()
	a := models.Auction{
		State:             models.AuctionActive,
		StartingPrice:     200,
		VideoID:           videoID,
		RentalDuration:    48 * time.Hour,
		AuctionExpiration: now.Add(expiresIn),
		RentalExpiration:  now.Add(48 * time.Hour),
		ViewsOnOpen:       100,
		CreatedAt:         now.Add(-time.Hour),
	}
	if bidder != "" {
		a.LastBidderID = &bidder
		a.LastBidValue = &bid
	}
	require.NoError(t, repo.CreateAuction(context.Background(), &a))
	return a
}

func TestController_CloseExpiredAuctions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := repository.NewMemoryRepo()
	publisher := &recordingPublisher{}
	controller := NewController(repo, WithClock(fixedClock), WithPublisher(publisher))

	require.NoError(t, repo.CreateUser(ctx, &models.User{ID: "B", Cash: 650, CreatedAt: now}))
	won := seedVideo(t, repo, "won", 100, models.VideoAuctioned)
	unsold := seedVideo(t, repo, "unsold", 100, models.VideoAuctioned)
	running := seedVideo(t, repo, "running", 100, models.VideoAuctioned)

	wonAuction := seedAuction(t, repo, won.ID, -time.Second, "B", 350)
	unsoldAuction := seedAuction(t, repo, unsold.ID, 0, "", 0)
	runningAuction := seedAuction(t, repo, running.ID, time.Minute, "B", 250)

	summary, err := controller.CloseExpiredAuctions(ctx)
	require.NoError(t, err)
	require.Equal(t, CloseSummary{Closed: 2, Rented: 1}, summary)

	tests := []struct {
		name         string
		auctionID    int64
		videoID      int64
		wantAuction  models.AuctionState
		wantVideo    models.VideoState
		wantRentUser string
	}{
		{name: "with_bidder", auctionID: wonAuction.ID, videoID: won.ID, wantAuction: models.AuctionInactive, wantVideo: models.VideoRented, wantRentUser: "B"},
		{name: "without_bidder", auctionID: unsoldAuction.ID, videoID: unsold.ID, wantAuction: models.AuctionInactive, wantVideo: models.VideoAvailable},
		{name: "still_open", auctionID: runningAuction.ID, videoID: running.ID, wantAuction: models.AuctionActive, wantVideo: models.VideoAuctioned},
	}

	rents, err := repo.ListRents(ctx, repository.RentFilter{})
	require.NoError(t, err)
	require.Len(t, rents, 1)

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			a, err := repo.GetAuction(ctx, tc.auctionID)
			require.NoError(t, err)
			require.Equal(t, tc.wantAuction, a.State)

			v, err := repo.GetVideo(ctx, tc.videoID)
			require.NoError(t, err)
			require.Equal(t, tc.wantVideo, v.State)

			if tc.wantRentUser != "" {
				require.Equal(t, tc.auctionID, rents[0].AuctionID)
				require.Equal(t, tc.wantRentUser, rents[0].UserID)
				require.Equal(t, models.RentActive, rents[0].State)
				require.Nil(t, rents[0].Profit)
			}
		})
	}

	t.Run("closing_moves_no_money", func(t *testing.T) {
		t.Parallel()

		u, err := repo.GetUser(ctx, "B")
		require.NoError(t, err)
		require.Equal(t, int64(650), u.Cash)
	})

	t.Run("close_events_name_the_renter", func(t *testing.T) {
		t.Parallel()

		publisher.mu.Lock()
		defer publisher.mu.Unlock()
		require.Len(t, publisher.events, 2)
		require.Equal(t, models.EventAuctionClosed, publisher.events[0].Type)
		require.Equal(t, "B", publisher.events[0].UserID)
		require.Empty(t, publisher.events[1].UserID)
	})
}

func TestController_CloseExpiredAuctions_Idempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := repository.NewMemoryRepo()
	controller := NewController(repo, WithClock(fixedClock))

	video := seedVideo(t, repo, "v", 100, models.VideoAuctioned)
	seedAuction(t, repo, video.ID, -time.Minute, "B", 300)

	first, err := controller.CloseExpiredAuctions(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, first.Closed)

	second, err := controller.CloseExpiredAuctions(ctx)
	require.NoError(t, err)
	require.Equal(t, CloseSummary{}, second)

	rents, err := repo.ListRents(ctx, repository.RentFilter{})
	require.NoError(t, err)
	require.Len(t, rents, 1)
}

func TestController_CloseExpiredAuctions_ConcurrentSweeps(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := repository.NewMemoryRepo()
	controller := NewController(repo, WithClock(fixedClock))

	for i := 0; i < 10; i++ {
		video := seedVideo(t, repo, fmt.Sprintf("v%d", i), 100, models.VideoAuctioned)
		seedAuction(t, repo, video.ID, -time.Minute, "B", 300)
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := controller.CloseExpiredAuctions(ctx)
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	rents, err := repo.ListRents(ctx, repository.RentFilter{})
	require.NoError(t, err)
	require.Len(t, rents, 10)
}

// One broken auction does not stop the sweep
// movableClock is shared by the bidding service and the controller
type movableClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *movableClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *movableClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Bids racing the close sweep on one lock table either land before the
// auction closes or are rejected, and no cash is created or lost.
func TestController_CloseExpiredAuctions_RacesBids(t *testing.T) {
	t.Parallel()

	const (
		bidders     = 8
		startCash   = int64(1_000_000)
		minAccepted = 20
	)

	ctx := context.Background()
	repo := repository.NewMemoryRepo()
	locks := locker.New()
	clock := &movableClock{now: now}

	service := bidding.NewBiddingService(repo,
		bidding.WithClock(clock.Now),
		bidding.WithLocker(locks),
	)
	settings := DefaultSettings
	settings.Retry = locker.RetryPolicy{Attempts: 20, BaseDelay: time.Millisecond}
	controller := NewController(repo,
		WithClock(clock.Now),
		WithLocker(locks),
		WithSettings(settings),
	)

	users := make([]string, bidders)
	for i := range users {
		users[i] = fmt.Sprintf("bidder-%d", i)
		require.NoError(t, repo.CreateUser(ctx, &models.User{ID: users[i], Cash: startCash, CreatedAt: now}))
	}
	video := seedVideo(t, repo, "contested", 100, models.VideoAuctioned)
	auction := seedAuction(t, repo, video.ID, time.Minute, "", 0)

	var (
		next       atomic.Int64
		accepted   atomic.Int64
		lateBids   atomic.Int64
		closed     atomic.Bool
		mu         sync.Mutex
		unexpected []error
		wg         sync.WaitGroup
	)
	for _, user := range users {
		user := user
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				wasClosed := closed.Load()
				_, err := service.PlaceBid(ctx, auction.ID, user, 200+next.Add(1))
				switch {
				case err == nil:
					accepted.Add(1)
					if wasClosed {
						lateBids.Add(1)
					}
				case errors.Is(err, biddingerrors.ErrBidTooLow), errors.Is(err, biddingerrors.ErrAuctionExpired):
				default:
					mu.Lock()
					unexpected = append(unexpected, err)
					mu.Unlock()
				}
				if wasClosed {
					return
				}
			}
		}()
	}

	require.Eventually(t, func() bool { return accepted.Load() >= minAccepted }, 5*time.Second, time.Millisecond)

	clock.Set(now.Add(2 * time.Minute))
	closedCount := 0
	for attempt := 0; attempt < 50 && closedCount == 0; attempt++ {
		summary, err := controller.CloseExpiredAuctions(ctx)
		require.NoError(t, err)
		closedCount += summary.Closed
	}
	require.Equal(t, 1, closedCount)
	closed.Store(true)
	wg.Wait()

	require.Empty(t, unexpected)
	require.Zero(t, lateBids.Load())

	final, err := repo.GetAuction(ctx, auction.ID)
	require.NoError(t, err)
	require.Equal(t, models.AuctionInactive, final.State)
	require.True(t, final.HasBid())

	bids, err := repo.ListBids(ctx, repository.BidFilter{AuctionID: auction.ID})
	require.NoError(t, err)
	require.Len(t, bids, int(accepted.Load()))
	var highest int64
	for _, b := range bids {
		require.False(t, b.CreatedAt.After(final.AuctionExpiration))
		highest = max(highest, b.Value)
	}
	require.Equal(t, highest, *final.LastBidValue)

	rents, err := repo.ListRents(ctx, repository.RentFilter{})
	require.NoError(t, err)
	require.Len(t, rents, 1)
	require.Equal(t, *final.LastBidderID, rents[0].UserID)
	require.Equal(t, auction.ID, rents[0].AuctionID)

	all, err := repo.ListUsers(ctx)
	require.NoError(t, err)
	var total int64
	for _, u := range all {
		total += u.Cash
	}
	require.Equal(t, startCash*bidders, total+*final.LastBidValue)

	_, err = service.PlaceBid(ctx, auction.ID, users[0], *final.LastBidValue+1)
	require.ErrorIs(t, err, biddingerrors.ErrAuctionExpired)
}

func TestController_CloseExpiredAuctions_PartialFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := repository.NewMockAuctionDB(ctrl)
	controller := NewController(mockRepo, WithClock(fixedClock))

	broken := models.Auction{ID: 1, State: models.AuctionActive, VideoID: 10, AuctionExpiration: now.Add(-time.Minute)}
	healthy := models.Auction{ID: 2, State: models.AuctionActive, VideoID: 20, AuctionExpiration: now.Add(-time.Minute)}

	mockRepo.EXPECT().ListAuctions(gomock.Any(), gomock.Any()).Return([]models.Auction{broken, healthy}, nil)
	mockRepo.EXPECT().Atomic(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn func(repository.AuctionDB) error) error {
			return fn(mockRepo)
		}).Times(2)
	mockRepo.EXPECT().GetAuction(gomock.Any(), int64(1)).Return(broken, nil)
	mockRepo.EXPECT().SetVideoState(gomock.Any(), int64(10), models.VideoAvailable).Return(errors.New("disk full"))
	mockRepo.EXPECT().GetAuction(gomock.Any(), int64(2)).Return(healthy, nil)
	mockRepo.EXPECT().SetVideoState(gomock.Any(), int64(20), models.VideoAvailable).Return(nil)
	mockRepo.EXPECT().UpdateAuction(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, a models.Auction) error {
			require.Equal(t, int64(2), a.ID)
			require.Equal(t, models.AuctionInactive, a.State)
			return nil
		})

	summary, err := controller.CloseExpiredAuctions(context.Background())
	require.NoError(t, err)
	require.Equal(t, CloseSummary{Closed: 1, Failed: 1}, summary)
}

func TestController_GenerateAuction(t *testing.T) {
	t.Parallel()

	window := Range{Min: 5, Max: 30}

	tests := []struct {
		name          string
		rng           RandomSource
		maxAuctions   int
		openAuctions  int
		videos        int
		expectNil     bool
		expectedError error
		wantPrice     int64
		wantRental    time.Duration
		wantWindow    time.Duration
	}{
		{name: "lower_bounds", rng: lowRand{}, maxAuctions: 10, videos: 2, wantPrice: 200, wantRental: time.Hour, wantWindow: 5 * time.Minute},
		{name: "upper_bounds", rng: highRand{}, maxAuctions: 10, videos: 2, wantPrice: 500, wantRental: 7*24*time.Hour + 24*time.Hour, wantWindow: 30 * time.Minute},
		{name: "cap_reached", rng: lowRand{}, maxAuctions: 1, openAuctions: 1, videos: 2, expectNil: true},
		{name: "no_available_video", rng: lowRand{}, maxAuctions: 10, videos: 0, expectedError: biddingerrors.ErrNoAvailableVideo},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			repo := repository.NewMemoryRepo()
			publisher := &recordingPublisher{}
			controller := NewController(repo, WithClock(fixedClock), WithRandom(tc.rng), WithPublisher(publisher))

			busy := seedVideo(t, repo, "busy", 0, models.VideoAuctioned)
			for i := 0; i < tc.openAuctions; i++ {
				seedAuction(t, repo, busy.ID, time.Minute, "", 0)
			}
			var videos []models.Video
			for i := 0; i < tc.videos; i++ {
				videos = append(videos, seedVideo(t, repo, fmt.Sprintf("free%d", i), int64(1000*(i+1)), models.VideoAvailable))
			}

			auction, err := controller.GenerateAuction(ctx, tc.maxAuctions, window)
			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
				require.True(t, IsNoVideo(err))
				return
			}
			require.NoError(t, err)
			if tc.expectNil {
				require.Nil(t, auction)
				require.Empty(t, publisher.events)
				return
			}

			require.NotNil(t, auction)
			require.Equal(t, models.AuctionActive, auction.State)
			require.Equal(t, tc.wantPrice, auction.StartingPrice)
			require.Equal(t, tc.wantRental, auction.RentalDuration)
			require.Equal(t, now.Add(tc.wantRental), auction.RentalExpiration)
			require.Equal(t, now.Add(tc.wantWindow), auction.AuctionExpiration)
			require.Nil(t, auction.LastBidValue)

			video, err := repo.GetVideo(ctx, auction.VideoID)
			require.NoError(t, err)
			require.Equal(t, models.VideoAuctioned, video.State)
			require.Equal(t, video.Views, auction.ViewsOnOpen)
			require.Contains(t, []int64{videos[0].ID, videos[1].ID}, video.ID)

			require.Len(t, publisher.events, 1)
			require.Equal(t, models.EventAuctionOpened, publisher.events[0].Type)
		})
	}
}

func TestController_GenerateAuction_RequiresFetchedStatistics(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := repository.NewMemoryRepo()
	settings := DefaultSettings
	settings.RequireStatistics = true
	controller := NewController(repo, WithClock(fixedClock), WithRandom(lowRand{}), WithSettings(settings))

	fresh := seedVideo(t, repo, "fresh", 0, models.VideoAvailable)

	_, err := controller.GenerateAuction(ctx, 10, Range{Min: 5, Max: 5})
	require.True(t, IsNoVideo(err), "a video without statistics must not be auctioned, got %v", err)
	video, err := repo.GetVideo(ctx, fresh.ID)
	require.NoError(t, err)
	require.Equal(t, models.VideoAvailable, video.State)

	require.NoError(t, repo.UpdateVideoStatistics(ctx, fresh.ID, models.VideoStatistics{Views: 1_000_000}, now))

	auction, err := controller.GenerateAuction(ctx, 10, Range{Min: 5, Max: 5})
	require.NoError(t, err)
	require.NotNil(t, auction)
	require.Equal(t, fresh.ID, auction.VideoID)
	require.Equal(t, int64(1_000_000), auction.ViewsOnOpen)
}

// Concurrent generators never overshoot the cap
func TestController_GenerateAuction_Cap(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := repository.NewMemoryRepo()
	controller := NewController(repo, WithClock(fixedClock))

	for i := 0; i < 20; i++ {
		seedVideo(t, repo, fmt.Sprintf("v%d", i), 0, models.VideoAvailable)
	}

	var wg sync.WaitGroup
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// contention may exhaust retries; the cap is what matters here
			_, _ = controller.GenerateAuction(ctx, 5, Range{Min: 1, Max: 1})
		}()
	}
	wg.Wait()

	n, err := repo.CountOpenAuctions(ctx, now)
	require.NoError(t, err)
	require.LessOrEqual(t, n, int64(5))

	for i := 0; i < 10; i++ {
		_, err := controller.GenerateAuction(ctx, 5, Range{Min: 1, Max: 1})
		require.NoError(t, err)
	}
	n, err = repo.CountOpenAuctions(ctx, now)
	require.NoError(t, err)
	require.Equal(t, int64(5), n)

	auctioned, err := repo.ListVideos(ctx, repository.VideoFilter{State: models.VideoAuctioned})
	require.NoError(t, err)
	require.Len(t, auctioned, 5)
}

func TestRange_Pick(t *testing.T) {
	t.Parallel()

	require.Equal(t, 3, Range{Min: 3, Max: 3}.Pick(highRand{}))
	require.Equal(t, 3, Range{Min: 3, Max: 1}.Pick(highRand{}))
	require.Equal(t, 9, Range{Min: 3, Max: 9}.Pick(highRand{}))
	require.Equal(t, 3, Range{Min: 3, Max: 9}.Pick(lowRand{}))
}
