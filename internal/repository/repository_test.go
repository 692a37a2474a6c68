package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ynvest-tube/internal/biddingerrors"
	"ynvest-tube/internal/models"
)

var baseTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// Helper to create a new user
func newUser(id string, cash int64) *models.User {
	return &models.User{ID: id, Cash: cash, CreatedAt: baseTime}
}

// Helper to create a new video
func newVideo(link string, views int64, state models.VideoState) *models.Video {
	return &models.Video{
		Title:       fmt.Sprintf("%s title", link),
		Link:        link,
		Description: fmt.Sprintf("%s description", link),
		Views:       views,
		State:       state,
	}
}

// Helper to create a new active auction expiring after d
func newAuction(videoID int64, startingPrice int64, d time.Duration) *models.Auction {
	return &models.Auction{
		State:             models.AuctionActive,
		StartingPrice:     startingPrice,
		VideoID:           videoID,
		RentalDuration:    time.Hour,
		AuctionExpiration: baseTime.Add(d),
		RentalExpiration:  baseTime.Add(d + time.Hour),
		CreatedAt:         baseTime,
	}
}

// repoFactories lets every contract test run against each AuctionDB implementation
func repoFactories(t *testing.T) map[string]func() AuctionDB {
	t.Helper()
	return map[string]func() AuctionDB{
		"memory": func() AuctionDB { return NewMemoryRepo() },
		"sqlite": func() AuctionDB { return newSQLiteRepo(t) },
	}
}

func newSQLiteRepo(t *testing.T) *GormRepo {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()+fmt.Sprint(time.Now().UnixNano()))
	db, err := OpenDB("sqlite", dsn)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return NewGormRepo(db)
}

func TestRepo_DebitCash(t *testing.T) {
	t.Parallel()

	for name, factory := range repoFactories(t) {
		name, factory := name, factory
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			repo := factory()
			require.NoError(t, repo.CreateUser(ctx, newUser("user1", 1000)))

			tests := []struct {
				name     string
				userID   string
				amount   int64
				wantErr  error
				wantCash int64
			}{
				{name: "covered_debit", userID: "user1", amount: 400, wantCash: 600},
				{name: "exact_balance", userID: "user1", amount: 600, wantCash: 0},
				{name: "insufficient_funds", userID: "user1", amount: 1, wantErr: biddingerrors.ErrInsufficientFunds, wantCash: 0},
				{name: "unknown_user", userID: "ghost", amount: 1, wantErr: biddingerrors.ErrUnknownUser},
			}

			// sequential: every case depends on the balance left by the previous one
			for _, tc := range tests {
				err := repo.DebitCash(ctx, tc.userID, tc.amount)
				if tc.wantErr != nil {
					require.ErrorIs(t, err, tc.wantErr, tc.name)
				} else {
					require.NoError(t, err, tc.name)
				}
				if tc.userID == "user1" {
					u, err := repo.GetUser(ctx, "user1")
					require.NoError(t, err)
					require.Equal(t, tc.wantCash, u.Cash, tc.name)
				}
			}
		})
	}
}

func TestRepo_AtomicRollback(t *testing.T) {
	t.Parallel()

	for name, factory := range repoFactories(t) {
		name, factory := name, factory
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			repo := factory()
			require.NoError(t, repo.CreateUser(ctx, newUser("user1", 1000)))
			video := newVideo("https://youtu.be/a", 10, models.VideoAuctioned)
			require.NoError(t, repo.CreateVideo(ctx, video))
			auction := newAuction(video.ID, 200, time.Minute)
			require.NoError(t, repo.CreateAuction(ctx, auction))

			boom := errors.New("boom")
			err := repo.Atomic(ctx, func(tx AuctionDB) error {
				require.NoError(t, tx.DebitCash(ctx, "user1", 300))
				bid := &models.Bid{AuctionID: auction.ID, UserID: "user1", Value: 300, CreatedAt: baseTime}
				require.NoError(t, tx.CreateBid(ctx, bid))
				a, err := tx.GetAuction(ctx, auction.ID)
				require.NoError(t, err)
				value, bidder := int64(300), "user1"
				a.LastBidValue, a.LastBidderID = &value, &bidder
				require.NoError(t, tx.UpdateAuction(ctx, a))
				require.NoError(t, tx.SetVideoState(ctx, video.ID, models.VideoRented))
				return boom
			})
			require.ErrorIs(t, err, boom)

			u, err := repo.GetUser(ctx, "user1")
			require.NoError(t, err)
			require.Equal(t, int64(1000), u.Cash)

			bids, err := repo.ListBids(ctx, BidFilter{AuctionID: auction.ID})
			require.NoError(t, err)
			require.Empty(t, bids)

			a, err := repo.GetAuction(ctx, auction.ID)
			require.NoError(t, err)
			require.False(t, a.HasBid())

			v, err := repo.GetVideo(ctx, video.ID)
			require.NoError(t, err)
			require.Equal(t, models.VideoAuctioned, v.State)
		})
	}
}

func TestRepo_AtomicCommit(t *testing.T) {
	t.Parallel()

	for name, factory := range repoFactories(t) {
		name, factory := name, factory
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			repo := factory()
			require.NoError(t, repo.CreateUser(ctx, newUser("user1", 1000)))
			require.NoError(t, repo.CreateUser(ctx, newUser("user2", 1000)))

			err := repo.Atomic(ctx, func(tx AuctionDB) error {
				if err := tx.DebitCash(ctx, "user1", 250); err != nil {
					return err
				}
				return tx.AdjustCash(ctx, "user2", 250)
			})
			require.NoError(t, err)

			u1, err := repo.GetUser(ctx, "user1")
			require.NoError(t, err)
			u2, err := repo.GetUser(ctx, "user2")
			require.NoError(t, err)
			require.Equal(t, int64(750), u1.Cash)
			require.Equal(t, int64(1250), u2.Cash)
		})
	}
}

func TestRepo_Videos(t *testing.T) {
	t.Parallel()

	for name, factory := range repoFactories(t) {
		name, factory := name, factory
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			repo := factory()

			v1 := newVideo("https://youtu.be/1", 100, models.VideoAvailable)
			v2 := newVideo("https://youtu.be/2", 200, models.VideoRented)
			require.NoError(t, repo.CreateVideo(ctx, v1))
			require.NoError(t, repo.CreateVideo(ctx, v2))
			require.NotZero(t, v1.ID)
			require.NotEqual(t, v1.ID, v2.ID)

			err := repo.CreateVideo(ctx, newVideo("https://youtu.be/1", 5, models.VideoAvailable))
			require.ErrorIs(t, err, biddingerrors.ErrVideoAlreadyExists)

			tests := []struct {
				name     string
				filter   VideoFilter
				wantLink []string
			}{
				{name: "all", filter: VideoFilter{}, wantLink: []string{v1.Link, v2.Link}},
				{name: "available_only", filter: VideoFilter{State: models.VideoAvailable}, wantLink: []string{v1.Link}},
				{name: "none_auctioned", filter: VideoFilter{State: models.VideoAuctioned}, wantLink: nil},
			}
			for _, tc := range tests {
				videos, err := repo.ListVideos(ctx, tc.filter)
				require.NoError(t, err, tc.name)
				var links []string
				for _, v := range videos {
					links = append(links, v.Link)
				}
				require.Equal(t, tc.wantLink, links, tc.name)
			}

			at := baseTime.Add(time.Hour)
			stats := models.VideoStatistics{Views: 150, Likes: 7, Dislikes: 1}
			require.NoError(t, repo.UpdateVideoStatistics(ctx, v1.ID, stats, at))
			got, err := repo.GetVideo(ctx, v1.ID)
			require.NoError(t, err)
			require.Equal(t, int64(150), got.Views)
			require.Equal(t, int64(7), got.Likes)
			require.NotNil(t, got.StatisticsUpdatedAt)
			require.True(t, at.Equal(*got.StatisticsUpdatedAt))

			fetched, err := repo.ListVideos(ctx, VideoFilter{WithStatistics: true})
			require.NoError(t, err)
			require.Len(t, fetched, 1)
			require.Equal(t, v1.ID, fetched[0].ID)
			fetched, err = repo.ListVideos(ctx, VideoFilter{State: models.VideoRented, WithStatistics: true})
			require.NoError(t, err)
			require.Empty(t, fetched)

			require.ErrorIs(t, repo.SetVideoState(ctx, 9999, models.VideoRented), biddingerrors.ErrUnknownVideo)
			_, err = repo.GetVideo(ctx, 9999)
			require.ErrorIs(t, err, biddingerrors.ErrUnknownVideo)
		})
	}
}

func TestRepo_AuctionFilters(t *testing.T) {
	t.Parallel()

	for name, factory := range repoFactories(t) {
		name, factory := name, factory
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			repo := factory()

			video := newVideo("https://youtu.be/f", 0, models.VideoAuctioned)
			require.NoError(t, repo.CreateVideo(ctx, video))

			expired := newAuction(video.ID, 200, -time.Minute)
			open := newAuction(video.ID, 300, time.Minute)
			closed := newAuction(video.ID, 400, -time.Hour)
			closed.State = models.AuctionInactive
			for _, a := range []*models.Auction{expired, open, closed} {
				require.NoError(t, repo.CreateAuction(ctx, a))
			}

			now := baseTime
			tests := []struct {
				name    string
				filter  AuctionFilter
				wantIDs []int64
			}{
				{name: "active", filter: AuctionFilter{State: models.AuctionActive}, wantIDs: []int64{expired.ID, open.ID}},
				{name: "active_and_expired", filter: AuctionFilter{State: models.AuctionActive, ExpiredBy: &now}, wantIDs: []int64{expired.ID}},
				{name: "by_ids", filter: AuctionFilter{IDs: []int64{closed.ID, open.ID}}, wantIDs: []int64{open.ID, closed.ID}},
				{name: "inactive", filter: AuctionFilter{State: models.AuctionInactive}, wantIDs: []int64{closed.ID}},
			}
			for _, tc := range tests {
				auctions, err := repo.ListAuctions(ctx, tc.filter)
				require.NoError(t, err, tc.name)
				ids := make([]int64, 0, len(auctions))
				for _, a := range auctions {
					ids = append(ids, a.ID)
				}
				require.Equal(t, tc.wantIDs, ids, tc.name)
			}

			// expired is still ACTIVE and its rental window (baseTime+59m) is ahead of now
			n, err := repo.CountOpenAuctions(ctx, now)
			require.NoError(t, err)
			require.Equal(t, int64(2), n)

			_, err = repo.GetAuction(ctx, 9999)
			require.ErrorIs(t, err, biddingerrors.ErrUnknownAuction)
		})
	}
}

func TestRepo_Rents(t *testing.T) {
	t.Parallel()

	for name, factory := range repoFactories(t) {
		name, factory := name, factory
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			repo := factory()

			video := newVideo("https://youtu.be/r", 0, models.VideoRented)
			require.NoError(t, repo.CreateVideo(ctx, video))
			auction := newAuction(video.ID, 200, -time.Minute)
			require.NoError(t, repo.CreateAuction(ctx, auction))

			rent := &models.Rent{AuctionID: auction.ID, UserID: "user1", State: models.RentActive, CreatedAt: baseTime}
			require.NoError(t, repo.CreateRent(ctx, rent))
			require.Error(t, repo.CreateRent(ctx, &models.Rent{AuctionID: auction.ID, UserID: "user2", State: models.RentActive, CreatedAt: baseTime}))

			active, err := repo.ListRents(ctx, RentFilter{State: models.RentActive, UserID: "user1"})
			require.NoError(t, err)
			require.Len(t, active, 1)

			profit := int64(-50)
			settledAt := baseTime.Add(time.Hour)
			rent.State, rent.Profit, rent.SettledAt = models.RentInactive, &profit, &settledAt
			require.NoError(t, repo.UpdateRent(ctx, *rent))

			got, err := repo.GetRent(ctx, rent.ID)
			require.NoError(t, err)
			require.Equal(t, models.RentInactive, got.State)
			require.NotNil(t, got.Profit)
			require.Equal(t, int64(-50), *got.Profit)

			active, err = repo.ListRents(ctx, RentFilter{State: models.RentActive})
			require.NoError(t, err)
			require.Empty(t, active)

			_, err = repo.GetRent(ctx, 9999)
			require.ErrorIs(t, err, biddingerrors.ErrUnknownRent)
		})
	}
}

func TestMemoryRepo_ConcurrentDebits(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewMemoryRepo()
	require.NoError(t, repo.CreateUser(ctx, newUser("user1", 1000)))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.Atomic(ctx, func(tx AuctionDB) error {
				return tx.DebitCash(ctx, "user1", 100)
			})
			if err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
				return
			}
			require.ErrorIs(t, err, biddingerrors.ErrInsufficientFunds)
		}()
	}
	wg.Wait()

	u, err := repo.GetUser(ctx, "user1")
	require.NoError(t, err)
	require.Equal(t, 10, accepted)
	require.Equal(t, int64(0), u.Cash)
}

func TestMemoryRepo_ReturnedRowsAreDetached(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewMemoryRepo()
	video := newVideo("https://youtu.be/d", 0, models.VideoAuctioned)
	require.NoError(t, repo.CreateVideo(ctx, video))
	auction := newAuction(video.ID, 200, time.Minute)
	value := int64(250)
	auction.LastBidValue = &value
	require.NoError(t, repo.CreateAuction(ctx, auction))

	value = 9000
	got, err := repo.GetAuction(ctx, auction.ID)
	require.NoError(t, err)
	require.Equal(t, int64(250), *got.LastBidValue)

	*got.LastBidValue = 1
	again, err := repo.GetAuction(ctx, auction.ID)
	require.NoError(t, err)
	require.Equal(t, int64(250), *again.LastBidValue)
}
