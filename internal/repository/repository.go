package repository

import (
	"context"
	"time"

	"ynvest-tube/internal/models"
)

// AuctionFilter selects auctions. Zero values match everything.
type AuctionFilter struct {
	State     models.AuctionState
	ExpiredBy *time.Time // auction_expiration_date <= ExpiredBy
	IDs       []int64
}

// VideoFilter selects videos. Zero values match everything.
type VideoFilter struct {
	State models.VideoState
	// WithStatistics keeps only videos whose statistics were fetched at least once
	WithStatistics bool
}

// BidFilter selects bids. Zero values match everything.
type BidFilter struct {
	AuctionID int64
	UserID    string
}

// RentFilter selects rents. Zero values match everything.
type RentFilter struct {
	State  models.RentState
	UserID string
}

// AuctionDB defines the storage interface for the auction marketplace
type AuctionDB interface {
	// Atomic runs fn inside one read-modify-write scope. Either every write
	// made through tx is applied or none is.
	Atomic(ctx context.Context, fn func(tx AuctionDB) error) error

	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, userID string) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	// AdjustCash adds delta (possibly negative) to the user's balance
	AdjustCash(ctx context.Context, userID string, delta int64) error
	// DebitCash subtracts amount only if the balance covers it
	DebitCash(ctx context.Context, userID string, amount int64) error

	CreateVideo(ctx context.Context, video *models.Video) error
	GetVideo(ctx context.Context, videoID int64) (models.Video, error)
	ListVideos(ctx context.Context, filter VideoFilter) ([]models.Video, error)
	SetVideoState(ctx context.Context, videoID int64, state models.VideoState) error
	UpdateVideoStatistics(ctx context.Context, videoID int64, stats models.VideoStatistics, at time.Time) error

	CreateAuction(ctx context.Context, auction *models.Auction) error
	GetAuction(ctx context.Context, auctionID int64) (models.Auction, error)
	ListAuctions(ctx context.Context, filter AuctionFilter) ([]models.Auction, error)
	// CountOpenAuctions counts ACTIVE auctions whose rental window ends after now
	CountOpenAuctions(ctx context.Context, now time.Time) (int64, error)
	UpdateAuction(ctx context.Context, auction models.Auction) error

	CreateBid(ctx context.Context, bid *models.Bid) error
	ListBids(ctx context.Context, filter BidFilter) ([]models.Bid, error)

	CreateRent(ctx context.Context, rent *models.Rent) error
	GetRent(ctx context.Context, rentID int64) (models.Rent, error)
	ListRents(ctx context.Context, filter RentFilter) ([]models.Rent, error)
	UpdateRent(ctx context.Context, rent models.Rent) error
}
