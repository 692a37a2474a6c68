package models

import "time"

// VideoState tracks which process currently holds a video
type VideoState string

const (
	VideoAvailable VideoState = "AVAILABLE"
	VideoAuctioned VideoState = "AUCTIONED"
	VideoRented    VideoState = "RENTED"
)

// AuctionState is the lifecycle state of an auction. INACTIVE is terminal.
type AuctionState string

const (
	AuctionActive   AuctionState = "ACTIVE"
	AuctionInactive AuctionState = "INACTIVE"
)

// RentState is the lifecycle state of a rent. INACTIVE is terminal.
type RentState string

const (
	RentActive   RentState = "ACTIVE"
	RentInactive RentState = "INACTIVE"
)

// User represents a marketplace participant identified by UUID
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Cash      int64     `json:"cash" gorm:"not null"`
	CreatedAt time.Time `json:"creation_date" gorm:"not null"`
}

// Video represents a youtube video that can be auctioned and rented
type Video struct {
	ID                  int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	Title               string     `json:"title"`
	Link                string     `json:"link" gorm:"uniqueIndex;not null"`
	Description         string     `json:"description"`
	Views               int64      `json:"views" gorm:"not null"`
	Likes               int64      `json:"likes"`
	Dislikes            int64      `json:"dislikes"`
	State               VideoState `json:"state" gorm:"index;not null"`
	StatisticsUpdatedAt *time.Time `json:"statistics_updated_at"`
}

// VideoStatistics is the statistics snapshot supplied by the upstream API
type VideoStatistics struct {
	Views    int64
	Likes    int64
	Dislikes int64
}

// Auction represents a time-boxed bidding process for the right to rent a video
type Auction struct {
	ID                int64         `json:"id" gorm:"primaryKey;autoIncrement"`
	State             AuctionState  `json:"state" gorm:"index;not null"`
	StartingPrice     int64         `json:"starting_price" gorm:"not null"`
	LastBidValue      *int64        `json:"last_bid_value"`
	LastBidderID      *string       `json:"-" gorm:"type:varchar(36);index"`
	VideoID           int64         `json:"video_id" gorm:"index;not null"`
	RentalDuration    time.Duration `json:"rental_duration" gorm:"type:bigint;not null"`
	AuctionExpiration time.Time     `json:"auction_expiration_date" gorm:"index;not null"`
	RentalExpiration  time.Time     `json:"rental_expiration_date" gorm:"index;not null"`
	ViewsOnOpen       int64         `json:"video_views_on_sold" gorm:"not null"`
	CreatedAt         time.Time     `json:"created_at"`
}

// Bid is an immutable record of an accepted bid
type Bid struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	AuctionID int64     `json:"auction_id" gorm:"index;not null"`
	UserID    string    `json:"user_id" gorm:"type:varchar(36);index;not null"`
	Value     int64     `json:"value" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}

// Rent is the rental period won by the last bidder of a closed auction
type Rent struct {
	ID        int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	AuctionID int64      `json:"auction_id" gorm:"uniqueIndex;not null"`
	UserID    string     `json:"user_id" gorm:"type:varchar(36);index;not null"`
	State     RentState  `json:"state" gorm:"index;not null"`
	Profit    *int64     `json:"profit"`
	CreatedAt time.Time  `json:"created_at"`
	SettledAt *time.Time `json:"settled_at"`
}

// HasBid reports whether somebody has bid on the auction.
// LastBidValue and LastBidderID are always set together.
func (a Auction) HasBid() bool {
	return a.LastBidderID != nil && a.LastBidValue != nil
}

// AcceptsBids reports whether the auction is still open for bidding at now
func (a Auction) AcceptsBids(now time.Time) bool {
	return a.State == AuctionActive && now.Before(a.AuctionExpiration)
}

// IsOutbidBy reports whether value beats both the starting price and the last bid
func (a Auction) IsOutbidBy(value int64) bool {
	if value <= a.StartingPrice {
		return false
	}
	if a.LastBidValue != nil && value <= *a.LastBidValue {
		return false
	}
	return true
}

// IsWinning reports whether userID is the current top bidder
func (a Auction) IsWinning(userID string) bool {
	return a.LastBidderID != nil && *a.LastBidderID == userID
}
