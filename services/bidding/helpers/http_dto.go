package helpers

import (
	"time"

	bidding "ynvest-tube/internal/biddingService"
	"ynvest-tube/internal/models"
)

// Request DTOs
type PlaceBidRequest struct {
	UserID   string `json:"user_id" binding:"required"`
	BidValue int64  `json:"bid_value" binding:"required,gt=0"`
}

type AddVideoRequest struct {
	Link        string `json:"link" binding:"required"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Response DTOs
type RegisterResponse struct {
	UUID string `json:"uuid"`
}

type UserResponse struct {
	ID           string `json:"id"`
	Cash         int64  `json:"cash"`
	CreationDate string `json:"creation_date"`
}

type VideoResponse struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Link        string `json:"link"`
	Description string `json:"description"`
	Views       int64  `json:"views"`
	Likes       int64  `json:"likes"`
	Dislikes    int64  `json:"dislikes"`
	State       string `json:"state"`

	// nil until the first statistics refresh
	StatisticsUpdatedAt *string `json:"statistics_updated_at"`
}

// AuctionResponse never carries the last bidder: bidders stay anonymous
type AuctionResponse struct {
	ID                    int64          `json:"id"`
	VideoID               int64          `json:"video_id"`
	State                 string         `json:"state"`
	StartingPrice         int64          `json:"starting_price"`
	LastBidValue          *int64         `json:"last_bid_value"`
	RentalDuration        string         `json:"rental_duration"`
	AuctionExpirationDate string         `json:"auction_expiration_date"`
	RentalExpirationDate  string         `json:"rental_expiration_date"`
	ViewsOnOpen           int64          `json:"video_views_on_sold"`
	CreatedAt             string         `json:"created_at"`
	Video                 *VideoResponse `json:"video,omitempty"`
	Contribution          *int           `json:"user_contribution,omitempty"`
}

type BidResponse struct {
	ID        int64  `json:"id"`
	AuctionID int64  `json:"auction_id"`
	UserID    string `json:"user_id"`
	BidValue  int64  `json:"bid_value"`
	CreatedAt string `json:"created_at"`
}

type RentResponse struct {
	ID        int64   `json:"id"`
	AuctionID int64   `json:"auction_id"`
	UserID    string  `json:"user_id"`
	State     string  `json:"state"`
	Profit    *int64  `json:"profit"`
	CreatedAt string  `json:"created_at"`
	SettledAt *string `json:"settled_at"`
}

type UserDetailsResponse struct {
	User     UserResponse      `json:"user"`
	Bids     []BidResponse     `json:"bids"`
	Rents    []RentResponse    `json:"rents"`
	Auctions []AuctionResponse `json:"auctions"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func SerializeUser(u models.User) UserResponse {
	return UserResponse{ID: u.ID, Cash: u.Cash, CreationDate: formatTime(u.CreatedAt)}
}

func SerializeUsers(users []models.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, SerializeUser(u))
	}
	return out
}

func SerializeVideo(v models.Video) VideoResponse {
	resp := VideoResponse{
		ID:          v.ID,
		Title:       v.Title,
		Link:        v.Link,
		Description: v.Description,
		Views:       v.Views,
		Likes:       v.Likes,
		Dislikes:    v.Dislikes,
		State:       string(v.State),
	}
	if v.StatisticsUpdatedAt != nil {
		s := formatTime(*v.StatisticsUpdatedAt)
		resp.StatisticsUpdatedAt = &s
	}
	return resp
}

func SerializeVideos(videos []models.Video) []VideoResponse {
	out := make([]VideoResponse, 0, len(videos))
	for _, v := range videos {
		out = append(out, SerializeVideo(v))
	}
	return out
}

// SerializeAuction renders a bare auction, without video or contribution
func SerializeAuction(a models.Auction) AuctionResponse {
	return AuctionResponse{
		ID:                    a.ID,
		VideoID:               a.VideoID,
		State:                 string(a.State),
		StartingPrice:         a.StartingPrice,
		LastBidValue:          a.LastBidValue,
		RentalDuration:        a.RentalDuration.String(),
		AuctionExpirationDate: formatTime(a.AuctionExpiration),
		RentalExpirationDate:  formatTime(a.RentalExpiration),
		ViewsOnOpen:           a.ViewsOnOpen,
		CreatedAt:             formatTime(a.CreatedAt),
	}
}

// SerializeAuctionView renders an auction together with its video and,
// when known, the caller's contribution
func SerializeAuctionView(view bidding.AuctionView) AuctionResponse {
	resp := SerializeAuction(view.Auction)
	video := SerializeVideo(view.Video)
	resp.Video = &video
	if view.Contribution != nil {
		c := int(*view.Contribution)
		resp.Contribution = &c
	}
	return resp
}

func SerializeAuctionViews(views []bidding.AuctionView) []AuctionResponse {
	out := make([]AuctionResponse, 0, len(views))
	for _, v := range views {
		out = append(out, SerializeAuctionView(v))
	}
	return out
}

func SerializeBid(b models.Bid) BidResponse {
	return BidResponse{
		ID:        b.ID,
		AuctionID: b.AuctionID,
		UserID:    b.UserID,
		BidValue:  b.Value,
		CreatedAt: formatTime(b.CreatedAt),
	}
}

func SerializeBids(bids []models.Bid) []BidResponse {
	out := make([]BidResponse, 0, len(bids))
	for _, b := range bids {
		out = append(out, SerializeBid(b))
	}
	return out
}

func SerializeRent(r models.Rent) RentResponse {
	resp := RentResponse{
		ID:        r.ID,
		AuctionID: r.AuctionID,
		UserID:    r.UserID,
		State:     string(r.State),
		Profit:    r.Profit,
		CreatedAt: formatTime(r.CreatedAt),
	}
	if r.SettledAt != nil {
		s := formatTime(*r.SettledAt)
		resp.SettledAt = &s
	}
	return resp
}

func SerializeRents(rents []models.Rent) []RentResponse {
	out := make([]RentResponse, 0, len(rents))
	for _, r := range rents {
		out = append(out, SerializeRent(r))
	}
	return out
}

func SerializeUserDetails(d bidding.UserDetails) UserDetailsResponse {
	auctions := make([]AuctionResponse, 0, len(d.Auctions))
	for _, a := range d.Auctions {
		auctions = append(auctions, SerializeAuction(a))
	}
	return UserDetailsResponse{
		User:     SerializeUser(d.User),
		Bids:     SerializeBids(d.Bids),
		Rents:    SerializeRents(d.Rents),
		Auctions: auctions,
	}
}
