package handler

import (
	"context"
	"fmt"
	"net/http"

	bidding "ynvest-tube/internal/biddingService"
	"ynvest-tube/internal/models"
	"ynvest-tube/services/bidding/helpers"
	"ynvest-tube/utils"

	"github.com/gin-gonic/gin"
)

type BiddingServiceInterface interface {
	RegisterUser(ctx context.Context) (models.User, error)
	GetUser(ctx context.Context, userID string) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	GetUserDetails(ctx context.Context, userID string) (bidding.UserDetails, error)
	GetAuction(ctx context.Context, auctionID int64, userID string) (bidding.AuctionView, error)
	ListActiveAuctions(ctx context.Context, userID string) ([]bidding.AuctionView, error)
	PlaceBid(ctx context.Context, auctionID int64, userID string, value int64) (models.Auction, error)
	GetBidsForAuction(ctx context.Context, auctionID int64) ([]models.Bid, error)
	ListBids(ctx context.Context) ([]models.Bid, error)
	ListVideos(ctx context.Context) ([]models.Video, error)
	AddVideo(ctx context.Context, link, title, description string) (models.Video, error)
	ListRents(ctx context.Context, userID string) ([]models.Rent, error)
}

type BiddingHandler struct {
	service BiddingServiceInterface
}

func NewBiddingHandler(service BiddingServiceInterface) *BiddingHandler {
	return &BiddingHandler{service: service}
}

// respondError maps err to a status, writes the error envelope and logs it
func respondError(c *gin.Context, handlerName, logMsg string, err error, fields map[string]any) {
	status, message := helpers.MapErrorToHTTP(err)
	utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)

	if fields == nil {
		fields = map[string]any{}
	}
	fields["handler"] = handlerName
	fields["error"] = err.Error()
	if status >= http.StatusInternalServerError {
		utils.Error(handlerName+": "+logMsg, fields)
		return
	}
	utils.Warn(handlerName+": "+logMsg, fields)
}

// RegisterUserHandler handles POST /users/register
func (h *BiddingHandler) RegisterUserHandler(c *gin.Context) {
	user, err := h.service.RegisterUser(c.Request.Context())
	if err != nil {
		respondError(c, "RegisterUserHandler", "failed to register user", err, nil)
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.RegisterResponse{UUID: user.ID}, "user registered successfully")
	helpers.LogSuccess("RegisterUserHandler", "user registered successfully", map[string]any{"user_id": user.ID})
}

// ListUsersHandler handles GET /users
func (h *BiddingHandler) ListUsersHandler(c *gin.Context) {
	users, err := h.service.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, "ListUsersHandler", "error retrieving users", err, nil)
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.SerializeUsers(users), "users retrieved successfully")
}

// GetUserHandler handles GET /users/:user_id
func (h *BiddingHandler) GetUserHandler(c *gin.Context) {
	userID := c.Param("user_id")
	user, err := h.service.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "GetUserHandler", "error retrieving user", err, map[string]any{"user_id": userID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.SerializeUser(user), "user retrieved successfully")
}

// GetUserDetailsHandler handles GET /users/:user_id/details
func (h *BiddingHandler) GetUserDetailsHandler(c *gin.Context) {
	userID := c.Param("user_id")
	details, err := h.service.GetUserDetails(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "GetUserDetailsHandler", "error retrieving user details", err, map[string]any{"user_id": userID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.SerializeUserDetails(details), "user details retrieved successfully")
	helpers.LogSuccess("GetUserDetailsHandler", "user details retrieved successfully", map[string]any{
		"user_id":    userID,
		"bids_count": len(details.Bids),
	})
}

// ListActiveAuctionsHandler handles GET /auctions?user_id=
func (h *BiddingHandler) ListActiveAuctionsHandler(c *gin.Context) {
	userID := c.Query("user_id")
	views, err := h.service.ListActiveAuctions(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "ListActiveAuctionsHandler", "error retrieving auctions", err, map[string]any{"user_id": userID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.SerializeAuctionViews(views), "auctions retrieved successfully")
}

// GetAuctionHandler handles GET /auctions/:auction_id?user_id=
func (h *BiddingHandler) GetAuctionHandler(c *gin.Context) {
	auctionID, ok := helpers.ParseAuctionID(c, "GetAuctionHandler")
	if !ok {
		return
	}
	userID := c.Query("user_id")

	view, err := h.service.GetAuction(c.Request.Context(), auctionID, userID)
	if err != nil {
		respondError(c, "GetAuctionHandler", "error retrieving auction", err, map[string]any{
			"auction_id": auctionID,
			"user_id":    userID,
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.SerializeAuctionView(view), "auction retrieved successfully")
}

// PlaceBidHandler handles POST /auctions/:auction_id/bids
func (h *BiddingHandler) PlaceBidHandler(c *gin.Context) {
	auctionID, ok := helpers.ParseAuctionID(c, "PlaceBidHandler")
	if !ok {
		return
	}

	var req helpers.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "PlaceBidHandler", err)
		return
	}

	auction, err := h.service.PlaceBid(c.Request.Context(), auctionID, req.UserID, req.BidValue)
	if err != nil {
		respondError(c, "PlaceBidHandler", "failed to place bid", err, map[string]any{
			"auction_id": auctionID,
			"user_id":    req.UserID,
			"bid_value":  req.BidValue,
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.SerializeAuction(auction), "bid recorded successfully")
	helpers.LogSuccess("PlaceBidHandler", "bid recorded successfully", map[string]any{
		"auction_id": auctionID,
		"user_id":    req.UserID,
		"bid_value":  req.BidValue,
	})
}

// GetBidsForAuctionHandler handles GET /auctions/:auction_id/bids
func (h *BiddingHandler) GetBidsForAuctionHandler(c *gin.Context) {
	auctionID, ok := helpers.ParseAuctionID(c, "GetBidsForAuctionHandler")
	if !ok {
		return
	}

	bids, err := h.service.GetBidsForAuction(c.Request.Context(), auctionID)
	if err != nil {
		respondError(c, "GetBidsForAuctionHandler", "error retrieving bids", err, map[string]any{"auction_id": auctionID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.SerializeBids(bids), "bids retrieved successfully")
	helpers.LogSuccess("GetBidsForAuctionHandler", "bids retrieved successfully", map[string]any{
		"auction_id": auctionID,
		"count":      len(bids),
	})
}

// ListBidsHandler handles GET /bids
func (h *BiddingHandler) ListBidsHandler(c *gin.Context) {
	bids, err := h.service.ListBids(c.Request.Context())
	if err != nil {
		respondError(c, "ListBidsHandler", "error retrieving bids", err, nil)
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.SerializeBids(bids), "bids retrieved successfully")
}

// ListVideosHandler handles GET /videos
func (h *BiddingHandler) ListVideosHandler(c *gin.Context) {
	videos, err := h.service.ListVideos(c.Request.Context())
	if err != nil {
		respondError(c, "ListVideosHandler", "error retrieving videos", err, nil)
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.SerializeVideos(videos), "videos retrieved successfully")
}

// AddVideoHandler handles POST /videos
func (h *BiddingHandler) AddVideoHandler(c *gin.Context) {
	var req helpers.AddVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "AddVideoHandler", err)
		return
	}

	video, err := h.service.AddVideo(c.Request.Context(), req.Link, req.Title, req.Description)
	if err != nil {
		respondError(c, "AddVideoHandler", "failed to add video", err, map[string]any{"link": req.Link})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.SerializeVideo(video), "video added successfully")
	helpers.LogSuccess("AddVideoHandler", "video added successfully", map[string]any{
		"video_id": video.ID,
		"link":     video.Link,
	})
}

// ListRentsHandler handles GET /rents?user_id=
func (h *BiddingHandler) ListRentsHandler(c *gin.Context) {
	userID := c.Query("user_id")
	rents, err := h.service.ListRents(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "ListRentsHandler", "error retrieving rents", err, map[string]any{"user_id": userID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.SerializeRents(rents), "rents retrieved successfully")
}
