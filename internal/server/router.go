package server

import (
	"net/http"

	"ynvest-tube/internal/realtime"
	"ynvest-tube/services/bidding/handler"
	"ynvest-tube/utils"

	"github.com/gin-gonic/gin"
)

// SetupRouter configures all Gin routes for the application.
// A nil hub leaves the realtime feed unmounted.
func SetupRouter(service handler.BiddingServiceInterface, hub *realtime.Hub) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(RequestLoggerMiddleware)

	biddingHandler := handler.NewBiddingHandler(service)

	users := router.Group("/users")
	{
		users.POST("/register", biddingHandler.RegisterUserHandler)
		users.GET("", biddingHandler.ListUsersHandler)
		users.GET("/:user_id", biddingHandler.GetUserHandler)
		users.GET("/:user_id/details", biddingHandler.GetUserDetailsHandler)
	}

	auctions := router.Group("/auctions")
	{
		auctions.GET("", biddingHandler.ListActiveAuctionsHandler)
		auctions.GET("/:auction_id", biddingHandler.GetAuctionHandler)
		auctions.POST("/:auction_id/bids", biddingHandler.PlaceBidHandler)
		auctions.GET("/:auction_id/bids", biddingHandler.GetBidsForAuctionHandler)
	}

	bids := router.Group("/bids")
	{
		bids.GET("", biddingHandler.ListBidsHandler)
	}

	videos := router.Group("/videos")
	{
		videos.GET("", biddingHandler.ListVideosHandler)
		videos.POST("", biddingHandler.AddVideoHandler)
	}

	rents := router.Group("/rents")
	{
		rents.GET("", biddingHandler.ListRentsHandler)
	}

	if hub != nil {
		router.GET("/ws", gin.WrapH(&realtime.WSHandler{Hub: hub}))
	}

	router.GET("/healthz", func(c *gin.Context) {
		utils.JSONResponse(c, http.StatusOK, gin.H{"ok": true}, "healthy")
	})

	return router
}
