package server

import (
	bidding "auction-engine/internal/biddingService"
	"auction-engine/internal/lifecycle"
	"auction-engine/internal/notifier"
	handler "auction-engine/services/auction/handler"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter configures all Gin routes for the application
func SetupRouter(biddingService *bidding.BiddingService, manager *lifecycle.Manager, events *notifier.Broadcaster) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging
	router.Use(MetricsMiddleware)       // prometheus request metrics

	auctionHandler := handler.NewAuctionHandler(biddingService, manager, events)

	auctions := router.Group("/auctions")
	{
		auctions.POST("", auctionHandler.CreateAuctionHandler)
		auctions.GET("", auctionHandler.ListAuctionsHandler)
		auctions.GET("/:auction_id", auctionHandler.GetSnapshotHandler)
		auctions.POST("/:auction_id/bids", auctionHandler.PlaceBidHandler)
		auctions.GET("/:auction_id/bids", auctionHandler.GetRecentBidsHandler)
		auctions.POST("/:auction_id/end", auctionHandler.ForceEndAuctionHandler)
		auctions.POST("/:auction_id/cancel", auctionHandler.CancelAuctionHandler)
		auctions.GET("/:auction_id/events", auctionHandler.StreamEventsHandler)
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}
