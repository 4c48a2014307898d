package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	bidding "auction-engine/internal/biddingService"
	model "auction-engine/internal/models"
	"auction-engine/internal/notifier"
	"auction-engine/services/auction/helpers"
	"auction-engine/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

const defaultRecentBidsLimit = 20

type BiddingServiceInterface interface {
	CreateAuction(spec bidding.CreateAuctionSpec) (model.Auction, error)
	PlaceBid(auctionID, bidderRef string, amount decimal.Decimal) (model.Bid, error)
	GetSnapshot(auctionID string) (bidding.Snapshot, error)
	GetRecentBids(auctionID string, limit int) ([]model.Bid, error)
	ListAuctions(status model.AuctionStatus) []model.Auction
}

type LifecycleInterface interface {
	ForceEnd(auctionID string) (model.Auction, error)
	Cancel(auctionID string) error
}

type AuctionHandler struct {
	service   BiddingServiceInterface
	lifecycle LifecycleInterface
	events    notifier.Subscriber
}

func NewAuctionHandler(service BiddingServiceInterface, lifecycle LifecycleInterface, events notifier.Subscriber) *AuctionHandler {
	return &AuctionHandler{service: service, lifecycle: lifecycle, events: events}
}

// CreateAuctionHandler handles POST /auctions
func (h *AuctionHandler) CreateAuctionHandler(c *gin.Context) {
	var req helpers.CreateAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateAuctionHandler", err)
		return
	}

	startAt := time.Now()
	if req.StartAt != nil {
		startAt = *req.StartAt
	}

	auction, err := h.service.CreateAuction(bidding.CreateAuctionSpec{
		ProductRef:   req.ProductRef,
		StartPrice:   req.StartPrice,
		MinIncrement: req.MinIncrement,
		StartAt:      startAt,
		EndAt:        req.EndAt,
	})
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("CreateAuctionHandler: failed to create auction", map[string]any{
			"product_ref": req.ProductRef,
			"error":       err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.NewAuctionResponse(auction), "auction created successfully")
	helpers.LogSuccess("CreateAuctionHandler", "auction created successfully", map[string]any{
		"auction_id":  auction.AuctionID,
		"product_ref": auction.ProductRef,
		"status":      string(auction.Status),
	})
}

// ListAuctionsHandler handles GET /auctions?status=running
func (h *AuctionHandler) ListAuctionsHandler(c *gin.Context) {
	status := model.AuctionStatus(c.DefaultQuery("status", string(model.StatusRunning)))
	switch status {
	case model.StatusScheduled, model.StatusRunning, model.StatusEnded, model.StatusCancelled:
	default:
		utils.JSONError(c, http.StatusBadRequest, fmt.Errorf("unknown status %q", status), "invalid status filter")
		return
	}

	auctions := h.service.ListAuctions(status)
	resp := make([]helpers.AuctionResponse, len(auctions))
	for i, a := range auctions {
		resp[i] = helpers.NewAuctionResponse(a)
	}

	utils.JSONResponse(c, http.StatusOK, resp, "auctions retrieved successfully")
}

// GetSnapshotHandler handles GET /auctions/:auction_id
func (h *AuctionHandler) GetSnapshotHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	snapshot, err := h.service.GetSnapshot(auctionID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("GetSnapshotHandler: error retrieving snapshot", map[string]any{"auction_id": auctionID, "error": err.Error()})
		return
	}

	resp := helpers.SnapshotResponse{
		AuctionID:    snapshot.AuctionID,
		Status:       string(snapshot.Status),
		CurrentPrice: snapshot.CurrentPrice,
		EndAt:        snapshot.EndAt.UTC().Format(time.RFC3339),
		WinnerRef:    snapshot.WinnerRef,
	}
	utils.JSONResponse(c, http.StatusOK, resp, "snapshot retrieved successfully")
}

// PlaceBidHandler handles POST /auctions/:auction_id/bids
func (h *AuctionHandler) PlaceBidHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")

	var req helpers.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "PlaceBidHandler", err)
		return
	}

	bid, err := h.service.PlaceBid(auctionID, req.BidderRef, req.Amount)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("PlaceBidHandler: bid rejected", map[string]any{
			"auction_id": auctionID,
			"bidder_ref": req.BidderRef,
			"amount":     req.Amount.String(),
			"error":      err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.NewBidResponse(bid), "bid accepted")
	helpers.LogSuccess("PlaceBidHandler", "bid accepted", map[string]any{
		"bid_id":     bid.BidID,
		"auction_id": bid.AuctionID,
		"bidder_ref": bid.BidderRef,
		"amount":     bid.Amount.String(),
	})
}

// GetRecentBidsHandler handles GET /auctions/:auction_id/bids
func (h *AuctionHandler) GetRecentBidsHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")

	limit := defaultRecentBidsLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			utils.JSONError(c, http.StatusBadRequest, fmt.Errorf("invalid limit %q", raw), "invalid limit")
			return
		}
		limit = parsed
	}

	bids, err := h.service.GetRecentBids(auctionID, limit)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("GetRecentBidsHandler: error retrieving bids", map[string]any{"auction_id": auctionID, "error": err.Error()})
		return
	}

	resp := make([]helpers.BidResponse, len(bids))
	for i, b := range bids {
		resp[i] = helpers.NewBidResponse(b)
	}
	utils.JSONResponse(c, http.StatusOK, resp, "bids retrieved successfully")
}

// ForceEndAuctionHandler handles POST /auctions/:auction_id/end
func (h *AuctionHandler) ForceEndAuctionHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	auction, err := h.lifecycle.ForceEnd(auctionID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("ForceEndAuctionHandler: failed to end auction", map[string]any{"auction_id": auctionID, "error": err.Error()})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewAuctionResponse(auction), "auction ended")
	helpers.LogSuccess("ForceEndAuctionHandler", "auction ended", map[string]any{
		"auction_id": auction.AuctionID,
		"winner_ref": auction.WinnerRef,
	})
}

// CancelAuctionHandler handles POST /auctions/:auction_id/cancel
func (h *AuctionHandler) CancelAuctionHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	if err := h.lifecycle.Cancel(auctionID); err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("CancelAuctionHandler: failed to cancel auction", map[string]any{"auction_id": auctionID, "error": err.Error()})
		return
	}

	utils.JSONResponse(c, http.StatusOK, gin.H{"auction_id": auctionID}, "auction cancelled")
	helpers.LogSuccess("CancelAuctionHandler", "auction cancelled", map[string]any{"auction_id": auctionID})
}

// StreamEventsHandler handles GET /auctions/:auction_id/events as an SSE
// stream. Clients read a snapshot first, then subscribe; there is no replay.
func (h *AuctionHandler) StreamEventsHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")

	snapshot, err := h.service.GetSnapshot(auctionID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		return
	}
	if snapshot.Status.IsTerminal() {
		utils.JSONError(c, http.StatusGone, errors.New("auction already finished"), "auction already finished")
		return
	}

	ch, err := h.events.Subscribe(auctionID)
	if err != nil {
		utils.JSONError(c, http.StatusServiceUnavailable, err, "event stream unavailable")
		return
	}
	defer h.events.Unsubscribe(auctionID, ch)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Flush()

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			c.SSEvent(string(event.Kind), event)
			c.Writer.Flush()
			// The stream closes itself once the auction reaches a terminal
			// state; clients re-read the snapshot for the final result.
			if event.Kind == notifier.EventAuctionEnded {
				return
			}
		case <-heartbeat.C:
			// keep intermediaries from closing an idle connection
			c.Writer.WriteString(": ping\n\n")
			c.Writer.Flush()
		}
	}
}
