package helpers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"auction-engine/internal/auctionerrors"
	model "auction-engine/internal/models"
	"auction-engine/utils"

	"github.com/gin-gonic/gin"
)

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONError(c, http.StatusBadRequest, wrappedErr, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapErrorToHTTP maps domain/service errors to HTTP status code and message
func MapErrorToHTTP(err error) (int, string) {
	switch {
	case errors.Is(err, auctionerrors.ErrAuctionNotFound):
		return http.StatusNotFound, "auction not found"
	case errors.Is(err, auctionerrors.ErrInvalidSpec):
		return http.StatusBadRequest, "invalid auction spec"
	case errors.Is(err, auctionerrors.ErrInvalidBid):
		return http.StatusBadRequest, "invalid bid details"
	case errors.Is(err, auctionerrors.ErrBidTooLow):
		return http.StatusConflict, "bid amount too low"
	case errors.Is(err, auctionerrors.ErrInvalidTransition):
		return http.StatusConflict, "invalid auction state transition"
	case errors.Is(err, auctionerrors.ErrAuctionNotRunning):
		return http.StatusGone, "auction is not running"
	case errors.Is(err, auctionerrors.ErrContention):
		return http.StatusServiceUnavailable, "too much contention, retry the request"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}

// NewAuctionResponse converts an auction record to its transport shape
func NewAuctionResponse(a model.Auction) AuctionResponse {
	return AuctionResponse{
		AuctionID:    a.AuctionID,
		ProductRef:   a.ProductRef,
		StartPrice:   a.StartPrice,
		MinIncrement: a.MinIncrement,
		CurrentPrice: a.CurrentPrice,
		StartAt:      a.StartAt.UTC().Format(time.RFC3339),
		EndAt:        a.EndAt.UTC().Format(time.RFC3339),
		Status:       string(a.Status),
		WinnerRef:    a.WinnerRef,
	}
}

// NewBidResponse converts a bid record to its transport shape
func NewBidResponse(b model.Bid) BidResponse {
	return BidResponse{
		BidID:     b.BidID,
		AuctionID: b.AuctionID,
		BidderRef: b.BidderRef,
		Amount:    b.Amount,
		PlacedAt:  b.PlacedAt.UTC().Format(time.RFC3339),
	}
}
