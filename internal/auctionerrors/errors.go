package auctionerrors

import "errors"

// Store-level errors
var (
	ErrAuctionNotFound = errors.New("auction not found")
	ErrDuplicateID     = errors.New("auction id already exists")
	ErrPriceConflict   = errors.New("current price changed since read")
	ErrNoBids          = errors.New("no bids found for auction")
)

// business logic errors
var (
	ErrInvalidSpec       = errors.New("invalid auction spec")
	ErrInvalidBid        = errors.New("invalid bid")
	ErrBidTooLow         = errors.New("bid amount too low")
	ErrAuctionNotRunning = errors.New("auction is not running")
	ErrContention        = errors.New("too much bid contention, retry the request")
	ErrInvalidTransition = errors.New("invalid auction state transition")
)
