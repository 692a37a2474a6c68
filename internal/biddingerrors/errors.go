package biddingerrors

import "errors"

// Repository-level errors
var (
	ErrUnknownAuction      = errors.New("auction not found")
	ErrUnknownUser         = errors.New("user not found")
	ErrUnknownVideo        = errors.New("video not found")
	ErrUnknownRent         = errors.New("rent not found")
	ErrVideoAlreadyExists  = errors.New("video already exists")
	ErrPersistenceConflict = errors.New("concurrent modification, retry later")
)

// Business logic errors
var (
	ErrInvalidBid        = errors.New("invalid bid")
	ErrInvalidVideo      = errors.New("invalid video")
	ErrAuctionExpired    = errors.New("auction expired")
	ErrBidTooLow         = errors.New("bid amount too low")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNoAvailableVideo  = errors.New("no available video to auction")
)
