package models

import "time"

// EventType names a realtime notification
type EventType string

const (
	EventAuctionOpened EventType = "auction_opened"
	EventBidAccepted   EventType = "bid_accepted"
	EventAuctionClosed EventType = "auction_closed"
	EventRentSettled   EventType = "rent_settled"
)

// Event is broadcast to realtime subscribers. Bid events never carry the bidder.
type Event struct {
	Type      EventType `json:"type"`
	AuctionID int64     `json:"auction_id,omitempty"`
	RentID    int64     `json:"rent_id,omitempty"`
	UserID    string    `json:"user_id,omitempty"`
	Value     *int64    `json:"value,omitempty"`
	Time      time.Time `json:"time"`
}

// EventPublisher receives domain events. Publish must not block.
type EventPublisher interface {
	Publish(event Event)
}

// NopPublisher discards every event
type NopPublisher struct{}

func (NopPublisher) Publish(Event) {}
