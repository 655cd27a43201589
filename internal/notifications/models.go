// internal/notifications/models.go

package notifications

import (
    "time"
)

// EventCategory is a typed tag on stored system events. The feed filter keys
// on it, never on heading text.
type EventCategory string

const (
    CategoryMatchFound   EventCategory = "match_found"
    CategoryAnnouncement EventCategory = "announcement"

    // CategoryConversationOutcome marks events written by legacy paths that
    // duplicate a derived accepted/rejected item. They are always excluded
    // from the merged feed.
    CategoryConversationOutcome EventCategory = "conversation_outcome"
)

// SystemEvent is a stored notification record
type SystemEvent struct {
    ID        int64         `json:"id" db:"id"`
    UserID    int64         `json:"user_id" db:"user_id"`
    Category  EventCategory `json:"category" db:"category"`
    Heading   string        `json:"heading" db:"heading"`
    Body      string        `json:"body" db:"body"`
    IsRead    bool          `json:"is_read" db:"is_read"`
    CreatedAt time.Time     `json:"created_at" db:"created_at"`
}

// ItemType classifies a feed item
type ItemType string

const (
    ItemSystemEvent     ItemType = "system_event"
    ItemRequestReceived ItemType = "request_received"
    ItemAccepted        ItemType = "accepted"
    ItemRejected        ItemType = "rejected"
    ItemRejectedByMe    ItemType = "rejected_by_me"
)

// Item is one entry of the notification feed. Items are computed fresh on
// every read and never persisted; the ID is a stable derived key for list
// rendering, not a storage identity.
type Item struct {
    ID        string    `json:"id"`
    Type      ItemType  `json:"type"`
    Title     string    `json:"title"`
    Body      string    `json:"body"`
    Timestamp time.Time `json:"timestamp"`

    // Set on conversation-derived items
    MatchID        *int64  `json:"match_id,omitempty"`
    ConversationID *int64  `json:"conversation_id,omitempty"`
    Status         *string `json:"status,omitempty"`

    // Actionable items carry accept/reject affordances on the client
    Actionable bool `json:"actionable,omitempty"`

    // Set on stored system events, for mark-read / delete
    EventID *int64 `json:"event_id,omitempty"`
    IsRead  *bool  `json:"is_read,omitempty"`
}

// ConversationState is the read-side slice of a conversation the projector
// consumes, with the counterpart's display name resolved
type ConversationState struct {
    ConversationID  int64      `db:"conversation_id"`
    MatchID         int64      `db:"match_id"`
    InitiatorID     int64      `db:"initiator_id"`
    ReceiverID      int64      `db:"receiver_id"`
    Status          string     `db:"status"`
    RequestedAt     *time.Time `db:"requested_at"`
    AcceptedAt      *time.Time `db:"accepted_at"`
    CreatedAt       time.Time  `db:"created_at"`
    CounterpartName string     `db:"counterpart_name"`
}
