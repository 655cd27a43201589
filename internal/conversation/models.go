package conversation

import (
    "time"
)

// Status is the stored negotiation state. Expiry of the parent match never
// rewrites it: liveness is computed at read time (see Projection.IsExpired),
// so "what the participants decided" and "is this still usable" stay
// independently queryable.
type Status string

const (
    StatusPending   Status = "pending"
    StatusRequested Status = "requested"
    StatusAccepted  Status = "accepted"
    StatusRejected  Status = "rejected"
)

// Terminal reports whether no further transition can leave this status
func (s Status) Terminal() bool {
    return s == StatusAccepted || s == StatusRejected
}

// Conversation is the negotiation record attached one-to-one to a match.
// It is created in the pending state together with the match, so a match
// always implies a conversation.
type Conversation struct {
    ID          int64      `json:"id" db:"id"`
    MatchID     int64      `json:"match_id" db:"match_id"`
    InitiatorID int64      `json:"initiator_id" db:"initiator_id"`
    ReceiverID  int64      `json:"receiver_id" db:"receiver_id"`
    Status      Status     `json:"status" db:"status"`
    RequestedAt *time.Time `json:"requested_at,omitempty" db:"requested_at"`
    AcceptedAt  *time.Time `json:"accepted_at,omitempty" db:"accepted_at"`
    CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

// IsParticipant reports whether the user is one of the two parties
func (c *Conversation) IsParticipant(userID int64) bool {
    return c.InitiatorID == userID || c.ReceiverID == userID
}

// MatchInfo is the slice of the match record the state machine needs
type MatchInfo struct {
    ID        int64     `db:"id"`
    UserAID   int64     `db:"user_a_id"`
    UserBID   int64     `db:"user_b_id"`
    IsRare    bool      `db:"is_rare"`
    CreatedAt time.Time `db:"created_at"`
    ExpiresAt time.Time `db:"expires_at"`
}

// Projection is the read view of a conversation with computed liveness
type Projection struct {
    ID          int64      `json:"id"`
    MatchID     int64      `json:"match_id"`
    InitiatorID int64      `json:"initiator_id"`
    ReceiverID  int64      `json:"receiver_id"`
    Status      Status     `json:"status"`
    RequestedAt *time.Time `json:"requested_at,omitempty"`
    AcceptedAt  *time.Time `json:"accepted_at,omitempty"`
    CreatedAt   time.Time  `json:"created_at"`
    IsExpired   bool       `json:"is_expired"`
}

func (c *Conversation) project(match *MatchInfo, now time.Time) *Projection {
    return &Projection{
        ID:          c.ID,
        MatchID:     c.MatchID,
        InitiatorID: c.InitiatorID,
        ReceiverID:  c.ReceiverID,
        Status:      c.Status,
        RequestedAt: c.RequestedAt,
        AcceptedAt:  c.AcceptedAt,
        CreatedAt:   c.CreatedAt,
        IsExpired:   !now.Before(match.ExpiresAt),
    }
}

// CounterpartInfo is the public projection of the other participant,
// embedded in the current-conversation view
type CounterpartInfo struct {
    ID          int64  `json:"id" db:"id"`
    Username    string `json:"username" db:"username"`
    DisplayName string `json:"display_name" db:"display_name"`
    Gender      string `json:"gender" db:"gender"`
}

// CurrentView is the caller's latest match/conversation pair with the
// counterpart resolved, for the main conversation screen
type CurrentView struct {
    Match struct {
        ID        int64     `json:"id"`
        IsRare    bool      `json:"is_rare"`
        CreatedAt time.Time `json:"created_at"`
        ExpiresAt time.Time `json:"expires_at"`
        IsExpired bool      `json:"is_expired"`
    } `json:"match"`
    Conversation *Projection      `json:"conversation"`
    Counterpart  *CounterpartInfo `json:"counterpart"`
    IsInitiator  bool             `json:"is_initiator"`
}
