package matchmaking

import (
    "time"
)

// Match is a time-boxed pairing between two users. UserA is always the user
// who requested the allocation.
type Match struct {
    ID        int64     `json:"id" db:"id"`
    UserAID   int64     `json:"user_a_id" db:"user_a_id"`
    UserBID   int64     `json:"user_b_id" db:"user_b_id"`
    IsRare    bool      `json:"is_rare" db:"is_rare"`
    CreatedAt time.Time `json:"created_at" db:"created_at"`
    ExpiresAt time.Time `json:"expires_at" db:"expires_at"`

    // Joined fields
    Counterpart *UserInfo `json:"counterpart,omitempty"`
}

// CounterpartID returns the other participant from the viewer's perspective
func (m *Match) CounterpartID(viewerID int64) int64 {
    if m.UserAID == viewerID {
        return m.UserBID
    }
    return m.UserAID
}

// UserInfo is the public projection of a user from the profile store
type UserInfo struct {
    ID          int64  `json:"id" db:"id"`
    Username    string `json:"username" db:"username"`
    DisplayName string `json:"display_name" db:"display_name"`
    Gender      string `json:"gender" db:"gender"`
}

// UserRecord carries the eligibility-relevant fields of a user. The profile
// store owns these rows; this package reads them and writes last_match_at only.
type UserRecord struct {
    UserInfo
    IsMatchmaking bool       `db:"is_matchmaking"`
    LastMatchAt   *time.Time `db:"last_match_at"`
}

// Eligibility statuses
const (
    StatusEligible = "eligible"
    StatusMatched  = "matched"
    StatusCooldown = "cooldown"
)

// EligibilityResult is the response of an eligibility check
type EligibilityResult struct {
    Status string `json:"status"`

    // Set when Status == "matched"
    MatchID     *int64     `json:"match_id,omitempty"`
    Counterpart *UserInfo  `json:"counterpart,omitempty"`
    ExpiresAt   *time.Time `json:"expires_at,omitempty"`

    // Set when Status == "cooldown"
    RetryAfterSeconds *int64 `json:"retry_after_seconds,omitempty"`
}

// AllocationResult is the response of a successful allocation
type AllocationResult struct {
    MatchID     int64     `json:"match_id"`
    Counterpart *UserInfo `json:"counterpart"`
    ExpiresAt   time.Time `json:"expires_at"`
    IsRare      bool      `json:"is_rare"`
}
