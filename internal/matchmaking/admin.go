// internal/matchmaking/admin.go
// Read-only review surface. Which matches an operator should see is the
// caller's concern; there is no privilege logic here.

package matchmaking

import (
    "context"
    "time"
)

// AdminMatch is one row of the admin review list: the match, its conversation
// outcome, and the computed liveness annotation.
type AdminMatch struct {
    MatchID            int64     `json:"match_id" db:"match_id"`
    UserAID            int64     `json:"user_a_id" db:"user_a_id"`
    UserAUsername      string    `json:"user_a_username" db:"user_a_username"`
    UserBID            int64     `json:"user_b_id" db:"user_b_id"`
    UserBUsername      string    `json:"user_b_username" db:"user_b_username"`
    IsRare             bool      `json:"is_rare" db:"is_rare"`
    ConversationStatus string    `json:"conversation_status" db:"conversation_status"`
    CreatedAt          time.Time `json:"created_at" db:"created_at"`
    ExpiresAt          time.Time `json:"expires_at" db:"expires_at"`
    IsExpired          bool      `json:"is_expired" db:"is_expired"`
}

func (r *postgresRepository) ListRecentMatches(ctx context.Context, now time.Time, limit int) ([]*AdminMatch, error) {
    var matches []*AdminMatch
    query := `
        SELECT m.id AS match_id,
               m.user_a_id, ua.username AS user_a_username,
               m.user_b_id, ub.username AS user_b_username,
               m.is_rare,
               c.status AS conversation_status,
               m.created_at, m.expires_at,
               m.expires_at <= $1 AS is_expired
        FROM matches m
        JOIN users ua ON m.user_a_id = ua.id
        JOIN users ub ON m.user_b_id = ub.id
        JOIN conversations c ON c.match_id = m.id
        ORDER BY m.created_at DESC
        LIMIT $2
    `

    err := r.db.SelectContext(ctx, &matches, query, now, limit)
    return matches, err
}
