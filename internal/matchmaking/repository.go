package matchmaking

import (
    "context"
    "database/sql"
    "fmt"
    "time"

    "github.com/jmoiron/sqlx"
)

type Repository interface {
    // Users (read-only except last_match_at)
    GetUser(ctx context.Context, userID int64) (*UserRecord, error)
    GetUserInfo(ctx context.Context, userID int64) (*UserInfo, error)

    // Matches
    GetActiveMatch(ctx context.Context, userID int64, now time.Time) (*Match, error)
    AllocateMatch(ctx context.Context, userID int64, now time.Time, ttl, cooldown time.Duration) (*Match, error)

    // Admin
    ListRecentMatches(ctx context.Context, now time.Time, limit int) ([]*AdminMatch, error)
}

type postgresRepository struct {
    db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
    return &postgresRepository{db: db}
}

func (r *postgresRepository) GetUser(ctx context.Context, userID int64) (*UserRecord, error) {
    var user UserRecord
    query := `
        SELECT id, username, display_name, gender, is_matchmaking, last_match_at
        FROM users
        WHERE id = $1
    `

    err := r.db.GetContext(ctx, &user, query, userID)
    if err == sql.ErrNoRows {
        return nil, ErrUserNotFound
    }

    return &user, err
}

func (r *postgresRepository) GetUserInfo(ctx context.Context, userID int64) (*UserInfo, error) {
    var info UserInfo
    query := `
        SELECT id, username, display_name, gender
        FROM users
        WHERE id = $1
    `

    err := r.db.GetContext(ctx, &info, query, userID)
    if err == sql.ErrNoRows {
        return nil, ErrUserNotFound
    }

    return &info, err
}

func (r *postgresRepository) GetActiveMatch(ctx context.Context, userID int64, now time.Time) (*Match, error) {
    var match Match
    query := `
        SELECT id, user_a_id, user_b_id, is_rare, created_at, expires_at
        FROM matches
        WHERE (user_a_id = $1 OR user_b_id = $1) AND expires_at > $2
        ORDER BY created_at DESC
        LIMIT 1
    `

    err := r.db.GetContext(ctx, &match, query, userID, now)
    if err == sql.ErrNoRows {
        return nil, nil
    }

    return &match, err
}

// AllocateMatch creates a match and its pending conversation in a single
// transaction. The caller's user row is locked first, so concurrent
// allocations by the same user serialize here and the loser fails the
// re-check. The candidate row is locked with SKIP LOCKED, so two concurrent
// allocators can never claim the same counterpart.
func (r *postgresRepository) AllocateMatch(ctx context.Context, userID int64, now time.Time, ttl, cooldown time.Duration) (*Match, error) {
    tx, err := r.db.BeginTxx(ctx, nil)
    if err != nil {
        return nil, fmt.Errorf("failed to begin allocation: %w", err)
    }
    defer tx.Rollback()

    // Lock and re-read the caller. This is the authoritative re-check that
    // closes the gap between the eligibility check and the allocation.
    var caller UserRecord
    err = tx.GetContext(ctx, &caller, `
        SELECT id, username, display_name, gender, is_matchmaking, last_match_at
        FROM users
        WHERE id = $1
        FOR UPDATE
    `, userID)
    if err == sql.ErrNoRows {
        return nil, ErrUserNotFound
    }
    if err != nil {
        return nil, err
    }

    if !caller.IsMatchmaking {
        return nil, ErrNotOptedIn
    }

    var active int
    err = tx.GetContext(ctx, &active, `
        SELECT COUNT(1) FROM matches
        WHERE (user_a_id = $1 OR user_b_id = $1) AND expires_at > $2
    `, userID, now)
    if err != nil {
        return nil, err
    }
    if active > 0 {
        return nil, ErrAlreadyMatched
    }

    if caller.LastMatchAt != nil {
        since := now.Sub(*caller.LastMatchAt)
        if since < cooldown {
            return nil, &CooldownError{RetryAfter: cooldown - since}
        }
    }

    // Pick a counterpart uniformly at random from the eligible pool. The
    // selection has no category term: the rare-pair flag is a label, never a
    // selection bias. SKIP LOCKED drops candidates another allocator is
    // claiming right now.
    var candidate UserInfo
    err = tx.GetContext(ctx, &candidate, `
        SELECT u.id, u.username, u.display_name, u.gender
        FROM users u
        WHERE u.id <> $1
          AND u.is_matchmaking = TRUE
          AND NOT EXISTS (
              SELECT 1 FROM matches m
              WHERE (m.user_a_id = u.id OR m.user_b_id = u.id) AND m.expires_at > $2
          )
        ORDER BY random()
        LIMIT 1
        FOR UPDATE OF u SKIP LOCKED
    `, userID, now)
    if err == sql.ErrNoRows {
        // No counterpart available. The attempt is still consumed so that a
        // user cannot hammer the allocator while the pool is empty.
        if _, terr := tx.ExecContext(ctx, `UPDATE users SET last_match_at = $2 WHERE id = $1`, userID, now); terr != nil {
            return nil, terr
        }
        if terr := tx.Commit(); terr != nil {
            return nil, terr
        }
        return nil, ErrNoCandidates
    }
    if err != nil {
        return nil, err
    }

    match := &Match{
        UserAID:     userID,
        UserBID:     candidate.ID,
        IsRare:      caller.Gender == candidate.Gender,
        CreatedAt:   now,
        ExpiresAt:   now.Add(ttl),
        Counterpart: &candidate,
    }

    err = tx.QueryRowxContext(ctx, `
        INSERT INTO matches (user_a_id, user_b_id, is_rare, created_at, expires_at)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id
    `, match.UserAID, match.UserBID, match.IsRare, match.CreatedAt, match.ExpiresAt).Scan(&match.ID)
    if err != nil {
        return nil, err
    }

    // A match implies a conversation: create it in the same transaction so no
    // reader ever observes a match without one.
    _, err = tx.ExecContext(ctx, `
        INSERT INTO conversations (match_id, initiator_id, receiver_id, status, created_at)
        VALUES ($1, $2, $3, 'pending', $4)
    `, match.ID, userID, candidate.ID, now)
    if err != nil {
        return nil, err
    }

    _, err = tx.ExecContext(ctx, `
        UPDATE users SET last_match_at = $2 WHERE id = $1 OR id = $3
    `, userID, now, candidate.ID)
    if err != nil {
        return nil, err
    }

    if err := tx.Commit(); err != nil {
        return nil, fmt.Errorf("failed to commit allocation: %w", err)
    }

    return match, nil
}
