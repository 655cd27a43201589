package conversation

import (
    "context"
    "database/sql"
    "time"

    "github.com/jmoiron/sqlx"
)

type Repository interface {
    GetMatch(ctx context.Context, matchID int64) (*MatchInfo, error)
    GetByMatchID(ctx context.Context, matchID int64) (*Conversation, error)

    // Transitions. Each is a single conditional UPDATE keyed on the expected
    // current status; false means the row was not in that status anymore.
    MarkRequested(ctx context.Context, conversationID int64, now time.Time) (bool, error)
    MarkAccepted(ctx context.Context, conversationID int64, now time.Time) (bool, error)
    MarkRejected(ctx context.Context, conversationID int64) (bool, error)

    // Current view
    GetLatestMatchForUser(ctx context.Context, userID int64) (*MatchInfo, error)
    GetCounterpartInfo(ctx context.Context, userID int64) (*CounterpartInfo, error)
}

type postgresRepository struct {
    db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
    return &postgresRepository{db: db}
}

func (r *postgresRepository) GetMatch(ctx context.Context, matchID int64) (*MatchInfo, error) {
    var match MatchInfo
    query := `
        SELECT id, user_a_id, user_b_id, is_rare, created_at, expires_at
        FROM matches
        WHERE id = $1
    `

    err := r.db.GetContext(ctx, &match, query, matchID)
    if err == sql.ErrNoRows {
        return nil, ErrMatchNotFound
    }

    return &match, err
}

func (r *postgresRepository) GetByMatchID(ctx context.Context, matchID int64) (*Conversation, error) {
    var conv Conversation
    query := `
        SELECT id, match_id, initiator_id, receiver_id, status, requested_at, accepted_at, created_at
        FROM conversations
        WHERE match_id = $1
    `

    err := r.db.GetContext(ctx, &conv, query, matchID)
    if err == sql.ErrNoRows {
        return nil, ErrConversationNotFound
    }

    return &conv, err
}

func (r *postgresRepository) MarkRequested(ctx context.Context, conversationID int64, now time.Time) (bool, error) {
    query := `
        UPDATE conversations
        SET status = 'requested', requested_at = $2
        WHERE id = $1 AND status = 'pending'
    `

    result, err := r.db.ExecContext(ctx, query, conversationID, now)
    if err != nil {
        return false, err
    }

    rows, err := result.RowsAffected()
    return rows == 1, err
}

func (r *postgresRepository) MarkAccepted(ctx context.Context, conversationID int64, now time.Time) (bool, error) {
    query := `
        UPDATE conversations
        SET status = 'accepted', accepted_at = $2
        WHERE id = $1 AND status = 'requested'
    `

    result, err := r.db.ExecContext(ctx, query, conversationID, now)
    if err != nil {
        return false, err
    }

    rows, err := result.RowsAffected()
    return rows == 1, err
}

func (r *postgresRepository) MarkRejected(ctx context.Context, conversationID int64) (bool, error) {
    query := `
        UPDATE conversations
        SET status = 'rejected'
        WHERE id = $1 AND status = 'requested'
    `

    result, err := r.db.ExecContext(ctx, query, conversationID)
    if err != nil {
        return false, err
    }

    rows, err := result.RowsAffected()
    return rows == 1, err
}

func (r *postgresRepository) GetLatestMatchForUser(ctx context.Context, userID int64) (*MatchInfo, error) {
    var match MatchInfo
    query := `
        SELECT id, user_a_id, user_b_id, is_rare, created_at, expires_at
        FROM matches
        WHERE user_a_id = $1 OR user_b_id = $1
        ORDER BY created_at DESC
        LIMIT 1
    `

    err := r.db.GetContext(ctx, &match, query, userID)
    if err == sql.ErrNoRows {
        return nil, ErrMatchNotFound
    }

    return &match, err
}

func (r *postgresRepository) GetCounterpartInfo(ctx context.Context, userID int64) (*CounterpartInfo, error) {
    var info CounterpartInfo
    query := `
        SELECT id, username, display_name, gender
        FROM users
        WHERE id = $1
    `

    err := r.db.GetContext(ctx, &info, query, userID)
    if err == sql.ErrNoRows {
        return nil, ErrMatchNotFound
    }

    return &info, err
}
