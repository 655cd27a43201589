// internal/notifications/repository.go

package notifications

import (
    "context"
    "database/sql"

    "github.com/jmoiron/sqlx"
)

type Repository interface {
    // System events
    CreateEvent(ctx context.Context, event *SystemEvent) error
    GetUserEvents(ctx context.Context, userID int64, limit int) ([]*SystemEvent, error)
    MarkAsRead(ctx context.Context, eventID, userID int64) error
    DeleteEvent(ctx context.Context, eventID, userID int64) error

    // Conversation state for the projector
    GetConversationsAsInitiator(ctx context.Context, userID int64) ([]*ConversationState, error)
    GetConversationsAsReceiver(ctx context.Context, userID int64) ([]*ConversationState, error)
}

type postgresRepository struct {
    db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
    return &postgresRepository{db: db}
}

// CreateEvent stores a system event
func (r *postgresRepository) CreateEvent(ctx context.Context, event *SystemEvent) error {
    query := `
        INSERT INTO system_events (user_id, category, heading, body, is_read)
        VALUES ($1, $2, $3, $4, FALSE)
        RETURNING id, created_at
    `

    return r.db.QueryRowxContext(ctx, query,
        event.UserID,
        event.Category,
        event.Heading,
        event.Body,
    ).Scan(&event.ID, &event.CreatedAt)
}

// GetUserEvents returns a user's stored events, newest first. Events in the
// conversation-outcome category never enter the feed: the same fact is
// already derived from conversation state.
func (r *postgresRepository) GetUserEvents(ctx context.Context, userID int64, limit int) ([]*SystemEvent, error) {
    var events []*SystemEvent
    query := `
        SELECT id, user_id, category, heading, body, is_read, created_at
        FROM system_events
        WHERE user_id = $1 AND category <> $2
        ORDER BY created_at DESC
        LIMIT $3
    `

    err := r.db.SelectContext(ctx, &events, query, userID, CategoryConversationOutcome, limit)
    return events, err
}

// MarkAsRead marks a stored event as read
func (r *postgresRepository) MarkAsRead(ctx context.Context, eventID, userID int64) error {
    query := `
        UPDATE system_events
        SET is_read = TRUE
        WHERE id = $1 AND user_id = $2
    `

    result, err := r.db.ExecContext(ctx, query, eventID, userID)
    if err != nil {
        return err
    }

    rows, err := result.RowsAffected()
    if err != nil {
        return err
    }
    if rows == 0 {
        return ErrEventNotFound
    }
    return nil
}

// DeleteEvent removes a stored event
func (r *postgresRepository) DeleteEvent(ctx context.Context, eventID, userID int64) error {
    query := `
        DELETE FROM system_events
        WHERE id = $1 AND user_id = $2
    `

    result, err := r.db.ExecContext(ctx, query, eventID, userID)
    if err != nil {
        return err
    }

    rows, err := result.RowsAffected()
    if err != nil {
        return err
    }
    if rows == 0 {
        return ErrEventNotFound
    }
    return nil
}

func (r *postgresRepository) GetConversationsAsInitiator(ctx context.Context, userID int64) ([]*ConversationState, error) {
    var states []*ConversationState
    query := `
        SELECT c.id AS conversation_id, c.match_id, c.initiator_id, c.receiver_id,
               c.status, c.requested_at, c.accepted_at, c.created_at,
               u.display_name AS counterpart_name
        FROM conversations c
        JOIN users u ON u.id = c.receiver_id
        WHERE c.initiator_id = $1
        ORDER BY c.created_at DESC
    `

    err := r.db.SelectContext(ctx, &states, query, userID)
    if err == sql.ErrNoRows {
        return nil, nil
    }
    return states, err
}

func (r *postgresRepository) GetConversationsAsReceiver(ctx context.Context, userID int64) ([]*ConversationState, error) {
    var states []*ConversationState
    query := `
        SELECT c.id AS conversation_id, c.match_id, c.initiator_id, c.receiver_id,
               c.status, c.requested_at, c.accepted_at, c.created_at,
               u.display_name AS counterpart_name
        FROM conversations c
        JOIN users u ON u.id = c.initiator_id
        WHERE c.receiver_id = $1
        ORDER BY c.created_at DESC
    `

    err := r.db.SelectContext(ctx, &states, query, userID)
    if err == sql.ErrNoRows {
        return nil, nil
    }
    return states, err
}
