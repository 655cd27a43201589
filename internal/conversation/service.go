// internal/conversation/service.go
// State machine for the conversation attached to a match:
// pending -> requested -> accepted | rejected. Only the initiator may
// request, only the receiver may accept or reject, and an expired match
// freezes the conversation without rewriting its stored status.
// There is no withdrawal transition: once requested, the only exits are the
// receiver's decision or expiry.

package conversation

import (
    "context"
    "errors"
    "log"
    "time"
)

var (
    ErrMatchNotFound        = errors.New("match not found")
    ErrConversationNotFound = errors.New("conversation not found")
    ErrMatchExpired         = errors.New("match has expired")
    ErrForbidden            = errors.New("not permitted to perform this action")
    ErrInvalidTransition    = errors.New("conversation is not in a state that allows this")
    ErrConflict             = errors.New("conversation state changed, please re-fetch")
)

type Service interface {
    Request(ctx context.Context, matchID, userID int64) (*Projection, error)
    Accept(ctx context.Context, matchID, userID int64) (*Projection, error)
    Reject(ctx context.Context, matchID, userID int64) (*Projection, error)
    GetStatus(ctx context.Context, matchID, userID int64) (*Projection, error)
    GetCurrent(ctx context.Context, userID int64) (*CurrentView, error)
}

type service struct {
    repo Repository
}

func NewService(repo Repository) Service {
    return &service{repo: repo}
}

// load fetches the match/conversation pair and applies the common pre-checks:
// the match must exist, must not be expired, and the caller must be a
// participant. Expiry is checked before membership so that a stale client
// gets the clearer "expired" answer.
func (s *service) load(ctx context.Context, matchID, userID int64, now time.Time) (*MatchInfo, *Conversation, error) {
    match, err := s.repo.GetMatch(ctx, matchID)
    if err != nil {
        return nil, nil, err
    }

    conv, err := s.repo.GetByMatchID(ctx, matchID)
    if err != nil {
        return nil, nil, err
    }

    if !now.Before(match.ExpiresAt) {
        return nil, nil, ErrMatchExpired
    }

    if !conv.IsParticipant(userID) {
        return nil, nil, ErrForbidden
    }

    return match, conv, nil
}

// Request moves pending -> requested. Initiator only. Calling again while
// already requested is a conflict, not a silent success, so the client can
// tell "already sent" apart from "sent just now".
func (s *service) Request(ctx context.Context, matchID, userID int64) (*Projection, error) {
    now := time.Now().UTC()

    match, conv, err := s.load(ctx, matchID, userID, now)
    if err != nil {
        return nil, err
    }

    if userID != conv.InitiatorID {
        RecordTransition("request", "forbidden")
        return nil, ErrForbidden
    }

    switch conv.Status {
    case StatusPending:
        // fall through to the conditional update
    case StatusRequested:
        RecordTransition("request", "conflict")
        return nil, ErrConflict
    default:
        RecordTransition("request", "invalid")
        return nil, ErrInvalidTransition
    }

    ok, err := s.repo.MarkRequested(ctx, conv.ID, now)
    if err != nil {
        return nil, err
    }
    if !ok {
        // Lost the race against a concurrent request
        RecordTransition("request", "conflict")
        return nil, ErrConflict
    }

    RecordTransition("request", "success")
    log.Printf("conversation %d: request sent by user %d (match %d)", conv.ID, userID, matchID)

    conv.Status = StatusRequested
    conv.RequestedAt = &now
    return conv.project(match, now), nil
}

// Accept moves requested -> accepted. Receiver only.
func (s *service) Accept(ctx context.Context, matchID, userID int64) (*Projection, error) {
    now := time.Now().UTC()

    match, conv, err := s.load(ctx, matchID, userID, now)
    if err != nil {
        return nil, err
    }

    if userID != conv.ReceiverID {
        RecordTransition("accept", "forbidden")
        return nil, ErrForbidden
    }

    switch conv.Status {
    case StatusRequested:
        // fall through to the conditional update
    case StatusPending:
        RecordTransition("accept", "invalid")
        return nil, ErrInvalidTransition
    default:
        // Already decided, by this call's loser or an earlier one
        RecordTransition("accept", "conflict")
        return nil, ErrConflict
    }

    ok, err := s.repo.MarkAccepted(ctx, conv.ID, now)
    if err != nil {
        return nil, err
    }
    if !ok {
        RecordTransition("accept", "conflict")
        return nil, ErrConflict
    }

    RecordTransition("accept", "success")
    log.Printf("conversation %d: accepted by user %d (match %d)", conv.ID, userID, matchID)

    conv.Status = StatusAccepted
    conv.AcceptedAt = &now
    return conv.project(match, now), nil
}

// Reject moves requested -> rejected. Receiver only. No timestamp is stored
// for rejection; readers fall back to requested_at / created_at.
func (s *service) Reject(ctx context.Context, matchID, userID int64) (*Projection, error) {
    now := time.Now().UTC()

    match, conv, err := s.load(ctx, matchID, userID, now)
    if err != nil {
        return nil, err
    }

    if userID != conv.ReceiverID {
        RecordTransition("reject", "forbidden")
        return nil, ErrForbidden
    }

    switch conv.Status {
    case StatusRequested:
        // fall through to the conditional update
    case StatusPending:
        RecordTransition("reject", "invalid")
        return nil, ErrInvalidTransition
    default:
        RecordTransition("reject", "conflict")
        return nil, ErrConflict
    }

    ok, err := s.repo.MarkRejected(ctx, conv.ID)
    if err != nil {
        return nil, err
    }
    if !ok {
        RecordTransition("reject", "conflict")
        return nil, ErrConflict
    }

    RecordTransition("reject", "success")
    log.Printf("conversation %d: rejected by user %d (match %d)", conv.ID, userID, matchID)

    conv.Status = StatusRejected
    return conv.project(match, now), nil
}

// GetStatus returns the conversation projection for a participant. Unlike
// the transitions, reads work on expired matches: the projection just carries
// is_expired = true.
func (s *service) GetStatus(ctx context.Context, matchID, userID int64) (*Projection, error) {
    now := time.Now().UTC()

    match, err := s.repo.GetMatch(ctx, matchID)
    if err != nil {
        return nil, err
    }

    conv, err := s.repo.GetByMatchID(ctx, matchID)
    if err != nil {
        return nil, err
    }

    if !conv.IsParticipant(userID) {
        return nil, ErrForbidden
    }

    return conv.project(match, now), nil
}

// GetCurrent returns the caller's latest match/conversation pair with the
// counterpart resolved, expired or not
func (s *service) GetCurrent(ctx context.Context, userID int64) (*CurrentView, error) {
    now := time.Now().UTC()

    match, err := s.repo.GetLatestMatchForUser(ctx, userID)
    if err != nil {
        return nil, err
    }

    conv, err := s.repo.GetByMatchID(ctx, match.ID)
    if err != nil {
        return nil, err
    }

    counterpartID := match.UserAID
    if counterpartID == userID {
        counterpartID = match.UserBID
    }

    counterpart, err := s.repo.GetCounterpartInfo(ctx, counterpartID)
    if err != nil {
        return nil, err
    }

    view := &CurrentView{
        Conversation: conv.project(match, now),
        Counterpart:  counterpart,
        IsInitiator:  conv.InitiatorID == userID,
    }
    view.Match.ID = match.ID
    view.Match.IsRare = match.IsRare
    view.Match.CreatedAt = match.CreatedAt
    view.Match.ExpiresAt = match.ExpiresAt
    view.Match.IsExpired = !now.Before(match.ExpiresAt)

    return view, nil
}
