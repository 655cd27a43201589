// internal/matchmaking/service.go

package matchmaking

import (
    "context"
    "errors"
    "fmt"
    "log"
    "time"
)

var (
    ErrUserNotFound   = errors.New("user not found")
    ErrNotOptedIn     = errors.New("user has not opted in to matchmaking")
    ErrAlreadyMatched = errors.New("user already has an active match")
    ErrNoCandidates   = errors.New("no eligible counterpart available")
    ErrConflict       = errors.New("allocation conflict, please retry")
)

// CooldownError reports how long the caller has to wait before they become
// eligible again.
type CooldownError struct {
    RetryAfter time.Duration
}

func (e *CooldownError) Error() string {
    return fmt.Sprintf("matchmaking cooldown active, retry in %s", e.RetryAfter.Round(time.Second))
}

// EventRecorder is the notification collaborator: the allocator records a
// match-found event for each participant.
type EventRecorder interface {
    RecordMatchFound(ctx context.Context, userID int64, counterpartName string) error
}

type Service interface {
    CheckEligibility(ctx context.Context, userID int64) (*EligibilityResult, error)
    AllocateMatch(ctx context.Context, userID int64) (*AllocationResult, error)
    ListRecentMatches(ctx context.Context, limit int) ([]*AdminMatch, error)
}

type service struct {
    repo     Repository
    cache    Cache
    events   EventRecorder
    ttl      time.Duration
    cooldown time.Duration
}

func NewService(repo Repository, cache Cache, events EventRecorder, ttl, cooldown time.Duration) Service {
    return &service{
        repo:     repo,
        cache:    cache,
        events:   events,
        ttl:      ttl,
        cooldown: cooldown,
    }
}

// CheckEligibility is side-effect free and idempotent: an active match wins
// over the cooldown, the cooldown is anchored to last_match_at, and a user who
// has never matched is immediately eligible.
func (s *service) CheckEligibility(ctx context.Context, userID int64) (*EligibilityResult, error) {
    now := time.Now().UTC()

    match, err := s.repo.GetActiveMatch(ctx, userID, now)
    if err != nil {
        return nil, err
    }
    if match != nil {
        counterpart, err := s.counterpartInfo(ctx, match.CounterpartID(userID))
        if err != nil {
            return nil, err
        }
        RecordEligibilityCheck(StatusMatched)
        return &EligibilityResult{
            Status:      StatusMatched,
            MatchID:     &match.ID,
            Counterpart: counterpart,
            ExpiresAt:   &match.ExpiresAt,
        }, nil
    }

    user, err := s.repo.GetUser(ctx, userID)
    if err != nil {
        return nil, err
    }

    if user.LastMatchAt != nil {
        since := now.Sub(*user.LastMatchAt)
        if since < s.cooldown {
            retryAfter := int64((s.cooldown - since).Seconds())
            RecordEligibilityCheck(StatusCooldown)
            return &EligibilityResult{
                Status:            StatusCooldown,
                RetryAfterSeconds: &retryAfter,
            }, nil
        }
    }

    RecordEligibilityCheck(StatusEligible)
    return &EligibilityResult{Status: StatusEligible}, nil
}

// AllocateMatch pairs the caller with a random eligible counterpart and
// creates the match plus its pending conversation. The repository transaction
// is the authoritative eligibility re-check; the Redis guard only fails
// obvious double-submits fast.
func (s *service) AllocateMatch(ctx context.Context, userID int64) (*AllocationResult, error) {
    acquired, err := s.cache.AcquireAllocGuard(ctx, userID)
    if err != nil {
        // Redis being down must not block matchmaking
        log.Printf("matchmaking: allocation guard unavailable: %v", err)
    } else if !acquired {
        RecordAllocation("conflict")
        return nil, ErrConflict
    } else {
        defer s.cache.ReleaseAllocGuard(ctx, userID)
    }

    now := time.Now().UTC()

    match, err := s.repo.AllocateMatch(ctx, userID, now, s.ttl, s.cooldown)
    if err != nil {
        var cooldownErr *CooldownError
        switch {
        case errors.Is(err, ErrAlreadyMatched):
            RecordAllocation("already_matched")
        case errors.Is(err, ErrNoCandidates):
            RecordAllocation("no_candidates")
        case errors.As(err, &cooldownErr):
            RecordAllocation("cooldown")
        default:
            RecordAllocation("error")
        }
        return nil, err
    }

    RecordAllocation("success")
    if match.IsRare {
        RecordRareMatch()
    }
    log.Printf("matchmaking: user %d matched with user %d (match %d, rare=%t, expires %s)",
        match.UserAID, match.UserBID, match.ID, match.IsRare, match.ExpiresAt.Format(time.RFC3339))

    s.cache.SetUserInfo(ctx, match.Counterpart)

    // Both participants get a match-found event. Failures are logged, not
    // surfaced: the match row already exists and the feed is recomputed on
    // every read anyway.
    caller, err := s.repo.GetUserInfo(ctx, userID)
    if err == nil {
        if err := s.events.RecordMatchFound(ctx, match.UserBID, caller.DisplayName); err != nil {
            log.Printf("matchmaking: failed to record match event for user %d: %v", match.UserBID, err)
        }
    }
    if err := s.events.RecordMatchFound(ctx, userID, match.Counterpart.DisplayName); err != nil {
        log.Printf("matchmaking: failed to record match event for user %d: %v", userID, err)
    }

    return &AllocationResult{
        MatchID:     match.ID,
        Counterpart: match.Counterpart,
        ExpiresAt:   match.ExpiresAt,
        IsRare:      match.IsRare,
    }, nil
}

func (s *service) ListRecentMatches(ctx context.Context, limit int) ([]*AdminMatch, error) {
    return s.repo.ListRecentMatches(ctx, time.Now().UTC(), limit)
}

// counterpartInfo resolves a user's public projection through the cache
func (s *service) counterpartInfo(ctx context.Context, userID int64) (*UserInfo, error) {
    if info, ok := s.cache.GetUserInfo(ctx, userID); ok {
        return info, nil
    }

    info, err := s.repo.GetUserInfo(ctx, userID)
    if err != nil {
        return nil, err
    }

    s.cache.SetUserInfo(ctx, info)
    return info, nil
}
