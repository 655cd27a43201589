package matchmaking_test

import (
    "context"
    "errors"
    "testing"
    "time"

    "github.com/heartlinkapp/heartlink-backend/internal/matchmaking"
)

type fakeRepository struct {
    user     *matchmaking.UserRecord
    userErr  error
    active   *matchmaking.Match
    infos    map[int64]*matchmaking.UserInfo
    allocRes *matchmaking.Match
    allocErr error

    allocCalls int
}

func (f *fakeRepository) GetUser(ctx context.Context, userID int64) (*matchmaking.UserRecord, error) {
    if f.userErr != nil {
        return nil, f.userErr
    }
    return f.user, nil
}

func (f *fakeRepository) GetUserInfo(ctx context.Context, userID int64) (*matchmaking.UserInfo, error) {
    info, ok := f.infos[userID]
    if !ok {
        return nil, matchmaking.ErrUserNotFound
    }
    return info, nil
}

func (f *fakeRepository) GetActiveMatch(ctx context.Context, userID int64, now time.Time) (*matchmaking.Match, error) {
    return f.active, nil
}

func (f *fakeRepository) AllocateMatch(ctx context.Context, userID int64, now time.Time, ttl, cooldown time.Duration) (*matchmaking.Match, error) {
    f.allocCalls++
    if f.allocErr != nil {
        return nil, f.allocErr
    }
    return f.allocRes, nil
}

func (f *fakeRepository) ListRecentMatches(ctx context.Context, now time.Time, limit int) ([]*matchmaking.AdminMatch, error) {
    return nil, nil
}

type fakeCache struct {
    acquired  bool
    guardErr  error
    released  int
    stored    map[int64]*matchmaking.UserInfo
}

func newFakeCache(acquired bool) *fakeCache {
    return &fakeCache{acquired: acquired, stored: make(map[int64]*matchmaking.UserInfo)}
}

func (f *fakeCache) AcquireAllocGuard(ctx context.Context, userID int64) (bool, error) {
    return f.acquired, f.guardErr
}

func (f *fakeCache) ReleaseAllocGuard(ctx context.Context, userID int64) error {
    f.released++
    return nil
}

func (f *fakeCache) GetUserInfo(ctx context.Context, userID int64) (*matchmaking.UserInfo, bool) {
    info, ok := f.stored[userID]
    return info, ok
}

func (f *fakeCache) SetUserInfo(ctx context.Context, info *matchmaking.UserInfo) {
    f.stored[info.ID] = info
}

type fakeRecorder struct {
    recorded map[int64]string
    err      error
}

func newFakeRecorder() *fakeRecorder {
    return &fakeRecorder{recorded: make(map[int64]string)}
}

func (f *fakeRecorder) RecordMatchFound(ctx context.Context, userID int64, counterpartName string) error {
    if f.err != nil {
        return f.err
    }
    f.recorded[userID] = counterpartName
    return nil
}

func userRecord(id int64, optedIn bool, lastMatch *time.Time) *matchmaking.UserRecord {
    return &matchmaking.UserRecord{
        UserInfo: matchmaking.UserInfo{
            ID:          id,
            Username:    "alice",
            DisplayName: "Alice",
            Gender:      "female",
        },
        IsMatchmaking: optedIn,
        LastMatchAt:   lastMatch,
    }
}

func TestCheckEligibilityNeverMatched(t *testing.T) {
    repo := &fakeRepository{user: userRecord(1, true, nil)}
    svc := matchmaking.NewService(repo, newFakeCache(true), newFakeRecorder(), 4*time.Hour, 4*time.Hour)

    result, err := svc.CheckEligibility(context.Background(), 1)
    if err != nil {
        t.Fatalf("CheckEligibility: %v", err)
    }
    if result.Status != matchmaking.StatusEligible {
        t.Errorf("status = %q, want %q", result.Status, matchmaking.StatusEligible)
    }
    if result.RetryAfterSeconds != nil {
        t.Errorf("retry_after_seconds should be unset for eligible users")
    }
}

func TestCheckEligibilityCooldownElapsed(t *testing.T) {
    lastMatch := time.Now().UTC().Add(-5 * time.Hour)
    repo := &fakeRepository{user: userRecord(1, true, &lastMatch)}
    svc := matchmaking.NewService(repo, newFakeCache(true), newFakeRecorder(), 4*time.Hour, 4*time.Hour)

    result, err := svc.CheckEligibility(context.Background(), 1)
    if err != nil {
        t.Fatalf("CheckEligibility: %v", err)
    }
    if result.Status != matchmaking.StatusEligible {
        t.Errorf("status = %q, want %q", result.Status, matchmaking.StatusEligible)
    }
}

func TestCheckEligibilityCooldownActive(t *testing.T) {
    lastMatch := time.Now().UTC().Add(-1 * time.Hour)
    repo := &fakeRepository{user: userRecord(1, true, &lastMatch)}
    svc := matchmaking.NewService(repo, newFakeCache(true), newFakeRecorder(), 4*time.Hour, 4*time.Hour)

    result, err := svc.CheckEligibility(context.Background(), 1)
    if err != nil {
        t.Fatalf("CheckEligibility: %v", err)
    }
    if result.Status != matchmaking.StatusCooldown {
        t.Fatalf("status = %q, want %q", result.Status, matchmaking.StatusCooldown)
    }
    if result.RetryAfterSeconds == nil {
        t.Fatal("retry_after_seconds not set")
    }
    // 3 hours remain, give or take test runtime
    if *result.RetryAfterSeconds < 3*60*60-5 || *result.RetryAfterSeconds > 3*60*60 {
        t.Errorf("retry_after_seconds = %d, want roughly %d", *result.RetryAfterSeconds, 3*60*60)
    }
}

func TestCheckEligibilityActiveMatchWinsOverCooldown(t *testing.T) {
    // Cooldown is still running, but an active match must take priority
    lastMatch := time.Now().UTC().Add(-30 * time.Minute)
    expiresAt := time.Now().UTC().Add(2 * time.Hour)
    repo := &fakeRepository{
        user: userRecord(1, true, &lastMatch),
        active: &matchmaking.Match{
            ID:        42,
            UserAID:   1,
            UserBID:   2,
            ExpiresAt: expiresAt,
        },
        infos: map[int64]*matchmaking.UserInfo{
            2: {ID: 2, Username: "bob", DisplayName: "Bob", Gender: "male"},
        },
    }
    cache := newFakeCache(true)
    svc := matchmaking.NewService(repo, cache, newFakeRecorder(), 4*time.Hour, 4*time.Hour)

    result, err := svc.CheckEligibility(context.Background(), 1)
    if err != nil {
        t.Fatalf("CheckEligibility: %v", err)
    }
    if result.Status != matchmaking.StatusMatched {
        t.Fatalf("status = %q, want %q", result.Status, matchmaking.StatusMatched)
    }
    if result.MatchID == nil || *result.MatchID != 42 {
        t.Errorf("match_id not set to the active match")
    }
    if result.Counterpart == nil || result.Counterpart.ID != 2 {
        t.Errorf("counterpart not resolved")
    }
    if result.ExpiresAt == nil || !result.ExpiresAt.Equal(expiresAt) {
        t.Errorf("expires_at not carried through")
    }
    // The resolved counterpart should now be cached
    if _, ok := cache.stored[2]; !ok {
        t.Errorf("counterpart not written to cache")
    }
}

func TestAllocateMatchSuccess(t *testing.T) {
    now := time.Now().UTC()
    counterpart := &matchmaking.UserInfo{ID: 2, Username: "bob", DisplayName: "Bob", Gender: "male"}
    repo := &fakeRepository{
        allocRes: &matchmaking.Match{
            ID:          7,
            UserAID:     1,
            UserBID:     2,
            IsRare:      false,
            CreatedAt:   now,
            ExpiresAt:   now.Add(4 * time.Hour),
            Counterpart: counterpart,
        },
        infos: map[int64]*matchmaking.UserInfo{
            1: {ID: 1, Username: "alice", DisplayName: "Alice", Gender: "female"},
        },
    }
    cache := newFakeCache(true)
    recorder := newFakeRecorder()
    svc := matchmaking.NewService(repo, cache, recorder, 4*time.Hour, 4*time.Hour)

    result, err := svc.AllocateMatch(context.Background(), 1)
    if err != nil {
        t.Fatalf("AllocateMatch: %v", err)
    }
    if result.MatchID != 7 {
        t.Errorf("match_id = %d, want 7", result.MatchID)
    }
    if result.Counterpart.ID != 2 {
        t.Errorf("counterpart = %d, want 2", result.Counterpart.ID)
    }

    // Both participants get a match-found event naming the other
    if recorder.recorded[1] != "Bob" {
        t.Errorf("caller event = %q, want %q", recorder.recorded[1], "Bob")
    }
    if recorder.recorded[2] != "Alice" {
        t.Errorf("counterpart event = %q, want %q", recorder.recorded[2], "Alice")
    }

    if cache.released != 1 {
        t.Errorf("allocation guard released %d times, want 1", cache.released)
    }
}

func TestAllocateMatchGuardConflict(t *testing.T) {
    repo := &fakeRepository{}
    svc := matchmaking.NewService(repo, newFakeCache(false), newFakeRecorder(), 4*time.Hour, 4*time.Hour)

    _, err := svc.AllocateMatch(context.Background(), 1)
    if !errors.Is(err, matchmaking.ErrConflict) {
        t.Fatalf("err = %v, want ErrConflict", err)
    }
    if repo.allocCalls != 0 {
        t.Errorf("allocation reached the repository despite guard refusal")
    }
}

func TestAllocateMatchGuardUnavailable(t *testing.T) {
    // Redis being down must not block matchmaking
    now := time.Now().UTC()
    repo := &fakeRepository{
        allocRes: &matchmaking.Match{
            ID:          9,
            UserAID:     1,
            UserBID:     2,
            CreatedAt:   now,
            ExpiresAt:   now.Add(4 * time.Hour),
            Counterpart: &matchmaking.UserInfo{ID: 2, DisplayName: "Bob"},
        },
        infos: map[int64]*matchmaking.UserInfo{
            1: {ID: 1, DisplayName: "Alice"},
        },
    }
    cache := newFakeCache(false)
    cache.guardErr = errors.New("connection refused")
    svc := matchmaking.NewService(repo, cache, newFakeRecorder(), 4*time.Hour, 4*time.Hour)

    if _, err := svc.AllocateMatch(context.Background(), 1); err != nil {
        t.Fatalf("AllocateMatch: %v", err)
    }
    if repo.allocCalls != 1 {
        t.Errorf("allocation did not reach the repository")
    }
}

func TestAllocateMatchErrors(t *testing.T) {
    tests := []struct {
        name     string
        repoErr  error
        wantErr  error
    }{
        {"not opted in", matchmaking.ErrNotOptedIn, matchmaking.ErrNotOptedIn},
        {"already matched", matchmaking.ErrAlreadyMatched, matchmaking.ErrAlreadyMatched},
        {"no candidates", matchmaking.ErrNoCandidates, matchmaking.ErrNoCandidates},
    }

    for _, tt := range tests {
        t.Run(tt.name, func(t *testing.T) {
            repo := &fakeRepository{allocErr: tt.repoErr}
            svc := matchmaking.NewService(repo, newFakeCache(true), newFakeRecorder(), 4*time.Hour, 4*time.Hour)

            _, err := svc.AllocateMatch(context.Background(), 1)
            if !errors.Is(err, tt.wantErr) {
                t.Errorf("err = %v, want %v", err, tt.wantErr)
            }
        })
    }
}

func TestAllocateMatchCooldownError(t *testing.T) {
    repo := &fakeRepository{allocErr: &matchmaking.CooldownError{RetryAfter: 90 * time.Minute}}
    svc := matchmaking.NewService(repo, newFakeCache(true), newFakeRecorder(), 4*time.Hour, 4*time.Hour)

    _, err := svc.AllocateMatch(context.Background(), 1)

    var cooldownErr *matchmaking.CooldownError
    if !errors.As(err, &cooldownErr) {
        t.Fatalf("err = %v, want *CooldownError", err)
    }
    if cooldownErr.RetryAfter != 90*time.Minute {
        t.Errorf("RetryAfter = %s, want 90m", cooldownErr.RetryAfter)
    }
}

func TestAllocateMatchEventFailureIsNotFatal(t *testing.T) {
    now := time.Now().UTC()
    repo := &fakeRepository{
        allocRes: &matchmaking.Match{
            ID:          11,
            UserAID:     1,
            UserBID:     2,
            CreatedAt:   now,
            ExpiresAt:   now.Add(4 * time.Hour),
            Counterpart: &matchmaking.UserInfo{ID: 2, DisplayName: "Bob"},
        },
        infos: map[int64]*matchmaking.UserInfo{
            1: {ID: 1, DisplayName: "Alice"},
        },
    }
    recorder := newFakeRecorder()
    recorder.err = errors.New("events table unavailable")
    svc := matchmaking.NewService(repo, newFakeCache(true), recorder, 4*time.Hour, 4*time.Hour)

    result, err := svc.AllocateMatch(context.Background(), 1)
    if err != nil {
        t.Fatalf("AllocateMatch: %v", err)
    }
    if result.MatchID != 11 {
        t.Errorf("match_id = %d, want 11", result.MatchID)
    }
}
