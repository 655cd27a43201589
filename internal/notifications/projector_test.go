package notifications

import (
    "testing"
    "time"
)

func state(convID, matchID int64, status string, createdAt time.Time) *ConversationState {
    return &ConversationState{
        ConversationID:  convID,
        MatchID:         matchID,
        InitiatorID:     1,
        ReceiverID:      2,
        Status:          status,
        CreatedAt:       createdAt,
        CounterpartName: "Bob",
    }
}

func TestProjectInitiatorByStatus(t *testing.T) {
    now := time.Now().UTC()

    tests := []struct {
        status string
        want   ItemType
        none   bool
    }{
        {"pending", "", true},
        {"requested", "", true},
        {"accepted", ItemAccepted, false},
        {"rejected", ItemRejected, false},
    }

    for _, tt := range tests {
        t.Run(tt.status, func(t *testing.T) {
            item := projectInitiator(state(100, 10, tt.status, now))
            if tt.none {
                if item != nil {
                    t.Fatalf("initiator should see nothing while %s", tt.status)
                }
                return
            }
            if item == nil {
                t.Fatalf("no item for %s", tt.status)
            }
            if item.Type != tt.want {
                t.Errorf("type = %q, want %q", item.Type, tt.want)
            }
            if item.ConversationID == nil || *item.ConversationID != 100 {
                t.Errorf("conversation_id not carried")
            }
            if item.Actionable {
                t.Errorf("initiator items are never actionable")
            }
        })
    }
}

func TestProjectReceiverByStatus(t *testing.T) {
    now := time.Now().UTC()

    tests := []struct {
        status     string
        want       ItemType
        actionable bool
        none       bool
    }{
        {"pending", "", false, true},
        {"requested", ItemRequestReceived, true, false},
        {"accepted", "", false, true},
        {"rejected", ItemRejectedByMe, false, false},
    }

    for _, tt := range tests {
        t.Run(tt.status, func(t *testing.T) {
            item := projectReceiver(state(100, 10, tt.status, now))
            if tt.none {
                if item != nil {
                    t.Fatalf("receiver should see nothing while %s", tt.status)
                }
                return
            }
            if item == nil {
                t.Fatalf("no item for %s", tt.status)
            }
            if item.Type != tt.want {
                t.Errorf("type = %q, want %q", item.Type, tt.want)
            }
            if item.Actionable != tt.actionable {
                t.Errorf("actionable = %t, want %t", item.Actionable, tt.actionable)
            }
        })
    }
}

func TestRejectionSeenOnceOnEachSide(t *testing.T) {
    // A rejected conversation produces exactly one item per viewer, typed by
    // role: the initiator's "declined" and the receiver's own record.
    now := time.Now().UTC()
    rejected := state(100, 10, "rejected", now)

    initiatorFeed := project([]*ConversationState{rejected}, nil, nil)
    if len(initiatorFeed) != 1 {
        t.Fatalf("initiator feed has %d items, want 1", len(initiatorFeed))
    }
    if initiatorFeed[0].Type != ItemRejected {
        t.Errorf("initiator item type = %q, want %q", initiatorFeed[0].Type, ItemRejected)
    }

    receiverFeed := project(nil, []*ConversationState{rejected}, nil)
    if len(receiverFeed) != 1 {
        t.Fatalf("receiver feed has %d items, want 1", len(receiverFeed))
    }
    if receiverFeed[0].Type != ItemRejectedByMe {
        t.Errorf("receiver item type = %q, want %q", receiverFeed[0].Type, ItemRejectedByMe)
    }
}

func TestProjectDeduplicates(t *testing.T) {
    // The same conversation loaded twice must not duplicate its item
    now := time.Now().UTC()
    accepted := state(100, 10, "accepted", now)

    feed := project([]*ConversationState{accepted, accepted}, nil, nil)
    if len(feed) != 1 {
        t.Fatalf("feed has %d items, want 1", len(feed))
    }
}

func TestProjectMergesAndOrdersNewestFirst(t *testing.T) {
    base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

    older := state(100, 10, "accepted", base)
    acceptedAt := base.Add(time.Hour)
    older.AcceptedAt = &acceptedAt

    newer := state(200, 20, "requested", base)
    requestedAt := base.Add(3 * time.Hour)
    newer.RequestedAt = &requestedAt

    event := &SystemEvent{
        ID:        5,
        UserID:    1,
        Category:  CategoryMatchFound,
        Heading:   "It's a match!",
        CreatedAt: base.Add(2 * time.Hour),
    }

    feed := project([]*ConversationState{older}, []*ConversationState{newer}, []*SystemEvent{event})
    if len(feed) != 3 {
        t.Fatalf("feed has %d items, want 3", len(feed))
    }

    wantOrder := []ItemType{ItemRequestReceived, ItemSystemEvent, ItemAccepted}
    for i, want := range wantOrder {
        if feed[i].Type != want {
            t.Errorf("feed[%d].Type = %q, want %q", i, feed[i].Type, want)
        }
    }
}

func TestDerivedItemIDStable(t *testing.T) {
    a := derivedItemID(100, ItemAccepted)
    b := derivedItemID(100, ItemAccepted)
    if a != b {
        t.Errorf("derived ID not stable across reads: %q vs %q", a, b)
    }

    if derivedItemID(100, ItemAccepted) == derivedItemID(100, ItemRejected) {
        t.Errorf("derived IDs collide across item types")
    }
    if derivedItemID(100, ItemAccepted) == derivedItemID(101, ItemAccepted) {
        t.Errorf("derived IDs collide across conversations")
    }
}

func TestRejectionTimestampFallback(t *testing.T) {
    created := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

    withRequest := state(100, 10, "rejected", created)
    requestedAt := created.Add(time.Hour)
    withRequest.RequestedAt = &requestedAt
    if got := rejectionTimestamp(withRequest); !got.Equal(requestedAt) {
        t.Errorf("timestamp = %s, want requested_at", got)
    }

    withoutRequest := state(100, 10, "rejected", created)
    if got := rejectionTimestamp(withoutRequest); !got.Equal(created) {
        t.Errorf("timestamp = %s, want created_at fallback", got)
    }
}

func TestEventItemCarriesStoredIdentity(t *testing.T) {
    event := &SystemEvent{
        ID:        42,
        UserID:    1,
        Category:  CategoryAnnouncement,
        Heading:   "Scheduled maintenance",
        Body:      "We'll be offline briefly tonight.",
        IsRead:    true,
        CreatedAt: time.Now().UTC(),
    }

    item := eventItem(event)
    if item.Type != ItemSystemEvent {
        t.Errorf("type = %q, want %q", item.Type, ItemSystemEvent)
    }
    if item.ID != "42" {
        t.Errorf("id = %q, want %q", item.ID, "42")
    }
    if item.EventID == nil || *item.EventID != 42 {
        t.Errorf("event_id not carried")
    }
    if item.IsRead == nil || !*item.IsRead {
        t.Errorf("is_read not carried")
    }
}
