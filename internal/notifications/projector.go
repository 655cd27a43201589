// internal/notifications/projector.go
// The notification feed is a projection: computed fresh from conversation
// state and stored system events on every read, never persisted. A state
// change therefore appears at most once per viewer, keyed on
// (conversation, derived type).

package notifications

import (
    "fmt"
    "sort"
    "strconv"
    "time"

    "github.com/google/uuid"
)

// Conversation statuses the projector reacts to
const (
    statusRequested = "requested"
    statusAccepted  = "accepted"
    statusRejected  = "rejected"
)

// derivedItemID builds a stable key for a computed item so that clients can
// render and diff lists across reads
func derivedItemID(conversationID int64, itemType ItemType) string {
    name := fmt.Sprintf("conversation:%d:%s", conversationID, itemType)
    return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}

// projectInitiator derives the initiator-side item for one conversation.
// While pending or requested the initiator sees nothing: they know they are
// waiting.
func projectInitiator(state *ConversationState) *Item {
    switch state.Status {
    case statusAccepted:
        status := state.Status
        ts := state.CreatedAt
        if state.AcceptedAt != nil {
            ts = *state.AcceptedAt
        }
        return &Item{
            ID:             derivedItemID(state.ConversationID, ItemAccepted),
            Type:           ItemAccepted,
            Title:          "Message request accepted",
            Body:           fmt.Sprintf("%s accepted your message request. Say hi!", state.CounterpartName),
            Timestamp:      ts,
            MatchID:        &state.MatchID,
            ConversationID: &state.ConversationID,
            Status:         &status,
        }
    case statusRejected:
        status := state.Status
        return &Item{
            ID:             derivedItemID(state.ConversationID, ItemRejected),
            Type:           ItemRejected,
            Title:          "Message request declined",
            Body:           fmt.Sprintf("%s declined your message request.", state.CounterpartName),
            Timestamp:      rejectionTimestamp(state),
            MatchID:        &state.MatchID,
            ConversationID: &state.ConversationID,
            Status:         &status,
        }
    }
    return nil
}

// projectReceiver derives the receiver-side item for one conversation. The
// receiver does not see pending at all: visibility begins at requested.
func projectReceiver(state *ConversationState) *Item {
    switch state.Status {
    case statusRequested:
        status := state.Status
        ts := state.CreatedAt
        if state.RequestedAt != nil {
            ts = *state.RequestedAt
        }
        return &Item{
            ID:             derivedItemID(state.ConversationID, ItemRequestReceived),
            Type:           ItemRequestReceived,
            Title:          "New message request",
            Body:           fmt.Sprintf("%s wants to start a conversation with you.", state.CounterpartName),
            Timestamp:      ts,
            MatchID:        &state.MatchID,
            ConversationID: &state.ConversationID,
            Status:         &status,
            Actionable:     true,
        }
    case statusRejected:
        // The receiver set this status; keep a record of their own action
        status := state.Status
        return &Item{
            ID:             derivedItemID(state.ConversationID, ItemRejectedByMe),
            Type:           ItemRejectedByMe,
            Title:          "Request declined",
            Body:           fmt.Sprintf("You declined the message request from %s.", state.CounterpartName),
            Timestamp:      rejectionTimestamp(state),
            MatchID:        &state.MatchID,
            ConversationID: &state.ConversationID,
            Status:         &status,
        }
    }
    return nil
}

// rejectionTimestamp picks the best timestamp for a rejection item: no
// separate time is stored for it, so the request time (or creation time)
// stands in.
func rejectionTimestamp(state *ConversationState) time.Time {
    if state.RequestedAt != nil {
        return *state.RequestedAt
    }
    return state.CreatedAt
}

func eventItem(event *SystemEvent) *Item {
    isRead := event.IsRead
    return &Item{
        ID:        strconv.FormatInt(event.ID, 10),
        Type:      ItemSystemEvent,
        Title:     event.Heading,
        Body:      event.Body,
        Timestamp: event.CreatedAt,
        EventID:   &event.ID,
        IsRead:    &isRead,
    }
}

// project merges derived conversation items with filtered system events into
// a single feed, newest first
func project(asInitiator, asReceiver []*ConversationState, events []*SystemEvent) []*Item {
    items := make([]*Item, 0, len(asInitiator)+len(asReceiver)+len(events))
    seen := make(map[string]bool)

    add := func(item *Item) {
        if item == nil {
            return
        }
        key := item.ID
        if item.ConversationID != nil {
            key = fmt.Sprintf("%d:%s", *item.ConversationID, item.Type)
        }
        if seen[key] {
            return
        }
        seen[key] = true
        items = append(items, item)
    }

    for _, state := range asInitiator {
        add(projectInitiator(state))
    }
    for _, state := range asReceiver {
        add(projectReceiver(state))
    }
    for _, event := range events {
        add(eventItem(event))
    }

    sort.SliceStable(items, func(i, j int) bool {
        if !items[i].Timestamp.Equal(items[j].Timestamp) {
            return items[i].Timestamp.After(items[j].Timestamp)
        }
        return items[i].ID < items[j].ID
    })

    return items
}
