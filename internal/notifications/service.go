// internal/notifications/service.go

package notifications

import (
    "context"
    "errors"
    "fmt"
    "log"
)

var ErrEventNotFound = errors.New("notification not found")

type Service interface {
    // ProjectNotifications computes the viewer's feed, newest first
    ProjectNotifications(ctx context.Context, viewerID int64) ([]*Item, error)

    // Recorders for stored system events
    RecordMatchFound(ctx context.Context, userID int64, counterpartName string) error
    RecordAnnouncement(ctx context.Context, userID int64, heading, body string) (*SystemEvent, error)

    // Stored-event mutations (derived items have no stored identity)
    MarkAsRead(ctx context.Context, eventID, userID int64) error
    Delete(ctx context.Context, eventID, userID int64) error
}

type service struct {
    repo      Repository
    feedLimit int
}

func NewService(repo Repository, feedLimit int) Service {
    return &service{
        repo:      repo,
        feedLimit: feedLimit,
    }
}

func (s *service) ProjectNotifications(ctx context.Context, viewerID int64) ([]*Item, error) {
    asInitiator, err := s.repo.GetConversationsAsInitiator(ctx, viewerID)
    if err != nil {
        return nil, fmt.Errorf("failed to load initiated conversations: %w", err)
    }

    asReceiver, err := s.repo.GetConversationsAsReceiver(ctx, viewerID)
    if err != nil {
        return nil, fmt.Errorf("failed to load received conversations: %w", err)
    }

    events, err := s.repo.GetUserEvents(ctx, viewerID, s.feedLimit)
    if err != nil {
        return nil, fmt.Errorf("failed to load system events: %w", err)
    }

    items := project(asInitiator, asReceiver, events)
    if len(items) > s.feedLimit {
        items = items[:s.feedLimit]
    }

    RecordProjection(len(items))
    return items, nil
}

func (s *service) RecordMatchFound(ctx context.Context, userID int64, counterpartName string) error {
    event := &SystemEvent{
        UserID:   userID,
        Category: CategoryMatchFound,
        Heading:  "It's a match!",
        Body:     fmt.Sprintf("You've been matched with %s. Head over to start a conversation before the match expires.", counterpartName),
    }

    if err := s.repo.CreateEvent(ctx, event); err != nil {
        return err
    }

    RecordEvent(CategoryMatchFound)
    return nil
}

func (s *service) RecordAnnouncement(ctx context.Context, userID int64, heading, body string) (*SystemEvent, error) {
    event := &SystemEvent{
        UserID:   userID,
        Category: CategoryAnnouncement,
        Heading:  heading,
        Body:     body,
    }

    if err := s.repo.CreateEvent(ctx, event); err != nil {
        return nil, err
    }

    RecordEvent(CategoryAnnouncement)
    log.Printf("notifications: announcement %d recorded for user %d", event.ID, userID)
    return event, nil
}

func (s *service) MarkAsRead(ctx context.Context, eventID, userID int64) error {
    return s.repo.MarkAsRead(ctx, eventID, userID)
}

func (s *service) Delete(ctx context.Context, eventID, userID int64) error {
    return s.repo.DeleteEvent(ctx, eventID, userID)
}
