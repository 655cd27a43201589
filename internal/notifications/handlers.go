package notifications

import (
    "encoding/json"
    "errors"
    "net/http"
    "strconv"

    "github.com/gorilla/mux"
    "github.com/heartlinkapp/heartlink-backend/internal/auth"
    "github.com/heartlinkapp/heartlink-backend/internal/common/utils"
)

type Handler struct {
    service Service
}

func NewHandler(service Service) *Handler {
    return &Handler{service: service}
}

// GetNotifications returns the caller's computed feed
func (h *Handler) GetNotifications(w http.ResponseWriter, r *http.Request) {
    userID, ok := auth.GetUserIDFromContext(r.Context())
    if !ok {
        utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
        return
    }

    items, err := h.service.ProjectNotifications(r.Context(), userID)
    if err != nil {
        utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get notifications")
        return
    }

    utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
        "notifications": items,
    })
}

// MarkRead marks a stored system event as read
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
    userID, ok := auth.GetUserIDFromContext(r.Context())
    if !ok {
        utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
        return
    }

    eventID, err := eventIDFromRequest(r)
    if err != nil {
        utils.RespondWithError(w, http.StatusBadRequest, "Invalid notification ID")
        return
    }

    if err := h.service.MarkAsRead(r.Context(), eventID, userID); err != nil {
        if errors.Is(err, ErrEventNotFound) {
            utils.RespondWithError(w, http.StatusNotFound, "Notification not found")
            return
        }
        utils.RespondWithError(w, http.StatusInternalServerError, "Failed to mark notification as read")
        return
    }

    utils.MessageResponse(w, "Notification marked as read", http.StatusOK)
}

// Delete removes a stored system event
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
    userID, ok := auth.GetUserIDFromContext(r.Context())
    if !ok {
        utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
        return
    }

    eventID, err := eventIDFromRequest(r)
    if err != nil {
        utils.RespondWithError(w, http.StatusBadRequest, "Invalid notification ID")
        return
    }

    if err := h.service.Delete(r.Context(), eventID, userID); err != nil {
        if errors.Is(err, ErrEventNotFound) {
            utils.RespondWithError(w, http.StatusNotFound, "Notification not found")
            return
        }
        utils.RespondWithError(w, http.StatusInternalServerError, "Failed to delete notification")
        return
    }

    utils.MessageResponse(w, "Notification deleted", http.StatusOK)
}

// CreateAnnouncementDTO is the admin payload for recording an announcement
type CreateAnnouncementDTO struct {
    UserID  int64  `json:"user_id" validate:"required"`
    Heading string `json:"heading" validate:"required,max=120"`
    Body    string `json:"body" validate:"required,max=500"`
}

// CreateAnnouncement records an announcement system event for a user
func (h *Handler) CreateAnnouncement(w http.ResponseWriter, r *http.Request) {
    var dto CreateAnnouncementDTO
    if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
        utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
        return
    }

    if err := utils.ValidateStruct(&dto); err != nil {
        utils.RespondWithError(w, http.StatusBadRequest, err.Error())
        return
    }

    event, err := h.service.RecordAnnouncement(r.Context(), dto.UserID, dto.Heading, dto.Body)
    if err != nil {
        utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create announcement")
        return
    }

    utils.RespondWithJSON(w, http.StatusCreated, event)
}

func eventIDFromRequest(r *http.Request) (int64, error) {
    vars := mux.Vars(r)
    return strconv.ParseInt(vars["id"], 10, 64)
}
