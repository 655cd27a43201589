package conversation

import (
    "context"
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

func (h *Handler) Request(w http.ResponseWriter, r *http.Request) {
    h.transition(w, r, h.service.Request)
}

func (h *Handler) Accept(w http.ResponseWriter, r *http.Request) {
    h.transition(w, r, h.service.Accept)
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
    h.transition(w, r, h.service.Reject)
}

// transition is the shared handler body for request/accept/reject: resolve
// the caller, parse the match ID, run the operation, map the error taxonomy
// to HTTP codes.
func (h *Handler) transition(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, matchID, userID int64) (*Projection, error)) {
    userID, ok := auth.GetUserIDFromContext(r.Context())
    if !ok {
        utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
        return
    }

    matchID, err := matchIDFromRequest(r)
    if err != nil {
        utils.RespondWithError(w, http.StatusBadRequest, "Invalid match ID")
        return
    }

    projection, err := op(r.Context(), matchID, userID)
    if err != nil {
        respondTransitionError(w, err)
        return
    }

    utils.RespondWithJSON(w, http.StatusOK, projection)
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
    userID, ok := auth.GetUserIDFromContext(r.Context())
    if !ok {
        utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
        return
    }

    matchID, err := matchIDFromRequest(r)
    if err != nil {
        utils.RespondWithError(w, http.StatusBadRequest, "Invalid match ID")
        return
    }

    projection, err := h.service.GetStatus(r.Context(), matchID, userID)
    if err != nil {
        respondTransitionError(w, err)
        return
    }

    utils.RespondWithJSON(w, http.StatusOK, projection)
}

func (h *Handler) GetCurrent(w http.ResponseWriter, r *http.Request) {
    userID, ok := auth.GetUserIDFromContext(r.Context())
    if !ok {
        utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
        return
    }

    view, err := h.service.GetCurrent(r.Context(), userID)
    if err != nil {
        if errors.Is(err, ErrMatchNotFound) || errors.Is(err, ErrConversationNotFound) {
            utils.RespondWithError(w, http.StatusNotFound, "No match found")
            return
        }
        utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get current conversation")
        return
    }

    utils.RespondWithJSON(w, http.StatusOK, view)
}

func matchIDFromRequest(r *http.Request) (int64, error) {
    vars := mux.Vars(r)
    return strconv.ParseInt(vars["matchID"], 10, 64)
}

func respondTransitionError(w http.ResponseWriter, err error) {
    switch {
    case errors.Is(err, ErrMatchNotFound):
        utils.RespondWithError(w, http.StatusNotFound, "Match not found")
    case errors.Is(err, ErrConversationNotFound):
        utils.RespondWithError(w, http.StatusNotFound, "No conversation found for this match")
    case errors.Is(err, ErrMatchExpired):
        utils.RespondWithError(w, http.StatusGone, "This match has expired")
    case errors.Is(err, ErrForbidden):
        utils.RespondWithError(w, http.StatusForbidden, "You are not permitted to perform this action")
    case errors.Is(err, ErrInvalidTransition):
        utils.RespondWithError(w, http.StatusForbidden, "The conversation is not in a state that allows this")
    case errors.Is(err, ErrConflict):
        utils.RespondWithError(w, http.StatusConflict, "The conversation state changed, please refresh")
    default:
        utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update conversation")
    }
}
