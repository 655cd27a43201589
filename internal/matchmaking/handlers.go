package matchmaking

import (
    "errors"
    "net/http"
    "strconv"

    "github.com/heartlinkapp/heartlink-backend/internal/auth"
    "github.com/heartlinkapp/heartlink-backend/internal/common/utils"
)

type Handler struct {
    service Service
}

func NewHandler(service Service) *Handler {
    return &Handler{service: service}
}

// CheckEligibility reports whether the caller may request a new pairing:
// eligible, matched (with the active match), or on cooldown.
func (h *Handler) CheckEligibility(w http.ResponseWriter, r *http.Request) {
    userID, ok := auth.GetUserIDFromContext(r.Context())
    if !ok {
        utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
        return
    }

    result, err := h.service.CheckEligibility(r.Context(), userID)
    if err != nil {
        if errors.Is(err, ErrUserNotFound) {
            utils.RespondWithError(w, http.StatusNotFound, "User not found")
            return
        }
        utils.RespondWithError(w, http.StatusInternalServerError, "Failed to check eligibility")
        return
    }

    utils.RespondWithJSON(w, http.StatusOK, result)
}

// Allocate pairs the caller with a random eligible counterpart
func (h *Handler) Allocate(w http.ResponseWriter, r *http.Request) {
    userID, ok := auth.GetUserIDFromContext(r.Context())
    if !ok {
        utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
        return
    }

    result, err := h.service.AllocateMatch(r.Context(), userID)
    if err != nil {
        var cooldownErr *CooldownError
        switch {
        case errors.As(err, &cooldownErr):
            utils.RespondWithError(w, http.StatusTooManyRequests, cooldownErr.Error())
        case errors.Is(err, ErrAlreadyMatched):
            utils.RespondWithError(w, http.StatusConflict, "You already have an active match")
        case errors.Is(err, ErrConflict):
            utils.RespondWithError(w, http.StatusConflict, "Another allocation is in progress, please retry")
        case errors.Is(err, ErrNoCandidates):
            utils.RespondWithError(w, http.StatusNotFound, "No potential matches found. Your attempt has been used, try again later")
        case errors.Is(err, ErrNotOptedIn):
            utils.RespondWithError(w, http.StatusForbidden, "Matchmaking is disabled for this account")
        case errors.Is(err, ErrUserNotFound):
            utils.RespondWithError(w, http.StatusNotFound, "User not found")
        default:
            utils.RespondWithError(w, http.StatusInternalServerError, "Failed to allocate match")
        }
        return
    }

    utils.RespondWithJSON(w, http.StatusCreated, result)
}

// ListMatches is the admin review list
func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
    limit := 50
    if l := r.URL.Query().Get("limit"); l != "" {
        if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 200 {
            limit = parsed
        }
    }

    matches, err := h.service.ListRecentMatches(r.Context(), limit)
    if err != nil {
        utils.RespondWithError(w, http.StatusInternalServerError, "Failed to list matches")
        return
    }

    utils.RespondWithJSON(w, http.StatusOK, matches)
}
