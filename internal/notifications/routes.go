package notifications

import (
    "github.com/gorilla/mux"
    "github.com/heartlinkapp/heartlink-backend/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
    api := router.PathPrefix("/api/v1/notifications").Subrouter()
    api.Use(authMiddleware.Authenticate)

    api.HandleFunc("", handler.GetNotifications).Methods("GET")
    // Only stored system events have numeric IDs; derived items cannot be
    // marked or deleted
    api.HandleFunc("/{id:[0-9]+}/read", handler.MarkRead).Methods("PUT")
    api.HandleFunc("/{id:[0-9]+}", handler.Delete).Methods("DELETE")

    admin := router.PathPrefix("/api/v1/admin").Subrouter()
    admin.Use(authMiddleware.Authenticate)

    admin.HandleFunc("/announcements", handler.CreateAnnouncement).Methods("POST")
}
