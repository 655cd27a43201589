package conversation

import (
    "github.com/gorilla/mux"
    "github.com/heartlinkapp/heartlink-backend/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
    api := router.PathPrefix("/api/v1/conversations").Subrouter()
    api.Use(authMiddleware.Authenticate)

    api.HandleFunc("/current", handler.GetCurrent).Methods("GET")
    api.HandleFunc("/{matchID:[0-9]+}/status", handler.GetStatus).Methods("GET")
    api.HandleFunc("/{matchID:[0-9]+}/request", handler.Request).Methods("POST")
    api.HandleFunc("/{matchID:[0-9]+}/accept", handler.Accept).Methods("POST")
    api.HandleFunc("/{matchID:[0-9]+}/reject", handler.Reject).Methods("POST")
}
