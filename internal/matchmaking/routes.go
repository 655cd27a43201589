package matchmaking

import (
    "github.com/gorilla/mux"
    "github.com/heartlinkapp/heartlink-backend/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
    api := router.PathPrefix("/api/v1/matchmaking").Subrouter()
    api.Use(authMiddleware.Authenticate)

    api.HandleFunc("/eligibility", handler.CheckEligibility).Methods("GET")
    api.HandleFunc("/allocate", handler.Allocate).Methods("POST")

    admin := router.PathPrefix("/api/v1/admin").Subrouter()
    admin.Use(authMiddleware.Authenticate)

    admin.HandleFunc("/matches", handler.ListMatches).Methods("GET")
}
