// cmd/api/main.go
// Main entry point for the application with debug logging
// This file bootstraps all components and starts the server

package main

import (
    "context"
    "encoding/json"
    "fmt"
    "log"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/go-redis/redis/v8"
    "github.com/gorilla/mux"
    "github.com/jmoiron/sqlx"
    "github.com/joho/godotenv"
    "github.com/prometheus/client_golang/prometheus/promhttp"

    // Internal packages
    "github.com/heartlinkapp/heartlink-backend/internal/auth"
    "github.com/heartlinkapp/heartlink-backend/internal/common/database"
    "github.com/heartlinkapp/heartlink-backend/internal/config"
    "github.com/heartlinkapp/heartlink-backend/internal/conversation"
    "github.com/heartlinkapp/heartlink-backend/internal/matchmaking"
    "github.com/heartlinkapp/heartlink-backend/internal/notifications"
)

var startTime = time.Now()

func main() {
    // Enable detailed logging
    log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

    log.Println("========================================")
    log.Println("🚀 Starting Heartlink Matchmaking API")
    log.Println("========================================")

    // 1. Load environment variables
    log.Println("📁 Step 1: Loading .env file...")
    if err := godotenv.Load(); err != nil {
        log.Printf("⚠️  Warning: No .env file found (%v), using environment variables", err)
    } else {
        log.Println("✅ .env file loaded successfully")
    }

    // 2. Load configuration
    log.Println("\n📋 Step 2: Loading configuration...")
    cfg := config.Load()
    log.Printf("✅ Configuration loaded")

    // 3. Validate configuration
    log.Println("\n✔️  Step 3: Validating configuration...")
    if err := cfg.Validate(); err != nil {
        log.Fatal("❌ Configuration validation failed:", err)
    }
    log.Println("✅ Configuration is valid")

    // 4. Connect to PostgreSQL
    log.Println("\n🗄️  Step 4: Connecting to PostgreSQL...")
    db, err := database.NewPostgresDB(cfg.DatabaseURL)
    if err != nil {
        log.Fatal("❌ Failed to connect to PostgreSQL:", err)
    }
    defer db.Close()
    log.Println("✅ Connected to PostgreSQL successfully")

    // 5. Connect to Redis (optional)
    log.Println("\n📮 Step 5: Connecting to Redis...")
    var redisClient *redis.Client

    if cfg.RedisURL != "" {
        redisClient, err = database.NewRedisClient(cfg.RedisURL)
        if err != nil {
            log.Printf("⚠️  Redis unavailable: %v, continuing without Redis", err)
            redisClient = nil
        } else {
            defer redisClient.Close()
            log.Println("✅ Connected to Redis successfully")
        }
    } else {
        log.Println("⚠️  Redis URL not configured, skipping Redis connection")
    }

    // 6. Run database migrations
    log.Println("\n🔨 Step 6: Running database migrations...")
    if err := runMigrations(db); err != nil {
        log.Printf("❌ Migration error: %v", err)
        log.Fatal("Failed to run migrations")
    }
    log.Println("✅ Database migrations completed")

    // 7. Initialize auth
    log.Println("\n🔐 Step 7: Initializing auth...")
    authService := auth.NewService(cfg.JWTSecret)
    authMiddleware := auth.NewMiddleware(authService)
    log.Println("✅ Auth initialized")

    // 8. Initialize notifications module
    log.Println("\n🔔 Step 8: Initializing notifications module...")
    notificationsRepo := notifications.NewPostgresRepository(db)
    notificationsService := notifications.NewService(notificationsRepo, cfg.NotificationFeedLimit)
    notificationsHandler := notifications.NewHandler(notificationsService)
    log.Println("✅ Notifications module initialized")

    // 9. Initialize matchmaking module
    log.Println("\n💘 Step 9: Initializing matchmaking module...")
    matchmakingRepo := matchmaking.NewPostgresRepository(db)

    var matchmakingCache matchmaking.Cache
    if redisClient != nil {
        matchmakingCache = matchmaking.NewRedisCache(redisClient, cfg.AllocGuardTTL)
        log.Println("   ✅ Using Redis allocation guard")
    } else {
        matchmakingCache = matchmaking.NewNoopCache()
        log.Println("   ⚠️  Allocation guard disabled (no Redis)")
    }

    matchmakingService := matchmaking.NewService(
        matchmakingRepo,
        matchmakingCache,
        notificationsService,
        cfg.MatchTTL,
        cfg.MatchCooldown,
    )
    matchmakingHandler := matchmaking.NewHandler(matchmakingService)
    log.Println("✅ Matchmaking module initialized")

    // 10. Initialize conversation module
    log.Println("\n💬 Step 10: Initializing conversation module...")
    conversationRepo := conversation.NewPostgresRepository(db)
    conversationService := conversation.NewService(conversationRepo)
    conversationHandler := conversation.NewHandler(conversationService)
    log.Println("✅ Conversation module initialized")

    // 11. Setup routes
    log.Println("\n🛣️  Step 11: Setting up routes...")
    router := mux.NewRouter()

    // Health check and metrics
    router.HandleFunc("/health", healthCheck).Methods("GET")
    router.HandleFunc("/api", apiInfo).Methods("GET")
    router.Handle("/metrics", promhttp.Handler()).Methods("GET")

    matchmaking.RegisterRoutes(router, matchmakingHandler, authMiddleware)
    log.Println("   ✅ Matchmaking routes registered")

    conversation.RegisterRoutes(router, conversationHandler, authMiddleware)
    log.Println("   ✅ Conversation routes registered")

    notifications.RegisterRoutes(router, notificationsHandler, authMiddleware)
    log.Println("   ✅ Notification routes registered")

    // Add middleware
    router.Use(loggingMiddleware)
    router.Use(corsMiddleware)

    // 12. Create and start HTTP server
    srv := &http.Server{
        Addr:         fmt.Sprintf(":%s", cfg.Port),
        Handler:      router,
        ReadTimeout:  15 * time.Second,
        WriteTimeout: 15 * time.Second,
        IdleTimeout:  60 * time.Second,
    }

    go func() {
        log.Println("\n========================================")
        log.Printf("🚀 Server starting on http://localhost%s", srv.Addr)
        log.Printf("🌍 Environment: %s", cfg.Environment)
        log.Println("========================================")

        if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
            log.Fatal("❌ Failed to start server:", err)
        }
    }()

    // Wait for interrupt signal
    quit := make(chan os.Signal, 1)
    signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
    <-quit

    log.Println("\n⚠️  Shutdown signal received...")

    // Graceful server shutdown
    ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
    defer cancel()

    if err := srv.Shutdown(ctx); err != nil {
        log.Fatal("❌ Server forced to shutdown:", err)
    }

    log.Println("✅ Server exited gracefully")
}

// runMigrations executes database migrations
func runMigrations(db *sqlx.DB) error {
    log.Println("   - Creating/updating tables...")

    migrations := []string{
        // Users table. last_match_at drives the pairing cooldown; the flag
        // gates participation in allocation.
        `CREATE TABLE IF NOT EXISTS users (
            id SERIAL PRIMARY KEY,
            email VARCHAR(255) UNIQUE,
            username VARCHAR(100) UNIQUE NOT NULL,
            display_name VARCHAR(100) NOT NULL DEFAULT '',
            gender VARCHAR(20) NOT NULL DEFAULT '',
            password_hash VARCHAR(255),
            is_matchmaking BOOLEAN DEFAULT FALSE,
            last_match_at TIMESTAMPTZ,
            created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
        )`,

        // Matches table. Expiry is never written after insert; liveness is
        // always computed against expires_at.
        `CREATE TABLE IF NOT EXISTS matches (
            id SERIAL PRIMARY KEY,
            user_a_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            user_b_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            is_rare BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
            expires_at TIMESTAMPTZ NOT NULL,
            CHECK (user_a_id <> user_b_id)
        )`,

        // One conversation per match, created with the match
        `CREATE TABLE IF NOT EXISTS conversations (
            id SERIAL PRIMARY KEY,
            match_id INTEGER NOT NULL UNIQUE REFERENCES matches(id) ON DELETE CASCADE,
            initiator_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            receiver_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            status VARCHAR(20) NOT NULL DEFAULT 'pending'
                CHECK (status IN ('pending', 'requested', 'accepted', 'rejected')),
            requested_at TIMESTAMPTZ,
            accepted_at TIMESTAMPTZ,
            created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
        )`,

        // Stored system events feeding the notification feed
        `CREATE TABLE IF NOT EXISTS system_events (
            id SERIAL PRIMARY KEY,
            user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            category VARCHAR(30) NOT NULL
                CHECK (category IN ('match_found', 'announcement', 'conversation_outcome')),
            heading VARCHAR(255) NOT NULL,
            body TEXT NOT NULL DEFAULT '',
            is_read BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
        )`,

        // Indexes
        `CREATE INDEX IF NOT EXISTS idx_matches_user_a ON matches(user_a_id, expires_at)`,
        `CREATE INDEX IF NOT EXISTS idx_matches_user_b ON matches(user_b_id, expires_at)`,
        `CREATE INDEX IF NOT EXISTS idx_conversations_match ON conversations(match_id)`,
        `CREATE INDEX IF NOT EXISTS idx_system_events_user ON system_events(user_id, created_at DESC)`,
        `CREATE INDEX IF NOT EXISTS idx_users_matchmaking ON users(is_matchmaking) WHERE is_matchmaking = TRUE`,
    }

    for i, migration := range migrations {
        if _, err := db.Exec(migration); err != nil {
            return fmt.Errorf("migration %d failed: %w", i+1, err)
        }
    }

    return nil
}

// healthCheck returns server health status
func healthCheck(w http.ResponseWriter, r *http.Request) {
    response := map[string]interface{}{
        "status":    "healthy",
        "timestamp": time.Now().Format(time.RFC3339),
        "uptime":    time.Since(startTime).String(),
    }

    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(http.StatusOK)
    json.NewEncoder(w).Encode(response)
}

// apiInfo returns API information
func apiInfo(w http.ResponseWriter, r *http.Request) {
    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(http.StatusOK)
    w.Write([]byte(`{
        "name": "Heartlink Matchmaking API",
        "version": "1.0.0",
        "status": "running",
        "endpoints": {
            "health": "GET /health",
            "metrics": "GET /metrics",
            "matchmaking": {
                "eligibility": "GET /api/v1/matchmaking/eligibility",
                "allocate": "POST /api/v1/matchmaking/allocate"
            },
            "conversations": {
                "current": "GET /api/v1/conversations/current",
                "status": "GET /api/v1/conversations/{matchID}/status",
                "request": "POST /api/v1/conversations/{matchID}/request",
                "accept": "POST /api/v1/conversations/{matchID}/accept",
                "reject": "POST /api/v1/conversations/{matchID}/reject"
            },
            "notifications": {
                "feed": "GET /api/v1/notifications",
                "read": "PUT /api/v1/notifications/{id}/read",
                "delete": "DELETE /api/v1/notifications/{id}"
            },
            "admin": {
                "matches": "GET /api/v1/admin/matches",
                "announcements": "POST /api/v1/admin/announcements"
            }
        }
    }`))
}

// loggingMiddleware logs all HTTP requests
func loggingMiddleware(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        start := time.Now()

        log.Printf("→ %s %s from %s", r.Method, r.RequestURI, r.RemoteAddr)

        // Wrap response writer to capture status code
        wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

        next.ServeHTTP(wrapped, r)

        duration := time.Since(start)
        log.Printf("← %s %s [%d] %v", r.Method, r.RequestURI, wrapped.statusCode, duration)
    })
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
    http.ResponseWriter
    statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
    rw.statusCode = code
    rw.ResponseWriter.WriteHeader(code)
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        w.Header().Set("Access-Control-Allow-Origin", "*")
        w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
        w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

        if r.Method == "OPTIONS" {
            w.WriteHeader(http.StatusOK)
            return
        }

        next.ServeHTTP(w, r)
    })
}
