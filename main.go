package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	clerk "github.com/clerk/clerk-sdk-go/v2"
	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"starLifeAPI/handlers"
	"starLifeAPI/internal/clock"
	"starLifeAPI/internal/metrics"
	"starLifeAPI/internal/notification"
	"starLifeAPI/middleware"
	"starLifeAPI/services"

	_ "net/http/pprof"
)

var (
	dbPool              *pgxpool.Pool
	notificationService *services.NotificationService
	userService         *services.UserService
	questService        *services.QuestService
	communityService    *services.CommunityService
	storeService        *services.StoreService
	rewardService       *services.RewardService
	trainerService      *services.TrainerService
	fcmService          *notification.FCMService
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	clerkSecretKey := os.Getenv("CLERK_SECRET_KEY")
	if clerkSecretKey == "" {
		log.Fatal("CLERK_SECRET_KEY environment variable is not set")
	}
	clerk.SetKey(clerkSecretKey)
	log.Println("Clerk initialized successfully")

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		log.Fatal("Failed to parse database URL:", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	dbPool, err = pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Fatal("Failed to create connection pool:", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	log.Println("Successfully connected to database")

	clk := clock.RealClock{}

	notificationService = services.NewNotificationService(dbPool)
	userService = services.NewUserService(dbPool, clk, notificationService)
	questService = services.NewQuestService(dbPool, clk, notificationService)
	communityService = services.NewCommunityService(dbPool, clk, notificationService)
	storeService = services.NewStoreService(dbPool, clk, notificationService)
	rewardService = services.NewRewardService(dbPool, clk, notificationService)
	trainerService = services.NewTrainerService(dbPool, clk, questService, userService, notificationService)

	fcmService, err = notification.NewFCMService("./serviceAccountKey.json")
	if err != nil {
		log.Printf("Warning: Could not initialize FCM: %v", err)
	} else {
		notificationService.SetPushProvider(fcmService)
		log.Println("FCM Push Provider initialized successfully")
	}

	middleware.InitPrometheus()
	metrics.Register()
}

func main() {
	defer func() {
		log.Println("Closing database connection pool...")
		notificationService.Stop()
		dbPool.Close()
	}()

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService)
	questHandler := handlers.NewQuestHandler(questService)
	communityHandler := handlers.NewCommunityHandler(communityService)
	storeHandler := handlers.NewStoreHandler(storeService)
	rewardHandler := handlers.NewRewardHandler(rewardService)
	trainerHandler := handlers.NewTrainerHandler(trainerService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	webhookHandler := handlers.NewWebhookHandler(userService)

	r := mux.NewRouter()

	go middleware.CleanupVisitors()

	r.Use(middleware.RateLimitMiddleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))
	r.PathPrefix("/debug/pprof/").Handler(middleware.PprofSecurityMiddleware(http.DefaultServeMux))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := dbPool.Ping(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "starLife-api"}`))
	}).Methods("GET")

	r.HandleFunc("/webhooks/clerk", webhookHandler.HandleClerkWebhook).Methods("POST")

	// -------------------------------------------------------------------------
	// API V1 SUBROUTER
	// -------------------------------------------------------------------------
	api := r.PathPrefix("/api/v1").Subrouter()

	// -------------------------------------------------------------------------
	// PROTECTED ROUTES (REQUIRE AUTH HEADER)
	// -------------------------------------------------------------------------
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.ClerkAuthMiddleware)

	protected.HandleFunc("/user", userHandler.GetProfile).Methods("GET")
	protected.HandleFunc("/user/update-profile", userHandler.UpdateProfile).Methods("PUT")
	protected.HandleFunc("/user/delete-account", userHandler.DeleteAccount).Methods("DELETE")
	protected.HandleFunc("/user/tier", userHandler.GetTierInfo).Methods("GET")
	protected.HandleFunc("/user/leaderboard", userHandler.GetLeaderboard).Methods("GET")
	protected.HandleFunc("/user/points-history", userHandler.GetPointsHistory).Methods("GET")
	protected.HandleFunc("/user/health-metrics", userHandler.RecordHealthMetric).Methods("POST")
	protected.HandleFunc("/user/health-metrics/today", userHandler.GetTodayHealthMetric).Methods("GET")
	protected.HandleFunc("/user/health-metrics/latest", userHandler.GetLatestHealthMetric).Methods("GET")

	protected.HandleFunc("/quests", questHandler.GetQuests).Methods("GET")
	protected.HandleFunc("/quests/{questId}/complete", questHandler.CompleteQuest).Methods("POST")
	protected.HandleFunc("/quests/reset", questHandler.ResetCompletions).Methods("POST")

	protected.HandleFunc("/communities", communityHandler.GetCommunities).Methods("GET")
	protected.HandleFunc("/communities/{communityId}/join", communityHandler.JoinCommunity).Methods("POST")
	protected.HandleFunc("/communities/{communityId}/leave", communityHandler.LeaveCommunity).Methods("POST")
	protected.HandleFunc("/communities/quests", communityHandler.GetCommunityQuests).Methods("GET")
	protected.HandleFunc("/communities/quests/{questId}/complete", communityHandler.CompleteCommunityQuest).Methods("POST")

	protected.HandleFunc("/store", storeHandler.GetStore).Methods("GET")
	protected.HandleFunc("/store/purchase", storeHandler.PurchaseProduct).Methods("POST")
	protected.HandleFunc("/store/history", storeHandler.GetPurchaseHistory).Methods("GET")
	protected.HandleFunc("/store/streak-freeze/use", storeHandler.UseStreakFreeze).Methods("POST")

	protected.HandleFunc("/rewards", rewardHandler.GetRewards).Methods("GET")
	protected.HandleFunc("/rewards/{rewardId}/claim", rewardHandler.ClaimReward).Methods("POST")

	protected.HandleFunc("/trainer/generate-quests", trainerHandler.GenerateQuests).Methods("POST")
	protected.HandleFunc("/trainer/chat", trainerHandler.Chat).Methods("POST")

	protected.HandleFunc("/notifications", notificationHandler.GetNotifications).Methods("GET")
	protected.HandleFunc("/notifications/{id}/read", notificationHandler.MarkAsRead).Methods("PUT")
	protected.HandleFunc("/notifications/read-all", notificationHandler.MarkAllAsRead).Methods("PUT")
	protected.HandleFunc("/notifications/register-device", notificationHandler.RegisterDevice).Methods("POST")

	// CORS configuration
	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Pprof-Secret"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorilllaHandlers.AllowCredentials(),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3333"
	}
	port = ":" + port

	server := http.Server{
		Addr:         port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	sig := <-sigChan
	log.Println("Got signal:", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server shutdown complete")
}
