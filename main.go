package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	clerk "github.com/clerk/clerk-sdk-go/v2"
	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"

	"ditchAPI/handlers"
	"ditchAPI/internal/config"
	"ditchAPI/internal/dedupe"
	"ditchAPI/internal/logger"
	"ditchAPI/internal/notification"
	"ditchAPI/internal/workers"
	"ditchAPI/middleware"
	"ditchAPI/services"

	_ "net/http/pprof"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logg, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logg.Sync()

	clerk.SetKey(cfg.ClerkSecretKey)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := newPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logg.Fatal("database connection failed", "error", err)
	}
	defer func() {
		logg.Info("closing database connection pool")
		dbPool.Close()
	}()
	logg.Info("connected to database")

	var guard dedupe.Guard = dedupe.NopGuard{}
	if cfg.RedisAddr != "" {
		rg, err := dedupe.NewRedisGuard(ctx, cfg.RedisAddr)
		if err != nil {
			logg.Warn("redis unavailable, relying on database constraints", "addr", cfg.RedisAddr, "error", err)
		} else {
			defer rg.Close()
			guard = rg
			logg.Info("redis claim guard enabled", "addr", cfg.RedisAddr)
		}
	}

	var push services.PushProvider
	fcm, err := notification.NewFCMService(ctx, cfg.FCMCredentialsPath, logg)
	if err != nil {
		logg.Warn("push notifications disabled", "error", err)
	} else {
		push = fcm
	}

	var checkout services.CheckoutCreator
	if cfg.StripeSecretKey != "" {
		checkout = &session.Client{B: stripe.GetBackend(stripe.APIBackend), Key: cfg.StripeSecretKey}
	} else {
		logg.Warn("STRIPE_SECRET_KEY not set, web checkout disabled")
	}

	middleware.InitPrometheus(prometheus.DefaultRegisterer)
	services.InitMetrics(prometheus.DefaultRegisterer)

	profileService := services.NewProfileService(dbPool)
	usageService := services.NewUsageService(dbPool, profileService)
	cravingService := services.NewCravingService(dbPool)
	goalService := services.NewGoalService(dbPool)
	notificationService := services.NewNotificationService(dbPool)
	communityService := services.NewCommunityService(dbPool)
	buddyService := services.NewBuddyService(dbPool)
	subscriptionService := services.NewSubscriptionService(dbPool, checkout, services.CheckoutURLs{
		Success: cfg.StripeSuccessURL,
		Cancel:  cfg.StripeCancelURL,
	})

	dispatcher := services.NewNotificationDispatcher(notificationService, push, logg.With("component", "dispatcher"), services.DispatcherOptions{})
	defer dispatcher.Stop()

	progressService := services.NewProgressService(
		profileService, notificationService, usageService, guard, dispatcher, nil, logg.With("component", "progress"),
	)
	insightService := services.NewInsightService(profileService, usageService, cravingService)

	if cfg.SweepInterval > 0 {
		sweeper := workers.NewProgressSweeper(profileService, progressService, logg.With("component", "sweeper"), cfg.SweepInterval)
		go sweeper.Run(ctx)
	}

	visitors := middleware.NewVisitors(5, 30, 3*time.Minute)
	go visitors.Cleanup(ctx, time.Minute)

	profileHandler := handlers.NewProfileHandler(profileService, logg)
	usageHandler := handlers.NewUsageHandler(usageService, logg)
	cravingHandler := handlers.NewCravingHandler(cravingService, logg)
	goalHandler := handlers.NewGoalHandler(goalService, logg)
	notificationHandler := handlers.NewNotificationHandler(notificationService, logg)
	progressHandler := handlers.NewProgressHandler(progressService, insightService, logg)
	subscriptionHandler := handlers.NewSubscriptionHandler(subscriptionService, logg)
	communityHandler := handlers.NewCommunityHandler(communityService, logg)
	buddyHandler := handlers.NewBuddyHandler(buddyService, logg)

	r := mux.NewRouter()
	r.Use(visitors.Middleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(cfg.MetricsUser, cfg.MetricsPass)(promhttp.Handler()))
	r.PathPrefix("/debug/pprof/").Handler(middleware.PprofSecurityMiddleware(cfg.PprofSecret)(http.DefaultServeMux))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := dbPool.Ping(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
			return
		}
		handlers.Health(w, r)
	}).Methods("GET")

	if cfg.ClerkWebhookSecret != "" {
		webhookHandler, err := handlers.NewWebhookHandler(profileService, cfg.ClerkWebhookSecret, logg)
		if err != nil {
			logg.Fatal("clerk webhook setup failed", "error", err)
		}
		r.HandleFunc("/webhooks/clerk", webhookHandler.HandleClerkWebhook).Methods("POST")
	} else {
		logg.Warn("CLERK_WEBHOOK_SECRET not set, profile sync webhook disabled")
	}

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/subscription/products", subscriptionHandler.ListProducts).Methods("GET")

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.ClerkAuthMiddleware(middleware.VerifyClerkToken, logg))

	protected.HandleFunc("/profile", profileHandler.GetProfile).Methods("GET")
	protected.HandleFunc("/profile", profileHandler.UpdateProfile).Methods("PUT")
	protected.HandleFunc("/profile/quit-date", profileHandler.SetQuitDate).Methods("PUT")

	protected.HandleFunc("/usage/puff", usageHandler.AddPuff).Methods("POST")
	protected.HandleFunc("/usage/today", usageHandler.GetToday).Methods("GET")
	protected.HandleFunc("/usage/history", usageHandler.GetHistory).Methods("GET")
	protected.HandleFunc("/usage/summary", usageHandler.GetSummary).Methods("GET")

	protected.HandleFunc("/cravings", cravingHandler.LogCraving).Methods("POST")
	protected.HandleFunc("/cravings", cravingHandler.ListCravings).Methods("GET")
	protected.HandleFunc("/cravings/{id}/overcome", cravingHandler.MarkOvercome).Methods("PUT")

	protected.HandleFunc("/goals", goalHandler.ListGoals).Methods("GET")
	protected.HandleFunc("/goals", goalHandler.CreateGoal).Methods("POST")
	protected.HandleFunc("/goals/{id}/toggle", goalHandler.ToggleGoal).Methods("PUT")
	protected.HandleFunc("/goals/{id}", goalHandler.DeleteGoal).Methods("DELETE")

	protected.HandleFunc("/notifications", notificationHandler.GetNotifications).Methods("GET")
	protected.HandleFunc("/notifications/unread-count", notificationHandler.GetUnreadCount).Methods("GET")
	protected.HandleFunc("/notifications/read-all", notificationHandler.MarkAllAsRead).Methods("PUT")
	protected.HandleFunc("/notifications/register-device", notificationHandler.RegisterDevice).Methods("POST")
	protected.HandleFunc("/notifications/{id}/read", notificationHandler.MarkAsRead).Methods("PUT")
	protected.HandleFunc("/notifications/{id}", notificationHandler.DeleteNotification).Methods("DELETE")
	protected.HandleFunc("/achievements", notificationHandler.GetAchievements).Methods("GET")

	protected.HandleFunc("/progress/sync", progressHandler.Sync).Methods("POST")
	protected.HandleFunc("/progress/overview", progressHandler.GetOverview).Methods("GET")

	protected.HandleFunc("/community/posts", communityHandler.ListPosts).Methods("GET")
	protected.HandleFunc("/community/posts", communityHandler.CreatePost).Methods("POST")
	protected.HandleFunc("/community/posts/{id}", communityHandler.DeletePost).Methods("DELETE")
	protected.HandleFunc("/community/posts/{id}/reactions", communityHandler.ToggleReaction).Methods("POST")

	protected.HandleFunc("/buddies", buddyHandler.ListBuddies).Methods("GET")
	protected.HandleFunc("/buddies/quick-messages", buddyHandler.QuickMessages).Methods("GET")
	protected.HandleFunc("/buddies/requests", buddyHandler.ListRequests).Methods("GET")
	protected.HandleFunc("/buddies/requests", buddyHandler.SendRequest).Methods("POST")
	protected.HandleFunc("/buddies/requests/{id}", buddyHandler.RespondToRequest).Methods("PUT")
	protected.HandleFunc("/buddies/{id}", buddyHandler.RemoveBuddy).Methods("DELETE")
	protected.HandleFunc("/buddies/{id}/messages", buddyHandler.GetMessages).Methods("GET")
	protected.HandleFunc("/buddies/{id}/messages", buddyHandler.SendMessage).Methods("POST")

	protected.HandleFunc("/subscription", subscriptionHandler.GetStatus).Methods("GET")
	protected.HandleFunc("/subscription/checkout", subscriptionHandler.CreateCheckout).Methods("POST")
	protected.HandleFunc("/subscription/iap", subscriptionHandler.RecordIAP).Methods("POST")

	premium := protected.PathPrefix("/premium").Subrouter()
	premium.Use(middleware.RequirePremium(subscriptionService, logg))
	premium.HandleFunc("/insights", progressHandler.GetInsights).Methods("GET")

	corsHandler := gorillaHandlers.CORS(
		gorillaHandlers.AllowedOrigins([]string{"*"}),
		gorillaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorillaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Pprof-Secret"}),
		gorillaHandlers.ExposedHeaders([]string{"Content-Length"}),
	)

	server := http.Server{
		Addr:         cfg.Addr(),
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logg.Info("starting server", "addr", cfg.Addr())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Fatal("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logg.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error("server shutdown error", "error", err)
	}
	logg.Info("server shutdown complete")
}

func newPool(ctx context.Context, dbURL string) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, err
	}
	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}
