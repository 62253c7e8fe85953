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
	"github.com/stripe/stripe-go/v76"

	"homePulseAPI/handlers"
	"homePulseAPI/internal/admin"
	"homePulseAPI/internal/notification"
	"homePulseAPI/middleware"
	"homePulseAPI/services"

	_ "net/http/pprof"
)

var (
	dbPool           *pgxpool.Pool
	userService      *services.UserService
	creditsService   *services.CreditsService
	adminService     *services.AdminService
	listingService   *services.ListingService
	favoritesService *services.FavoritesService
	billingService   *services.BillingService
	alertService     *services.AlertService
	fcmService       *notification.FCMService
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

	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")
	if stripe.Key == "" {
		log.Println("Warning: STRIPE_SECRET_KEY is not set, checkout will fail")
	}

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

	log.Println("Successfully connected to Postgres")

	bootstrapCfg := admin.NewBootstrapConfig(
		os.Getenv("ADMIN_BOOTSTRAP_ENABLED"),
		os.Getenv("ADMIN_ALLOWLIST_EMAILS"),
	)

	userService = services.NewUserService(dbPool)
	creditsService = services.NewCreditsService(dbPool)
	adminService = services.NewAdminService(dbPool, bootstrapCfg)
	listingService = services.NewListingService(dbPool, creditsService)
	favoritesService = services.NewFavoritesService(dbPool)
	billingService = services.NewBillingService(dbPool, userService, creditsService)
	alertService = services.NewAlertService(dbPool)

	fcmService, err = notification.NewFCMService("./serviceAccountKey.json")
	if err != nil {
		log.Printf("Warning: Could not initialize FCM: %v", err)
	} else {
		alertService.SetPushProvider(fcmService)
		log.Println("FCM Push Provider initialized successfully")
	}

	middleware.InitPrometheus()
}

func main() {
	defer func() {
		log.Println("Closing database connection pool...")
		dbPool.Close()
	}()

	userHandler := handlers.NewUserHandler(userService)
	creditsHandler := handlers.NewCreditsHandler(creditsService)
	listingHandler := handlers.NewListingHandler(listingService)
	favoritesHandler := handlers.NewFavoritesHandler(favoritesService)
	billingHandler := handlers.NewBillingHandler(billingService)
	alertHandler := handlers.NewAlertHandler(alertService)
	adminHandler := handlers.NewAdminHandler(adminService, userService, listingService, creditsService, alertService)
	webhookHandler := handlers.NewWebhookHandler(userService, billingService)
	docsHandler := handlers.NewDocsHandler()

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
		w.Write([]byte(`{"status": "healthy", "service": "homePulse-api"}`))
	}).Methods("GET")

	r.HandleFunc("/webhooks/clerk", webhookHandler.HandleClerkWebhook).Methods("POST")
	r.HandleFunc("/webhooks/billing", webhookHandler.HandleBillingWebhook).Methods("POST")

	// -------------------------------------------------------------------------
	// API V1 SUBROUTER
	// -------------------------------------------------------------------------
	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/privacy-policy", docsHandler.ServePrivacyPolicy).Methods("GET")
	api.HandleFunc("/terms-of-services", docsHandler.ServeTermsOfServices).Methods("GET")

	api.HandleFunc("/listings/search", listingHandler.SearchListings).Methods("GET")
	api.HandleFunc("/listings/{id}", listingHandler.GetListing).Methods("GET")
	api.HandleFunc("/listings/{id}/price-history", listingHandler.GetPriceHistory).Methods("GET")

	// -------------------------------------------------------------------------
	// PROTECTED ROUTES (REQUIRE AUTH HEADER)
	// -------------------------------------------------------------------------
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.ClerkAuthMiddleware)

	protected.HandleFunc("/me/credits", creditsHandler.GetMyCredits).Methods("GET")

	protected.HandleFunc("/user", userHandler.GetProfile).Methods("GET")
	protected.HandleFunc("/user/update-profile", userHandler.UpdateProfile).Methods("PUT")
	protected.HandleFunc("/user/delete-account", userHandler.DeleteAccount).Methods("DELETE")

	protected.HandleFunc("/user/favorites", favoritesHandler.GetFavorites).Methods("GET")
	protected.HandleFunc("/user/favorites", favoritesHandler.AddFavorite).Methods("POST")
	protected.HandleFunc("/user/favorites", favoritesHandler.RemoveFavorite).Methods("DELETE")

	protected.HandleFunc("/listings/{id}/analyze", listingHandler.AnalyzeListing).Methods("POST")

	protected.HandleFunc("/billing/plans", billingHandler.GetPlans).Methods("GET")
	protected.HandleFunc("/billing/checkout", billingHandler.Checkout).Methods("POST")

	protected.HandleFunc("/notifications", alertHandler.GetAlerts).Methods("GET")
	protected.HandleFunc("/notifications/read-all", alertHandler.MarkAllRead).Methods("PUT")
	protected.HandleFunc("/notifications/register-device", alertHandler.RegisterDevice).Methods("POST")

	protected.HandleFunc("/min-version", docsHandler.GetAppMinVersion).Methods("GET")

	protected.HandleFunc("/admin/users", adminHandler.ListUsers).Methods("GET")
	protected.HandleFunc("/admin/users/{id}/credits/grant", adminHandler.GrantCredits).Methods("POST")
	protected.HandleFunc("/admin/listings/{id}/price", adminHandler.UpdateListingPrice).Methods("PUT")
	protected.HandleFunc("/admin/memberships", adminHandler.ListMemberships).Methods("GET")

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
