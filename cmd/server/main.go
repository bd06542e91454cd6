package main

import (
	"encoding/gob"
	"fmt"
	"log"
	"net/http"
	"strings"

	"school-fundraiser-platform/internal/config"
	"school-fundraiser-platform/internal/database"
	"school-fundraiser-platform/internal/handlers"
	"school-fundraiser-platform/internal/middleware"
	"school-fundraiser-platform/internal/models"
	"school-fundraiser-platform/internal/repositories"
	"school-fundraiser-platform/internal/services"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
)

func main() {
	// Register types for session serialization
	gob.Register(&models.Cart{})
	gob.Register(models.CartItem{})
	gob.Register([]models.CartItem{})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	db, err := database.NewConnection(database.Config{
		URL:      cfg.Database.URL,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()
	log.Println("Database connection established successfully")

	if err := db.RunMigrations(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// Session store
	sessionStore := sessions.NewCookieStore([]byte(cfg.Session.Secret))
	sessionStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 30, // 30 days
		HttpOnly: true,
		Secure:   cfg.Server.Env == "production",
		SameSite: http.SameSiteLaxMode,
	}

	// Repositories
	fundraiserRepo := repositories.NewFundraiserRepository(db.DB)
	studentRepo := repositories.NewStudentRepository(db.DB)
	pendingOrderRepo := repositories.NewPendingOrderRepository(db.DB)
	purchaseRepo := repositories.NewPurchaseRepository(db.DB)

	// Payment providers
	stripeService := services.NewStripeService(services.StripeConfig{
		SecretKey:     cfg.Stripe.SecretKey,
		PublicKey:     cfg.Stripe.PublicKey,
		WebhookSecret: cfg.Stripe.WebhookSecret,
		Currency:      cfg.Stripe.Currency,
	})
	paystackService := services.NewPaystackService(services.PaystackConfig{
		SecretKey:   cfg.Paystack.SecretKey,
		PublicKey:   cfg.Paystack.PublicKey,
		Environment: cfg.Paystack.Environment,
		CallbackURL: cfg.Paystack.CallbackURL,
	})

	// Notifications fall back to logging when Resend is not configured
	notificationService := services.NewMockNotificationService(&cfg.Resend)

	// Services
	checkoutService := services.NewCheckoutService(fundraiserRepo, pendingOrderRepo)
	paymentService := services.NewPaymentService(pendingOrderRepo, purchaseRepo, studentRepo, paystackService, notificationService)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(studentRepo, sessionStore)

	// Handlers
	cartHandler := handlers.NewCartHandler(fundraiserRepo, sessionStore)
	paymentHandler := handlers.NewPaymentHandler(
		checkoutService,
		paymentService,
		stripeService,
		paystackService,
		sessionStore,
		strings.ToUpper(cfg.Stripe.Currency),
		cfg.Paystack.CallbackURL,
	)
	fundraiserHandler := handlers.NewFundraiserHandler(fundraiserRepo, purchaseRepo)

	// Router
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.LoggingMiddleware)
	r.Use(authMiddleware.LoadStudent)

	r.Get("/healthz", handlers.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Get("/fundraisers", fundraiserHandler.ListFundraisers)
		r.Get("/fundraisers/{id}", fundraiserHandler.GetFundraiser)

		r.Get("/cart", cartHandler.GetCart)
		r.Post("/cart/items", cartHandler.AddItem)
		r.Put("/cart/items/{id}", cartHandler.UpdateItem)
		r.Delete("/cart/items/{id}", cartHandler.RemoveItem)

		r.Post("/checkout/intent", paymentHandler.CreateIntent)
		r.Post("/checkout/paystack", paymentHandler.PaystackInitialize)
		r.Post("/checkout/paystack/verify", paymentHandler.PaystackVerify)
		r.Post("/checkout/paystack/cancel", paymentHandler.PaystackCancel)

		r.Post("/webhooks/stripe", paymentHandler.StripeWebhook)

		// Authenticated endpoints
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.RequireStudent)
			r.Post("/checkout/cash", paymentHandler.CashCheckout)
			r.Get("/fundraisers/{id}/purchases", fundraiserHandler.ListPurchases)
			r.Get("/students/me/sales", fundraiserHandler.MySales)
		})
	})

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Server starting on %s", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatal("Server failed:", err)
	}
}
