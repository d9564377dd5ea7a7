package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/invomaker/invomaker/api"
	"github.com/invomaker/invomaker/cache"
	"github.com/invomaker/invomaker/config"
	"github.com/invomaker/invomaker/db"
	"github.com/invomaker/invomaker/ledger"
	"github.com/invomaker/invomaker/middleware"
	"github.com/invomaker/invomaker/pdf"
	"github.com/invomaker/invomaker/security"
	"github.com/invomaker/invomaker/services"
	"github.com/invomaker/invomaker/stores"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorPurple = "\033[35m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
)

func printBanner() {
	fmt.Printf("%s%s", colorCyan, colorBold)
	fmt.Println("╔══════════════════════════════════════════════════════════════╗")
	fmt.Println("║                                                              ║")
	fmt.Println("║  📄 InvoMaker Invoicing Platform                            ║")
	fmt.Println("║                                                              ║")
	fmt.Println("║  Invoices, payments and billing for small businesses        ║")
	fmt.Println("║                                                              ║")
	fmt.Println("╚══════════════════════════════════════════════════════════════╝")
	fmt.Printf("%s", colorReset)
}

func printStep(step, message string) {
	fmt.Printf("%s[%s]%s %s%s%s\n", colorBlue, step, colorReset, colorBold, message, colorReset)
}

func printSuccess(message string) {
	fmt.Printf("%s✓%s %s\n", colorGreen, colorReset, message)
}

func printWarning(message string) {
	fmt.Printf("%s⚠%s %s\n", colorYellow, colorReset, message)
}

func printError(message string) {
	fmt.Printf("%s✗%s %s\n", colorRed, colorReset, message)
}

func printInfo(message string) {
	fmt.Printf("%sℹ%s %s\n", colorCyan, colorReset, message)
}

func main() {
	printBanner()
	fmt.Println()

	printStep("1/9", "Loading configuration...")
	cfg, err := config.LoadConfig()
	if err != nil {
		printError(fmt.Sprintf("Failed to load configuration: %v", err))
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		printError(fmt.Sprintf("Configuration validation failed: %v", err))
		os.Exit(1)
	}
	printSuccess("Configuration loaded and validated")

	printStep("2/9", "Connecting to database...")
	gdb, err := gorm.Open(postgres.Open(cfg.GetDatabaseURL()), &gorm.Config{})
	if err != nil {
		printError(fmt.Sprintf("Failed to connect to database: %v", err))
		os.Exit(1)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		printError(fmt.Sprintf("Failed to get database instance: %v", err))
		os.Exit(1)
	}
	defer sqlDB.Close()
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.MaxLifetime)
	printSuccess(fmt.Sprintf("Connected to PostgreSQL at %s:%d", cfg.Database.Host, cfg.Database.Port))

	printStep("3/9", "Running migrations...")
	if err := db.AutoMigrate(gdb); err != nil {
		printError(fmt.Sprintf("Failed to migrate schema: %v", err))
		os.Exit(1)
	}
	migrator := db.CreateMigrator(gdb)
	if _, err := os.Stat("migrations"); err == nil {
		if err := migrator.LoadMigrationsFromDir("migrations"); err != nil {
			printError(fmt.Sprintf("Failed to load migrations: %v", err))
			os.Exit(1)
		}
		if err := migrator.Up(); err != nil {
			printError(fmt.Sprintf("Failed to apply migrations: %v", err))
			os.Exit(1)
		}
	}
	printSuccess("Database schema up to date")

	printStep("4/9", "Connecting to Redis...")
	redisCache, err := cache.NewRedisCache(cache.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		TTL:      cfg.Redis.TTL,
	})
	if err != nil {
		printWarning(fmt.Sprintf("Failed to connect to Redis: %v (report caching disabled)", err))
		redisCache = nil
	} else {
		defer redisCache.Close()
		printSuccess(fmt.Sprintf("Connected to Redis at %s:%d", cfg.Redis.Host, cfg.Redis.Port))
	}

	printStep("5/9", "Initializing stores...")
	businessStore := stores.NewBusinessStore(gdb)
	customerStore := stores.NewCustomerStore(gdb)
	productStore := stores.NewProductStore(gdb)
	invoiceStore := stores.NewInvoiceStore(gdb)
	paymentStore := stores.NewPaymentStore(gdb)
	subscriptionStore := stores.NewSubscriptionStore(gdb)
	printSuccess("Stores initialized")

	printStep("6/9", "Initializing services...")
	locks := ledger.NewKeyedLock()

	businessService := services.NewBusinessService(businessStore)
	customerService := services.NewCustomerService(customerStore, invoiceStore)
	productService := services.NewProductService(productStore)
	invoiceService := services.NewInvoiceService(invoiceStore, paymentStore, businessStore, productStore, locks)
	paymentService := services.NewPaymentService(paymentStore, invoiceStore, locks)
	var reportService *services.ReportService
	if redisCache != nil {
		reportService = services.NewReportService(invoiceStore, redisCache)
	} else {
		reportService = services.NewReportService(invoiceStore, nil)
	}
	subscriptionService := services.NewSubscriptionService(subscriptionStore, invoiceStore, cfg.Stripe)
	aiService := services.NewAIService(cfg.OpenAI)
	emailService := services.NewEmailService(cfg.Resend)
	renderer := pdf.NewRenderer()
	printSuccess("Services initialized")
	if cfg.OpenAI.APIKey == "" {
		printWarning("  • OpenAI key missing: AI endpoints will return 503")
	}
	if cfg.Resend.APIKey == "" {
		printWarning("  • Resend key missing: invoice email sending disabled")
	}

	printStep("7/9", "Initializing security...")
	jwtManager := security.CreateJWTManager(cfg.Security.JWTSecret, "invomaker", "invomaker-api")
	printSuccess("Security initialized")

	printStep("8/9", "Setting up HTTP server...")
	businessHandler := api.CreateBusinessHandler(businessService)
	customerHandler := api.CreateCustomerHandler(customerService, businessService)
	productHandler := api.CreateProductHandler(productService, businessService)
	invoiceHandler := api.CreateInvoiceHandler(invoiceService, businessService, subscriptionService, reportService, emailService, renderer)
	paymentHandler := api.CreatePaymentHandler(paymentService, businessService, reportService)
	reportHandler := api.CreateReportHandler(reportService, businessService, aiService, subscriptionService)
	aiHandler := api.CreateAIHandler(aiService, customerService, productService, businessService, subscriptionService)
	subscriptionHandler := api.CreateSubscriptionHandler(subscriptionService, businessService, cfg.Stripe.WebhookSecret)

	router := mux.NewRouter()

	router.Use(middleware.CorrelationMiddleware)
	router.Use(middleware.LoggingMiddleware)
	router.Use(middleware.CORSMiddleware)
	router.Use(middleware.RecoveryMiddleware)

	router.HandleFunc("/health", api.HealthCheckHandler).Methods("GET")

	webhookRouter := router.PathPrefix("/api/v1/webhooks").Subrouter()
	webhookRouter.HandleFunc("/stripe", subscriptionHandler.HandleStripeWebhook).Methods("POST")

	apiRouter := router.PathPrefix("/api/v1").Subrouter()
	apiRouter.Use(middleware.RateLimitMiddleware(cfg.Security.RateLimitRPS, cfg.Security.RateLimitBurst))
	apiRouter.Use(middleware.AuthMiddleware(jwtManager))

	apiRouter.HandleFunc("/business", businessHandler.HandleGet).Methods("GET")
	apiRouter.HandleFunc("/business", businessHandler.HandleUpsert).Methods("PUT")

	apiRouter.HandleFunc("/customers", customerHandler.HandleCreate).Methods("POST")
	apiRouter.HandleFunc("/customers", customerHandler.HandleList).Methods("GET")
	apiRouter.HandleFunc("/customers/{id}", customerHandler.HandleGet).Methods("GET")
	apiRouter.HandleFunc("/customers/{id}", customerHandler.HandleUpdate).Methods("PUT")
	apiRouter.HandleFunc("/customers/{id}", customerHandler.HandleDelete).Methods("DELETE")
	apiRouter.HandleFunc("/customers/{id}/summary", customerHandler.HandleSummary).Methods("GET")
	apiRouter.HandleFunc("/customers/{id}/ai-summary", aiHandler.HandleCustomerSummary).Methods("POST")

	apiRouter.HandleFunc("/products", productHandler.HandleCreate).Methods("POST")
	apiRouter.HandleFunc("/products", productHandler.HandleList).Methods("GET")
	apiRouter.HandleFunc("/products/low-stock", productHandler.HandleLowStock).Methods("GET")
	apiRouter.HandleFunc("/products/barcode/{barcode}", productHandler.HandleBarcodeLookup).Methods("GET")
	apiRouter.HandleFunc("/products/{id}", productHandler.HandleGet).Methods("GET")
	apiRouter.HandleFunc("/products/{id}", productHandler.HandleUpdate).Methods("PUT")
	apiRouter.HandleFunc("/products/{id}", productHandler.HandleDelete).Methods("DELETE")

	apiRouter.HandleFunc("/invoices", invoiceHandler.HandleCreate).Methods("POST")
	apiRouter.HandleFunc("/invoices", invoiceHandler.HandleList).Methods("GET")
	apiRouter.HandleFunc("/invoices/{id}", invoiceHandler.HandleGet).Methods("GET")
	apiRouter.HandleFunc("/invoices/{id}", invoiceHandler.HandleUpdate).Methods("PUT")
	apiRouter.HandleFunc("/invoices/{id}", invoiceHandler.HandleDelete).Methods("DELETE")
	apiRouter.HandleFunc("/invoices/{id}/duplicate", invoiceHandler.HandleDuplicate).Methods("POST")
	apiRouter.HandleFunc("/invoices/{id}/mark-sent", invoiceHandler.HandleMarkSent).Methods("POST")
	apiRouter.HandleFunc("/invoices/{id}/cancel", invoiceHandler.HandleCancel).Methods("POST")
	apiRouter.HandleFunc("/invoices/{id}/recalculate", invoiceHandler.HandleRecalculate).Methods("POST")
	apiRouter.HandleFunc("/invoices/{id}/pdf", invoiceHandler.HandleDownloadPDF).Methods("GET")
	apiRouter.HandleFunc("/invoices/{id}/send", invoiceHandler.HandleSend).Methods("POST")
	apiRouter.HandleFunc("/invoices/{id}/payments", paymentHandler.HandleAdd).Methods("POST")
	apiRouter.HandleFunc("/invoices/{id}/payments", paymentHandler.HandleList).Methods("GET")

	apiRouter.HandleFunc("/payments/{id}", paymentHandler.HandleUpdate).Methods("PUT")
	apiRouter.HandleFunc("/payments/{id}", paymentHandler.HandleDelete).Methods("DELETE")

	apiRouter.HandleFunc("/reports/totals", reportHandler.HandleTotals).Methods("GET")
	apiRouter.HandleFunc("/reports/summary", reportHandler.HandleSummary).Methods("POST")

	apiRouter.HandleFunc("/ai/draft-invoice", aiHandler.HandleDraftInvoice).Methods("POST")
	apiRouter.HandleFunc("/ai/generate-text", aiHandler.HandleGenerateText).Methods("POST")
	apiRouter.HandleFunc("/ai/email-draft", aiHandler.HandleEmailDraft).Methods("POST")
	apiRouter.HandleFunc("/ai/translate", aiHandler.HandleTranslate).Methods("POST")
	apiRouter.HandleFunc("/ai/parse-receipt", aiHandler.HandleParseReceipt).Methods("POST")
	apiRouter.HandleFunc("/ai/payment-risk", aiHandler.HandlePaymentRisk).Methods("POST")

	apiRouter.HandleFunc("/subscription/plans", subscriptionHandler.HandlePlans).Methods("GET")
	apiRouter.HandleFunc("/subscription", subscriptionHandler.HandleGet).Methods("GET")
	apiRouter.HandleFunc("/subscription/usage", subscriptionHandler.HandleUsage).Methods("GET")
	apiRouter.HandleFunc("/subscription/checkout", subscriptionHandler.HandleCheckout).Methods("POST")

	server := &http.Server{
		Addr:           ":" + cfg.Server.Port,
		Handler:        router,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}
	printSuccess("HTTP server configured")

	printStep("9/9", "Starting...")
	fmt.Println()
	fmt.Printf("%s%s🎉 InvoMaker is ready!%s\n", colorGreen, colorBold, colorReset)
	fmt.Println()
	fmt.Printf("%s%sAPI Endpoints:%s\n", colorPurple, colorBold, colorReset)
	fmt.Printf("  %s•%s Health:    %shttp://localhost:%s/health%s\n", colorCyan, colorReset, colorYellow, cfg.Server.Port, colorReset)
	fmt.Printf("  %s•%s Invoices:  %shttp://localhost:%s/api/v1/invoices%s\n", colorCyan, colorReset, colorYellow, cfg.Server.Port, colorReset)
	fmt.Printf("  %s•%s Customers: %shttp://localhost:%s/api/v1/customers%s\n", colorCyan, colorReset, colorYellow, cfg.Server.Port, colorReset)
	fmt.Printf("  %s•%s Products:  %shttp://localhost:%s/api/v1/products%s\n", colorCyan, colorReset, colorYellow, cfg.Server.Port, colorReset)
	fmt.Printf("  %s•%s Reports:   %shttp://localhost:%s/api/v1/reports/totals%s\n", colorCyan, colorReset, colorYellow, cfg.Server.Port, colorReset)
	fmt.Printf("  %s•%s AI:        %shttp://localhost:%s/api/v1/ai/draft-invoice%s\n", colorCyan, colorReset, colorYellow, cfg.Server.Port, colorReset)
	fmt.Println()
	fmt.Printf("%s%sEnvironment:%s %s%s%s\n", colorPurple, colorBold, colorReset, colorYellow, cfg.Environment, colorReset)
	fmt.Printf("%s%sServer Port:%s %s%s%s\n", colorPurple, colorBold, colorReset, colorYellow, cfg.Server.Port, colorReset)
	fmt.Printf("%s%sDatabase:%s %s%s:%d%s\n", colorPurple, colorBold, colorReset, colorYellow, cfg.Database.Host, cfg.Database.Port, colorReset)
	fmt.Println()
	fmt.Printf("%s%sPress Ctrl+C to stop the server%s\n", colorYellow, colorBold, colorReset)
	fmt.Println()

	go func() {
		printInfo(fmt.Sprintf("Starting HTTP server on port %s...", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			printError(fmt.Sprintf("Server failed to start: %v", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println()
	printWarning("Shutting down InvoMaker server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		printError(fmt.Sprintf("Server forced to shutdown: %v", err))
		os.Exit(1)
	}

	printSuccess("InvoMaker server stopped gracefully")
}
