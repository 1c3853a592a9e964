package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/imovelhub/unit-sales/internal/config"
	"github.com/imovelhub/unit-sales/internal/database"
	"github.com/imovelhub/unit-sales/internal/gateway"
	"github.com/imovelhub/unit-sales/internal/handler"
	"github.com/imovelhub/unit-sales/internal/queue"
	"github.com/imovelhub/unit-sales/internal/realtime"
	"github.com/imovelhub/unit-sales/internal/repository"
	"github.com/imovelhub/unit-sales/internal/router"
	"github.com/imovelhub/unit-sales/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set the environment directly
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer func() { _ = db.Close() }()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting and response cache disabled")
	}

	// Repositories.
	units := repository.NewUnitRepo(db)
	purchases := repository.NewPurchaseRepo(db)
	contracts := repository.NewContractRepo(db)
	payments := repository.NewPaymentRepo(db)
	users := repository.NewUserRepo(db)
	listings := repository.NewListingRepo(db)
	visits := repository.NewVisitRepo(db)
	notifications := repository.NewNotificationRepo(db)
	chat := repository.NewChatRepo(db)
	txr := repository.NewTxRunner(db)

	// Realtime hub and the notification pipeline: rows are committed by
	// the notifier, fanned out through RabbitMQ and pushed to live
	// connections by the consumer.
	hub := realtime.NewHub(realtime.NewRegistry())
	notifier := service.NewNotificationService(notifications, queue.PublishNotificationCreated)
	go func() {
		err := queue.StartNotificationConsumer(func(ev queue.NotificationCreatedEvent) bool {
			return hub.PublishToUser(ev.UserID, realtime.NewEvent(realtime.EventNotificationCreated, ev))
		})
		if err != nil {
			log.Printf("notification consumer stopped: %v", err)
		}
	}()

	// Workflows.
	gw := gateway.NewSimulated(cfg.GatewayBaseURL)
	purchaseSvc := service.NewPurchaseService(txr, units, purchases, contracts, notifier)
	signatureSvc := service.NewSignatureService(txr, units, purchases, contracts, users, notifier)
	paymentSvc := service.NewPaymentService(txr, units, purchases, payments, gw, notifier)
	visitSvc := service.NewVisitService(txr, listings, visits, notifier)

	e := echo.New()
	e.HideBanner = true
	router.Register(e, cfg, router.Handlers{
		Auth:         handler.NewAuthHandler(cfg, users),
		Unit:         handler.NewUnitHandler(units),
		Purchase:     handler.NewPurchaseHandler(purchaseSvc, purchases, units),
		Contract:     handler.NewContractHandler(signatureSvc),
		Payment:      handler.NewPaymentHandler(paymentSvc, payments, purchases, units),
		Visit:        handler.NewVisitHandler(visitSvc, visits),
		Webhook:      handler.NewWebhookHandler(paymentSvc, signatureSvc),
		Notification: handler.NewNotificationHandler(notifications),
		Chat:         handler.NewChatHandler(chat),
		WS:           handler.NewWSHandler(hub, chat),
	}, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
