package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/akarpov/teleshop/config"
	"github.com/akarpov/teleshop/internal/bot"
	"github.com/akarpov/teleshop/internal/checkout"
	"github.com/akarpov/teleshop/internal/export"
	"github.com/akarpov/teleshop/internal/payment"
	"github.com/akarpov/teleshop/internal/shop"
	"github.com/akarpov/teleshop/pkg/httpserver"
	"github.com/akarpov/teleshop/pkg/logger"
	"github.com/akarpov/teleshop/pkg/postgres"
)

func main() {
	log := logger.NewLogger("debug", &logger.MainLogHook{})

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configs: %v", err)
	}

	env, err := config.GetEnvironment()
	if err != nil {
		log.Fatalf(err.Error())
	}

	postgresConfig := postgres.Config{
		Host:     env.PgHost,
		Port:     env.PgPort,
		Username: env.PgUser,
		Password: env.PgPassword,
		DBName:   env.PgDbName,
		SSLMode:  env.SSLMode,
		TimeZone: env.TimeZone,
	}

	db, err := postgres.ConnectionToDb(postgresConfig)
	if err != nil {
		log.Fatalf("failed connection to db: %v", err)
	}

	if err := shop.RunMigration(db); err != nil {
		log.Fatalf("failed migrations: %v", err)
	}

	shopLog := logger.NewLogger(env.LogLvl, &shop.ShopLogHook{})
	shopStorage := shop.NewStorage(db)
	shopService := shop.NewService(shopStorage, cfg.Catalog.PageSize, shopLog)

	paymentLog := logger.NewLogger(env.LogLvl, &payment.PaymentAdapterLogHook{})
	returnURL := "https://t.me/" + env.BotName
	paymentAdapter := payment.NewAdapter(paymentLog, cfg.Payment.ApiURL, env.ShopID,
		env.SecretKey, cfg.Payment.Currency, returnURL)

	exportLog := logger.NewLogger(env.LogLvl, &export.ExportLogHook{})
	ledger := export.NewOrderLedger(cfg.Export.OrdersFile, exportLog)

	checkoutLog := logger.NewLogger(env.LogLvl, &checkout.CheckoutLogHook{})
	workflow := checkout.NewWorkflow(shopService, paymentAdapter, ledger, checkoutLog)

	api, err := tgbotapi.NewBotAPI(env.BotToken)
	if err != nil {
		log.Fatalf("failed to create bot api: %v", err)
	}

	botLog := logger.NewLogger(env.LogLvl, &bot.BotLogHook{})
	botHandler := bot.NewHandler(api, shopService, workflow, env.ChannelID, env.ChannelName, botLog)
	shopBot := bot.NewBot(api, botHandler, env.Admins, botLog)

	ctx, cancel := context.WithCancel(context.Background())
	go shopBot.Run(ctx)

	router := gin.New()

	shopHandler := shop.NewHandler(shopService, botHandler, paymentAdapter, shopLog)
	shopHandler.Register(router)

	server := new(httpserver.Server)

	go func() {
		if err := server.Run(cfg.Server.Port, router); err != nil {
			log.Errorf("failed running server %v", err)
		}
	}()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	oscall := <-interrupt
	log.Infof("Shutdown server, %s", oscall)

	cancel()

	if err := server.Shutdown(context.Background()); err != nil {
		log.Errorf("Error occured on server shutting down: %v", err)
	}
}
