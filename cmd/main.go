package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"pedidos-api/internal/app"
	"pedidos-api/internal/config"
	"pedidos-api/internal/handler"
	"pedidos-api/internal/normalizer"
	"pedidos-api/internal/postgres"
	"pedidos-api/internal/repo"
	"pedidos-api/internal/service"
	"pedidos-api/pkg/trm"

	"github.com/joho/godotenv"
)

// @title           Pedidos API
// @version         1.0
// @description     Order management API with legacy payload normalization and JWT auth.
func main() {
	conf := config.New()
	logger := newLogger(conf.Env)
	panicIfErr("invalid config", conf.Validate())

	db, err := postgres.New(conf.Postgres)
	panicIfErr("failed to connect to db", err)
	defer db.Close()
	logger.Info("postgres connected")

	orderRepo := repo.NewPostgresRepo(db)
	txManager := trm.NewManager(db)

	orderService := service.NewOrderService(logger, txManager, orderRepo, normalizer.New())
	authService := service.NewAuthService(logger, conf.JWT)

	httpHandler := handler.NewHTTPHandler(logger, orderService, authService)
	authHandler := handler.NewAuthHandler(logger, authService)

	application := app.New(logger, conf)
	application.SetHTTPHandlers(httpHandler, authHandler)

	if len(conf.Kafka.Brokers) > 0 {
		application.SetConsumers(handler.NewKafkaHandler(logger, conf.Kafka, orderService))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	application.Start(ctx)
	<-ctx.Done()
	application.Stop()
}

func init() {
	godotenv.Load()
}

func newLogger(env string) *slog.Logger {
	switch env {
	case "production":
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}

func panicIfErr(prefix string, err error) {
	if err != nil {
		panic(prefix + ": " + err.Error())
	}
}
