package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"

	"opensite/api/internal/config"
	"opensite/api/internal/logger"
	"opensite/api/internal/server"
	"opensite/api/internal/service"
	"opensite/api/internal/store"

	_ "opensite/api/docs"
)

// @title OpenSite API
// @version 1.0
// @description OpenSite - Construction Site Management API
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/opensite/opensite/issues
// @contact.email support@opensite.local

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:3000
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	_ = godotenv.Load()

	lg := logger.New()
	defer lg.Sync()

	lg.Infow("starting OpenSite API server")

	cfg := config.Load()

	// Connect to Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisURL,
		DB:   0,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		lg.Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close()
	lg.Infow("connected to redis", "addr", cfg.RedisURL)

	// Connect to NATS
	natsConn, err := nats.Connect(cfg.NATSURL)
	if err != nil {
		lg.Fatalw("failed to connect to nats", "error", err)
	}
	defer natsConn.Close()
	lg.Infow("connected to nats", "url", cfg.NATSURL)

	// The store starts empty on every boot; seed the demo tenant.
	st := store.New(lg)
	if err := st.SeedDemo(cfg.SeedPassword); err != nil {
		lg.Fatalw("failed to seed store", "error", err)
	}
	lg.Infow("store seeded")

	// Start crew tracker
	tracker := service.NewCrewTracker(st, redisClient, natsConn, lg)
	if err := tracker.Start(); err != nil {
		lg.Fatalw("failed to start crew tracker", "error", err)
	}
	defer tracker.Stop()

	// Create and setup server
	srv := server.NewServer(cfg, st, redisClient, natsConn, tracker, lg)
	srv.Setup()

	go func() {
		if err := srv.Run(); err != nil {
			lg.Fatalw("http server failed", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	lg.Infow("shutting down")
	srv.Shutdown()
	lg.Infow("server stopped")
}
