package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberLogger "github.com/gofiber/fiber/v2/middleware/logger"

	"educa/chat"
	"educa/config"
	authController "educa/controllers/auth"
	courseControllers "educa/controllers/course"
	"educa/database"
	"educa/logger"
	"educa/middleware"
	"educa/notify"
	"educa/oembed"
	"educa/ordering"
	"educa/routers/authRoutes"
	"educa/routers/courseRoutes"
	"educa/scheduler"
	"educa/services/content"
	"educa/services/course"
	"educa/services/enrollment"
	"educa/storage"
)

func main() {
	cfg := config.LoadConfig()

	log, err := logger.New(cfg.AppEnv)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.ConnectDb(cfg, log)
	if err != nil {
		log.Fatal("database connection failed", "error", err)
	}

	blobs, err := storage.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("blob store init failed", "backend", cfg.BlobBackend, "error", err)
	}
	if closer, ok := blobs.(io.Closer); ok {
		defer closer.Close()
	}

	var embeds oembed.Resolver = oembed.Nop{}
	if cfg.OEmbedEndpoint != "" {
		embeds = oembed.New(cfg.OEmbedEndpoint, log)
	}

	orders := ordering.NewAssigner(log)
	contents := content.NewService(db, orders, blobs, embeds, log)
	courses := course.NewService(db, orders, contents, log)
	gate := enrollment.NewGate(db, notify.New(cfg, log), log)

	sweeper := scheduler.NewSweeper(contents, cfg.SweepPrune, log)
	if err := sweeper.Start(cfg.SweepSchedule); err != nil {
		log.Fatal("sweeper schedule rejected", "schedule", cfg.SweepSchedule, "error", err)
	}
	defer sweeper.Stop()

	bus, err := chat.NewBus(cfg, log)
	if err != nil {
		log.Fatal("chat bus init failed", "error", err)
	}
	defer bus.Close()
	chatServer := chat.NewServer(chat.NewHub(log), bus, chatIdentity, gate, log)
	go func() {
		if err := chatServer.ListenAndServe(ctx, ":"+cfg.ChatPort); err != nil {
			log.Error("chat server stopped", "error", err)
			stop()
		}
	}()

	app := fiber.New(fiber.Config{BodyLimit: 32 * 1024 * 1024})

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",
		AllowHeaders: "Content-Type,Authorization",
	}))

	app.Use(fiberLogger.New(fiberLogger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	if cfg.BlobBackend == "" || cfg.BlobBackend == "local" {
		app.Static(cfg.MediaURL, cfg.MediaRoot)
	}

	handler := courseControllers.NewHandler(courses, contents, gate, log)
	authRoutes.SetupAuthRoutes(app, authController.New(db, cfg.SaltRound, log))
	courseRoutes.SetupManageRoutes(app, db, handler)
	courseRoutes.SetupAPIRoutes(app, db, handler, log)

	go func() {
		<-ctx.Done()
		if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
			log.Error("api shutdown failed", "error", err)
		}
	}()

	log.Info("api server listening", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Error("api server stopped", "error", err)
	}
}

// chatIdentity resolves a chat access token with the API's JWT secret.
func chatIdentity(token string) (chat.Identity, error) {
	claims, err := middleware.ParseToken(token)
	if err != nil {
		return chat.Identity{}, err
	}
	return chat.Identity{UserID: claims.UserID, Username: claims.Username}, nil
}
