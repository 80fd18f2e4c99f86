package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/apex/log"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/benbeisheim/chess-backend/internal/config"
	"github.com/benbeisheim/chess-backend/internal/controller"
	"github.com/benbeisheim/chess-backend/internal/middleware"
	"github.com/benbeisheim/chess-backend/internal/service"
	"github.com/benbeisheim/chess-backend/internal/store"
)

func waitShutdown(app *fiber.App, idleConnsClosed chan<- struct{}) {
	defer close(idleConnsClosed)

	sigint := make(chan os.Signal, 1)
	signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigint)

	<-sigint
	log.Info("received shutdown signal")

	if err := app.Shutdown(); err != nil {
		log.WithError(err).Error("HTTP server shutdown")
	}
}

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	cfg.SetupLogging()

	var recorder service.Recorder
	if cfg.DatabaseURL != "" {
		archive, err := store.Open(cfg.DatabaseURL)
		if err != nil {
			log.WithError(err).Fatal("failed to open game archive")
		}
		defer func() {
			if err := archive.Close(); err != nil {
				log.WithError(err).Error("close game archive")
			}
		}()
		recorder = archive
		log.Info("game archive enabled")
	}

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, X-Player-ID",
		AllowMethods:     "GET, POST, OPTIONS",
		AllowCredentials: true,
	}))
	app.Use(middleware.RequestLogger())

	gameManager := service.NewGameManager(recorder)
	gameService := service.NewGameService(gameManager)
	controller.RegisterRoutes(app, gameService, splitOrigins(cfg.AllowOrigins))

	idleConnsClosed := make(chan struct{})
	go waitShutdown(app, idleConnsClosed)

	log.WithField("addr", cfg.Addr).Info("listening")
	if err := app.Listen(cfg.Addr); err != nil {
		log.WithError(err).Error("HTTP server end")
		return
	}
	<-idleConnsClosed
}

func splitOrigins(s string) []string {
	var origins []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
