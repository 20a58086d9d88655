package main

import (
	"log"
	"os"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"grid-fog-engine/config"
	"grid-fog-engine/session"
	"grid-fog-engine/store"
)

func setupApp(m *session.Manager) *fiber.App {
	app := fiber.New()

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Content-Type",
	}))

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Post("/maps", m.CreateMap)
	app.Get("/maps/:id", m.GetMap)
	app.Delete("/maps/:id", m.DeleteMap)

	app.Post("/maps/:id/viewports", m.BindViewport)
	app.Delete("/maps/:id/viewports/:vid", m.UnbindViewport)
	app.Post("/maps/:id/viewports/:vid/events", m.ViewportEvent)
	app.Get("/maps/:id/viewports/:vid/frame.png", m.Frame)

	app.Get("/calibrations", m.ListPresets)
	app.Post("/calibrations/:name", m.SavePreset)
	app.Delete("/calibrations/:name", m.DeletePreset)

	app.Get("/ws/:mapId/:viewportId", websocket.New(m.HandleWS))

	return app
}

func main() {
	cfg := config.Load("config.json")

	// Allow env vars to override the config file
	if envURL := os.Getenv("DATABASE_URL"); envURL != "" {
		cfg.DatabaseURL = envURL
	}
	if addr := os.Getenv("LISTEN_ADDR"); addr != "" {
		cfg.ListenAddr = addr
	}

	manager, err := session.NewManager(cfg)
	if err != nil {
		log.Fatalf("failed to start: %v", err)
	}

	if cfg.DatabaseURL != "" {
		s, err := store.New(cfg.DatabaseURL)
		if err != nil {
			log.Printf("warning: failed to connect to database: %v, calibration presets disabled", err)
		} else {
			manager.SetStore(s)
			defer s.Close()
		}
	}

	app := setupApp(manager)
	if err := app.Listen(cfg.ListenAddr); err != nil {
		log.Printf("server stopped: %v", err)
	}
}
